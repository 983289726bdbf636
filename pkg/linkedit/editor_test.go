package linkedit

import (
	stderrors "errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/7eVeNcO/semtk/pkg/nodegroup"
)

const ns = "http://kdl.ge.com/batterydemo#"

func linkWith(t *testing.T, mode nodegroup.Optional) (*nodegroup.NodeGroup, nodegroup.Link) {
	t.Helper()
	g := nodegroup.New()
	battery := nodegroup.NewNode("?Battery", ns+"Battery")
	cell := nodegroup.NewNode("?Cell", ns+"Cell")
	_ = g.AddNode(battery)
	_ = g.AddNode(cell)
	l, err := g.Connect(battery, "cell", cell, mode)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return g, l
}

func TestStateLifecycle(t *testing.T) {
	g, l := linkWith(t, nodegroup.NotOptional)
	ed := New(l, g, nil)
	if ed.State() != Closed || ed.State().String() != "closed" {
		t.Fatalf("new editor state = %v, want closed", ed.State())
	}
	ed.Present()
	if ed.State() != Open || ed.State().String() != "open" {
		t.Fatalf("presented editor state = %v, want open", ed.State())
	}
	ed.Cancel()
	if ed.State() != Closed {
		t.Errorf("cancelled editor state = %v, want closed", ed.State())
	}
}

func TestPresentPreselectsMode(t *testing.T) {
	for _, mode := range nodegroup.Modes {
		t.Run(mode.String(), func(t *testing.T) {
			g, l := linkWith(t, mode)
			v := New(l, g, nil).Present()
			if v.Selected != mode {
				t.Errorf("Selected = %v, want %v", v.Selected, mode)
			}
			if v.Delete {
				t.Error("delete should start unchecked")
			}
		})
	}
}

func TestPresentView(t *testing.T) {
	g, l := linkWith(t, nodegroup.NotOptional)
	v := New(l, g, nil).Present()

	if v.Title != "?Battery-- cell --?Cell" {
		t.Errorf("Title = %q", v.Title)
	}
	if v.Width != MinWidth {
		t.Errorf("Width = %d, want %d", v.Width, MinWidth)
	}
	labels := make([]string, len(v.Choices))
	for i, c := range v.Choices {
		labels[i] = c.Label
	}
	if got := strings.Join(labels, "|"); got != "not optional|forward (normal)|reverse" {
		t.Errorf("choices = %s", got)
	}
}

func TestWidth(t *testing.T) {
	tests := []struct {
		title string
		want  int
	}{
		{"", 40},
		{strings.Repeat("x", 30), 40},
		{strings.Repeat("x", 31), 40},
		{strings.Repeat("x", 40), 52},
		{strings.Repeat("x", 101), 131},
	}
	for _, tt := range tests {
		if got := Width(tt.title); got != tt.want {
			t.Errorf("Width(len %d) = %d, want %d", len(tt.title), got, tt.want)
		}
	}
}

func TestConfirmUnchangedReverse(t *testing.T) {
	g, l := linkWith(t, nodegroup.OptionalReverse)
	ctx := map[string]string{"label": "edge-7"}
	ed := New(l, g, ctx)
	ed.Present()

	edit, ok := ed.Confirm()
	if !ok {
		t.Fatal("Confirm = false")
	}
	if edit.Mode != nodegroup.OptionalReverse || edit.Delete {
		t.Errorf("edit = %v/%v, want reverse/false", edit.Mode, edit.Delete)
	}
	if edit.Source != l.Source || edit.Item != l.Item || edit.Target != l.Target {
		t.Error("edit should carry the bound link")
	}
	if got := edit.Context.(map[string]string)["label"]; got != "edge-7" {
		t.Errorf("context = %v", edit.Context)
	}
	if ed.State() != Closed {
		t.Errorf("State = %v, want closed", ed.State())
	}
	// The editor never touches the graph.
	if g.LinkOptional(l) != nodegroup.OptionalReverse {
		t.Error("graph was mutated")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	g, l := linkWith(t, nodegroup.NotOptional)
	ed := New(l, g, nil)
	ed.Present()

	if err := ed.Select(nodegroup.OptionalForward); err != nil {
		t.Fatal(err)
	}
	ed.SetDelete(true)
	ed.Reset()

	v := ed.View()
	if v.Selected != nodegroup.NotOptional || v.Delete {
		t.Errorf("after Reset = %v/%v, want none/false", v.Selected, v.Delete)
	}
	if ed.State() != Open {
		t.Error("Reset must keep the editor open")
	}
}

func TestConfirmWhenClosed(t *testing.T) {
	g, l := linkWith(t, nodegroup.NotOptional)
	ed := New(l, g, nil)

	if _, ok := ed.Confirm(); ok {
		t.Error("Confirm before Present should fail")
	}
	ed.Present()
	ed.Cancel()
	if _, ok := ed.Confirm(); ok {
		t.Error("Confirm after Cancel should fail")
	}
}

func TestInputsIgnoredWhenClosed(t *testing.T) {
	g, l := linkWith(t, nodegroup.NotOptional)
	ed := New(l, g, nil)

	_ = ed.Select(nodegroup.OptionalReverse)
	ed.SetDelete(true)
	v := ed.View()
	if v.Selected != nodegroup.NotOptional || v.Delete {
		t.Errorf("closed editor accepted input: %+v", v)
	}
}

func TestSelectInvalid(t *testing.T) {
	g, l := linkWith(t, nodegroup.NotOptional)
	ed := New(l, g, nil)
	ed.Present()
	if err := ed.Select(nodegroup.Optional(5)); !stderrors.Is(err, nodegroup.ErrInvalidOptional) {
		t.Errorf("err = %v", err)
	}
}

func TestSelectNextPrevWraps(t *testing.T) {
	g, l := linkWith(t, nodegroup.NotOptional)
	ed := New(l, g, nil)
	ed.Present()

	want := []nodegroup.Optional{nodegroup.OptionalForward, nodegroup.OptionalReverse, nodegroup.NotOptional}
	for _, w := range want {
		ed.SelectNext()
		if got := ed.View().Selected; got != w {
			t.Errorf("SelectNext = %v, want %v", got, w)
		}
	}
	ed.SelectPrev()
	if got := ed.View().Selected; got != nodegroup.OptionalReverse {
		t.Errorf("SelectPrev = %v, want reverse", got)
	}
}

func TestApply(t *testing.T) {
	t.Run("SetsMode", func(t *testing.T) {
		g, l := linkWith(t, nodegroup.NotOptional)
		edit := Edit{Source: l.Source, Item: l.Item, Target: l.Target, Mode: nodegroup.OptionalForward}
		if err := edit.Apply(g); err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if g.LinkOptional(l) != nodegroup.OptionalForward {
			t.Error("mode not applied")
		}
	})

	t.Run("Deletes", func(t *testing.T) {
		g, l := linkWith(t, nodegroup.NotOptional)
		edit := Edit{Source: l.Source, Item: l.Item, Target: l.Target, Delete: true}
		if err := edit.Apply(g); err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if len(g.Links()) != 0 {
			t.Error("link not removed")
		}
		if err := edit.Apply(g); !stderrors.Is(err, nodegroup.ErrUnknownLink) {
			t.Errorf("second delete: err = %v", err)
		}
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func run(m Model, keys ...string) Model {
	var tm tea.Model = m
	for _, k := range keys {
		tm, _ = tm.Update(key(k))
	}
	return tm.(Model)
}

func TestModelConfirm(t *testing.T) {
	g, l := linkWith(t, nodegroup.NotOptional)
	m := run(NewModel(New(l, g, nil)), "down", "x", "enter")

	if m.Result == nil {
		t.Fatal("no result")
	}
	if m.Result.Mode != nodegroup.OptionalForward || !m.Result.Delete {
		t.Errorf("result = %v/%v, want forward/true", m.Result.Mode, m.Result.Delete)
	}
}

func TestModelReset(t *testing.T) {
	g, l := linkWith(t, nodegroup.OptionalReverse)
	m := run(NewModel(New(l, g, nil)), " ", "r", "enter")

	if m.Result == nil || m.Result.Mode != nodegroup.NotOptional || m.Result.Delete {
		t.Errorf("result = %+v, want none/false", m.Result)
	}
}

func TestModelCancel(t *testing.T) {
	g, l := linkWith(t, nodegroup.NotOptional)
	m := run(NewModel(New(l, g, nil)), "j", "esc")

	if m.Result != nil {
		t.Errorf("cancel produced %+v", m.Result)
	}
	if m.Editor.State() != Closed {
		t.Error("cancel should close the editor")
	}
}

func TestModelView(t *testing.T) {
	g, l := linkWith(t, nodegroup.OptionalForward)
	out := NewModel(New(l, g, nil)).View()

	for _, want := range []string{"?Battery-- cell --?Cell", "forward (normal)", "Delete"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
