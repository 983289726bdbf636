// Package linkedit edits the optional mode and delete intent of one link.
//
// An [Editor] is a two-state machine. [Editor.Present] opens it with the
// selection preset to the link's current mode; [Editor.Confirm] closes it
// and returns the decision as an [Edit]. The editor never mutates the
// link or the node group: applying an Edit is up to the caller, usually
// through [Edit.Apply].
//
//	ed := linkedit.New(link, ng, nil)
//	ed.Present()
//	ed.Select(nodegroup.OptionalForward)
//	if edit, ok := ed.Confirm(); ok {
//	    err = edit.Apply(ng)
//	}
//
// [Model] drives the same editor from a terminal with bubbletea.
package linkedit

import (
	"unicode/utf8"

	"github.com/7eVeNcO/semtk/pkg/nodegroup"
)

// MinWidth is the narrowest the editor is presented.
const MinWidth = 40

// State is the editor state.
type State int

const (
	// Closed is the initial state, and the state after Confirm or Cancel.
	Closed State = iota
	// Open accepts selection and delete changes.
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// OptionalityReader reports the current optional mode of a link.
// *nodegroup.NodeGroup implements it.
type OptionalityReader interface {
	LinkOptional(l nodegroup.Link) nodegroup.Optional
}

// Choice is one entry of the mode selector.
type Choice struct {
	Mode  nodegroup.Optional
	Label string
}

// Choices are the selector entries in presentation order.
var Choices = []Choice{
	{Mode: nodegroup.NotOptional, Label: "not optional"},
	{Mode: nodegroup.OptionalForward, Label: "forward (normal)"},
	{Mode: nodegroup.OptionalReverse, Label: "reverse"},
}

// View is what an open editor shows.
type View struct {
	Title    string
	Width    int
	Choices  []Choice
	Selected nodegroup.Optional
	Delete   bool
}

// Edit is a confirmed decision about one link.
type Edit struct {
	Source  *nodegroup.Node
	Item    *nodegroup.NodeItem
	Target  *nodegroup.Node
	Context any
	Mode    nodegroup.Optional
	Delete  bool
}

// Link returns the edited link.
func (e Edit) Link() nodegroup.Link {
	return nodegroup.Link{Source: e.Source, Item: e.Item, Target: e.Target}
}

// Apply removes the link when Delete is set, otherwise sets its mode.
func (e Edit) Apply(g *nodegroup.NodeGroup) error {
	l := e.Link()
	if e.Delete {
		if !g.RemoveLink(l) {
			return nodegroup.ErrUnknownLink
		}
		return nil
	}
	return g.SetLinkOptional(l, e.Mode)
}

// Editor edits one link. It is not safe for concurrent use.
type Editor struct {
	link    nodegroup.Link
	graph   OptionalityReader
	context any

	state    State
	selected nodegroup.Optional
	del      bool
}

// New binds an editor to link. context is returned unchanged in the Edit.
// The editor starts closed.
func New(link nodegroup.Link, graph OptionalityReader, context any) *Editor {
	return &Editor{link: link, graph: graph, context: context}
}

// Present opens the editor with the selection set to the link's current
// mode and delete unchecked.
func (e *Editor) Present() View {
	e.selected = nodegroup.NotOptional
	if e.graph != nil {
		e.selected = e.graph.LinkOptional(e.link)
	}
	e.del = false
	e.state = Open
	return e.View()
}

// View returns the current presentation without changing state.
func (e *Editor) View() View {
	title := Title(e.link)
	return View{
		Title:    title,
		Width:    Width(title),
		Choices:  Choices,
		Selected: e.selected,
		Delete:   e.del,
	}
}

// State returns the editor state.
func (e *Editor) State() State { return e.state }

// Select sets the mode selector. It is ignored while closed.
func (e *Editor) Select(o nodegroup.Optional) error {
	if !o.Valid() {
		return nodegroup.ErrInvalidOptional
	}
	if e.state == Open {
		e.selected = o
	}
	return nil
}

// SelectNext moves the selector down one choice, wrapping around.
func (e *Editor) SelectNext() { e.step(1) }

// SelectPrev moves the selector up one choice, wrapping around.
func (e *Editor) SelectPrev() { e.step(-1) }

func (e *Editor) step(delta int) {
	if e.state != Open {
		return
	}
	i := 0
	for j, c := range Choices {
		if c.Mode == e.selected {
			i = j
			break
		}
	}
	i = (i + delta + len(Choices)) % len(Choices)
	e.selected = Choices[i].Mode
}

// SetDelete sets the delete checkbox. It is ignored while closed.
func (e *Editor) SetDelete(del bool) {
	if e.state == Open {
		e.del = del
	}
}

// ToggleDelete flips the delete checkbox.
func (e *Editor) ToggleDelete() { e.SetDelete(!e.del) }

// Reset restores not optional and unchecked. The editor stays open.
func (e *Editor) Reset() {
	if e.state != Open {
		return
	}
	e.selected = nodegroup.NotOptional
	e.del = false
}

// Confirm closes the editor and returns the decision. It returns false
// when the editor is not open.
func (e *Editor) Confirm() (Edit, bool) {
	if e.state != Open {
		return Edit{}, false
	}
	e.state = Closed
	return Edit{
		Source:  e.link.Source,
		Item:    e.link.Item,
		Target:  e.link.Target,
		Context: e.context,
		Mode:    e.selected,
		Delete:  e.del,
	}, true
}

// Cancel closes the editor without producing an edit.
func (e *Editor) Cancel() { e.state = Closed }

// Title returns "<source>-- <item> --<target>".
func Title(l nodegroup.Link) string {
	var src, item, tgt string
	if l.Source != nil {
		src = l.Source.SparqlID
	}
	if l.Item != nil {
		item = l.Item.KeyName
	}
	if l.Target != nil {
		tgt = l.Target.SparqlID
	}
	return src + "-- " + item + " --" + tgt
}

// Width scales the title length by 1.3, never going below MinWidth.
func Width(title string) int {
	return max(MinWidth, utf8.RuneCountInString(title)*13/10)
}
