package document

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/7eVeNcO/semtk/pkg/conn"
	"github.com/7eVeNcO/semtk/pkg/errors"
	"github.com/7eVeNcO/semtk/pkg/importspec"
	"github.com/7eVeNcO/semtk/pkg/nodegroup"
	"github.com/7eVeNcO/semtk/pkg/ontology"
)

const ns = "http://kdl.ge.com/batterydemo#"

func testConn() *conn.Connection {
	return conn.New("battery demo").
		AddModel(conn.ServerFuseki, "http://localhost:3030", "model").
		AddData(conn.ServerFuseki, "http://localhost:3030", "data")
}

// abcGroup builds one node ?Thing with properties a, b and c.
func abcGroup(t *testing.T) *nodegroup.NodeGroup {
	t.Helper()
	g := nodegroup.New()
	n := nodegroup.NewNode("?Thing", ns+"Thing")
	for _, name := range []string{"a", "b", "c"} {
		n.AddProp(&nodegroup.PropertyItem{KeyName: name, ValueType: "string", URIRelation: ns + name})
	}
	if err := g.AddNode(n); err != nil {
		t.Fatal(err)
	}
	return g
}

// bMapped maps only ?Thing.b.
func bMapped() *importspec.Table {
	tbl := importspec.NewTable("").AddColumn("col_0", "b")
	tbl.Map("?Thing", ns+"b", importspec.Column("col_0"))
	return tbl
}

func graphProps(t *testing.T, d *Document) []string {
	t.Helper()
	g := nodegroup.New()
	ok, err := d.Graph(g, nil)
	if err != nil || !ok {
		t.Fatalf("Graph = %v, %v", ok, err)
	}
	var names []string
	for _, n := range g.Nodes() {
		for _, p := range n.Props {
			names = append(names, p.KeyName)
		}
	}
	return names
}

func TestNewDensity(t *testing.T) {
	tests := []struct {
		name    string
		deflate bool
		want    string
	}{
		{name: "Deflated", deflate: true, want: "b"},
		{name: "Full", deflate: false, want: "a,b,c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(WithGraph(abcGroup(t)), WithMapping(bMapped()), WithDeflate(tt.deflate))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := strings.Join(graphProps(t, d), ","); got != tt.want {
				t.Errorf("props = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewDeflatedWithoutMapping(t *testing.T) {
	d, err := New(WithGraph(abcGroup(t)), Deflated())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := graphProps(t, d); len(got) != 0 {
		t.Errorf("props = %v, want none", got)
	}
	if d.HasMapping() {
		t.Error("mapping should be absent")
	}
}

func TestNewMappingNeverDeflated(t *testing.T) {
	full, _ := New(WithMapping(bMapped()))
	deflated, _ := New(WithMapping(bMapped()), Deflated())

	a, _ := full.MappingJSON()
	b, _ := deflated.MappingJSON()
	if !bytes.Equal(a, b) {
		t.Errorf("mapping differs by density:\n%s\n%s", a, b)
	}
}

func TestNewPartial(t *testing.T) {
	tests := []struct {
		name                   string
		opts                   []Option
		wantConn, wantG, wantM bool
	}{
		{name: "Empty"},
		{name: "ConnectionOnly", opts: []Option{WithConnection(testConn())}, wantConn: true},
		{name: "MappingOnly", opts: []Option{WithMapping(bMapped())}, wantM: true},
		{name: "ConnectionAndMapping", opts: []Option{WithConnection(testConn()), WithMapping(bMapped())}, wantConn: true, wantM: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.opts...)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if d.HasConnection() != tt.wantConn || d.HasGraph() != tt.wantG || d.HasMapping() != tt.wantM {
				t.Errorf("has = %v/%v/%v, want %v/%v/%v",
					d.HasConnection(), d.HasGraph(), d.HasMapping(), tt.wantConn, tt.wantG, tt.wantM)
			}

			// Round trip keeps the same subset.
			data, err := d.Marshal()
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			back, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !back.Payload().Equal(d.Payload()) {
				t.Errorf("round trip changed payload:\n%s", data)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, deflate := range []bool{false, true} {
		d, err := New(
			WithConnection(testConn()),
			WithGraph(abcGroup(t)),
			WithMapping(bMapped()),
			WithDeflate(deflate),
		)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		data, err := d.Marshal()
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		back, err := Parse(data)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !back.Payload().Equal(d.Payload()) {
			t.Errorf("deflate=%v: payload changed", deflate)
		}
		again, _ := back.Marshal()
		if !bytes.Equal(again, data) {
			t.Errorf("deflate=%v: text not stable", deflate)
		}
	}
}

func TestMarshalFormat(t *testing.T) {
	d, _ := New(WithConnection(conn.New("x")))
	data, err := d.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	ci := strings.Index(text, `"connection"`)
	gi := strings.Index(text, `"graph"`)
	mi := strings.Index(text, `"mapping"`)
	if ci < 0 || ci >= gi || gi >= mi {
		t.Errorf("key order wrong:\n%s", text)
	}
	if !strings.Contains(text, "\n\t\"graph\": null") {
		t.Errorf("expected tab indent and null graph:\n%s", text)
	}
	if !strings.Contains(text, "\n\t\t\"name\": \"x\"") {
		t.Errorf("nested content should be indented with tabs:\n%s", text)
	}
}

func TestParseKeyOrder(t *testing.T) {
	a := `{"connection": {"name":"x"}, "graph": null, "mapping": {"version":1}}`
	b := `{"mapping": {"version": 1}, "connection": {"name": "x"}}`

	da, err := Parse([]byte(a))
	if err != nil {
		t.Fatal(err)
	}
	db, err := Parse([]byte(b))
	if err != nil {
		t.Fatal(err)
	}
	if !da.Payload().Equal(db.Payload()) {
		t.Error("key order or whitespace changed the payload")
	}
}

func TestParseLegacyKeys(t *testing.T) {
	legacy := `{"sparqlConn": {"name":"x"}, "sNodeGroup": {"version":1,"sNodeList":[]}, "importSpec": null}`
	current := `{"connection": {"name":"x"}, "graph": {"version":1,"sNodeList":[]}, "mapping": null}`

	dl, err := Parse([]byte(legacy))
	if err != nil {
		t.Fatal(err)
	}
	dc, _ := Parse([]byte(current))
	if !dl.Payload().Equal(dc.Payload()) {
		t.Error("legacy keys should parse into the same payload")
	}
	if dl.HasMapping() {
		t.Error("null legacy mapping should be absent")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Null", "null"},
		{"Array", "[]"},
		{"String", `"doc"`},
		{"Truncated", `{"connection": {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, errors.ErrCodeDecode) {
				t.Errorf("err = %v, want DECODE_ERROR", err)
			}
		})
	}
}

func TestConnection(t *testing.T) {
	d, _ := New(WithConnection(testConn()))
	c, err := d.Connection()
	if err != nil {
		t.Fatalf("Connection: %v", err)
	}
	if !c.Equal(testConn()) {
		t.Errorf("connection = %+v", c)
	}
}

func TestConnectionAbsent(t *testing.T) {
	d, _ := New(WithGraph(abcGroup(t)))
	if _, err := d.Connection(); !errors.Is(err, errors.ErrCodeDecode) {
		t.Errorf("err = %v, want DECODE_ERROR", err)
	}
}

func TestGraphAbsent(t *testing.T) {
	d, _ := New(WithConnection(testConn()))
	target := abcGroup(t)
	target.SetConnection(conn.New("stale"))

	ok, err := d.Graph(target, nil)
	if err != nil || ok {
		t.Fatalf("Graph = %v, %v; want false, nil", ok, err)
	}
	if target.NodeCount() != 0 || target.Connection() != nil {
		t.Error("target should be cleared")
	}
}

func TestGraphAttachesConnection(t *testing.T) {
	d, _ := New(WithConnection(testConn()), WithGraph(abcGroup(t)))
	target := nodegroup.New()

	ok, err := d.Graph(target, nil)
	if err != nil || !ok {
		t.Fatalf("Graph = %v, %v", ok, err)
	}
	if c := target.Connection(); c == nil || c.Name != "battery demo" {
		t.Errorf("connection = %+v", c)
	}
}

func TestGraphWithoutConnection(t *testing.T) {
	d, _ := New(WithGraph(abcGroup(t)))
	target := nodegroup.New()
	target.SetConnection(conn.New("stale"))

	if ok, err := d.Graph(target, nil); err != nil || !ok {
		t.Fatalf("Graph = %v, %v", ok, err)
	}
	if target.Connection() != nil {
		t.Error("no connection should be attached")
	}
}

func TestGraphMalformed(t *testing.T) {
	d := FromPayload(Payload{Graph: json.RawMessage(`{"version":1,"sNodeList":[{"SparqlID":"bad"}]}`)})
	target := nodegroup.New()
	if _, err := d.Graph(target, nil); !errors.Is(err, errors.ErrCodeDecode) {
		t.Errorf("err = %v, want DECODE_ERROR", err)
	}
}

func TestGraphMalformedConnection(t *testing.T) {
	full, _ := New(WithGraph(abcGroup(t)))
	d := FromPayload(Payload{
		Connection: json.RawMessage(`"not a connection"`),
		Graph:      full.Payload().Graph,
	})
	target := nodegroup.New()

	ok, err := d.Graph(target, nil)
	if ok || !errors.Is(err, errors.ErrCodeDecode) {
		t.Fatalf("Graph = %v, %v; want false, DECODE_ERROR", ok, err)
	}
	if target.NodeCount() != 0 {
		t.Errorf("target has %d nodes after a failed load, want 0", target.NodeCount())
	}
}

func TestGraphLegacyVersion(t *testing.T) {
	d, err := Parse([]byte(`{"sparqlConn": null, "sNodeGroup": {"version": 12, "sNodeList": []}, "importSpec": null}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !d.HasGraph() {
		t.Fatal("legacy graph key not read")
	}
	if _, err := d.Graph(nodegroup.New(), nil); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

func TestGraphInflate(t *testing.T) {
	oinfo := ontology.New()
	err := oinfo.AddClass(ontology.Class{
		URI: ns + "Thing",
		Properties: []ontology.Property{
			{URI: ns + "a", Range: "http://www.w3.org/2001/XMLSchema#string"},
			{URI: ns + "b", Range: "http://www.w3.org/2001/XMLSchema#string"},
			{URI: ns + "c", Range: "http://www.w3.org/2001/XMLSchema#string"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	d, _ := New(WithGraph(abcGroup(t)), WithMapping(bMapped()), Deflated())
	target := nodegroup.New()
	if _, err := d.Graph(target, oinfo); err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if target.PropCount() != 3 {
		t.Errorf("PropCount = %d, want 3 after inflation", target.PropCount())
	}
}

func TestSetConnection(t *testing.T) {
	d, _ := New(WithGraph(abcGroup(t)), WithMapping(bMapped()))
	before := d.Payload()

	if err := d.SetConnection(conn.New("replacement")); err != nil {
		t.Fatalf("SetConnection: %v", err)
	}
	after := d.Payload()
	if !bytes.Equal(before.Graph, after.Graph) || !bytes.Equal(before.Mapping, after.Mapping) {
		t.Error("SetConnection touched graph or mapping")
	}
	c, err := d.Connection()
	if err != nil || c.Name != "replacement" {
		t.Errorf("Connection = %+v, %v", c, err)
	}
}

func TestMappingJSONAbsent(t *testing.T) {
	d, _ := New()
	if m, ok := d.MappingJSON(); ok || m != nil {
		t.Errorf("MappingJSON = %s, %v", m, ok)
	}
}

func TestPayloadIsCopy(t *testing.T) {
	d, _ := New(WithConnection(conn.New("x")))
	p := d.Payload()
	p.Connection[0] = '['
	if !d.HasConnection() || d.Payload().Connection[0] != '{' {
		t.Error("Payload must return a copy")
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	d, _ := New(WithConnection(testConn()), WithGraph(abcGroup(t)))

	if err := d.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !bytes.HasSuffix(raw, []byte("}\n")) {
		t.Error("file should end with a newline")
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !back.Payload().Equal(d.Payload()) {
		t.Error("file round trip changed payload")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error")
	}
}
