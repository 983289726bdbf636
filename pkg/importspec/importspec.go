// Package importspec describes how columns of an input table map onto the
// properties of a node group.
//
// A Table is the mapping side of a graph-query document. The document only
// needs two things from it: the list of node-group properties it maps
// ([Table.MappedElements]) and its serialized form ([Table.ToPayload]).
//
// Each mapping is a sequence of column and text fragments that are
// concatenated after their transforms run:
//
//	t := importspec.NewTable("http://kdl.ge.com/batterydemo")
//	t.AddColumn("col_0", "cell_color")
//	t.Map("?Cell", "http://kdl.ge.com/batterydemo#color", importspec.Column("col_0"))
package importspec

import (
	"bytes"
	"encoding/json"

	"github.com/7eVeNcO/semtk/pkg/errors"
	"github.com/7eVeNcO/semtk/pkg/nodegroup"
)

// FormatVersion is the import spec version written by ToPayload.
const FormatVersion = 1

// Transform types.
const (
	TransformReplaceAll = "replaceAll"
	TransformToUpper    = "toUpperCase"
	TransformToLower    = "toLowerCase"
)

// ColumnDef is an input column.
type ColumnDef struct {
	ID   string `json:"colId"`
	Name string `json:"colName"`
}

// TextDef is a constant text fragment.
type TextDef struct {
	ID   string `json:"textId"`
	Text string `json:"text"`
}

// TransformDef is a named value transform.
type TransformDef struct {
	ID   string `json:"transId"`
	Name string `json:"name"`
	Type string `json:"transType"`
	Arg1 string `json:"arg1,omitempty"`
	Arg2 string `json:"arg2,omitempty"`
}

// Mapping is one fragment of a mapped value. Exactly one of ColumnID and
// TextID is set.
type Mapping struct {
	ColumnID   string   `json:"colId,omitempty"`
	TextID     string   `json:"textId,omitempty"`
	Transforms []string `json:"transformList,omitempty"`
}

// Column returns a fragment that reads the column with the given id.
func Column(id string, transforms ...string) Mapping {
	return Mapping{ColumnID: id, Transforms: transforms}
}

// Text returns a fragment that emits the text with the given id.
func Text(id string) Mapping {
	return Mapping{TextID: id}
}

// PropMapping maps fragments onto one property of a node.
type PropMapping struct {
	URIRelation string    `json:"URIRelation"`
	Mapping     []Mapping `json:"mapping"`
}

// NodeMapping holds the property mappings of a node. Mapping, when set,
// builds the node's own URI.
type NodeMapping struct {
	SparqlID string        `json:"sparqlID"`
	Type     string        `json:"type"`
	Mapping  []Mapping     `json:"mapping,omitempty"`
	Props    []PropMapping `json:"props"`
}

// Table is an import spec.
type Table struct {
	Version    int            `json:"version"`
	BaseURI    string         `json:"baseURI,omitempty"`
	Columns    []ColumnDef    `json:"columns"`
	Texts      []TextDef      `json:"texts"`
	Transforms []TransformDef `json:"transforms"`
	Nodes      []NodeMapping  `json:"nodes"`
}

// NewTable creates an empty import spec.
func NewTable(baseURI string) *Table {
	return &Table{Version: FormatVersion, BaseURI: baseURI}
}

// AddColumn declares an input column.
func (t *Table) AddColumn(id, name string) *Table {
	t.Columns = append(t.Columns, ColumnDef{ID: id, Name: name})
	return t
}

// AddText declares a constant text fragment.
func (t *Table) AddText(id, text string) *Table {
	t.Texts = append(t.Texts, TextDef{ID: id, Text: text})
	return t
}

// AddTransform declares a transform.
func (t *Table) AddTransform(def TransformDef) *Table {
	t.Transforms = append(t.Transforms, def)
	return t
}

// Map sets the fragments of a node property, replacing any previous
// mapping of the same property.
func (t *Table) Map(nodeID, uriRelation string, fragments ...Mapping) *Table {
	nm := t.node(nodeID)
	for i := range nm.Props {
		if nm.Props[i].URIRelation == uriRelation {
			nm.Props[i].Mapping = fragments
			return t
		}
	}
	nm.Props = append(nm.Props, PropMapping{URIRelation: uriRelation, Mapping: fragments})
	return t
}

func (t *Table) node(id string) *NodeMapping {
	for i := range t.Nodes {
		if t.Nodes[i].SparqlID == id {
			return &t.Nodes[i]
		}
	}
	t.Nodes = append(t.Nodes, NodeMapping{SparqlID: id, Props: []PropMapping{}})
	return &t.Nodes[len(t.Nodes)-1]
}

// MappedElements returns every property with a non-empty mapping, in
// declaration order.
func (t *Table) MappedElements() []nodegroup.PropRef {
	if t == nil {
		return nil
	}
	var refs []nodegroup.PropRef
	for _, n := range t.Nodes {
		for _, p := range n.Props {
			if len(p.Mapping) > 0 {
				refs = append(refs, nodegroup.PropRef{NodeID: n.SparqlID, URIRelation: p.URIRelation})
			}
		}
	}
	return refs
}

// Validate checks that every fragment names exactly one existing column
// or text and that every transform it lists is declared.
func (t *Table) Validate() error {
	cols := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		cols[c.ID] = true
	}
	texts := make(map[string]bool, len(t.Texts))
	for _, x := range t.Texts {
		texts[x.ID] = true
	}
	transforms := make(map[string]bool, len(t.Transforms))
	for _, x := range t.Transforms {
		transforms[x.ID] = true
	}

	check := func(where string, ms []Mapping) error {
		for _, m := range ms {
			switch {
			case (m.ColumnID == "") == (m.TextID == ""):
				return errors.New(errors.ErrCodeInvalidMapping, "%s: fragment must name exactly one column or text", where)
			case m.ColumnID != "" && !cols[m.ColumnID]:
				return errors.New(errors.ErrCodeInvalidMapping, "%s: unknown column %q", where, m.ColumnID)
			case m.TextID != "" && !texts[m.TextID]:
				return errors.New(errors.ErrCodeInvalidMapping, "%s: unknown text %q", where, m.TextID)
			}
			for _, id := range m.Transforms {
				if !transforms[id] {
					return errors.New(errors.ErrCodeInvalidMapping, "%s: unknown transform %q", where, id)
				}
			}
		}
		return nil
	}

	for _, n := range t.Nodes {
		if err := errors.ValidateSparqlID(n.SparqlID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidMapping, err, "node mapping")
		}
		if err := check(n.SparqlID, n.Mapping); err != nil {
			return err
		}
		for _, p := range n.Props {
			ref := nodegroup.PropRef{NodeID: n.SparqlID, URIRelation: p.URIRelation}
			if err := check(ref.String(), p.Mapping); err != nil {
				return err
			}
		}
	}
	return nil
}

// ToPayload serializes the table.
func (t *Table) ToPayload() (json.RawMessage, error) {
	out := *t
	if out.Version == 0 {
		out.Version = FormatVersion
	}
	// Empty lists are written as [] rather than null.
	if out.Columns == nil {
		out.Columns = []ColumnDef{}
	}
	if out.Texts == nil {
		out.Texts = []TextDef{}
	}
	if out.Transforms == nil {
		out.Transforms = []TransformDef{}
	}
	if out.Nodes == nil {
		out.Nodes = []NodeMapping{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "encode import spec")
	}
	return data, nil
}

// FromPayload decodes a table written by ToPayload.
func FromPayload(payload json.RawMessage) (*Table, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New(errors.ErrCodeDecode, "import spec payload is empty")
	}
	var t Table
	if err := json.Unmarshal(trimmed, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode import spec")
	}
	if t.Version > FormatVersion {
		return nil, errors.New(errors.ErrCodeUnsupported, "import spec version %d is newer than %d", t.Version, FormatVersion)
	}
	return &t, nil
}
