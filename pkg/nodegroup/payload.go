package nodegroup

import (
	"bytes"
	"encoding/json"

	"github.com/7eVeNcO/semtk/pkg/errors"
	"github.com/7eVeNcO/semtk/pkg/ontology"
)

// FormatVersion is the node group payload version written by ToPayload.
const FormatVersion = 1

type wireGroup struct {
	Version  int        `json:"version"`
	Deflated bool       `json:"deflated,omitempty"`
	Nodes    []wireNode `json:"sNodeList"`
}

type wireNode struct {
	SparqlID string     `json:"SparqlID"`
	ClassURI string     `json:"fullURIName"`
	Name     string     `json:"NodeName"`
	Returned bool       `json:"isReturned"`
	Props    []wireProp `json:"propList"`
	Items    []wireItem `json:"nodeList"`
}

type wireProp struct {
	KeyName     string `json:"KeyName"`
	ValueType   string `json:"valueType"`
	URIRelation string `json:"UriRelationship"`
	SparqlID    string `json:"SparqlID,omitempty"`
	Returned    bool   `json:"isReturned"`
	Optional    bool   `json:"optMinus"`
	Constraint  string `json:"Constraints,omitempty"`
}

type wireItem struct {
	KeyName      string     `json:"KeyName"`
	ValueType    string     `json:"ValueType"`
	URIConnectBy string     `json:"UriConnectBy"`
	Targets      []string   `json:"SnodeSparqlIDs"`
	Optional     []Optional `json:"OptionalMinus"`
	Connected    bool       `json:"Connected"`
}

// ToPayload serializes the group.
//
// With deflate set, only the properties named in mapped and the node items
// that have at least one target are written. Nodes are always written in
// insertion order.
func (g *NodeGroup) ToPayload(deflate bool, mapped []PropRef) (json.RawMessage, error) {
	keep := make(map[PropRef]bool, len(mapped))
	for _, r := range mapped {
		keep[r] = true
	}

	w := wireGroup{Version: FormatVersion, Deflated: deflate, Nodes: make([]wireNode, 0, len(g.nodes))}
	for _, n := range g.nodes {
		wn := wireNode{
			SparqlID: n.SparqlID,
			ClassURI: n.ClassURI,
			Name:     n.Name(),
			Returned: n.Returned,
			Props:    []wireProp{},
			Items:    []wireItem{},
		}
		for _, p := range n.Props {
			if deflate && !keep[PropRef{NodeID: n.SparqlID, URIRelation: p.URIRelation}] {
				continue
			}
			wn.Props = append(wn.Props, wireProp{
				KeyName:     p.KeyName,
				ValueType:   p.ValueType,
				URIRelation: p.URIRelation,
				SparqlID:    p.SparqlID,
				Returned:    p.Returned,
				Optional:    p.Optional,
				Constraint:  p.Constraint,
			})
		}
		for _, it := range n.Items {
			if deflate && !it.Connected() {
				continue
			}
			wi := wireItem{
				KeyName:      it.KeyName,
				ValueType:    it.ValueType,
				URIConnectBy: it.URIConnectBy,
				Targets:      make([]string, 0, len(it.targets)),
				Optional:     append([]Optional{}, it.optional...),
				Connected:    it.Connected(),
			}
			for _, t := range it.targets {
				wi.Targets = append(wi.Targets, t.SparqlID)
			}
			wn.Items = append(wn.Items, wi)
		}
		w.Nodes = append(w.Nodes, wn)
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "encode node group")
	}
	return data, nil
}

// AddFromPayload decodes a payload written by ToPayload and adds its nodes
// to the group. The group is left unchanged when an error is returned.
//
// When oinfo is non-nil, every node is inflated: properties and node items
// the ontology declares for the node's class but the payload lacks are
// added with default settings.
func (g *NodeGroup) AddFromPayload(payload json.RawMessage, oinfo *ontology.Info) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errors.New(errors.ErrCodeDecode, "node group payload is empty")
	}

	var w wireGroup
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return errors.Wrap(errors.ErrCodeDecode, err, "decode node group")
	}
	if w.Version > FormatVersion {
		return errors.New(errors.ErrCodeUnsupported, "node group version %d is newer than %d", w.Version, FormatVersion)
	}

	// First pass: build nodes and check ids.
	staged := make(map[string]*Node, len(w.Nodes))
	nodes := make([]*Node, 0, len(w.Nodes))
	for _, wn := range w.Nodes {
		if err := errors.ValidateSparqlID(wn.SparqlID); err != nil {
			return errors.Wrap(errors.ErrCodeDecode, err, "decode node group")
		}
		if _, dup := g.byID[wn.SparqlID]; dup {
			return errors.Wrap(errors.ErrCodeDecode, ErrDuplicateSparqlID, "node %s", wn.SparqlID)
		}
		if _, dup := staged[wn.SparqlID]; dup {
			return errors.Wrap(errors.ErrCodeDecode, ErrDuplicateSparqlID, "node %s", wn.SparqlID)
		}
		n := NewNode(wn.SparqlID, wn.ClassURI)
		n.Returned = wn.Returned
		for _, wp := range wn.Props {
			n.AddProp(&PropertyItem{
				KeyName:     wp.KeyName,
				ValueType:   wp.ValueType,
				URIRelation: wp.URIRelation,
				SparqlID:    wp.SparqlID,
				Returned:    wp.Returned,
				Optional:    wp.Optional,
				Constraint:  wp.Constraint,
			})
		}
		staged[n.SparqlID] = n
		nodes = append(nodes, n)
	}

	// Second pass: resolve link targets now that every node exists.
	for i, wn := range w.Nodes {
		n := nodes[i]
		for _, wi := range wn.Items {
			it := NewNodeItem(wi.KeyName, wi.ValueType, wi.URIConnectBy)
			for j, id := range wi.Targets {
				tgt, ok := staged[id]
				if !ok {
					return errors.Wrap(errors.ErrCodeDecode, ErrUnknownNode, "item %s of %s targets %s", wi.KeyName, n.SparqlID, id)
				}
				o := NotOptional
				if j < len(wi.Optional) {
					o = wi.Optional[j]
				}
				it.connect(tgt, o)
			}
			n.AddItem(it)
		}
	}

	if oinfo != nil {
		for _, n := range nodes {
			inflate(n, oinfo)
		}
	}

	for _, n := range nodes {
		g.nodes = append(g.nodes, n)
		g.byID[n.SparqlID] = n
	}
	return nil
}

func inflate(n *Node, oinfo *ontology.Info) {
	for _, p := range oinfo.PropertiesOf(n.ClassURI) {
		if oinfo.IsObjectProperty(p) {
			if hasItem(n, p.URI) {
				continue
			}
			n.AddItem(NewNodeItem(ontology.LocalName(p.URI), p.Range, p.URI))
			continue
		}
		if _, ok := n.Prop(p.URI); ok {
			continue
		}
		n.AddProp(&PropertyItem{
			KeyName:     ontology.LocalName(p.URI),
			ValueType:   ontology.LocalName(p.Range),
			URIRelation: p.URI,
		})
	}
}

// hasItem matches by connecting URI, or by key name for items created
// through Connect without one.
func hasItem(n *Node, uri string) bool {
	name := ontology.LocalName(uri)
	for _, it := range n.Items {
		if it.URIConnectBy == uri || (it.URIConnectBy == "" && it.KeyName == name) {
			return true
		}
	}
	return false
}
