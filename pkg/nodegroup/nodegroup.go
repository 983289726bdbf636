package nodegroup

import (
	"fmt"
	"slices"

	"github.com/7eVeNcO/semtk/pkg/conn"
	"github.com/7eVeNcO/semtk/pkg/errors"
	"github.com/7eVeNcO/semtk/pkg/ontology"
)

var (
	// ErrDuplicateSparqlID is returned by [NodeGroup.AddNode] when a node
	// with the same SPARQL id already exists in the group.
	ErrDuplicateSparqlID = errors.New(errors.ErrCodeInvalidSparqlID, "duplicate sparql id")

	// ErrUnknownNode is returned when an operation references a node that
	// is not part of the group.
	ErrUnknownNode = errors.New(errors.ErrCodeNodeNotFound, "node is not in the node group")

	// ErrUnknownLink is returned when a link's item is not connected to its target.
	ErrUnknownLink = errors.New(errors.ErrCodeLinkNotFound, "link does not exist")

	// ErrInvalidOptional is returned when an [Optional] outside the three modes is supplied.
	ErrInvalidOptional = errors.New(errors.ErrCodeInvalidOptional, "invalid optional mode")
)

// PropertyItem is a datatype property of a node.
type PropertyItem struct {
	KeyName     string // Display name, usually the local name of URIRelation
	ValueType   string // XSD type local name (e.g. "string", "int")
	URIRelation string // Full property URI
	SparqlID    string // Variable bound to the value; empty when unused
	Returned    bool   // Selected in query results
	Optional    bool   // Value may be missing
	Constraint  string // SPARQL value constraint, verbatim
}

// NodeItem is an object property of a node. It connects the owning node
// to zero or more targets, each with its own optional mode.
type NodeItem struct {
	KeyName      string // Display name of the relationship
	ValueType    string // Range class URI
	URIConnectBy string // Full property URI

	targets  []*Node
	optional []Optional
}

// NewNodeItem creates an unconnected node item.
func NewNodeItem(keyName, valueType, uriConnectBy string) *NodeItem {
	return &NodeItem{KeyName: keyName, ValueType: valueType, URIConnectBy: uriConnectBy}
}

// Targets returns the connected target nodes in connection order.
func (it *NodeItem) Targets() []*Node { return slices.Clone(it.targets) }

// Connected reports whether the item has at least one target.
func (it *NodeItem) Connected() bool { return len(it.targets) > 0 }

// OptionalFor returns the optional mode of the link to target.
// Unconnected targets report NotOptional.
func (it *NodeItem) OptionalFor(target *Node) Optional {
	if i := it.index(target); i >= 0 {
		return it.optional[i]
	}
	return NotOptional
}

func (it *NodeItem) index(target *Node) int {
	return slices.Index(it.targets, target)
}

func (it *NodeItem) connect(target *Node, o Optional) {
	if i := it.index(target); i >= 0 {
		it.optional[i] = o
		return
	}
	it.targets = append(it.targets, target)
	it.optional = append(it.optional, o)
}

func (it *NodeItem) disconnect(target *Node) bool {
	i := it.index(target)
	if i < 0 {
		return false
	}
	it.targets = slices.Delete(it.targets, i, i+1)
	it.optional = slices.Delete(it.optional, i, i+1)
	return true
}

// Node is a class instance variable in the query graph.
type Node struct {
	SparqlID string
	ClassURI string
	Returned bool
	Props    []*PropertyItem
	Items    []*NodeItem
}

// NewNode creates a node with no properties or items.
func NewNode(sparqlID, classURI string) *Node {
	return &Node{SparqlID: sparqlID, ClassURI: classURI}
}

// Name returns the local name of the node's class.
func (n *Node) Name() string { return ontology.LocalName(n.ClassURI) }

// Prop returns the property with the given URI.
func (n *Node) Prop(uriRelation string) (*PropertyItem, bool) {
	for _, p := range n.Props {
		if p.URIRelation == uriRelation {
			return p, true
		}
	}
	return nil, false
}

// Item returns the node item with the given key name.
func (n *Node) Item(keyName string) (*NodeItem, bool) {
	for _, it := range n.Items {
		if it.KeyName == keyName {
			return it, true
		}
	}
	return nil, false
}

// AddProp appends a property and returns the node for chaining.
func (n *Node) AddProp(p *PropertyItem) *Node {
	n.Props = append(n.Props, p)
	return n
}

// AddItem appends a node item and returns the node for chaining.
func (n *Node) AddItem(it *NodeItem) *Node {
	n.Items = append(n.Items, it)
	return n
}

// PropRef identifies a property of a node by SPARQL id and property URI.
// Mapping tables report the elements they map as PropRefs.
type PropRef struct {
	NodeID      string
	URIRelation string
}

// String returns "?Node.localName".
func (r PropRef) String() string {
	return r.NodeID + "." + ontology.LocalName(r.URIRelation)
}

// Link is one (source, item, target) connection.
type Link struct {
	Source *Node
	Item   *NodeItem
	Target *Node
}

// String returns "?Source -item-> ?Target".
func (l Link) String() string {
	if l.Source == nil || l.Item == nil || l.Target == nil {
		return "<invalid link>"
	}
	return fmt.Sprintf("%s -%s-> %s", l.Source.SparqlID, l.Item.KeyName, l.Target.SparqlID)
}

// NodeGroup is the query graph.
//
// The zero value is not usable - use New to create a valid NodeGroup.
type NodeGroup struct {
	nodes []*Node
	byID  map[string]*Node
	conn  *conn.Connection
}

// New creates an empty node group.
func New() *NodeGroup {
	return &NodeGroup{byID: make(map[string]*Node)}
}

// Clear removes every node and the attached connection.
func (g *NodeGroup) Clear() {
	g.nodes = nil
	g.byID = make(map[string]*Node)
	g.conn = nil
}

// SetConnection attaches the connection the group will be queried against.
func (g *NodeGroup) SetConnection(c *conn.Connection) { g.conn = c }

// Connection returns the attached connection, or nil.
func (g *NodeGroup) Connection() *conn.Connection { return g.conn }

// AddNode adds a node. The SPARQL id must be valid and unique in the group.
func (g *NodeGroup) AddNode(n *Node) error {
	if err := errors.ValidateSparqlID(n.SparqlID); err != nil {
		return err
	}
	if _, exists := g.byID[n.SparqlID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSparqlID, n.SparqlID)
	}
	g.nodes = append(g.nodes, n)
	g.byID[n.SparqlID] = n
	return nil
}

// Node returns the node with the given SPARQL id.
func (g *NodeGroup) Node(sparqlID string) (*Node, bool) {
	n, ok := g.byID[sparqlID]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *NodeGroup) Nodes() []*Node { return slices.Clone(g.nodes) }

// NodeCount returns the number of nodes.
func (g *NodeGroup) NodeCount() int { return len(g.nodes) }

// PropCount returns the number of properties across all nodes.
func (g *NodeGroup) PropCount() int {
	total := 0
	for _, n := range g.nodes {
		total += len(n.Props)
	}
	return total
}

func (g *NodeGroup) contains(n *Node) bool {
	return n != nil && g.byID[n.SparqlID] == n
}

// Connect links src to tgt through the node item named keyName, creating
// the item if src has none by that name. Connecting an existing link only
// updates its optional mode.
func (g *NodeGroup) Connect(src *Node, keyName string, tgt *Node, o Optional) (Link, error) {
	if !g.contains(src) || !g.contains(tgt) {
		return Link{}, ErrUnknownNode
	}
	if !o.Valid() {
		return Link{}, fmt.Errorf("%w: %d", ErrInvalidOptional, int(o))
	}
	it, ok := src.Item(keyName)
	if !ok {
		it = NewNodeItem(keyName, tgt.ClassURI, "")
		src.AddItem(it)
	}
	it.connect(tgt, o)
	return Link{Source: src, Item: it, Target: tgt}, nil
}

// Links returns every link ordered by source node, item, then target.
func (g *NodeGroup) Links() []Link {
	var links []Link
	for _, n := range g.nodes {
		for _, it := range n.Items {
			for _, t := range it.targets {
				links = append(links, Link{Source: n, Item: it, Target: t})
			}
		}
	}
	return links
}

// FindLink looks up a link by source id, item key name and target id.
func (g *NodeGroup) FindLink(sourceID, keyName, targetID string) (Link, bool) {
	src, ok := g.byID[sourceID]
	if !ok {
		return Link{}, false
	}
	tgt, ok := g.byID[targetID]
	if !ok {
		return Link{}, false
	}
	it, ok := src.Item(keyName)
	if !ok || it.index(tgt) < 0 {
		return Link{}, false
	}
	return Link{Source: src, Item: it, Target: tgt}, true
}

// LinkOptional returns the optional mode of l.
func (g *NodeGroup) LinkOptional(l Link) Optional {
	if l.Item == nil {
		return NotOptional
	}
	return l.Item.OptionalFor(l.Target)
}

// SetLinkOptional changes the optional mode of an existing link.
func (g *NodeGroup) SetLinkOptional(l Link, o Optional) error {
	if !o.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidOptional, int(o))
	}
	if l.Item == nil || l.Item.index(l.Target) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLink, l)
	}
	l.Item.connect(l.Target, o)
	return nil
}

// RemoveLink disconnects l. The node item itself stays on the source node.
// Reports whether a link was removed.
func (g *NodeGroup) RemoveLink(l Link) bool {
	if l.Item == nil {
		return false
	}
	return l.Item.disconnect(l.Target)
}

// RemoveNode deletes a node and every link that targets it.
// Reports whether the node existed.
func (g *NodeGroup) RemoveNode(sparqlID string) bool {
	n, ok := g.byID[sparqlID]
	if !ok {
		return false
	}
	for _, other := range g.nodes {
		for _, it := range other.Items {
			it.disconnect(n)
		}
	}
	g.nodes = slices.DeleteFunc(g.nodes, func(x *Node) bool { return x == n })
	delete(g.byID, sparqlID)
	return true
}
