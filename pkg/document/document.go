package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/7eVeNcO/semtk/pkg/conn"
	"github.com/7eVeNcO/semtk/pkg/errors"
	"github.com/7eVeNcO/semtk/pkg/nodegroup"
	"github.com/7eVeNcO/semtk/pkg/ontology"
)

// ConnectionEncoder serializes a connection.
type ConnectionEncoder interface {
	ToPayload() (json.RawMessage, error)
}

// GraphEncoder serializes a node group, optionally restricted to mapped elements.
type GraphEncoder interface {
	ToPayload(deflate bool, mapped []nodegroup.PropRef) (json.RawMessage, error)
}

// MappingTable reports which graph elements it maps and serializes itself.
type MappingTable interface {
	MappedElements() []nodegroup.PropRef
	ToPayload() (json.RawMessage, error)
}

// GraphTarget receives a graph loaded from a document.
type GraphTarget interface {
	Clear()
	AddFromPayload(payload json.RawMessage, oinfo *ontology.Info) error
	SetConnection(c *conn.Connection)
}

// Document is a portable graph-query document.
// A Document is not safe for concurrent mutation.
type Document struct {
	payload Payload
}

type options struct {
	conn    ConnectionEncoder
	graph   GraphEncoder
	mapping MappingTable
	deflate bool
}

// Option configures New.
type Option func(*options)

// WithConnection stores c in the document.
func WithConnection(c ConnectionEncoder) Option {
	return func(o *options) { o.conn = c }
}

// WithGraph stores g in the document.
func WithGraph(g GraphEncoder) Option {
	return func(o *options) { o.graph = g }
}

// WithMapping stores m in the document. The mapping is always written in
// full; with Deflated it also decides which graph elements are kept.
func WithMapping(m MappingTable) Option {
	return func(o *options) { o.mapping = m }
}

// Deflated encodes the graph in its size-reduced form.
func Deflated() Option {
	return WithDeflate(true)
}

// WithDeflate sets the graph density.
func WithDeflate(deflate bool) Option {
	return func(o *options) { o.deflate = deflate }
}

// New builds a document. Fields whose option is omitted stay absent.
func New(opts ...Option) (*Document, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	d := &Document{}
	if o.conn != nil {
		if err := d.SetConnection(o.conn); err != nil {
			return nil, err
		}
	}
	if o.graph != nil {
		var mapped []nodegroup.PropRef
		if o.deflate && o.mapping != nil {
			mapped = o.mapping.MappedElements()
		}
		raw, err := o.graph.ToPayload(o.deflate, mapped)
		if err != nil {
			return nil, fmt.Errorf("encode graph: %w", err)
		}
		if d.payload.Graph, err = field(raw); err != nil {
			return nil, err
		}
	}
	if o.mapping != nil {
		raw, err := o.mapping.ToPayload()
		if err != nil {
			return nil, fmt.Errorf("encode mapping: %w", err)
		}
		if d.payload.Mapping, err = field(raw); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// field normalizes a collaborator payload. A collaborator that encodes
// to null leaves the field absent.
func field(raw json.RawMessage) (json.RawMessage, error) {
	out, err := normalize(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "collaborator produced invalid JSON")
	}
	return out, nil
}

// FromPayload wraps an existing payload.
func FromPayload(p Payload) *Document {
	return &Document{payload: p.clone()}
}

// Payload returns a copy of the document's payload.
func (d *Document) Payload() Payload {
	return d.payload.clone()
}

// HasConnection reports whether a connection is stored.
func (d *Document) HasConnection() bool { return d.payload.Connection != nil }

// HasGraph reports whether a graph is stored.
func (d *Document) HasGraph() bool { return d.payload.Graph != nil }

// HasMapping reports whether a mapping is stored.
func (d *Document) HasMapping() bool { return d.payload.Mapping != nil }

// SetConnection replaces the stored connection. Graph and mapping are untouched.
func (d *Document) SetConnection(c ConnectionEncoder) error {
	raw, err := c.ToPayload()
	if err != nil {
		return fmt.Errorf("encode connection: %w", err)
	}
	out, err := field(raw)
	if err != nil {
		return err
	}
	d.payload.Connection = out
	return nil
}

// Connection decodes the stored connection. It fails with an
// [errors.ErrCodeDecode] error when no connection is stored.
func (d *Document) Connection() (*conn.Connection, error) {
	if d.payload.Connection == nil {
		return nil, errors.New(errors.ErrCodeDecode, "document has no connection")
	}
	return conn.FromPayload(d.payload.Connection)
}

// Graph clears target and loads the stored graph into it, inflating it
// with oinfo when non-nil. The document's connection, if any, is attached
// to target. With no stored graph, target is left empty and Graph returns
// false with no error. On error target is left empty.
func (d *Document) Graph(target GraphTarget, oinfo *ontology.Info) (bool, error) {
	target.Clear()
	if d.payload.Graph == nil {
		return false, nil
	}
	var c *conn.Connection
	if d.payload.Connection != nil {
		var err error
		if c, err = d.Connection(); err != nil {
			return false, err
		}
	}
	if err := target.AddFromPayload(d.payload.Graph, oinfo); err != nil {
		return false, fmt.Errorf("load graph: %w", err)
	}
	if c != nil {
		target.SetConnection(c)
	}
	return true, nil
}

// MappingJSON returns the stored mapping payload.
func (d *Document) MappingJSON() (json.RawMessage, bool) {
	if d.payload.Mapping == nil {
		return nil, false
	}
	return bytes.Clone(d.payload.Mapping), true
}

// Marshal encodes the document as tab-indented JSON with the keys in the
// order connection, graph, mapping.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write encodes the document to w followed by a newline.
func (d *Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(d.payload); err != nil {
		return errors.Wrap(errors.ErrCodeEncode, err, "encode document")
	}
	return nil
}

// WriteFile writes the document to path.
func (d *Document) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Parse decodes a document produced by Marshal.
func Parse(data []byte) (*Document, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode document")
	}
	return &Document{payload: p}, nil
}

// Read decodes a document from r. Read does not close r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data)
}

// ReadFile decodes the document at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
