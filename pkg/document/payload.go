package document

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/7eVeNcO/semtk/pkg/errors"
)

// Field keys, current and legacy.
const (
	keyConnection = "connection"
	keyGraph      = "graph"
	keyMapping    = "mapping"

	legacyConnection = "sparqlConn"
	legacyGraph      = "sNodeGroup"
	legacyMapping    = "importSpec"
)

// Payload is the in-memory form of a document. A nil field is absent.
type Payload struct {
	Connection json.RawMessage `json:"connection"`
	Graph      json.RawMessage `json:"graph"`
	Mapping    json.RawMessage `json:"mapping"`
}

// UnmarshalJSON decodes a document object. Keys may appear in any order,
// legacy key names are accepted, and null fields decode as absent.
func (p *Payload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New(errors.ErrCodeDecode, "document must be a JSON object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return errors.Wrap(errors.ErrCodeDecode, err, "decode document")
	}

	var out Payload
	var err error
	if out.Connection, err = pick(fields, keyConnection, legacyConnection); err != nil {
		return err
	}
	if out.Graph, err = pick(fields, keyGraph, legacyGraph); err != nil {
		return err
	}
	if out.Mapping, err = pick(fields, keyMapping, legacyMapping); err != nil {
		return err
	}
	*p = out
	return nil
}

// pick returns the field stored under key, falling back to legacy.
func pick(fields map[string]json.RawMessage, key, legacy string) (json.RawMessage, error) {
	raw, ok := fields[key]
	if !ok {
		raw = fields[legacy]
	}
	return normalize(raw)
}

// normalize compacts raw and maps null to absent.
func normalize(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode document field")
	}
	return buf.Bytes(), nil
}

// Equal reports whether p and o hold the same fields with the same content.
// Whitespace inside the fields is ignored.
func (p Payload) Equal(o Payload) bool {
	return sameField(p.Connection, o.Connection) &&
		sameField(p.Graph, o.Graph) &&
		sameField(p.Mapping, o.Mapping)
}

func sameField(a, b json.RawMessage) bool {
	na, errA := normalize(a)
	nb, errB := normalize(b)
	if errA != nil || errB != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(na, nb)
}

func (p Payload) clone() Payload {
	return Payload{
		Connection: slices.Clone(p.Connection),
		Graph:      slices.Clone(p.Graph),
		Mapping:    slices.Clone(p.Mapping),
	}
}
