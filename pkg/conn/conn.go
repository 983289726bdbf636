// Package conn describes the SPARQL data-source connection stored in a
// graph-query document.
//
// A connection names the triple-store endpoints that hold the model
// (ontology) and the data. It is serialized as:
//
//	{
//	  "name": "battery demo",
//	  "domain": "http://kdl.ge.com",
//	  "model": [{"type": "fuseki", "url": "http://localhost:3030", "dataset": "model"}],
//	  "data":  [{"type": "fuseki", "url": "http://localhost:3030", "dataset": "data"}]
//	}
package conn

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/7eVeNcO/semtk/pkg/errors"
)

// Server types recognised by the query services.
const (
	ServerFuseki   = "fuseki"
	ServerVirtuoso = "virtuoso"
	ServerNeptune  = "neptune"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Endpoint is a single triple-store graph.
type Endpoint struct {
	Type    string `json:"type" validate:"required,oneof=fuseki virtuoso neptune"`
	URL     string `json:"url" validate:"required,url"`
	Dataset string `json:"dataset" validate:"required"`
}

// Connection is a named set of model and data endpoints.
type Connection struct {
	Name   string     `json:"name" validate:"required"`
	Domain string     `json:"domain"`
	Model  []Endpoint `json:"model" validate:"dive"`
	Data   []Endpoint `json:"data" validate:"dive"`
}

// New creates a connection with no endpoints.
func New(name string) *Connection {
	return &Connection{Name: name}
}

// AddModel appends a model endpoint.
func (c *Connection) AddModel(serverType, url, dataset string) *Connection {
	c.Model = append(c.Model, Endpoint{Type: serverType, URL: url, Dataset: dataset})
	return c
}

// AddData appends a data endpoint.
func (c *Connection) AddData(serverType, url, dataset string) *Connection {
	c.Data = append(c.Data, Endpoint{Type: serverType, URL: url, Dataset: dataset})
	return c
}

// Validate checks required fields and endpoint URLs.
func (c *Connection) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fe.Namespace() + " (" + fe.Tag() + ")"
			}
			return errors.New(errors.ErrCodeInvalidConnector, "invalid connection: %s", strings.Join(fields, ", "))
		}
		return errors.Wrap(errors.ErrCodeInvalidConnector, err, "invalid connection")
	}
	return nil
}

// Equal reports whether two connections describe the same endpoints.
func (c *Connection) Equal(o *Connection) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Name == o.Name && c.Domain == o.Domain &&
		slices.Equal(c.Model, o.Model) && slices.Equal(c.Data, o.Data)
}

// ToPayload serializes the connection.
func (c *Connection) ToPayload() (json.RawMessage, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "encode connection")
	}
	return data, nil
}

// FromPayload decodes a serialized connection.
// An empty or null payload is a decode error.
func FromPayload(payload json.RawMessage) (*Connection, error) {
	if len(payload) == 0 || string(payload) == "null" {
		return nil, errors.New(errors.ErrCodeDecode, "empty connection payload")
	}
	var c Connection
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "decode connection")
	}
	return &c, nil
}
