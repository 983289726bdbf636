package ontology

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/7eVeNcO/semtk/pkg/errors"
)

// Property is a property declared on a class.
type Property struct {
	URI   string `yaml:"uri"`
	Range string `yaml:"range"`
}

// Class is an ontology class with its direct superclasses and declared properties.
type Class struct {
	URI        string     `yaml:"uri"`
	Parents    []string   `yaml:"parents,omitempty"`
	Properties []Property `yaml:"properties,omitempty"`
}

// Info is an in-memory ontology.
// The zero value is not usable - use New or Load.
type Info struct {
	classes map[string]*Class
	order   []string
}

// New creates an empty ontology.
func New() *Info {
	return &Info{classes: make(map[string]*Class)}
}

type file struct {
	Classes []Class `yaml:"classes"`
}

// Load decodes YAML ontology info from r.
func Load(r io.Reader) (*Info, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidOntology, err, "parse ontology")
	}
	info := New()
	for _, c := range f.Classes {
		if err := info.AddClass(c); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// LoadFile reads ontology info from a YAML file.
func LoadFile(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// AddClass registers a class. Class and property URIs must be valid and
// each class may only be added once.
func (o *Info) AddClass(c Class) error {
	if err := errors.ValidateURI(c.URI); err != nil {
		return err
	}
	if _, exists := o.classes[c.URI]; exists {
		return errors.New(errors.ErrCodeInvalidOntology, "duplicate class %s", c.URI)
	}
	for _, p := range c.Properties {
		if err := errors.ValidateURI(p.URI); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOntology, err, "class %s", c.URI)
		}
	}
	cc := Class{
		URI:        c.URI,
		Parents:    slices.Clone(c.Parents),
		Properties: slices.Clone(c.Properties),
	}
	o.classes[c.URI] = &cc
	o.order = append(o.order, c.URI)
	return nil
}

// Class returns the class with the given URI.
func (o *Info) Class(uri string) (*Class, bool) {
	if o == nil {
		return nil, false
	}
	c, ok := o.classes[uri]
	return c, ok
}

// IsClass reports whether uri names a known class.
func (o *Info) IsClass(uri string) bool {
	_, ok := o.Class(uri)
	return ok
}

// ClassURIs returns all class URIs in insertion order.
func (o *Info) ClassURIs() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.order)
}

// PropertiesOf returns the properties of a class including those inherited
// from its superclasses. Properties declared closer to the class win over
// inherited ones with the same URI. Unknown classes have no properties.
//
// Superclass cycles are tolerated; each class is visited once.
func (o *Info) PropertiesOf(classURI string) []Property {
	if o == nil {
		return nil
	}
	var out []Property
	seen := make(map[string]bool)
	visited := make(map[string]bool)

	var walk func(uri string)
	walk = func(uri string) {
		if visited[uri] {
			return
		}
		visited[uri] = true
		c, ok := o.classes[uri]
		if !ok {
			return
		}
		for _, p := range c.Properties {
			if !seen[p.URI] {
				seen[p.URI] = true
				out = append(out, p)
			}
		}
		for _, parent := range c.Parents {
			walk(parent)
		}
	}
	walk(classURI)
	return out
}

// IsObjectProperty reports whether p links to another class rather than a literal.
func (o *Info) IsObjectProperty(p Property) bool {
	return o.IsClass(p.Range)
}

// LocalName returns the fragment or last path segment of a URI.
//
//	LocalName("http://kdl.ge.com/batterydemo#Cell") // "Cell"
func LocalName(uri string) string {
	if i := strings.LastIndexAny(uri, "#/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
