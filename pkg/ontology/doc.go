// Package ontology holds the class and property definitions needed to
// inflate a deflated node group.
//
// A deflated node group only carries the properties that participate in a
// mapping. Inflating it back into a complete node group requires knowing
// which other properties each class declares, including those inherited
// from superclasses. [Info] answers that question.
//
// # File Format
//
// Ontology info is loaded from YAML:
//
//	classes:
//	  - uri: http://kdl.ge.com/batterydemo#Battery
//	    properties:
//	      - uri: http://kdl.ge.com/batterydemo#id
//	        range: http://www.w3.org/2001/XMLSchema#string
//	      - uri: http://kdl.ge.com/batterydemo#cell
//	        range: http://kdl.ge.com/batterydemo#Cell
//	  - uri: http://kdl.ge.com/batterydemo#Cell
//	    parents: [http://kdl.ge.com/batterydemo#Component]
//
// A property whose range is itself a known class is an object property
// (a link); every other property is a datatype property.
package ontology
