// Package document bundles a connection, a node group and an import spec
// into one portable graph-query document.
//
// # Overview
//
// A document holds up to three independently optional payloads:
//
//   - connection: the serialized [conn.Connection]
//   - graph: the serialized node group, full or deflated
//   - mapping: the serialized import spec
//
// Any subset may be present. Absent fields are written as null and read
// back as absent, so a document always round-trips to the same subset.
//
// # Text Format
//
// Documents are JSON, tab-indented, with a fixed key order:
//
//	{
//		"connection": {...},
//		"graph": {...},
//		"mapping": null
//	}
//
// Parsing ignores key order. Documents written with the older key names
// sparqlConn, sNodeGroup and importSpec are also accepted. This covers
// the envelope only: each field is still decoded by its own package, so
// a node group with a version newer than [nodegroup.FormatVersion] parses
// but [Document.Graph] fails with an UNSUPPORTED error.
//
// # Densities
//
// A document built with [Deflated] encodes only the graph elements the
// mapping reports as mapped, plus the links between nodes. Loading a
// deflated graph with an [ontology.Info] restores the dropped properties
// with default settings:
//
//	doc, err := document.New(
//	    document.WithConnection(c),
//	    document.WithGraph(ng),
//	    document.WithMapping(table),
//	    document.Deflated(),
//	)
//
//	ng2 := nodegroup.New()
//	ok, err := doc.Graph(ng2, oinfo)
//
// # Errors
//
// [Document.Connection] on a document with no connection fails with an
// [errors.ErrCodeDecode] error. Every other accessor reports absence with
// a boolean instead.
package document
