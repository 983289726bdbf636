// Package nodegroup implements the semantic query graph carried inside a
// graph-query document.
//
// A [NodeGroup] is a set of [Node] values, each bound to an ontology class
// and identified by a SPARQL variable such as "?Battery". Nodes carry
// datatype properties ([PropertyItem]) and object properties ([NodeItem]).
// A node item connects its node to one or more target nodes; each
// (source, item, target) triple is a [Link] with its own [Optional] mode.
//
// # Optional Modes
//
// Whether a query step may be skipped is a tri-state, not a boolean,
// because an optional step also has a traversal direction:
//
//	NotOptional      0   the link must match
//	OptionalForward  1   the target side may be missing
//	OptionalReverse -1   the source side may be missing
//
// # Serialization Densities
//
// [NodeGroup.ToPayload] encodes the group in one of two densities. The full
// density writes every property and item. The deflated density keeps only
// properties named in the mapped set and only connected items; everything
// dropped can be restored by [NodeGroup.AddFromPayload] when it is given an
// [ontology.Info] describing the classes involved.
//
// # Versions
//
// Payloads carry a "version" field. [NodeGroup.AddFromPayload] reads
// versions up to [FormatVersion] and rejects newer ones with an
// UNSUPPORTED error. Node groups saved by other tools under their own,
// higher version numbers are not read.
//
// # Concurrency
//
// A NodeGroup is not safe for concurrent use without external synchronization.
package nodegroup
