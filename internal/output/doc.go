// Package output renders archive passes in the supported output formats,
// writes the result to its destination, and validates written archives.
//
// The package is organized around four concerns:
//
//   - Encoders (registry.go): a [Registry] maps format names (yaml, json,
//     tokens) to [Encoder] functions that run a serialization pass against
//     the matching emit.Sink.
//
//   - JSON (json.go): conversion of a multi-document YAML archive into a
//     JSON array with one element per document.
//
//   - Writers (writer.go): output destinations via the [Writer] interface,
//     with [StdoutWriter] and [FileWriter] implementations.
//
//   - Validation (validator.go): structural checks on a written archive,
//     covering malformed documents, objects written more than once and
//     references to objects that have no document.
package output
