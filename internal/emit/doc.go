// Package emit defines the event sink that receives the structural token
// stream produced by an archive and turns it into text.
//
// The package is organized around two sinks:
//
//   - [YAMLSink] builds a gopkg.in/yaml.v3 node tree per document and encodes
//     it when the document ends, prefixing every document with "---".
//
//   - [Recorder] keeps the raw token stream in memory. It never fails and is
//     used to inspect exactly which structural tokens an archive produced.
//
// Inline rendering is not an ambient toggle: it is carried by the [Style]
// argument of [Sink.BeginMap] and [Sink.BeginSequence], and is inherited by
// every token nested under a flow collection.
package emit
