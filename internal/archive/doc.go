// Package archive serializes a graph of identity-bearing objects into a flat
// list of YAML documents, one document per object.
//
// The package is organized around two concerns:
//
//   - Graph orchestration (archive.go): [Archive.SerializeReference] decides
//     for every object whether to expand it into a new document, defer it
//     until the current document closes, or emit a reference token. Each
//     identity is expanded at most once, so shared sub-objects and cycles
//     resolve to {fileId: "<uuid>"} references.
//
//   - Structural emission (values.go): every [Value] category carries its own
//     opening tokens, content and closing tokens. The set of categories is
//     closed: a type that is not one of them cannot be passed to
//     [Archive.Write], so there is no run-time fallback to scalar writing.
//
// A typical object model implements [Node] for shared objects and [Fielder]
// for plain composites:
//
//	func (t *Transform) SerializeFields(a *archive.Archive) error {
//		return a.Fields(
//			archive.Base(&t.Component),
//			archive.NVP("m_LocalPosition", archive.Vec3(t.Position.X, t.Position.Y, t.Position.Z)),
//			archive.NVP("m_Children", archive.Refs(t.Children)),
//			archive.NVP("m_Father", archive.Weak(t.Parent)),
//		)
//	}
//
// An Archive is not safe for concurrent use and is not reentrant.
package archive
