package scene

import (
	"github.com/hupe1980/graphyaml/internal/archive"
	"github.com/hupe1980/graphyaml/internal/identity"
)

// Mesh is shared triangle geometry.
type Mesh struct {
	Object
	Vertices []Vector3
	Indices  []uint32
}

// NewMesh returns an empty mesh.
func NewMesh(id identity.ID, name string) *Mesh {
	return &Mesh{Object: newObject(id, name)}
}

// TypeTag implements archive.Node.
func (m *Mesh) TypeTag() string { return "Mesh" }

// SerializeFields implements archive.Fielder.
func (m *Mesh) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.Base(&m.Object),
		archive.Size(len(m.Vertices)),
		archive.NVP("m_Vertices", archive.Slice(m.Vertices, Vector3.Value)),
		archive.NVP("m_Indices", archive.Slice(m.Indices, archive.Uint[uint32])),
	)
}

// Material describes how a surface is shaded. Materials are shared between
// renderers.
type Material struct {
	Object
	Shader string
	Color  Color
	Floats []FloatProperty
}

// FloatProperty is a named scalar shader input.
type FloatProperty struct {
	Name  string
	Value float32
}

// SerializeFields implements archive.Fielder.
func (p FloatProperty) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.NVP("name", archive.String(p.Name)),
		archive.NVP("value", archive.Float(p.Value)),
	)
}

// NewMaterial returns a white material using shader.
func NewMaterial(id identity.ID, name, shader string) *Material {
	return &Material{Object: newObject(id, name), Shader: shader, Color: White}
}

// TypeTag implements archive.Node.
func (m *Material) TypeTag() string { return "Material" }

// SerializeFields implements archive.Fielder.
func (m *Material) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.Base(&m.Object),
		archive.NVP("m_Shader", archive.String(m.Shader)),
		archive.NVP("m_Color", m.Color.Value()),
		archive.NVP("m_Floats", archive.Slice(m.Floats, func(p FloatProperty) archive.Value {
			return archive.Object(p)
		})),
	)
}
