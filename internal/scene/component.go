package scene

import (
	"weak"

	"github.com/hupe1980/graphyaml/internal/archive"
	"github.com/hupe1980/graphyaml/internal/identity"
)

// Component is anything that can be attached to a GameObject.
type Component interface {
	archive.Node
	base() *ComponentBase
}

// ComponentBase holds the fields common to all components. The owning game
// object is held weakly; the game object holds its components strongly.
type ComponentBase struct {
	Object
	gameObject weak.Pointer[GameObject]
}

// GameObject returns the owner, or nil when detached or collected.
func (c *ComponentBase) GameObject() *GameObject {
	return c.gameObject.Value()
}

func (c *ComponentBase) base() *ComponentBase { return c }

func (c *ComponentBase) attach(g *GameObject) {
	c.gameObject = weak.Make(g)
}

// SerializeFields implements archive.Fielder.
func (c *ComponentBase) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.Base(&c.Object),
		archive.NVP("m_GameObject", archive.Weak(c.gameObject)),
	)
}

// Behaviour is a component that can be enabled or disabled.
type Behaviour struct {
	ComponentBase
	Enabled bool
}

// SerializeFields implements archive.Fielder.
func (b *Behaviour) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.Base(&b.ComponentBase),
		archive.NVP("m_Enabled", archive.Bool(b.Enabled)),
	)
}

func newBehaviour(id identity.ID, name string) Behaviour {
	return Behaviour{ComponentBase: ComponentBase{Object: newObject(id, name)}, Enabled: true}
}

// Transform positions a game object relative to its parent.
type Transform struct {
	ComponentBase
	LocalPosition Vector3
	LocalRotation Quaternion
	LocalScale    Vector3
	Children      []*Transform
	parent        weak.Pointer[Transform]
}

// NewTransform returns an identity transform.
func NewTransform(id identity.ID, name string) *Transform {
	return &Transform{
		ComponentBase: ComponentBase{Object: newObject(id, name)},
		LocalRotation: IdentityRotation,
		LocalScale:    Vector3{X: 1, Y: 1, Z: 1},
	}
}

// TypeTag implements archive.Node.
func (t *Transform) TypeTag() string { return "Transform" }

// Parent returns the parent transform, or nil for a root.
func (t *Transform) Parent() *Transform {
	return t.parent.Value()
}

// SetParent moves t under p. A nil p makes t a root.
func (t *Transform) SetParent(p *Transform) {
	if old := t.Parent(); old != nil {
		for i, c := range old.Children {
			if c == t {
				old.Children = append(old.Children[:i], old.Children[i+1:]...)
				break
			}
		}
	}

	if p == nil {
		t.parent = weak.Pointer[Transform]{}
		return
	}

	t.parent = weak.Make(p)
	p.Children = append(p.Children, t)
}

// SerializeFields implements archive.Fielder.
func (t *Transform) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.Base(&t.ComponentBase),
		archive.NVP("m_LocalPosition", t.LocalPosition.Value()),
		archive.NVP("m_LocalRotation", t.LocalRotation.Value()),
		archive.NVP("m_LocalScale", t.LocalScale.Value()),
		archive.NVP("m_Children", archive.Refs(t.Children)),
		archive.NVP("m_Father", archive.Weak(t.parent)),
	)
}

// Camera renders the scene from its transform.
type Camera struct {
	Behaviour
	FieldOfView   float32
	NearClip      float32
	FarClip       float32
	Orthographic  bool
	BackgroundRGB Color
}

// NewCamera returns a perspective camera with common defaults.
func NewCamera(id identity.ID, name string) *Camera {
	return &Camera{
		Behaviour:     newBehaviour(id, name),
		FieldOfView:   60,
		NearClip:      0.3,
		FarClip:       1000,
		BackgroundRGB: Color{R: 0.19, G: 0.3, B: 0.47, A: 0},
	}
}

// TypeTag implements archive.Node.
func (c *Camera) TypeTag() string { return "Camera" }

// SerializeFields implements archive.Fielder.
func (c *Camera) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.Base(&c.Behaviour),
		archive.NVP("field of view", archive.Float(c.FieldOfView)),
		archive.NVP("near clip plane", archive.Float(c.NearClip)),
		archive.NVP("far clip plane", archive.Float(c.FarClip)),
		archive.NVP("orthographic", archive.Bool(c.Orthographic)),
		archive.NVP("m_BackGroundColor", c.BackgroundRGB.Value()),
	)
}

// LightType selects the light's emission shape.
type LightType uint32

// Light types.
const (
	LightSpot LightType = iota
	LightDirectional
	LightPoint
	LightArea
)

// Light illuminates the scene.
type Light struct {
	Behaviour
	Type      LightType
	Color     Color
	Intensity float32
	Range     float32
}

// NewLight returns a white directional light.
func NewLight(id identity.ID, name string) *Light {
	return &Light{
		Behaviour: newBehaviour(id, name),
		Type:      LightDirectional,
		Color:     White,
		Intensity: 1,
		Range:     10,
	}
}

// TypeTag implements archive.Node.
func (l *Light) TypeTag() string { return "Light" }

// SerializeFields implements archive.Fielder.
func (l *Light) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.Base(&l.Behaviour),
		archive.NVP("m_Type", archive.Enum(l.Type)),
		archive.NVP("m_Color", l.Color.Value()),
		archive.NVP("m_Intensity", archive.Float(l.Intensity)),
		archive.NVP("m_Range", archive.Float(l.Range)),
	)
}

// MeshFilter points a game object at a shared mesh asset.
type MeshFilter struct {
	ComponentBase
	Mesh *Mesh
}

// NewMeshFilter returns a filter without a mesh.
func NewMeshFilter(id identity.ID, name string) *MeshFilter {
	return &MeshFilter{ComponentBase: ComponentBase{Object: newObject(id, name)}}
}

// TypeTag implements archive.Node.
func (f *MeshFilter) TypeTag() string { return "MeshFilter" }

// SerializeFields implements archive.Fielder.
func (f *MeshFilter) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.Base(&f.ComponentBase),
		archive.NVP("m_Mesh", archive.Ref(f.Mesh)),
	)
}

// MeshRenderer draws the mesh of its game object's filter.
type MeshRenderer struct {
	Behaviour
	CastShadows bool
	Materials   []*Material
}

// NewMeshRenderer returns an enabled renderer that casts shadows.
func NewMeshRenderer(id identity.ID, name string) *MeshRenderer {
	return &MeshRenderer{Behaviour: newBehaviour(id, name), CastShadows: true}
}

// TypeTag implements archive.Node.
func (r *MeshRenderer) TypeTag() string { return "MeshRenderer" }

// SerializeFields implements archive.Fielder.
func (r *MeshRenderer) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.Base(&r.Behaviour),
		archive.NVP("m_CastShadows", archive.Bool(r.CastShadows)),
		archive.NVP("m_Materials", archive.Refs(r.Materials)),
	)
}
