package scene

import (
	"github.com/hupe1980/graphyaml/internal/archive"
	"github.com/hupe1980/graphyaml/internal/identity"
)

// Object carries the identity and name shared by all scene objects.
type Object struct {
	id   identity.ID
	Name string
}

// ID implements archive.Node.
func (o *Object) ID() identity.ID {
	return o.id
}

// SerializeFields implements archive.Fielder.
func (o *Object) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.NVP("m_FileID", archive.String(o.id.String())),
		archive.NVP("m_Name", archive.String(o.Name)),
	)
}

func newObject(id identity.ID, name string) Object {
	if id.IsNil() {
		id = identity.New()
	}

	return Object{id: id, Name: name}
}

// Layer is a rendering and physics layer index.
type Layer uint32

// Built-in layers.
const (
	LayerDefault Layer = iota
	LayerTransparentFX
	LayerIgnoreRaycast
	_
	LayerWater
	LayerUI
)

// GameObject is an entity in a scene. It owns a transform and any number of
// components.
type GameObject struct {
	Object
	Layer      Layer
	Tag        string
	Active     bool
	Transform  *Transform
	Components []Component
}

// NewGameObject creates an active game object with a transform at the
// origin. A nil id is replaced by a random identity.
func NewGameObject(id identity.ID, name string) *GameObject {
	g := &GameObject{
		Object: newObject(id, name),
		Tag:    "Untagged",
		Active: true,
	}

	return g
}

// TypeTag implements archive.Node.
func (g *GameObject) TypeTag() string { return "GameObject" }

// AddComponent attaches c to g. Attaching a *Transform also sets g.Transform.
func (g *GameObject) AddComponent(c Component) {
	c.base().attach(g)

	if t, ok := c.(*Transform); ok {
		g.Transform = t
	}

	g.Components = append(g.Components, c)
}

// SerializeFields implements archive.Fielder.
func (g *GameObject) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.Base(&g.Object),
		archive.NVP("m_Layer", archive.Enum(g.Layer)),
		archive.NVP("m_Tag", archive.String(g.Tag)),
		archive.NVP("m_IsActive", archive.Bool(g.Active)),
		archive.NVP("m_Transform", archive.Ref(g.Transform)),
		archive.NVP("m_Component", archive.Refs(g.Components)),
	)
}
