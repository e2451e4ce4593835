package scene

import (
	"fmt"

	"github.com/hupe1980/graphyaml/internal/archive"
	"github.com/hupe1980/graphyaml/internal/identity"
)

// Graph is a built scene. It holds every object strongly, so the weak
// owner and parent links between them stay valid for the graph's lifetime.
type Graph struct {
	Objects   []*GameObject
	Meshes    []*Mesh
	Materials []*Material
}

// Roots returns the game objects without a parent transform, in
// declaration order.
func (g *Graph) Roots() []*GameObject {
	var roots []*GameObject

	for _, obj := range g.Objects {
		if obj.Transform == nil || obj.Transform.Parent() == nil {
			roots = append(roots, obj)
		}
	}

	return roots
}

// Serialize writes every root, and everything reachable from it, to a.
func (g *Graph) Serialize(a *archive.Archive) error {
	for _, root := range g.Roots() {
		if err := a.SerializeReference(root); err != nil {
			return fmt.Errorf("serializing %q: %w", root.Name, err)
		}
	}

	return nil
}

// Build validates the manifest and constructs the object graph.
func (m *Manifest) Build() (*Graph, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	ns := DefaultNamespace
	if m.Namespace != "" {
		ns = identity.MustParse(m.Namespace)
	}

	id := func(kind, name string) identity.ID {
		return identity.FromName(ns, kind+"/"+name)
	}

	g := &Graph{}

	materials := make(map[string]*Material, len(m.Materials))

	for _, spec := range m.Materials {
		mat := NewMaterial(id("Material", spec.Name), spec.Name, spec.Shader)
		if len(spec.Color) == 4 {
			mat.Color = color(spec.Color)
		}

		for _, k := range sortedKeys(spec.Floats) {
			mat.Floats = append(mat.Floats, FloatProperty{Name: k, Value: spec.Floats[k]})
		}

		materials[spec.Name] = mat
		g.Materials = append(g.Materials, mat)
	}

	meshes := make(map[string]*Mesh, len(m.Meshes))

	for _, spec := range m.Meshes {
		mesh := NewMesh(id("Mesh", spec.Name), spec.Name)
		for _, v := range spec.Vertices {
			mesh.Vertices = append(mesh.Vertices, vector3(v))
		}

		mesh.Indices = append(mesh.Indices, spec.Indices...)

		meshes[spec.Name] = mesh
		g.Meshes = append(g.Meshes, mesh)
	}

	objects := make(map[string]*GameObject, len(m.Objects))

	for _, spec := range m.Objects {
		obj := buildObject(spec, id, meshes, materials)
		objects[spec.Name] = obj
		g.Objects = append(g.Objects, obj)
	}

	for _, spec := range m.Objects {
		if spec.Parent != "" {
			objects[spec.Name].Transform.SetParent(objects[spec.Parent].Transform)
		}
	}

	return g, nil
}

func buildObject(
	spec ObjectSpec,
	id func(kind, name string) identity.ID,
	meshes map[string]*Mesh,
	materials map[string]*Material,
) *GameObject {
	obj := NewGameObject(id("GameObject", spec.Name), spec.Name)
	obj.Layer = Layer(spec.Layer)

	if spec.Tag != "" {
		obj.Tag = spec.Tag
	}

	if spec.Active != nil {
		obj.Active = *spec.Active
	}

	t := NewTransform(id("Transform", spec.Name), spec.Name)
	if len(spec.Position) == 3 {
		t.LocalPosition = vector3(spec.Position)
	}

	if len(spec.Rotation) == 4 {
		t.LocalRotation = Quaternion{X: spec.Rotation[0], Y: spec.Rotation[1], Z: spec.Rotation[2], W: spec.Rotation[3]}
	}

	if len(spec.Scale) == 3 {
		t.LocalScale = vector3(spec.Scale)
	}

	obj.AddComponent(t)

	if c := spec.Camera; c != nil {
		cam := NewCamera(id("Camera", spec.Name), spec.Name)
		setIfPresent(&cam.FieldOfView, c.FieldOfView)
		setIfPresent(&cam.NearClip, c.Near)
		setIfPresent(&cam.FarClip, c.Far)
		cam.Orthographic = c.Orthographic

		if len(c.Background) == 4 {
			cam.BackgroundRGB = color(c.Background)
		}

		obj.AddComponent(cam)
	}

	if l := spec.Light; l != nil {
		light := NewLight(id("Light", spec.Name), spec.Name)
		light.Type, _ = parseLightType(l.Type)

		if len(l.Color) == 4 {
			light.Color = color(l.Color)
		}

		setIfPresent(&light.Intensity, l.Intensity)
		setIfPresent(&light.Range, l.Range)

		obj.AddComponent(light)
	}

	if spec.Mesh != "" {
		filter := NewMeshFilter(id("MeshFilter", spec.Name), spec.Name)
		filter.Mesh = meshes[spec.Mesh]
		obj.AddComponent(filter)
	}

	if len(spec.Materials) > 0 {
		renderer := NewMeshRenderer(id("MeshRenderer", spec.Name), spec.Name)
		for _, name := range spec.Materials {
			renderer.Materials = append(renderer.Materials, materials[name])
		}

		obj.AddComponent(renderer)
	}

	return obj
}

func setIfPresent(dst *float32, v *float32) {
	if v != nil {
		*dst = *v
	}
}

func vector3(v []float32) Vector3 {
	return Vector3{X: v[0], Y: v[1], Z: v[2]}
}

func color(v []float32) Color {
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}
}
