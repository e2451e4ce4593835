package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/graphyaml/internal/identity"
)

// FormatVersion is the manifest format version written by this release.
const FormatVersion = "1.0.0"

// supportedVersions is the range of manifest versions Build accepts.
const supportedVersions = ">= 1.0.0, < 2.0.0"

// DefaultNamespace seeds identities when a manifest names none.
var DefaultNamespace = identity.MustParse("3f1c9a52-7e44-4d0b-9a8e-2b5c6d7e8f90")

// ManifestFormat is the encoding of a manifest file.
type ManifestFormat string

// Supported manifest encodings.
const (
	ManifestYAML ManifestFormat = "yaml"
	ManifestTOML ManifestFormat = "toml"
)

// FormatFromPath infers the manifest encoding from a file extension.
func FormatFromPath(path string) (ManifestFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ManifestYAML, nil
	case ".toml":
		return ManifestTOML, nil
	default:
		return "", fmt.Errorf("unsupported manifest extension %q (expected .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Manifest declares a scene: its shared assets and its game objects.
type Manifest struct {
	FormatVersion string         `yaml:"formatVersion" toml:"formatVersion"`
	Namespace     string         `yaml:"namespace,omitempty" toml:"namespace"`
	Materials     []MaterialSpec `yaml:"materials,omitempty" toml:"materials"`
	Meshes        []MeshSpec     `yaml:"meshes,omitempty" toml:"meshes"`
	Objects       []ObjectSpec   `yaml:"objects" toml:"objects"`
}

// MaterialSpec declares a shared material.
type MaterialSpec struct {
	Name   string             `yaml:"name" toml:"name"`
	Shader string             `yaml:"shader" toml:"shader"`
	Color  []float32          `yaml:"color,omitempty" toml:"color"`
	Floats map[string]float32 `yaml:"floats,omitempty" toml:"floats"`
}

// MeshSpec declares shared geometry.
type MeshSpec struct {
	Name     string      `yaml:"name" toml:"name"`
	Vertices [][]float32 `yaml:"vertices,omitempty" toml:"vertices"`
	Indices  []uint32    `yaml:"indices,omitempty" toml:"indices"`
}

// ObjectSpec declares a game object and its components.
type ObjectSpec struct {
	Name      string      `yaml:"name" toml:"name"`
	Parent    string      `yaml:"parent,omitempty" toml:"parent"`
	Layer     uint32      `yaml:"layer,omitempty" toml:"layer"`
	Tag       string      `yaml:"tag,omitempty" toml:"tag"`
	Active    *bool       `yaml:"active,omitempty" toml:"active"`
	Position  []float32   `yaml:"position,omitempty" toml:"position"`
	Rotation  []float32   `yaml:"rotation,omitempty" toml:"rotation"`
	Scale     []float32   `yaml:"scale,omitempty" toml:"scale"`
	Camera    *CameraSpec `yaml:"camera,omitempty" toml:"camera"`
	Light     *LightSpec  `yaml:"light,omitempty" toml:"light"`
	Mesh      string      `yaml:"mesh,omitempty" toml:"mesh"`
	Materials []string    `yaml:"materials,omitempty" toml:"materials"`
}

// CameraSpec declares a camera component. Unset fields keep NewCamera
// defaults.
type CameraSpec struct {
	FieldOfView  *float32  `yaml:"fieldOfView,omitempty" toml:"fieldOfView"`
	Near         *float32  `yaml:"near,omitempty" toml:"near"`
	Far          *float32  `yaml:"far,omitempty" toml:"far"`
	Orthographic bool      `yaml:"orthographic,omitempty" toml:"orthographic"`
	Background   []float32 `yaml:"background,omitempty" toml:"background"`
}

// LightSpec declares a light component.
type LightSpec struct {
	Type      string    `yaml:"type,omitempty" toml:"type"`
	Color     []float32 `yaml:"color,omitempty" toml:"color"`
	Intensity *float32  `yaml:"intensity,omitempty" toml:"intensity"`
	Range     *float32  `yaml:"range,omitempty" toml:"range"`
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is user-supplied by design
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	m, err := ParseManifest(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

// ParseManifest decodes a manifest. Unknown keys are rejected.
func ParseManifest(data []byte, format ManifestFormat) (*Manifest, error) {
	var m Manifest

	switch format {
	case ManifestYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("manifest is empty")
			}

			return nil, fmt.Errorf("parsing YAML manifest: %w", err)
		}
	case ManifestTOML:
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, fmt.Errorf("parsing TOML manifest: %w", err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}

			return nil, fmt.Errorf("parsing TOML manifest: unknown keys: %s", strings.Join(keys, ", "))
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}

	return &m, nil
}

// Validate checks version compatibility and that every name referenced by
// the manifest is declared exactly once.
func (m *Manifest) Validate() error {
	var errs []error

	if err := checkVersion(m.FormatVersion); err != nil {
		errs = append(errs, err)
	}

	if m.Namespace != "" {
		if _, err := identity.Parse(m.Namespace); err != nil {
			errs = append(errs, fmt.Errorf("namespace: %w", err))
		}
	}

	materials := make(map[string]bool, len(m.Materials))

	for i, mat := range m.Materials {
		errs = append(errs, checkName(fmt.Sprintf("materials[%d]", i), mat.Name, materials)...)
		errs = append(errs, checkVector(fmt.Sprintf("materials[%d].color", i), mat.Color, 4))
	}

	meshes := make(map[string]bool, len(m.Meshes))

	for i, mesh := range m.Meshes {
		errs = append(errs, checkName(fmt.Sprintf("meshes[%d]", i), mesh.Name, meshes)...)

		for j, v := range mesh.Vertices {
			errs = append(errs, checkVector(fmt.Sprintf("meshes[%d].vertices[%d]", i, j), v, 3))
		}

		for j, idx := range mesh.Indices {
			if int(idx) >= len(mesh.Vertices) {
				errs = append(errs, fmt.Errorf("meshes[%d].indices[%d]: index %d out of range (%d vertices)", i, j, idx, len(mesh.Vertices)))
			}
		}
	}

	objects := make(map[string]bool, len(m.Objects))

	for i, obj := range m.Objects {
		errs = append(errs, checkName(fmt.Sprintf("objects[%d]", i), obj.Name, objects)...)
	}

	for i, obj := range m.Objects {
		field := fmt.Sprintf("objects[%d]", i)

		if obj.Parent != "" && !objects[obj.Parent] {
			errs = append(errs, fmt.Errorf("%s.parent: unknown object %q", field, obj.Parent))
		}

		if obj.Mesh != "" && !meshes[obj.Mesh] {
			errs = append(errs, fmt.Errorf("%s.mesh: unknown mesh %q", field, obj.Mesh))
		}

		for _, name := range obj.Materials {
			if !materials[name] {
				errs = append(errs, fmt.Errorf("%s.materials: unknown material %q", field, name))
			}
		}

		errs = append(errs,
			checkVector(field+".position", obj.Position, 3),
			checkVector(field+".rotation", obj.Rotation, 4),
			checkVector(field+".scale", obj.Scale, 3),
		)

		if obj.Camera != nil {
			errs = append(errs, checkVector(field+".camera.background", obj.Camera.Background, 4))
		}

		if obj.Light != nil {
			errs = append(errs, checkVector(field+".light.color", obj.Light.Color, 4))

			if _, err := parseLightType(obj.Light.Type); err != nil {
				errs = append(errs, fmt.Errorf("%s.light.type: %w", field, err))
			}
		}
	}

	if cycle := parentCycle(m.Objects); len(cycle) > 0 {
		errs = append(errs, fmt.Errorf("parent cycle detected: %s", strings.Join(cycle, " -> ")))
	}

	return errors.Join(errs...)
}

func checkVersion(v string) error {
	if v == "" {
		return errors.New("formatVersion: required field is missing")
	}

	version, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("formatVersion: %w", err)
	}

	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return fmt.Errorf("formatVersion constraint: %w", err)
	}

	if !constraint.Check(version) {
		return fmt.Errorf("formatVersion %s is not supported (want %s)", v, supportedVersions)
	}

	return nil
}

func checkName(field, name string, seen map[string]bool) []error {
	if name == "" {
		return []error{fmt.Errorf("%s.name: required field is missing", field)}
	}

	if seen[name] {
		return []error{fmt.Errorf("%s.name: duplicate name %q", field, name)}
	}

	seen[name] = true

	return nil
}

// checkVector returns nil for an unset vector or one with exactly n
// components.
func checkVector(field string, v []float32, n int) error {
	if len(v) == 0 || len(v) == n {
		return nil
	}

	return fmt.Errorf("%s: expected %d components, got %d", field, n, len(v))
}

// parentCycle returns the first parent cycle found, in manifest order.
func parentCycle(objects []ObjectSpec) []string {
	parent := make(map[string]string, len(objects))
	for _, obj := range objects {
		if obj.Parent != "" {
			parent[obj.Name] = obj.Parent
		}
	}

	for _, obj := range objects {
		path := []string{obj.Name}
		seen := map[string]bool{obj.Name: true}

		for cur := parent[obj.Name]; cur != ""; cur = parent[cur] {
			path = append(path, cur)

			if seen[cur] {
				return path
			}

			seen[cur] = true
		}
	}

	return nil
}

func parseLightType(s string) (LightType, error) {
	switch strings.ToLower(s) {
	case "", "directional":
		return LightDirectional, nil
	case "spot":
		return LightSpot, nil
	case "point":
		return LightPoint, nil
	case "area":
		return LightArea, nil
	default:
		return 0, fmt.Errorf("unknown light type %q", s)
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys(m map[string]float32) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
