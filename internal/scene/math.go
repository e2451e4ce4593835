package scene

import "github.com/hupe1980/graphyaml/internal/archive"

// Vector3 is a position, direction or scale.
type Vector3 struct {
	X, Y, Z float32
}

// Value returns the inline archive form {x, y, z}.
func (v Vector3) Value() archive.Value {
	return archive.Vec3(v.X, v.Y, v.Z)
}

// Quaternion is a rotation.
type Quaternion struct {
	X, Y, Z, W float32
}

// IdentityRotation is the rotation that leaves vectors unchanged.
var IdentityRotation = Quaternion{W: 1}

// Value returns the inline archive form {x, y, z, w}.
func (q Quaternion) Value() archive.Value {
	return archive.Quat(q.X, q.Y, q.Z, q.W)
}

// Color is a linear RGBA color.
type Color struct {
	R, G, B, A float32
}

// White is opaque white.
var White = Color{R: 1, G: 1, B: 1, A: 1}

// SerializeFields implements archive.Fielder.
func (c Color) SerializeFields(a *archive.Archive) error {
	return a.Fields(
		archive.NVP("r", archive.Float(c.R)),
		archive.NVP("g", archive.Float(c.G)),
		archive.NVP("b", archive.Float(c.B)),
		archive.NVP("a", archive.Float(c.A)),
	)
}

// Value returns the inline archive form {r, g, b, a}.
func (c Color) Value() archive.Value {
	return archive.Inline(c)
}
