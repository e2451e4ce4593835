package archive

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphyaml/internal/emit"
	"github.com/hupe1980/graphyaml/internal/identity"
)

type fieldsFunc func(a *Archive) error

func (f fieldsFunc) SerializeFields(a *Archive) error { return f(a) }

type layer uint8

type shade int8

// tokensOf writes v through a recording archive and returns the token trace.
func tokensOf(t *testing.T, v Value) string {
	t.Helper()

	rec := emit.NewRecorder()
	require.NoError(t, New(rec).Write(v))

	return rec.String()
}

func TestValueCategories(t *testing.T) {
	id := identity.MustParse("0b7e9c4a-1f3d-4c3e-9a51-2d6f7e8a9b0c")

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"int", Int(-4), "Scalar(-4)"},
		{"uint", Uint(uint16(9)), "Scalar(9)"},
		{"float64", Float(0.25), "Scalar(0.25)"},
		{"float32", Float(float32(0.1)), "Scalar(0.1)"},
		{"bool", Bool(true), "Scalar(true)"},
		{"string", String("cube"), "Scalar(cube)"},
		{"enum", Enum(layer(5)), "Scalar(5)"},
		{"negative enum", Enum(shade(-1)), "Scalar(4294967295)"},
		{"size marker", Size(12), ""},
		{"named size marker", NVP("m_Count", Size(3)), ""},
		{"object", Object(fieldsFunc(func(a *Archive) error {
			return a.Write(NVP("a", Int(1)))
		})), "BeginMap Key(a) Scalar(1) EndMap"},
		{"inline", Inline(fieldsFunc(func(a *Archive) error {
			return a.Write(NVP("r", Int(255)))
		})), "BeginMap(flow) Key(r) Scalar(255) EndMap"},
		{"empty object", Object(fieldsFunc(func(*Archive) error { return nil })), "BeginMap EndMap"},
		{"vec2", Vec2(1, 2), "BeginMap(flow) Key(x) Scalar(1) Key(y) Scalar(2) EndMap"},
		{"vec3", Vec3(1, 2, 3), "BeginMap(flow) Key(x) Scalar(1) Key(y) Scalar(2) Key(z) Scalar(3) EndMap"},
		{"vec4", Vec4(0.5, 0, 0, 1), "BeginMap(flow) Key(x) Scalar(0.5) Key(y) Scalar(0) Key(z) Scalar(0) Key(w) Scalar(1) EndMap"},
		{"quat", Quat(0, 0, 0, 1), "BeginMap(flow) Key(x) Scalar(0) Key(y) Scalar(0) Key(z) Scalar(0) Key(w) Scalar(1) EndMap"},
		{"empty seq", Seq(), "BeginSeq(flow) EndSeq"},
		{"seq", Seq(Int(3), Int(1), Int(2)), "BeginSeq Scalar(3) Scalar(1) Scalar(2) EndSeq"},
		{"slice", Slice([]string{"a", "b"}, func(s string) Value { return String(s) }), "BeginSeq Scalar(a) Scalar(b) EndSeq"},
		{"empty slice", Slice([]int(nil), func(i int) Value { return Int(i) }), "BeginSeq(flow) EndSeq"},
		{"nvp", NVP("m_Name", String("x")), "Key(m_Name) Scalar(x)"},
		{"identity", Identity(id), `BeginMap(flow) Key(fileId) Scalar("0b7e9c4a-1f3d-4c3e-9a51-2d6f7e8a9b0c") EndMap`},
		{"nil", Nil(), "BeginMap(flow) Key(fileId) Scalar(0) EndMap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokensOf(t, tt.v))
		})
	}
}

type baseFields struct {
	enabled bool
}

func (b *baseFields) SerializeFields(a *Archive) error {
	return a.Write(NVP("m_Enabled", Bool(b.enabled)))
}

type derived struct {
	baseFields
	intensity float32
}

func (d *derived) SerializeFields(a *Archive) error {
	return a.Fields(
		Base(&d.baseFields),
		NVP("m_Intensity", Float(d.intensity)),
	)
}

func TestBase_FlattensIntoEnclosingMap(t *testing.T) {
	d := &derived{baseFields: baseFields{enabled: true}, intensity: 1.5}

	assert.Equal(t,
		"BeginMap Key(m_Enabled) Scalar(true) Key(m_Intensity) Scalar(1.5) EndMap",
		tokensOf(t, Object(d)))
}

func TestBase_Nested(t *testing.T) {
	inner := fieldsFunc(func(a *Archive) error { return a.Write(NVP("a", Int(1))) })
	middle := fieldsFunc(func(a *Archive) error { return a.Fields(Base(inner), NVP("b", Int(2))) })

	assert.Equal(t,
		"BeginMap Key(a) Scalar(1) Key(b) Scalar(2) EndMap",
		tokensOf(t, Object(fieldsFunc(func(a *Archive) error { return a.Write(Base(middle)) }))))
}

func TestSequenceOfComposites(t *testing.T) {
	v := Slice([][2]float32{{1, 2}, {3, 4}}, func(p [2]float32) Value { return Vec2(p[0], p[1]) })

	assert.Equal(t,
		"BeginSeq BeginMap(flow) Key(x) Scalar(1) Key(y) Scalar(2) EndMap "+
			"BeginMap(flow) Key(x) Scalar(3) Key(y) Scalar(4) EndMap EndSeq",
		tokensOf(t, v))
}

func TestWiden(t *testing.T) {
	assert.InDelta(t, 0.1, widen(0.1), 0)
	assert.InDelta(t, 1.0/3.0, widen(float32(1.0/3.0)), 1e-7)
	assert.True(t, math.IsNaN(widen(float32(math.NaN()))))
	assert.True(t, math.IsInf(widen(float32(math.Inf(1))), 1))
}

// gadget is the object of the fixed-composite and empty-sequence scenario.
type gadget struct {
	id       identity.ID
	children []*gadget
	position [3]float32
}

func (p *gadget) ID() identity.ID { return p.id }
func (p *gadget) TypeTag() string { return "Gadget" }

func (p *gadget) SerializeFields(a *Archive) error {
	return a.Fields(
		NVP("m_Children", Refs(p.children)),
		NVP("m_Position", Vec3(p.position[0], p.position[1], p.position[2])),
	)
}

func TestYAML_EmptySequenceAndVector(t *testing.T) {
	p := &gadget{id: identity.New(), position: [3]float32{1, 2, 3}}

	var buf bytes.Buffer
	require.NoError(t, New(emit.NewYAMLSink(&buf)).SerializeReference(p))

	assert.Equal(t, "---\nGadget:\n  m_Children: []\n  m_Position: {x: 1, y: 2, z: 3}\n", buf.String())
}

func TestYAML_NamedSizeMarkerLeavesNoDanglingKey(t *testing.T) {
	fields := fieldsFunc(func(a *Archive) error {
		return a.Fields(
			NVP("m_Count", Size(2)),
			NVP("m_Extent", Vec2(1, 2)),
			Size(0),
			NVP("m_Name", String("x")),
		)
	})

	var buf bytes.Buffer
	sink := emit.NewYAMLSink(&buf)
	require.NoError(t, sink.BeginDocument())
	require.NoError(t, sink.BeginMap(emit.Block))
	require.NoError(t, sink.WriteKey("Holder"))
	require.NoError(t, New(sink).Write(Object(fields)))
	require.NoError(t, sink.EndMap())
	require.NoError(t, sink.EndDocument())

	assert.Equal(t, "---\nHolder:\n  m_Extent: {x: 1, y: 2}\n  m_Name: x\n", buf.String())
}

func TestYAML_ReferenceEncoding(t *testing.T) {
	child := &gadget{id: identity.MustParse("11111111-2222-4333-8444-555555555555")}
	root := &gadget{id: identity.MustParse("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"), children: []*gadget{child}}
	child.children = []*gadget{root}

	var buf bytes.Buffer
	sink := emit.NewYAMLSink(&buf)
	require.NoError(t, New(sink).SerializeReference(root))

	out := buf.String()
	assert.Equal(t, 2, sink.Documents())
	assert.Contains(t, out, `{fileId: "11111111-2222-4333-8444-555555555555"}`)
	assert.Contains(t, out, `{fileId: "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"}`)
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte(`"11111111`)),
		bytes.Index(buf.Bytes(), []byte(`"aaaaaaaa`)),
		"root document comes first and references the child")
}
