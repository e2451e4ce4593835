package emit

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// run feeds a sequence of sink calls and fails the test on the first error.
func run(t *testing.T, s Sink, steps ...func(Sink) error) {
	t.Helper()

	for i, step := range steps {
		require.NoError(t, step(s), "step %d", i)
	}
}

func beginDoc(s Sink) error { return s.BeginDocument() }
func endDoc(s Sink) error   { return s.EndDocument() }
func blockMap(s Sink) error { return s.BeginMap(Block) }
func flowMap(s Sink) error  { return s.BeginMap(Flow) }
func endMap(s Sink) error   { return s.EndMap() }
func key(name string) func(Sink) error {
	return func(s Sink) error { return s.WriteKey(name) }
}
func float(v float64) func(Sink) error {
	return func(s Sink) error { return s.WriteFloat(v) }
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func TestYAMLSink_FlowMapAndEmptySequence(t *testing.T) {
	var buf bytes.Buffer
	s := NewYAMLSink(&buf)

	run(t, s,
		beginDoc, blockMap, key("Gadget"), blockMap,
		key("position"), flowMap,
		key("x"), float(1), key("y"), float(2), key("z"), float(3),
		endMap,
		key("children"),
		func(s Sink) error { return s.BeginSequence(Flow) },
		func(s Sink) error { return s.EndSequence() },
		endMap, endMap, endDoc,
	)

	want := "---\nGadget:\n  position: {x: 1, y: 2, z: 3}\n  children: []\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 1, s.Documents())
}

func TestYAMLSink_QuotedAndScalars(t *testing.T) {
	var buf bytes.Buffer
	s := NewYAMLSink(&buf)

	run(t, s,
		beginDoc, blockMap, key("T"), blockMap,
		key("ref"), flowMap, key("fileId"),
		func(s Sink) error { return s.WriteQuoted("abc") },
		endMap,
		key("nil"), flowMap, key("fileId"),
		func(s Sink) error { return s.WriteInt(0) },
		endMap,
		key("name"), func(s Sink) error { return s.WriteString("cube") },
		key("count"), func(s Sink) error { return s.WriteUint(7) },
		key("active"), func(s Sink) error { return s.WriteBool(true) },
		endMap, endMap, endDoc,
	)

	want := "---\nT:\n" +
		"  ref: {fileId: \"abc\"}\n" +
		"  nil: {fileId: 0}\n" +
		"  name: cube\n" +
		"  count: 7\n" +
		"  active: true\n"
	assert.Equal(t, want, buf.String())
}

func TestYAMLSink_NumericLookingStringIsQuoted(t *testing.T) {
	var buf bytes.Buffer
	s := NewYAMLSink(&buf)

	run(t, s,
		beginDoc, blockMap, key("T"), blockMap,
		key("name"), func(s Sink) error { return s.WriteString("42") },
		endMap, endMap, endDoc,
	)

	var decoded map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "42", decoded["T"]["name"])
}

func TestYAMLSink_BlockSequence(t *testing.T) {
	var buf bytes.Buffer
	s := NewYAMLSink(&buf)

	run(t, s,
		beginDoc, blockMap, key("T"), blockMap,
		key("items"),
		func(s Sink) error { return s.BeginSequence(Block) },
		func(s Sink) error { return s.WriteInt(3) },
		func(s Sink) error { return s.WriteInt(1) },
		func(s Sink) error { return s.WriteInt(2) },
		func(s Sink) error { return s.EndSequence() },
		endMap, endMap, endDoc,
	)

	var decoded map[string]map[string][]int
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []int{3, 1, 2}, decoded["T"]["items"])
	assert.NotContains(t, buf.String(), "[")
}

func TestYAMLSink_MultipleDocuments(t *testing.T) {
	var buf bytes.Buffer
	s := NewYAMLSink(&buf, WithIndent(4))

	for _, name := range []string{"A", "B", "C"} {
		run(t, s, beginDoc, blockMap, key(name), flowMap, endMap, endMap, endDoc)
	}

	assert.Equal(t, "---\nA: {}\n---\nB: {}\n---\nC: {}\n", buf.String())
	assert.Equal(t, 3, s.Documents())
}

func TestYAMLSink_NestedFlowInheritsStyle(t *testing.T) {
	var buf bytes.Buffer
	s := NewYAMLSink(&buf)

	run(t, s,
		beginDoc, blockMap, key("T"), flowMap,
		key("inner"), blockMap, key("a"), float(1), endMap,
		endMap, endMap, endDoc,
	)

	assert.Equal(t, "---\nT: {inner: {a: 1}}\n", buf.String())
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1"},
		{0.5, "0.5"},
		{-2.25, "-2.25"},
		{math.NaN(), ".nan"},
		{math.Inf(1), ".inf"},
		{math.Inf(-1), "-.inf"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.in))
	}
}

// ---------------------------------------------------------------------------
// Token stream validation
// ---------------------------------------------------------------------------

func TestYAMLSink_Errors(t *testing.T) {
	tests := []struct {
		name  string
		steps []func(Sink) error
		want  error
	}{
		{"key outside document", []func(Sink) error{key("a")}, ErrNoDocument},
		{"end map outside document", []func(Sink) error{endMap}, ErrNoDocument},
		{"end without begin", []func(Sink) error{endDoc}, ErrNoDocument},
		{"nested document", []func(Sink) error{beginDoc, beginDoc}, ErrNestedDocument},
		{"end map on document", []func(Sink) error{beginDoc, endMap}, ErrUnbalanced},
		{"end seq on map", []func(Sink) error{beginDoc, blockMap, func(s Sink) error { return s.EndSequence() }}, ErrUnbalanced},
		{"value at key position", []func(Sink) error{beginDoc, blockMap, float(1)}, ErrKeyExpected},
		{"key at value position", []func(Sink) error{beginDoc, blockMap, key("a"), key("b")}, ErrKeyOutsideMap},
		{"key in sequence", []func(Sink) error{beginDoc, func(s Sink) error { return s.BeginSequence(Block) }, key("a")}, ErrKeyOutsideMap},
		{"dangling key", []func(Sink) error{beginDoc, blockMap, key("a"), endMap}, ErrUnbalanced},
		{"open collection at end", []func(Sink) error{beginDoc, blockMap, endDoc}, ErrUnbalanced},
		{"empty document", []func(Sink) error{beginDoc, endDoc}, ErrUnbalanced},
		{"second root", []func(Sink) error{beginDoc, blockMap, endMap, blockMap}, ErrUnbalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewYAMLSink(&bytes.Buffer{})

			var err error
			for _, step := range tt.steps {
				if err = step(s); err != nil {
					break
				}
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestYAMLSink_ImplicitDocument(t *testing.T) {
	var buf bytes.Buffer
	s := NewYAMLSink(&buf)

	run(t, s, flowMap, key("fileId"), func(s Sink) error { return s.WriteInt(0) }, endMap)
	run(t, s, float(2.5))

	assert.Equal(t, "---\n{fileId: 0}\n---\n2.5\n", buf.String())
	assert.Equal(t, 2, s.Documents())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestYAMLSink_WriterErrorPropagates(t *testing.T) {
	s := NewYAMLSink(failingWriter{})

	require.NoError(t, s.BeginDocument())
	require.NoError(t, s.BeginMap(Block))
	require.NoError(t, s.WriteKey("A"))
	require.NoError(t, s.BeginMap(Flow))
	require.NoError(t, s.EndMap())
	require.NoError(t, s.EndMap())

	err := s.EndDocument()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 0, s.Documents())
}
