package archive

import (
	"reflect"
	"strconv"
	"weak"

	"github.com/hupe1980/graphyaml/internal/emit"
	"github.com/hupe1980/graphyaml/internal/identity"
)

// FileIDKey is the single key of a reference token.
const FileIDKey = "fileId"

// Value is a writable value. Each implementation is one value category and
// defines the tokens it opens, the content it writes and the tokens it
// closes. The methods are unexported, so the set of categories is fixed by
// this package; object models compose them with Object, Inline, Base and
// the sequence constructors.
type Value interface {
	prologue(a *Archive) error
	save(a *Archive) error
	epilogue(a *Archive) error
}

// transparent contributes no structural tokens of its own.
type transparent struct{}

func (transparent) prologue(*Archive) error { return nil }
func (transparent) epilogue(*Archive) error { return nil }

// ---------------------------------------------------------------------------
// Scalars
// ---------------------------------------------------------------------------

type intValue struct {
	transparent
	v int64
}

func (v intValue) save(a *Archive) error { return a.sink.WriteInt(v.v) }

type uintValue struct {
	transparent
	v uint64
}

func (v uintValue) save(a *Archive) error { return a.sink.WriteUint(v.v) }

type floatValue struct {
	transparent
	v float64
}

func (v floatValue) save(a *Archive) error { return a.sink.WriteFloat(v.v) }

type boolValue struct {
	transparent
	v bool
}

func (v boolValue) save(a *Archive) error { return a.sink.WriteBool(v.v) }

type stringValue struct {
	transparent
	v string
}

func (v stringValue) save(a *Archive) error { return a.sink.WriteString(v.v) }

// Int returns a signed integer scalar.
func Int[T ~int | ~int8 | ~int16 | ~int32 | ~int64](v T) Value {
	return intValue{v: int64(v)}
}

// Uint returns an unsigned integer scalar.
func Uint[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr](v T) Value {
	return uintValue{v: uint64(v)}
}

// Float returns a floating-point scalar. 32-bit values are written with
// the shortest decimal that round-trips at 32-bit precision.
func Float[T ~float32 | ~float64](v T) Value {
	if reflect.TypeFor[T]().Kind() == reflect.Float32 {
		return floatValue{v: widen(float32(v))}
	}

	return floatValue{v: float64(v)}
}

// widen converts f to float64 without exposing float32 rounding noise,
// e.g. float32(0.1) becomes 0.1 rather than 0.10000000149011612.
func widen(f float32) float64 {
	w, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}

	return w
}

// Bool returns a boolean scalar.
func Bool(v bool) Value {
	return boolValue{v: v}
}

// String returns a text scalar.
func String(v string) Value {
	return stringValue{v: v}
}

// Enum writes an enumeration constant as its unsigned 32-bit value.
func Enum[E ~int | ~int8 | ~int16 | ~int32 | ~uint | ~uint8 | ~uint16 | ~uint32](e E) Value {
	return uintValue{v: uint64(uint32(e))}
}

// ---------------------------------------------------------------------------
// Composites
// ---------------------------------------------------------------------------

type object struct {
	f Fielder
}

func (o object) prologue(a *Archive) error { return a.sink.BeginMap(emit.Block) }
func (o object) save(a *Archive) error     { return o.f.SerializeFields(a) }
func (o object) epilogue(a *Archive) error { return a.sink.EndMap() }

// Object writes f as a nested block map.
func Object(f Fielder) Value {
	return object{f: f}
}

type inline struct {
	f Fielder
}

func (o inline) prologue(a *Archive) error { return a.sink.BeginMap(emit.Flow) }
func (o inline) save(a *Archive) error     { return o.f.SerializeFields(a) }
func (o inline) epilogue(a *Archive) error { return a.sink.EndMap() }

// Inline writes f as a map on a single line. Use it for short, always
// present tuples of scalars.
func Inline(f Fielder) Value {
	return inline{f: f}
}

type base struct {
	transparent
	inner object
}

// save skips the inner object's prologue and epilogue, so the base fields
// land in the map that is already open.
func (b base) save(a *Archive) error { return b.inner.save(a) }

// Base writes the fields of an embedded base type into the enclosing map
// instead of a nested one.
func Base(f Fielder) Value {
	return base{inner: object{f: f}}
}

// ---------------------------------------------------------------------------
// Fixed small composites
// ---------------------------------------------------------------------------

type fixed struct {
	keys   []string
	values []float32
}

func (v fixed) prologue(a *Archive) error { return a.sink.BeginMap(emit.Flow) }

func (v fixed) save(a *Archive) error {
	for i, k := range v.keys {
		if err := a.sink.WriteKey(k); err != nil {
			return err
		}

		if err := a.sink.WriteFloat(widen(v.values[i])); err != nil {
			return err
		}
	}

	return nil
}

func (v fixed) epilogue(a *Archive) error { return a.sink.EndMap() }

var (
	xy   = []string{"x", "y"}
	xyz  = []string{"x", "y", "z"}
	xyzw = []string{"x", "y", "z", "w"}
)

// Vec2 writes {x: .., y: ..}.
func Vec2(x, y float32) Value {
	return fixed{keys: xy, values: []float32{x, y}}
}

// Vec3 writes {x: .., y: .., z: ..}.
func Vec3(x, y, z float32) Value {
	return fixed{keys: xyz, values: []float32{x, y, z}}
}

// Vec4 writes {x: .., y: .., z: .., w: ..}.
func Vec4(x, y, z, w float32) Value {
	return fixed{keys: xyzw, values: []float32{x, y, z, w}}
}

// Quat writes a rotation quaternion as {x: .., y: .., z: .., w: ..}.
func Quat(x, y, z, w float32) Value {
	return fixed{keys: xyzw, values: []float32{x, y, z, w}}
}

// ---------------------------------------------------------------------------
// Sequences
// ---------------------------------------------------------------------------

type sequence struct {
	n  int
	at func(i int) Value
}

// prologue renders an empty sequence in flow style so it prints as [].
func (s sequence) prologue(a *Archive) error {
	style := emit.Block
	if s.n == 0 {
		style = emit.Flow
	}

	return a.sink.BeginSequence(style)
}

func (s sequence) save(a *Archive) error {
	for i := range s.n {
		if err := a.Write(s.at(i)); err != nil {
			return err
		}
	}

	return nil
}

func (s sequence) epilogue(a *Archive) error { return a.sink.EndSequence() }

// Seq writes the given values as an ordered sequence.
func Seq(items ...Value) Value {
	return sequence{n: len(items), at: func(i int) Value { return items[i] }}
}

// Slice writes items as an ordered sequence, converting each element with
// each.
func Slice[T any](items []T, each func(T) Value) Value {
	return sequence{n: len(items), at: func(i int) Value { return each(items[i]) }}
}

// Refs writes a sequence of shared references.
func Refs[T Node](nodes []T) Value {
	return Slice(nodes, func(n T) Value { return Ref(n) })
}

// Size is a length marker. Lengths are implied by sequence boundaries, so it
// writes nothing, and NVP drops the key of a named marker.
func Size(int) Value {
	return sizeTag{}
}

type sizeTag struct{ transparent }

func (sizeTag) save(*Archive) error { return nil }

// ---------------------------------------------------------------------------
// Transparent wrappers
// ---------------------------------------------------------------------------

type nvp struct {
	transparent
	name  string
	value Value
}

func (p nvp) save(a *Archive) error {
	if _, ok := p.value.(sizeTag); ok {
		return nil
	}

	if err := a.sink.WriteKey(p.name); err != nil {
		return err
	}

	return a.Write(p.value)
}

// NVP writes value under the key name in the enclosing map.
func NVP(name string, value Value) Value {
	return nvp{name: name, value: value}
}

type shared struct {
	transparent
	node Node
}

func (s shared) save(a *Archive) error { return a.SerializeReference(s.node) }

// Ref writes a shared reference to n. A nil n writes {fileId: 0}.
func Ref(n Node) Value {
	return shared{node: n}
}

type weakRef struct {
	transparent
	resolve func() Node
}

func (w weakRef) save(a *Archive) error { return a.SerializeReference(w.resolve()) }

// Weak writes a weak reference. The target is resolved at write time; a
// target that has been collected writes {fileId: 0}.
func Weak[T any, P interface {
	*T
	Node
}](p weak.Pointer[T]) Value {
	return weakRef{resolve: func() Node {
		if v := p.Value(); v != nil {
			return P(v)
		}

		return nil
	}}
}

// ---------------------------------------------------------------------------
// Reference tokens
// ---------------------------------------------------------------------------

type idValue struct {
	id identity.ID
}

func (idValue) prologue(a *Archive) error { return a.sink.BeginMap(emit.Flow) }

func (v idValue) save(a *Archive) error {
	if err := a.sink.WriteKey(FileIDKey); err != nil {
		return err
	}

	return a.sink.WriteQuoted(v.id.String())
}

func (idValue) epilogue(a *Archive) error { return a.sink.EndMap() }

// Identity writes id as the reference token {fileId: "<uuid>"}.
func Identity(id identity.ID) Value {
	return idValue{id: id}
}

type nilValue struct{}

func (nilValue) prologue(a *Archive) error { return a.sink.BeginMap(emit.Flow) }

func (nilValue) save(a *Archive) error {
	if err := a.sink.WriteKey(FileIDKey); err != nil {
		return err
	}

	return a.sink.WriteInt(0)
}

func (nilValue) epilogue(a *Archive) error { return a.sink.EndMap() }

// Nil writes the absent reference {fileId: 0}.
func Nil() Value {
	return nilValue{}
}
