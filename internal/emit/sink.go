package emit

import "errors"

// Style selects how a collection is rendered.
type Style int

const (
	// Block renders one entry per line with indentation.
	Block Style = iota
	// Flow renders the collection inline, e.g. {x: 1, y: 2} or [].
	Flow
)

// String returns the style name.
func (s Style) String() string {
	if s == Flow {
		return "flow"
	}

	return "block"
}

// Sentinel errors returned by sinks that validate the token stream.
var (
	// ErrNoDocument is returned when a token arrives outside a document.
	ErrNoDocument = errors.New("no open document")
	// ErrNestedDocument is returned when a document is opened inside another.
	ErrNestedDocument = errors.New("document already open")
	// ErrUnbalanced is returned when an end token does not match the open
	// collection, or a document closes with open collections.
	ErrUnbalanced = errors.New("unbalanced structural token")
	// ErrKeyOutsideMap is returned when a key is written where no map key is
	// expected.
	ErrKeyOutsideMap = errors.New("key written outside map key position")
	// ErrKeyExpected is returned when a value is written where a map key is
	// expected.
	ErrKeyExpected = errors.New("map key expected")
)

// Sink accepts structural tokens and scalar values. Every method reports
// failure through its error; sinks never drop tokens silently.
type Sink interface {
	// BeginDocument starts a new top-level document.
	BeginDocument() error
	// EndDocument closes the current document and flushes it.
	EndDocument() error

	// BeginMap opens a mapping. Inside a map, keys written with WriteKey
	// alternate with values.
	BeginMap(style Style) error
	// EndMap closes the innermost mapping.
	EndMap() error

	// BeginSequence opens a sequence.
	BeginSequence(style Style) error
	// EndSequence closes the innermost sequence.
	EndSequence() error

	// WriteKey writes a map key. Type discriminants are written this way.
	WriteKey(name string) error

	// WriteString writes a plain text scalar.
	WriteString(s string) error
	// WriteQuoted writes a text scalar that is always double-quoted.
	WriteQuoted(s string) error
	// WriteInt writes a signed integer scalar.
	WriteInt(v int64) error
	// WriteUint writes an unsigned integer scalar.
	WriteUint(v uint64) error
	// WriteFloat writes a floating-point scalar.
	WriteFloat(v float64) error
	// WriteBool writes a boolean scalar.
	WriteBool(v bool) error
}
