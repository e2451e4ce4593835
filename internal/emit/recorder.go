package emit

import (
	"strconv"
	"strings"
)

// TokenKind identifies a recorded token.
type TokenKind int

// Recorded token kinds.
const (
	BeginDocument TokenKind = iota
	EndDocument
	BeginMap
	EndMap
	BeginSequence
	EndSequence
	Key
	Scalar
)

var tokenNames = [...]string{
	BeginDocument: "BeginDoc",
	EndDocument:   "EndDoc",
	BeginMap:      "BeginMap",
	EndMap:        "EndMap",
	BeginSequence: "BeginSeq",
	EndSequence:   "EndSeq",
	Key:           "Key",
	Scalar:        "Scalar",
}

// String returns the token kind name.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}

	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Token is a single recorded sink event.
type Token struct {
	Kind  TokenKind
	Style Style
	// Value holds the key name or the textual scalar value.
	Value string
}

// String renders the token compactly, e.g. BeginMap(flow) or Key(m_Name).
func (t Token) String() string {
	switch t.Kind {
	case BeginMap, BeginSequence:
		if t.Style == Flow {
			return t.Kind.String() + "(flow)"
		}

		return t.Kind.String()
	case Key, Scalar:
		return t.Kind.String() + "(" + t.Value + ")"
	default:
		return t.Kind.String()
	}
}

// Recorder is a Sink that stores every token it receives.
// Its methods never fail.
type Recorder struct {
	tokens []Token
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Tokens returns the recorded tokens in arrival order.
func (r *Recorder) Tokens() []Token {
	return r.tokens
}

// Count returns how many tokens of kind k were recorded.
func (r *Recorder) Count(k TokenKind) int {
	n := 0

	for _, t := range r.tokens {
		if t.Kind == k {
			n++
		}
	}

	return n
}

// Reset discards all recorded tokens.
func (r *Recorder) Reset() {
	r.tokens = r.tokens[:0]
}

// String renders all tokens separated by single spaces.
func (r *Recorder) String() string {
	parts := make([]string, len(r.tokens))
	for i, t := range r.tokens {
		parts[i] = t.String()
	}

	return strings.Join(parts, " ")
}

func (r *Recorder) add(t Token) error {
	r.tokens = append(r.tokens, t)
	return nil
}

// BeginDocument implements Sink.
func (r *Recorder) BeginDocument() error { return r.add(Token{Kind: BeginDocument}) }

// EndDocument implements Sink.
func (r *Recorder) EndDocument() error { return r.add(Token{Kind: EndDocument}) }

// BeginMap implements Sink.
func (r *Recorder) BeginMap(style Style) error { return r.add(Token{Kind: BeginMap, Style: style}) }

// EndMap implements Sink.
func (r *Recorder) EndMap() error { return r.add(Token{Kind: EndMap}) }

// BeginSequence implements Sink.
func (r *Recorder) BeginSequence(style Style) error {
	return r.add(Token{Kind: BeginSequence, Style: style})
}

// EndSequence implements Sink.
func (r *Recorder) EndSequence() error { return r.add(Token{Kind: EndSequence}) }

// WriteKey implements Sink.
func (r *Recorder) WriteKey(name string) error { return r.add(Token{Kind: Key, Value: name}) }

// WriteString implements Sink.
func (r *Recorder) WriteString(s string) error { return r.add(Token{Kind: Scalar, Value: s}) }

// WriteQuoted implements Sink.
func (r *Recorder) WriteQuoted(s string) error {
	return r.add(Token{Kind: Scalar, Value: strconv.Quote(s)})
}

// WriteInt implements Sink.
func (r *Recorder) WriteInt(v int64) error {
	return r.add(Token{Kind: Scalar, Value: strconv.FormatInt(v, 10)})
}

// WriteUint implements Sink.
func (r *Recorder) WriteUint(v uint64) error {
	return r.add(Token{Kind: Scalar, Value: strconv.FormatUint(v, 10)})
}

// WriteFloat implements Sink.
func (r *Recorder) WriteFloat(v float64) error {
	return r.add(Token{Kind: Scalar, Value: formatFloat(v)})
}

// WriteBool implements Sink.
func (r *Recorder) WriteBool(v bool) error {
	return r.add(Token{Kind: Scalar, Value: strconv.FormatBool(v)})
}
