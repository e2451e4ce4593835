package emit

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DocumentStart is written before every document.
const DocumentStart = "---\n"

// YAMLSink renders the token stream as multi-document YAML.
type YAMLSink struct {
	out    io.Writer
	indent int

	doc      *yaml.Node
	stack    []*yaml.Node
	flow     int // number of open flow collections
	implicit bool

	documents int
}

// YAMLOption configures a YAMLSink.
type YAMLOption func(*YAMLSink)

// WithIndent sets the number of spaces per nesting level (default 2).
func WithIndent(n int) YAMLOption {
	return func(s *YAMLSink) {
		if n > 0 {
			s.indent = n
		}
	}
}

// NewYAMLSink creates a sink writing YAML documents to w.
func NewYAMLSink(w io.Writer, opts ...YAMLOption) *YAMLSink {
	s := &YAMLSink{
		out:    w,
		indent: 2,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Documents returns the number of documents flushed so far.
func (s *YAMLSink) Documents() int {
	return s.documents
}

// BeginDocument implements Sink.
func (s *YAMLSink) BeginDocument() error {
	if s.doc != nil {
		return ErrNestedDocument
	}

	s.doc = &yaml.Node{Kind: yaml.DocumentNode}
	s.stack = append(s.stack[:0], s.doc)

	return nil
}

// EndDocument implements Sink. The finished node tree is encoded and written
// to the underlying writer in one call.
func (s *YAMLSink) EndDocument() error {
	if s.doc == nil {
		return ErrNoDocument
	}

	if len(s.stack) != 1 {
		return fmt.Errorf("closing document with %d open collections: %w", len(s.stack)-1, ErrUnbalanced)
	}

	if len(s.doc.Content) == 0 {
		return fmt.Errorf("closing empty document: %w", ErrUnbalanced)
	}

	var buf bytes.Buffer

	buf.WriteString(DocumentStart)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(s.indent)

	if err := enc.Encode(s.doc); err != nil {
		return fmt.Errorf("encoding document %d: %w", s.documents+1, err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding document %d: %w", s.documents+1, err)
	}

	if _, err := s.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing document %d: %w", s.documents+1, err)
	}

	s.doc = nil
	s.stack = s.stack[:0]
	s.implicit = false
	s.documents++

	return nil
}

// BeginMap implements Sink.
func (s *YAMLSink) BeginMap(style Style) error {
	return s.open(yaml.MappingNode, "!!map", style)
}

// EndMap implements Sink.
func (s *YAMLSink) EndMap() error {
	return s.close(yaml.MappingNode)
}

// BeginSequence implements Sink.
func (s *YAMLSink) BeginSequence(style Style) error {
	return s.open(yaml.SequenceNode, "!!seq", style)
}

// EndSequence implements Sink.
func (s *YAMLSink) EndSequence() error {
	return s.close(yaml.SequenceNode)
}

// WriteKey implements Sink.
func (s *YAMLSink) WriteKey(name string) error {
	top, err := s.top()
	if err != nil {
		return err
	}

	if top.Kind != yaml.MappingNode || len(top.Content)%2 != 0 {
		return fmt.Errorf("key %q: %w", name, ErrKeyOutsideMap)
	}

	top.Content = append(top.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name})

	return nil
}

// WriteString implements Sink.
func (s *YAMLSink) WriteString(v string) error {
	return s.scalar(&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
}

// WriteQuoted implements Sink.
func (s *YAMLSink) WriteQuoted(v string) error {
	return s.scalar(&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.DoubleQuotedStyle})
}

// WriteInt implements Sink.
func (s *YAMLSink) WriteInt(v int64) error {
	return s.scalar(&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatInt(v, 10)})
}

// WriteUint implements Sink.
func (s *YAMLSink) WriteUint(v uint64) error {
	return s.scalar(&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatUint(v, 10)})
}

// WriteFloat implements Sink. Whole numbers are written without a fraction
// (1.0 renders as 1); non-finite values use the YAML spellings.
func (s *YAMLSink) WriteFloat(v float64) error {
	return s.scalar(&yaml.Node{Kind: yaml.ScalarNode, Value: formatFloat(v)})
}

// WriteBool implements Sink.
func (s *YAMLSink) WriteBool(v bool) error {
	return s.scalar(&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(v)})
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}

func (s *YAMLSink) top() (*yaml.Node, error) {
	if s.doc == nil {
		return nil, ErrNoDocument
	}

	return s.stack[len(s.stack)-1], nil
}

// attach appends a value node to the innermost container. A value written
// while no document is open starts an implicit document that is flushed as
// soon as that value is complete.
func (s *YAMLSink) attach(n *yaml.Node) error {
	if s.doc == nil {
		if err := s.BeginDocument(); err != nil {
			return err
		}

		s.implicit = true
	}

	top, err := s.top()
	if err != nil {
		return err
	}

	switch top.Kind {
	case yaml.DocumentNode:
		if len(top.Content) > 0 {
			return fmt.Errorf("document already has a root value: %w", ErrUnbalanced)
		}
	case yaml.MappingNode:
		if len(top.Content)%2 == 0 {
			return ErrKeyExpected
		}
	}

	top.Content = append(top.Content, n)

	return nil
}

func (s *YAMLSink) scalar(n *yaml.Node) error {
	if err := s.attach(n); err != nil {
		return err
	}

	return s.flushImplicit()
}

func (s *YAMLSink) flushImplicit() error {
	if s.implicit && len(s.stack) == 1 {
		return s.EndDocument()
	}

	return nil
}

func (s *YAMLSink) open(kind yaml.Kind, tag string, style Style) error {
	n := &yaml.Node{Kind: kind, Tag: tag}

	if style == Flow || s.flow > 0 {
		n.Style = yaml.FlowStyle
	}

	if err := s.attach(n); err != nil {
		return err
	}

	if n.Style == yaml.FlowStyle {
		s.flow++
	}

	s.stack = append(s.stack, n)

	return nil
}

func (s *YAMLSink) close(kind yaml.Kind) error {
	top, err := s.top()
	if err != nil {
		return err
	}

	if top.Kind != kind {
		return ErrUnbalanced
	}

	if kind == yaml.MappingNode && len(top.Content)%2 != 0 {
		return fmt.Errorf("map closed after a key without value: %w", ErrUnbalanced)
	}

	s.stack = s.stack[:len(s.stack)-1]

	if top.Style == yaml.FlowStyle {
		s.flow--
	}

	return s.flushImplicit()
}
