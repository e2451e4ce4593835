package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/graphyaml/internal/emit"
)

// Built-in format names.
const (
	FormatYAML   = "yaml"
	FormatJSON   = "json"
	FormatTokens = "tokens"
)

// Pass runs one serialization pass, writing every document to sink.
type Pass func(sink emit.Sink) error

// EncodeOptions configures an Encoder.
type EncodeOptions struct {
	// Indent is the number of spaces per nesting level (default: 2).
	Indent int
}

// Encoder renders a serialization pass in one output format.
type Encoder func(pass Pass, opts EncodeOptions) ([]byte, error)

// Registry maps format names to encoders.
type Registry struct {
	mu       sync.RWMutex
	encoders map[string]Encoder
}

// NewRegistry creates an empty encoder registry.
func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[string]Encoder),
	}
}

// Register adds an encoder under the given format name.
// Existing entries for the same name are overwritten.
func (r *Registry) Register(name string, enc Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.encoders[name] = enc
}

// Encoder returns the encoder for the given format, or an error if not found.
func (r *Registry) Encoder(name string) (Encoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enc, ok := r.encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", name, r.availableLocked())
	}

	return enc, nil
}

// Formats returns the sorted list of registered format names.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.formatsLocked()
}

// AvailableFormats returns a comma-separated string of registered format names.
func (r *Registry) AvailableFormats() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.availableLocked()
}

func (r *Registry) formatsLocked() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *Registry) availableLocked() string {
	formats := r.formatsLocked()
	if len(formats) == 0 {
		return "none"
	}

	return strings.Join(formats, ", ")
}

// DefaultRegistry returns a registry pre-populated with the built-in
// formats: yaml, json and tokens.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(FormatYAML, EncodeYAML)
	r.Register(FormatJSON, EncodeJSON)
	r.Register(FormatTokens, EncodeTokens)

	return r
}

// EncodeYAML renders the pass as a multi-document YAML stream.
func EncodeYAML(pass Pass, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer

	if err := pass(emit.NewYAMLSink(&buf, emit.WithIndent(opts.Indent))); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// EncodeJSON renders the pass as a JSON array with one element per document.
func EncodeJSON(pass Pass, opts EncodeOptions) ([]byte, error) {
	data, err := EncodeYAML(pass, opts)
	if err != nil {
		return nil, err
	}

	return DocumentsToJSON(data, opts.Indent)
}

// EncodeTokens renders the raw sink events, one per line, indented by
// nesting depth.
func EncodeTokens(pass Pass, opts EncodeOptions) ([]byte, error) {
	rec := emit.NewRecorder()
	if err := pass(rec); err != nil {
		return nil, err
	}

	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}

	var buf bytes.Buffer

	depth := 0

	for _, tok := range rec.Tokens() {
		switch tok.Kind {
		case emit.EndDocument, emit.EndMap, emit.EndSequence:
			depth = max(depth-1, 0)
		}

		buf.WriteString(strings.Repeat(" ", depth*indent))
		buf.WriteString(tok.String())
		buf.WriteByte('\n')

		switch tok.Kind {
		case emit.BeginDocument, emit.BeginMap, emit.BeginSequence:
			depth++
		}
	}

	return buf.Bytes(), nil
}
