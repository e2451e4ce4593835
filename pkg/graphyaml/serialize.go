// Package graphyaml provides a public Go API for serializing scene manifests
// into multi-document YAML archives.
//
// This package exposes the graphyaml pipeline as a library, allowing
// programmatic use without the CLI.
//
// Basic usage:
//
//	result, err := graphyaml.Serialize(ctx, "scene.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(result.YAML))
//
// With options:
//
//	result, err := graphyaml.Serialize(ctx, "scene.toml",
//	    graphyaml.WithIndent(4),
//	    graphyaml.WithNamespace("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
//	    graphyaml.WithValidation(),
//	)
package graphyaml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/graphyaml/internal/archive"
	"github.com/hupe1980/graphyaml/internal/config"
	"github.com/hupe1980/graphyaml/internal/emit"
	"github.com/hupe1980/graphyaml/internal/output"
	"github.com/hupe1980/graphyaml/internal/scene"
	"github.com/hupe1980/graphyaml/internal/yamlutil"
)

// ErrValidation is returned by Serialize when WithValidation is set and the
// generated archive has errors.
var ErrValidation = errors.New("archive failed validation")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Option configures serialization.
type Option func(*options)

type options struct {
	indent    int
	namespace string
	validate  bool
	logger    *slog.Logger
}

// WithIndent sets the number of spaces per nesting level.
func WithIndent(n int) Option {
	return func(o *options) { o.indent = n }
}

// WithNamespace sets the identity namespace used when the manifest does not
// declare one.
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithValidation checks the generated archive and fails with ErrValidation
// when it has errors.
func WithValidation() Option {
	return func(o *options) { o.validate = true }
}

// WithLogger sets the logger for archive debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Stats summarizes a serialization pass.
type Stats struct {
	Documents     int
	References    int
	Deferred      int
	NilReferences int
}

// Result holds the output of a successful serialization.
type Result struct {
	// YAML is the multi-document archive.
	YAML []byte

	// Documents holds each archive document decoded into a generic map,
	// suitable for further inspection.
	Documents []map[string]interface{}

	// Stats summarizes the pass.
	Stats Stats
}

// Serialize loads the manifest at path (YAML or TOML, by extension) and
// serializes its object graph.
func Serialize(ctx context.Context, path string, opts ...Option) (*Result, error) {
	if path == "" {
		return nil, errors.New("manifest path must not be empty")
	}

	m, err := scene.LoadManifest(path)
	if err != nil {
		return nil, err
	}

	return serialize(ctx, m, opts)
}

// SerializeManifest parses data in the given format ("yaml" or "toml") and
// serializes its object graph.
func SerializeManifest(ctx context.Context, data []byte, format string, opts ...Option) (*Result, error) {
	m, err := scene.ParseManifest(data, scene.ManifestFormat(strings.ToLower(format)))
	if err != nil {
		return nil, err
	}

	return serialize(ctx, m, opts)
}

func serialize(ctx context.Context, m *scene.Manifest, opts []Option) (*Result, error) {
	o := &options{indent: config.DefaultIndent}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = discardLogger()
	}

	if o.indent < config.MinIndent || o.indent > config.MaxIndent {
		return nil, fmt.Errorf("indent %d out of range [%d, %d]", o.indent, config.MinIndent, config.MaxIndent)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if m.Namespace == "" {
		m.Namespace = o.namespace
	}

	g, err := m.Build()
	if err != nil {
		return nil, err
	}

	var stats archive.Stats

	pass := func(sink emit.Sink) error {
		a := archive.New(sink, archive.WithLogger(o.logger))
		err := g.Serialize(a)
		stats = a.Stats()

		return err
	}

	data, err := output.EncodeYAML(pass, output.EncodeOptions{Indent: o.indent})
	if err != nil {
		return nil, fmt.Errorf("serializing scene: %w", err)
	}

	if o.validate {
		if v := output.ValidateArchive(data); v.HasErrors() {
			return nil, fmt.Errorf("%w: %s", ErrValidation, v.Errors()[0].Error())
		}
	}

	docs := yamlutil.SplitDocuments(data)
	decoded := make([]map[string]interface{}, 0, len(docs))

	for i, doc := range docs {
		var d map[string]interface{}
		if err := sigsyaml.Unmarshal(doc, &d); err != nil {
			return nil, fmt.Errorf("decoding document %d: %w", i+1, err)
		}

		decoded = append(decoded, d)
	}

	return &Result{
		YAML:      data,
		Documents: decoded,
		Stats: Stats{
			Documents:     stats.Documents,
			References:    stats.References,
			Deferred:      stats.Deferred,
			NilReferences: stats.NilReferences,
		},
	}, nil
}
