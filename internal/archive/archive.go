package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/hupe1980/graphyaml/internal/emit"
	"github.com/hupe1980/graphyaml/internal/identity"
)

// ErrAborted is returned by every call made after a pass has failed.
var ErrAborted = errors.New("archive pass aborted")

// Fielder writes its fields into the map that is currently open.
// Implementations must enumerate the same fields in the same order on every
// call.
type Fielder interface {
	SerializeFields(a *Archive) error
}

// Node is an object that may be referenced from several places in the graph.
// TypeTag must name the concrete runtime type, not the type of the handle
// used to reach the object.
type Node interface {
	Fielder
	ID() identity.ID
	TypeTag() string
}

// Stats summarizes a serialization pass.
type Stats struct {
	// Documents is the number of objects expanded into their own document.
	Documents int
	// References is the number of reference tokens written.
	References int
	// Deferred is the number of times an object was queued for later expansion.
	Deferred int
	// NilReferences is the number of absent references written as {fileId: 0}.
	NilReferences int
	// Skipped counts top-level requests for objects that were already written.
	Skipped int
}

// Archive writes an object graph to an emit.Sink.
type Archive struct {
	sink   emit.Sink
	logger *slog.Logger

	written map[identity.ID]bool
	pending []Node
	inside  bool

	err   error
	stats Stats
}

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger used for debug tracing of the pass.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an archive writing to sink.
func New(sink emit.Sink, opts ...Option) *Archive {
	a := &Archive{
		sink:    sink,
		logger:  slog.New(slog.DiscardHandler),
		written: make(map[identity.ID]bool),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Sink returns the sink the archive writes to.
func (a *Archive) Sink() emit.Sink {
	return a.sink
}

// Stats returns the counters accumulated since New or the last Reset.
func (a *Archive) Stats() Stats {
	return a.stats
}

// Written reports whether a document has been opened for id.
func (a *Archive) Written(id identity.ID) bool {
	return a.written[id]
}

// Pending returns the number of objects waiting for their own document.
func (a *Archive) Pending() int {
	return len(a.pending)
}

// Err returns the error that aborted the pass, if any.
func (a *Archive) Err() error {
	return a.err
}

// Reset clears all pass state so the archive can serialize an unrelated
// graph. The sink is kept.
func (a *Archive) Reset() {
	clear(a.written)
	clear(a.pending)
	a.pending = a.pending[:0]
	a.inside = false
	a.err = nil
	a.stats = Stats{}
}

// Write emits v: its opening tokens, its content, then its closing tokens.
func (a *Archive) Write(v Value) error {
	if a.err != nil {
		return a.aborted()
	}

	if err := v.prologue(a); err != nil {
		return a.fail(err)
	}

	if err := v.save(a); err != nil {
		return a.fail(err)
	}

	if err := v.epilogue(a); err != nil {
		return a.fail(err)
	}

	return nil
}

// Fields writes each value in order and stops at the first failure.
func (a *Archive) Fields(values ...Value) error {
	for _, v := range values {
		if err := a.Write(v); err != nil {
			return err
		}
	}

	return nil
}

// SerializeReference writes the object n.
//
// Outside a document, an object that was never written is expanded into a
// new document; objects discovered while that document is open are queued
// and expanded afterwards, most recently discovered first. Inside a
// document, n is written as a reference token. A nil n writes {fileId: 0}.
//
// Requesting an object that was already written while no document is open
// produces no output.
func (a *Archive) SerializeReference(n Node) error {
	if a.err != nil {
		return a.aborted()
	}

	topLevel := !a.inside

	if err := a.serialize(n); err != nil {
		return a.fail(err)
	}

	if !topLevel {
		return nil
	}

	return a.drain()
}

func (a *Archive) serialize(n Node) error {
	if isNil(n) {
		a.stats.NilReferences++
		return a.Write(Nil())
	}

	id := n.ID()

	if a.written[id] {
		if !a.inside {
			// TODO: decide whether a repeated root request should re-emit or
			// fail once callers depend on one behavior.
			a.stats.Skipped++
			a.logger.Debug("object already written", slog.String("type", n.TypeTag()), slog.String("id", id.String()))

			return nil
		}

		a.stats.References++

		return a.Write(Identity(id))
	}

	if a.inside {
		a.pending = append(a.pending, n)
		a.stats.Deferred++
		a.stats.References++

		a.logger.Debug("deferring object", slog.String("type", n.TypeTag()), slog.String("id", id.String()))

		return a.Write(Identity(id))
	}

	return a.writeDocument(n)
}

// writeDocument expands n into its own document. The identity is marked as
// written before any field is visited so that self references terminate.
func (a *Archive) writeDocument(n Node) error {
	id := n.ID()
	tag := n.TypeTag()

	a.written[id] = true

	a.logger.Debug("opening document", slog.String("type", tag), slog.String("id", id.String()))

	if err := a.sink.BeginDocument(); err != nil {
		return err
	}

	a.inside = true

	if err := a.sink.BeginMap(emit.Block); err != nil {
		return err
	}

	if err := a.sink.WriteKey(tag); err != nil {
		return err
	}

	if err := a.Write(Object(n)); err != nil {
		return err
	}

	if err := a.sink.EndMap(); err != nil {
		return err
	}

	if err := a.sink.EndDocument(); err != nil {
		return err
	}

	a.inside = false
	a.stats.Documents++

	return nil
}

// drain expands queued objects one document at a time, last in first out.
// An object queued more than once is expanded by its first pop; later pops
// hit the already-written path and emit nothing.
func (a *Archive) drain() error {
	for len(a.pending) > 0 {
		last := len(a.pending) - 1
		n := a.pending[last]
		a.pending[last] = nil
		a.pending = a.pending[:last]

		if err := a.serialize(n); err != nil {
			return a.fail(err)
		}
	}

	return nil
}

func (a *Archive) fail(err error) error {
	if a.err == nil {
		a.err = err
		a.logger.Debug("archive pass failed", slog.String("error", err.Error()))
	}

	return err
}

func (a *Archive) aborted() error {
	return fmt.Errorf("%w: %w", ErrAborted, a.err)
}

// isNil reports whether n is a nil interface or wraps a nil pointer.
func isNil(n Node) bool {
	if n == nil {
		return true
	}

	v := reflect.ValueOf(n)

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
