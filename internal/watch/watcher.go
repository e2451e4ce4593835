package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc is called each time the watcher triggers a regeneration.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult summarizes a single serialization run.
type RunResult struct {
	Documents     int
	References    int
	NilReferences int
	OutputPath    string
}

// ValidateFunc is called after each successful run to check the archive
// written to outputPath.
type ValidateFunc func(ctx context.Context, outputPath string) error

// Options configures the watch behaviour.
type Options struct {
	// Paths are the files to watch, typically the scene manifest.
	Paths []string

	// Debounce is the quiet period before triggering a rebuild.
	Debounce time.Duration

	// Validate enables validation after each run.
	Validate bool

	// ValidateFn is called after each run when Validate is true and the
	// run wrote to a file.
	ValidateFn ValidateFunc

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out receives user-facing status lines.
	Out io.Writer
}

// DefaultOptions returns the default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Validate: true,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run watches opts.Paths and blocks until the context is cancelled or a
// SIGINT/SIGTERM signal is received. runFn is called once at start and
// again after every debounced change.
//
// The parent directories are watched rather than the files themselves, so
// editors that save by renaming a new file into place keep triggering runs.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if len(opts.Paths) == 0 {
		return errors.New("no files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	targets, err := addTargets(watcher, opts.Paths)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s, validate=%t)\n",
		strings.Join(opts.Paths, ", "), opts.Debounce, opts.Validate)

	r := &runner{opts: opts, runFn: runFn}

	r.run(sigCtx, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		r.run(sigCtx, filepath.Base(path))
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "shutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event) || !targets[filepath.Clean(event.Name)] {
				continue
			}

			opts.Logger.Debug("change detected", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// addTargets registers the parent directory of every path and returns the
// set of absolute file paths to react to.
func addTargets(watcher *fsnotify.Watcher, paths []string) (map[string]bool, error) {
	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", p, err)
		}

		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("watching %q: %w", p, err)
		}

		targets[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}

		if err := watcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %q: %w", dir, err)
		}

		dirs[dir] = true
	}

	return targets, nil
}

// runner serializes runs and remembers the previous result for reporting.
type runner struct {
	opts  Options
	runFn RunFunc

	mu   sync.Mutex
	prev *RunResult
}

func (r *runner) run(ctx context.Context, trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.opts.Out
	now := time.Now().Format("15:04:05")

	result, err := r.runFn(ctx)
	if err != nil {
		fmt.Fprintf(out, "[%s] %s -> ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(out, "[%s] %s -> OK (%d documents, %d references)\n",
		now, trigger, result.Documents, result.References)

	if r.prev != nil && r.prev.Documents != result.Documents {
		fmt.Fprintf(out, "  documents: %d -> %d\n", r.prev.Documents, result.Documents)
	}

	r.prev = result

	if r.opts.Validate && r.opts.ValidateFn != nil && result.OutputPath != "" {
		if err := r.opts.ValidateFn(ctx, result.OutputPath); err != nil {
			fmt.Fprintf(out, "  validate: FAILED: %v\n", err)
			return
		}

		fmt.Fprintln(out, "  validate: OK")
	}
}

// isRelevant filters out events that cannot change file content and events
// on editor scratch files.
func isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	return true
}
