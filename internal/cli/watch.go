package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/graphyaml/internal/logging"
	"github.com/hupe1980/graphyaml/internal/output"
	"github.com/hupe1980/graphyaml/internal/watch"
)

type watchOptions struct {
	output   string
	debounce time.Duration
	validate bool
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <manifest>",
		Short: "Watch a manifest and re-serialize it on change",
		Long: `Watch monitors a scene manifest and rewrites the archive every time the
manifest changes.

File changes are debounced to avoid rapid re-runs. Each run reports the
number of documents and references written and how the document count
changed since the previous run.

Use --validate (enabled by default) to check the archive after each run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerRenderFlags(cmd)

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file path (required)")
	f.DurationVar(&opts.debounce, "debounce", watch.DefaultOptions().Debounce, "debounce interval for file changes")
	f.BoolVar(&opts.validate, "validate", true, "validate the archive after each run")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, path string, opts *watchOptions) error {
	if opts.output == "" {
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("--output (-o) is required for watch mode")}
	}

	runFn := func(fnCtx context.Context) (*watch.RunResult, error) {
		r, err := manifestToArchive(fnCtx, path)
		if err != nil {
			return nil, err
		}

		w := output.NewFileWriter(opts.output, output.WithLogger(logging.FromContext(fnCtx)))
		if err := w.Write(r.Data); err != nil {
			return nil, fmt.Errorf("writing output: %w", err)
		}

		return &watch.RunResult{
			Documents:     r.Stats.Documents,
			References:    r.Stats.References,
			NilReferences: r.Stats.NilReferences,
			OutputPath:    opts.output,
		}, nil
	}

	wopts := watch.Options{
		Paths:    []string{path},
		Debounce: opts.debounce,
		Validate: opts.validate,
		Logger:   logging.Component(ctx, "watch"),
		Out:      cmd.ErrOrStderr(),
	}

	if opts.validate {
		wopts.ValidateFn = validateArchiveFile
	}

	return watch.Run(ctx, wopts, runFn)
}

// validateArchiveFile checks the archive at path and reports its first
// error.
func validateArchiveFile(_ context.Context, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is the watch output
	if err != nil {
		return err
	}

	result := output.ValidateArchive(data)
	if result.HasErrors() {
		errs := result.Errors()

		return fmt.Errorf("%d error(s), first: %s", len(errs), errs[0].Error())
	}

	return nil
}
