package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/graphyaml/internal/config"
	"github.com/hupe1980/graphyaml/internal/diff"
)

type diffOptions struct {
	existing string
	sort     bool
	context  int
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <manifest>",
		Short: "Compare a freshly serialized manifest against an existing archive",
		Long: `Diff serializes a scene manifest and prints a unified diff against an
existing archive on disk.

Documents are normalized before comparing. With --sort, documents are
ordered by content first, so archives that differ only in traversal order
compare equal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, args[0], opts)
		},
	}

	registerRenderFlags(cmd)

	f := cmd.Flags()
	f.StringVar(&opts.existing, "existing", "", "path to the existing archive to diff against (required)")
	f.BoolVar(&opts.sort, "sort", false, "ignore document order")
	f.IntVar(&opts.context, "context", diff.DefaultOptions().Context, "lines of context around each change")

	return cmd
}

func runDiff(cmd *cobra.Command, path string, opts *diffOptions) error {
	if opts.existing == "" {
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("--existing flag is required: specify the archive to compare against")}
	}

	old, err := os.ReadFile(opts.existing)
	if err != nil {
		return &ExitError{Code: ExitGeneral, Err: fmt.Errorf("reading existing archive: %w", err)}
	}

	ctx := cmd.Context()

	r, err := manifestToArchive(ctx, path)
	if err != nil {
		return err
	}

	dopts := diff.Options{
		OldLabel: opts.existing,
		NewLabel: path,
		Context:  opts.context,
		Sort:     opts.sort,
	}

	result, err := diff.Compute(old, r.Data, dopts)
	if err != nil {
		return err
	}

	color := !config.FromContext(ctx).NoColor

	return diff.Write(cmd.OutOrStdout(), result, color)
}
