package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/graphyaml/internal/output"
)

type validateOptions struct {
	strict bool
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <archive>",
		Short: "Validate a serialized archive",
		Long: `Validate checks a multi-document archive produced by serialize.

Every document must be a single-key mapping from a type tag to the object's
fields, every object identity must be written once, and every non-nil
{fileId: ...} reference must resolve to a document in the archive.

Reports all errors and warnings found. Returns exit code 3 on validation
failure (or on warnings with --strict).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings in addition to errors")

	return cmd
}

func runValidate(cmd *cobra.Command, path string, opts *validateOptions) error {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided path is intentional
	if err != nil {
		return &ExitError{Code: ExitGeneral, Err: fmt.Errorf("reading archive: %w", err)}
	}

	result := output.ValidateArchive(data)

	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), output.FormatValidationResult(result))

	if result.HasErrors() {
		return &ExitError{Code: ExitValidation, Err: fmt.Errorf("validation failed with %d error(s)", len(result.Errors()))}
	}

	if opts.strict && result.HasWarnings() {
		return &ExitError{Code: ExitValidation, Err: fmt.Errorf("validation failed with %d warning(s) (strict mode)", len(result.Warnings()))}
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed.")

	return nil
}
