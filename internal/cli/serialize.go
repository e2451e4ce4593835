package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/graphyaml/internal/config"
	"github.com/hupe1980/graphyaml/internal/output"
)

type serializeOptions struct {
	output   string
	validate bool
}

func newSerializeCommand() *cobra.Command {
	opts := &serializeOptions{}

	cmd := &cobra.Command{
		Use:   "serialize <manifest>",
		Short: "Serialize a scene manifest into a multi-document archive",
		Long: `Serialize builds the object graph described by a scene manifest (YAML or
TOML) and writes it as an archive, starting from every root game object.

The archive is written to stdout unless --output is given. File output is
atomic: the archive is written to a temporary file and renamed into place.

Use --validate to check the generated archive before it is written. Only
the yaml format can be validated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSerialize(cmd, args[0], opts)
		},
	}

	registerRenderFlags(cmd)

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default: stdout)")
	f.BoolVar(&opts.validate, "validate", false, "validate the archive before writing it")

	return cmd
}

func runSerialize(cmd *cobra.Command, path string, opts *serializeOptions) error {
	ctx := cmd.Context()

	r, err := manifestToArchive(ctx, path)
	if err != nil {
		return err
	}

	if opts.validate {
		cfg := config.FromContext(ctx)
		if cfg.Format != output.FormatYAML {
			return &ExitError{Code: ExitUsage, Err: fmt.Errorf("--validate requires --format %s, got %q", output.FormatYAML, cfg.Format)}
		}

		result := output.ValidateArchive(r.Data)
		if result.HasErrors() {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), output.FormatValidationResult(result))

			return &ExitError{Code: ExitValidation, Err: fmt.Errorf("generated archive failed validation with %d error(s)", len(result.Errors()))}
		}
	}

	if err := writeOutput(cmd, opts.output, r.Data); err != nil {
		return err
	}

	logStats(ctx, "archive written", r.Stats, slog.String("manifest", path), slog.String("output", opts.output))

	return nil
}
