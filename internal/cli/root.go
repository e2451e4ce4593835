// Package cli implements the cobra command tree for graphyaml.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/graphyaml/internal/config"
	"github.com/hupe1980/graphyaml/internal/logging"
)

// Process exit codes.
const (
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitValidation = 3
	ExitWrite      = 6
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return ExitGeneral
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "graphyaml",
		Short: "Serialize scene object graphs into multi-document YAML",
		Long: `graphyaml builds an object graph from a scene manifest and writes it as a
multi-document YAML archive: one document per object, with references
between objects written as {fileId: "<id>"} and absent references as
{fileId: 0}.

Shared objects are written exactly once, cycles terminate, and objects
discovered while a document is open are written after it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			logger := logging.SetupWithWriter(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .graphyaml.yaml)")
	pf.String("log-level", config.LogLevelInfo, "log level: debug, info, warn, error")
	pf.String("log-format", config.LogFormatText, "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")
	pf.String("namespace", "", "identity namespace UUID for manifests that declare none")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	cmd.AddCommand(
		newSerializeCommand(),
		newValidateCommand(),
		newDiffCommand(),
		newWatchCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}
