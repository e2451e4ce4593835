package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/graphyaml/internal/archive"
	"github.com/hupe1980/graphyaml/internal/config"
	"github.com/hupe1980/graphyaml/internal/emit"
	"github.com/hupe1980/graphyaml/internal/logging"
	"github.com/hupe1980/graphyaml/internal/output"
	"github.com/hupe1980/graphyaml/internal/scene"
)

// registerRenderFlags adds the output settings shared by commands that
// serialize a manifest. They are bound into config.Config by name.
func registerRenderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("format", config.DefaultFormat, "output format: "+output.DefaultRegistry().AvailableFormats())
	f.Int("indent", config.DefaultIndent, fmt.Sprintf("spaces per nesting level (%d-%d)", config.MinIndent, config.MaxIndent))

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return output.DefaultRegistry().Formats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// rendered is the result of serializing one manifest.
type rendered struct {
	Data  []byte
	Stats archive.Stats
}

// buildGraph loads the manifest at path and builds its object graph.
// Unreadable manifests fail with ExitGeneral, invalid ones with
// ExitValidation.
func buildGraph(ctx context.Context, path string) (*scene.Graph, error) {
	cfg := config.FromContext(ctx)

	m, err := scene.LoadManifest(path)
	if err != nil {
		return nil, &ExitError{Code: ExitGeneral, Err: err}
	}

	if m.Namespace == "" {
		m.Namespace = cfg.Namespace
	}

	g, err := m.Build()
	if err != nil {
		return nil, &ExitError{Code: ExitValidation, Err: fmt.Errorf("%s: %w", path, err)}
	}

	logging.FromContext(ctx).Debug("manifest loaded",
		slog.String("path", path),
		slog.Int("objects", len(g.Objects)),
		slog.Int("roots", len(g.Roots())),
	)

	return g, nil
}

// render serializes g in the configured format.
func render(ctx context.Context, g *scene.Graph) (*rendered, error) {
	cfg := config.FromContext(ctx)

	enc, err := output.DefaultRegistry().Encoder(cfg.Format)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Err: err}
	}

	var stats archive.Stats

	pass := func(sink emit.Sink) error {
		a := archive.New(sink, archive.WithLogger(logging.Component(ctx, "archive")))
		err := g.Serialize(a)
		stats = a.Stats()

		return err
	}

	data, err := enc(pass, output.EncodeOptions{Indent: cfg.Indent})
	if err != nil {
		if errors.Is(err, archive.ErrAborted) {
			return nil, &ExitError{Code: ExitGeneral, Err: err}
		}

		return nil, fmt.Errorf("serializing scene: %w", err)
	}

	return &rendered{Data: data, Stats: stats}, nil
}

// manifestToArchive builds and renders the manifest at path.
func manifestToArchive(ctx context.Context, path string) (*rendered, error) {
	g, err := buildGraph(ctx, path)
	if err != nil {
		return nil, err
	}

	return render(ctx, g)
}

// writeOutput sends data to path, or to the command's stdout when path is
// empty. Failures exit with ExitWrite.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	var w output.Writer
	if path == "" || path == "-" {
		w = output.NewStdoutWriter(cmd.OutOrStdout())
	} else {
		w = output.NewFileWriter(path, output.WithLogger(logging.FromContext(cmd.Context())))
	}

	if err := w.Write(data); err != nil {
		return &ExitError{Code: ExitWrite, Err: err}
	}

	return nil
}

func logStats(ctx context.Context, msg string, s archive.Stats, attrs ...slog.Attr) {
	all := append([]slog.Attr{
		slog.Int("documents", s.Documents),
		slog.Int("references", s.References),
		slog.Int("deferred", s.Deferred),
		slog.Int("nilReferences", s.NilReferences),
		slog.Int("skipped", s.Skipped),
	}, attrs...)

	logging.FromContext(ctx).LogAttrs(ctx, slog.LevelInfo, msg, all...)
}
