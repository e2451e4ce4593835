package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Writer is an output destination for a rendered archive.
type Writer interface {
	// Write sends the complete rendered archive to the destination.
	Write(data []byte) error
}

// NewWriter returns a FileWriter for path, or a StdoutWriter on os.Stdout
// when path is empty or "-".
func NewWriter(path string, opts ...FileWriterOption) Writer {
	if path == "" || path == "-" {
		return NewStdoutWriter(nil)
	}

	return NewFileWriter(path, opts...)
}

// StdoutWriter writes to an io.Writer, os.Stdout by default.
type StdoutWriter struct {
	out io.Writer
}

// NewStdoutWriter creates a writer that sends output to w.
// If w is nil, os.Stdout is used.
func NewStdoutWriter(w io.Writer) *StdoutWriter {
	if w == nil {
		w = os.Stdout
	}

	return &StdoutWriter{out: w}
}

// Write implements Writer.
func (sw *StdoutWriter) Write(data []byte) error {
	if _, err := sw.out.Write(data); err != nil {
		return fmt.Errorf("writing to stdout: %w", err)
	}

	return nil
}

// FileWriter replaces a file with the rendered archive. The data is written
// to a temporary file in the same directory and renamed into place, so
// readers such as a running watch never observe a partial archive.
type FileWriter struct {
	path   string
	perm   os.FileMode
	logger *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) {
		fw.perm = perm
	}
}

// WithLogger sets a logger for the FileWriter.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) {
		fw.logger = logger
	}
}

// NewFileWriter creates a writer for the file at path.
func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{
		path:   path,
		perm:   0o644,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Write creates parent directories and atomically replaces the file.
func (fw *FileWriter) Write(data []byte) error {
	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	if _, err := os.Stat(fw.path); err == nil {
		fw.logger.Debug("replacing existing file", slog.String("path", fw.path))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fw.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file in %s: %w", dir, err)
	}

	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		err = os.Chmod(tmpName, fw.perm)
	}

	if err == nil {
		err = os.Rename(tmpName, fw.path)
	}

	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	fw.logger.Debug("wrote archive", slog.String("path", fw.path), slog.Int("bytes", len(data)))

	return nil
}

// Path returns the output file path.
func (fw *FileWriter) Path() string {
	return fw.path
}
