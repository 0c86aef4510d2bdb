package clipfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrExists is returned when saving over an existing file without
// confirmation.
var ErrExists = errors.New("clip file already exists")

// Writer is a destination for serialized clips.
type Writer interface {
	Write(data []byte) error
}

// Open returns the writer for a clip destination: a stream writer on
// stdout when path is empty or "-", otherwise a file writer.
func Open(path string, stdout io.Writer, overwrite bool, logger *slog.Logger) Writer {
	if path == "" || path == "-" {
		return NewStreamWriter(stdout)
	}

	opts := []FileWriterOption{WithOverwrite(overwrite)}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}

	return NewFileWriter(path, opts...)
}

// StreamWriter writes serialized clips to a stream.
type StreamWriter struct {
	out io.Writer
}

// NewStreamWriter creates a writer on w, or on os.Stdout when w is nil.
func NewStreamWriter(w io.Writer) *StreamWriter {
	if w == nil {
		w = os.Stdout
	}

	return &StreamWriter{out: w}
}

func (sw *StreamWriter) Write(data []byte) error {
	if _, err := sw.out.Write(data); err != nil {
		return fmt.Errorf("writing clip to stream: %w", err)
	}

	return nil
}

// FileWriter writes a serialized clip to a file. The data is written to a
// temporary file in the target directory and renamed into place, so a
// failed write never leaves a truncated clip behind.
type FileWriter struct {
	path      string
	perm      os.FileMode
	overwrite bool
	logger    *slog.Logger
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithPermissions overrides the default file permissions (0644).
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) { fw.perm = perm }
}

// WithOverwrite allows replacing an existing file.
func WithOverwrite(overwrite bool) FileWriterOption {
	return func(fw *FileWriter) { fw.overwrite = overwrite }
}

// WithLogger sets the logger used to report replaced files.
func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) { fw.logger = logger }
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

// Write creates parent directories and writes data to the file. An existing
// file is only replaced when overwriting was allowed.
func (fw *FileWriter) Write(data []byte) error {
	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	switch _, err := os.Stat(fw.path); {
	case err == nil && !fw.overwrite:
		return fmt.Errorf("%s: %w", fw.path, ErrExists)
	case err == nil:
		fw.logger.Warn("overwriting existing clip", slog.String("path", fw.path))
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("checking %s: %w", fw.path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fw.path)+".*")
	if err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	if err := tmp.Chmod(fw.perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting permissions on %s: %w", fw.path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing file %s: %w", fw.path, err)
	}

	if err := os.Rename(tmp.Name(), fw.path); err != nil {
		return fmt.Errorf("replacing %s: %w", fw.path, err)
	}

	return nil
}

// Path returns the output file path.
func (fw *FileWriter) Path() string {
	return fw.path
}
