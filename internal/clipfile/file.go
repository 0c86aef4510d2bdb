package clipfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/blendkey/internal/curve"
)

// Load reads and parses a clip file. When the document carries no name the
// file's base name is used.
func Load(path string) (*curve.Clip, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading clip file: %w", err)
	}

	clip, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("loading clip %s: %w", path, err)
	}

	if clip.Name == "" {
		clip.Name = NameFromPath(path)
	}

	return clip, nil
}

// SaveOptions configures Save.
type SaveOptions struct {
	// Format selects the serialization; empty infers it from the extension.
	Format Format
	// Overwrite confirms replacing an existing file.
	Overwrite bool
	// Logger reports replaced files. Nil uses slog.Default.
	Logger *slog.Logger
}

// Save serializes clip and writes it to path. Write failures are returned
// unchanged in meaning to the caller.
func Save(path string, clip *curve.Clip, opts SaveOptions) error {
	format := opts.Format
	if format == "" {
		format = FormatFromPath(path)
	}

	data, err := Marshal(clip, format)
	if err != nil {
		return err
	}

	return Open(path, nil, opts.Overwrite, opts.Logger).Write(data)
}

// FormatFromPath infers the format from a file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	return DefaultRegistry().ForPath(path, FormatYAML)
}

// NameFromPath derives a clip name from a file path by dropping directories
// and all extensions.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}

	return base
}
