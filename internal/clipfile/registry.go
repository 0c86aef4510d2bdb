package clipfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	sigsyaml "sigs.k8s.io/yaml"
)

// ErrUnknownFormat is returned for format names no codec is registered for.
var ErrUnknownFormat = errors.New("invalid clip format")

// Codec encodes clip documents in one format.
type Codec struct {
	Format Format
	// Extensions are the file extensions, with leading dot, that select
	// this codec. The first one is used for new files.
	Extensions []string
	// Marshal encodes a document. Decoding needs no codec since every
	// format is read through the YAML decoder.
	Marshal func(v any) ([]byte, error)
}

// Registry maps format names and file extensions to codecs.
type Registry struct {
	mu     sync.RWMutex
	codecs map[Format]Codec
	exts   map[string]Format
}

// NewRegistry creates an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[Format]Codec),
		exts:   make(map[string]Format),
	}
}

// Register adds c, replacing any codec with the same format. Its
// extensions take over from earlier registrations.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[c.Format] = c

	for _, ext := range c.Extensions {
		r.exts[strings.ToLower(ext)] = c.Format
	}
}

// Codec returns the codec for a format name or extension alias, e.g.
// "json" or "yml".
func (r *Registry) Codec(name string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))

	if c, ok := r.codecs[Format(key)]; ok {
		return c, nil
	}

	if f, ok := r.exts["."+key]; ok {
		return r.codecs[f], nil
	}

	return Codec{}, fmt.Errorf("%w %q: must be one of %s", ErrUnknownFormat, name, r.availableLocked())
}

// ForPath returns the format selected by path's extension, or fallback
// when the extension is unknown or missing.
func (r *Registry) ForPath(path string, fallback Format) Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.exts[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}

	return fallback
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.formatsLocked()
}

func (r *Registry) formatsLocked() []Format {
	formats := make([]Format, 0, len(r.codecs))
	for f := range r.codecs {
		formats = append(formats, f)
	}

	slices.Sort(formats)

	return formats
}

func (r *Registry) availableLocked() string {
	formats := r.formatsLocked()
	if len(formats) == 0 {
		return "none"
	}

	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}

	return strings.Join(names, ", ")
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r := NewRegistry()

	r.Register(Codec{
		Format:     FormatYAML,
		Extensions: []string{".yaml", ".yml"},
		Marshal:    sigsyaml.Marshal,
	})

	r.Register(Codec{
		Format:     FormatJSON,
		Extensions: []string{".json"},
		Marshal: func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		},
	})

	return r
})

// DefaultRegistry returns the shared registry holding the yaml and json
// codecs.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}
