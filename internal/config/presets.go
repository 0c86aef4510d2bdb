package config

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"slices"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"
)

// Preset is a named set of blend-shape weights declared in the config file
// (.blendkey.yaml) and applied by `blendkey edit --preset`.
type Preset struct {
	// Weights maps blend-shape names to the weight they are set to.
	// Every listed blend shape is also selected.
	Weights map[string]float64 `json:"weights"`
}

// Names returns the preset's blend-shape names in sorted order.
func (p Preset) Names() []string {
	names := make([]string, 0, len(p.Weights))
	for n := range p.Weights {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}

// Presets holds all presets from a config file keyed by name.
type Presets map[string]Preset

// presetNamePattern validates preset names.
// Must start with a letter and contain only letters, digits, hyphens, and underscores.
var presetNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ParsePresets parses the presets section from raw config file bytes.
// Other sections of the file are ignored.
func ParsePresets(data []byte) (Presets, error) {
	var raw struct {
		Presets Presets `json:"presets,omitempty"`
	}

	if err := sigsyaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}

	if err := raw.Presets.Validate(); err != nil {
		return nil, err
	}

	if raw.Presets == nil {
		return Presets{}, nil
	}

	return raw.Presets, nil
}

// LoadPresets reads presets from the config file at path. An empty path
// yields no presets.
func LoadPresets(path string) (Presets, error) {
	if path == "" {
		return Presets{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the resolved config file
	if err != nil {
		return nil, fmt.Errorf("reading presets from %q: %w", path, err)
	}

	return ParsePresets(data)
}

// Validate checks the presets for correctness.
func (p Presets) Validate() error {
	for name, preset := range p {
		if !presetNamePattern.MatchString(name) {
			return fmt.Errorf("presets[%s]: name is invalid (must match %s)", name, presetNamePattern.String())
		}

		if len(preset.Weights) == 0 {
			return fmt.Errorf("presets[%s]: weights must not be empty", name)
		}

		for shape, w := range preset.Weights {
			if strings.TrimSpace(shape) == "" {
				return fmt.Errorf("presets[%s]: blend-shape name must not be empty", name)
			}

			if math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("presets[%s].weights[%s]: weight must be a finite number", name, shape)
			}
		}
	}

	return nil
}

// Get returns the named preset or an error listing the available names.
func (p Presets) Get(name string) (Preset, error) {
	if preset, ok := p[name]; ok {
		return preset, nil
	}

	available := make([]string, 0, len(p))
	for n := range p {
		available = append(available, n)
	}

	slices.Sort(available)

	if len(available) == 0 {
		return Preset{}, fmt.Errorf("preset %q not found: no presets configured", name)
	}

	return Preset{}, fmt.Errorf("preset %q not found (available: %s)", name, strings.Join(available, ", "))
}
