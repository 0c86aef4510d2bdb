package clipfile

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/blendkey/internal/curve"
)

// FormatVersion is the clip document version written by this package.
const FormatVersion = "1.0.0"

// supportedVersions is the range of document versions this package reads.
const supportedVersions = "^1.0.0"

// ErrUnsupportedVersion is returned for clip documents outside the
// supported version range.
var ErrUnsupportedVersion = errors.New("unsupported clip format version")

// Format names a serialization format.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name against the default registry.
// Extension aliases such as "yml" are accepted.
func ParseFormat(s string) (Format, error) {
	c, err := DefaultRegistry().Codec(s)
	if err != nil {
		return "", err
	}

	return c.Format, nil
}

// document is the on-disk clip layout.
type document struct {
	FormatVersion string `json:"formatVersion"`
	curve.Clip
}

// Marshal serializes clip in the given format. Output is deterministic and
// ends with a newline.
func Marshal(clip *curve.Clip, format Format) ([]byte, error) {
	if clip == nil {
		return nil, errors.New("serializing clip: nil clip")
	}

	doc := document{FormatVersion: FormatVersion, Clip: *clip}
	if doc.Bindings == nil {
		doc.Bindings = []curve.Binding{}
	}

	if format == "" {
		format = FormatYAML
	}

	codec, err := DefaultRegistry().Codec(string(format))
	if err != nil {
		return nil, fmt.Errorf("serializing clip: %w", err)
	}

	data, err := codec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing clip: %w", err)
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return data, nil
}

// Unmarshal parses a clip document in YAML or JSON, checks its format
// version, and validates the clip. Unknown fields are rejected. A missing
// version is read as the current one.
func Unmarshal(data []byte) (*curve.Clip, error) {
	var doc document
	if err := sigsyaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing clip: %w", err)
	}

	if err := checkVersion(doc.FormatVersion); err != nil {
		return nil, err
	}

	clip := doc.Clip
	if err := clip.Validate(); err != nil {
		return nil, fmt.Errorf("invalid clip: %w", err)
	}

	return &clip, nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}

	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, v, err)
	}

	c, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", supportedVersions, err)
	}

	if !c.Check(ver) {
		return fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedVersion, v, supportedVersions)
	}

	return nil
}
