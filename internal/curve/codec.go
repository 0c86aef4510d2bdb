package curve

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/hupe1980/blendkey/internal/blendshape"
)

const (
	// PropertyPrefix prefixes the property key of every blend-shape binding.
	PropertyPrefix = "blendShape."

	// RendererType is the component type blend-shape bindings target.
	RendererType = "SkinnedMeshRenderer"

	// KeyOffset is the time of the second key of an encoded curve. Two keys
	// holding the same value make a flat, held curve.
	KeyOffset = 0.01
)

// PropertyName returns the binding property key for a blend shape.
func PropertyName(blendShape string) string {
	return PropertyPrefix + blendShape
}

// ParseProperty extracts the blend-shape name from a property key. ok is
// false when the key does not address a blend shape.
func ParseProperty(property string) (name string, ok bool) {
	name, ok = strings.CutPrefix(property, PropertyPrefix)
	if !ok || name == "" {
		return "", false
	}

	return name, true
}

// DecodeResult summarizes a decode pass.
type DecodeResult struct {
	// Applied lists the parameters set from the clip, in binding order.
	Applied []string
	// EmptyCurves lists blend shapes whose matching binding had no keys.
	EmptyCurves []string
	// Unknown lists blend shapes bound at the expected path that the
	// registry does not contain.
	Unknown []string
	// Ignored counts bindings for other components, properties, or paths.
	Ignored int
}

// DecodeOption configures Decode.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report skipped bindings at debug level.
func WithLogger(logger *slog.Logger) DecodeOption {
	return func(c *decodeConfig) {
		c.logger = logger
	}
}

// Decode applies every blend-shape binding at expectedPath to reg: the
// curve is sampled at time 0 and the named parameter gets that weight and
// becomes selected. Bindings for other components, other properties, or
// other paths are ignored, as are names the registry does not know.
//
// Decode never touches parameters that no binding references; callers that
// want a clean load reset the registry first.
func Decode(bindings []Binding, expectedPath string, reg *blendshape.Registry, opts ...DecodeOption) DecodeResult {
	cfg := decodeConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	var res DecodeResult

	for _, b := range bindings {
		if b.Type != RendererType || b.Path != expectedPath {
			res.Ignored++
			continue
		}

		name, ok := ParseProperty(b.Property)
		if !ok {
			res.Ignored++
			continue
		}

		value, err := b.Curve.Evaluate(0)
		if err != nil {
			if errors.Is(err, ErrEmptyCurve) {
				cfg.logger.Debug("skipping empty curve", slog.String("blendShape", name))
				res.EmptyCurves = append(res.EmptyCurves, name)
			}

			continue
		}

		if !reg.Has(name) {
			cfg.logger.Debug("skipping unknown blend shape", slog.String("blendShape", name))
			res.Unknown = append(res.Unknown, name)

			continue
		}

		if err := reg.SetWeight(name, value); err != nil {
			cfg.logger.Debug("skipping blend shape", slog.String("blendShape", name), slog.String("error", err.Error()))
			continue
		}

		res.Applied = append(res.Applied, name)
	}

	return res
}

// Encode builds a clip holding one binding per selected parameter of reg,
// addressed at targetPath. Each curve has two keys, at time 0 and at
// KeyOffset, both holding the parameter's weight. The clip loops.
func Encode(reg *blendshape.Registry, targetPath string) *Clip {
	clip := &Clip{
		Settings: Settings{LoopTime: true, WrapMode: WrapLoop},
		Bindings: []Binding{},
	}

	for _, p := range reg.Selected() {
		var c Curve
		c.AddKey(Keyframe{Time: 0, Value: p.Weight})
		c.AddKey(Keyframe{Time: KeyOffset, Value: p.Weight})

		clip.Bindings = append(clip.Bindings, Binding{
			Path:     targetPath,
			Type:     RendererType,
			Property: PropertyName(p.Name),
			Curve:    c,
		})
	}

	return clip
}

// EncodeInto replaces dst's bindings and settings with the encoding of reg.
func EncodeInto(dst *Clip, reg *blendshape.Registry, targetPath string) {
	dst.Replace(Encode(reg, targetPath))
}
