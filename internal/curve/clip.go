package curve

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// WrapMode controls how a clip behaves past its last key.
type WrapMode string

// WrapMode values.
const (
	WrapDefault  WrapMode = "default"
	WrapOnce     WrapMode = "once"
	WrapLoop     WrapMode = "loop"
	WrapPingPong WrapMode = "pingpong"
	WrapClamp    WrapMode = "clampforever"
)

// Valid reports whether w is a known wrap mode. The empty string is treated
// as WrapDefault.
func (w WrapMode) Valid() bool {
	switch w {
	case "", WrapDefault, WrapOnce, WrapLoop, WrapPingPong, WrapClamp:
		return true
	default:
		return false
	}
}

// Settings are the clip-wide playback settings.
type Settings struct {
	LoopTime bool     `json:"loopTime"`
	WrapMode WrapMode `json:"wrapMode,omitempty"`
}

// Binding is one animated property: a curve driving Property on the
// component of type Type found at Path below the animation root.
type Binding struct {
	Path     string `json:"path"`
	Type     string `json:"type"`
	Property string `json:"property"`
	Curve    Curve  `json:"curve"`
}

// Key identifies a binding's target independently of its curve.
func (b Binding) Key() string {
	return b.Path + "|" + b.Type + "|" + b.Property
}

// Clip is a named set of bindings plus playback settings.
type Clip struct {
	Name     string    `json:"name,omitempty"`
	Settings Settings  `json:"settings"`
	Bindings []Binding `json:"bindings"`
}

// Replace overwrites c's bindings and settings with those of src. The name
// of c is kept. Nothing from the previous binding set survives.
func (c *Clip) Replace(src *Clip) {
	if src == nil {
		c.Bindings = nil
		c.Settings = Settings{}

		return
	}

	c.Settings = src.Settings
	c.Bindings = slices.Clone(src.Bindings)
}

// Validate checks wrap mode, binding uniqueness, and key ordering.
func (c *Clip) Validate() error {
	if !c.Settings.WrapMode.Valid() {
		return fmt.Errorf("invalid wrap mode %q", c.Settings.WrapMode)
	}

	seen := make(map[string]bool, len(c.Bindings))

	for i, b := range c.Bindings {
		if strings.TrimSpace(b.Property) == "" {
			return fmt.Errorf("binding %d: empty property", i)
		}

		if seen[b.Key()] {
			return fmt.Errorf("binding %d: duplicate binding for %s on %q", i, b.Property, b.Path)
		}

		seen[b.Key()] = true

		for k := 1; k < len(b.Curve.Keys); k++ {
			if b.Curve.Keys[k].Time < b.Curve.Keys[k-1].Time {
				return fmt.Errorf("binding %d (%s): keyframes out of order at index %d", i, b.Property, k)
			}
		}
	}

	return nil
}

// SortBindings orders bindings by path, type, and property so serialized
// clips are deterministic.
func (c *Clip) SortBindings() {
	slices.SortStableFunc(c.Bindings, func(a, b Binding) int {
		return cmp.Or(
			strings.Compare(a.Path, b.Path),
			strings.Compare(a.Type, b.Type),
			strings.Compare(a.Property, b.Property),
		)
	})
}
