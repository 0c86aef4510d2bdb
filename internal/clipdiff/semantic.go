package clipdiff

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/hupe1980/blendkey/internal/clipfile"
	"github.com/hupe1980/blendkey/internal/curve"
)

// ChangeKind classifies a blend-shape difference between two clips.
type ChangeKind string

// ChangeKind values.
const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// Change is one blend shape whose held weight differs between two clips.
type Change struct {
	Kind       ChangeKind `json:"kind"`
	Path       string     `json:"path"`
	BlendShape string     `json:"blendShape"`
	Old        *float64   `json:"old,omitempty"`
	New        *float64   `json:"new,omitempty"`
}

// Result combines the textual and the blend-shape level comparison.
type Result struct {
	*DiffResult
	Changes         []Change `json:"changes"`
	SettingsChanged bool     `json:"settingsChanged"`
}

// HasChanges reports whether the clips differ in any way.
func (r *Result) HasChanges() bool {
	return r.HasDifferences || len(r.Changes) > 0 || r.SettingsChanged
}

type shapeKey struct {
	path, name string
}

// Clips compares two clips. Both are canonicalized (bindings sorted) and
// serialized as YAML for the unified diff; blend-shape bindings are also
// compared by the weight they hold at time 0.
func Clips(oldClip, newClip *curve.Clip, opts DiffOptions) (*Result, error) {
	if oldClip == nil {
		oldClip = &curve.Clip{}
	}

	if newClip == nil {
		newClip = &curve.Clip{}
	}

	oldDoc, err := canonicalYAML(oldClip)
	if err != nil {
		return nil, err
	}

	newDoc, err := canonicalYAML(newClip)
	if err != nil {
		return nil, err
	}

	unified, err := ComputeDiff(oldDoc, newDoc, opts)
	if err != nil {
		return nil, err
	}

	return &Result{
		DiffResult:      unified,
		Changes:         BlendShapeChanges(oldClip, newClip),
		SettingsChanged: oldClip.Settings != newClip.Settings,
	}, nil
}

// BlendShapeChanges lists blend shapes added, removed, or re-weighted
// between two clips, ordered by path then name. Bindings with empty curves
// are skipped.
func BlendShapeChanges(oldClip, newClip *curve.Clip) []Change {
	before := heldWeights(oldClip)
	after := heldWeights(newClip)

	var changes []Change

	for k, o := range before {
		n, ok := after[k]

		switch {
		case !ok:
			changes = append(changes, Change{Kind: Removed, Path: k.path, BlendShape: k.name, Old: ptr(o)})
		case n != o:
			changes = append(changes, Change{Kind: Changed, Path: k.path, BlendShape: k.name, Old: ptr(o), New: ptr(n)})
		}
	}

	for k, n := range after {
		if _, ok := before[k]; !ok {
			changes = append(changes, Change{Kind: Added, Path: k.path, BlendShape: k.name, New: ptr(n)})
		}
	}

	slices.SortFunc(changes, func(a, b Change) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.BlendShape, b.BlendShape))
	})

	return changes
}

// FormatTable writes the blend-shape changes as an aligned table.
func FormatTable(w io.Writer, changes []Change) {
	if len(changes) == 0 {
		_, _ = fmt.Fprintln(w, "No blend-shape changes.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CHANGE\tPATH\tBLEND SHAPE\tOLD\tNEW")

	for _, c := range changes {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Kind, displayPath(c.Path), c.BlendShape, fmtWeight(c.Old), fmtWeight(c.New))
	}

	_ = tw.Flush()
}

func heldWeights(c *curve.Clip) map[shapeKey]float64 {
	out := make(map[shapeKey]float64)
	if c == nil {
		return out
	}

	for _, b := range c.Bindings {
		if b.Type != curve.RendererType {
			continue
		}

		name, ok := curve.ParseProperty(b.Property)
		if !ok {
			continue
		}

		v, err := b.Curve.Evaluate(0)
		if err != nil {
			continue
		}

		out[shapeKey{path: b.Path, name: name}] = v
	}

	return out
}

func canonicalYAML(c *curve.Clip) (string, error) {
	sorted := *c
	sorted.Bindings = slices.Clone(c.Bindings)
	sorted.SortBindings()

	data, err := clipfile.Marshal(&sorted, clipfile.FormatYAML)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func ptr(v float64) *float64 { return &v }

func fmtWeight(v *float64) string {
	if v == nil {
		return "-"
	}

	return fmt.Sprintf("%g", *v)
}

func displayPath(p string) string {
	if p == "" {
		return "(root)"
	}

	return p
}
