// Package blendshape holds the canonical, ordered registry of blend-shape
// weight parameters for the mesh being edited.
//
// Weight and selection are coupled: [Registry.SetWeight] always selects the
// parameter, and [Registry.SetSelected] never alters a weight. Parameters are
// only reachable as read-only snapshots, so callers cannot desynchronize the
// two.
package blendshape

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/hupe1980/blendkey/internal/mesh"
)

// ErrNotFound is returned when a mutation names a parameter absent from the
// registry.
var ErrNotFound = errors.New("parameter not found")

// Parameter is a read-only snapshot of one registry entry.
type Parameter struct {
	// Index is the parameter's position in the registry, which is also the
	// renderer blend-shape index it projects onto.
	Index int `json:"index"`
	// Name is the blend-shape name, unique within the registry.
	Name string `json:"name"`
	// Weight is the current edited value.
	Weight float64 `json:"weight"`
	// DefaultWeight is the weight captured when the parameter was created.
	DefaultWeight float64 `json:"defaultWeight"`
	// Selected marks the parameter as part of the authored output.
	Selected bool `json:"selected"`
}

// EffectiveWeight is the value pushed to a renderer: Weight when selected,
// DefaultWeight otherwise.
func (p Parameter) EffectiveWeight() float64 {
	if p.Selected {
		return p.Weight
	}

	return p.DefaultWeight
}

type entry struct {
	name          string
	weight        float64
	defaultWeight float64
	selected      bool
}

// Registry is an ordered, name-unique collection of parameters. Order is
// insertion order, which mirrors the mesh's blend-shape index order.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	entries []*entry
	index   map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Len returns the number of parameters.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Clear removes every parameter.
func (r *Registry) Clear() {
	r.entries = nil
	r.index = make(map[string]int)
}

// Rebuild clears the registry and inserts one parameter per distinct name in
// names, keeping the first occurrence of each. weights[i] becomes both the
// weight and default weight of names[i]. On a length mismatch the registry is
// left unchanged.
func (r *Registry) Rebuild(names []string, weights []float64) error {
	if len(names) != len(weights) {
		return fmt.Errorf("rebuilding registry: %d names but %d weights", len(names), len(weights))
	}

	seen := sets.New[string]()
	entries := make([]*entry, 0, len(names))
	index := make(map[string]int, len(names))

	for i, name := range names {
		if seen.Has(name) {
			continue
		}

		seen.Insert(name)
		index[name] = len(entries)
		entries = append(entries, &entry{
			name:          name,
			weight:        weights[i],
			defaultWeight: weights[i],
		})
	}

	r.entries = entries
	r.index = index

	return nil
}

// RebuildFrom rebuilds the registry from a renderer's blend-shape names and
// current weights. A nil renderer clears the registry.
func (r *Registry) RebuildFrom(src mesh.Renderer) {
	if src == nil {
		r.Clear()
		return
	}

	n := src.BlendShapeCount()
	names := make([]string, n)
	weights := make([]float64, n)

	for i := range n {
		names[i] = src.BlendShapeName(i)
		weights[i] = src.BlendShapeWeight(i)
	}

	// Lengths match by construction.
	_ = r.Rebuild(names, weights)
}

// ResetAll restores every weight to its default and deselects everything.
func (r *Registry) ResetAll() {
	for _, e := range r.entries {
		e.weight = e.defaultWeight
		e.selected = false
	}
}

// SetWeight sets the named parameter's weight and selects it.
func (r *Registry) SetWeight(name string, weight float64) error {
	e, err := r.lookup(name)
	if err != nil {
		return err
	}

	e.weight = weight
	e.selected = true

	return nil
}

// SetSelected toggles the named parameter's selection. Weights are untouched.
func (r *Registry) SetSelected(name string, selected bool) error {
	e, err := r.lookup(name)
	if err != nil {
		return err
	}

	e.selected = selected

	return nil
}

// Has reports whether a parameter called name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Get returns a snapshot of the named parameter.
func (r *Registry) Get(name string) (Parameter, bool) {
	i, ok := r.index[name]
	if !ok {
		return Parameter{}, false
	}

	return r.snapshot(i), true
}

// Params returns snapshots of every parameter in registry order.
func (r *Registry) Params() []Parameter {
	out := make([]Parameter, len(r.entries))
	for i := range r.entries {
		out[i] = r.snapshot(i)
	}

	return out
}

// Selected returns snapshots of the selected parameters in registry order.
func (r *Registry) Selected() []Parameter {
	var out []Parameter

	for i, e := range r.entries {
		if e.selected {
			out = append(out, r.snapshot(i))
		}
	}

	return out
}

// Names returns the parameter names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}

	return out
}

func (r *Registry) lookup(name string) (*entry, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}

	return r.entries[i], nil
}

func (r *Registry) snapshot(i int) Parameter {
	e := r.entries[i]

	return Parameter{
		Index:         i,
		Name:          e.name,
		Weight:        e.weight,
		DefaultWeight: e.defaultWeight,
		Selected:      e.selected,
	}
}
