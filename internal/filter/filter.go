package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/hupe1980/blendkey/internal/blendshape"
)

// Filter is the interface for all parameter predicates.
// Filters are stateless. They inspect a parameter snapshot and never
// modify the registry.
type Filter interface {
	// Match reports whether p passes the filter.
	Match(p blendshape.Parameter) bool
}

// Func adapts a plain function to the Filter interface.
type Func func(p blendshape.Parameter) bool

// Match implements Filter.
func (f Func) Match(p blendshape.Parameter) bool { return f(p) }

// Selected matches parameters that are part of the authored output.
var Selected Filter = Func(func(p blendshape.Parameter) bool { return p.Selected })

// Keyword matches parameters whose name contains a search term,
// ignoring case. An empty (or all-whitespace) term matches everything.
type Keyword struct {
	folded string
}

// NewKeyword normalizes term by trimming surrounding whitespace and
// case-folding it.
func NewKeyword(term string) *Keyword {
	return &Keyword{folded: fold(strings.TrimSpace(term))}
}

// Empty reports whether the keyword matches everything.
func (k *Keyword) Empty() bool {
	return k.folded == ""
}

// Match implements Filter.
func (k *Keyword) Match(p blendshape.Parameter) bool {
	return k.MatchName(p.Name)
}

// MatchName reports whether name contains the keyword.
func (k *Keyword) MatchName(name string) bool {
	if k.Empty() {
		return true
	}

	return strings.Contains(fold(name), k.folded)
}

// Chain matches a parameter only when every filter in it matches.
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from the given filters.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Match implements Filter. An empty chain matches everything.
func (c *Chain) Match(p blendshape.Parameter) bool {
	for _, f := range c.filters {
		if !f.Match(p) {
			return false
		}
	}

	return true
}

// Views holds the two derived subsequences of a registry. Element order
// always matches registry order.
type Views struct {
	// Filtered are the parameters matching the primary keyword.
	Filtered []blendshape.Parameter `json:"filtered"`
	// Targeted are the selected parameters matching the secondary keyword.
	Targeted []blendshape.Parameter `json:"targeted"`
}

// Apply recomputes both views from the registry's current state. It is a
// pure function of its inputs and runs in time linear in the registry size.
func Apply(reg *blendshape.Registry, primary, secondary string) Views {
	filtered := NewKeyword(primary)
	targeted := NewChain(Selected, NewKeyword(secondary))

	views := Views{
		Filtered: []blendshape.Parameter{},
		Targeted: []blendshape.Parameter{},
	}

	if reg == nil {
		return views
	}

	for _, p := range reg.Params() {
		if filtered.Match(p) {
			views.Filtered = append(views.Filtered, p)
		}

		if targeted.Match(p) {
			views.Targeted = append(views.Targeted, p)
		}
	}

	return views
}

// fold returns the Unicode case-folded form of s. A fresh Caser is used per
// call because Casers carry state.
func fold(s string) string {
	return cases.Fold().String(s)
}
