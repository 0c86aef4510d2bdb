package watch

import (
	"fmt"
	"strings"

	"github.com/hupe1980/blendkey/internal/blendshape"
)

// SelectionChange describes how one blend shape's selection or weight
// changed between two consecutive reloads.
type SelectionChange struct {
	// Kind is one of "selected", "deselected", or "weight-changed".
	Kind string
	// Name is the blend-shape name.
	Name string
	// Detail provides extra information (e.g., old and new weight).
	Detail string
}

// SelectionDiff compares two parameter snapshots by name. Parameters that
// exist in only one snapshot are compared against an unselected default.
func SelectionDiff(prev, curr []blendshape.Parameter) []SelectionChange {
	prevMap := make(map[string]blendshape.Parameter, len(prev))
	for _, p := range prev {
		prevMap[p.Name] = p
	}

	var changes []SelectionChange

	for _, c := range curr {
		p := prevMap[c.Name]

		switch {
		case c.Selected && !p.Selected:
			changes = append(changes, SelectionChange{Kind: "selected", Name: c.Name, Detail: fmt.Sprintf("%g", c.Weight)})
		case !c.Selected && p.Selected:
			changes = append(changes, SelectionChange{Kind: "deselected", Name: c.Name})
		case c.Selected && p.Weight != c.Weight:
			changes = append(changes, SelectionChange{
				Kind:   "weight-changed",
				Name:   c.Name,
				Detail: fmt.Sprintf("%g -> %g", p.Weight, c.Weight),
			})
		}

		delete(prevMap, c.Name)
	}

	for _, p := range prev {
		if _, gone := prevMap[p.Name]; gone && p.Selected {
			changes = append(changes, SelectionChange{Kind: "deselected", Name: p.Name})
		}
	}

	return changes
}

// SelectionDiffSummary returns a human-readable one-line summary.
func SelectionDiffSummary(changes []SelectionChange) string {
	var selected, deselected, changed int

	for _, c := range changes {
		switch c.Kind {
		case "selected":
			selected++
		case "deselected":
			deselected++
		case "weight-changed":
			changed++
		}
	}

	if selected == 0 && deselected == 0 && changed == 0 {
		return "no selection changes"
	}

	parts := make([]string, 0, 3)

	if selected > 0 {
		parts = append(parts, fmt.Sprintf("+%d selected", selected))
	}

	if deselected > 0 {
		parts = append(parts, fmt.Sprintf("-%d deselected", deselected))
	}

	if changed > 0 {
		parts = append(parts, fmt.Sprintf("~%d weight(s) changed", changed))
	}

	return strings.Join(parts, ", ")
}
