// Package curve models keyframed animation clips and translates between
// them and a blend-shape registry.
//
// [Decode] reads the blend-shape bindings addressed at one scene path into
// the registry; [Encode] writes the registry's selected parameters back out
// as flat, looping curves.
package curve

import (
	"errors"
	"slices"
	"sort"
)

// ErrEmptyCurve is returned when sampling a curve with no keyframes.
var ErrEmptyCurve = errors.New("curve has no keyframes")

// Keyframe is a single key on a curve. Tangents are slopes in value units
// per time unit.
type Keyframe struct {
	Time       float64 `json:"time"`
	Value      float64 `json:"value"`
	InTangent  float64 `json:"inTangent,omitempty"`
	OutTangent float64 `json:"outTangent,omitempty"`
}

// Curve is a sequence of keyframes ordered by time.
type Curve struct {
	Keys []Keyframe `json:"keys"`
}

// NewCurve builds a curve from keys, sorting them by time.
func NewCurve(keys ...Keyframe) Curve {
	c := Curve{Keys: slices.Clone(keys)}
	slices.SortStableFunc(c.Keys, func(a, b Keyframe) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		default:
			return 0
		}
	})

	return c
}

// Len returns the number of keyframes.
func (c Curve) Len() int {
	return len(c.Keys)
}

// AddKey inserts k keeping the keys ordered by time. A key at an existing
// time replaces it.
func (c *Curve) AddKey(k Keyframe) {
	i := sort.Search(len(c.Keys), func(i int) bool { return c.Keys[i].Time >= k.Time })
	if i < len(c.Keys) && c.Keys[i].Time == k.Time {
		c.Keys[i] = k
		return
	}

	c.Keys = slices.Insert(c.Keys, i, k)
}

// Evaluate samples the curve at time t. Between two keys the value follows
// a cubic Hermite segment shaped by the keys' tangents; outside the keyed
// range it is clamped to the first or last key.
func (c Curve) Evaluate(t float64) (float64, error) {
	n := len(c.Keys)
	if n == 0 {
		return 0, ErrEmptyCurve
	}

	if t <= c.Keys[0].Time {
		return c.Keys[0].Value, nil
	}

	if t >= c.Keys[n-1].Time {
		return c.Keys[n-1].Value, nil
	}

	// First key strictly after t; t lies in [Keys[i-1], Keys[i]).
	i := sort.Search(n, func(i int) bool { return c.Keys[i].Time > t })
	k0, k1 := c.Keys[i-1], c.Keys[i]

	dt := k1.Time - k0.Time
	if dt <= 0 {
		return k1.Value, nil
	}

	s := (t - k0.Time) / dt
	s2 := s * s
	s3 := s2 * s

	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	return h00*k0.Value + h10*dt*k0.OutTangent + h01*k1.Value + h11*dt*k1.InTangent, nil
}
