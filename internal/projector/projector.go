// Package projector pushes a registry's effective blend-shape weights onto a
// renderer.
package projector

import (
	"github.com/hupe1980/blendkey/internal/blendshape"
	"github.com/hupe1980/blendkey/internal/mesh"
)

// Project writes, for each parameter at index i, its weight when selected
// or its default weight otherwise to blend shape i of r. A nil renderer or
// registry is a no-op. Index bounds are left to the renderer.
func Project(reg *blendshape.Registry, r mesh.Renderer) {
	if reg == nil || r == nil {
		return
	}

	for _, p := range reg.Params() {
		r.SetBlendShapeWeight(p.Index, p.EffectiveWeight())
	}
}
