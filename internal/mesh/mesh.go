// Package mesh defines the renderer weight target consumed by the
// blend-shape core and provides an in-memory skinned mesh implementation.
package mesh

import "fmt"

// Renderer is a handle to a skinned mesh whose blend-shape weights can be
// read and written by index.
type Renderer interface {
	// BlendShapeCount returns the number of blend shapes on the mesh.
	BlendShapeCount() int
	// BlendShapeName returns the name of the blend shape at index i.
	BlendShapeName(i int) string
	// BlendShapeWeight returns the current weight of the blend shape at index i.
	BlendShapeWeight(i int) float64
	// SetBlendShapeWeight sets the weight of the blend shape at index i.
	SetBlendShapeWeight(i int, weight float64)
}

// BlendShape is a single named morph target on a mesh.
type BlendShape struct {
	Name   string  `yaml:"name" json:"name"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Mesh is an in-memory Renderer. Out-of-range indices are ignored on write
// and read back as zero values.
type Mesh struct {
	shapes []BlendShape
}

var _ Renderer = (*Mesh)(nil)

// New creates a mesh with the given blend shapes in index order.
func New(shapes ...BlendShape) *Mesh {
	m := &Mesh{shapes: make([]BlendShape, len(shapes))}
	copy(m.shapes, shapes)

	return m
}

// BlendShapeCount implements Renderer.
func (m *Mesh) BlendShapeCount() int {
	if m == nil {
		return 0
	}

	return len(m.shapes)
}

// BlendShapeName implements Renderer.
func (m *Mesh) BlendShapeName(i int) string {
	if !m.inRange(i) {
		return ""
	}

	return m.shapes[i].Name
}

// BlendShapeWeight implements Renderer.
func (m *Mesh) BlendShapeWeight(i int) float64 {
	if !m.inRange(i) {
		return 0
	}

	return m.shapes[i].Weight
}

// SetBlendShapeWeight implements Renderer.
func (m *Mesh) SetBlendShapeWeight(i int, weight float64) {
	if !m.inRange(i) {
		return
	}

	m.shapes[i].Weight = weight
}

// IndexOf returns the index of the first blend shape called name, or -1.
func (m *Mesh) IndexOf(name string) int {
	if m == nil {
		return -1
	}

	for i, s := range m.shapes {
		if s.Name == name {
			return i
		}
	}

	return -1
}

// Shapes returns a copy of the mesh's blend shapes.
func (m *Mesh) Shapes() []BlendShape {
	if m == nil {
		return nil
	}

	out := make([]BlendShape, len(m.shapes))
	copy(out, m.shapes)

	return out
}

// Clone returns an independent copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}

	return New(m.shapes...)
}

// String returns a short human-readable description.
func (m *Mesh) String() string {
	return fmt.Sprintf("mesh(%d blend shapes)", m.BlendShapeCount())
}

func (m *Mesh) inRange(i int) bool {
	return m != nil && i >= 0 && i < len(m.shapes)
}
