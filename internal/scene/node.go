package scene

import (
	"github.com/hupe1980/blendkey/internal/mesh"
)

// Node is an opaque handle into a scene graph.
type Node interface {
	// Name returns the node's local name.
	Name() string
	// Parent returns the node's parent, or nil for a top-level node.
	Parent() Node
	// FindChild returns the first direct child called name, or nil.
	FindChild(name string) Node
}

// Transform is an in-memory scene node. A Transform may carry a skinned
// mesh component. All methods are safe on a nil receiver.
type Transform struct {
	name     string
	parent   *Transform
	children []*Transform
	mesh     *mesh.Mesh
}

var _ Node = (*Transform)(nil)

// NewTransform creates a detached node.
func NewTransform(name string) *Transform {
	return &Transform{name: name}
}

// Name implements Node.
func (t *Transform) Name() string {
	if t == nil {
		return ""
	}

	return t.name
}

// Parent implements Node. The returned interface is nil, not a typed nil,
// when t has no parent.
func (t *Transform) Parent() Node {
	if t == nil || t.parent == nil {
		return nil
	}

	return t.parent
}

// FindChild implements Node.
func (t *Transform) FindChild(name string) Node {
	if c := t.Child(name); c != nil {
		return c
	}

	return nil
}

// Child returns the first direct child called name, or nil.
func (t *Transform) Child(name string) *Transform {
	if t == nil {
		return nil
	}

	for _, c := range t.children {
		if c.name == name {
			return c
		}
	}

	return nil
}

// Children returns the node's direct children in insertion order.
func (t *Transform) Children() []*Transform {
	if t == nil {
		return nil
	}

	out := make([]*Transform, len(t.children))
	copy(out, t.children)

	return out
}

// AddChild attaches c under t, detaching it from any previous parent,
// and returns c.
func (t *Transform) AddChild(c *Transform) *Transform {
	if t == nil || c == nil {
		return c
	}

	if c.parent != nil {
		c.parent.removeChild(c)
	}

	c.parent = t
	t.children = append(t.children, c)

	return c
}

// NewChild creates a node called name under t and returns it.
func (t *Transform) NewChild(name string) *Transform {
	return t.AddChild(NewTransform(name))
}

// Mesh returns the node's skinned mesh component, or nil.
func (t *Transform) Mesh() *mesh.Mesh {
	if t == nil {
		return nil
	}

	return t.mesh
}

// SetMesh attaches a skinned mesh component to the node.
func (t *Transform) SetMesh(m *mesh.Mesh) {
	if t == nil {
		return
	}

	t.mesh = m
}

// Clone deep-copies the subtree rooted at t, including mesh components.
// The clone is detached.
func (t *Transform) Clone() *Transform {
	if t == nil {
		return nil
	}

	c := &Transform{name: t.name, mesh: t.mesh.Clone()}
	for _, child := range t.children {
		c.AddChild(child.Clone())
	}

	return c
}

// Walk visits t and all descendants in depth-first pre-order. Walking stops
// at the first error returned by fn.
func (t *Transform) Walk(fn func(*Transform) error) error {
	if t == nil {
		return nil
	}

	if err := fn(t); err != nil {
		return err
	}

	for _, c := range t.children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}

	return nil
}

func (t *Transform) removeChild(c *Transform) {
	for i, existing := range t.children {
		if existing == c {
			t.children = append(t.children[:i], t.children[i+1:]...)
			return
		}
	}
}
