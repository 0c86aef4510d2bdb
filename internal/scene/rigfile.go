package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/hupe1980/blendkey/internal/mesh"
)

// RigNode is the on-disk form of a scene node.
//
//	name: Avatar
//	children:
//	  - name: Body
//	    blendShapes:
//	      - name: Smile
//	        weight: 0
type RigNode struct {
	Name        string            `yaml:"name"`
	BlendShapes []mesh.BlendShape `yaml:"blendShapes,omitempty"`
	Children    []*RigNode        `yaml:"children,omitempty"`

	line int
}

// UnmarshalYAML records the source line so validation errors can point at it.
func (n *RigNode) UnmarshalYAML(value *yaml.Node) error {
	type plain RigNode

	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}

	*n = RigNode(p)
	n.line = value.Line

	return nil
}

// LoadRig reads a rig file from disk and builds its Transform tree.
func LoadRig(path string) (*Transform, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading rig file: %w", err)
	}

	root, err := ParseRig(data)
	if err != nil {
		return nil, fmt.Errorf("loading rig %s: %w", path, err)
	}

	return root, nil
}

// ParseRig decodes rig YAML, validates it, and builds its Transform tree.
// Every validation problem is reported, not only the first.
func ParseRig(data []byte) (*Transform, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("parsing rig: empty document")
	}

	var doc RigNode
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rig: %w", err)
	}

	if err := ValidateRig(&doc); err != nil {
		return nil, err
	}

	return doc.Build(), nil
}

// ValidateRig checks that every node is named, that names do not contain
// the path separator, and that sibling names are unique, so that every
// node has exactly one address. Blend-shape names must be non-empty and
// unique within their mesh, so registry indices match mesh indices.
func ValidateRig(root *RigNode) error {
	var errs []error

	var visit func(n *RigNode, at string)
	visit = func(n *RigNode, at string) {
		switch {
		case n.Name == "":
			errs = append(errs, fmt.Errorf("line %d: node under %q has no name", n.line, at))
		case strings.Contains(n.Name, Separator):
			errs = append(errs, fmt.Errorf("line %d: node name %q contains %q", n.line, n.Name, Separator))
		}

		errs = append(errs, validateBlendShapes(n)...)

		seen := make(map[string]int, len(n.Children))
		for _, c := range n.Children {
			if c == nil {
				continue
			}

			if prev, dup := seen[c.Name]; dup && c.Name != "" {
				errs = append(errs, fmt.Errorf("line %d: duplicate child %q under %q (first on line %d)", c.line, c.Name, n.Name, prev))
			} else {
				seen[c.Name] = c.line
			}

			visit(c, n.Name)
		}
	}

	visit(root, "")

	return utilerrors.NewAggregate(errs)
}

func validateBlendShapes(n *RigNode) []error {
	if len(n.BlendShapes) == 0 {
		return nil
	}

	var errs []error

	m := mesh.New(n.BlendShapes...)

	for i, s := range n.BlendShapes {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("line %d: blend shape %d of %q has no name", n.line, i, n.Name))
			continue
		}

		if first := m.IndexOf(s.Name); first != i {
			errs = append(errs, fmt.Errorf("line %d: duplicate blend shape %q on %q (indices %d and %d)", n.line, s.Name, n.Name, first, i))
		}
	}

	return errs
}

// Build converts the rig description into a detached Transform tree.
func (n *RigNode) Build() *Transform {
	t := NewTransform(n.Name)
	if len(n.BlendShapes) > 0 {
		t.SetMesh(mesh.New(n.BlendShapes...))
	}

	for _, c := range n.Children {
		if c != nil {
			t.AddChild(c.Build())
		}
	}

	return t
}
