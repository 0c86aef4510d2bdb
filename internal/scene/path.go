package scene

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Separator joins node names in a hierarchical address.
const Separator = "/"

var (
	// ErrInvalidHierarchy is returned when a target is not the root or one
	// of its descendants.
	ErrInvalidHierarchy = errors.New("target is not a descendant of root")

	// ErrNotFound is returned when a path does not lead to a node.
	ErrNotFound = errors.New("node not found")
)

// RelativePath returns the address of target below root: the names of the
// nodes from (excluding) root down to (including) target, joined by
// [Separator]. The address of root itself is the empty string.
func RelativePath(root, target Node) (string, error) {
	if root == nil || target == nil {
		return "", fmt.Errorf("resolving relative path: %w", ErrInvalidHierarchy)
	}

	var names []string

	for cur := target; cur != root; cur = cur.Parent() {
		if cur == nil {
			return "", fmt.Errorf("resolving relative path of %q: %w", target.Name(), ErrInvalidHierarchy)
		}

		names = append(names, cur.Name())
	}

	slices.Reverse(names)

	return strings.Join(names, Separator), nil
}

// Resolve descends from root following path one segment at a time and
// returns the node reached. The empty path resolves to root.
func Resolve(root Node, path string) (Node, error) {
	if root == nil {
		return nil, fmt.Errorf("resolving %q: %w", path, ErrNotFound)
	}

	if path == "" {
		return root, nil
	}

	cur := root
	for _, seg := range strings.Split(path, Separator) {
		next := cur.FindChild(seg)
		if next == nil {
			return nil, fmt.Errorf("resolving %q: no child %q under %q: %w", path, seg, cur.Name(), ErrNotFound)
		}

		cur = next
	}

	return cur, nil
}

// Find resolves path below root and returns the concrete Transform.
func Find(root *Transform, path string) (*Transform, error) {
	if root == nil {
		return nil, fmt.Errorf("resolving %q: %w", path, ErrNotFound)
	}

	n, err := Resolve(root, path)
	if err != nil {
		return nil, err
	}

	t, ok := n.(*Transform)
	if !ok {
		return nil, fmt.Errorf("resolving %q: unexpected node type %T: %w", path, n, ErrNotFound)
	}

	return t, nil
}
