package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/blendkey/internal/mesh"
	"github.com/hupe1980/blendkey/internal/scene"
)

type inspectOptions struct {
	showShapes bool
	meshesOnly bool
	format     string
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <rig>",
		Short: "Inspect a rig's hierarchy and skinned meshes",
		Long: `Inspect prints every node of a rig with the path used to address it
from the rig root and the number of blend shapes on its skinned mesh.

Use the printed path with "blendkey edit --target".`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRigArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerFormatFlag(cmd, &opts.format, "table", "table", "json", "yaml")

	f := cmd.Flags()
	f.BoolVar(&opts.showShapes, "shapes", false, "list blend-shape names and default weights")
	f.BoolVar(&opts.meshesOnly, "meshes-only", false, "only list nodes with a skinned mesh")

	return cmd
}

// nodeInfo is the structured output of the inspect command, one per node.
type nodeInfo struct {
	Path        string            `json:"path"`
	Name        string            `json:"name"`
	Depth       int               `json:"depth"`
	HasMesh     bool              `json:"hasMesh"`
	BlendShapes int               `json:"blendShapes"`
	Shapes      []mesh.BlendShape `json:"shapes,omitempty"`
}

func runInspect(ctx context.Context, cmd *cobra.Command, rigPath string, opts *inspectOptions) error {
	if err := checkFormat(opts.format, "table", "json", "yaml"); err != nil {
		return err
	}

	root, err := loadRig(ctx, rigPath)
	if err != nil {
		return err
	}

	nodes, err := collectNodes(root, opts.showShapes, opts.meshesOnly)
	if err != nil {
		return &ExitError{Code: exitHierarchy, Err: err}
	}

	w := cmd.OutOrStdout()

	switch opts.format {
	case "json":
		data, err := json.MarshalIndent(nodes, "", "  ")
		if err != nil {
			return &ExitError{Code: exitRuntime, Err: fmt.Errorf("marshaling nodes: %w", err)}
		}

		_, _ = fmt.Fprintln(w, string(data))
	case "yaml":
		data, err := sigsyaml.Marshal(nodes)
		if err != nil {
			return &ExitError{Code: exitRuntime, Err: fmt.Errorf("marshaling nodes: %w", err)}
		}

		_, _ = w.Write(data)
	default:
		writeNodeTable(w, nodes, opts.showShapes)
	}

	return nil
}

// collectNodes walks the hierarchy in pre-order and records each node's
// address below root.
func collectNodes(root *scene.Transform, withShapes, meshesOnly bool) ([]nodeInfo, error) {
	nodes := []nodeInfo{}

	err := root.Walk(func(t *scene.Transform) error {
		path, err := scene.RelativePath(root, t)
		if err != nil {
			return err
		}

		m := t.Mesh()
		if meshesOnly && m == nil {
			return nil
		}

		info := nodeInfo{
			Path:        path,
			Name:        t.Name(),
			Depth:       depth(path),
			HasMesh:     m != nil,
			BlendShapes: m.BlendShapeCount(),
		}

		if withShapes {
			info.Shapes = m.Shapes()
		}

		nodes = append(nodes, info)

		return nil
	})

	return nodes, err
}

func depth(path string) int {
	if path == "" {
		return 0
	}

	return strings.Count(path, scene.Separator) + 1
}

func writeNodeTable(w io.Writer, nodes []nodeInfo, withShapes bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NODE\tPATH\tBLEND SHAPES")

	for _, n := range nodes {
		count := "-"
		if n.HasMesh {
			count = fmt.Sprintf("%d", n.BlendShapes)
		}

		_, _ = fmt.Fprintf(tw, "%s%s\t%s\t%s\n", strings.Repeat("  ", n.Depth), n.Name, displayTarget(n.Path), count)

		if withShapes {
			for _, s := range n.Shapes {
				_, _ = fmt.Fprintf(tw, "%s  · %s\t\t%g\n", strings.Repeat("  ", n.Depth), s.Name, s.Weight)
			}
		}
	}

	_ = tw.Flush()
}
