package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/blendkey/internal/scene"
)

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for blendkey.

Besides commands and flags, completion suggests mesh paths for --target
and blend-shape names for --set, --select and --deselect, read from the
rig given as the first argument.

Bash:
  $ source <(blendkey completion bash)

Zsh:
  $ blendkey completion zsh > "${fpath[1]}/_blendkey"

Fish:
  $ blendkey completion fish > ~/.config/fish/completions/blendkey.fish

PowerShell:
  PS> blendkey completion powershell | Out-String | Invoke-Expression
`,
		// Completion scripts need no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}

			return nil
		},
	}

	return cmd
}

// completeRigArg completes the rig argument with YAML files.
func completeRigArg(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeClipFiles completes clip paths with YAML and JSON files.
func completeClipFiles(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"yaml", "yml", "json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeTargets suggests the paths of every skinned mesh in the rig.
func completeTargets(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	root, err := scene.LoadRig(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	nodes, err := collectNodes(root, false, true)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var out []string

	for _, n := range nodes {
		if n.Path != "" && strings.HasPrefix(n.Path, toComplete) {
			out = append(out, n.Path+"\t"+pluralShapes(n.BlendShapes))
		}
	}

	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeShapeNames returns a completion function listing the blend
// shapes of the targeted mesh. suffix is appended to every name.
func completeShapeNames(suffix string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		root, err := scene.LoadRig(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		target, _ := cmd.Flags().GetString("target")

		node, err := scene.Find(root, target)
		if err != nil || node.Mesh() == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var out []string

		for _, s := range node.Mesh().Shapes() {
			if strings.HasPrefix(strings.ToLower(s.Name), strings.ToLower(toComplete)) {
				out = append(out, s.Name+suffix)
			}
		}

		directive := cobra.ShellCompDirectiveNoFileComp
		if suffix != "" {
			directive |= cobra.ShellCompDirectiveNoSpace
		}

		return out, directive
	}
}

func pluralShapes(n int) string {
	if n == 1 {
		return "1 blend shape"
	}

	return fmt.Sprintf("%d blend shapes", n)
}
