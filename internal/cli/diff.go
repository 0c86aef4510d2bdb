package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/blendkey/internal/clipdiff"
	"github.com/hupe1980/blendkey/internal/clipfile"
	"github.com/hupe1980/blendkey/internal/config"
)

type diffOptions struct {
	// Output format: "unified" (default), "json".
	format string

	// Return exit code 4 when the clips differ.
	exitCode bool
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <old-clip> <new-clip>",
		Short: "Compare two clip files",
		Long: `Diff compares two clip files. Both are put in canonical form (bindings
sorted by path, component, and property) before a unified diff is
computed, so reordering alone is not a change.

A table of blend-shape changes follows the diff: shapes added, removed,
or held at a different weight.

Exit codes:
  0  No differences (or --exit-code not set)
  1  Error
  2  Invalid arguments
  4  Differences found and --exit-code set`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args[0], args[1], opts)
		},
	}

	registerFormatFlag(cmd, &opts.format, "unified", "unified", "json")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "exit with code 4 when the clips differ")

	cmd.ValidArgsFunction = func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= 2 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		return completeClipFiles(nil, nil, "")
	}

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, oldPath, newPath string, opts *diffOptions) error {
	if err := checkFormat(opts.format, "unified", "json"); err != nil {
		return err
	}

	oldClip, err := clipfile.Load(oldPath)
	if err != nil {
		return &ExitError{Code: exitRuntime, Err: err}
	}

	newClip, err := clipfile.Load(newPath)
	if err != nil {
		return &ExitError{Code: exitRuntime, Err: err}
	}

	diffOpts := clipdiff.DefaultDiffOptions()
	diffOpts.OldLabel = oldPath
	diffOpts.NewLabel = newPath

	result, err := clipdiff.Clips(oldClip, newClip, diffOpts)
	if err != nil {
		return &ExitError{Code: exitRuntime, Err: fmt.Errorf("computing diff: %w", err)}
	}

	w := cmd.OutOrStdout()

	switch opts.format {
	case "json":
		data, err := json.MarshalIndent(struct {
			Changed         bool              `json:"changed"`
			SettingsChanged bool              `json:"settingsChanged"`
			Changes         []clipdiff.Change `json:"changes"`
		}{result.HasChanges(), result.SettingsChanged, result.Changes}, "", "  ")
		if err != nil {
			return &ExitError{Code: exitRuntime, Err: fmt.Errorf("formatting JSON: %w", err)}
		}

		_, _ = fmt.Fprintln(w, string(data))
	default:
		clipdiff.WriteDiff(w, result.DiffResult, !config.FromContext(ctx).NoColor)

		if len(result.Changes) > 0 {
			_, _ = fmt.Fprintln(w)
			clipdiff.FormatTable(w, result.Changes)
		}
	}

	if opts.exitCode && result.HasChanges() {
		return &ExitError{
			Code: exitDiffers,
			Err:  fmt.Errorf("clips differ: %d blend-shape change(s)", len(result.Changes)),
		}
	}

	return nil
}
