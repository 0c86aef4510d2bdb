package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/blendkey/internal/blendshape"
	"github.com/hupe1980/blendkey/internal/clipfile"
	"github.com/hupe1980/blendkey/internal/config"
	"github.com/hupe1980/blendkey/internal/curve"
	"github.com/hupe1980/blendkey/internal/editor"
	"github.com/hupe1980/blendkey/internal/filter"
	"github.com/hupe1980/blendkey/internal/logging"
)

type editOptions struct {
	// Inputs.
	clip   string
	preset string

	// Edits, applied in this order after the clip and preset.
	reset    bool
	set      []string
	sel      []string
	deselect []string

	// Views.
	search       string
	targetSearch string
	format       string

	// Output.
	output string
	force  bool
}

func newEditCommand() *cobra.Command {
	opts := &editOptions{}

	cmd := &cobra.Command{
		Use:   "edit <rig>",
		Short: "Edit blend-shape weights of a rig and save them as a clip",
		Long: `Edit loads a rig, targets one of its skinned meshes, and applies
blend-shape edits before printing the resulting views.

Edits are applied in a fixed order:
  1. --clip      load an existing clip (resets all weights first)
  2. --reset     restore default weights and clear the selection
  3. --preset    apply a named preset from the config file
  4. --set       set weights (Name=weight), selecting each shape
  5. --select / --deselect

The filtered view lists blend shapes matching --search; the targeted view
lists selected blend shapes matching --target-search. Matching is a
case-insensitive substring match.

With --output the selected blend shapes are written as a clip. Writing
over an existing file requires --force; the existing clip's name is kept.
Use "-" to write the clip to stdout.

Exit codes:
  0  Success
  1  Error
  2  Invalid arguments or unknown blend-shape name
  3  Target not found in the rig hierarchy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerTargetFlags(cmd)
	registerFormatFlag(cmd, &opts.format, "table", "table", "json", "yaml")

	f := cmd.Flags()
	f.StringVar(&opts.clip, "clip", "", "clip file to load before editing")
	f.StringVar(&opts.preset, "preset", "", "named weight preset from the config file")
	f.BoolVar(&opts.reset, "reset", false, "reset all weights and selections")
	f.StringArrayVar(&opts.set, "set", nil, "set a blend-shape weight (Name=weight)")
	f.StringArrayVar(&opts.sel, "select", nil, "select a blend shape")
	f.StringArrayVar(&opts.deselect, "deselect", nil, "deselect a blend shape")
	f.StringVarP(&opts.search, "search", "s", "", "keyword for the filtered view")
	f.StringVar(&opts.targetSearch, "target-search", "", "keyword for the targeted view")
	f.StringVarP(&opts.output, "output", "o", "", `write the selection as a clip ("-" for stdout)`)
	f.BoolVar(&opts.force, "force", false, "overwrite an existing clip file")

	_ = cmd.RegisterFlagCompletionFunc("set", completeShapeNames("="))
	_ = cmd.RegisterFlagCompletionFunc("select", completeShapeNames(""))
	_ = cmd.RegisterFlagCompletionFunc("deselect", completeShapeNames(""))
	_ = cmd.RegisterFlagCompletionFunc("clip", completeClipFiles)

	return cmd
}

// editReport is the structured output of the edit command.
type editReport struct {
	Target string `json:"target"`
	filter.Views
}

func runEdit(ctx context.Context, cmd *cobra.Command, rigPath string, opts *editOptions) error {
	if err := checkFormat(opts.format, "table", "json", "yaml"); err != nil {
		return err
	}

	assignments, err := parseAssignments(opts.set)
	if err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}

	if err := checkOutput(opts.output, opts.force); err != nil {
		return err
	}

	cfg := config.FromContext(ctx)

	session, err := openSession(ctx, rigPath, cfg.Target)
	if err != nil {
		return err
	}

	if err := applyEdits(ctx, session, assignments, opts); err != nil {
		return err
	}

	session.SetSearch(opts.search)
	session.SetTargetSearch(opts.targetSearch)

	path, _ := session.TargetPath()
	report := editReport{Target: path, Views: session.Views()}

	// Keep stdout clean when it carries the clip.
	viewOut := cmd.OutOrStdout()
	if opts.output == "-" {
		viewOut = cmd.ErrOrStderr()
	}

	if err := writeEditReport(viewOut, report, opts.format); err != nil {
		return &ExitError{Code: exitRuntime, Err: err}
	}

	if opts.output == "" {
		return nil
	}

	return saveSessionClip(ctx, cmd.OutOrStdout(), session, opts.output, cfg.ClipFormat, opts.force)
}

// checkOutput refuses an existing output file without --force before any
// work is done or any view is printed.
func checkOutput(path string, force bool) error {
	if path == "" || path == "-" || force {
		return nil
	}

	if _, err := os.Stat(path); err == nil {
		return &ExitError{Code: exitRuntime, Err: fmt.Errorf("%s: %w (use --force to overwrite)", path, clipfile.ErrExists)}
	}

	return nil
}

// applyEdits runs the clip, reset, preset, set, and selection steps.
func applyEdits(ctx context.Context, session *editor.Session, assignments []assignment, opts *editOptions) error {
	logger := logging.Component(ctx, "cli")

	if opts.clip != "" {
		clip, err := clipfile.Load(opts.clip)
		if err != nil {
			return &ExitError{Code: exitRuntime, Err: err}
		}

		res, err := session.LoadClip(clip)
		if err != nil {
			return &ExitError{Code: exitRuntime, Err: err}
		}

		logDecode(logger, clip.Name, res)
	}

	if opts.reset {
		session.ResetAll()
	}

	if opts.preset != "" {
		if err := applyPreset(logger, session, config.FromContext(ctx).Presets, opts.preset); err != nil {
			return err
		}
	}

	for _, a := range assignments {
		if err := session.SetWeight(a.name, a.weight); err != nil {
			return editError("set", a.name, err)
		}
	}

	for _, name := range opts.sel {
		if err := session.SetSelected(name, true); err != nil {
			return editError("select", name, err)
		}
	}

	for _, name := range opts.deselect {
		if err := session.SetSelected(name, false); err != nil {
			return editError("deselect", name, err)
		}
	}

	return nil
}

// applyPreset applies a configured preset. Blend shapes the target does
// not have are skipped with a warning.
func applyPreset(logger *slog.Logger, session *editor.Session, presets config.Presets, name string) error {
	preset, err := presets.Get(name)
	if err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}

	for _, shape := range preset.Names() {
		if err := session.SetWeight(shape, preset.Weights[shape]); err != nil {
			if errors.Is(err, blendshape.ErrNotFound) {
				logger.Warn("preset blend shape not on target",
					slog.String("preset", name),
					slog.String("blendShape", shape),
				)

				continue
			}

			return &ExitError{Code: exitRuntime, Err: err}
		}
	}

	return nil
}

func logDecode(logger *slog.Logger, clipName string, res curve.DecodeResult) {
	logger.Info("clip loaded",
		slog.String("clip", clipName),
		slog.Int("applied", len(res.Applied)),
		slog.Int("ignored", res.Ignored),
	)

	for _, name := range res.Unknown {
		logger.Warn("clip blend shape not on target", slog.String("blendShape", name))
	}

	for _, name := range res.EmptyCurves {
		logger.Warn("clip curve has no keys", slog.String("blendShape", name))
	}
}

// saveSessionClip encodes the session's selection into a clip and writes
// it to path ("-" for stdout).
func saveSessionClip(ctx context.Context, stdout io.Writer, session *editor.Session, path, defaultFormat string, force bool) error {
	logger := logging.Component(ctx, "clipfile")

	format, err := clipfile.ParseFormat(defaultFormat)
	if err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}

	// A known extension overrides the configured format.
	format = clipfile.DefaultRegistry().ForPath(path, format)

	dst := &curve.Clip{Name: clipfile.NameFromPath(path)}

	if path == "-" {
		path = ""
		dst.Name = "clip"
	} else if force {
		// Saving over an existing clip keeps its name.
		if existing, loadErr := clipfile.Load(path); loadErr == nil {
			dst = existing
		} else if !errors.Is(loadErr, os.ErrNotExist) {
			logger.Warn("replacing unreadable clip", slog.String("path", path), slog.String("error", loadErr.Error()))
		}
	}

	if err := session.SaveClip(dst); err != nil {
		return &ExitError{Code: exitRuntime, Err: err}
	}

	if path == "" {
		data, err := clipfile.Marshal(dst, format)
		if err != nil {
			return &ExitError{Code: exitRuntime, Err: err}
		}

		if err := clipfile.Open("", stdout, false, logger).Write(data); err != nil {
			return &ExitError{Code: exitRuntime, Err: err}
		}

		return nil
	}

	opts := clipfile.SaveOptions{Format: format, Overwrite: force, Logger: logger}
	if err := clipfile.Save(path, dst, opts); err != nil {
		if errors.Is(err, clipfile.ErrExists) {
			return &ExitError{Code: exitRuntime, Err: fmt.Errorf("%w (use --force to overwrite)", err)}
		}

		return &ExitError{Code: exitRuntime, Err: err}
	}

	logger.Info("clip saved",
		slog.String("path", path),
		slog.String("clip", dst.Name),
		slog.Int("bindings", len(dst.Bindings)),
	)

	return nil
}

func writeEditReport(w io.Writer, report editReport, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling views: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	case "yaml":
		data, err := sigsyaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshaling views: %w", err)
		}

		_, err = w.Write(data)

		return err
	}

	_, _ = fmt.Fprintf(w, "Target: %s\n\n", displayTarget(report.Target))

	_, _ = fmt.Fprintf(w, "Filtered (%d):\n", len(report.Filtered))
	writeParamTable(w, report.Filtered)

	_, _ = fmt.Fprintf(w, "\nTargeted (%d):\n", len(report.Targeted))
	writeParamTable(w, report.Targeted)

	return nil
}

func writeParamTable(w io.Writer, params []blendshape.Parameter) {
	if len(params) == 0 {
		_, _ = fmt.Fprintln(w, "  (none)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  INDEX\tNAME\tWEIGHT\tDEFAULT\tSELECTED")

	for _, p := range params {
		sel := ""
		if p.Selected {
			sel = "*"
		}

		_, _ = fmt.Fprintf(tw, "  %d\t%s\t%g\t%g\t%s\n", p.Index, p.Name, p.Weight, p.DefaultWeight, sel)
	}

	_ = tw.Flush()
}

func displayTarget(path string) string {
	if path == "" {
		return "(root)"
	}

	return path
}
