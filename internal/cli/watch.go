package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/blendkey/internal/clipfile"
	"github.com/hupe1980/blendkey/internal/config"
	"github.com/hupe1980/blendkey/internal/logging"
	"github.com/hupe1980/blendkey/internal/watch"
)

type watchOptions struct {
	clips    []string
	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <rig>",
		Short: "Watch a rig and its clips and reload on change",
		Long: `Watch monitors a rig file and any number of clip files and reloads
them whenever one changes on disk.

Each reload re-targets the mesh, re-applies every clip in order (each
load resets the weights first, so the last clip wins), and reports the
number of blend shapes, how many are selected, and how the selection
changed since the previous reload. Reload errors are reported and the
watcher keeps running.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerTargetFlags(cmd)

	f := cmd.Flags()
	f.StringArrayVar(&opts.clips, "clip", nil, "clip file to apply on every reload (repeatable)")
	f.DurationVar(&opts.debounce, "debounce", 300*time.Millisecond, "debounce interval for file changes")

	_ = cmd.RegisterFlagCompletionFunc("clip", completeClipFiles)

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, rigPath string, opts *watchOptions) error {
	cfg := config.FromContext(ctx)
	logger := logging.Component(ctx, "cli")

	runFn := func(fnCtx context.Context) (*watch.RunResult, error) {
		session, err := openSession(fnCtx, rigPath, cfg.Target)
		if err != nil {
			return nil, err
		}

		result := &watch.RunResult{}

		for _, path := range opts.clips {
			clip, err := clipfile.Load(path)
			if err != nil {
				return nil, err
			}

			res, err := session.LoadClip(clip)
			if err != nil {
				return nil, err
			}

			logDecode(logger, clip.Name, res)

			result.Applied = len(res.Applied)
			result.Ignored = res.Ignored
		}

		result.Params = session.Params()

		return result, nil
	}

	watchOpts := watch.DefaultOptions()
	watchOpts.Files = append([]string{rigPath}, opts.clips...)
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logging.Component(ctx, "watch")
	watchOpts.Out = cmd.ErrOrStderr()

	if err := watch.Run(ctx, watchOpts, runFn); err != nil {
		return &ExitError{Code: exitRuntime, Err: err}
	}

	return nil
}
