package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hupe1980/blendkey/internal/blendshape"
	"github.com/hupe1980/blendkey/internal/logging"
)

// RunFunc is called each time the watcher triggers a reload. It returns the
// resulting parameter state so the watcher can report selection changes.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult holds the output of a single reload.
type RunResult struct {
	// Params is the registry state after the reload.
	Params []blendshape.Parameter
	// Applied counts the clip bindings applied to the registry.
	Applied int
	// Ignored counts clip bindings for other paths, components, or properties.
	Ignored int
}

// Selected counts the selected parameters in the result.
func (r *RunResult) Selected() int {
	n := 0

	for _, p := range r.Params {
		if p.Selected {
			n++
		}
	}

	return n
}

// Options configures the watch behaviour.
type Options struct {
	// Files are the files to watch (rig and clips). Their parent directories
	// are watched so editors that save by rename are picked up.
	Files []string

	// Debounce is the quiet period before triggering a reload.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	if len(opts.Files) == 0 {
		return errors.New("no files to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	targets, err := addFiles(watcher, opts.Files)
	if err != nil {
		return err
	}

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Files, ", "), opts.Debounce)

	var prev []blendshape.Parameter

	report := func(trigger string) {
		prev = doRun(sigCtx, opts, runFn, trigger, prev)
	}

	// Initial load.
	report("(initial)")

	debouncer := NewDebouncer(opts.Debounce, opts.Logger, report)
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event) {
				continue
			}

			abs, absErr := filepath.Abs(event.Name)
			if absErr != nil || !targets[abs] {
				continue
			}

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single reload, prints the status line, and returns the
// new parameter state (or prev on failure).
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string, prev []blendshape.Parameter) []blendshape.Parameter {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return prev
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d blend shapes, %d selected, %d bindings applied, %d ignored)\n",
		now, trigger, len(result.Params), result.Selected(), result.Applied, result.Ignored)

	if prev != nil {
		if changes := SelectionDiff(prev, result.Params); len(changes) > 0 {
			fmt.Fprintf(opts.Out, "  selection: %s\n", SelectionDiffSummary(changes))
		}
	}

	return result.Params
}

// addFiles watches the parent directory of every file and returns the set
// of absolute file paths that should trigger a reload.
func addFiles(watcher *fsnotify.Watcher, files []string) (map[string]bool, error) {
	targets := make(map[string]bool, len(files))
	dirs := make(map[string]bool)

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving file %q: %w", f, err)
		}

		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("watching file %q: %w", f, err)
		}

		targets[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}

		if err := watcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %q: %w", dir, err)
		}

		dirs[dir] = true
	}

	return targets, nil
}

// isRelevant filters out events that cannot change file content.
func isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	// Only care about write, create, remove, rename.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	// Ignore editor temporary files and hidden files.
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	return true
}
