package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/blendkey/internal/blendshape"
	"github.com/hupe1980/blendkey/internal/editor"
	"github.com/hupe1980/blendkey/internal/logging"
	"github.com/hupe1980/blendkey/internal/scene"
)

// Process exit codes.
const (
	exitRuntime   = 1
	exitUsage     = 2
	exitHierarchy = 3
	exitDiffers   = 4
)

// loadRig reads a rig file, mapping failures to a runtime exit code.
func loadRig(ctx context.Context, path string) (*scene.Transform, error) {
	logger := logging.Component(ctx, "cli")
	logger.Debug("loading rig", slog.String("path", path))

	root, err := scene.LoadRig(path)
	if err != nil {
		return nil, &ExitError{Code: exitRuntime, Err: err}
	}

	return root, nil
}

// openSession loads the rig at rigPath and targets the node at targetPath
// below its root. An empty targetPath targets the root itself.
func openSession(ctx context.Context, rigPath, targetPath string, opts ...editor.Option) (*editor.Session, error) {
	root, err := loadRig(ctx, rigPath)
	if err != nil {
		return nil, err
	}

	opts = append([]editor.Option{editor.WithLogger(logging.Component(ctx, "editor"))}, opts...)
	session := editor.New(opts...)

	if err := session.SetRoot(root); err != nil {
		return nil, &ExitError{Code: exitRuntime, Err: err}
	}

	if err := session.SetTargetPath(targetPath); err != nil {
		return nil, targetError(targetPath, err)
	}

	return session, nil
}

// targetError maps a target-selection failure to an exit error.
func targetError(path string, err error) error {
	display := path
	if display == "" {
		display = "(root)"
	}

	switch {
	case errors.Is(err, scene.ErrNotFound), errors.Is(err, scene.ErrInvalidHierarchy):
		return &ExitError{Code: exitHierarchy, Err: fmt.Errorf("target %s: %w", display, err)}
	case errors.Is(err, editor.ErrNoTarget):
		return &ExitError{Code: exitHierarchy, Err: fmt.Errorf("target %s: %w (use --target to pick a skinned mesh)", display, err)}
	default:
		return &ExitError{Code: exitRuntime, Err: err}
	}
}

// editError maps a parameter-edit failure to an exit error. Unknown
// blend-shape names are usage errors.
func editError(flag, name string, err error) error {
	if errors.Is(err, blendshape.ErrNotFound) {
		return &ExitError{Code: exitUsage, Err: fmt.Errorf("--%s %s: %w", flag, name, err)}
	}

	return &ExitError{Code: exitRuntime, Err: err}
}
