// Package editor drives the blend-shape core the way an interactive host
// does: an animation root and a target mesh are chosen, parameters are
// edited and searched, and clips are loaded and saved.
//
// Every mutating call re-derives the filtered views and re-projects weights
// onto a preview copy of the root hierarchy before returning, then reports
// the new views through the optional on-change hook.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hupe1980/blendkey/internal/blendshape"
	"github.com/hupe1980/blendkey/internal/curve"
	"github.com/hupe1980/blendkey/internal/filter"
	"github.com/hupe1980/blendkey/internal/mesh"
	"github.com/hupe1980/blendkey/internal/projector"
	"github.com/hupe1980/blendkey/internal/scene"
)

// ErrNoTarget is returned by operations that need an animation root and a
// target mesh when either is missing.
var ErrNoTarget = errors.New("no animation root or target mesh")

// ChangeFunc receives the freshly derived views after every mutation.
type ChangeFunc func(views filter.Views)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithOnChange registers a hook invoked after every mutation. The hook runs
// after the session lock is released and may call back into the session.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// Session is the editing state for one root and one target mesh. All
// methods are safe for concurrent use; a single lock serializes them.
type Session struct {
	mu       sync.Mutex
	logger   *slog.Logger
	onChange ChangeFunc

	root       *scene.Transform
	preview    *scene.Transform
	target     *scene.Transform
	targetPath string
	previewR   mesh.Renderer

	reg       *blendshape.Registry
	primary   string
	secondary string
	views     filter.Views
}

// New creates an empty session with no root or target.
func New(opts ...Option) *Session {
	s := &Session{
		logger: slog.Default(),
		reg:    blendshape.NewRegistry(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.views = filter.Apply(s.reg, "", "")

	return s
}

// SetRoot selects the animation root. The hierarchy is cloned into a preview
// instance that receives all projected weights; the source is never written.
// A nil root clears the target, the registry, and the views. When a target
// is already selected it is re-resolved against the new root; if it is not
// a descendant the target is dropped and the error returned.
func (s *Session) SetRoot(root *scene.Transform) error {
	s.mu.Lock()

	s.root = root
	s.preview = root.Clone()

	var err error

	switch {
	case root == nil:
		s.clearTargetLocked()
	case s.target != nil:
		if err = s.retargetLocked(s.target); err != nil {
			s.clearTargetLocked()
		}
	}

	s.logger.Debug("animation root changed", slog.String("root", root.Name()))

	v := s.refreshLocked()
	s.mu.Unlock()
	s.notify(v)

	return err
}

// SetTarget selects the node whose skinned mesh is edited. The registry is
// cleared and rebuilt from the mesh's blend shapes. A nil target clears the
// registry. The target must be the root or one of its descendants; otherwise
// scene.ErrInvalidHierarchy is returned and the previous state is dropped.
func (s *Session) SetTarget(target *scene.Transform) error {
	s.mu.Lock()

	var err error
	if target == nil {
		s.clearTargetLocked()
	} else if err = s.retargetLocked(target); err != nil {
		s.clearTargetLocked()
	}

	v := s.refreshLocked()
	s.mu.Unlock()
	s.notify(v)

	return err
}

// SetTargetPath selects the target by its address below the root.
func (s *Session) SetTargetPath(path string) error {
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()

	if root == nil {
		return ErrNoTarget
	}

	t, err := scene.Find(root, path)
	if err != nil {
		return err
	}

	return s.SetTarget(t)
}

// SetSearch sets the keyword for the filtered view.
func (s *Session) SetSearch(keyword string) {
	s.mutate(func() { s.primary = keyword })
}

// SetTargetSearch sets the keyword for the targeted view.
func (s *Session) SetTargetSearch(keyword string) {
	s.mutate(func() { s.secondary = keyword })
}

// SetWeight sets a parameter's weight, which also selects it. Unknown names
// return blendshape.ErrNotFound and change nothing.
func (s *Session) SetWeight(name string, weight float64) error {
	return s.mutateErr(func() error { return s.reg.SetWeight(name, weight) })
}

// SetSelected toggles a parameter's selection without altering its weight.
func (s *Session) SetSelected(name string, selected bool) error {
	return s.mutateErr(func() error { return s.reg.SetSelected(name, selected) })
}

// ResetAll restores every default weight and clears all selections.
func (s *Session) ResetAll() {
	s.mutate(s.reg.ResetAll)
}

// LoadClip resets the registry and applies the clip's bindings addressed at
// the current target. A nil clip is ignored.
func (s *Session) LoadClip(clip *curve.Clip) (curve.DecodeResult, error) {
	if clip == nil {
		return curve.DecodeResult{}, nil
	}

	s.mu.Lock()

	if s.target == nil {
		s.mu.Unlock()
		return curve.DecodeResult{}, ErrNoTarget
	}

	s.reg.ResetAll()
	res := curve.Decode(clip.Bindings, s.targetPath, s.reg, curve.WithLogger(s.logger))

	s.logger.Debug("clip loaded",
		slog.String("clip", clip.Name),
		slog.String("path", s.targetPath),
		slog.Int("applied", len(res.Applied)),
		slog.Int("ignored", res.Ignored),
		slog.Int("emptyCurves", len(res.EmptyCurves)),
	)

	v := s.refreshLocked()
	s.mu.Unlock()
	s.notify(v)

	return res, nil
}

// SaveClip overwrites dst's bindings and settings with the selected
// parameters addressed at the current target.
func (s *Session) SaveClip(dst *curve.Clip) error {
	if dst == nil {
		return fmt.Errorf("saving clip: nil destination")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.target == nil {
		return ErrNoTarget
	}

	// Re-derive the address at save time so a stale cache cannot leak in.
	path, err := scene.RelativePath(s.root, s.target)
	if err != nil {
		return fmt.Errorf("saving clip: %w", err)
	}

	curve.EncodeInto(dst, s.reg, path)

	s.logger.Debug("clip encoded",
		slog.String("clip", dst.Name),
		slog.String("path", path),
		slog.Int("bindings", len(dst.Bindings)),
	)

	return nil
}

// Views returns the most recently derived views.
func (s *Session) Views() filter.Views {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.views
}

// Params returns a snapshot of every parameter in registry order.
func (s *Session) Params() []blendshape.Parameter {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reg.Params()
}

// TargetPath returns the target's address below the root. ok is false when
// no target is selected.
func (s *Session) TargetPath() (path string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.targetPath, s.target != nil
}

// Preview returns the preview copy of the root hierarchy, or nil.
func (s *Session) Preview() *scene.Transform {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.preview
}

// PreviewRenderer returns the renderer weights are projected onto, or nil
// when the target could not be located in the preview.
func (s *Session) PreviewRenderer() mesh.Renderer {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.previewR
}

func (s *Session) retargetLocked(target *scene.Transform) error {
	if s.root == nil {
		return ErrNoTarget
	}

	path, err := scene.RelativePath(s.root, target)
	if err != nil {
		return err
	}

	src := target.Mesh()
	if src == nil {
		return fmt.Errorf("%q has no skinned mesh: %w", target.Name(), ErrNoTarget)
	}

	s.target = target
	s.targetPath = path
	s.previewR = nil

	if pv, findErr := scene.Find(s.preview, path); findErr != nil {
		s.logger.Warn("target not found in preview", slog.String("path", path), slog.String("error", findErr.Error()))
	} else if m := pv.Mesh(); m != nil {
		s.previewR = m
	}

	s.reg.Clear()
	s.reg.RebuildFrom(src)

	if n := src.BlendShapeCount(); n != s.reg.Len() {
		s.logger.Warn("mesh has duplicate blend-shape names; weights may project onto the wrong shapes",
			slog.String("path", path),
			slog.Int("meshBlendShapes", n),
			slog.Any("parameters", s.reg.Names()),
		)
	}

	s.logger.Debug("target mesh changed",
		slog.String("path", path),
		slog.Int("blendShapes", s.reg.Len()),
	)

	return nil
}

func (s *Session) clearTargetLocked() {
	s.target = nil
	s.targetPath = ""
	s.previewR = nil
	s.reg.Clear()
}

func (s *Session) refreshLocked() filter.Views {
	s.views = filter.Apply(s.reg, s.primary, s.secondary)
	projector.Project(s.reg, s.previewR)

	return s.views
}

func (s *Session) mutate(fn func()) {
	s.mu.Lock()
	fn()
	v := s.refreshLocked()
	s.mu.Unlock()
	s.notify(v)
}

func (s *Session) mutateErr(fn func() error) error {
	s.mu.Lock()

	if err := fn(); err != nil {
		s.mu.Unlock()
		s.logger.Debug("edit ignored", slog.String("error", err.Error()))

		return err
	}

	v := s.refreshLocked()
	s.mu.Unlock()
	s.notify(v)

	return nil
}

func (s *Session) notify(v filter.Views) {
	if s.onChange != nil {
		s.onChange(v)
	}
}
