package editor

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blendkey/internal/blendshape"
	"github.com/hupe1980/blendkey/internal/curve"
	"github.com/hupe1980/blendkey/internal/filter"
	"github.com/hupe1980/blendkey/internal/mesh"
	"github.com/hupe1980/blendkey/internal/scene"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newAvatar returns Avatar{Body(mesh: Smile=0, Blink=10, Wide_Smile=20){Face}}.
func newAvatar() (root, body *scene.Transform) {
	root = scene.NewTransform("Avatar")
	body = root.NewChild("Body")
	body.SetMesh(mesh.New(
		mesh.BlendShape{Name: "Smile", Weight: 0},
		mesh.BlendShape{Name: "Blink", Weight: 10},
		mesh.BlendShape{Name: "Wide_Smile", Weight: 20},
	))
	body.NewChild("Face")

	return root, body
}

func newSession(t *testing.T, opts ...Option) (*Session, *scene.Transform, *scene.Transform) {
	t.Helper()

	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	s := New(opts...)
	root, body := newAvatar()

	require.NoError(t, s.SetRoot(root))
	require.NoError(t, s.SetTarget(body))

	return s, root, body
}

func paramNames(ps []blendshape.Parameter) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}

	return out
}

// ---------------------------------------------------------------------------
// Root / target lifecycle
// ---------------------------------------------------------------------------

func TestSetTarget_RebuildsRegistry(t *testing.T) {
	s, _, _ := newSession(t)

	path, ok := s.TargetPath()
	require.True(t, ok)
	assert.Equal(t, "Body", path)

	assert.Equal(t, []string{"Smile", "Blink", "Wide_Smile"}, paramNames(s.Params()))
	assert.Equal(t, []string{"Smile", "Blink", "Wide_Smile"}, paramNames(s.Views().Filtered))
	assert.Empty(t, s.Views().Targeted)
}

func TestSetTarget_ProjectsOntoPreviewOnly(t *testing.T) {
	s, _, body := newSession(t)

	require.NoError(t, s.SetWeight("Smile", 75))

	pr := s.PreviewRenderer()
	require.NotNil(t, pr)
	assert.InDelta(t, 75.0, pr.BlendShapeWeight(0), 1e-9)
	assert.InDelta(t, 0.0, body.Mesh().BlendShapeWeight(0), 1e-9, "source mesh untouched")
}

func TestSetTarget_InvalidHierarchy(t *testing.T) {
	s, _, _ := newSession(t)
	other := scene.NewTransform("Other")
	other.SetMesh(mesh.New(mesh.BlendShape{Name: "X"}))

	err := s.SetTarget(other)
	require.ErrorIs(t, err, scene.ErrInvalidHierarchy)

	_, ok := s.TargetPath()
	assert.False(t, ok)
	assert.Empty(t, s.Params())
}

func TestSetTarget_NoMesh(t *testing.T) {
	s, root, _ := newSession(t)

	face, err := scene.Find(root, "Body/Face")
	require.NoError(t, err)

	require.ErrorIs(t, s.SetTarget(face), ErrNoTarget)
	assert.Empty(t, s.Params())
}

func TestSetTarget_WithoutRoot(t *testing.T) {
	s := New()
	_, body := newAvatar()

	require.ErrorIs(t, s.SetTarget(body), ErrNoTarget)
}

func TestSetTarget_Nil(t *testing.T) {
	s, _, _ := newSession(t)

	require.NoError(t, s.SetTarget(nil))

	assert.Empty(t, s.Params())
	assert.Nil(t, s.PreviewRenderer())
}

func TestSetTarget_WarnsOnDuplicateShapeNames(t *testing.T) {
	var buf bytes.Buffer

	s := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	root := scene.NewTransform("Avatar")
	body := root.NewChild("Body")
	body.SetMesh(mesh.New(
		mesh.BlendShape{Name: "Smile"},
		mesh.BlendShape{Name: "Blink"},
		mesh.BlendShape{Name: "Smile"},
	))

	require.NoError(t, s.SetRoot(root))
	require.NoError(t, s.SetTarget(body))

	assert.Equal(t, []string{"Smile", "Blink"}, paramNames(s.Params()))
	assert.Contains(t, buf.String(), "duplicate blend-shape names")
	assert.Contains(t, buf.String(), "meshBlendShapes=3")
}

func TestSetTargetPath(t *testing.T) {
	s := New()
	root, _ := newAvatar()
	require.NoError(t, s.SetRoot(root))

	require.NoError(t, s.SetTargetPath("Body"))
	assert.Len(t, s.Params(), 3)

	require.ErrorIs(t, s.SetTargetPath("Head"), scene.ErrNotFound)
	require.ErrorIs(t, New().SetTargetPath("Body"), ErrNoTarget)
}

func TestSetRoot_NilClearsEverything(t *testing.T) {
	s, _, _ := newSession(t)
	require.NoError(t, s.SetWeight("Smile", 10))

	require.NoError(t, s.SetRoot(nil))

	assert.Nil(t, s.Preview())
	assert.Empty(t, s.Params())
	assert.Empty(t, s.Views().Filtered)
	assert.Empty(t, s.Views().Targeted)
}

func TestSetRoot_UnrelatedRootDropsTarget(t *testing.T) {
	s, _, _ := newSession(t)
	other, _ := newAvatar()

	err := s.SetRoot(other)
	require.ErrorIs(t, err, scene.ErrInvalidHierarchy)

	_, ok := s.TargetPath()
	assert.False(t, ok)
	assert.NotNil(t, s.Preview())
}

func TestSetRoot_AncestorKeepsTarget(t *testing.T) {
	s := New()
	stage := scene.NewTransform("Stage")
	root, body := newAvatar()
	stage.AddChild(root)

	require.NoError(t, s.SetRoot(root))
	require.NoError(t, s.SetTarget(body))
	require.NoError(t, s.SetWeight("Blink", 50))

	require.NoError(t, s.SetRoot(stage))

	path, ok := s.TargetPath()
	require.True(t, ok)
	assert.Equal(t, "Avatar/Body", path)

	p := s.Params()
	require.Len(t, p, 3)
	assert.False(t, p[1].Selected, "registry is rebuilt on root change")
}

// ---------------------------------------------------------------------------
// Editing
// ---------------------------------------------------------------------------

func TestSetWeight_SelectsAndProjects(t *testing.T) {
	s, _, _ := newSession(t)

	require.NoError(t, s.SetWeight("Wide_Smile", 90))

	assert.Equal(t, []string{"Wide_Smile"}, paramNames(s.Views().Targeted))
	assert.InDelta(t, 90.0, s.PreviewRenderer().BlendShapeWeight(2), 1e-9)
}

func TestSetSelected_ProjectsDefaultWhenOff(t *testing.T) {
	s, _, _ := newSession(t)
	require.NoError(t, s.SetWeight("Blink", 70))

	require.NoError(t, s.SetSelected("Blink", false))

	assert.InDelta(t, 10.0, s.PreviewRenderer().BlendShapeWeight(1), 1e-9)

	p := s.Params()[1]
	assert.InDelta(t, 70.0, p.Weight, 1e-9)
	assert.False(t, p.Selected)
}

func TestSetWeight_UnknownIsNoop(t *testing.T) {
	var calls int
	s, _, _ := newSession(t, WithOnChange(func(filter.Views) { calls++ }))
	calls = 0

	require.ErrorIs(t, s.SetWeight("Nope", 1), blendshape.ErrNotFound)
	assert.Zero(t, calls)
}

func TestSearch(t *testing.T) {
	s, _, _ := newSession(t)
	require.NoError(t, s.SetSelected("Smile", true))
	require.NoError(t, s.SetSelected("Wide_Smile", true))

	s.SetSearch("SMILE")
	assert.Equal(t, []string{"Smile", "Wide_Smile"}, paramNames(s.Views().Filtered))

	s.SetTargetSearch("wide")
	assert.Equal(t, []string{"Wide_Smile"}, paramNames(s.Views().Targeted))

	s.SetSearch("")
	assert.Len(t, s.Views().Filtered, 3)
}

func TestResetAll(t *testing.T) {
	s, _, _ := newSession(t)
	require.NoError(t, s.SetWeight("Smile", 40))
	require.NoError(t, s.SetWeight("Blink", 40))

	s.ResetAll()

	for _, p := range s.Params() {
		assert.False(t, p.Selected)
		assert.InDelta(t, p.DefaultWeight, p.Weight, 1e-9)
	}

	assert.InDelta(t, 10.0, s.PreviewRenderer().BlendShapeWeight(1), 1e-9)
}

func TestOnChange_FiresAfterEveryMutation(t *testing.T) {
	var got []filter.Views

	s, _, _ := newSession(t, WithOnChange(func(v filter.Views) { got = append(got, v) }))
	got = nil

	require.NoError(t, s.SetWeight("Smile", 1))
	s.SetSearch("b")
	s.ResetAll()

	require.Len(t, got, 3)
	assert.Equal(t, []string{"Smile"}, paramNames(got[0].Targeted))
	assert.Equal(t, []string{"Blink"}, paramNames(got[1].Filtered))
	assert.Empty(t, got[2].Targeted)
}

func TestOnChange_MayReenter(t *testing.T) {
	var s *Session

	s = New(WithOnChange(func(filter.Views) { _ = s.Views() }))
	root, body := newAvatar()

	assert.NotPanics(t, func() {
		require.NoError(t, s.SetRoot(root))
		require.NoError(t, s.SetTarget(body))
	})
}

// ---------------------------------------------------------------------------
// Clips
// ---------------------------------------------------------------------------

func TestSaveAndLoadClip(t *testing.T) {
	s, _, _ := newSession(t)
	require.NoError(t, s.SetWeight("Smile", 0.5))

	clip := &curve.Clip{Name: "Happy"}
	require.NoError(t, s.SaveClip(clip))

	require.Len(t, clip.Bindings, 1)
	assert.Equal(t, "Body", clip.Bindings[0].Path)
	assert.True(t, clip.Settings.LoopTime)

	// A second session loads it on top of unrelated edits; the load resets.
	s2, _, _ := newSession(t)
	require.NoError(t, s2.SetWeight("Blink", 99))

	res, err := s2.LoadClip(clip)
	require.NoError(t, err)
	assert.Equal(t, []string{"Smile"}, res.Applied)

	params := s2.Params()
	assert.True(t, params[0].Selected)
	assert.InDelta(t, 0.5, params[0].Weight, 1e-12)
	assert.False(t, params[1].Selected)
	assert.InDelta(t, 10.0, params[1].Weight, 1e-9)

	assert.InDelta(t, 0.5, s2.PreviewRenderer().BlendShapeWeight(0), 1e-12)
}

func TestLoadClip_IgnoresOtherPaths(t *testing.T) {
	s, _, _ := newSession(t)

	clip := &curve.Clip{Bindings: []curve.Binding{{
		Path:     "Body/Face",
		Type:     curve.RendererType,
		Property: "blendShape.Smile",
		Curve:    curve.NewCurve(curve.Keyframe{Value: 30}),
	}}}

	res, err := s.LoadClip(clip)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ignored)
	assert.Empty(t, s.Views().Targeted)
}

func TestClipOps_RequireTarget(t *testing.T) {
	s := New()

	_, err := s.LoadClip(&curve.Clip{})
	require.ErrorIs(t, err, ErrNoTarget)

	require.ErrorIs(t, s.SaveClip(&curve.Clip{}), ErrNoTarget)

	res, err := s.LoadClip(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Applied)

	require.Error(t, s.SaveClip(nil))
}

func TestPreviewMissingTarget(t *testing.T) {
	// A preview that lost the target still edits the registry without
	// projecting anywhere.
	s, _, _ := newSession(t)

	s.mu.Lock()
	s.previewR = nil
	s.mu.Unlock()

	require.NoError(t, s.SetWeight("Smile", 5))
	assert.Nil(t, s.PreviewRenderer())
	assert.Len(t, s.Views().Targeted, 1)
}
