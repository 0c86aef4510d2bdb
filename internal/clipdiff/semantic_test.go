package clipdiff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/blendkey/internal/curve"
)

func held(path, name string, v float64) curve.Binding {
	return curve.Binding{
		Path:     path,
		Type:     curve.RendererType,
		Property: curve.PropertyName(name),
		Curve:    curve.NewCurve(curve.Keyframe{Value: v}, curve.Keyframe{Time: curve.KeyOffset, Value: v}),
	}
}

func TestBlendShapeChanges(t *testing.T) {
	oldClip := &curve.Clip{Bindings: []curve.Binding{
		held("Body", "Smile", 50),
		held("Body", "Blink", 10),
		held("Body", "Angry", 5),
	}}
	newClip := &curve.Clip{Bindings: []curve.Binding{
		held("Body", "Smile", 50),
		held("Body", "Blink", 20),
		held("Body", "Wink", 100),
	}}

	changes := BlendShapeChanges(oldClip, newClip)
	require.Len(t, changes, 3)

	assert.Equal(t, Removed, changes[0].Kind)
	assert.Equal(t, "Angry", changes[0].BlendShape)
	assert.Nil(t, changes[0].New)

	assert.Equal(t, Changed, changes[1].Kind)
	assert.Equal(t, "Blink", changes[1].BlendShape)
	assert.InDelta(t, 10.0, *changes[1].Old, 1e-9)
	assert.InDelta(t, 20.0, *changes[1].New, 1e-9)

	assert.Equal(t, Added, changes[2].Kind)
	assert.Equal(t, "Wink", changes[2].BlendShape)
}

func TestBlendShapeChanges_IgnoresOtherBindings(t *testing.T) {
	oldClip := &curve.Clip{Bindings: []curve.Binding{
		{Path: "Body", Type: "Transform", Property: "position.x", Curve: curve.NewCurve(curve.Keyframe{Value: 1})},
		{Path: "Body", Type: curve.RendererType, Property: "blendShape.Empty"},
	}}

	assert.Empty(t, BlendShapeChanges(oldClip, &curve.Clip{}))
}

func TestClips_OrderInsensitive(t *testing.T) {
	a := &curve.Clip{Bindings: []curve.Binding{held("Body", "A", 1), held("Body", "B", 2)}}
	b := &curve.Clip{Bindings: []curve.Binding{held("Body", "B", 2), held("Body", "A", 1)}}

	res, err := Clips(a, b, DefaultDiffOptions())
	require.NoError(t, err)
	assert.False(t, res.HasChanges())

	// The inputs are not reordered.
	assert.Equal(t, "blendShape.B", b.Bindings[0].Property)
}

func TestClips_DetectsChanges(t *testing.T) {
	a := &curve.Clip{Bindings: []curve.Binding{held("Body", "A", 1)}}
	b := &curve.Clip{
		Settings: curve.Settings{LoopTime: true, WrapMode: curve.WrapLoop},
		Bindings: []curve.Binding{held("Body", "A", 3)},
	}

	res, err := Clips(a, b, DefaultDiffOptions())
	require.NoError(t, err)

	assert.True(t, res.HasChanges())
	assert.True(t, res.HasDifferences)
	assert.True(t, res.SettingsChanged)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, Changed, res.Changes[0].Kind)
}

func TestClips_NilSides(t *testing.T) {
	res, err := Clips(nil, &curve.Clip{Bindings: []curve.Binding{held("", "A", 1)}}, DefaultDiffOptions())
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, Added, res.Changes[0].Kind)
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(&buf, []Change{
		{Kind: Added, Path: "", BlendShape: "Wink", New: ptr(100)},
		{Kind: Removed, Path: "Body", BlendShape: "Angry", Old: ptr(5)},
	})

	out := buf.String()
	assert.Contains(t, out, "CHANGE")
	assert.Contains(t, out, "(root)")
	assert.Contains(t, out, "Wink")
	assert.Contains(t, out, "100")

	buf.Reset()
	FormatTable(&buf, nil)
	assert.Contains(t, buf.String(), "No blend-shape changes.")
}
