package clipdiff

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	smileDoc = "bindings:\n- path: Body\n  property: blendShape.Smile\n"
	frownDoc = "bindings:\n- path: Body\n  property: blendShape.Frown\n"
)

func TestComputeDiff_Identical(t *testing.T) {
	result, err := ComputeDiff(smileDoc, smileDoc, DefaultDiffOptions())
	require.NoError(t, err)
	assert.False(t, result.HasDifferences)
	assert.Empty(t, result.Hunks)
}

func TestComputeDiff_Different(t *testing.T) {
	result, err := ComputeDiff(smileDoc, frownDoc, DefaultDiffOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)
	require.Len(t, result.Hunks, 1)
	assert.Equal(t, 1, result.Hunks[0].OldStart)
	assert.Equal(t, 1, result.Hunks[0].NewStart)
	assert.True(t, strings.HasPrefix(result.Hunks[0].Body, "@@ "))
	assert.Equal(t, 1, result.Insertions)
	assert.Equal(t, 1, result.Deletions)
	assert.Contains(t, result.Unified, "-  property: blendShape.Smile")
	assert.Contains(t, result.Unified, "+  property: blendShape.Frown")
}

func TestParseHunkHeader(t *testing.T) {
	tests := []struct {
		line string
		want Hunk
	}{
		{"@@ -1,4 +1,5 @@", Hunk{OldStart: 1, OldLines: 4, NewStart: 1, NewLines: 5}},
		{"@@ -3 +3,2 @@", Hunk{OldStart: 3, OldLines: 1, NewStart: 3, NewLines: 2}},
		{"@@ -0,0 +1 @@", Hunk{OldStart: 0, OldLines: 0, NewStart: 1, NewLines: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, parseHunkHeader(tt.line))
		})
	}
}

func TestParseHunks_MultipleHunks(t *testing.T) {
	var oldDoc, newDoc strings.Builder

	for i := range 20 {
		line := fmt.Sprintf("line %d\n", i)
		oldDoc.WriteString(line)

		switch i {
		case 2, 17:
			newDoc.WriteString("changed\n")
		default:
			newDoc.WriteString(line)
		}
	}

	opts := DefaultDiffOptions()
	opts.Context = 1

	result, err := ComputeDiff(oldDoc.String(), newDoc.String(), opts)
	require.NoError(t, err)

	require.Len(t, result.Hunks, 2)
	assert.Equal(t, 2, result.Insertions)
	assert.Equal(t, 2, result.Deletions)
	assert.Less(t, result.Hunks[0].OldStart, result.Hunks[1].OldStart)
	assert.NotContains(t, result.Hunks[0].Body, "+++")
}

func TestComputeDiff_Labels(t *testing.T) {
	opts := DefaultDiffOptions()
	opts.OldLabel = "happy.yaml"
	opts.NewLabel = "sad.yaml"

	result, err := ComputeDiff(smileDoc, frownDoc, opts)
	require.NoError(t, err)
	assert.Contains(t, result.Unified, "happy.yaml")
	assert.Contains(t, result.Unified, "sad.yaml")
}

func TestComputeDiff_EmptySides(t *testing.T) {
	result, err := ComputeDiff("", smileDoc, DefaultDiffOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)

	result, err = ComputeDiff(smileDoc, "", DefaultDiffOptions())
	require.NoError(t, err)
	assert.True(t, result.HasDifferences)
}

func TestWriteDiff(t *testing.T) {
	result, err := ComputeDiff(smileDoc, frownDoc, DefaultDiffOptions())
	require.NoError(t, err)

	var plain bytes.Buffer
	WriteDiff(&plain, result, false)
	assert.NotContains(t, plain.String(), "\033[")
	assert.Contains(t, plain.String(), "+  property: blendShape.Frown")
	assert.Contains(t, plain.String(), "1 hunk(s), 1 insertion(s)(+), 1 deletion(s)(-)")

	var colored bytes.Buffer
	WriteDiff(&colored, result, true)
	assert.Contains(t, colored.String(), "\033[")
}

func TestWriteDiff_NoDifferences(t *testing.T) {
	result, err := ComputeDiff(smileDoc, smileDoc, DefaultDiffOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteDiff(&buf, result, false)
	assert.Contains(t, buf.String(), "No differences")
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a\n", "b\n", "c"}, splitLines("a\nb\nc"))
	assert.Equal(t, []string{"a\n", "b\n", "c\n", ""}, splitLines("a\nb\nc\n"))
	assert.Equal(t, []string{""}, splitLines(""))
}
