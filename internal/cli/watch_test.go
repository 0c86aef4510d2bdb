package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_NoArgs(t *testing.T) {
	_, _, err := executeCommand("watch")
	require.Error(t, err)
}

func TestWatch_MissingRig(t *testing.T) {
	_, _, err := executeCommand("watch", "/nonexistent/rig-12345.yaml")
	requireExitCode(t, err, 1)
	assert.Contains(t, err.Error(), "watching file")
}

func TestWatch_MissingClip(t *testing.T) {
	rig := writeFixture(t, "avatar.yaml", avatarRig)

	_, _, err := executeCommand("watch", rig, "--clip", "/nonexistent/clip-12345.yaml")
	requireExitCode(t, err, 1)
}
