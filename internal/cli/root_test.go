package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand is a test helper that runs the CLI with the given args and
// captures both stdout and stderr.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

// requireExitCode asserts that err is an *ExitError with the given code.
func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()

	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code, "error: %v", err)
}

const avatarRig = `name: Avatar
children:
  - name: Armature
    children:
      - name: Hips
  - name: Body
    blendShapes:
      - name: MOUTH_Smile
        weight: 0
      - name: EYE_Blink_L
        weight: 25
      - name: EYE_Blink_R
        weight: 25
      - name: MOUTH_Frown
        weight: 0
`

// writeFixture writes content to name inside a fresh temp dir.
func writeFixture(t *testing.T, name, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

// ---------------------------------------------------------------------------
// Help output
// ---------------------------------------------------------------------------

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	require.NoError(t, err)

	for _, sub := range []string{"inspect", "edit", "diff", "watch", "version", "completion"} {
		assert.Contains(t, stdout, sub, "help should mention %q subcommand", sub)
	}

	for _, flag := range []string{"--config", "--log-level", "--log-format", "--no-color", "--quiet"} {
		assert.Contains(t, stdout, flag, "help should mention %q flag", flag)
	}
}

// ---------------------------------------------------------------------------
// Unknown flags → exit code 2
// ---------------------------------------------------------------------------

func TestRootCommand_UnknownFlag(t *testing.T) {
	_, _, err := executeCommand("--nonexistent")
	requireExitCode(t, err, 2)
}

func TestRootCommand_SilenceErrors(t *testing.T) {
	_, stderr, err := executeCommand("--nonexistent")
	require.Error(t, err)
	assert.Empty(t, stderr, "cobra should not print errors to stderr (SilenceErrors)")
}

// ---------------------------------------------------------------------------
// Config errors → exit code 2
// ---------------------------------------------------------------------------

func TestRootCommand_InvalidConfig(t *testing.T) {
	_, _, err := executeCommand("--config", "/nonexistent/path.yaml", "inspect", "rig.yaml")
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	_, _, err := executeCommand("--log-level", "trace", "inspect", "rig.yaml")
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRootCommand_InvalidLogFormat(t *testing.T) {
	_, _, err := executeCommand("--log-format", "xml", "inspect", "rig.yaml")
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestRootCommand_InvalidClipFormat(t *testing.T) {
	rig := writeFixture(t, "avatar.yaml", avatarRig)

	_, _, err := executeCommand("edit", rig, "--target", "Body", "--clip-format", "fbx")
	requireExitCode(t, err, 2)
	assert.Contains(t, err.Error(), "invalid clip format")
}

// ---------------------------------------------------------------------------
// execute
// ---------------------------------------------------------------------------

func TestExecute_PrintsErrorAndReturnsCode(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"inspect", "/nonexistent/rig-12345.yaml"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	var stderr bytes.Buffer
	code := execute(cmd, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: reading rig file")
}

func TestExecute_Success(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	var stderr bytes.Buffer
	assert.Equal(t, 0, execute(cmd, &stderr))
	assert.Empty(t, stderr.String())
}

func TestExecute_UsageCode(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--bogus"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	assert.Equal(t, 2, execute(cmd, new(bytes.Buffer)))
}

// ---------------------------------------------------------------------------
// ExitError
// ---------------------------------------------------------------------------

func TestExitError_ErrorWithMessage(t *testing.T) {
	err := &ExitError{Code: 1, Err: assert.AnError}
	assert.Contains(t, err.Error(), assert.AnError.Error())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestExitError_ErrorWithoutMessage(t *testing.T) {
	err := &ExitError{Code: 42}
	assert.Equal(t, "exit code 42", err.Error())
	assert.Nil(t, err.Unwrap())
}

// ---------------------------------------------------------------------------
// completion
// ---------------------------------------------------------------------------

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := executeCommand("completion", shell)
			require.NoError(t, err)
			assert.Contains(t, stdout, "blendkey")
		})
	}
}

func TestCompletionCommand_InvalidShell(t *testing.T) {
	_, _, err := executeCommand("completion", "tcsh")
	require.Error(t, err)
}

func TestCompleteTargets(t *testing.T) {
	rig := writeFixture(t, "avatar.yaml", avatarRig)

	got, directive := completeTargets(newEditCommand(), []string{rig}, "")
	assert.Equal(t, []string{"Body\t4 blend shapes"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	got, _ = completeTargets(newEditCommand(), []string{rig}, "Arm")
	assert.Empty(t, got)

	_, directive = completeTargets(newEditCommand(), []string{"/nonexistent/rig.yaml"}, "")
	assert.Equal(t, cobra.ShellCompDirectiveError, directive)
}

func TestCompleteShapeNames(t *testing.T) {
	rig := writeFixture(t, "avatar.yaml", avatarRig)

	cmd := newEditCommand()
	require.NoError(t, cmd.Flags().Set("target", "Body"))

	got, directive := completeShapeNames("=")(cmd, []string{rig}, "eye")
	assert.Equal(t, []string{"EYE_Blink_L=", "EYE_Blink_R="}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp|cobra.ShellCompDirectiveNoSpace, directive)

	got, directive = completeShapeNames("")(cmd, []string{rig}, "MOUTH_F")
	assert.Equal(t, []string{"MOUTH_Frown"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	// The rig root has no mesh.
	got, _ = completeShapeNames("")(newEditCommand(), []string{rig}, "")
	assert.Empty(t, got)
}

func TestCompleteRigArg(t *testing.T) {
	exts, directive := completeRigArg(nil, nil, "")
	assert.Equal(t, []string{"yaml", "yml"}, exts)
	assert.Equal(t, cobra.ShellCompDirectiveFilterFileExt, directive)

	_, directive = completeRigArg(nil, []string{"rig.yaml"}, "")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}
