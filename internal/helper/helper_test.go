package helper_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/genpipe/memtrim/internal/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript drops an executable shell script standing in for the helper
// binary. Script-based fakes do not work on Windows, so these tests run on
// the other platforms only.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake helper scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "trimhelper")
	script := "#!/bin/sh\n" + body
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestTrimRemoteParsesHelperOutput(t *testing.T) {
	path := writeScript(t, `
echo "open : ok"
echo "trimCall1 : ok"
echo "trimCall2 : ok"
echo "workingSetBefore : 48318382080"
echo "workingSetAfter : 3113851289"
echo "freed : 45204530791"
`)

	runner := helper.Runner{Path: path}
	outcome, err := runner.TrimRemote(context.Background(), 1234, 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "ok", outcome.OpenStep)
	assert.Equal(t, int64(48318382080), outcome.WorkingSetBefore)
	assert.Equal(t, int64(45204530791), outcome.Freed)
}

func TestTrimRemoteReportsNonzeroExit(t *testing.T) {
	path := writeScript(t, `
echo "open failed" >&2
exit 3
`)

	runner := helper.Runner{Path: path}
	_, err := runner.TrimRemote(context.Background(), 1234, 5*time.Second)

	var exitErr *helper.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Contains(t, exitErr.Stderr, "open failed")
}

func TestTrimRemoteKillsHelperOnTimeout(t *testing.T) {
	path := writeScript(t, "sleep 30\n")

	runner := helper.Runner{Path: path}
	start := time.Now()
	_, err := runner.TrimRemote(context.Background(), 1234, 200*time.Millisecond)

	require.ErrorIs(t, err, helper.ErrTimeout)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestTrimRemoteRejectsUnparsableOutput(t *testing.T) {
	path := writeScript(t, `echo "hello, I am not a trim helper"`)

	runner := helper.Runner{Path: path}
	_, err := runner.TrimRemote(context.Background(), 1234, 5*time.Second)

	require.ErrorIs(t, err, helper.ErrParseFailed)
}

func TestTrimRemoteMissingBinary(t *testing.T) {
	runner := helper.Runner{Path: filepath.Join(t.TempDir(), "no-such-helper")}
	_, err := runner.TrimRemote(context.Background(), 1234, 5*time.Second)

	require.ErrorIs(t, err, helper.ErrSpawnFailed)
}

func TestLocatePrefersEnvOverride(t *testing.T) {
	t.Setenv(helper.HelperPathEnv, "/opt/memtrim/trimhelper")

	path, err := helper.Locate()
	require.NoError(t, err)
	assert.Equal(t, "/opt/memtrim/trimhelper", path)
}

func TestTrimRemotePassesPidFlag(t *testing.T) {
	path := writeScript(t, `
echo "open : pid $2"
echo "workingSetBefore : 1"
echo "workingSetAfter : 1"
echo "freed : 0"
[ "$1" = "--pid" ] || exit 1
`)

	runner := helper.Runner{Path: path}
	outcome, err := runner.TrimRemote(context.Background(), 4242, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "pid 4242", outcome.OpenStep)
}

func TestTrimRemotePassesAutoFlagForPidZero(t *testing.T) {
	path := writeScript(t, `
echo "workingSetBefore : 1"
echo "workingSetAfter : 1"
echo "freed : 0"
[ "$1" = "--auto" ] || exit 1
`)

	runner := helper.Runner{Path: path}
	_, err := runner.TrimRemote(context.Background(), 0, 5*time.Second)
	require.NoError(t, err)
}
