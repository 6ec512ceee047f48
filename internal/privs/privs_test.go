package privs_test

import (
	"runtime"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/genpipe/memtrim/internal/privs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevateRecordsEveryRequestedName(t *testing.T) {
	names := privs.TrimNames()
	state := privs.Elevate(names)

	require.Len(t, state, names.Cardinality())
	for name := range names.Iter() {
		_, present := state[name]
		assert.True(t, present, "missing entry for %s", name)
	}
}

func TestElevateNeverGrantsOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("elevation outcome depends on the token on Windows")
	}

	state := privs.Elevate(mapset.NewSet(privs.IncreaseQuota, privs.Debug, privs.ProfileSingleProcess))

	assert.False(t, state.AnyGranted())
	assert.False(t, state.Granted(privs.Debug))
}

func TestStateString(t *testing.T) {
	state := privs.State{
		privs.Debug:         true,
		privs.IncreaseQuota: false,
	}

	assert.Equal(t, "SeDebugPrivilege=OK SeIncreaseQuotaPrivilege=NO", state.String())
}

func TestAnyGranted(t *testing.T) {
	assert.False(t, privs.State{}.AnyGranted())
	assert.False(t, privs.State{privs.Debug: false}.AnyGranted())
	assert.True(t, privs.State{privs.Debug: false, privs.IncreaseQuota: true}.AnyGranted())
}
