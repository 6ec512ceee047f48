package diskguard_test

import (
	"errors"
	"testing"

	"github.com/genpipe/memtrim/internal/diskguard"
	"github.com/stretchr/testify/assert"
)

const gb = int64(1 << 30)

func fixedFree(free int64) func(string) (int64, error) {
	return func(string) (int64, error) { return free, nil }
}

func TestCheckAllowsWhenFreeAboveThreshold(t *testing.T) {
	guard := diskguard.Guard{UsageFunc: fixedFree(100 * gb)}

	status := guard.Check(`C:\`, 20*gb)

	assert.True(t, status.Allowed)
	assert.Equal(t, 100*gb, status.FreeBytes)
	assert.Empty(t, status.Reason)
}

func TestCheckAllowsAtExactThreshold(t *testing.T) {
	guard := diskguard.Guard{UsageFunc: fixedFree(20 * gb)}

	status := guard.Check(`C:\`, 20*gb)
	assert.True(t, status.Allowed)
}

func TestCheckDeniesWhenFreeBelowThreshold(t *testing.T) {
	guard := diskguard.Guard{UsageFunc: fixedFree(15 * gb)}

	status := guard.Check(`C:\`, 60*gb)

	assert.False(t, status.Allowed)
	assert.Contains(t, status.Reason, "below threshold")
	assert.Equal(t, 15*gb, status.FreeBytes)
	assert.Equal(t, 60*gb, status.ThresholdBytes)
}

func TestCheckAllowsWhenVolumeUnreadable(t *testing.T) {
	guard := diskguard.Guard{UsageFunc: func(string) (int64, error) {
		return 0, errors.New("volume not mounted")
	}}

	status := guard.Check("/mnt/missing", 20*gb)

	// An unmeasurable volume must not block reclamation.
	assert.True(t, status.Allowed)
	assert.Contains(t, status.Reason, "unknown")
}

func TestSystemDrive(t *testing.T) {
	drive := diskguard.SystemDrive()
	assert.NotEmpty(t, drive)
}
