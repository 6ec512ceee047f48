package sysinfo_test

import (
	"context"
	"sort"
	"testing"

	"github.com/genpipe/memtrim/internal/sysinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFmtGB(t *testing.T) {
	assert.Equal(t, "1.000 GB", sysinfo.FmtGB(1<<30))
	assert.Equal(t, "0.500 GB", sysinfo.FmtGB(1<<29))
	assert.Equal(t, "0.000 GB", sysinfo.FmtGB(0))
	assert.Equal(t, "-2.000 GB", sysinfo.FmtGB(-(2 << 30)))
}

func TestTakeReturnsPlausibleSnapshot(t *testing.T) {
	snap, err := sysinfo.Take()
	require.NoError(t, err)

	assert.Greater(t, snap.ProcessRSS, int64(0))
	assert.Greater(t, snap.SystemTotal, int64(0))
	assert.LessOrEqual(t, snap.SystemUsed, snap.SystemTotal)
	assert.GreaterOrEqual(t, snap.SystemPercent, 0.0)
	assert.LessOrEqual(t, snap.SystemPercent, 100.0)
}

func TestTakeForUnknownPid(t *testing.T) {
	_, err := sysinfo.TakeFor(-1)
	require.Error(t, err)
}

func TestTopConsumersBoundedAndSorted(t *testing.T) {
	rows, err := sysinfo.TopConsumers(context.Background(), 5)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(rows), 5)
	assert.True(t, sort.SliceIsSorted(rows, func(i, j int) bool {
		return rows[i].RSS > rows[j].RSS
	}))
	for _, row := range rows {
		assert.NotZero(t, row.Pid)
	}
}

func TestSystemInfoMentionsTotals(t *testing.T) {
	assert.Contains(t, sysinfo.SystemInfo(), "GB total")
}
