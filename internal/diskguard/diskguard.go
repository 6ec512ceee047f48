// Package diskguard gates the OS trim behind a free-space check on the
// system volume. Trimming pushes pages into the pagefile, which can grow
// the file backing it; on a nearly-full system drive that is worse than
// keeping the memory resident.
package diskguard

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/disk"
)

// Status is the point-in-time result of one free-space check.
type Status struct {
	Drive          string `json:"drive"`
	FreeBytes      int64  `json:"free_bytes"`
	ThresholdBytes int64  `json:"threshold_bytes"`

	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Guard checks free space on a volume. The zero value checks the system
// drive with gopsutil; tests inject a fake usage func.
type Guard struct {
	// UsageFunc overrides the free-space source. Nil means disk.Usage.
	UsageFunc func(path string) (free int64, err error)
}

// SystemDrive returns the volume whose exhaustion would break the
// pagefile: C:\ on Windows, the root filesystem elsewhere.
func SystemDrive() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}

// Check reads current free space on the drive at call time; nothing is
// cached. The check is advisory and deliberately non-atomic with respect
// to the trim that may follow: free space can change in between, and the
// guard only exists to avoid foreseeable pagefile-driven exhaustion, not
// to give a hard guarantee.
func (g Guard) Check(drive string, thresholdBytes int64) Status {
	status := Status{Drive: drive, ThresholdBytes: thresholdBytes}

	free, err := g.freeBytes(drive)
	if err != nil {
		// An unreadable volume must not block reclamation.
		status.Allowed = true
		status.FreeBytes = -1
		status.Reason = fmt.Sprintf("free space unknown (%v), allowing trim", err)
		return status
	}

	status.FreeBytes = free
	if free < thresholdBytes {
		status.Allowed = false
		status.Reason = fmt.Sprintf("free space %d B below threshold %d B, avoiding pagefile growth",
			free, thresholdBytes)
		return status
	}

	status.Allowed = true
	return status
}

func (g Guard) freeBytes(drive string) (int64, error) {
	if g.UsageFunc != nil {
		return g.UsageFunc(drive)
	}
	usage, err := disk.Usage(drive)
	if err != nil {
		return 0, err
	}
	return int64(usage.Free), nil
}
