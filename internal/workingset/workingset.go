// Package workingset wraps the OS capability for shrinking a process's
// resident working set. The capability exists only on Windows; on other
// platforms every operation fails fast with ErrUnsupported so callers can
// degrade to a no-op instead of branching on OS names.
package workingset

import (
	"errors"
	"time"
)

var (
	// ErrUnsupported signals that the host OS has no working-set trim
	// capability at all.
	ErrUnsupported = errors.New("working set manipulation is not supported on this platform")

	// ErrDenied signals that the OS rejected the operation, typically
	// because a required privilege is missing. This is the designed
	// trigger for the external helper fallback.
	ErrDenied = errors.New("working set operation denied by the OS")
)

// SettleDelay is how long the OS is given to actually release pages
// between a trim call and the after-measurement.
const SettleDelay = 500 * time.Millisecond

// PurgeResult records the NTSTATUS of one standby-list purge command.
type PurgeResult struct {
	Command string `json:"command"`
	Status  uint32 `json:"status"`
}

func (r PurgeResult) Ok() bool { return r.Status == 0 }
