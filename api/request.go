package api

import "time"

// DefaultHelperTimeout bounds how long the orchestrator waits for the
// external trim helper before killing it.
const DefaultHelperTimeout = 60 * time.Second

// TrimRequest describes a single reclamation run. It is built once by the
// caller and consumed by exactly one pipeline run; it is never mutated.
type TrimRequest struct {
	RunUuid string `json:"run_uuid"`

	// TargetPid is the process whose working set the external helper should
	// trim. Zero asks the helper to auto-detect the worker process.
	TargetPid int32 `json:"target_pid"`

	// Aggressive gates the OS-level trim stage entirely. When false the
	// stage is skipped regardless of every other flag.
	Aggressive bool `json:"aggressive"`

	// UsePrivileges enables best-effort token privilege elevation before
	// the in-process trim attempt.
	UsePrivileges bool `json:"use_privileges"`

	// UseHelper enables the external helper fallback when the in-process
	// trim attempt fails or frees nothing.
	UseHelper bool `json:"use_helper"`

	// SkipIfDiskLow gates the trim stage behind a free-space check on the
	// system drive, to avoid foreseeable pagefile-driven disk exhaustion.
	SkipIfDiskLow bool `json:"skip_if_disk_low"`

	// PurgeStandby requests the optional system-wide standby list purge as
	// the final stage. Requires administrator rights to succeed.
	PurgeStandby bool `json:"purge_standby"`

	// MinDiskFreeBytes is the threshold for SkipIfDiskLow.
	MinDiskFreeBytes int64 `json:"min_disk_free_bytes"`

	// HelperTimeout bounds the external helper wait. Zero means
	// DefaultHelperTimeout.
	HelperTimeout time.Duration `json:"helper_timeout"`
}
