package api

import "time"

type StageStatus string

const (
	StageOk      StageStatus = "ok"
	StageSkipped StageStatus = "skipped"
	StageFailed  StageStatus = "failed"
)

// StageResult is the outcome of one pipeline stage. A failed stage never
// aborts the pipeline; the result is recorded and the run continues.
type StageResult struct {
	Index int    `json:"index"`
	Name  string `json:"name"`

	Status StageStatus `json:"status"`

	// Reason explains a skip; Error carries a failure message.
	Reason *string `json:"reason,omitempty"`
	Error  *string `json:"error,omitempty"`

	// FreedBytes is before - after for the stage, uncapped. It may be
	// negative when the process grew during the measurement window.
	FreedBytes int64 `json:"freed_bytes"`

	DurationMs int64 `json:"duration_ms"`
}

// Summary aggregates the before/after measurements of a whole run.
type Summary struct {
	ProcessRAMFreed  int64 `json:"process_ram_freed"`
	SystemRAMFreed   int64 `json:"system_ram_freed"`
	AcceleratorFreed int64 `json:"accelerator_freed"`
	ElapsedMs        int64 `json:"elapsed_ms"`
}

// Report is the only artifact a pipeline run surfaces to its caller. Each
// run owns its report exclusively; reports are never shared across runs.
type Report struct {
	RunUuid string `json:"run_uuid"`

	Stages  []StageResult `json:"stages"`
	Summary Summary       `json:"summary"`

	StartTime  string `json:"start_time"`
	FinishTime string `json:"finish_time"`

	SystemInfo *string `json:"system_info,omitempty"`
}

// Stage indices of the fixed pipeline order.
const (
	StageModelUnload    = 0
	StageCollectorPass  = 1
	StageCacheClear     = 2
	StageOSTrim         = 3
	StageAcceleratorSyn = 4
	StageFinalCollector = 5
	StageStandbyPurge   = 6
)

// StageNames maps stage indices to their report names.
var StageNames = [...]string{
	StageModelUnload:    "model_unload",
	StageCollectorPass:  "collector_pass",
	StageCacheClear:     "cache_clear",
	StageOSTrim:         "os_trim",
	StageAcceleratorSyn: "accelerator_sync",
	StageFinalCollector: "final_collector",
	StageStandbyPurge:   "standby_purge",
}

func (r *Report) Stage(index int) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Index == index {
			return &r.Stages[i]
		}
	}
	return nil
}

// Elapsed returns the total run duration.
func (s Summary) Elapsed() time.Duration {
	return time.Duration(s.ElapsedMs) * time.Millisecond
}
