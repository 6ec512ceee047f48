// Package pipeline sequences the full reclamation run: collector passes,
// accelerator cache clears, the gated OS-level trim with its helper
// fallback, synchronization, and the optional standby-list purge. The
// pipeline is best-effort and always completes: no stage failure ever
// aborts it, and every run returns a full report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/genpipe/memtrim/api"
	"github.com/genpipe/memtrim/internal/diskguard"
	"github.com/genpipe/memtrim/internal/helper"
	"github.com/genpipe/memtrim/internal/privs"
	"github.com/genpipe/memtrim/internal/sysinfo"
	"github.com/genpipe/memtrim/internal/trimmer"
	"github.com/genpipe/memtrim/internal/workingset"
	"github.com/google/uuid"
)

const collectorPasses = 3

// DiskGuard gates the trim stage on free space.
type DiskGuard interface {
	Check(drive string, thresholdBytes int64) diskguard.Status
}

// HelperRunner is the out-of-process trim fallback.
type HelperRunner interface {
	TrimRemote(ctx context.Context, pid int32, timeout time.Duration) (api.HelperOutcome, error)
}

// Orchestrator runs the fixed reclamation pipeline. Every field has a
// production default set by New; tests swap in fakes.
type Orchestrator struct {
	Guard     DiskGuard
	Drive     string
	Elevate   func(names mapset.Set[privs.Name]) privs.State
	TrimSelf  func() (int64, error)
	Helper    HelperRunner
	Purge     func() ([]workingset.PurgeResult, error)
	Collector Collector
	Accel     Accelerator
	Snapshot  func() (sysinfo.Snapshot, error)
	Reporter  StageReporter
	Logger    *slog.Logger
}

// New builds an orchestrator wired to the real OS.
func New(logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		Guard:     diskguard.Guard{},
		Drive:     diskguard.SystemDrive(),
		Elevate:   privs.Elevate,
		TrimSelf:  trimmer.TrimSelf,
		Helper:    helper.Runner{},
		Purge:     workingset.PurgeStandbyLists,
		Collector: RuntimeCollector{},
		Accel:     NopAccelerator{},
		Snapshot:  sysinfo.Take,
		Reporter:  NopReporter{},
		Logger:    logger,
	}
}

// Run executes the pipeline for one request and returns its report. It
// never returns an error: failures are recorded per stage and the caller's
// workflow continues regardless.
func (o *Orchestrator) Run(ctx context.Context, req api.TrimRequest) *api.Report {
	runUuid := req.RunUuid
	if runUuid == "" {
		runUuid = uuid.NewString()
	}

	started := time.Now()
	report := &api.Report{
		RunUuid:   runUuid,
		StartTime: started.Format(time.RFC3339),
	}

	info := sysinfo.SystemInfo()
	report.SystemInfo = &info
	o.Reporter.StartRun(runUuid, info)

	before, beforeErr := o.Snapshot()
	if beforeErr != nil {
		o.Logger.Warn("failed to take before snapshot", "error", beforeErr)
	}

	var acceleratorFreed int64

	o.runStage(report, api.StageModelUnload, func() (stageOutcome, error) {
		return stageOutcome{}, o.Accel.UnloadModels(req.Aggressive)
	})

	o.runStage(report, api.StageCollectorPass, func() (stageOutcome, error) {
		for pass := 1; pass <= collectorPasses; pass++ {
			if err := o.Collector.Collect(); err != nil {
				return stageOutcome{}, fmt.Errorf("collector pass %d: %w", pass, err)
			}
		}
		return stageOutcome{}, nil
	})

	o.runStage(report, api.StageCacheClear, func() (stageOutcome, error) {
		freed, err := o.Accel.ClearCaches()
		acceleratorFreed = freed
		return stageOutcome{freed: freed}, err
	})

	o.runStage(report, api.StageOSTrim, func() (stageOutcome, error) {
		return o.runTrimStage(ctx, req)
	})

	o.runStage(report, api.StageAcceleratorSyn, func() (stageOutcome, error) {
		return stageOutcome{}, o.Accel.Synchronize(ctx)
	})

	o.runStage(report, api.StageFinalCollector, func() (stageOutcome, error) {
		return stageOutcome{}, o.Collector.Collect()
	})

	o.runStage(report, api.StageStandbyPurge, func() (stageOutcome, error) {
		if !req.PurgeStandby {
			return stageOutcome{skipReason: "standby purge not requested"}, nil
		}
		if req.UsePrivileges {
			state := o.Elevate(privs.PurgeNames())
			o.Logger.Info("purge privilege elevation attempted", "state", state.String())
		}
		results, err := o.Purge()
		if err != nil {
			return stageOutcome{}, err
		}
		for _, res := range results {
			o.Logger.Info("standby purge command finished",
				"command", res.Command, "status", fmt.Sprintf("0x%08X", res.Status))
			if !res.Ok() {
				err = fmt.Errorf("standby purge %s returned status 0x%08X (administrator rights required?)",
					res.Command, res.Status)
			}
		}
		return stageOutcome{}, err
	})

	after, afterErr := o.Snapshot()
	if afterErr != nil {
		o.Logger.Warn("failed to take after snapshot", "error", afterErr)
	}

	finished := time.Now()
	report.FinishTime = finished.Format(time.RFC3339)
	report.Summary = api.Summary{
		AcceleratorFreed: acceleratorFreed,
		ElapsedMs:        finished.Sub(started).Milliseconds(),
	}
	if beforeErr == nil && afterErr == nil {
		// Uncapped by design: a run may report negative savings when the
		// process grew during the window.
		report.Summary.ProcessRAMFreed = before.ProcessRSS - after.ProcessRSS
		report.Summary.SystemRAMFreed = before.SystemUsed - after.SystemUsed
	}

	o.Reporter.FinishRun(report)
	return report
}

// stageOutcome carries the per-stage metric and an optional skip reason
// out of a stage body. An error alongside means the stage failed.
type stageOutcome struct {
	freed      int64
	skipReason string
}

func (o *Orchestrator) runStage(report *api.Report, index int, body func() (stageOutcome, error)) {
	name := api.StageNames[index]
	o.Reporter.StartStage(index, name)
	o.Logger.Info("stage started", "stage", name)

	started := time.Now()
	outcome, err := body()

	result := api.StageResult{
		Index:      index,
		Name:       name,
		Status:     api.StageOk,
		FreedBytes: outcome.freed,
		DurationMs: time.Since(started).Milliseconds(),
	}
	switch {
	case err != nil:
		msg := err.Error()
		result.Status = api.StageFailed
		result.Error = &msg
		o.Logger.Warn("stage failed", "stage", name, "error", err)
	case outcome.skipReason != "":
		reason := outcome.skipReason
		result.Status = api.StageSkipped
		result.Reason = &reason
		o.Logger.Info("stage skipped", "stage", name, "reason", reason)
	default:
		o.Logger.Info("stage finished", "stage", name,
			"freed", sysinfo.FmtGB(outcome.freed), "duration", time.Since(started))
	}

	report.Stages = append(report.Stages, result)
	o.Reporter.FinishStage(result)
}

// runTrimStage walks the trim state machine: disk gate, best-effort
// privilege elevation, in-process attempt, then at most one helper
// attempt. Each sub-step's failure is terminal for this stage only.
func (o *Orchestrator) runTrimStage(ctx context.Context, req api.TrimRequest) (stageOutcome, error) {
	if !req.Aggressive {
		// Hard gate: with aggressive off no OS trim capability may be
		// invoked, whatever the other flags say.
		return stageOutcome{skipReason: "aggressive trim disabled by request"}, nil
	}

	if req.SkipIfDiskLow {
		status := o.Guard.Check(o.Drive, req.MinDiskFreeBytes)
		if !status.Allowed {
			return stageOutcome{skipReason: status.Reason}, nil
		}
		o.Logger.Info("disk guard passed", "drive", status.Drive,
			"free", sysinfo.FmtGB(status.FreeBytes), "threshold", sysinfo.FmtGB(status.ThresholdBytes))
	}

	var state privs.State
	if req.UsePrivileges {
		state = o.Elevate(privs.TrimNames())
		o.Logger.Info("privilege elevation attempted", "state", state.String())
	}

	freed, err := o.TrimSelf()
	if err == nil {
		o.Logger.Info("in-process trim succeeded", "freed", sysinfo.FmtGB(freed))
		return stageOutcome{freed: freed}, nil
	}
	o.Logger.Info("in-process trim failed", "error", err)

	if errors.Is(err, workingset.ErrUnsupported) {
		// The helper targets the same OS capability; spawning one on an
		// unsupporting platform cannot do better.
		return stageOutcome{}, err
	}
	if !req.UseHelper {
		return stageOutcome{}, o.withPrivilegeContext(err, state)
	}

	outcome, helperErr := o.Helper.TrimRemote(ctx, req.TargetPid, req.HelperTimeout)
	if helperErr != nil {
		return stageOutcome{}, o.withPrivilegeContext(
			fmt.Errorf("helper fallback after in-process failure (%v): %w", err, helperErr), state)
	}

	o.Logger.Info("helper trim succeeded",
		"before", sysinfo.FmtGB(outcome.WorkingSetBefore),
		"after", sysinfo.FmtGB(outcome.WorkingSetAfter),
		"freed", sysinfo.FmtGB(outcome.Freed))
	return stageOutcome{freed: outcome.Freed}, nil
}

// withPrivilegeContext appends the elevation outcome to a trim failure so
// a denied trim names the privileges that were missing.
func (o *Orchestrator) withPrivilegeContext(err error, state privs.State) error {
	if len(state) == 0 || state.AnyGranted() {
		return err
	}
	return fmt.Errorf("%w (no privileges granted: %s)", err, state.String())
}
