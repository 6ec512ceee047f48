// Package sysinfo reads process and system memory through gopsutil. It
// backs the read-only check command, the before/after snapshots of the
// reclamation pipeline, and the helper's target auto-detection.
package sysinfo

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot is a point-in-time view of process and system memory.
type Snapshot struct {
	ProcessRSS     int64   `json:"process_rss"`
	ProcessPercent float64 `json:"process_percent"`

	SystemTotal     int64   `json:"system_total"`
	SystemUsed      int64   `json:"system_used"`
	SystemAvailable int64   `json:"system_available"`
	SystemPercent   float64 `json:"system_percent"`
}

// Take snapshots the current process and system memory.
func Take() (Snapshot, error) {
	return TakeFor(int32(os.Getpid()))
}

// TakeFor snapshots the given process and system memory.
func TakeFor(pid int32) (Snapshot, error) {
	var snap Snapshot

	proc, err := process.NewProcess(pid)
	if err != nil {
		return snap, fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return snap, fmt.Errorf("failed to read process memory info: %w", err)
	}
	snap.ProcessRSS = int64(memInfo.RSS)

	if pct, err := proc.MemoryPercent(); err == nil {
		snap.ProcessPercent = float64(pct)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return snap, fmt.Errorf("failed to read system memory: %w", err)
	}
	snap.SystemTotal = int64(vm.Total)
	snap.SystemUsed = int64(vm.Used)
	snap.SystemAvailable = int64(vm.Available)
	snap.SystemPercent = vm.UsedPercent

	return snap, nil
}

// SystemInfo returns a one-line description of system memory for report
// headers.
func SystemInfo() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return "system memory: unknown"
	}
	return fmt.Sprintf("system memory: %s total, %s available",
		FmtGB(int64(vm.Total)), FmtGB(int64(vm.Available)))
}

// FmtGB renders a byte count as gigabytes with three decimals, the unit
// every report line uses.
func FmtGB(bytes int64) string {
	return fmt.Sprintf("%.3f GB", float64(bytes)/(1<<30))
}
