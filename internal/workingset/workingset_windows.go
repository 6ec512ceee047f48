//go:build windows

package workingset

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modpsapi = windows.NewLazySystemDLL("psapi.dll")
	modntdll = windows.NewLazySystemDLL("ntdll.dll")

	procEmptyWorkingSet        = modpsapi.NewProc("EmptyWorkingSet")
	procNtSetSystemInformation = modntdll.NewProc("NtSetSystemInformation")
)

// Supported reports whether the working-set trim capability exists here.
func Supported() bool { return true }

// Target is an open handle to a process whose working set can be measured
// and trimmed.
type Target struct {
	handle windows.Handle
	pid    int32
	self   bool
}

// Self targets the calling process via its pseudo-handle.
func Self() (*Target, error) {
	return &Target{handle: windows.CurrentProcess(), self: true}, nil
}

// Open targets an external process. The access mask is the minimum needed
// for measurement plus trim: query information and set quota.
func Open(pid int32) (*Target, error) {
	h, err := windows.OpenProcess(
		windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_SET_QUOTA,
		false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("failed to open process %d: %w", pid, wrapDenied(err))
	}
	return &Target{handle: h, pid: pid}, nil
}

func (t *Target) Pid() int32 { return t.pid }

func (t *Target) Close() error {
	if t.self {
		// Pseudo-handle, nothing to release.
		return nil
	}
	return windows.CloseHandle(t.handle)
}

// Size returns the target's current working set size in bytes.
func (t *Target) Size() (int64, error) {
	var pmc windows.PROCESS_MEMORY_COUNTERS
	err := windows.GetProcessMemoryInfo(t.handle, &pmc, uint32(unsafe.Sizeof(pmc)))
	if err != nil {
		return 0, fmt.Errorf("failed to query working set size: %w", wrapDenied(err))
	}
	return int64(pmc.WorkingSetSize), nil
}

// Empty asks the OS to move every resident page of the target to the
// pagefile (psapi EmptyWorkingSet).
func (t *Target) Empty() error {
	ret, _, err := procEmptyWorkingSet.Call(uintptr(t.handle))
	if ret == 0 {
		return fmt.Errorf("EmptyWorkingSet failed: %w", wrapDenied(err))
	}
	return nil
}

// SetToMinimum trims the working set by resizing it with the (-1, -1)
// minimum sentinels.
func (t *Target) SetToMinimum() error {
	err := windows.SetProcessWorkingSetSizeEx(t.handle, ^uintptr(0), ^uintptr(0), 0)
	if err != nil {
		return fmt.Errorf("SetProcessWorkingSetSize failed: %w", wrapDenied(err))
	}
	return nil
}

// Standby-list commands for NtSetSystemInformation's
// SystemMemoryListInformation class.
const (
	systemMemoryListInformation = 0x50

	memoryFlushModifiedList           = 3
	memoryPurgeStandbyList            = 4
	memoryPurgeLowPriorityStandbyList = 5
)

// PurgeStandbyLists issues the system-wide standby/modified list purges in
// the same order the original tooling used, pausing briefly between
// commands. Requires administrator rights; per-command NTSTATUS values are
// returned rather than treated as errors.
func PurgeStandbyLists() ([]PurgeResult, error) {
	cmds := []struct {
		code uint32
		name string
	}{
		{memoryFlushModifiedList, "FlushModifiedList"},
		{memoryPurgeLowPriorityStandbyList, "PurgeLowPriorityStandbyList"},
		{memoryPurgeStandbyList, "PurgeStandbyList"},
	}

	results := make([]PurgeResult, 0, len(cmds))
	for i, cmd := range cmds {
		code := cmd.code
		status, _, _ := procNtSetSystemInformation.Call(
			uintptr(systemMemoryListInformation),
			uintptr(unsafe.Pointer(&code)),
			unsafe.Sizeof(code))
		results = append(results, PurgeResult{Command: cmd.name, Status: uint32(status)})
		if i < len(cmds)-1 {
			time.Sleep(200 * time.Millisecond)
		}
	}
	return results, nil
}

func wrapDenied(err error) error {
	if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
		return fmt.Errorf("%w: %v", ErrDenied, err)
	}
	return err
}
