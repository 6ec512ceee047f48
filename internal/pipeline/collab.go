package pipeline

import (
	"context"
	"runtime"
	"runtime/debug"
)

// Collector triggers one pass of the host runtime's generic garbage
// collector. It is an external collaborator: a simple, idempotent
// call-through with no failure branching of its own.
type Collector interface {
	Collect() error
}

// Accelerator is the external collaborator owning accelerator memory:
// model unloading, cache clearing and device synchronization. A worker
// without accelerators plugs in NopAccelerator.
type Accelerator interface {
	// UnloadModels releases model/resource references; aggressive asks
	// the host to drop everything it possibly can.
	UnloadModels(aggressive bool) error

	// ClearCaches empties allocator caches, releases IPC memory and
	// resets accumulated memory statistics. Returns bytes freed.
	ClearCaches() (int64, error)

	// Synchronize blocks until all outstanding accelerator work completes.
	Synchronize(ctx context.Context) error
}

// RuntimeCollector runs the Go collector and hands freed spans back to
// the OS.
type RuntimeCollector struct{}

func (RuntimeCollector) Collect() error {
	runtime.GC()
	debug.FreeOSMemory()
	return nil
}

// NopAccelerator is the collaborator for hosts without accelerators.
type NopAccelerator struct{}

func (NopAccelerator) UnloadModels(bool) error           { return nil }
func (NopAccelerator) ClearCaches() (int64, error)       { return 0, nil }
func (NopAccelerator) Synchronize(context.Context) error { return nil }
