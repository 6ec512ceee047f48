// Package trimmer performs the in-process working-set trim attempt.
package trimmer

import (
	"errors"
	"fmt"
	"time"

	"github.com/genpipe/memtrim/internal/workingset"
)

// ErrNoEffect signals that the trim calls went through but the working set
// did not shrink. The orchestrator treats it like a denial and moves on to
// the external helper.
var ErrNoEffect = errors.New("working set did not shrink")

// TrimSelf measures the calling process's working set, invokes the OS
// empty and resize-to-minimum calls against it, waits for the OS to settle
// and measures again. The returned freed value is before - after, uncapped.
//
// Failure here is expected and non-fatal: a denial (missing privilege) or
// a zero-effect trim is the designed trigger for the helper fallback. On
// platforms without the capability it fails immediately with
// workingset.ErrUnsupported.
func TrimSelf() (int64, error) {
	if !workingset.Supported() {
		return 0, workingset.ErrUnsupported
	}

	target, err := workingset.Self()
	if err != nil {
		return 0, err
	}
	defer target.Close()

	before, err := target.Size()
	if err != nil {
		return 0, fmt.Errorf("failed to measure working set: %w", err)
	}

	emptyErr := target.Empty()
	resizeErr := target.SetToMinimum()
	if emptyErr != nil && resizeErr != nil {
		return 0, fmt.Errorf("both trim calls failed: %w (resize: %v)", emptyErr, resizeErr)
	}

	time.Sleep(workingset.SettleDelay)

	after, err := target.Size()
	if err != nil {
		return 0, fmt.Errorf("failed to measure working set after trim: %w", err)
	}

	freed := before - after
	if freed <= 0 {
		return freed, ErrNoEffect
	}
	return freed, nil
}
