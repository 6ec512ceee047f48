// trimhelper aggressively trims the working set of a target process. It
// is spawned by the orchestrator as a fallback when the in-process trim
// attempt fails, running with its own (potentially elevated) security
// context. The result goes to stdout in the stable `key : value` line
// format; diagnostics go to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/genpipe/memtrim/api"
	"github.com/genpipe/memtrim/internal/privs"
	"github.com/genpipe/memtrim/internal/sysinfo"
	"github.com/genpipe/memtrim/internal/workingset"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "trimhelper",
		Usage: "trim the working set of a target process",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "pid",
				Usage: "target process id",
			},
			&cli.BoolFlag{
				Name:  "auto",
				Usage: "auto-detect the pipeline worker process",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "trimhelper: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if !workingset.Supported() {
		return workingset.ErrUnsupported
	}

	state := privs.Elevate(privs.TrimNames())
	fmt.Fprintf(os.Stderr, "privileges: %s\n", state.String())

	pid := int32(cmd.Int("pid"))
	if pid == 0 {
		if !cmd.Bool("auto") {
			return fmt.Errorf("no target process given, use --pid <PID> or --auto")
		}
		detected, err := sysinfo.DetectTarget(ctx)
		if err != nil {
			return fmt.Errorf("auto-detect failed: %w", err)
		}
		pid = detected
		fmt.Fprintf(os.Stderr, "auto-detected target pid %d\n", pid)
	}

	outcome, trimmed := trimTarget(pid)
	if err := api.EncodeHelperOutcome(os.Stdout, outcome); err != nil {
		return fmt.Errorf("failed to write outcome: %w", err)
	}
	if !trimmed {
		return fmt.Errorf("no trim call succeeded against pid %d", pid)
	}
	return nil
}

// trimTarget runs the measure, empty, resize, settle, measure sequence
// against pid. The outcome always carries whatever was measured, even on
// failure, so the runner can log partial step statuses.
func trimTarget(pid int32) (api.HelperOutcome, bool) {
	var outcome api.HelperOutcome

	target, err := workingset.Open(pid)
	if err != nil {
		outcome.OpenStep = fmt.Sprintf("failed (%v)", err)
		return outcome, false
	}
	defer target.Close()
	outcome.OpenStep = "ok"

	before, err := target.Size()
	if err != nil {
		outcome.OpenStep = fmt.Sprintf("failed to measure (%v)", err)
		return outcome, false
	}
	outcome.WorkingSetBefore = before

	emptyErr := target.Empty()
	if emptyErr == nil {
		outcome.TrimCall1Step = "ok"
	} else {
		outcome.TrimCall1Step = fmt.Sprintf("failed (%v)", emptyErr)
	}

	resizeErr := target.SetToMinimum()
	if resizeErr == nil {
		outcome.TrimCall2Step = "ok"
	} else {
		outcome.TrimCall2Step = fmt.Sprintf("failed (%v)", resizeErr)
	}

	time.Sleep(workingset.SettleDelay)

	after, err := target.Size()
	if err != nil {
		after = before
	}
	outcome.WorkingSetAfter = after
	// Uncapped: the target may have grown while we trimmed.
	outcome.Freed = before - after

	fmt.Fprintf(os.Stderr, "working set before %s, after %s, freed %s\n",
		sysinfo.FmtGB(before), sysinfo.FmtGB(after), sysinfo.FmtGB(outcome.Freed))

	return outcome, emptyErr == nil || resizeErr == nil
}
