package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/genpipe/memtrim/api"
	"github.com/genpipe/memtrim/internal/helper"
	"github.com/genpipe/memtrim/internal/sysinfo"
	"github.com/urfave/cli/v3"
)

// trimCommand trims a single target process through the helper binary and
// prints a before/after/freed summary. Unlike `clean`, an unrecoverable
// failure here (spawn failure, handle-open failure) exits nonzero.
func trimCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "trim",
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
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "bound on the helper wait",
				Value: api.DefaultHelperTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pid := int32(cmd.Int("pid"))
			if pid == 0 && !cmd.Bool("auto") {
				return fmt.Errorf("no target process given, use --pid <PID> or --auto")
			}

			logger.Info("trimming target", "pid", pid, "auto", pid == 0)
			started := time.Now()

			outcome, err := helper.Runner{}.TrimRemote(ctx, pid, cmd.Duration("timeout"))
			if err != nil {
				return fmt.Errorf("trim failed: %w", err)
			}

			bold := color.New(color.Bold)
			bold.Println("\nTRIM RESULT")
			fmt.Printf("  Working set before: %s\n", sysinfo.FmtGB(outcome.WorkingSetBefore))
			fmt.Printf("  Working set after:  %s\n", sysinfo.FmtGB(outcome.WorkingSetAfter))
			fmt.Printf("  Freed:              %s\n", sysinfo.FmtGB(outcome.Freed))
			fmt.Printf("  Elapsed:            %s\n", time.Since(started).Round(time.Millisecond))
			return nil
		},
	}
}
