package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/genpipe/memtrim/internal/reportstore"
	"github.com/urfave/cli/v3"
)

// reportsCommand browses the report archive: bare invocation lists the
// archived run uuids, a uuid argument prints that run's full report.
func reportsCommand() *cli.Command {
	return &cli.Command{
		Name:      "reports",
		Usage:     "list archived runs, or show one by uuid",
		ArgsUsage: "[run-uuid]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.ReportDir == "" {
				return fmt.Errorf("no report directory configured, set MEMTRIM_REPORT_DIR")
			}

			store, err := reportstore.New(cfg.ReportDir)
			if err != nil {
				return err
			}

			if runUuid := cmd.Args().First(); runUuid != "" {
				report, err := store.Load(runUuid)
				if err != nil {
					return err
				}
				printReport(report)
				return nil
			}

			uuids, err := store.List()
			if err != nil {
				return err
			}
			if len(uuids) == 0 {
				fmt.Println("no archived runs")
				return nil
			}

			color.New(color.Bold).Printf("ARCHIVED RUNS (%d)\n", len(uuids))
			for _, u := range uuids {
				fmt.Printf("  %s\n", u)
			}
			return nil
		},
	}
}
