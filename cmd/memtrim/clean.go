package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/genpipe/memtrim/api"
	"github.com/genpipe/memtrim/internal/pipeline"
	"github.com/genpipe/memtrim/internal/reporter/natsrep"
	"github.com/genpipe/memtrim/internal/reportstore"
	"github.com/genpipe/memtrim/internal/sysinfo"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"
)

// runEventSubject is where live stage events go when NATS is configured.
const runEventSubject = "memtrim.runs"

func cleanCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "run the full reclamation pipeline",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runClean(ctx, cmd, logger)
		},
	}
}

func runClean(ctx context.Context, cmd *cli.Command, logger *slog.Logger) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	orch := pipeline.New(logger)
	if cfg.NatsUrl != "" {
		nc, err := nats.Connect(cfg.NatsUrl)
		if err != nil {
			// Live reporting is optional; the run proceeds without it.
			logger.Warn("failed to connect to NATS, run events disabled",
				"url", cfg.NatsUrl, "error", err)
		} else {
			defer nc.Close()
			orch.Reporter = natsrep.New(nc, runEventSubject)
		}
	}

	report := orch.Run(ctx, cfg.ToRequest(0))
	printReport(report)

	if cfg.ReportDir != "" {
		store, err := reportstore.New(cfg.ReportDir)
		if err != nil {
			logger.Warn("failed to open report store", "error", err)
			return nil
		}
		path, err := store.Save(report)
		if err != nil {
			logger.Warn("failed to archive report", "error", err)
			return nil
		}
		logger.Info("report archived", "path", path)
	}

	// Stage failures never change the workflow's exit code.
	return nil
}

func printReport(report *api.Report) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	bold.Printf("\nRECLAMATION RUN %s\n", report.RunUuid)
	for _, stage := range report.Stages {
		switch stage.Status {
		case api.StageOk:
			green.Printf("  [%d] %-18s ok", stage.Index+1, stage.Name)
			if stage.FreedBytes != 0 {
				fmt.Printf("  freed %s", sysinfo.FmtGB(stage.FreedBytes))
			}
			fmt.Println()
		case api.StageSkipped:
			yellow.Printf("  [%d] %-18s skipped", stage.Index+1, stage.Name)
			if stage.Reason != nil {
				fmt.Printf("  (%s)", *stage.Reason)
			}
			fmt.Println()
		case api.StageFailed:
			red.Printf("  [%d] %-18s failed", stage.Index+1, stage.Name)
			if stage.Error != nil {
				fmt.Printf("  (%s)", *stage.Error)
			}
			fmt.Println()
		}
	}

	bold.Println("\nSUMMARY")
	fmt.Printf("  Process RAM freed:     %s\n", sysinfo.FmtGB(report.Summary.ProcessRAMFreed))
	fmt.Printf("  System RAM freed:      %s\n", sysinfo.FmtGB(report.Summary.SystemRAMFreed))
	fmt.Printf("  Accelerator freed:     %s\n", sysinfo.FmtGB(report.Summary.AcceleratorFreed))
	fmt.Printf("  Elapsed:               %s\n", report.Summary.Elapsed())
}
