package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/genpipe/memtrim/internal/sysinfo"
	"github.com/urfave/cli/v3"
)

const topConsumerCount = 10

// checkCommand reports current memory without mutating anything.
func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "report current process and system memory, no cleanup",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			snap, err := sysinfo.Take()
			if err != nil {
				return fmt.Errorf("failed to read memory info: %w", err)
			}

			header := color.New(color.Bold)
			header.Println("CURRENT MEMORY STATUS")
			fmt.Printf("  Process RAM:      %s (%.2f%%)\n",
				sysinfo.FmtGB(snap.ProcessRSS), snap.ProcessPercent)
			fmt.Printf("  System Total:     %s\n", sysinfo.FmtGB(snap.SystemTotal))
			fmt.Printf("  System Used:      %s (%.1f%%)\n",
				sysinfo.FmtGB(snap.SystemUsed), snap.SystemPercent)
			fmt.Printf("  System Available: %s\n", sysinfo.FmtGB(snap.SystemAvailable))

			consumers, err := sysinfo.TopConsumers(ctx, topConsumerCount)
			if err != nil {
				return fmt.Errorf("failed to list top consumers: %w", err)
			}

			header.Printf("\nTOP %d MEMORY CONSUMERS\n", topConsumerCount)
			for i, proc := range consumers {
				fmt.Printf("  %2d. %-30s %10s (pid %d)\n",
					i+1, proc.Name, sysinfo.FmtGB(proc.RSS), proc.Pid)
			}
			return nil
		},
	}
}
