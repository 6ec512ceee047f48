// memtrim reclaims physical memory held by a long-running
// generative-pipeline worker by trimming its resident working set back to
// the pagefile, beyond what the runtime collector and accelerator cache
// clearing can release on their own.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/genpipe/memtrim/internal/environment"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	cmd := &cli.Command{
		Name:  "memtrim",
		Usage: "reclaim unused physical memory from the pipeline worker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "options",
				Usage: "path to the TOML options file",
				Value: "memtrim.toml",
			},
		},
		Commands: []*cli.Command{
			checkCommand(),
			cleanCommand(logger),
			trimCommand(logger),
			reportsCommand(),
		},
		// Bare invocation runs the full cleanup pipeline.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runClean(ctx, cmd, logger)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "memtrim: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (environment.Config, error) {
	return environment.Read(cmd.String("options"))
}
