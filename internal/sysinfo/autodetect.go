package sysinfo

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// defaultWorkerHints match the generative-pipeline worker process by
// command line. Any hint appearing in the cmdline marks a candidate.
var defaultWorkerHints = []string{"comfyui", "main.py"}

// candidate is one scanned process considered for auto-detection.
type candidate struct {
	pid     int32
	name    string
	cmdline string
	rss     int64
}

// DetectTarget locates the worker process to trim when no pid was given.
// It prefers the largest python process whose command line matches a
// worker hint, and falls back to the single largest memory consumer.
func DetectTarget(ctx context.Context) (int32, error) {
	return DetectTargetByHints(ctx, defaultWorkerHints)
}

func DetectTargetByHints(ctx context.Context, hints []string) (int32, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list processes: %w", err)
	}

	cands := make([]candidate, 0, len(procs))
	for _, p := range procs {
		memInfo, err := p.MemoryInfoWithContext(ctx)
		if err != nil || memInfo == nil {
			continue
		}
		c := candidate{pid: p.Pid, rss: int64(memInfo.RSS)}
		if name, err := p.NameWithContext(ctx); err == nil {
			c.name = name
		}
		if cmdline, err := p.CmdlineWithContext(ctx); err == nil {
			c.cmdline = cmdline
		}
		cands = append(cands, c)
	}

	return pickTarget(cands, hints)
}

// pickTarget selects the largest python process whose cmdline contains a
// hint; with no hinted match it falls back to the largest consumer overall.
func pickTarget(cands []candidate, hints []string) (int32, error) {
	var bestHinted, bestAny candidate
	for _, c := range cands {
		if c.rss > bestAny.rss {
			bestAny = c
		}

		if !strings.HasPrefix(strings.ToLower(c.name), "python") {
			continue
		}
		cmdline := strings.ToLower(c.cmdline)
		for _, hint := range hints {
			if strings.Contains(cmdline, hint) && c.rss > bestHinted.rss {
				bestHinted = c
				break
			}
		}
	}

	if bestHinted.pid != 0 {
		return bestHinted.pid, nil
	}
	if bestAny.pid != 0 {
		return bestAny.pid, nil
	}
	return 0, fmt.Errorf("no target process found")
}
