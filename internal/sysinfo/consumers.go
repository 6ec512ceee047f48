package sysinfo

import (
	"context"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"
)

// ProcInfo is one row of the top-consumer listing.
type ProcInfo struct {
	Pid  int32  `json:"pid"`
	Name string `json:"name"`
	RSS  int64  `json:"rss"`
}

const scanConcurrency = 8

// TopConsumers lists the n processes with the largest resident set.
// Processes that disappear or deny access mid-scan are skipped, matching
// the advisory nature of the listing.
func TopConsumers(ctx context.Context, n int) ([]ProcInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	byPid := xsync.NewMapOf[int32, ProcInfo]()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for _, p := range procs {
		g.Go(func() error {
			memInfo, err := p.MemoryInfoWithContext(ctx)
			if err != nil || memInfo == nil {
				return nil
			}
			name, err := p.NameWithContext(ctx)
			if err != nil {
				name = "?"
			}
			byPid.Store(p.Pid, ProcInfo{Pid: p.Pid, Name: name, RSS: int64(memInfo.RSS)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]ProcInfo, 0, byPid.Size())
	byPid.Range(func(_ int32, info ProcInfo) bool {
		rows = append(rows, info)
		return true
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].RSS > rows[j].RSS })

	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}
