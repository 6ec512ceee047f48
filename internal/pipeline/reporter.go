package pipeline

import "github.com/genpipe/memtrim/api"

// StageReporter receives pipeline progress events as they happen. The
// orchestrator builds the final report itself; reporters exist for live
// log lines and for streaming stage events to an external sink.
type StageReporter interface {
	StartRun(runUuid string, systemInfo string)
	StartStage(index int, name string)
	FinishStage(result api.StageResult)
	FinishRun(report *api.Report)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) StartRun(string, string)     {}
func (NopReporter) StartStage(int, string)      {}
func (NopReporter) FinishStage(api.StageResult) {}
func (NopReporter) FinishRun(*api.Report)       {}

// MultiReporter fans events out to several reporters.
type MultiReporter []StageReporter

func (m MultiReporter) StartRun(runUuid, systemInfo string) {
	for _, r := range m {
		r.StartRun(runUuid, systemInfo)
	}
}

func (m MultiReporter) StartStage(index int, name string) {
	for _, r := range m {
		r.StartStage(index, name)
	}
}

func (m MultiReporter) FinishStage(result api.StageResult) {
	for _, r := range m {
		r.FinishStage(result)
	}
}

func (m MultiReporter) FinishRun(report *api.Report) {
	for _, r := range m {
		r.FinishRun(report)
	}
}
