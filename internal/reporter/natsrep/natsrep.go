// Package natsrep streams pipeline stage events to a NATS subject so an
// operator dashboard can follow a reclamation run live. Publishing is
// fire-and-forget: a broken connection must never affect the run.
package natsrep

import (
	"encoding/json"
	"log"

	"github.com/genpipe/memtrim/api"
	"github.com/nats-io/nats.go"
)

type natsReporter struct {
	nc      *nats.Conn
	subject string
}

// New creates a reporter that publishes run events to the given subject.
func New(nc *nats.Conn, subject string) *natsReporter {
	return &natsReporter{nc: nc, subject: subject}
}

func (r *natsReporter) send(msg interface{}) {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal run event: %v", err)
		return
	}
	if err := r.nc.Publish(r.subject, b); err != nil {
		log.Printf("failed to publish run event to NATS: %v", err)
	}
}

func (r *natsReporter) StartRun(runUuid string, systemInfo string) {
	msg := struct {
		MsgType    string `json:"msg_type"`
		RunUuid    string `json:"run_uuid"`
		SystemInfo string `json:"system_info"`
	}{
		MsgType:    "started_run",
		RunUuid:    runUuid,
		SystemInfo: systemInfo,
	}
	r.send(msg)
}

func (r *natsReporter) StartStage(index int, name string) {
	msg := struct {
		MsgType string `json:"msg_type"`
		Index   int    `json:"index"`
		Name    string `json:"name"`
	}{
		MsgType: "started_stage",
		Index:   index,
		Name:    name,
	}
	r.send(msg)
}

func (r *natsReporter) FinishStage(result api.StageResult) {
	msg := struct {
		MsgType string          `json:"msg_type"`
		Result  api.StageResult `json:"result"`
	}{
		MsgType: "finished_stage",
		Result:  result,
	}
	r.send(msg)
}

func (r *natsReporter) FinishRun(report *api.Report) {
	msg := struct {
		MsgType string      `json:"msg_type"`
		Report  *api.Report `json:"report"`
	}{
		MsgType: "finished_run",
		Report:  report,
	}
	r.send(msg)
}
