package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/viscactl/pkg/visca"
)

// DispatchSource tells whether a command came from the scheduler or an operator.
type DispatchSource string

const (
	SourceScheduled DispatchSource = "scheduled"
	SourceManual    DispatchSource = "manual"
)

// Report describes one dispatched command and what came back.
type Report struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Index    int            `json:"index"`
	Source   DispatchSource `json:"source"`
	Outbound string         `json:"outbound"`
	Inbound  string         `json:"inbound,omitempty"`
	Reply    visca.Reply    `json:"reply"`
	Error    string         `json:"error,omitempty"`
	SentAt   time.Time      `json:"sent_at"`
	Duration time.Duration  `json:"duration_ns"`

	// Err is the dispatch error, if any; Error holds its text for encoders.
	Err error `json:"-"`
}

// NewReport starts a report for cmd at the given table index.
func NewReport(cmd visca.Command, index int, source DispatchSource) Report {
	return Report{
		ID:       uuid.New().String(),
		Label:    cmd.Label(),
		Index:    index,
		Source:   source,
		Outbound: cmd.Hex(),
		Reply:    visca.NoResponse(),
		SentAt:   time.Now(),
	}
}

// Fail records err on the report.
func (r *Report) Fail(err error) {
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}

// Complete records the inbound buffer (nil for no response) and classifies it.
func (r *Report) Complete(inbound []byte) {
	r.Duration = time.Since(r.SentAt)
	if inbound == nil {
		r.Reply = visca.NoResponse()
		return
	}
	r.Inbound = visca.Hex(inbound)
	r.Reply = visca.Classify(inbound)
}

// Failed reports whether the dispatch itself failed (not the camera reply).
func (r Report) Failed() bool {
	return r.Err != nil
}
