package viscactl

import (
	"github.com/bft-labs/viscactl/internal/app"
	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/pkg/visca"
)

// Report describes one dispatched command and the camera's reply.
type Report = domain.Report

// Reply is a classified camera reply.
type Reply = visca.Reply

// DispatchSource tells scheduled dispatches from manual ones.
type DispatchSource = domain.DispatchSource

const (
	SourceScheduled = domain.SourceScheduled
	SourceManual    = domain.SourceManual
)

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// ConnectionLostEvent is emitted when the camera closes the connection.
type ConnectionLostEvent struct {
	Addr  string
	Error error
}

// EventHandler receives controller events. Methods are called synchronously
// from controller goroutines and must return quickly. Calling Stop from
// inside a handler deadlocks; use a goroutine.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnDispatch(report Report)
	OnConnectionLost(event ConnectionLostEvent)
}

// BaseEventHandler provides no-op implementations for embedding.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)       {}
func (BaseEventHandler) OnDispatch(Report)                    {}
func (BaseEventHandler) OnConnectionLost(ConnectionLostEvent) {}

// eventEmitterWrapper adapts EventHandler to the internal emitter and sink
// interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) Report(r domain.Report) {
	if e.handler == nil {
		return
	}
	e.handler.OnDispatch(r)
}

func (e *eventEmitterWrapper) onConnectionLost(addr string, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnConnectionLost(ConnectionLostEvent{Addr: addr, Error: err})
}
