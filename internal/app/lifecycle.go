package app

import (
	"sync"
	"time"

	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/pkg/log"
)

// ShutdownTimeout is the maximum time to wait for workers during Stop.
const ShutdownTimeout = 10 * time.Second

// State represents the lifecycle state of the controller.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle manages the controller state machine:
//
//	Idle -> Starting -> Running -> Stopping -> Stopped
//	Starting -> Idle      (connect failed)
//	Starting -> Stopping  (stopped during startup)
//	Stopped -> Starting   (restart)
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	wg           sync.WaitGroup
	logger       log.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a lifecycle in StateIdle.
func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateIdle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	switch oldState {
	case StateIdle, StateStopped:
		if newState != StateStarting {
			l.mu.Unlock()
			return domain.ErrNotRunning
		}
	case StateStarting:
		if newState != StateRunning && newState != StateIdle && newState != StateStopping {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateRunning:
		if newState != StateStopping {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateStopping:
		if newState != StateStopped {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	}

	l.state = newState
	l.mu.Unlock()

	// Emit outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)

	return nil
}

// CanStart returns true if Start() can be called.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateIdle || l.state == StateStopped
}

// CanStop returns true if Stop() has work to do.
func (l *Lifecycle) CanStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateRunning || l.state == StateStarting
}

// AddWorker increments the worker count.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone decrements the worker count.
func (l *Lifecycle) WorkerDone() {
	l.wg.Done()
}

// WaitWithTimeout waits for all workers to finish with a timeout.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, forcing exit",
			log.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
