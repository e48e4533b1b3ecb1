package app

import (
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/pkg/log"
)

// mockLogger implements log.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...log.Field) {}
func (mockLogger) Info(msg string, fields ...log.Field)  {}
func (mockLogger) Warn(msg string, fields ...log.Field)  {}
func (mockLogger) Error(msg string, fields ...log.Field) {}

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func TestNewLifecycle(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	if l == nil {
		t.Fatal("NewLifecycle returned nil")
	}
	if l.State() != StateIdle {
		t.Errorf("initial state = %v, want StateIdle", l.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "Idle"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateStopping, "Stopping"},
		{StateStopped, "Stopped"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		got := tt.state.String()
		if got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestLifecycle_TransitionTo_ValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
	}{
		{"idle to starting", StateIdle, StateStarting},
		{"starting to running", StateStarting, StateRunning},
		{"starting to idle", StateStarting, StateIdle},
		{"starting to stopping", StateStarting, StateStopping},
		{"running to stopping", StateRunning, StateStopping},
		{"stopping to stopped", StateStopping, StateStopped},
		{"stopped to starting", StateStopped, StateStarting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLifecycle(&mockLogger{}, nil)
			l.state = tt.from

			if err := l.TransitionTo(tt.to, "test"); err != nil {
				t.Fatalf("TransitionTo() error = %v", err)
			}
			if l.State() != tt.to {
				t.Errorf("state = %v after transition, want %v", l.State(), tt.to)
			}
		})
	}
}

func TestLifecycle_TransitionTo_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		wantErr error
	}{
		{"idle to running", StateIdle, StateRunning, domain.ErrNotRunning},
		{"idle to stopping", StateIdle, StateStopping, domain.ErrNotRunning},
		{"stopped to running", StateStopped, StateRunning, domain.ErrNotRunning},
		{"stopped to stopped", StateStopped, StateStopped, domain.ErrNotRunning},
		{"starting to stopped", StateStarting, StateStopped, domain.ErrAlreadyRunning},
		{"running to starting", StateRunning, StateStarting, domain.ErrAlreadyRunning},
		{"running to stopped", StateRunning, StateStopped, domain.ErrAlreadyRunning},
		{"running to idle", StateRunning, StateIdle, domain.ErrAlreadyRunning},
		{"stopping to running", StateStopping, StateRunning, domain.ErrAlreadyRunning},
		{"stopping to starting", StateStopping, StateStarting, domain.ErrAlreadyRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLifecycle(&mockLogger{}, nil)
			l.state = tt.from

			err := l.TransitionTo(tt.to, "test")

			if err != tt.wantErr {
				t.Errorf("TransitionTo() error = %v, want %v", err, tt.wantErr)
			}
			// State should not change on invalid transition
			if l.State() != tt.from {
				t.Errorf("state changed to %v on invalid transition, want %v", l.State(), tt.from)
			}
		})
	}
}

func TestLifecycle_TransitionTo_EmitsEvents(t *testing.T) {
	emitter := &mockEmitter{}
	l := NewLifecycle(&mockLogger{}, emitter)

	_ = l.TransitionTo(StateStarting, "start test")
	_ = l.TransitionTo(StateRunning, "connected")

	events := emitter.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	if events[0].previous != StateIdle || events[0].current != StateStarting {
		t.Errorf("event 0: got %v->%v, want Idle->Starting", events[0].previous, events[0].current)
	}
	if events[1].previous != StateStarting || events[1].current != StateRunning {
		t.Errorf("event 1: got %v->%v, want Starting->Running", events[1].previous, events[1].current)
	}
	if events[1].reason != "connected" {
		t.Errorf("event 1 reason = %q", events[1].reason)
	}
}

func TestLifecycle_CanStart(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateIdle, true},
		{StateStarting, false},
		{StateRunning, false},
		{StateStopping, false},
		{StateStopped, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			l := NewLifecycle(&mockLogger{}, nil)
			l.state = tt.state

			if got := l.CanStart(); got != tt.want {
				t.Errorf("CanStart() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLifecycle_CanStop(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateIdle, false},
		{StateStarting, true},
		{StateRunning, true},
		{StateStopping, false},
		{StateStopped, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			l := NewLifecycle(&mockLogger{}, nil)
			l.state = tt.state

			if got := l.CanStop(); got != tt.want {
				t.Errorf("CanStop() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLifecycle_WaitWithTimeout_Success(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	l.AddWorker()

	go func() {
		time.Sleep(10 * time.Millisecond)
		l.WorkerDone()
	}()

	if err := l.WaitWithTimeout(time.Second); err != nil {
		t.Errorf("WaitWithTimeout() = %v, want nil", err)
	}
}

func TestLifecycle_WaitWithTimeout_Timeout(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	l.AddWorker()
	// Never call WorkerDone

	err := l.WaitWithTimeout(10 * time.Millisecond)
	if err != domain.ErrShutdownTimeout {
		t.Errorf("WaitWithTimeout() = %v, want ErrShutdownTimeout", err)
	}

	// Clean up
	l.WorkerDone()
}

func TestLifecycle_Concurrency(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = l.State()
				_ = l.CanStart()
				_ = l.CanStop()
			}
		}()
	}

	// Concurrent transitions (some will fail, which is expected)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.TransitionTo(StateStarting, "test")
			_ = l.TransitionTo(StateRunning, "test")
		}()
	}

	wg.Wait()
}
