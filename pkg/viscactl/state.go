package viscactl

import "github.com/bft-labs/viscactl/internal/app"

// State is the controller lifecycle state.
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

// CanStart reports whether Start may be called in this state.
func (s State) CanStart() bool {
	return s == StateIdle || s == StateStopped
}

// CanStop reports whether Stop has work to do in this state.
func (s State) CanStop() bool {
	return s == StateStarting || s == StateRunning
}

// IsRunning reports whether the scheduler is dispatching.
func (s State) IsRunning() bool {
	return s == StateRunning
}

func convertState(s app.State) State {
	switch s {
	case app.StateIdle:
		return StateIdle
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateStopped:
		return StateStopped
	default:
		return StateIdle
	}
}
