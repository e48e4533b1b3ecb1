package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the viscactl domain.
// They are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running controller.
	ErrAlreadyRunning = errors.New("viscactl: already running")

	// ErrNotRunning is returned by transitions that require a running controller.
	ErrNotRunning = errors.New("viscactl: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("viscactl: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("viscactl: invalid configuration")

	// ErrEmptyTable is reported when a dispatch is attempted on an empty command table.
	ErrEmptyTable = errors.New("viscactl: command table is empty")

	// ErrIndexOutOfRange is matched by every IndexError.
	ErrIndexOutOfRange = errors.New("viscactl: command index out of range")

	// ErrConnectTimedOut is matched by ConnectError{Kind: ConnectTimedOut}.
	ErrConnectTimedOut = errors.New("viscactl: connect timed out")

	// ErrConnectRefused is matched by ConnectError{Kind: ConnectRefused}.
	ErrConnectRefused = errors.New("viscactl: connection refused")

	// ErrNetwork is matched by ConnectError{Kind: ConnectNetwork}.
	ErrNetwork = errors.New("viscactl: network error")

	// ErrNotConnected is matched by SendError{Kind: SendNotConnected}.
	ErrNotConnected = errors.New("viscactl: session not connected")

	// ErrWriteFailed is matched by SendError{Kind: SendWriteFailed}.
	ErrWriteFailed = errors.New("viscactl: write failed")

	// ErrConnectionLost is delivered when the camera closes the connection.
	ErrConnectionLost = errors.New("viscactl: connection lost")
)

// ConnectErrorKind classifies a failed connect.
type ConnectErrorKind int

const (
	ConnectNetwork ConnectErrorKind = iota
	ConnectTimedOut
	ConnectRefused
)

func (k ConnectErrorKind) sentinel() error {
	switch k {
	case ConnectTimedOut:
		return ErrConnectTimedOut
	case ConnectRefused:
		return ErrConnectRefused
	default:
		return ErrNetwork
	}
}

// ConnectError is returned by Session.Connect.
type ConnectError struct {
	Kind ConnectErrorKind
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connect %s: %v", e.Addr, e.Kind.sentinel())
	}
	return fmt.Sprintf("connect %s: %v: %v", e.Addr, e.Kind.sentinel(), e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *ConnectError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// SendErrorKind classifies a failed send.
type SendErrorKind int

const (
	SendNotConnected SendErrorKind = iota
	SendWriteFailed
)

func (k SendErrorKind) sentinel() error {
	if k == SendWriteFailed {
		return ErrWriteFailed
	}
	return ErrNotConnected
}

// SendError is returned by Session.Send.
type SendError struct {
	Kind SendErrorKind
	Err  error
}

func (e *SendError) Error() string {
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind.sentinel(), e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *SendError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// IndexError is returned for a command index outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: %d not in [0, %d)", ErrIndexOutOfRange, e.Index, e.Len)
}

// Is matches ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
