package viscactl

import "github.com/bft-labs/viscactl/internal/domain"

// Errors returned by the controller. Match with errors.Is.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrEmptyTable      = domain.ErrEmptyTable
	ErrIndexOutOfRange = domain.ErrIndexOutOfRange
	ErrConnectTimedOut = domain.ErrConnectTimedOut
	ErrConnectRefused  = domain.ErrConnectRefused
	ErrNetwork         = domain.ErrNetwork
	ErrNotConnected    = domain.ErrNotConnected
	ErrWriteFailed     = domain.ErrWriteFailed
	ErrConnectionLost  = domain.ErrConnectionLost
)

// Typed errors carrying detail. Each matches its sentinel with errors.Is.
type (
	ConnectError = domain.ConnectError
	SendError    = domain.SendError
	IndexError   = domain.IndexError
)
