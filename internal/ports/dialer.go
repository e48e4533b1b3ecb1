package ports

import (
	"context"
	"io"
)

// Dialer opens a connection to a camera.
// Implementations honour ctx for cancellation and deadlines; connect
// timeouts are applied by the caller through ctx.
type Dialer interface {
	// Dial returns a live byte stream. Reads block until data arrives or the
	// stream is closed; Close must unblock a pending Read.
	Dial(ctx context.Context) (io.ReadWriteCloser, error)

	// Addr describes the endpoint for logs and errors.
	Addr() string
}
