package tcp

import (
	"context"
	"io"
	"net"
	"strconv"
	"time"
)

// DefaultKeepAlive is the TCP keep-alive period for camera connections.
const DefaultKeepAlive = 30 * time.Second

// Dialer implements ports.Dialer for VISCA over IP.
type Dialer struct {
	host string
	port int
}

// NewDialer creates a dialer for host:port.
func NewDialer(host string, port int) *Dialer {
	return &Dialer{host: host, port: port}
}

// Dial connects to the camera. The connect timeout is carried by ctx.
func (d *Dialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	nd := net.Dialer{KeepAlive: DefaultKeepAlive}
	conn, err := nd.DialContext(ctx, "tcp", d.Addr())
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		// VISCA frames are tiny; send each one immediately.
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}

// Addr returns host:port.
func (d *Dialer) Addr() string {
	return net.JoinHostPort(d.host, strconv.Itoa(d.port))
}
