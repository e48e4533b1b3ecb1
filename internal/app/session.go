package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/internal/ports"
	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
)

const (
	// readBufferSize bounds a single inbound buffer. VISCA replies are at
	// most 16 bytes; a larger buffer tolerates coalesced replies.
	readBufferSize = 64

	// closeWait bounds how long Close waits for the reader to exit.
	closeWait = 2 * time.Second
)

var errClosedDuringConnect = errors.New("session closed while connecting")

// SessionState is the connection state of a Session.
type SessionState int

const (
	SessionDisconnected SessionState = iota
	SessionConnecting
	SessionConnected
	SessionClosing
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case SessionDisconnected:
		return "Disconnected"
	case SessionConnecting:
		return "Connecting"
	case SessionConnected:
		return "Connected"
	case SessionClosing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// Sender is the part of a Session the scheduler and preset tool need.
type Sender interface {
	Send(ctx context.Context, frame []byte, responseTimeout time.Duration) ([]byte, error)
	Connected() bool
}

// Session owns one connection to a camera.
//
// A background reader owns all reads. Send attaches a one-shot response
// slot, writes the frame and waits for the first inbound buffer; the slot is
// detached on data, timeout or cancellation. Sends are serialized, so at
// most one slot exists at any time. Buffers that arrive with no slot
// attached are passed to the unsolicited handler and never attributed to a
// later command.
type Session struct {
	dialer ports.Dialer
	logger log.Logger

	mu         sync.Mutex
	state      SessionState
	conn       io.ReadWriteCloser
	lost       chan error
	readerDone chan struct{}

	sendMu sync.Mutex

	slotMu      sync.Mutex
	slot        chan []byte
	primed      bool
	unsolicited func([]byte)
}

// NewSession creates a disconnected session for the dialer's endpoint.
func NewSession(dialer ports.Dialer, logger log.Logger) *Session {
	return &Session{
		dialer: dialer,
		logger: logger,
		state:  SessionDisconnected,
	}
}

// Addr returns the endpoint description.
func (s *Session) Addr() string {
	return s.dialer.Addr()
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connected reports whether writes are currently allowed.
func (s *Session) Connected() bool {
	return s.State() == SessionConnected
}

// Lost returns a channel that receives one error if the camera closes the
// connection while Connected. Closing through Close never signals it.
// The channel is replaced on every successful Connect.
func (s *Session) Lost() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost
}

// SetUnsolicitedHandler registers fn for buffers that arrive while no
// response slot is attached (late completions, replies after a timeout).
func (s *Session) SetUnsolicitedHandler(fn func([]byte)) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	s.unsolicited = fn
}

// Connect dials the camera. The timeout only covers connection setup.
func (s *Session) Connect(ctx context.Context, timeout time.Duration) error {
	s.mu.Lock()
	if s.state != SessionDisconnected {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("connect %s: session is %s", s.dialer.Addr(), state)
	}
	s.state = SessionConnecting
	s.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := s.dialer.Dial(dialCtx)
	if err != nil {
		s.mu.Lock()
		s.state = SessionDisconnected
		s.mu.Unlock()
		return classifyDialError(s.dialer.Addr(), err)
	}

	lost := make(chan error, 1)
	done := make(chan struct{})

	s.mu.Lock()
	if s.state != SessionConnecting {
		s.state = SessionDisconnected
		s.mu.Unlock()
		_ = conn.Close()
		return &domain.ConnectError{Kind: domain.ConnectNetwork, Addr: s.dialer.Addr(), Err: errClosedDuringConnect}
	}
	s.conn = conn
	s.lost = lost
	s.readerDone = done
	s.state = SessionConnected
	s.mu.Unlock()

	s.slotMu.Lock()
	s.slot = nil
	s.primed = false
	s.slotMu.Unlock()

	go s.readLoop(conn, lost, done)

	s.logger.Info("connected to camera", log.String("addr", s.dialer.Addr()))
	return nil
}

// Send writes frame and waits up to responseTimeout for one inbound buffer.
// A timeout returns (nil, nil): no response is not an error.
func (s *Session) Send(ctx context.Context, frame []byte, responseTimeout time.Duration) ([]byte, error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.mu.Lock()
	conn, state, done := s.conn, s.state, s.readerDone
	s.mu.Unlock()
	if state != SessionConnected {
		return nil, &domain.SendError{Kind: domain.SendNotConnected}
	}

	slot := make(chan []byte, 1)
	s.slotMu.Lock()
	s.slot = slot
	s.primed = true
	s.slotMu.Unlock()
	defer s.detach(slot)

	if d, ok := conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
		_ = d.SetWriteDeadline(time.Now().Add(responseTimeout))
	}
	if _, err := conn.Write(frame); err != nil {
		return nil, &domain.SendError{Kind: domain.SendWriteFailed, Err: err}
	}

	timer := time.NewTimer(responseTimeout)
	defer timer.Stop()

	select {
	case data := <-slot:
		return data, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
		return nil, &domain.SendError{Kind: domain.SendNotConnected, Err: domain.ErrConnectionLost}
	}
}

// detach removes slot if it is still attached. Data that raced into the
// slot after the wait resolved goes to the unsolicited handler.
func (s *Session) detach(slot chan []byte) {
	s.slotMu.Lock()
	if s.slot == slot {
		s.slot = nil
	}
	handler := s.unsolicited
	s.slotMu.Unlock()

	select {
	case data := <-slot:
		if handler != nil {
			handler(data)
		}
	default:
	}
}

// Close tears the connection down. Safe to call in any state.
func (s *Session) Close() error {
	s.mu.Lock()
	switch s.state {
	case SessionDisconnected, SessionClosing:
		s.mu.Unlock()
		return nil
	case SessionConnecting:
		// Connect notices and discards the dialed connection.
		s.state = SessionClosing
		s.mu.Unlock()
		return nil
	}
	conn, done := s.conn, s.readerDone
	s.state = SessionClosing
	s.mu.Unlock()

	err := conn.Close()
	if done != nil {
		select {
		case <-done:
		case <-time.After(closeWait):
			s.logger.Warn("reader did not exit after close", log.String("addr", s.dialer.Addr()))
		}
	}

	s.mu.Lock()
	s.state = SessionDisconnected
	s.conn = nil
	s.mu.Unlock()

	s.logger.Info("connection closed", log.String("addr", s.dialer.Addr()))
	return err
}

func (s *Session) readLoop(conn io.ReadWriteCloser, lost chan<- error, done chan struct{}) {
	defer close(done)

	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.deliver(data)
		}
		if err == nil {
			continue
		}

		s.mu.Lock()
		unexpected := s.state == SessionConnected && s.conn == conn
		if unexpected {
			s.state = SessionDisconnected
			s.conn = nil
		}
		s.mu.Unlock()

		if !unexpected {
			return
		}

		_ = conn.Close()
		s.logger.Warn("camera closed the connection",
			log.String("addr", s.dialer.Addr()),
			log.Err(err),
		)
		lost <- fmt.Errorf("%w: %v", domain.ErrConnectionLost, err)
		return
	}
}

func (s *Session) deliver(data []byte) {
	s.slotMu.Lock()
	slot := s.slot
	s.slot = nil
	primed := s.primed
	handler := s.unsolicited
	s.slotMu.Unlock()

	switch {
	case slot != nil:
		slot <- data
	case !primed:
		s.logger.Debug("discarding data received before first command",
			log.String("inbound", visca.Hex(data)))
	case handler != nil:
		handler(data)
	}
}

func classifyDialError(addr string, err error) error {
	kind := domain.ConnectNetwork
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		kind = domain.ConnectTimedOut
	case errors.Is(err, syscall.ECONNREFUSED):
		kind = domain.ConnectRefused
	}
	return &domain.ConnectError{Kind: kind, Addr: addr, Err: err}
}
