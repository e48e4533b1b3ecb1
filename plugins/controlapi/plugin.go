// Package controlapi serves a small HTTP API for a running controller:
// health, status, the command table, manual sends and stop.
package controlapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/viscactl"
)

// Config holds configuration options for the control API plugin.
type Config struct {
	// Addr is the listen address. Empty disables the plugin.
	Addr string

	// ReadTimeout and WriteTimeout bound each request.
	// Default: 10 seconds each
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Plugin runs the control API server.
type Plugin struct {
	cfg Config

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	logger   log.Logger
	serveErr chan error
}

// New creates a control API plugin.
func New(cfg Config) *Plugin {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Plugin{cfg: cfg}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "controlapi"
}

// Initialize binds the listen address and starts serving. A bind failure
// aborts controller start.
func (p *Plugin) Initialize(ctx context.Context, cfg viscactl.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	if p.cfg.Addr == "" || cfg.Controller == nil {
		p.logger.Warn("control API disabled: no listen address configured")
		return nil
	}

	ln, err := net.Listen("tcp", p.cfg.Addr)
	if err != nil {
		return fmt.Errorf("control API listen: %w", err)
	}

	p.listener = ln
	p.server = &http.Server{
		Handler:      NewRouter(cfg.Controller, p.logger),
		ReadTimeout:  p.cfg.ReadTimeout,
		WriteTimeout: p.cfg.WriteTimeout,
	}
	p.serveErr = make(chan error, 1)

	go func(srv *http.Server, errc chan<- error) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("control API stopped", log.Err(err))
			errc <- err
		}
		close(errc)
	}(p.server, p.serveErr)

	p.logger.Info("control API listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" when not serving.
func (p *Plugin) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// Shutdown stops the server, waiting for in-flight requests.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	srv, errc := p.server, p.serveErr
	p.server, p.listener, p.serveErr = nil, nil, nil
	p.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("control API shutdown: %w", err)
	}
	for range errc {
	}
	return nil
}

// Ensure Plugin implements viscactl.Plugin.
var _ viscactl.Plugin = (*Plugin)(nil)
