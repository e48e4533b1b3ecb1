package viscactl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logAdapter "github.com/bft-labs/viscactl/internal/adapters/log"
	"github.com/bft-labs/viscactl/internal/adapters/serial"
	"github.com/bft-labs/viscactl/internal/adapters/tcp"
	"github.com/bft-labs/viscactl/internal/app"
	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
)

// Controller drives one camera: it owns the session, the command table and
// the scheduler. Use New to create one, then Start.
type Controller struct {
	config    Config
	lifecycle *app.Lifecycle
	session   *app.Session
	table     *app.Table
	scheduler *app.Scheduler
	logger    log.Logger
	emitter   *eventEmitterWrapper
	plugins   []Plugin

	// mu serialises Start and shutdown.
	mu     sync.Mutex
	cancel context.CancelFunc
	active []Plugin
	done   chan struct{}
}

// New creates a controller in StateIdle. Returns an error if the
// configuration is invalid.
func New(cfg Config, opts ...Option) (*Controller, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	dialer := o.dialer
	if dialer == nil {
		dialer = NewDialer(cfg)
	}

	commands := o.commands
	if commands == nil {
		commands = visca.DefaultTable(byte(cfg.CameraAddress))
	}

	sinks := logAdapter.Fanout{emitter}
	sinks = append(sinks, o.sinks...)

	session := app.NewSession(dialer, o.logger)
	session.SetUnsolicitedHandler(unsolicitedLogger(o.logger, o.unsolicited))

	done := make(chan struct{})
	close(done)

	return &Controller{
		config:    cfg,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		session:   session,
		table:     app.NewTable(commands),
		scheduler: app.NewScheduler(app.NewDispatcher(sinks, o.logger, cfg.ResponseTimeout), o.logger),
		logger:    o.logger,
		emitter:   emitter,
		plugins:   o.plugins,
		done:      done,
	}, nil
}

// NewDialer returns the TCP or serial dialer selected by cfg.Transport.
func NewDialer(cfg Config) Dialer {
	if cfg.Transport == TransportSerial {
		return serial.NewDialer(cfg.SerialDevice, cfg.BaudRate)
	}
	return tcp.NewDialer(cfg.Host, cfg.Port)
}

func unsolicitedLogger(logger log.Logger, next func([]byte)) func([]byte) {
	return func(b []byte) {
		logger.Debug("unsolicited reply",
			log.String("inbound", visca.Hex(b)),
			log.String("reply", visca.ClassifySocket(b).String()),
		)
		if next != nil {
			next(b)
		}
	}
}

// Start connects to the camera, initializes plugins and starts the
// scheduler, which dispatches the first command before Start returns.
// A connect failure returns the controller to StateIdle.
// Cancelling ctx stops the controller.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	if err := c.session.Connect(ctx, c.config.ConnectTimeout); err != nil {
		c.logger.Error("connect failed", log.String("addr", c.session.Addr()), log.Err(err))
		_ = c.lifecycle.TransitionTo(app.StateIdle, "connect failed")
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	pluginCfg := PluginConfig{Controller: c, Config: c.config, Logger: c.logger}
	c.active = c.active[:0]
	for _, p := range c.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			c.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			c.shutdownPlugins()
			_ = c.session.Close()
			close(c.done)
			_ = c.lifecycle.TransitionTo(app.StateIdle, "plugin init failed: "+p.Name())
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		c.active = append(c.active, p)
		c.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	if err := c.lifecycle.TransitionTo(app.StateRunning, "connected to "+c.session.Addr()); err != nil {
		return err
	}

	c.lifecycle.AddWorker()
	go c.watch(runCtx, c.session.Lost())

	if err := c.scheduler.Start(runCtx, c.session, c.table, c.config.Period); err != nil {
		go func() { _ = c.shutdown("scheduler failed: " + err.Error()) }()
		return err
	}
	return nil
}

// watch runs until the run context ends or the camera drops the connection.
func (c *Controller) watch(ctx context.Context, lost <-chan error) {
	defer c.lifecycle.WorkerDone()

	select {
	case <-ctx.Done():
		if c.lifecycle.State() == app.StateRunning {
			go func() { _ = c.shutdown("context cancelled") }()
		}
	case err := <-lost:
		c.emitter.onConnectionLost(c.session.Addr(), err)
		go func() { _ = c.shutdown("connection lost") }()
	}
}

// Stop stops the scheduler, closes the connection and shuts plugins down in
// reverse order. Stop on a controller that is not running returns nil.
func (c *Controller) Stop() error {
	return c.shutdown("Stop() called")
}

func (c *Controller) shutdown(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.CanStop() {
		return nil
	}
	if err := c.lifecycle.TransitionTo(app.StateStopping, reason); err != nil {
		return err
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.scheduler.Stop()
	if err := c.session.Close(); err != nil {
		c.logger.Warn("close connection", log.Err(err))
	}

	err := c.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
	c.shutdownPlugins()

	_ = c.lifecycle.TransitionTo(app.StateStopped, reason)
	close(c.done)
	return err
}

// shutdownPlugins shuts active plugins down in reverse order.
func (c *Controller) shutdownPlugins() {
	ctx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()

	for i := len(c.active) - 1; i >= 0; i-- {
		p := c.active[i]
		if err := p.Shutdown(ctx); err != nil {
			c.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			c.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
	c.active = c.active[:0]
}

// Done returns a channel that is closed once the controller has stopped,
// whether through Stop, context cancellation or a lost connection.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (c *Controller) Status() State {
	return convertState(c.lifecycle.State())
}

// Connected reports whether the camera connection is up.
func (c *Controller) Connected() bool {
	return c.session.Connected()
}

// Addr describes the camera endpoint.
func (c *Controller) Addr() string {
	return c.session.Addr()
}

// Config returns the configuration after defaults.
func (c *Controller) Config() Config {
	return c.config
}

// SendOnce dispatches the command at index without moving the cursor.
// Out-of-range indexes return an *IndexError and send nothing.
func (c *Controller) SendOnce(ctx context.Context, index int) (Report, error) {
	return c.scheduler.SendOnce(ctx, c.session, c.table, index)
}

// Commands returns a snapshot of the command table.
func (c *Controller) Commands() []visca.Command {
	return c.table.Commands()
}

// Cursor returns the index of the next scheduled command.
func (c *Controller) Cursor() int {
	return c.table.Cursor()
}

// ReplaceCommands swaps the command table and resets the cursor.
func (c *Controller) ReplaceCommands(cmds []visca.Command) error {
	for i, cmd := range cmds {
		if !cmd.Valid() {
			return fmt.Errorf("command %d: %w", i, visca.ErrInvalidFrame)
		}
	}
	if len(cmds) == 0 {
		return domain.ErrEmptyTable
	}
	c.table.Replace(cmds)
	c.logger.Info("command table replaced", log.Int("commands", len(cmds)))
	return nil
}

// IsConnectError reports whether err came from connection setup.
func IsConnectError(err error) bool {
	var ce *ConnectError
	return errors.As(err, &ce)
}
