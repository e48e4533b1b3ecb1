// Package viscactl is the short path to driving one PTZ camera: build a
// configuration and call Run.
//
// Example usage:
//
//	cfg := viscactl.DefaultConfig()
//	cfg.Host = "192.168.1.100"
//	if err := viscactl.Run(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// For events, plugins and manual sends use pkg/viscactl directly.
package viscactl

import (
	"context"

	ctl "github.com/bft-labs/viscactl/pkg/viscactl"
)

// Config holds the controller configuration.
type Config = ctl.Config

// DefaultConfig returns a Config with default values. Host must still be set
// for the TCP transport.
func DefaultConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// Run connects, cycles through the command table and blocks until ctx is
// cancelled or the camera closes the connection. It returns the connect
// error, ErrConnectionLost, or nil after a cancelled ctx. Run installs its
// own event handler, replacing any passed in opts.
func Run(ctx context.Context, cfg Config, opts ...ctl.Option) error {
	lost := make(chan error, 1)
	opts = append(opts, ctl.WithEventHandler(&lostRecorder{lost: lost}))

	ctrl, err := ctl.New(cfg, opts...)
	if err != nil {
		return err
	}
	if err := ctrl.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-ctrl.Done():
	}
	if err := ctrl.Stop(); err != nil {
		return err
	}

	select {
	case err := <-lost:
		return err
	default:
		return nil
	}
}

type lostRecorder struct {
	ctl.BaseEventHandler
	lost chan error
}

func (r *lostRecorder) OnConnectionLost(e ctl.ConnectionLostEvent) {
	select {
	case r.lost <- e.Error:
	default:
	}
}
