package controlapi

import "github.com/bft-labs/viscactl/pkg/viscactl"

// WithControlAPI returns a viscactl Option that serves the HTTP control API
// while the controller runs.
//
// Usage:
//
//	ctrl, err := viscactl.New(cfg,
//	    controlapi.WithControlAPI(controlapi.Config{Addr: "127.0.0.1:8080"}),
//	)
func WithControlAPI(cfg Config) viscactl.Option {
	return viscactl.WithPlugin(New(cfg))
}
