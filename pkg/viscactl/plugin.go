package viscactl

import (
	"context"

	"github.com/bft-labs/viscactl/pkg/log"
)

// Plugin extends the controller with optional behaviour.
// Plugins are initialized in registration order after the camera connection
// is up and shut down in reverse order on Stop.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize starts the plugin. A returned error aborts Start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and releases its resources.
	Shutdown(ctx context.Context) error
}

// PluginConfig is passed to Plugin.Initialize.
type PluginConfig struct {
	// Controller is the running controller.
	Controller *Controller

	// Config is the controller configuration after defaults.
	Config Config

	Logger log.Logger
}

// BasePlugin provides no-op implementations for embedding.
type BasePlugin struct {
	PluginName string
}

func (p BasePlugin) Name() string                                 { return p.PluginName }
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }
func (BasePlugin) Shutdown(context.Context) error                 { return nil }
