package viscactl

import (
	"github.com/bft-labs/viscactl/internal/ports"
	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
)

// Dialer opens the byte stream to a camera. Close must unblock a pending Read.
type Dialer = ports.Dialer

// ReportSink receives one report per dispatched command.
type ReportSink = ports.ReportSink

// Logger is the interface for structured logging.
type Logger = log.Logger

// Option configures optional behavior of a Controller.
type Option func(*options)

type options struct {
	logger       log.Logger
	sinks        []ports.ReportSink
	dialer       ports.Dialer
	commands     []visca.Command
	eventHandler EventHandler
	plugins      []Plugin
	unsolicited  func([]byte)
}

func defaultOptions() options {
	return options{logger: log.NewNoopLogger()}
}

// WithLogger sets a custom logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithReportSink adds a sink that receives every dispatch report.
// May be given more than once; sinks are called in order.
func WithReportSink(sink ReportSink) Option {
	return func(o *options) {
		o.sinks = append(o.sinks, sink)
	}
}

// WithDialer replaces the transport built from Config.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithCommands replaces the built-in pan left/stop/pan right/stop table.
func WithCommands(cmds []visca.Command) Option {
	return func(o *options) {
		o.commands = append([]visca.Command(nil), cmds...)
	}
}

// WithEventHandler sets a handler for controller events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the controller starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithUnsolicitedHandler receives buffers the camera sent while no command
// was waiting (late completions, replies after a timeout). They are always
// logged at debug level as well.
func WithUnsolicitedHandler(fn func(data []byte, reply Reply)) Option {
	return func(o *options) {
		o.unsolicited = func(b []byte) { fn(b, visca.ClassifySocket(b)) }
	}
}
