package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/viscactl/internal/adapters/fs"
	logAdapter "github.com/bft-labs/viscactl/internal/adapters/log"
	"github.com/bft-labs/viscactl/internal/adapters/mqtt"
	"github.com/bft-labs/viscactl/internal/cliconfig"
	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
	"github.com/bft-labs/viscactl/pkg/viscactl"
	"github.com/bft-labs/viscactl/plugins/controlapi"
	"github.com/bft-labs/viscactl/plugins/tablewatcher"
)

const longHelp = `Drive a PTZ camera over VISCA-over-IP (or a serial line).

viscactl connects to one camera and cycles through a table of VISCA
commands, sending one every period and logging the camera's reply.
The built-in table pans left, stops, pans right and stops.

Configuration is read from $HOME/.viscactl/config.toml, then VISCACTL_*
environment variables, then flags.`

var exampleUsage = strings.TrimSpace(`
  viscactl --host 192.168.1.100
  viscactl --host 192.168.1.100 --table table.yaml --watch-table --control-addr 127.0.0.1:8080
  viscactl send 2 --host 192.168.1.100
  viscactl presets save --host 192.168.1.100 --from 1 --to 20
  viscactl cgi --host 192.168.1.100 --cgi-user admin --cgi-password admin home
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the configuration and logger shared by all subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  log.Logger
}

func main() {
	c := &cli{
		cfg:    cliconfig.DefaultConfig(),
		logger: log.NewConsoleLogger(os.Stderr, "info", false),
	}

	root := &cobra.Command{
		Use:           "viscactl",
		Short:         "Drive a PTZ camera over VISCA-over-IP",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.runE,
	}

	c.bindFlags(root.PersistentFlags())
	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Cycle the command table until interrupted (default)",
			Args:  cobra.NoArgs,
			RunE:  c.runE,
		},
		c.sendCommand(),
		c.tableCommand(),
		c.presetsCommand(),
		c.cgiCommand(),
		serialPortsCommand(),
	)

	if err := root.Execute(); err != nil {
		c.logger.Error("viscactl", log.Err(err))
		os.Exit(1)
	}
}

func (c *cli) runE(cmd *cobra.Command, _ []string) error {
	if err := c.load(cmd, true); err != nil {
		return err
	}
	return c.run()
}

func (c *cli) bindFlags(f *pflag.FlagSet) {
	cfg := &c.cfg
	f.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.viscactl/config.toml)")

	f.StringVar(&cfg.Host, "host", cfg.Host, "camera host name or IP address")
	f.IntVar(&cfg.Port, "port", cfg.Port, "camera VISCA TCP port")
	f.StringVar(&cfg.Transport, "transport", cfg.Transport, "camera transport: tcp or serial")
	f.StringVar(&cfg.SerialDevice, "serial-device", cfg.SerialDevice, "serial device for --transport serial")
	f.IntVar(&cfg.BaudRate, "baud", cfg.BaudRate, "serial baud rate")
	f.IntVar(&cfg.CameraAddress, "camera-address", cfg.CameraAddress, "VISCA camera address (1-7)")

	f.DurationVar(&cfg.Period, "period", cfg.Period, "interval between scheduled commands")
	f.DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "connection timeout")
	f.DurationVar(&cfg.ResponseTimeout, "response-timeout", cfg.ResponseTimeout, "how long to wait for a reply (must be shorter than --period)")

	f.StringVar(&cfg.TableFile, "table", cfg.TableFile, "YAML command table (default: built-in pan table)")
	f.BoolVar(&cfg.WatchTable, "watch-table", cfg.WatchTable, "reload --table when the file changes")
	f.StringVar(&cfg.ControlAddr, "control-addr", cfg.ControlAddr, "listen address for the HTTP control API (disabled if empty)")

	f.StringVar(&cfg.MQTTBroker, "mqtt-broker", cfg.MQTTBroker, "MQTT broker for dispatch reports (disabled if empty)")
	f.StringVar(&cfg.MQTTTopic, "mqtt-topic", cfg.MQTTTopic, "MQTT topic prefix for dispatch reports")
	f.StringVar(&cfg.MQTTClientID, "mqtt-client-id", cfg.MQTTClientID, "MQTT client id (default: viscactl-<uuid>)")
	f.IntVar(&cfg.MQTTQoS, "mqtt-qos", cfg.MQTTQoS, "MQTT publish QoS")

	f.StringVar(&cfg.CGIUser, "cgi-user", cfg.CGIUser, "HTTP-CGI digest user")
	f.StringVar(&cfg.CGIPassword, "cgi-password", cfg.CGIPassword, "HTTP-CGI digest password")
	f.DurationVar(&cfg.CGITimeout, "cgi-timeout", cfg.CGITimeout, "HTTP-CGI request timeout")

	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	f.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "log raw JSON instead of console output")
}

// load layers config file, environment and flags, then rebuilds the logger.
func (c *cli) load(cmd *cobra.Command, validate bool) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	c.logger = log.NewConsoleLogger(os.Stderr, c.cfg.LogLevel, c.cfg.LogJSON)

	if validate {
		if err := c.cfg.Validate(); err != nil {
			return err
		}
	}
	c.logger.Debug("configuration", log.Any("config", c.cfg.Masked()))
	return nil
}

// commands returns the table file's commands, or the built-in table.
func (c *cli) commands(ctx context.Context) ([]visca.Command, error) {
	if c.cfg.TableFile == "" {
		return visca.DefaultTable(byte(c.cfg.CameraAddress)), nil
	}
	cmds, err := fs.NewTableFile(c.cfg.TableFile).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", c.cfg.TableFile, err)
	}
	return cmds, nil
}

// lostHandler remembers whether the camera dropped the connection.
type lostHandler struct {
	viscactl.BaseEventHandler
	lost atomic.Bool
}

func (h *lostHandler) OnConnectionLost(viscactl.ConnectionLostEvent) {
	h.lost.Store(true)
}

// run drives the camera until interrupted. A failed initial connection
// returns an error, which exits 1.
func (c *cli) run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmds, err := c.commands(ctx)
	if err != nil {
		return err
	}

	events := &lostHandler{}
	opts := []viscactl.Option{
		viscactl.WithLogger(c.logger),
		viscactl.WithCommands(cmds),
		viscactl.WithEventHandler(events),
		viscactl.WithReportSink(logAdapter.NewReportSink(c.logger)),
	}

	if c.cfg.MQTTBroker != "" {
		sink := mqtt.NewSink(mqtt.Config{
			Broker:   c.cfg.MQTTBroker,
			Topic:    c.cfg.MQTTTopic,
			ClientID: c.cfg.MQTTClientID,
			QoS:      byte(c.cfg.MQTTQoS),
		}, c.logger)
		if err := sink.Connect(ctx); err != nil {
			return err
		}
		defer sink.Disconnect()
		opts = append(opts, viscactl.WithReportSink(sink))
	}
	if c.cfg.WatchTable {
		opts = append(opts, tablewatcher.WithTableWatcher(tablewatcher.Config{Path: c.cfg.TableFile}))
	}
	if c.cfg.ControlAddr != "" {
		opts = append(opts, controlapi.WithControlAPI(controlapi.Config{Addr: c.cfg.ControlAddr}))
	}

	ctrl, err := viscactl.New(c.cfg.Controller(), opts...)
	if err != nil {
		return fmt.Errorf("create controller: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := ctrl.Start(ctx); err != nil {
		return fmt.Errorf("connect to %s: %w", ctrl.Addr(), err)
	}
	c.logger.Info("running",
		log.String("addr", ctrl.Addr()),
		log.Int("commands", len(ctrl.Commands())),
		log.Duration("period", c.cfg.Period),
	)

	return waitAndStop(ctrl, sigCh, events, c.logger)
}

// waitAndStop blocks until a signal arrives or the controller stops on its
// own, then stops it.
func waitAndStop(ctrl *viscactl.Controller, sigCh <-chan os.Signal, events *lostHandler, logger log.Logger) error {
	select {
	case sig := <-sigCh:
		logger.Info("received signal, stopping...", log.String("signal", sig.String()))
	case <-ctrl.Done():
	}

	if err := ctrl.Stop(); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	if events.lost.Load() {
		return errors.New("camera closed the connection")
	}
	logger.Info("stopped")
	return nil
}
