package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/viscactl/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/viscactl/internal/adapters/http"
	logAdapter "github.com/bft-labs/viscactl/internal/adapters/log"
	"github.com/bft-labs/viscactl/internal/adapters/serial"
	"github.com/bft-labs/viscactl/internal/app"
	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/viscactl"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// connect opens a session to the configured camera for one-shot commands.
func (c *cli) connect(ctx context.Context) (*app.Session, error) {
	cfg := c.cfg.Controller()
	session := app.NewSession(viscactl.NewDialer(cfg), c.logger)
	session.SetUnsolicitedHandler(func(b []byte) {
		c.logger.Debug("unsolicited reply", log.Int("bytes", len(b)))
	})
	if err := session.Connect(ctx, cfg.ConnectTimeout); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", session.Addr(), err)
	}
	return session, nil
}

func (c *cli) sendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send <index>",
		Short: "Send one command from the table and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd, true); err != nil {
				return err
			}
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index %q: %w", args[0], err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			cmds, err := c.commands(ctx)
			if err != nil {
				return err
			}
			table := app.NewTable(cmds)
			if _, err := table.Get(index); err != nil {
				return err
			}

			session, err := c.connect(ctx)
			if err != nil {
				return err
			}
			defer session.Close()

			dispatcher := app.NewDispatcher(logAdapter.NewReportSink(c.logger), c.logger, c.cfg.ResponseTimeout)
			r, err := app.NewScheduler(dispatcher, c.logger).SendOnce(ctx, session, table, index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.Label, r.Outbound, r.Reply)
			return nil
		},
	}
}

func (c *cli) tableCommand() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "table",
		Short: "List the command table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd, false); err != nil {
				return err
			}
			cmds, err := c.commands(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asYAML {
				b, err := fs.MarshalTable(cmds)
				if err != nil {
					return err
				}
				_, err = out.Write(b)
				return err
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tLABEL\tFRAME")
			for i, cmd := range cmds {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i, cmd.Label(), cmd.Hex())
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the table as a YAML table file")
	return cmd
}

func (c *cli) presetsCommand() *cobra.Command {
	parent := &cobra.Command{
		Use:   "presets",
		Short: "Capture or restore camera presets",
	}

	flags := parent.PersistentFlags()
	flags.StringVar(&c.cfg.PresetFile, "preset-file", c.cfg.PresetFile, "JSON file of preset positions")
	flags.DurationVar(&c.cfg.PresetSettle, "settle", c.cfg.PresetSettle, "time allowed for the camera to finish moving")
	flags.BoolVar(&c.cfg.CaptureFocus, "focus", c.cfg.CaptureFocus, "capture and restore focus positions")

	save := &cobra.Command{
		Use:   "save",
		Short: "Record the position of every preset in a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPresetTool(cmd, func(ctx context.Context, tool *app.PresetTool, file *fs.PresetFile) error {
				start := time.Now()
				result, err := tool.Capture(ctx, c.cfg.PresetFrom, c.cfg.PresetTo)
				if err != nil {
					return err
				}
				if err := file.Save(ctx, result.Presets); err != nil {
					return err
				}
				c.logger.Info("presets saved",
					log.String("file", file.Path()),
					log.Int("captured", len(result.Presets)),
					log.Int("empty", len(result.Empty)),
					log.Duration("elapsed", time.Since(start)),
				)
				return nil
			})
		},
	}
	save.Flags().IntVar(&c.cfg.PresetFrom, "from", c.cfg.PresetFrom, "first preset number")
	save.Flags().IntVar(&c.cfg.PresetTo, "to", c.cfg.PresetTo, "last preset number")

	restore := &cobra.Command{
		Use:   "restore",
		Short: "Drive the camera to each saved position and store it as a preset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withPresetTool(cmd, func(ctx context.Context, tool *app.PresetTool, file *fs.PresetFile) error {
				presets, err := file.Load(ctx)
				if err != nil {
					return err
				}
				restored, skipped, err := tool.Restore(ctx, presets)
				if err != nil {
					return err
				}
				for _, key := range skipped {
					c.logger.Warn("preset skipped", log.String("preset", key))
				}
				c.logger.Info("presets restored",
					log.String("file", file.Path()),
					log.Int("restored", restored),
					log.Int("skipped", len(skipped)),
				)
				return nil
			})
		},
	}

	parent.AddCommand(save, restore)
	return parent
}

func (c *cli) withPresetTool(cmd *cobra.Command, fn func(context.Context, *app.PresetTool, *fs.PresetFile) error) error {
	if err := c.load(cmd, true); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	session, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	tool := app.NewPresetTool(session, app.PresetConfig{
		Address:         byte(c.cfg.CameraAddress),
		ResponseTimeout: c.cfg.ResponseTimeout,
		Settle:          c.cfg.PresetSettle,
		CaptureFocus:    c.cfg.CaptureFocus,
	}, c.logger)
	return fn(ctx, tool, fs.NewPresetFile(c.cfg.PresetFile))
}

func (c *cli) cgiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cgi <ptzcmd args...>",
		Short: "Send a PTZ command over the camera's HTTP-CGI interface",
		Example: `  viscactl cgi --host 192.168.1.100 home
  viscactl cgi --host 192.168.1.100 poscall 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd, false); err != nil {
				return err
			}
			if c.cfg.Host == "" {
				return fmt.Errorf("--host is required")
			}

			ctx, cancel := signalContext()
			defer cancel()

			client := httpAdapter.NewCGIClient(
				httpAdapter.NewDigestClient(c.cfg.CGIUser, c.cfg.CGIPassword, c.cfg.CGITimeout),
				c.cfg.Host,
				c.logger,
			)
			result, err := client.PTZ(ctx, args...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", result.Status, result.Summary)
			return nil
		},
	}
}

func serialPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serial-ports",
		Short: "List serial ports usable with --transport serial",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := serial.ListPorts()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no serial ports found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PORT\tUSB\tVID:PID\tPRODUCT")
			for _, p := range ports {
				id := ""
				if p.USB {
					id = p.VID + ":" + p.PID
				}
				fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", p.Name, p.USB, id, p.Product)
			}
			return w.Flush()
		},
	}
}
