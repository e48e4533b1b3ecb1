// Package viscactl provides an embeddable controller for PTZ cameras that
// speak VISCA over IP (or a serial line).
//
// A Controller connects to one camera, then cycles through a table of VISCA
// commands, sending one per period and reporting the camera's reply.
//
// # Basic Usage
//
//	cfg := viscactl.Config{Host: "192.168.1.100"}
//
//	ctrl, err := viscactl.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := ctrl.Start(ctx); err != nil {
//	    log.Fatal(err) // could not connect
//	}
//
//	// ... run until shutdown signal ...
//
//	_ = ctrl.Stop()
//
// # Command Table
//
// The built-in table is pan left, stop, pan right, stop. Replace it with
// [WithCommands] or at runtime with [Controller.ReplaceCommands]. The first
// command is sent as soon as Start succeeds; each later tick sends the next
// one, wrapping at the end. [Controller.SendOnce] sends any entry on demand
// without moving the cursor.
//
// # Replies
//
// The first buffer the camera sends after a command is classified as Ack,
// Completion or Error (with the camera's error message). No reply within
// Config.ResponseTimeout is reported as NoResponse, which is not a failure.
// Anything the camera sends while no command is waiting goes to the
// unsolicited handler and is never attributed to a later command.
//
// # Events and Reports
//
// Implement [EventHandler] (embed [BaseEventHandler] for defaults) and pass
// it via [WithEventHandler] to observe state changes, dispatch reports and
// connection loss. Additional report consumers are added with
// [WithReportSink].
//
// # Lifecycle States
//
// A Controller is in one of [StateIdle], [StateStarting], [StateRunning],
// [StateStopping] or [StateStopped]. A failed connect returns it to Idle; a
// stopped controller may be started again. If the camera closes the
// connection the controller stops itself; there is no automatic reconnect.
//
// # Plugins
//
// Plugins are started after the connection is up:
//
//	import "github.com/bft-labs/viscactl/plugins/tablewatcher"
//	import "github.com/bft-labs/viscactl/plugins/controlapi"
//
//	ctrl, err := viscactl.New(cfg,
//	    tablewatcher.WithTableWatcher(tablewatcher.Config{Path: "table.yaml"}),
//	    controlapi.WithControlAPI(controlapi.Config{Addr: ":8080"}),
//	)
package viscactl
