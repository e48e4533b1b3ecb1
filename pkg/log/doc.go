// Package log provides the structured logging abstraction used by viscactl.
//
// Components depend on the Logger interface only. ZerologAdapter backs it
// with zerolog for the CLI; NoopLogger discards everything and is the
// default for embedded controllers and tests.
//
//	logger := log.NewConsoleLogger(os.Stderr, "debug", false)
//	logger.Info("connected", log.String("addr", "10.0.0.5:5678"))
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package log
