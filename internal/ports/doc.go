// Package ports defines the interfaces that connect the application layer
// to infrastructure adapters.
//
//   - [Dialer]: opens the byte stream to a camera (TCP, serial)
//   - [ReportSink]: receives one report per dispatched command
//   - [CommandSource]: loads a command table from outside the binary
//   - [PresetRepository]: persists captured preset positions
//   - [HTTPClient]: HTTP request abstraction for the CGI client
//
// The application layer (internal/app) depends only on these interfaces and
// on pkg/log. Adapters under internal/adapters implement them.
package ports
