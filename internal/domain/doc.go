// Package domain contains the core value types and errors of viscactl.
//
// It has no dependencies on infrastructure (sockets, files, logging).
//
//   - [Report]: the outcome of one dispatched command
//   - [Position] and [PresetSet]: captured preset positions
//   - [ConnectError], [SendError], [IndexError]: typed errors matched
//     against the package sentinels with errors.Is
package domain
