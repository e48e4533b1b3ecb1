// Package visca encodes and classifies VISCA frames for pan-tilt-zoom cameras.
//
// A VISCA frame starts with an address byte (0x80 | camera address for
// commands, 0x90 for replies from camera 1) and ends with the terminator
// 0xFF. This package has no I/O: it validates command frames at
// construction time and classifies reply buffers by their leading bytes.
//
// # Commands
//
// Build commands from raw bytes or with the helpers:
//
//	cmd, err := visca.NewCommand("Home", []byte{0x81, 0x01, 0x06, 0x04, 0xFF})
//	left := visca.PanTiltDrive(1, visca.Left, 0x08, 0x08)
//
// [Encode] returns the frame bytes verbatim. All validation happens in
// [NewCommand].
//
// # Replies
//
// [Classify] maps a reply buffer to one of [ReplyAck], [ReplyCompletion],
// [ReplyError] or [ReplyUnrecognized]. [NoResponse] represents a reply
// window that elapsed without data. [ClassifySocket] accepts replies on any
// socket (90 4Y FF, 90 5Y FF, 90 6Y code FF) and reports the socket number.
//
//	r := visca.Classify([]byte{0x90, 0x60, 0x02, 0xFF})
//	fmt.Println(r.Message) // Syntax error
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package visca
