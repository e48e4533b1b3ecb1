package visca

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Wire constants.
const (
	// DefaultPort is the TCP port PTZ cameras listen on for VISCA over IP.
	DefaultPort = 5678

	// Terminator ends every VISCA frame.
	Terminator byte = 0xFF

	// CommandHeader is OR-ed with the camera address to start a command.
	CommandHeader byte = 0x80

	// ReplyStart is the first byte of replies from camera 1.
	ReplyStart byte = 0x90

	// MinFrameLen is the shortest valid frame: header, one payload byte, terminator.
	MinFrameLen = 3
)

// ErrInvalidFrame is returned when a frame violates the VISCA framing rules.
var ErrInvalidFrame = errors.New("visca: invalid frame")

// Command is an immutable VISCA command frame with a human-readable label.
// The zero value is not a valid command; use NewCommand.
type Command struct {
	label string
	frame []byte
}

// NewCommand validates frame and returns a Command holding a private copy.
// The frame must be at least MinFrameLen bytes, start with 0x8X and end
// with the terminator.
func NewCommand(label string, frame []byte) (Command, error) {
	if err := ValidateFrame(frame); err != nil {
		return Command{}, err
	}
	buf := make([]byte, len(frame))
	copy(buf, frame)
	return Command{label: label, frame: buf}, nil
}

// MustCommand is like NewCommand but panics on an invalid frame.
// Intended for package-level command tables built from literals.
func MustCommand(label string, frame []byte) Command {
	c, err := NewCommand(label, frame)
	if err != nil {
		panic(err)
	}
	return c
}

// ValidateFrame checks the VISCA framing rules for an outbound command.
func ValidateFrame(frame []byte) error {
	switch {
	case len(frame) == 0:
		return fmt.Errorf("%w: empty", ErrInvalidFrame)
	case len(frame) < MinFrameLen:
		return fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidFrame, len(frame), MinFrameLen)
	case frame[0]&0xF0 != CommandHeader:
		return fmt.Errorf("%w: header 0x%02X is not 0x8X", ErrInvalidFrame, frame[0])
	case frame[len(frame)-1] != Terminator:
		return fmt.Errorf("%w: last byte 0x%02X is not the terminator", ErrInvalidFrame, frame[len(frame)-1])
	}
	return nil
}

// Label returns the command's display name.
func (c Command) Label() string { return c.label }

// Address returns the camera address encoded in the header byte.
func (c Command) Address() byte {
	if len(c.frame) == 0 {
		return 0
	}
	return c.frame[0] & 0x0F
}

// Bytes returns a copy of the frame.
func (c Command) Bytes() []byte {
	buf := make([]byte, len(c.frame))
	copy(buf, c.frame)
	return buf
}

// Len returns the frame length in bytes.
func (c Command) Len() int { return len(c.frame) }

// Hex returns the frame formatted as upper-case space-separated hex.
func (c Command) Hex() string { return Hex(c.frame) }

// Valid reports whether the command was built through NewCommand.
func (c Command) Valid() bool { return ValidateFrame(c.frame) == nil }

// String implements fmt.Stringer.
func (c Command) String() string {
	return fmt.Sprintf("%s [%s]", c.label, c.Hex())
}

// Encode returns the wire bytes for c. Framing was validated when c was
// built, so this is the identity on the frame.
func Encode(c Command) []byte {
	return c.Bytes()
}

// Hex formats b as "81 01 06 04 FF".
func Hex(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", v)
	}
	return sb.String()
}

// ParseHex parses a hex byte string. Spaces, commas, colons and "0x"
// prefixes are ignored, so "81 01 06 04 FF", "0x81,0x01,0x06,0x04,0xFF" and
// "81010604FF" are equivalent.
func ParseHex(s string) ([]byte, error) {
	r := strings.NewReplacer("0x", "", "0X", "", " ", "", ",", "", ":", "", "\t", "")
	clean := r.Replace(strings.TrimSpace(s))
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("parse hex %q: %w", s, err)
	}
	return b, nil
}
