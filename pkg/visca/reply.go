package visca

import "fmt"

// ReplyKind classifies a camera reply.
type ReplyKind int

const (
	ReplyUnrecognized ReplyKind = iota
	ReplyAck
	ReplyCompletion
	ReplyError
	ReplyNone
)

// String returns a human-readable representation of the kind.
func (k ReplyKind) String() string {
	switch k {
	case ReplyAck:
		return "Ack"
	case ReplyCompletion:
		return "Completion"
	case ReplyError:
		return "Error"
	case ReplyNone:
		return "NoResponse"
	default:
		return "Unrecognized"
	}
}

// MarshalText lets reports carry the kind as a readable string.
func (k ReplyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Second byte of the replies Classify recognizes.
const (
	msgAck        byte = 0x41
	msgCompletion byte = 0x51
	msgError      byte = 0x60
	msgInquiry    byte = 0x50
)

// Message type nibbles matched by ClassifySocket.
const (
	typeAck        byte = 0x40
	typeCompletion byte = 0x50
	typeError      byte = 0x60
)

// Error codes carried in the third byte of an error reply.
const (
	ErrCodeSyntax        byte = 0x02
	ErrCodeBufferFull    byte = 0x03
	ErrCodeCancelled     byte = 0x04
	ErrCodeNoSocket      byte = 0x05
	ErrCodeNotExecutable byte = 0x41
)

var errorMessages = map[byte]string{
	ErrCodeSyntax:        "Syntax error",
	ErrCodeBufferFull:    "Command buffer full",
	ErrCodeCancelled:     "Command cancelled",
	ErrCodeNoSocket:      "No socket",
	ErrCodeNotExecutable: "Command not executable",
}

// ErrorMessage returns the text for a VISCA error code.
// Unknown codes render as "Unknown error: 0xNN".
func ErrorMessage(code byte) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Unknown error: 0x%02X", code)
}

// Reply is the classification of one inbound buffer.
type Reply struct {
	Kind ReplyKind `json:"kind"`

	// Socket is the low nibble of the message byte. Only ClassifySocket sets it.
	Socket byte `json:"socket,omitempty"`

	// Code and Message are set for ReplyError.
	Code    byte   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// NoResponse is the classification used when the reply window elapses
// without data.
func NoResponse() Reply {
	return Reply{Kind: ReplyNone}
}

// Classify inspects the leading bytes of buf. It never fails: buffers that
// are shorter than MinFrameLen, do not start with ReplyStart or carry any
// second byte other than 0x41, 0x51 or 0x60 are ReplyUnrecognized.
func Classify(buf []byte) Reply {
	if len(buf) < MinFrameLen || buf[0] != ReplyStart {
		return Reply{Kind: ReplyUnrecognized}
	}

	switch buf[1] {
	case msgAck:
		return Reply{Kind: ReplyAck}
	case msgCompletion:
		return Reply{Kind: ReplyCompletion}
	case msgError:
		code := buf[2]
		return Reply{Kind: ReplyError, Code: code, Message: ErrorMessage(code)}
	default:
		return Reply{Kind: ReplyUnrecognized}
	}
}

// ClassifySocket is like Classify but matches the message type on the high
// nibble of the second byte and reports the low nibble as Socket, so
// 90 42 FF is an Ack on socket 2 and 90 61 41 FF an error on socket 1.
func ClassifySocket(buf []byte) Reply {
	if len(buf) < MinFrameLen || buf[0] != ReplyStart {
		return Reply{Kind: ReplyUnrecognized}
	}

	socket := buf[1] & 0x0F
	switch buf[1] & 0xF0 {
	case typeAck:
		return Reply{Kind: ReplyAck, Socket: socket}
	case typeCompletion:
		return Reply{Kind: ReplyCompletion, Socket: socket}
	case typeError:
		code := buf[2]
		return Reply{Kind: ReplyError, Socket: socket, Code: code, Message: ErrorMessage(code)}
	default:
		return Reply{Kind: ReplyUnrecognized}
	}
}

// OK reports whether the reply is an Ack or a Completion.
func (r Reply) OK() bool {
	return r.Kind == ReplyAck || r.Kind == ReplyCompletion
}

// String implements fmt.Stringer.
func (r Reply) String() string {
	if r.Kind == ReplyError {
		return fmt.Sprintf("Error(%s)", r.Message)
	}
	return r.Kind.String()
}
