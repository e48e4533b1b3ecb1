package visca

import (
	"errors"
	"fmt"
)

// Inquiry reply lengths: y0 50 + nibbles + FF.
const (
	panTiltReplyLen = 11
	positionReply   = 7
)

// ErrInquiryReply is returned when an inquiry reply has the wrong shape.
var ErrInquiryReply = errors.New("visca: malformed inquiry reply")

// DecodePanTiltPosition parses y0 50 0p 0q 0r 0s 0t 0u 0v 0w FF.
func DecodePanTiltPosition(buf []byte) (pan, tilt uint16, err error) {
	if err := checkInquiry(buf, panTiltReplyLen); err != nil {
		return 0, 0, err
	}
	return packNibbles(buf[2:6]), packNibbles(buf[6:10]), nil
}

// DecodeZoomPosition parses y0 50 0p 0q 0r 0s FF.
func DecodeZoomPosition(buf []byte) (uint16, error) {
	if err := checkInquiry(buf, positionReply); err != nil {
		return 0, err
	}
	return packNibbles(buf[2:6]), nil
}

// DecodeFocusPosition parses y0 50 0p 0q 0r 0s FF.
func DecodeFocusPosition(buf []byte) (uint16, error) {
	return DecodeZoomPosition(buf)
}

func checkInquiry(buf []byte, n int) error {
	if len(buf) < n {
		return fmt.Errorf("%w: %d bytes, want %d", ErrInquiryReply, len(buf), n)
	}
	if buf[0]&0xF0 != ReplyStart&0xF0 || buf[1] != msgInquiry {
		return fmt.Errorf("%w: header % X", ErrInquiryReply, buf[:2])
	}
	if buf[n-1] != Terminator {
		return fmt.Errorf("%w: missing terminator", ErrInquiryReply)
	}
	return nil
}

func packNibbles(b []byte) uint16 {
	var v uint16
	for _, n := range b {
		v = v<<4 | uint16(n&0x0F)
	}
	return v
}
