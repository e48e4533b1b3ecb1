package serial

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.bug.st/serial"
)

func TestNewDialer_Defaults(t *testing.T) {
	d := NewDialer("/dev/ttyUSB0", 0)

	if d.mode.BaudRate != DefaultBaudRate {
		t.Errorf("BaudRate = %d, want %d", d.mode.BaudRate, DefaultBaudRate)
	}
	if d.mode.DataBits != 8 || d.mode.Parity != serial.NoParity || d.mode.StopBits != serial.OneStopBit {
		t.Errorf("mode = %+v, want 8N1", d.mode)
	}
	if got := d.Addr(); got != "/dev/ttyUSB0@9600" {
		t.Errorf("Addr() = %s", got)
	}
}

func TestDialer_OpenError(t *testing.T) {
	d := NewDialer("/dev/nope", 38400)
	openErr := &serial.PortError{}
	d.open = func(string, *serial.Mode) (serial.Port, error) { return nil, openErr }

	_, err := d.Dial(context.Background())
	if !errors.Is(err, openErr) {
		t.Errorf("Dial() error = %v, want wrapped open error", err)
	}
}

func TestDialer_DialTimeout(t *testing.T) {
	d := NewDialer("/dev/slow", 9600)
	release := make(chan struct{})
	d.open = func(string, *serial.Mode) (serial.Port, error) {
		<-release
		return nil, errors.New("late")
	}
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := d.Dial(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Dial() error = %v, want DeadlineExceeded", err)
	}
}
