// Package serial implements ports.Dialer over an RS-232/RS-422 VISCA link.
package serial

import (
	"context"
	"fmt"
	"io"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// DefaultBaudRate is the VISCA serial default.
const DefaultBaudRate = 9600

// Dialer opens a serial port as a camera connection.
type Dialer struct {
	device string
	mode   *serial.Mode
	open   func(name string, mode *serial.Mode) (serial.Port, error)
}

// NewDialer creates a dialer for device at baud (8N1).
func NewDialer(device string, baud int) *Dialer {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &Dialer{
		device: device,
		mode: &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		open: serial.Open,
	}
}

// Dial opens the port. Opening is not cancellable; if ctx ends first the
// port is closed as soon as the open returns.
func (d *Dialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	type result struct {
		port serial.Port
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := d.open(d.device, d.mode)
		ch <- result{p, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("open %s: %w", d.device, r.err)
		}
		// Stale bytes from a previous session would be read as replies.
		_ = r.port.ResetInputBuffer()
		return r.port, nil
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.err == nil {
				_ = r.port.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// Addr returns the device path and line settings.
func (d *Dialer) Addr() string {
	return fmt.Sprintf("%s@%d", d.device, d.mode.BaudRate)
}

// PortInfo describes a serial port found on the host.
type PortInfo struct {
	Name         string
	USB          bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// ListPorts returns the serial ports present on the host.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, p := range details {
		ports = append(ports, PortInfo{
			Name:         p.Name,
			USB:          p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
			Product:      p.Product,
		})
	}
	return ports, nil
}
