package viscactl

import (
	"fmt"
	"time"

	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/pkg/visca"
)

// Transport selects how the controller reaches the camera.
type Transport string

const (
	TransportTCP    Transport = "tcp"
	TransportSerial Transport = "serial"
)

// Default configuration values.
const (
	DefaultPort            = visca.DefaultPort
	DefaultBaudRate        = 9600
	DefaultCameraAddress   = 1
	DefaultPeriod          = 5 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
	DefaultResponseTimeout = 2 * time.Second
)

// Config holds controller settings.
type Config struct {
	// Host is the camera address for TCP. Required unless Transport is serial.
	Host string
	Port int

	Transport    Transport
	SerialDevice string
	BaudRate     int

	// CameraAddress is the VISCA device address (1-7) used by the built-in table.
	CameraAddress int

	// Period is the interval between scheduled dispatches.
	Period time.Duration

	// ConnectTimeout bounds connection setup.
	ConnectTimeout time.Duration

	// ResponseTimeout bounds the wait for a reply. Must be shorter than Period.
	ResponseTimeout time.Duration
}

// SetDefaults fills zero fields with defaults.
func (c *Config) SetDefaults() {
	if c.Transport == "" {
		c.Transport = TransportTCP
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.CameraAddress == 0 {
		c.CameraAddress = DefaultCameraAddress
	}
	if c.Period == 0 {
		c.Period = DefaultPeriod
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ResponseTimeout == 0 {
		c.ResponseTimeout = DefaultResponseTimeout
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportTCP:
		if c.Host == "" {
			return fmt.Errorf("%w: host is required for tcp", domain.ErrInvalidConfig)
		}
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidConfig, c.Port)
		}
	case TransportSerial:
		if c.SerialDevice == "" {
			return fmt.Errorf("%w: serial device is required", domain.ErrInvalidConfig)
		}
		if c.BaudRate <= 0 {
			return fmt.Errorf("%w: baud rate must be positive", domain.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", domain.ErrInvalidConfig, c.Transport)
	}

	if c.CameraAddress < 1 || c.CameraAddress > 7 {
		return fmt.Errorf("%w: camera address %d not in 1-7", domain.ErrInvalidConfig, c.CameraAddress)
	}
	if c.Period <= 0 {
		return fmt.Errorf("%w: period must be positive", domain.ErrInvalidConfig)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.ResponseTimeout <= 0 || c.ResponseTimeout >= c.Period {
		return fmt.Errorf("%w: response timeout %s must be positive and shorter than period %s",
			domain.ErrInvalidConfig, c.ResponseTimeout, c.Period)
	}
	return nil
}
