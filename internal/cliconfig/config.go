package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/viscactl/pkg/viscactl"
)

// Config holds CLI configuration for viscactl.
type Config struct {
	Host          string
	Port          int
	Transport     string
	SerialDevice  string
	BaudRate      int
	CameraAddress int

	Period          time.Duration
	ConnectTimeout  time.Duration
	ResponseTimeout time.Duration

	TableFile   string
	WatchTable  bool
	ControlAddr string

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
	MQTTQoS      int

	CGIUser     string
	CGIPassword string
	CGITimeout  time.Duration

	PresetFile   string
	PresetFrom   int
	PresetTo     int
	PresetSettle time.Duration
	CaptureFocus bool

	LogLevel string
	LogJSON  bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Port:            viscactl.DefaultPort,
		Transport:       string(viscactl.TransportTCP),
		BaudRate:        viscactl.DefaultBaudRate,
		CameraAddress:   viscactl.DefaultCameraAddress,
		Period:          viscactl.DefaultPeriod,
		ConnectTimeout:  viscactl.DefaultConnectTimeout,
		ResponseTimeout: viscactl.DefaultResponseTimeout,
		MQTTTopic:       "viscactl/reports",
		CGITimeout:      10 * time.Second,
		PresetFile:      "preset_positions.json",
		PresetFrom:      1,
		PresetTo:        254,
		PresetSettle:    10 * time.Second,
		LogLevel:        "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	c.Transport = strings.ToLower(c.Transport)
	if err := c.Controller().Validate(); err != nil {
		return err
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log level %q: want debug, info, warn or error", c.LogLevel)
	}
	if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	if c.WatchTable && c.TableFile == "" {
		return fmt.Errorf("watch-table requires --table")
	}
	return nil
}

// Controller converts the CLI configuration to a controller configuration.
func (c Config) Controller() viscactl.Config {
	return viscactl.Config{
		Host:            c.Host,
		Port:            c.Port,
		Transport:       viscactl.Transport(c.Transport),
		SerialDevice:    c.SerialDevice,
		BaudRate:        c.BaudRate,
		CameraAddress:   c.CameraAddress,
		Period:          c.Period,
		ConnectTimeout:  c.ConnectTimeout,
		ResponseTimeout: c.ResponseTimeout,
	}
}

// Masked returns a copy safe to log.
func (c Config) Masked() Config {
	if c.CGIPassword != "" {
		c.CGIPassword = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
// Zero is accepted so that values like QoS 0 can be set from the environment.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return fmt.Errorf("parse %s: negative value %d", flag, i)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
