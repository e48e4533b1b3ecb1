package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Transport       string `toml:"transport"`
	SerialDevice    string `toml:"serial_device"`
	BaudRate        int    `toml:"baud_rate"`
	CameraAddress   int    `toml:"camera_address"`
	Period          string `toml:"period"`
	ConnectTimeout  string `toml:"connect_timeout"`
	ResponseTimeout string `toml:"response_timeout"`

	TableFile   string `toml:"table_file"`
	WatchTable  *bool  `toml:"watch_table"`
	ControlAddr string `toml:"control_addr"`

	MQTTBroker   string `toml:"mqtt_broker"`
	MQTTTopic    string `toml:"mqtt_topic"`
	MQTTClientID string `toml:"mqtt_client_id"`
	MQTTQoS      *int   `toml:"mqtt_qos"`

	CGIUser     string `toml:"cgi_user"`
	CGIPassword string `toml:"cgi_password"`
	CGITimeout  string `toml:"cgi_timeout"`

	PresetFile   string `toml:"preset_file"`
	PresetFrom   int    `toml:"preset_from"`
	PresetTo     int    `toml:"preset_to"`
	PresetSettle string `toml:"preset_settle"`
	CaptureFocus *bool  `toml:"capture_focus"`

	LogLevel string `toml:"log_level"`
	LogJSON  *bool  `toml:"log_json"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.viscactl/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".viscactl", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setString("transport", fc.Transport, &cfg.Transport)
	s.setString("serial-device", fc.SerialDevice, &cfg.SerialDevice)
	s.setString("table", fc.TableFile, &cfg.TableFile)
	s.setString("control-addr", fc.ControlAddr, &cfg.ControlAddr)
	s.setString("mqtt-broker", fc.MQTTBroker, &cfg.MQTTBroker)
	s.setString("mqtt-topic", fc.MQTTTopic, &cfg.MQTTTopic)
	s.setString("mqtt-client-id", fc.MQTTClientID, &cfg.MQTTClientID)
	s.setString("cgi-user", fc.CGIUser, &cfg.CGIUser)
	s.setString("cgi-password", fc.CGIPassword, &cfg.CGIPassword)
	s.setString("preset-file", fc.PresetFile, &cfg.PresetFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("port", fc.Port, &cfg.Port)
	s.setInt("baud", fc.BaudRate, &cfg.BaudRate)
	s.setInt("camera-address", fc.CameraAddress, &cfg.CameraAddress)
	s.setInt("from", fc.PresetFrom, &cfg.PresetFrom)
	s.setInt("to", fc.PresetTo, &cfg.PresetTo)
	if fc.MQTTQoS != nil && !changed["mqtt-qos"] {
		cfg.MQTTQoS = *fc.MQTTQoS
	}

	if err := s.setDuration("period", fc.Period, &cfg.Period); err != nil {
		return err
	}
	if err := s.setDuration("connect-timeout", fc.ConnectTimeout, &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("response-timeout", fc.ResponseTimeout, &cfg.ResponseTimeout); err != nil {
		return err
	}
	if err := s.setDuration("cgi-timeout", fc.CGITimeout, &cfg.CGITimeout); err != nil {
		return err
	}
	if err := s.setDuration("settle", fc.PresetSettle, &cfg.PresetSettle); err != nil {
		return err
	}

	s.setBool("watch-table", fc.WatchTable, &cfg.WatchTable)
	s.setBool("focus", fc.CaptureFocus, &cfg.CaptureFocus)
	s.setBool("log-json", fc.LogJSON, &cfg.LogJSON)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
