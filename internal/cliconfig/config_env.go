package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (VISCACTL_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("VISCACTL_HOST"), &cfg.Host)
	s.setString("transport", os.Getenv("VISCACTL_TRANSPORT"), &cfg.Transport)
	s.setString("serial-device", os.Getenv("VISCACTL_SERIAL_DEVICE"), &cfg.SerialDevice)
	s.setString("table", os.Getenv("VISCACTL_TABLE_FILE"), &cfg.TableFile)
	s.setString("control-addr", os.Getenv("VISCACTL_CONTROL_ADDR"), &cfg.ControlAddr)
	s.setString("mqtt-broker", os.Getenv("VISCACTL_MQTT_BROKER"), &cfg.MQTTBroker)
	s.setString("mqtt-topic", os.Getenv("VISCACTL_MQTT_TOPIC"), &cfg.MQTTTopic)
	s.setString("mqtt-client-id", os.Getenv("VISCACTL_MQTT_CLIENT_ID"), &cfg.MQTTClientID)
	s.setString("cgi-user", os.Getenv("VISCACTL_CGI_USER"), &cfg.CGIUser)
	s.setString("cgi-password", os.Getenv("VISCACTL_CGI_PASSWORD"), &cfg.CGIPassword)
	s.setString("preset-file", os.Getenv("VISCACTL_PRESET_FILE"), &cfg.PresetFile)
	s.setString("log-level", os.Getenv("VISCACTL_LOG_LEVEL"), &cfg.LogLevel)

	ints := []struct {
		flag, env string
		dst       *int
	}{
		{"port", "VISCACTL_PORT", &cfg.Port},
		{"baud", "VISCACTL_BAUD_RATE", &cfg.BaudRate},
		{"camera-address", "VISCACTL_CAMERA_ADDRESS", &cfg.CameraAddress},
		{"mqtt-qos", "VISCACTL_MQTT_QOS", &cfg.MQTTQoS},
	}
	for _, v := range ints {
		if err := s.setIntFromString(v.flag, os.Getenv(v.env), v.dst); err != nil {
			return err
		}
	}

	if err := s.setDuration("period", os.Getenv("VISCACTL_PERIOD"), &cfg.Period); err != nil {
		return err
	}
	if err := s.setDuration("connect-timeout", os.Getenv("VISCACTL_CONNECT_TIMEOUT"), &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("response-timeout", os.Getenv("VISCACTL_RESPONSE_TIMEOUT"), &cfg.ResponseTimeout); err != nil {
		return err
	}
	if err := s.setDuration("cgi-timeout", os.Getenv("VISCACTL_CGI_TIMEOUT"), &cfg.CGITimeout); err != nil {
		return err
	}

	s.setBoolFromString("watch-table", os.Getenv("VISCACTL_WATCH_TABLE"), &cfg.WatchTable)
	s.setBoolFromString("log-json", os.Getenv("VISCACTL_LOG_JSON"), &cfg.LogJSON)

	return nil
}
