package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	zero := 0

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Host:       "10.0.0.5",
				Port:       52381,
				Period:     "2s",
				TableFile:  "table.yaml",
				WatchTable: &trueVal,
				MQTTQoS:    &zero,
			},
			changed: map[string]bool{},
			initial: Config{MQTTQoS: 1},
			expected: Config{
				Host:       "10.0.0.5",
				Port:       52381,
				Period:     2 * time.Second,
				TableFile:  "table.yaml",
				WatchTable: true,
				MQTTQoS:    0,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Host: "10.0.0.5",
				Port: 52381,
			},
			changed: map[string]bool{"host": true},
			initial: Config{Host: "flag-host"},
			expected: Config{
				Host: "flag-host",
				Port: 52381,
			},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{ResponseTimeout: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "ignores zero values",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    Config{Host: "keep", Port: 5678},
			expected:   Config{Host: "keep", Port: 5678},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `host = "192.168.1.100"
port = 5678
period = "5s"
table_file = "/etc/viscactl/table.yaml"
watch_table = true
mqtt_broker = "tcp://broker:1883"
log_json = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if fc.Host != "192.168.1.100" || fc.Port != 5678 || fc.Period != "5s" {
		t.Errorf("connection = %s:%d every %s", fc.Host, fc.Port, fc.Period)
	}
	if fc.WatchTable == nil || !*fc.WatchTable || fc.LogJSON == nil || !*fc.LogJSON {
		t.Error("bool pointers not decoded")
	}
	if fc.MQTTBroker != "tcp://broker:1883" {
		t.Errorf("MQTTBroker = %s", fc.MQTTBroker)
	}
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("host = [unterminated"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("LoadFileConfig() accepted invalid TOML")
	}
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadFileConfig() accepted a missing file")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	p := DefaultConfigPath()
	if p == "" {
		t.Skip("no home directory")
	}
	if !strings.HasSuffix(p, filepath.Join(".viscactl", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %s", p)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	if !FileExists(dir) {
		t.Error("FileExists(tempdir) = false")
	}
	if FileExists(filepath.Join(dir, "nope")) {
		t.Error("FileExists(missing) = true")
	}
}
