package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/bft-labs/viscactl/internal/cliconfig"
	"github.com/bft-labs/viscactl/pkg/log"
)

func newTestCLI(t *testing.T) (*cli, *cobra.Command) {
	t.Helper()
	c := &cli{
		cfg:     cliconfig.DefaultConfig(),
		cfgPath: filepath.Join(t.TempDir(), "absent.toml"),
		logger:  log.NewNoopLogger(),
	}
	root := &cobra.Command{Use: "viscactl", SilenceUsage: true, SilenceErrors: true}
	c.bindFlags(root.PersistentFlags())
	root.AddCommand(c.tableCommand(), c.sendCommand())
	return c, root
}

func TestTableCommand_DefaultTable(t *testing.T) {
	_, root := newTestCLI(t)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"table"})

	if err := root.Execute(); err != nil {
		t.Fatalf("table: %v", err)
	}
	for _, want := range []string{"Pan Left", "Stop Pan/Tilt", "Pan Right", "81 01 06 01 08 08 02 03 FF"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestTableCommand_YAMLRoundTrip(t *testing.T) {
	_, root := newTestCLI(t)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"table", "--yaml", "--camera-address", "2"})

	if err := root.Execute(); err != nil {
		t.Fatalf("table --yaml: %v", err)
	}

	path := filepath.Join(t.TempDir(), "table.yaml")
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, root = newTestCLI(t)
	out.Reset()
	root.SetOut(&out)
	root.SetArgs([]string{"table", "--table", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("table --table: %v", err)
	}
	if !strings.Contains(out.String(), "82 01 06 01") {
		t.Errorf("reloaded table lost the camera address:\n%s", out.String())
	}
}

func TestSendCommand_IndexOutOfRange(t *testing.T) {
	_, root := newTestCLI(t)
	root.SetArgs([]string{"send", "9", "--host", "127.0.0.1"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("send 9 error = %v, want out of range", err)
	}
}

func TestSendCommand_ConnectRefused(t *testing.T) {
	_, root := newTestCLI(t)
	root.SetArgs([]string{"send", "0", "--host", "127.0.0.1", "--port", "1", "--connect-timeout", "500ms"})

	if err := root.Execute(); err == nil {
		t.Error("send to a closed port succeeded")
	}
}
