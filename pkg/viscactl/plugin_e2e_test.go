package viscactl_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/viscactl"
)

// testLogger implements viscactl.Logger for capturing log output in tests.
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, fields ...log.Field) { l.log("DEBUG", msg) }
func (l *testLogger) Info(msg string, fields ...log.Field)  { l.log("INFO", msg) }
func (l *testLogger) Warn(msg string, fields ...log.Field)  { l.log("WARN", msg) }
func (l *testLogger) Error(msg string, fields ...log.Field) { l.log("ERROR", msg) }

func (l *testLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("[%s] %s", level, msg))
}

func (l *testLogger) Contains(s string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if m == s {
			return true
		}
	}
	return false
}

// trackingPlugin records initialization and shutdown calls.
type trackingPlugin struct {
	name          string
	order         *[]string
	mu            *sync.Mutex
	initError     error
	shutdownError error
	sawController bool
}

func (p *trackingPlugin) Name() string { return p.name }

func (p *trackingPlugin) Initialize(ctx context.Context, cfg viscactl.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initError != nil {
		return p.initError
	}
	p.sawController = cfg.Controller != nil && cfg.Controller.Connected()
	*p.order = append(*p.order, "init:"+p.name)
	return nil
}

func (p *trackingPlugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.order = append(*p.order, "shutdown:"+p.name)
	return p.shutdownError
}

func TestPlugins_InitAndReverseShutdown(t *testing.T) {
	cam := newCamera(t)
	var mu sync.Mutex
	var order []string

	a := &trackingPlugin{name: "a", order: &order, mu: &mu}
	b := &trackingPlugin{name: "b", order: &order, mu: &mu, shutdownError: errors.New("flaky")}
	c := &trackingPlugin{name: "c", order: &order, mu: &mu}
	logger := &testLogger{}

	ctrl, err := viscactl.New(cam.config(),
		viscactl.WithLogger(logger),
		viscactl.WithPlugin(a),
		viscactl.WithPlugin(b),
		viscactl.WithPlugin(c),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := ctrl.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"init:a", "init:b", "init:c", "shutdown:c", "shutdown:b", "shutdown:a"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if !a.sawController {
		t.Error("plugin initialized before the connection was up")
	}
	if !logger.Contains("[ERROR] plugin shutdown failed") {
		t.Error("failed plugin shutdown was not logged")
	}
}

func TestPlugins_InitFailureAbortsStart(t *testing.T) {
	cam := newCamera(t)
	var mu sync.Mutex
	var order []string

	a := &trackingPlugin{name: "a", order: &order, mu: &mu}
	bad := &trackingPlugin{name: "bad", order: &order, mu: &mu, initError: errors.New("no port")}
	never := &trackingPlugin{name: "never", order: &order, mu: &mu}

	ctrl, _ := viscactl.New(cam.config(),
		viscactl.WithPlugin(a),
		viscactl.WithPlugin(bad),
		viscactl.WithPlugin(never),
	)

	err := ctrl.Start(context.Background())
	if err == nil {
		t.Fatal("Start() succeeded with a failing plugin")
	}
	if ctrl.Status() != viscactl.StateIdle {
		t.Errorf("state = %v, want Idle", ctrl.Status())
	}
	if ctrl.Connected() {
		t.Error("connection left open after plugin failure")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"init:a", "shutdown:a"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if n := len(cam.Frames()); n != 0 {
		t.Errorf("camera received %d frames although Start failed", n)
	}
}

func TestBasePlugin(t *testing.T) {
	p := viscactl.BasePlugin{PluginName: "noop"}
	if p.Name() != "noop" {
		t.Errorf("Name() = %s", p.Name())
	}
	if err := p.Initialize(context.Background(), viscactl.PluginConfig{}); err != nil {
		t.Errorf("Initialize() = %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}
