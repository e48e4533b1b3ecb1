package controlapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
	"github.com/bft-labs/viscactl/pkg/viscactl"
)

// fakeController implements Controller for handler tests.
type fakeController struct {
	mu      sync.Mutex
	state   viscactl.State
	cmds    []visca.Command
	cursor  int
	sendErr error
	sent    []int
	stopped chan struct{}
}

func newFakeController() *fakeController {
	return &fakeController{
		state:   viscactl.StateRunning,
		cmds:    visca.DefaultTable(1),
		cursor:  1,
		stopped: make(chan struct{}),
	}
}

func (f *fakeController) Status() viscactl.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
func (f *fakeController) Connected() bool           { return f.Status() == viscactl.StateRunning }
func (f *fakeController) Addr() string              { return "10.0.0.5:5678" }
func (f *fakeController) Cursor() int               { return f.cursor }
func (f *fakeController) Commands() []visca.Command { return f.cmds }

func (f *fakeController) SendOnce(ctx context.Context, index int) (viscactl.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.cmds) {
		return viscactl.Report{}, &viscactl.IndexError{Index: index, Len: len(f.cmds)}
	}
	f.sent = append(f.sent, index)
	return viscactl.Report{Label: f.cmds[index].Label(), Index: index, Source: viscactl.SourceManual}, f.sendErr
}

func (f *fakeController) Stop() error {
	f.mu.Lock()
	f.state = viscactl.StateStopped
	f.mu.Unlock()
	close(f.stopped)
	return nil
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := do(t, NewRouter(newFakeController(), log.NewNoopLogger()), http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_Status(t *testing.T) {
	rec := do(t, NewRouter(newFakeController(), log.NewNoopLogger()), http.MethodGet, "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.State != "Running" || !got.Connected || got.Cursor != 1 || got.Commands != 4 {
		t.Errorf("status = %+v", got)
	}
}

func TestRouter_Commands(t *testing.T) {
	rec := do(t, NewRouter(newFakeController(), log.NewNoopLogger()), http.MethodGet, "/commands")

	var got struct {
		Commands []CommandInfo `json:"commands"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Commands) != 4 {
		t.Fatalf("got %d commands, want 4", len(got.Commands))
	}
	if got.Commands[0].Label != "Pan Left" || got.Commands[0].Frame != "81 01 06 01 08 08 01 03 FF" {
		t.Errorf("command 0 = %+v", got.Commands[0])
	}
	if !got.Commands[1].Next || got.Commands[0].Next {
		t.Error("next marker not on the cursor entry")
	}
}

func TestRouter_Send(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		sendErr error
		want    int
	}{
		{"ok", "/commands/2/send", nil, http.StatusOK},
		{"not a number", "/commands/two/send", nil, http.StatusBadRequest},
		{"out of range", "/commands/9/send", nil, http.StatusNotFound},
		{"not connected", "/commands/0/send", fmt.Errorf("send: %w", viscactl.ErrNotConnected), http.StatusServiceUnavailable},
		{"other failure", "/commands/0/send", fmt.Errorf("boom"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newFakeController()
			ctrl.sendErr = tt.sendErr
			rec := do(t, NewRouter(ctrl, log.NewNoopLogger()), http.MethodPost, tt.path)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRouter_SendReturnsReport(t *testing.T) {
	ctrl := newFakeController()
	rec := do(t, NewRouter(ctrl, log.NewNoopLogger()), http.MethodPost, "/commands/2/send")

	var r viscactl.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Label != "Pan Right" || r.Source != viscactl.SourceManual {
		t.Errorf("report = %+v", r)
	}
	if len(ctrl.sent) != 1 || ctrl.sent[0] != 2 {
		t.Errorf("sent = %v, want [2]", ctrl.sent)
	}
}

func TestRouter_StopIsAsync(t *testing.T) {
	ctrl := newFakeController()
	rec := do(t, NewRouter(ctrl, log.NewNoopLogger()), http.MethodPost, "/stop")
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}

	select {
	case <-ctrl.stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop was not called")
	}
}

func TestPlugin_ServesAndShutsDown(t *testing.T) {
	ctrl, err := viscactl.New(viscactl.Config{Host: "127.0.0.1"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	plugin := New(Config{Addr: "127.0.0.1:0"})
	if err := plugin.Initialize(context.Background(), viscactl.PluginConfig{Controller: ctrl}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	resp, err := http.Get("http://" + plugin.Addr() + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if err := plugin.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if plugin.Addr() != "" {
		t.Error("still listening after Shutdown")
	}
}

func TestPlugin_DisabledWithoutAddr(t *testing.T) {
	plugin := New(Config{})
	if err := plugin.Initialize(context.Background(), viscactl.PluginConfig{}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := plugin.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestPlugin_Name(t *testing.T) {
	if New(Config{}).Name() != "controlapi" {
		t.Errorf("Name() = %v, want controlapi", New(Config{}).Name())
	}
}
