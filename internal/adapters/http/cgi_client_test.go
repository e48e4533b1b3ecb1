package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/viscactl/pkg/log"
)

// digestCamera challenges unauthenticated requests and records queries.
func digestCamera(t *testing.T, queries chan<- string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Digest ") {
			w.Header().Set("WWW-Authenticate", `Digest realm="camera", nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", qop="auth", algorithm=MD5`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.Contains(auth, `username="admin"`) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != ptzCtrlPath {
			http.NotFound(w, r)
			return
		}
		queries <- r.URL.RawQuery
		_, _ = w.Write([]byte("OK\nsecond line\n"))
	}))
}

func TestCGIClient_CommandURL(t *testing.T) {
	c := NewCGIClient(http.DefaultClient, "192.168.1.50", log.NewNoopLogger())

	got := c.CommandURL("left", "12", "10")
	want := "http://192.168.1.50/cgi-bin/ptzctrl.cgi?ptzcmd&left&12&10"
	if got != want {
		t.Errorf("CommandURL() = %s, want %s", got, want)
	}
}

func TestCGIClient_DigestAuth(t *testing.T) {
	queries := make(chan string, 4)
	srv := digestCamera(t, queries)
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	c := NewCGIClient(NewDigestClient("admin", "admin1", time.Second), host, log.NewNoopLogger())

	res, err := c.PTZ(context.Background(), "right", "12", "10")
	if err != nil {
		t.Fatalf("PTZ() error = %v", err)
	}
	if res.Status != http.StatusOK || res.Summary != "OK" {
		t.Errorf("result = %+v", res)
	}
	if q := <-queries; q != "ptzcmd&right&12&10" {
		t.Errorf("query = %s", q)
	}
}

func TestCGIClient_Unauthorized(t *testing.T) {
	srv := digestCamera(t, make(chan string, 1))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	c := NewCGIClient(NewDigestClient("guest", "nope", time.Second), host, log.NewNoopLogger())

	if err := c.Ping(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Ping() error = %v, want ErrUnauthorized", err)
	}
}

func TestCGIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	c := NewCGIClient(NewDigestClient("", "", time.Second), host, log.NewNoopLogger())

	res, err := c.PTZ(context.Background(), "home")
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("PTZ() error = %v, want 503", err)
	}
	if res.Status != http.StatusServiceUnavailable {
		t.Errorf("Status = %d", res.Status)
	}
}
