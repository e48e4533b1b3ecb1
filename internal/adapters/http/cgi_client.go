package http

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/icholy/digest"

	"github.com/bft-labs/viscactl/internal/ports"
	"github.com/bft-labs/viscactl/pkg/log"
)

const ptzCtrlPath = "/cgi-bin/ptzctrl.cgi"

// DefaultCGITimeout bounds a single CGI request.
const DefaultCGITimeout = 10 * time.Second

// ErrUnauthorized is returned when the camera rejects the credentials.
var ErrUnauthorized = errors.New("camera rejected credentials")

// NewDigestClient returns an HTTP client that answers digest challenges.
// Empty credentials give a plain client.
func NewDigestClient(username, password string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultCGITimeout
	}
	c := &http.Client{Timeout: timeout}
	if username != "" || password != "" {
		c.Transport = &digest.Transport{Username: username, Password: password}
	}
	return c
}

// CGIResult is the outcome of one CGI command.
type CGIResult struct {
	URL    string
	Status int
	// Summary is the first line of the response body, truncated.
	Summary string
}

// CGIClient sends PTZ commands over the camera's HTTP-CGI interface.
type CGIClient struct {
	client ports.HTTPClient
	host   string
	logger log.Logger
}

// NewCGIClient creates a CGI client for host (host or host:port).
func NewCGIClient(client ports.HTTPClient, host string, logger log.Logger) *CGIClient {
	return &CGIClient{client: client, host: host, logger: logger}
}

// CommandURL builds /cgi-bin/ptzctrl.cgi?ptzcmd&<args...>.
func (c *CGIClient) CommandURL(args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, "ptzcmd")
	for _, a := range args {
		parts = append(parts, url.QueryEscape(a))
	}
	u := url.URL{
		Scheme:   "http",
		Host:     c.host,
		Path:     ptzCtrlPath,
		RawQuery: strings.Join(parts, "&"),
	}
	return u.String()
}

// PTZ sends one ptzctrl command, e.g. PTZ(ctx, "left", "12", "10").
func (c *CGIClient) PTZ(ctx context.Context, args ...string) (CGIResult, error) {
	target := c.CommandURL(args...)
	result := CGIResult{URL: target}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return result, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return result, fmt.Errorf("%w: %s", ErrUnauthorized, c.host)
	case resp.StatusCode/100 != 2:
		return result, fmt.Errorf("camera returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	result.Summary = firstLine(string(body))
	c.logger.Debug("cgi command sent",
		log.String("url", target),
		log.Int("status", resp.StatusCode),
	)
	return result, nil
}

// Ping sends a stop, the cheapest command every camera accepts.
func (c *CGIClient) Ping(ctx context.Context) error {
	_, err := c.PTZ(ctx, "ptzstop", "0", "0")
	return err
}

func firstLine(s string) string {
	sc := bufio.NewScanner(strings.NewReader(strings.TrimSpace(s)))
	if sc.Scan() {
		return truncate(sc.Text(), 100)
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
