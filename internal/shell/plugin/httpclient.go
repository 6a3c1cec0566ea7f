package plugin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/scribeview/desktop/internal/shell"
)

// maxFetchBody caps how much of a response body Fetch will read.
const maxFetchBody = 4 << 20

// HTTPClient is the outbound HTTP capability. The launcher itself uses it
// for backend readiness and status queries.
type HTTPClient struct {
	client *http.Client
}

var _ Plugin = (*HTTPClient)(nil)

// NewHTTPClient creates the plugin with a per-request timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Name implements Plugin.
func (h *HTTPClient) Name() string { return "http" }

// Register implements Plugin.
func (h *HTTPClient) Register(host shell.Host) error { return nil }

// Client returns the underlying HTTP client.
func (h *HTTPClient) Client() *http.Client {
	return h.client
}

// Fetch performs a GET and returns the status code and capped body.
func (h *HTTPClient) Fetch(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// FetchString performs a GET and extracts one value from a JSON body by
// gjson path, e.g. "info.version".
func (h *HTTPClient) FetchString(ctx context.Context, url, path string) (string, error) {
	_, body, err := h.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, path).String(), nil
}
