package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// Info describes the backend as reported by its API schema.
type Info struct {
	Title   string
	Version string
}

// ReadyProbe polls the backend's HTTP port after launch. Any HTTP response
// counts as ready; the body is parsed best-effort for the API title and
// version. The probe never blocks the shell: callers log the outcome and
// move on.
type ReadyProbe struct {
	// BaseURL is the backend's HTTP base, e.g. http://127.0.0.1:8000.
	BaseURL string

	// Path is polled for readiness, e.g. /openapi.json.
	Path string

	// Interval between polls. Defaults to 200ms.
	Interval time.Duration

	// Timeout bounds the whole wait. Defaults to 15s.
	Timeout time.Duration

	// Client used for polls. Defaults to a short per-request timeout.
	Client *http.Client
}

// Wait blocks until the backend answers, the timeout passes, or the context
// is cancelled.
func (p *ReadyProbe) Wait(ctx context.Context) (Info, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := p.BaseURL + p.Path
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if info, ok := poll(ctx, client, url); ok {
			return info, nil
		}
		select {
		case <-ctx.Done():
			return Info{}, fmt.Errorf("backend not ready: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// poll makes one request. Any HTTP response proves the server is listening;
// the body is only parsed opportunistically.
func poll(ctx context.Context, client *http.Client, url string) (Info, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Info{}, false
	}
	resp, err := client.Do(req)
	if err != nil {
		return Info{}, false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	info := Info{
		Title:   gjson.GetBytes(body, "info.title").String(),
		Version: gjson.GetBytes(body, "info.version").String(),
	}
	return info, true
}
