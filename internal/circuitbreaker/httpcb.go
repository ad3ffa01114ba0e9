// v1
// internal/circuitbreaker/httpcb.go
package circuitbreaker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPClient wraps a standard http.Client with breaker behavior. It
// satisfies the provider's Doer interface. Only transport failures and 5xx
// responses count against the breaker; 4xx responses pass through untouched
// so an auth problem cannot trip it.
type HTTPClient struct {
	client *http.Client
	brk    *Breaker
}

func NewHTTPClient(name string, cfg Config, log *slog.Logger, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{client: client, brk: New(name, cfg, log)}
}

func (h *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if !h.brk.cfg.Enabled() {
		return h.client.Do(req)
	}

	var resp *http.Response
	err := h.brk.Execute(req.Context(), func(_ context.Context) error {
		r, err := h.client.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= http.StatusInternalServerError {
			_, _ = io.CopyN(io.Discard, r.Body, 512)
			_ = r.Body.Close()
			return fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
