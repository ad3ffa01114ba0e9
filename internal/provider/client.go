// v1
// internal/provider/client.go
// Package provider fetches grid metrics per zone from the upstream
// electricity data API.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/your-org/electricity-exporter/internal/grid"
)

// Doer is the subset of http.Client the provider needs. A circuit-breaker
// wrapper satisfies it too.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	base  string
	token string
	h     Doer
	now   func() time.Time
}

// New builds a client for the given provider base URL, e.g.
// "https://api.electricitymaps.com". The auth token is sent on every request
// as the auth-token header.
func New(base, token string, h Doer) *Client {
	if h == nil {
		h = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{base: base, token: token, h: h, now: time.Now}
}

// One path per metric kind, zone appended as a query parameter.
var kindPaths = map[grid.MetricKind]string{
	grid.CarbonIntensity: "/v3/carbon-intensity/latest",
	grid.RenewableShare:  "/v3/carbon-free-energy/latest",
	grid.DayAheadPrice:   "/v3/price-day-ahead/latest",
}

// Fetch retrieves the latest value of one metric kind for one zone. It never
// retries; the update cycle cadence is the retry policy. Failures are typed:
// *UpstreamError for transport/status problems, *ParseError for payloads
// missing the numeric field.
func (c *Client) Fetch(ctx context.Context, kind grid.MetricKind, zone grid.Zone) (grid.Reading, error) {
	path, ok := kindPaths[kind]
	if !ok {
		return grid.Reading{}, &UpstreamError{Zone: zone, Kind: kind, Err: fmt.Errorf("unknown metric kind %q", kind)}
	}
	u, err := url.Parse(c.base + path)
	if err != nil {
		return grid.Reading{}, &UpstreamError{Zone: zone, Kind: kind, Err: err}
	}
	q := u.Query()
	q.Set("zone", string(zone))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return grid.Reading{}, &UpstreamError{Zone: zone, Kind: kind, Err: err}
	}
	req.Header.Set("auth-token", c.token)

	resp, err := c.h.Do(req)
	if err != nil {
		return grid.Reading{}, &UpstreamError{Zone: zone, Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 512)
		return grid.Reading{}, &UpstreamError{Zone: zone, Kind: kind, Status: resp.StatusCode}
	}

	value, err := decodeValue(resp.Body, kind)
	if err != nil {
		return grid.Reading{}, &ParseError{Zone: zone, Kind: kind, Err: err}
	}
	return grid.Reading{Zone: zone, Kind: kind, Value: value, Taken: c.now().UTC()}, nil
}

var errMissingField = errors.New("expected numeric field missing")

// decodeValue extracts the numeric field the kind maps to: carbonIntensity
// for carbon intensity, value for renewable share and day-ahead price.
func decodeValue(r io.Reader, kind grid.MetricKind) (float64, error) {
	var payload struct {
		CarbonIntensity *float64 `json:"carbonIntensity"`
		Value           *float64 `json:"value"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return 0, err
	}
	var v *float64
	if kind == grid.CarbonIntensity {
		v = payload.CarbonIntensity
	} else {
		v = payload.Value
	}
	if v == nil {
		return 0, errMissingField
	}
	return *v, nil
}
