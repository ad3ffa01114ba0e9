// v1
// internal/rates/client.go
// Package rates fetches the latest EUR exchange rate from the central-bank
// SDMX-JSON endpoint. The source publishes business-day observations and may
// lag by one or more days, so the client always requests a lookback window
// and picks the most recent observation in it.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"
)

// ErrRateUnavailable is returned when the lookback window holds no
// observations at all. The caller decides the fallback policy.
var ErrRateUnavailable = errors.New("no exchange rate observations in lookback window")

// Rate is one EUR→quote-currency multiplier, valid for the most recent
// period the source had published at retrieval time.
type Rate struct {
	Base      string
	Quote     string
	Value     float64
	Retrieved time.Time
}

type Client struct {
	base     string
	quote    string
	lookback int // days
	h        *http.Client
	now      func() time.Time
}

// New builds a client for the given rate source base URL, e.g.
// "https://data.norges-bank.no". quote is the target currency code;
// lookbackDays bounds how far back the window reaches (values <= 0 become 7).
func New(base, quote string, lookbackDays int, h *http.Client) *Client {
	if h == nil {
		h = &http.Client{Timeout: 10 * time.Second}
	}
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	return &Client{base: base, quote: quote, lookback: lookbackDays, h: h, now: time.Now}
}

// LatestRate queries the source for EUR/<quote> over the lookback window and
// returns the most recent observation. No retry; the update cycle cadence is
// the retry policy.
func (c *Client) LatestRate(ctx context.Context) (Rate, error) {
	end := c.now().UTC()
	start := end.AddDate(0, 0, -c.lookback)
	u := fmt.Sprintf("%s/api/data/EXR/B.EUR.%s.SP?format=sdmx-json&startPeriod=%s&endPeriod=%s&locale=no",
		c.base, c.quote, start.Format("2006-01-02"), end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Rate{}, err
	}
	resp, err := c.h.Do(req)
	if err != nil {
		return Rate{}, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.CopyN(io.Discard, resp.Body, 512)
		return Rate{}, &UpstreamError{Status: resp.StatusCode}
	}

	value, err := latestObservation(resp.Body)
	if err != nil {
		return Rate{}, err
	}
	return Rate{Base: "EUR", Quote: c.quote, Value: value, Retrieved: end}, nil
}

// SDMX-JSON nests observations under data.dataSets[0].series[<key>]. Each
// observation maps a period index to a slice whose first element is the
// value, encoded as either a number or a string depending on locale.
type sdmxResponse struct {
	Data struct {
		DataSets []struct {
			Series map[string]struct {
				Observations map[string][]any `json:"observations"`
			} `json:"series"`
		} `json:"dataSets"`
	} `json:"data"`
}

func latestObservation(r io.Reader) (float64, error) {
	var payload sdmxResponse
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return 0, &ParseError{Err: err}
	}
	if len(payload.Data.DataSets) == 0 {
		return 0, ErrRateUnavailable
	}
	// the pinned-pair query yields one series, but iterate in sorted key
	// order so a multi-series response is still handled deterministically
	allSeries := payload.Data.DataSets[0].Series
	seriesKeys := make([]string, 0, len(allSeries))
	for k := range allSeries {
		seriesKeys = append(seriesKeys, k)
	}
	sort.Strings(seriesKeys)
	for _, sk := range seriesKeys {
		series := allSeries[sk]
		if len(series.Observations) == 0 {
			continue
		}
		keys := make([]string, 0, len(series.Observations))
		for k := range series.Observations {
			keys = append(keys, k)
		}
		// period keys are stringified indices; sort numerically so "10"
		// outranks "9"
		sort.Slice(keys, func(i, j int) bool {
			a, aerr := strconv.Atoi(keys[i])
			b, berr := strconv.Atoi(keys[j])
			if aerr != nil || berr != nil {
				return keys[i] < keys[j]
			}
			return a < b
		})
		obs := series.Observations[keys[len(keys)-1]]
		if len(obs) == 0 {
			continue
		}
		return coerceFloat(obs[0])
	}
	return 0, ErrRateUnavailable
}

func coerceFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, &ParseError{Err: fmt.Errorf("observation %q not numeric", t)}
		}
		return f, nil
	default:
		return 0, &ParseError{Err: fmt.Errorf("observation has type %T", v)}
	}
}
