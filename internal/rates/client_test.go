// v1
// internal/rates/client_test.go
package rates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func sdmxBody(observations string) string {
	return fmt.Sprintf(`{"data":{"dataSets":[{"series":{"0:0:0:0":{"observations":%s}}}]}}`, observations)
}

func TestLatestRatePicksMostRecentObservation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sdmxBody(`{"0":["11.20"],"1":["11.35"],"2":["11.50"]}`)))
	}))
	defer srv.Close()

	c := New(srv.URL, "NOK", 7, srv.Client())
	rate, err := c.LatestRate(context.Background())
	if err != nil {
		t.Fatalf("LatestRate returned error: %v", err)
	}
	if rate.Value != 11.50 {
		t.Fatalf("expected most recent observation 11.50, got %v", rate.Value)
	}
	if rate.Base != "EUR" || rate.Quote != "NOK" {
		t.Fatalf("unexpected pair %s/%s", rate.Base, rate.Quote)
	}
}

func TestLatestRateSortsPeriodKeysNumerically(t *testing.T) {
	// lexical sort would pick "9" over "10"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sdmxBody(`{"9":["10.00"],"10":["12.00"]}`)))
	}))
	defer srv.Close()

	c := New(srv.URL, "NOK", 7, srv.Client())
	rate, err := c.LatestRate(context.Background())
	if err != nil {
		t.Fatalf("LatestRate returned error: %v", err)
	}
	if rate.Value != 12.00 {
		t.Fatalf("expected observation at period 10, got %v", rate.Value)
	}
}

func TestLatestRateAcceptsNumericObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sdmxBody(`{"0":[11.75]}`)))
	}))
	defer srv.Close()

	c := New(srv.URL, "NOK", 7, srv.Client())
	rate, err := c.LatestRate(context.Background())
	if err != nil {
		t.Fatalf("LatestRate returned error: %v", err)
	}
	if rate.Value != 11.75 {
		t.Fatalf("expected 11.75, got %v", rate.Value)
	}
}

func TestLatestRateRequestsLookbackWindow(t *testing.T) {
	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("startPeriod")
		gotEnd = r.URL.Query().Get("endPeriod")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sdmxBody(`{"0":["11.00"]}`)))
	}))
	defer srv.Close()

	c := New(srv.URL, "NOK", 7, srv.Client())
	c.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	if _, err := c.LatestRate(context.Background()); err != nil {
		t.Fatalf("LatestRate returned error: %v", err)
	}
	if gotStart != "2024-03-08" {
		t.Fatalf("expected startPeriod 2024-03-08, got %q", gotStart)
	}
	if gotEnd != "2024-03-15" {
		t.Fatalf("expected endPeriod 2024-03-15, got %q", gotEnd)
	}
}

func TestLatestRateEmptyWindowIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sdmxBody(`{}`)))
	}))
	defer srv.Close()

	c := New(srv.URL, "NOK", 7, srv.Client())
	_, err := c.LatestRate(context.Background())
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
}

func TestLatestRateNoDataSetsIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"dataSets":[]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "NOK", 7, srv.Client())
	_, err := c.LatestRate(context.Background())
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
}

func TestLatestRateMalformedPayloadIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(srv.URL, "NOK", 7, srv.Client())
	_, err := c.LatestRate(context.Background())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError for malformed payload, got %v", err)
	}
}

func TestLatestRateNonNumericObservationIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sdmxBody(`{"0":["n/a"]}`)))
	}))
	defer srv.Close()

	c := New(srv.URL, "NOK", 7, srv.Client())
	_, err := c.LatestRate(context.Background())
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError for non-numeric observation, got %v", err)
	}
}

func TestLatestRateNonSuccessStatusIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "NOK", 7, srv.Client())
	_, err := c.LatestRate(context.Background())
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UpstreamError for 503 status, got %v", err)
	}
	if ue.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", ue.Status)
	}
}

func TestLatestRateTransportFailureIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL, "NOK", 7, nil)
	_, err := c.LatestRate(context.Background())
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UpstreamError for transport failure, got %v", err)
	}
}

func TestLatestRatePicksSeriesDeterministically(t *testing.T) {
	// two series: sorted key order must pick 0:0:0:0 every time
	body := `{"data":{"dataSets":[{"series":{` +
		`"1:0:0:0":{"observations":{"0":["99.00"]}},` +
		`"0:0:0:0":{"observations":{"0":["11.50"]}}` +
		`}}]}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(srv.URL, "NOK", 7, srv.Client())
	for i := 0; i < 10; i++ {
		rate, err := c.LatestRate(context.Background())
		if err != nil {
			t.Fatalf("LatestRate returned error: %v", err)
		}
		if rate.Value != 11.50 {
			t.Fatalf("series selection not deterministic: got %v, want 11.50", rate.Value)
		}
	}
}
