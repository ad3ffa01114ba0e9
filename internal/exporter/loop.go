// v2
// internal/exporter/loop.go
// Package exporter runs the scheduled fetch-convert-publish cycle.
package exporter

import (
	"context"
	"log/slog"
	"time"

	"github.com/your-org/electricity-exporter/internal/convert"
	"github.com/your-org/electricity-exporter/internal/grid"
	"github.com/your-org/electricity-exporter/internal/observability"
	"github.com/your-org/electricity-exporter/internal/rates"
	"github.com/your-org/electricity-exporter/internal/snapshot"
)

// ZoneFetcher fetches one metric kind for one zone.
type ZoneFetcher interface {
	Fetch(ctx context.Context, kind grid.MetricKind, zone grid.Zone) (grid.Reading, error)
}

// RateFetcher resolves the latest EUR exchange rate.
type RateFetcher interface {
	LatestRate(ctx context.Context) (rates.Rate, error)
}

// Publisher forwards successful readings to an optional downstream stream.
// Publish failures never affect the snapshot or cycle health.
type Publisher interface {
	Publish(ctx context.Context, r grid.Reading) error
}

// Loop drives the update cycle on a fixed period. It is the only writer of
// the snapshot; the scrape path reads it concurrently.
type Loop struct {
	log      *slog.Logger
	zones    []grid.Zone
	interval time.Duration
	provider ZoneFetcher
	rates    RateFetcher
	snap     *snapshot.Snapshot
	obs      *observability.Metrics
	pub      Publisher

	// last successfully fetched rate, reused when the source is down. Only
	// the loop goroutine touches it.
	cachedRate *rates.Rate
}

func New(log *slog.Logger, zones []grid.Zone, interval time.Duration, provider ZoneFetcher, rc RateFetcher, snap *snapshot.Snapshot, obs *observability.Metrics, pub Publisher) *Loop {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Loop{
		log:      log,
		zones:    zones,
		interval: interval,
		provider: provider,
		rates:    rc,
		snap:     snap,
		obs:      obs,
		pub:      pub,
	}
}

// Run executes one cycle immediately, then one per tick until the context is
// cancelled. Ticks are fixed wall-clock periods: a cycle that overruns the
// interval starts its next run at the already-pending tick and never
// overlaps itself.
func (l *Loop) Run(ctx context.Context) error {
	l.runCycle(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info("update loop stopping")
			return ctx.Err()
		case <-ticker.C:
			l.runCycle(ctx)
		}
	}
}

// runCycle fetches every kind for every zone, converting prices with the
// cycle's resolved rate. Failures are isolated per (zone, kind): logged,
// previous snapshot value retained, remaining fetches still attempted. The
// health flag flips to false only when every attempted fetch failed.
func (l *Loop) runCycle(ctx context.Context) {
	start := time.Now()
	rate, staleRate, haveRate := l.resolveRate(ctx)

	var attempted, succeeded int
	for _, zone := range l.zones {
		for _, kind := range grid.AllKinds() {
			if kind == grid.DayAheadPrice && !haveRate {
				// no fresh rate and nothing cached: price is skipped this
				// cycle, not counted as a failure
				l.log.Warn("price skipped, no exchange rate available", "zone", zone)
				continue
			}
			attempted++
			reading, err := l.provider.Fetch(ctx, kind, zone)
			if err != nil {
				l.log.Error("fetch failed", "zone", zone, "kind", kind, "err", err)
				l.obs.FetchError(kind)
				continue
			}
			// health counts successful metric calls; a rejected conversion
			// below only skips publication of this one reading
			succeeded++
			if kind == grid.DayAheadPrice {
				local, err := convert.ToLocalCurrency(reading.Value, rate.Value)
				if err != nil {
					l.log.Error("price conversion rejected", "zone", zone, "err", err)
					continue
				}
				reading.Value = local
			}
			l.snap.Set(reading.Zone, reading.Kind, reading)

			if l.pub != nil {
				if err := l.pub.Publish(ctx, reading); err != nil {
					l.log.Warn("reading publish failed", "zone", zone, "kind", kind, "err", err)
				}
			}
		}
	}

	up := succeeded > 0
	l.snap.SetHealth(up)
	l.obs.CycleCompleted(time.Since(start), staleRate)
	l.log.Info("cycle complete", "attempted", attempted, "succeeded", succeeded, "up", up, "staleRate", staleRate, "took", time.Since(start))
}

// resolveRate fetches the rate once per cycle and shares it across zones. On
// failure the last cached rate is reused; the staleness tolerance keeps a
// transient rate-source outage from opening gaps in the price series.
func (l *Loop) resolveRate(ctx context.Context) (rate rates.Rate, stale, ok bool) {
	r, err := l.rates.LatestRate(ctx)
	if err == nil {
		l.cachedRate = &r
		return r, false, true
	}
	l.log.Warn("exchange rate fetch failed", "err", err)
	if l.cachedRate != nil {
		return *l.cachedRate, true, true
	}
	return rates.Rate{}, false, false
}
