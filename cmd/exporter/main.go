// v1
// cmd/exporter/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/electricity-exporter/internal/api"
	"github.com/your-org/electricity-exporter/internal/circuitbreaker"
	"github.com/your-org/electricity-exporter/internal/config"
	"github.com/your-org/electricity-exporter/internal/exporter"
	"github.com/your-org/electricity-exporter/internal/grid"
	"github.com/your-org/electricity-exporter/internal/logging"
	"github.com/your-org/electricity-exporter/internal/observability"
	"github.com/your-org/electricity-exporter/internal/provider"
	"github.com/your-org/electricity-exporter/internal/rates"
	"github.com/your-org/electricity-exporter/internal/snapshot"
	"github.com/your-org/electricity-exporter/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	lg, err := logging.New(cfg.LogFilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer func() { _ = lg.Close() }()
	log := lg.Logger
	log.Info("config loaded",
		"bind", cfg.BindAddr,
		"zones", cfg.Zones,
		"interval", cfg.UpdateInterval,
		"currency", cfg.TargetCurrency,
		"lookbackDays", cfg.RateLookbackDays,
		"kafka", len(cfg.KafkaBrokers) > 0,
		"breaker", cfg.BreakerMaxFailures > 0)

	zones := make([]grid.Zone, 0, len(cfg.Zones))
	for _, z := range cfg.Zones {
		zones = append(zones, grid.Zone(z))
	}
	zoneNames := make(map[grid.Zone]string, len(cfg.ZoneNames))
	for z, name := range cfg.ZoneNames {
		zoneNames[grid.Zone(z)] = name
	}

	snap := snapshot.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(observability.NewGridCollector(snap, cfg.TargetCurrency, zoneNames))
	obs := observability.NewMetrics(reg)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	var doer provider.Doer = httpClient
	if cfg.BreakerMaxFailures > 0 {
		doer = circuitbreaker.NewHTTPClient("provider", circuitbreaker.Config{
			MaxFailures:  cfg.BreakerMaxFailures,
			ResetTimeout: cfg.BreakerResetTimeout,
		}, log, httpClient)
	}
	prov := provider.New(cfg.ProviderBaseURL, cfg.APIKey, doer)
	rc := rates.New(cfg.RateBaseURL, cfg.TargetCurrency, cfg.RateLookbackDays, httpClient)

	var pub exporter.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		p := stream.New(log, cfg.KafkaBrokers, cfg.ReadingsTopic)
		defer func() { _ = p.Close() }()
		pub = p
		log.Info("reading stream enabled", "topic", cfg.ReadingsTopic)
	}

	loop := exporter.New(log, zones, cfg.UpdateInterval, prov, rc, snap, obs, pub)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("update loop error", "err", err)
		}
	}()

	router := api.NewRouter(snap, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := api.NewServer(cfg.BindAddr, log, router)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "err", err)
			cancel()
		}
	}()
	log.Info("electricity exporter started")

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}
	log.Info("electricity exporter stopped")
}
