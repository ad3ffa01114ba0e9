// v1
// internal/config/config.go
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures all runtime settings for the exporter. Values layer as
// defaults, then an optional properties file, then environment variables, so
// the exporter can boot with nothing but an API key set.
type Config struct {
	// BindAddr is the TCP address the scrape endpoint listens on.
	BindAddr string
	// LogFilePath is the path of the append-only log file; empty disables it.
	LogFilePath string
	// APIKey authenticates against the grid data provider. Required.
	APIKey string
	// Zones is the ordered, fixed set of zone codes fetched every cycle.
	Zones []string
	// ZoneNames maps zone codes to the display names used as metric labels.
	ZoneNames map[string]string
	// UpdateInterval is the cycle period. It doubles as the retry backoff:
	// a failed fetch is simply retried on the next cycle.
	UpdateInterval time.Duration
	// TargetCurrency is the quote currency prices are converted into.
	TargetCurrency string
	// RateLookbackDays bounds how far back the exchange-rate window reaches.
	RateLookbackDays int
	// ProviderBaseURL is the grid data provider, e.g. https://api.electricitymaps.com.
	ProviderBaseURL string
	// RateBaseURL is the exchange-rate source, e.g. https://data.norges-bank.no.
	RateBaseURL string
	// HTTPTimeout bounds each upstream call.
	HTTPTimeout time.Duration
	// ShutdownTimeout limits graceful shutdown attempts.
	ShutdownTimeout time.Duration
	// KafkaBrokers, when non-empty, enables streaming readings to Kafka.
	KafkaBrokers []string
	// ReadingsTopic is the topic successful readings are published to.
	ReadingsTopic string
	// BreakerMaxFailures enables the upstream circuit breaker when positive.
	BreakerMaxFailures int
	// BreakerResetTimeout is how long an open breaker waits before probing.
	BreakerResetTimeout time.Duration
	// PropertiesPath records the properties file location that was used.
	PropertiesPath string
}

const (
	defaultBindAddr      = ":9108"
	defaultLogFile       = "logs/exporter.log"
	defaultZones         = "NO-NO1,NO-NO2,NO-NO3,NO-NO4,NO-NO5"
	defaultInterval      = 60 * time.Second
	defaultCurrency      = "NOK"
	defaultLookbackDays  = 7
	defaultProviderBase  = "https://api.electricitymaps.com"
	defaultRateBase      = "https://data.norges-bank.no"
	defaultHTTPTimeout   = 10 * time.Second
	defaultShutdown      = 10 * time.Second
	defaultReadingsTopic = "grid.readings"
	defaultBreakerReset  = 30 * time.Second
	defaultPropsPath     = "exporter.properties"
)

func defaultZoneNames() map[string]string {
	return map[string]string{
		"NO-NO1": "Southeast-Norway",
		"NO-NO2": "Southwest-Norway",
		"NO-NO3": "Central-Norway",
		"NO-NO4": "North-Norway",
		"NO-NO5": "West-Norway",
	}
}

// Load resolves configuration by layering defaults, an optional properties
// file, and finally environment variables. The properties file location can
// be overridden with EXPORTER_PROPERTIES_PATH.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:            defaultBindAddr,
		LogFilePath:         filepath.Clean(defaultLogFile),
		Zones:               splitAndTrim(defaultZones),
		ZoneNames:           defaultZoneNames(),
		UpdateInterval:      defaultInterval,
		TargetCurrency:      defaultCurrency,
		RateLookbackDays:    defaultLookbackDays,
		ProviderBaseURL:     defaultProviderBase,
		RateBaseURL:         defaultRateBase,
		HTTPTimeout:         defaultHTTPTimeout,
		ShutdownTimeout:     defaultShutdown,
		ReadingsTopic:       defaultReadingsTopic,
		BreakerResetTimeout: defaultBreakerReset,
	}

	propsPath := strings.TrimSpace(os.Getenv("EXPORTER_PROPERTIES_PATH"))
	if propsPath == "" {
		propsPath = defaultPropsPath
	}
	cfg.PropertiesPath = propsPath

	if err := applyProperties(&cfg, propsPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("API_KEY_ELECTRICITYMAP must be set")
	}
	if len(c.Zones) == 0 {
		return errors.New("at least one zone is required")
	}
	if c.UpdateInterval <= 0 {
		return errors.New("update interval must be positive")
	}
	if c.RateLookbackDays <= 0 {
		return errors.New("rate lookback must be positive")
	}
	return nil
}

func applyProperties(cfg *Config, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, ";") {
			continue
		}
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid properties entry on line %d", line)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if err := setProperty(cfg, key, value); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read properties: %w", err)
	}
	return nil
}

func setProperty(cfg *Config, key, value string) error {
	switch key {
	case "bind_address":
		if value == "" {
			return errors.New("bind_address cannot be empty")
		}
		cfg.BindAddr = value
	case "log_path":
		// empty disables file logging
		if value == "" {
			cfg.LogFilePath = ""
			return nil
		}
		cfg.LogFilePath = filepath.Clean(value)
	case "api_key":
		cfg.APIKey = value
	case "zones":
		zones := splitAndTrim(value)
		if len(zones) == 0 {
			return errors.New("zones cannot be empty")
		}
		cfg.Zones = zones
	case "zone_names":
		names, err := parsePairs(value)
		if err != nil {
			return err
		}
		cfg.ZoneNames = names
	case "update_interval":
		d, err := parsePositiveDuration(value)
		if err != nil {
			return err
		}
		cfg.UpdateInterval = d
	case "target_currency":
		if value == "" {
			return errors.New("target_currency cannot be empty")
		}
		cfg.TargetCurrency = strings.ToUpper(value)
	case "rate_lookback_days":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return errors.New("rate_lookback_days must be a positive integer")
		}
		cfg.RateLookbackDays = n
	case "provider_base_url":
		if value == "" {
			return errors.New("provider_base_url cannot be empty")
		}
		cfg.ProviderBaseURL = strings.TrimRight(value, "/")
	case "rate_base_url":
		if value == "" {
			return errors.New("rate_base_url cannot be empty")
		}
		cfg.RateBaseURL = strings.TrimRight(value, "/")
	case "http_timeout":
		d, err := parsePositiveDuration(value)
		if err != nil {
			return err
		}
		cfg.HTTPTimeout = d
	case "shutdown_timeout":
		d, err := parsePositiveDuration(value)
		if err != nil {
			return err
		}
		cfg.ShutdownTimeout = d
	case "kafka_brokers":
		cfg.KafkaBrokers = splitAndTrim(value)
	case "readings_topic":
		if value == "" {
			return errors.New("readings_topic cannot be empty")
		}
		cfg.ReadingsTopic = value
	case "breaker_max_failures":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return errors.New("breaker_max_failures must be a non-negative integer")
		}
		cfg.BreakerMaxFailures = n
	case "breaker_reset_timeout":
		d, err := parsePositiveDuration(value)
		if err != nil {
			return err
		}
		cfg.BreakerResetTimeout = d
	default:
		// Unknown keys are ignored to keep the loader forward-compatible.
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := []struct {
		env string
		key string
	}{
		{"EXPORTER_BIND_ADDR", "bind_address"},
		{"EXPORTER_LOGFILE", "log_path"},
		{"API_KEY_ELECTRICITYMAP", "api_key"},
		{"EXPORTER_ZONES", "zones"},
		{"EXPORTER_ZONE_NAMES", "zone_names"},
		{"EXPORTER_UPDATE_INTERVAL", "update_interval"},
		{"EXPORTER_TARGET_CURRENCY", "target_currency"},
		{"EXPORTER_RATE_LOOKBACK_DAYS", "rate_lookback_days"},
		{"EXPORTER_PROVIDER_BASE_URL", "provider_base_url"},
		{"EXPORTER_RATE_BASE_URL", "rate_base_url"},
		{"EXPORTER_HTTP_TIMEOUT", "http_timeout"},
		{"EXPORTER_SHUTDOWN_TIMEOUT", "shutdown_timeout"},
		{"EXPORTER_KAFKA_BROKERS", "kafka_brokers"},
		{"EXPORTER_READINGS_TOPIC", "readings_topic"},
		{"EXPORTER_CB_MAX_FAILURES", "breaker_max_failures"},
		{"EXPORTER_CB_RESET_TIMEOUT", "breaker_reset_timeout"},
	}
	for _, s := range str {
		if v, ok := lookupEnvTrimmed(s.env); ok {
			if err := setProperty(cfg, s.key, v); err != nil {
				return fmt.Errorf("%s: %w", s.env, err)
			}
		}
	}
	return nil
}

func lookupEnvTrimmed(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parsePairs decodes "NO-NO1=Southeast-Norway,NO-NO2=Southwest-Norway".
func parsePairs(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, p := range splitAndTrim(s) {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
			return nil, fmt.Errorf("invalid zone name mapping %q", p)
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out, nil
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
