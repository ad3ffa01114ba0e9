// v1
// internal/observability/collector.go
package observability

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/your-org/electricity-exporter/internal/grid"
	"github.com/your-org/electricity-exporter/internal/snapshot"
)

// GridCollector renders the snapshot on every scrape. It holds no state of
// its own; the snapshot is the single source of truth, so the scrape path
// never observes a half-written cycle beyond per-key granularity.
type GridCollector struct {
	snap      *snapshot.Snapshot
	zoneNames map[grid.Zone]string

	carbon    *prometheus.Desc
	renewable *prometheus.Desc
	price     *prometheus.Desc
	up        *prometheus.Desc
}

// NewGridCollector builds the collector. currency names the converted price
// metric (e.g. "NOK" → electricity_price_nok_per_kwh); zoneNames maps zone
// codes to the display names used as the zone label, missing entries fall
// back to the raw code.
func NewGridCollector(snap *snapshot.Snapshot, currency string, zoneNames map[grid.Zone]string) *GridCollector {
	priceName := "electricity_price_" + strings.ToLower(currency) + "_per_kwh"
	return &GridCollector{
		snap:      snap,
		zoneNames: zoneNames,
		carbon: prometheus.NewDesc("grid_carbon_intensity_stats",
			"Carbon Intensity (gCO2eq/kWh)", []string{"zone"}, nil),
		renewable: prometheus.NewDesc("grid_renewable_percentage",
			"Renewable share (%)", []string{"zone"}, nil),
		price: prometheus.NewDesc(priceName,
			"Electricity price ("+currency+"/kWh)", []string{"zone"}, nil),
		up: prometheus.NewDesc("electricity_exporter_up",
			"Exporter health (1 = up, 0 = failure)", nil, nil),
	}
}

func (c *GridCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.carbon
	ch <- c.renewable
	ch <- c.price
	ch <- c.up
}

func (c *GridCollector) Collect(ch chan<- prometheus.Metric) {
	for _, r := range c.snap.Readings() {
		var desc *prometheus.Desc
		switch r.Kind {
		case grid.CarbonIntensity:
			desc = c.carbon
		case grid.RenewableShare:
			desc = c.renewable
		case grid.DayAheadPrice:
			desc = c.price
		default:
			continue
		}
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, r.Value, c.zoneLabel(r.Zone))
	}

	health := 0.0
	if c.snap.Health() {
		health = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, health)
}

func (c *GridCollector) zoneLabel(z grid.Zone) string {
	if name, ok := c.zoneNames[z]; ok && name != "" {
		return name
	}
	return string(z)
}
