// v0
// internal/grid/types.go
// Package grid holds the domain types shared by the fetch, snapshot and
// publishing paths.
package grid

import "time"

// Zone identifies a bidding zone, e.g. "NO-NO1".
type Zone string

// MetricKind enumerates the three grid metrics fetched per zone.
type MetricKind string

const (
	CarbonIntensity MetricKind = "carbon_intensity"
	RenewableShare  MetricKind = "renewable_share"
	DayAheadPrice   MetricKind = "day_ahead_price"
)

// AllKinds returns the metric kinds in the order a cycle fetches them.
func AllKinds() []MetricKind {
	return []MetricKind{CarbonIntensity, RenewableShare, DayAheadPrice}
}

// Reading is one fetched value for a (zone, kind) pair. Readings are
// immutable; a newer successful fetch supersedes the previous one in the
// snapshot, it never mutates it.
type Reading struct {
	Zone  Zone       `json:"zone"`
	Kind  MetricKind `json:"kind"`
	Value float64    `json:"value"`
	Taken time.Time  `json:"taken"`
}
