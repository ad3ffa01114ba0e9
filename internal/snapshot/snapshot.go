// v1
// internal/snapshot/snapshot.go
// Package snapshot keeps the latest reading per (zone, kind) plus the
// cycle-level health flag. One instance is created at startup and shared by
// the update loop (writer) and the scrape path (readers).
package snapshot

import (
	"sort"
	"sync"

	"github.com/your-org/electricity-exporter/internal/grid"
)

type key struct {
	zone grid.Zone
	kind grid.MetricKind
}

// Snapshot is safe for concurrent use. The lock is held only around map
// access, never across I/O. A failed fetch never clears a stored value; only
// a newer successful reading replaces it.
type Snapshot struct {
	mu       sync.RWMutex
	readings map[key]grid.Reading
	up       bool
}

func New() *Snapshot {
	return &Snapshot{readings: make(map[key]grid.Reading)}
}

// Set stores the reading for (zone, kind), superseding any previous one.
func (s *Snapshot) Set(zone grid.Zone, kind grid.MetricKind, r grid.Reading) {
	s.mu.Lock()
	s.readings[key{zone: zone, kind: kind}] = r
	s.mu.Unlock()
}

// Get returns the latest reading for (zone, kind), or false when none has
// been stored yet.
func (s *Snapshot) Get(zone grid.Zone, kind grid.MetricKind) (grid.Reading, bool) {
	s.mu.RLock()
	r, ok := s.readings[key{zone: zone, kind: kind}]
	s.mu.RUnlock()
	return r, ok
}

// SetHealth records whether the most recent cycle had at least one
// successful fetch.
func (s *Snapshot) SetHealth(up bool) {
	s.mu.Lock()
	s.up = up
	s.mu.Unlock()
}

func (s *Snapshot) Health() bool {
	s.mu.RLock()
	up := s.up
	s.mu.RUnlock()
	return up
}

// Readings returns a defensive copy of all stored readings ordered by zone
// then kind, for stable scrape output.
func (s *Snapshot) Readings() []grid.Reading {
	s.mu.RLock()
	out := make([]grid.Reading, 0, len(s.readings))
	for _, r := range s.readings {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Zone != out[j].Zone {
			return out[i].Zone < out[j].Zone
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
