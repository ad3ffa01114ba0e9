// v0
// internal/provider/errors.go
package provider

import (
	"fmt"

	"github.com/your-org/electricity-exporter/internal/grid"
)

// UpstreamError reports a transport failure or non-2xx status from the
// provider for one (zone, kind) pair.
type UpstreamError struct {
	Zone   grid.Zone
	Kind   grid.MetricKind
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider returned %d for %s/%s", e.Status, e.Zone, e.Kind)
	}
	return fmt.Sprintf("provider request failed for %s/%s: %v", e.Zone, e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseError reports a payload the provider returned with a 2xx status that
// did not contain the expected numeric field.
type ParseError struct {
	Zone grid.Zone
	Kind grid.MetricKind
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("provider payload malformed for %s/%s: %v", e.Zone, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
