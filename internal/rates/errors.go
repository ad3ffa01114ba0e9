// v0
// internal/rates/errors.go
package rates

import "fmt"

// UpstreamError reports a transport failure or non-2xx status from the rate
// source.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("rate source returned %d", e.Status)
	}
	return fmt.Sprintf("rate source request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseError reports a payload the rate source returned with a 2xx status
// that did not decode into usable observations.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rate payload malformed: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
