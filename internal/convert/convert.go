// v0
// internal/convert/convert.go
// Package convert holds the pure price conversion.
package convert

import (
	"fmt"
	"math"
)

// InvalidInputError rejects non-finite or out-of-range conversion inputs.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s for currency conversion: %v", e.Field, e.Value)
}

// ToLocalCurrency converts a EUR/kWh price into the local currency using the
// EUR→local multiplier. Prices must be finite and non-negative; rates must be
// finite and positive.
func ToLocalCurrency(priceEURPerKWh, rate float64) (float64, error) {
	if math.IsNaN(priceEURPerKWh) || math.IsInf(priceEURPerKWh, 0) || priceEURPerKWh < 0 {
		return 0, &InvalidInputError{Field: "price", Value: priceEURPerKWh}
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0, &InvalidInputError{Field: "rate", Value: rate}
	}
	return priceEURPerKWh * rate, nil
}
