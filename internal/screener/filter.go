package screener

import (
	"math"

	"github.com/wonny/valuescreen/internal/contracts"
	"github.com/wonny/valuescreen/pkg/config"
)

// Thresholds are the inclusion bounds applied to a valuation
type Thresholds struct {
	MinPredictability float64 // strictly greater
	MinMarginOfSafety float64 // greater or equal
}

// DefaultThresholds returns predictability > 1 and margin of safety >= 25
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinPredictability: 1,
		MinMarginOfSafety: 25,
	}
}

// ThresholdsFromConfig builds thresholds from the screen config
func ThresholdsFromConfig(cfg config.ScreenConfig) Thresholds {
	return Thresholds{
		MinPredictability: cfg.MinPredictability,
		MinMarginOfSafety: cfg.MinMarginOfSafety,
	}
}

// Evaluate returns why v should be excluded, or ReasonNone to include it.
// Rules are checked in order; the first failing one wins.
func (t Thresholds) Evaluate(v *contracts.Valuation) contracts.SkipReason {
	switch {
	case v == nil:
		return contracts.ReasonValuationUnavailable
	case math.IsNaN(v.Predictability):
		return contracts.ReasonPredictabilityNaN
	case math.IsNaN(v.MarginOfSafety):
		return contracts.ReasonMarginNaN
	case v.Predictability <= t.MinPredictability:
		return contracts.ReasonPredictabilityLow
	case v.MarginOfSafety < t.MinMarginOfSafety:
		return contracts.ReasonMarginLow
	default:
		return contracts.ReasonNone
	}
}
