package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() *RSI {
	return &RSI{
		period: 14, // Default period
	}
}

// Config configures the RSI period.
func (r *RSI) Config(period int) error {
	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "RSI period must be a positive integer, got %d", period)
	}

	r.period = period

	return nil
}

// Period returns the configured lookback period.
func (r *RSI) Period() int {
	return r.period
}

// WarmupLen returns the number of leading bars without a value. RSI needs
// period price changes, so the first defined index is period.
func (r *RSI) WarmupLen() int {
	return r.period
}

// Compute calculates Wilder's RSI over the close prices. The returned slice
// is aligned with the input; the first WarmupLen() entries are None.
func (r *RSI) Compute(closes []float64) []Value {
	values := make([]Value, len(closes))
	if len(closes) <= r.period {
		return values
	}

	// Split price changes into gains and losses
	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	// First averages are simple means over the initial period
	avgGain := 0.0
	avgLoss := 0.0

	for i := 0; i < r.period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}

	avgGain /= float64(r.period)
	avgLoss /= float64(r.period)

	values[r.period] = optional.Some(rsiFromAverages(avgGain, avgLoss))

	// Subsequent averages use Wilder's smoothing method
	for i := r.period; i < len(gains); i++ {
		avgGain = (avgGain*float64(r.period-1) + gains[i]) / float64(r.period)
		avgLoss = (avgLoss*float64(r.period-1) + losses[i]) / float64(r.period)

		values[i+1] = optional.Some(rsiFromAverages(avgGain, avgLoss))
	}

	return values
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		// A window with no movement at all is neutral, not a perfect uptrend.
		if avgGain == 0 {
			return 50
		}

		return 100 // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
