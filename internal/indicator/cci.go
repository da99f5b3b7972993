package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
)

// cciScaling is Lambert's constant. It scales mean absolute deviation so
// that roughly 70-80% of CCI values fall inside [-100, 100].
const cciScaling = 0.015

// CCI represents the Commodity Channel Index indicator.
type CCI struct {
	period int
}

// NewCCI creates a new CCI indicator with default configuration.
func NewCCI() *CCI {
	return &CCI{
		period: 20, // Default period
	}
}

// Config configures the CCI period.
func (c *CCI) Config(period int) error {
	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "CCI period must be a positive integer, got %d", period)
	}

	c.period = period

	return nil
}

// WarmupLen returns the number of leading bars without a value. CCI needs a
// full period of typical prices, so the first defined index is period-1.
func (c *CCI) WarmupLen() int {
	return c.period - 1
}

// Compute calculates the CCI over the bars. The returned slice is aligned
// with the input; the first WarmupLen() entries are None.
func (c *CCI) Compute(bars []types.Bar) []Value {
	values := make([]Value, len(bars))
	if len(bars) < c.period {
		return values
	}

	typical := make([]float64, len(bars))
	for i, bar := range bars {
		typical[i] = bar.TypicalPrice()
	}

	for i := c.period - 1; i < len(typical); i++ {
		window := typical[i-c.period+1 : i+1]

		sma := 0.0
		for _, v := range window {
			sma += v
		}

		sma /= float64(c.period)

		meanDev := 0.0
		for _, v := range window {
			meanDev += math.Abs(v - sma)
		}

		meanDev /= float64(c.period)

		if meanDev == 0 {
			// Flat window: price equals its average, no deviation to measure
			values[i] = optional.Some(0.0)

			continue
		}

		values[i] = optional.Some((typical[i] - sma) / (cciScaling * meanDev))
	}

	return values
}
