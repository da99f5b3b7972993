package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() *MACD {
	return &MACD{
		fastPeriod:   12, // Default fast period
		slowPeriod:   26, // Default slow period
		signalPeriod: 9,  // Default signal period
	}
}

// Config configures the MACD periods.
func (m *MACD) Config(fastPeriod, slowPeriod, signalPeriod int) error {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod,
			"MACD periods must be positive integers, got fast=%d slow=%d signal=%d",
			fastPeriod, slowPeriod, signalPeriod)
	}

	if fastPeriod >= slowPeriod {
		return errors.Newf(errors.ErrCodeInvalidPeriod,
			"MACD fast period (%d) must be shorter than slow period (%d)", fastPeriod, slowPeriod)
	}

	m.fastPeriod = fastPeriod
	m.slowPeriod = slowPeriod
	m.signalPeriod = signalPeriod

	return nil
}

// WarmupLen returns the number of leading bars without a histogram value:
// the slow EMA needs slowPeriod bars and the signal EMA needs signalPeriod
// MACD-line samples on top of that.
func (m *MACD) WarmupLen() int {
	return m.slowPeriod + m.signalPeriod - 2
}

// Compute calculates the MACD line, signal line and histogram over the close
// prices. All three slices are aligned with the input; warm-up entries are None.
func (m *MACD) Compute(closes []float64) (line, signal, histogram []Value) {
	line = make([]Value, len(closes))
	signal = make([]Value, len(closes))
	histogram = make([]Value, len(closes))

	fastEMA := computeEMA(closes, m.fastPeriod)
	slowEMA := computeEMA(closes, m.slowPeriod)

	// MACD line is defined where both EMAs are, i.e. from slowPeriod-1
	macdStart := m.slowPeriod - 1
	if macdStart >= len(closes) {
		return line, signal, histogram
	}

	macdLine := make([]float64, 0, len(closes)-macdStart)

	for i := macdStart; i < len(closes); i++ {
		v := fastEMA[i] - slowEMA[i]
		line[i] = optional.Some(v)
		macdLine = append(macdLine, v)
	}

	// Signal line is an EMA of the MACD line samples
	if len(macdLine) < m.signalPeriod {
		return line, signal, histogram
	}

	signalEMA := computeEMA(macdLine, m.signalPeriod)

	for i := m.signalPeriod - 1; i < len(macdLine); i++ {
		idx := macdStart + i
		signal[idx] = optional.Some(signalEMA[i])
		histogram[idx] = optional.Some(macdLine[i] - signalEMA[i])
	}

	return line, signal, histogram
}

// computeEMA returns the exponential moving average of values with
// alpha = 2/(period+1), seeded with an SMA over the first period samples to
// match pandas ewm with adjust=False. Entries before index period-1 carry
// the running SMA and must not be read by callers.
func computeEMA(values []float64, period int) []float64 {
	ema := make([]float64, len(values))
	if len(values) == 0 {
		return ema
	}

	multiplier := 2.0 / (float64(period) + 1.0)

	sum := 0.0

	for i, v := range values {
		if i < period {
			sum += v
			ema[i] = sum / float64(i+1)

			continue
		}

		ema[i] = (v-ema[i-1])*multiplier + ema[i-1]
	}

	return ema
}
