package types

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
)

// Bar is a single OHLCV price bar. Bars are immutable once ingested.
type Bar struct {
	Time   time.Time `csv:"time"`
	Open   float64   `csv:"open"`
	High   float64   `csv:"high"`
	Low    float64   `csv:"low"`
	Close  float64   `csv:"close"`
	Volume float64   `csv:"volume"`
}

// TypicalPrice returns (high + low + close) / 3, the price used by CCI.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// Validate checks that all bar values are finite and non-negative.
func (b Bar) Validate() error {
	values := map[string]float64{
		"open":   b.Open,
		"high":   b.High,
		"low":    b.Low,
		"close":  b.Close,
		"volume": b.Volume,
	}

	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrCodeInvalidBar, "bar at %s has non-finite %s", b.Time.Format(time.RFC3339), name)
		}

		if v < 0 {
			return errors.Newf(errors.ErrCodeInvalidBar, "bar at %s has negative %s: %f", b.Time.Format(time.RFC3339), name, v)
		}
	}

	if b.Time.IsZero() {
		return errors.New(errors.ErrCodeInvalidBar, "bar has zero timestamp")
	}

	return nil
}

// BarSeries is an ordered sequence of bars for one symbol, sorted ascending
// by timestamp with no duplicates.
type BarSeries struct {
	Symbol string
	Bars   []Bar
}

// NewBarSeries validates the given bars and returns a BarSeries.
// Bars must already be in ascending timestamp order; the series is not
// re-sorted because out-of-order input usually signals an upstream bug.
func NewBarSeries(symbol string, bars []Bar) (*BarSeries, error) {
	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptySeries, "no bars for symbol %s", symbol)
	}

	for i, bar := range bars {
		if err := bar.Validate(); err != nil {
			return nil, err
		}

		if i > 0 && !bars[i-1].Time.Before(bar.Time) {
			return nil, errors.Newf(errors.ErrCodeInvalidBar,
				"bar %d at %s does not strictly follow bar %d at %s",
				i, bar.Time.Format(time.RFC3339), i-1, bars[i-1].Time.Format(time.RFC3339))
		}
	}

	return &BarSeries{
		Symbol: symbol,
		Bars:   bars,
	}, nil
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int {
	return len(s.Bars)
}

// Slice returns a new series restricted to [start, end] inclusive. Either
// bound may be None to leave that side open.
func (s *BarSeries) Slice(start optional.Option[time.Time], end optional.Option[time.Time]) (*BarSeries, error) {
	bars := make([]Bar, 0, len(s.Bars))

	for _, bar := range s.Bars {
		if start.IsSome() && bar.Time.Before(start.Unwrap()) {
			continue
		}

		if end.IsSome() && bar.Time.After(end.Unwrap()) {
			continue
		}

		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptySeries, "no bars for symbol %s in requested range", s.Symbol)
	}

	return &BarSeries{
		Symbol: s.Symbol,
		Bars:   bars,
	}, nil
}

// Closes returns the close prices of all bars in order.
func (s *BarSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}

	return closes
}
