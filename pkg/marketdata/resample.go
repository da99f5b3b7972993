package marketdata

import (
	"time"

	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
)

// ResampleRule selects the bar frequency the core operates on. Daily input
// bars are aggregated up to the rule's frequency before indicators run.
type ResampleRule string

const (
	// RuleDaily passes daily bars through unchanged.
	RuleDaily ResampleRule = "D"
	// RuleWeeklyFriday aggregates each Monday-Friday week into one bar
	// stamped with the last trading day of the week.
	RuleWeeklyFriday ResampleRule = "W-FRI"
	// RuleMonthly aggregates each calendar month into one bar stamped
	// with the last trading day of the month.
	RuleMonthly ResampleRule = "M"
)

// Validate checks that the rule is supported.
func (r ResampleRule) Validate() error {
	switch r {
	case RuleDaily, RuleWeeklyFriday, RuleMonthly:
		return nil
	default:
		return errors.Newf(errors.ErrCodeInvalidTimespan, "unknown resample rule %q", r)
	}
}

// PeriodsPerYear returns the annualization factor for the rule's frequency.
func (r ResampleRule) PeriodsPerYear() float64 {
	switch r {
	case RuleWeeklyFriday:
		return 52
	case RuleMonthly:
		return 12
	default:
		return 252 // trading days
	}
}

// bucketKey maps a bar's timestamp to its aggregation bucket.
func (r ResampleRule) bucketKey(t time.Time) string {
	switch r {
	case RuleWeeklyFriday:
		// Buckets end on Friday: each bar belongs to the bucket of the
		// first Friday on or after it, so Saturday and Sunday bars from
		// 7-day markets fall into the next week's bar.
		daysUntilFriday := (int(time.Friday) - int(t.Weekday()) + 7) % 7

		return t.AddDate(0, 0, daysUntilFriday).Format("2006-01-02")
	case RuleMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// Resample aggregates bars up to the rule's frequency. Within each bucket:
// open is the first bar's open, high the maximum high, low the minimum low,
// close the last bar's close, volume the sum; the bucket's timestamp is the
// last contained bar's timestamp. Input bars must be in ascending order.
func Resample(bars []types.Bar, rule ResampleRule) ([]types.Bar, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if rule == RuleDaily || len(bars) == 0 {
		return bars, nil
	}

	resampled := make([]types.Bar, 0, len(bars))

	currentKey := ""

	for _, bar := range bars {
		key := rule.bucketKey(bar.Time)

		if key != currentKey {
			resampled = append(resampled, bar)
			currentKey = key

			continue
		}

		last := &resampled[len(resampled)-1]
		last.Time = bar.Time
		last.Close = bar.Close
		last.Volume += bar.Volume

		if bar.High > last.High {
			last.High = bar.High
		}

		if bar.Low < last.Low {
			last.Low = bar.Low
		}
	}

	return resampled, nil
}
