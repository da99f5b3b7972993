// Package backtest replays trade signals against a bar series as a
// single-position state machine and searches entry/exit confirmation delays
// for the best-performing combination.
package backtest

import (
	"github.com/rxtech-lab/swing-backtest/internal/logger"
	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"go.uber.org/zap"
)

// positionState is the executor's state. There is no shorting, so the
// machine only ever sits flat or long.
type positionState int

const (
	positionFlat positionState = iota
	positionLong
)

// Result is the full output of one simulation run: the closed-trade ledger,
// the equity curve aligned with the bars, and the run's summary numbers.
type Result struct {
	Symbol          string
	Trades          []types.Trade
	EquityCurve     []types.EquityPoint
	InitialCapital  float64
	FinalEquity     float64
	TotalReturn     float64
	TotalCommission float64
}

// Executor replays delayed signals over a bar series.
//
// Fill policy: a Buy or Sell signal on bar i fills at bar i+1's open, never
// at bar i's close, so the simulation cannot act on information from the
// bar that produced the signal. A signal on the final bar has no next open
// and is dropped. Any position still long at the final bar is force-closed
// at the final close so the run always ends flat with realized equity.
type Executor struct {
	initialCapital float64
	commissionRate float64
	logger         *logger.Logger
}

// NewExecutor creates an executor. commissionRate is the proportional fee
// charged on each fill (0.002 = 20 bps per side).
func NewExecutor(initialCapital, commissionRate float64, l *logger.Logger) (*Executor, error) {
	if initialCapital <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration,
			"initial capital must be positive, got %f", initialCapital)
	}

	if commissionRate < 0 || commissionRate >= 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration,
			"commission rate must lie in [0,1), got %f", commissionRate)
	}

	return &Executor{
		initialCapital: initialCapital,
		commissionRate: commissionRate,
		logger:         l,
	}, nil
}

// Run simulates the delayed signal sequence against the series. The signals
// slice must be aligned one-to-one with the bars.
func (e *Executor) Run(series *types.BarSeries, signals []types.Signal) (*Result, error) {
	if series == nil || series.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "cannot simulate over an empty series")
	}

	if series.Len() != len(signals) {
		return nil, errors.Newf(errors.ErrCodeFrameMisaligned,
			"series has %d bars but signal sequence has %d entries", series.Len(), len(signals))
	}

	var (
		state           = positionFlat
		cash            = e.initialCapital
		quantity        float64
		entryPrice      float64
		entryIndex      int
		entryCommission float64
		totalCommission float64
	)

	trades := make([]types.Trade, 0)
	equityCurve := make([]types.EquityPoint, 0, series.Len())

	closePosition := func(exitIndex int, exitPrice float64) {
		proceeds := quantity * exitPrice
		exitCommission := proceeds * e.commissionRate
		commission := entryCommission + exitCommission
		totalCommission += exitCommission

		trades = append(trades, types.Trade{
			Symbol:        series.Symbol,
			EntryTime:     series.Bars[entryIndex].Time,
			EntryPrice:    entryPrice,
			ExitTime:      series.Bars[exitIndex].Time,
			ExitPrice:     exitPrice,
			Quantity:      quantity,
			Commission:    commission,
			PnL:           types.RealizedPnL(entryPrice, exitPrice, quantity, commission),
			HoldingPeriod: exitIndex - entryIndex,
		})

		cash = proceeds - exitCommission
		quantity = 0
		state = positionFlat
	}

	for i, bar := range series.Bars {
		// Fill the previous bar's signal at this bar's open.
		if i > 0 {
			switch signals[i-1].Type {
			case types.SignalTypeBuy:
				if state == positionFlat {
					entryPrice = bar.Open
					quantity = cash / (entryPrice * (1 + e.commissionRate))
					entryCommission = quantity * entryPrice * e.commissionRate
					totalCommission += entryCommission
					entryIndex = i
					cash = 0
					state = positionLong
				}
			case types.SignalTypeSell:
				if state == positionLong {
					closePosition(i, bar.Open)
				}
			case types.SignalTypeHold:
				// No transition; opposing signals while already in the
				// target state are suppressed above (no pyramiding).
			}
		}

		// Force-close any open position at the final close.
		if i == series.Len()-1 && state == positionLong {
			closePosition(i, bar.Close)
		}

		// Mark equity to this bar's close.
		equity := cash
		if state == positionLong {
			equity += quantity * bar.Close
		}

		equityCurve = append(equityCurve, types.EquityPoint{
			Time:   bar.Time,
			Equity: equity,
		})
	}

	finalEquity := equityCurve[len(equityCurve)-1].Equity

	result := &Result{
		Symbol:          series.Symbol,
		Trades:          trades,
		EquityCurve:     equityCurve,
		InitialCapital:  e.initialCapital,
		FinalEquity:     finalEquity,
		TotalReturn:     (finalEquity - e.initialCapital) / e.initialCapital,
		TotalCommission: totalCommission,
	}

	e.logger.Debug("simulation finished",
		zap.String("symbol", series.Symbol),
		zap.Int("trades", len(trades)),
		zap.Float64("total_return", result.TotalReturn))

	return result, nil
}
