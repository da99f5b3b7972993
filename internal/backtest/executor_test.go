package backtest

import (
	"testing"
	"time"

	"github.com/rxtech-lab/swing-backtest/internal/logger"
	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ExecutorTestSuite struct {
	suite.Suite
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorTestSuite))
}

func seriesWithCloses(suite *suite.Suite, closes []float64) *types.BarSeries {
	bars := make([]types.Bar, len(closes))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, c := range closes {
		bars[i] = types.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}

	series, err := types.NewBarSeries("TEST", bars)
	suite.Require().NoError(err)

	return series
}

func holdSignals(series *types.BarSeries) []types.Signal {
	signals := make([]types.Signal, series.Len())
	for i, bar := range series.Bars {
		signals[i] = types.Signal{
			Time:   bar.Time,
			Type:   types.SignalTypeHold,
			Symbol: series.Symbol,
		}
	}

	return signals
}

func newTestExecutor(suite *suite.Suite, commission float64) *Executor {
	executor, err := NewExecutor(10000, commission, logger.NewNopLogger())
	suite.Require().NoError(err)

	return executor
}

func (suite *ExecutorTestSuite) TestNewExecutorValidation() {
	_, err := NewExecutor(0, 0, logger.NewNopLogger())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	_, err = NewExecutor(10000, -0.1, logger.NewNopLogger())
	suite.Error(err)

	_, err = NewExecutor(10000, 1, logger.NewNopLogger())
	suite.Error(err)
}

func (suite *ExecutorTestSuite) TestRunEmptySeries() {
	executor := newTestExecutor(&suite.Suite, 0)

	_, err := executor.Run(nil, nil)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeEmptySeries))
}

func (suite *ExecutorTestSuite) TestRunMisalignedSignals() {
	executor := newTestExecutor(&suite.Suite, 0)
	series := seriesWithCloses(&suite.Suite, []float64{10, 11, 12})

	_, err := executor.Run(series, make([]types.Signal, 2))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeFrameMisaligned))
}

func (suite *ExecutorTestSuite) TestNextBarOpenFill() {
	executor := newTestExecutor(&suite.Suite, 0)
	series := seriesWithCloses(&suite.Suite, []float64{10, 11, 12, 13, 14})

	signals := holdSignals(series)
	signals[1].Type = types.SignalTypeBuy
	signals[3].Type = types.SignalTypeSell

	result, err := executor.Run(series, signals)
	suite.Require().NoError(err)
	suite.Require().Len(result.Trades, 1)

	trade := result.Trades[0]
	// Buy on bar 1 fills at bar 2's open, sell on bar 3 at bar 4's open.
	suite.Equal(series.Bars[2].Time, trade.EntryTime)
	suite.InDelta(12.0, trade.EntryPrice, 1e-9)
	suite.Equal(series.Bars[4].Time, trade.ExitTime)
	suite.InDelta(14.0, trade.ExitPrice, 1e-9)
	suite.Equal(2, trade.HoldingPeriod)

	quantity := 10000.0 / 12.0
	suite.InDelta(quantity*2, trade.PnL, 1e-6)
	suite.InDelta(10000*14.0/12.0, result.FinalEquity, 1e-6)
	suite.InDelta(14.0/12.0-1, result.TotalReturn, 1e-9)
}

func (suite *ExecutorTestSuite) TestSignalOnFinalBarDropped() {
	executor := newTestExecutor(&suite.Suite, 0)
	series := seriesWithCloses(&suite.Suite, []float64{10, 11, 12})

	signals := holdSignals(series)
	signals[2].Type = types.SignalTypeBuy

	result, err := executor.Run(series, signals)
	suite.Require().NoError(err)
	suite.Empty(result.Trades)
	suite.InDelta(10000.0, result.FinalEquity, 1e-9)
}

func (suite *ExecutorTestSuite) TestForceCloseAtSeriesEnd() {
	executor := newTestExecutor(&suite.Suite, 0)
	series := seriesWithCloses(&suite.Suite, []float64{10, 11, 12, 13, 14})

	signals := holdSignals(series)
	signals[1].Type = types.SignalTypeBuy

	result, err := executor.Run(series, signals)
	suite.Require().NoError(err)
	suite.Require().Len(result.Trades, 1)

	trade := result.Trades[0]
	suite.Equal(series.Bars[4].Time, trade.ExitTime)
	suite.InDelta(14.0, trade.ExitPrice, 1e-9)
	suite.Greater(trade.PnL, 0.0)
}

func (suite *ExecutorTestSuite) TestNoPyramiding() {
	executor := newTestExecutor(&suite.Suite, 0)
	series := seriesWithCloses(&suite.Suite, []float64{10, 11, 12, 13, 14})

	signals := holdSignals(series)
	signals[0].Type = types.SignalTypeBuy
	signals[1].Type = types.SignalTypeBuy
	signals[2].Type = types.SignalTypeBuy

	result, err := executor.Run(series, signals)
	suite.Require().NoError(err)
	// Only the first buy opens a position; the rest are suppressed.
	suite.Len(result.Trades, 1)
	suite.Equal(series.Bars[1].Time, result.Trades[0].EntryTime)
}

func (suite *ExecutorTestSuite) TestSellWhileFlatIgnored() {
	executor := newTestExecutor(&suite.Suite, 0)
	series := seriesWithCloses(&suite.Suite, []float64{10, 11, 12})

	signals := holdSignals(series)
	signals[0].Type = types.SignalTypeSell

	result, err := executor.Run(series, signals)
	suite.Require().NoError(err)
	suite.Empty(result.Trades)
	suite.InDelta(0.0, result.TotalReturn, 1e-9)
}

func (suite *ExecutorTestSuite) TestEquityCurveAlignment() {
	executor := newTestExecutor(&suite.Suite, 0)
	series := seriesWithCloses(&suite.Suite, []float64{10, 11, 12, 13, 14})

	signals := holdSignals(series)
	signals[1].Type = types.SignalTypeBuy

	result, err := executor.Run(series, signals)
	suite.Require().NoError(err)
	suite.Require().Len(result.EquityCurve, series.Len())

	for i, point := range result.EquityCurve {
		suite.Equal(series.Bars[i].Time, point.Time)

		if i > 0 {
			suite.True(point.Time.After(result.EquityCurve[i-1].Time))
		}
	}

	// Flat until the fill on bar 2, then marked to each close.
	suite.InDelta(10000.0, result.EquityCurve[0].Equity, 1e-9)
	suite.InDelta(10000.0, result.EquityCurve[1].Equity, 1e-9)

	quantity := 10000.0 / 12.0
	suite.InDelta(quantity*12, result.EquityCurve[2].Equity, 1e-6)
	suite.InDelta(quantity*13, result.EquityCurve[3].Equity, 1e-6)
	suite.InDelta(quantity*14, result.EquityCurve[4].Equity, 1e-6)
}

func (suite *ExecutorTestSuite) TestCommissionCharged() {
	executor := newTestExecutor(&suite.Suite, 0.002)
	series := seriesWithCloses(&suite.Suite, []float64{10, 10, 10, 10})

	signals := holdSignals(series)
	signals[0].Type = types.SignalTypeBuy
	signals[2].Type = types.SignalTypeSell

	result, err := executor.Run(series, signals)
	suite.Require().NoError(err)
	suite.Require().Len(result.Trades, 1)

	// Price never moves, so the round trip loses exactly the fees.
	suite.Less(result.Trades[0].PnL, 0.0)
	suite.Greater(result.TotalCommission, 0.0)
	suite.InDelta(result.Trades[0].Commission, result.TotalCommission, 1e-9)
	suite.Less(result.FinalEquity, 10000.0)
}
