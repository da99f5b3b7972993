package backtest

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/swing-backtest/internal/logger"
	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

func optionalTime(t time.Time) optional.Option[time.Time] {
	return optional.Some(t)
}

type RunTestSuite struct {
	suite.Suite
}

func TestRunSuite(t *testing.T) {
	suite.Run(t, new(RunTestSuite))
}

func (suite *RunTestSuite) runPipeline(closes []float64, config Config) (*RunOutput, error) {
	series := seriesWithCloses(&suite.Suite, closes)

	return Run(series, config, logger.NewNopLogger(), nil)
}

func risingCloses() []float64 {
	closes := make([]float64, 41)
	for i := range closes {
		closes[i] = 10 + float64(i)
	}

	return closes
}

func flatCloses() []float64 {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}

	return closes
}

func (suite *RunTestSuite) TestShortSeriesFails() {
	_, err := suite.runPipeline([]float64{10, 11, 12}, DefaultConfig())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInsufficientHistory))
}

func (suite *RunTestSuite) TestInvalidConfigFails() {
	config := DefaultConfig()
	config.InitialCapital = -1

	_, err := suite.runPipeline(flatCloses(), config)
	suite.Error(err)
}

func (suite *RunTestSuite) TestFlatSeriesProducesNoTrades() {
	output, err := suite.runPipeline(flatCloses(), DefaultConfig())
	suite.Require().NoError(err)

	suite.Empty(output.Best.Result.Trades)
	suite.InDelta(0.0, output.Best.Result.TotalReturn, 1e-9)
	suite.Equal(0, output.Report.TradeResult.NumberOfTrades)
	suite.InDelta(0.0, output.Report.TradeResult.MaxDrawdown, 1e-9)
}

func (suite *RunTestSuite) TestFlatSeriesNoTradesWithSingleVote() {
	// Even a single-vote rule finds nothing to act on in a flat series:
	// RSI reads neutral and the other indicators never cross.
	config := DefaultConfig()
	config.Signal.Votes = 1

	output, err := suite.runPipeline(flatCloses(), config)
	suite.Require().NoError(err)

	suite.Empty(output.Best.Result.Trades)
	suite.InDelta(0.0, output.Best.Result.TotalReturn, 1e-9)
}

func (suite *RunTestSuite) TestRisingSeriesNeverSellsEarly() {
	output, err := suite.runPipeline(risingCloses(), DefaultConfig())
	suite.Require().NoError(err)

	// A steady uptrend never shows oversold conditions, so the strategy
	// enters at most once and the run cannot lose money.
	suite.LessOrEqual(len(output.Best.Result.Trades), 1)
	suite.GreaterOrEqual(output.Best.Result.TotalReturn, 0.0)
	suite.Greater(output.Report.BuyAndHoldReturn, 0.0)
}

func (suite *RunTestSuite) TestNoSignalsBeforeWarmup() {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%9) - float64(i%4)
	}

	output, err := suite.runPipeline(closes, DefaultConfig())
	suite.Require().NoError(err)

	// Warm-up is 33 bars with default periods, and the first defined bar
	// cannot be a crossing bar.
	for i := 0; i <= 33; i++ {
		suite.Equal(types.SignalTypeHold, output.RawSignals[i].Type, "bar %d", i)
	}
}

func (suite *RunTestSuite) TestRunDeterministic() {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 10*float64(i%13) - 6*float64(i%7)
	}

	first, err := suite.runPipeline(closes, DefaultConfig())
	suite.Require().NoError(err)

	second, err := suite.runPipeline(closes, DefaultConfig())
	suite.Require().NoError(err)

	suite.Equal(first.Best.EntryDelay, second.Best.EntryDelay)
	suite.Equal(first.Best.ExitDelay, second.Best.ExitDelay)
	suite.Equal(first.Best.Result.Trades, second.Best.Result.Trades)
	suite.Equal(first.Best.Result.EquityCurve, second.Best.Result.EquityCurve)
}

func (suite *RunTestSuite) TestDateRangeSlicing() {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}

	series := seriesWithCloses(&suite.Suite, closes)

	config := DefaultConfig()
	config.StartTime = optionalTime(series.Bars[10].Time)
	config.EndTime = optionalTime(series.Bars[69].Time)

	output, err := Run(series, config, logger.NewNopLogger(), nil)
	suite.Require().NoError(err)
	suite.Len(output.RawSignals, 60)
	suite.Equal(series.Bars[10].Time, output.Best.Result.EquityCurve[0].Time)
}
