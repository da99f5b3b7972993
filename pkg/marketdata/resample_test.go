package marketdata

import (
	"testing"
	"time"

	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type ResampleTestSuite struct {
	suite.Suite
}

func TestResampleSuite(t *testing.T) {
	suite.Run(t, new(ResampleTestSuite))
}

func dailyBar(year int, month time.Month, dayOfMonth int, open, high, low, closePrice, volume float64) types.Bar {
	return types.Bar{
		Time:   time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}
}

func (suite *ResampleTestSuite) TestValidate() {
	suite.NoError(RuleDaily.Validate())
	suite.NoError(RuleWeeklyFriday.Validate())
	suite.NoError(RuleMonthly.Validate())
	suite.Error(ResampleRule("H").Validate())
}

func (suite *ResampleTestSuite) TestPeriodsPerYear() {
	suite.Equal(252.0, RuleDaily.PeriodsPerYear())
	suite.Equal(52.0, RuleWeeklyFriday.PeriodsPerYear())
	suite.Equal(12.0, RuleMonthly.PeriodsPerYear())
}

func (suite *ResampleTestSuite) TestDailyPassthrough() {
	bars := []types.Bar{
		dailyBar(2024, 1, 2, 10, 11, 9, 10.5, 100),
		dailyBar(2024, 1, 3, 10.5, 12, 10, 11, 200),
	}

	resampled, err := Resample(bars, RuleDaily)
	suite.Require().NoError(err)
	suite.Equal(bars, resampled)
}

func (suite *ResampleTestSuite) TestWeeklyAggregation() {
	// 2024-01-01 is a Monday; the first week runs Mon Jan 1 - Fri Jan 5.
	bars := []types.Bar{
		dailyBar(2024, 1, 1, 10, 11, 9, 10.5, 100),
		dailyBar(2024, 1, 2, 10.5, 13, 10, 12, 150),
		dailyBar(2024, 1, 5, 12, 12.5, 8, 9, 50),
		dailyBar(2024, 1, 8, 9, 10, 9, 9.5, 80),
	}

	resampled, err := Resample(bars, RuleWeeklyFriday)
	suite.Require().NoError(err)
	suite.Require().Len(resampled, 2)

	week := resampled[0]
	// open = first, high = max, low = min, close = last, volume = sum,
	// stamped with the last trading day of the week.
	suite.Equal(bars[2].Time, week.Time)
	suite.InDelta(10.0, week.Open, 1e-9)
	suite.InDelta(13.0, week.High, 1e-9)
	suite.InDelta(8.0, week.Low, 1e-9)
	suite.InDelta(9.0, week.Close, 1e-9)
	suite.InDelta(300.0, week.Volume, 1e-9)

	suite.Equal(bars[3].Time, resampled[1].Time)
}

func (suite *ResampleTestSuite) TestWeeklyWeekendBarsRollForward() {
	// 2024-01-05 is a Friday. Saturday and Sunday bars from a 7-day market
	// belong to the bucket ending the following Friday, not the week that
	// just closed.
	bars := []types.Bar{
		dailyBar(2024, 1, 5, 12, 12.5, 8, 9, 50),
		dailyBar(2024, 1, 6, 9, 9.5, 8.5, 9.2, 30),
		dailyBar(2024, 1, 7, 9.2, 10, 9, 9.8, 40),
		dailyBar(2024, 1, 8, 9.8, 10.5, 9.5, 10, 80),
	}

	resampled, err := Resample(bars, RuleWeeklyFriday)
	suite.Require().NoError(err)
	suite.Require().Len(resampled, 2)

	// The Friday bar closes its own bucket.
	suite.Equal(bars[0].Time, resampled[0].Time)
	suite.InDelta(9.0, resampled[0].Close, 1e-9)

	next := resampled[1]
	suite.Equal(bars[3].Time, next.Time)
	suite.InDelta(9.0, next.Open, 1e-9)
	suite.InDelta(10.5, next.High, 1e-9)
	suite.InDelta(8.5, next.Low, 1e-9)
	suite.InDelta(10.0, next.Close, 1e-9)
	suite.InDelta(150.0, next.Volume, 1e-9)
}

func (suite *ResampleTestSuite) TestMonthlyAggregation() {
	bars := []types.Bar{
		dailyBar(2024, 1, 2, 10, 11, 9, 10.5, 100),
		dailyBar(2024, 1, 31, 10.5, 12, 10, 11, 200),
		dailyBar(2024, 2, 1, 11, 11.5, 10.5, 11.2, 120),
	}

	resampled, err := Resample(bars, RuleMonthly)
	suite.Require().NoError(err)
	suite.Require().Len(resampled, 2)
	suite.Equal(bars[1].Time, resampled[0].Time)
	suite.InDelta(10.0, resampled[0].Open, 1e-9)
	suite.InDelta(11.0, resampled[0].Close, 1e-9)
	suite.InDelta(300.0, resampled[0].Volume, 1e-9)
}

func (suite *ResampleTestSuite) TestUnknownRuleFails() {
	_, err := Resample(nil, ResampleRule("15m"))
	suite.Error(err)
}

func (suite *ResampleTestSuite) TestEmptyInput() {
	resampled, err := Resample(nil, RuleWeeklyFriday)
	suite.NoError(err)
	suite.Empty(resampled)
}
