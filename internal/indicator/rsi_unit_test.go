package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RSIUnitTestSuite struct {
	suite.Suite
}

func TestRSIUnitSuite(t *testing.T) {
	suite.Run(t, new(RSIUnitTestSuite))
}

func (suite *RSIUnitTestSuite) TestNewRSI() {
	rsi := NewRSI()
	suite.NotNil(rsi)
	suite.Equal(14, rsi.period)
	suite.Equal(14, rsi.WarmupLen())
}

func (suite *RSIUnitTestSuite) TestConfigValidPeriod() {
	rsi := NewRSI()
	err := rsi.Config(21)
	suite.NoError(err)
	suite.Equal(21, rsi.Period())
}

func (suite *RSIUnitTestSuite) TestConfigInvalidPeriod() {
	rsi := NewRSI()
	err := rsi.Config(0)
	suite.Error(err)
	suite.Contains(err.Error(), "period must be a positive integer")

	err = rsi.Config(-5)
	suite.Error(err)
}

func (suite *RSIUnitTestSuite) TestComputeTooShort() {
	rsi := NewRSI()
	suite.Require().NoError(rsi.Config(14))

	values := rsi.Compute([]float64{1, 2, 3})
	suite.Len(values, 3)

	for _, v := range values {
		suite.True(v.IsNone())
	}
}

func (suite *RSIUnitTestSuite) TestComputeWarmupMarkers() {
	rsi := NewRSI()
	suite.Require().NoError(rsi.Config(3))

	closes := []float64{10, 11, 12, 11, 13, 12}
	values := rsi.Compute(closes)
	suite.Len(values, len(closes))

	for i := 0; i < 3; i++ {
		suite.True(values[i].IsNone(), "index %d should be inside warm-up", i)
	}

	for i := 3; i < len(values); i++ {
		suite.True(values[i].IsSome(), "index %d should be defined", i)
	}
}

func (suite *RSIUnitTestSuite) TestComputePerfectUptrend() {
	rsi := NewRSI()
	suite.Require().NoError(rsi.Config(3))

	closes := []float64{10, 11, 12, 13, 14, 15}
	values := rsi.Compute(closes)

	for i := 3; i < len(values); i++ {
		suite.InDelta(100.0, values[i].Unwrap(), 1e-9)
	}
}

func (suite *RSIUnitTestSuite) TestComputeFlatSeriesNeutral() {
	rsi := NewRSI()
	suite.Require().NoError(rsi.Config(3))

	// No gains and no losses anywhere: every defined value is neutral 50,
	// so a flat series never votes oversold or overbought.
	closes := []float64{10, 10, 10, 10, 10, 10}
	values := rsi.Compute(closes)

	for i := 3; i < len(values); i++ {
		suite.InDelta(50.0, values[i].Unwrap(), 1e-9)
	}
}

func (suite *RSIUnitTestSuite) TestComputeWilderSmoothing() {
	rsi := NewRSI()
	suite.Require().NoError(rsi.Config(2))

	// gains [1 1 0], losses [0 0 1]:
	// initial averages gain=1 loss=0 -> RSI 100 at index 2,
	// then gain=(1+0)/2=0.5 loss=(0+1)/2=0.5 -> RSI 50 at index 3.
	closes := []float64{1, 2, 3, 2}
	values := rsi.Compute(closes)

	suite.InDelta(100.0, values[2].Unwrap(), 1e-9)
	suite.InDelta(50.0, values[3].Unwrap(), 1e-9)
}

func (suite *RSIUnitTestSuite) TestComputeBounded() {
	rsi := NewRSI()
	suite.Require().NoError(rsi.Config(4))

	closes := []float64{50, 48, 52, 47, 55, 53, 60, 41, 44, 58, 39, 62}
	values := rsi.Compute(closes)

	for i, v := range values {
		if v.IsNone() {
			continue
		}

		suite.GreaterOrEqual(v.Unwrap(), 0.0, "index %d", i)
		suite.LessOrEqual(v.Unwrap(), 100.0, "index %d", i)
	}
}
