package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type MACDUnitTestSuite struct {
	suite.Suite
}

func TestMACDUnitSuite(t *testing.T) {
	suite.Run(t, new(MACDUnitTestSuite))
}

func (suite *MACDUnitTestSuite) TestNewMACD() {
	macd := NewMACD()
	suite.NotNil(macd)
	suite.Equal(12, macd.fastPeriod)
	suite.Equal(26, macd.slowPeriod)
	suite.Equal(9, macd.signalPeriod)
	suite.Equal(33, macd.WarmupLen())
}

func (suite *MACDUnitTestSuite) TestConfigValid() {
	macd := NewMACD()
	err := macd.Config(5, 10, 3)
	suite.NoError(err)
	suite.Equal(5, macd.fastPeriod)
	suite.Equal(10, macd.slowPeriod)
	suite.Equal(3, macd.signalPeriod)
	suite.Equal(11, macd.WarmupLen())
}

func (suite *MACDUnitTestSuite) TestConfigInvalid() {
	tests := []struct {
		name                 string
		fast, slow, signaled int
	}{
		{name: "zero fast", fast: 0, slow: 26, signaled: 9},
		{name: "negative slow", fast: 12, slow: -1, signaled: 9},
		{name: "zero signal", fast: 12, slow: 26, signaled: 0},
		{name: "fast not shorter than slow", fast: 26, slow: 26, signaled: 9},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			macd := NewMACD()
			suite.Error(macd.Config(tc.fast, tc.slow, tc.signaled))
		})
	}
}

func (suite *MACDUnitTestSuite) TestComputeAlignmentAndWarmup() {
	macd := NewMACD()

	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	line, signal, histogram := macd.Compute(closes)
	suite.Len(line, 40)
	suite.Len(signal, 40)
	suite.Len(histogram, 40)

	// MACD line defined from slowPeriod-1, histogram from slow+signal-2
	for i := 0; i < 25; i++ {
		suite.True(line[i].IsNone(), "line index %d", i)
	}

	suite.True(line[25].IsSome())

	for i := 0; i < 33; i++ {
		suite.True(histogram[i].IsNone(), "histogram index %d", i)
		suite.True(signal[i].IsNone(), "signal index %d", i)
	}

	suite.True(histogram[33].IsSome())
	suite.True(signal[33].IsSome())
}

func (suite *MACDUnitTestSuite) TestComputeConstantSeriesIsZero() {
	macd := NewMACD()

	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}

	line, signal, histogram := macd.Compute(closes)

	for i := 33; i < len(closes); i++ {
		suite.InDelta(0.0, line[i].Unwrap(), 1e-9)
		suite.InDelta(0.0, signal[i].Unwrap(), 1e-9)
		suite.InDelta(0.0, histogram[i].Unwrap(), 1e-9)
	}
}

func (suite *MACDUnitTestSuite) TestComputeRisingSeriesIsPositive() {
	macd := NewMACD()

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 2*float64(i)
	}

	line, _, _ := macd.Compute(closes)

	// The fast EMA tracks a rising series more closely than the slow one.
	for i := 26; i < len(closes); i++ {
		suite.Greater(line[i].Unwrap(), 0.0, "index %d", i)
	}
}

func (suite *MACDUnitTestSuite) TestComputeTooShort() {
	macd := NewMACD()

	line, signal, histogram := macd.Compute([]float64{1, 2, 3})
	for i := range line {
		suite.True(line[i].IsNone())
		suite.True(signal[i].IsNone())
		suite.True(histogram[i].IsNone())
	}
}

func (suite *MACDUnitTestSuite) TestComputeEMASeededWithSMA() {
	// period 3: first two entries are running means, index 2 is SMA(1,2,3)=2,
	// then EMA with alpha=0.5: 2 + (4-2)*0.5 = 3.
	ema := computeEMA([]float64{1, 2, 3, 4}, 3)
	suite.InDelta(2.0, ema[2], 1e-9)
	suite.InDelta(3.0, ema[3], 1e-9)
}
