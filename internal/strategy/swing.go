// Package strategy turns an indicator frame into raw per-bar trade signals.
package strategy

import (
	"fmt"

	"github.com/rxtech-lab/swing-backtest/internal/indicator"
	"github.com/rxtech-lab/swing-backtest/internal/logger"
	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"go.uber.org/zap"
)

// SwingConfig holds the signal thresholds and the vote rule.
type SwingConfig struct {
	// RSIOversold is the RSI level below which the RSI votes to buy.
	RSIOversold float64 `yaml:"rsi_oversold"`
	// RSIOverbought is the RSI level above which the RSI votes to sell.
	RSIOverbought float64 `yaml:"rsi_overbought"`
	// CCIOversold is the CCI level a cross above counts as a buy vote.
	CCIOversold float64 `yaml:"cci_oversold"`
	// CCIOverbought is the CCI level a cross below counts as a sell vote.
	CCIOverbought float64 `yaml:"cci_overbought"`
	// MACDHistThreshold is the histogram level whose crossings vote.
	MACDHistThreshold float64 `yaml:"macd_hist_threshold"`
	// Votes is the minimum number of agreeing conditions required to emit
	// a Buy or Sell. 3 means all indicators must agree, 2 is a majority.
	Votes int `yaml:"votes"`
}

// DefaultSwingConfig returns the documented default thresholds.
func DefaultSwingConfig() SwingConfig {
	return SwingConfig{
		RSIOversold:       30,
		RSIOverbought:     70,
		CCIOversold:       -100,
		CCIOverbought:     100,
		MACDHistThreshold: 0,
		Votes:             2,
	}
}

// Validate checks the thresholds and vote count.
func (c SwingConfig) Validate() error {
	if c.RSIOversold < 0 || c.RSIOverbought > 100 {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"RSI thresholds must lie in [0,100], got oversold=%.2f overbought=%.2f",
			c.RSIOversold, c.RSIOverbought)
	}

	if c.RSIOversold >= c.RSIOverbought {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"RSI oversold (%.2f) must be below overbought (%.2f)", c.RSIOversold, c.RSIOverbought)
	}

	if c.CCIOversold >= c.CCIOverbought {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"CCI oversold (%.2f) must be below overbought (%.2f)", c.CCIOversold, c.CCIOverbought)
	}

	if c.Votes < 1 || c.Votes > 3 {
		return errors.Newf(errors.ErrCodeInvalidVoteCount,
			"vote count must be between 1 and 3, got %d", c.Votes)
	}

	return nil
}

// SwingStrategy combines RSI, MACD histogram and CCI into Buy/Sell/Hold
// signals. Evaluation is a pure function of the current and previous frame
// rows and keeps no state between bars.
type SwingStrategy struct {
	config SwingConfig
	logger *logger.Logger
}

// NewSwingStrategy creates a strategy after validating the config.
func NewSwingStrategy(config SwingConfig, l *logger.Logger) (*SwingStrategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SwingStrategy{
		config: config,
		logger: l,
	}, nil
}

// Evaluate maps every bar to a raw signal. Bars inside the warm-up window
// hold, and the first fully defined bar also holds because crossing
// detection needs a defined previous row.
func (s *SwingStrategy) Evaluate(series *types.BarSeries, frame *indicator.Frame) ([]types.Signal, error) {
	if series.Len() != frame.Len() {
		return nil, errors.Newf(errors.ErrCodeFrameMisaligned,
			"series has %d bars but frame has %d rows", series.Len(), frame.Len())
	}

	signals := make([]types.Signal, series.Len())

	for i := range series.Bars {
		signals[i] = s.evaluateBar(series, frame, i)
	}

	s.logger.Debug("evaluated raw signals",
		zap.String("symbol", series.Symbol),
		zap.Int("bars", series.Len()))

	return signals, nil
}

func (s *SwingStrategy) evaluateBar(series *types.BarSeries, frame *indicator.Frame, i int) types.Signal {
	bar := series.Bars[i]

	hold := types.Signal{
		Time:   bar.Time,
		Type:   types.SignalTypeHold,
		Reason: "indicators not yet available",
		Symbol: series.Symbol,
	}

	if i == 0 {
		return hold
	}

	current := frame.Rows[i]
	previous := frame.Rows[i-1]

	// Crossing detection compares against the previous bar, so both rows
	// must be fully defined. This also forces the first post-warm-up bar
	// to hold.
	if !current.Defined() || !previous.Defined() {
		return hold
	}

	rsi := current.RSI.Unwrap()
	hist := current.MACDHist.Unwrap()
	prevHist := previous.MACDHist.Unwrap()
	cci := current.CCI.Unwrap()
	prevCCI := previous.CCI.Unwrap()

	buyVotes := 0
	if rsi < s.config.RSIOversold {
		buyVotes++
	}

	if prevHist < s.config.MACDHistThreshold && hist >= s.config.MACDHistThreshold {
		buyVotes++
	}

	if prevCCI <= s.config.CCIOversold && cci > s.config.CCIOversold {
		buyVotes++
	}

	sellVotes := 0
	if rsi > s.config.RSIOverbought {
		sellVotes++
	}

	if prevHist > s.config.MACDHistThreshold && hist <= s.config.MACDHistThreshold {
		sellVotes++
	}

	if prevCCI >= s.config.CCIOverbought && cci < s.config.CCIOverbought {
		sellVotes++
	}

	rawValue := map[string]float64{
		"rsi":       rsi,
		"macd_hist": hist,
		"cci":       cci,
	}

	// Conflicting evidence on the same bar cancels out.
	if buyVotes >= s.config.Votes && sellVotes >= s.config.Votes {
		return types.Signal{
			Time:     bar.Time,
			Type:     types.SignalTypeHold,
			Reason:   "buy and sell conditions met simultaneously",
			RawValue: rawValue,
			Symbol:   series.Symbol,
		}
	}

	if buyVotes >= s.config.Votes {
		return types.Signal{
			Time:     bar.Time,
			Type:     types.SignalTypeBuy,
			Reason:   fmt.Sprintf("%d of 3 buy conditions met", buyVotes),
			Votes:    buyVotes,
			RawValue: rawValue,
			Symbol:   series.Symbol,
		}
	}

	if sellVotes >= s.config.Votes {
		return types.Signal{
			Time:     bar.Time,
			Type:     types.SignalTypeSell,
			Reason:   fmt.Sprintf("%d of 3 sell conditions met", sellVotes),
			Votes:    sellVotes,
			RawValue: rawValue,
			Symbol:   series.Symbol,
		}
	}

	return types.Signal{
		Time:     bar.Time,
		Type:     types.SignalTypeHold,
		Reason:   "no condition met",
		RawValue: rawValue,
		Symbol:   series.Symbol,
	}
}
