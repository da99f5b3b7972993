package indicator

import (
	"github.com/rxtech-lab/swing-backtest/internal/logger"
	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"go.uber.org/zap"
)

// Engine computes the full indicator frame for a bar series in one pass.
// Bars are processed strictly in timestamp order; every value at index i
// depends only on bars at indexes <= i.
type Engine struct {
	rsi    *RSI
	macd   *MACD
	cci    *CCI
	logger *logger.Logger
}

// NewEngine creates an indicator engine with default indicator parameters.
func NewEngine(l *logger.Logger) *Engine {
	return &Engine{
		rsi:    NewRSI(),
		macd:   NewMACD(),
		cci:    NewCCI(),
		logger: l,
	}
}

// Config configures all indicator periods at once.
func (e *Engine) Config(rsiPeriod, macdFast, macdSlow, macdSignal, cciPeriod int) error {
	if err := e.rsi.Config(rsiPeriod); err != nil {
		return err
	}

	if err := e.macd.Config(macdFast, macdSlow, macdSignal); err != nil {
		return err
	}

	return e.cci.Config(cciPeriod)
}

// WarmupLen returns the longest warm-up requirement across all indicators.
func (e *Engine) WarmupLen() int {
	warmup := e.rsi.WarmupLen()
	if e.macd.WarmupLen() > warmup {
		warmup = e.macd.WarmupLen()
	}

	if e.cci.WarmupLen() > warmup {
		warmup = e.cci.WarmupLen()
	}

	return warmup
}

// Compute produces the indicator frame for the series. The series must hold
// at least WarmupLen()+1 bars so that at least one row is fully defined;
// shorter series fail with InsufficientHistory rather than emitting a frame
// of partially defined rows.
func (e *Engine) Compute(series *types.BarSeries) (*Frame, error) {
	if series == nil || series.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "cannot compute indicators over an empty series")
	}

	required := e.WarmupLen() + 1
	if series.Len() < required {
		return nil, errors.Newf(errors.ErrCodeInsufficientHistory,
			"series for %s has %d bars but indicators need at least %d",
			series.Symbol, series.Len(), required)
	}

	closes := series.Closes()

	rsi := e.rsi.Compute(closes)
	macdLine, macdSignal, macdHist := e.macd.Compute(closes)
	cci := e.cci.Compute(series.Bars)

	rows := make([]Row, series.Len())
	for i := range rows {
		rows[i] = Row{
			RSI:        rsi[i],
			MACD:       macdLine[i],
			MACDSignal: macdSignal[i],
			MACDHist:   macdHist[i],
			CCI:        cci[i],
		}
	}

	frame := &Frame{
		Symbol: series.Symbol,
		Rows:   rows,
	}

	e.logger.Debug("computed indicator frame",
		zap.String("symbol", series.Symbol),
		zap.Int("bars", series.Len()),
		zap.Int("warmup", frame.WarmupLen()))

	return frame, nil
}
