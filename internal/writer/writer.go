package writer

import (
	"github.com/rxtech-lab/swing-backtest/internal/types"
)

// ResultWriter defines the interface for writing backtest results.
type ResultWriter interface {
	// WriteTrades writes the closed trades to the output.
	WriteTrades(trades []types.Trade) error

	// WriteSignals writes the raw signal stream to the output.
	WriteSignals(signals []types.Signal) error

	// WriteEquityCurve writes the equity curve data.
	WriteEquityCurve(curve []types.EquityPoint) error

	// WriteReport writes the performance report.
	WriteReport(report types.PerformanceReport) error

	// Dir returns the directory the results are written to.
	Dir() string

	// Close finalizes the writing process.
	Close() error
}
