package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
)

// CSVWriter implements ResultWriter by writing to CSV files in a
// timestamped run directory under the base directory.
type CSVWriter struct {
	baseDir string
	runDir  string

	tradesFile      *os.File
	signalsFile     *os.File
	equityCurveFile *os.File

	tradesCsv      *csv.Writer
	signalsCsv     *csv.Writer
	equityCurveCsv *csv.Writer
}

// NewCSVWriter creates a new CSVWriter with the given base directory.
func NewCSVWriter(baseDir string) (ResultWriter, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	runDir := filepath.Join(baseDir, timestamp)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create run directory", err)
	}

	writer := &CSVWriter{
		baseDir: baseDir,
		runDir:  runDir,
	}

	if err := writer.initFiles(); err != nil {
		writer.Close()

		return nil, err
	}

	return writer, nil
}

// initFiles creates all CSV files and writes their headers.
func (w *CSVWriter) initFiles() error {
	tradesFile, err := os.Create(filepath.Join(w.runDir, "trades.csv"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create trades file", err)
	}

	w.tradesFile = tradesFile
	w.tradesCsv = csv.NewWriter(tradesFile)

	if err := w.tradesCsv.Write([]string{
		"symbol", "entry_time", "entry_price", "exit_time", "exit_price",
		"quantity", "commission", "pnl", "holding_period",
	}); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write trades header", err)
	}

	signalsFile, err := os.Create(filepath.Join(w.runDir, "signals.csv"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create signals file", err)
	}

	w.signalsFile = signalsFile
	w.signalsCsv = csv.NewWriter(signalsFile)

	if err := w.signalsCsv.Write([]string{
		"time", "symbol", "type", "votes", "reason",
	}); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write signals header", err)
	}

	equityCurveFile, err := os.Create(filepath.Join(w.runDir, "equity_curve.csv"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create equity curve file", err)
	}

	w.equityCurveFile = equityCurveFile
	w.equityCurveCsv = csv.NewWriter(equityCurveFile)

	if err := w.equityCurveCsv.Write([]string{"time", "equity"}); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write equity curve header", err)
	}

	return nil
}

// WriteTrades writes the closed trades to trades.csv.
func (w *CSVWriter) WriteTrades(trades []types.Trade) error {
	for _, trade := range trades {
		record := []string{
			trade.Symbol,
			trade.EntryTime.Format(time.RFC3339),
			fmt.Sprintf("%f", trade.EntryPrice),
			trade.ExitTime.Format(time.RFC3339),
			fmt.Sprintf("%f", trade.ExitPrice),
			fmt.Sprintf("%f", trade.Quantity),
			fmt.Sprintf("%f", trade.Commission),
			fmt.Sprintf("%f", trade.PnL),
			fmt.Sprintf("%d", trade.HoldingPeriod),
		}

		if err := w.tradesCsv.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write trade", err)
		}
	}

	w.tradesCsv.Flush()

	return w.tradesCsv.Error()
}

// WriteSignals writes the signal stream to signals.csv.
func (w *CSVWriter) WriteSignals(signals []types.Signal) error {
	for _, signal := range signals {
		record := []string{
			signal.Time.Format(time.RFC3339),
			signal.Symbol,
			string(signal.Type),
			fmt.Sprintf("%d", signal.Votes),
			signal.Reason,
		}

		if err := w.signalsCsv.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write signal", err)
		}
	}

	w.signalsCsv.Flush()

	return w.signalsCsv.Error()
}

// WriteEquityCurve writes the equity curve to equity_curve.csv.
func (w *CSVWriter) WriteEquityCurve(curve []types.EquityPoint) error {
	for _, point := range curve {
		record := []string{
			point.Time.Format(time.RFC3339),
			fmt.Sprintf("%f", point.Equity),
		}

		if err := w.equityCurveCsv.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write equity curve point", err)
		}
	}

	w.equityCurveCsv.Flush()

	return w.equityCurveCsv.Error()
}

// WriteReport saves the performance report as report.yaml in the run directory.
func (w *CSVWriter) WriteReport(report types.PerformanceReport) error {
	path := filepath.Join(w.runDir, "report.yaml")

	if err := types.WritePerformanceReport(path, report); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write report", err)
	}

	return nil
}

// Dir returns the run directory.
func (w *CSVWriter) Dir() string {
	return w.runDir
}

// Close flushes and closes all files.
func (w *CSVWriter) Close() error {
	if w.tradesCsv != nil {
		w.tradesCsv.Flush()
	}

	if w.signalsCsv != nil {
		w.signalsCsv.Flush()
	}

	if w.equityCurveCsv != nil {
		w.equityCurveCsv.Flush()
	}

	for _, file := range []*os.File{w.tradesFile, w.signalsFile, w.equityCurveFile} {
		if file != nil {
			file.Close()
		}
	}

	return nil
}
