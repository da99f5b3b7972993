package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Minimum holding time of a trade in bars
	Min int `yaml:"min"`
	// Maximum holding time of a trade in bars
	Max int `yaml:"max"`
	// Average holding time of a trade in bars
	Avg int `yaml:"avg"`
}

type TradeResult struct {
	// Count of all trades.
	NumberOfTrades int `yaml:"number_of_trades"`
	// Count of winning trades that has positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades"`
	// Count of losing trades that has negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades"`
	// Win rate.
	WinRate float64 `yaml:"win_rate"`
	// Maximum drawdown, the largest peak-to-trough decline of the equity curve.
	MaxDrawdown float64 `yaml:"max_drawdown"`
}

// PerformanceReport summarizes one simulation run. It is derived purely from
// the trade ledger and equity curve and is safe to serialize and hand to
// rendering collaborators.
type PerformanceReport struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp"`
	// Symbol of the traded instrument.
	Symbol string `yaml:"symbol"`
	// EntryDelay is the entry confirmation delay, in bars, used for this run.
	EntryDelay int `yaml:"entry_delay"`
	// ExitDelay is the exit confirmation delay, in bars, used for this run.
	ExitDelay int `yaml:"exit_delay"`
	// InitialCapital is the starting account value.
	InitialCapital float64 `yaml:"initial_capital"`
	// FinalEquity is the account value at the last bar.
	FinalEquity float64 `yaml:"final_equity"`
	// TotalReturn is (final - initial) / initial.
	TotalReturn float64 `yaml:"total_return"`
	// Result of all trades.
	TradeResult TradeResult `yaml:"trade_result"`
	// Holding time of all trades.
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time"`
	// SharpeRatio is the annualized mean periodic return over its standard deviation.
	SharpeRatio float64 `yaml:"sharpe_ratio"`
	// Total fees.
	TotalFees float64 `yaml:"total_fees"`
	// Buy and hold return over the same bars, for comparison.
	BuyAndHoldReturn float64 `yaml:"buy_and_hold_return"`
}

// WritePerformanceReport saves the report to a YAML file.
func WritePerformanceReport(path string, report PerformanceReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal performance report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write performance report to file: %w", err)
	}

	return nil
}
