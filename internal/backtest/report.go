package backtest

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/swing-backtest/internal/types"
)

// BuildReport aggregates a simulation result into a performance report.
// periodsPerYear annualizes the Sharpe-like ratio and depends on the bar
// frequency (52 for weekly bars, 252 for trading days).
func BuildReport(series *types.BarSeries, result *Result, entryDelay, exitDelay int, periodsPerYear float64) types.PerformanceReport {
	report := types.PerformanceReport{
		ID:             uuid.New().String(),
		Timestamp:      time.Now(),
		Symbol:         result.Symbol,
		EntryDelay:     entryDelay,
		ExitDelay:      exitDelay,
		InitialCapital: result.InitialCapital,
		FinalEquity:    result.FinalEquity,
		TotalReturn:    result.TotalReturn,
		TotalFees:      result.TotalCommission,
	}

	report.TradeResult = types.TradeResult{
		NumberOfTrades: len(result.Trades),
		MaxDrawdown:    maxDrawdown(result.EquityCurve),
	}

	holding := types.TradeHoldingTime{}

	for i, trade := range result.Trades {
		if trade.PnL > 0 {
			report.TradeResult.NumberOfWinningTrades++
		} else if trade.PnL < 0 {
			report.TradeResult.NumberOfLosingTrades++
		}

		if i == 0 || trade.HoldingPeriod < holding.Min {
			holding.Min = trade.HoldingPeriod
		}

		if trade.HoldingPeriod > holding.Max {
			holding.Max = trade.HoldingPeriod
		}

		holding.Avg += trade.HoldingPeriod
	}

	if len(result.Trades) > 0 {
		report.TradeResult.WinRate = float64(report.TradeResult.NumberOfWinningTrades) / float64(len(result.Trades))
		holding.Avg /= len(result.Trades)
	}

	report.TradeHoldingTime = holding
	report.SharpeRatio = sharpeRatio(result.EquityCurve, periodsPerYear)
	report.BuyAndHoldReturn = buyAndHoldReturn(series)

	return report
}

// maxDrawdown returns the largest peak-to-trough decline of the equity
// curve as a fraction of the peak.
func maxDrawdown(curve []types.EquityPoint) float64 {
	var peak, maxDD float64

	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}

		if peak > 0 {
			dd := (peak - point.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// sharpeRatio computes mean periodic return over its standard deviation,
// annualized by sqrt(periodsPerYear). Risk-free rate is assumed zero.
func sharpeRatio(curve []types.EquityPoint, periodsPerYear float64) float64 {
	if len(curve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)

	for i := 1; i < len(curve); i++ {
		if curve[i-1].Equity == 0 {
			continue
		}

		returns = append(returns, (curve[i].Equity-curve[i-1].Equity)/curve[i-1].Equity)
	}

	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}

	variance /= float64(len(returns))

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return 0
	}

	return mean / stdDev * math.Sqrt(periodsPerYear)
}

// buyAndHoldReturn is the benchmark return of buying at the first close and
// holding to the last.
func buyAndHoldReturn(series *types.BarSeries) float64 {
	if series == nil || series.Len() < 2 {
		return 0
	}

	firstClose := series.Bars[0].Close
	if firstClose == 0 {
		return 0
	}

	return (series.Bars[series.Len()-1].Close - firstClose) / firstClose
}
