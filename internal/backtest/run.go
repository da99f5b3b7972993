package backtest

import (
	"github.com/rxtech-lab/swing-backtest/internal/indicator"
	"github.com/rxtech-lab/swing-backtest/internal/logger"
	"github.com/rxtech-lab/swing-backtest/internal/strategy"
	"github.com/rxtech-lab/swing-backtest/internal/types"
	"go.uber.org/zap"
)

// RunOutput bundles everything one full pipeline run produces.
type RunOutput struct {
	// Best is the winning grid cell with its trade ledger and equity curve.
	Best *OptimizationResult
	// Report summarizes the winning simulation.
	Report types.PerformanceReport
	// RawSignals are the undelayed per-bar signals, useful for rendering.
	RawSignals []types.Signal
}

// Run executes the whole pipeline over an already-resampled series:
// indicators, raw signals, delay grid search, and the performance report
// for the winning cell. onProgress may be nil.
func Run(series *types.BarSeries, config Config, l *logger.Logger, onProgress func(completed, total int)) (*RunOutput, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	sliced, err := series.Slice(config.StartTime, config.EndTime)
	if err != nil {
		return nil, err
	}

	engine := indicator.NewEngine(l)
	if err := engine.Config(config.RSIPeriod, config.MACDFastPeriod, config.MACDSlowPeriod, config.MACDSignalPeriod, config.CCIPeriod); err != nil {
		return nil, err
	}

	frame, err := engine.Compute(sliced)
	if err != nil {
		return nil, err
	}

	swing, err := strategy.NewSwingStrategy(config.Signal, l)
	if err != nil {
		return nil, err
	}

	rawSignals, err := swing.Evaluate(sliced, frame)
	if err != nil {
		return nil, err
	}

	executor, err := NewExecutor(config.InitialCapital, config.CommissionRate, l)
	if err != nil {
		return nil, err
	}

	optimizer, err := NewOptimizer(executor,
		DelayRange(config.MaxEntryDelay), DelayRange(config.MaxExitDelay),
		config.Objective, l)
	if err != nil {
		return nil, err
	}

	optimizer.OnProgress = onProgress

	best, err := optimizer.Optimize(sliced, rawSignals)
	if err != nil {
		return nil, err
	}

	report := BuildReport(sliced, best.Result, best.EntryDelay, best.ExitDelay, config.Resample.PeriodsPerYear())

	l.Info("pipeline finished",
		zap.String("symbol", sliced.Symbol),
		zap.Float64("total_return", best.Result.TotalReturn),
		zap.Int("trades", len(best.Result.Trades)))

	return &RunOutput{
		Best:       best,
		Report:     report,
		RawSignals: rawSignals,
	}, nil
}
