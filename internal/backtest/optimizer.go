package backtest

import (
	"sync"
	"sync/atomic"

	"github.com/rxtech-lab/swing-backtest/internal/logger"
	"github.com/rxtech-lab/swing-backtest/internal/types"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"go.uber.org/zap"
)

// Objective selects the metric the delay optimizer maximizes.
type Objective string

const (
	// ObjectiveReturn maximizes total return.
	ObjectiveReturn Objective = "return"
	// ObjectiveSharpe maximizes the ratio of mean periodic return to its
	// standard deviation.
	ObjectiveSharpe Objective = "sharpe"
	// ObjectiveWinRate maximizes the fraction of winning trades.
	ObjectiveWinRate Objective = "win_rate"
)

// Validate checks that the objective is a known metric.
func (o Objective) Validate() error {
	switch o {
	case ObjectiveReturn, ObjectiveSharpe, ObjectiveWinRate:
		return nil
	default:
		return errors.Newf(errors.ErrCodeInvalidObjective, "unknown optimization objective %q", o)
	}
}

// score computes the objective metric for one simulation result. The
// annualization factor is irrelevant for ranking, so Sharpe uses 1.
func (o Objective) score(result *Result) float64 {
	switch o {
	case ObjectiveSharpe:
		return sharpeRatio(result.EquityCurve, 1)
	case ObjectiveWinRate:
		if len(result.Trades) == 0 {
			return 0
		}

		wins := 0

		for _, trade := range result.Trades {
			if trade.PnL > 0 {
				wins++
			}
		}

		return float64(wins) / float64(len(result.Trades))
	default:
		return result.TotalReturn
	}
}

// DelayRange returns the inclusive delay search range [0, max].
func DelayRange(max int) []int {
	delays := make([]int, max+1)
	for i := range delays {
		delays[i] = i
	}

	return delays
}

// OptimizationResult is the winning grid cell with its full simulation
// output, so downstream reporting never needs to re-simulate.
type OptimizationResult struct {
	EntryDelay int
	ExitDelay  int
	Score      float64
	Result     *Result
}

// Optimizer exhaustively searches the (entry delay, exit delay) grid. Each
// cell is an independent simulation over the same series and raw signals,
// so cells run concurrently; the reduction happens in search order, which
// keeps the winner deterministic regardless of completion order.
type Optimizer struct {
	executor    *Executor
	entryDelays []int
	exitDelays  []int
	objective   Objective
	logger      *logger.Logger

	// OnProgress, when set, is called after each completed cell. It may be
	// called from multiple goroutines.
	OnProgress func(completed, total int)
}

// NewOptimizer creates an optimizer over the given delay search space.
func NewOptimizer(executor *Executor, entryDelays, exitDelays []int, objective Objective, l *logger.Logger) (*Optimizer, error) {
	if len(entryDelays) == 0 || len(exitDelays) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDelayRange, "delay search ranges must not be empty")
	}

	for _, d := range entryDelays {
		if d < 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidDelayRange, "entry delay must be non-negative, got %d", d)
		}
	}

	for _, d := range exitDelays {
		if d < 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidDelayRange, "exit delay must be non-negative, got %d", d)
		}
	}

	if err := objective.Validate(); err != nil {
		return nil, err
	}

	return &Optimizer{
		executor:    executor,
		entryDelays: entryDelays,
		exitDelays:  exitDelays,
		objective:   objective,
		logger:      l,
		OnProgress:  nil,
	}, nil
}

type cellResult struct {
	result *Result
	err    error
}

// Optimize runs one simulation per grid cell and returns the winner.
// Ties on the objective are broken by fewer trades, then by earlier cell in
// row-major (entry outer, exit inner) search order. The first error in
// search order is propagated instead of a partial result.
func (o *Optimizer) Optimize(series *types.BarSeries, rawSignals []types.Signal) (*OptimizationResult, error) {
	total := len(o.entryDelays) * len(o.exitDelays)
	cells := make([]cellResult, total)

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
	)

	for i, entryDelay := range o.entryDelays {
		for j, exitDelay := range o.exitDelays {
			wg.Add(1)

			go func(idx, entry, exit int) {
				defer wg.Done()

				delayed := ApplyDelays(rawSignals, entry, exit)
				result, err := o.executor.Run(series, delayed)
				cells[idx] = cellResult{result: result, err: err}

				done := completed.Add(1)
				if o.OnProgress != nil {
					o.OnProgress(int(done), total)
				}
			}(i*len(o.exitDelays)+j, entryDelay, exitDelay)
		}
	}

	wg.Wait()

	var best *OptimizationResult

	for i, entryDelay := range o.entryDelays {
		for j, exitDelay := range o.exitDelays {
			cell := cells[i*len(o.exitDelays)+j]
			if cell.err != nil {
				return nil, errors.Wrapf(errors.ErrCodeOptimizationFailed, cell.err,
					"simulation failed for entry delay %d, exit delay %d", entryDelay, exitDelay)
			}

			score := o.objective.score(cell.result)

			if best == nil ||
				score > best.Score ||
				(score == best.Score && len(cell.result.Trades) < len(best.Result.Trades)) {
				best = &OptimizationResult{
					EntryDelay: entryDelay,
					ExitDelay:  exitDelay,
					Score:      score,
					Result:     cell.result,
				}
			}
		}
	}

	o.logger.Info("grid search finished",
		zap.String("symbol", series.Symbol),
		zap.Int("cells", total),
		zap.Int("entry_delay", best.EntryDelay),
		zap.Int("exit_delay", best.ExitDelay),
		zap.Float64("score", best.Score))

	return best, nil
}
