package backtest

import "github.com/rxtech-lab/swing-backtest/internal/types"

// ApplyDelays converts raw signals into confirmation-delayed signals.
//
// An entry delay of k keeps a Buy only when the raw signal has been Buy for
// k+1 consecutive bars ending at the current one; exit delays do the same
// for Sell. A delay of zero passes signals through unchanged. Any Hold
// breaks the run, so a signal that flickers never confirms.
func ApplyDelays(signals []types.Signal, entryDelay, exitDelay int) []types.Signal {
	delayed := make([]types.Signal, len(signals))

	run := 0

	for i, signal := range signals {
		if i > 0 && signals[i-1].Type == signal.Type {
			run++
		} else {
			run = 0
		}

		delayed[i] = signal

		switch signal.Type {
		case types.SignalTypeBuy:
			if run < entryDelay {
				delayed[i].Type = types.SignalTypeHold
				delayed[i].Reason = "awaiting entry confirmation"
			}
		case types.SignalTypeSell:
			if run < exitDelay {
				delayed[i].Type = types.SignalTypeHold
				delayed[i].Reason = "awaiting exit confirmation"
			}
		case types.SignalTypeHold:
		}
	}

	return delayed
}
