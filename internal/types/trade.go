package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a closed round trip: one entry fill and one exit fill.
// Created when a long position closes and immutable afterward.
type Trade struct {
	Symbol     string    `csv:"symbol"`
	EntryTime  time.Time `csv:"entry_time"`
	EntryPrice float64   `csv:"entry_price"`
	ExitTime   time.Time `csv:"exit_time"`
	ExitPrice  float64   `csv:"exit_price"`
	Quantity   float64   `csv:"quantity"`
	// Commission is the total fee paid on both fills.
	Commission float64 `csv:"commission"`
	// PnL is the realized profit and loss net of commission.
	PnL float64 `csv:"pnl"`
	// HoldingPeriod is the number of bars between entry and exit fills.
	HoldingPeriod int `csv:"holding_period"`
}

// RealizedPnL computes quantity*(exit-entry) - commission using decimal
// arithmetic so that long chains of fills do not accumulate float error.
func RealizedPnL(entryPrice, exitPrice, quantity, commission float64) float64 {
	entryDec := decimal.NewFromFloat(entryPrice)
	exitDec := decimal.NewFromFloat(exitPrice)
	qtyDec := decimal.NewFromFloat(quantity)

	gross := exitDec.Sub(entryDec).Mul(qtyDec)
	net := gross.Sub(decimal.NewFromFloat(commission))

	result, _ := net.Float64()

	return result
}

// EquityPoint is one sample of the equity curve, aligned with a bar.
type EquityPoint struct {
	Time   time.Time `csv:"time"`
	Equity float64   `csv:"equity"`
}
