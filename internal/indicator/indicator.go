// Package indicator computes RSI, MACD and CCI over a bar series, producing
// a frame aligned one-to-one with the bars. Positions inside an indicator's
// warm-up window are explicit None values, never numeric placeholders, so a
// consumer can not mistake an unavailable value for a real one.
package indicator

import (
	"github.com/moznion/go-optional"
)

// Value is a single indicator sample. None means the indicator is still
// inside its warm-up window at that bar.
type Value = optional.Option[float64]

// Row holds every indicator value for one bar.
type Row struct {
	RSI        Value
	MACD       Value
	MACDSignal Value
	MACDHist   Value
	CCI        Value
}

// Defined reports whether every indicator in the row has a value.
func (r Row) Defined() bool {
	return r.RSI.IsSome() && r.MACD.IsSome() && r.MACDSignal.IsSome() && r.MACDHist.IsSome() && r.CCI.IsSome()
}

// Frame is the full indicator output for a bar series, aligned by index.
type Frame struct {
	Symbol string
	Rows   []Row
}

// Len returns the number of rows in the frame.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// WarmupLen returns the index of the first row where every indicator is
// defined, or the frame length if no such row exists.
func (f *Frame) WarmupLen() int {
	for i, row := range f.Rows {
		if row.Defined() {
			return i
		}
	}

	return len(f.Rows)
}
