package types

import "time"

type SignalType string

const (
	// SignalTypeBuy is a signal that tells the executor to open a long position
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell is a signal that tells the executor to close a long position
	SignalTypeSell SignalType = "sell"
	// SignalTypeHold is a signal that tells the executor to take no action
	SignalTypeHold SignalType = "hold"
)

type Signal struct {
	// Time is the time of the signal
	Time time.Time
	// Type is the type of the signal
	Type SignalType
	// Reason is the reason for the signal
	Reason string
	// Votes is the number of indicator conditions that agreed on this signal
	Votes int
	// RawValue holds the indicator values the signal was derived from
	RawValue map[string]float64
	// Symbol is the symbol of the signal
	Symbol string
}
