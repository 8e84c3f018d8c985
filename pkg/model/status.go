package model

import "github.com/shopspring/decimal"

type Status int

const (
	DidNotStart Status = iota
	Finished
	DidNotFinish
	Disqualified
)

func (s Status) String() string {
	switch s {
	case Finished:
		return "FIN"
	case DidNotFinish:
		return "DNF"
	case Disqualified:
		return "DSQ"
	default:
		return "DNS"
	}
}

// Entry is the parsed value of a single time field.
// Time is only meaningful if Status is Finished.
type Entry struct {
	Status Status
	Time   decimal.Decimal
}

func FinishedIn(t decimal.Decimal) Entry {
	return Entry{Status: Finished, Time: t}
}
