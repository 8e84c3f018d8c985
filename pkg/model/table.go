package model

import "github.com/shopspring/decimal"

// RaceHeader describes a race column of the results table.
type RaceHeader struct {
	Name     string
	Category Category
	// Penalty replaces the computed race penalty if set
	Penalty *decimal.Decimal
}

// RacerRow is one line of the results table.
// Entries are in the same order as the race headers.
type RacerRow struct {
	Name     string
	Division Division
	Injured  bool
	Entries  []Entry
}

// ResultTable is the parsed input of a season run.
type ResultTable struct {
	Races  []RaceHeader
	Racers []RacerRow
}
