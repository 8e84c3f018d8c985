package model

import (
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ZeroesKey is the reserved archive key holding the zero factors.
const ZeroesKey = "data-zeroes"

// Scores holds one value per category.
type Scores map[Category]decimal.Decimal

// FullScores returns scores with every category set to its scale factor.
func FullScores() Scores {
	ret := make(Scores, len(Categories))
	for _, c := range Categories {
		ret[c] = c.ScaleFactor()
	}
	return ret
}

// Archive is the result of a season which is used as baseline for the
// following season.
type Archive struct {
	Racers map[string]Scores
	Zeroes Scores
}

func NewArchive() *Archive {
	return &Archive{
		Racers: make(map[string]Scores),
		Zeroes: make(Scores),
	}
}

// Normalize fills missing categories with the scale factor and clamps
// values exceeding it. This applies to racer entries and zero factors.
func (a *Archive) Normalize() *Archive {
	fix := func(s Scores) Scores {
		if s == nil {
			s = make(Scores, len(Categories))
		}
		for _, c := range Categories {
			v, ok := s[c]
			if !ok || v.GreaterThan(c.ScaleFactor()) {
				s[c] = c.ScaleFactor()
			}
		}
		return s
	}
	if a.Racers == nil {
		a.Racers = make(map[string]Scores)
	}
	for name, s := range a.Racers {
		a.Racers[name] = fix(s)
	}
	a.Zeroes = fix(a.Zeroes)
	return a
}

// Lookup returns the archived scores of a racer.
func (a *Archive) Lookup(name string) (Scores, bool) {
	s, ok := a.Racers[name]
	return s, ok
}

// Zero returns the archived zero factor of c. Missing values default to the
// scale factor.
func (a *Archive) Zero(c Category) decimal.Decimal {
	if v, ok := a.Zeroes[c]; ok {
		return v
	}
	return c.ScaleFactor()
}

// RacerNames returns the racer names in ascending order.
func (a *Archive) RacerNames() []string {
	names := lo.Keys(a.Racers)
	slices.Sort(names)
	return names
}
