package scoring

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/pkg/model"
)

const (
	// number of carried scores summed up for the penalty terms
	penaltyFieldSize = 5
	// only finishers up to this place are considered for B and C
	penaltyTopPlaces = 10
)

var penaltyDivisor = decimal.NewFromInt(10)

// Race is a timed event in one category.
type Race struct {
	Name     string
	Category model.Category

	column   int
	override *decimal.Decimal
	results  []*Result

	derived     bool
	hasFinisher bool
	bestTime    decimal.Decimal
	penalty     decimal.Decimal
	a, b, c     decimal.Decimal
}

// Column is the position of the race in the results table.
func (r *Race) Column() int { return r.column }

// Results returns the results of all racers in roster order.
func (r *Race) Results() []*Result { return r.results }

func (r *Race) Finishers() []*Result {
	return lo.Filter(r.results, func(item *Result, _ int) bool { return item.Finished() })
}

// BestTime is the lowest finished time. It is not available if nobody
// finished the race.
func (r *Race) BestTime() (decimal.Decimal, bool) {
	return r.bestTime, r.hasFinisher
}

func (r *Race) HasPenaltyOverride() bool { return r.override != nil }

// Penalty is the points adjustment applied to every result of this race.
func (r *Race) Penalty() decimal.Decimal { return r.penalty }

// PenaltyTerms returns the components of the computed penalty.
// ok is false if the penalty was supplied externally.
func (r *Race) PenaltyTerms() (a, b, c decimal.Decimal, ok bool) {
	if r.override != nil || !r.derived {
		return decimal.Zero, decimal.Zero, decimal.Zero, false
	}
	return r.a, r.b, r.c, true
}

// derive computes best time, places, raw points, penalty and points.
// Subsequent calls are no-ops.
func (r *Race) derive() error {
	if r.derived {
		return nil
	}
	finishers := r.Finishers()
	r.hasFinisher = len(finishers) > 0
	if r.hasFinisher {
		r.bestTime = decimal.Min(finishers[0].entry.Time,
			lo.Map(finishers[1:], func(item *Result, _ int) decimal.Decimal {
				return item.entry.Time
			})...)
	}
	for _, res := range finishers {
		res.place = 1 + lo.CountBy(finishers, func(other *Result) bool {
			return other.entry.Time.LessThan(res.entry.Time)
		})
		raw, err := r.rawPoints(res.entry.Time)
		if err != nil {
			return fmt.Errorf("race %s: %w", r.Name, err)
		}
		res.rawPoints = raw
	}

	if r.override != nil {
		r.penalty = *r.override
	} else {
		r.a = r.startersTerm()
		r.b, r.c = r.finishersTerm(finishers)
		r.penalty = r.a.Add(r.b).Sub(r.c).DivRound(penaltyDivisor, divPrecision)
	}

	for _, res := range finishers {
		res.points = res.rawPoints.Add(r.penalty)
		res.scored = true
	}
	r.derived = true
	return nil
}

// rawPoints converts a time into points relative to the best time.
func (r *Race) rawPoints(t decimal.Decimal) (decimal.Decimal, error) {
	if !r.hasFinisher {
		return decimal.Zero, ErrNoFinishers
	}
	return t.DivRound(r.bestTime, divPrecision).
		Sub(decimal.NewFromInt(1)).
		Mul(r.Category.ScaleFactor()), nil
}

// startersTerm is the sum of the best carried scores of the racers who
// started this race (A).
func (r *Race) startersTerm() decimal.Decimal {
	carried := lo.FilterMap(r.results, func(item *Result, _ int) (decimal.Decimal, bool) {
		return item.racer.CarriedScore(r.Category), item.Started()
	})
	slices.SortFunc(carried, func(x, y decimal.Decimal) int { return x.Cmp(y) })
	return sumFirst(carried, penaltyFieldSize)
}

// finishersTerm computes B and C. Among the top finishers the ones with the
// best carried scores are selected. B is the sum of their carried scores,
// C the sum of their raw points.
func (r *Race) finishersTerm(finishers []*Result) (b, c decimal.Decimal) {
	type pair struct {
		carried decimal.Decimal
		raw     decimal.Decimal
	}
	pairs := lo.FilterMap(finishers, func(item *Result, _ int) (pair, bool) {
		return pair{
			carried: item.racer.CarriedScore(r.Category),
			raw:     item.rawPoints,
		}, item.place <= penaltyTopPlaces
	})
	slices.SortStableFunc(pairs, func(x, y pair) int { return x.carried.Cmp(y.carried) })
	if len(pairs) > penaltyFieldSize {
		pairs = pairs[:penaltyFieldSize]
	}
	b, c = decimal.Zero, decimal.Zero
	for _, p := range pairs {
		b = b.Add(p.carried)
		c = c.Add(p.raw)
	}
	return b, c
}

func sumFirst(values []decimal.Decimal, n int) decimal.Decimal {
	if len(values) > n {
		values = values[:n]
	}
	return decimal.Sum(decimal.Zero, values...)
}
