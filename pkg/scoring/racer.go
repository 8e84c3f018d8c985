package scoring

import (
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/pkg/model"
)

// factors for the phantom results carried over from last season
var (
	carryFactor        = decimal.RequireFromString("1.44")
	carryZeroFactor    = decimal.RequireFromString("0.44")
	injuredCarryFactor = decimal.RequireFromString("1.22")
	injuredZeroFactor  = decimal.RequireFromString("0.22")
)

// number of values averaged per category
const countedResults = 2

// Racer is a competitor of the season.
type Racer struct {
	Name     string
	Division model.Division
	Injured  bool

	results  []*Result
	archived model.Scores
	prior    *model.Archive

	selections map[model.Category]*BestTwo
	averages   model.Scores
	points     model.Scores
	season     decimal.Decimal
}

// BestTwo is the selection of the two lowest values of a category.
// Values may come from season results or from the penalized carry.
type BestTwo struct {
	Values [countedResults]decimal.Decimal
	// Results holds the season results among the selected values.
	Results []*Result
	// CarryCount is the number of penalized carry values selected (0..2).
	CarryCount int
}

func (b *BestTwo) Counts(res *Result) bool {
	return lo.Contains(b.Results, res)
}

func (b *BestTwo) Average() decimal.Decimal {
	return mean(b.Values[:]...)
}

// Results returns one result per race of the season.
func (r *Racer) Results() []*Result { return r.results }

// ResultsIn returns the results of races in category c.
func (r *Racer) ResultsIn(c model.Category) []*Result {
	return lo.Filter(r.results, func(item *Result, _ int) bool {
		return item.Category() == c
	})
}

// InArchive reports whether the racer has an entry in last season's archive.
func (r *Racer) InArchive() bool { return r.archived != nil }

// CarriedScore is the archived score of last season. Racers without archive
// entry get the scale factor.
func (r *Racer) CarriedScore(c model.Category) decimal.Decimal {
	if v, ok := r.archived[c]; ok {
		return c.ClampToScale(v)
	}
	return c.ScaleFactor()
}

// PenalizedCarry is the value of the phantom results derived from last
// season. It never exceeds the scale factor.
func (r *Racer) PenalizedCarry(c model.Category) decimal.Decimal {
	factor, zeroFactor := carryFactor, carryZeroFactor
	if r.Injured {
		factor, zeroFactor = injuredCarryFactor, injuredZeroFactor
	}
	v := factor.Mul(r.CarriedScore(c)).Add(zeroFactor.Mul(r.prior.Zero(c)))
	return c.ClampToScale(v)
}

// BestTwo returns the selection computed during warm up.
func (r *Racer) BestTwo(c model.Category) *BestTwo {
	return r.selections[c]
}

// CategoryAverage is the mean of the best two values. This value is not
// adjusted by the zero factor.
func (r *Racer) CategoryAverage(c model.Category) decimal.Decimal {
	return r.averages[c]
}

// CategoryPoints is the category average minus the final zero factor.
func (r *Racer) CategoryPoints(c model.Category) decimal.Decimal {
	return r.points[c]
}

// SeasonAverage is the mean of the category points over all categories.
func (r *Racer) SeasonAverage() decimal.Decimal {
	return r.season
}

// selectBestTwo requires the races of the racer to be derived.
func (r *Racer) selectBestTwo(c model.Category) *BestTwo {
	type candidate struct {
		value  decimal.Decimal
		result *Result
	}
	candidates := lo.FilterMap(r.ResultsIn(c), func(item *Result, _ int) (candidate, bool) {
		p, ok := item.Points()
		return candidate{value: p, result: item}, ok
	})
	carry := r.PenalizedCarry(c)
	for range countedResults {
		candidates = append(candidates, candidate{value: carry})
	}
	slices.SortStableFunc(candidates, func(x, y candidate) int { return x.value.Cmp(y.value) })

	ret := &BestTwo{Results: make([]*Result, 0, countedResults)}
	for i, item := range candidates[:countedResults] {
		ret.Values[i] = item.value
		if item.result != nil {
			ret.Results = append(ret.Results, item.result)
		} else {
			ret.CarryCount++
		}
	}
	return ret
}

func mean(values ...decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, values...).
		DivRound(decimal.NewFromInt(int64(len(values))), divPrecision)
}
