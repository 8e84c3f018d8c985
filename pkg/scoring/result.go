package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/pkg/model"
)

// Result is the outcome of one racer in one race.
// Place and points are available after the race was derived.
type Result struct {
	race  *Race
	racer *Racer
	entry model.Entry

	scored    bool
	place     int
	rawPoints decimal.Decimal
	points    decimal.Decimal
}

func (r *Result) Race() *Race              { return r.race }
func (r *Result) Racer() *Racer            { return r.racer }
func (r *Result) Status() model.Status     { return r.entry.Status }
func (r *Result) Category() model.Category { return r.race.Category }

func (r *Result) Finished() bool {
	return r.entry.Status == model.Finished
}

// Started is true unless the racer did not start. DNF and DSQ count as started.
func (r *Result) Started() bool {
	return r.entry.Status != model.DidNotStart
}

func (r *Result) Time() (decimal.Decimal, bool) {
	if !r.Finished() {
		return decimal.Zero, false
	}
	return r.entry.Time, true
}

// Place is the 1-based rank among the finishers of the race.
// Equal times share the same place.
func (r *Result) Place() (int, bool) {
	if !r.Finished() || !r.scored {
		return 0, false
	}
	return r.place, true
}

// RawPoints are the points without race penalty. The fastest finisher gets 0.
func (r *Result) RawPoints() (decimal.Decimal, bool) {
	if !r.Finished() || !r.scored {
		return decimal.Zero, false
	}
	return r.rawPoints, true
}

// Points are the raw points plus the race penalty.
func (r *Result) Points() (decimal.Decimal, bool) {
	if !r.Finished() || !r.scored {
		return decimal.Zero, false
	}
	return r.points, true
}
