package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/pkg/model"
)

// ZeroFactors tracks the lowest category average observed in a season.
// Each value starts at the scale factor of its category and is only lowered.
type ZeroFactors struct {
	values model.Scores
}

func NewZeroFactors() *ZeroFactors {
	return &ZeroFactors{values: model.FullScores()}
}

func (z *ZeroFactors) Get(c model.Category) decimal.Decimal {
	return z.values[c]
}

// Observe lowers the zero factor of c to avg if avg is strictly lower.
// It reports whether the value was changed.
func (z *ZeroFactors) Observe(c model.Category, avg decimal.Decimal) bool {
	if avg.LessThan(z.values[c]) {
		z.values[c] = avg
		return true
	}
	return false
}

// Scores returns a copy of the current values.
func (z *ZeroFactors) Scores() model.Scores {
	ret := make(model.Scores, len(z.values))
	for c, v := range z.values {
		ret[c] = v
	}
	return ret
}
