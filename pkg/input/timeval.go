package input

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/pkg/model"
)

var secondsPerMinute = decimal.NewFromInt(60)

// ParseTime converts a time field of the results table.
//
// Accepted values:
//   - empty: did not start
//   - decimal seconds, e.g. 63.25
//   - minutes and seconds, e.g. 1:03.25
//   - DNF, DNS, DSQ
func ParseTime(field string) (model.Entry, error) {
	field = strings.TrimSpace(field)
	switch field {
	case "", "DNS":
		return model.Entry{Status: model.DidNotStart}, nil
	case "DNF":
		return model.Entry{Status: model.DidNotFinish}, nil
	case "DSQ":
		return model.Entry{Status: model.Disqualified}, nil
	}

	var t decimal.Decimal
	var err error
	if minutes, seconds, found := strings.Cut(field, ":"); found {
		t, err = parseMinutes(minutes, seconds)
	} else {
		t, err = decimal.NewFromString(field)
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("%w: %q", ErrMalformedTime, field)
	}
	if !t.IsPositive() {
		return model.Entry{}, fmt.Errorf("%w: %q must be positive", ErrMalformedTime, field)
	}
	return model.FinishedIn(t), nil
}

func parseMinutes(minutes, seconds string) (decimal.Decimal, error) {
	m, err := decimal.NewFromString(minutes)
	if err != nil {
		return decimal.Zero, err
	}
	s, err := decimal.NewFromString(seconds)
	if err != nil {
		return decimal.Zero, err
	}
	return secondsPerMinute.Mul(m).Add(s), nil
}
