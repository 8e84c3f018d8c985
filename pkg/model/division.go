package model

import (
	"fmt"
	"strings"
)

// Division partitions racers for the report. It has no influence on scoring.
type Division int

const (
	Men Division = iota
	Ladies
)

var Divisions = []Division{Men, Ladies}

// ParseDivision accepts M for men and F or L for ladies.
func ParseDivision(s string) (Division, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M":
		return Men, nil
	case "F", "L":
		return Ladies, nil
	default:
		return 0, fmt.Errorf("unknown division %q", s)
	}
}

// GroupName is used as table title, e.g. "Mens' Points".
func (d Division) GroupName() string {
	if d == Men {
		return "Mens"
	}
	return "Ladies"
}

func (d Division) IndividualName() string {
	if d == Men {
		return "Male"
	}
	return "Female"
}

func (d Division) ShortName() string {
	if d == Men {
		return "M"
	}
	return "L"
}

func (d Division) String() string {
	return d.ShortName()
}
