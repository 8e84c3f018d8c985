package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is a race discipline.
type Category int

const (
	GS Category = iota
	SC
	CL
)

// Categories lists all categories in report order.
var Categories = []Category{GS, SC, CL}

var categoryInfo = map[Category]struct {
	id       string
	fullName string
	scale    decimal.Decimal
}{
	GS: {"GS", "Giant Slalom", decimal.RequireFromString("660.0")},
	SC: {"SC", "Sprint Classic", decimal.RequireFromString("500.0")},
	CL: {"CL", "Classic", decimal.RequireFromString("500.0")},
}

func (c Category) String() string {
	if info, ok := categoryInfo[c]; ok {
		return info.id
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) FullName() string {
	if info, ok := categoryInfo[c]; ok {
		return info.fullName
	}
	return c.String()
}

// ScaleFactor converts the relative slowdown against the best time into
// points. It is also the worst possible score in this category.
func (c Category) ScaleFactor() decimal.Decimal {
	return categoryInfo[c].scale
}

func (c Category) Valid() bool {
	_, ok := categoryInfo[c]
	return ok
}

// ParseCategory resolves a category id like "GS" (case-insensitive).
func ParseCategory(id string) (Category, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for _, c := range Categories {
		if categoryInfo[c].id == id {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", id)
}

// ClampToScale returns d, but at most the scale factor of c.
func (c Category) ClampToScale(d decimal.Decimal) decimal.Decimal {
	return decimal.Min(d, c.ScaleFactor())
}
