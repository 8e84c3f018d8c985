// Package basedata provides a small season used by tests of several packages.
package basedata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/pkg/model"
)

const SampleYear = 2016

// SampleResultsCSV is a results table with two GS races (one with penalty
// override), one SC and one CL race.
const SampleResultsCSV = `Name,Injury,Howelsen Hill 1#GS,Howelsen Hill 2#GS#32.369,Vail#SC,Nationals 1#CL
Anna Berg#F,,61.20,62.00,1:30.50,4:10.00
Carla Diaz#F,inj,,,1:35.00,DNF
Ben Carter#M,,60.00,60.50,1:28.00,4:00.00
Dan Evans#M,,63.00,DSQ,1:31.00,
Eric Fox#M,,DNF,61.75,,4:05.50
`

// SampleArchiveJSON is the archive of the season before SampleYear.
// Eric Fox is new to the points list.
const SampleArchiveJSON = `{
    "Anna Berg": {"GS": "40.5", "SC": "22.1", "CL": "30"},
    "Ben Carter": {"GS": "12.25", "SC": "8", "CL": "10.75"},
    "Carla Diaz": {"GS": "55", "SC": 31.5, "CL": "700"},
    "Dan Evans": {"GS": "80", "SC": "45.5"},
    "data-zeroes": {"GS": "20.5", "SC": "15.25", "CL": "18"}
}
`

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// SampleArchive is the normalized content of SampleArchiveJSON.
func SampleArchive() *model.Archive {
	return (&model.Archive{
		Racers: map[string]model.Scores{
			"Anna Berg":  {model.GS: d("40.5"), model.SC: d("22.1"), model.CL: d("30")},
			"Ben Carter": {model.GS: d("12.25"), model.SC: d("8"), model.CL: d("10.75")},
			"Carla Diaz": {model.GS: d("55"), model.SC: d("31.5"), model.CL: d("500")},
			"Dan Evans":  {model.GS: d("80"), model.SC: d("45.5"), model.CL: d("500")},
		},
		Zeroes: model.Scores{model.GS: d("20.5"), model.SC: d("15.25"), model.CL: d("18")},
	}).Normalize()
}

// WriteSampleSeason writes SampleResultsCSV and SampleArchiveJSON to dir
// using the default file names for year.
func WriteSampleSeason(dir string, year int) error {
	if err := os.WriteFile(
		filepath.Join(dir, fmt.Sprintf("results%d.csv", year)),
		[]byte(SampleResultsCSV), 0o600); err != nil {
		return err
	}
	return os.WriteFile(
		filepath.Join(dir, fmt.Sprintf("points%d.json", year-1)),
		[]byte(SampleArchiveJSON), 0o600)
}
