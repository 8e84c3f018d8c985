package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/pkg/model"
)

const (
	columnSep = ","
	// separates name, category/division and penalty within a column
	fieldSep = "#"
	// leading columns (name, injury flag) before the first race
	leadingColumns = 2
	injuredFlag    = "inj"
)

// ParseRaceHeader parses a race column header "<name>#<category>[#<penalty>]".
func ParseRaceHeader(field string) (model.RaceHeader, error) {
	parts := strings.Split(strings.TrimSpace(field), fieldSep)
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return model.RaceHeader{}, fmt.Errorf("%w: race %q", ErrMalformedHeader, field)
	}
	c, err := model.ParseCategory(parts[1])
	if err != nil {
		return model.RaceHeader{}, fmt.Errorf("%w: race %q: %w", ErrMalformedHeader, field, err)
	}
	ret := model.RaceHeader{Name: parts[0], Category: c}
	if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
		p, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
		if err != nil {
			return model.RaceHeader{}, fmt.Errorf("%w: race %q: penalty: %w",
				ErrMalformedHeader, field, err)
		}
		ret.Penalty = &p
	}
	return ret, nil
}

// ParseRacer parses the leading columns of a racer row: "<name>#<division>"
// and the injury flag.
func ParseRacer(nameField, injuryField string) (model.RacerRow, error) {
	name, div, found := strings.Cut(strings.TrimSpace(nameField), fieldSep)
	if !found || name == "" {
		return model.RacerRow{}, fmt.Errorf("%w: %q: expected <name>#<division>",
			ErrMalformedRow, nameField)
	}
	d, err := model.ParseDivision(div)
	if err != nil {
		return model.RacerRow{}, fmt.Errorf("%w: %q: %w", ErrMalformedRow, nameField, err)
	}
	return model.RacerRow{
		Name:     name,
		Division: d,
		Injured:  strings.TrimSpace(injuryField) == injuredFlag,
	}, nil
}

// Read parses a results table. The first non-blank row is the header.
// Fields are separated by commas and never quoted: a quote is an ordinary
// character. Racer rows shorter than the header are padded with "did not
// start".
func Read(r io.Reader) (*model.ResultTable, error) {
	scanner := bufio.NewScanner(r)
	var table *model.ResultTable
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		record := strings.Split(text, columnSep)
		if table == nil {
			var err error
			if table, err = parseHeader(record); err != nil {
				return nil, err
			}
			continue
		}
		row, err := parseRow(record, len(table.Races))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Racers = append(table.Racers, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("%w: empty table", ErrMalformedHeader)
	}
	return table, nil
}

func parseHeader(header []string) (*model.ResultTable, error) {
	if len(header) < leadingColumns {
		return nil, fmt.Errorf("%w: expected at least %d columns", ErrMalformedHeader, leadingColumns)
	}
	table := &model.ResultTable{
		Races:  make([]model.RaceHeader, 0, len(header)-leadingColumns),
		Racers: make([]model.RacerRow, 0),
	}
	for _, field := range header[leadingColumns:] {
		h, err := ParseRaceHeader(field)
		if err != nil {
			return nil, err
		}
		table.Races = append(table.Races, h)
	}
	return table, nil
}

func parseRow(record []string, races int) (model.RacerRow, error) {
	if len(record) < leadingColumns {
		return model.RacerRow{}, fmt.Errorf("%w: expected at least %d columns",
			ErrMalformedRow, leadingColumns)
	}
	if len(record) > leadingColumns+races {
		return model.RacerRow{}, fmt.Errorf("%w: %d time fields for %d races",
			ErrMalformedRow, len(record)-leadingColumns, races)
	}
	row, err := ParseRacer(record[0], record[1])
	if err != nil {
		return model.RacerRow{}, err
	}
	row.Entries = make([]model.Entry, races)
	for i := range races {
		field := ""
		if leadingColumns+i < len(record) {
			field = record[leadingColumns+i]
		}
		e, err := ParseTime(field)
		if err != nil {
			return model.RacerRow{}, fmt.Errorf("racer %s, column %d: %w", row.Name, leadingColumns+i+1, err)
		}
		row.Entries[i] = e
	}
	return row, nil
}

// ReadFile parses the results table stored at path.
func ReadFile(path string) (*model.ResultTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
