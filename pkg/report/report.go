// Package report renders the points list of a computed season as LaTeX
// document.
package report

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/log"
	"github.com/mpapenbr/ustsa-points/pkg/model"
	"github.com/mpapenbr/ustsa-points/pkg/scoring"
)

const (
	DefaultFile     = "output.tex"
	DefaultPDFLatex = "pdflatex"
	// points are printed with this number of decimals
	decimals = 2
)

//go:embed report.tex.tmpl
var texTemplate string

var tmpl = template.Must(template.New("report").
	Delims("<<", ">>").
	Funcs(template.FuncMap{
		"tex": escape,
		"daggerNote": func() string {
			return `A dagger ($\dagger$) next to a racer's name indicates the racer ` +
				`was injured for the season and was given only a 22\% penalty on ` +
				`the last season rather than 44\%.`
		},
	}).
	Parse(texTemplate))

var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

func escape(s string) string {
	return texEscaper.Replace(s)
}

type (
	document struct {
		Year    int
		Ladies  seasonTable
		Men     seasonTable
		Zeroes  []zeroLine
		Details []categoryDetail
	}
	seasonTable struct {
		Title string
		Codes []string
		Rows  []seasonRow
	}
	seasonRow struct {
		Name    string
		Injured bool
		Points  []string
		Average string
	}
	zeroLine struct {
		Code  string
		Value string
	}
	categoryDetail struct {
		Code      string
		FullName  string
		Races     []string
		Penalties []string
		Columns   int
		Rows      []detailRow
	}
	detailRow struct {
		Name    string
		Injured bool
		Carry   cell
		Results []cell
	}
	cell struct {
		Value string
		Bold  bool
		Empty bool
	}
)

func format(d decimal.Decimal) string {
	return d.StringFixed(decimals)
}

// Write renders the report of s. The season must be completely computed.
func Write(w io.Writer, s *scoring.Season) error {
	if s.Stage() != scoring.StageDone {
		return fmt.Errorf("%w: report requires stage %s, got %s",
			scoring.ErrStageOrder, scoring.StageDone, s.Stage())
	}
	return tmpl.Execute(w, newDocument(s))
}

// WriteFile renders the report of s to path.
func WriteFile(path string, s *scoring.Season) error {
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		return err
	}
	//nolint:gosec // report is meant to be readable
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// CompilePDF runs pdflatex on the report at path. The pdf is created next to
// the report.
func CompilePDF(ctx context.Context, pdflatex, path string) error {
	//nolint:gosec // command is configured by the operator
	cmd := exec.CommandContext(ctx, pdflatex,
		"-interaction=batchmode", filepath.Base(path))
	cmd.Dir = filepath.Dir(path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Debug("pdflatex output", log.String("output", string(out)))
		return fmt.Errorf("%s %s: %w", pdflatex, path, err)
	}
	return nil
}

func newDocument(s *scoring.Season) *document {
	codes := lo.Map(model.Categories, func(c model.Category, _ int) string {
		return c.String()
	})
	table := func(d model.Division) seasonTable {
		return seasonTable{
			Title: d.GroupName(),
			Codes: codes,
			Rows: lo.Map(s.DivisionStandings(d), func(r *scoring.Racer, _ int) seasonRow {
				return seasonRow{
					Name:    r.Name,
					Injured: r.Injured,
					Points: lo.Map(model.Categories, func(c model.Category, _ int) string {
						return format(r.CategoryPoints(c))
					}),
					Average: format(r.SeasonAverage()),
				}
			}),
		}
	}
	return &document{
		Year:   s.Year,
		Ladies: table(model.Ladies),
		Men:    table(model.Men),
		Zeroes: lo.Map(model.Categories, func(c model.Category, _ int) zeroLine {
			return zeroLine{Code: c.String(), Value: format(s.ZeroFactor(c))}
		}),
		Details: lo.Map(model.Categories, func(c model.Category, _ int) categoryDetail {
			return newCategoryDetail(s, c)
		}),
	}
}

func newCategoryDetail(s *scoring.Season, c model.Category) categoryDetail {
	races := s.RacesIn(c)
	return categoryDetail{
		Code:     c.String(),
		FullName: c.FullName(),
		Races: lo.Map(races, func(r *scoring.Race, _ int) string {
			return escape(r.Name)
		}),
		Penalties: lo.Map(races, func(r *scoring.Race, _ int) string {
			return format(r.Penalty())
		}),
		// name and carry column
		Columns: len(races) + 2,
		Rows: lo.Map(s.CategoryStandings(c), func(r *scoring.Racer, _ int) detailRow {
			sel := r.BestTwo(c)
			return detailRow{
				Name:    r.Name,
				Injured: r.Injured,
				Carry:   cell{Value: format(r.PenalizedCarry(c)), Bold: sel.CarryCount > 0},
				Results: lo.Map(r.ResultsIn(c), func(res *scoring.Result, _ int) cell {
					p, ok := res.Points()
					if !ok {
						return cell{Empty: true}
					}
					return cell{Value: format(p), Bold: sel.Counts(res)}
				}),
			}
		}),
	}
}
