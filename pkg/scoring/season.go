package scoring

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/log"
	"github.com/mpapenbr/ustsa-points/pkg/model"
)

// precision used for all divisions
const divPrecision int32 = 32

// Stage is the last completed step of a season computation.
type Stage int

const (
	StageLoading Stage = iota
	StageWarmingUp
	StageRanking
	StageArchiving
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageLoading:
		return "loading"
	case StageWarmingUp:
		return "warming-up"
	case StageRanking:
		return "ranking"
	case StageArchiving:
		return "archiving"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Season holds the races, racers and results of one season run.
//
// The computation is split into stages which have to be called in order:
// WarmUp, Rank, Archive and Finish. WarmUp computes every raw category
// average before any zero adjusted value is derived, so the adjusted values
// do not depend on the order in which racers are processed.
type Season struct {
	Year int

	prior  *model.Archive
	races  []*Race
	racers []*Racer
	zeroes *ZeroFactors
	stage  Stage

	standings         []*Racer
	categoryStandings map[model.Category][]*Racer

	log *log.Logger
}

type Option func(s *Season)

func WithLogger(l *log.Logger) Option {
	return func(s *Season) {
		s.log = l
	}
}

// NewSeason builds the race/racer/result graph from the parsed table.
// prior is the archive of the previous season.
//
//nolint:funlen // by design
func NewSeason(
	year int,
	prior *model.Archive,
	table *model.ResultTable,
	opts ...Option,
) (*Season, error) {
	if prior == nil {
		return nil, ErrNoArchive
	}
	s := &Season{
		Year:              year,
		prior:             prior,
		zeroes:            NewZeroFactors(),
		stage:             StageLoading,
		categoryStandings: make(map[model.Category][]*Racer),
		log:               log.Default().Named("scoring"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.races = make([]*Race, len(table.Races))
	for i, h := range table.Races {
		if !h.Category.Valid() {
			return nil, fmt.Errorf("race %s: invalid category %d", h.Name, h.Category)
		}
		s.races[i] = &Race{
			Name:     h.Name,
			Category: h.Category,
			column:   i,
			override: h.Penalty,
			results:  make([]*Result, 0, len(table.Racers)),
		}
	}

	seen := make(map[string]bool, len(table.Racers))
	s.racers = make([]*Racer, len(table.Racers))
	for i := range table.Racers {
		row := &table.Racers[i]
		if seen[row.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRacer, row.Name)
		}
		seen[row.Name] = true
		if len(row.Entries) != len(s.races) {
			return nil, fmt.Errorf("%w: racer %s has %d entries, expected %d",
				ErrRosterMismatch, row.Name, len(row.Entries), len(s.races))
		}
		racer := &Racer{
			Name:       row.Name,
			Division:   row.Division,
			Injured:    row.Injured,
			prior:      prior,
			results:    make([]*Result, len(s.races)),
			selections: make(map[model.Category]*BestTwo, len(model.Categories)),
			averages:   make(model.Scores, len(model.Categories)),
			points:     make(model.Scores, len(model.Categories)),
		}
		if archived, ok := prior.Lookup(row.Name); ok {
			racer.archived = archived
		}
		for j, entry := range row.Entries {
			res := &Result{race: s.races[j], racer: racer, entry: entry}
			racer.results[j] = res
			s.races[j].results = append(s.races[j].results, res)
		}
		s.racers[i] = racer
	}
	s.log.Debug("season loaded",
		log.Int("year", year),
		log.Int("races", len(s.races)),
		log.Int("racers", len(s.racers)))
	return s, nil
}

func (s *Season) Stage() Stage { return s.stage }

// Races returns the races in table order.
func (s *Season) Races() []*Race { return s.races }

// RacesIn returns the races of category c in table order.
func (s *Season) RacesIn(c model.Category) []*Race {
	return lo.Filter(s.races, func(item *Race, _ int) bool { return item.Category == c })
}

// Racers returns the racers in roster order.
func (s *Season) Racers() []*Racer { return s.racers }

// ZeroFactor returns the current zero factor of c.
func (s *Season) ZeroFactor(c model.Category) decimal.Decimal {
	return s.zeroes.Get(c)
}

// LastSeasonZero returns the zero factor of the prior season.
func (s *Season) LastSeasonZero(c model.Category) decimal.Decimal {
	return s.prior.Zero(c)
}

// Standings are all racers ordered by season average. Available after Rank.
func (s *Season) Standings() []*Racer { return s.standings }

// DivisionStandings are the standings restricted to division d.
func (s *Season) DivisionStandings(d model.Division) []*Racer {
	return lo.Filter(s.standings, func(item *Racer, _ int) bool { return item.Division == d })
}

// CategoryStandings are all racers ordered by their points in c.
func (s *Season) CategoryStandings(c model.Category) []*Racer {
	return s.categoryStandings[c]
}

func (s *Season) advance(from, to Stage) error {
	if s.stage != from {
		return fmt.Errorf("%w: cannot enter %s in stage %s", ErrStageOrder, to, s.stage)
	}
	s.stage = to
	return nil
}

// WarmUp derives all race values, selects the best two values per racer and
// category and establishes the final zero factors. Afterwards the zero
// adjusted category points and season averages are computed.
func (s *Season) WarmUp() error {
	if err := s.advance(StageLoading, StageWarmingUp); err != nil {
		return err
	}
	for _, race := range s.races {
		if err := race.derive(); err != nil {
			return err
		}
		s.log.Debug("race derived",
			log.String("race", race.Name),
			log.String("category", race.Category.String()),
			log.Decimal("penalty", race.Penalty()))
	}

	// phase 1: raw averages, lowering the zero factors
	for _, racer := range s.racers {
		for _, c := range model.Categories {
			sel := racer.selectBestTwo(c)
			racer.selections[c] = sel
			racer.averages[c] = sel.Average()
			if s.zeroes.Observe(c, racer.averages[c]) {
				s.log.Debug("zero factor lowered",
					log.String("category", c.String()),
					log.String("racer", racer.Name),
					log.Decimal("zero", s.zeroes.Get(c)))
			}
		}
	}

	// phase 2: apply the final zero factors
	for _, racer := range s.racers {
		points := make([]decimal.Decimal, 0, len(model.Categories))
		for _, c := range model.Categories {
			racer.points[c] = racer.averages[c].Sub(s.zeroes.Get(c))
			points = append(points, racer.points[c])
		}
		racer.season = mean(points...)
	}
	return nil
}

// Rank orders the racers by season average and by category points.
// The season standings keep the roster order for equal values. Each category
// is sorted starting from the order of the previous one (the first from the
// season standings), so ties carry that order along.
func (s *Season) Rank() error {
	if err := s.advance(StageWarmingUp, StageRanking); err != nil {
		return err
	}
	s.standings = sortedBy(s.racers, func(r *Racer) decimal.Decimal {
		return r.SeasonAverage()
	})
	prev := s.standings
	for _, c := range model.Categories {
		prev = sortedBy(prev, func(r *Racer) decimal.Decimal {
			return r.CategoryPoints(c)
		})
		s.categoryStandings[c] = prev
	}
	return nil
}

// Archive creates the archive for the next season. It contains the
// category points of every racer and the final zero factors.
func (s *Season) Archive() (*model.Archive, error) {
	if err := s.advance(StageRanking, StageArchiving); err != nil {
		return nil, err
	}
	ret := model.NewArchive()
	for _, racer := range s.standings {
		scores := make(model.Scores, len(model.Categories))
		for _, c := range model.Categories {
			scores[c] = racer.CategoryPoints(c)
		}
		ret.Racers[racer.Name] = scores
	}
	ret.Zeroes = s.zeroes.Scores()
	return ret, nil
}

// Finish marks the season as done. The graph is read-only afterwards.
func (s *Season) Finish() error {
	return s.advance(StageArchiving, StageDone)
}

// Compute runs all remaining stages and returns the archive for the next
// season.
func (s *Season) Compute() (*model.Archive, error) {
	if err := s.WarmUp(); err != nil {
		return nil, err
	}
	if err := s.Rank(); err != nil {
		return nil, err
	}
	ret, err := s.Archive()
	if err != nil {
		return nil, err
	}
	if err := s.Finish(); err != nil {
		return nil, err
	}
	return ret, nil
}

func sortedBy(racers []*Racer, key func(r *Racer) decimal.Decimal) []*Racer {
	ret := slices.Clone(racers)
	slices.SortStableFunc(ret, func(a, b *Racer) int { return key(a).Cmp(key(b)) })
	return ret
}
