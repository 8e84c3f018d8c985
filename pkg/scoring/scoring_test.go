//nolint:funlen,lll // ok for tests
package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/ustsa-points/pkg/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fin(s string) model.Entry { return model.FinishedIn(d(s)) }

var (
	dns = model.Entry{Status: model.DidNotStart}
	dnf = model.Entry{Status: model.DidNotFinish}
	dsq = model.Entry{Status: model.Disqualified}
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func emptyArchive() *model.Archive {
	return model.NewArchive().Normalize()
}

func archiveGS(values map[string]string) *model.Archive {
	a := model.NewArchive()
	for name, v := range values {
		a.Racers[name] = model.Scores{model.GS: d(v)}
	}
	return a.Normalize()
}

func zeroPenalty() *decimal.Decimal {
	z := decimal.Zero
	return &z
}

func racer(name string, entries ...model.Entry) model.RacerRow {
	return model.RacerRow{Name: name, Division: model.Men, Entries: entries}
}

func mustSeason(t *testing.T, prior *model.Archive, table *model.ResultTable) *Season {
	t.Helper()
	s, err := NewSeason(2016, prior, table)
	require.NoError(t, err)
	return s
}

func TestRawPointsAndPlaces(t *testing.T) {
	table := &model.ResultTable{
		Races: []model.RaceHeader{{Name: "Howelsen", Category: model.GS, Penalty: zeroPenalty()}},
		Racers: []model.RacerRow{
			racer("A", fin("60.00")),
			racer("B", fin("63.00")),
		},
	}
	s := mustSeason(t, emptyArchive(), table)
	require.NoError(t, s.WarmUp())

	race := s.Races()[0]
	best, ok := race.BestTime()
	require.True(t, ok)
	assertDecimal(t, "60", best)

	a, b := s.Racers()[0].Results()[0], s.Racers()[1].Results()[0]
	raw, ok := a.RawPoints()
	require.True(t, ok)
	assertDecimal(t, "0", raw)
	raw, ok = b.RawPoints()
	require.True(t, ok)
	assertDecimal(t, "33", raw)

	p, _ := b.Points()
	assertDecimal(t, "33", p)

	place, _ := a.Place()
	assert.Equal(t, 1, place)
	place, _ = b.Place()
	assert.Equal(t, 2, place)

	_, _, _, ok = race.PenaltyTerms()
	assert.False(t, ok, "override must skip penalty terms")
}

func TestPlaces(t *testing.T) {
	table := &model.ResultTable{
		Races: []model.RaceHeader{{Name: "R", Category: model.SC, Penalty: zeroPenalty()}},
		Racers: []model.RacerRow{
			racer("A", fin("61")),
			racer("B", fin("60")),
			racer("C", dnf),
			racer("D", fin("60")),
			racer("E", fin("70")),
		},
	}
	s := mustSeason(t, emptyArchive(), table)
	require.NoError(t, s.WarmUp())

	want := map[string]int{"A": 3, "B": 1, "D": 1, "E": 4}
	for _, r := range s.Racers() {
		place, ok := r.Results()[0].Place()
		if r.Name == "C" {
			assert.False(t, ok)
			continue
		}
		assert.True(t, ok)
		assert.Equal(t, want[r.Name], place, r.Name)
	}
}

func TestRawPointsNonNegative(t *testing.T) {
	table := &model.ResultTable{
		Races: []model.RaceHeader{{Name: "R", Category: model.CL}},
		Racers: []model.RacerRow{
			racer("A", fin("123.45")),
			racer("B", fin("98.7")),
			racer("C", fin("98.7")),
			racer("D", fin("301")),
		},
	}
	s := mustSeason(t, emptyArchive(), table)
	require.NoError(t, s.WarmUp())
	best, _ := s.Races()[0].BestTime()
	for _, res := range s.Races()[0].Results() {
		raw, ok := res.RawPoints()
		require.True(t, ok)
		assert.False(t, raw.IsNegative())
		tm, _ := res.Time()
		assert.Equal(t, tm.Equal(best), raw.IsZero(), res.Racer().Name)
	}
}

func TestRaceWithoutFinishers(t *testing.T) {
	table := &model.ResultTable{
		Races: []model.RaceHeader{{Name: "R", Category: model.GS}},
		Racers: []model.RacerRow{
			racer("A", dnf),
			racer("B", dsq),
			racer("C", dns),
		},
	}
	s := mustSeason(t, archiveGS(map[string]string{"A": "100", "B": "200"}), table)
	require.NoError(t, s.WarmUp())
	race := s.Races()[0]
	_, ok := race.BestTime()
	assert.False(t, ok)

	_, err := race.rawPoints(d("60"))
	assert.ErrorIs(t, err, ErrNoFinishers)

	a, b, c, ok := race.PenaltyTerms()
	require.True(t, ok)
	assertDecimal(t, "300", a)
	assertDecimal(t, "0", b)
	assertDecimal(t, "0", c)
	assertDecimal(t, "30", race.Penalty())

	for _, res := range race.Results() {
		_, ok := res.Points()
		assert.False(t, ok)
	}
}

func TestPenalty(t *testing.T) {
	tests := []struct {
		name    string
		archive map[string]string
		racers  []model.RacerRow
		wantA   string
		wantB   string
		wantC   string
		want    string
	}{
		{
			name:    "starters and finishers",
			archive: map[string]string{"r1": "100", "r2": "200"},
			racers: []model.RacerRow{
				racer("r1", fin("60")),
				racer("r2", fin("63")),
				racer("r3", dns),
			},
			wantA: "300", wantB: "300", wantC: "33", want: "56.7",
		},
		{
			name:    "dnf counts as started",
			archive: map[string]string{"r1": "100", "r2": "200", "r4": "50"},
			racers: []model.RacerRow{
				racer("r1", fin("60")),
				racer("r2", fin("63")),
				racer("r3", dns),
				racer("r4", dnf),
			},
			wantA: "350", wantB: "300", wantC: "33", want: "61.7",
		},
		{
			name:    "racer without archive uses scale factor",
			archive: map[string]string{"r1": "100"},
			racers: []model.RacerRow{
				racer("r1", fin("60")),
				racer("new", fin("63")),
			},
			wantA: "760", wantB: "760", wantC: "33", want: "148.7",
		},
		{
			name: "only five lowest carried scores",
			archive: map[string]string{
				"r1": "10", "r2": "20", "r3": "30", "r4": "40", "r5": "50", "r6": "60", "r7": "70",
			},
			racers: []model.RacerRow{
				racer("r7", fin("106")),
				racer("r1", fin("100")),
				racer("r2", fin("101")),
				racer("r3", fin("102")),
				racer("r4", fin("103")),
				racer("r5", fin("104")),
				racer("r6", fin("105")),
			},
			wantA: "150", wantB: "150", wantC: "66", want: "23.4",
		},
		{
			name: "only top ten finishers",
			archive: map[string]string{
				"p01": "101", "p02": "102", "p03": "103", "p04": "104", "p05": "105", "p06": "106",
				"p07": "107", "p08": "108", "p09": "109", "p10": "110", "p11": "1", "p12": "2",
			},
			racers: []model.RacerRow{
				racer("p01", fin("100")), racer("p02", fin("101")), racer("p03", fin("102")),
				racer("p04", fin("103")), racer("p05", fin("104")), racer("p06", fin("105")),
				racer("p07", fin("106")), racer("p08", fin("107")), racer("p09", fin("108")),
				racer("p10", fin("109")), racer("p11", fin("110")), racer("p12", fin("111")),
			},
			wantA: "309", wantB: "515", wantC: "66", want: "75.8",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &model.ResultTable{
				Races:  []model.RaceHeader{{Name: "R", Category: model.GS}},
				Racers: tt.racers,
			}
			s := mustSeason(t, archiveGS(tt.archive), table)
			require.NoError(t, s.WarmUp())
			race := s.Races()[0]
			a, b, c, ok := race.PenaltyTerms()
			require.True(t, ok)
			assertDecimal(t, tt.wantA, a, "A")
			assertDecimal(t, tt.wantB, b, "B")
			assertDecimal(t, tt.wantC, c, "C")
			assertDecimal(t, tt.want, race.Penalty(), "penalty")

			for _, res := range race.Finishers() {
				raw, _ := res.RawPoints()
				p, _ := res.Points()
				assert.True(t, raw.Add(race.Penalty()).Equal(p))
			}
		})
	}
}

func TestPenalizedCarry(t *testing.T) {
	prior := model.NewArchive()
	prior.Racers["inj"] = model.Scores{model.GS: d("100"), model.SC: d("400")}
	prior.Racers["fit"] = model.Scores{model.GS: d("100"), model.SC: d("400")}
	prior.Zeroes = model.Scores{model.GS: d("50"), model.SC: d("20")}
	prior.Normalize()

	table := &model.ResultTable{
		Racers: []model.RacerRow{
			{Name: "inj", Injured: true},
			{Name: "fit"},
			{Name: "new"},
		},
	}
	s := mustSeason(t, prior, table)
	inj, fit, newbie := s.Racers()[0], s.Racers()[1], s.Racers()[2]

	assertDecimal(t, "133", inj.PenalizedCarry(model.GS))
	assertDecimal(t, "166", fit.PenalizedCarry(model.GS))
	// 1.22*400+0.22*20 = 492.4
	assertDecimal(t, "492.4", inj.PenalizedCarry(model.SC))
	// 1.44*400+0.44*20 = 584.8 -> capped
	assertDecimal(t, "500", fit.PenalizedCarry(model.SC))
	assertDecimal(t, "660", newbie.PenalizedCarry(model.GS))
	assert.False(t, newbie.InArchive())
	assert.True(t, fit.InArchive())

	for _, r := range s.Racers() {
		for _, c := range model.Categories {
			assert.True(t, r.PenalizedCarry(c).LessThanOrEqual(c.ScaleFactor()))
		}
	}
}

func TestBestTwo(t *testing.T) {
	table := &model.ResultTable{
		Races: []model.RaceHeader{
			{Name: "G1", Category: model.GS, Penalty: zeroPenalty()},
			{Name: "G2", Category: model.GS, Penalty: zeroPenalty()},
			{Name: "G3", Category: model.GS, Penalty: zeroPenalty()},
			{Name: "S1", Category: model.SC, Penalty: zeroPenalty()},
		},
		Racers: []model.RacerRow{
			racer("fast", fin("60"), fin("60"), fin("60"), fin("100")),
			racer("three", fin("63"), fin("66"), fin("61.5"), dns),
			racer("one", dnf, fin("63"), dns, dns),
			racer("none", dns, dns, dns, dns),
		},
	}
	prior := archiveGS(map[string]string{"three": "10", "one": "10", "none": "10"})
	s := mustSeason(t, prior, table)
	require.NoError(t, s.WarmUp())

	byName := map[string]*Racer{}
	for _, r := range s.Racers() {
		byName[r.Name] = r
	}

	// carry GS: 1.44*10 + 0.44*660 = 304.8
	three := byName["three"].BestTwo(model.GS)
	assertDecimal(t, "16.5", three.Values[0])
	assertDecimal(t, "33", three.Values[1])
	assert.Equal(t, 0, three.CarryCount)
	assert.Len(t, three.Results, 2)
	assert.False(t, three.Counts(byName["three"].Results()[1]))
	assert.True(t, three.Counts(byName["three"].Results()[2]))

	one := byName["one"].BestTwo(model.GS)
	assertDecimal(t, "33", one.Values[0])
	assertDecimal(t, "304.8", one.Values[1])
	assert.Equal(t, 1, one.CarryCount)

	none := byName["none"].BestTwo(model.GS)
	assertDecimal(t, "304.8", none.Values[0])
	assertDecimal(t, "304.8", none.Values[1])
	assert.Equal(t, 2, none.CarryCount)
	assert.Empty(t, none.Results)

	for _, r := range s.Racers() {
		for _, c := range model.Categories {
			sel := r.BestTwo(c)
			require.NotNil(t, sel)
			assert.Equal(t, countedResults, len(sel.Values))
			assert.Equal(t, countedResults, len(sel.Results)+sel.CarryCount)
		}
	}
}

func TestSeasonAverages(t *testing.T) {
	table := &model.ResultTable{
		Races: []model.RaceHeader{{Name: "Howelsen", Category: model.GS, Penalty: zeroPenalty()}},
		Racers: []model.RacerRow{
			racer("B", fin("63.00")),
			racer("A", fin("60.00")),
		},
	}
	s := mustSeason(t, emptyArchive(), table)
	archive, err := s.Compute()
	require.NoError(t, err)
	assert.Equal(t, StageDone, s.Stage())

	b, a := s.Racers()[0], s.Racers()[1]
	assertDecimal(t, "346.5", b.CategoryAverage(model.GS))
	assertDecimal(t, "330", a.CategoryAverage(model.GS))
	assertDecimal(t, "330", s.ZeroFactor(model.GS))
	assertDecimal(t, "500", s.ZeroFactor(model.SC))
	assertDecimal(t, "0", a.CategoryPoints(model.GS))
	assertDecimal(t, "16.5", b.CategoryPoints(model.GS))
	assertDecimal(t, "0", b.CategoryPoints(model.SC))
	assertDecimal(t, "0", a.SeasonAverage())
	assertDecimal(t, "5.5", b.SeasonAverage())

	assert.Equal(t, []*Racer{a, b}, s.Standings())
	assert.Equal(t, []*Racer{a, b}, s.CategoryStandings(model.GS))
	// equal SC points: the GS order decides, not the roster order
	assert.Equal(t, []*Racer{a, b}, s.CategoryStandings(model.SC))
	assert.Equal(t, []*Racer{a, b}, s.CategoryStandings(model.CL))
	assert.Equal(t, []*Racer{a, b}, s.DivisionStandings(model.Men))
	assert.Empty(t, s.DivisionStandings(model.Ladies))

	want := &model.Archive{
		Racers: map[string]model.Scores{
			"A": {model.GS: d("0"), model.SC: d("0"), model.CL: d("0")},
			"B": {model.GS: d("16.5"), model.SC: d("0"), model.CL: d("0")},
		},
		Zeroes: model.Scores{model.GS: d("330"), model.SC: d("500"), model.CL: d("500")},
	}
	// SC/CL averages equal the capped carry of 500
	assertDecimal(t, "500", a.CategoryAverage(model.SC))
	if diff := cmp.Diff(want, archive, decimalComparer); diff != "" {
		t.Errorf("Archive() mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroFactorIndependentOfOrder(t *testing.T) {
	prior := model.NewArchive()
	prior.Racers["A"] = model.Scores{model.GS: d("40"), model.SC: d("12")}
	prior.Racers["B"] = model.Scores{model.GS: d("5"), model.SC: d("80")}
	prior.Racers["C"] = model.Scores{model.GS: d("120"), model.CL: d("3")}
	prior.Zeroes = model.Scores{model.GS: d("7"), model.SC: d("9"), model.CL: d("11")}
	prior.Normalize()

	races := []model.RaceHeader{
		{Name: "G1", Category: model.GS},
		{Name: "S1", Category: model.SC},
		{Name: "S2", Category: model.SC, Penalty: func() *decimal.Decimal { v := d("-6.348"); return &v }()},
		{Name: "C1", Category: model.CL},
	}
	rows := []model.RacerRow{
		racer("A", fin("61.2"), fin("90"), fin("91.5"), dnf),
		racer("B", fin("60"), dns, fin("95"), fin("300")),
		racer("C", fin("64"), fin("89"), dsq, fin("290.4")),
		racer("D", dns, fin("100"), fin("93"), dns),
	}
	rows[2].Injured = true

	reversed := make([]model.RacerRow, len(rows))
	for i := range rows {
		reversed[len(rows)-1-i] = rows[i]
	}

	collect := func(rows []model.RacerRow) (map[string]string, model.Scores) {
		s := mustSeason(t, prior, &model.ResultTable{Races: races, Racers: rows})
		_, err := s.Compute()
		require.NoError(t, err)
		ret := map[string]string{}
		for _, r := range s.Racers() {
			for _, c := range model.Categories {
				ret[r.Name+"/"+c.String()] = r.CategoryPoints(c).String()
			}
			ret[r.Name] = r.SeasonAverage().String()
		}
		for _, c := range model.Categories {
			// zero factor is the minimum raw average, never above scale
			minAvg := c.ScaleFactor()
			for _, r := range s.Racers() {
				minAvg = decimal.Min(minAvg, r.CategoryAverage(c))
				assert.False(t, r.CategoryPoints(c).IsNegative())
			}
			assert.True(t, minAvg.Equal(s.ZeroFactor(c)), c.String())
		}
		return ret, model.Scores{
			model.GS: s.ZeroFactor(model.GS),
			model.SC: s.ZeroFactor(model.SC),
			model.CL: s.ZeroFactor(model.CL),
		}
	}
	forward, zf := collect(rows)
	backward, zb := collect(reversed)
	if diff := cmp.Diff(forward, backward); diff != "" {
		t.Errorf("points depend on roster order (-forward +backward):\n%s", diff)
	}
	if diff := cmp.Diff(zf, zb, decimalComparer); diff != "" {
		t.Errorf("zero factors depend on roster order:\n%s", diff)
	}
}

func TestZeroFactors(t *testing.T) {
	z := NewZeroFactors()
	assertDecimal(t, "660", z.Get(model.GS))
	assert.False(t, z.Observe(model.GS, d("700")))
	assert.True(t, z.Observe(model.GS, d("300")))
	assert.False(t, z.Observe(model.GS, d("300")))
	assert.False(t, z.Observe(model.GS, d("301")))
	assert.True(t, z.Observe(model.GS, d("-2")))
	assertDecimal(t, "-2", z.Get(model.GS))

	copied := z.Scores()
	copied[model.GS] = d("1")
	assertDecimal(t, "-2", z.Get(model.GS), "Scores must return a copy")
}

func TestStageOrder(t *testing.T) {
	s := mustSeason(t, emptyArchive(), &model.ResultTable{})
	assert.Equal(t, StageLoading, s.Stage())
	assert.ErrorIs(t, s.Rank(), ErrStageOrder)
	_, err := s.Archive()
	assert.ErrorIs(t, err, ErrStageOrder)
	assert.ErrorIs(t, s.Finish(), ErrStageOrder)

	require.NoError(t, s.WarmUp())
	assert.ErrorIs(t, s.WarmUp(), ErrStageOrder)
	require.NoError(t, s.Rank())
	_, err = s.Archive()
	require.NoError(t, err)
	require.NoError(t, s.Finish())
	_, err = s.Compute()
	assert.ErrorIs(t, err, ErrStageOrder)
}

func TestNewSeasonErrors(t *testing.T) {
	races := []model.RaceHeader{{Name: "R", Category: model.GS}}
	tests := []struct {
		name    string
		prior   *model.Archive
		table   *model.ResultTable
		wantErr error
	}{
		{
			name:    "no archive",
			table:   &model.ResultTable{},
			wantErr: ErrNoArchive,
		},
		{
			name:    "duplicate racer",
			prior:   emptyArchive(),
			table:   &model.ResultTable{Races: races, Racers: []model.RacerRow{racer("A", dns), racer("A", dns)}},
			wantErr: ErrDuplicateRacer,
		},
		{
			name:    "missing entries",
			prior:   emptyArchive(),
			table:   &model.ResultTable{Races: races, Racers: []model.RacerRow{racer("A")}},
			wantErr: ErrRosterMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSeason(2016, tt.prior, tt.table)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCategoryStandingsTieOrder(t *testing.T) {
	table := &model.ResultTable{
		Races: []model.RaceHeader{
			{Name: "G1", Category: model.GS, Penalty: zeroPenalty()},
			{Name: "S1", Category: model.SC, Penalty: zeroPenalty()},
			{Name: "C1", Category: model.CL, Penalty: zeroPenalty()},
		},
		Racers: []model.RacerRow{
			// A and B tie in GS, B is faster in SC, C and D tie everywhere
			racer("C", dns, dns, dns),
			racer("A", fin("60"), fin("90"), dns),
			racer("B", fin("60"), fin("80"), dns),
			racer("D", dns, dns, dns),
		},
	}
	s := mustSeason(t, emptyArchive(), table)
	_, err := s.Compute()
	require.NoError(t, err)

	byName := func(racers []*Racer) []string {
		ret := make([]string, len(racers))
		for i, r := range racers {
			ret[i] = r.Name
		}
		return ret
	}
	assert.Equal(t, []string{"B", "A", "C", "D"}, byName(s.Standings()))
	// GS tie of A and B keeps the season order
	assert.Equal(t, []string{"B", "A", "C", "D"}, byName(s.CategoryStandings(model.GS)))
	assert.Equal(t, []string{"B", "A", "C", "D"}, byName(s.CategoryStandings(model.SC)))
	// nobody started in CL: the SC order is kept
	assert.Equal(t, []string{"B", "A", "C", "D"}, byName(s.CategoryStandings(model.CL)))
}
