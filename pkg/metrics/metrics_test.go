package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/ustsa-points/pkg/archive"
	"github.com/mpapenbr/ustsa-points/pkg/input"
	"github.com/mpapenbr/ustsa-points/pkg/scoring"
	"github.com/mpapenbr/ustsa-points/testsupport/basedata"
)

func sampleSeason(t *testing.T) *scoring.Season {
	t.Helper()
	table, err := input.Read(strings.NewReader(basedata.SampleResultsCSV))
	require.NoError(t, err)
	prior, err := archive.Decode(strings.NewReader(basedata.SampleArchiveJSON))
	require.NoError(t, err)
	s, err := scoring.NewSeason(basedata.SampleYear, prior, table)
	require.NoError(t, err)
	_, err = s.Compute()
	require.NoError(t, err)
	return s
}

func TestWriteToTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveSeason(sampleSeason(t))
	r.ObserveStage(basedata.SampleYear, "warming-up", 1500*time.Millisecond)
	r.MarkSuccess(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "points.prom")
	require.NoError(t, r.WriteToTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	for _, want := range []string{
		`ustsa_points_racers{division="M",season="2016"} 3`,
		`ustsa_points_racers{division="L",season="2016"} 2`,
		`ustsa_points_races{category="GS",season="2016"} 2`,
		`ustsa_points_races{category="CL",season="2016"} 1`,
		`ustsa_points_race_penalty{category="GS",race="Howelsen Hill 2",season="2016"} 32.369`,
		`ustsa_points_stage_duration_seconds{season="2016",stage="warming-up"} 1.5`,
		`ustsa_points_last_success_timestamp_seconds 1.7e+09`,
		`# TYPE ustsa_points_zero_factor gauge`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestRegistryIsolated(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	a.MarkSuccess(time.Unix(1, 0))

	families, err := b.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() != "ustsa_points_last_success_timestamp_seconds" {
			continue
		}
		found = true
		require.Len(t, f.GetMetric(), 1)
		assert.Zero(t, f.GetMetric()[0].GetGauge().GetValue())
	}
	assert.True(t, found)
}
