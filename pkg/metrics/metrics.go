// Package metrics collects gauges describing a season run. They are written
// to a textfile which can be picked up by the node exporter.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"

	"github.com/mpapenbr/ustsa-points/pkg/model"
	"github.com/mpapenbr/ustsa-points/pkg/scoring"
)

const (
	namespace = "ustsa"
	subsystem = "points"
)

// Recorder holds the gauges of one run on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	racers        *prometheus.GaugeVec
	races         *prometheus.GaugeVec
	zeroFactor    *prometheus.GaugeVec
	racePenalty   *prometheus.GaugeVec
	stageDuration *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)
	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}
	return &Recorder{
		registry:      registry,
		racers:        gauge("racers", "Number of racers per division", "season", "division"),
		races:         gauge("races", "Number of races per category", "season", "category"),
		zeroFactor:    gauge("zero_factor", "Final zero factor per category", "season", "category"),
		racePenalty:   gauge("race_penalty", "Difficulty penalty per race", "season", "race", "category"),
		stageDuration: gauge("stage_duration_seconds", "Duration of a run stage", "season", "stage"),
		lastSuccess: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
	}
}

// ObserveSeason records the shape and derived values of a computed season.
func (r *Recorder) ObserveSeason(s *scoring.Season) {
	season := strconv.Itoa(s.Year)
	for _, d := range model.Divisions {
		count := lo.CountBy(s.Racers(), func(item *scoring.Racer) bool {
			return item.Division == d
		})
		r.racers.WithLabelValues(season, d.ShortName()).Set(float64(count))
	}
	for _, c := range model.Categories {
		r.races.WithLabelValues(season, c.String()).Set(float64(len(s.RacesIn(c))))
		r.zeroFactor.WithLabelValues(season, c.String()).Set(s.ZeroFactor(c).InexactFloat64())
	}
	for _, race := range s.Races() {
		r.racePenalty.WithLabelValues(season, race.Name, race.Category.String()).
			Set(race.Penalty().InexactFloat64())
	}
}

// ObserveStage records how long a stage of the run for season took.
func (r *Recorder) ObserveStage(season int, stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(strconv.Itoa(season), stage).Set(d.Seconds())
}

func (r *Recorder) MarkSuccess(t time.Time) {
	r.lastSuccess.Set(float64(t.Unix()))
}

// WriteToTextfile writes all gauges in the text exposition format.
func (r *Recorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
