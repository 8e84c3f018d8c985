package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/ustsa-points/log"
	"github.com/mpapenbr/ustsa-points/pkg/archive"
	"github.com/mpapenbr/ustsa-points/pkg/input"
	"github.com/mpapenbr/ustsa-points/pkg/metrics"
	"github.com/mpapenbr/ustsa-points/pkg/model"
	"github.com/mpapenbr/ustsa-points/pkg/report"
	"github.com/mpapenbr/ustsa-points/pkg/scoring"
)

const DefaultResultsPattern = "results%d.csv"

// PointsService computes the points list of a season: it reads the results
// table and the archive of the previous season, runs the scoring stages,
// stores the new archive and writes the report.
type PointsService struct {
	store          archive.Store
	dataDir        string
	resultsPattern string
	reportFile     string
	pdflatex       string
	metricsFile    string
	recorder       *metrics.Recorder
	tracer         trace.Tracer
	stageHistogram metric.Float64Histogram
	log            *log.Logger
}

type Option func(*PointsService)

func WithDataDir(dir string) Option {
	return func(s *PointsService) {
		s.dataDir = dir
	}
}

// WithResultsPattern sets the file name of the results table. It must
// contain one %d verb for the year.
func WithResultsPattern(pattern string) Option {
	return func(s *PointsService) {
		s.resultsPattern = pattern
	}
}

// WithReport writes the LaTeX report to file. Relative names are resolved
// against the data directory. An empty name disables the report.
func WithReport(file string) Option {
	return func(s *PointsService) {
		s.reportFile = file
	}
}

// WithPDF runs pdflatex on the report.
func WithPDF(pdflatex string) Option {
	return func(s *PointsService) {
		s.pdflatex = pdflatex
	}
}

// WithMetricsFile writes the run metrics in prometheus text format.
func WithMetricsFile(file string) Option {
	return func(s *PointsService) {
		s.metricsFile = file
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *PointsService) {
		s.tracer = tracer
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *PointsService) {
		s.log = l
	}
}

func NewPointsService(store archive.Store, opts ...Option) *PointsService {
	ret := &PointsService{
		store:          store,
		dataDir:        ".",
		resultsPattern: DefaultResultsPattern,
		reportFile:     report.DefaultFile,
		recorder:       metrics.NewRecorder(),
		log:            log.Default().Named("service"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("points")
	}
	var err error
	ret.stageHistogram, err = otel.Meter("points").Float64Histogram("stage_duration",
		metric.WithDescription("duration of a season computation stage"),
		metric.WithUnit("s"))
	if err != nil {
		ret.log.Warn("could not create stage histogram", log.ErrorField(err))
	}
	return ret
}

// ResultsFile returns the path of the results table of year.
func (s *PointsService) ResultsFile(year int) string {
	return s.resolve(fmt.Sprintf(s.resultsPattern, year))
}

// Compute runs the complete computation of year. The archive is only stored
// if every stage succeeded.
//
//nolint:funlen // by design
func (s *PointsService) Compute(ctx context.Context, year int) (*scoring.Season, error) {
	ctx, span := s.tracer.Start(ctx, "compute",
		trace.WithAttributes(attribute.Int("season", year)))
	defer span.End()

	var season *scoring.Season
	var next *model.Archive
	steps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{scoring.StageLoading.String(), func(ctx context.Context) error {
			var err error
			season, err = s.load(ctx, year)
			return err
		}},
		{scoring.StageWarmingUp.String(), func(context.Context) error { return season.WarmUp() }},
		{scoring.StageRanking.String(), func(context.Context) error { return season.Rank() }},
		{scoring.StageArchiving.String(), func(ctx context.Context) error {
			var err error
			if next, err = season.Archive(); err != nil {
				return err
			}
			return s.store.Save(ctx, year, next)
		}},
		{scoring.StageDone.String(), func(context.Context) error { return season.Finish() }},
		{"report", func(ctx context.Context) error { return s.writeReport(ctx, season) }},
	}
	for _, step := range steps {
		if err := s.runStep(ctx, year, step.name, step.fn); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	s.recorder.ObserveSeason(season)
	s.recorder.MarkSuccess(time.Now())
	if s.metricsFile != "" {
		if err := s.recorder.WriteToTextfile(s.resolve(s.metricsFile)); err != nil {
			s.log.Warn("could not write metrics", log.ErrorField(err))
		}
	}
	s.log.Info("season computed",
		log.Int("season", year),
		log.Int("racers", len(season.Racers())),
		log.Int("races", len(season.Races())))
	return season, nil
}

func (s *PointsService) runStep(
	ctx context.Context,
	year int,
	name string,
	fn func(ctx context.Context) error,
) error {
	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()
	start := time.Now()
	s.log.Debug("entering stage", log.String("stage", name))
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", name, err)
	}
	d := time.Since(start)
	s.recorder.ObserveStage(year, name, d)
	if s.stageHistogram != nil {
		s.stageHistogram.Record(ctx, d.Seconds(),
			metric.WithAttributes(attribute.String("stage", name)))
	}
	return nil
}

func (s *PointsService) load(ctx context.Context, year int) (*scoring.Season, error) {
	resultsFile := s.ResultsFile(year)
	table, err := input.ReadFile(resultsFile)
	if err != nil {
		return nil, err
	}
	s.log.Info("results loaded",
		log.String("file", resultsFile),
		log.Int("races", len(table.Races)),
		log.Int("racers", len(table.Racers)))

	prior, err := s.store.Load(ctx, year-1)
	if err != nil {
		return nil, err
	}
	return scoring.NewSeason(year, prior, table)
}

func (s *PointsService) writeReport(ctx context.Context, season *scoring.Season) error {
	if s.reportFile == "" {
		return nil
	}
	path := s.resolve(s.reportFile)
	if err := report.WriteFile(path, season); err != nil {
		return err
	}
	s.log.Info("report written", log.String("file", path))
	if s.pdflatex == "" {
		return nil
	}
	return report.CompilePDF(ctx, s.pdflatex, path)
}

func (s *PointsService) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dataDir, name)
}
