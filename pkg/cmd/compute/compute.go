package compute

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/ustsa-points/log"
	"github.com/mpapenbr/ustsa-points/pkg/archive"
	"github.com/mpapenbr/ustsa-points/pkg/cmd/util"
	"github.com/mpapenbr/ustsa-points/pkg/config"
	"github.com/mpapenbr/ustsa-points/pkg/report"
	"github.com/mpapenbr/ustsa-points/pkg/service"
)

func NewComputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute [year]",
		Short: "computes the points list of a season",
		Long: `Computes the points list of a season from results<year>.csv and the
archive of the previous season. The archive of the season and the LaTeX
report are written when all steps succeeded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return computeSeason(cmd.Context(), args)
		},
	}
	cmd.Flags().StringVarP(&config.DataDir,
		"data-dir",
		"d",
		".",
		"directory containing results and archive files")
	cmd.Flags().StringVar(&config.ResultsPattern,
		"results-pattern",
		service.DefaultResultsPattern,
		"file name of the results table (%d is replaced by the year)")
	cmd.Flags().StringVar(&config.ArchivePattern,
		"archive-pattern",
		archive.DefaultPattern,
		"file name of the season archive (%d is replaced by the year)")
	cmd.Flags().StringVar(&config.ArchiveStore,
		"archive-store",
		config.StoreFile,
		"where archives are read from and written to (file, db)")
	cmd.Flags().StringVar(&config.ReportFile,
		"report",
		report.DefaultFile,
		"name of the LaTeX report, empty disables the report")
	cmd.Flags().BoolVar(&config.CompilePDF,
		"pdf",
		false,
		"run pdflatex on the report")
	cmd.Flags().StringVar(&config.PDFLatex,
		"pdflatex",
		report.DefaultPDFLatex,
		"pdflatex executable")
	cmd.Flags().StringVar(&config.MetricsFile,
		"metrics-file",
		"",
		"write run metrics in prometheus text format to this file")
	return cmd
}

// resolveYear returns the year given as argument. The current year is used
// if no or an invalid year is given.
func resolveYear(args []string, now time.Time) int {
	if len(args) == 0 {
		return now.Year()
	}
	year, err := strconv.Atoi(args[0])
	if err != nil || year <= 0 {
		log.Warn("Invalid year, using current year",
			log.String("arg", args[0]),
			log.Int("year", now.Year()))
		return now.Year()
	}
	return year
}

func computeSeason(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sqlLogger := util.SetupLogging()
	defer func() { _ = log.Sync() }()

	telemetry := util.SetupTelemetry(ctx)
	if telemetry != nil {
		defer telemetry.Shutdown()
	}

	year := resolveYear(args, time.Now())
	log.Info("Computing season", log.Int("year", year), log.String("dir", config.DataDir))

	var store archive.Store
	switch config.ArchiveStore {
	case config.StoreDB:
		pool, err := util.OpenDB(ctx, sqlLogger, telemetry)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = archive.NewDBStore(pool)
	case config.StoreFile:
		store = archive.NewFileStore(config.DataDir,
			archive.WithPattern(config.ArchivePattern))
	default:
		return fmt.Errorf("unknown archive store %q", config.ArchiveStore)
	}

	opts := []service.Option{
		service.WithDataDir(config.DataDir),
		service.WithResultsPattern(config.ResultsPattern),
		service.WithReport(config.ReportFile),
		service.WithMetricsFile(config.MetricsFile),
	}
	if config.CompilePDF {
		opts = append(opts, service.WithPDF(config.PDFLatex))
	}
	_, err := service.NewPointsService(store, opts...).Compute(ctx, year)
	if err != nil {
		log.Error("Computation failed", log.Int("year", year), log.ErrorField(err))
	}
	return err
}
