// Package util contains the setup shared by the commands.
package util

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/ustsa-points/log"
	"github.com/mpapenbr/ustsa-points/pkg/config"
	"github.com/mpapenbr/ustsa-points/pkg/db/postgres"
	"github.com/mpapenbr/ustsa-points/pkg/utils"
)

const defaultWait = 60 * time.Second

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func newLogger(w io.Writer, level log.Level, opts ...log.Option) *log.Logger {
	opts = append([]log.Option{log.WithCaller(true), log.AddCallerSkip(1)}, opts...)
	switch config.LogFormat {
	case "json":
		return log.New(w, level, opts...)
	default:
		return log.DevLogger(w, level, opts...)
	}
}

// newAppLogger creates the logger configured by the log flags. With a log
// filter the core accepts every level and the filter rules decide.
func newAppLogger(w io.Writer) *log.Logger {
	level := parseLogLevel(config.LogLevel, log.InfoLevel)
	var opts []log.Option
	if config.LogFilter != "" {
		if filter, err := log.WithFilter(config.LogFilter); err == nil {
			opts = append(opts, filter)
			level = log.DebugLevel
		} else {
			// default logger is still in place here
			log.Warn("ignoring invalid log filter",
				log.String("filter", config.LogFilter),
				log.ErrorField(err))
		}
	}
	return newLogger(w, level, opts...)
}

// SetupLogging installs the default logger according to the log flags and
// returns the logger used for sql statements.
func SetupLogging() *log.Logger {
	log.ResetDefault(newAppLogger(os.Stderr))
	return newLogger(os.Stderr, parseLogLevel(config.SQLLogLevel, log.InfoLevel))
}

// SetupTelemetry enables telemetry if requested. The returned telemetry is
// nil if disabled or not available.
func SetupTelemetry(ctx context.Context) *config.Telemetry {
	if !config.EnableTelemetry {
		return nil
	}
	log.Info("Enabling telemetry", log.String("endpoint", config.TelemetryEndpoint))
	telemetry, err := config.SetupTelemetry(ctx)
	if err != nil {
		log.Warn("Could not setup telemetry", log.ErrorField(err))
		return nil
	}
	return telemetry
}

// WaitForDB waits until the database configured by --db accepts connections.
func WaitForDB(ctx context.Context) error {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = defaultWait
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if postgresAddr == "" {
		// let the driver report the malformed url
		return nil
	}
	return utils.WaitForTCP(ctx, postgresAddr, timeout)
}

// OpenDB waits for the database and creates a connection pool. Statements
// are traced via otel if telemetry is active, else logged with sqlLogger.
func OpenDB(ctx context.Context, sqlLogger *log.Logger, telemetry *config.Telemetry) (
	*pgxpool.Pool, error,
) {
	if err := WaitForDB(ctx); err != nil {
		return nil, err
	}
	traceOption := postgres.WithTracer(sqlLogger, log.DebugLevel)
	if telemetry != nil {
		traceOption = postgres.WithOtlpTracer()
	}
	return postgres.InitWithURL(ctx, config.DB, traceOption)
}
