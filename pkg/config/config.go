package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DataDir            string // directory containing results and archive files
	ResultsPattern     string // file name pattern of the results table (%d = year)
	ArchivePattern     string // file name pattern of the archive (%d = year)
	ReportFile         string // name of the LaTeX report
	CompilePDF         bool   // if true, pdflatex is run on the report
	PDFLatex           string // pdflatex executable
	ArchiveStore       string // file or db
	DB                 string // connection string for the database
	WaitForServices    string // duration to wait for other services to be ready
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogFilter          string // zapfilter rules applied to named loggers
	EnableTelemetry    bool   // enable telemetry
	TelemetryEndpoint  string // endpoint for telemetry, "stdout" prints to console
	MetricsFile        string // textfile receiving the run metrics
	MigrationSourceURL string // location of migration files, empty uses the embedded ones
)

const (
	StoreFile = "file"
	StoreDB   = "db"
)
