package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string // connection string for the database
	NatsURL            string // URL of the NATS server, empty disables publishing
	WaitForServices    string // duration to wait for other services to be ready
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogFilter          string // zapfilter rules, e.g. "debug:sim.* info:*"
	ResultsLog         string // path of the JSON lines results log, empty disables it
	EnableTelemetry    bool   // enable telemetry
	TelemetryEndpoint  string // endpoint for telemetry, "stdout" for local output
	ProfilingPort      int    // port for profiling
	ServerAddr         string // listen addr for the HTTP API
	MigrationSourceURL string // location of migration files
	Seed               uint64 // seed for the random source, 0 means random
)

// Config holds the configuration values which are used by the application
type Config struct {
	DB         string
	NatsURL    string
	ResultsLog string
	Seed       uint64
	Telemetry  bool
}

// Current returns the resolved configuration values.
func Current() Config {
	return Config{
		DB:         DB,
		NatsURL:    NatsURL,
		ResultsLog: ResultsLog,
		Seed:       Seed,
		Telemetry:  EnableTelemetry,
	}
}
