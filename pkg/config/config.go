package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                string // connection string for the database
	Store             string // storage backend (postgres, memory)
	WaitForServices   string // duration to wait for other services to be ready
	LogLevel          string // sets the log level (zap log level values)
	SQLLogLevel       string // sets the log level for sql subsystem
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules, e.g. "*:* -debug:service.*"
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // OTLP endpoint, stdout exporters are used if empty
	TelemetryOutput   string // file for stdout exporters, stderr if empty
	Location          string // time zone used for race start times
	EnvFile           string // dotenv file loaded before the config is resolved
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)
