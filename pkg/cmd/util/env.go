// Package util holds the setup shared by the rts commands.
package util

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/config"
	"github.com/mpapenbr/racetracker-store/pkg/db/postgres"
	"github.com/mpapenbr/racetracker-store/pkg/report"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	bobrepos "github.com/mpapenbr/racetracker-store/pkg/repository/bob"
	"github.com/mpapenbr/racetracker-store/pkg/repository/memory"
	"github.com/mpapenbr/racetracker-store/pkg/service/race"
	"github.com/mpapenbr/racetracker-store/pkg/transfer"
	"github.com/mpapenbr/racetracker-store/pkg/utils"
)

var ErrNoRace = errors.New("no race selected and no current race available")

// Env bundles the services used by the commands
type Env struct {
	Races    *race.Service
	Transfer *transfer.Service
	closers  []func()
}

func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogging replaces the default logger according to the config and
// returns the logger used for sql statements.
func SetupLogging() (sqlLogger *log.Logger) {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.New(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if filtered, err := logger.WithFilter(config.LogFilter); err != nil {
		logger.Warn("Ignoring invalid log filter",
			log.String("filter", config.LogFilter), log.ErrorField(err))
	} else {
		logger = filtered
	}
	log.ResetDefault(logger)
	return sqlLogger.Named("sql")
}

// WaitForDB blocks until the database port accepts connections.
func WaitForDB() error {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	if addr := utils.ExtractFromDBURL(config.DB); addr != "" {
		return utils.WaitForTCP(addr, timeout)
	}
	return nil
}

// Location returns the configured time zone, falling back to local time.
func Location() *time.Location {
	if config.Location == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(config.Location)
	if err != nil {
		log.Warn("Unknown location, using local time",
			log.String("location", config.Location), log.ErrorField(err))
		return time.Local
	}
	return loc
}

// NewEnv sets up logging, telemetry and storage and creates the services.
//
//nolint:funlen // setup sequence
func NewEnv(ctx context.Context) (*Env, error) {
	sqlLogger := SetupLogging()
	env := &Env{}

	pgTraceOption := postgres.WithTracer(sqlLogger, log.DebugLevel)
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		if telemetry, err := config.SetupTelemetry(ctx); err == nil {
			env.closers = append(env.closers, telemetry.Shutdown)
			pgTraceOption = postgres.WithOtlpTracer(sqlLogger, log.DebugLevel)
		} else {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
	}

	var repos api.Repositories
	var txMgr api.TransactionManager
	switch config.Store {
	case config.StoreMemory:
		log.Debug("Using in-memory store")
		store := memory.New()
		repos, txMgr = store, store
	default:
		if err := WaitForDB(); err != nil {
			env.Close()
			return nil, err
		}
		pool, err := postgres.InitWithURL(config.DB, pgTraceOption)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.closers = append(env.closers, pool.Close)
		repos = bobrepos.NewRepositoriesFromPool(pool)
		txMgr = bobrepos.NewTransactionManagerFromPool(pool)
	}

	env.Races = race.NewService(
		race.WithRepositories(repos),
		race.WithTxManager(txMgr),
	)
	env.Transfer = transfer.NewService(
		transfer.WithRaceService(env.Races),
		transfer.WithReportOptions(report.WithLocation(Location())),
	)
	env.closers = append(env.closers, func() { _ = log.Sync() })
	return env, nil
}

// ResolveRaceID returns id if set, otherwise the id of the current race.
func (e *Env) ResolveRaceID(ctx context.Context, id int) (int, error) {
	if id > 0 {
		return id, nil
	}
	r, err := e.Races.GetCurrentRace(ctx)
	if err != nil {
		return 0, err
	}
	if r == nil {
		return 0, ErrNoRace
	}
	return r.ID, nil
}
