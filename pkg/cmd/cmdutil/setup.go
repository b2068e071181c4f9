// Package cmdutil holds the setup shared by the rss commands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgx-contrib/pgxtrace"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/config"
	"github.com/mpapenbr/race-strategy-sim/pkg/db/postgres"
	natspub "github.com/mpapenbr/race-strategy-sim/pkg/publish/nats"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	bobRepos "github.com/mpapenbr/race-strategy-sim/pkg/repository/bob"
	"github.com/mpapenbr/race-strategy-sim/pkg/resultlog"
	"github.com/mpapenbr/race-strategy-sim/pkg/service/simulation"
	"github.com/mpapenbr/race-strategy-sim/pkg/session"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/rng"
	"github.com/mpapenbr/race-strategy-sim/pkg/utils"
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// InitLogging installs the default logger according to the log flags and
// returns the logger for sql statements.
func InitLogging() *log.Logger {
	var logger, sqlLogger *log.Logger
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		if filter, err := log.WithFilter(config.LogFilter); err == nil {
			opts = append(opts, filter)
		} else {
			fmt.Fprintf(os.Stderr, "ignoring invalid log filter %q: %v\n", config.LogFilter, err)
		}
	}
	switch config.LogFormat {
	case "json":
		logger = log.New(os.Stderr, parseLogLevel(config.LogLevel, log.InfoLevel), opts...)
		sqlLogger = log.New(os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel), opts...)
	default:
		logger = log.DevLogger(os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel), opts...)
		sqlLogger = log.DevLogger(os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel), opts...)
	}
	log.ResetDefault(logger)
	return sqlLogger
}

// WaitForRequiredServices blocks until the configured database and NATS
// server accept connections.
func WaitForRequiredServices(ctx context.Context) error {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	addrs := []string{}
	if addr := utils.ExtractFromDBURL(config.DB); addr != "" {
		addrs = append(addrs, addr)
	}
	if addr := utils.ExtractFromNatsURL(config.NatsURL); addr != "" {
		addrs = append(addrs, addr)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(addrs))
	for i, addr := range addrs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = utils.WaitForTCP(ctx, addr, timeout)
		}()
	}
	log.Debug("Waiting for connection checks to return")
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("required services not ready: %w", err)
	}
	log.Debug("Required services are available")
	return nil
}

// Infra holds the optional outputs of a simulation run.
type Infra struct {
	Pool      *pgxpool.Pool
	Repos     api.Repositories
	Publisher *natspub.Publisher
	ResultLog *resultlog.Log
	Telemetry *config.Telemetry
	Session   *session.Session
}

// SetupInfra connects to everything that is configured. Unset values
// (empty db url, nats url, results log) are skipped.
//
//nolint:funlen // by design
func SetupInfra(ctx context.Context) (*Infra, error) {
	sqlLogger := InitLogging()
	ret := &Infra{Session: session.New()}

	tracers := pgxtrace.CompositeQueryTracer{postgres.NewMyTracer(sqlLogger, log.DebugLevel)}
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if ret.Telemetry, err = config.SetupTelemetry(ctx); err == nil {
			tracers = append(tracers, postgres.NewOtlpTracer())
		} else {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	if config.DB != "" || config.NatsURL != "" {
		if err := WaitForRequiredServices(ctx); err != nil {
			ret.Close()
			return nil, err
		}
	}
	if config.DB != "" {
		pool, err := postgres.NewPool(ctx, config.DB, postgres.WithTracer(tracers))
		if err != nil {
			ret.Close()
			return nil, err
		}
		ret.Pool = pool
		ret.Repos = bobRepos.NewRepositoriesFromPool(pool)
	}
	if config.NatsURL != "" {
		conn, err := natspub.Connect(config.NatsURL)
		if err != nil {
			ret.Close()
			return nil, err
		}
		if ret.Publisher, err = natspub.New(ctx, conn); err != nil {
			conn.Close()
			ret.Close()
			return nil, err
		}
	}
	if config.ResultsLog != "" {
		ret.ResultLog = resultlog.New(config.ResultsLog)
	}
	return ret, nil
}

// ServiceOptions returns the service options for all available outputs.
func (i *Infra) ServiceOptions() []simulation.Option {
	opts := []simulation.Option{simulation.WithSession(i.Session)}
	if config.Seed != 0 {
		opts = append(opts, simulation.WithSource(rng.NewSeeded(config.Seed)))
	}
	if i.Repos != nil {
		opts = append(opts,
			simulation.WithResultRepository(i.Repos.Result()),
			simulation.WithSetupRepository(i.Repos.Setup()))
	}
	if i.Publisher != nil {
		opts = append(opts, simulation.WithPublisher(i.Publisher))
	}
	if i.ResultLog != nil {
		opts = append(opts, simulation.WithResultLog(i.ResultLog))
	}
	return opts
}

func (i *Infra) Close() {
	if i.Publisher != nil {
		i.Publisher.Close()
	}
	if i.Pool != nil {
		i.Pool.Close()
	}
	if i.Telemetry != nil {
		i.Telemetry.Shutdown()
	}
	//nolint:errcheck // stderr sync may fail on terminals
	log.Sync()
}
