package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/cmd/cmdutil"
	"github.com/mpapenbr/race-strategy-sim/pkg/config"
	"github.com/mpapenbr/race-strategy-sim/pkg/httpapi"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/service/simulation"
	"github.com/mpapenbr/race-strategy-sim/pkg/utils/broadcast"
)

func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr,
		"server-addr",
		"a",
		"localhost:8080",
		"server listen address")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	return cmd
}

//nolint:funlen // by design
func startServer(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := cmdutil.SetupInfra(ctx)
	if err != nil {
		return err
	}
	defer infra.Close()

	log.Debug("Config:",
		log.String("addr", config.ServerAddr),
		log.Bool("db", config.DB != ""),
		log.String("nats", config.NatsURL),
		log.String("resultsLog", config.ResultsLog),
	)

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	sink := make(chan *model.RaceOutcome, 100)
	stream := broadcast.New(ctx, "results", (<-chan *model.RaceOutcome)(sink))
	defer stream.Close()

	svc, err := simulation.New(
		append(infra.ServiceOptions(), simulation.WithOutcomeSink(sink))...)
	if err != nil {
		return err
	}
	var handler http.Handler = httpapi.New(svc,
		httpapi.WithSession(infra.Session),
		httpapi.WithStream(stream))
	if config.EnableTelemetry {
		handler = otelhttp.NewHandler(handler, "rss.http")
	}

	//nolint:gosec // by design
	server := &http.Server{
		Addr:    config.ServerAddr,
		Handler: h2c.NewHandler(newCORS().Handler(handler), &http2.Server{}),
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", log.String("addr", config.ServerAddr))
		errCh <- server.ListenAndServe()
	}()
	setupGoRoutinesDump()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server could not be started", log.ErrorField(err))
			return err
		}
	case <-ctx.Done():
		log.Debug("Got signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("server shutdown", log.ErrorField(err))
		}
	}
	log.Info("Server terminated")
	return nil
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func newCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			"Accept",
			"Accept-Encoding",
			"Content-Encoding",
		},
		MaxAge: int(2 * time.Hour / time.Second),
	})
}
