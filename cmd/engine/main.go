package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger-replay-engine/config"
	"ledger-replay-engine/internal/adapter/csvio"
	httpHandler "ledger-replay-engine/internal/adapter/http/handler"
	"ledger-replay-engine/internal/adapter/storage/memory"
	pgStorage "ledger-replay-engine/internal/adapter/storage/postgres"
	redisStorage "ledger-replay-engine/internal/adapter/storage/redis"
	"ledger-replay-engine/internal/core/ports"
	"ledger-replay-engine/internal/service"
	"ledger-replay-engine/pkg/apperror"
	"ledger-replay-engine/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	var (
		configPath = pflag.String("config", "", "path to config file (default: ./config.yaml)")
		inputPath  = pflag.String("input", "", "event CSV to replay (default: stdin, or first positional arg)")
		outputPath = pflag.String("output", "", "where to write the balance report (default: stdout)")
		serve      = pflag.Bool("serve", false, "serve the finalized report over HTTP after the replay")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if *inputPath == "" && pflag.NArg() > 0 {
		*inputPath = pflag.Arg(0)
	}

	if err := run(cfg, log, *inputPath, *outputPath, *serve); err != nil {
		log.Fatal().Err(err).Msg("replay failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger, inputPath, outputPath string, serve bool) error {
	ctx := context.Background()

	history, checkers, cleanup, err := buildHistoryStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := service.NewEngine(history, log)

	input, closeInput, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer closeInput()

	if err := replay(ctx, engine, input, log); err != nil {
		return err
	}

	stats := engine.Stats()
	log.Info().
		Uint64("processed", stats.Processed).
		Uint64("dropped", stats.Dropped).
		Uint64("ignored", stats.Ignored).
		Msg("replay finished")

	if err := writeReport(engine, outputPath); err != nil {
		return err
	}

	if serve {
		return serveReport(cfg, engine, checkers, log)
	}
	return nil
}

// buildHistoryStore selects the history backend from config. The
// in-memory store is the default; redis/postgres keep the unbounded
// history out of process memory.
func buildHistoryStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.HistoryStore, []ports.HealthChecker, func(), error) {
	switch cfg.History.Backend {
	case config.BackendRedis:
		client, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() { _ = client.Close() }
		return redisStorage.NewHistoryStore(client),
			[]ports.HealthChecker{redisStorage.NewHealthCheck(client)},
			cleanup, nil

	case config.BackendPostgres:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return pgStorage.NewHistoryRepo(pool),
			[]ports.HealthChecker{pgStorage.NewHealthCheck(pool)},
			pool.Close, nil

	default:
		log.Debug().Msg("using in-memory history (full history retained for the run)")
		return memory.NewHistoryStore(), nil, func() {}, nil
	}
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// replay feeds events to the engine one at a time, in arrival order.
// Per-event failures never abort the stream: the engine logs its own
// drops, and malformed rows are logged here.
func replay(ctx context.Context, engine *service.Engine, input io.Reader, log zerolog.Logger) error {
	reader := csvio.NewReader(input)
	for {
		ev, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				log.Warn().Err(err).Msg("row dropped")
				continue
			}
			return fmt.Errorf("reading events: %w", err)
		}

		_ = engine.Process(ctx, *ev)
	}
}

func writeReport(engine *service.Engine, path string) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return csvio.WriteReport(out, engine.Finalize())
}

// serveReport exposes the finalized balances over HTTP until the
// process is interrupted.
func serveReport(cfg *config.Config, engine *service.Engine, checkers []ports.HealthChecker, log zerolog.Logger) error {
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Source:         engine,
		HealthCheckers: checkers,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("report server listening")
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
