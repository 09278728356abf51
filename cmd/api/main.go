package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // postgres driver
	"github.com/redis/go-redis/v9"
	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"

	"github.com/nyashahama/program-matcher-backend/internal/ai"
	"github.com/nyashahama/program-matcher-backend/internal/api"
	"github.com/nyashahama/program-matcher-backend/internal/config"
	"github.com/nyashahama/program-matcher-backend/internal/db"
	"github.com/nyashahama/program-matcher-backend/internal/email"
	"github.com/nyashahama/program-matcher-backend/internal/events"
	"github.com/nyashahama/program-matcher-backend/internal/matching"
	"github.com/nyashahama/program-matcher-backend/internal/session"
	"github.com/nyashahama/program-matcher-backend/internal/store"
	"github.com/nyashahama/program-matcher-backend/internal/worker"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "quiz_version", cfg.QuizVersion)

	// ── Database ──────────────────────────────────────────────────────────────
	pool, queries, err := openDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	// ── Redis (quiz sessions + rate limits) ───────────────────────────────────
	rdb, err := openRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()
	logger.Info("redis connected")

	// ── Events ────────────────────────────────────────────────────────────────
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, logger)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	defer publisher.Close()

	// ── Store & matcher ───────────────────────────────────────────────────────
	st := store.New(pool, queries, logger)
	matcher := matching.New(st, cfg.MatchTopN, logger)

	// ── Summaries ─────────────────────────────────────────────────────────────
	// Anthropic is primary when both keys are set. With neither, the worker
	// writes the deterministic summary.
	var summarizer ai.Summarizer
	switch {
	case cfg.AnthropicAPIKey != "" && cfg.DeepSeekAPIKey != "":
		primary := ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, "")
		secondary := ai.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekModel, "")
		summarizer = ai.NewFallbackSummarizer(primary, secondary, logger)
		logger.Info("ai: using Anthropic with DeepSeek fallback")
	case cfg.AnthropicAPIKey != "":
		summarizer = ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, "")
		logger.Info("ai: using Anthropic only")
	case cfg.DeepSeekAPIKey != "":
		summarizer = ai.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekModel, "")
		logger.Info("ai: using DeepSeek only")
	default:
		summarizer = ai.Static{}
		logger.Warn("ai: no provider keys set, using static summaries")
	}

	// ── Email (Resend) ────────────────────────────────────────────────────────
	var mailer email.Sender = email.Noop{}
	if cfg.ResendAPIKey != "" {
		mailer = email.NewResendClient(cfg.ResendAPIKey, cfg.EmailFromAddr, cfg.EmailFromName, cfg.BaseURL)
	} else {
		logger.Warn("email: RESEND_API_KEY is empty, notifications are disabled")
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	job := worker.NewJob(queries, st, matcher, summarizer, mailer, publisher, logger)
	runner := worker.NewRunner(job, st, queries, worker.RunnerConfig{
		Workers:      cfg.WorkerCount,
		PollInterval: cfg.PollInterval,
		JobTimeout:   cfg.JobTimeout,
		MaxRetries:   cfg.MaxRetries,
	}, logger)
	finalizer := worker.NewFinalizer(st, runner, logger)

	// ── Quiz sessions ─────────────────────────────────────────────────────────
	limiter := session.NewRedisLimiter(rdb, cfg.RateLimitEnabled && cfg.Env != "development")
	sessions := session.NewService(
		session.NewRedisStore(rdb),
		limiter,
		finalizer,
		publisher,
		session.Config{
			TTL:            cfg.SessionTTL,
			ArchiveTTL:     cfg.ArchiveTTL,
			DefaultVersion: cfg.QuizVersion,
		},
		logger,
	)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		queries,
		st,
		sessions,
		matcher,
		publisher,
		api.Config{
			BaseURL:     cfg.BaseURL,
			Env:         cfg.Env,
			JWTSecret:   cfg.JWTSecret,
			QuizVersion: cfg.QuizVersion,
		},
		logger,
	)

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ── gRPC health ───────────────────────────────────────────────────────────
	grpcServer := grpc.NewServer()
	health := newHealthReporter(grpcServer, pool, rdb, logger)

	// ── Listener ──────────────────────────────────────────────────────────────
	// One port: HTTP/2 requests with content-type application/grpc go to the
	// gRPC server, everything else to chi.
	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	mux := cmux.New(lis)
	grpcL := mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := mux.Match(cmux.Any())

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	// Root context cancelled by OS signal. Worker and servers all respect it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the worker pool. runnerDone closes once every worker has drained.
	runnerDone := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(runnerDone)
	}()
	go health.Watch(ctx, 15*time.Second)

	serverErr := make(chan error, 3)
	go func() {
		if err := grpcServer.Serve(grpcL); err != nil && !errors.Is(err, cmux.ErrListenerClosed) && !errors.Is(err, grpc.ErrServerStopped) {
			serverErr <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		if err := srv.Serve(httpL); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, cmux.ErrListenerClosed) {
			serverErr <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		logger.Info("server listening", "addr", lis.Addr().String())
		if err := mux.Serve(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, cmux.ErrServerClosed) {
			serverErr <- fmt.Errorf("cmux: %w", err)
		}
	}()

	// Block until either a signal arrives or a server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight HTTP requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	health.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	grpcServer.GracefulStop()
	mux.Close()

	select {
	case <-runnerDone:
	case <-shutdownCtx.Done():
		logger.Warn("shutdown: workers still running after grace period")
	}

	logger.Info("shutdown complete")
	return nil
}

// openDB opens the connection pool and prepares all sqlc statements.
// Using db.Prepare (rather than db.New) means every query is validated against
// the database schema at startup: the server refuses to start if the schema
// is out of sync.
func openDB(dsn string) (*sql.DB, *db.Queries, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(10)
	pool.SetConnMaxLifetime(5 * time.Minute)
	pool.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	queries, err := db.Prepare(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("prepare statements: %w", err)
	}

	return pool, queries, nil
}

// openRedis parses a redis:// URL and checks the server answers.
func openRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}
