// Package worker runs the result pipeline for completed quizzes: score the
// answers, match programs, write the summary, persist, notify. Completed
// sessions reach it through Finalizer, which calls Enqueue; a poller recovers
// results left pending by a restart.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/program-matcher-backend/internal/db"
	"github.com/nyashahama/program-matcher-backend/internal/metrics"
)

// ─── ENQUEUER INTERFACE ───────────────────────────────────────────────────────

// Enqueuer hands a result id to the pool. The concrete implementation is
// *Runner; tests use any struct with an Enqueue method.
type Enqueuer interface {
	Enqueue(ctx context.Context, resultID uuid.UUID) error
}

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. Zero fields take the
// DefaultRunnerConfig value.
type RunnerConfig struct {
	Workers int

	// PollInterval is how often pending and processing results are re-read
	// from the database.
	PollInterval time.Duration

	// JobTimeout bounds one pipeline attempt, including the summary call.
	JobTimeout time.Duration

	// MaxRetries is the number of attempts before a result is marked failed.
	MaxRetries int

	// RetryBase scales the exponential back-off between attempts
	// (2×, 4×, 8× ...).
	RetryBase time.Duration
}

// DefaultRunnerConfig returns safe production defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:      3,
		PollInterval: 30 * time.Second,
		JobTimeout:   5 * time.Minute,
		MaxRetries:   3,
		RetryBase:    time.Second,
	}
}

// Pipeline is one attempt at producing a result. *Job is the production
// implementation.
type Pipeline interface {
	Run(ctx context.Context, resultID uuid.UUID) error
}

// Runner manages a pool of worker goroutines fed by an in-process channel
// (fast path, used on completion) and a database poller (recovery path).
type Runner struct {
	job    Pipeline
	store  ResultStore
	q      db.Querier
	cfg    RunnerConfig
	logger *slog.Logger

	queue chan uuid.UUID
	wg    sync.WaitGroup
}

// NewRunner constructs a Runner. Call Start() to begin processing.
func NewRunner(
	job Pipeline,
	st ResultStore,
	q db.Querier,
	cfg RunnerConfig,
	logger *slog.Logger,
) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultRunnerConfig().Workers
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultRunnerConfig().PollInterval
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultRunnerConfig().JobTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultRunnerConfig().MaxRetries
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = DefaultRunnerConfig().RetryBase
	}

	return &Runner{
		job:    job,
		store:  st,
		q:      q,
		cfg:    cfg,
		logger: logger,
		// Buffer = Workers*2 so Enqueue never blocks under normal load.
		queue: make(chan uuid.UUID, cfg.Workers*2),
	}
}

// Enqueue pushes resultID onto the in-process channel without blocking. A
// full queue returns an error; the poller will pick the result up.
func (r *Runner) Enqueue(_ context.Context, resultID uuid.UUID) error {
	select {
	case r.queue <- resultID:
		r.logger.Info("worker: enqueued result", "result_id", resultID)
		return nil
	default:
		return errors.New("worker: queue is full, result will be picked up by poller")
	}
}

// Start launches the worker pool and the fallback poller. It blocks until ctx
// is cancelled. Call it in a goroutine from main:
//
//	go runner.Start(ctx)
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("worker: starting", "workers", r.cfg.Workers, "poll_interval", r.cfg.PollInterval)

	// Launch worker goroutines.
	for i := range r.cfg.Workers {
		r.wg.Add(1)
		go r.work(ctx, i)
	}

	// Launch fallback poller.
	r.wg.Add(1)
	go r.poll(ctx)

	r.wg.Wait()
	r.logger.Info("worker: stopped")
}

// work is the inner loop for each worker goroutine.
func (r *Runner) work(ctx context.Context, id int) {
	defer r.wg.Done()
	log := r.logger.With("worker_id", id)
	log.Info("worker: goroutine started")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker: goroutine stopping")
			return
		case resultID := <-r.queue:
			r.runWithRetry(ctx, resultID, log)
		}
	}
}

// poll re-reads pending and processing results on PollInterval.
func (r *Runner) poll(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	// Run once immediately on startup to pick up anything from before restart.
	r.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pollOnce(ctx)
		}
	}
}

func (r *Runner) pollOnce(ctx context.Context) {
	results, err := r.q.ListQuizResultsByStatus(ctx, []db.ResultStatus{
		db.ResultStatusPending,
		db.ResultStatusProcessing,
	})
	if err != nil {
		r.logger.Error("worker: poll failed", "error", err)
		return
	}
	for _, res := range results {
		select {
		case r.queue <- res.ID:
			r.logger.Debug("worker: poller enqueued result", "result_id", res.ID)
		default:
			// Queue full; next cycle.
		}
	}
}

// runWithRetry executes the job up to MaxRetries times. After exhausting
// retries it marks the result failed so the poller stops returning it.
func (r *Runner) runWithRetry(ctx context.Context, resultID uuid.UUID, log *slog.Logger) {
	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		jobCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
		lastErr = r.job.Run(jobCtx, resultID)
		cancel()

		if lastErr == nil {
			metrics.JobsProcessed.WithLabelValues("ready").Inc()
			log.Info("worker: job completed", "result_id", resultID, "attempt", attempt)
			return
		}

		metrics.JobsProcessed.WithLabelValues("retry").Inc()
		log.Warn("worker: job attempt failed",
			"result_id", resultID,
			"attempt", attempt,
			"max", r.cfg.MaxRetries,
			"error", lastErr,
		)

		if attempt < r.cfg.MaxRetries {
			backoff := time.Duration(1<<attempt) * r.cfg.RetryBase
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}

	metrics.JobsProcessed.WithLabelValues("failed").Inc()
	log.Error("worker: job permanently failed", "result_id", resultID, "error", lastErr)
	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if _, err := r.store.MarkResultFailed(failCtx, resultID, lastErr.Error()); err != nil {
		log.Error("worker: failed to mark result as failed", "result_id", resultID, "error", err)
	}
}
