// Package api implements the HTTP layer for the program matcher. Handlers are
// methods on *Server. Each handler file is responsible for one resource group
// and only imports the dependencies it actually uses.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nyashahama/program-matcher-backend/internal/db"
	"github.com/nyashahama/program-matcher-backend/internal/events"
	"github.com/nyashahama/program-matcher-backend/internal/matching"
	"github.com/nyashahama/program-matcher-backend/internal/session"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// BaseURL is the public origin of the frontend, e.g. "https://app.example.com".
	BaseURL string

	// Env is "production", "staging", or "development".
	Env string

	// JWTSecret verifies HS256 bearer tokens. Empty rejects every bearer token.
	JWTSecret string

	// QuizVersion is served by GET /api/quiz/questions without ?version=.
	QuizVersion string
}

// ResultStore is the subset of store.Store the handlers write through.
type ResultStore interface {
	ClaimResult(ctx context.Context, accessToken, userID, email string) (db.QuizResult, error)
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// q handles all single-query reads. Injected directly, no repo wrapper.
	q db.Querier

	// store handles multi-step atomic writes.
	store ResultStore

	// sessions runs the in-progress quiz flow against Redis.
	sessions *session.Service

	// matcher serves ad-hoc matches for an explicit profile.
	matcher *matching.Matcher

	publisher events.Publisher

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.Server.
func NewServer(
	q db.Querier,
	st ResultStore,
	sessions *session.Service,
	matcher *matching.Matcher,
	publisher events.Publisher,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	s := &Server{
		q:         q,
		store:     st,
		sessions:  sessions,
		matcher:   matcher,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health & metrics ──────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		// A bearer token is optional everywhere; when present it must be valid.
		r.Use(s.authenticate)

		r.Get("/quiz/questions", s.handleQuestions)
		r.Post("/quiz/start", s.handleStartQuiz)

		// Session-scoped routes: X-Anon-Token for anonymous sessions, the
		// bearer user for owned ones.
		r.Route("/quiz/session/{sessionID}", func(r chi.Router) {
			r.Use(s.requireSessionOwner)
			r.Get("/", s.handleGetSession)
			r.Put("/answers", s.handleSaveAnswer)
			r.Get("/summary", s.handleSessionSummary)
			r.Post("/complete", s.handleCompleteSession)
		})

		r.With(s.requireUser).Get("/me/progress", s.handleMyProgress)

		// Results: the opaque access token in the URL is the credential.
		r.Route("/results/{accessToken}", func(r chi.Router) {
			r.Get("/", s.handleGetResult)
			r.Get("/summary", s.handleResultSummary)
			r.With(s.requireUser).Post("/claim", s.handleClaimResult)
		})

		r.Post("/programs/match", s.handleMatchPrograms)
	})

	return r
}
