package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/program-matcher-backend/internal/events"
	"github.com/nyashahama/program-matcher-backend/internal/metrics"
	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/scoring"
)

// ErrInProgress is returned by operations that need a completed quiz.
var ErrInProgress = errors.New("session: quiz not completed")

// Defaults for Config zero values.
const (
	DefaultTTL        = 24 * time.Hour
	DefaultArchiveTTL = 7 * 24 * time.Hour
)

// Receipt identifies the permanent record created for a completed session.
type Receipt struct {
	ResultID    string
	AccessToken string
}

// Finalizer moves a completed session's answers into permanent storage. It
// must be idempotent per session id.
type Finalizer interface {
	FinalizeProgress(ctx context.Context, p *Progress) (Receipt, error)
}

// Config tunes a Service.
type Config struct {
	TTL            time.Duration
	ArchiveTTL     time.Duration
	DefaultVersion string
}

// Service runs the quiz flow. It is safe for concurrent use.
type Service struct {
	store     Store
	limiter   Limiter
	finalizer Finalizer
	publisher events.Publisher
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the quiz flow.
func NewService(
	store Store,
	limiter Limiter,
	finalizer Finalizer,
	publisher events.Publisher,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.ArchiveTTL <= 0 {
		cfg.ArchiveTTL = DefaultArchiveTTL
	}
	if cfg.DefaultVersion == "" {
		cfg.DefaultVersion = quiz.VersionFull
	}
	return &Service{
		store:     store,
		limiter:   limiter,
		finalizer: finalizer,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ─── START ────────────────────────────────────────────────────────────────────

// StartParams describe a new session. ClientID keys the start rate limit for
// anonymous callers. Email is taken from the caller's token when present and
// is where the ready notification goes.
type StartParams struct {
	Version  string
	UserID   string
	Email    string
	ClientID string
}

// Start opens a session. An authenticated user with an unfinished session gets
// it back with resumed set instead of a new one.
func (s *Service) Start(ctx context.Context, params StartParams) (p *Progress, resumed bool, err error) {
	limitID := params.ClientID
	if params.UserID != "" {
		limitID = "user:" + params.UserID
	}
	if err := s.checkLimit(ctx, ActionStart, limitID); err != nil {
		return nil, false, err
	}

	if params.UserID != "" {
		existing, err := s.ForUser(ctx, params.UserID)
		switch {
		case err == nil && !existing.Finalized():
			return existing, true, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, false, err
		}
	}

	version := params.Version
	if version == "" {
		version = s.cfg.DefaultVersion
	}
	catalog, err := quiz.Lookup(version)
	if err != nil {
		return nil, false, err
	}

	now := s.now().UTC()
	p = &Progress{
		ID:             uuid.NewString(),
		UserID:         params.UserID,
		Email:          params.Email,
		CatalogVersion: version,
		Answers:        quiz.Answers{},
		Status:         StatusInProgress,
		StartedAt:      now,
		UpdatedAt:      now,
	}
	if p.Anonymous() {
		if p.AnonToken, err = newToken(); err != nil {
			return nil, false, fmt.Errorf("session: generate anon token: %w", err)
		}
	}
	if first, ok := catalog.NextVisibleQuestionID(0, p.Answers); ok {
		p.CurrentQuestionID = first
		p.Path = []int{first}
	}

	if err := s.store.Create(ctx, p, s.cfg.TTL); err != nil {
		return nil, false, err
	}
	if !p.Anonymous() {
		if err := s.store.SetUserSession(ctx, p.UserID, p.ID, s.cfg.TTL); err != nil {
			return nil, false, err
		}
	}

	owner := "anonymous"
	if !p.Anonymous() {
		owner = "user"
	}
	metrics.QuizzesStarted.WithLabelValues(version, owner).Inc()
	s.publish(ctx, events.New(events.TypeQuizStarted, p.ID, p.UserID, map[string]any{
		"catalogVersion": version,
	}))

	s.logger.Info("session: started", "session_id", p.ID, "catalog", version, "owner", owner)
	return p, false, nil
}

// ─── READ ─────────────────────────────────────────────────────────────────────

// Get returns the session by id.
func (s *Service) Get(ctx context.Context, id string) (*Progress, error) {
	return s.store.Get(ctx, id)
}

// ForUser returns the session an authenticated user is working on.
func (s *Service) ForUser(ctx context.Context, userID string) (*Progress, error) {
	id, err := s.store.UserSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// Authorize checks that the caller owns p: the matching anonymous token for
// anonymous sessions, the matching user id otherwise.
func Authorize(p *Progress, anonToken, userID string) error {
	if p.Anonymous() {
		if anonToken != "" && subtle.ConstantTimeCompare([]byte(anonToken), []byte(p.AnonToken)) == 1 {
			return nil
		}
		return ErrForbidden
	}
	if userID == p.UserID {
		return nil
	}
	return ErrForbidden
}

// ─── ANSWER ───────────────────────────────────────────────────────────────────

// SaveAnswer decodes, validates and upserts one answer, then recomputes the
// visible path, the next question and the status. When the write completes
// the quiz the session is finalized; a finalization failure is logged and can
// be retried with Finalize.
func (s *Service) SaveAnswer(ctx context.Context, id string, questionID int, raw json.RawMessage) (*Progress, error) {
	if err := s.checkLimit(ctx, ActionAnswer, id); err != nil {
		return nil, err
	}

	p, err := s.store.Update(ctx, id, s.cfg.TTL, func(p *Progress) error {
		if p.Finalized() {
			return ErrCompleted
		}
		catalog, err := quiz.Lookup(p.CatalogVersion)
		if err != nil {
			return err
		}
		q, v, err := catalog.Decode(questionID, raw)
		if err != nil {
			return err
		}
		if !catalog.IsVisible(q, p.Answers) {
			return fmt.Errorf("%w: question %d is not shown", quiz.ErrInvalidAnswer, questionID)
		}
		if err := quiz.ValidateAnswer(q, v); err != nil {
			return err
		}
		p.Answers = p.Answers.Upsert(quiz.Entry{QuestionID: questionID, Answer: v})
		p.recompute(catalog, questionID, s.now().UTC())
		return nil
	})
	if err != nil {
		metrics.AnswersSaved.WithLabelValues(answerStatus(err)).Inc()
		return nil, err
	}
	metrics.AnswersSaved.WithLabelValues("ok").Inc()

	completed := p.Status == StatusCompleted
	if events.ShouldLogAnswer(questionID, completed) {
		s.publish(ctx, events.New(events.TypeQuizAnswered, p.ID, p.UserID, map[string]any{
			"questionId":   questionID,
			"totalAnswers": len(p.Answers),
		}))
	}
	if !completed {
		return p, nil
	}

	metrics.QuizzesCompleted.WithLabelValues(p.CatalogVersion).Inc()
	s.publish(ctx, events.New(events.TypeQuizCompleted, p.ID, p.UserID, map[string]any{
		"totalAnswers": len(p.Answers),
	}))

	finalized, err := s.finalize(ctx, p)
	if err != nil {
		s.logger.Error("session: finalize after completion",
			"session_id", p.ID,
			"error", err,
		)
		return p, nil
	}
	return finalized, nil
}

func answerStatus(err error) string {
	switch {
	case errors.Is(err, quiz.ErrInvalidAnswer), errors.Is(err, quiz.ErrUnknownQuestion):
		return "invalid"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

// ─── FINALIZE ─────────────────────────────────────────────────────────────────

// Finalize hands a completed session to permanent storage. Calling it again
// on a finalized session returns the session unchanged.
func (s *Service) Finalize(ctx context.Context, id string) (*Progress, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Finalized() {
		return p, nil
	}
	if p.Status != StatusCompleted {
		return nil, ErrInProgress
	}
	return s.finalize(ctx, p)
}

func (s *Service) finalize(ctx context.Context, p *Progress) (*Progress, error) {
	if s.finalizer == nil {
		return nil, errors.New("session: no finalizer configured")
	}
	receipt, err := s.finalizer.FinalizeProgress(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("session: finalize %s: %w", p.ID, err)
	}
	return s.MarkFinalized(ctx, p.ID, receipt)
}

// MarkFinalized records the receipt and releases the transient record: an
// anonymous session is deleted, an authenticated one is kept read-only for
// the archive TTL and unlinked from its user.
func (s *Service) MarkFinalized(ctx context.Context, id string, receipt Receipt) (*Progress, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Anonymous() {
		if err := s.store.Delete(ctx, id); err != nil {
			return nil, err
		}
		p.ResultID, p.AccessToken = receipt.ResultID, receipt.AccessToken
		s.logger.Info("session: finalized and deleted", "session_id", id, "result_id", receipt.ResultID)
		return p, nil
	}

	p, err = s.store.Update(ctx, id, s.cfg.ArchiveTTL, func(p *Progress) error {
		p.ResultID, p.AccessToken = receipt.ResultID, receipt.AccessToken
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.store.ClearUserSession(ctx, p.UserID); err != nil {
		s.logger.Warn("session: clear user index", "session_id", id, "error", err)
	}
	s.logger.Info("session: finalized and archived", "session_id", id, "result_id", receipt.ResultID)
	return p, nil
}

// ─── SUMMARY ──────────────────────────────────────────────────────────────────

// MiniResults is the preview shown once a quiz is completed.
type MiniResults struct {
	SessionID        string           `json:"sessionId"`
	CompletedAt      *time.Time       `json:"completedAt"`
	TotalAnswers     int              `json:"totalAnswers"`
	Insights         scoring.Insights `json:"insights"`
	AvgScore         float64          `json:"avgScore"`
	CanGetFullReport bool             `json:"canGetFullReport"`
}

// Summarize builds the preview from a completed answer list.
func Summarize(sessionID string, answers quiz.Answers, completedAt *time.Time) MiniResults {
	var avg float64
	if a := scoring.NumericAnalytics(answers); a.NumericAverage != nil {
		avg = *a.NumericAverage
	}
	return MiniResults{
		SessionID:        sessionID,
		CompletedAt:      completedAt,
		TotalAnswers:     len(answers),
		Insights:         scoring.BasicInsights(avg),
		AvgScore:         avg,
		CanGetFullReport: true,
	}
}

// Summary returns the preview for a completed session.
func (s *Service) Summary(ctx context.Context, id string) (MiniResults, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return MiniResults{}, err
	}
	if p.Status != StatusCompleted {
		return MiniResults{}, ErrInProgress
	}
	s.publish(ctx, events.New(events.TypeSummaryViewed, p.ID, p.UserID, nil))
	return Summarize(p.ID, p.Answers, p.CompletedAt), nil
}

// ─── HELPERS ──────────────────────────────────────────────────────────────────

func (s *Service) checkLimit(ctx context.Context, action Action, identifier string) error {
	if s.limiter == nil {
		return nil
	}
	d, err := s.limiter.Allow(ctx, action, identifier)
	if err != nil {
		// Redis trouble must not lock students out of the quiz.
		s.logger.Warn("session: rate limiter unavailable", "action", action, "error", err)
		return nil
	}
	if !d.Allowed {
		metrics.RateLimited.WithLabelValues(string(action)).Inc()
		return &RateLimitError{Action: action, RetryAfter: d.RetryAfter}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("session: publish event", "type", e.Type, "error", err)
	}
}

// newToken returns 32 random bytes as 64 hex chars.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
