package worker_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/program-matcher-backend/internal/ai"
	"github.com/nyashahama/program-matcher-backend/internal/db"
	"github.com/nyashahama/program-matcher-backend/internal/email"
	"github.com/nyashahama/program-matcher-backend/internal/events"
	"github.com/nyashahama/program-matcher-backend/internal/matching"
	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/session"
	"github.com/nyashahama/program-matcher-backend/internal/store"
	"github.com/nyashahama/program-matcher-backend/internal/worker"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

// stubQuerier serves results from memory. Unused Querier methods panic via
// the nil embedded interface.
type stubQuerier struct {
	db.Querier
	mu      sync.Mutex
	results map[uuid.UUID]db.QuizResult
}

func (q *stubQuerier) GetQuizResultByID(_ context.Context, id uuid.UUID) (db.QuizResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	r, ok := q.results[id]
	if !ok {
		return db.QuizResult{}, sql.ErrNoRows
	}
	return r, nil
}

func (q *stubQuerier) ListQuizResultsByStatus(_ context.Context, statuses []db.ResultStatus) ([]db.QuizResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []db.QuizResult
	for _, r := range q.results {
		for _, s := range statuses {
			if r.Status == s {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

type stubStore struct {
	mu         sync.Mutex
	q          *stubQuerier
	persisted  []store.PersistMatchedResultParams
	failed     map[uuid.UUID]string
	persistErr error
}

func (s *stubStore) InitialiseResult(_ context.Context, p store.InitialiseResultParams) (db.QuizResult, error) {
	s.q.mu.Lock()
	defer s.q.mu.Unlock()
	for _, r := range s.q.results {
		if r.SessionID == p.SessionID {
			return r, store.ErrResultAlreadyExists
		}
	}
	r := db.QuizResult{
		ID:             uuid.New(),
		AccessToken:    p.AccessToken,
		SessionID:      p.SessionID,
		UserID:         sql.NullString{String: p.UserID, Valid: p.UserID != ""},
		Email:          sql.NullString{String: p.Email, Valid: p.Email != ""},
		CatalogVersion: p.CatalogVersion,
		Answers:        p.Answers,
		Status:         db.ResultStatusPending,
	}
	s.q.results[r.ID] = r
	return r, nil
}

func (s *stubStore) PersistMatchedResult(_ context.Context, p store.PersistMatchedResultParams) (db.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persistErr != nil {
		return db.QuizResult{}, s.persistErr
	}
	s.persisted = append(s.persisted, p)

	s.q.mu.Lock()
	defer s.q.mu.Unlock()
	r := s.q.results[p.ResultID]
	r.Status = db.ResultStatusReady
	s.q.results[p.ResultID] = r
	return r, nil
}

func (s *stubStore) MarkResultFailed(_ context.Context, id uuid.UUID, reason string) (db.QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed == nil {
		s.failed = map[uuid.UUID]string{}
	}
	s.failed[id] = reason
	return db.QuizResult{ID: id, Status: db.ResultStatusError}, nil
}

type stubSummarizer struct {
	text string
	err  error
}

func (s stubSummarizer) Summarize(context.Context, ai.SummaryInput) (string, error) {
	return s.text, s.err
}

type stubMailer struct {
	mu   sync.Mutex
	sent []email.MatchesReadyParams
}

func (m *stubMailer) SendMatchesReady(_ context.Context, p email.MatchesReadyParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, p)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f(v float64) *float64 { return &v }

// ─── FIXTURE ──────────────────────────────────────────────────────────────────

const minimalAnswers = `[
	{"questionId":1,"answer":"Dana Smith"},
	{"questionId":2,"answer":["engineering"]},
	{"questionId":3,"answer":{"degree":50,"campus":30,"city":20}},
	{"questionId":6,"answer":3},
	{"questionId":8,"answer":"no"},
	{"questionId":12,"answer":4}
]`

var programs = matching.StaticSource{
	{
		ID:          uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Name:        "Computer Science",
		DegreeLevel: "bachelor",
		University:  matching.University{Name: "Test University", City: "Cape Town", LivingCostUSD: f(9000)},
	},
	{
		ID:          uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		Name:        "History",
		DegreeLevel: "bachelor",
		University:  matching.University{Name: "Other University", City: "Durban"},
	},
}

type fixture struct {
	q         *stubQuerier
	store     *stubStore
	mailer    *stubMailer
	publisher *events.Recorder
	job       *worker.Job
}

func newFixture(summarizer ai.Summarizer, source matching.ProgramSource) *fixture {
	q := &stubQuerier{results: map[uuid.UUID]db.QuizResult{}}
	fx := &fixture{
		q:         q,
		store:     &stubStore{q: q},
		mailer:    &stubMailer{},
		publisher: &events.Recorder{},
	}
	matcher := matching.New(source, 0, discardLogger())
	fx.job = worker.NewJob(q, fx.store, matcher, summarizer, fx.mailer, fx.publisher, discardLogger())
	return fx
}

func (fx *fixture) seed(t *testing.T, emailAddr string) db.QuizResult {
	t.Helper()
	r, err := fx.store.InitialiseResult(context.Background(), store.InitialiseResultParams{
		AccessToken:    "tok_" + t.Name(),
		SessionID:      uuid.NewString(),
		Email:          emailAddr,
		CatalogVersion: quiz.VersionMinimal,
		Answers:        json.RawMessage(minimalAnswers),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return r
}

// ─── Job.Run ──────────────────────────────────────────────────────────────────

func TestJobRun_PersistsMatchesAndNotifies(t *testing.T) {
	fx := newFixture(stubSummarizer{text: "Dana, you build things."}, programs)
	r := fx.seed(t, "dana@example.com")

	if err := fx.job.Run(context.Background(), r.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(fx.store.persisted) != 1 {
		t.Fatalf("expected one persist, got %d", len(fx.store.persisted))
	}
	p := fx.store.persisted[0]
	if p.Summary != "Dana, you build things." {
		t.Errorf("summary: %q", p.Summary)
	}
	if len(p.Matches) != 2 {
		t.Errorf("expected both programs ranked, got %d", len(p.Matches))
	}
	if p.MatchingVersion != matching.AlgorithmVersion {
		t.Errorf("matching version: %q", p.MatchingVersion)
	}
	if got := p.Scoring.Scoring.Sections.Weights().Sum(); got < 99.99 || got > 100.01 {
		t.Errorf("section weights sum to %v", got)
	}

	if len(fx.mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(fx.mailer.sent))
	}
	sent := fx.mailer.sent[0]
	if sent.FirstName != "Dana" || sent.AccessToken != r.AccessToken {
		t.Errorf("email params: %+v", sent)
	}
	if !strings.Contains(sent.TopPrograms[0], "University") {
		t.Errorf("program names should carry the university: %v", sent.TopPrograms)
	}

	if types := fx.publisher.Types(); len(types) != 1 || types[0] != events.TypeProgramsMatched {
		t.Errorf("events: %v", types)
	}
}

func TestJobRun_SummaryFailureFallsBackToStatic(t *testing.T) {
	fx := newFixture(stubSummarizer{err: errors.New("provider down")}, programs)
	r := fx.seed(t, "")

	if err := fx.job.Run(context.Background(), r.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := fx.store.persisted[0].Summary; !strings.HasPrefix(got, "Dana, you") {
		t.Errorf("expected static summary, got %q", got)
	}
	if len(fx.mailer.sent) != 0 {
		t.Error("no email address means no email")
	}
}

func TestJobRun_MatchFailureIsRetryable(t *testing.T) {
	fx := newFixture(nil, failingSource{})
	r := fx.seed(t, "")

	err := fx.job.Run(context.Background(), r.ID)
	if err == nil {
		t.Fatal("expected error when the matcher fails")
	}
	if len(fx.store.persisted) != 0 {
		t.Error("nothing should be persisted on match failure")
	}
}

func TestJobRun_SettledResultIsSkipped(t *testing.T) {
	fx := newFixture(nil, programs)
	r := fx.seed(t, "")
	r.Status = db.ResultStatusReady
	fx.q.results[r.ID] = r

	if err := fx.job.Run(context.Background(), r.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fx.store.persisted) != 0 {
		t.Error("ready result must not be rewritten")
	}
}

func TestJobRun_LostRaceIsNotAnError(t *testing.T) {
	fx := newFixture(nil, programs)
	fx.store.persistErr = store.ErrResultNotPending
	r := fx.seed(t, "dana@example.com")

	if err := fx.job.Run(context.Background(), r.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fx.mailer.sent) != 0 {
		t.Error("the winning worker sends the email")
	}
}

type failingSource struct{}

func (failingSource) ActivePrograms(context.Context) ([]matching.Program, error) {
	return nil, errors.New("connection refused")
}

// ─── Finalizer ────────────────────────────────────────────────────────────────

type recordingEnqueuer struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ids = append(e.ids, id)
	return e.err
}

func TestFinalizer_CreatesResultAndEnqueues(t *testing.T) {
	q := &stubQuerier{results: map[uuid.UUID]db.QuizResult{}}
	st := &stubStore{q: q}
	enq := &recordingEnqueuer{}
	fin := worker.NewFinalizer(st, enq, discardLogger())

	var answers quiz.Answers
	if err := json.Unmarshal([]byte(minimalAnswers), &answers); err != nil {
		t.Fatalf("answers: %v", err)
	}
	p := &session.Progress{ID: "sess-1", Email: "dana@example.com", CatalogVersion: quiz.VersionMinimal, Answers: answers}

	first, err := fin.FinalizeProgress(context.Background(), p)
	if err != nil {
		t.Fatalf("FinalizeProgress: %v", err)
	}
	if len(first.AccessToken) != 64 {
		t.Errorf("access token should be 64 hex chars, got %q", first.AccessToken)
	}
	if len(enq.ids) != 1 || enq.ids[0].String() != first.ResultID {
		t.Errorf("enqueued: %v", enq.ids)
	}

	second, err := fin.FinalizeProgress(context.Background(), p)
	if err != nil {
		t.Fatalf("repeat FinalizeProgress: %v", err)
	}
	if second != first {
		t.Errorf("repeat finalize must return the same receipt: %+v vs %+v", second, first)
	}
	if len(q.results) != 1 {
		t.Errorf("expected one result row, got %d", len(q.results))
	}
}

func TestFinalizer_FullQueueStillSucceeds(t *testing.T) {
	q := &stubQuerier{results: map[uuid.UUID]db.QuizResult{}}
	fin := worker.NewFinalizer(&stubStore{q: q}, &recordingEnqueuer{err: errors.New("queue is full")}, discardLogger())

	if _, err := fin.FinalizeProgress(context.Background(), &session.Progress{ID: "sess-2", CatalogVersion: quiz.VersionMinimal}); err != nil {
		t.Fatalf("enqueue failure must not fail finalization: %v", err)
	}
}

// ─── Runner ───────────────────────────────────────────────────────────────────

type flakyPipeline struct {
	mu       sync.Mutex
	failures int
	calls    int
	done     chan uuid.UUID
}

func (p *flakyPipeline) Run(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	p.calls++
	fail := p.calls <= p.failures
	p.mu.Unlock()
	if fail {
		return errors.New("transient")
	}
	p.done <- id
	return nil
}

func TestRunner_RetriesThenSucceeds(t *testing.T) {
	q := &stubQuerier{results: map[uuid.UUID]db.QuizResult{}}
	st := &stubStore{q: q}
	pipe := &flakyPipeline{failures: 1, done: make(chan uuid.UUID, 1)}
	runner := worker.NewRunner(pipe, st, q, worker.RunnerConfig{
		Workers:      1,
		PollInterval: time.Hour,
		MaxRetries:   3,
		RetryBase:    time.Millisecond,
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Start(ctx)

	id := uuid.New()
	if err := runner.Enqueue(ctx, id); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	select {
	case got := <-pipe.done:
		if got != id {
			t.Errorf("ran %s, want %s", got, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job did not complete")
	}
	if len(st.failed) != 0 {
		t.Error("a job that eventually succeeds must not be marked failed")
	}
}

func TestRunner_ExhaustedRetriesMarkFailed(t *testing.T) {
	q := &stubQuerier{results: map[uuid.UUID]db.QuizResult{}}
	st := &stubStore{q: q}
	pipe := &flakyPipeline{failures: 100, done: make(chan uuid.UUID, 1)}
	runner := worker.NewRunner(pipe, st, q, worker.RunnerConfig{
		Workers:      1,
		PollInterval: time.Hour,
		MaxRetries:   2,
		RetryBase:    time.Millisecond,
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Start(ctx)

	id := uuid.New()
	if err := runner.Enqueue(ctx, id); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st.mu.Lock()
		reason, ok := st.failed[id]
		st.mu.Unlock()
		if ok {
			if reason != "transient" {
				t.Errorf("failure reason: %q", reason)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("result was never marked failed")
}

func TestRunner_PollerPicksUpPendingResults(t *testing.T) {
	q := &stubQuerier{results: map[uuid.UUID]db.QuizResult{}}
	pending := db.QuizResult{ID: uuid.New(), Status: db.ResultStatusPending}
	q.results[pending.ID] = pending
	q.results[uuid.New()] = db.QuizResult{Status: db.ResultStatusReady}

	pipe := &flakyPipeline{done: make(chan uuid.UUID, 4)}
	runner := worker.NewRunner(pipe, &stubStore{q: q}, q, worker.RunnerConfig{
		Workers:      1,
		PollInterval: time.Hour,
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Start(ctx)

	select {
	case got := <-pipe.done:
		if got != pending.ID {
			t.Errorf("poller ran %s, want the pending result %s", got, pending.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not enqueue the pending result")
	}
}
