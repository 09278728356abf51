package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/program-matcher-backend/internal/api"
	"github.com/nyashahama/program-matcher-backend/internal/db"
	"github.com/nyashahama/program-matcher-backend/internal/events"
	"github.com/nyashahama/program-matcher-backend/internal/matching"
	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/session"
	"github.com/nyashahama/program-matcher-backend/internal/store"
)

const testSecret = "test-jwt-secret"

// ─── STUBS ────────────────────────────────────────────────────────────────────

// stubQuerier satisfies db.Querier with in-memory result rows keyed by
// access token.
type stubQuerier struct {
	db.Querier // embedded to panic on unimplemented methods
	results    map[string]db.QuizResult
	getErr     error
}

func (q *stubQuerier) GetQuizResultByAccessToken(_ context.Context, token string) (db.QuizResult, error) {
	if q.getErr != nil {
		return db.QuizResult{}, q.getErr
	}
	r, ok := q.results[token]
	if !ok {
		return db.QuizResult{}, sql.ErrNoRows
	}
	return r, nil
}

// stubStore claims rows in the stub querier.
type stubStore struct {
	q *stubQuerier
}

func (s *stubStore) ClaimResult(_ context.Context, token, userID, email string) (db.QuizResult, error) {
	r, ok := s.q.results[token]
	if !ok {
		return db.QuizResult{}, store.ErrResultNotFound
	}
	if r.UserID.Valid && r.UserID.String != userID {
		return db.QuizResult{}, store.ErrResultAlreadyClaimed
	}
	r.UserID = sql.NullString{String: userID, Valid: true}
	r.Email = sql.NullString{String: email, Valid: email != ""}
	s.q.results[token] = r
	return r, nil
}

type stubFinalizer struct {
	mu    sync.Mutex
	calls []string
}

func (f *stubFinalizer) FinalizeProgress(_ context.Context, p *session.Progress) (session.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p.ID)
	return session.Receipt{ResultID: uuid.NewString(), AccessToken: "tok-" + p.ID}, nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, session.Action, string) (session.Decision, error) {
	return session.Decision{Allowed: false, RetryAfter: 90 * time.Second}, nil
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

type testDeps struct {
	q         *stubQuerier
	finalizer *stubFinalizer
	events    *events.Recorder
	handler   http.Handler
}

type serverOption func(*options)

type options struct {
	limiter  session.Limiter
	programs []matching.Program
	cfg      api.Config
}

func withLimiter(l session.Limiter) serverOption {
	return func(o *options) { o.limiter = l }
}

func withPrograms(p ...matching.Program) serverOption {
	return func(o *options) { o.programs = p }
}

func newTestServer(t *testing.T, opts ...serverOption) *testDeps {
	t.Helper()

	o := options{cfg: api.Config{
		Env:         "development",
		BaseURL:     "http://localhost:3000",
		JWTSecret:   testSecret,
		QuizVersion: quiz.VersionMinimal,
	}}
	for _, fn := range opts {
		fn(&o)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	q := &stubQuerier{results: make(map[string]db.QuizResult)}
	fin := &stubFinalizer{}
	rec := &events.Recorder{}

	sessions := session.NewService(session.NewMemoryStore(), o.limiter, fin, rec, session.Config{
		DefaultVersion: quiz.VersionMinimal,
	}, logger)
	matcher := matching.New(matching.StaticSource(o.programs), 0, logger)

	handler := api.NewServer(q, &stubStore{q: q}, sessions, matcher, rec, o.cfg, logger)

	return &testDeps{q: q, finalizer: fin, events: rec, handler: handler}
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		bodyReader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response body: %v (raw: %s)", err, rr.Body.String())
	}
}

func bearer(t *testing.T, userID, email string) map[string]string {
	t.Helper()
	claims := api.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + signed}
}

type startedSession struct {
	SessionID         string `json:"sessionId"`
	AnonToken         string `json:"anonToken"`
	CatalogVersion    string `json:"catalogVersion"`
	CurrentQuestionID int    `json:"currentQuestionId"`
	Status            string `json:"status"`
	VisibleQuestions  int    `json:"visibleQuestions"`
	Resumed           bool   `json:"resumed"`
	ResultID          string `json:"resultId"`
	AccessToken       string `json:"accessToken"`
}

func startAnonymous(t *testing.T, deps *testDeps) startedSession {
	t.Helper()
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/quiz/start", nil, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var s startedSession
	decodeJSON(t, rr, &s)
	return s
}

func anon(s startedSession) map[string]string {
	return map[string]string{"X-Anon-Token": s.AnonToken}
}

// minimalRun completes the minimal catalog with question 8 = "no".
var minimalRun = []struct {
	id  int
	raw string
}{
	{1, `"Dana"`},
	{2, `["engineering"]`},
	{3, `{"degree":50,"campus":30,"city":20}`},
	{4, `"tel_aviv"`},
	{5, `{"level1":"Innovation & Technology","level2":"technology"}`},
	{6, `3`},
	{7, `{"business":2,"calculator":3,"electronics":1,"chemistry":0}`},
	{8, `"no"`},
	{10, `"fall_2026"`},
	{12, `4`},
}

func answer(id int, raw string) map[string]any {
	return map[string]any{"questionId": id, "answer": json.RawMessage(raw)}
}

// ─── HEALTH & METRICS ─────────────────────────────────────────────────────────

func TestHealthz(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodGet, "/healthz", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestMetrics_Exposed(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodGet, "/metrics", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Error("expected default collectors in /metrics output")
	}
}

// ─── GET /api/quiz/questions ──────────────────────────────────────────────────

func TestQuestions(t *testing.T) {
	deps := newTestServer(t)

	cases := []struct {
		name    string
		path    string
		status  int
		version string
	}{
		{"default version", "/api/quiz/questions", http.StatusOK, quiz.VersionMinimal},
		{"explicit full", "/api/quiz/questions?version=full", http.StatusOK, quiz.VersionFull},
		{"unknown version", "/api/quiz/questions?version=v9", http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, deps.handler, http.MethodGet, tc.path, nil, nil)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}
			var resp struct {
				Version        string          `json:"version"`
				TotalQuestions int             `json:"totalQuestions"`
				Questions      []quiz.Question `json:"questions"`
			}
			decodeJSON(t, rr, &resp)
			if resp.Version != tc.version {
				t.Errorf("version = %q, want %q", resp.Version, tc.version)
			}
			if resp.TotalQuestions == 0 || resp.TotalQuestions != len(resp.Questions) {
				t.Errorf("totalQuestions = %d, questions = %d", resp.TotalQuestions, len(resp.Questions))
			}
		})
	}
}

// ─── POST /api/quiz/start ─────────────────────────────────────────────────────

func TestStart_AnonymousReturnsToken(t *testing.T) {
	deps := newTestServer(t)
	s := startAnonymous(t, deps)

	if s.SessionID == "" || len(s.AnonToken) != 64 {
		t.Errorf("unexpected session: %+v", s)
	}
	if s.CurrentQuestionID != 1 || s.Status != string(session.StatusInProgress) {
		t.Errorf("unexpected progress: %+v", s)
	}
	if s.VisibleQuestions == 0 {
		t.Error("visibleQuestions should be reported")
	}
	if got := deps.events.Types(); !slices.Equal(got, []events.Type{events.TypeQuizStarted}) {
		t.Errorf("events = %v", got)
	}
}

func TestStart_BodyValidation(t *testing.T) {
	deps := newTestServer(t)

	rr := doRequest(t, deps.handler, http.MethodPost, "/api/quiz/start", `{bad json`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", rr.Code)
	}

	// DisallowUnknownFields is set on the decoder.
	rr = doRequest(t, deps.handler, http.MethodPost, "/api/quiz/start", map[string]string{"biz_name": "x"}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown field: expected 400, got %d", rr.Code)
	}

	rr = doRequest(t, deps.handler, http.MethodPost, "/api/quiz/start", map[string]string{"version": "v9"}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown version: expected 400, got %d", rr.Code)
	}
}

func TestStart_RateLimitedSetsRetryAfter(t *testing.T) {
	deps := newTestServer(t, withLimiter(denyLimiter{}))
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/quiz/start", nil, nil)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Retry-After"); got != "90" {
		t.Errorf("Retry-After = %q, want 90", got)
	}
}

func TestStart_UserResumesSession(t *testing.T) {
	deps := newTestServer(t)
	auth := bearer(t, "user-1", "dana@example.com")

	rr := doRequest(t, deps.handler, http.MethodPost, "/api/quiz/start", nil, auth)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var first startedSession
	decodeJSON(t, rr, &first)
	if first.AnonToken != "" {
		t.Error("authenticated sessions carry no anon token")
	}

	rr = doRequest(t, deps.handler, http.MethodPost, "/api/quiz/start", nil, auth)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on resume, got %d", rr.Code)
	}
	var again startedSession
	decodeJSON(t, rr, &again)
	if !again.Resumed || again.SessionID != first.SessionID {
		t.Errorf("expected resume of %s, got %+v", first.SessionID, again)
	}
}

// ─── BEARER AUTH ──────────────────────────────────────────────────────────────

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	deps := newTestServer(t)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, api.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, api.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"not bearer": "Basic dXNlcjpwYXNz",
		"garbage":    "Bearer not-a-jwt",
		"expired":    "Bearer " + expired,
		"wrong key":  "Bearer " + wrongKey,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rr := doRequest(t, deps.handler, http.MethodPost, "/api/quiz/start", nil,
				map[string]string{"Authorization": header})
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestMyProgress(t *testing.T) {
	deps := newTestServer(t)

	rr := doRequest(t, deps.handler, http.MethodGet, "/api/me/progress", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rr.Code)
	}

	auth := bearer(t, "user-2", "")
	rr = doRequest(t, deps.handler, http.MethodGet, "/api/me/progress", nil, auth)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("no session yet: expected 404, got %d", rr.Code)
	}

	doRequest(t, deps.handler, http.MethodPost, "/api/quiz/start", nil, auth)
	rr = doRequest(t, deps.handler, http.MethodGet, "/api/me/progress", nil, auth)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

// ─── SESSION OWNERSHIP ────────────────────────────────────────────────────────

func TestSession_Ownership(t *testing.T) {
	deps := newTestServer(t)
	s := startAnonymous(t, deps)
	path := "/api/quiz/session/" + s.SessionID

	cases := []struct {
		name    string
		path    string
		headers map[string]string
		status  int
	}{
		{"missing token", path, nil, http.StatusUnauthorized},
		{"wrong token", path, map[string]string{"X-Anon-Token": strings.Repeat("0", 64)}, http.StatusForbidden},
		{"bearer user on anonymous session", path, bearer(t, "user-3", ""), http.StatusUnauthorized},
		{"unknown session", "/api/quiz/session/" + uuid.NewString(), anon(s), http.StatusNotFound},
		{"malformed id", "/api/quiz/session/not-a-uuid", anon(s), http.StatusBadRequest},
		{"owner", path, anon(s), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, deps.handler, http.MethodGet, tc.path, nil, tc.headers)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSession_OwnedByAnotherUser(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodPost, "/api/quiz/start", nil, bearer(t, "owner", ""))
	var s startedSession
	decodeJSON(t, rr, &s)

	rr = doRequest(t, deps.handler, http.MethodGet, "/api/quiz/session/"+s.SessionID, nil, bearer(t, "intruder", ""))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

// ─── PUT /api/quiz/session/:sessionID/answers ─────────────────────────────────

func TestSaveAnswer_Validation(t *testing.T) {
	deps := newTestServer(t)
	s := startAnonymous(t, deps)
	path := "/api/quiz/session/" + s.SessionID + "/answers"

	cases := []struct {
		name string
		body any
	}{
		{"missing question id", map[string]any{"answer": "x"}},
		{"missing answer", map[string]any{"questionId": 1}},
		{"unknown question", answer(999, `"x"`)},
		{"wrong shape", answer(6, `"three"`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, deps.handler, http.MethodPut, path, tc.body, anon(s))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSaveAnswer_CompletesAndFinalizes(t *testing.T) {
	deps := newTestServer(t)
	s := startAnonymous(t, deps)
	path := "/api/quiz/session/" + s.SessionID

	rr := doRequest(t, deps.handler, http.MethodGet, path+"/summary", nil, anon(s))
	if rr.Code != http.StatusConflict {
		t.Fatalf("summary before completion: expected 409, got %d", rr.Code)
	}

	var last startedSession
	for _, a := range minimalRun {
		rr := doRequest(t, deps.handler, http.MethodPut, path+"/answers", answer(a.id, a.raw), anon(s))
		if rr.Code != http.StatusOK {
			t.Fatalf("answer %d: expected 200, got %d: %s", a.id, rr.Code, rr.Body.String())
		}
		decodeJSON(t, rr, &last)
	}

	if last.Status != string(session.StatusCompleted) {
		t.Fatalf("status = %q, want completed", last.Status)
	}
	if last.ResultID == "" || last.AccessToken != "tok-"+s.SessionID {
		t.Errorf("expected receipt on completing answer, got %+v", last)
	}
	if len(deps.finalizer.calls) != 1 {
		t.Errorf("finalizer calls = %d, want 1", len(deps.finalizer.calls))
	}

	// Anonymous sessions are released once their answers are persisted.
	rr = doRequest(t, deps.handler, http.MethodGet, path, nil, anon(s))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 after finalization, got %d", rr.Code)
	}
}

func TestCompleteSession_InProgressConflicts(t *testing.T) {
	deps := newTestServer(t)
	s := startAnonymous(t, deps)

	rr := doRequest(t, deps.handler, http.MethodPost, "/api/quiz/session/"+s.SessionID+"/complete", nil, anon(s))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

// ─── RESULTS ──────────────────────────────────────────────────────────────────

func seedResult(deps *testDeps, token string, status db.ResultStatus) db.QuizResult {
	r := db.QuizResult{
		ID:             uuid.New(),
		AccessToken:    token,
		SessionID:      uuid.NewString(),
		CatalogVersion: quiz.VersionMinimal,
		Answers:        json.RawMessage(`[{"questionId":1,"answer":"Dana"},{"questionId":6,"answer":4}]`),
		Status:         status,
		CreatedAt:      time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	if status == db.ResultStatusReady {
		r.ProgramMatches = pqtype.NullRawMessage{RawMessage: json.RawMessage(`[{"program_name":"Computer Science"}]`), Valid: true}
		r.RiasecScores = pqtype.NullRawMessage{RawMessage: json.RawMessage(`{"realistic":2.5}`), Valid: true}
		r.BrillianceSummary = sql.NullString{String: "Dana, you think in systems.", Valid: true}
		r.CompletedAt = sql.NullTime{Time: time.Date(2026, 9, 1, 10, 1, 0, 0, time.UTC), Valid: true}
	}
	if status == db.ResultStatusError {
		r.ErrorMessage = sql.NullString{String: "matching failed", Valid: true}
	}
	deps.q.results[token] = r
	return r
}

func TestGetResult(t *testing.T) {
	deps := newTestServer(t)
	seedResult(deps, "pending-tok", db.ResultStatusPending)
	seedResult(deps, "failed-tok", db.ResultStatusError)
	ready := seedResult(deps, "ready-tok", db.ResultStatusReady)

	rr := doRequest(t, deps.handler, http.MethodGet, "/api/results/unknown", nil, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown: expected 404, got %d", rr.Code)
	}

	rr = doRequest(t, deps.handler, http.MethodGet, "/api/results/pending-tok", nil, nil)
	if rr.Code != http.StatusAccepted {
		t.Errorf("pending: expected 202, got %d", rr.Code)
	}

	rr = doRequest(t, deps.handler, http.MethodGet, "/api/results/failed-tok", nil, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"error"`) {
		t.Errorf("error: got %d %s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "matching failed") {
		t.Error("internal error message must not leak")
	}

	rr = doRequest(t, deps.handler, http.MethodGet, "/api/results/ready-tok", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rr.Code)
	}
	var resp struct {
		ResultID          string          `json:"result_id"`
		Status            string          `json:"status"`
		RiasecScores      json.RawMessage `json:"riasec_scores"`
		PersonalityScores json.RawMessage `json:"personality_scores"`
		ProgramMatches    json.RawMessage `json:"program_matches"`
		BrillianceSummary string          `json:"brilliance_summary"`
		Claimed           bool            `json:"claimed"`
		CompletedAt       string          `json:"completed_at"`
	}
	decodeJSON(t, rr, &resp)
	if resp.ResultID != ready.ID.String() || resp.Status != "ready" || resp.Claimed {
		t.Errorf("unexpected result: %+v", resp)
	}
	if string(resp.ProgramMatches) != `[{"program_name":"Computer Science"}]` {
		t.Errorf("program_matches = %s", resp.ProgramMatches)
	}
	if string(resp.PersonalityScores) != "null" {
		t.Errorf("missing JSONB should be null, got %s", resp.PersonalityScores)
	}
	if resp.CompletedAt != "2026-09-01T10:01:00Z" {
		t.Errorf("completed_at = %q", resp.CompletedAt)
	}
}

func TestGetResult_StoreErrorIs500(t *testing.T) {
	deps := newTestServer(t)
	deps.q.getErr = errors.New("connection reset")

	rr := doRequest(t, deps.handler, http.MethodGet, "/api/results/any", nil, nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "connection reset") {
		t.Error("internal error must not leak")
	}
}

func TestResultSummary(t *testing.T) {
	deps := newTestServer(t)
	r := seedResult(deps, "tok", db.ResultStatusPending)

	rr := doRequest(t, deps.handler, http.MethodGet, "/api/results/tok/summary", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp session.MiniResults
	decodeJSON(t, rr, &resp)
	if resp.SessionID != r.SessionID || resp.TotalAnswers != 2 {
		t.Errorf("unexpected summary: %+v", resp)
	}
	if resp.AvgScore != 4 {
		t.Errorf("avgScore = %v, want 4", resp.AvgScore)
	}
}

func TestClaimResult(t *testing.T) {
	deps := newTestServer(t)
	seedResult(deps, "tok", db.ResultStatusReady)

	rr := doRequest(t, deps.handler, http.MethodPost, "/api/results/tok/claim", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rr.Code)
	}

	owner := bearer(t, "user-1", "dana@example.com")
	rr = doRequest(t, deps.handler, http.MethodPost, "/api/results/tok/claim", nil, owner)
	if rr.Code != http.StatusOK {
		t.Fatalf("claim: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := deps.q.results["tok"]; got.UserID.String != "user-1" || got.Email.String != "dana@example.com" {
		t.Errorf("row not claimed: %+v", got)
	}
	if got := deps.events.Types(); !slices.Contains(got, events.TypeResultClaimed) {
		t.Errorf("events = %v, want result.claimed", got)
	}

	// Same user again is a no-op.
	rr = doRequest(t, deps.handler, http.MethodPost, "/api/results/tok/claim", nil, owner)
	if rr.Code != http.StatusOK {
		t.Errorf("reclaim: expected 200, got %d", rr.Code)
	}

	rr = doRequest(t, deps.handler, http.MethodPost, "/api/results/tok/claim", nil, bearer(t, "user-2", ""))
	if rr.Code != http.StatusConflict {
		t.Errorf("other user: expected 409, got %d", rr.Code)
	}

	rr = doRequest(t, deps.handler, http.MethodPost, "/api/results/missing/claim", nil, owner)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing: expected 404, got %d", rr.Code)
	}
}

// ─── POST /api/programs/match ─────────────────────────────────────────────────

func TestMatchPrograms(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	cs := matching.Program{
		ID:          uuid.New(),
		Name:        "Computer Science",
		DegreeLevel: "bachelor",
		Domain:      "Innovation & Technology",
		University:  matching.University{ID: uuid.New(), Name: "Technion", City: "Haifa"},
	}
	deps := newTestServer(t, withPrograms(cs))

	rr := doRequest(t, deps.handler, http.MethodPost, "/api/programs/match", map[string]any{}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing profile: expected 400, got %d", rr.Code)
	}

	body := map[string]any{
		"studentProfile": map[string]any{
			"riasec_scores": map[string]any{
				"realistic": f(2), "investigative": f(3), "artistic": f(1),
				"social": f(2), "enterprising": f(2), "conventional": f(3),
			},
		},
	}
	rr = doRequest(t, deps.handler, http.MethodPost, "/api/programs/match", body, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var res matching.Result
	decodeJSON(t, rr, &res)
	if !res.Success || len(res.Programs) != 1 || res.Programs[0].ProgramID != cs.ID {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.TotalProgramsEvaluated != 1 {
		t.Errorf("total_programs_evaluated = %d", res.TotalProgramsEvaluated)
	}
}

// ─── CORS ─────────────────────────────────────────────────────────────────────

func TestCORS_Preflight(t *testing.T) {
	deps := newTestServer(t)
	rr := doRequest(t, deps.handler, http.MethodOptions, "/api/quiz/start", nil,
		map[string]string{"Origin": "http://localhost:3000"})

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q", got)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), "X-Anon-Token") {
		t.Error("X-Anon-Token must be an allowed header")
	}
}
