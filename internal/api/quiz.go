package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/session"
)

// ─── GET /api/quiz/questions ──────────────────────────────────────────────────

type questionsResponse struct {
	Version        string          `json:"version"`
	TotalQuestions int             `json:"totalQuestions"`
	Questions      []quiz.Question `json:"questions"`
}

// handleQuestions serves a catalog. ?version= selects it; the configured
// default is used otherwise.
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	version := r.URL.Query().Get("version")
	if version == "" {
		version = s.cfg.QuizVersion
	}
	if version == "" {
		version = quiz.VersionFull
	}

	catalog, err := quiz.Lookup(version)
	if err != nil {
		s.respondSessionErr(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	respond(w, http.StatusOK, questionsResponse{
		Version:        catalog.Version(),
		TotalQuestions: catalog.Len(),
		Questions:      catalog.Questions(),
	})
}

// ─── POST /api/quiz/start ─────────────────────────────────────────────────────

type startQuizRequest struct {
	Version string `json:"version"`
}

// progressResponse is the session as the browser sees it, plus the size of
// the currently visible question set for progress bars.
type progressResponse struct {
	*session.Progress
	VisibleQuestions int  `json:"visibleQuestions"`
	Resumed          bool `json:"resumed,omitempty"`
}

func newProgressResponse(p *session.Progress) progressResponse {
	resp := progressResponse{Progress: p}
	if c, err := quiz.Lookup(p.CatalogVersion); err == nil {
		resp.VisibleQuestions = len(c.VisibleQuestionIDs(p.Answers))
	}
	return resp
}

// handleStartQuiz opens a session. Anonymous callers get an anonToken to send
// as X-Anon-Token; a bearer user with an unfinished session gets it back.
func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	var req startQuizRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	params := session.StartParams{
		Version:  req.Version,
		ClientID: clientID(r),
	}
	if u, ok := userFrom(r.Context()); ok {
		params.UserID = u.ID
		params.Email = u.Email
	}

	p, resumed, err := s.sessions.Start(r.Context(), params)
	if err != nil {
		s.respondSessionErr(w, r, err)
		return
	}

	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	resp := newProgressResponse(p)
	resp.Resumed = resumed
	respond(w, status, resp)
}

// ─── GET /api/quiz/session/:sessionID ─────────────────────────────────────────

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, newProgressResponse(progressFrom(r.Context())))
}

// ─── PUT /api/quiz/session/:sessionID/answers ─────────────────────────────────

type saveAnswerRequest struct {
	QuestionID int             `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
}

// handleSaveAnswer upserts one answer. Replaying the same payload is safe.
// The response carries resultId and accessToken once the write completes the
// quiz and the result is queued.
func (s *Server) handleSaveAnswer(w http.ResponseWriter, r *http.Request) {
	var req saveAnswerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.QuestionID <= 0 {
		respondErr(w, http.StatusBadRequest, "questionId must be a positive integer")
		return
	}
	if len(req.Answer) == 0 {
		respondErr(w, http.StatusBadRequest, "answer is required")
		return
	}

	p := progressFrom(r.Context())
	updated, err := s.sessions.SaveAnswer(r.Context(), p.ID, req.QuestionID, req.Answer)
	if err != nil {
		s.respondSessionErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, newProgressResponse(updated))
}

// ─── GET /api/quiz/session/:sessionID/summary ─────────────────────────────────

func (s *Server) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	p := progressFrom(r.Context())
	summary, err := s.sessions.Summary(r.Context(), p.ID)
	if err != nil {
		s.respondSessionErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

// ─── POST /api/quiz/session/:sessionID/complete ───────────────────────────────

// handleCompleteSession retries finalization for a completed session whose
// automatic hand-off failed. It is a no-op on a finalized session.
func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	p := progressFrom(r.Context())
	finalized, err := s.sessions.Finalize(r.Context(), p.ID)
	if err != nil {
		s.respondSessionErr(w, r, fmt.Errorf("complete session: %w", err))
		return
	}
	respond(w, http.StatusOK, newProgressResponse(finalized))
}

// ─── GET /api/me/progress ─────────────────────────────────────────────────────

func (s *Server) handleMyProgress(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	p, err := s.sessions.ForUser(r.Context(), u.ID)
	if err != nil {
		s.respondSessionErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, newProgressResponse(p))
}
