package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/program-matcher-backend/internal/db"
	"github.com/nyashahama/program-matcher-backend/internal/events"
	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/session"
)

// ─── GET /api/results/:accessToken ────────────────────────────────────────────

// resultResponse flattens db.QuizResult into the persisted trait-vector shape.
// JSONB columns pass through untouched.
type resultResponse struct {
	ResultID          string          `json:"result_id"`
	Status            string          `json:"status"`
	CatalogVersion    string          `json:"catalog_version"`
	SectionWeights    json.RawMessage `json:"section_weights"`
	RiasecScores      json.RawMessage `json:"riasec_scores"`
	PersonalityScores json.RawMessage `json:"personality_scores"`
	BrillianceSummary string          `json:"brilliance_summary,omitempty"`
	ProgramMatches    json.RawMessage `json:"program_matches"`
	CostAnalysis      json.RawMessage `json:"cost_analysis"`
	ModelVersion      string          `json:"model_version,omitempty"`
	MatchingVersion   string          `json:"matching_version,omitempty"`
	Claimed           bool            `json:"claimed"`
	CompletedAt       string          `json:"completed_at,omitempty"`
}

// handleGetResult serves a finished result. The access token is an opaque
// 64-char hex string returned when the quiz completed; no session is needed.
//
// Returns 404 for an unknown token and 202 Accepted while the result is still
// being generated so the frontend can poll. A failed pipeline is reported as
// status "error" with 200 so polling stops.
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	row, ok := s.loadResult(w, r)
	if !ok {
		return
	}

	switch row.Status {
	case db.ResultStatusPending, db.ResultStatusProcessing:
		respond(w, http.StatusAccepted, map[string]string{
			"status":  string(row.Status),
			"message": "your matches are being generated, please check back shortly",
		})
		return
	case db.ResultStatusError:
		respond(w, http.StatusOK, map[string]string{
			"status": string(row.Status),
			"error":  "we could not generate your matches",
		})
		return
	}

	completedAt := ""
	if row.CompletedAt.Valid {
		completedAt = row.CompletedAt.Time.UTC().Format(time.RFC3339)
	}

	respond(w, http.StatusOK, resultResponse{
		ResultID:          row.ID.String(),
		Status:            string(row.Status),
		CatalogVersion:    row.CatalogVersion,
		SectionWeights:    rawOrNull(row.SectionWeights),
		RiasecScores:      rawOrNull(row.RiasecScores),
		PersonalityScores: rawOrNull(row.PersonalityScores),
		BrillianceSummary: row.BrillianceSummary.String,
		ProgramMatches:    rawOrNull(row.ProgramMatches),
		CostAnalysis:      rawOrNull(row.CostAnalysis),
		ModelVersion:      row.ModelVersion.String,
		MatchingVersion:   row.MatchingVersion.String,
		Claimed:           row.UserID.Valid,
		CompletedAt:       completedAt,
	})
}

// ─── GET /api/results/:accessToken/summary ────────────────────────────────────

// handleResultSummary serves the mini results for a finalized session from
// its stored answers. Anonymous sessions are deleted on finalization, so this
// is where their preview lives afterwards.
func (s *Server) handleResultSummary(w http.ResponseWriter, r *http.Request) {
	row, ok := s.loadResult(w, r)
	if !ok {
		return
	}

	var answers quiz.Answers
	if err := json.Unmarshal(row.Answers, &answers); err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("decode stored answers %s: %w", row.ID, err))
		return
	}

	completedAt := row.CreatedAt.UTC()
	respond(w, http.StatusOK, session.Summarize(row.SessionID, answers, &completedAt))
}

// ─── POST /api/results/:accessToken/claim ─────────────────────────────────────

type claimResponse struct {
	ResultID string `json:"result_id"`
	Claimed  bool   `json:"claimed"`
}

// handleClaimResult attaches an anonymous result to the bearer user. Claiming
// your own result again is a no-op; someone else's is 409.
func (s *Server) handleClaimResult(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	token := chi.URLParam(r, "accessToken")

	row, err := s.store.ClaimResult(r.Context(), token, u.ID, u.Email)
	if err != nil {
		s.respondSessionErr(w, r, err)
		return
	}

	if s.publisher != nil {
		e := events.New(events.TypeResultClaimed, row.SessionID, u.ID, map[string]any{
			"resultId": row.ID.String(),
		})
		if err := s.publisher.Publish(r.Context(), e); err != nil {
			s.logger.Warn("claim: publish event", "result_id", row.ID, "error", err, logField(r))
		}
	}

	s.logger.Info("result claimed", "result_id", row.ID, "user_id", u.ID, logField(r))
	respond(w, http.StatusOK, claimResponse{ResultID: row.ID.String(), Claimed: true})
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

// loadResult fetches the row for the URL's access token, writing 400/404/500
// itself when it returns false.
func (s *Server) loadResult(w http.ResponseWriter, r *http.Request) (db.QuizResult, bool) {
	token := chi.URLParam(r, "accessToken")
	if token == "" {
		respondErr(w, http.StatusBadRequest, "missing access token")
		return db.QuizResult{}, false
	}

	row, err := s.q.GetQuizResultByAccessToken(r.Context(), token)
	if errors.Is(err, sql.ErrNoRows) {
		respondErr(w, http.StatusNotFound, "result not found")
		return db.QuizResult{}, false
	}
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("get result: %w", err))
		return db.QuizResult{}, false
	}
	return row, true
}

func rawOrNull(m pqtype.NullRawMessage) json.RawMessage {
	if !m.Valid || len(m.RawMessage) == 0 {
		return json.RawMessage("null")
	}
	return m.RawMessage
}
