package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

const claimQuizResult = `-- name: ClaimQuizResult :one
UPDATE quiz_results
SET user_id    = $2,
    email      = COALESCE(email, $3),
    claimed_at = COALESCE(claimed_at, now()),
    updated_at = now()
WHERE id = $1 AND (user_id IS NULL OR user_id = $2)
RETURNING id, access_token, session_id, user_id, email, catalog_version, answers, status, section_weights, riasec_scores, personality_scores, scoring_diagnostics, brilliance_summary, program_matches, cost_analysis, model_version, matching_version, error_message, created_at, updated_at, completed_at, claimed_at
`

type ClaimQuizResultParams struct {
	ID     uuid.UUID      `json:"id"`
	UserID sql.NullString `json:"user_id"`
	Email  sql.NullString `json:"email"`
}

// Attaches an unowned result to a user. Re-claiming by the owner is a no-op.
func (q *Queries) ClaimQuizResult(ctx context.Context, arg ClaimQuizResultParams) (QuizResult, error) {
	row := q.queryRow(ctx, q.claimQuizResultStmt, claimQuizResult, arg.ID, arg.UserID, arg.Email)
	var i QuizResult
	err := row.Scan(
		&i.ID,
		&i.AccessToken,
		&i.SessionID,
		&i.UserID,
		&i.Email,
		&i.CatalogVersion,
		&i.Answers,
		&i.Status,
		&i.SectionWeights,
		&i.RiasecScores,
		&i.PersonalityScores,
		&i.ScoringDiagnostics,
		&i.BrillianceSummary,
		&i.ProgramMatches,
		&i.CostAnalysis,
		&i.ModelVersion,
		&i.MatchingVersion,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
		&i.ClaimedAt,
	)
	return i, err
}

const createQuizResult = `-- name: CreateQuizResult :one
INSERT INTO quiz_results (access_token, session_id, user_id, email, catalog_version, answers)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (session_id) DO UPDATE SET updated_at = now()
RETURNING id, access_token, session_id, user_id, email, catalog_version, answers, status, section_weights, riasec_scores, personality_scores, scoring_diagnostics, brilliance_summary, program_matches, cost_analysis, model_version, matching_version, error_message, created_at, updated_at, completed_at, claimed_at
`

type CreateQuizResultParams struct {
	AccessToken    string          `json:"access_token"`
	SessionID      string          `json:"session_id"`
	UserID         sql.NullString  `json:"user_id"`
	Email          sql.NullString  `json:"email"`
	CatalogVersion string          `json:"catalog_version"`
	Answers        json.RawMessage `json:"answers"`
}

// A repeated finalization of the same session returns the existing row.
func (q *Queries) CreateQuizResult(ctx context.Context, arg CreateQuizResultParams) (QuizResult, error) {
	row := q.queryRow(ctx, q.createQuizResultStmt, createQuizResult,
		arg.AccessToken,
		arg.SessionID,
		arg.UserID,
		arg.Email,
		arg.CatalogVersion,
		arg.Answers,
	)
	var i QuizResult
	err := row.Scan(
		&i.ID,
		&i.AccessToken,
		&i.SessionID,
		&i.UserID,
		&i.Email,
		&i.CatalogVersion,
		&i.Answers,
		&i.Status,
		&i.SectionWeights,
		&i.RiasecScores,
		&i.PersonalityScores,
		&i.ScoringDiagnostics,
		&i.BrillianceSummary,
		&i.ProgramMatches,
		&i.CostAnalysis,
		&i.ModelVersion,
		&i.MatchingVersion,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
		&i.ClaimedAt,
	)
	return i, err
}

const finalizeQuizResult = `-- name: FinalizeQuizResult :one
UPDATE quiz_results
SET status              = 'ready',
    section_weights     = $2,
    riasec_scores       = $3,
    personality_scores  = $4,
    scoring_diagnostics = $5,
    brilliance_summary  = $6,
    program_matches     = $7,
    model_version       = $8,
    matching_version    = $9,
    error_message       = NULL,
    completed_at        = now(),
    updated_at          = now()
WHERE id = $1
RETURNING id, access_token, session_id, user_id, email, catalog_version, answers, status, section_weights, riasec_scores, personality_scores, scoring_diagnostics, brilliance_summary, program_matches, cost_analysis, model_version, matching_version, error_message, created_at, updated_at, completed_at, claimed_at
`

type FinalizeQuizResultParams struct {
	ID                 uuid.UUID             `json:"id"`
	SectionWeights     pqtype.NullRawMessage `json:"section_weights"`
	RiasecScores       pqtype.NullRawMessage `json:"riasec_scores"`
	PersonalityScores  pqtype.NullRawMessage `json:"personality_scores"`
	ScoringDiagnostics pqtype.NullRawMessage `json:"scoring_diagnostics"`
	BrillianceSummary  sql.NullString        `json:"brilliance_summary"`
	ProgramMatches     pqtype.NullRawMessage `json:"program_matches"`
	ModelVersion       sql.NullString        `json:"model_version"`
	MatchingVersion    sql.NullString        `json:"matching_version"`
}

func (q *Queries) FinalizeQuizResult(ctx context.Context, arg FinalizeQuizResultParams) (QuizResult, error) {
	row := q.queryRow(ctx, q.finalizeQuizResultStmt, finalizeQuizResult,
		arg.ID,
		arg.SectionWeights,
		arg.RiasecScores,
		arg.PersonalityScores,
		arg.ScoringDiagnostics,
		arg.BrillianceSummary,
		arg.ProgramMatches,
		arg.ModelVersion,
		arg.MatchingVersion,
	)
	var i QuizResult
	err := row.Scan(
		&i.ID,
		&i.AccessToken,
		&i.SessionID,
		&i.UserID,
		&i.Email,
		&i.CatalogVersion,
		&i.Answers,
		&i.Status,
		&i.SectionWeights,
		&i.RiasecScores,
		&i.PersonalityScores,
		&i.ScoringDiagnostics,
		&i.BrillianceSummary,
		&i.ProgramMatches,
		&i.CostAnalysis,
		&i.ModelVersion,
		&i.MatchingVersion,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
		&i.ClaimedAt,
	)
	return i, err
}

const getQuizResultByAccessToken = `-- name: GetQuizResultByAccessToken :one
SELECT id, access_token, session_id, user_id, email, catalog_version, answers, status, section_weights, riasec_scores, personality_scores, scoring_diagnostics, brilliance_summary, program_matches, cost_analysis, model_version, matching_version, error_message, created_at, updated_at, completed_at, claimed_at FROM quiz_results WHERE access_token = $1
`

func (q *Queries) GetQuizResultByAccessToken(ctx context.Context, accessToken string) (QuizResult, error) {
	row := q.queryRow(ctx, q.getQuizResultByAccessTokenStmt, getQuizResultByAccessToken, accessToken)
	var i QuizResult
	err := row.Scan(
		&i.ID,
		&i.AccessToken,
		&i.SessionID,
		&i.UserID,
		&i.Email,
		&i.CatalogVersion,
		&i.Answers,
		&i.Status,
		&i.SectionWeights,
		&i.RiasecScores,
		&i.PersonalityScores,
		&i.ScoringDiagnostics,
		&i.BrillianceSummary,
		&i.ProgramMatches,
		&i.CostAnalysis,
		&i.ModelVersion,
		&i.MatchingVersion,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
		&i.ClaimedAt,
	)
	return i, err
}

const getQuizResultByID = `-- name: GetQuizResultByID :one
SELECT id, access_token, session_id, user_id, email, catalog_version, answers, status, section_weights, riasec_scores, personality_scores, scoring_diagnostics, brilliance_summary, program_matches, cost_analysis, model_version, matching_version, error_message, created_at, updated_at, completed_at, claimed_at FROM quiz_results WHERE id = $1
`

func (q *Queries) GetQuizResultByID(ctx context.Context, id uuid.UUID) (QuizResult, error) {
	row := q.queryRow(ctx, q.getQuizResultByIDStmt, getQuizResultByID, id)
	var i QuizResult
	err := row.Scan(
		&i.ID,
		&i.AccessToken,
		&i.SessionID,
		&i.UserID,
		&i.Email,
		&i.CatalogVersion,
		&i.Answers,
		&i.Status,
		&i.SectionWeights,
		&i.RiasecScores,
		&i.PersonalityScores,
		&i.ScoringDiagnostics,
		&i.BrillianceSummary,
		&i.ProgramMatches,
		&i.CostAnalysis,
		&i.ModelVersion,
		&i.MatchingVersion,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
		&i.ClaimedAt,
	)
	return i, err
}

const getQuizResultBySessionID = `-- name: GetQuizResultBySessionID :one
SELECT id, access_token, session_id, user_id, email, catalog_version, answers, status, section_weights, riasec_scores, personality_scores, scoring_diagnostics, brilliance_summary, program_matches, cost_analysis, model_version, matching_version, error_message, created_at, updated_at, completed_at, claimed_at FROM quiz_results WHERE session_id = $1
`

func (q *Queries) GetQuizResultBySessionID(ctx context.Context, sessionID string) (QuizResult, error) {
	row := q.queryRow(ctx, q.getQuizResultBySessionIDStmt, getQuizResultBySessionID, sessionID)
	var i QuizResult
	err := row.Scan(
		&i.ID,
		&i.AccessToken,
		&i.SessionID,
		&i.UserID,
		&i.Email,
		&i.CatalogVersion,
		&i.Answers,
		&i.Status,
		&i.SectionWeights,
		&i.RiasecScores,
		&i.PersonalityScores,
		&i.ScoringDiagnostics,
		&i.BrillianceSummary,
		&i.ProgramMatches,
		&i.CostAnalysis,
		&i.ModelVersion,
		&i.MatchingVersion,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
		&i.ClaimedAt,
	)
	return i, err
}

const listQuizResultsByStatus = `-- name: ListQuizResultsByStatus :many
SELECT id, access_token, session_id, user_id, email, catalog_version, answers, status, section_weights, riasec_scores, personality_scores, scoring_diagnostics, brilliance_summary, program_matches, cost_analysis, model_version, matching_version, error_message, created_at, updated_at, completed_at, claimed_at FROM quiz_results
WHERE status = ANY($1::result_status[])
ORDER BY created_at
LIMIT 100
`

func (q *Queries) ListQuizResultsByStatus(ctx context.Context, statuses []ResultStatus) ([]QuizResult, error) {
	rows, err := q.query(ctx, q.listQuizResultsByStatusStmt, listQuizResultsByStatus, pq.Array(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []QuizResult
	for rows.Next() {
		var i QuizResult
		if err := rows.Scan(
			&i.ID,
			&i.AccessToken,
			&i.SessionID,
			&i.UserID,
			&i.Email,
			&i.CatalogVersion,
			&i.Answers,
			&i.Status,
			&i.SectionWeights,
			&i.RiasecScores,
			&i.PersonalityScores,
			&i.ScoringDiagnostics,
			&i.BrillianceSummary,
			&i.ProgramMatches,
			&i.CostAnalysis,
			&i.ModelVersion,
			&i.MatchingVersion,
			&i.ErrorMessage,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.CompletedAt,
			&i.ClaimedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listQuizResultsByUser = `-- name: ListQuizResultsByUser :many
SELECT id, access_token, session_id, user_id, email, catalog_version, answers, status, section_weights, riasec_scores, personality_scores, scoring_diagnostics, brilliance_summary, program_matches, cost_analysis, model_version, matching_version, error_message, created_at, updated_at, completed_at, claimed_at FROM quiz_results
WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListQuizResultsByUser(ctx context.Context, userID sql.NullString) ([]QuizResult, error) {
	rows, err := q.query(ctx, q.listQuizResultsByUserStmt, listQuizResultsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []QuizResult
	for rows.Next() {
		var i QuizResult
		if err := rows.Scan(
			&i.ID,
			&i.AccessToken,
			&i.SessionID,
			&i.UserID,
			&i.Email,
			&i.CatalogVersion,
			&i.Answers,
			&i.Status,
			&i.SectionWeights,
			&i.RiasecScores,
			&i.PersonalityScores,
			&i.ScoringDiagnostics,
			&i.BrillianceSummary,
			&i.ProgramMatches,
			&i.CostAnalysis,
			&i.ModelVersion,
			&i.MatchingVersion,
			&i.ErrorMessage,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.CompletedAt,
			&i.ClaimedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setQuizResultError = `-- name: SetQuizResultError :one
UPDATE quiz_results
SET status = 'error', error_message = $2, updated_at = now()
WHERE id = $1
RETURNING id, access_token, session_id, user_id, email, catalog_version, answers, status, section_weights, riasec_scores, personality_scores, scoring_diagnostics, brilliance_summary, program_matches, cost_analysis, model_version, matching_version, error_message, created_at, updated_at, completed_at, claimed_at
`

type SetQuizResultErrorParams struct {
	ID           uuid.UUID      `json:"id"`
	ErrorMessage sql.NullString `json:"error_message"`
}

func (q *Queries) SetQuizResultError(ctx context.Context, arg SetQuizResultErrorParams) (QuizResult, error) {
	row := q.queryRow(ctx, q.setQuizResultErrorStmt, setQuizResultError, arg.ID, arg.ErrorMessage)
	var i QuizResult
	err := row.Scan(
		&i.ID,
		&i.AccessToken,
		&i.SessionID,
		&i.UserID,
		&i.Email,
		&i.CatalogVersion,
		&i.Answers,
		&i.Status,
		&i.SectionWeights,
		&i.RiasecScores,
		&i.PersonalityScores,
		&i.ScoringDiagnostics,
		&i.BrillianceSummary,
		&i.ProgramMatches,
		&i.CostAnalysis,
		&i.ModelVersion,
		&i.MatchingVersion,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
		&i.ClaimedAt,
	)
	return i, err
}

const setQuizResultProcessing = `-- name: SetQuizResultProcessing :one
UPDATE quiz_results
SET status = 'processing', updated_at = now()
WHERE id = $1 AND status IN ('pending', 'processing')
RETURNING id, access_token, session_id, user_id, email, catalog_version, answers, status, section_weights, riasec_scores, personality_scores, scoring_diagnostics, brilliance_summary, program_matches, cost_analysis, model_version, matching_version, error_message, created_at, updated_at, completed_at, claimed_at
`

func (q *Queries) SetQuizResultProcessing(ctx context.Context, id uuid.UUID) (QuizResult, error) {
	row := q.queryRow(ctx, q.setQuizResultProcessingStmt, setQuizResultProcessing, id)
	var i QuizResult
	err := row.Scan(
		&i.ID,
		&i.AccessToken,
		&i.SessionID,
		&i.UserID,
		&i.Email,
		&i.CatalogVersion,
		&i.Answers,
		&i.Status,
		&i.SectionWeights,
		&i.RiasecScores,
		&i.PersonalityScores,
		&i.ScoringDiagnostics,
		&i.BrillianceSummary,
		&i.ProgramMatches,
		&i.CostAnalysis,
		&i.ModelVersion,
		&i.MatchingVersion,
		&i.ErrorMessage,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
		&i.ClaimedAt,
	)
	return i, err
}
