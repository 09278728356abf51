package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/nyashahama/program-matcher-backend/internal/db"
	"github.com/nyashahama/program-matcher-backend/internal/matching"
	"github.com/nyashahama/program-matcher-backend/internal/scoring"
)

// ─── INPUT TYPES ─────────────────────────────────────────────────────────────

// InitialiseResultParams carry a completed session into permanent storage.
type InitialiseResultParams struct {
	AccessToken    string
	SessionID      string
	UserID         string
	Email          string
	CatalogVersion string
	Answers        json.RawMessage
}

// PersistMatchedResultParams is everything the worker hands to the store once
// scoring, matching and the summary are done.
type PersistMatchedResultParams struct {
	ResultID uuid.UUID
	Scoring  scoring.Result
	Matches  []matching.Match
	// Summary is the generated narrative; empty is fine.
	Summary         string
	MatchingVersion string
}

// ─── ERRORS ──────────────────────────────────────────────────────────────────

var (
	// ErrResultAlreadyExists is returned by InitialiseResult when the session
	// was already finalized. The existing row is returned alongside it.
	ErrResultAlreadyExists = errors.New("store: result already exists for session")
	ErrResultNotFound      = errors.New("store: result not found")
	// ErrResultAlreadyClaimed means another user owns the result.
	ErrResultAlreadyClaimed = errors.New("store: result claimed by another user")
	// ErrResultNotPending means the result already left the work queue.
	ErrResultNotPending = errors.New("store: result is not pending")
)

// ─── METHODS ─────────────────────────────────────────────────────────────────

// InitialiseResult creates the pending result row for a completed session.
// A second call for the same session returns the existing row and
// ErrResultAlreadyExists; callers treat that as success.
func (s *Store) InitialiseResult(ctx context.Context, p InitialiseResultParams) (db.QuizResult, error) {
	var result db.QuizResult

	err := s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		existing, err := q.GetQuizResultBySessionID(ctx, p.SessionID)
		if err == nil {
			result = existing
			return ErrResultAlreadyExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("InitialiseResult: check existing result: %w", err)
		}

		created, err := q.CreateQuizResult(ctx, db.CreateQuizResultParams{
			AccessToken:    p.AccessToken,
			SessionID:      p.SessionID,
			UserID:         nullString(p.UserID),
			Email:          nullString(p.Email),
			CatalogVersion: p.CatalogVersion,
			Answers:        p.Answers,
		})
		if err != nil {
			return fmt.Errorf("InitialiseResult: create result: %w", err)
		}
		result = created
		return nil
	})

	if errors.Is(err, ErrResultAlreadyExists) {
		return result, ErrResultAlreadyExists
	}
	if err != nil {
		return db.QuizResult{}, err
	}
	return result, nil
}

// PersistMatchedResult atomically moves a result to processing and then
// finalises it with the trait vector, the ranked programs and the summary.
// A result that is already ready or failed is left untouched and
// ErrResultNotPending is returned.
func (s *Store) PersistMatchedResult(ctx context.Context, p PersistMatchedResultParams) (db.QuizResult, error) {
	weights, err := rawJSON(p.Scoring.Scoring.Sections)
	if err != nil {
		return db.QuizResult{}, fmt.Errorf("PersistMatchedResult: marshal weights: %w", err)
	}
	riasec, err := rawJSON(p.Scoring.Scoring.Riasec)
	if err != nil {
		return db.QuizResult{}, fmt.Errorf("PersistMatchedResult: marshal riasec: %w", err)
	}
	personality, err := rawJSON(p.Scoring.Scoring.Personality)
	if err != nil {
		return db.QuizResult{}, fmt.Errorf("PersistMatchedResult: marshal personality: %w", err)
	}
	diagnostics, err := rawJSON(p.Scoring.Diagnostics)
	if err != nil {
		return db.QuizResult{}, fmt.Errorf("PersistMatchedResult: marshal diagnostics: %w", err)
	}
	matches := p.Matches
	if matches == nil {
		matches = []matching.Match{}
	}
	programs, err := rawJSON(matches)
	if err != nil {
		return db.QuizResult{}, fmt.Errorf("PersistMatchedResult: marshal matches: %w", err)
	}

	var result db.QuizResult
	err = s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		if _, err := q.SetQuizResultProcessing(ctx, p.ResultID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrResultNotPending
			}
			return fmt.Errorf("PersistMatchedResult: set processing: %w", err)
		}

		finalised, err := q.FinalizeQuizResult(ctx, db.FinalizeQuizResultParams{
			ID:                 p.ResultID,
			SectionWeights:     weights,
			RiasecScores:       riasec,
			PersonalityScores:  personality,
			ScoringDiagnostics: diagnostics,
			BrillianceSummary:  nullString(p.Summary),
			ProgramMatches:     programs,
			ModelVersion:       nullString(p.Scoring.ModelVersion),
			MatchingVersion:    nullString(p.MatchingVersion),
		})
		if err != nil {
			return fmt.Errorf("PersistMatchedResult: finalize result: %w", err)
		}
		result = finalised
		return nil
	})
	if err != nil {
		return db.QuizResult{}, err
	}
	return result, nil
}

// MarkResultFailed sets the result status to error after retries are
// exhausted.
func (s *Store) MarkResultFailed(ctx context.Context, resultID uuid.UUID, reason string) (db.QuizResult, error) {
	result, err := s.q.SetQuizResultError(ctx, db.SetQuizResultErrorParams{
		ID:           resultID,
		ErrorMessage: nullString(reason),
	})
	if err != nil {
		return db.QuizResult{}, fmt.Errorf("MarkResultFailed: %w", err)
	}
	return result, nil
}

// ClaimResult attaches the result behind accessToken to userID. Claiming a
// result the user already owns is a no-op; a result owned by someone else
// yields ErrResultAlreadyClaimed.
func (s *Store) ClaimResult(ctx context.Context, accessToken, userID, email string) (db.QuizResult, error) {
	var result db.QuizResult

	err := s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		existing, err := q.GetQuizResultByAccessToken(ctx, accessToken)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrResultNotFound
		}
		if err != nil {
			return fmt.Errorf("ClaimResult: lookup: %w", err)
		}
		if existing.UserID.Valid && existing.UserID.String != userID {
			return ErrResultAlreadyClaimed
		}

		claimed, err := q.ClaimQuizResult(ctx, db.ClaimQuizResultParams{
			ID:     existing.ID,
			UserID: nullString(userID),
			Email:  nullString(email),
		})
		if errors.Is(err, sql.ErrNoRows) {
			// Lost a race with another claimant between the read and the write.
			return ErrResultAlreadyClaimed
		}
		if err != nil {
			return fmt.Errorf("ClaimResult: claim: %w", err)
		}
		result = claimed
		return nil
	})
	if err != nil {
		return db.QuizResult{}, err
	}
	return result, nil
}

func rawJSON(v any) (pqtype.NullRawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: b, Valid: true}, nil
}
