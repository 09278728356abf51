package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type Querier interface {
	// Attaches an unowned result to a user. Re-claiming by the owner is a no-op.
	ClaimQuizResult(ctx context.Context, arg ClaimQuizResultParams) (QuizResult, error)
	// A repeated finalization of the same session returns the existing row.
	CreateQuizResult(ctx context.Context, arg CreateQuizResultParams) (QuizResult, error)
	FinalizeQuizResult(ctx context.Context, arg FinalizeQuizResultParams) (QuizResult, error)
	GetQuizResultByAccessToken(ctx context.Context, accessToken string) (QuizResult, error)
	GetQuizResultByID(ctx context.Context, id uuid.UUID) (QuizResult, error)
	GetQuizResultBySessionID(ctx context.Context, sessionID string) (QuizResult, error)
	ListActivePrograms(ctx context.Context) ([]ListActiveProgramsRow, error)
	ListQuizResultsByStatus(ctx context.Context, statuses []ResultStatus) ([]QuizResult, error)
	ListQuizResultsByUser(ctx context.Context, userID sql.NullString) ([]QuizResult, error)
	SetQuizResultError(ctx context.Context, arg SetQuizResultErrorParams) (QuizResult, error)
	SetQuizResultProcessing(ctx context.Context, id uuid.UUID) (QuizResult, error)
}

var _ Querier = (*Queries)(nil)
