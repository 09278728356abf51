package worker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nyashahama/program-matcher-backend/internal/session"
	"github.com/nyashahama/program-matcher-backend/internal/store"
)

// Finalizer implements session.Finalizer: it writes the pending result row
// for a completed session and hands the result id to the worker pool.
type Finalizer struct {
	store    ResultStore
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewFinalizer wires a Finalizer. enqueuer may be nil, in which case the
// poller picks the result up.
func NewFinalizer(st ResultStore, enqueuer Enqueuer, logger *slog.Logger) *Finalizer {
	return &Finalizer{store: st, enqueuer: enqueuer, logger: logger}
}

// FinalizeProgress is idempotent per session id: a repeat call returns the
// receipt of the row created the first time.
func (f *Finalizer) FinalizeProgress(ctx context.Context, p *session.Progress) (session.Receipt, error) {
	answers, err := json.Marshal(p.Answers)
	if err != nil {
		return session.Receipt{}, fmt.Errorf("worker: marshal answers: %w", err)
	}
	token, err := accessToken()
	if err != nil {
		return session.Receipt{}, fmt.Errorf("worker: generate access token: %w", err)
	}

	result, err := f.store.InitialiseResult(ctx, store.InitialiseResultParams{
		AccessToken:    token,
		SessionID:      p.ID,
		UserID:         p.UserID,
		Email:          p.Email,
		CatalogVersion: p.CatalogVersion,
		Answers:        answers,
	})
	switch {
	case errors.Is(err, store.ErrResultAlreadyExists):
		f.logger.Debug("worker: result already exists for session", "session_id", p.ID, "result_id", result.ID)
	case err != nil:
		return session.Receipt{}, err
	}

	if f.enqueuer != nil {
		if err := f.enqueuer.Enqueue(ctx, result.ID); err != nil {
			f.logger.Warn("worker: enqueue result", "result_id", result.ID, "error", err)
		}
	}
	return session.Receipt{ResultID: result.ID.String(), AccessToken: result.AccessToken}, nil
}

// accessToken returns 32 random bytes as 64 hex chars.
func accessToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
