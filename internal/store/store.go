// Package store wraps db.Querier with transaction support and groups the
// multi-step write operations on quiz results that must execute atomically.
// It also adapts the program catalog tables to matching.ProgramSource.
//
// Single-query reads (GetQuizResultByAccessToken, ListQuizResultsByUser, etc.)
// should be called directly on db.Querier via Q().
//
// Dependency rule: store imports db and the pure domain packages (matching,
// scoring). It never imports api, worker, session, ai or email.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nyashahama/program-matcher-backend/internal/db"
)

// Store holds a *sql.DB for starting transactions and a db.Querier for
// executing queries outside of transactions.
type Store struct {
	// pool is the raw connection pool, used only to begin transactions.
	pool   *sql.DB
	q      db.Querier
	logger *slog.Logger
}

// New creates a Store from a live connection pool. The pool must already be
// open and verified before calling New. A nil logger uses slog.Default().
func New(pool *sql.DB, q db.Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, q: q, logger: logger}
}

// Q exposes the underlying Querier for single-query reads.
//
//	result, err := s.Q().GetQuizResultByAccessToken(ctx, token)
func (s *Store) Q() db.Querier {
	return s.q
}

// Ping checks the pool. Used by the health endpoints.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.PingContext(ctx)
}

type txQuerier func(ctx context.Context, q db.Querier) error

// withTx runs fn against a Querier scoped to a serializable transaction and
// commits on success. Any error or panic rolls back.
func (s *Store) withTx(ctx context.Context, fn txQuerier) error {
	tx, err := s.pool.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	txQ := s.q.(*db.Queries).WithTx(tx)

	if err := fn(ctx, txQ); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("store: fn error: %w; rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
