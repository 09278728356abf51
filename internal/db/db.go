// Package db holds the SQL for quiz results and the program catalog, and the
// Go bindings for it. The bindings follow sqlc's output shape but are
// maintained by hand: edit queries/*.sql and the matching *.sql.go together.
// sqlc.yaml is kept for `sqlc vet` and `sqlc compile` checks only.
package db

import (
	"context"
	"database/sql"
	"fmt"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func Prepare(ctx context.Context, db DBTX) (*Queries, error) {
	q := Queries{db: db}
	var err error
	if q.claimQuizResultStmt, err = db.PrepareContext(ctx, claimQuizResult); err != nil {
		return nil, fmt.Errorf("error preparing query ClaimQuizResult: %w", err)
	}
	if q.createQuizResultStmt, err = db.PrepareContext(ctx, createQuizResult); err != nil {
		return nil, fmt.Errorf("error preparing query CreateQuizResult: %w", err)
	}
	if q.finalizeQuizResultStmt, err = db.PrepareContext(ctx, finalizeQuizResult); err != nil {
		return nil, fmt.Errorf("error preparing query FinalizeQuizResult: %w", err)
	}
	if q.getQuizResultByAccessTokenStmt, err = db.PrepareContext(ctx, getQuizResultByAccessToken); err != nil {
		return nil, fmt.Errorf("error preparing query GetQuizResultByAccessToken: %w", err)
	}
	if q.getQuizResultByIDStmt, err = db.PrepareContext(ctx, getQuizResultByID); err != nil {
		return nil, fmt.Errorf("error preparing query GetQuizResultByID: %w", err)
	}
	if q.getQuizResultBySessionIDStmt, err = db.PrepareContext(ctx, getQuizResultBySessionID); err != nil {
		return nil, fmt.Errorf("error preparing query GetQuizResultBySessionID: %w", err)
	}
	if q.listActiveProgramsStmt, err = db.PrepareContext(ctx, listActivePrograms); err != nil {
		return nil, fmt.Errorf("error preparing query ListActivePrograms: %w", err)
	}
	if q.listQuizResultsByStatusStmt, err = db.PrepareContext(ctx, listQuizResultsByStatus); err != nil {
		return nil, fmt.Errorf("error preparing query ListQuizResultsByStatus: %w", err)
	}
	if q.listQuizResultsByUserStmt, err = db.PrepareContext(ctx, listQuizResultsByUser); err != nil {
		return nil, fmt.Errorf("error preparing query ListQuizResultsByUser: %w", err)
	}
	if q.setQuizResultErrorStmt, err = db.PrepareContext(ctx, setQuizResultError); err != nil {
		return nil, fmt.Errorf("error preparing query SetQuizResultError: %w", err)
	}
	if q.setQuizResultProcessingStmt, err = db.PrepareContext(ctx, setQuizResultProcessing); err != nil {
		return nil, fmt.Errorf("error preparing query SetQuizResultProcessing: %w", err)
	}
	return &q, nil
}

func (q *Queries) Close() error {
	var err error
	for _, stmt := range []*sql.Stmt{
		q.claimQuizResultStmt,
		q.createQuizResultStmt,
		q.finalizeQuizResultStmt,
		q.getQuizResultByAccessTokenStmt,
		q.getQuizResultByIDStmt,
		q.getQuizResultBySessionIDStmt,
		q.listActiveProgramsStmt,
		q.listQuizResultsByStatusStmt,
		q.listQuizResultsByUserStmt,
		q.setQuizResultErrorStmt,
		q.setQuizResultProcessingStmt,
	} {
		if stmt == nil {
			continue
		}
		if cerr := stmt.Close(); cerr != nil {
			err = fmt.Errorf("error closing statement: %w", cerr)
		}
	}
	return err
}

func (q *Queries) exec(ctx context.Context, stmt *sql.Stmt, query string, args ...interface{}) (sql.Result, error) {
	switch {
	case stmt != nil && q.tx != nil:
		return q.tx.StmtContext(ctx, stmt).ExecContext(ctx, args...)
	case stmt != nil:
		return stmt.ExecContext(ctx, args...)
	default:
		return q.db.ExecContext(ctx, query, args...)
	}
}

func (q *Queries) query(ctx context.Context, stmt *sql.Stmt, query string, args ...interface{}) (*sql.Rows, error) {
	switch {
	case stmt != nil && q.tx != nil:
		return q.tx.StmtContext(ctx, stmt).QueryContext(ctx, args...)
	case stmt != nil:
		return stmt.QueryContext(ctx, args...)
	default:
		return q.db.QueryContext(ctx, query, args...)
	}
}

func (q *Queries) queryRow(ctx context.Context, stmt *sql.Stmt, query string, args ...interface{}) *sql.Row {
	switch {
	case stmt != nil && q.tx != nil:
		return q.tx.StmtContext(ctx, stmt).QueryRowContext(ctx, args...)
	case stmt != nil:
		return stmt.QueryRowContext(ctx, args...)
	default:
		return q.db.QueryRowContext(ctx, query, args...)
	}
}

type Queries struct {
	db                             DBTX
	tx                             *sql.Tx
	claimQuizResultStmt            *sql.Stmt
	createQuizResultStmt           *sql.Stmt
	finalizeQuizResultStmt         *sql.Stmt
	getQuizResultByAccessTokenStmt *sql.Stmt
	getQuizResultByIDStmt          *sql.Stmt
	getQuizResultBySessionIDStmt   *sql.Stmt
	listActiveProgramsStmt         *sql.Stmt
	listQuizResultsByStatusStmt    *sql.Stmt
	listQuizResultsByUserStmt      *sql.Stmt
	setQuizResultErrorStmt         *sql.Stmt
	setQuizResultProcessingStmt    *sql.Stmt
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db:                             tx,
		tx:                             tx,
		claimQuizResultStmt:            q.claimQuizResultStmt,
		createQuizResultStmt:           q.createQuizResultStmt,
		finalizeQuizResultStmt:         q.finalizeQuizResultStmt,
		getQuizResultByAccessTokenStmt: q.getQuizResultByAccessTokenStmt,
		getQuizResultByIDStmt:          q.getQuizResultByIDStmt,
		getQuizResultBySessionIDStmt:   q.getQuizResultBySessionIDStmt,
		listActiveProgramsStmt:         q.listActiveProgramsStmt,
		listQuizResultsByStatusStmt:    q.listQuizResultsByStatusStmt,
		listQuizResultsByUserStmt:      q.listQuizResultsByUserStmt,
		setQuizResultErrorStmt:         q.setQuizResultErrorStmt,
		setQuizResultProcessingStmt:    q.setQuizResultProcessingStmt,
	}
}
