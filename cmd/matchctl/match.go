package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq" // postgres driver
	"github.com/spf13/cobra"

	"github.com/nyashahama/program-matcher-backend/internal/db"
	"github.com/nyashahama/program-matcher-backend/internal/matching"
	"github.com/nyashahama/program-matcher-backend/internal/store"
)

func (c *cli) matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank programs for an answers file",
		Long: `Rank programs for an answers file. Candidates come from --programs, a JSON
array of programs with their university attached, or from the active programs
in --database-url.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers, err := readAnswers(c.v.GetString("answers"))
			if err != nil {
				return err
			}

			logger := c.logger(cmd.ErrOrStderr())
			source, closeFn, err := c.programSource(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer closeFn()

			m := matching.New(source, c.v.GetInt("top"), logger)
			res := m.Match(cmd.Context(), matching.Profile{
				Answers: answers,
				Catalog: c.v.GetString("catalog"),
			})
			if err := writeJSON(cmd, res); err != nil {
				return err
			}
			if !res.Success {
				return errors.New(res.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringP("answers", "a", "", "JSON file holding [{\"questionId\":n,\"answer\":...}]")
	cmd.Flags().StringP("programs", "p", "", "JSON file of candidate programs")
	cmd.Flags().String("database-url", "", "postgres DSN to read active programs from")
	cmd.Flags().Int("top", matching.DefaultTopN, "number of programs to return")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func (c *cli) programSource(ctx context.Context, logger *slog.Logger) (matching.ProgramSource, func(), error) {
	noop := func() {}

	if path := c.v.GetString("programs"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, noop, fmt.Errorf("read programs: %w", err)
		}
		var programs []matching.Program
		if err := json.Unmarshal(raw, &programs); err != nil {
			return nil, noop, fmt.Errorf("decode programs %s: %w", path, err)
		}
		return matching.StaticSource(programs), noop, nil
	}

	dsn := c.v.GetString("database-url")
	if dsn == "" {
		return nil, noop, errors.New("one of --programs or --database-url is required")
	}
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, noop, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, noop, fmt.Errorf("ping database: %w", err)
	}
	return store.New(pool, db.New(pool), logger), func() { pool.Close() }, nil
}
