package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/scoring"
)

func (c *cli) scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the trait vector for an answers file",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers, err := readAnswers(c.v.GetString("answers"))
			if err != nil {
				return err
			}
			cfg, err := scoring.ConfigFor(c.v.GetString("catalog"))
			if err != nil {
				return err
			}
			return writeJSON(cmd, scoring.Calculate(answers, cfg))
		},
	}
	cmd.Flags().StringP("answers", "a", "", "JSON file holding [{\"questionId\":n,\"answer\":...}]")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func readAnswers(path string) (quiz.Answers, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var answers quiz.Answers
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("decode answers %s: %w", path, err)
	}
	return answers, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
