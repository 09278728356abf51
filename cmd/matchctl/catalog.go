package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/scoring"
)

func (c *cli) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the registered quiz catalogs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the questions of --catalog with their visibility rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := quiz.Lookup(c.v.GetString("catalog"))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKEY\tTYPE\tREQUIRED\tSHOW IF")
			for _, q := range catalog.Questions() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", q.ID, q.Key, q.Type, q.Required, showIf(q.ShowIf))
			}
			return tw.Flush()
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check every catalog against its scoring configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var errs []error
			for _, version := range quiz.Versions() {
				if err := validateCatalog(version); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", version)
			}
			return errors.Join(errs...)
		},
	}

	cmd.AddCommand(list, validate)
	return cmd
}

// validateCatalog checks the scoring config of version and that every question
// it reads exists in the catalog.
func validateCatalog(version string) error {
	catalog, err := quiz.Lookup(version)
	if err != nil {
		return err
	}
	cfg, err := scoring.ConfigFor(version)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var errs []error
	need := func(id int, what string) {
		if _, ok := catalog.Question(id); !ok {
			errs = append(errs, fmt.Errorf("%s: %s question %d is not in the catalog", version, what, id))
		}
	}
	need(cfg.SliderQuestionID, "section slider")
	for _, it := range cfg.Conscientiousness {
		need(it.QuestionID, "conscientiousness")
	}
	for _, id := range cfg.Openness {
		need(id, "openness")
	}
	for axis, acts := range cfg.Riasec {
		for _, a := range acts {
			need(a.QuestionID, "RIASEC "+string(axis))
		}
	}
	return errors.Join(errs...)
}

func showIf(c *quiz.Condition) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("q%d %s %v", c.QuestionID, c.Operator, c.Value)
}
