package quiz

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// IsAnswerValid reports whether v structurally satisfies q.
func IsAnswerValid(q Question, v Value) bool {
	return ValidateAnswer(q, v) == nil
}

// ValidateAnswer checks shape and bounds of v against q's declared type.
// Failures wrap ErrInvalidAnswer. Statements accept anything.
func ValidateAnswer(q Question, v Value) error {
	if q.Type == TypeStatement {
		return nil
	}
	if v == nil {
		return invalid(q, "no answer")
	}

	cfg := q.Config
	switch q.Type {
	case TypeText:
		t, ok := v.(Text)
		if !ok || strings.TrimSpace(string(t)) == "" {
			return invalid(q, "text must not be blank")
		}
		if cfg.MaxLength > 0 && utf8.RuneCountInString(string(t)) > cfg.MaxLength {
			return invalid(q, fmt.Sprintf("text exceeds %d characters", cfg.MaxLength))
		}

	case TypeDropdown, TypeDate:
		t, ok := v.(Text)
		if !ok || t == "" {
			return invalid(q, "a selection is required")
		}

	case TypeLikert:
		n, ok := v.(Number)
		if !ok || !inRange(float64(n), cfg.Scale.Min, cfg.Scale.Max) {
			return invalid(q, fmt.Sprintf("rating must be between %g and %g", cfg.Scale.Min, cfg.Scale.Max))
		}

	case TypeCurrency:
		n, ok := v.(Number)
		if !ok || !inRange(float64(n), cfg.Amount.Min, cfg.Amount.Max) {
			return invalid(q, fmt.Sprintf("amount must be between %g and %g", cfg.Amount.Min, cfg.Amount.Max))
		}

	case TypeMultiSelect:
		choices, ok := v.(Choices)
		if !ok {
			return invalid(q, "a list of selections is required")
		}
		lo, hi := cfg.MinSelections, cfg.MaxSelections
		if lo <= 0 {
			lo = 1
		}
		if hi <= 0 {
			hi = math.MaxInt
		}
		if len(choices) < lo || len(choices) > hi {
			return invalid(q, fmt.Sprintf("selected %d options, outside [%d, %d]", len(choices), lo, hi))
		}

	case TypeTwoLevelDropdown:
		c, ok := v.(Cascade)
		if !ok || c.Level1 == "" || c.Level2 == "" {
			return invalid(q, "both levels are required")
		}

	case TypeNestedRating:
		r, ok := v.(Ratings)
		if !ok || len(cfg.Items) == 0 {
			return invalid(q, "ratings are required")
		}
		for _, item := range cfg.Items {
			n, ok := r[item.Value]
			if !ok || !inRange(n, cfg.Scale.Min, cfg.Scale.Max) {
				return invalid(q, fmt.Sprintf("item %q must be rated between %g and %g", item.Value, cfg.Scale.Min, cfg.Scale.Max))
			}
		}

	case TypeConstraintSlider:
		r, ok := v.(Ratings)
		if !ok {
			return invalid(q, "allocations are required")
		}
		if total := r.Sum(); total != cfg.TargetTotal {
			return invalid(q, fmt.Sprintf("allocations sum to %g, want %g", total, cfg.TargetTotal))
		}

	default:
		return invalid(q, "unsupported question type")
	}
	return nil
}

func inRange(n, lo, hi float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0) && n >= lo && n <= hi
}

func invalid(q Question, reason string) error {
	return fmt.Errorf("quiz: question %d: %s: %w", q.ID, reason, ErrInvalidAnswer)
}
