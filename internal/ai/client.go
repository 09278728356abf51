// Package ai writes the short personal "brilliance summary" shown above a
// student's matched programs. Anthropic and DeepSeek back the live
// implementations; Static is the deterministic fallback.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nyashahama/program-matcher-backend/internal/matching"
	"github.com/nyashahama/program-matcher-backend/internal/scoring"
)

// SummaryInput is everything a Summarizer may mention. Matches are already
// ranked; only the first few are sent to a model.
type SummaryInput struct {
	FirstName   string
	Riasec      scoring.Riasec
	Personality scoring.Personality
	Matches     []matching.Match
}

// Summarizer is the interface the worker uses to generate the narrative.
// Tests inject a stub that returns canned text.
type Summarizer interface {
	// Summarize returns two to four sentences of plain text. Implementations
	// must be safe to call concurrently. A non-nil error means no usable
	// text; the worker falls back to Static.
	Summarize(ctx context.Context, in SummaryInput) (string, error)
}

// ─── PROMPT ───────────────────────────────────────────────────────────────────

const systemPrompt = `You are a warm, honest university admissions counsellor writing for a high-school student.
You will receive the student's interest profile (RIASEC, 0-4 scale), two personality traits (1-5 scale) and the programs they matched best.

Write a "brilliance summary": 2-4 sentences addressed to the student by first name, naming what they are naturally strong at and why the top programs fit.
Be specific to the numbers you are given. No flattery without grounds, no lists, no markdown.

Respond ONLY with valid JSON matching this exact schema, no markdown fences, no preamble:
{"brilliance_summary": "..."}`

// maxPromptMatches bounds how many programs are described to the model.
const maxPromptMatches = 3

type summaryJSON struct {
	BrillianceSummary string `json:"brilliance_summary"`
}

func buildPrompt(in SummaryInput) string {
	var sb strings.Builder
	name := in.FirstName
	if name == "" {
		name = "(unknown)"
	}
	fmt.Fprintf(&sb, "first_name: %s\n\n", name)

	sb.WriteString("riasec:\n")
	for _, axis := range scoring.Axes {
		fmt.Fprintf(&sb, "  %s: %s\n", axis, formatScore(in.Riasec.Get(axis)))
	}

	sb.WriteString("personality:\n")
	fmt.Fprintf(&sb, "  conscientiousness: %s\n", formatTrait(in.Personality.Conscientiousness))
	fmt.Fprintf(&sb, "  openness: %s\n", formatTrait(in.Personality.Openness))

	sb.WriteString("\ntop programs:\n")
	for i, m := range in.Matches {
		if i == maxPromptMatches {
			break
		}
		fmt.Fprintf(&sb, "- %s at %s (%s), match %d%%", m.ProgramName, m.UniversityName, m.UniversityCity, m.MatchPercentage)
		if len(m.MatchedKeywords) > 0 {
			fmt.Fprintf(&sb, ", keywords: %s", strings.Join(m.MatchedKeywords, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// parseSummary strips stray markdown fences and decodes the JSON envelope.
func parseSummary(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var parsed summaryJSON
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", fmt.Errorf("parse response JSON: %w (raw: %.200s)", err, raw)
	}
	text := strings.TrimSpace(parsed.BrillianceSummary)
	if text == "" {
		return "", fmt.Errorf("empty brilliance_summary")
	}
	return text, nil
}

func formatScore(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatTrait(t scoring.Trait) string {
	if t.Score == nil || t.Tag == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f (%s)", *t.Score, *t.Tag)
}
