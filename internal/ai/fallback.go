package ai

import (
	"context"
	"fmt"
	"log/slog"
)

// fallbackSummarizer calls primary first and secondary when primary fails.
type fallbackSummarizer struct {
	primary   Summarizer
	secondary Summarizer
	logger    *slog.Logger
}

// NewFallbackSummarizer returns a Summarizer that calls primary and, on
// failure, secondary. A nil primary goes straight to secondary; a nil
// secondary surfaces the primary error. Both nil always errors.
func NewFallbackSummarizer(primary, secondary Summarizer, logger *slog.Logger) Summarizer {
	return &fallbackSummarizer{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (f *fallbackSummarizer) Summarize(ctx context.Context, in SummaryInput) (string, error) {
	if f.primary != nil {
		text, err := f.primary.Summarize(ctx, in)
		if err == nil {
			return text, nil
		}
		f.logger.Warn("ai: primary summarizer failed, trying secondary", "error", err)
		if f.secondary == nil {
			return "", fmt.Errorf("ai: primary failed and no secondary configured: %w", err)
		}
	}
	if f.secondary == nil {
		return "", fmt.Errorf("ai: no summarizer configured")
	}
	return f.secondary.Summarize(ctx, in)
}
