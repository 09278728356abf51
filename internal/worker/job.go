package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nyashahama/program-matcher-backend/internal/ai"
	"github.com/nyashahama/program-matcher-backend/internal/db"
	"github.com/nyashahama/program-matcher-backend/internal/email"
	"github.com/nyashahama/program-matcher-backend/internal/events"
	"github.com/nyashahama/program-matcher-backend/internal/matching"
	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/scoring"
	"github.com/nyashahama/program-matcher-backend/internal/store"
)

// ResultStore is the slice of *store.Store the pipeline writes through.
type ResultStore interface {
	InitialiseResult(ctx context.Context, p store.InitialiseResultParams) (db.QuizResult, error)
	PersistMatchedResult(ctx context.Context, p store.PersistMatchedResultParams) (db.QuizResult, error)
	MarkResultFailed(ctx context.Context, resultID uuid.UUID, reason string) (db.QuizResult, error)
}

// Job holds the dependencies for the score-match-summarize pipeline.
type Job struct {
	q          db.Querier
	store      ResultStore
	matcher    *matching.Matcher
	summarizer ai.Summarizer
	mailer     email.Sender
	publisher  events.Publisher
	logger     *slog.Logger
}

// NewJob constructs a Job. A nil summarizer uses ai.Static; a nil mailer or
// publisher disables that step.
func NewJob(
	q db.Querier,
	st ResultStore,
	matcher *matching.Matcher,
	summarizer ai.Summarizer,
	mailer email.Sender,
	publisher events.Publisher,
	logger *slog.Logger,
) *Job {
	if summarizer == nil {
		summarizer = ai.Static{}
	}
	return &Job{
		q:          q,
		store:      st,
		matcher:    matcher,
		summarizer: summarizer,
		mailer:     mailer,
		publisher:  publisher,
		logger:     logger,
	}
}

// Run executes the full pipeline for a single result:
//
//  1. Load the pending result row.
//  2. Score the answers once into a trait vector.
//  3. Match programs against the vector and the stated preferences.
//  4. Generate the brilliance summary (static text on AI failure).
//  5. Persist everything atomically via store.PersistMatchedResult.
//  6. Publish programs.matched and send the notification email.
//
// Any error is returned to the Runner, which retries up to MaxRetries times
// before calling store.MarkResultFailed.
func (j *Job) Run(ctx context.Context, resultID uuid.UUID) error {
	log := j.logger.With("result_id", resultID)
	log.Info("job: starting")

	// ── 1. Load the result ────────────────────────────────────────────────────
	result, err := j.q.GetQuizResultByID(ctx, resultID)
	if err != nil {
		return fmt.Errorf("job: get result: %w", err)
	}
	if result.Status == db.ResultStatusReady || result.Status == db.ResultStatusError {
		log.Info("job: result already settled, skipping", "status", result.Status)
		return nil
	}

	var answers quiz.Answers
	if err := json.Unmarshal(result.Answers, &answers); err != nil {
		return fmt.Errorf("job: decode answers: %w", err)
	}
	if len(answers) == 0 {
		return fmt.Errorf("job: no answers stored for session %s", result.SessionID)
	}

	// ── 2. Score ──────────────────────────────────────────────────────────────
	cfg, err := scoring.ConfigFor(result.CatalogVersion)
	if err != nil {
		return fmt.Errorf("job: scoring config: %w", err)
	}
	scored := scoring.Calculate(answers, cfg)

	log.Debug("job: scored",
		"answers", len(answers),
		"weights_source", scored.Diagnostics.SectionWeightsSource,
		"ranking_ready", scored.Diagnostics.CompletedMetrics.Ranking,
	)

	// ── 3. Match ──────────────────────────────────────────────────────────────
	matched := j.matcher.Match(ctx, profileFrom(scored, answers, result.CatalogVersion))
	if !matched.Success {
		return fmt.Errorf("job: match programs: %s", matched.Error)
	}

	// ── 4. Summary ────────────────────────────────────────────────────────────
	in := ai.SummaryInput{
		FirstName:   firstName(answers),
		Riasec:      scored.Scoring.Riasec,
		Personality: scored.Scoring.Personality,
		Matches:     matched.Programs,
	}
	summary, err := j.summarizer.Summarize(ctx, in)
	if err != nil {
		// The matches are the product; the narrative is not worth a retry.
		log.Warn("job: summary generation failed, using static summary", "error", err)
		summary, _ = ai.Static{}.Summarize(ctx, in)
	}

	// ── 5. Persist ────────────────────────────────────────────────────────────
	final, err := j.store.PersistMatchedResult(ctx, store.PersistMatchedResultParams{
		ResultID:        resultID,
		Scoring:         scored,
		Matches:         matched.Programs,
		Summary:         summary,
		MatchingVersion: matched.AlgorithmVersion,
	})
	if errors.Is(err, store.ErrResultNotPending) {
		log.Info("job: result settled by another worker")
		return nil
	}
	if err != nil {
		return fmt.Errorf("job: persist result: %w", err)
	}

	log.Info("job: result persisted",
		"programs", len(matched.Programs),
		"evaluated", matched.TotalProgramsEvaluated,
	)

	// ── 6. Notify ─────────────────────────────────────────────────────────────
	if j.publisher != nil {
		e := events.New(events.TypeProgramsMatched, final.SessionID, final.UserID.String, map[string]any{
			"resultId":               final.ID.String(),
			"programsReturned":       len(matched.Programs),
			"totalProgramsEvaluated": matched.TotalProgramsEvaluated,
		})
		if err := j.publisher.Publish(ctx, e); err != nil {
			log.Warn("job: publish programs matched", "error", err)
		}
	}

	if !final.Email.Valid || final.Email.String == "" {
		log.Debug("job: result has no email address, skipping notification")
		return nil
	}
	if j.mailer == nil {
		return nil
	}

	names := make([]string, 0, len(matched.Programs))
	for _, m := range matched.Programs {
		names = append(names, fmt.Sprintf("%s, %s", m.ProgramName, m.UniversityName))
	}
	if err := j.mailer.SendMatchesReady(ctx, email.MatchesReadyParams{
		To:          final.Email.String,
		FirstName:   in.FirstName,
		AccessToken: final.AccessToken,
		TopPrograms: names,
	}); err != nil {
		// The result is reachable by access token; a lost email is not a
		// failed job.
		log.Error("job: failed to send matches email", "to", final.Email.String, "error", err)
	}
	return nil
}

// profileFrom hands the already computed trait vector to the matcher so it
// does not score the answers a second time.
func profileFrom(r scoring.Result, answers quiz.Answers, catalog string) matching.Profile {
	s := r.Scoring
	degree, campus, city := s.Sections.Degree.Weight, s.Sections.Campus.Weight, s.Sections.City.Weight
	return matching.Profile{
		RiasecScores:      &s.Riasec,
		PersonalityScores: &s.Personality,
		SectionWeights: &matching.SectionWeights{
			Degree: matching.SectionWeight{Weight: &degree},
			Campus: matching.SectionWeight{Weight: &campus},
			City:   matching.SectionWeight{Weight: &city},
		},
		Answers: answers,
		Catalog: catalog,
	}
}

// firstName is the first word of the name answer.
func firstName(answers quiz.Answers) string {
	v, ok := answers.Get(quiz.FullName)
	if !ok {
		return ""
	}
	t, ok := v.(quiz.Text)
	if !ok {
		return ""
	}
	fields := strings.Fields(string(t))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
