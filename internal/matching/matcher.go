// Package matching ranks academic programs against a student's trait vector
// and stated preferences.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nyashahama/program-matcher-backend/internal/metrics"
)

// AlgorithmVersion is reported with every successful result.
const AlgorithmVersion = "1.0"

// DefaultTopN is how many programs a result carries.
const DefaultTopN = 3

const (
	unknownUniversity = "Unknown University"
	unknownCity       = "Unknown City"
	failureMessage    = "Failed to match programs"
)

// ProgramSource supplies the active candidate programs, each with its
// university attached.
type ProgramSource interface {
	ActivePrograms(ctx context.Context) ([]Program, error)
}

// StaticSource serves a fixed program list.
type StaticSource []Program

// ActivePrograms implements ProgramSource.
func (s StaticSource) ActivePrograms(context.Context) ([]Program, error) {
	return s, nil
}

// Matcher runs the matching pipeline. It holds no per-call state and is safe
// for concurrent use.
type Matcher struct {
	source ProgramSource
	topN   int
	logger *slog.Logger
}

// New constructs a Matcher. topN <= 0 means DefaultTopN.
func New(source ProgramSource, topN int, logger *slog.Logger) *Matcher {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Matcher{source: source, topN: topN, logger: logger}
}

// Match ranks candidates for profile. It never returns an error: fetch
// failures, bad profiles and panics all produce Success false with no
// programs.
func (m *Matcher) Match(ctx context.Context, profile Profile) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("matching: panic", "panic", r)
			res = failed()
		}
		metrics.MatchDuration.WithLabelValues(metrics.MatchStatus(res.Success)).Observe(time.Since(start).Seconds())
		if res.Success {
			metrics.ProgramsEvaluated.Observe(float64(res.TotalProgramsEvaluated))
		}
	}()

	res, err := m.match(ctx, profile)
	if err != nil {
		m.logger.Error("matching: failed", "error", err)
		return failed()
	}
	return res
}

func (m *Matcher) match(ctx context.Context, profile Profile) (Result, error) {
	if m.source == nil {
		return Result{}, errors.New("matching: no program source")
	}

	candidates, err := m.source.ActivePrograms(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("matching: fetch candidates: %w", err)
	}

	prefs := readPreferences(profile.Answers)
	riasec, personality, sw, err := traits(profile)
	if err != nil {
		return Result{}, fmt.Errorf("matching: derive traits: %w", err)
	}
	weights := weightsFor(sw)
	openness := traitScore(personality.Openness)

	candidates = byDegreeType(candidates, prefs.degreeTypes)
	candidates = byDomain(candidates, prefs.domain)

	scored := make([]Match, 0, len(candidates))
	for _, p := range candidates {
		academic, fit := AcademicFit(riasec, personality, p.ScoringData)
		campus := EnvironmentFit(prefs.campusFactors, p.University.CampusData, openness)
		city := EnvironmentFit(prefs.cityFactors, p.University.CityData, openness)
		fit.Academic, fit.Campus, fit.City = round(academic, 2), round(campus, 2), round(city, 2)

		base := round(DegreeScore(academic, campus, city, weights), 2)
		boost, matched := KeywordBoost(p, prefs.interest, prefs.confidence)
		score := round(base+boost, 2)
		if math.IsNaN(score) {
			return Result{}, fmt.Errorf("matching: program %s scored NaN", p.ID)
		}

		pr := CheckPrerequisites(p, prefs.budget, prefs.gpa, prefs.flags)
		scored = append(scored, present(p, score, boost, matched, pr, fit))
	}

	top := selectTop(scored, m.topN)
	m.logger.Debug("matching: ranked",
		"evaluated", len(scored),
		"returned", len(top),
	)

	return Result{
		Success:                true,
		Programs:               top,
		TotalProgramsEvaluated: len(scored),
		AlgorithmVersion:       AlgorithmVersion,
	}, nil
}

func present(p Program, score, boost float64, matched []string, pr Prerequisite, fit Fit) Match {
	uni := p.University
	name := uni.Name
	if name == "" {
		name = unknownUniversity
	}
	city := uni.City
	if city == "" {
		city = unknownCity
	}
	var living float64
	if uni.LivingCostUSD != nil {
		living = *uni.LivingCostUSD
	}
	desc := p.Description
	if desc == "" {
		desc = p.ShortDescription
	}

	return Match{
		ProgramID:            p.ID,
		UniversityName:       name,
		UniversityCity:       city,
		ProgramName:          p.Name,
		DegreeLevel:          p.DegreeLevel,
		DegreeScore:          score,
		MatchPercentage:      int(math.Round(score)),
		KeywordBoost:         round(boost, 2),
		MatchedKeywords:      matched,
		Description:          desc,
		TuitionUSD:           p.TuitionUSD,
		UniversityLivingCost: living,
		DurationYears:        p.DurationYears,
		ApplicationURL:       p.ApplicationURL,
		EssentialPass:        pr.EssentialPass,
		BudgetMet:            pr.BudgetMet,
		GPAMet:               pr.GPAMet,
		PrerequisiteVerdict:  Verdict(pr),
		NonEssentialFlags:    pr.NonEssentialFlags,
		ProgramImageURL:      p.ImageURL,
		UniversityLogoURL:    uni.LogoURL,
		Fit:                  fit,
	}
}

func failed() Result {
	return Result{Success: false, Error: failureMessage, Programs: []Match{}}
}
