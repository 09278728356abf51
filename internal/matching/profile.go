package matching

import (
	"math"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/scoring"
)

// preferences are the selections the matcher reads straight off the answer
// list, independent of any pre-aggregated trait fields.
type preferences struct {
	degreeTypes   []string
	domain        string // empty when no field was chosen or it is unmapped
	interest      string
	confidence    float64
	campusFactors []string
	cityFactors   []string
	budget        *float64
	gpa           *float64
	flags         []string
}

func readPreferences(answers quiz.Answers) preferences {
	idx := answerIndex(answers)
	p := preferences{
		degreeTypes:   choices(idx[quiz.FullDegreeTypes]),
		campusFactors: choices(idx[quiz.FullCampusFactors]),
		cityFactors:   choices(idx[quiz.FullCityFactors]),
		confidence:    confidenceMultiplier(idx[quiz.FullFieldConfidence]),
		budget:        lookup(budgetCeilings, idx[quiz.FullBudget]),
		gpa:           lookup(gpaMidpoints, idx[quiz.FullGPA]),
		flags:         nonEssentialFlags(idx),
	}
	if c, ok := idx[quiz.FullFieldChoice].(quiz.Cascade); ok {
		p.domain = domains[c.Level1]
		p.interest = c.Level2
	}
	return p
}

func answerIndex(answers quiz.Answers) map[int]quiz.Value {
	idx := make(map[int]quiz.Value, len(answers))
	for _, e := range answers {
		if e.Answer != nil {
			idx[e.QuestionID] = e.Answer
		}
	}
	return idx
}

func choices(v quiz.Value) []string {
	switch x := v.(type) {
	case quiz.Choices:
		return x
	case quiz.Text:
		if x != "" {
			return []string{string(x)}
		}
	}
	return nil
}

func confidenceMultiplier(v quiz.Value) float64 {
	n, ok := v.(quiz.Number)
	if !ok || float64(n) != math.Trunc(float64(n)) {
		return defaultConfidenceMultiplier
	}
	if m, ok := confidenceMultipliers[int(n)]; ok {
		return m
	}
	return defaultConfidenceMultiplier
}

func lookup(table map[string]float64, v quiz.Value) *float64 {
	t, ok := v.(quiz.Text)
	if !ok {
		return nil
	}
	f, ok := table[string(t)]
	if !ok {
		return nil
	}
	return &f
}

// nonEssentialFlags lists the support needs a student declared. They never
// block a program; they only shape the verdict.
func nonEssentialFlags(idx map[int]quiz.Value) []string {
	checks := []struct {
		id   int
		hits []string
		flag string
	}{
		{quiz.FullScholarship, []string{"partial", "full"}, FlagScholarship},
		{quiz.FullHealth, []string{"yes"}, FlagHealthSupport},
		{quiz.FullMentalHealth, []string{"yes"}, FlagMentalHealth},
		{quiz.FullDisability, []string{"yes"}, FlagAccessibility},
		{quiz.FullHousing, []string{"require_housing"}, FlagHousing},
		{quiz.FullDietary, []string{"yes"}, FlagDietary},
	}
	flags := []string{}
	for _, c := range checks {
		t, ok := idx[c.id].(quiz.Text)
		if !ok {
			continue
		}
		for _, h := range c.hits {
			if string(t) == h {
				flags = append(flags, c.flag)
				break
			}
		}
	}
	return flags
}

// traits resolves the student trait vector. Pre-aggregated profile fields win;
// anything missing is derived from the answers. Null sub-traits stay null here
// and are defaulted only inside the fit functions.
func traits(p Profile) (scoring.Riasec, scoring.Personality, *SectionWeights, error) {
	if p.RiasecScores != nil && p.PersonalityScores != nil && p.SectionWeights != nil {
		return *p.RiasecScores, *p.PersonalityScores, p.SectionWeights, nil
	}

	var derived scoring.Result
	if len(p.Answers) > 0 {
		version := p.Catalog
		if version == "" {
			version = quiz.VersionFull
		}
		cfg, err := scoring.ConfigFor(version)
		if err != nil {
			return scoring.Riasec{}, scoring.Personality{}, nil, err
		}
		derived = scoring.Calculate(p.Answers, cfg)
	}

	riasec := derived.Scoring.Riasec
	if p.RiasecScores != nil {
		riasec = *p.RiasecScores
	}
	personality := derived.Scoring.Personality
	if p.PersonalityScores != nil {
		personality = *p.PersonalityScores
	}
	sw := p.SectionWeights
	if sw == nil && len(p.Answers) > 0 {
		sw = sectionWeightsFrom(derived.Scoring.Sections)
	}
	return riasec, personality, sw, nil
}

func sectionWeightsFrom(s scoring.Sections) *SectionWeights {
	d, c, y := s.Degree.Weight, s.Campus.Weight, s.City.Weight
	return &SectionWeights{
		Degree: SectionWeight{Weight: &d},
		Campus: SectionWeight{Weight: &c},
		City:   SectionWeight{Weight: &y},
	}
}
