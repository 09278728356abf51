package matching

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
	"github.com/nyashahama/program-matcher-backend/internal/scoring"
)

// ─── PROGRAM CATALOG ──────────────────────────────────────────────────────────

// Intensity is a program's personality expectation.
type Intensity string

const (
	IntensityHigh    Intensity = "high"
	IntensityAverage Intensity = "average"
	IntensityLow     Intensity = "low"
)

// UnmarshalJSON accepts a tag ("high", "Average", ...) or a 1–5 number
// (>= 4.0 high, <= 2.6 low). Zero, null and unrecognised tags are average.
func (i *Intensity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*i = IntensityAverage
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		switch Intensity(strings.ToLower(strings.TrimSpace(s))) {
		case IntensityHigh:
			*i = IntensityHigh
		case IntensityLow:
			*i = IntensityLow
		default:
			*i = IntensityAverage
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("matching: intensity must be a tag or a number: %w", err)
	}
	*i = intensityFromScore(f)
	return nil
}

func intensityFromScore(f float64) Intensity {
	switch {
	case f == 0:
		return IntensityAverage
	case f >= 4.0:
		return IntensityHigh
	case f <= 2.6:
		return IntensityLow
	default:
		return IntensityAverage
	}
}

// ProgramRiasec is a program's target interest vector. Absent axes are
// neutral.
type ProgramRiasec struct {
	R *float64 `json:"r,omitempty"`
	I *float64 `json:"i,omitempty"`
	A *float64 `json:"a,omitempty"`
	S *float64 `json:"s,omitempty"`
	E *float64 `json:"e,omitempty"`
	C *float64 `json:"c,omitempty"`
}

// UnmarshalJSON reads each axis as a number or numeric string. Anything else,
// including a blob that is not an object, leaves the axis neutral.
func (r *ProgramRiasec) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*r = ProgramRiasec{}
		return nil
	}
	*r = ProgramRiasec{
		R: looseFloat(raw["r"]),
		I: looseFloat(raw["i"]),
		A: looseFloat(raw["a"]),
		S: looseFloat(raw["s"]),
		E: looseFloat(raw["e"]),
		C: looseFloat(raw["c"]),
	}
	return nil
}

// ProgramPersonality carries the intensity tags a program is calibrated for.
type ProgramPersonality struct {
	Intensity Intensity `json:"intensity,omitempty"`
	Openness  Intensity `json:"openness,omitempty"`
}

// Prerequisites are essential admission gates. Nil means unknown, which
// passes.
type Prerequisites struct {
	Tuition *float64 `json:"tuition,omitempty"`
	MinGPA  *float64 `json:"min_gpa,omitempty"`
}

// UnmarshalJSON reads both gates as numbers or numeric strings; anything else
// is unknown.
func (p *Prerequisites) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*p = Prerequisites{}
		return nil
	}
	*p = Prerequisites{
		Tuition: looseFloat(raw["tuition"]),
		MinGPA:  looseFloat(raw["min_gpa"]),
	}
	return nil
}

// ScoringData is the program's scoring_data blob.
type ScoringData struct {
	Riasec        ProgramRiasec      `json:"riasec"`
	Personality   ProgramPersonality `json:"personality"`
	Prerequisites Prerequisites      `json:"prerequisites"`
}

// FactorSet is a university's campus_data or city_data blob.
type FactorSet struct {
	Factors      map[string]bool `json:"factors"`
	VarietyScore *float64        `json:"variety_score,omitempty"`
}

// UnmarshalJSON counts a factor as offered only when it is literally true.
// A variety_score that is not numeric is treated as absent.
func (f *FactorSet) UnmarshalJSON(b []byte) error {
	var raw struct {
		Factors      map[string]json.RawMessage `json:"factors"`
		VarietyScore json.RawMessage            `json:"variety_score"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("matching: factor set: %w", err)
	}
	out := FactorSet{VarietyScore: looseFloat(raw.VarietyScore)}
	if len(raw.Factors) > 0 {
		out.Factors = make(map[string]bool, len(raw.Factors))
		for name, v := range raw.Factors {
			out.Factors[name] = string(bytes.TrimSpace(v)) == "true"
		}
	}
	*f = out
	return nil
}

// looseFloat reads a JSON number or numeric string. Null, empty and
// non-numeric values are nil.
func looseFloat(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

// University is the institution offering a program.
type University struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	City          string    `json:"city"`
	LogoURL       *string   `json:"logo_url,omitempty"`
	LivingCostUSD *float64  `json:"living_cost_usd,omitempty"`
	CampusData    FactorSet `json:"campus_data"`
	CityData      FactorSet `json:"city_data"`
}

// Program is one candidate. The matcher never mutates it.
type Program struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	DegreeLevel      string      `json:"degree_level"`
	Domain           string      `json:"domain"`
	Discipline       string      `json:"discipline"`
	Field            string      `json:"field"`
	Description      string      `json:"description"`
	ShortDescription string      `json:"short_description"`
	TuitionUSD       *float64    `json:"tuition_usd,omitempty"`
	DurationYears    *float64    `json:"duration_years,omitempty"`
	ApplicationURL   *string     `json:"application_url,omitempty"`
	ImageURL         *string     `json:"image_url,omitempty"`
	ScoringData      ScoringData `json:"scoring_data"`
	University       University  `json:"university"`
}

// ─── STUDENT PROFILE ──────────────────────────────────────────────────────────

// SectionWeight is one entry of a profile's section_weights. A nil weight
// takes the matcher default for that section.
type SectionWeight struct {
	Weight *float64 `json:"weight"`
}

// SectionWeights mirrors the persisted section_weights shape.
type SectionWeights struct {
	Degree SectionWeight `json:"degree"`
	Campus SectionWeight `json:"campus"`
	City   SectionWeight `json:"city"`
}

// Profile is the matcher input. Trait fields are used when present;
// otherwise they are derived from Answers. Degree types, field, confidence,
// factor selections, budget, GPA and non-essential needs are always read from
// Answers.
type Profile struct {
	RiasecScores      *scoring.Riasec      `json:"riasec_scores,omitempty"`
	PersonalityScores *scoring.Personality `json:"personality_scores,omitempty"`
	SectionWeights    *SectionWeights      `json:"section_weights,omitempty"`
	Answers           quiz.Answers         `json:"answers,omitempty"`
	// Catalog selects the scoring configuration used to derive missing trait
	// fields. Empty means the full catalog.
	Catalog string `json:"catalog_version,omitempty"`
}

// ─── OUTPUT ───────────────────────────────────────────────────────────────────

// Fit is the per-component breakdown behind a degree score.
type Fit struct {
	RiasecSimilarity          float64 `json:"riasec_similarity"`
	ConscientiousnessModifier float64 `json:"conscientiousness_modifier"`
	OpennessModifier          float64 `json:"openness_modifier"`
	Academic                  float64 `json:"academic"`
	Campus                    float64 `json:"campus"`
	City                      float64 `json:"city"`
}

// Prerequisite is the gate check for one program.
type Prerequisite struct {
	EssentialPass     bool     `json:"essential_pass"`
	BudgetMet         bool     `json:"budget_met"`
	GPAMet            bool     `json:"gpa_met"`
	NonEssentialFlags []string `json:"non_essential_flags"`
}

// Match is one ranked program.
type Match struct {
	ProgramID            uuid.UUID `json:"program_id"`
	UniversityName       string    `json:"university_name"`
	UniversityCity       string    `json:"university_city"`
	ProgramName          string    `json:"program_name"`
	DegreeLevel          string    `json:"degree_level"`
	DegreeScore          float64   `json:"degree_score"`
	MatchPercentage      int       `json:"match_percentage"`
	KeywordBoost         float64   `json:"keyword_boost"`
	MatchedKeywords      []string  `json:"matched_keywords"`
	Description          string    `json:"description"`
	TuitionUSD           *float64  `json:"tuition_usd"`
	UniversityLivingCost float64   `json:"university_living_cost"`
	DurationYears        *float64  `json:"duration_years"`
	ApplicationURL       *string   `json:"application_url"`
	EssentialPass        bool      `json:"essential_pass"`
	BudgetMet            bool      `json:"budget_met"`
	GPAMet               bool      `json:"gpa_met"`
	PrerequisiteVerdict  string    `json:"prerequisite_verdict"`
	NonEssentialFlags    []string  `json:"non_essential_flags"`
	ProgramImageURL      *string   `json:"program_image_url"`
	UniversityLogoURL    *string   `json:"university_logo_url"`
	Fit                  Fit       `json:"fit"`
}

// Result is the matcher output. On failure Success is false, Error is set
// and Programs is empty.
type Result struct {
	Success                bool    `json:"success"`
	Programs               []Match `json:"programs"`
	TotalProgramsEvaluated int     `json:"total_programs_evaluated"`
	AlgorithmVersion       string  `json:"matching_algorithm_version,omitempty"`
	Error                  string  `json:"error,omitempty"`
}
