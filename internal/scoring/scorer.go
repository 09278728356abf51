package scoring

import (
	"math"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
)

// ─── CONSTANTS ────────────────────────────────────────────────────────────────

// Tag thresholds on the 1–5 trait scale.
const (
	highThreshold = 4.0 // score >= 4.0 → High
	lowThreshold  = 2.5 // score <= 2.5 → Low
)

// Likert bounds for trait items and nested-rating bounds for activities.
const (
	likertMin   = 1
	likertMax   = 5
	activityMin = 0
	activityMax = 4
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Tag is the categorical reading of a trait score.
type Tag string

const (
	TagHigh    Tag = "High"
	TagAverage Tag = "Average"
	TagLow     Tag = "Low"
)

// Trait is a scored Big Five sub-trait. Both fields are nil when no item
// contributing to the trait was answered.
type Trait struct {
	Score *float64 `json:"score"`
	Tag   *Tag     `json:"tag"`
}

// Personality holds the Big Five. Only conscientiousness and openness have
// formulas; the other three are always nil.
type Personality struct {
	Conscientiousness Trait    `json:"conscientiousness"`
	Openness          Trait    `json:"openness"`
	Extraversion      *float64 `json:"extraversion"`
	Agreeableness     *float64 `json:"agreeableness"`
	Neuroticism       *float64 `json:"neuroticism"`
}

// Riasec holds the six interest averages on the 0–4 scale.
type Riasec struct {
	Realistic     *float64 `json:"realistic"`
	Investigative *float64 `json:"investigative"`
	Artistic      *float64 `json:"artistic"`
	Social        *float64 `json:"social"`
	Enterprising  *float64 `json:"enterprising"`
	Conventional  *float64 `json:"conventional"`
}

// Get returns the score for axis.
func (r Riasec) Get(a Axis) *float64 {
	switch a {
	case Realistic:
		return r.Realistic
	case Investigative:
		return r.Investigative
	case Artistic:
		return r.Artistic
	case Social:
		return r.Social
	case Enterprising:
		return r.Enterprising
	case Conventional:
		return r.Conventional
	}
	return nil
}

func (r *Riasec) set(a Axis, v *float64) {
	switch a {
	case Realistic:
		r.Realistic = v
	case Investigative:
		r.Investigative = v
	case Artistic:
		r.Artistic = v
	case Social:
		r.Social = v
	case Enterprising:
		r.Enterprising = v
	case Conventional:
		r.Conventional = v
	}
}

// complete reports whether every axis has a score.
func (r Riasec) complete() bool {
	for _, a := range Axes {
		if r.Get(a) == nil {
			return false
		}
	}
	return true
}

// Section is one entry of the persisted section_weights object. Score is
// reserved and always nil.
type Section struct {
	Score  *float64 `json:"score"`
	Weight float64  `json:"weight"`
}

// Sections is the persisted shape of the section weights.
type Sections struct {
	Degree Section `json:"degree"`
	Campus Section `json:"campus"`
	City   Section `json:"city"`
}

// Weights flattens s back to its three weights.
func (s Sections) Weights() Weights {
	return Weights{Degree: s.Degree.Weight, Campus: s.Campus.Weight, City: s.City.Weight}
}

// Scoring is the trait vector.
type Scoring struct {
	Sections    Sections    `json:"sections"`
	Personality Personality `json:"personality"`
	Riasec      Riasec      `json:"riasec"`
}

// CompletedMetrics flags which parts of the trait vector were computable.
type CompletedMetrics struct {
	SectionWeights    bool `json:"sectionWeights"`
	Riasec            bool `json:"riasec"`
	Conscientiousness bool `json:"conscientiousness"`
	Openness          bool `json:"openness"`
	BigFive           bool `json:"bigFive"`
	Ranking           bool `json:"ranking"`
}

// Section weight sources.
const (
	SourceSlider = "slider"
	SourceBase   = "base"
)

// Diagnostics tell downstream consumers how much of the vector is observed
// rather than absent.
type Diagnostics struct {
	CompletedMetrics          CompletedMetrics `json:"completedMetrics"`
	SectionWeightsSource      string           `json:"sectionWeightsSource"`
	MissingFormulaDefinitions []string         `json:"missingFormulaDefinitions"`
}

// Result is the output of Calculate.
type Result struct {
	Scoring         Scoring     `json:"scoring"`
	ModelVersion    string      `json:"modelVersion"`
	ContractVersion string      `json:"contractVersion"`
	Diagnostics     Diagnostics `json:"diagnostics"`
}

// ─── CORE FUNCTIONS ───────────────────────────────────────────────────────────

// Calculate reduces answers to a trait vector using cfg. It is pure: identical
// input yields identical output. Answers to questions cfg does not reference
// are ignored.
func Calculate(answers quiz.Answers, cfg Config) Result {
	weights, source := SectionWeights(answers, cfg)

	var s Scoring
	s.Sections = Sections{
		Degree: Section{Weight: weights.Degree},
		Campus: Section{Weight: weights.Campus},
		City:   Section{Weight: weights.City},
	}
	s.Personality.Conscientiousness = Conscientiousness(answers, cfg.Conscientiousness)
	s.Personality.Openness = Openness(answers, cfg.Openness)
	s.Riasec = RiasecScores(answers, cfg.Riasec)

	consc := s.Personality.Conscientiousness.Score != nil
	open := s.Personality.Openness.Score != nil
	riasec := s.Riasec.complete()

	return Result{
		Scoring:         s,
		ModelVersion:    ModelVersion,
		ContractVersion: ContractVersion,
		Diagnostics: Diagnostics{
			CompletedMetrics: CompletedMetrics{
				SectionWeights:    true,
				Riasec:            riasec,
				Conscientiousness: consc,
				Openness:          open,
				BigFive:           consc && open,
				Ranking:           riasec && consc,
			},
			SectionWeightsSource:      source,
			MissingFormulaDefinitions: []string{"extraversion", "agreeableness", "neuroticism"},
		},
	}
}

// SectionWeights returns base + pool × proportion for each section, read from
// the slider answer. Anything other than three finite non-negative values with
// a positive total falls back to the base weights.
func SectionWeights(answers quiz.Answers, cfg Config) (Weights, string) {
	base := cfg.Sections.Base

	v, ok := answers.Get(cfg.SliderQuestionID)
	if !ok {
		return base, SourceBase
	}
	r, ok := v.(quiz.Ratings)
	if !ok {
		return base, SourceBase
	}

	degree, okD := r["degree"]
	campus, okC := r["campus"]
	city, okY := r["city"]
	if !okD || !okC || !okY {
		return base, SourceBase
	}
	for _, x := range []float64{degree, campus, city} {
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return base, SourceBase
		}
	}
	total := degree + campus + city
	if total <= 0 {
		return base, SourceBase
	}

	pool := cfg.Sections.AdaptivePool
	return Weights{
		Degree: base.Degree + pool*degree/total,
		Campus: base.Campus + pool*campus/total,
		City:   base.City + pool*city/total,
	}, SourceSlider
}

// Conscientiousness averages the answered items, reversing where flagged, and
// rounds to one decimal.
func Conscientiousness(answers quiz.Answers, items []Item) Trait {
	var scores []float64
	for _, it := range items {
		raw, ok := likert(answers, it.QuestionID)
		if !ok {
			continue
		}
		if it.Reverse {
			raw = 6 - raw
		}
		scores = append(scores, raw)
	}
	return trait(scores, 1)
}

// Openness averages the answered items and rounds to two decimals.
func Openness(answers quiz.Answers, ids []int) Trait {
	var scores []float64
	for _, id := range ids {
		if raw, ok := likert(answers, id); ok {
			scores = append(scores, raw)
		}
	}
	return trait(scores, 2)
}

// RiasecScores averages each axis's rated activities, rounded to two
// decimals. An axis with no rated activity is nil.
func RiasecScores(answers quiz.Answers, mapping map[Axis][]Activity) Riasec {
	var out Riasec
	if len(mapping) == 0 {
		return out
	}
	for _, axis := range Axes {
		var vals []float64
		for _, act := range mapping[axis] {
			v, ok := answers.Get(act.QuestionID)
			if !ok {
				continue
			}
			r, ok := v.(quiz.Ratings)
			if !ok {
				continue
			}
			n, ok := r[act.Item]
			if !ok || n < activityMin || n > activityMax {
				continue
			}
			vals = append(vals, n)
		}
		if len(vals) > 0 {
			avg := round(mean(vals), 2)
			out.set(axis, &avg)
		}
	}
	return out
}

// TagFor classifies a 1–5 trait score.
func TagFor(score float64) Tag {
	switch {
	case score >= highThreshold:
		return TagHigh
	case score <= lowThreshold:
		return TagLow
	default:
		return TagAverage
	}
}

// ─── HELPERS ──────────────────────────────────────────────────────────────────

func trait(scores []float64, places int) Trait {
	if len(scores) == 0 {
		return Trait{}
	}
	avg := round(mean(scores), places)
	tag := TagFor(avg)
	return Trait{Score: &avg, Tag: &tag}
}

// likert reads a 1–5 answer. Out-of-range or non-numeric answers are skipped.
func likert(answers quiz.Answers, id int) (float64, bool) {
	v, ok := answers.Get(id)
	if !ok {
		return 0, false
	}
	n, ok := v.(quiz.Number)
	if !ok {
		return 0, false
	}
	f := float64(n)
	if math.IsNaN(f) || f < likertMin || f > likertMax {
		return 0, false
	}
	return f, true
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
