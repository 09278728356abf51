package matching

import (
	"math"

	"github.com/nyashahama/program-matcher-backend/internal/scoring"
)

// Calibration constants. Changing any of them shifts every program's
// relative ranking.
const (
	maxRiasecDistance = 9.798 // √(6×4²), the diagonal of the [0,4] 6-cube

	neutralRiasec = 2.5
	neutralTrait  = 3.0

	modifierHigh  = 4.0
	modifierUpper = 3.4
	modifierLower = 2.6
	modifierBonus = 5.0
	modifierMalus = -3.0

	neutralFactorFit = 50.0
	varietyMagnitude = 4.0

	academicBase = 0.40
	campusBase   = 0.15
	cityBase     = 0.15
	weightSpread = 0.30
)

// Default section weights, in percent, applied per missing entry.
const (
	defaultDegreeWeight = 40.0
	defaultCampusWeight = 30.0
	defaultCityWeight   = 30.0
)

// ─── RIASEC ───────────────────────────────────────────────────────────────────

// RiasecSimilarity is 100 × (1 − distance/9.798) clamped to [0, 100]. Null
// student axes and absent program axes are neutral 2.5.
func RiasecSimilarity(student scoring.Riasec, program ProgramRiasec) float64 {
	pairs := [6][2]*float64{
		{student.Realistic, program.R},
		{student.Investigative, program.I},
		{student.Artistic, program.A},
		{student.Social, program.S},
		{student.Enterprising, program.E},
		{student.Conventional, program.C},
	}
	var sum float64
	for _, p := range pairs {
		d := orDefault(p[0], neutralRiasec) - orDefault(p[1], neutralRiasec)
		sum += d * d
	}
	return clamp(100*(1-math.Sqrt(sum)/maxRiasecDistance), 0, 100)
}

// ─── PERSONALITY ──────────────────────────────────────────────────────────────

// PersonalityModifier scores how well a 1–5 trait score suits a program's
// intensity tag. The result is in [−3, +5]; average programs are always 0.
func PersonalityModifier(score float64, want Intensity) float64 {
	switch want {
	case IntensityHigh:
		return alignHigh(score)
	case IntensityLow:
		return alignLow(score)
	default:
		return 0
	}
}

// alignHigh rises linearly from −3 at 2.6 through 0 at 3.4 to +5 at 4.0.
func alignHigh(s float64) float64 {
	switch {
	case s >= modifierHigh:
		return modifierBonus
	case s > modifierUpper:
		return modifierBonus * (s - modifierUpper) / (modifierHigh - modifierUpper)
	case s > modifierLower:
		return modifierMalus * (modifierUpper - s) / (modifierUpper - modifierLower)
	default:
		return modifierMalus
	}
}

// alignLow uses the same breakpoints with the bonus and malus swapped.
func alignLow(s float64) float64 {
	switch {
	case s >= modifierHigh:
		return modifierMalus
	case s > modifierUpper:
		return modifierMalus * (s - modifierUpper) / (modifierHigh - modifierUpper)
	case s > modifierLower:
		return modifierBonus * (modifierUpper - s) / (modifierUpper - modifierLower)
	default:
		return modifierBonus
	}
}

// AcademicFit combines interest similarity with both personality modifiers,
// clamped to [0, 100].
func AcademicFit(riasec scoring.Riasec, personality scoring.Personality, p ScoringData) (float64, Fit) {
	sim := RiasecSimilarity(riasec, p.Riasec)
	consc := PersonalityModifier(traitScore(personality.Conscientiousness), p.Personality.Intensity)
	open := PersonalityModifier(traitScore(personality.Openness), p.Personality.Openness)
	fit := Fit{
		RiasecSimilarity:          round(sim, 2),
		ConscientiousnessModifier: round(consc, 2),
		OpennessModifier:          round(open, 2),
	}
	return clamp(sim+consc+open, 0, 100), fit
}

// ─── CAMPUS & CITY ────────────────────────────────────────────────────────────

// FactorMatch is the share of the student's selected factors the university
// offers, as a percentage. No selection is a neutral 50.
func FactorMatch(selected []string, offered map[string]bool) float64 {
	if len(selected) == 0 {
		return neutralFactorFit
	}
	var hit int
	for _, f := range selected {
		if offered[f] {
			hit++
		}
	}
	return float64(hit) / float64(len(selected)) * 100
}

// VarietyModifier rewards alignment between student openness and the
// university's variety score, up to ±4. A university that reports no variety
// score contributes nothing.
func VarietyModifier(openness float64, variety *float64) float64 {
	if variety == nil {
		return 0
	}
	return varietyMagnitude * (1 - math.Abs(openness-*variety)/2)
}

// EnvironmentFit is FactorMatch plus VarietyModifier, clamped to [0, 100].
func EnvironmentFit(selected []string, data FactorSet, openness float64) float64 {
	return clamp(FactorMatch(selected, data.Factors)+VarietyModifier(openness, data.VarietyScore), 0, 100)
}

// ─── DEGREE SCORE ─────────────────────────────────────────────────────────────

// Weights are the student's section weights as fractions of 1.
type Weights struct {
	Academic, Campus, City float64
}

// weightsFor normalises profile section weights. Each missing entry takes its
// default; a profile with none at all gets 0.40/0.30/0.30.
func weightsFor(sw *SectionWeights) Weights {
	if sw == nil {
		return Weights{
			Academic: defaultDegreeWeight / 100,
			Campus:   defaultCampusWeight / 100,
			City:     defaultCityWeight / 100,
		}
	}
	return Weights{
		Academic: positiveOr(sw.Degree.Weight, defaultDegreeWeight) / 100,
		Campus:   positiveOr(sw.Campus.Weight, defaultCampusWeight) / 100,
		City:     positiveOr(sw.City.Weight, defaultCityWeight) / 100,
	}
}

// DegreeScore blends the three fits by the student's weights.
func DegreeScore(academic, campus, city float64, w Weights) float64 {
	return academic*(academicBase+weightSpread*w.Academic) +
		campus*(campusBase+weightSpread*w.Campus) +
		city*(cityBase+weightSpread*w.City)
}

// ─── HELPERS ──────────────────────────────────────────────────────────────────

func traitScore(t scoring.Trait) float64 {
	return orDefault(t.Score, neutralTrait)
}

func orDefault(p *float64, def float64) float64 {
	if p == nil || math.IsNaN(*p) {
		return def
	}
	return *p
}

// positiveOr treats zero like absent, matching how weights were stored.
func positiveOr(p *float64, def float64) float64 {
	if p == nil || *p == 0 || math.IsNaN(*p) {
		return def
	}
	return *p
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
