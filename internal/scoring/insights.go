package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
)

// Analytics summarises the numeric answers of a session for the preview shown
// before a student signs up.
type Analytics struct {
	NumericCount   int      `json:"numericCount"`
	NumericAverage *float64 `json:"numericAverage"`
}

// Insights is the canned preview text chosen by average answer level.
type Insights struct {
	Summary        string   `json:"summary"`
	Traits         []string `json:"traits"`
	Recommendation string   `json:"recommendation"`
}

// NumericAnalytics counts answers that read as a number in [0, 5] and averages
// them to one decimal. Rating objects contribute the mean of their in-range
// values as a single number.
func NumericAnalytics(answers quiz.Answers) Analytics {
	var vals []float64
	for _, e := range answers {
		if v, ok := numericValue(e.Answer); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return Analytics{}
	}
	avg := round(mean(vals), 1)
	return Analytics{NumericCount: len(vals), NumericAverage: &avg}
}

func numericValue(v quiz.Value) (float64, bool) {
	switch x := v.(type) {
	case quiz.Number:
		return float64(x), inPreviewRange(float64(x))
	case quiz.Text:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		return f, err == nil && inPreviewRange(f)
	case quiz.Ratings:
		var vals []float64
		for _, n := range x {
			if inPreviewRange(n) {
				vals = append(vals, n)
			}
		}
		if len(vals) == 0 {
			return 0, false
		}
		return mean(vals), true
	}
	return 0, false
}

func inPreviewRange(n float64) bool {
	return !math.IsNaN(n) && n >= 0 && n <= 5
}

// BasicInsights picks one of three fixed tiers by average answer level.
func BasicInsights(avg float64) Insights {
	switch {
	case avg >= 4:
		return Insights{
			Summary:        "You show strong confidence and clear preferences in your academic journey.",
			Traits:         []string{"Decisive", "Goal-oriented", "Confident"},
			Recommendation: "You're ready to pursue challenging programs that match your ambitions.",
		}
	case avg >= 3:
		return Insights{
			Summary:        "You have balanced perspectives and are thoughtful about your choices.",
			Traits:         []string{"Balanced", "Thoughtful", "Adaptable"},
			Recommendation: "Consider programs that offer flexibility and diverse opportunities.",
		}
	default:
		return Insights{
			Summary:        "You're exploring your options and taking time to consider different paths.",
			Traits:         []string{"Exploratory", "Open-minded", "Cautious"},
			Recommendation: "Programs with strong support systems and broad foundations would suit you well.",
		}
	}
}
