// Package scoring reduces a completed answer list to the student's trait
// vector: section priority weights, Big Five sub-trait scores and RIASEC
// interest scores. It imports only the quiz package and can be tested without
// a database.
//
// Every call recomputes from scratch. The answer list is bounded by the
// catalog size and scoring runs once per completed quiz.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
)

// Version stamps written alongside every persisted trait vector.
const (
	ContractVersion = "v1"
	ModelVersion    = "v1.0"
)

// ErrUnknownConfig is returned by ConfigFor for catalogs without a scoring
// configuration.
var ErrUnknownConfig = errors.New("scoring: no configuration for catalog version")

// Axis names one RIASEC interest dimension.
type Axis string

const (
	Realistic     Axis = "realistic"
	Investigative Axis = "investigative"
	Artistic      Axis = "artistic"
	Social        Axis = "social"
	Enterprising  Axis = "enterprising"
	Conventional  Axis = "conventional"
)

// Axes lists the RIASEC dimensions in canonical order.
var Axes = []Axis{Realistic, Investigative, Artistic, Social, Enterprising, Conventional}

// Weights is a degree/campus/city triple.
type Weights struct {
	Degree float64 `json:"degree"`
	Campus float64 `json:"campus"`
	City   float64 `json:"city"`
}

// Sum returns Degree + Campus + City.
func (w Weights) Sum() float64 { return w.Degree + w.Campus + w.City }

// SectionConfig is the static part of the section weighting. Base is always
// granted; AdaptivePool is split by the slider proportions.
type SectionConfig struct {
	Base         Weights
	AdaptivePool float64
}

// Item is one Likert question feeding a trait average. Reverse items are
// scored as 6 - raw.
type Item struct {
	QuestionID int
	Reverse    bool
}

// Activity is one rated sub-item of a nested-rating question.
type Activity struct {
	QuestionID int
	Item       string
}

// Config binds the trait formulas to the question ids of one catalog.
type Config struct {
	Catalog           string
	SliderQuestionID  int
	Sections          SectionConfig
	Conscientiousness []Item
	Openness          []int
	Riasec            map[Axis][]Activity
}

// Validate checks that the section allocation totals 100 and that every item
// references a distinct question. Call it once at startup.
func (c Config) Validate() error {
	var errs []error

	if total := c.Sections.Base.Sum() + c.Sections.AdaptivePool; math.Abs(total-100) > 1e-9 {
		errs = append(errs, fmt.Errorf("base weights plus adaptive pool total %g, want 100", total))
	}
	if c.Sections.AdaptivePool < 0 {
		errs = append(errs, fmt.Errorf("adaptive pool %g is negative", c.Sections.AdaptivePool))
	}

	seen := make(map[int]bool)
	for _, it := range c.Conscientiousness {
		if seen[it.QuestionID] {
			errs = append(errs, fmt.Errorf("conscientiousness item %d listed twice", it.QuestionID))
		}
		seen[it.QuestionID] = true
	}
	for _, id := range c.Openness {
		if seen[id] {
			errs = append(errs, fmt.Errorf("openness item %d already used by another trait", id))
		}
		seen[id] = true
	}

	for axis, acts := range c.Riasec {
		if !validAxis(axis) {
			errs = append(errs, fmt.Errorf("unknown RIASEC axis %q", axis))
		}
		if len(acts) == 0 {
			errs = append(errs, fmt.Errorf("RIASEC axis %q has no activities", axis))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("scoring: config %q: %w", c.Catalog, err)
	}
	return nil
}

func validAxis(a Axis) bool {
	for _, x := range Axes {
		if x == a {
			return true
		}
	}
	return false
}

var defaultSections = SectionConfig{
	Base:         Weights{Degree: 40, Campus: 15, City: 15},
	AdaptivePool: 30,
}

var configs = map[string]Config{
	quiz.VersionMinimal: {
		Catalog:          quiz.VersionMinimal,
		SliderQuestionID: 3,
		Sections:         defaultSections,
	},
	quiz.VersionFull: {
		Catalog:           quiz.VersionFull,
		SliderQuestionID:  quiz.FullSectionSlider,
		Sections:          defaultSections,
		Conscientiousness: fullConscientiousness(),
		Openness:          []int{39, 40, 41, 42, 43, 44, 47, 48, 51, 55, 59, 60, 61},
		Riasec:            fullRiasec(),
	},
}

// ConfigFor returns the scoring configuration for a catalog version.
func ConfigFor(catalog string) (Config, error) {
	c, ok := configs[catalog]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownConfig, catalog)
	}
	return c, nil
}

// fullConscientiousness lists questions 14-37; negatively worded statements
// are reversed.
func fullConscientiousness() []Item {
	reversed := map[int]bool{
		19: true, 20: true, 21: true, 24: true, 25: true, 28: true, 29: true,
		32: true, 33: true, 34: true, 35: true, 36: true, 37: true,
	}
	items := make([]Item, 0, 24)
	for id := 14; id <= 37; id++ {
		items = append(items, Item{QuestionID: id, Reverse: reversed[id]})
	}
	return items
}

// fullRiasec assigns the thirty activities round-robin: activity n belongs to
// axis (n-1) mod 6, giving five activities per axis across the three grids.
func fullRiasec() map[Axis][]Activity {
	grids := []int{quiz.FullActivitiesOne, quiz.FullActivitiesTwo, quiz.FullActivitiesThree}
	out := make(map[Axis][]Activity, len(Axes))
	for n := 1; n <= 30; n++ {
		axis := Axes[(n-1)%len(Axes)]
		out[axis] = append(out[axis], Activity{
			QuestionID: grids[(n-1)/10],
			Item:       quiz.ActivityID(n),
		})
	}
	return out
}
