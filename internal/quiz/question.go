// Package quiz holds the static questionnaire catalogs and the evaluator that
// decides, from the answers given so far, which questions are visible, which
// one comes next, and whether the quiz is complete.
//
// Catalogs are built once at package init and never mutated. Sessions pick a
// catalog by version name when they start.
package quiz

import (
	"encoding/json"
	"fmt"
)

// ─── QUESTION TYPES ──────────────────────────────────────────────────────────

// QuestionType is the declared answer schema of a question.
type QuestionType string

const (
	TypeText             QuestionType = "text_field"
	TypeDropdown         QuestionType = "dropdown"
	TypeMultiSelect      QuestionType = "multi_select"
	TypeTwoLevelDropdown QuestionType = "two_level_dropdown"
	TypeLikert           QuestionType = "likert"
	TypeNestedRating     QuestionType = "nested_rating"
	TypeConstraintSlider QuestionType = "constraint_slider"
	TypeCurrency         QuestionType = "currency"
	TypeDate             QuestionType = "date"
	TypeStatement        QuestionType = "statement"
)

// Question is one immutable catalog entry. ID is stable and never reused
// across catalog revisions; Key is a human label only.
type Question struct {
	ID          int          `json:"id"`
	Key         string       `json:"key"`
	Type        QuestionType `json:"type"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Required    bool         `json:"required"`
	Config      Config       `json:"config"`
	ShowIf      *Condition   `json:"showIf,omitempty"`
}

// Config carries the type-specific schema. Only the fields relevant to the
// question's Type are populated.
type Config struct {
	Placeholder string `json:"placeholder,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`

	// dropdown, multi_select, date
	Options       []Option `json:"options,omitempty"`
	MinSelections int      `json:"minSelections,omitempty"` // 0 means 1
	MaxSelections int      `json:"maxSelections,omitempty"` // 0 means unbounded

	// two_level_dropdown
	Groups      []OptionGroup `json:"groups,omitempty"`
	Level1Label string        `json:"level1Label,omitempty"`
	Level2Label string        `json:"level2Label,omitempty"`

	// likert, nested_rating
	Scale *Scale   `json:"scale,omitempty"`
	Items []Option `json:"items,omitempty"`

	// constraint_slider
	TargetTotal float64  `json:"targetTotal,omitempty"`
	Categories  []Option `json:"categories,omitempty"`

	// currency
	Amount *AmountRange `json:"amount,omitempty"`
}

// Option is a selectable value. It doubles as the item/category descriptor
// for nested ratings and sliders.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// OptionGroup is a first-level choice of a cascading dropdown.
type OptionGroup struct {
	Value   string   `json:"value"`
	Label   string   `json:"label,omitempty"`
	Options []Option `json:"options"`
}

// Scale bounds a numeric rating.
type Scale struct {
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	Labels []string `json:"labels,omitempty"`
}

// AmountRange bounds a currency answer.
type AmountRange struct {
	Currency string  `json:"currency,omitempty"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// ─── VISIBILITY PREDICATES ───────────────────────────────────────────────────

// Operator is the closed set of showIf comparison operators.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "not_equals"
	OpIn        Operator = "in"
	OpNotIn     Operator = "not_in"
	OpGTE       Operator = "gte"
	OpLTE       Operator = "lte"
	OpExists    Operator = "exists"
)

// Condition shows a question only when the answer to QuestionID satisfies
// Operator against Value. QuestionID must be smaller than the owning
// question's ID.
type Condition struct {
	QuestionID int      `json:"questionId"`
	Operator   Operator `json:"operator"`
	Value      Value    `json:"value,omitempty"`
}

// UnmarshalJSON decodes a condition, inferring the variant of Value from its
// JSON shape the same way stored answers are decoded.
func (c *Condition) UnmarshalJSON(b []byte) error {
	var raw struct {
		QuestionID int             `json:"questionId"`
		Operator   Operator        `json:"operator"`
		Value      json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := inferValue(raw.Value)
	if err != nil {
		return fmt.Errorf("quiz: showIf on question %d: %w", raw.QuestionID, err)
	}
	c.QuestionID = raw.QuestionID
	c.Operator = raw.Operator
	c.Value = v
	return nil
}
