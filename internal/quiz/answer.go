package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ─── ERRORS ──────────────────────────────────────────────────────────────────

var (
	// ErrUnknownQuestion is returned when an answer references a question id
	// that does not exist in the session's catalog.
	ErrUnknownQuestion = errors.New("quiz: unknown question")

	// ErrInvalidAnswer is returned when an answer's shape or bounds do not
	// satisfy its question's type.
	ErrInvalidAnswer = errors.New("quiz: invalid answer")
)

// ─── ANSWER VALUES ───────────────────────────────────────────────────────────

// Value is a tagged answer variant. The concrete types are Text, Number,
// Choices, Ratings and Cascade; no other type implements Value.
type Value interface {
	isValue()
}

// Text answers free-text, dropdown and date questions.
type Text string

// Number answers likert and currency questions.
type Number float64

// Choices answers multi-select questions.
type Choices []string

// Ratings answers nested-rating and constraint-slider questions, keyed by
// item or category.
type Ratings map[string]float64

// Cascade answers two-level dropdowns.
type Cascade struct {
	Level1 string `json:"level1"`
	Level2 string `json:"level2"`
}

func (Text) isValue()    {}
func (Number) isValue()  {}
func (Choices) isValue() {}
func (Ratings) isValue() {}
func (Cascade) isValue() {}

// Sum returns the total of all ratings.
func (r Ratings) Sum() float64 {
	var total float64
	for _, v := range r {
		total += v
	}
	return total
}

// ─── ENTRIES ─────────────────────────────────────────────────────────────────

// Entry is one recorded answer. Identity is QuestionID.
type Entry struct {
	QuestionID int
	Answer     Value
}

type entryJSON struct {
	QuestionID int             `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
}

// MarshalJSON encodes the entry as {"questionId": n, "answer": <value>}.
func (e Entry) MarshalJSON() ([]byte, error) {
	raw := json.RawMessage("null")
	if e.Answer != nil {
		b, err := json.Marshal(e.Answer)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(entryJSON{QuestionID: e.QuestionID, Answer: raw})
}

// UnmarshalJSON decodes a stored entry, inferring the variant from the JSON
// shape of the answer. Writes from clients go through DecodeAnswer instead.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := inferValue(raw.Answer)
	if err != nil {
		return fmt.Errorf("quiz: question %d: %w", raw.QuestionID, err)
	}
	e.QuestionID = raw.QuestionID
	e.Answer = v
	return nil
}

// Answers is the ordered answer list of a session.
type Answers []Entry

// Get returns the answer recorded for questionID.
func (a Answers) Get(questionID int) (Value, bool) {
	for _, e := range a {
		if e.QuestionID == questionID {
			return e.Answer, e.Answer != nil
		}
	}
	return nil, false
}

// Upsert returns a with the entry for e.QuestionID replaced in place, or e
// appended when the question has not been answered yet. a is not modified.
func (a Answers) Upsert(e Entry) Answers {
	out := make(Answers, len(a), len(a)+1)
	copy(out, a)
	for i := range out {
		if out[i].QuestionID == e.QuestionID {
			out[i] = e
			return out
		}
	}
	return append(out, e)
}

func (a Answers) index() map[int]Value {
	m := make(map[int]Value, len(a))
	for _, e := range a {
		m[e.QuestionID] = e.Answer
	}
	return m
}

// ─── DECODING ────────────────────────────────────────────────────────────────

// DecodeAnswer strictly decodes a client-submitted answer according to the
// question's declared type. A shape mismatch wraps ErrInvalidAnswer.
func DecodeAnswer(q Question, raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		if q.Type == TypeStatement {
			return nil, nil
		}
		return nil, fmt.Errorf("quiz: question %d: missing answer: %w", q.ID, ErrInvalidAnswer)
	}

	mismatch := func(want string) error {
		return fmt.Errorf("quiz: question %d (%s) expects %s: %w", q.ID, q.Type, want, ErrInvalidAnswer)
	}

	switch q.Type {
	case TypeText, TypeDropdown, TypeDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, mismatch("a string")
		}
		return Text(s), nil

	case TypeLikert, TypeCurrency:
		n, ok := parseNumber(raw)
		if !ok {
			return nil, mismatch("a number")
		}
		return Number(n), nil

	case TypeMultiSelect:
		var ss []string
		if err := json.Unmarshal(raw, &ss); err != nil {
			return nil, mismatch("an array of strings")
		}
		return Choices(ss), nil

	case TypeTwoLevelDropdown:
		var c Cascade
		if err := json.Unmarshal(raw, &c); err != nil || raw[0] != '{' {
			return nil, mismatch("an object with level1 and level2")
		}
		return c, nil

	case TypeNestedRating, TypeConstraintSlider:
		r, err := parseRatings(raw)
		if err != nil {
			return nil, mismatch("an object of numbers")
		}
		return r, nil

	case TypeStatement:
		v, err := inferValue(raw)
		if err != nil {
			return nil, nil
		}
		return v, nil
	}

	return nil, fmt.Errorf("quiz: question %d has unsupported type %q: %w", q.ID, q.Type, ErrInvalidAnswer)
}

// inferValue maps a stored JSON answer onto a variant by its shape.
func inferValue(raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return Text(s), nil

	case '[':
		var ss []string
		if err := json.Unmarshal(raw, &ss); err != nil {
			return nil, fmt.Errorf("array answer: %w", err)
		}
		return Choices(ss), nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		if _, ok := fields["level1"]; ok {
			var c Cascade
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, err
			}
			return c, nil
		}
		return parseRatings(raw)

	case 't', 'f':
		return nil, fmt.Errorf("boolean answers are not supported")
	}

	n, ok := parseNumber(raw)
	if !ok {
		return nil, fmt.Errorf("unrecognised answer %.40s", raw)
	}
	return Number(n), nil
}

// parseNumber accepts a JSON number or a numeric string.
func parseNumber(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

func parseRatings(raw json.RawMessage) (Ratings, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	out := make(Ratings, len(fields))
	for k, v := range fields {
		n, ok := parseNumber(v)
		if !ok {
			return nil, fmt.Errorf("rating %q is not numeric", k)
		}
		out[k] = n
	}
	return out, nil
}
