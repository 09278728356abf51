package quiz

import (
	"errors"
	"fmt"
	"sort"
)

// Catalog versions registered at init.
const (
	VersionMinimal = "minimal"
	VersionFull    = "full"
)

// ErrUnknownVersion is returned by Lookup for unregistered catalog versions.
var ErrUnknownVersion = errors.New("quiz: unknown catalog version")

// Catalog is an immutable, ordered question set.
type Catalog struct {
	version   string
	questions []Question
	byID      map[int]int // question id -> index
}

var registry = map[string]*Catalog{
	VersionMinimal: mustCatalog(VersionMinimal, minimalQuestions()),
	VersionFull:    mustCatalog(VersionFull, fullQuestions()),
}

// Lookup returns the registered catalog for version.
func Lookup(version string) (*Catalog, error) {
	c, ok := registry[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	return c, nil
}

// Versions lists registered catalog versions in sorted order.
func Versions() []string {
	out := make([]string, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// NewCatalog validates questions and returns a catalog over a private copy.
// Every showIf must reference an earlier question, ids must be unique and
// positive, and typed configs must carry the bounds their validators need.
func NewCatalog(version string, questions []Question) (*Catalog, error) {
	var errs []error
	byID := make(map[int]int, len(questions))

	for i, q := range questions {
		if q.ID <= 0 {
			errs = append(errs, fmt.Errorf("question at index %d has non-positive id %d", i, q.ID))
			continue
		}
		if _, dup := byID[q.ID]; dup {
			errs = append(errs, fmt.Errorf("question %d is declared twice", q.ID))
			continue
		}
		byID[q.ID] = i

		if q.ShowIf != nil {
			if q.ShowIf.QuestionID >= q.ID {
				errs = append(errs, fmt.Errorf("question %d: showIf references question %d, which is not earlier", q.ID, q.ShowIf.QuestionID))
			} else if _, ok := byID[q.ShowIf.QuestionID]; !ok {
				errs = append(errs, fmt.Errorf("question %d: showIf references unknown question %d", q.ID, q.ShowIf.QuestionID))
			}
		}
		if err := checkConfig(q); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("quiz: catalog %q: %w", version, err)
	}

	return &Catalog{
		version:   version,
		questions: append([]Question(nil), questions...),
		byID:      byID,
	}, nil
}

func mustCatalog(version string, questions []Question) *Catalog {
	c, err := NewCatalog(version, questions)
	if err != nil {
		panic(err)
	}
	return c
}

func checkConfig(q Question) error {
	switch q.Type {
	case TypeLikert:
		if q.Config.Scale == nil {
			return fmt.Errorf("question %d: likert needs a scale", q.ID)
		}
	case TypeNestedRating:
		if q.Config.Scale == nil || len(q.Config.Items) == 0 {
			return fmt.Errorf("question %d: nested rating needs a scale and items", q.ID)
		}
	case TypeCurrency:
		if q.Config.Amount == nil {
			return fmt.Errorf("question %d: currency needs an amount range", q.ID)
		}
	case TypeConstraintSlider:
		if q.Config.TargetTotal <= 0 || len(q.Config.Categories) == 0 {
			return fmt.Errorf("question %d: slider needs a target total and categories", q.ID)
		}
	case TypeText, TypeDropdown, TypeMultiSelect, TypeTwoLevelDropdown, TypeDate, TypeStatement:
	default:
		return fmt.Errorf("question %d: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// ─── ACCESSORS ───────────────────────────────────────────────────────────────

// Version is the name the catalog is registered under.
func (c *Catalog) Version() string { return c.version }

// Len is the number of questions.
func (c *Catalog) Len() int { return len(c.questions) }

// Questions returns the questions in declaration order.
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// Question returns the question with the given id.
func (c *Catalog) Question(id int) (Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// ─── VISIBILITY ──────────────────────────────────────────────────────────────

// IsVisible reports whether q is shown given the answers so far.
func (c *Catalog) IsVisible(q Question, answers Answers) bool {
	return q.ShowIf.Holds(answers.index())
}

// VisibleQuestionIDs returns the ids of visible questions in catalog order.
// The result can shrink as well as grow after any answer changes.
func (c *Catalog) VisibleQuestionIDs(answers Answers) []int {
	idx := answers.index()
	ids := make([]int, 0, len(c.questions))
	for _, q := range c.questions {
		if q.ShowIf.Holds(idx) {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// NextVisibleQuestionID returns the visible question after currentID. When
// currentID is not itself visible it returns the first visible question.
// The boolean is false when there is no next question.
func (c *Catalog) NextVisibleQuestionID(currentID int, answers Answers) (int, bool) {
	visible := c.VisibleQuestionIDs(answers)
	for i, id := range visible {
		if id != currentID {
			continue
		}
		if i+1 < len(visible) {
			return visible[i+1], true
		}
		return 0, false
	}
	if len(visible) == 0 {
		return 0, false
	}
	return visible[0], true
}

// IsComplete reports whether every visible required question holds a valid
// answer. Answers to hidden questions are ignored.
func (c *Catalog) IsComplete(answers Answers) bool {
	idx := answers.index()
	for _, q := range c.questions {
		if !q.Required || !q.ShowIf.Holds(idx) {
			continue
		}
		if !IsAnswerValid(q, idx[q.ID]) {
			return false
		}
	}
	return true
}

// Decode resolves questionID and strictly decodes raw for it.
func (c *Catalog) Decode(questionID int, raw []byte) (Question, Value, error) {
	q, ok := c.Question(questionID)
	if !ok {
		return Question{}, nil, fmt.Errorf("%w: %d in catalog %q", ErrUnknownQuestion, questionID, c.version)
	}
	v, err := DecodeAnswer(q, raw)
	if err != nil {
		return q, nil, err
	}
	return q, v, nil
}
