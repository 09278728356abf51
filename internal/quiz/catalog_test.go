package quiz_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/nyashahama/program-matcher-backend/internal/quiz"
)

func likert(id int) quiz.Question {
	return quiz.Question{ID: id, Key: "l", Type: quiz.TypeLikert, Required: true, Config: quiz.Config{Scale: &quiz.Scale{Min: 1, Max: 5}}}
}

func dropdown(id int) quiz.Question {
	return quiz.Question{ID: id, Key: "d", Type: quiz.TypeDropdown, Required: true}
}

func mustCatalog(t *testing.T, qs ...quiz.Question) *quiz.Catalog {
	t.Helper()
	c, err := quiz.NewCatalog("test", qs)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

// ─── Registry ─────────────────────────────────────────────────────────────────

func TestLookup_RegisteredVersions(t *testing.T) {
	if got := quiz.Versions(); !slices.Equal(got, []string{"full", "minimal"}) {
		t.Fatalf("Versions() = %v", got)
	}

	full, err := quiz.Lookup(quiz.VersionFull)
	if err != nil {
		t.Fatalf("Lookup(full): %v", err)
	}
	if full.Len() != 90 {
		t.Errorf("full catalog has %d questions, want 90", full.Len())
	}

	minimal, err := quiz.Lookup(quiz.VersionMinimal)
	if err != nil {
		t.Fatalf("Lookup(minimal): %v", err)
	}
	if minimal.Len() != 12 {
		t.Errorf("minimal catalog has %d questions, want 12", minimal.Len())
	}
}

func TestLookup_UnknownVersion(t *testing.T) {
	_, err := quiz.Lookup("v9")
	if !errors.Is(err, quiz.ErrUnknownVersion) {
		t.Fatalf("got %v, want ErrUnknownVersion", err)
	}
}

func TestFullCatalog_ShowIfReferencesEarlierQuestions(t *testing.T) {
	full, _ := quiz.Lookup(quiz.VersionFull)
	for _, q := range full.Questions() {
		if q.ShowIf == nil {
			continue
		}
		if q.ShowIf.QuestionID >= q.ID {
			t.Errorf("question %d depends on later question %d", q.ID, q.ShowIf.QuestionID)
		}
	}
}

func TestCatalogs_JSONRoundTrip(t *testing.T) {
	for _, version := range quiz.Versions() {
		t.Run(version, func(t *testing.T) {
			c, err := quiz.Lookup(version)
			if err != nil {
				t.Fatal(err)
			}
			want, err := json.Marshal(c.Questions())
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var decoded []quiz.Question
			if err := json.Unmarshal(want, &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, err := json.Marshal(decoded)
			if err != nil {
				t.Fatalf("re-marshal: %v", err)
			}
			if !bytes.Equal(got, want) {
				t.Error("catalog JSON changed after a decode round trip")
			}

			for i, q := range c.Questions() {
				if !reflect.DeepEqual(decoded[i].ShowIf, q.ShowIf) {
					t.Errorf("question %d: showIf = %+v, want %+v", q.ID, decoded[i].ShowIf, q.ShowIf)
				}
			}
		})
	}
}

func TestCondition_UnmarshalInfersValue(t *testing.T) {
	tests := []struct {
		in   string
		want quiz.Value
	}{
		{`{"questionId":8,"operator":"in","value":["partial","full"]}`, quiz.Choices{"partial", "full"}},
		{`{"questionId":6,"operator":"gte","value":4}`, quiz.Number(4)},
		{`{"questionId":1,"operator":"equals","value":"yes"}`, quiz.Text("yes")},
		{`{"questionId":1,"operator":"exists"}`, nil},
	}
	for _, tt := range tests {
		var c quiz.Condition
		if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if !reflect.DeepEqual(c.Value, tt.want) {
			t.Errorf("%s: value = %#v, want %#v", tt.in, c.Value, tt.want)
		}
	}

	var c quiz.Condition
	if err := json.Unmarshal([]byte(`{"questionId":1,"operator":"equals","value":true}`), &c); err == nil {
		t.Error("boolean value should be rejected")
	}
}

// ─── NewCatalog ───────────────────────────────────────────────────────────────

func TestNewCatalog_RejectsForwardReference(t *testing.T) {
	q := dropdown(2)
	q.ShowIf = &quiz.Condition{QuestionID: 3, Operator: quiz.OpEquals, Value: quiz.Text("x")}
	if _, err := quiz.NewCatalog("bad", []quiz.Question{dropdown(1), q, dropdown(3)}); err == nil {
		t.Fatal("expected error for showIf referencing a later question")
	}
}

func TestNewCatalog_RejectsSelfReference(t *testing.T) {
	q := dropdown(1)
	q.ShowIf = &quiz.Condition{QuestionID: 1, Operator: quiz.OpExists}
	if _, err := quiz.NewCatalog("bad", []quiz.Question{q}); err == nil {
		t.Fatal("expected error for self-referencing showIf")
	}
}

func TestNewCatalog_RejectsDuplicateIDs(t *testing.T) {
	if _, err := quiz.NewCatalog("bad", []quiz.Question{dropdown(1), dropdown(1)}); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestNewCatalog_RejectsMissingScale(t *testing.T) {
	q := quiz.Question{ID: 1, Type: quiz.TypeLikert, Required: true}
	if _, err := quiz.NewCatalog("bad", []quiz.Question{q}); err == nil {
		t.Fatal("expected error for likert without scale")
	}
}

// ─── Visibility ───────────────────────────────────────────────────────────────

func TestVisibleQuestionIDs_NoPredicatesReturnsAllInOrder(t *testing.T) {
	c := mustCatalog(t, dropdown(1), likert(2), dropdown(3))

	for _, answers := range []quiz.Answers{
		nil,
		{{QuestionID: 2, Answer: quiz.Number(4)}},
		{{QuestionID: 3, Answer: quiz.Text("a")}, {QuestionID: 1, Answer: quiz.Text("b")}},
	} {
		if got := c.VisibleQuestionIDs(answers); !slices.Equal(got, []int{1, 2, 3}) {
			t.Errorf("VisibleQuestionIDs(%v) = %v, want [1 2 3]", answers, got)
		}
	}
}

func TestVisibility_EqualsRoundTripAffectsCompletion(t *testing.T) {
	follow := dropdown(2)
	follow.ShowIf = &quiz.Condition{QuestionID: 1, Operator: quiz.OpEquals, Value: quiz.Text("no")}
	c := mustCatalog(t, dropdown(1), follow, dropdown(3))

	answers := quiz.Answers{{QuestionID: 1, Answer: quiz.Text("no")}}
	if got := c.VisibleQuestionIDs(answers); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("after 'no': visible = %v", got)
	}

	answers = answers.Upsert(quiz.Entry{QuestionID: 3, Answer: quiz.Text("done")})
	if c.IsComplete(answers) {
		t.Fatal("quiz should be incomplete while question 2 is visible and unanswered")
	}

	answers = answers.Upsert(quiz.Entry{QuestionID: 1, Answer: quiz.Text("yes")})
	if got := c.VisibleQuestionIDs(answers); !slices.Equal(got, []int{1, 3}) {
		t.Fatalf("after 'yes': visible = %v", got)
	}
	if !c.IsComplete(answers) {
		t.Fatal("hidden question 2 must not block completion")
	}
}

func TestVisibility_HiddenAnswerIsRetained(t *testing.T) {
	follow := dropdown(2)
	follow.ShowIf = &quiz.Condition{QuestionID: 1, Operator: quiz.OpEquals, Value: quiz.Text("no")}
	c := mustCatalog(t, dropdown(1), follow)

	answers := quiz.Answers{
		{QuestionID: 1, Answer: quiz.Text("no")},
		{QuestionID: 2, Answer: quiz.Text("detail")},
	}
	answers = answers.Upsert(quiz.Entry{QuestionID: 1, Answer: quiz.Text("yes")})

	if _, ok := answers.Get(2); !ok {
		t.Fatal("answer to hidden question was dropped")
	}
	if got := c.VisibleQuestionIDs(answers); !slices.Equal(got, []int{1}) {
		t.Fatalf("visible = %v, want [1]", got)
	}
}

func TestCondition_Operators(t *testing.T) {
	tests := []struct {
		name   string
		cond   quiz.Condition
		answer quiz.Value
		want   bool
	}{
		{"equals match", quiz.Condition{Operator: quiz.OpEquals, Value: quiz.Text("a")}, quiz.Text("a"), true},
		{"equals absent", quiz.Condition{Operator: quiz.OpEquals, Value: quiz.Text("a")}, nil, false},
		{"equals number vs text is strict", quiz.Condition{Operator: quiz.OpEquals, Value: quiz.Text("4")}, quiz.Number(4), false},
		{"not_equals differs", quiz.Condition{Operator: quiz.OpNotEquals, Value: quiz.Text("a")}, quiz.Text("b"), true},
		{"not_equals absent", quiz.Condition{Operator: quiz.OpNotEquals, Value: quiz.Text("a")}, nil, true},
		{"not_equals same", quiz.Condition{Operator: quiz.OpNotEquals, Value: quiz.Text("a")}, quiz.Text("a"), false},
		{"in member", quiz.Condition{Operator: quiz.OpIn, Value: quiz.Choices{"a", "b"}}, quiz.Text("b"), true},
		{"in non-member", quiz.Condition{Operator: quiz.OpIn, Value: quiz.Choices{"a", "b"}}, quiz.Text("c"), false},
		{"in scalar expected", quiz.Condition{Operator: quiz.OpIn, Value: quiz.Text("a")}, quiz.Text("a"), false},
		{"not_in non-member", quiz.Condition{Operator: quiz.OpNotIn, Value: quiz.Choices{"a"}}, quiz.Text("c"), true},
		{"not_in absent", quiz.Condition{Operator: quiz.OpNotIn, Value: quiz.Choices{"a"}}, nil, true},
		{"not_in member", quiz.Condition{Operator: quiz.OpNotIn, Value: quiz.Choices{"a"}}, quiz.Text("a"), false},
		{"gte equal", quiz.Condition{Operator: quiz.OpGTE, Value: quiz.Number(4)}, quiz.Number(4), true},
		{"gte below", quiz.Condition{Operator: quiz.OpGTE, Value: quiz.Number(4)}, quiz.Number(3), false},
		{"gte numeric text", quiz.Condition{Operator: quiz.OpGTE, Value: quiz.Number(4)}, quiz.Text("5"), true},
		{"gte absent", quiz.Condition{Operator: quiz.OpGTE, Value: quiz.Number(0)}, nil, false},
		{"gte non-numeric", quiz.Condition{Operator: quiz.OpGTE, Value: quiz.Number(0)}, quiz.Text("x"), false},
		{"lte below", quiz.Condition{Operator: quiz.OpLTE, Value: quiz.Number(2)}, quiz.Number(1), true},
		{"lte above", quiz.Condition{Operator: quiz.OpLTE, Value: quiz.Number(2)}, quiz.Number(3), false},
		{"exists present", quiz.Condition{Operator: quiz.OpExists}, quiz.Text("x"), true},
		{"exists empty text", quiz.Condition{Operator: quiz.OpExists}, quiz.Text(""), false},
		{"exists absent", quiz.Condition{Operator: quiz.OpExists}, nil, false},
		{"exists empty list", quiz.Condition{Operator: quiz.OpExists}, quiz.Choices{}, true},
		{"unknown operator is permissive", quiz.Condition{Operator: "between"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cond.QuestionID = 1
			q := dropdown(2)
			q.ShowIf = &tt.cond
			c := mustCatalog(t, likert(1), q)

			var answers quiz.Answers
			if tt.answer != nil {
				answers = quiz.Answers{{QuestionID: 1, Answer: tt.answer}}
			}
			if got := c.IsVisible(q, answers); got != tt.want {
				t.Errorf("IsVisible = %v, want %v", got, tt.want)
			}
		})
	}
}

// ─── Navigation ───────────────────────────────────────────────────────────────

func TestNextVisibleQuestionID(t *testing.T) {
	minimal, _ := quiz.Lookup(quiz.VersionMinimal)

	tests := []struct {
		name    string
		current int
		answers quiz.Answers
		want    int
		wantOK  bool
	}{
		{"first to second", 1, nil, 2, true},
		{"skips hidden currency", 8, quiz.Answers{{QuestionID: 8, Answer: quiz.Text("none")}}, 10, true},
		{"shows currency on partial", 8, quiz.Answers{{QuestionID: 8, Answer: quiz.Text("partial")}}, 9, true},
		{"skips hidden multi-select", 10, quiz.Answers{{QuestionID: 6, Answer: quiz.Number(2)}}, 12, true},
		{"shows multi-select on high likert", 10, quiz.Answers{{QuestionID: 6, Answer: quiz.Number(4)}}, 11, true},
		{"end of catalog", 12, nil, 0, false},
		{"hidden current restarts", 9, nil, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := minimal.NextVisibleQuestionID(tt.current, tt.answers)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NextVisibleQuestionID(%d) = (%d, %v), want (%d, %v)", tt.current, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsComplete_MinimalCatalog(t *testing.T) {
	minimal, _ := quiz.Lookup(quiz.VersionMinimal)

	answers := quiz.Answers{
		{QuestionID: 1, Answer: quiz.Text("Dana")},
		{QuestionID: 2, Answer: quiz.Choices{"a"}},
		{QuestionID: 3, Answer: quiz.Ratings{"degree": 50, "campus": 30, "city": 20}},
		{QuestionID: 4, Answer: quiz.Text("x")},
		{QuestionID: 5, Answer: quiz.Cascade{Level1: "a", Level2: "b"}},
		{QuestionID: 6, Answer: quiz.Number(3)},
		{QuestionID: 7, Answer: quiz.Ratings{"business": 1, "calculator": 2, "electronics": 3, "chemistry": 4}},
		{QuestionID: 8, Answer: quiz.Text("none")},
		{QuestionID: 10, Answer: quiz.Text("fall")},
	}
	if minimal.IsComplete(answers) {
		t.Fatal("incomplete without question 12")
	}

	answers = answers.Upsert(quiz.Entry{QuestionID: 12, Answer: quiz.Number(5)})
	if !minimal.IsComplete(answers) {
		t.Fatal("expected complete")
	}

	// Raising the likert reveals question 11, which now blocks completion.
	answers = answers.Upsert(quiz.Entry{QuestionID: 6, Answer: quiz.Number(5)})
	if minimal.IsComplete(answers) {
		t.Fatal("question 11 became visible and is unanswered")
	}
}

func TestAnswers_UpsertReplacesInPlace(t *testing.T) {
	a := quiz.Answers{
		{QuestionID: 1, Answer: quiz.Text("a")},
		{QuestionID: 2, Answer: quiz.Text("b")},
	}
	b := a.Upsert(quiz.Entry{QuestionID: 1, Answer: quiz.Text("z")})

	if len(b) != 2 || b[0].QuestionID != 1 || b[0].Answer != quiz.Text("z") {
		t.Fatalf("Upsert = %+v", b)
	}
	if a[0].Answer != quiz.Text("a") {
		t.Fatal("Upsert mutated its receiver")
	}

	c := b.Upsert(quiz.Entry{QuestionID: 3, Answer: quiz.Number(1)})
	if len(c) != 3 || c[2].QuestionID != 3 {
		t.Fatalf("Upsert append = %+v", c)
	}
}
