package quiz

import (
	"slices"
	"strconv"
	"strings"
)

// Holds reports whether the condition is satisfied by the given answer
// index. A nil condition always holds. Unknown operators hold as well, so a
// typo in a catalog shows the question rather than hiding it.
func (c *Condition) Holds(answers map[int]Value) bool {
	if c == nil {
		return true
	}
	actual, present := answers[c.QuestionID]
	present = present && actual != nil

	switch c.Operator {
	case OpEquals:
		return present && sameScalar(actual, c.Value)
	case OpNotEquals:
		return !present || !sameScalar(actual, c.Value)
	case OpIn:
		list, ok := c.Value.(Choices)
		return ok && present && memberOf(actual, list)
	case OpNotIn:
		list, ok := c.Value.(Choices)
		return ok && !(present && memberOf(actual, list))
	case OpGTE:
		a, okA := numeric(actual)
		b, okB := numeric(c.Value)
		return present && okA && okB && a >= b
	case OpLTE:
		a, okA := numeric(actual)
		b, okB := numeric(c.Value)
		return present && okA && okB && a <= b
	case OpExists:
		if !present {
			return false
		}
		t, isText := actual.(Text)
		return !isText || t != ""
	default:
		return true
	}
}

// sameScalar is strict equality: a Text never equals a Number.
func sameScalar(a, b Value) bool {
	switch av := a.(type) {
	case Text:
		bv, ok := b.(Text)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Cascade:
		bv, ok := b.(Cascade)
		return ok && av == bv
	}
	return false
}

func memberOf(v Value, list Choices) bool {
	t, ok := v.(Text)
	return ok && slices.Contains(list, string(t))
}

// numeric reads a Number or a numeric Text.
func numeric(v Value) (float64, bool) {
	switch n := v.(type) {
	case Number:
		return float64(n), true
	case Text:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		return f, err == nil
	}
	return 0, false
}
