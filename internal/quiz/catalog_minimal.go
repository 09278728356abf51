package quiz

// minimalQuestions is the short catalog used for smoke tests and demos. It
// exercises every interactive question type and two showIf predicates.
func minimalQuestions() []Question {
	return []Question{
		{ID: 1, Key: "q1", Type: TypeText, Required: true, Config: Config{MaxLength: 100}},
		{ID: 2, Key: "q2", Type: TypeMultiSelect, Required: true, Config: Config{MaxSelections: 3}},
		{
			ID: 3, Key: "q3", Type: TypeConstraintSlider, Required: true,
			Config: Config{
				TargetTotal: 100,
				Categories:  options("degree", "campus", "city"),
			},
		},
		{ID: 4, Key: "q4", Type: TypeDropdown, Required: true},
		{ID: 5, Key: "q5", Type: TypeTwoLevelDropdown, Required: true},
		{ID: 6, Key: "q6", Type: TypeLikert, Required: true, Config: Config{Scale: &Scale{Min: 1, Max: 5}}},
		{
			ID: 7, Key: "q7", Type: TypeNestedRating, Required: true,
			Config: Config{
				Scale: &Scale{Min: 0, Max: 4},
				Items: options("business", "calculator", "electronics", "chemistry"),
			},
		},
		{ID: 8, Key: "q8", Type: TypeDropdown, Required: true},
		{
			ID: 9, Key: "q9", Type: TypeCurrency, Required: true,
			ShowIf: &Condition{QuestionID: 8, Operator: OpIn, Value: Choices{"partial", "full"}},
			Config: Config{Amount: &AmountRange{Min: 0, Max: 100000}},
		},
		{ID: 10, Key: "q10", Type: TypeDate, Required: true},
		{
			ID: 11, Key: "q11", Type: TypeMultiSelect, Required: true,
			ShowIf: &Condition{QuestionID: 6, Operator: OpGTE, Value: Number(4)},
			Config: Config{MinSelections: 2, MaxSelections: 4},
		},
		{ID: 12, Key: "q12", Type: TypeLikert, Required: true, Config: Config{Scale: &Scale{Min: 1, Max: 5}}},
	}
}

// options builds unlabelled options from bare values.
func options(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v}
	}
	return out
}
