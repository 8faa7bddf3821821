package question

import (
	"errors"
	"fmt"
	"testing"
)

func TestNormalizeMultipleChoice(t *testing.T) {
	tests := []struct {
		name     string
		options  []any
		declared any
		wantID   string
		wantText string
		issue    bool
	}{
		{"label prefix", []any{"A) 3", "B) 4", "C) 5"}, "B", "b", "4", false},
		{"label with text", []any{"A) 3", "B) 4", "C) 5"}, "c) 5", "c", "5", false},
		{"text equality", []any{"3", "4", "5"}, "4", "b", "4", false},
		{"text equality ignores case", []any{"Paris", "Rome"}, "rome", "b", "Rome", false},
		{"numeric declared", []any{"3", "4", "5"}, 5.0, "c", "5", false},
		{"containment", []any{"It is 12 cm", "15 cm"}, "12", "a", "It is 12 cm", false},
		{"equality beats earlier containment", []any{"100", "10"}, "10", "b", "10", false},
		{"unlabeled letter uses assigned id", []any{"North", "South"}, "b", "b", "South", false},
		{"no match defaults to first", []any{"x", "y"}, "z", "a", "x", true},
		{"object options", []any{map[string]any{"text": "7"}, map[string]any{"text": "8"}}, "8", "b", "8", false},
		{"parenthesised label", []any{"(a) 3", "(b) 4"}, "b", "b", "4", false},
		{"dotted label", []any{"A. x", "B. y"}, "A", "a", "x", false},
		{"function notation kept whole", []any{"f(x) = x + 1", "f(x) = 2x"}, "f(x) = 2x", "b", "f(x) = 2x", false},
		{"interval kept whole", []any{"(2, 3)", "[2, 3]"}, "(2, 3)", "a", "(2, 3)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, issues, err := Normalize(map[string]any{
				"type":           "multiple_choice",
				"question_text":  "Pick one",
				"options":        tt.options,
				"correct_answer": tt.declared,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			mc := q.MultipleChoice
			if mc.CorrectOptionID != tt.wantID {
				t.Errorf("correct id = %q, want %q", mc.CorrectOptionID, tt.wantID)
			}
			for i, o := range mc.Options {
				if o.ID != optionID(i) {
					t.Errorf("option %d id = %q", i, o.ID)
				}
				if o.IsCorrect != (o.ID == tt.wantID) {
					t.Errorf("option %q is_correct = %v", o.ID, o.IsCorrect)
				}
				if o.ID == tt.wantID && o.Text != tt.wantText {
					t.Errorf("correct text = %q, want %q", o.Text, tt.wantText)
				}
			}
			if (len(issues) > 0) != tt.issue {
				t.Errorf("issues = %v, want issue=%v", issues, tt.issue)
			}
		})
	}
}

func TestNormalizeMultipleChoiceOptionTextSurvives(t *testing.T) {
	q, _, err := Normalize(map[string]any{
		"type":           "multiple_choice",
		"question_text":  "Which function doubles x?",
		"options":        []any{"f(x) = x + 1", "f(x) = 2x", "(2, 3)"},
		"correct_answer": "f(x) = 2x",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"f(x) = x + 1", "f(x) = 2x", "(2, 3)"}
	for i, o := range q.MultipleChoice.Options {
		if o.Text != want[i] {
			t.Errorf("option %s text = %q, want %q", o.ID, o.Text, want[i])
		}
	}
}

func TestNormalizeMultipleChoiceTooManyOptions(t *testing.T) {
	opts := make([]any, 30)
	for i := range opts {
		opts[i] = fmt.Sprintf("option %d", i+1)
	}
	q, issues, err := Normalize(map[string]any{
		"type":           "multiple_choice",
		"question_text":  "Pick one",
		"options":        opts,
		"correct_answer": "option 2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mc := q.MultipleChoice
	if len(mc.Options) != 26 {
		t.Fatalf("options = %d, want 26", len(mc.Options))
	}
	if last := mc.Options[25].ID; last != "z" {
		t.Errorf("last id = %q, want z", last)
	}
	if mc.CorrectOptionID != "b" {
		t.Errorf("correct id = %q", mc.CorrectOptionID)
	}
	if len(issues) == 0 {
		t.Error("expected an issue for dropped options")
	}
}

func TestNormalizeMultipleChoiceNoOptions(t *testing.T) {
	_, _, err := Normalize(map[string]any{"type": "multiple_choice", "question_text": "?", "options": []any{}})
	var nerr *NormalizationError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NormalizationError, got %v", err)
	}
}

func TestNormalizeTrueFalse(t *testing.T) {
	tests := []struct {
		answer any
		want   bool
	}{
		{"true", true},
		{"Yes", true},
		{"T", true},
		{"false", false},
		{"no", false},
		{"1", false},
		{true, true},
		{false, false},
	}
	for _, tt := range tests {
		q, _, err := Normalize(map[string]any{"type": "true_false", "question_text": "2 is even", "correct_answer": tt.answer})
		if err != nil {
			t.Fatalf("%v: %v", tt.answer, err)
		}
		if q.TrueFalse.CorrectAnswer != tt.want {
			t.Errorf("answer %v: got %v, want %v", tt.answer, q.TrueFalse.CorrectAnswer, tt.want)
		}
		if q.TrueFalse.Statement != "2 is even" {
			t.Errorf("statement = %q", q.TrueFalse.Statement)
		}
	}
}

func TestNormalizeNumericParseFailureDefaultsToZero(t *testing.T) {
	q, issues, err := Normalize(map[string]any{"type": "numeric", "question_text": "How many?", "correct_answer": "about six"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Numeric.CorrectAnswer != 0 {
		t.Errorf("target = %v, want 0", q.Numeric.CorrectAnswer)
	}
	if q.Numeric.Tolerance != DefaultTolerance {
		t.Errorf("tolerance = %v", q.Numeric.Tolerance)
	}
	if len(issues) != 1 || issues[0].Field != "correct_answer" {
		t.Errorf("issues = %v", issues)
	}
}

func TestNormalizeEquation(t *testing.T) {
	q, _, err := Normalize(map[string]any{
		"type":           "equation",
		"question_text":  "Solve for x",
		"equation":       "2x + 3 = 11",
		"correct_answer": "4",
		"solution_steps": []any{"2x = 8", "x = 4"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eq := q.Equation
	if eq.CorrectAnswer != 4 || eq.Variable != "x" || eq.Equation != "2x + 3 = 11" || len(eq.SolutionSteps) != 2 {
		t.Errorf("equation = %+v", eq)
	}
}

func TestNormalizeFillBlank(t *testing.T) {
	tests := []struct {
		name   string
		answer any
		want   []string
	}{
		{"single string", "seven", []string{"seven"}},
		{"list", []any{"7", " seven ", ""}, []string{"7", "seven"}},
		{"number", 7.0, []string{"7"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _, err := Normalize(map[string]any{"type": "fill_blank", "question_text": "3 + 4 = __", "correct_answer": tt.answer})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := q.FillBlank.CorrectAnswers
			if len(got) != len(tt.want) {
				t.Fatalf("answers = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("answers[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}

	q, _, err := Normalize(map[string]any{
		"type":            "fill_blank",
		"question_text":   "The capital of France is __",
		"correct_answers": []any{},
		"correct_answer":  "Paris",
	})
	if err != nil {
		t.Fatalf("empty correct_answers: %v", err)
	}
	if got := q.FillBlank.CorrectAnswers; len(got) != 1 || got[0] != "Paris" {
		t.Errorf("answers = %v, want [Paris]", got)
	}

	_, _, err = Normalize(map[string]any{"type": "fill_blank", "question_text": "__", "correct_answer": ""})
	if err == nil {
		t.Error("expected error for fill blank without answers")
	}
}

func TestNormalizeUnknownTypeIsShortAnswer(t *testing.T) {
	q, issues, err := Normalize(map[string]any{"type": "essay", "question_text": "Why is the sky blue?", "correct_answer": "Scattering"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Type != TypeShortAnswer || q.ShortAnswer.SampleAnswer != "Scattering" {
		t.Errorf("got %+v", q)
	}
	if q.ShortAnswer.MaxLength != DefaultShortAnswerLen {
		t.Errorf("max length = %d", q.ShortAnswer.MaxLength)
	}
	if len(issues) == 0 {
		t.Error("expected an issue for the unknown type")
	}
}

func TestNormalizeAbsentTypeIsShortAnswer(t *testing.T) {
	q, issues, err := Normalize(map[string]any{"question_text": "Explain fractions"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Type != TypeShortAnswer {
		t.Errorf("type = %q", q.Type)
	}
	if len(issues) != 0 {
		t.Errorf("absent type should not be an issue: %v", issues)
	}
}

func TestNormalizeMatchPairs(t *testing.T) {
	q, _, err := Normalize(map[string]any{
		"type":        "match_pairs",
		"instruction": "Match the shapes",
		"pairs":       map[string]any{"triangle": "3 sides", "square": "4 sides"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pairs := q.MatchPairs.Pairs
	if len(pairs) != 2 || pairs[0].Left != "square" || pairs[0].ID != "p1" || pairs[1].Left != "triangle" {
		t.Errorf("pairs = %+v", pairs)
	}

	q, _, err = Normalize(map[string]any{
		"type":          "match_pairs",
		"question_text": "Match",
		"pairs":         []any{"1/2 - 0.5", map[string]any{"left": "1/4", "right": "0.25"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.MatchPairs.Pairs) != 2 || q.MatchPairs.Pairs[0].Right != "0.5" {
		t.Errorf("pairs = %+v", q.MatchPairs.Pairs)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	q, _, err := Normalize(map[string]any{"type": "numeric", "question_text": "2+2", "correct_answer": 4.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Difficulty != DifficultyMedium || q.ConceptTested != DefaultConcept || len(q.ID) != 8 {
		t.Errorf("defaults = %+v", q)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	raw := map[string]any{"type": "multiple_choice", "question_text": "Pick", "options": []any{"A) 1", "B) 2"}, "correct_answer": "B"}
	a, _, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != b.ID || a.MultipleChoice.CorrectOptionID != b.MultipleChoice.CorrectOptionID {
		t.Errorf("normalization differs: %+v vs %+v", a, b)
	}
}

func TestNormalizeRejectsEmpty(t *testing.T) {
	if _, _, err := Normalize(nil); err == nil {
		t.Error("expected error for nil payload")
	}
	if _, _, err := Normalize(map[string]any{"type": "numeric", "correct_answer": 3.0}); err == nil {
		t.Error("expected error for missing question text")
	}
}

func TestValidateRejectsAmbiguousMultipleChoice(t *testing.T) {
	q := &Question{
		Type: TypeMultipleChoice,
		MultipleChoice: &MultipleChoice{
			Text:            "?",
			Options:         []Option{{ID: "a", IsCorrect: true}, {ID: "b", IsCorrect: true}},
			CorrectOptionID: "a",
		},
	}
	if err := q.Validate(); !errors.Is(err, ErrNoCorrectAnswer) {
		t.Errorf("err = %v, want ErrNoCorrectAnswer", err)
	}

	q = &Question{Type: TypeNumeric, TrueFalse: &TrueFalse{}}
	if err := q.Validate(); !errors.Is(err, ErrVariantMismatch) {
		t.Errorf("err = %v, want ErrVariantMismatch", err)
	}
}
