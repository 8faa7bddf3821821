package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func numericQ(target float64) *Question {
	return &Question{Type: TypeNumeric, Numeric: &Numeric{Text: "?", CorrectAnswer: target, Tolerance: DefaultTolerance}}
}

func TestEvaluateNumericTolerance(t *testing.T) {
	tests := []struct {
		submitted any
		want      bool
	}{
		{"4", true},
		{4.0, true},
		{"3.99", true},
		{"4.01", true},
		{"4.02", false},
		{"3.98", false},
		{" 4.005 ", true},
		{"four", false},
		{"", false},
		{nil, false},
	}
	for _, tt := range tests {
		got := Evaluate(numericQ(4), tt.submitted)
		if got.IsCorrect != tt.want {
			t.Errorf("Evaluate(4.0, %v) = %v, want %v", tt.submitted, got.IsCorrect, tt.want)
		}
		if got.CorrectAnswer != "4" {
			t.Errorf("canonical = %q, want 4", got.CorrectAnswer)
		}
		wantCredit := 0.0
		if tt.want {
			wantCredit = 1
		}
		if got.Credit != wantCredit {
			t.Errorf("credit = %v, want %v", got.Credit, wantCredit)
		}
	}
}

func TestEvaluateEquation(t *testing.T) {
	q := &Question{Type: TypeEquation, Equation: &Equation{Text: "2x=8", CorrectAnswer: 4, Tolerance: 0.5}}
	assert.True(t, Evaluate(q, "4.4").IsCorrect)
	assert.False(t, Evaluate(q, "x=4").IsCorrect)
}

func TestEvaluateMultipleChoice(t *testing.T) {
	q := &Question{Type: TypeMultipleChoice, MultipleChoice: &MultipleChoice{
		Text:            "?",
		Options:         []Option{{ID: "a", Text: "3"}, {ID: "b", Text: "4", IsCorrect: true}},
		CorrectOptionID: "b",
	}}

	for _, sub := range []any{"b", "B", " b "} {
		got := Evaluate(q, sub)
		if !got.IsCorrect || got.Credit != 1 || got.CorrectAnswer != "b" {
			t.Errorf("Evaluate(%v) = %+v", sub, got)
		}
	}
	got := Evaluate(q, "4")
	if got.IsCorrect || got.Credit != 0 {
		t.Errorf("option text must not be accepted as the id: %+v", got)
	}
}

func TestEvaluateTrueFalse(t *testing.T) {
	q := &Question{Type: TypeTrueFalse, TrueFalse: &TrueFalse{Statement: "s", CorrectAnswer: true}}
	for _, sub := range []any{"true", "Yes", "t", "1", true} {
		if !Evaluate(q, sub).IsCorrect {
			t.Errorf("%v should be truthy", sub)
		}
	}
	for _, sub := range []any{"false", "no", "0", "maybe", false, nil} {
		if Evaluate(q, sub).IsCorrect {
			t.Errorf("%v should be falsy", sub)
		}
	}
	if Evaluate(q, "no").CorrectAnswer != "true" {
		t.Error("canonical answer should be true")
	}
}

func TestEvaluateFillBlank(t *testing.T) {
	q := &Question{Type: TypeFillBlank, FillBlank: &FillBlank{Text: "_", CorrectAnswers: []string{"seven", "7"}}}

	got := Evaluate(q, " SEVEN ")
	assert.True(t, got.IsCorrect)
	assert.Equal(t, "seven", got.CorrectAnswer)

	got = Evaluate(q, "7")
	assert.True(t, got.IsCorrect)
	assert.Equal(t, "7", got.CorrectAnswer)

	got = Evaluate(q, "eight")
	assert.False(t, got.IsCorrect)
	assert.Equal(t, "seven", got.CorrectAnswer)

	q.FillBlank.CaseSensitive = true
	assert.False(t, Evaluate(q, "Seven").IsCorrect)
}

func TestEvaluateShortAnswerIsDeferred(t *testing.T) {
	q := &Question{Type: TypeShortAnswer, ShortAnswer: &ShortAnswer{Text: "Why?", SampleAnswer: "Because"}}
	got := Evaluate(q, "anything at all")
	if !got.IsCorrect || got.Credit != ProvisionalCredit || got.CorrectAnswer != "Because" || !got.Deferred {
		t.Errorf("got %+v", got)
	}

	over := got.Override(false, 1.7)
	if over.IsCorrect || over.Credit != 1 || over.Deferred {
		t.Errorf("override = %+v", over)
	}
	if over := got.Override(true, -3); over.Credit != 0 {
		t.Errorf("credit not clamped: %+v", over)
	}
}

func TestOverrideIgnoresDeterministicVerdict(t *testing.T) {
	got := Evaluate(numericQ(4), "4")
	over := got.Override(false, 0)
	if !over.IsCorrect || over.Credit != 1 {
		t.Errorf("objective verdict must not be overridden: %+v", over)
	}
}

func TestEvaluateMatchPairs(t *testing.T) {
	q := &Question{Type: TypeMatchPairs, MatchPairs: &MatchPairs{
		Instruction: "Match",
		Pairs:       []Pair{{ID: "p1", Left: "1/2", Right: "0.5"}, {ID: "p2", Left: "1/4", Right: "0.25"}},
	}}

	full := Evaluate(q, map[string]any{"1/2": "0.5", "1/4": "0.25"})
	assert.True(t, full.IsCorrect)
	assert.Equal(t, 1.0, full.Credit)

	half := Evaluate(q, []any{map[string]any{"left": "1/2", "right": "0.5"}, map[string]any{"left": "1/4", "right": "0.5"}})
	assert.False(t, half.IsCorrect)
	assert.Equal(t, 0.5, half.Credit)

	byID := Evaluate(q, map[string]any{"p1": "0.5", "p2": "0.25"})
	assert.True(t, byID.IsCorrect)

	text := Evaluate(q, "1/2 - 0.5; 1/4 - 0.25")
	assert.True(t, text.IsCorrect)

	assert.False(t, Evaluate(q, 42.0).IsCorrect)
	assert.Equal(t, "1/2 - 0.5; 1/4 - 0.25", full.CorrectAnswer)
}
