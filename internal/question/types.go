package question

import (
	"errors"
	"fmt"
)

// Type identifies the question variant.
type Type string

const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeTrueFalse      Type = "true_false"
	TypeFillBlank      Type = "fill_blank"
	TypeShortAnswer    Type = "short_answer"
	TypeNumeric        Type = "numeric"
	TypeEquation       Type = "equation"
	TypeMatchPairs     Type = "match_pairs"
)

// AllTypes lists every supported variant.
var AllTypes = []Type{
	TypeMultipleChoice, TypeTrueFalse, TypeFillBlank, TypeShortAnswer,
	TypeNumeric, TypeEquation, TypeMatchPairs,
}

// Objective reports whether answers of this type are checked
// deterministically without consulting the reasoning service.
func (t Type) Objective() bool {
	return t != TypeShortAnswer
}

func (t Type) valid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Difficulty is one of easy, medium, hard.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

const (
	DefaultTolerance      = 0.01
	DefaultShortAnswerLen = 500
	DefaultVariable       = "x"
	DefaultConcept        = "general"
)

// Question is a tagged union: Type selects which one of the variant
// payloads is set. Validate enforces that exactly that payload is present.
type Question struct {
	ID            string     `json:"question_id"`
	Type          Type       `json:"type"`
	Difficulty    Difficulty `json:"difficulty"`
	ConceptTested string     `json:"concept_tested"`
	Hint          string     `json:"hint,omitempty"`
	Explanation   string     `json:"explanation,omitempty"`

	MultipleChoice *MultipleChoice `json:"multiple_choice,omitempty"`
	TrueFalse      *TrueFalse      `json:"true_false,omitempty"`
	FillBlank      *FillBlank      `json:"fill_blank,omitempty"`
	ShortAnswer    *ShortAnswer    `json:"short_answer,omitempty"`
	Numeric        *Numeric        `json:"numeric,omitempty"`
	Equation       *Equation       `json:"equation,omitempty"`
	MatchPairs     *MatchPairs     `json:"match_pairs,omitempty"`
}

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type MultipleChoice struct {
	Text            string   `json:"question_text"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correct_option_id"`
}

type TrueFalse struct {
	Statement     string `json:"statement"`
	CorrectAnswer bool   `json:"correct_answer"`
}

type FillBlank struct {
	Text           string   `json:"question_text"`
	CorrectAnswers []string `json:"correct_answers"`
	CaseSensitive  bool     `json:"case_sensitive"`
}

type ShortAnswer struct {
	Text             string   `json:"question_text"`
	ExpectedKeywords []string `json:"expected_keywords"`
	SampleAnswer     string   `json:"sample_answer"`
	MaxLength        int      `json:"max_length"`
}

type Numeric struct {
	Text          string  `json:"question_text"`
	CorrectAnswer float64 `json:"correct_answer"`
	Tolerance     float64 `json:"tolerance"`
	Unit          string  `json:"unit,omitempty"`
}

type Equation struct {
	Text          string   `json:"question_text"`
	Equation      string   `json:"equation"`
	Variable      string   `json:"variable"`
	CorrectAnswer float64  `json:"correct_answer"`
	Tolerance     float64  `json:"tolerance"`
	ShowSteps     bool     `json:"show_steps"`
	SolutionSteps []string `json:"solution_steps,omitempty"`
}

type Pair struct {
	ID    string `json:"id"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

type MatchPairs struct {
	Instruction string `json:"instruction"`
	Pairs       []Pair `json:"pairs"`
}

// Text returns the prompt shown to the student regardless of variant.
func (q *Question) Text() string {
	switch q.Type {
	case TypeMultipleChoice:
		if q.MultipleChoice != nil {
			return q.MultipleChoice.Text
		}
	case TypeTrueFalse:
		if q.TrueFalse != nil {
			return q.TrueFalse.Statement
		}
	case TypeFillBlank:
		if q.FillBlank != nil {
			return q.FillBlank.Text
		}
	case TypeShortAnswer:
		if q.ShortAnswer != nil {
			return q.ShortAnswer.Text
		}
	case TypeNumeric:
		if q.Numeric != nil {
			return q.Numeric.Text
		}
	case TypeEquation:
		if q.Equation != nil {
			return q.Equation.Text
		}
	case TypeMatchPairs:
		if q.MatchPairs != nil {
			return q.MatchPairs.Instruction
		}
	}
	return ""
}

// CorrectAnswer returns the canonical correct answer as a string.
func (q *Question) CorrectAnswer() string {
	switch q.Type {
	case TypeMultipleChoice:
		return q.MultipleChoice.CorrectOptionID
	case TypeTrueFalse:
		return formatBool(q.TrueFalse.CorrectAnswer)
	case TypeFillBlank:
		if len(q.FillBlank.CorrectAnswers) > 0 {
			return q.FillBlank.CorrectAnswers[0]
		}
	case TypeShortAnswer:
		return q.ShortAnswer.SampleAnswer
	case TypeNumeric:
		return formatFloat(q.Numeric.CorrectAnswer)
	case TypeEquation:
		return formatFloat(q.Equation.CorrectAnswer)
	case TypeMatchPairs:
		return formatPairs(q.MatchPairs.Pairs)
	}
	return ""
}

var (
	ErrVariantMismatch = errors.New("question payload does not match its type")
	ErrNoCorrectAnswer = errors.New("question has no unambiguous correct answer")
)

// Validate checks the tagged-union invariant and that the question has a
// single, unambiguous correct answer.
func (q *Question) Validate() error {
	if !q.Type.valid() {
		return fmt.Errorf("unknown question type %q", q.Type)
	}

	set := 0
	for _, present := range []bool{
		q.MultipleChoice != nil, q.TrueFalse != nil, q.FillBlank != nil,
		q.ShortAnswer != nil, q.Numeric != nil, q.Equation != nil, q.MatchPairs != nil,
	} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: %d payloads set", ErrVariantMismatch, set)
	}

	switch q.Type {
	case TypeMultipleChoice:
		mc := q.MultipleChoice
		if mc == nil {
			return ErrVariantMismatch
		}
		correct := 0
		for _, o := range mc.Options {
			if o.IsCorrect {
				correct++
				if o.ID != mc.CorrectOptionID {
					return fmt.Errorf("%w: flagged option %q is not %q", ErrNoCorrectAnswer, o.ID, mc.CorrectOptionID)
				}
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: %d options flagged correct", ErrNoCorrectAnswer, correct)
		}
	case TypeTrueFalse:
		if q.TrueFalse == nil {
			return ErrVariantMismatch
		}
	case TypeFillBlank:
		if q.FillBlank == nil {
			return ErrVariantMismatch
		}
		if len(q.FillBlank.CorrectAnswers) == 0 {
			return ErrNoCorrectAnswer
		}
	case TypeShortAnswer:
		if q.ShortAnswer == nil {
			return ErrVariantMismatch
		}
	case TypeNumeric:
		if q.Numeric == nil {
			return ErrVariantMismatch
		}
	case TypeEquation:
		if q.Equation == nil {
			return ErrVariantMismatch
		}
	case TypeMatchPairs:
		if q.MatchPairs == nil {
			return ErrVariantMismatch
		}
		if len(q.MatchPairs.Pairs) == 0 {
			return ErrNoCorrectAnswer
		}
	}
	return nil
}
