package question

import (
	"strings"
)

// ProvisionalCredit is the placeholder credit given to answers that need
// the reasoning service to judge them.
const ProvisionalCredit = 0.5

// Evaluation is the outcome of checking one submitted answer.
type Evaluation struct {
	IsCorrect     bool    `json:"is_correct"`
	Credit        float64 `json:"partial_credit"`
	CorrectAnswer string  `json:"correct_answer"`

	// Deferred is set when the verdict is provisional and must be
	// replaced by the reasoning service's judgement.
	Deferred bool `json:"deferred,omitempty"`
}

// Evaluate checks a submitted answer against the question. It is pure and
// deterministic for every objective type; short answers get a provisional
// verdict with Deferred set.
func Evaluate(q *Question, submitted any) Evaluation {
	switch q.Type {
	case TypeMultipleChoice:
		return evalMultipleChoice(q.MultipleChoice, submitted)
	case TypeTrueFalse:
		return evalTrueFalse(q.TrueFalse, submitted)
	case TypeNumeric:
		return evalTolerance(submitted, q.Numeric.CorrectAnswer, q.Numeric.Tolerance)
	case TypeEquation:
		return evalTolerance(submitted, q.Equation.CorrectAnswer, q.Equation.Tolerance)
	case TypeFillBlank:
		return evalFillBlank(q.FillBlank, submitted)
	case TypeMatchPairs:
		return evalMatchPairs(q.MatchPairs, submitted)
	default:
		sample := ""
		if q.ShortAnswer != nil {
			sample = q.ShortAnswer.SampleAnswer
		}
		return Evaluation{IsCorrect: true, Credit: ProvisionalCredit, CorrectAnswer: sample, Deferred: true}
	}
}

// Override replaces a deferred verdict with an external judgement. Credit
// is clamped to [0, 1]. Non-deferred evaluations are returned unchanged.
func (e Evaluation) Override(isCorrect bool, credit float64) Evaluation {
	if !e.Deferred {
		return e
	}
	e.IsCorrect = isCorrect
	e.Credit = clamp01(credit)
	e.Deferred = false
	return e
}

func verdict(ok bool, canonical string) Evaluation {
	if ok {
		return Evaluation{IsCorrect: true, Credit: 1, CorrectAnswer: canonical}
	}
	return Evaluation{CorrectAnswer: canonical}
}

func evalMultipleChoice(mc *MultipleChoice, submitted any) Evaluation {
	got := strings.TrimSpace(stringify(submitted))
	return verdict(strings.EqualFold(got, mc.CorrectOptionID), mc.CorrectOptionID)
}

func evalTrueFalse(tf *TrueFalse, submitted any) Evaluation {
	var got bool
	switch v := submitted.(type) {
	case bool:
		got = v
	default:
		got = truthy(stringify(v), true)
	}
	return verdict(got == tf.CorrectAnswer, formatBool(tf.CorrectAnswer))
}

func evalTolerance(submitted any, target, tolerance float64) Evaluation {
	canonical := formatFloat(target)
	got, ok := toFloat(submitted)
	if !ok {
		return verdict(false, canonical)
	}
	diff := got - target
	if diff < 0 {
		diff = -diff
	}
	return verdict(diff <= tolerance, canonical)
}

func evalFillBlank(fb *FillBlank, submitted any) Evaluation {
	got := strings.TrimSpace(stringify(submitted))
	for _, accepted := range fb.CorrectAnswers {
		want := strings.TrimSpace(accepted)
		if fb.CaseSensitive && got == want || !fb.CaseSensitive && strings.EqualFold(got, want) {
			return verdict(true, accepted)
		}
	}
	return verdict(false, fb.CorrectAnswers[0])
}

// evalMatchPairs accepts either an object keyed by left item (or pair id)
// or a list of {left, right} objects. Credit is the fraction matched.
func evalMatchPairs(mp *MatchPairs, submitted any) Evaluation {
	canonical := formatPairs(mp.Pairs)
	answers := map[string]string{}
	switch v := submitted.(type) {
	case map[string]any:
		for k, r := range v {
			answers[strings.ToLower(strings.TrimSpace(k))] = stringify(r)
		}
	case map[string]string:
		for k, r := range v {
			answers[strings.ToLower(strings.TrimSpace(k))] = r
		}
	case []any:
		for _, item := range v {
			if p, ok := item.(map[string]any); ok {
				answers[strings.ToLower(strings.TrimSpace(stringify(p["left"])))] = stringify(p["right"])
			}
		}
	case string:
		for _, part := range strings.Split(v, ";") {
			if left, right, ok := splitPair(part); ok {
				answers[strings.ToLower(left)] = right
			}
		}
	}
	if len(answers) == 0 {
		return verdict(false, canonical)
	}

	matched := 0
	for _, p := range mp.Pairs {
		got, ok := answers[strings.ToLower(p.Left)]
		if !ok {
			got, ok = answers[p.ID]
		}
		if ok && strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(p.Right)) {
			matched++
		}
	}
	credit := float64(matched) / float64(len(mp.Pairs))
	return Evaluation{IsCorrect: matched == len(mp.Pairs), Credit: credit, CorrectAnswer: canonical}
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
