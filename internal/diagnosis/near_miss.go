package diagnosis

import (
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/buddy/internal/question"
)

// NearMissRatio is the relative error under which a wrong numeric answer
// counts as a calculation slip.
const NearMissRatio = 0.1

// NearMissClassifier flags numeric answers that are close to the target
// or off only by sign.
type NearMissClassifier struct{}

func (c *NearMissClassifier) Name() string { return "near-miss" }

func (c *NearMissClassifier) Classify(input *ClassifyInput) (MistakeType, float64) {
	target, ok := numericTarget(input.Question)
	if !ok {
		return "", 0
	}
	got, err := strconv.ParseFloat(strings.TrimSpace(input.Answer), 64)
	if err != nil {
		return "", 0
	}
	if target != 0 && got == -target {
		return MistakeNearMiss, 0.7
	}
	if target != 0 && math.Abs(got-target)/math.Abs(target) < NearMissRatio {
		return MistakeNearMiss, 0.6
	}
	return "", 0
}

func numericTarget(q *question.Question) (float64, bool) {
	if q == nil {
		return 0, false
	}
	switch q.Type {
	case question.TypeNumeric:
		return q.Numeric.CorrectAnswer, true
	case question.TypeEquation:
		return q.Equation.CorrectAnswer, true
	}
	return 0, false
}
