package diagnosis

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/buddy/internal/question"
)

var now = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func numeric(id string, target float64) *question.Question {
	return &question.Question{
		ID:            id,
		Type:          question.TypeNumeric,
		Difficulty:    question.DifficultyMedium,
		ConceptTested: "fractions",
		Numeric:       &question.Numeric{Text: "What is it?", CorrectAnswer: target, Tolerance: 0.01},
	}
}

func answer(t *testing.T, l *Loop, p *Phase, sub string) {
	t.Helper()
	dq, err := l.Resolve(p, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := l.Answer(dq, sub, question.Evaluate(dq.Question, sub), nil); err != nil {
		t.Fatalf("answer: %v", err)
	}
}

func TestLoopNeverExceedsBudget(t *testing.T) {
	l := NewLoop(0)
	p := NewPhase()
	l.Begin(&p, now)

	for i := range 10 {
		_, err := l.Ask(&p, numeric(fmt.Sprintf("q%d", i), 1))
		if i < DefaultMaxQuestions {
			if err != nil {
				t.Fatalf("ask %d: %v", i, err)
			}
			answer(t, l, &p, "1")
			continue
		}
		if !errors.Is(err, ErrBudgetExhausted) {
			t.Fatalf("ask %d: err = %v, want ErrBudgetExhausted", i, err)
		}
	}
	if len(p.Questions) != DefaultMaxQuestions {
		t.Errorf("recorded %d questions, want %d", len(p.Questions), DefaultMaxQuestions)
	}
	if !l.Done(&p, false) {
		t.Error("loop should be done at the budget")
	}
}

func TestLoopDoneOnSignal(t *testing.T) {
	l := NewLoop(6)
	p := NewPhase()
	l.Begin(&p, now)
	if _, err := l.Ask(&p, numeric("q1", 1)); err != nil {
		t.Fatal(err)
	}
	if l.Done(&p, false) {
		t.Error("not done after one question without a signal")
	}
	if !l.Done(&p, true) {
		t.Error("signal should terminate the loop")
	}
}

func TestLoopAskRequiresAnswer(t *testing.T) {
	l := NewLoop(6)
	p := NewPhase()
	if _, err := l.Ask(&p, numeric("q1", 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Ask(&p, numeric("q2", 1)); !errors.Is(err, ErrQuestionPending) {
		t.Errorf("err = %v, want ErrQuestionPending", err)
	}
}

func TestLoopResolve(t *testing.T) {
	l := NewLoop(6)
	p := NewPhase()
	if _, err := l.Resolve(&p, ""); !errors.Is(err, ErrNoPendingQuestion) {
		t.Errorf("err = %v", err)
	}
	if _, err := l.Ask(&p, numeric("q1", 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Resolve(&p, "nope"); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("err = %v", err)
	}
	answer(t, l, &p, "1")
	if _, err := l.Resolve(&p, "q1"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("err = %v", err)
	}
}

func TestLoopDuplicateIDIsRenamed(t *testing.T) {
	l := NewLoop(6)
	p := NewPhase()
	l.Ask(&p, numeric("q", 1))
	answer(t, l, &p, "1")
	dq, err := l.Ask(&p, numeric("q", 2))
	if err != nil {
		t.Fatal(err)
	}
	if dq.QuestionID == "q" || dq.Question.ID != dq.QuestionID {
		t.Errorf("duplicate id not renamed: %q / %q", dq.QuestionID, dq.Question.ID)
	}
}

func TestCompleteUsesRecordedAccuracy(t *testing.T) {
	l := NewLoop(6)
	p := NewPhase()
	l.Begin(&p, now)

	for i, sub := range []string{"1", "0", "1", "1"} {
		if _, err := l.Ask(&p, numeric(fmt.Sprintf("q%d", i), 1)); err != nil {
			t.Fatal(err)
		}
		answer(t, l, &p, sub)
	}

	a, err := l.Complete(&p, Proposal{
		OverallLevel:   "expert",
		Misconceptions: []string{"adds denominators", "ignores signs"},
	}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if a.Score != 0.75 {
		t.Errorf("score = %v, want 0.75", a.Score)
	}
	if a.OverallLevel != LevelIntermediate {
		t.Errorf("level = %q, want derived intermediate", a.OverallLevel)
	}
	if len(a.Misconceptions) != 2 || a.Misconceptions[1].ID != "misc_1" || a.Misconceptions[0].Severity != "medium" {
		t.Errorf("misconceptions = %+v", a.Misconceptions)
	}
	if a.RecommendedStartConcept != "basics" || a.PersonalizedNote != "Assessment complete" {
		t.Errorf("defaults = %+v", a)
	}
	if p.Status != StatusCompleted || p.CompletedAt == nil {
		t.Errorf("phase = %+v", p)
	}

	if _, err := l.Complete(&p, Proposal{}, now); !errors.Is(err, ErrAlreadyAssessed) {
		t.Errorf("second complete err = %v", err)
	}
	if p.Assessment != a {
		t.Error("assessment replaced")
	}
}

func TestScoreEmpty(t *testing.T) {
	p := NewPhase()
	if p.Score() != 0 {
		t.Errorf("score = %v", p.Score())
	}
}
