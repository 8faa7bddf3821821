package diagnosis

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/buddy/internal/question"
)

// DefaultMaxQuestions is the diagnostic question budget.
const DefaultMaxQuestions = 6

var (
	ErrBudgetExhausted   = errors.New("diagnostic question budget exhausted")
	ErrAlreadyAssessed   = errors.New("diagnostic assessment already recorded")
	ErrQuestionPending   = errors.New("previous diagnostic question is still unanswered")
	ErrAlreadyAnswered   = errors.New("diagnostic question already answered")
	ErrUnknownQuestion   = errors.New("unknown diagnostic question")
	ErrNoPendingQuestion = errors.New("no diagnostic question awaiting an answer")
)

// Loop enforces the bounded diagnostic: at most MaxQuestions are ever
// recorded and the assessment is fixed exactly once.
type Loop struct {
	MaxQuestions int
}

// NewLoop returns a loop with the given budget, or the default when max <= 0.
func NewLoop(max int) *Loop {
	if max <= 0 {
		max = DefaultMaxQuestions
	}
	return &Loop{MaxQuestions: max}
}

// Begin marks the diagnostic as in progress.
func (l *Loop) Begin(p *Phase, now time.Time) {
	if p.Status == StatusPending || p.Status == "" {
		p.Status = StatusInProgress
	}
	if p.StartedAt == nil {
		p.StartedAt = &now
	}
}

// Remaining returns how many more questions may be asked.
func (l *Loop) Remaining(p *Phase) int {
	if r := l.MaxQuestions - len(p.Questions); r > 0 {
		return r
	}
	return 0
}

// Ask records a newly generated question.
func (l *Loop) Ask(p *Phase, q *question.Question) (*Question, error) {
	if p.Assessment != nil {
		return nil, ErrAlreadyAssessed
	}
	if p.Pending() != nil {
		return nil, ErrQuestionPending
	}
	if l.Remaining(p) == 0 {
		return nil, ErrBudgetExhausted
	}

	dq := &Question{
		QuestionID:    q.ID,
		QuestionText:  q.Text(),
		QuestionType:  string(q.Type),
		Difficulty:    string(q.Difficulty),
		ConceptTested: q.ConceptTested,
		CorrectAnswer: q.CorrectAnswer(),
		Question:      q,
	}
	if p.Find(dq.QuestionID) != nil {
		dq.QuestionID = fmt.Sprintf("%s-%d", dq.QuestionID, len(p.Questions)+1)
		q.ID = dq.QuestionID
	}
	p.Questions = append(p.Questions, dq)
	p.CurrentQuestionIndex = len(p.Questions) - 1
	return dq, nil
}

// Resolve finds the question a submission refers to: the named one, or the
// pending one when id is empty.
func (l *Loop) Resolve(p *Phase, id string) (*Question, error) {
	if id == "" {
		if q := p.Pending(); q != nil {
			return q, nil
		}
		return nil, ErrNoPendingQuestion
	}
	q := p.Find(id)
	if q == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	if q.Answered() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyAnswered, id)
	}
	return q, nil
}

// Answer records the evaluated response to q.
func (l *Loop) Answer(q *Question, answer string, eval question.Evaluation, timeTaken *int) error {
	if q.Answered() {
		return ErrAlreadyAnswered
	}
	correct := eval.IsCorrect
	q.StudentAnswer = &answer
	q.IsCorrect = &correct
	q.TimeTakenSeconds = timeTaken
	if eval.CorrectAnswer != "" {
		q.CorrectAnswer = eval.CorrectAnswer
	}
	return nil
}

// Done reports whether the diagnostic should terminate: either the
// reasoning service signalled completion or the budget is used up.
func (l *Loop) Done(p *Phase, signal bool) bool {
	return signal || len(p.Questions) >= l.MaxQuestions
}

// Proposal is the assessment suggested by the reasoning service. Any score
// it proposes is ignored; the recorded accuracy is authoritative.
type Proposal struct {
	OverallLevel            string
	ConceptsKnown           []string
	ConceptsWeak            []string
	Misconceptions          []string
	RecommendedStartConcept string
	PersonalizedNote        string
}

// Complete fixes the assessment and closes the phase.
func (l *Loop) Complete(p *Phase, prop Proposal, now time.Time) (*Assessment, error) {
	if p.Assessment != nil {
		return nil, ErrAlreadyAssessed
	}

	score := p.Score()
	a := &Assessment{
		OverallLevel:            levelFor(prop.OverallLevel, score),
		Score:                   score,
		ConceptsKnown:           nonNil(prop.ConceptsKnown),
		ConceptsWeak:            nonNil(prop.ConceptsWeak),
		Misconceptions:          []Misconception{},
		RecommendedStartConcept: prop.RecommendedStartConcept,
		PersonalizedNote:        prop.PersonalizedNote,
	}
	for i, m := range prop.Misconceptions {
		a.Misconceptions = append(a.Misconceptions, Misconception{
			ID:             fmt.Sprintf("misc_%d", i),
			Description:    m,
			Severity:       "medium",
			RelatedConcept: "general",
		})
	}
	if a.RecommendedStartConcept == "" {
		a.RecommendedStartConcept = "basics"
	}
	if a.PersonalizedNote == "" {
		a.PersonalizedNote = "Assessment complete"
	}

	p.Assessment = a
	p.Status = StatusCompleted
	p.CompletedAt = &now
	return a, nil
}

// levelFor accepts the proposed level when it is recognised and otherwise
// derives one from the score.
func levelFor(proposed string, score float64) Level {
	switch l := Level(proposed); l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return l
	}
	switch {
	case score >= 0.8:
		return LevelAdvanced
	case score >= 0.5:
		return LevelIntermediate
	}
	return LevelBeginner
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
