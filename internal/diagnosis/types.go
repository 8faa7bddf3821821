package diagnosis

import (
	"time"

	"github.com/abhisek/buddy/internal/question"
)

// Status is the lifecycle state of the diagnostic phase.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
)

// Level is the overall level assigned by the assessment.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Question records one diagnostic question and the student's response.
type Question struct {
	QuestionID       string  `json:"question_id"`
	QuestionText     string  `json:"question_text"`
	QuestionType     string  `json:"question_type"`
	Difficulty       string  `json:"difficulty"`
	ConceptTested    string  `json:"concept_tested"`
	StudentAnswer    *string `json:"student_answer"`
	CorrectAnswer    string  `json:"correct_answer"`
	IsCorrect        *bool   `json:"is_correct"`
	TimeTakenSeconds *int    `json:"time_taken_seconds"`
	HintsUsed        int     `json:"hints_used"`
	MistakeAnalysis  string  `json:"mistake_analysis,omitempty"`

	// Question is the typed question as normalized when it was asked.
	Question *question.Question `json:"question,omitempty"`
}

// Answered reports whether a response has been recorded.
func (q *Question) Answered() bool {
	return q.IsCorrect != nil
}

// Misconception is a misunderstanding identified during the diagnostic.
type Misconception struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	Severity       string `json:"severity"` // low, medium, high
	RelatedConcept string `json:"related_concept"`
}

// Assessment is the immutable result of a completed diagnostic.
type Assessment struct {
	OverallLevel            Level           `json:"overall_level"`
	Score                   float64         `json:"score"`
	ConceptsKnown           []string        `json:"concepts_known"`
	ConceptsWeak            []string        `json:"concepts_weak"`
	Misconceptions          []Misconception `json:"misconceptions"`
	RecommendedStartConcept string          `json:"recommended_start_concept"`
	PersonalizedNote        string          `json:"personalized_note"`
}

// Phase holds the full diagnostic record of a session.
type Phase struct {
	Status               Status      `json:"status"`
	StartedAt            *time.Time  `json:"started_at"`
	CompletedAt          *time.Time  `json:"completed_at"`
	Questions            []*Question `json:"questions"`
	CurrentQuestionIndex int         `json:"current_question_index"`
	Assessment           *Assessment `json:"assessment"`
}

// NewPhase returns an empty, pending diagnostic phase.
func NewPhase() Phase {
	return Phase{Status: StatusPending, Questions: []*Question{}}
}

// Pending returns the last asked question when it has not been answered yet.
func (p *Phase) Pending() *Question {
	if len(p.Questions) == 0 {
		return nil
	}
	last := p.Questions[len(p.Questions)-1]
	if last.Answered() {
		return nil
	}
	return last
}

// Find returns the question with the given id, or nil.
func (p *Phase) Find(id string) *Question {
	for _, q := range p.Questions {
		if q.QuestionID == id {
			return q
		}
	}
	return nil
}

// Counts returns the number of answered and correctly answered questions.
func (p *Phase) Counts() (answered, correct int) {
	for _, q := range p.Questions {
		if !q.Answered() {
			continue
		}
		answered++
		if *q.IsCorrect {
			correct++
		}
	}
	return answered, correct
}

// Score is the running accuracy over answered questions, 0 when none.
func (p *Phase) Score() float64 {
	answered, correct := p.Counts()
	if answered == 0 {
		return 0
	}
	return float64(correct) / float64(answered)
}
