package tutor

import (
	"sort"
	"time"

	"github.com/abhisek/buddy/internal/gems"
	"github.com/abhisek/buddy/internal/question"
	"github.com/abhisek/buddy/internal/session"
)

// StillThinking is shown when the reasoning service could not answer. The
// client is expected to retry the same action.
const StillThinking = "Hmm, I'm still thinking about that one! Give me a moment and try again."

const genericError = "Oops, something went wrong on my side. Let's try that again."

// Response is the envelope every operation returns.
type Response struct {
	Success   bool                      `json:"success"`
	SessionID string                    `json:"session_id"`
	Phase     session.Phase             `json:"current_phase"`
	Display   []Display                 `json:"display"`
	Progress  *session.ProgressSnapshot `json:"progress,omitempty"`
	Timestamp time.Time                 `json:"timestamp"`
	Error     string                    `json:"error,omitempty"`
}

// DisplayType tags a display item.
type DisplayType string

const (
	DisplayMessage     DisplayType = "message"
	DisplayQuestion    DisplayType = "question"
	DisplayFeedback    DisplayType = "feedback"
	DisplayStudyPlan   DisplayType = "study_plan"
	DisplayProgress    DisplayType = "progress"
	DisplayCelebration DisplayType = "celebration"
	DisplaySummary     DisplayType = "session_summary"
)

// Display is one item for the client to render, in order. Exactly one of
// the payload fields matches Type.
type Display struct {
	Type DisplayType `json:"type"`

	Content       string `json:"content,omitempty"`
	Encouragement bool   `json:"is_encouragement,omitempty"`

	Question    *QuestionView             `json:"question,omitempty"`
	Feedback    *Feedback                 `json:"feedback,omitempty"`
	StudyPlan   *PlanView                 `json:"study_plan,omitempty"`
	Progress    *session.ProgressSnapshot `json:"progress,omitempty"`
	Celebration *Celebration              `json:"celebration,omitempty"`
	Summary     *SummaryView              `json:"session_summary,omitempty"`
}

func message(content string) Display {
	return Display{Type: DisplayMessage, Content: content}
}

func encouragement(content string) Display {
	return Display{Type: DisplayMessage, Content: content, Encouragement: true}
}

// QuestionView is the student-facing form of a question. It never carries
// the correct answer.
type QuestionView struct {
	QuestionID string              `json:"question_id"`
	Type       question.Type       `json:"type"`
	Text       string              `json:"question_text"`
	Difficulty question.Difficulty `json:"difficulty"`
	Options    []OptionView        `json:"options,omitempty"`
	Left       []string            `json:"left,omitempty"`
	Right      []string            `json:"right,omitempty"`
	Unit       string              `json:"unit,omitempty"`
	Hint       string              `json:"hint,omitempty"`

	ShowHintButton    bool `json:"show_hint_button"`
	AttemptsRemaining *int `json:"attempts_remaining,omitempty"`
}

type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func viewQuestion(q *question.Question) *QuestionView {
	v := &QuestionView{
		QuestionID:     q.ID,
		Type:           q.Type,
		Text:           q.Text(),
		Difficulty:     q.Difficulty,
		ShowHintButton: q.Hint != "",
	}
	switch {
	case q.MultipleChoice != nil:
		for _, o := range q.MultipleChoice.Options {
			v.Options = append(v.Options, OptionView{ID: o.ID, Text: o.Text})
		}
	case q.TrueFalse != nil:
		v.Options = []OptionView{{ID: "true", Text: "True"}, {ID: "false", Text: "False"}}
	case q.Numeric != nil:
		v.Unit = q.Numeric.Unit
	case q.MatchPairs != nil:
		for _, p := range q.MatchPairs.Pairs {
			v.Left = append(v.Left, p.Left)
			v.Right = append(v.Right, p.Right)
		}
		// the right column must not line up with the answers
		sort.Strings(v.Right)
	}
	return v
}

func questionItem(q *question.Question) Display {
	return Display{Type: DisplayQuestion, Question: viewQuestion(q)}
}

// practiceItem is a question shown during the learning phases, where the
// attempt budget of the concept is visible.
func practiceItem(q *question.Question, c *session.ConceptPlan, maxAttempts int) Display {
	d := questionItem(q)
	d.Question.ShowHintButton = true
	remaining := max(0, maxAttempts-c.Attempts)
	d.Question.AttemptsRemaining = &remaining
	return d
}

// Feedback is the verdict on a submitted answer.
type Feedback struct {
	QuestionID    string  `json:"question_id"`
	IsCorrect     bool    `json:"is_correct"`
	Credit        float64 `json:"partial_credit"`
	Message       string  `json:"message"`
	CorrectAnswer string  `json:"correct_answer,omitempty"`
	Explanation   string  `json:"explanation,omitempty"`
	XPEarned      int     `json:"xp_earned"`
	NextAction    string  `json:"next_action,omitempty"`
	MistakeType   string  `json:"mistake_type,omitempty"`
}

// PlanView lists the concepts of a study plan.
type PlanView struct {
	TotalConcepts        int           `json:"total_concepts"`
	EstimatedTimeMinutes int           `json:"estimated_time_minutes"`
	Concepts             []ConceptView `json:"concepts"`
}

type ConceptView struct {
	ConceptID        string `json:"concept_id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Difficulty       string `json:"difficulty"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Status           string `json:"status"`
}

func viewPlan(p *session.StudyPlan) *PlanView {
	v := &PlanView{
		TotalConcepts:        p.TotalConcepts,
		EstimatedTimeMinutes: p.EstimatedTimeMinutes,
		Concepts:             make([]ConceptView, 0, len(p.Concepts)),
	}
	for _, c := range p.Concepts {
		v.Concepts = append(v.Concepts, ConceptView{
			ConceptID:        c.ConceptID,
			Name:             c.Name,
			Description:      c.Description,
			Difficulty:       c.Difficulty,
			EstimatedMinutes: c.EstimatedMinutes,
			Status:           string(c.Status),
		})
	}
	return v
}

// Celebration marks a milestone.
type Celebration struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	XP      int    `json:"xp"`
}

// SummaryView is the end-of-session report.
type SummaryView struct {
	DurationMinutes    int      `json:"duration_minutes"`
	ConceptsCovered    int      `json:"concepts_covered"`
	ConceptsMastered   int      `json:"concepts_mastered"`
	Accuracy           float64  `json:"accuracy"`
	XPEarned           int      `json:"xp_earned"`
	Highlights         []string `json:"highlights"`
	AreasToPractice    []string `json:"areas_to_practice"`
	NextSessionPreview string   `json:"next_session_preview"`

	Badge string       `json:"badge_earned,omitempty"`
	Gems  []gems.Award `json:"gems_earned"`
}

func viewSummary(s *session.Session) *SummaryView {
	v := &SummaryView{
		DurationMinutes:  s.Stats.DurationMinutes,
		ConceptsCovered:  s.Stats.ConceptsTaught,
		ConceptsMastered: s.Stats.ConceptsMastered,
		Accuracy:         s.Stats.AccuracyRate,
		XPEarned:         s.Stats.XPEarned,
	}
	if s.Summary != nil {
		v.Highlights = s.Summary.Highlights
		v.AreasToPractice = s.Summary.AreasToPractice
		v.NextSessionPreview = s.Summary.NextSessionPreview
		v.Badge = s.Summary.XP.BadgeEarned
	}
	v.Gems = sessionGems(s)
	if v.Gems == nil {
		v.Gems = []gems.Award{}
	}
	if v.Highlights == nil {
		v.Highlights = []string{}
	}
	if v.AreasToPractice == nil {
		v.AreasToPractice = []string{}
	}
	return v
}

func (svc *Service) respond(s *session.Session, items []Display) *Response {
	prog := s.Progress()
	if items == nil {
		items = []Display{}
	}
	return &Response{
		Success:   true,
		SessionID: s.ID,
		Phase:     s.Phase,
		Display:   items,
		Progress:  &prog,
		Timestamp: svc.now(),
	}
}

// failure builds the envelope for a failed operation. phase is the phase
// the session was left in, empty when the session could not be loaded.
func (svc *Service) failure(id string, phase session.Phase, err error) *Response {
	r := &Response{
		SessionID: id,
		Phase:     phase,
		Display:   []Display{},
		Timestamp: svc.now(),
		Error:     err.Error(),
	}
	switch KindOf(err) {
	case KindServiceUnavailable:
		r.Display = append(r.Display, message(StillThinking))
	case KindInternal:
		r.Error = genericError
	}
	return r
}
