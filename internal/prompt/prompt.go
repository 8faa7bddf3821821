// Package prompt renders the system prompts sent to the reasoning service
// for each tutoring flow.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/buddy/internal/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

const (
	// RecentMessages is how many conversation turns are included.
	RecentMessages = 5

	// MessageClip is the longest a quoted conversation turn may be.
	MessageClip = 200
)

// styleDescriptions tell the model what each learning style looks like.
var styleDescriptions = map[session.LearningStyle]string{
	session.StyleVisual:     "diagrams, step-by-step visuals, 'imagine...' descriptions",
	session.StyleExamples:   "worked examples first, then practice, concrete numbers",
	session.StyleStepByStep: "numbered steps, one at a time, clear sequence",
	session.StyleAnalogy:    "comparisons to familiar things, metaphors, real-world parallels",
	session.StyleFormal:     "definitions first, then rules, then examples",
}

// StyleDescription returns how a learning style should be applied.
func StyleDescription(s session.LearningStyle) string {
	if d, ok := styleDescriptions[s]; ok {
		return d
	}
	return styleDescriptions[session.StyleExamples]
}

// DiagnosticInput parameterizes the diagnostic question prompt.
type DiagnosticInput struct {
	Number int // 1-based question number
	Max    int
}

// DiagnosticEvalInput parameterizes the diagnostic evaluation prompt.
type DiagnosticEvalInput struct {
	QuestionText  string
	Answer        string
	CorrectAnswer string
	Concept       string
	Asked         int
	Max           int
}

// AnswerEvalInput parameterizes the practice answer evaluation prompt.
type AnswerEvalInput struct {
	QuestionText  string
	Answer        string
	CorrectAnswer string
	Attempt       int
	Hints         int
}

// ReteachInput parameterizes the reteach prompt.
type ReteachInput struct {
	Previous session.LearningStyle
	Approach session.LearningStyle
	Mistakes []string
}

// Diagnostic builds the prompt asking for the next diagnostic question.
func Diagnostic(s *session.Session, in DiagnosticInput) (string, error) {
	return render(s, "diagnostic", map[string]any{
		"Name":   s.Student.Name,
		"Topic":  topic(s),
		"Number": in.Number,
		"Max":    in.Max,
		"First":  in.Number <= 1,
	}, false)
}

// DiagnosticEvaluation builds the prompt judging a diagnostic answer.
func DiagnosticEvaluation(s *session.Session, in DiagnosticEvalInput) (string, error) {
	return render(s, "diagnostic_evaluation", map[string]any{
		"QuestionText":  in.QuestionText,
		"Answer":        in.Answer,
		"CorrectAnswer": in.CorrectAnswer,
		"Concept":       in.Concept,
		"Asked":         in.Asked,
		"Max":           in.Max,
		"NextNumber":    in.Asked + 1,
		"LastQuestion":  in.Max > 0 && in.Asked >= in.Max,
	}, true)
}

// StudyPlan builds the prompt asking for the study plan.
func StudyPlan(s *session.Session) (string, error) {
	data := map[string]any{
		"Level":          "beginner",
		"Score":          0,
		"Known":          "basic concepts",
		"Weak":           "to be determined",
		"Misconceptions": "none",
		"Chapter":        chapter(s),
	}
	if a := s.Diagnostic.Assessment; a != nil {
		misc := make([]string, 0, len(a.Misconceptions))
		for _, m := range a.Misconceptions {
			misc = append(misc, m.Description)
		}
		data["Level"] = a.OverallLevel
		data["Score"] = percent(a.Score)
		data["Known"] = joinOr(a.ConceptsKnown, "none yet")
		data["Weak"] = joinOr(a.ConceptsWeak, "none identified")
		data["Misconceptions"] = joinOr(misc, "none")
	}
	return render(s, "study_plan", data, false)
}

// Teaching builds the prompt teaching concept c.
func Teaching(s *session.Session, c *session.ConceptPlan) (string, error) {
	hook := c.RealWorldHook
	if hook == "" {
		hook = "everyday situations"
	}
	return render(s, "teaching", map[string]any{
		"Name":     s.Student.Name,
		"Concept":  c,
		"Approach": approach(s, c),
		"Hook":     hook,
	}, true)
}

// AnswerEvaluation builds the prompt judging a practice answer.
func AnswerEvaluation(s *session.Session, c *session.ConceptPlan, in AnswerEvalInput) (string, error) {
	return render(s, "answer_evaluation", map[string]any{
		"Concept":       c,
		"QuestionText":  in.QuestionText,
		"Answer":        in.Answer,
		"CorrectAnswer": in.CorrectAnswer,
		"Attempt":       in.Attempt,
		"Hints":         in.Hints,
		"NextNumber":    in.Attempt + 1,
	}, false)
}

// Assessment builds the mini-quiz prompt for concept c.
func Assessment(s *session.Session, c *session.ConceptPlan) (string, error) {
	return render(s, "assessment", map[string]any{
		"Name":    s.Student.Name,
		"Concept": c,
	}, false)
}

// Reteach builds the prompt explaining concept c again with a new approach.
func Reteach(s *session.Session, c *session.ConceptPlan, in ReteachInput) (string, error) {
	return render(s, "reteach", map[string]any{
		"Name":     s.Student.Name,
		"Concept":  c,
		"Previous": in.Previous,
		"Approach": in.Approach,
		"Tried":    joinOr(c.TeachingApproachesTried, "none"),
		"Mistakes": joinOr(in.Mistakes, "understanding issues"),
		"Round":    c.Reteaches,
	}, false)
}

// Wrapup builds the end-of-session prompt.
func Wrapup(s *session.Session, durationMinutes int) (string, error) {
	return render(s, "wrapup", map[string]any{
		"Duration": durationMinutes,
		"Taught":   s.Stats.ConceptsTaught,
		"Mastered": s.Stats.ConceptsMastered,
		"Accuracy": percent(s.Stats.AccuracyRate),
		"XP":       s.Stats.XPEarned,
		"Review":   strings.Join(s.Weak(), ", "),
	}, false)
}

func render(s *session.Session, name string, data any, withConversation bool) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, "persona", nil); err != nil {
		return "", fmt.Errorf("render persona: %w", err)
	}
	b.WriteString("\n\n")
	if err := templates.ExecuteTemplate(&b, "student", studentContext(s)); err != nil {
		return "", fmt.Errorf("render student context: %w", err)
	}
	b.WriteString("\n\n")
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	if withConversation {
		b.WriteString("\n")
		if err := templates.ExecuteTemplate(&b, "conversation", conversation(s)); err != nil {
			return "", fmt.Errorf("render conversation: %w", err)
		}
	}
	return b.String(), nil
}

func approach(s *session.Session, c *session.ConceptPlan) session.LearningStyle {
	if c != nil && c.TeachingApproach.Valid() {
		return c.TeachingApproach
	}
	return s.Student.Preferences.LearningStyle
}
