// Package session holds the tutoring session aggregate and the state
// machine that governs its phase.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/buddy/internal/diagnosis"
)

// FormatVersion is stamped on every persisted record. Stores reject records
// whose major version differs.
const FormatVersion = "v1.0.0"

// Status is the lifecycle status of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// LearningStyle is how a student prefers to be taught.
type LearningStyle string

const (
	StyleVisual     LearningStyle = "visual"
	StyleExamples   LearningStyle = "examples"
	StyleStepByStep LearningStyle = "step_by_step"
	StyleAnalogy    LearningStyle = "analogy"
	StyleFormal     LearningStyle = "formal"
)

// Valid reports whether s is one of the known styles.
func (s LearningStyle) Valid() bool {
	switch s {
	case StyleVisual, StyleExamples, StyleStepByStep, StyleAnalogy, StyleFormal:
		return true
	}
	return false
}

// Mood is the tutor's read of the student's state.
type Mood string

const (
	MoodEngaged    Mood = "engaged"
	MoodConfused   Mood = "confused"
	MoodFrustrated Mood = "frustrated"
	MoodBored      Mood = "bored"
	MoodExcited    Mood = "excited"
)

// Preferences are the student's learning preferences.
type Preferences struct {
	LearningStyle      LearningStyle `json:"learning_style"`
	Pace               string        `json:"pace"`                // slow, medium, fast
	EncouragementLevel string        `json:"encouragement_level"` // low, medium, high
	PreferredLanguage  string        `json:"preferred_language"`
}

// DefaultPreferences returns the preferences used when none are given.
func DefaultPreferences() Preferences {
	return Preferences{
		LearningStyle:      StyleExamples,
		Pace:               "medium",
		EncouragementLevel: "high",
		PreferredLanguage:  "English",
	}
}

// Student is the snapshot of the learner taken when the session starts.
type Student struct {
	StudentID       string      `json:"student_id"`
	Name            string      `json:"name"`
	ClassGrade      int         `json:"class_grade"`
	Board           string      `json:"board"`
	Preferences     Preferences `json:"preferences"`
	Interests       []string    `json:"interests"`
	KnownWeaknesses []string    `json:"known_weaknesses"`
}

// Meta describes what the session is about.
type Meta struct {
	Subject                  string `json:"subject"`
	ClassGrade               int    `json:"class_grade"`
	Board                    string `json:"board"`
	Chapter                  string `json:"chapter"`
	ChapterNumber            int    `json:"chapter_number"`
	TopicRequested           string `json:"topic_requested"`
	SessionType              string `json:"session_type"`
	EstimatedDurationMinutes int    `json:"estimated_duration_minutes"`
}

// Notes are the tutor's running observations.
type Notes struct {
	Observations               []string `json:"observations"`
	TeachingAdjustmentsMade    []string `json:"teaching_adjustments_made"`
	NextSessionRecommendations []string `json:"next_session_recommendations"`
}

// Session is the root aggregate. Phase changes only through Apply.
type Session struct {
	FormatVersion string    `json:"format_version"`
	ID            string    `json:"session_id"`
	StudentID     string    `json:"student_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Status        Status    `json:"status"`

	Meta    *Meta   `json:"meta"`
	Student Student `json:"student"`

	Phase Phase `json:"current_phase"`

	Diagnostic  diagnosis.Phase `json:"diagnostic"`
	StudyPlan   StudyPlan       `json:"study_plan"`
	TeachingLog []*LogEntry     `json:"teaching_log"`

	Conversation Conversation `json:"conversation"`
	Stats        Stats        `json:"stats"`
	Notes        Notes        `json:"ai_notes"`
	Summary      *Summary     `json:"summary,omitempty"`
}

// New creates an active session in topic selection.
func New(student Student, meta *Meta, window int, now time.Time) *Session {
	if student.Board == "" {
		student.Board = "CBSE"
	}
	if student.Preferences == (Preferences{}) {
		student.Preferences = DefaultPreferences()
	}
	if student.Interests == nil {
		student.Interests = []string{}
	}
	if student.KnownWeaknesses == nil {
		student.KnownWeaknesses = []string{}
	}
	if meta != nil {
		if meta.SessionType == "" {
			meta.SessionType = "learning"
		}
		if meta.EstimatedDurationMinutes == 0 {
			meta.EstimatedDurationMinutes = 30
		}
		if meta.ClassGrade == 0 {
			meta.ClassGrade = student.ClassGrade
		}
		if meta.Board == "" {
			meta.Board = student.Board
		}
	}

	now = now.UTC()
	return &Session{
		FormatVersion: FormatVersion,
		ID:            uuid.NewString(),
		StudentID:     student.StudentID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Status:        StatusActive,
		Meta:          meta,
		Student:       student,
		Phase:         PhaseTopicSelection,
		Diagnostic:    diagnosis.NewPhase(),
		StudyPlan:     StudyPlan{Concepts: []*ConceptPlan{}},
		TeachingLog:   []*LogEntry{},
		Conversation:  NewConversation(window),
		Stats:         NewStats(),
		Notes: Notes{
			Observations:               []string{},
			TeachingAdjustmentsMade:    []string{},
			NextSessionRecommendations: []string{},
		},
	}
}

// Touch refreshes UpdatedAt. Every mutating flow calls it before persisting.
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Guard reports the preconditions the state machine checks.
func (s *Session) Guard() Guard {
	return Guard{
		PlanSize:          len(s.StudyPlan.Concepts),
		ConceptsRemaining: s.StudyPlan.Current() != nil,
	}
}

// Apply feeds ev to the state machine and moves the session to the
// resulting phase. On error the phase is left untouched.
func (s *Session) Apply(ev Event) (from, to Phase, err error) {
	from = s.Phase
	to, err = Next(from, ev, s.Guard())
	if err != nil {
		return from, from, err
	}
	s.Phase = to
	return from, to, nil
}

// Complete closes the session.
func (s *Session) Complete(now time.Time) {
	s.Status = StatusCompleted
	s.Stats.DurationMinutes = int(now.Sub(s.CreatedAt).Minutes())
}
