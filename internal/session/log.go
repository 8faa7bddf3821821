package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/buddy/internal/question"
)

// EntryType classifies a teaching log entry.
type EntryType string

const (
	EntryTeaching           EntryType = "teaching"
	EntryCheckUnderstanding EntryType = "check_understanding"
	EntryAssessment         EntryType = "assessment"
	EntryHint               EntryType = "hint"
	EntryRetry              EntryType = "retry"
	EntryEncouragement      EntryType = "encouragement"
)

// LogEntry is one record of the teaching history.
type LogEntry struct {
	LogID            string             `json:"log_id"`
	Timestamp        time.Time          `json:"timestamp"`
	ConceptID        string             `json:"concept_id"`
	EntryType        EntryType          `json:"entry_type"`
	AIMessage        string             `json:"ai_message"`
	StudentResponse  *string            `json:"student_response"`
	IsCorrect        *bool              `json:"is_correct"`
	FeedbackGiven    string             `json:"feedback_given,omitempty"`
	TeachingApproach string             `json:"teaching_approach,omitempty"`
	HintGiven        bool               `json:"hint_given"`
	MistakeType      string             `json:"mistake_type,omitempty"`
	Question         *question.Question `json:"question,omitempty"`
}

// Asks reports whether the entry carries a question for the student.
func (e *LogEntry) Asks() bool {
	return e.Question != nil
}

// Answered reports whether a response has been recorded for the entry.
func (e *LogEntry) Answered() bool {
	return e.IsCorrect != nil
}

// Log appends an entry to the teaching log, filling its id and timestamp.
func (s *Session) Log(e *LogEntry, now time.Time) *LogEntry {
	if e.LogID == "" {
		e.LogID = shortID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now.UTC()
	}
	s.TeachingLog = append(s.TeachingLog, e)
	return e
}

// LastQuestion returns the most recent entry that asked a question.
func (s *Session) LastQuestion() *LogEntry {
	for i := len(s.TeachingLog) - 1; i >= 0; i-- {
		if s.TeachingLog[i].Asks() {
			return s.TeachingLog[i]
		}
	}
	return nil
}

// PendingQuestion returns the most recent unanswered question, or nil.
func (s *Session) PendingQuestion() *LogEntry {
	e := s.LastQuestion()
	if e == nil || e.Answered() {
		return nil
	}
	return e
}

// FindQuestion returns the log entry that asked question id.
func (s *Session) FindQuestion(id string) *LogEntry {
	for i := len(s.TeachingLog) - 1; i >= 0; i-- {
		e := s.TeachingLog[i]
		if e.Asks() && e.Question.ID == id {
			return e
		}
	}
	return nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
