package tutor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/buddy/internal/session"
)

var validate = validator.New()

// CreateSessionRequest starts a tutoring session for one student.
type CreateSessionRequest struct {
	StudentID     string   `json:"student_id" validate:"required,max=128"`
	StudentName   string   `json:"student_name" validate:"required,max=128"`
	ClassGrade    int      `json:"class_grade" validate:"gte=6,lte=10"`
	Board         string   `json:"board" validate:"max=32"`
	Subject       string   `json:"subject" validate:"required,max=64"`
	Chapter       string   `json:"chapter" validate:"required,max=256"`
	ChapterNumber int      `json:"chapter_number" validate:"gte=0"`
	Topic         string   `json:"topic" validate:"max=256"`
	Interests     []string `json:"interests" validate:"max=20,dive,max=64"`
	Weaknesses    []string `json:"known_weaknesses" validate:"max=20,dive,max=128"`

	LearningStyle session.LearningStyle `json:"learning_style" validate:"omitempty,oneof=visual examples step_by_step analogy formal"`
	Pace          string                `json:"pace" validate:"omitempty,oneof=slow medium fast"`
	Language      string                `json:"preferred_language" validate:"max=32"`
}

// Validate checks the request fields.
func (r *CreateSessionRequest) Validate() error {
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.StudentName = strings.TrimSpace(r.StudentName)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Chapter = strings.TrimSpace(r.Chapter)
	return describe(validate.Struct(r))
}

func (r *CreateSessionRequest) student() session.Student {
	prefs := session.DefaultPreferences()
	if r.LearningStyle != "" {
		prefs.LearningStyle = r.LearningStyle
	}
	if r.Pace != "" {
		prefs.Pace = r.Pace
	}
	if r.Language != "" {
		prefs.PreferredLanguage = r.Language
	}
	return session.Student{
		StudentID:       r.StudentID,
		Name:            r.StudentName,
		ClassGrade:      r.ClassGrade,
		Board:           r.Board,
		Preferences:     prefs,
		Interests:       r.Interests,
		KnownWeaknesses: r.Weaknesses,
	}
}

func (r *CreateSessionRequest) meta() *session.Meta {
	return &session.Meta{
		Subject:        r.Subject,
		ClassGrade:     r.ClassGrade,
		Board:          r.Board,
		Chapter:        r.Chapter,
		ChapterNumber:  r.ChapterNumber,
		TopicRequested: r.Topic,
	}
}

// AnswerRequest submits an answer. QuestionID may be empty to answer the
// question currently awaiting a response. Answer holds whatever the client
// sent: a string, number, bool, list or object depending on the type.
type AnswerRequest struct {
	QuestionID       string `json:"question_id" validate:"max=128"`
	Answer           any    `json:"answer"`
	TimeTakenSeconds *int   `json:"time_taken_seconds" validate:"omitempty,gte=0"`
}

// Validate checks the request fields.
func (r *AnswerRequest) Validate() error {
	if err := describe(validate.Struct(r)); err != nil {
		return err
	}
	if r.Answer == nil {
		return errors.New("answer is required")
	}
	if s, ok := r.Answer.(string); ok && strings.TrimSpace(s) == "" {
		return errors.New("answer must not be empty")
	}
	return nil
}

// describe flattens validator errors into one readable message.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}
