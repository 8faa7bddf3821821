package prompt

import (
	"strings"

	"github.com/abhisek/buddy/internal/session"
)

type student struct {
	Name             string
	ClassGrade       int
	Board            string
	Style            session.LearningStyle
	StyleDescription string
	Pace             string
	Encouragement    string
	Language         string
	Interests        string
	Subject          string
	Chapter          string
	Topic            string
	Weaknesses       string
	Covered          int
	Total            int
	Accuracy         int
}

func studentContext(s *session.Session) student {
	prefs := s.Student.Preferences
	total := s.StudyPlan.TotalConcepts
	if total == 0 {
		total = 1
	}
	subject := "Mathematics"
	if s.Meta != nil && s.Meta.Subject != "" {
		subject = s.Meta.Subject
	}
	return student{
		Name:             s.Student.Name,
		ClassGrade:       s.Student.ClassGrade,
		Board:            s.Student.Board,
		Style:            prefs.LearningStyle,
		StyleDescription: StyleDescription(prefs.LearningStyle),
		Pace:             orDefault(prefs.Pace, "medium"),
		Encouragement:    orDefault(prefs.EncouragementLevel, "high"),
		Language:         orDefault(prefs.PreferredLanguage, "English"),
		Interests:        joinOr(s.Student.Interests, "general topics"),
		Subject:          subject,
		Chapter:          chapter(s),
		Topic:            topic(s),
		Weaknesses:       joinOr(s.Student.KnownWeaknesses, "None identified yet"),
		Covered:          s.StudyPlan.CurrentConceptIndex,
		Total:            total,
		Accuracy:         percent(s.Stats.AccuracyRate),
	}
}

type turn struct {
	Speaker string
	Text    string
}

// conversation returns the last RecentMessages turns, each clipped.
func conversation(s *session.Session) []turn {
	recent := s.Conversation.Recent(RecentMessages)
	out := make([]turn, 0, len(recent))
	for _, m := range recent {
		speaker := "Buddy"
		if m.Role == session.RoleStudent {
			speaker = "Student"
		}
		out = append(out, turn{Speaker: speaker, Text: clip(m.Content, MessageClip)})
	}
	return out
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func chapter(s *session.Session) string {
	if s.Meta != nil && s.Meta.Chapter != "" {
		return s.Meta.Chapter
	}
	return "General"
}

func topic(s *session.Session) string {
	if s.Meta != nil {
		if s.Meta.TopicRequested != "" {
			return s.Meta.TopicRequested
		}
		if s.Meta.Chapter != "" {
			return s.Meta.Chapter
		}
	}
	return "the topic"
}

func percent(f float64) int {
	return int(f * 100)
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
