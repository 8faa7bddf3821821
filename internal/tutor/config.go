package tutor

import (
	"github.com/abhisek/buddy/internal/diagnosis"
	"github.com/abhisek/buddy/internal/mastery"
	"github.com/abhisek/buddy/internal/session"
)

// Config holds the tutoring rules.
type Config struct {
	// MaxDiagnosticQuestions is the hard budget of the diagnostic phase.
	MaxDiagnosticQuestions int `yaml:"max_diagnostic_questions"`

	// ConversationWindow is how many messages a session keeps.
	ConversationWindow int `yaml:"conversation_window"`

	Mastery mastery.Config `yaml:"mastery"`

	// Temperature and MaxTokens are passed on every reasoning call.
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// DefaultConfig returns the standard tutoring rules.
func DefaultConfig() Config {
	return Config{
		MaxDiagnosticQuestions: diagnosis.DefaultMaxQuestions,
		ConversationWindow:     session.DefaultWindow,
		Mastery:                mastery.DefaultConfig(),
		Temperature:            0.7,
		MaxTokens:              2048,
	}
}
