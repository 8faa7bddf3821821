package session

import "time"

// DefaultWindow is how many recent messages a conversation keeps.
const DefaultWindow = 10

// Role is who authored a conversation message.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// Message is one turn of the conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation keeps a bounded window of recent messages plus the total
// count ever seen.
type Conversation struct {
	TotalMessages      int       `json:"total_messages"`
	RecentMessages     []Message `json:"recent_messages"`
	StudentMood        Mood      `json:"student_mood"`
	ConfusionSignals   int       `json:"confusion_signals"`
	FrustrationSignals int       `json:"frustration_signals"`
	Window             int       `json:"window"`
}

// NewConversation returns an empty conversation keeping window messages.
func NewConversation(window int) Conversation {
	if window <= 0 {
		window = DefaultWindow
	}
	return Conversation{
		RecentMessages: []Message{},
		StudentMood:    MoodEngaged,
		Window:         window,
	}
}

// Add appends a message and drops the oldest ones beyond the window.
// Empty content is ignored.
func (c *Conversation) Add(role Role, content string, now time.Time) {
	if content == "" {
		return
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	c.RecentMessages = append(c.RecentMessages, Message{Role: role, Content: content, Timestamp: now.UTC()})
	c.TotalMessages++
	if over := len(c.RecentMessages) - c.Window; over > 0 {
		c.RecentMessages = append([]Message(nil), c.RecentMessages[over:]...)
	}
}

// Recent returns up to the last n messages, oldest first.
func (c *Conversation) Recent(n int) []Message {
	if n <= 0 || n >= len(c.RecentMessages) {
		return c.RecentMessages
	}
	return c.RecentMessages[len(c.RecentMessages)-n:]
}

// Signal records a mood reading from the student.
func (c *Conversation) Signal(m Mood) {
	switch m {
	case MoodConfused:
		c.ConfusionSignals++
	case MoodFrustrated:
		c.FrustrationSignals++
	case "":
		return
	}
	c.StudentMood = m
}
