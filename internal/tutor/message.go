package tutor

import (
	"context"
	"strings"

	"github.com/abhisek/buddy/internal/session"
)

const defaultReply = "I'm here to help! Let's continue with our learning session."

var moodCues = []struct {
	mood session.Mood
	cues []string
}{
	{session.MoodFrustrated, []string{"give up", "hate this", "too hard", "i can't", "annoying"}},
	{session.MoodConfused, []string{"confused", "don't understand", "dont understand", "don't get", "what does", "huh"}},
	{session.MoodBored, []string{"boring", "bored"}},
	{session.MoodExcited, []string{"awesome", "cool!", "yay", "love this"}},
}

// readMood returns the first mood whose cue appears in text, or "".
func readMood(text string) session.Mood {
	lower := strings.ToLower(text)
	for _, m := range moodCues {
		for _, cue := range m.cues {
			if strings.Contains(lower, cue) {
				return m.mood
			}
		}
	}
	return ""
}

// SendMessage handles free text. While a question is waiting it is taken
// as the answer; otherwise it is recorded and acknowledged.
func (svc *Service) SendMessage(ctx context.Context, id, text string) (*Response, error) {
	return svc.mutate(ctx, "send_message", id, func(ctx context.Context, s *session.Session) ([]Display, error) {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, invalid("send_message", "message must not be empty")
		}
		s.Conversation.Signal(readMood(text))

		switch {
		case s.Phase == session.PhaseDiagnostic && s.Diagnostic.Pending() != nil:
			return svc.submitDiagnostic(ctx, s, AnswerRequest{Answer: text})
		case s.Phase.Learning() && s.PendingQuestion() != nil:
			return svc.submitAnswer(ctx, s, AnswerRequest{Answer: text})
		}

		now := svc.now()
		s.Conversation.Add(session.RoleStudent, text, now)
		s.Conversation.Add(session.RoleTutor, defaultReply, now)
		return []Display{message(defaultReply)}, nil
	})
}

// Next runs whatever step the current phase calls for.
func (svc *Service) Next(ctx context.Context, id string) (*Response, error) {
	return svc.mutate(ctx, "next", id, func(ctx context.Context, s *session.Session) ([]Display, error) {
		switch s.Phase {
		case session.PhaseTopicSelection, session.PhaseDiagnostic:
			return svc.startDiagnostic(ctx, s)
		case session.PhasePlanGeneration:
			return svc.generatePlan(ctx, s)
		case session.PhaseTeaching:
			return svc.startTeaching(ctx, s)
		case session.PhaseReteach:
			return svc.reteach(ctx, s)
		case session.PhaseAssessment:
			return svc.startAssessment(ctx, s)
		case session.PhaseWrapup:
			return svc.endSession(ctx, s)
		}
		return nil, invalid("next", "unknown phase %q", s.Phase)
	})
}
