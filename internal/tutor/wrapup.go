package tutor

import (
	"context"
	"fmt"

	"github.com/abhisek/buddy/internal/gems"
	"github.com/abhisek/buddy/internal/prompt"
	"github.com/abhisek/buddy/internal/session"
)

const defaultPreview = "More exciting concepts await!"

type wrapupOut struct {
	Message    string   `json:"celebration_message"`
	Highlights []string `json:"highlights"`
	Practice   []string `json:"areas_to_practice"`
	Preview    string   `json:"next_session_preview"`
	XP         struct {
		Badge *string `json:"badge_earned"`
	} `json:"xp_summary"`
}

// EndSession wraps the session up and completes it. A failing reasoning
// service only costs the personalised message; ending never fails because
// of it. Ending a completed session returns its summary again.
func (svc *Service) EndSession(ctx context.Context, id string) (*Response, error) {
	return svc.mutate(ctx, "end_session", id, svc.endSession)
}

func (svc *Service) endSession(ctx context.Context, s *session.Session) ([]Display, error) {
	const op = "end_session"
	if s.Status == session.StatusCompleted && s.Summary != nil {
		return summaryItems(s), nil
	}
	if err := transition(op, s, session.EventEndSession); err != nil {
		return nil, err
	}
	now := svc.now()
	s.Complete(now)

	out, err := svc.wrapup(ctx, op, s)
	if err != nil {
		svc.log.Warn("wrap-up summary fallback", "session_id", s.ID, "error", err)
		out = wrapupOut{
			Message: fmt.Sprintf("Great work today, %s! You covered %d concepts. See you next time!",
				s.Student.Name, s.Stats.ConceptsMastered),
		}
	}
	if len(out.Practice) == 0 {
		out.Practice = s.Weak()
	}
	badge := ""
	if out.XP.Badge != nil {
		badge = *out.XP.Badge
	}
	if badge == "" {
		if best := gems.Best(sessionGems(s)); best != nil {
			badge = best.Badge()
		}
	}
	s.Summary = s.NewSummary(out.Message, out.Highlights, out.Practice, orDefault(out.Preview, defaultPreview), badge)
	s.Notes.NextSessionRecommendations = append(s.Notes.NextSessionRecommendations, s.Summary.AreasToPractice...)
	s.Conversation.Add(session.RoleTutor, out.Message, now)

	svc.log.Info("session completed", "session_id", s.ID,
		"minutes", s.Stats.DurationMinutes, "mastered", s.Stats.ConceptsMastered, "xp", s.Stats.XPEarned)
	return summaryItems(s), nil
}

func (svc *Service) wrapup(ctx context.Context, op string, s *session.Session) (wrapupOut, error) {
	var out wrapupOut
	system, err := prompt.Wrapup(s, s.Stats.DurationMinutes)
	if err != nil {
		return out, err
	}
	res, err := svc.generate(ctx, op, "wrapup", system, "", wrapupSchema)
	if err != nil {
		return out, err
	}
	err = res.Decode(&out)
	return out, err
}

func summaryItems(s *session.Session) []Display {
	return []Display{
		{Type: DisplayCelebration, Celebration: &Celebration{
			Title:   "Session Complete!",
			Message: s.Summary.CelebrationMessage,
			XP:      s.Stats.XPEarned,
		}},
		{Type: DisplaySummary, Summary: viewSummary(s)},
	}
}
