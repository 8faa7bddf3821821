package session

import "github.com/abhisek/buddy/internal/mastery"

// XPSummary is the XP portion of the wrap-up.
type XPSummary struct {
	EarnedToday int    `json:"earned_today"`
	StreakDays  int    `json:"streak_days"`
	BadgeEarned string `json:"badge_earned,omitempty"`
}

// Summary is the wrap-up produced when a session ends.
type Summary struct {
	CelebrationMessage string    `json:"celebration_message"`
	Highlights         []string  `json:"highlights"`
	AreasToPractice    []string  `json:"areas_to_practice"`
	NextSessionPreview string    `json:"next_session_preview"`
	XP                 XPSummary `json:"xp_summary"`
}

// NewSummary builds a summary whose XP is taken from the session counters
// rather than whatever the reasoning service reports.
func (s *Session) NewSummary(message string, highlights, practice []string, preview, badge string) *Summary {
	if highlights == nil {
		highlights = []string{}
	}
	if practice == nil {
		practice = []string{}
	}
	return &Summary{
		CelebrationMessage: message,
		Highlights:         highlights,
		AreasToPractice:    practice,
		NextSessionPreview: preview,
		XP: XPSummary{
			EarnedToday: s.Stats.XPEarned,
			StreakDays:  1,
			BadgeEarned: badge,
		},
	}
}

// Weak returns the names of concepts that ended up needing review.
func (s *Session) Weak() []string {
	var out []string
	for _, c := range s.StudyPlan.Concepts {
		if c.Status == mastery.StatusNeedsReview {
			out = append(out, c.Name)
		}
	}
	return out
}
