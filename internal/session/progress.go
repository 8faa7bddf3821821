package session

import "github.com/abhisek/buddy/internal/mastery"

// Stats are the running session counters.
type Stats struct {
	DurationMinutes    int     `json:"duration_minutes"`
	QuestionsAttempted int     `json:"questions_attempted"`
	QuestionsCorrect   int     `json:"questions_correct"`
	AccuracyRate       float64 `json:"accuracy_rate"`
	HintsUsed          int     `json:"hints_used"`
	ConceptsTaught     int     `json:"concepts_taught"`
	ConceptsMastered   int     `json:"concepts_mastered"`
	XPEarned           int     `json:"xp_earned"`
	StreakMaintained   bool    `json:"streak_maintained"`
}

// NewStats returns zeroed counters.
func NewStats() Stats {
	return Stats{}
}

// Record counts one evaluated answer and recomputes accuracy.
func (s *Stats) Record(correct bool) {
	s.QuestionsAttempted++
	if correct {
		s.QuestionsCorrect++
	}
	s.AccuracyRate = float64(s.QuestionsCorrect) / float64(s.QuestionsAttempted)
}

// AddXP adds n experience points. Negative amounts are ignored so XP
// never decreases.
func (s *Stats) AddXP(n int) {
	if n > 0 {
		s.XPEarned += n
	}
}

// UseHint counts a hint shown to the student.
func (s *Stats) UseHint() {
	s.HintsUsed++
}

// ProgressSnapshot is the read-only progress view of a session.
type ProgressSnapshot struct {
	SessionID          string  `json:"session_id"`
	Phase              Phase   `json:"current_phase"`
	Status             Status  `json:"status"`
	ConceptsCompleted  int     `json:"concepts_completed"`
	ConceptsTotal      int     `json:"concepts_total"`
	CurrentConcept     string  `json:"current_concept"`
	Accuracy           float64 `json:"accuracy"`
	XPEarned           int     `json:"xp_earned"`
	QuestionsAttempted int     `json:"questions_attempted"`
	QuestionsCorrect   int     `json:"questions_correct"`
	HintsUsed          int     `json:"hints_used"`
	ConceptsNeedReview int     `json:"concepts_need_review"`
	ConceptsSkipped    int     `json:"concepts_skipped"`
}

// Progress summarizes the session for a progress view.
func (s *Session) Progress() ProgressSnapshot {
	total := s.StudyPlan.TotalConcepts
	if total == 0 {
		total = 1
	}
	current := "Getting started"
	if c := s.StudyPlan.Current(); c != nil {
		current = c.Name
	}
	return ProgressSnapshot{
		SessionID:          s.ID,
		Phase:              s.Phase,
		Status:             s.Status,
		ConceptsCompleted:  s.Stats.ConceptsMastered,
		ConceptsTotal:      total,
		CurrentConcept:     current,
		Accuracy:           s.Stats.AccuracyRate,
		XPEarned:           s.Stats.XPEarned,
		QuestionsAttempted: s.Stats.QuestionsAttempted,
		QuestionsCorrect:   s.Stats.QuestionsCorrect,
		HintsUsed:          s.Stats.HintsUsed,
		ConceptsNeedReview: s.StudyPlan.Count(mastery.StatusNeedsReview),
		ConceptsSkipped:    s.StudyPlan.Count(mastery.StatusSkipped),
	}
}
