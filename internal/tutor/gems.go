package tutor

import (
	"github.com/abhisek/buddy/internal/gems"
	"github.com/abhisek/buddy/internal/mastery"
	"github.com/abhisek/buddy/internal/session"
)

// sessionGems derives the gems a session earned from its plan and the
// answer records in its teaching log.
func sessionGems(s *session.Session) []gems.Award {
	in := gems.Input{
		Attempted: s.Stats.QuestionsAttempted,
		Accuracy:  s.Stats.AccuracyRate,
	}
	for _, c := range s.StudyPlan.Concepts {
		in.Concepts = append(in.Concepts, gems.Concept{
			ID:         c.ConceptID,
			Name:       c.Name,
			Difficulty: c.Difficulty,
			Mastered:   c.Status == mastery.StatusMastered,
			Reteaches:  c.Reteaches,
		})
	}
	for _, e := range s.TeachingLog {
		if !e.Asks() && e.Answered() {
			in.Answers = append(in.Answers, *e.IsCorrect)
		}
	}
	return gems.Awards(in)
}
