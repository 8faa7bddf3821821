package tutor

import (
	"context"
	"errors"

	"github.com/abhisek/buddy/internal/prompt"
	"github.com/abhisek/buddy/internal/session"
)

type conceptDraft struct {
	ConceptID        string   `json:"concept_id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Difficulty       string   `json:"difficulty"`
	EstimatedMinutes float64  `json:"estimated_minutes"`
	TeachingApproach string   `json:"teaching_approach"`
	Prerequisites    []string `json:"prerequisites"`
	RealWorldHook    string   `json:"real_world_hook"`
}

type planOut struct {
	Message string `json:"message_to_student"`
	Plan    struct {
		EstimatedTimeMinutes float64        `json:"estimated_time_minutes"`
		Concepts             []conceptDraft `json:"concepts"`
	} `json:"study_plan"`
}

// GeneratePlan builds the study plan from the diagnostic results and enters
// teaching.
func (svc *Service) GeneratePlan(ctx context.Context, id string) (*Response, error) {
	return svc.mutate(ctx, "generate_plan", id, svc.generatePlan)
}

func (svc *Service) generatePlan(ctx context.Context, s *session.Session) ([]Display, error) {
	const op = "generate_plan"
	if s.Phase != session.PhasePlanGeneration {
		return nil, invalid(op, "cannot generate a plan during %s", s.Phase)
	}

	system, err := prompt.StudyPlan(s)
	if err != nil {
		return nil, internal(op, err)
	}
	res, err := svc.generate(ctx, op, "study_plan", system, "", planSchema)
	if err != nil {
		return nil, err
	}
	var out planOut
	if err := res.Decode(&out); err != nil {
		return nil, unavailable(op, err)
	}

	now := svc.now()
	concepts := make([]session.ConceptPlan, 0, len(out.Plan.Concepts))
	for _, c := range out.Plan.Concepts {
		concepts = append(concepts, session.ConceptPlan{
			ConceptID:        c.ConceptID,
			Name:             c.Name,
			Description:      c.Description,
			Difficulty:       c.Difficulty,
			EstimatedMinutes: int(c.EstimatedMinutes),
			Prerequisites:    c.Prerequisites,
			TeachingApproach: session.LearningStyle(c.TeachingApproach),
			RealWorldHook:    c.RealWorldHook,
		})
	}
	s.StudyPlan = session.NewStudyPlan(concepts, int(out.Plan.EstimatedTimeMinutes), now)

	if _, _, err := s.Apply(session.EventPlanGenerated); err != nil {
		if errors.Is(err, session.ErrPrecondition) {
			return nil, unavailable(op, err)
		}
		return nil, invalidErr(op, err)
	}

	msg := orDefault(out.Message, "Here's your personalised study plan! Let's learn step by step.")
	s.Conversation.Add(session.RoleTutor, msg, now)
	svc.log.Info("study plan ready", "session_id", s.ID, "concepts", s.StudyPlan.TotalConcepts)
	return []Display{
		message(msg),
		{Type: DisplayStudyPlan, StudyPlan: viewPlan(&s.StudyPlan)},
	}, nil
}
