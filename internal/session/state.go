package session

import (
	"errors"
	"fmt"
)

// Phase is the current phase of a session.
type Phase string

const (
	PhaseTopicSelection Phase = "topic_selection"
	PhaseDiagnostic     Phase = "diagnostic"
	PhasePlanGeneration Phase = "plan_generation"
	PhaseTeaching       Phase = "teaching"
	PhaseReteach        Phase = "reteach"
	PhaseAssessment     Phase = "assessment"
	PhaseWrapup         Phase = "wrapup"
)

// Phases lists every phase in flow order.
var Phases = []Phase{
	PhaseTopicSelection,
	PhaseDiagnostic,
	PhasePlanGeneration,
	PhaseTeaching,
	PhaseReteach,
	PhaseAssessment,
	PhaseWrapup,
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	for _, q := range Phases {
		if p == q {
			return true
		}
	}
	return false
}

// Learning reports whether p is part of the teaching sub-cycle.
func (p Phase) Learning() bool {
	return p == PhaseTeaching || p == PhaseReteach || p == PhaseAssessment
}

// Event triggers a phase transition.
type Event string

const (
	EventStartDiagnostic    Event = "start_diagnostic"
	EventDiagnosticComplete Event = "diagnostic_complete"
	EventPlanGenerated      Event = "plan_generated"
	EventStartTeaching      Event = "start_teaching"
	EventStartReteach       Event = "start_reteach"
	EventStartAssessment    Event = "start_assessment"
	EventAnswerCorrect      Event = "answer_correct"
	EventAnswerIncorrect    Event = "answer_incorrect"
	EventConceptMastered    Event = "concept_mastered"
	EventReteach            Event = "reteach"
	EventConceptSkipped     Event = "concept_skipped"
	EventEndSession         Event = "end_session"
)

// Guard carries the preconditions transitions depend on.
type Guard struct {
	PlanSize          int
	ConceptsRemaining bool
}

var (
	// ErrIllegalTransition is returned for an event the current phase does
	// not accept.
	ErrIllegalTransition = errors.New("illegal phase transition")

	// ErrPrecondition is returned when the event is accepted but its
	// precondition does not hold.
	ErrPrecondition = errors.New("transition precondition not met")
)

// Next returns the phase that follows from on ev. It is pure; the caller
// decides whether to commit the result.
func Next(from Phase, ev Event, g Guard) (Phase, error) {
	if ev == EventEndSession {
		return PhaseWrapup, nil
	}

	// teaching once concepts remain, wrapup otherwise
	advance := func() Phase {
		if g.ConceptsRemaining {
			return PhaseTeaching
		}
		return PhaseWrapup
	}

	switch from {
	case PhaseTopicSelection:
		if ev == EventStartDiagnostic {
			return PhaseDiagnostic, nil
		}

	case PhaseDiagnostic:
		if ev == EventDiagnosticComplete {
			return PhasePlanGeneration, nil
		}

	case PhasePlanGeneration:
		if ev == EventPlanGenerated {
			if g.PlanSize < 1 {
				return from, fmt.Errorf("%w: study plan has no concepts", ErrPrecondition)
			}
			return PhaseTeaching, nil
		}

	case PhaseTeaching, PhaseReteach, PhaseAssessment:
		switch ev {
		case EventConceptMastered, EventStartTeaching, EventConceptSkipped:
			return advance(), nil
		case EventReteach:
			return PhaseReteach, nil
		case EventAnswerCorrect:
			return PhaseAssessment, nil
		case EventAnswerIncorrect:
			return PhaseTeaching, nil
		case EventStartReteach:
			if from == PhaseReteach {
				return guarded(from, PhaseReteach, g)
			}
		case EventStartAssessment:
			if from == PhaseAssessment {
				return guarded(from, PhaseAssessment, g)
			}
		}
	}

	return from, fmt.Errorf("%w: %s during %s", ErrIllegalTransition, ev, from)
}

func guarded(from, to Phase, g Guard) (Phase, error) {
	if !g.ConceptsRemaining {
		return from, fmt.Errorf("%w: no concepts remain", ErrPrecondition)
	}
	return to, nil
}
