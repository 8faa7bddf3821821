package mastery

// ConceptStatus is a concept's position in the study plan lifecycle.
type ConceptStatus string

const (
	StatusNotStarted  ConceptStatus = "not_started"
	StatusLearning    ConceptStatus = "learning"
	StatusMastered    ConceptStatus = "mastered"
	StatusNeedsReview ConceptStatus = "needs_review"
	StatusSkipped     ConceptStatus = "skipped"
)

// Terminal reports whether the concept is finished with, one way or another.
func (s ConceptStatus) Terminal() bool {
	switch s {
	case StatusMastered, StatusNeedsReview, StatusSkipped:
		return true
	}
	return false
}

// StateTransition records a concept status change for display and logging.
type StateTransition struct {
	ConceptID   string
	ConceptName string
	From        ConceptStatus
	To          ConceptStatus
	Trigger     string // "start-teaching", "mastered", "reteach-cap", "skipped"
}
