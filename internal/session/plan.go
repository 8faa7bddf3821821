package session

import (
	"fmt"
	"time"

	"github.com/abhisek/buddy/internal/mastery"
	"github.com/abhisek/buddy/internal/question"
)

// ConceptPlan is one concept in the study plan along with its progress.
type ConceptPlan struct {
	ConceptID        string        `json:"concept_id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Difficulty       string        `json:"difficulty"`
	EstimatedMinutes int           `json:"estimated_minutes"`
	Order            int           `json:"order"`
	Prerequisites    []string      `json:"prerequisites"`
	TeachingApproach LearningStyle `json:"teaching_approach"`
	RealWorldHook    string        `json:"real_world_hook,omitempty"`

	Status mastery.ConceptStatus `json:"status"`
	mastery.Progress
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	TeachingApproachesTried []string `json:"teaching_approaches_tried"`

	// QueuedQuestions are mini-quiz questions waiting to be asked, in order.
	QueuedQuestions []*question.Question `json:"queued_questions,omitempty"`
}

// NewConceptPlan fills the defaults for the concept at position i.
func NewConceptPlan(i int, c ConceptPlan) *ConceptPlan {
	if c.ConceptID == "" {
		c.ConceptID = fmt.Sprintf("c%d", i+1)
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("Concept %d", i+1)
	}
	if c.Difficulty == "" {
		c.Difficulty = string(question.DifficultyMedium)
	}
	if c.EstimatedMinutes <= 0 {
		c.EstimatedMinutes = 5
	}
	if !c.TeachingApproach.Valid() {
		c.TeachingApproach = StyleExamples
	}
	if c.Prerequisites == nil {
		c.Prerequisites = []string{}
	}
	c.Order = i + 1
	c.Status = mastery.StatusNotStarted
	c.TeachingApproachesTried = []string{}
	return &c
}

// Start marks the concept as being learned. It reports whether this was
// the first time.
func (c *ConceptPlan) Start(now time.Time) bool {
	if c.Status != mastery.StatusNotStarted {
		return false
	}
	c.Status = mastery.StatusLearning
	c.StartedAt = &now
	return true
}

// Finish moves the concept to a terminal status and returns the transition.
func (c *ConceptPlan) Finish(status mastery.ConceptStatus, trigger string, now time.Time) mastery.StateTransition {
	t := mastery.StateTransition{
		ConceptID:   c.ConceptID,
		ConceptName: c.Name,
		From:        c.Status,
		To:          status,
		Trigger:     trigger,
	}
	c.Status = status
	c.CompletedAt = &now
	c.QueuedQuestions = nil
	return t
}

// TryApproach records an approach as used for this concept.
func (c *ConceptPlan) TryApproach(a LearningStyle) {
	for _, tried := range c.TeachingApproachesTried {
		if tried == string(a) {
			return
		}
	}
	c.TeachingApproachesTried = append(c.TeachingApproachesTried, string(a))
}

// approachCycle is the rotation used when reteaching.
var approachCycle = []LearningStyle{StyleVisual, StyleExamples, StyleStepByStep, StyleAnalogy}

// NextApproach picks the approach to reteach with: the successor of the
// current approach in the rotation, skipping any already tried. When every
// approach has been tried the plain successor is used.
func (c *ConceptPlan) NextApproach() LearningStyle {
	current := c.TeachingApproach
	start := 0
	for i, a := range approachCycle {
		if a == current {
			start = i + 1
			break
		}
	}
	if current == StyleFormal {
		start = 0
	}
	for i := 0; i < len(approachCycle); i++ {
		cand := approachCycle[(start+i)%len(approachCycle)]
		if cand != current && !c.tried(cand) {
			return cand
		}
	}
	return approachCycle[start%len(approachCycle)]
}

func (c *ConceptPlan) tried(a LearningStyle) bool {
	for _, t := range c.TeachingApproachesTried {
		if t == string(a) {
			return true
		}
	}
	return false
}

// Enqueue appends questions to the concept's queue.
func (c *ConceptPlan) Enqueue(qs ...*question.Question) {
	c.QueuedQuestions = append(c.QueuedQuestions, qs...)
}

// Dequeue pops the next queued question, or nil.
func (c *ConceptPlan) Dequeue() *question.Question {
	if len(c.QueuedQuestions) == 0 {
		return nil
	}
	q := c.QueuedQuestions[0]
	c.QueuedQuestions = c.QueuedQuestions[1:]
	if len(c.QueuedQuestions) == 0 {
		c.QueuedQuestions = nil
	}
	return q
}

// StudyPlan is the ordered sequence of concepts for the session.
type StudyPlan struct {
	GeneratedAt          *time.Time     `json:"generated_at"`
	TotalConcepts        int            `json:"total_concepts"`
	EstimatedTimeMinutes int            `json:"estimated_time_minutes"`
	Concepts             []*ConceptPlan `json:"concepts"`
	CurrentConceptIndex  int            `json:"current_concept_index"`
}

// NewStudyPlan builds a plan from concepts. Defaults are filled per concept.
func NewStudyPlan(concepts []ConceptPlan, estimatedMinutes int, now time.Time) StudyPlan {
	if estimatedMinutes <= 0 {
		estimatedMinutes = 30
	}
	p := StudyPlan{
		GeneratedAt:          &now,
		EstimatedTimeMinutes: estimatedMinutes,
		Concepts:             make([]*ConceptPlan, 0, len(concepts)),
	}
	seen := make(map[string]bool, len(concepts))
	for i, c := range concepts {
		cp := NewConceptPlan(i, c)
		// Log entries are matched to concepts by id, so ids must be unique.
		for n := i + 1; seen[cp.ConceptID]; n++ {
			cp.ConceptID = fmt.Sprintf("c%d", n)
		}
		seen[cp.ConceptID] = true
		p.Concepts = append(p.Concepts, cp)
	}
	p.TotalConcepts = len(p.Concepts)
	return p
}

// Current returns the concept being worked on, or nil once every concept
// has been passed.
func (p *StudyPlan) Current() *ConceptPlan {
	if p.CurrentConceptIndex < 0 || p.CurrentConceptIndex >= len(p.Concepts) {
		return nil
	}
	return p.Concepts[p.CurrentConceptIndex]
}

// Advance moves to the next concept. The index grows by exactly one and
// never passes the number of concepts.
func (p *StudyPlan) Advance() {
	if p.CurrentConceptIndex < len(p.Concepts) {
		p.CurrentConceptIndex++
	}
}

// Exhausted reports whether every concept has been passed.
func (p *StudyPlan) Exhausted() bool {
	return p.CurrentConceptIndex >= len(p.Concepts)
}

// Find returns the concept with the given id, or nil.
func (p *StudyPlan) Find(id string) *ConceptPlan {
	for _, c := range p.Concepts {
		if c.ConceptID == id {
			return c
		}
	}
	return nil
}

// Count returns how many concepts are in status s.
func (p *StudyPlan) Count(s mastery.ConceptStatus) int {
	n := 0
	for _, c := range p.Concepts {
		if c.Status == s {
			n++
		}
	}
	return n
}
