package session

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/buddy/internal/mastery"
	"github.com/abhisek/buddy/internal/question"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testSession() *Session {
	return New(Student{StudentID: "stu-1", Name: "Aarav", ClassGrade: 7}, &Meta{Subject: "Mathematics", Chapter: "Integers"}, 0, testNow)
}

func testPlan(n int) StudyPlan {
	concepts := make([]ConceptPlan, n)
	for i := range concepts {
		concepts[i] = ConceptPlan{Name: "concept"}
	}
	return NewStudyPlan(concepts, 0, testNow)
}

func TestNewSessionDefaults(t *testing.T) {
	s := testSession()
	if s.Phase != PhaseTopicSelection || s.Status != StatusActive {
		t.Errorf("phase = %q, status = %q", s.Phase, s.Status)
	}
	if s.Student.Board != "CBSE" || s.Meta.Board != "CBSE" {
		t.Errorf("board = %q / %q", s.Student.Board, s.Meta.Board)
	}
	if s.Student.Preferences != DefaultPreferences() {
		t.Errorf("preferences = %+v", s.Student.Preferences)
	}
	if s.Meta.ClassGrade != 7 || s.Meta.SessionType != "learning" || s.Meta.EstimatedDurationMinutes != 30 {
		t.Errorf("meta = %+v", s.Meta)
	}
	if s.Conversation.Window != DefaultWindow {
		t.Errorf("window = %d", s.Conversation.Window)
	}
	if s.ID == "" || s.FormatVersion != FormatVersion {
		t.Errorf("id = %q, version = %q", s.ID, s.FormatVersion)
	}
}

func TestNextTransitions(t *testing.T) {
	remaining := Guard{PlanSize: 3, ConceptsRemaining: true}
	exhausted := Guard{PlanSize: 3}

	tests := []struct {
		from Phase
		ev   Event
		g    Guard
		want Phase
		err  error
	}{
		{PhaseTopicSelection, EventStartDiagnostic, remaining, PhaseDiagnostic, nil},
		{PhaseTopicSelection, EventStartTeaching, remaining, PhaseTopicSelection, ErrIllegalTransition},
		{PhaseDiagnostic, EventDiagnosticComplete, remaining, PhasePlanGeneration, nil},
		{PhaseDiagnostic, EventPlanGenerated, remaining, PhaseDiagnostic, ErrIllegalTransition},
		{PhasePlanGeneration, EventPlanGenerated, remaining, PhaseTeaching, nil},
		{PhasePlanGeneration, EventPlanGenerated, Guard{}, PhasePlanGeneration, ErrPrecondition},
		{PhaseTeaching, EventAnswerCorrect, remaining, PhaseAssessment, nil},
		{PhaseTeaching, EventAnswerIncorrect, remaining, PhaseTeaching, nil},
		{PhaseTeaching, EventReteach, remaining, PhaseReteach, nil},
		{PhaseAssessment, EventConceptMastered, remaining, PhaseTeaching, nil},
		{PhaseAssessment, EventConceptMastered, exhausted, PhaseWrapup, nil},
		{PhaseReteach, EventConceptSkipped, exhausted, PhaseWrapup, nil},
		{PhaseReteach, EventStartReteach, remaining, PhaseReteach, nil},
		{PhaseReteach, EventStartReteach, exhausted, PhaseReteach, ErrPrecondition},
		{PhaseTeaching, EventStartReteach, remaining, PhaseTeaching, ErrIllegalTransition},
		{PhaseAssessment, EventStartAssessment, remaining, PhaseAssessment, nil},
		{PhaseTeaching, EventStartAssessment, remaining, PhaseTeaching, ErrIllegalTransition},
		{PhaseWrapup, EventStartTeaching, remaining, PhaseWrapup, ErrIllegalTransition},
		{PhaseWrapup, EventEndSession, remaining, PhaseWrapup, nil},
		{PhaseDiagnostic, EventEndSession, remaining, PhaseWrapup, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			got, err := Next(tt.from, tt.ev, tt.g)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("err = %v, want %v", err, tt.err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("phase = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyLeavesPhaseOnError(t *testing.T) {
	s := testSession()
	if _, _, err := s.Apply(EventPlanGenerated); err == nil {
		t.Fatal("expected error")
	}
	if s.Phase != PhaseTopicSelection {
		t.Errorf("phase = %q", s.Phase)
	}

	from, to, err := s.Apply(EventStartDiagnostic)
	if err != nil || from != PhaseTopicSelection || to != PhaseDiagnostic || s.Phase != PhaseDiagnostic {
		t.Errorf("from=%q to=%q err=%v phase=%q", from, to, err, s.Phase)
	}
}

func TestApplyUsesPlanGuard(t *testing.T) {
	s := testSession()
	s.Phase = PhasePlanGeneration
	if _, _, err := s.Apply(EventPlanGenerated); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("empty plan err = %v", err)
	}
	s.StudyPlan = testPlan(1)
	if _, _, err := s.Apply(EventPlanGenerated); err != nil {
		t.Fatal(err)
	}
	s.StudyPlan.Advance()
	if _, to, _ := s.Apply(EventConceptMastered); to != PhaseWrapup {
		t.Errorf("after last concept phase = %q", to)
	}
}

func TestStudyPlanAdvance(t *testing.T) {
	p := testPlan(2)
	if p.TotalConcepts != 2 || p.Current().ConceptID != "c1" || p.Current().Order != 1 {
		t.Fatalf("plan = %+v", p.Current())
	}
	p.Advance()
	if p.Current().ConceptID != "c2" {
		t.Errorf("current = %q", p.Current().ConceptID)
	}
	p.Advance()
	p.Advance()
	if p.CurrentConceptIndex != 2 || p.Current() != nil || !p.Exhausted() {
		t.Errorf("index = %d", p.CurrentConceptIndex)
	}
}

func TestStudyPlanUniqueConceptIDs(t *testing.T) {
	p := NewStudyPlan([]ConceptPlan{
		{ConceptID: "fractions", Name: "Fractions"},
		{ConceptID: "fractions", Name: "Equivalent fractions"},
		{ConceptID: "c2", Name: "Decimals"},
	}, 0, testNow)

	seen := map[string]bool{}
	for _, c := range p.Concepts {
		if seen[c.ConceptID] {
			t.Errorf("duplicate concept id %q", c.ConceptID)
		}
		seen[c.ConceptID] = true
	}
	if p.Concepts[0].ConceptID != "fractions" || p.Concepts[1].ConceptID != "c2" {
		t.Errorf("ids = %q, %q", p.Concepts[0].ConceptID, p.Concepts[1].ConceptID)
	}
	if p.Concepts[2].ConceptID != "c3" {
		t.Errorf("third id = %q, want c3", p.Concepts[2].ConceptID)
	}
}

func TestConceptDefaults(t *testing.T) {
	c := NewConceptPlan(0, ConceptPlan{TeachingApproach: "interpretive dance"})
	if c.Difficulty != "medium" || c.EstimatedMinutes != 5 || c.TeachingApproach != StyleExamples {
		t.Errorf("concept = %+v", c)
	}
	if c.Status != mastery.StatusNotStarted || c.Prerequisites == nil {
		t.Errorf("status = %q", c.Status)
	}
}

func TestConceptLifecycle(t *testing.T) {
	c := NewConceptPlan(0, ConceptPlan{Name: "Adding integers"})
	if !c.Start(testNow) || c.Start(testNow) {
		t.Error("Start should report true only once")
	}
	c.Enqueue(&question.Question{ID: "a"}, &question.Question{ID: "b"})
	tr := c.Finish(mastery.StatusMastered, "mastered", testNow)
	if tr.From != mastery.StatusLearning || tr.To != mastery.StatusMastered || tr.ConceptName != "Adding integers" {
		t.Errorf("transition = %+v", tr)
	}
	if c.CompletedAt == nil || len(c.QueuedQuestions) != 0 {
		t.Errorf("concept = %+v", c)
	}
}

func TestQuestionQueue(t *testing.T) {
	c := NewConceptPlan(0, ConceptPlan{})
	if c.Dequeue() != nil {
		t.Error("empty queue should return nil")
	}
	c.Enqueue(&question.Question{ID: "a"}, &question.Question{ID: "b"})
	if q := c.Dequeue(); q.ID != "a" {
		t.Errorf("first = %q", q.ID)
	}
	if q := c.Dequeue(); q.ID != "b" {
		t.Errorf("second = %q", q.ID)
	}
	if c.QueuedQuestions != nil {
		t.Errorf("queue = %v", c.QueuedQuestions)
	}
}

func TestNextApproach(t *testing.T) {
	tests := []struct {
		current LearningStyle
		tried   []LearningStyle
		want    LearningStyle
	}{
		{StyleVisual, nil, StyleExamples},
		{StyleExamples, nil, StyleStepByStep},
		{StyleAnalogy, nil, StyleVisual},
		{StyleFormal, nil, StyleVisual},
		{StyleExamples, []LearningStyle{StyleStepByStep}, StyleAnalogy},
		{StyleVisual, []LearningStyle{StyleVisual, StyleExamples, StyleStepByStep, StyleAnalogy}, StyleExamples},
	}
	for _, tt := range tests {
		c := NewConceptPlan(0, ConceptPlan{TeachingApproach: tt.current})
		for _, a := range tt.tried {
			c.TryApproach(a)
		}
		if got := c.NextApproach(); got != tt.want {
			t.Errorf("NextApproach(%q, tried %v) = %q, want %q", tt.current, tt.tried, got, tt.want)
		}
	}
}

func TestTeachingLog(t *testing.T) {
	s := testSession()
	s.Log(&LogEntry{EntryType: EntryTeaching, AIMessage: "Integers are..."}, testNow)
	q := &question.Question{ID: "q1"}
	e := s.Log(&LogEntry{EntryType: EntryCheckUnderstanding, Question: q}, testNow)

	if len(e.LogID) != 8 || !e.Timestamp.Equal(testNow) {
		t.Errorf("entry = %+v", e)
	}
	if s.PendingQuestion() != e || s.FindQuestion("q1") != e {
		t.Error("expected q1 to be pending")
	}
	ok := true
	e.IsCorrect = &ok
	if s.PendingQuestion() != nil {
		t.Error("answered question should not be pending")
	}
	if s.LastQuestion() != e || s.FindQuestion("missing") != nil {
		t.Error("lookup mismatch")
	}
}

func TestSessionJSONFieldNames(t *testing.T) {
	s := testSession()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"session_id", "current_phase", "student", "diagnostic", "study_plan", "teaching_log", "conversation", "stats", "ai_notes", "format_version"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestComplete(t *testing.T) {
	s := testSession()
	s.Complete(testNow.Add(42 * time.Minute))
	if s.Status != StatusCompleted || s.Stats.DurationMinutes != 42 {
		t.Errorf("status = %q, duration = %d", s.Status, s.Stats.DurationMinutes)
	}
}
