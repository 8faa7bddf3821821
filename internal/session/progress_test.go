package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/buddy/internal/mastery"
)

func TestStatsAccuracy(t *testing.T) {
	var s Stats
	for _, correct := range []bool{true, false, true, true} {
		s.Record(correct)
	}
	if s.QuestionsAttempted != 4 || s.QuestionsCorrect != 3 || s.AccuracyRate != 0.75 {
		t.Errorf("stats = %+v", s)
	}
}

func TestStatsXPNeverDecreases(t *testing.T) {
	var s Stats
	s.AddXP(10)
	s.AddXP(-5)
	s.AddXP(0)
	if s.XPEarned != 10 {
		t.Errorf("xp = %d", s.XPEarned)
	}
}

func TestProgressSnapshot(t *testing.T) {
	s := testSession()
	p := s.Progress()
	if p.ConceptsTotal != 1 || p.CurrentConcept != "Getting started" || p.Phase != PhaseTopicSelection {
		t.Errorf("empty progress = %+v", p)
	}

	s.StudyPlan = NewStudyPlan([]ConceptPlan{{Name: "Adding"}, {Name: "Subtracting"}, {Name: "Multiplying"}}, 20, testNow)
	s.StudyPlan.Concepts[0].Status = mastery.StatusMastered
	s.StudyPlan.Concepts[1].Status = mastery.StatusNeedsReview
	s.StudyPlan.CurrentConceptIndex = 2
	s.Stats.ConceptsMastered = 1
	s.Stats.Record(true)
	s.Stats.AddXP(30)

	p = s.Progress()
	if p.ConceptsTotal != 3 || p.ConceptsCompleted != 1 || p.CurrentConcept != "Multiplying" {
		t.Errorf("progress = %+v", p)
	}
	if p.ConceptsNeedReview != 1 || p.XPEarned != 30 || p.Accuracy != 1 {
		t.Errorf("progress = %+v", p)
	}
}

func TestConversationWindow(t *testing.T) {
	c := NewConversation(3)
	for i := 0; i < 5; i++ {
		c.Add(RoleStudent, fmt.Sprintf("msg %d", i), time.Now())
	}
	c.Add(RoleTutor, "", time.Now())

	if c.TotalMessages != 5 || len(c.RecentMessages) != 3 {
		t.Fatalf("total = %d, recent = %d", c.TotalMessages, len(c.RecentMessages))
	}
	if c.RecentMessages[0].Content != "msg 2" || c.RecentMessages[2].Content != "msg 4" {
		t.Errorf("recent = %+v", c.RecentMessages)
	}
	if got := c.Recent(2); len(got) != 2 || got[0].Content != "msg 3" {
		t.Errorf("Recent(2) = %+v", got)
	}
	if got := c.Recent(10); len(got) != 3 {
		t.Errorf("Recent(10) = %d", len(got))
	}
}

func TestConversationSignals(t *testing.T) {
	c := NewConversation(0)
	c.Signal(MoodConfused)
	c.Signal(MoodFrustrated)
	c.Signal("")
	if c.ConfusionSignals != 1 || c.FrustrationSignals != 1 || c.StudentMood != MoodFrustrated {
		t.Errorf("conversation = %+v", c)
	}
}

func TestSummaryXPFromStats(t *testing.T) {
	s := testSession()
	s.Stats.AddXP(50)
	sum := s.NewSummary("Great work!", nil, nil, "Next time: fractions", "")
	if sum.XP.EarnedToday != 50 || sum.Highlights == nil || sum.AreasToPractice == nil {
		t.Errorf("summary = %+v", sum)
	}
}
