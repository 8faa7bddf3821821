package tutor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/buddy/internal/llm"
	"github.com/abhisek/buddy/internal/session"
	"github.com/abhisek/buddy/internal/store"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *llm.MockProvider, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	mock := llm.NewMockProvider()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(st, mock, opts...), mock, st
}

func createRequest() CreateSessionRequest {
	return CreateSessionRequest{
		StudentID:   "stu-1",
		StudentName: "Priya",
		ClassGrade:  7,
		Subject:     "Mathematics",
		Chapter:     "Integers",
		Interests:   []string{"cricket"},
	}
}

// seedLearning stores a session that is already teaching a plan with n
// concepts.
func seedLearning(t *testing.T, st store.SessionStore, n int) *session.Session {
	t.Helper()
	s := session.New(session.Student{StudentID: "stu-1", Name: "Priya", ClassGrade: 7},
		&session.Meta{Subject: "Mathematics", Chapter: "Integers"}, session.DefaultWindow, testNow)

	concepts := make([]session.ConceptPlan, n)
	for i := range concepts {
		concepts[i] = session.ConceptPlan{ConceptID: fmt.Sprintf("c%d", i+1), Name: fmt.Sprintf("Concept %d", i+1)}
	}
	for _, ev := range []session.Event{session.EventStartDiagnostic, session.EventDiagnosticComplete} {
		_, _, err := s.Apply(ev)
		require.NoError(t, err)
	}
	s.StudyPlan = session.NewStudyPlan(concepts, 30, testNow)
	_, _, err := s.Apply(session.EventPlanGenerated)
	require.NoError(t, err)
	require.NoError(t, st.Put(context.Background(), s))
	return s
}

func load(t *testing.T, st store.SessionStore, id string) *session.Session {
	t.Helper()
	s, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	return s
}

func numericQ(id string, answer float64) map[string]any {
	return map[string]any{
		"type":           "numeric",
		"question_id":    id,
		"question_text":  "What is the answer?",
		"correct_answer": answer,
		"hint":           "Count carefully.",
		"difficulty":     "easy",
	}
}

func shortQ(id string) map[string]any {
	return map[string]any{
		"type":           "short_answer",
		"question_id":    id,
		"question_text":  "Why is -3 smaller than -1?",
		"correct_answer": "It is further left on the number line",
	}
}

func teachingResp(q map[string]any) llm.MockResponse {
	return llm.MockJSON(map[string]any{
		"teaching_content":  "Integers are whole numbers and their negatives.",
		"practice_question": q,
		"encouragement":     "You can do it!",
	})
}

func evalResp(correct bool, next map[string]any) llm.MockResponse {
	payload := map[string]any{
		"evaluation": map[string]any{"is_correct": correct, "partial_credit": 0.0},
		"feedback":   "Thanks for trying!",
	}
	if next != nil {
		payload["next_question"] = next
	}
	return llm.MockJSON(payload)
}

func diagEvalResp(correct, complete bool, next map[string]any) llm.MockResponse {
	payload := map[string]any{
		"evaluation":          map[string]any{"is_correct": correct},
		"feedback_to_student": "Noted!",
		"diagnostic_complete": complete,
	}
	if next != nil {
		payload["next_question"] = next
	}
	return llm.MockJSON(payload)
}

func findDisplay(r *Response, typ DisplayType) *Display {
	for i := range r.Display {
		if r.Display[i].Type == typ {
			return &r.Display[i]
		}
	}
	return nil
}
