package tutor

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/buddy/internal/diagnosis"
	"github.com/abhisek/buddy/internal/prompt"
	"github.com/abhisek/buddy/internal/question"
	"github.com/abhisek/buddy/internal/session"
)

const (
	diagnosticOpening = "Let's start with a warm-up question!"
	diagnosticDone    = "Great job completing the warm-up! Let me create a personalised study plan for you..."
	diagnosticOnward  = "Let's keep going!"
)

// verdict is what the reasoning service says about an answer. It only
// decides correctness for types the evaluator defers.
type verdict struct {
	IsCorrect     *bool   `json:"is_correct"`
	PartialCredit float64 `json:"partial_credit"`
	MistakeType   *string `json:"mistake_type"`
	Misconception *string `json:"misconception"`
}

func (v verdict) apply(eval question.Evaluation) (question.Evaluation, error) {
	if !eval.Deferred {
		return eval, nil
	}
	if v.IsCorrect == nil {
		return eval, errors.New("no verdict for an open answer")
	}
	return eval.Override(*v.IsCorrect, v.PartialCredit), nil
}

type diagnosticQuestionOut struct {
	Message string `json:"message_to_student"`
}

type diagnosticEvalOut struct {
	Evaluation         verdict          `json:"evaluation"`
	Feedback           string           `json:"feedback_to_student"`
	DiagnosticComplete bool             `json:"diagnostic_complete"`
	NextQuestion       map[string]any   `json:"next_question"`
	FinalAssessment    *finalAssessment `json:"final_assessment"`
}

type finalAssessment struct {
	OverallLevel            string   `json:"overall_level"`
	ConceptsKnown           []string `json:"concepts_known"`
	ConceptsWeak            []string `json:"concepts_weak"`
	Misconceptions          []string `json:"misconceptions"`
	RecommendedStartConcept string   `json:"recommended_start_concept"`
	PersonalizedNote        string   `json:"personalized_note"`
}

func (f *finalAssessment) proposal() diagnosis.Proposal {
	if f == nil {
		return diagnosis.Proposal{}
	}
	return diagnosis.Proposal{
		OverallLevel:            f.OverallLevel,
		ConceptsKnown:           f.ConceptsKnown,
		ConceptsWeak:            f.ConceptsWeak,
		Misconceptions:          f.Misconceptions,
		RecommendedStartConcept: f.RecommendedStartConcept,
		PersonalizedNote:        f.PersonalizedNote,
	}
}

// StartDiagnostic enters the diagnostic and asks the first question. Called
// again while a question is pending, it shows that question again.
func (svc *Service) StartDiagnostic(ctx context.Context, id string) (*Response, error) {
	return svc.mutate(ctx, "start_diagnostic", id, svc.startDiagnostic)
}

func (svc *Service) startDiagnostic(ctx context.Context, s *session.Session) ([]Display, error) {
	const op = "start_diagnostic"
	d := &s.Diagnostic

	switch s.Phase {
	case session.PhaseTopicSelection:
		if err := transition(op, s, session.EventStartDiagnostic); err != nil {
			return nil, err
		}
	case session.PhaseDiagnostic:
		if d.Assessment != nil {
			return nil, invalid(op, "diagnostic already completed")
		}
		if q := d.Pending(); q != nil {
			return []Display{message("Here's your question again:"), questionItem(q.Question)}, nil
		}
		if svc.loop.Remaining(d) == 0 {
			return nil, invalid(op, "diagnostic question budget exhausted")
		}
	default:
		return nil, invalid(op, "cannot start the diagnostic during %s", s.Phase)
	}

	svc.loop.Begin(d, svc.now())
	return svc.askDiagnostic(ctx, op, s)
}

func (svc *Service) askDiagnostic(ctx context.Context, op string, s *session.Session) ([]Display, error) {
	system, err := prompt.Diagnostic(s, prompt.DiagnosticInput{
		Number: len(s.Diagnostic.Questions) + 1,
		Max:    svc.loop.MaxQuestions,
	})
	if err != nil {
		return nil, internal(op, err)
	}
	res, err := svc.generate(ctx, op, "diagnostic_question", system, "", diagnosis.QuestionSchema)
	if err != nil {
		return nil, err
	}

	var out diagnosticQuestionOut
	if err := res.Decode(&out); err != nil {
		return nil, unavailable(op, err)
	}
	q, err := svc.normalize(op, res.Payload["question"], "")
	if err != nil {
		return nil, err
	}
	dq, err := svc.loop.Ask(&s.Diagnostic, q)
	if err != nil {
		return nil, invalidErr(op, err)
	}

	msg := orDefault(out.Message, diagnosticOpening)
	s.Conversation.Add(session.RoleTutor, msg, svc.now())
	return []Display{message(msg), questionItem(dq.Question)}, nil
}

// SubmitDiagnosticAnswer records the answer to a diagnostic question and
// either asks the next one or completes the diagnostic.
func (svc *Service) SubmitDiagnosticAnswer(ctx context.Context, id string, req AnswerRequest) (*Response, error) {
	return svc.mutate(ctx, "submit_diagnostic_answer", id, func(ctx context.Context, s *session.Session) ([]Display, error) {
		return svc.submitDiagnostic(ctx, s, req)
	})
}

func (svc *Service) submitDiagnostic(ctx context.Context, s *session.Session, req AnswerRequest) ([]Display, error) {
	const op = "submit_diagnostic_answer"
	if err := req.Validate(); err != nil {
		return nil, invalidErr(op, err)
	}
	if s.Phase != session.PhaseDiagnostic {
		return nil, invalid(op, "no diagnostic in progress during %s", s.Phase)
	}
	d := &s.Diagnostic
	dq, err := svc.loop.Resolve(d, req.QuestionID)
	if err != nil {
		return nil, invalidErr(op, err)
	}
	if dq.Question == nil {
		return nil, internal(op, fmt.Errorf("diagnostic question %s has no definition", dq.QuestionID))
	}

	now := svc.now()
	answer := question.AnswerString(req.Answer)
	eval := question.Evaluate(dq.Question, req.Answer)
	s.Conversation.Add(session.RoleStudent, answer, now)

	system, err := prompt.DiagnosticEvaluation(s, prompt.DiagnosticEvalInput{
		QuestionText:  dq.QuestionText,
		Answer:        answer,
		CorrectAnswer: dq.CorrectAnswer,
		Concept:       dq.ConceptTested,
		Asked:         len(d.Questions),
		Max:           svc.loop.MaxQuestions,
	})
	if err != nil {
		return nil, internal(op, err)
	}
	res, err := svc.generate(ctx, op, "diagnostic_evaluation", system, answer, diagnosis.EvaluationSchema)
	if err != nil {
		return nil, err
	}
	var out diagnosticEvalOut
	if err := res.Decode(&out); err != nil {
		return nil, unavailable(op, err)
	}
	if eval, err = out.Evaluation.apply(eval); err != nil {
		return nil, unavailable(op, err)
	}

	accuracy, attempted := s.Stats.AccuracyRate, s.Stats.QuestionsAttempted
	if err := svc.loop.Answer(dq, answer, eval, req.TimeTakenSeconds); err != nil {
		return nil, invalidErr(op, err)
	}
	s.Stats.Record(eval.IsCorrect)
	svc.metrics.Answer(string(s.Phase), eval.IsCorrect)

	fb := &Feedback{
		QuestionID: dq.QuestionID,
		IsCorrect:  eval.IsCorrect,
		Credit:     eval.Credit,
		Message:    orDefault(out.Feedback, defaultFeedback(eval.IsCorrect)),
	}
	if !eval.IsCorrect {
		fb.CorrectAnswer = eval.CorrectAnswer
		fb.Explanation = dq.Question.Explanation
		fb.MistakeType = classify(dq.Question, answer, req.TimeTakenSeconds, accuracy, attempted, out.Evaluation.MistakeType)
		dq.MistakeAnalysis = fb.MistakeType
		if m := out.Evaluation.Misconception; m != nil && *m != "" {
			dq.MistakeAnalysis = *m
		}
	}
	s.Conversation.Add(session.RoleTutor, fb.Message, now)
	items := []Display{{Type: DisplayFeedback, Feedback: fb}}

	if svc.loop.Done(d, out.DiagnosticComplete) {
		a, err := svc.loop.Complete(d, out.FinalAssessment.proposal(), now)
		if err != nil {
			return nil, invalidErr(op, err)
		}
		if err := transition(op, s, session.EventDiagnosticComplete); err != nil {
			return nil, err
		}
		s.Notes.Observations = append(s.Notes.Observations,
			fmt.Sprintf("Diagnostic: %s level, %s correct", a.OverallLevel, percent(a.Score)))
		svc.log.Info("diagnostic completed", "session_id", s.ID, "level", a.OverallLevel, "score", a.Score, "questions", len(d.Questions))
		s.Conversation.Add(session.RoleTutor, diagnosticDone, now)
		return append(items, message(diagnosticDone)), nil
	}

	// A bad follow-up is not fatal: the answer is kept and StartDiagnostic
	// asks for a fresh question.
	next, err := svc.normalize(op, out.NextQuestion, "")
	if err == nil {
		_, err = svc.loop.Ask(d, next)
	}
	if err != nil {
		svc.log.Warn("no usable next diagnostic question", "session_id", s.ID, "error", err)
		return append(items, message(diagnosticOnward)), nil
	}
	return append(items, questionItem(next)), nil
}

// classify names the mistake behind a wrong answer. The rule-based
// classifiers win; the service's label is used when none apply.
func classify(q *question.Question, answer string, timeTaken *int, accuracy float64, attempted int, proposed *string) string {
	in := &diagnosis.ClassifyInput{
		Question:  q,
		Answer:    answer,
		Accuracy:  accuracy,
		Attempted: attempted,
	}
	if timeTaken != nil {
		in.TimeTakenSeconds = *timeTaken
	}
	if mt := diagnosis.Classify(diagnosis.DefaultClassifiers(), in); mt != diagnosis.MistakeUnclassified {
		return string(mt)
	}
	if proposed != nil && *proposed != "" && *proposed != "none" {
		return *proposed
	}
	return string(diagnosis.MistakeUnclassified)
}

func defaultFeedback(correct bool) string {
	if correct {
		return "That's right, well done!"
	}
	return "Not quite, but that's okay. Let's look at it together."
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}
