package tutor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/buddy/internal/mastery"
	"github.com/abhisek/buddy/internal/prompt"
	"github.com/abhisek/buddy/internal/question"
	"github.com/abhisek/buddy/internal/session"
)

const (
	allConceptsDone = "Amazing! You've completed all concepts for today! Let me wrap up your session..."
	reteachNotice   = "No worries! Let me explain this differently..."
	retryNotice     = "Let's give it another go."
	assessmentSoon  = "You're getting the hang of this! Time for a quick check."
	assessmentIntro = "Quick check! Let's see how well you've got this."
	reteachComfort  = "It's completely normal to find this tricky. Let me explain this a different way..."
	genericHint     = "Try breaking down the problem into smaller steps. What do you know for sure?"

	hintContextRunes = 100
)

type teachingOut struct {
	Content       string `json:"teaching_content"`
	Encouragement string `json:"encouragement"`
}

type practiceEvalOut struct {
	Evaluation   verdict        `json:"evaluation"`
	Feedback     string         `json:"feedback"`
	NextAction   string         `json:"next_action"`
	Hint         *string        `json:"hint"`
	NextQuestion map[string]any `json:"next_question"`
}

type reteachOut struct {
	Encouragement string `json:"encouragement"`
	Content       string `json:"teaching_content"`
}

type assessmentOut struct {
	Intro     string           `json:"assessment_intro"`
	Questions []map[string]any `json:"questions"`
}

// StartTeaching teaches the current concept and asks a practice question.
// Once every concept has been passed it moves the session to wrap-up.
func (svc *Service) StartTeaching(ctx context.Context, id string) (*Response, error) {
	return svc.mutate(ctx, "start_teaching", id, svc.startTeaching)
}

func (svc *Service) startTeaching(ctx context.Context, s *session.Session) ([]Display, error) {
	const op = "start_teaching"
	if !s.Phase.Learning() {
		return nil, invalid(op, "cannot start teaching during %s", s.Phase)
	}
	if err := transition(op, s, session.EventStartTeaching); err != nil {
		return nil, err
	}
	if s.Phase == session.PhaseWrapup {
		s.Conversation.Add(session.RoleTutor, allConceptsDone, svc.now())
		return []Display{message(allConceptsDone)}, nil
	}
	return svc.teach(ctx, op, s)
}

// teach runs the teaching prompt for the current concept. The session must
// already be in teaching.
func (svc *Service) teach(ctx context.Context, op string, s *session.Session) ([]Display, error) {
	c := s.StudyPlan.Current()
	if c == nil {
		return nil, invalid(op, "no concept left to teach")
	}
	now := svc.now()
	if c.Start(now) {
		s.Stats.ConceptsTaught++
	}
	approach := c.TeachingApproach
	if !approach.Valid() {
		approach = s.Student.Preferences.LearningStyle
	}
	c.TryApproach(approach)

	system, err := prompt.Teaching(s, c)
	if err != nil {
		return nil, internal(op, err)
	}
	res, err := svc.generate(ctx, op, "teaching", system, "", teachingSchema)
	if err != nil {
		return nil, err
	}
	var out teachingOut
	if err := res.Decode(&out); err != nil {
		return nil, unavailable(op, err)
	}
	q, err := svc.normalize(op, res.Payload["practice_question"], c.Name)
	if err != nil {
		return nil, err
	}

	s.Log(&session.LogEntry{
		ConceptID:        c.ConceptID,
		EntryType:        session.EntryTeaching,
		AIMessage:        out.Content,
		TeachingApproach: string(approach),
	}, now)
	ask(s, c, session.EntryCheckUnderstanding, q, q.Text(), false, now)
	s.Conversation.Add(session.RoleTutor, out.Content, now)

	items := []Display{message(out.Content)}
	if out.Encouragement != "" {
		items = append(items, encouragement(out.Encouragement))
	}
	return append(items, svc.practice(q, c)), nil
}

// SubmitAnswer evaluates the answer to a practice or assessment question
// and applies the progression policy.
func (svc *Service) SubmitAnswer(ctx context.Context, id string, req AnswerRequest) (*Response, error) {
	return svc.mutate(ctx, "submit_answer", id, func(ctx context.Context, s *session.Session) ([]Display, error) {
		return svc.submitAnswer(ctx, s, req)
	})
}

func (svc *Service) submitAnswer(ctx context.Context, s *session.Session, req AnswerRequest) ([]Display, error) {
	const op = "submit_answer"
	if err := req.Validate(); err != nil {
		return nil, invalidErr(op, err)
	}
	if !s.Phase.Learning() {
		return nil, invalid(op, "no practice question during %s", s.Phase)
	}
	c := s.StudyPlan.Current()
	if c == nil {
		return nil, invalid(op, "no concept in progress")
	}
	entry, err := resolveQuestion(s, req.QuestionID)
	if err != nil {
		return nil, invalidErr(op, err)
	}
	if entry.ConceptID != c.ConceptID {
		return nil, invalid(op, "question %s belongs to another concept", entry.Question.ID)
	}

	now := svc.now()
	q := entry.Question
	answer := question.AnswerString(req.Answer)
	eval := question.Evaluate(q, req.Answer)
	s.Conversation.Add(session.RoleStudent, answer, now)

	system, err := prompt.AnswerEvaluation(s, c, prompt.AnswerEvalInput{
		QuestionText:  q.Text(),
		Answer:        answer,
		CorrectAnswer: q.CorrectAnswer(),
		Attempt:       c.Attempts + 1,
		Hints:         s.Stats.HintsUsed,
	})
	if err != nil {
		return nil, internal(op, err)
	}
	res, err := svc.generate(ctx, op, "answer_evaluation", system, answer, answerSchema)
	if err != nil {
		return nil, err
	}
	var out practiceEvalOut
	if err := res.Decode(&out); err != nil {
		return nil, unavailable(op, err)
	}
	if eval, err = out.Evaluation.apply(eval); err != nil {
		return nil, unavailable(op, err)
	}

	accuracy, attempted := s.Stats.AccuracyRate, s.Stats.QuestionsAttempted
	d := svc.policy.Record(&c.Progress, eval.IsCorrect, entry.HintGiven)
	s.Stats.Record(eval.IsCorrect)
	s.Stats.AddXP(d.TotalXP())
	svc.metrics.Answer(string(s.Phase), eval.IsCorrect)
	if out.NextAction != "" && out.NextAction != string(d.Action) {
		svc.log.Debug("suggested action overruled", "session_id", s.ID, "suggested", out.NextAction, "decided", d.Action)
	}

	correct := eval.IsCorrect
	entry.StudentResponse = &answer
	entry.IsCorrect = &correct
	fb := &Feedback{
		QuestionID: q.ID,
		IsCorrect:  correct,
		Credit:     eval.Credit,
		Message:    orDefault(out.Feedback, defaultFeedback(correct)),
		XPEarned:   d.TotalXP(),
		NextAction: string(d.Action),
	}
	if !correct {
		fb.CorrectAnswer = eval.CorrectAnswer
		fb.Explanation = q.Explanation
		fb.MistakeType = classify(q, answer, req.TimeTakenSeconds, accuracy, attempted, out.Evaluation.MistakeType)
		entry.MistakeType = fb.MistakeType
	}
	entry.FeedbackGiven = fb.Message
	s.Log(&session.LogEntry{
		ConceptID:       c.ConceptID,
		EntryType:       session.EntryAssessment,
		AIMessage:       fb.Message,
		StudentResponse: &answer,
		IsCorrect:       &correct,
		HintGiven:       entry.HintGiven,
		MistakeType:     fb.MistakeType,
	}, now)
	s.Conversation.Add(session.RoleTutor, fb.Message, now)
	items := []Display{{Type: DisplayFeedback, Feedback: fb}}

	var next []Display
	switch d.Action {
	case mastery.ActionNextConcept:
		next, err = svc.finishConcept(op, s, c, mastery.StatusMastered, "mastery_threshold", d)
	case mastery.ActionReview:
		next, err = svc.finishConcept(op, s, c, mastery.StatusNeedsReview, "reteach_limit", d)
	case mastery.ActionReteach:
		if err = transition(op, s, session.EventReteach); err == nil {
			next = []Display{message(reteachNotice)}
		}
	case mastery.ActionHint:
		if err = transition(op, s, session.EventAnswerIncorrect); err == nil {
			next = svc.offerHint(s, c, q, out.Hint)
		}
	case mastery.ActionRetry:
		if err = transition(op, s, session.EventAnswerIncorrect); err == nil {
			next = svc.offerRetry(op, s, c, q, out.NextQuestion)
		}
	case mastery.ActionNextQuestion:
		if err = transition(op, s, session.EventAnswerCorrect); err == nil {
			next = svc.offerNext(op, s, c, out.NextQuestion)
		}
	}
	if err != nil {
		return nil, err
	}
	return append(items, next...), nil
}

// resolveQuestion finds the log entry an answer refers to: the named
// question, or the one currently awaiting a response.
func resolveQuestion(s *session.Session, id string) (*session.LogEntry, error) {
	var e *session.LogEntry
	if id != "" {
		if e = s.FindQuestion(id); e == nil {
			return nil, fmt.Errorf("unknown question %s", id)
		}
	} else if e = s.PendingQuestion(); e == nil {
		return nil, errors.New("no question awaiting an answer")
	}
	if e.Answered() {
		return nil, fmt.Errorf("question %s already answered", e.Question.ID)
	}
	return e, nil
}

// finishConcept closes c and advances the plan before the phase event so
// the guard sees whether concepts remain.
func (svc *Service) finishConcept(op string, s *session.Session, c *session.ConceptPlan, status mastery.ConceptStatus, trigger string, d mastery.Decision) ([]Display, error) {
	now := svc.now()
	t := c.Finish(status, trigger, now)
	svc.metrics.ConceptOutcome(string(status))
	svc.log.Info("concept finished", "session_id", s.ID, "concept_id", t.ConceptID, "from", t.From, "to", t.To, "trigger", t.Trigger)

	var items []Display
	ev := session.EventConceptMastered
	if status == mastery.StatusMastered {
		s.Stats.ConceptsMastered++
		items = append(items, Display{Type: DisplayCelebration, Celebration: &Celebration{
			Title:   "Concept Mastered!",
			Message: fmt.Sprintf("You've mastered %s!", c.Name),
			XP:      d.TotalXP(),
		}})
	} else {
		ev = session.EventConceptSkipped
		s.Notes.NextSessionRecommendations = append(s.Notes.NextSessionRecommendations, "Review "+c.Name)
		items = append(items, message(fmt.Sprintf("Let's keep practising %s next time. For now, let's move on!", c.Name)))
	}

	s.StudyPlan.Advance()
	if err := transition(op, s, ev); err != nil {
		return nil, err
	}
	return append(items, svc.upNext(s)), nil
}

func (svc *Service) upNext(s *session.Session) Display {
	msg := allConceptsDone
	if next := s.StudyPlan.Current(); next != nil && s.Phase != session.PhaseWrapup {
		msg = fmt.Sprintf("Ready for the next concept? We'll learn about: %s", next.Name)
	}
	s.Conversation.Add(session.RoleTutor, msg, svc.now())
	return message(msg)
}

// offerHint shows q again with a hint. The new entry carries the hint flag
// so the next wrong answer to it is a retry.
func (svc *Service) offerHint(s *session.Session, c *session.ConceptPlan, q *question.Question, proposed *string) []Display {
	hint := q.Hint
	if proposed != nil && *proposed != "" {
		hint = *proposed
	}
	if hint == "" {
		hint = genericHint
	}
	s.Stats.UseHint()
	ask(s, c, session.EntryHint, q, hint, true, svc.now())
	return []Display{message("Hint: " + hint), svc.practice(q, c)}
}

// offerRetry asks the suggested follow-up, or q again when there is none.
func (svc *Service) offerRetry(op string, s *session.Session, c *session.ConceptPlan, q *question.Question, raw map[string]any) []Display {
	if next := svc.followUp(op, s, c, raw); next != nil {
		return []Display{message(retryNotice), svc.practice(next, c)}
	}
	ask(s, c, session.EntryRetry, q, q.Text(), true, svc.now())
	return []Display{message(retryNotice), svc.practice(q, c)}
}

// offerNext asks a queued mini-quiz question, the suggested follow-up, or
// hands over to StartAssessment when there is neither.
func (svc *Service) offerNext(op string, s *session.Session, c *session.ConceptPlan, raw map[string]any) []Display {
	if q := c.Dequeue(); q != nil {
		ask(s, c, session.EntryAssessment, q, q.Text(), false, svc.now())
		return []Display{svc.practice(q, c)}
	}
	if next := svc.followUp(op, s, c, raw); next != nil {
		return []Display{svc.practice(next, c)}
	}
	return []Display{message(assessmentSoon)}
}

// followUp logs the suggested next question when it normalizes cleanly.
func (svc *Service) followUp(op string, s *session.Session, c *session.ConceptPlan, raw map[string]any) *question.Question {
	if raw == nil {
		return nil
	}
	q, err := svc.normalize(op, raw, c.Name)
	if err != nil {
		svc.log.Warn("follow-up question dropped", "session_id", s.ID, "error", err)
		return nil
	}
	ask(s, c, session.EntryCheckUnderstanding, q, q.Text(), false, svc.now())
	return q
}

// ask logs q as the question awaiting an answer. A new question reusing an
// id already seen in the session is renamed.
func ask(s *session.Session, c *session.ConceptPlan, typ session.EntryType, q *question.Question, text string, hintGiven bool, now time.Time) {
	if prev := s.FindQuestion(q.ID); prev != nil && prev.Question != q {
		q.ID = fmt.Sprintf("%s-%d", q.ID, len(s.TeachingLog)+1)
	}
	s.Log(&session.LogEntry{
		ConceptID: c.ConceptID,
		EntryType: typ,
		AIMessage: text,
		HintGiven: hintGiven,
		Question:  q,
	}, now)
}

func (svc *Service) practice(q *question.Question, c *session.ConceptPlan) Display {
	return practiceItem(q, c, svc.policy.Config().MaxAttempts)
}

// RequestHint returns a hint for a question without calling the reasoning
// service. questionID may be empty for the latest question.
func (svc *Service) RequestHint(ctx context.Context, id, questionID string) (*Response, error) {
	return svc.mutate(ctx, "request_hint", id, func(ctx context.Context, s *session.Session) ([]Display, error) {
		return svc.requestHint(s, questionID)
	})
}

func (svc *Service) requestHint(s *session.Session, questionID string) ([]Display, error) {
	const op = "request_hint"
	var hint string
	switch {
	case s.Phase == session.PhaseDiagnostic:
		dq := s.Diagnostic.Pending()
		if questionID != "" {
			dq = s.Diagnostic.Find(questionID)
		}
		if dq == nil {
			return nil, invalid(op, "no diagnostic question to hint")
		}
		dq.HintsUsed++
		if dq.Question != nil {
			hint = dq.Question.Hint
		}
	case s.Phase.Learning():
		e := s.LastQuestion()
		if questionID != "" {
			e = s.FindQuestion(questionID)
		}
		if e != nil {
			e.HintGiven = true
			hint = e.Question.Hint
			if hint == "" {
				hint = fmt.Sprintf("Think about: %s What's the first step?", clip(e.Question.Text(), hintContextRunes))
			}
		}
	default:
		return nil, invalid(op, "no question to hint during %s", s.Phase)
	}
	if hint == "" {
		hint = genericHint
	}
	s.Stats.UseHint()
	return []Display{message("Hint: " + hint)}, nil
}

// Reteach explains the current concept again with the next untried
// approach and asks a simpler question.
func (svc *Service) Reteach(ctx context.Context, id string) (*Response, error) {
	return svc.mutate(ctx, "reteach", id, svc.reteach)
}

func (svc *Service) reteach(ctx context.Context, s *session.Session) ([]Display, error) {
	const op = "reteach"
	if err := transition(op, s, session.EventStartReteach); err != nil {
		return nil, err
	}
	c := s.StudyPlan.Current()
	previous := c.TeachingApproach
	approach := c.NextApproach()
	c.TeachingApproach = approach
	c.TryApproach(approach)

	system, err := prompt.Reteach(s, c, prompt.ReteachInput{
		Previous: previous,
		Approach: approach,
		Mistakes: mistakes(s, c.ConceptID),
	})
	if err != nil {
		return nil, internal(op, err)
	}
	res, err := svc.generate(ctx, op, "reteach", system, "", reteachSchema)
	if err != nil {
		return nil, err
	}
	var out reteachOut
	if err := res.Decode(&out); err != nil {
		return nil, unavailable(op, err)
	}
	q, err := svc.normalize(op, res.Payload["simple_question"], c.Name)
	if err != nil {
		return nil, err
	}

	now := svc.now()
	s.Notes.TeachingAdjustmentsMade = append(s.Notes.TeachingAdjustmentsMade,
		fmt.Sprintf("%s: switched from %s to %s", c.Name, previous, approach))
	s.Log(&session.LogEntry{
		ConceptID:        c.ConceptID,
		EntryType:        session.EntryTeaching,
		AIMessage:        out.Content,
		TeachingApproach: string(approach),
	}, now)
	ask(s, c, session.EntryCheckUnderstanding, q, q.Text(), false, now)
	s.Conversation.Add(session.RoleTutor, out.Content, now)

	return []Display{
		encouragement(orDefault(out.Encouragement, reteachComfort)),
		message(out.Content),
		svc.practice(q, c),
	}, nil
}

// mistakes lists the distinct mistake types recorded for a concept.
func mistakes(s *session.Session, conceptID string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range s.TeachingLog {
		if e.ConceptID != conceptID || e.MistakeType == "" || seen[e.MistakeType] {
			continue
		}
		seen[e.MistakeType] = true
		out = append(out, e.MistakeType)
	}
	return out
}

// StartAssessment runs the concept mini-quiz. Questions are generated once
// and queued on the concept; each call asks the next one.
func (svc *Service) StartAssessment(ctx context.Context, id string) (*Response, error) {
	return svc.mutate(ctx, "start_assessment", id, svc.startAssessment)
}

func (svc *Service) startAssessment(ctx context.Context, s *session.Session) ([]Display, error) {
	const op = "start_assessment"
	if err := transition(op, s, session.EventStartAssessment); err != nil {
		return nil, err
	}
	c := s.StudyPlan.Current()
	if e := s.PendingQuestion(); e != nil && e.ConceptID == c.ConceptID {
		return []Display{svc.practice(e.Question, c)}, nil
	}

	intro := assessmentIntro
	q := c.Dequeue()
	if q == nil {
		system, err := prompt.Assessment(s, c)
		if err != nil {
			return nil, internal(op, err)
		}
		res, err := svc.generate(ctx, op, "assessment", system, "", assessmentSchema)
		if err != nil {
			return nil, err
		}
		var out assessmentOut
		if err := res.Decode(&out); err != nil {
			return nil, unavailable(op, err)
		}
		var qs []*question.Question
		for _, raw := range out.Questions {
			aq, err := svc.normalize(op, raw, c.Name)
			if err != nil {
				svc.log.Warn("assessment question dropped", "session_id", s.ID, "error", err)
				continue
			}
			qs = append(qs, aq)
		}
		if len(qs) == 0 {
			return nil, unavailable(op, errors.New("no usable assessment questions"))
		}
		c.Enqueue(qs...)
		q = c.Dequeue()
		intro = orDefault(out.Intro, intro)
	}

	now := svc.now()
	ask(s, c, session.EntryAssessment, q, q.Text(), false, now)
	s.Conversation.Add(session.RoleTutor, intro, now)
	return []Display{message(intro), svc.practice(q, c)}, nil
}

// SkipConcept gives up on the current concept and teaches the next one.
func (svc *Service) SkipConcept(ctx context.Context, id, reason string) (*Response, error) {
	return svc.mutate(ctx, "skip_concept", id, func(ctx context.Context, s *session.Session) ([]Display, error) {
		return svc.skipConcept(ctx, s, reason)
	})
}

func (svc *Service) skipConcept(ctx context.Context, s *session.Session, reason string) ([]Display, error) {
	const op = "skip_concept"
	if !s.Phase.Learning() {
		return nil, invalid(op, "nothing to skip during %s", s.Phase)
	}
	c := s.StudyPlan.Current()
	if c == nil {
		return nil, invalid(op, "no concept in progress")
	}

	now := svc.now()
	t := c.Finish(mastery.StatusSkipped, "skipped", now)
	svc.metrics.ConceptOutcome(string(mastery.StatusSkipped))
	svc.log.Info("concept skipped", "session_id", s.ID, "concept_id", t.ConceptID, "reason", reason)
	note := "Skipped " + c.Name
	if reason != "" {
		note += ": " + reason
	}
	s.Notes.Observations = append(s.Notes.Observations, note)

	s.StudyPlan.Advance()
	if err := transition(op, s, session.EventConceptSkipped); err != nil {
		return nil, err
	}
	if s.Phase == session.PhaseWrapup {
		s.Conversation.Add(session.RoleTutor, allConceptsDone, now)
		return []Display{message(allConceptsDone)}, nil
	}
	items, err := svc.teach(ctx, op, s)
	if err != nil {
		return nil, err
	}
	moveOn := fmt.Sprintf("No problem! Let's move on to %s.", s.StudyPlan.Current().Name)
	return append([]Display{message(moveOn)}, items...), nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
