package tutor

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/buddy/internal/session"
	"github.com/abhisek/buddy/internal/store"
)

// CreateSession starts a session in topic selection.
func (svc *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (*Response, error) {
	const op = "create_session"
	start := time.Now()
	if err := req.Validate(); err != nil {
		return svc.fail(op, "", "", start, invalidErr(op, err))
	}

	s := session.New(req.student(), req.meta(), svc.cfg.ConversationWindow, svc.now())
	welcome := fmt.Sprintf("Hi %s! Ready to learn %s? Let's start with a quick warm-up to see what you already know!",
		s.Student.Name, req.Subject)
	s.Conversation.Add(session.RoleTutor, welcome, svc.now())

	if err := svc.store.Put(ctx, s); err != nil {
		return svc.fail(op, s.ID, "", start, internal(op, err))
	}
	svc.metrics.SessionCreated()
	svc.metrics.Operation(op, "ok", time.Since(start))
	svc.log.Info("session created", "session_id", s.ID, "student_id", s.StudentID, "chapter", req.Chapter)
	return svc.respond(s, []Display{message(welcome)}), nil
}

// GetSession returns the full persisted record.
func (svc *Service) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return svc.load(ctx, "get_session", id)
}

// ListSessions returns session summaries, most recently updated first.
func (svc *Service) ListSessions(ctx context.Context, f store.ListFilter) ([]store.Summary, error) {
	out, err := svc.store.List(ctx, f)
	if err != nil {
		return nil, internal("list_sessions", err)
	}
	return out, nil
}

// DeleteSession removes a session. Deleting an unknown id is NotFound.
func (svc *Service) DeleteSession(ctx context.Context, id string) error {
	const op = "delete_session"
	if id == "" {
		return invalid(op, "session id is required")
	}
	unlock := svc.locks.Lock(id)
	defer unlock()

	existed, err := svc.store.Delete(ctx, id)
	if err != nil {
		return internal(op, err)
	}
	if !existed {
		return notFound(op, id)
	}
	svc.log.Info("session deleted", "session_id", id)
	return nil
}

// Progress returns the progress snapshot as a display item.
func (svc *Service) Progress(ctx context.Context, id string) (*Response, error) {
	return svc.view(ctx, "progress", id, func(s *session.Session) []Display {
		p := s.Progress()
		return []Display{{Type: DisplayProgress, Progress: &p}}
	})
}
