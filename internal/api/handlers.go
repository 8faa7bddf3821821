package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/buddy/internal/session"
	"github.com/abhisek/buddy/internal/store"
	"github.com/abhisek/buddy/internal/tutor"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{"success": false, "error": message})
}

// statusFor maps a tutor error kind to an HTTP status.
func statusFor(err error) int {
	switch tutor.KindOf(err) {
	case "":
		return http.StatusOK
	case tutor.KindNotFound:
		return http.StatusNotFound
	case tutor.KindValidation:
		return http.StatusBadRequest
	case tutor.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// reply writes a tutor Response, choosing the status from err.
func reply(w http.ResponseWriter, resp *tutor.Response, err error) {
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	if resp == nil {
		Error(w, status, err.Error())
		return
	}
	JSON(w, status, resp)
}

// decode reads an optional JSON body into dst. An empty body leaves dst
// untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok", "model": s.opts.Model}
	if s.opts.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.Store.Ping(ctx); err != nil {
			s.log.Warn("health check failed", "error", err)
			body["status"] = "degraded"
			body["store"] = err.Error()
			JSON(w, http.StatusServiceUnavailable, body)
			return
		}
	}
	JSON(w, http.StatusOK, body)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req tutor.CreateSessionRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.tutor.CreateSession(r.Context(), req)
	if err == nil {
		JSON(w, http.StatusCreated, resp)
		return
	}
	reply(w, resp, err)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.ListFilter{
		StudentID: q.Get("student_id"),
		Status:    session.Status(q.Get("status")),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}
	list, err := s.tutor.ListSessions(r.Context(), f)
	if err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	JSON(w, http.StatusOK, map[string]any{"sessions": list, "count": len(list)})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.tutor.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	JSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.tutor.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) progress(w http.ResponseWriter, r *http.Request) {
	resp, err := s.tutor.Progress(r.Context(), chi.URLParam(r, "id"))
	reply(w, resp, err)
}

// step adapts an operation that only needs the session id.
func (s *Server) step(op func(context.Context, string) (*tutor.Response, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := op(r.Context(), chi.URLParam(r, "id"))
		reply(w, resp, err)
	}
}

// answer adapts an operation taking an AnswerRequest body.
func (s *Server) answer(op func(context.Context, string, tutor.AnswerRequest) (*tutor.Response, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tutor.AnswerRequest
		if err := decode(w, r, &req); err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Answer = plain(req.Answer)
		resp, err := op(r.Context(), chi.URLParam(r, "id"), req)
		reply(w, resp, err)
	}
}

func (s *Server) hint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID string `json:"question_id"`
	}
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.tutor.RequestHint(r.Context(), chi.URLParam(r, "id"), req.QuestionID)
	reply(w, resp, err)
}

func (s *Server) skip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.tutor.SkipConcept(r.Context(), chi.URLParam(r, "id"), req.Reason)
	reply(w, resp, err)
}

func (s *Server) message(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.tutor.SendMessage(r.Context(), chi.URLParam(r, "id"), req.Message)
	reply(w, resp, err)
}

// plain converts json.Number values produced by UseNumber back into
// float64 so answers look the same as generated content.
func plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i := range t {
			t[i] = plain(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = plain(t[k])
		}
		return t
	}
	return v
}
