package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/mod/semver"

	"github.com/abhisek/buddy/internal/session"
)

var (
	// ErrNotFound is returned by Get for an unknown session id.
	ErrNotFound = errors.New("session not found")

	// ErrIncompatibleVersion is returned for records written with a
	// different major format version.
	ErrIncompatibleVersion = errors.New("incompatible session format version")
)

// SessionStore persists whole session records.
type SessionStore interface {
	// Put creates or replaces the record as a single unit.
	Put(ctx context.Context, s *session.Session) error

	// Get loads a record. It returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete removes a record and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// List returns summaries, most recently updated first.
	List(ctx context.Context, f ListFilter) ([]Summary, error)

	Ping(ctx context.Context) error
	Close() error
}

// ListFilter narrows List. Zero fields match everything.
type ListFilter struct {
	StudentID string
	Status    session.Status
	Limit     int
}

func (f ListFilter) match(s Summary) bool {
	if f.StudentID != "" && s.StudentID != f.StudentID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	return true
}

// Summary is the listing view of a session.
type Summary struct {
	SessionID        string         `json:"session_id"`
	StudentID        string         `json:"student_id"`
	StudentName      string         `json:"student_name"`
	Subject          string         `json:"subject,omitempty"`
	Chapter          string         `json:"chapter,omitempty"`
	Phase            session.Phase  `json:"current_phase"`
	Status           session.Status `json:"status"`
	ConceptsTotal    int            `json:"concepts_total"`
	ConceptsMastered int            `json:"concepts_mastered"`
	XPEarned         int            `json:"xp_earned"`
	Accuracy         float64        `json:"accuracy"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Summarize builds the listing view of s.
func Summarize(s *session.Session) Summary {
	sum := Summary{
		SessionID:        s.ID,
		StudentID:        s.StudentID,
		StudentName:      s.Student.Name,
		Phase:            s.Phase,
		Status:           s.Status,
		ConceptsTotal:    s.StudyPlan.TotalConcepts,
		ConceptsMastered: s.Stats.ConceptsMastered,
		XPEarned:         s.Stats.XPEarned,
		Accuracy:         s.Stats.AccuracyRate,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.Meta != nil {
		sum.Subject = s.Meta.Subject
		sum.Chapter = s.Meta.Chapter
	}
	return sum
}

// encode stamps the current format version and serializes s.
func encode(s *session.Session) ([]byte, error) {
	if s.FormatVersion == "" {
		s.FormatVersion = session.FormatVersion
	}
	if err := checkVersion(s.FormatVersion); err != nil {
		return nil, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return data, nil
}

// decode parses a stored record, rejecting other major versions.
func decode(data []byte) (*session.Session, error) {
	var probe struct {
		FormatVersion string `json:"format_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if err := checkVersion(probe.FormatVersion); err != nil {
		return nil, err
	}
	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrIncompatibleVersion, v)
	}
	if semver.Major(v) != semver.Major(session.FormatVersion) {
		return fmt.Errorf("%w: record %s, supported %s", ErrIncompatibleVersion, v, session.FormatVersion)
	}
	return nil
}

// filterSummaries applies f and orders by UpdatedAt, newest first.
func filterSummaries(all []Summary, f ListFilter) []Summary {
	out := make([]Summary, 0, len(all))
	for _, s := range all {
		if f.match(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
