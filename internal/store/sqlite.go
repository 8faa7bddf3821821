package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/buddy/internal/session"
)

// SQLiteStore keeps one row per session in the sessions table.
type SQLiteStore struct {
	db *sql.DB
}

var _ SessionStore = (*SQLiteStore)(nil)

func (st *SQLiteStore) Put(ctx context.Context, s *session.Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	summary, err := json.Marshal(Summarize(s))
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO sessions
		(id, student_id, status, phase, format_version, created_at, updated_at, summary, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			student_id = excluded.student_id,
			status = excluded.status,
			phase = excluded.phase,
			format_version = excluded.format_version,
			updated_at = excluded.updated_at,
			summary = excluded.summary,
			data = excluded.data`,
		s.ID, s.StudentID, string(s.Status), string(s.Phase), s.FormatVersion,
		s.CreatedAt.UnixNano(), s.UpdatedAt.UnixNano(), string(summary), string(data))
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", s.ID, err)
	}
	return tx.Commit()
}

func (st *SQLiteStore) Get(ctx context.Context, id string) (*session.Session, error) {
	var data string
	err := st.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return decode([]byte(data))
}

func (st *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := st.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete session %s: %w", id, err)
	}
	return n > 0, nil
}

func (st *SQLiteStore) List(ctx context.Context, f ListFilter) ([]Summary, error) {
	var (
		where []string
		args  []any
	)
	if f.StudentID != "" {
		where = append(where, "student_id = ?")
		args = append(args, f.StudentID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	q := "SELECT summary FROM sessions"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY updated_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := st.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		var s Summary
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (st *SQLiteStore) Ping(ctx context.Context) error {
	return st.db.PingContext(ctx)
}

// Close is a no-op; the owning DB closes the connection.
func (st *SQLiteStore) Close() error {
	return nil
}
