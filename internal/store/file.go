package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/abhisek/buddy/internal/session"
)

// FileStore keeps each session as session_{id}.json in a directory.
// Writes go to a temporary file that is synced and renamed into place, so
// a reader never sees a partial record.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

var _ SessionStore = (*FileStore)(nil)

// ErrInvalidID is returned for ids that cannot name a file.
var ErrInvalidID = errors.New("invalid session id")

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (st *FileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(st.dir, "session_"+id+".json"), nil
}

func (st *FileStore) Put(_ context.Context, s *session.Session) error {
	p, err := st.path(s.ID)
	if err != nil {
		return err
	}
	data, err := encode(s)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	tmp, err := os.CreateTemp(st.dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session %s: %w", s.ID, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync session %s: %w", s.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session %s: %w", s.ID, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("rename session %s: %w", s.ID, err)
	}
	return nil
}

func (st *FileStore) Get(_ context.Context, id string) (*session.Session, error) {
	p, err := st.path(id)
	if err != nil {
		return nil, ErrNotFound
	}

	st.mu.RLock()
	data, err := os.ReadFile(p)
	st.mu.RUnlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}
	return decode(data)
}

func (st *FileStore) Delete(_ context.Context, id string) (bool, error) {
	p, err := st.path(id)
	if err != nil {
		return false, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete session %s: %w", id, err)
	}
	return true, nil
}

// List decodes every record in the directory. Unreadable or incompatible
// files are skipped.
func (st *FileStore) List(_ context.Context, f ListFilter) ([]Summary, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(st.dir, "session_*.json"))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	all := make([]Summary, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		s, err := decode(data)
		if err != nil {
			continue
		}
		all = append(all, Summarize(s))
	}
	return filterSummaries(all, f), nil
}

func (st *FileStore) Ping(_ context.Context) error {
	_, err := os.Stat(st.dir)
	return err
}

func (st *FileStore) Close() error {
	return nil
}
