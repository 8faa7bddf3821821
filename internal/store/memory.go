package store

import (
	"context"
	"sync"

	"github.com/abhisek/buddy/internal/session"
)

// MemoryStore keeps encoded records in a map. Records are copied in and
// out through JSON, so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

var _ SessionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (st *MemoryStore) Put(_ context.Context, s *session.Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	st.mu.Lock()
	st.records[s.ID] = data
	st.mu.Unlock()
	return nil
}

func (st *MemoryStore) Get(_ context.Context, id string) (*session.Session, error) {
	st.mu.RLock()
	data, ok := st.records[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

func (st *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.records[id]
	delete(st.records, id)
	return ok, nil
}

func (st *MemoryStore) List(_ context.Context, f ListFilter) ([]Summary, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	all := make([]Summary, 0, len(st.records))
	for _, data := range st.records {
		s, err := decode(data)
		if err != nil {
			continue
		}
		all = append(all, Summarize(s))
	}
	return filterSummaries(all, f), nil
}

func (st *MemoryStore) Ping(context.Context) error { return nil }
func (st *MemoryStore) Close() error               { return nil }
