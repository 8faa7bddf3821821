package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/buddy/internal/session"
)

// RedisStore keeps each record under {prefix}:session:{id}, its summary
// under {prefix}:summary:{id}, and sorted indexes by update time for all
// sessions and per student. A Put writes all four in one MULTI/EXEC.
type RedisStore struct {
	rdb    goredis.UniversalClient
	prefix string
}

var _ SessionStore = (*RedisStore)(nil)

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreWithClient(rdb, opts.Prefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(rdb goredis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "buddy"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (st *RedisStore) recordKey(id string) string  { return st.prefix + ":session:" + id }
func (st *RedisStore) summaryKey(id string) string { return st.prefix + ":summary:" + id }
func (st *RedisStore) indexKey() string            { return st.prefix + ":sessions" }
func (st *RedisStore) studentKey(sid string) string {
	return st.prefix + ":student:" + sid + ":sessions"
}

func (st *RedisStore) Put(ctx context.Context, s *session.Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	sum := Summarize(s)
	summary, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	// A student id change would otherwise leave a stale per-student entry.
	prev, err := st.summary(ctx, s.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	score := float64(s.UpdatedAt.UnixMilli())
	_, err = st.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, st.recordKey(s.ID), data, 0)
		pipe.Set(ctx, st.summaryKey(s.ID), summary, 0)
		pipe.ZAdd(ctx, st.indexKey(), goredis.Z{Score: score, Member: s.ID})
		if prev != nil && prev.StudentID != s.StudentID {
			pipe.ZRem(ctx, st.studentKey(prev.StudentID), s.ID)
		}
		pipe.ZAdd(ctx, st.studentKey(s.StudentID), goredis.Z{Score: score, Member: s.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("put session %s: %w", s.ID, err)
	}
	return nil
}

func (st *RedisStore) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := st.rdb.Get(ctx, st.recordKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return decode(data)
}

func (st *RedisStore) summary(ctx context.Context, id string) (*Summary, error) {
	raw, err := st.rdb.Get(ctx, st.summaryKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get summary %s: %w", id, err)
	}
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode summary %s: %w", id, err)
	}
	return &s, nil
}

func (st *RedisStore) Delete(ctx context.Context, id string) (bool, error) {
	prev, err := st.summary(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}

	var del *goredis.IntCmd
	_, err = st.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		del = pipe.Del(ctx, st.recordKey(id), st.summaryKey(id))
		pipe.ZRem(ctx, st.indexKey(), id)
		if prev != nil {
			pipe.ZRem(ctx, st.studentKey(prev.StudentID), id)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete session %s: %w", id, err)
	}
	return del.Val() > 0, nil
}

func (st *RedisStore) List(ctx context.Context, f ListFilter) ([]Summary, error) {
	key := st.indexKey()
	if f.StudentID != "" {
		key = st.studentKey(f.StudentID)
	}

	// Without a status filter the index order and limit can be used directly.
	stop := int64(-1)
	if f.Status == "" && f.Limit > 0 {
		stop = int64(f.Limit - 1)
	}
	ids, err := st.rdb.ZRevRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if len(ids) == 0 {
		return []Summary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = st.summaryKey(id)
	}
	vals, err := st.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load summaries: %w", err)
	}

	all := make([]Summary, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var s Summary
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			continue
		}
		all = append(all, s)
	}
	return filterSummaries(all, f), nil
}

func (st *RedisStore) Ping(ctx context.Context) error {
	return st.rdb.Ping(ctx).Err()
}

func (st *RedisStore) Close() error {
	return st.rdb.Close()
}
