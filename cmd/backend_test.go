package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/abhisek/buddy/internal/config"
	"github.com/abhisek/buddy/internal/store"
)

func TestOpenBackend(t *testing.T) {
	tests := []struct {
		backend string
		is      func(store.SessionStore) bool
	}{
		{config.BackendSQLite, func(s store.SessionStore) bool { _, ok := s.(*store.SQLiteStore); return ok }},
		{config.BackendMemory, func(s store.SessionStore) bool { _, ok := s.(*store.MemoryStore); return ok }},
		{config.BackendFile, func(s store.SessionStore) bool { _, ok := s.(*store.FileStore); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.Default()
			cfg.Store.Backend = tt.backend
			cfg.Store.DBPath = filepath.Join(dir, "buddy.db")
			cfg.Store.SessionDir = filepath.Join(dir, "sessions")

			b, err := openBackend(context.Background(), cfg)
			if err != nil {
				t.Fatalf("openBackend: %v", err)
			}
			defer b.Close()

			if !tt.is(b.sessions) {
				t.Errorf("sessions = %T", b.sessions)
			}
			if err := b.sessions.Ping(context.Background()); err != nil {
				t.Errorf("ping: %v", err)
			}
			if b.events() == nil {
				t.Error("no event repo")
			}
		})
	}
}

func TestOpenBackendUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "tape"
	cfg.Store.DBPath = filepath.Join(t.TempDir(), "buddy.db")
	if _, err := openBackend(context.Background(), cfg); err == nil {
		t.Fatal("expected error")
	}
}
