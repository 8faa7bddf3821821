package tutor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/abhisek/buddy/internal/llm"
	"github.com/abhisek/buddy/internal/store"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{errors.New("boom"), KindInternal},
		{notFound("get", "s1"), KindNotFound},
		{invalid("op", "bad %d", 1), KindValidation},
		{fmt.Errorf("wrapped: %w", unavailable("op", &llm.ErrProviderUnavailable{})), KindServiceUnavailable},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestInternalErrorsAreMasked(t *testing.T) {
	svc, _, _ := newTestService(t)
	r := svc.failure("s1", "", internal("op", errors.New("disk on fire")))
	if r.Error != genericError {
		t.Errorf("error = %q", r.Error)
	}
	if r.Success || len(r.Display) != 0 {
		t.Errorf("response = %+v", r)
	}
}

func TestConcurrentOperationsDoNotLoseUpdates(t *testing.T) {
	svc, _, st := newTestService(t)
	id := seedLearning(t, st, 1).ID

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RequestHint(context.Background(), id, ""); err != nil {
				t.Errorf("hint: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := load(t, st, id).Stats.HintsUsed; got != n {
		t.Errorf("hints used = %d, want %d", got, n)
	}
	if svc.locks.size() != 0 {
		t.Errorf("%d lock entries left behind", svc.locks.size())
	}
}

func TestKeyedMutexSeparatesKeys(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.Lock("a")
	done := make(chan struct{})
	go func() {
		k.Lock("b")()
		close(done)
	}()
	<-done
	if k.size() != 1 {
		t.Errorf("size = %d, want 1", k.size())
	}
	unlockA()
	if k.size() != 0 {
		t.Errorf("size = %d, want 0", k.size())
	}
}

func TestDeleteSession(t *testing.T) {
	svc, _, st := newTestService(t)
	id := seedLearning(t, st, 1).ID

	if err := svc.DeleteSession(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(context.Background(), id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get after delete: %v", err)
	}
	if _, err := svc.GetSession(context.Background(), id); KindOf(err) != KindNotFound {
		t.Errorf("kind = %q", KindOf(err))
	}
}

func TestListSessions(t *testing.T) {
	svc, _, st := newTestService(t)
	seedLearning(t, st, 1)
	seedLearning(t, st, 2)

	got, err := svc.ListSessions(context.Background(), store.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("listed %d sessions", len(got))
	}
}

func TestProgressIsReadOnly(t *testing.T) {
	svc, mock, st := newTestService(t)
	before := load(t, st, seedLearning(t, st, 3).ID)

	r, err := svc.Progress(context.Background(), before.ID)
	if err != nil {
		t.Fatal(err)
	}
	if r.Progress == nil || r.Progress.ConceptsTotal != 3 {
		t.Errorf("progress = %+v", r.Progress)
	}
	if after := load(t, st, before.ID); !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("progress touched the session")
	}
	if mock.CallCount() != 0 {
		t.Errorf("calls = %d", mock.CallCount())
	}
}

func TestSchemasCompile(t *testing.T) {
	if err := llm.Precompile(Schemas()...); err != nil {
		t.Fatal(err)
	}
}
