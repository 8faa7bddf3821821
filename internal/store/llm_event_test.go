package store

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/buddy/internal/llm"
)

func TestAppendAndQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	clock := testNow
	repo.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	events := []llm.RequestEvent{
		{Provider: "groq", Model: "llama-3.3-70b-versatile", Purpose: "diagnostic", SessionID: "s1", InputTokens: 100, OutputTokens: 50, LatencyMs: 300, Success: true, RequestBody: "[system]\nhi"},
		{Provider: "groq", Model: "llama-3.3-70b-versatile", Purpose: "teaching", SessionID: "s1", InputTokens: 200, OutputTokens: 80, LatencyMs: 500, Success: true},
		{Provider: "groq", Model: "llama-3.1-8b-instant", Purpose: "diagnostic", SessionID: "s2", LatencyMs: 100, Success: false, ErrorMessage: "rate limited"},
	}
	for _, ev := range events {
		if err := repo.AppendLLMRequest(ctx, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Sequence != 3 || all[2].Sequence != 1 {
		t.Errorf("order = %d..%d, want newest first", all[0].Sequence, all[2].Sequence)
	}
	if all[0].Success || all[0].ErrorMessage != "rate limited" {
		t.Errorf("newest = %+v", all[0])
	}
	if !all[2].Timestamp.Equal(testNow.Add(time.Second)) {
		t.Errorf("timestamp = %v", all[2].Timestamp)
	}

	tests := []struct {
		name string
		opts QueryOpts
		want int
	}{
		{"limit", QueryOpts{Limit: 2}, 2},
		{"purpose", QueryOpts{Purpose: "diagnostic"}, 2},
		{"session", QueryOpts{SessionID: "s1"}, 2},
		{"after", QueryOpts{After: 1}, 2},
		{"before", QueryOpts{Before: 2}, 1},
		{"from", QueryOpts{From: testNow.Add(2 * time.Second)}, 2},
		{"to", QueryOpts{To: testNow.Add(2 * time.Second)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryLLMEvents(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}

	e, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatal(err)
	}
	if e == nil || e.RequestBody != "[system]\nhi" || e.Purpose != "diagnostic" {
		t.Errorf("event = %+v", e)
	}
	if e, err := repo.GetLLMEvent(ctx, 999); err != nil || e != nil {
		t.Errorf("missing event = %+v, %v", e, err)
	}
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, ev := range []llm.RequestEvent{
		{Provider: "groq", Model: "m1", Purpose: "teaching", InputTokens: 100, OutputTokens: 10, LatencyMs: 200, Success: true},
		{Provider: "groq", Model: "m1", Purpose: "teaching", InputTokens: 300, OutputTokens: 30, LatencyMs: 400, Success: true},
		{Provider: "groq", Model: "m2", Purpose: "wrapup", SessionID: "s1", InputTokens: 50, OutputTokens: 5, LatencyMs: 100, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d", len(byPurpose))
	}
	top := byPurpose[0]
	if top.Purpose != "teaching" || top.Calls != 2 || top.InputTokens != 400 || top.OutputTokens != 40 || top.AvgLatencyMs != 300 {
		t.Errorf("teaching usage = %+v", top)
	}

	byModel, err := repo.LLMUsageByModel(ctx, QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(byModel) != 2 || byModel[0].Model != "m1" || byModel[0].Calls != 2 || byModel[1].InputTokens != 50 {
		t.Errorf("model usage = %+v", byModel)
	}

	scoped, err := repo.LLMUsageByModel(ctx, QueryOpts{SessionID: "s1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(scoped) != 1 || scoped[0].Model != "m2" {
		t.Errorf("session usage = %+v", scoped)
	}
}
