package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/buddy/internal/llm"
	"github.com/abhisek/buddy/internal/store"
)

func TestPriceModels(t *testing.T) {
	rows, total := priceModels([]store.LLMModelUsage{
		{Model: "llama-3.3-70b-versatile", Calls: 2, InputTokens: 1_000_000, OutputTokens: 1_000_000},
		{Model: "homegrown-7b", Calls: 1, InputTokens: 10, OutputTokens: 10},
	})
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Known)
	assert.InDelta(t, 1.38, rows[0].USD, 1e-9)
	assert.False(t, rows[1].Known)
	assert.InDelta(t, 1.38, total, 1e-9)
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	err := writeStats(&buf,
		[]store.LLMUsageStats{{Purpose: "teaching", Calls: 3, InputTokens: 300, OutputTokens: 30, AvgLatencyMs: 250}},
		[]store.LLMModelUsage{{Model: "homegrown-7b", Calls: 3, InputTokens: 300, OutputTokens: 30}},
	)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "teaching")
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "Pricing unavailable for: homegrown-7b")

	buf.Reset()
	require.NoError(t, writeStats(&buf, nil, nil))
	assert.Equal(t, "No LLM usage recorded yet.\n", buf.String())
}

func TestWriteEvents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEvents(&buf, []store.LLMRequestEventRecord{{
		ID:        7,
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		RequestEvent: llm.RequestEvent{
			Purpose: "wrapup", SessionID: "0123456789abcdef", Model: "mock", Success: false,
		},
	}}))
	out := buf.String()
	assert.Contains(t, out, "wrapup")
	assert.Contains(t, out, "01234567 ")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "✗")
}

func TestWriteEventShowsMissingBodies(t *testing.T) {
	var buf bytes.Buffer
	writeEvent(&buf, &store.LLMRequestEventRecord{ID: 1, RequestEvent: llm.RequestEvent{Purpose: "teaching"}})
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("(not captured)")))
	assert.NotContains(t, buf.String(), "Session:")
}
