package llm

import (
	"context"
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantKey string
		wantErr bool
	}{
		{"fenced json", "Sure!\n```json\n{\"a\": 1}\n```\nHope it helps.", "a", false},
		{"fenced without tag", "```\n{\"b\": 2}\n```", "b", false},
		{"bare object in prose", `Here is the plan: {"c": {"nested": "}"}} and more text {"d": 4}`, "c", false},
		{"whole text", `  {"e": true}  `, "e", false},
		{"broken fence falls back to brace", "```json\n{oops\n```\n{\"f\": 1}", "f", false},
		{"array is not an object", `[1, 2, 3]`, "", true},
		{"prose only", "I could not think of a question.", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if _, ok := got[tt.wantKey]; !ok {
				t.Errorf("missing key %q in %v", tt.wantKey, got)
			}
		})
	}
}

func TestGenerate_DefaultUserMessage(t *testing.T) {
	mock := NewMockProvider(MockText("hello"))
	res, err := Generate(context.Background(), mock, Call{System: "sys", MaxTokens: 100, Temperature: 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "hello" || res.Payload != nil {
		t.Fatalf("result = %+v", res)
	}
	req, _ := mock.LastCall()
	if req.UserText() != DefaultUserMessage {
		t.Errorf("user message = %q", req.UserText())
	}
	if req.JSON {
		t.Errorf("plain call should not ask for JSON")
	}
	if req.MaxTokens != 100 || req.Temperature != 0.7 {
		t.Errorf("request = %+v", req)
	}
}

func TestGenerate_Structured(t *testing.T) {
	mock := NewMockProvider(MockText("```json\n{\"evaluation\":{\"is_correct\":true},\"feedback\":\"Sahi jawab!\"}\n```"))
	res, err := Generate(context.Background(), mock, Call{System: "sys", User: "4", Schema: evaluationSchema()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Payload["feedback"] != "Sahi jawab!" {
		t.Fatalf("payload = %v", res.Payload)
	}
	if req, _ := mock.LastCall(); !req.JSON {
		t.Errorf("structured call should ask for JSON")
	}

	var decoded struct {
		Evaluation struct {
			IsCorrect bool `json:"is_correct"`
		} `json:"evaluation"`
	}
	if err := res.Decode(&decoded); err != nil || !decoded.Evaluation.IsCorrect {
		t.Fatalf("decode = %+v, %v", decoded, err)
	}
}

func TestGenerate_InvalidOutput(t *testing.T) {
	tests := []struct {
		name string
		text string
		call Call
	}{
		{"no json", "Let me think about that...", Call{Structured: true}},
		{"schema violation", `{"feedback": "ok"}`, Call{Schema: evaluationSchema()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(context.Background(), NewMockProvider(MockText(tt.text)), tt.call)
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got %T: %v", err, err)
			}
		})
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	_, err := Generate(context.Background(), NewMockProvider(), Call{Structured: true})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", err)
	}
}
