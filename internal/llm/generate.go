package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// DefaultUserMessage is sent when a call carries no user content.
const DefaultUserMessage = "Please proceed."

// Call is one tutoring request to the reasoning service.
type Call struct {
	// System is the fully rendered prompt.
	System string

	// User is the student's latest input. Empty means DefaultUserMessage.
	User string

	// Structured asks for a JSON object to be extracted from the reply.
	// Implied when Schema is set.
	Structured bool

	// Schema, when set, validates the extracted object. It is not sent to
	// the provider; the prompt itself spells out the expected format.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Result is the outcome of a successful call.
type Result struct {
	// Payload is the extracted object for structured calls, nil otherwise.
	Payload map[string]any

	// Text is the raw reply.
	Text string

	Response *Response
}

// Decode re-marshals the payload into v.
func (r *Result) Decode(v any) error {
	b, err := json.Marshal(r.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Generate sends c to p and, for structured calls, extracts and validates
// the JSON object in the reply. Unusable output is an *ErrInvalidResponse.
func Generate(ctx context.Context, p Provider, c Call) (*Result, error) {
	user := c.User
	if strings.TrimSpace(user) == "" {
		user = DefaultUserMessage
	}

	structured := c.Structured || c.Schema != nil
	resp, err := p.Generate(ctx, Request{
		System:      c.System,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		JSON:        structured,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Text: resp.Text(), Response: resp}
	if !structured {
		return res, nil
	}

	payload, err := ExtractJSON(res.Text)
	if err != nil {
		return nil, &ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if err := ValidatePayload(c.Schema, payload); err != nil {
		return nil, err
	}
	res.Payload = payload
	return res, nil
}
