package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds compiled schemas keyed by Schema.Name. Names are unique
// per flow, so a second schema with the same name reuses the first one.
var compiled sync.Map // map[string]*jsonschema.Schema

// Precompile compiles every schema up front so a broken definition fails
// at startup instead of on the first tutoring call.
func Precompile(schemas ...*Schema) error {
	var errs []error
	for _, s := range schemas {
		if _, err := compile(s); err != nil {
			errs = append(errs, fmt.Errorf("schema %q: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ValidatePayload checks a decoded JSON value against schema. A nil schema
// accepts anything. Failures are *ErrInvalidResponse naming the offending
// locations, e.g. "/evaluation/is_correct".
func ValidatePayload(schema *Schema, v any) error {
	if schema == nil {
		return nil
	}
	sch, err := compile(schema)
	if err != nil {
		return &ErrInvalidResponse{Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}
	if err := sch.Validate(v); err != nil {
		raw, _ := json.Marshal(v)
		return &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("%s does not match at %s: %w", schema.Name, locations(err), err),
		}
	}
	return nil
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	if s, ok := compiled.Load(schema.Name); ok {
		return s.(*jsonschema.Schema), nil
	}

	// The compiler wants plain decoded JSON, not Go map literals with
	// typed slices, so round-trip the definition.
	b, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
	if err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	url := "mem://buddy/" + schema.Name + ".json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	actual, _ := compiled.LoadOrStore(schema.Name, s)
	return actual.(*jsonschema.Schema), nil
}

// locations lists the instance paths of the leaf validation failures.
func locations(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return "/"
	}
	seen := map[string]bool{}
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			seen["/"+strings.Join(e.InstanceLocation, "/")] = true
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return strings.Join(paths, ", ")
}
