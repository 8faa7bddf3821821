package question

// RawDefinition is the loose JSON schema for a generated question. Only the
// shape is enforced; value encodings are left to Normalize.
func RawDefinition() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_id":    map[string]any{"type": "string"},
			"type":           map[string]any{"type": "string"},
			"question_text":  map[string]any{"type": "string"},
			"statement":      map[string]any{"type": "string"},
			"options":        map[string]any{"type": "array"},
			"correct_answer": map[string]any{},
			"pairs":          map[string]any{"type": []any{"array", "object"}},
			"difficulty":     map[string]any{"type": "string"},
			"concept_tested": map[string]any{"type": "string"},
			"hint":           map[string]any{"type": []any{"string", "null"}},
			"explanation":    map[string]any{"type": []any{"string", "null"}},
		},
		"anyOf": []any{
			map[string]any{"required": []any{"question_text"}},
			map[string]any{"required": []any{"statement"}},
			map[string]any{"required": []any{"instruction"}},
		},
	}
}
