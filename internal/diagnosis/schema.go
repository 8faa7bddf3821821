package diagnosis

import (
	"github.com/abhisek/buddy/internal/llm"
	"github.com/abhisek/buddy/internal/question"
)

// QuestionSchema validates the payload returned when asking for the next
// diagnostic question.
var QuestionSchema = &llm.Schema{
	Name:        "diagnostic-question",
	Description: "Next adaptive diagnostic question with a message for the student",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message_to_student":  map[string]any{"type": "string"},
			"question":            question.RawDefinition(),
			"diagnostic_complete": map[string]any{"type": "boolean"},
		},
		"required": []any{"question"},
	},
}

// EvaluationSchema validates the payload returned after a diagnostic answer.
var EvaluationSchema = &llm.Schema{
	Name:        "diagnostic-evaluation",
	Description: "Evaluation of a diagnostic answer, then the next question or the final assessment",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"evaluation": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"is_correct":     map[string]any{"type": "boolean"},
					"partial_credit": map[string]any{"type": "number"},
					"mistake_type":   map[string]any{"type": []any{"string", "null"}},
					"misconception":  map[string]any{"type": []any{"string", "null"}},
				},
			},
			"feedback_to_student": map[string]any{"type": "string"},
			"diagnostic_complete": map[string]any{"type": "boolean"},
			"next_question":       map[string]any{"type": []any{"object", "null"}},
			"final_assessment": map[string]any{
				"type": []any{"object", "null"},
				"properties": map[string]any{
					"overall_level":             map[string]any{"type": "string"},
					"concepts_known":            stringArray(),
					"concepts_weak":             stringArray(),
					"misconceptions":            stringArray(),
					"recommended_start_concept": map[string]any{"type": "string"},
					"personalized_note":         map[string]any{"type": "string"},
				},
			},
		},
	},
}

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}
