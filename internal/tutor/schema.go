package tutor

import (
	"github.com/abhisek/buddy/internal/diagnosis"
	"github.com/abhisek/buddy/internal/llm"
	"github.com/abhisek/buddy/internal/question"
)

// Schemas returns every payload schema the flows validate against.
func Schemas() []*llm.Schema {
	return []*llm.Schema{
		diagnosis.QuestionSchema, diagnosis.EvaluationSchema,
		planSchema, teachingSchema, answerSchema, assessmentSchema, reteachSchema, wrapupSchema,
	}
}

var planSchema = &llm.Schema{
	Name:        "study-plan",
	Description: "Ordered study plan built from the diagnostic results",
	Definition: object(map[string]any{
		"message_to_student": str(),
		"study_plan": object(map[string]any{
			"total_concepts":         num(),
			"estimated_time_minutes": num(),
			"concepts": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": object(map[string]any{
					"concept_id":        str(),
					"name":              str(),
					"description":       str(),
					"difficulty":        str(),
					"estimated_minutes": num(),
					"teaching_approach": str(),
					"prerequisites":     map[string]any{"type": "array"},
					"real_world_hook":   str(),
				}),
			},
		}, "concepts"),
	}, "study_plan"),
}

var teachingSchema = &llm.Schema{
	Name:        "teaching",
	Description: "Explanation of a concept followed by one practice question",
	Definition: object(map[string]any{
		"teaching_content":  str(),
		"practice_question": question.RawDefinition(),
		"encouragement":     str(),
	}, "teaching_content", "practice_question"),
}

var answerSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Feedback on a practice answer and an optional follow-up question",
	Definition: object(map[string]any{
		"evaluation": object(map[string]any{
			"is_correct":     map[string]any{"type": "boolean"},
			"partial_credit": num(),
			"mistake_type":   map[string]any{"type": []any{"string", "null"}},
		}),
		"feedback":      str(),
		"next_action":   str(),
		"hint":          map[string]any{"type": []any{"string", "null"}},
		"next_question": map[string]any{"type": []any{"object", "null"}},
	}),
}

var assessmentSchema = &llm.Schema{
	Name:        "concept-assessment",
	Description: "Mini-quiz checking whether a concept is mastered",
	Definition: object(map[string]any{
		"assessment_intro": str(),
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"type": "object"},
		},
	}, "questions"),
}

var reteachSchema = &llm.Schema{
	Name:        "reteach",
	Description: "Fresh explanation with a different approach and a simple check question",
	Definition: object(map[string]any{
		"encouragement":    str(),
		"new_approach":     str(),
		"teaching_content": str(),
		"simple_question":  question.RawDefinition(),
	}, "teaching_content", "simple_question"),
}

var wrapupSchema = &llm.Schema{
	Name:        "wrapup",
	Description: "End of session celebration and summary",
	Definition: object(map[string]any{
		"celebration_message":  str(),
		"highlights":           map[string]any{"type": "array", "items": str()},
		"areas_to_practice":    map[string]any{"type": "array", "items": str()},
		"next_session_preview": str(),
	}, "celebration_message"),
}

func object(props map[string]any, required ...string) map[string]any {
	o := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		req := make([]any, len(required))
		for i, r := range required {
			req[i] = r
		}
		o["required"] = req
	}
	return o
}

func str() map[string]any { return map[string]any{"type": "string"} }
func num() map[string]any { return map[string]any{"type": "number"} }
