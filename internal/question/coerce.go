package question

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// truthy reports whether s is one of the accepted truthy tokens. Answers
// submitted by students additionally accept "1".
func truthy(s string, acceptOne bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "t":
		return true
	case "1":
		return acceptOne
	}
	return false
}

// AnswerString renders a submitted answer as text for logs and records.
func AnswerString(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatFloat(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return formatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatPairs(pairs []Pair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Left + " - " + p.Right
	}
	return strings.Join(parts, "; ")
}
