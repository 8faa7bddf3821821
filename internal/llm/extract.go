package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// errNoJSON is returned when no candidate in the text decodes to an object.
var errNoJSON = errors.New("no JSON object found in response")

// ExtractJSON pulls a JSON object out of free-form model output. Candidates
// are tried in order: the first fenced code block, the first balanced
// {...} span, then the whole text. The first one that decodes to an object
// wins.
func ExtractJSON(text string) (map[string]any, error) {
	var candidates []string
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	if obj := balancedObject(text); obj != "" {
		candidates = append(candidates, obj)
	}
	candidates = append(candidates, strings.TrimSpace(text))

	for _, c := range candidates {
		var out map[string]any
		if err := json.Unmarshal([]byte(c), &out); err == nil && out != nil {
			return out, nil
		}
	}
	return nil, errNoJSON
}

// balancedObject finds the first balanced JSON object in s, skipping braces
// inside quoted strings. An opening brace that is never closed is skipped
// and the scan resumes at the next one.
func balancedObject(s string) string {
	for i := strings.IndexByte(s, '{'); i >= 0; {
		if end := closingBrace(s[i:]); end > 0 {
			return s[i : i+end+1]
		}
		next := strings.IndexByte(s[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return ""
}

// closingBrace returns the index of the brace closing s[0], or -1.
func closingBrace(s string) int {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
