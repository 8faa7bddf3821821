package question

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Issue is a data-quality problem found while normalizing generated
// content. Issues never fail normalization; callers log them.
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	return i.Field + ": " + i.Message
}

// NormalizationError is returned when the raw description cannot be turned
// into any usable question.
type NormalizationError struct {
	Type   Type
	Reason string
}

func (e *NormalizationError) Error() string {
	if e.Type == "" {
		return "normalize question: " + e.Reason
	}
	return fmt.Sprintf("normalize %s question: %s", e.Type, e.Reason)
}

// labelPattern matches a bare option label such as "B", "b)", "B. 4" or "c: text".
var labelPattern = regexp.MustCompile(`^\s*([A-Za-z])\s*(?:[).:]|$)`)

// optionPrefix matches a label at the start of option text: "A) 3",
// "(b) 4", "C. 5" or "d: 6". Text such as "f(x) = 2x" has no label.
var optionPrefix = regexp.MustCompile(`^\s*\(?([A-Za-z])[).:]\s+(.*)$`)

// maxOptions is the number of single-letter option ids.
const maxOptions = 26

// Normalize converts a loosely-typed question description, as produced by
// the reasoning service, into a typed Question.
func Normalize(raw map[string]any) (*Question, []Issue, error) {
	if raw == nil {
		return nil, nil, &NormalizationError{Reason: "no question payload"}
	}

	n := &normalizer{raw: raw}
	q := n.base()

	var err error
	switch q.Type {
	case TypeMultipleChoice:
		q.MultipleChoice, err = n.multipleChoice()
	case TypeTrueFalse:
		q.TrueFalse, err = n.trueFalse()
	case TypeFillBlank:
		q.FillBlank, err = n.fillBlank()
	case TypeNumeric:
		q.Numeric, err = n.numeric()
	case TypeEquation:
		q.Equation, err = n.equation()
	case TypeMatchPairs:
		q.MatchPairs, err = n.matchPairs()
	default:
		q.ShortAnswer, err = n.shortAnswer()
	}
	if err != nil {
		return nil, n.issues, err
	}

	if strings.TrimSpace(q.Text()) == "" {
		return nil, n.issues, &NormalizationError{Type: q.Type, Reason: "empty question text"}
	}
	if err := q.Validate(); err != nil {
		return nil, n.issues, &NormalizationError{Type: q.Type, Reason: err.Error()}
	}
	return q, n.issues, nil
}

type normalizer struct {
	raw    map[string]any
	issues []Issue
}

func (n *normalizer) issue(field, format string, args ...any) {
	n.issues = append(n.issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (n *normalizer) base() *Question {
	q := &Question{
		ID:            n.str("question_id"),
		Type:          Type(strings.ToLower(n.str("type"))),
		Difficulty:    Difficulty(strings.ToLower(n.str("difficulty"))),
		ConceptTested: n.str("concept_tested"),
		Hint:          n.str("hint"),
		Explanation:   n.str("explanation"),
	}

	if !q.Type.valid() {
		if q.Type != "" {
			n.issue("type", "unrecognized type %q, treating as short answer", q.Type)
		}
		q.Type = TypeShortAnswer
	}

	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		if q.Difficulty != "" {
			n.issue("difficulty", "unrecognized difficulty %q", q.Difficulty)
		}
		q.Difficulty = DifficultyMedium
	}

	if q.ConceptTested == "" {
		q.ConceptTested = DefaultConcept
	}
	if q.ID == "" {
		q.ID = contentID(n.raw)
	}
	return q
}

func (n *normalizer) questionText() string {
	if s := n.str("question_text"); s != "" {
		return s
	}
	return n.str("question")
}

type rawOption struct {
	label string // explicit label such as "A", empty when absent
	text  string // display text with the label stripped
	full  string // original text including the label
}

func (n *normalizer) multipleChoice() (*MultipleChoice, error) {
	list, _ := n.raw["options"].([]any)
	var opts []rawOption
	for _, item := range list {
		switch v := item.(type) {
		case string:
			opts = append(opts, splitLabel(v))
		case map[string]any:
			text := stringify(v["text"])
			if text == "" {
				text = stringify(v["option"])
			}
			label := stringify(v["label"])
			if label == "" {
				label = stringify(v["id"])
			}
			o := rawOption{label: strings.TrimSpace(label), text: strings.TrimSpace(text), full: text}
			if o.label == "" {
				o = splitLabel(text)
			}
			opts = append(opts, o)
		default:
			s := stringify(v)
			if s != "" {
				opts = append(opts, splitLabel(s))
			}
		}
	}
	if len(opts) == 0 {
		return nil, &NormalizationError{Type: TypeMultipleChoice, Reason: "no options"}
	}
	if len(opts) > maxOptions {
		n.issue("options", "%d options, keeping the first %d", len(opts), maxOptions)
		opts = opts[:maxOptions]
	}

	declared := n.str("correct_answer")
	if declared == "" {
		declared = n.str("correct_option_id")
	}

	mc := &MultipleChoice{Text: n.questionText()}
	for i, o := range opts {
		mc.Options = append(mc.Options, Option{ID: optionID(i), Text: o.text})
	}

	idx := matchOption(declared, opts)
	if idx < 0 {
		n.issue("correct_answer", "%q matches no option, defaulting to the first", declared)
		idx = 0
	}
	mc.Options[idx].IsCorrect = true
	mc.CorrectOptionID = mc.Options[idx].ID
	return mc, nil
}

// matchOption finds the option the declared answer refers to. Rules are
// applied in priority order; within a rule the first option wins.
func matchOption(declared string, opts []rawOption) int {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return -1
	}
	lower := strings.ToLower(declared)

	if m := labelPattern.FindStringSubmatch(declared); m != nil {
		label := strings.ToLower(m[1])
		for i, o := range opts {
			l := strings.ToLower(o.label)
			if l == "" {
				l = optionID(i)
			}
			if l == label {
				return i
			}
		}
	}
	for i, o := range opts {
		if strings.ToLower(o.text) == lower {
			return i
		}
	}
	for i, o := range opts {
		if strings.Contains(strings.ToLower(o.full), lower) {
			return i
		}
	}
	return -1
}

// splitLabel separates an "A) text" option into label and text. Options
// without a leading label are kept whole.
func splitLabel(s string) rawOption {
	o := rawOption{text: strings.TrimSpace(s), full: s}
	if m := optionPrefix.FindStringSubmatch(s); m != nil {
		o.label = m[1]
		o.text = strings.TrimSpace(m[2])
	}
	return o
}

func optionID(i int) string {
	return string(rune('a' + i))
}

func (n *normalizer) trueFalse() (*TrueFalse, error) {
	statement := n.str("statement")
	if statement == "" {
		statement = n.questionText()
	}

	tf := &TrueFalse{Statement: statement}
	switch v := n.raw["correct_answer"].(type) {
	case bool:
		tf.CorrectAnswer = v
	case nil:
		n.issue("correct_answer", "missing, defaulting to true")
		tf.CorrectAnswer = true
	default:
		tf.CorrectAnswer = truthy(stringify(v), false)
	}
	return tf, nil
}

func (n *normalizer) fillBlank() (*FillBlank, error) {
	answers := literals(n.raw["correct_answers"])
	if len(answers) == 0 {
		answers = literals(n.raw["correct_answer"])
	}
	if len(answers) == 0 {
		return nil, &NormalizationError{Type: TypeFillBlank, Reason: "no accepted answers"}
	}

	caseSensitive, _ := n.raw["case_sensitive"].(bool)
	return &FillBlank{
		Text:           n.questionText(),
		CorrectAnswers: answers,
		CaseSensitive:  caseSensitive,
	}, nil
}

// literals reads accepted answers from a string, number or list, dropping
// blank entries.
func literals(v any) []string {
	var out []string
	switch t := v.(type) {
	case nil:
	case []any:
		for _, a := range t {
			if s := strings.TrimSpace(stringify(a)); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := strings.TrimSpace(stringify(t)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (n *normalizer) shortAnswer() (*ShortAnswer, error) {
	sample := n.str("sample_answer")
	if sample == "" {
		sample = n.str("correct_answer")
	}
	keywords := n.strList("expected_keywords")
	if len(keywords) == 0 {
		keywords = n.strList("keywords")
	}
	return &ShortAnswer{
		Text:             n.questionText(),
		ExpectedKeywords: keywords,
		SampleAnswer:     sample,
		MaxLength:        DefaultShortAnswerLen,
	}, nil
}

func (n *normalizer) numeric() (*Numeric, error) {
	return &Numeric{
		Text:          n.questionText(),
		CorrectAnswer: n.target(),
		Tolerance:     n.tolerance(),
		Unit:          n.str("unit"),
	}, nil
}

func (n *normalizer) equation() (*Equation, error) {
	eq := n.str("equation")
	if eq == "" {
		eq = n.questionText()
	}
	variable := n.str("variable")
	if variable == "" {
		variable = DefaultVariable
	}
	showSteps, _ := n.raw["show_steps"].(bool)
	return &Equation{
		Text:          n.questionText(),
		Equation:      eq,
		Variable:      variable,
		CorrectAnswer: n.target(),
		Tolerance:     n.tolerance(),
		ShowSteps:     showSteps,
		SolutionSteps: n.strList("solution_steps"),
	}, nil
}

func (n *normalizer) target() float64 {
	v, ok := n.raw["correct_answer"]
	if !ok {
		n.issue("correct_answer", "missing, defaulting to 0")
		return 0
	}
	f, ok := toFloat(v)
	if !ok {
		n.issue("correct_answer", "%q is not a number, defaulting to 0", stringify(v))
		return 0
	}
	return f
}

func (n *normalizer) tolerance() float64 {
	if f, ok := toFloat(n.raw["tolerance"]); ok && f > 0 {
		return f
	}
	return DefaultTolerance
}

func (n *normalizer) matchPairs() (*MatchPairs, error) {
	var pairs []Pair
	switch v := n.raw["pairs"].(type) {
	case []any:
		for _, item := range v {
			switch p := item.(type) {
			case map[string]any:
				left, right := stringify(p["left"]), stringify(p["right"])
				if left != "" && right != "" {
					pairs = append(pairs, Pair{Left: left, Right: right})
				}
			case string:
				if left, right, ok := splitPair(p); ok {
					pairs = append(pairs, Pair{Left: left, Right: right})
				} else {
					n.issue("pairs", "cannot split %q into a pair", p)
				}
			}
		}
	case map[string]any:
		lefts := make([]string, 0, len(v))
		for k := range v {
			lefts = append(lefts, k)
		}
		sort.Strings(lefts)
		for _, left := range lefts {
			pairs = append(pairs, Pair{Left: left, Right: stringify(v[left])})
		}
	}
	if len(pairs) == 0 {
		return nil, &NormalizationError{Type: TypeMatchPairs, Reason: "no pairs"}
	}
	for i := range pairs {
		pairs[i].ID = "p" + strconv.Itoa(i+1)
	}

	instruction := n.str("instruction")
	if instruction == "" {
		instruction = n.questionText()
	}
	return &MatchPairs{Instruction: instruction, Pairs: pairs}, nil
}

func splitPair(s string) (string, string, bool) {
	for _, sep := range []string{" - ", " -> ", ":", "="} {
		if left, right, ok := strings.Cut(s, sep); ok {
			left, right = strings.TrimSpace(left), strings.TrimSpace(right)
			if left != "" && right != "" {
				return left, right, true
			}
		}
	}
	return "", "", false
}

func (n *normalizer) str(key string) string {
	return strings.TrimSpace(stringify(n.raw[key]))
}

func (n *normalizer) strList(key string) []string {
	var out []string
	switch v := n.raw[key].(type) {
	case []any:
		for _, item := range v {
			if s := strings.TrimSpace(stringify(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// contentID derives a stable 8-character id from the payload so that the
// same input always normalizes to the same question.
func contentID(raw map[string]any) string {
	b, err := json.Marshal(raw)
	if err != nil {
		b = []byte(fmt.Sprint(raw))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])[:8]
}
