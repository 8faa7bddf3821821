package mastery

// Config holds the progression thresholds.
type Config struct {
	// MasteryStep is added to a concept's mastery score per correct answer.
	MasteryStep float64 `yaml:"mastery_step"`

	// MasteryThreshold is the score at which a correct answer masters the concept.
	MasteryThreshold float64 `yaml:"mastery_threshold"`

	// MaxAttempts is the attempt count at which a wrong answer triggers a reteach.
	MaxAttempts int `yaml:"max_attempts"`

	// XPCorrect is awarded for every correct answer.
	XPCorrect int `yaml:"xp_correct"`

	// MasteryBonus is awarded once when a concept is mastered.
	MasteryBonus int `yaml:"mastery_bonus"`

	// MaxReteaches caps reteaches per concept. Once reached, the next
	// reteach marks the concept for review and moves on. 0 disables the cap.
	MaxReteaches int `yaml:"max_reteaches"`
}

// DefaultConfig returns the standard progression rules.
func DefaultConfig() Config {
	return Config{
		MasteryStep:      0.25,
		MasteryThreshold: 0.75,
		MaxAttempts:      3,
		XPCorrect:        10,
		MasteryBonus:     20,
	}
}

// Progress is the per-concept counters the policy reads and updates.
// It is embedded in the study plan's concept entries.
type Progress struct {
	Attempts     int     `json:"attempts"`
	MasteryScore float64 `json:"mastery_score"`
	Reteaches    int     `json:"reteach_count"`
}

// Action is the next step decided after an evaluated answer.
type Action string

const (
	ActionNextConcept  Action = "next_concept"
	ActionReteach      Action = "reteach"
	ActionHint         Action = "hint"
	ActionRetry        Action = "retry"
	ActionNextQuestion Action = "next_question"
	ActionReview       Action = "needs_review"
)

// Advances reports whether the action moves the plan to the next concept.
func (a Action) Advances() bool {
	return a == ActionNextConcept || a == ActionReview
}

// Decision is the outcome of applying the policy to one answer.
type Decision struct {
	Action   Action
	Mastered bool
	XP       int // XP for the answer itself
	Bonus    int // completion bonus, only when mastered
}

// TotalXP is the XP to add to the session for this answer.
func (d Decision) TotalXP() int {
	return d.XP + d.Bonus
}

// Policy applies the progression rules. It is stateless; all state lives
// in the Progress passed to Record.
type Policy struct {
	cfg Config
}

// NewPolicy creates a policy. Zero fields fall back to the defaults.
func NewPolicy(cfg Config) *Policy {
	def := DefaultConfig()
	if cfg.MasteryStep <= 0 {
		cfg.MasteryStep = def.MasteryStep
	}
	if cfg.MasteryThreshold <= 0 {
		cfg.MasteryThreshold = def.MasteryThreshold
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.XPCorrect < 0 {
		cfg.XPCorrect = 0
	}
	if cfg.MasteryBonus < 0 {
		cfg.MasteryBonus = 0
	}
	if cfg.MaxReteaches < 0 {
		cfg.MaxReteaches = 0
	}
	return &Policy{cfg: cfg}
}

// Config returns the effective configuration.
func (p *Policy) Config() Config {
	return p.cfg
}

// Record counts the attempt, accumulates mastery and decides what happens
// next. hintGiven reports whether a hint was already shown for the
// question being answered.
//
// Rules in priority order:
//  1. correct with score at the threshold: next concept (mastered)
//  2. wrong after MaxAttempts: reteach, or needs_review once the cap is hit
//  3. wrong without a hint yet: hint
//  4. otherwise: retry when wrong, next question when right
func (p *Policy) Record(prog *Progress, correct, hintGiven bool) Decision {
	prog.Attempts++

	var d Decision
	if correct {
		prog.MasteryScore += p.cfg.MasteryStep
		d.XP = p.cfg.XPCorrect
	}

	switch {
	case correct && prog.MasteryScore >= p.cfg.MasteryThreshold:
		d.Action = ActionNextConcept
		d.Mastered = true
		d.Bonus = p.cfg.MasteryBonus
	case !correct && prog.Attempts >= p.cfg.MaxAttempts:
		if p.cfg.MaxReteaches > 0 && prog.Reteaches >= p.cfg.MaxReteaches {
			d.Action = ActionReview
			break
		}
		prog.Reteaches++
		d.Action = ActionReteach
	case !correct && !hintGiven:
		d.Action = ActionHint
	case !correct:
		d.Action = ActionRetry
	default:
		d.Action = ActionNextQuestion
	}
	return d
}
