// Package gems decides which achievement gems a finished session earned.
// Awards are derived from the session record alone, so computing them
// twice gives the same result.
package gems

// GemType identifies the category of achievement.
type GemType string

const (
	GemMastery  GemType = "mastery"
	GemRecovery GemType = "recovery"
	GemStreak   GemType = "streak"
	GemSession  GemType = "session"
)

var gemInfo = map[GemType]struct{ name, icon string }{
	GemMastery:  {"Mastery", "💎"},
	GemRecovery: {"Comeback", "🔥"},
	GemStreak:   {"Streak", "⚡"},
	GemSession:  {"Session", "🏆"},
}

// AllGemTypes returns all gem types in display order.
func AllGemTypes() []GemType {
	return []GemType{GemMastery, GemRecovery, GemStreak, GemSession}
}

// DisplayName returns a human-readable label, or the raw value when unknown.
func (t GemType) DisplayName() string {
	if info, ok := gemInfo[t]; ok {
		return info.name
	}
	return string(t)
}

// Icon returns the display icon for the gem type.
func (t GemType) Icon() string {
	if info, ok := gemInfo[t]; ok {
		return info.icon
	}
	return "✦"
}
