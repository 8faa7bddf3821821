package gems

// Rarity represents the difficulty tier of a gem.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AllRarities returns all rarities in order from lowest to highest.
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}
}

// DisplayName returns a human-readable label for the rarity.
func (r Rarity) DisplayName() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	default:
		return string(r)
	}
}

// rank orders rarities; unknown values rank lowest.
func (r Rarity) rank() int {
	for i, x := range AllRarities() {
		if x == r {
			return i
		}
	}
	return -1
}

// StreakRarity returns the rarity for a run of consecutive correct answers.
// Sessions are short, so the tiers are tighter than a multi-day streak.
func StreakRarity(length int) Rarity {
	switch {
	case length >= 10:
		return RarityLegendary
	case length >= 8:
		return RarityEpic
	case length >= 5:
		return RarityRare
	default:
		return RarityCommon
	}
}

// SessionRarity returns the rarity for a given session accuracy (0.0-1.0).
func SessionRarity(accuracy float64) Rarity {
	switch {
	case accuracy >= 0.90:
		return RarityLegendary
	case accuracy >= 0.75:
		return RarityEpic
	case accuracy >= 0.50:
		return RarityRare
	default:
		return RarityCommon
	}
}

// DifficultyRarity maps a concept's planned difficulty to a rarity.
func DifficultyRarity(difficulty string) Rarity {
	switch difficulty {
	case "hard":
		return RarityEpic
	case "medium":
		return RarityRare
	default:
		return RarityCommon
	}
}
