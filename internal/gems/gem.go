package gems

import (
	"fmt"
	"sort"
)

// Award is a single gem earned in a session.
type Award struct {
	Type        GemType `json:"type"`
	Icon        string  `json:"icon"`
	Rarity      Rarity  `json:"rarity"`
	ConceptID   string  `json:"concept_id,omitempty"` // empty for session/streak gems
	ConceptName string  `json:"concept_name,omitempty"`
	Reason      string  `json:"reason"` // e.g. "Mastered Adding Integers"
}

// Badge is the label shown as the session's headline badge.
func (a Award) Badge() string {
	return fmt.Sprintf("%s %s Gem", a.Rarity.DisplayName(), a.Type.DisplayName())
}

// Concept is the per-concept outcome the awarder looks at.
type Concept struct {
	ID         string
	Name       string
	Difficulty string
	Mastered   bool
	Reteaches  int
}

// Input summarises a finished session.
type Input struct {
	Concepts []Concept

	// Answers are the evaluated practice and quiz answers in order.
	Answers []bool

	Attempted int
	Accuracy  float64
}

// Awards returns every gem the session earned: one per mastered concept,
// a comeback gem when mastery followed a reteach, a streak gem for a long
// enough run of correct answers, and a session gem once anything was
// answered.
func Awards(in Input) []Award {
	var out []Award
	for _, c := range in.Concepts {
		if !c.Mastered {
			continue
		}
		out = append(out, Award{
			Type:        GemMastery,
			Icon:        GemMastery.Icon(),
			Rarity:      DifficultyRarity(c.Difficulty),
			ConceptID:   c.ID,
			ConceptName: c.Name,
			Reason:      "Mastered " + c.Name,
		})
		if c.Reteaches > 0 {
			out = append(out, Award{
				Type:        GemRecovery,
				Icon:        GemRecovery.Icon(),
				Rarity:      DifficultyRarity(c.Difficulty),
				ConceptID:   c.ID,
				ConceptName: c.Name,
				Reason:      fmt.Sprintf("Bounced back to master %s", c.Name),
			})
		}
	}

	if n := LongestStreak(in.Answers); n >= BaseStreakThreshold {
		out = append(out, Award{
			Type:   GemStreak,
			Icon:   GemStreak.Icon(),
			Rarity: StreakRarity(n),
			Reason: fmt.Sprintf("%d correct in a row!", n),
		})
	}

	if in.Attempted > 0 {
		out = append(out, Award{
			Type:   GemSession,
			Icon:   GemSession.Icon(),
			Rarity: SessionRarity(in.Accuracy),
			Reason: fmt.Sprintf("Session complete (%.0f%% accuracy)", in.Accuracy*100),
		})
	}
	return out
}

// Best returns the rarest award, preferring the earlier type in display
// order on ties. It returns nil for no awards.
func Best(awards []Award) *Award {
	if len(awards) == 0 {
		return nil
	}
	sorted := append([]Award(nil), awards...)
	order := map[GemType]int{}
	for i, t := range AllGemTypes() {
		order[t] = i
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i].Rarity.rank(), sorted[j].Rarity.rank()
		if ri != rj {
			return ri > rj
		}
		return order[sorted[i].Type] < order[sorted[j].Type]
	})
	return &sorted[0]
}
