package gems

import "testing"

func TestAwards(t *testing.T) {
	in := Input{
		Concepts: []Concept{
			{ID: "c1", Name: "Fractions", Difficulty: "hard", Mastered: true, Reteaches: 1},
			{ID: "c2", Name: "Decimals", Difficulty: "easy"},
		},
		Answers:   []bool{false, true, true, true, true, true},
		Attempted: 6,
		Accuracy:  5.0 / 6.0,
	}

	awards := Awards(in)
	if len(awards) != 4 {
		t.Fatalf("got %d awards, want 4: %+v", len(awards), awards)
	}
	want := []struct {
		typ    GemType
		rarity Rarity
	}{
		{GemMastery, RarityEpic},
		{GemRecovery, RarityEpic},
		{GemStreak, RarityRare},
		{GemSession, RarityEpic},
	}
	for i, w := range want {
		if awards[i].Type != w.typ || awards[i].Rarity != w.rarity {
			t.Errorf("award %d = %s/%s, want %s/%s", i, awards[i].Type, awards[i].Rarity, w.typ, w.rarity)
		}
	}
	if awards[0].ConceptID != "c1" || awards[0].Reason != "Mastered Fractions" {
		t.Errorf("mastery award = %+v", awards[0])
	}
	if awards[2].Reason != "5 correct in a row!" {
		t.Errorf("streak reason = %q", awards[2].Reason)
	}
}

func TestAwardsEmptySession(t *testing.T) {
	if got := Awards(Input{}); len(got) != 0 {
		t.Errorf("empty session earned %+v", got)
	}
	if Best(nil) != nil {
		t.Error("Best(nil) should be nil")
	}
}

func TestAwardsShortStreakEarnsNothing(t *testing.T) {
	awards := Awards(Input{Answers: []bool{true, true, false}, Attempted: 3, Accuracy: 2.0 / 3.0})
	if len(awards) != 1 || awards[0].Type != GemSession {
		t.Errorf("awards = %+v", awards)
	}
}

func TestBest(t *testing.T) {
	tests := []struct {
		name   string
		awards []Award
		want   string
	}{
		{
			"rarest wins",
			[]Award{{Type: GemSession, Rarity: RarityRare}, {Type: GemStreak, Rarity: RarityLegendary}},
			"Legendary Streak Gem",
		},
		{
			"tie goes to display order",
			[]Award{{Type: GemSession, Rarity: RarityEpic}, {Type: GemMastery, Rarity: RarityEpic}},
			"Epic Mastery Gem",
		},
		{
			"single",
			[]Award{{Type: GemRecovery, Rarity: RarityCommon}},
			"Common Comeback Gem",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Best(tt.awards)
			if got == nil || got.Badge() != tt.want {
				t.Errorf("Best = %+v, want %s", got, tt.want)
			}
		})
	}
}

func TestGemType_DisplayName(t *testing.T) {
	if len(AllGemTypes()) != 4 {
		t.Fatalf("AllGemTypes = %v", AllGemTypes())
	}
	for _, gt := range AllGemTypes() {
		if gt.DisplayName() == "" || gt.Icon() == "" {
			t.Errorf("%s missing display name or icon", gt)
		}
	}
}
