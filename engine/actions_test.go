package engine

import "testing"

// clue appends a clue action to the log and applies its direct information.
func clue(s *State, giver, target int, kind ClueKind, value int, list ...int) {
	a := Action{Type: ActionClue, Giver: giver, Target: target, Clue: BaseClue{Kind: kind, Value: value}, List: list}
	s.ActionList = append(s.ActionList, a)
	s.OnClue(a)
}

func TestOnClueTokensAndTouch(t *testing.T) {
	s := newTestState(t, LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"r4", "r4", "g4", "r1", "b4"},
	)
	s.Strikes = 1

	// Bob's slots 1..5 are orders 9..5.
	clue(s, 0, 1, ClueRank, 4, 9, 8, 7, 5)

	if s.ClueTokens != MaxClueTokens-1 {
		t.Errorf("ClueTokens: want %d, got %d", MaxClueTokens-1, s.ClueTokens)
	}
	if s.Strikes != 1 {
		t.Errorf("Strikes: want 1, got %d", s.Strikes)
	}

	fours := s.Variant.CluePossibilities(BaseClue{Kind: ClueRank, Value: 4})
	for _, c := range s.Hands[1] {
		touched := c.Order != 6
		if touched {
			if !c.Clued || !c.NewlyClued || len(c.Clues) != 1 {
				t.Errorf("order %d: expected newly clued with one clue", c.Order)
			}
			if !c.Possible.SubsetOf(fours) {
				t.Errorf("order %d: possible %v not all 4s", c.Order, c.Possible.Identities())
			}
			if len(c.Reasoning) != 1 || c.Reasoning[0] != 0 {
				t.Errorf("order %d: want reasoning [0], got %v", c.Order, c.Reasoning)
			}
		} else if c.Possible.Intersect(fours) != 0 || c.Clued {
			t.Errorf("order 6 should have learned it is not a 4")
		}
	}
	checkSubset(t, s)

	// A second clue re-touching the same cards is not newly clued.
	s.Hands[1][0].NewlyClued = false
	clue(s, 0, 1, ClueColour, 0, 9, 8, 6)
	if s.Hands[1][0].NewlyClued {
		t.Error("re-clued card should not be newly clued")
	}
	if got, ok := s.Hands[1][0].Possible.Single(); !ok || got != mustParse(t, s, "r4") {
		t.Errorf("red 4 should be fully known, got %v", s.Hands[1][0].Possible.Identities())
	}
	if s.ClueTokens != MaxClueTokens-2 {
		t.Errorf("ClueTokens: want %d, got %d", MaxClueTokens-2, s.ClueTokens)
	}
}

func TestOnDrawEliminatesForOthers(t *testing.T) {
	s := newTestState(t, LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"r4", "r4", "g4", "r1", "b5"},
	)
	r4 := mustParse(t, s, "r4")
	b5 := mustParse(t, s, "b5")

	for _, id := range []Identity{r4, b5} {
		if s.AllPossible[0].Has(id) {
			t.Errorf("our future draws should exclude %s", s.Format(id))
		}
		if !s.AllPossible[1].Has(id) {
			t.Errorf("Bob cannot see his own %s", s.Format(id))
		}
		for _, c := range s.Hands[0] {
			if c.Possible.Has(id) {
				t.Errorf("our order %d still possible %s", c.Order, s.Format(id))
			}
		}
	}
	if s.CardsLeft != 40 {
		t.Errorf("CardsLeft: want 40, got %d", s.CardsLeft)
	}
	if got := s.Hands[1][0].Order; got != 9 {
		t.Errorf("newest card order: want 9, got %d", got)
	}
}

func TestOnDiscardLastCopyLowersMaxRank(t *testing.T) {
	s := newTestState(t, LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"r3", "r3", "g1", "b2", "y4"},
	)
	s.PlayStacks[0] = 1
	for p := range s.HypoStacks {
		s.HypoStacks[p][0] = 4
	}

	s.OnDiscard(Action{Type: ActionDiscard, PlayerIndex: 1, Order: 9, SuitIndex: 0, Rank: 3})
	if s.MaxRanks[0] != MaxRank {
		t.Errorf("MaxRanks after first r3: want %d, got %d", MaxRank, s.MaxRanks[0])
	}
	if s.ClueTokens != MaxClueTokens {
		t.Errorf("ClueTokens should stay capped at %d, got %d", MaxClueTokens, s.ClueTokens)
	}

	s.OnDiscard(Action{Type: ActionDiscard, PlayerIndex: 1, Order: 8, SuitIndex: 0, Rank: 3})
	if s.MaxRanks[0] != 2 {
		t.Errorf("MaxRanks after last r3: want 2, got %d", s.MaxRanks[0])
	}
	for p, hs := range s.HypoStacks {
		if hs[0] != 2 {
			t.Errorf("HypoStacks[%d][red]: want 2, got %d", p, hs[0])
		}
	}
	if s.DiscardStacks[0][2] != 2 {
		t.Errorf("DiscardStacks[red][3]: want 2, got %d", s.DiscardStacks[0][2])
	}
	if len(s.Hands[1]) != 3 {
		t.Errorf("Bob's hand size: want 3, got %d", len(s.Hands[1]))
	}
	if got := s.MaxScore(); got != 22 {
		t.Errorf("MaxScore: want 22, got %d", got)
	}
}

func TestOnDiscardBomb(t *testing.T) {
	s := newTestState(t, LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"r3", "r3", "g1", "b2", "y4"},
	)
	s.ClueTokens = 5

	s.OnDiscard(Action{Type: ActionDiscard, PlayerIndex: 1, Order: 6, SuitIndex: 3, Rank: 2, Failed: true})
	if s.Strikes != 1 {
		t.Errorf("Strikes: want 1, got %d", s.Strikes)
	}
	if s.ClueTokens != 5 {
		t.Errorf("ClueTokens: a bomb should not refund, got %d", s.ClueTokens)
	}
}

func TestOnPlayFiveRefundsToken(t *testing.T) {
	s := newTestState(t, LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"g5", "r3", "g1", "b2", "y4"},
	)
	s.PlayStacks[2] = 4
	s.ClueTokens = 3

	s.OnPlay(Action{Type: ActionPlay, PlayerIndex: 1, Order: 9, SuitIndex: 2, Rank: 5})
	if s.PlayStacks[2] != 5 {
		t.Errorf("PlayStacks[green]: want 5, got %d", s.PlayStacks[2])
	}
	if s.ClueTokens != 4 {
		t.Errorf("ClueTokens: want 4, got %d", s.ClueTokens)
	}
	if s.Score() != 5 {
		t.Errorf("Score: want 5, got %d", s.Score())
	}
}
