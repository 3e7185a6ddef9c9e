package agent

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jason-s-yu/hanabi/engine"
)

var ignoreLog = cmpopts.IgnoreFields(engine.State{}, "Log")

// misplayed sets up Alice playing a 1 she only knew as "some 1".
func misplayed(t *testing.T) *engine.State {
	t.Helper()
	s := setup(t, engine.LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"g4", "b4", "y4", "r4", "b3"},
	)
	mustHandle(t, s, clueAction(1, 0, engine.ClueRank, 1, 4))
	play(t, s, 0, 4, "r1")
	return s
}

func TestRewindOnOwnPlay(t *testing.T) {
	s := misplayed(t)

	// Alice's order 4 was drawn as action 4, so the fact lands at index 5.
	if len(s.ActionList) != 13 {
		t.Fatalf("ActionList: want 13 actions, got %d", len(s.ActionList))
	}
	fact := s.ActionList[5]
	if fact.Type != engine.ActionIdentify || fact.Order != 4 {
		t.Errorf("ActionList[5]: want identify of order 4, got %s", fact)
	}
	if s.RewindDepth != 0 {
		t.Errorf("RewindDepth: want 0, got %d", s.RewindDepth)
	}

	red := mustParse(t, s, "r1").SuitIndex
	if s.PlayStacks[red] != 1 {
		t.Errorf("PlayStacks[red]: want 1, got %d", s.PlayStacks[red])
	}
	if len(s.Hands[0]) != 4 {
		t.Errorf("Alice's hand: want 4 cards, got %d", len(s.Hands[0]))
	}
	if s.TurnCount != 2 {
		t.Errorf("TurnCount: want 2, got %d", s.TurnCount)
	}
}

func TestReplayDeterministic(t *testing.T) {
	s := misplayed(t)

	fresh, err := Replay(s)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if diff := cmp.Diff(s, fresh, ignoreLog); diff != "" {
		t.Errorf("replayed state differs (-have +replayed):\n%s", diff)
	}
}

func TestReplayLog(t *testing.T) {
	s := setup(t, engine.LevelIntermediateFinesse,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"r2", "g4", "b4", "y4", "b3"},
		[]string{"r1", "y3", "b4", "p4", "g3"},
	)
	mustHandle(t, s, clueAction(0, 1, engine.ClueColour, 0, 9))
	play(t, s, 2, 14)

	fresh, err := ReplayLog(s.Config, s.ActionList, quietLogger())
	if err != nil {
		t.Fatalf("ReplayLog failed: %v", err)
	}
	if diff := cmp.Diff(s, fresh, ignoreLog); diff != "" {
		t.Errorf("replayed state differs (-have +replayed):\n%s", diff)
	}
}

func TestRewindDepthExceeded(t *testing.T) {
	s := setup(t, engine.LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"g4", "b4", "y4", "r4", "b3"},
	)
	s.RewindDepth = MaxRewindDepth
	before := len(s.ActionList)

	err := Rewind(s, 0, engine.Action{Type: engine.ActionIdentify, PlayerIndex: 0, Order: 4, SuitIndex: 0, Rank: 1})
	var rerr *engine.RewindError
	if !errors.As(err, &rerr) {
		t.Fatalf("Rewind: want *RewindError, got %v", err)
	}
	if len(s.ActionList) != before {
		t.Errorf("ActionList: want %d actions untouched, got %d", before, len(s.ActionList))
	}
}

func TestRewindOutOfRange(t *testing.T) {
	s := setup(t, engine.LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"g4", "b4", "y4", "r4", "b3"},
	)

	err := Rewind(s, len(s.ActionList)+1, engine.Action{Type: engine.ActionIdentify, Order: 4, Rank: 1})
	var rerr *engine.RewindError
	if !errors.As(err, &rerr) {
		t.Fatalf("Rewind: want *RewindError, got %v", err)
	}
	if rerr.ActionIndex != len(s.ActionList)+1 {
		t.Errorf("ActionIndex: want %d, got %d", len(s.ActionList)+1, rerr.ActionIndex)
	}
}

func TestRewindRejectsInvalidFact(t *testing.T) {
	s := setup(t, engine.LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"g4", "b4", "y4", "r4", "b3"},
	)
	before := s.Clone()

	// Order 4 does not exist yet before action 0.
	err := Rewind(s, 0, engine.Action{Type: engine.ActionIdentify, PlayerIndex: 0, Order: 4, Rank: 1})
	if !errors.Is(err, engine.ErrRewindFailed) {
		t.Fatalf("Rewind: want ErrRewindFailed, got %v", err)
	}
	if diff := cmp.Diff(before, s, ignoreLog); diff != "" {
		t.Errorf("failed rewind changed the state:\n%s", diff)
	}
}

func TestBrokenWaitingConnectionRewinds(t *testing.T) {
	s := setup(t, engine.LevelAdvancedFinesse,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"g4", "b4", "y4", "b3", "p2"},
		[]string{"r1", "y3", "g4", "p4", "y4"},
	)

	// Our red card is r1, or r2 through Cathy's finesse.
	mustHandle(t, s, clueAction(1, 0, engine.ClueColour, 0, 4))
	checkInferred(t, s, 0, 4, "r1", "r2")
	if len(s.WaitingConnections) != 1 {
		t.Fatalf("WaitingConnections: want 1, got %d", len(s.WaitingConnections))
	}

	// Cathy throws away the finessed card, so it was never r2.
	discard(t, s, 2, 14)

	checkInferred(t, s, 0, 4, "r1")
	if len(s.WaitingConnections) != 0 {
		t.Errorf("WaitingConnections: want 0, got %d", len(s.WaitingConnections))
	}
	fact := s.ActionList[15]
	if fact.Type != engine.ActionEliminate || fact.Order != 4 || !fact.Excluded.Has(mustParse(t, s, "r2")) {
		t.Errorf("ActionList[15]: want r2 eliminated from order 4, got %s", fact)
	}
	if s.RewindDepth != 0 {
		t.Errorf("RewindDepth: want 0, got %d", s.RewindDepth)
	}
}

func TestLayeredFinesseRevealRewinds(t *testing.T) {
	s := setup(t, engine.LevelAdvancedFinesse,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"g4", "b4", "y4", "b3", "p2"},
		[]string{"r2", "y3", "g4", "p4", "y4"},
	)
	mustHandle(t, s, clueAction(1, 2, engine.ClueColour, 0, 14))
	checkInferred(t, s, 0, 4, "r1")

	// Blue on the card we thought was r1: the finesse was layered.
	out := InterpretClue(s, appendClue(s, clueAction(2, 0, engine.ClueColour, 3, 4)))
	if out.Kind != OutcomeLayeredReveal {
		t.Fatalf("Kind: want %s, got %s", OutcomeLayeredReveal, out.Kind)
	}

	fact := s.ActionList[15]
	if fact.Type != engine.ActionEliminate || fact.Order != 4 {
		t.Errorf("ActionList[15]: want eliminate on order 4, got %s", fact)
	}
	if card(t, s, 0, 4).Inferred.Has(mustParse(t, s, "r1")) {
		t.Error("order 4 should no longer be r1")
	}
	if !card(t, s, 0, 3).Finessed {
		t.Error("order 3 should carry the r1 finesse")
	}
	checkInferred(t, s, 0, 3, "r1")
	checkSubset(t, s)
}

func TestRewindRejectsNewContradiction(t *testing.T) {
	s := setup(t, engine.LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"g4", "b4", "y4", "b3", "p2"},
		[]string{"y4", "g3", "b4", "p4", "r1"},
	)
	mustHandle(t, s, clueAction(1, 0, engine.ClueColour, 0, 4, 3))
	discard(t, s, 1, 5)
	mustHandle(t, s, engine.Action{Type: engine.ActionDraw, PlayerIndex: 1, Order: 15, SuitIndex: 0, Rank: 1})
	if len(s.Contradictions) != 0 {
		t.Fatalf("Contradictions: want none before the rewind, got %d", len(s.Contradictions))
	}
	before := s.Clone()

	// Pinning order 3 to r1 as well makes four r1 with Bob's and Cathy's.
	fact := engine.Action{Type: engine.ActionIdentify, PlayerIndex: 0, Order: 3, SuitIndex: 0, Rank: 1, Infer: true}

	fresh, err := ReplayLog(s.Config, slices.Insert(slices.Clone(s.ActionList), 16, fact), quietLogger())
	if err != nil {
		t.Fatalf("ReplayLog failed: %v", err)
	}
	if len(fresh.Contradictions) == 0 {
		t.Fatal("replay with the fact should record a contradiction")
	}

	err = Rewind(s, 16, fact)
	if !errors.Is(err, engine.ErrRewindFailed) {
		t.Fatalf("Rewind: want ErrRewindFailed, got %v", err)
	}
	var rerr *engine.RewindError
	if !errors.As(err, &rerr) || !strings.Contains(rerr.Reason, "new contradiction") {
		t.Errorf("Rewind: want a new contradiction reason, got %v", err)
	}
	if diff := cmp.Diff(before, s, ignoreLog); diff != "" {
		t.Errorf("rejected rewind changed the state:\n%s", diff)
	}
}

func TestNewContradiction(t *testing.T) {
	r1 := engine.Identity{SuitIndex: 0, Rank: 1}
	b2 := engine.Identity{SuitIndex: 3, Rank: 2}

	tests := []struct {
		name   string
		before []engine.Contradiction
		after  []engine.Contradiction
		want   bool
	}{
		{"none", nil, nil, false},
		{"new", nil, []engine.Contradiction{{Identity: r1, PlayerIndex: 0}}, true},
		{"shifted index", []engine.Contradiction{{Identity: r1, PlayerIndex: 0, ActionIndex: 20}}, []engine.Contradiction{{Identity: r1, PlayerIndex: 0, ActionIndex: 21}}, false},
		{"other player", []engine.Contradiction{{Identity: r1, PlayerIndex: 0}}, []engine.Contradiction{{Identity: r1, PlayerIndex: 1}}, true},
		{"resolved", []engine.Contradiction{{Identity: b2, PlayerIndex: 2}}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, got := newContradiction(tt.before, tt.after); got != tt.want {
				t.Errorf("newContradiction: want %v, got %v", tt.want, got)
			}
		})
	}
}
