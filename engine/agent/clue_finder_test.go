package agent

import (
	"testing"

	"github.com/jason-s-yu/hanabi/engine"
)

func setStacks(s *engine.State, stacks ...int) {
	copy(s.PlayStacks, stacks)
	s.UpdateHypoStacks()
}

func TestFindSaveClues(t *testing.T) {
	tests := []struct {
		name   string
		bob    []string
		stacks []int
		want   *engine.BaseClue
	}{
		{
			name:   "trash chop move",
			bob:    []string{"r4", "r4", "g4", "r1", "b4"},
			stacks: []int{2, 2, 2, 2, 2},
			want:   &engine.BaseClue{Kind: engine.ClueRank, Value: 1},
		},
		{
			name:   "trash chop move past a blue 1",
			bob:    []string{"r4", "r4", "b1", "r1", "b4"},
			stacks: []int{2, 2, 2, 2, 2},
			want:   &engine.BaseClue{Kind: engine.ClueRank, Value: 1},
		},
		{
			name:   "trash on chop",
			bob:    []string{"r4", "r4", "g4", "b4", "g1"},
			stacks: []int{2, 2, 2, 2, 2},
		},
		{
			name:   "duplicate of chop in hand",
			bob:    []string{"r4", "r4", "b1", "g4", "g4"},
			stacks: []int{2, 2, 2, 2, 2},
		},
		{
			name:   "5 save",
			bob:    []string{"r4", "r4", "b1", "r1", "g5"},
			stacks: []int{2, 2, 2, 2, 2},
			want:   &engine.BaseClue{Kind: engine.ClueRank, Value: 5},
		},
		{
			name:   "2 save",
			bob:    []string{"y4", "g4", "b1", "r1", "y2"},
			stacks: []int{5, 0, 0, 2, 2},
			want:   &engine.BaseClue{Kind: engine.ClueRank, Value: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setup(t, engine.LevelBasicChopMove,
				[]string{"xx", "xx", "xx", "xx", "xx"},
				tt.bob,
			)
			setStacks(s, tt.stacks...)

			save := FindClues(s).Save[1]
			switch {
			case tt.want == nil && save != nil:
				t.Errorf("Save: want none, got %s", save.Action)
			case tt.want != nil && save == nil:
				t.Errorf("Save: want %s %d, got none", tt.want.Kind, tt.want.Value)
			case tt.want != nil && save.Action.Clue != *tt.want:
				t.Errorf("Save: want %s %d, got %s %d", tt.want.Kind, tt.want.Value, save.Action.Clue.Kind, save.Action.Clue.Value)
			}
		})
	}
}

func TestFindCluesNoSaveBelowChopMoveLevel(t *testing.T) {
	s := setup(t, engine.LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"r4", "r4", "g4", "r1", "b4"},
	)
	setStacks(s, 2, 2, 2, 2, 2)

	if save := FindClues(s).Save[1]; save != nil {
		t.Errorf("Save: want none without chop moves, got %s", save.Action)
	}
}

func TestFindPlayClues(t *testing.T) {
	s := setup(t, engine.LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"r1", "g4", "b4", "y4", "b3"},
	)

	plays := FindClues(s).Play[1]
	if len(plays) == 0 {
		t.Fatal("Play: want at least one play clue, got none")
	}
	for _, c := range plays {
		if !c.Result.Correct || c.Result.Playables == 0 {
			t.Errorf("play clue %s: want correct with playables, got %+v", c.Action, c.Result)
		}
		if len(c.Action.List) == 0 || c.Action.List[0] != 9 {
			t.Errorf("play clue %s should touch r1", c.Action)
		}
	}

	// The simulation leaves the real state alone.
	if c := card(t, s, 1, 9); c.Clued {
		t.Error("simulated clue leaked into the state")
	}
	if s.ClueTokens != engine.MaxClueTokens {
		t.Errorf("ClueTokens: want %d, got %d", engine.MaxClueTokens, s.ClueTokens)
	}
}

func TestDetermineClueAvoidsBadTouch(t *testing.T) {
	s := setup(t, engine.LevelBeginner,
		[]string{"xx", "xx", "xx", "xx", "xx"},
		[]string{"b1", "r1", "g4", "b3", "y5"},
	)
	setStacks(s, 1, 0, 0, 0, 0)

	// 1s would also touch the trash r1.
	c, ok := DetermineClue(s, 1, card(t, s, 1, 9))
	if !ok {
		t.Fatal("DetermineClue found nothing for b1")
	}
	if c.Result.BadTouch != 0 {
		t.Errorf("BadTouch: want 0, got %d (clue %s)", c.Result.BadTouch, c.Action)
	}
	if want := (engine.BaseClue{Kind: engine.ClueColour, Value: 3}); c.Action.Clue != want {
		t.Errorf("Clue: want blue, got %s", c.Action)
	}
}
