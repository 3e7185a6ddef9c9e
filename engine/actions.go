package engine

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// ActionType identifies an action record.
type ActionType string

const (
	ActionClue     ActionType = "clue"
	ActionDraw     ActionType = "draw"
	ActionDiscard  ActionType = "discard"
	ActionPlay     ActionType = "play"
	ActionGameOver ActionType = "gameOver"

	// Facts injected by rewind. They never come from the table.
	ActionIdentify  ActionType = "identify"
	ActionEliminate ActionType = "eliminate"
)

// Action is a flat action record. Which fields are meaningful depends on
// Type; the JSON form is the persisted action log format.
type Action struct {
	Type ActionType `json:"type"`

	// clue
	Giver       int      `json:"giver,omitempty"`
	Target      int      `json:"target,omitempty"`
	List        []int    `json:"list,omitempty"`
	Clue        BaseClue `json:"clue"`
	Mistake     bool     `json:"mistake,omitempty"`
	IgnoreStall bool     `json:"ignoreStall,omitempty"`

	// draw, discard, play, identify, eliminate
	Order       int  `json:"order"`
	PlayerIndex int  `json:"playerIndex"`
	SuitIndex   int  `json:"suitIndex"`
	Rank        int  `json:"rank"`
	Failed      bool `json:"failed,omitempty"`

	// identify: the fact is a convention inference rather than the truth.
	Infer bool `json:"infer,omitempty"`
	// eliminate: identities to remove from the card's inferences.
	Excluded IdentitySet `json:"excluded,omitempty"`

	// gameOver
	EndCondition int `json:"endCondition,omitempty"`
}

// Identity returns the card identity carried by the action.
func (a Action) Identity() Identity { return Identity{SuitIndex: a.SuitIndex, Rank: a.Rank} }

// EndsTurn reports whether the action advances the turn.
func (a Action) EndsTurn() bool {
	return a.Type == ActionClue || a.Type == ActionDiscard || a.Type == ActionPlay
}

func (a Action) String() string {
	switch a.Type {
	case ActionClue:
		return fmt.Sprintf("clue %s %d from %d to %d touching %v", a.Clue.Kind, a.Clue.Value, a.Giver, a.Target, a.List)
	case ActionGameOver:
		return fmt.Sprintf("gameOver %d", a.EndCondition)
	}
	return fmt.Sprintf("%s order %d by %d (%s)", a.Type, a.Order, a.PlayerIndex, a.Identity())
}

// ---------------------------------------------------------------------------
// Basic action application
// ---------------------------------------------------------------------------

// OnClue applies the direct information of a clue to the target's hand and
// spends one clue token. The action must already be in ActionList.
func (s *State) OnClue(a Action) {
	touches := s.Variant.CluePossibilities(a.Clue)
	actionIndex := len(s.ActionList) - 1
	var collapsed []Identity

	for _, c := range s.Hands[a.Target] {
		if slices.Contains(a.List, c.Order) {
			before := c.Inferred.Len()
			c.Intersect(FieldPossible, touches)
			if !c.Clued {
				c.Clued = true
				c.NewlyClued = true
			}
			c.Clues = append(c.Clues, CardClue{BaseClue: a.Clue, Giver: a.Giver, ActionIndex: actionIndex})
			if c.Inferred.Len() < before {
				c.AddReasoning(actionIndex, s.TurnCount)
			}
		} else {
			c.Subtract(FieldPossible, touches)
		}
		if id, ok := c.Possible.Single(); ok {
			collapsed = append(collapsed, id)
		}
	}

	// Nobody has eliminated on these yet since the owner just learned them.
	for _, id := range collapsed {
		s.CardElim(id)
	}
	s.ClueTokens--
}

// OnDraw puts a new card at the front of the drawer's hand.
func (s *State) OnDraw(a Action) {
	c := NewCard(a.Identity(), a.Order, s.AllPossible[a.PlayerIndex])
	c.DrawnIndex = len(s.ActionList)
	s.Hands[a.PlayerIndex] = append(Hand{c}, s.Hands[a.PlayerIndex]...)

	// The drawer cannot see the card, so only the others learn from it.
	if !c.Identity.IsUnknown() {
		s.CardElim(c.Identity, a.PlayerIndex)
	}
	s.CardsLeft--
}

// OnDiscard removes a discarded or bombed card and updates the stacks.
func (s *State) OnDiscard(a Action) {
	s.Hands[a.PlayerIndex].RemoveOrder(a.Order)
	id := a.Identity()

	s.DiscardStacks[id.SuitIndex][id.Rank-1]++
	s.CardElim(id)

	// All copies gone: the suit can no longer reach this rank.
	if s.DiscardStacks[id.SuitIndex][id.Rank-1] == s.Variant.CardCount(id) && s.MaxRanks[id.SuitIndex] > id.Rank-1 {
		s.MaxRanks[id.SuitIndex] = id.Rank - 1
		s.Log.WithFields(logrus.Fields{"card": s.Format(id), "max": id.Rank - 1}).Info("all copies discarded")
		for _, hs := range s.HypoStacks {
			hs[id.SuitIndex] = min(hs[id.SuitIndex], s.MaxRanks[id.SuitIndex])
		}
	}

	if a.Failed {
		s.Strikes++
	} else if s.ClueTokens < MaxClueTokens {
		s.ClueTokens++
	}
}

// OnPlay removes a played card and raises its stack.
func (s *State) OnPlay(a Action) {
	s.Hands[a.PlayerIndex].RemoveOrder(a.Order)
	id := a.Identity()

	s.PlayStacks[id.SuitIndex] = id.Rank
	s.CardElim(id)

	if id.Rank == MaxRank && s.ClueTokens < MaxClueTokens {
		s.ClueTokens++
	}
}
