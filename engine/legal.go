package engine

import (
	"fmt"
	"slices"
)

// Validate checks that a is consistent with the current state. Errors wrap
// ErrInvalidAction.
func (s *State) Validate(a Action) error {
	if s.GameOver && a.Type != ActionGameOver {
		return fmt.Errorf("%w: game is already over", ErrInvalidAction)
	}

	switch a.Type {
	case ActionClue:
		return s.validateClue(a)
	case ActionDraw:
		if err := s.validatePlayer(a.PlayerIndex); err != nil {
			return err
		}
		if s.CardsLeft <= 0 {
			return fmt.Errorf("%w: draw from an empty deck", ErrInvalidAction)
		}
		if c, _ := s.FindOrder(a.Order); c != nil {
			return fmt.Errorf("%w: order %d already in a hand", ErrInvalidAction, a.Order)
		}
		if a.PlayerIndex == s.OurPlayerIndex {
			return nil
		}
		return s.validateIdentity(a.Identity())
	case ActionDiscard, ActionPlay, ActionIdentify, ActionEliminate:
		if err := s.validatePlayer(a.PlayerIndex); err != nil {
			return err
		}
		if s.Hands[a.PlayerIndex].FindOrder(a.Order) == nil {
			return fmt.Errorf("%w: order %d not in hand of player %d", ErrInvalidAction, a.Order, a.PlayerIndex)
		}
		if a.Type == ActionEliminate {
			return nil
		}
		return s.validateIdentity(a.Identity())
	case ActionGameOver:
		return nil
	}
	return fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, a.Type)
}

func (s *State) validatePlayer(p int) error {
	if p < 0 || p >= s.NumPlayers {
		return fmt.Errorf("%w: player %d out of range", ErrInvalidAction, p)
	}
	return nil
}

func (s *State) validateIdentity(id Identity) error {
	if id.SuitIndex < 0 || id.SuitIndex >= s.NumSuits() || id.Rank < 1 || id.Rank > MaxRank {
		return fmt.Errorf("%w: identity %s out of range", ErrInvalidAction, id)
	}
	return nil
}

func (s *State) validateClue(a Action) error {
	if err := s.validatePlayer(a.Giver); err != nil {
		return err
	}
	if err := s.validatePlayer(a.Target); err != nil {
		return err
	}
	if a.Giver == a.Target {
		return fmt.Errorf("%w: player %d clued themselves", ErrInvalidAction, a.Giver)
	}
	if s.ClueTokens <= 0 {
		return fmt.Errorf("%w: no clue tokens", ErrInvalidAction)
	}
	if len(a.List) == 0 {
		return fmt.Errorf("%w: clue touches no cards", ErrInvalidAction)
	}
	switch a.Clue.Kind {
	case ClueColour:
		if !slices.Contains(s.Variant.ColourClueSuits(), a.Clue.Value) {
			return fmt.Errorf("%w: colour %d cannot be clued", ErrInvalidAction, a.Clue.Value)
		}
	case ClueRank:
		if a.Clue.Value < 1 || a.Clue.Value > MaxRank {
			return fmt.Errorf("%w: rank %d out of range", ErrInvalidAction, a.Clue.Value)
		}
	default:
		return fmt.Errorf("%w: unknown clue kind %d", ErrInvalidAction, a.Clue.Kind)
	}
	for _, order := range a.List {
		if s.Hands[a.Target].FindOrder(order) == nil {
			return fmt.Errorf("%w: order %d not in hand of player %d", ErrInvalidAction, order, a.Target)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Legal clues
// ---------------------------------------------------------------------------

// AllClues returns every clue value that exists in the variant.
func (s *State) AllClues() []BaseClue {
	var out []BaseClue
	for _, suit := range s.Variant.ColourClueSuits() {
		out = append(out, BaseClue{Kind: ClueColour, Value: suit})
	}
	for rank := 1; rank <= MaxRank; rank++ {
		out = append(out, BaseClue{Kind: ClueRank, Value: rank})
	}
	return out
}

// Touched returns the orders in target's hand the clue would touch, judged
// by ground truth. Cards we cannot see never count.
func (s *State) Touched(target int, clue BaseClue) []int {
	var out []int
	for _, c := range s.Hands[target] {
		if c.Known() && s.Variant.Touches(clue, c.Identity) {
			out = append(out, c.Order)
		}
	}
	return out
}

// LegalClues returns the clues giver may give to target that touch at least
// one card.
func (s *State) LegalClues(giver, target int) []Action {
	if giver == target || s.ClueTokens == 0 {
		return nil
	}
	var out []Action
	for _, clue := range s.AllClues() {
		list := s.Touched(target, clue)
		if len(list) == 0 {
			continue
		}
		out = append(out, Action{Type: ActionClue, Giver: giver, Target: target, Clue: clue, List: list})
	}
	return out
}
