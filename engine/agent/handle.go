// Package agent interprets table actions under H-group conventions and keeps
// an engine.State's beliefs current.
//
// Handle is the single entry point for action records. Every action is
// appended to the state's action log before it is interpreted, so a rewind
// can always rebuild the state from the log alone.
package agent

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

// Handle validates a, records it and applies its effect on s. Malformed
// actions leave s untouched and return an error wrapping
// engine.ErrInvalidAction.
func Handle(s *engine.State, a engine.Action) error {
	if err := s.Validate(a); err != nil {
		return err
	}

	// Step 1: Record the action.
	s.ActionList = append(s.ActionList, a)

	// Step 2: Interpret it.
	rewound := false
	switch a.Type {
	case engine.ActionClue:
		rewound = InterpretClue(s, a).Kind == OutcomeLayeredReveal
		for _, h := range s.Hands {
			for _, c := range h {
				c.NewlyClued = false
			}
		}

	case engine.ActionDraw:
		s.OnDraw(a)

	case engine.ActionDiscard:
		rewound = interpretDiscard(s, a)

	case engine.ActionPlay:
		rewound = interpretPlay(s, a)

	case engine.ActionGameOver:
		s.OnGameOver(a)

	case engine.ActionIdentify, engine.ActionEliminate:
		applyFact(s, a)
	}

	// A rewind replayed this action already, turn bookkeeping included.
	if rewound {
		return nil
	}

	// Step 3: Settle chains this action confirms or breaks.
	if a.EndsTurn() && resolveWaiting(s, a) {
		return nil
	}

	// Step 4: Advance the turn.
	if a.EndsTurn() {
		actor := a.PlayerIndex
		if a.Type == engine.ActionClue {
			actor = a.Giver
		}
		s.TurnCount++
		s.CurrentPlayerIndex = s.NextPlayer(actor)
	}
	return nil
}

// HandleAll applies actions in order and stops at the first error.
func HandleAll(s *engine.State, actions []engine.Action) error {
	for i, a := range actions {
		if err := Handle(s, a); err != nil {
			return fmt.Errorf("action %d (%s): %w", i, a.Type, err)
		}
	}
	return nil
}

// applyFact applies a fact injected by a rewind. An identify fact reveals the
// card's truth, or with Infer pins its inference; an eliminate fact drops
// identities from its inferences.
func applyFact(s *engine.State, a engine.Action) {
	c := s.Hands[a.PlayerIndex].FindOrder(a.Order)
	c.OldInferred = c.Inferred
	c.Rewinded = true

	switch a.Type {
	case engine.ActionIdentify:
		if a.Infer {
			c.SetInferred(engine.NewIdentitySet(a.Identity()))
		} else {
			c.Identity = a.Identity()
		}
	case engine.ActionEliminate:
		c.Subtract(engine.FieldInferred, a.Excluded)
	}

	fields := logrus.Fields{"fact": a.Type, "order": a.Order}
	if a.Type == engine.ActionIdentify {
		fields["card"] = s.Format(a.Identity())
	} else {
		fields["excluded"] = formatSet(s, a.Excluded)
	}
	s.Log.WithFields(fields).Debug("applied rewind fact")
}
