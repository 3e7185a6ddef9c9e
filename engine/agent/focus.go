package agent

import (
	"slices"

	"github.com/jason-s-yu/hanabi/engine"
)

// Focus is the card a clue is about.
type Focus struct {
	Card *engine.Card
	// Chop is set when the clue newly touched the target's chop.
	Chop bool
}

// DetermineFocus resolves the focus of clue a on the target's hand. It works
// both before and after the clue's direct information has been applied; the
// clue must already be the last entry of the action log.
//
// The chop is focused when newly touched. Otherwise the leftmost newly touched
// card wins, preferring cards that were not chop moved. When only old cards
// were touched, the one clued most recently by an earlier action is focused.
func DetermineFocus(s *engine.State, a engine.Action) Focus {
	hand := s.Hands[a.Target]
	clueIndex := len(s.ActionList) - 1
	touched := func(c *engine.Card) bool { return slices.Contains(a.List, c.Order) }

	// A card counts as clued before this clue if it held an earlier clue.
	cluedBefore := func(c *engine.Card) bool { return lastClueBefore(c, clueIndex) >= 0 }

	chop := -1
	for i := len(hand) - 1; i >= 0; i-- {
		c := hand[i]
		if !cluedBefore(c) && !c.Finessed && !c.ChopMoved {
			chop = i
			break
		}
	}
	if chop >= 0 && touched(hand[chop]) {
		return Focus{Card: hand[chop], Chop: true}
	}

	var movedNew *engine.Card
	for _, c := range hand {
		if !touched(c) || cluedBefore(c) {
			continue
		}
		if !c.ChopMoved {
			return Focus{Card: c}
		}
		if movedNew == nil {
			movedNew = c
		}
	}
	if movedNew != nil {
		return Focus{Card: movedNew}
	}

	var best *engine.Card
	bestIndex := -1
	for _, c := range hand {
		if !touched(c) {
			continue
		}
		if idx := lastClueBefore(c, clueIndex); idx > bestIndex {
			best, bestIndex = c, idx
		}
	}
	return Focus{Card: best}
}

// lastClueBefore returns the action index of the newest clue on c older than
// limit, or -1.
func lastClueBefore(c *engine.Card, limit int) int {
	last := -1
	for _, cl := range c.Clues {
		if cl.ActionIndex < limit && cl.ActionIndex > last {
			last = cl.ActionIndex
		}
	}
	return last
}
