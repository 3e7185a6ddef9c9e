package agent

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

// ---------------------------------------------------------------------------
// Chop moves
// ---------------------------------------------------------------------------

// interpretTCM applies a trash chop move: every unprotected card to the right
// of the oldest newly clued trash card is chop moved.
func interpretTCM(s *engine.State, target int) {
	hand := s.Hands[target]
	oldest := -1
	for i := len(hand) - 1; i >= 0; i-- {
		c := hand[i]
		trash := c.Possible.All(func(id engine.Identity) bool { return s.IsTrash(target, id, c.Order) })
		if c.NewlyClued && trash {
			oldest = i
			break
		}
	}
	if oldest < 0 {
		return
	}

	for _, c := range hand[oldest+1:] {
		if !c.Saved() {
			c.ChopMoved = true
			s.Log.WithFields(logrus.Fields{"player": s.PlayerNames[target], "order": c.Order}).Info("trash chop move")
		}
	}
}

// interpret5CM applies a 5's chop move when a newly clued 5 sits exactly one
// unprotected slot left of chop. It reports whether the chop was moved.
func interpret5CM(s *engine.State, target int) bool {
	hand := s.Hands[target]
	chop := hand.ChopIndex()
	if chop < 0 {
		return false
	}

	distance := 0
	for i := chop; i >= 0; i-- {
		c := hand[i]
		if c.Clued && !c.NewlyClued {
			continue
		}
		fiveClued := slices.ContainsFunc(c.Clues, func(cl engine.CardClue) bool {
			return cl.Kind == engine.ClueRank && cl.Value == engine.MaxRank
		})
		if c.NewlyClued && fiveClued {
			if distance != 1 {
				return false
			}
			hand[chop].ChopMoved = true
			s.Log.WithFields(logrus.Fields{"player": s.PlayerNames[target], "order": hand[chop].Order}).Info("5's chop move")
			return true
		}
		distance++
	}
	return false
}

// unknownOnes returns the cards touched only by 1 clues.
func unknownOnes(hand engine.Hand) []*engine.Card {
	var out []*engine.Card
	for _, c := range hand {
		if len(c.Clues) == 0 {
			continue
		}
		onlyOnes := !slices.ContainsFunc(c.Clues, func(cl engine.CardClue) bool {
			return cl.Kind != engine.ClueRank || cl.Value != 1
		})
		if onlyOnes {
			out = append(out, c)
		}
	}
	return out
}

// OrderOnes sorts the unknown 1s in hand into the order they should be
// played: finessed cards first by finesse time, then a 1 that was clued on
// chop, then oldest first.
func OrderOnes(hand engine.Hand) []*engine.Card {
	ones := unknownOnes(hand)
	slices.SortStableFunc(ones, func(a, b *engine.Card) int {
		switch {
		case a.Finessed && b.Finessed:
			return a.FinesseIndex - b.FinesseIndex
		case a.Finessed:
			return -1
		case b.Finessed:
			return 1
		case a.ChopWhenFirstClued && !b.ChopWhenFirstClued:
			return -1
		case b.ChopWhenFirstClued && !a.ChopWhenFirstClued:
			return 1
		}
		return a.Order - b.Order
	})
	return ones
}

// checkOCM detects an order chop move: playing an unknown 1 out of order
// moves the chop of the player that many seats away.
func checkOCM(s *engine.State, a engine.Action, card *engine.Card) {
	if len(unknownOnes(engine.Hand{card})) == 0 || (card.Inferred.Len() <= 1 && !card.Rewinded) {
		return
	}

	ordered := OrderOnes(s.Hands[a.PlayerIndex])
	offset := slices.Index(ordered, card)
	if offset <= 0 {
		s.Log.Debug("played unknown 1 in order, no order chop move")
		return
	}

	target := (a.PlayerIndex + offset) % s.NumPlayers
	if target == a.PlayerIndex {
		s.Log.Error("order chop move wrapped around to the player")
		return
	}
	chop := s.Hands[target].Chop()
	if chop == nil {
		s.Log.WithField("player", s.PlayerNames[target]).Warn("order chop move on a locked hand")
		return
	}
	chop.ChopMoved = true
	s.Log.WithFields(logrus.Fields{"player": s.PlayerNames[target], "distance": offset}).Warn("order chop move")
}
