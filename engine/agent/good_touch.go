package agent

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

// goodTouch is what applying a clue's information revealed.
type goodTouch struct {
	fix bool
	// revealed lists our finessed cards left with no inference; each one is
	// a layered finesse the clue just uncovered.
	revealed []*engine.Card
	// before holds every target card's inferences prior to the clue.
	before map[int]engine.IdentitySet
}

// applyGoodTouch applies the clue's direct information, then narrows every
// touched card in the target's hand by good touch until nothing changes. It
// also detects fix clues on re-touched cards.
func applyGoodTouch(s *engine.State, a engine.Action) goodTouch {
	res := goodTouch{before: make(map[int]engine.IdentitySet)}
	for _, c := range s.Hands[a.Target] {
		res.before[c.Order] = c.Inferred
	}
	hadInferences := func(c *engine.Card) bool { return !res.before[c.Order].Empty() }

	s.OnClue(a)

	for _, c := range s.Hands[a.Target] {
		if id, ok := c.Inferred.Single(); ok && c.Possible.Len() > 1 && res.before[c.Order].Len() > 1 {
			inferElim(s, a.Target, id)
		}
	}

	if s.Us(a.Target) {
		for _, c := range s.Hands[a.Target] {
			if c.Finessed && hadInferences(c) && c.Inferred.Empty() {
				res.revealed = append(res.revealed, c)
			}
		}
	}

	badTouch := badTouchPossibilities(s, a.Giver, a.Target, 0)
	for {
		size := badTouch.Len()

		var reduced []*engine.Card
		for _, c := range s.Hands[a.Target] {
			if c.Inferred.Len() > 1 && (c.Clued || c.ChopMoved) {
				c.Subtract(engine.FieldInferred, badTouch)
				reduced = append(reduced, c)
			}
		}
		for _, c := range reduced {
			if id, ok := c.Inferred.Single(); ok {
				inferElim(s, a.Target, id)
			}
		}

		for _, c := range s.Hands[a.Target] {
			if !slices.Contains(a.List, c.Order) || c.NewlyClued {
				continue
			}
			// A re-touched card that lost every inference was misread.
			if c.Inferred.Empty() && hadInferences(c) && !c.Reset {
				res.fix = true
				c.SetInferred(c.Possible.Subtract(badTouch))
				c.Reset = true
				continue
			}
			// Revealing a copy of a card protected elsewhere.
			if id, ok := c.Possible.Single(); ok && duplicatedElsewhere(s, a.Giver, c, id) {
				res.fix = true
			}
		}

		badTouch = badTouchPossibilities(s, a.Giver, a.Target, badTouch)
		if badTouch.Len() == size {
			break
		}
	}

	s.Log.WithField("badTouch", formatSet(s, badTouch)).Debug("applied good touch")
	return res
}

// duplicatedElsewhere reports whether a protected copy of id exists outside
// the giver's hand.
func duplicatedElsewhere(s *engine.State, giver int, card *engine.Card, id engine.Identity) bool {
	for p, h := range s.Hands {
		if p == giver {
			continue
		}
		for _, c := range h {
			if c.Order != card.Order && (c.Clued || c.Finessed) && c.Matches(id, engine.MatchOptions{Infer: true}) {
				return true
			}
		}
	}
	return false
}

// badTouchPossibilities returns the identities no newly touched card should
// be: trash, plus anything already clued elsewhere. Hands that cannot be seen
// by everyone involved count by inference only.
func badTouchPossibilities(s *engine.State, giver, target int, prev engine.IdentitySet) engine.IdentitySet {
	bad := prev
	if bad.Empty() {
		bad = s.Variant.AllIdentities().Filter(s.IsBasicTrash)
	}

	for p, h := range s.Hands {
		hidden := s.Us(p) || p == giver || p == target
		for _, c := range h {
			if !c.Clued {
				continue
			}
			var id engine.Identity
			if hidden {
				var ok bool
				if id, ok = c.Possible.Single(); !ok {
					if id, ok = c.Inferred.Single(); !ok {
						continue
					}
				}
			} else {
				id = c.Identity
			}
			bad = bad.Add(id)
		}
	}
	return bad
}

// inferElim spreads a freshly inferred identity. When it is our own card
// everyone learns it; otherwise only its holder did.
func inferElim(s *engine.State, player int, id engine.Identity) {
	if s.Us(player) {
		s.CardElim(id)
		return
	}
	s.CardElim(id, othersThan(s, player)...)
}

func othersThan(s *engine.State, player int) []int {
	var out []int
	for p := range s.NumPlayers {
		if p != player {
			out = append(out, p)
		}
	}
	return out
}

// teamElim removes id from every other protected card on the team once the
// focus is resolved. The giver only does so when every copy is accounted
// for, and the target only when it knows the focus.
func teamElim(s *engine.State, focus *engine.Card, giver, target int, id engine.Identity) {
	for p := range s.NumPlayers {
		if p == giver {
			count := s.BaseCount(id) + len(s.VisibleFind(giver, id, engine.FindOptions{}))
			if count < s.Variant.CardCount(id) {
				continue
			}
		}
		if p != target || focus.Inferred.Len() == 1 {
			s.RecursiveElim(p, id, engine.ElimOptions{Ignore: []int{focus.Order}, Hard: true})
		}
	}
}

// assignConnections writes a chain onto the cards it uses: finesses are
// marked, hidden layers are narrowed to something playable and every other
// card is pinned to its place in the suit.
func assignConnections(s *engine.State, conns []engine.Connection, suit int) {
	nextRank := s.PlayStacks[suit] + 1
	hypo := make([][]int, len(s.HypoStacks))
	for p, hs := range s.HypoStacks {
		hypo[p] = slices.Clone(hs)
	}
	actionIndex := len(s.ActionList) - 1

	for _, conn := range conns {
		card := s.Hands[conn.Reacting].FindOrder(conn.Order)
		if card == nil {
			continue
		}
		s.Log.WithFields(logrus.Fields{
			"card":  s.Format(conn.Card),
			"order": card.Order,
			"type":  conn.Type,
		}).Info("connecting")

		card.OldInferred = card.Inferred

		if conn.Type == engine.ConnFinesse {
			card.Finessed = true
			card.FinesseIndex = len(s.ActionList)
			card.Hidden = conn.Hidden
		}

		if conn.Hidden {
			var playable engine.IdentitySet
			for i, rank := range hypo[conn.Reacting] {
				if rank < engine.MaxRank {
					playable = playable.Add(engine.Identity{SuitIndex: i, Rank: rank + 1})
				}
			}
			card.Intersect(engine.FieldInferred, playable)

			if id, ok := card.ID(engine.MatchOptions{}); ok {
				if hypo[conn.Reacting][id.SuitIndex]+1 != id.Rank {
					s.Log.WithField("card", s.Format(id)).Warn("hidden connection is not playable on hypo stacks")
				}
				hypo[conn.Reacting][id.SuitIndex] = id.Rank
			}
		} else {
			next := engine.NewIdentitySet(engine.Identity{SuitIndex: suit, Rank: nextRank})
			switch {
			case card.Superposition:
				card.Union(engine.FieldInferred, next)
			case conn.Type == engine.ConnPlayable && !conn.Known:
				card.Superposition = true
			default:
				card.SetInferred(next)
				card.Superposition = true
			}
			nextRank++
		}

		if card.OldInferred.Len() > card.Inferred.Len() {
			card.AddReasoning(actionIndex, s.TurnCount)
		}
	}
}
