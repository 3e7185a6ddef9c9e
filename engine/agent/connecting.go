package agent

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

// ---------------------------------------------------------------------------
// Connection search
// ---------------------------------------------------------------------------

// FindConnecting looks for the card that would let id become playable next,
// searching hands other than our own for prompts and finesses. Cards whose
// orders are in ignore are skipped. The search order is known cards, known
// playables, prompts, then finesses; hands are walked starting after the
// giver. A layered finesse returns its hidden layers before the real card.
//
// The result is nil when no single connection exists.
func FindConnecting(s *engine.State, giver, target int, id engine.Identity, looksDirect bool, ignore []int) []engine.Connection {
	if s.DiscardStacks[id.SuitIndex][id.Rank-1] == s.Variant.CardCount(id) {
		s.Log.WithField("card", s.Format(id)).Debug("all copies discarded, cannot connect")
		return nil
	}
	skip := func(c *engine.Card) bool { return slices.Contains(ignore, c.Order) }
	players := fromGiver(s, giver)

	// Pass 1: cards their holders already know.
	for _, p := range players {
		for _, c := range s.Hands[p] {
			if skip(c) || (c.Known() && c.Identity != id) {
				continue
			}
			if c.Matches(id, engine.MatchOptions{Symmetric: true, Infer: true}) {
				return []engine.Connection{{Type: engine.ConnKnown, Reacting: p, Order: c.Order, Card: id, Self: p == target, Known: true}}
			}
		}
		for _, c := range s.FindPlayables(p) {
			if !skip(c) && c.Known() && c.Identity == id {
				return []engine.Connection{{Type: engine.ConnPlayable, Reacting: p, Order: c.Order, Card: id, Self: p == target, Known: c.Inferred.Len() == 1}}
			}
		}
	}

	// Pass 2: prompts and finesses on hands we can see.
	for _, p := range players {
		if p == giver || s.Us(p) {
			continue
		}
		hand := s.Hands[p]

		if prompt := findPrompt(hand, id, ignore); prompt != nil {
			if prompt.Identity == id {
				return []engine.Connection{{Type: engine.ConnPrompt, Reacting: p, Order: prompt.Order, Card: id, Self: p == target}}
			}
			// The holder would play the wrong card into a prompt.
			continue
		}
		if looksDirect && p == target {
			continue
		}

		var layers []engine.Connection
		for _, c := range finessePositions(hand, ignore) {
			if c.Identity == id {
				return append(layers, engine.Connection{Type: engine.ConnFinesse, Reacting: p, Order: c.Order, Card: id, Self: p == target})
			}
			if c.Identity.SuitIndex == id.SuitIndex || s.PlayableAway(c.Identity) != 0 {
				break
			}
			layers = append(layers, engine.Connection{Type: engine.ConnFinesse, Reacting: p, Order: c.Order, Card: c.Identity, Hidden: true, Self: p == target})
		}
	}
	return nil
}

// FindOwnFinesses builds the full chain leading up to id, allowing
// connections through our own unseen hand when someone else gave the clue.
// It reports false when some rank in between cannot be connected.
func FindOwnFinesses(s *engine.State, giver, target int, id engine.Identity, looksDirect bool, ignore []int) (bool, []engine.Connection) {
	hypo := s.Clone()
	ignore = slices.Clone(ignore)
	var conns []engine.Connection

	for next := hypo.PlayStacks[id.SuitIndex] + 1; next < id.Rank; next++ {
		cur := engine.Identity{SuitIndex: id.SuitIndex, Rank: next}
		found := FindConnecting(hypo, giver, target, cur, looksDirect, ignore)
		if len(found) == 0 && !s.Us(giver) {
			found = ownConnection(hypo, target, cur, looksDirect, ignore)
		}
		if len(found) == 0 {
			s.Log.WithFields(logrus.Fields{"card": s.Format(id), "missing": s.Format(cur)}).Debug("no connection")
			return false, nil
		}

		advance(hypo, found, cur)
		ignore = append(ignore, orders(found)...)
		conns = append(conns, found...)
	}
	return true, conns
}

// ownConnection searches our own hand for a prompt or finesse on id. We
// cannot see these cards, so they are assumed from their inferences unless a
// rewind has told us what one of them is.
func ownConnection(s *engine.State, target int, id engine.Identity, looksDirect bool, ignore []int) []engine.Connection {
	us := s.OurPlayerIndex
	self := us == target
	hand := s.Hands[us]

	if prompt := findPrompt(hand, id, ignore); prompt != nil {
		if !ownMatch(prompt, id) {
			return nil
		}
		return []engine.Connection{{Type: engine.ConnPrompt, Reacting: us, Order: prompt.Order, Card: id, Self: self}}
	}
	if self && looksDirect {
		return nil
	}

	var layers []engine.Connection
	for _, c := range finessePositions(hand, ignore) {
		if ownMatch(c, id) {
			return append(layers, engine.Connection{Type: engine.ConnFinesse, Reacting: us, Order: c.Order, Card: id, Self: self})
		}
		layer := engine.Identity{SuitIndex: engine.Unknown, Rank: engine.Unknown}
		if c.Known() {
			if c.Identity.SuitIndex == id.SuitIndex || s.PlayableAway(c.Identity) != 0 {
				break
			}
			layer = c.Identity
		} else if !c.Inferred.Any(func(o engine.Identity) bool {
			return o.SuitIndex != id.SuitIndex && s.PlayableAway(o) == 0
		}) {
			break
		}
		layers = append(layers, engine.Connection{
			Type:     engine.ConnFinesse,
			Reacting: us,
			Order:    c.Order,
			Card:     layer,
			Hidden:   true,
			Self:     self,
		})
	}
	return nil
}

// ownMatch reports whether one of our cards could be id. A card we were told
// the identity of only matches that identity.
func ownMatch(c *engine.Card, id engine.Identity) bool {
	if c.Known() {
		return c.Identity == id
	}
	return c.Inferred.Has(id)
}

// findPrompt returns the leftmost previously clued card that could be id,
// ignoring cards whose identity is already certain.
func findPrompt(hand engine.Hand, id engine.Identity, ignore []int) *engine.Card {
	for _, c := range hand {
		if !c.Clued || c.NewlyClued || c.Possible.Len() == 1 || slices.Contains(ignore, c.Order) {
			continue
		}
		if c.Possible.Has(id) {
			return c
		}
	}
	return nil
}

// finessePositions returns the unprotected cards from the left, in the order
// they would be blind played.
func finessePositions(hand engine.Hand, ignore []int) []*engine.Card {
	var out []*engine.Card
	for _, c := range hand {
		if c.Saved() || slices.Contains(ignore, c.Order) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// fromGiver lists every player, starting with the one after giver.
func fromGiver(s *engine.State, giver int) []int {
	out := make([]int, 0, s.NumPlayers)
	for i := 1; i <= s.NumPlayers; i++ {
		out = append(out, (giver+i)%s.NumPlayers)
	}
	return out
}
