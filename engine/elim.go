package engine

import (
	"slices"

	"github.com/sirupsen/logrus"
)

// CardElim removes id from every player's future draws and hand once all of
// its copies are accounted for from that player's point of view, skipping the
// players in ignore. A card whose Possible collapses to a single identity
// re-triggers elimination for that identity until nothing changes.
func (s *State) CardElim(id Identity, ignore ...int) {
	type job struct {
		id     Identity
		ignore []int
	}
	queue := []job{{id: id, ignore: ignore}}

	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		for _, next := range s.elimOnce(j.id, j.ignore) {
			queue = append(queue, job{id: next})
		}
	}
}

// elimOnce runs one elimination pass for id and returns the identities of
// cards whose Possible became a singleton during the pass.
func (s *State) elimOnce(id Identity, ignore []int) []Identity {
	var collapsed []Identity
	total := s.Variant.CardCount(id)

	for p := range s.NumPlayers {
		if slices.Contains(ignore, p) || !s.AllPossible[p].Has(id) {
			continue
		}

		base := s.BaseCount(id)
		certain := base + len(s.VisibleFind(p, id, FindOptions{}))
		inferred := base + len(s.VisibleFind(p, id, FindOptions{Infer: true}))
		if inferred < total {
			continue
		}

		s.AllPossible[p] = s.AllPossible[p].Remove(id)
		if certain != total && inferred > total {
			s.recordContradiction(id, p, inferred, total)
			continue
		}

		single := NewIdentitySet(id)
		for _, c := range s.Hands[p] {
			if certain == total {
				if c.Matches(id, MatchOptions{Symmetric: true}) {
					continue
				}
				wasSingle := c.Possible.Len() == 1
				c.Subtract(FieldPossible, single)
				if next, ok := c.Possible.Single(); ok && !wasSingle {
					collapsed = append(collapsed, next)
				}
			} else if !c.Matches(id, MatchOptions{Symmetric: true, Infer: true}) {
				c.Subtract(FieldInferred, single)
			}
		}
		s.Log.WithFields(logrus.Fields{"player": s.PlayerNames[p], "card": s.Format(id)}).
			Debug("removing from hand and future possibilities")
	}
	return collapsed
}

// recordContradiction logs more inferred copies than exist. The record stays
// until a rewind replaces the timeline.
func (s *State) recordContradiction(id Identity, player, inferred, total int) {
	c := Contradiction{
		Identity:    id,
		PlayerIndex: player,
		Inferred:    inferred,
		Total:       total,
		ActionIndex: len(s.ActionList) - 1,
	}
	if slices.Contains(s.Contradictions, c) {
		return
	}
	s.Contradictions = append(s.Contradictions, c)
	s.Log.WithFields(logrus.Fields{
		"player":   s.PlayerNames[player],
		"card":     s.Format(id),
		"inferred": inferred,
		"total":    total,
	}).Error("inferred more copies than exist")
}

// ElimOptions controls RecursiveElim.
type ElimOptions struct {
	// Ignore lists card orders left untouched.
	Ignore []int
	// Hard eliminates on every protected card, not only newly clued ones.
	Hard bool
}

// RecursiveElim applies good touch on one player's protected cards: id is
// removed from their inferences, and any card left with a single inference
// repeats the process for that identity.
func (s *State) RecursiveElim(player int, id Identity, opts ElimOptions) {
	queue := []Identity{id}
	done := IdentitySet(0)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if done.Has(cur) {
			continue
		}
		done = done.Add(cur)

		for _, c := range s.Hands[player] {
			if slices.Contains(opts.Ignore, c.Order) || !c.Saved() || c.Inferred.Len() <= 1 {
				continue
			}
			if !opts.Hard && !c.NewlyClued {
				continue
			}
			c.Subtract(FieldInferred, NewIdentitySet(cur))
			if next, ok := c.Inferred.Single(); ok {
				queue = append(queue, next)
			}
		}
	}
}
