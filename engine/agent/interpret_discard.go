package agent

import (
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

// interpretDiscard applies a discard or bomb. A bomb, or a discard that
// contradicts the card's inferences, rewinds to the clue that produced them.
// A useful clued card thrown away is read as a sarcastic discard. It reports
// whether a rewind happened.
func interpretDiscard(s *engine.State, a engine.Action) bool {
	id := a.Identity()
	card := s.Hands[a.PlayerIndex].FindOrder(a.Order).Clone()
	card.Identity = id

	s.OnDiscard(a)
	s.UpdateHypoStacks()

	if s.EarlyGame && !a.Failed && !card.Clued {
		s.Log.WithField("card", s.Format(id)).Warn("ending early game from discard")
		s.EarlyGame = false
	}

	misread := !card.MatchesInferences() && !s.IsTrash(s.OurPlayerIndex, id, card.Order)
	if !card.Rewinded && (a.Failed || misread) {
		if idx := card.LastReasoning(); idx >= 0 {
			fact := engine.Action{Type: engine.ActionIdentify, PlayerIndex: a.PlayerIndex, Order: a.Order, SuitIndex: id.SuitIndex, Rank: id.Rank}
			err := Rewind(s, idx, fact)
			if err == nil {
				return true
			}
			s.Log.WithError(err).WithField("order", a.Order).Warn("could not rewind after discard")
		}
	}

	// Finessed and chop moved cards can be asymmetric, so only clued ones
	// count. A broken finesse is settled by its waiting connection.
	if !card.Clued || s.IsBasicTrash(id) {
		return false
	}
	s.Log.WithField("card", s.Format(id)).Warn("discarded useful card")

	if a.Failed {
		s.UndoHypoStacks(id)
		return false
	}

	// Nobody else visibly holds a copy: the transfer must be to us.
	if len(s.VisibleFind(a.PlayerIndex, id, engine.FindOptions{})) == 0 {
		ours := findSarcastic(s.Hands[s.OurPlayerIndex], id)
		if len(ours) == 1 && !ours[0].Rewinded {
			fact := engine.Action{Type: engine.ActionIdentify, PlayerIndex: s.OurPlayerIndex, Order: ours[0].Order, SuitIndex: id.SuitIndex, Rank: id.Rank, Infer: true}
			err := Rewind(s, ours[0].DrawnIndex, fact)
			if err == nil {
				return true
			}
			s.Log.WithError(err).Warn("could not rewind sarcastic discard, not writing inferences")
			return false
		}
		applyUnknownSarcastic(s, ours, id)
		return false
	}

	for i := range s.NumPlayers {
		receiver := (s.OurPlayerIndex + i) % s.NumPlayers
		sarcastic := findSarcastic(s.Hands[receiver], id)
		opts := engine.MatchOptions{Infer: s.Us(receiver)}
		matched := false
		for _, c := range sarcastic {
			if c.Clued && c.Matches(id, opts) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if len(sarcastic) == 1 {
			sarcastic[0].SetInferred(engine.NewIdentitySet(id))
			s.Log.WithFields(logrus.Fields{"player": s.PlayerNames[receiver], "card": s.Format(id)}).Info("writing from sarcastic discard")
		} else {
			applyUnknownSarcastic(s, sarcastic, id)
			s.Log.Info("unknown sarcastic discard")
		}
		return false
	}
	s.Log.WithField("card", s.Format(id)).Warn("no target for sarcastic discard")
	return false
}

// findSarcastic returns the cards in hand that could receive a sarcastic
// discard of id: cards already known as id, else clued cards that could be
// it and are not inferred as an earlier connecting card.
func findSarcastic(hand engine.Hand, id engine.Identity) []*engine.Card {
	if known := hand.FindCards(id, engine.MatchOptions{Symmetric: true, Infer: true}); len(known) > 0 {
		return known
	}
	var out []*engine.Card
	for _, c := range hand {
		if !c.Clued || !c.Possible.Has(id) {
			continue
		}
		if single, ok := c.Inferred.Single(); ok && single.Rank < id.Rank {
			continue
		}
		out = append(out, c)
	}
	return out
}

// applyUnknownSarcastic adds id back to every candidate. When the transfer
// target is unclear, or some candidate is not certainly playable, the hypo
// stacks roll back below id.
func applyUnknownSarcastic(s *engine.State, sarcastic []*engine.Card, id engine.Identity) {
	for _, c := range sarcastic {
		c.Union(engine.FieldInferred, engine.NewIdentitySet(id))
	}
	playable := func(c *engine.Card) bool {
		return c.Inferred.All(func(o engine.Identity) bool { return s.PlayableAway(o) == 0 })
	}
	rollback := len(sarcastic) == 0
	for _, c := range sarcastic {
		if !playable(c) {
			rollback = true
		}
	}
	if rollback {
		s.Log.WithField("card", s.Format(id)).Info("discarded useful card, rolling back hypo stacks")
		s.UndoHypoStacks(id)
	}
}
