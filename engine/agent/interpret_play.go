package agent

import (
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

// interpretPlay applies a play. When we played a card we had misread, the
// timeline is replayed from its draw with its identity known; it reports
// whether that rewind happened.
func interpretPlay(s *engine.State, a engine.Action) bool {
	id := a.Identity()
	card := s.Hands[a.PlayerIndex].FindOrder(a.Order)

	if s.Us(a.PlayerIndex) && !card.Rewinded {
		if single, ok := card.Inferred.Single(); !ok || single != id {
			fact := engine.Action{Type: engine.ActionIdentify, PlayerIndex: a.PlayerIndex, Order: a.Order, SuitIndex: id.SuitIndex, Rank: id.Rank}
			err := Rewind(s, card.DrawnIndex, fact)
			if err == nil {
				return true
			}
			s.Log.WithError(err).WithField("order", a.Order).Warn("could not rewind after playing a misread card")
		}
	}

	if s.Level >= engine.LevelBasicChopMove && id.Rank == 1 {
		checkOCM(s, a, card)
	}

	s.OnPlay(a)
	s.Log.WithFields(logrus.Fields{"player": s.PlayerNames[a.PlayerIndex], "card": s.Format(id)}).Debug("played")

	// Good touch on what is left.
	for p := range s.NumPlayers {
		s.RecursiveElim(p, id, engine.ElimOptions{Hard: true})
	}
	s.UpdateHypoStacks()
	return false
}
