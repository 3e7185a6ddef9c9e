package agent

import (
	"slices"

	"github.com/jason-s-yu/hanabi/engine"
)

// Stall severities, from least to most pressing.
const (
	stallNone      = 0
	stallEarlyGame = 1
	stallLocked    = 3
	stallEightClue = 4
)

// stallSeverity reports how badly the giver needed to avoid discarding. It
// is evaluated with the clue tokens held before the clue.
func stallSeverity(s *engine.State, giver, tokensBefore int) int {
	switch {
	case tokensBefore == engine.MaxClueTokens && s.TurnCount != 0:
		return stallEightClue
	case len(s.Hands[giver]) > 0 && s.Hands[giver].ChopIndex() == -1:
		return stallLocked
	case s.EarlyGame:
		return stallEarlyGame
	}
	return stallNone
}

// stallingSituation reports whether clue a reads as a stall rather than a
// play or save. A 5 clue away from chop is a 5 stall whenever the giver is
// under any stall pressure; under stronger pressure a clue that touches no
// new cards is a tempo stall.
func stallingSituation(s *engine.State, a engine.Action, focus Focus, tokensBefore int) bool {
	severity := stallSeverity(s, a.Giver, tokensBefore)
	if severity == stallNone {
		return false
	}

	if a.Clue.Kind == engine.ClueRank && a.Clue.Value == engine.MaxRank && focus.Card.NewlyClued && !focus.Chop {
		s.Log.Info("5 stall")
		return true
	}

	if severity >= stallLocked {
		touchedNew := slices.ContainsFunc(s.Hands[a.Target], func(c *engine.Card) bool {
			return c.NewlyClued && slices.Contains(a.List, c.Order)
		})
		if !touchedNew {
			s.Log.WithField("severity", severity).Info("tempo clue stall")
			return true
		}
	}
	return false
}
