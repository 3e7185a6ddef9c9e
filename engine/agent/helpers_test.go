package agent

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

var names = []string{"Alice", "Bob", "Cathy", "Donald", "Emily"}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// setup deals the given hands (short notation, slot 1 first) through Handle.
// Player 0 is us and holds "xx" cards. Orders run from each player's slot 5
// upwards, so with five-card hands Alice holds 4..0 and Bob 9..5.
func setup(t *testing.T, level engine.Level, hands ...[]string) *engine.State {
	t.Helper()
	s, err := engine.NewState(engine.Config{
		NumPlayers:  len(hands),
		Variant:     engine.DefaultVariant(),
		Level:       level,
		PlayerNames: names[:len(hands)],
	})
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	s.Log = quietLogger()

	order := 0
	for p, hand := range hands {
		for i := len(hand) - 1; i >= 0; i-- {
			id := mustParse(t, s, hand[i])
			draw := engine.Action{Type: engine.ActionDraw, PlayerIndex: p, Order: order, SuitIndex: id.SuitIndex, Rank: id.Rank}
			if err := Handle(s, draw); err != nil {
				t.Fatalf("Handle(draw %d) failed: %v", order, err)
			}
			order++
		}
	}
	return s
}

func mustParse(t *testing.T, s *engine.State, short string) engine.Identity {
	t.Helper()
	id, err := s.Variant.Parse(short)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", short, err)
	}
	return id
}

func mustHandle(t *testing.T, s *engine.State, a engine.Action) {
	t.Helper()
	if err := Handle(s, a); err != nil {
		t.Fatalf("Handle(%s) failed: %v", a.Type, err)
	}
}

func clueAction(giver, target int, kind engine.ClueKind, value int, list ...int) engine.Action {
	return engine.Action{
		Type:   engine.ActionClue,
		Giver:  giver,
		Target: target,
		Clue:   engine.BaseClue{Kind: kind, Value: value},
		List:   list,
	}
}

// play plays order for player, taking the identity from the card itself
// unless one is given.
func play(t *testing.T, s *engine.State, player, order int, short ...string) {
	t.Helper()
	id := cardIdentity(t, s, player, order, short...)
	mustHandle(t, s, engine.Action{Type: engine.ActionPlay, PlayerIndex: player, Order: order, SuitIndex: id.SuitIndex, Rank: id.Rank})
}

func discard(t *testing.T, s *engine.State, player, order int, short ...string) {
	t.Helper()
	id := cardIdentity(t, s, player, order, short...)
	mustHandle(t, s, engine.Action{Type: engine.ActionDiscard, PlayerIndex: player, Order: order, SuitIndex: id.SuitIndex, Rank: id.Rank})
}

func cardIdentity(t *testing.T, s *engine.State, player, order int, short ...string) engine.Identity {
	t.Helper()
	if len(short) > 0 {
		return mustParse(t, s, short[0])
	}
	c := s.Hands[player].FindOrder(order)
	if c == nil {
		t.Fatalf("order %d not in hand of %s", order, names[player])
	}
	return c.Identity
}

func card(t *testing.T, s *engine.State, player, order int) *engine.Card {
	t.Helper()
	c := s.Hands[player].FindOrder(order)
	if c == nil {
		t.Fatalf("order %d not in hand of %s", order, names[player])
	}
	return c
}

// checkInferred fails unless the card's inferences are exactly shorts.
func checkInferred(t *testing.T, s *engine.State, player, order int, shorts ...string) {
	t.Helper()
	var want engine.IdentitySet
	for _, short := range shorts {
		want = want.Add(mustParse(t, s, short))
	}
	if got := card(t, s, player, order).Inferred; got != want {
		t.Errorf("order %d inferred: want [%s], got [%s]", order, formatSet(s, want), formatSet(s, got))
	}
}

func checkSubset(t *testing.T, s *engine.State) {
	t.Helper()
	for p, h := range s.Hands {
		for _, c := range h {
			if !c.Inferred.SubsetOf(c.Possible) {
				t.Errorf("%s order %d: inferred [%s] not within possible [%s]", names[p], c.Order, formatSet(s, c.Inferred), formatSet(s, c.Possible))
			}
		}
	}
}
