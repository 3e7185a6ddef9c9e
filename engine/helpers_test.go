package engine

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

// quietLogger discards all output.
func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestState deals the given hands (short notation, slot 1 first) in the
// default variant. Player 0 is us; their cards should be "xx".
func newTestState(t *testing.T, level Level, hands ...[]string) *State {
	t.Helper()
	s, err := NewState(Config{NumPlayers: len(hands), Variant: DefaultVariant(), Level: level})
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	s.Log = quietLogger()

	order := 0
	for p, hand := range hands {
		for i := len(hand) - 1; i >= 0; i-- {
			id, err := s.Variant.Parse(hand[i])
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", hand[i], err)
			}
			s.OnDraw(Action{Type: ActionDraw, PlayerIndex: p, Order: order, SuitIndex: id.SuitIndex, Rank: id.Rank})
			order++
		}
	}
	return s
}

// mustParse converts short notation or fails the test.
func mustParse(t *testing.T, s *State, short string) Identity {
	t.Helper()
	id, err := s.Variant.Parse(short)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", short, err)
	}
	return id
}

// checkSubset fails the test if any card holds an inference outside its
// possibilities.
func checkSubset(t *testing.T, s *State) {
	t.Helper()
	for p, h := range s.Hands {
		for _, c := range h {
			if !c.Inferred.SubsetOf(c.Possible) {
				t.Errorf("player %d order %d: inferred %v not a subset of possible %v", p, c.Order, c.Inferred.Identities(), c.Possible.Identities())
			}
		}
	}
}
