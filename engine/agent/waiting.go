package agent

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

// resolveWaiting checks every waiting connection against the action just
// taken. A chain whose next card is played as expected advances; a chain
// whose card is discarded or played as something else was misread, and the
// clue behind it is replayed without the wrong inference. It reports whether
// a rewind happened.
func resolveWaiting(s *engine.State, a engine.Action) bool {
	if a.Type != engine.ActionPlay && a.Type != engine.ActionDiscard {
		return false
	}

	kept := s.WaitingConnections[:0]
	var broken []engine.WaitingConnection
	for _, wc := range s.WaitingConnections {
		state, idx := waitingStatus(wc, a)
		switch state {
		case waitPending:
			kept = append(kept, wc)
		case waitAdvanced:
			wc.ConnIndex++
			kept = appendUnresolved(s, kept, wc)
		case waitSkipped:
			// A later card played early; the ones before it are still owed.
			wc.Connections = slices.Delete(slices.Clone(wc.Connections), idx, idx+1)
			kept = appendUnresolved(s, kept, wc)
		case waitDone:
		case waitBroken:
			broken = append(broken, wc)
		}
	}
	s.WaitingConnections = kept

	for _, wc := range broken {
		fields := logrus.Fields{"focus": wc.FocusOrder, "inference": s.Format(wc.Inference)}
		if s.Us(wc.Target) && s.Hands[wc.Target].FindOrder(wc.FocusOrder) != nil {
			fact := engine.Action{
				Type:        engine.ActionEliminate,
				PlayerIndex: wc.Target,
				Order:       wc.FocusOrder,
				Excluded:    engine.NewIdentitySet(wc.Inference),
			}
			err := Rewind(s, wc.ActionIndex, fact)
			if err == nil {
				s.Log.WithFields(fields).Info("waiting connection broke, rewound")
				return true
			}
			s.Log.WithError(err).WithFields(fields).Warn("waiting connection broke and rewind failed")
		}
		undoConnections(s, wc)
		s.Log.WithFields(fields).Info("waiting connection broke")
	}
	return false
}

func appendUnresolved(s *engine.State, kept []engine.WaitingConnection, wc engine.WaitingConnection) []engine.WaitingConnection {
	if wc.ConnIndex < len(wc.Connections) {
		return append(kept, wc)
	}
	s.Log.WithField("focus", wc.FocusOrder).Debug("waiting connection resolved")
	return kept
}

type waitState uint8

const (
	waitPending waitState = iota
	waitAdvanced
	waitSkipped
	waitDone
	waitBroken
)

// waitingStatus classifies a against wc. The index is that of the
// connection a played or discarded, or -1.
func waitingStatus(wc engine.WaitingConnection, a engine.Action) (waitState, int) {
	if a.Order == wc.FocusOrder {
		return waitDone, -1
	}
	if wc.ConnIndex >= len(wc.Connections) {
		return waitDone, -1
	}

	idx := slices.IndexFunc(wc.Connections, func(c engine.Connection) bool { return c.Order == a.Order })
	if idx < wc.ConnIndex {
		return waitPending, -1
	}
	conn := wc.Connections[idx]
	if a.Type == engine.ActionDiscard {
		return waitBroken, idx
	}
	if conn.Hidden || a.Identity() == conn.Card {
		if idx == wc.ConnIndex {
			return waitAdvanced, idx
		}
		return waitSkipped, idx
	}
	return waitBroken, idx
}

// undoConnections restores the cards of a broken chain to what they were
// before the chain was written.
func undoConnections(s *engine.State, wc engine.WaitingConnection) {
	for _, conn := range wc.Connections[wc.ConnIndex:] {
		c := s.Hands[conn.Reacting].FindOrder(conn.Order)
		if c == nil {
			continue
		}
		if conn.Type == engine.ConnFinesse {
			c.Finessed = false
			c.Hidden = false
		}
		if !c.OldInferred.Empty() {
			c.SetInferred(c.OldInferred)
		}
	}
}
