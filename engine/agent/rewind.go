package agent

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

// MaxRewindDepth bounds rewinds started while replaying another rewind.
const MaxRewindDepth = 2

// Rewind rebuilds s from its action log with fact inserted before the action
// at actionIndex. The rebuilt state replaces s only if the replay succeeds
// and produces no contradiction s did not already have; otherwise s is left
// untouched and a *engine.RewindError is returned.
//
// Card pointers taken from s before a successful rewind are stale afterwards.
func Rewind(s *engine.State, actionIndex int, fact engine.Action) error {
	if actionIndex < 0 || actionIndex > len(s.ActionList) {
		return &engine.RewindError{ActionIndex: actionIndex, Reason: "action index out of range"}
	}
	if s.RewindDepth >= MaxRewindDepth {
		return &engine.RewindError{ActionIndex: actionIndex, Reason: "rewind depth exceeded"}
	}
	s.Log.WithFields(logrus.Fields{
		"actionIndex": actionIndex,
		"fact":        fact.Type,
		"order":       fact.Order,
		"depth":       s.RewindDepth + 1,
	}).Info("rewinding")

	actions := make([]engine.Action, 0, len(s.ActionList)+1)
	actions = append(actions, s.ActionList[:actionIndex]...)
	actions = append(actions, fact)
	actions = append(actions, s.ActionList[actionIndex:]...)

	fresh, err := replay(s.Config, s.Log, s.RewindDepth+1, actions)
	if err != nil {
		return &engine.RewindError{ActionIndex: actionIndex, Reason: err.Error()}
	}
	if c, ok := newContradiction(s.Contradictions, fresh.Contradictions); ok {
		return &engine.RewindError{
			ActionIndex: actionIndex,
			Reason:      fmt.Sprintf("new contradiction on %s for %s", s.Format(c.Identity), s.PlayerNames[c.PlayerIndex]),
		}
	}

	fresh.RewindDepth = s.RewindDepth
	*s = *fresh
	return nil
}

// Replay rebuilds a state from s's configuration and action log without
// changing anything. The result is independent of s.
func Replay(s *engine.State) (*engine.State, error) {
	return replay(s.Config, s.Log, s.RewindDepth, s.ActionList)
}

// ReplayLog builds a state from a configuration and a full action log.
func ReplayLog(cfg engine.Config, actions []engine.Action, log logrus.FieldLogger) (*engine.State, error) {
	return replay(cfg, log, 0, actions)
}

func replay(cfg engine.Config, log logrus.FieldLogger, depth int, actions []engine.Action) (*engine.State, error) {
	fresh, err := engine.NewState(cfg)
	if err != nil {
		return nil, err
	}
	if log != nil {
		fresh.Log = log
	}
	fresh.RewindDepth = depth
	if err := HandleAll(fresh, actions); err != nil {
		return nil, err
	}
	return fresh, nil
}

// newContradiction returns the first contradiction in after that before did
// not have. Action indices shift on replay, so they are not compared.
func newContradiction(before, after []engine.Contradiction) (engine.Contradiction, bool) {
	type key struct {
		id     engine.Identity
		player int
	}
	seen := make(map[key]bool, len(before))
	for _, c := range before {
		seen[key{c.Identity, c.PlayerIndex}] = true
	}
	for _, c := range after {
		if !seen[key{c.Identity, c.PlayerIndex}] {
			return c, true
		}
	}
	return engine.Contradiction{}, false
}
