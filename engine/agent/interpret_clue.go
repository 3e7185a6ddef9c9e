package agent

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

// Stage is one step of clue interpretation. Stages run in declaration order;
// an early stage may end interpretation by jumping to StageUpdateHypoStacks.
type Stage uint8

const (
	StageApplyGoodTouch Stage = iota
	StageCheckLayeredReveal
	StageCheckFixOrMistake
	StageCheckStall
	StageCheckChopMove
	StageResolveFocus
	StageMatchOrSearch
	StageCommit
	StageUpdateHypoStacks
	stageDone
)

var stageNames = [...]string{
	"applyGoodTouch",
	"checkLayeredReveal",
	"checkFixOrMistake",
	"checkStall",
	"checkChopMove",
	"resolveFocus",
	"matchOrSearch",
	"commit",
	"updateHypoStacks",
}

func (st Stage) String() string {
	if int(st) < len(stageNames) {
		return stageNames[st]
	}
	return fmt.Sprintf("Stage(%d)", uint8(st))
}

// OutcomeKind classifies how a clue was read.
type OutcomeKind uint8

const (
	OutcomePlay          OutcomeKind = iota // focus gets a play inference
	OutcomeSave                             // every matched inference is a save
	OutcomeFix                              // re-touched card corrected
	OutcomeMistake                          // the table flagged the clue as a mistake
	OutcomeStall                            // giver had nothing better to do
	OutcomeChopMove                         // trash or 5's chop move
	OutcomeLayeredReveal                    // resolved by a rewind
	OutcomeNoInference                      // nothing fit, good touch only
)

var outcomeNames = [...]string{"play", "save", "fix", "mistake", "stall", "chopMove", "layeredReveal", "noInference"}

func (k OutcomeKind) String() string {
	if int(k) < len(outcomeNames) {
		return outcomeNames[k]
	}
	return fmt.Sprintf("OutcomeKind(%d)", uint8(k))
}

// ClueOutcome is the result of interpreting one clue.
type ClueOutcome struct {
	Kind       OutcomeKind
	FocusOrder int
	Chop       bool
	// Inferred is the focus card's inference set once interpretation ended.
	Inferred engine.IdentitySet
	// EmptyInference is set when good touch left the focus with nothing and
	// its inferences were reset to its possibilities.
	EmptyInference bool
	// Stages lists the stages that ran, in order.
	Stages []Stage
}

// chain is a candidate set of connections leading to an identity in suit.
type chain struct {
	conns []engine.Connection
	suit  int
}

// clueInterp carries one clue through the stages.
type clueInterp struct {
	s     *engine.State
	a     engine.Action
	focus Focus

	oldFocused   bool
	tokensBefore int
	touch        goodTouch
	possible     []FocusPossibility
	matched      []FocusPossibility
	searched     bool
	chains       []chain

	out ClueOutcome
}

// InterpretClue applies clue a to s and infers what it means. The clue must
// already be the last entry of the action log. A layered reveal may rewind s,
// in which case the outcome kind is OutcomeLayeredReveal and the clue has
// already been fully processed by the replay.
func InterpretClue(s *engine.State, a engine.Action) ClueOutcome {
	ci := &clueInterp{s: s, a: a, tokensBefore: s.ClueTokens}
	ci.focus = DetermineFocus(s, a)
	ci.out.FocusOrder = ci.focus.Card.Order
	ci.out.Chop = ci.focus.Chop

	ci.oldFocused = ci.focus.Card.Focused
	ci.focus.Card.Focused = true

	for st := StageApplyGoodTouch; st != stageDone; {
		ci.out.Stages = append(ci.out.Stages, st)
		st = ci.run(st)
	}
	return ci.out
}

func (ci *clueInterp) run(st Stage) Stage {
	switch st {
	case StageApplyGoodTouch:
		ci.touch = applyGoodTouch(ci.s, ci.a)
		return StageCheckLayeredReveal
	case StageCheckLayeredReveal:
		return ci.checkLayeredReveal()
	case StageCheckFixOrMistake:
		return ci.checkFixOrMistake()
	case StageCheckStall:
		if !ci.a.IgnoreStall && stallingSituation(ci.s, ci.a, ci.focus, ci.tokensBefore) {
			ci.s.Log.WithField("giver", ci.s.PlayerNames[ci.a.Giver]).Info("stalling situation")
			ci.out.Kind = OutcomeStall
			return StageUpdateHypoStacks
		}
		return StageCheckChopMove
	case StageCheckChopMove:
		return ci.checkChopMove()
	case StageResolveFocus:
		ci.possible = FindFocusPossible(ci.s, ci.a, ci.focus)
		for _, fp := range ci.possible {
			ci.s.Log.WithFields(logrus.Fields{
				"card":  ci.s.Format(fp.Identity),
				"save":  fp.Save,
				"chain": formatConns(ci.s, fp.Connections),
			}).Info("focus possible")
		}
		return StageMatchOrSearch
	case StageMatchOrSearch:
		ci.matchOrSearch()
		return StageCommit
	case StageCommit:
		if ci.searched {
			ci.commitSearch()
		} else {
			ci.commitMatched()
		}
		return StageUpdateHypoStacks
	case StageUpdateHypoStacks:
		ci.s.UpdateHypoStacks()
		ci.out.Inferred = ci.focus.Card.Inferred
		ci.s.Log.WithFields(logrus.Fields{
			"order":    ci.focus.Card.Order,
			"outcome":  ci.out.Kind,
			"inferred": formatSet(ci.s, ci.out.Inferred),
		}).Info("final inference on focused card")
		return stageDone
	}
	panic(fmt.Sprintf("agent: unknown clue stage %d", st))
}

// ---------------------------------------------------------------------------
// Stages
// ---------------------------------------------------------------------------

func (ci *clueInterp) checkLayeredReveal() Stage {
	s, a := ci.s, ci.a
	for _, c := range ci.touch.revealed {
		idx := c.LastReasoning()
		if slices.Contains(a.List, c.Order) {
			idx = -1
			if n := len(c.Reasoning); n >= 2 {
				idx = c.Reasoning[n-2]
			}
		}
		if idx < 0 {
			continue
		}
		fact := engine.Action{
			Type:        engine.ActionEliminate,
			PlayerIndex: a.Target,
			Order:       c.Order,
			Excluded:    ci.touch.before[c.Order],
		}
		err := Rewind(s, idx, fact)
		if err == nil {
			s.Log.WithField("order", c.Order).Info("layered finesse revealed")
			ci.out.Kind = OutcomeLayeredReveal
			return stageDone
		}
		s.Log.WithError(err).WithField("order", c.Order).Warn("could not rewind layered finesse")
	}

	fc := ci.focus.Card
	if ci.focus.Chop {
		fc.ChopWhenFirstClued = true
	}
	if fc.Inferred.Empty() {
		fc.SetInferred(fc.Possible)
		ci.out.EmptyInference = true
		s.Log.WithField("order", fc.Order).Warn("focused card had no inferences after applying good touch")
	}
	return StageCheckFixOrMistake
}

func (ci *clueInterp) checkFixOrMistake() Stage {
	s, a, fc := ci.s, ci.a, ci.focus.Card
	if !(s.Level >= engine.LevelFix && ci.touch.fix) && !a.Mistake {
		return StageCheckStall
	}

	ci.out.Kind = OutcomeMistake
	if ci.touch.fix {
		ci.out.Kind = OutcomeFix
	}
	s.Log.WithField("outcome", ci.out.Kind).Info("not inferring anything else")

	if id, ok := fc.Inferred.Single(); ok {
		s.UpdateHypoStacks()
		teamElim(s, fc, a.Giver, a.Target, id)
	}
	// Focus does not matter for a fix.
	fc.Focused = ci.oldFocused
	return StageUpdateHypoStacks
}

func (ci *clueInterp) checkChopMove() Stage {
	s, a, fc := ci.s, ci.a, ci.focus.Card
	if s.Level < engine.LevelBasicChopMove {
		return StageResolveFocus
	}

	trash := fc.Possible.All(func(id engine.Identity) bool { return s.IsTrash(a.Target, id, fc.Order) })
	playable := fc.Inferred.All(func(id engine.Identity) bool { return s.PlayableAway(id) == 0 })
	if fc.NewlyClued && trash && !playable {
		interpretTCM(s, a.Target)
		ci.out.Kind = OutcomeChopMove
		return StageUpdateHypoStacks
	}
	// No 5's chop move in the early game.
	if a.Clue.Kind == engine.ClueRank && a.Clue.Value == engine.MaxRank && fc.NewlyClued && !s.EarlyGame {
		if interpret5CM(s, a.Target) {
			ci.out.Kind = OutcomeChopMove
			return StageUpdateHypoStacks
		}
	}
	return StageResolveFocus
}

func (ci *clueInterp) matchOrSearch() {
	s, a, fc := ci.s, ci.a, ci.focus.Card

	correct := s.Us(a.Target)
	for _, fp := range ci.possible {
		if fc.Inferred.Has(fp.Identity) {
			ci.matched = append(ci.matched, fp)
			if fc.Matches(fp.Identity, engine.MatchOptions{}) {
				correct = true
			}
		}
	}
	if len(ci.matched) > 0 && correct {
		return
	}

	ci.searched = true
	s.Log.WithFields(logrus.Fields{
		"order":    fc.Order,
		"inferred": formatSet(s, fc.Inferred),
	}).Info("focused card doesn't match any inferences")

	_, certain := fc.ID(engine.MatchOptions{Symmetric: true})
	looksDirect := !certain && (a.Clue.Kind == engine.ClueColour ||
		slices.ContainsFunc(s.HypoStacks[a.Giver], func(stack int) bool { return stack+1 == a.Clue.Value }) ||
		slices.ContainsFunc(ci.possible, func(fp FocusPossibility) bool { return fp.Save }))
	ignore := []int{fc.Order}

	if !s.Us(a.Target) {
		// We can see the card, so only its true identity matters.
		if fc.Known() && !s.IsBasicTrash(fc.Identity) {
			if ok, conns := FindOwnFinesses(s, a.Giver, a.Target, fc.Identity, looksDirect, ignore); ok {
				ci.chains = append(ci.chains, chain{conns: conns, suit: fc.SuitIndex})
			}
		}
		return
	}

	// We are the target: every inference is a candidate. Chains starting
	// with a self component only count when no other chain exists, and then
	// only the one with the fewest blind plays.
	selfOnly := true
	var best *chain
	minBlind := len(s.Hands[a.Target]) + 1
	for _, id := range fc.Inferred.Identities() {
		if s.IsBasicTrash(id) {
			continue
		}
		ok, conns := FindOwnFinesses(s, a.Giver, a.Target, id, looksDirect, ignore)
		if !ok {
			continue
		}
		blind := countFinesses(conns)
		if len(conns) > 0 && conns[0].Self {
			if selfOnly && blind < minBlind {
				best = &chain{conns: conns, suit: id.SuitIndex}
				minBlind = blind
			}
			continue
		}
		selfOnly = false
		ci.chains = append(ci.chains, chain{conns: conns, suit: id.SuitIndex})
	}
	if selfOnly && best != nil {
		ci.chains = append(ci.chains, *best)
	}
}

// commitMatched writes the interpretation when the focus fits at least one
// focus possibility.
func (ci *clueInterp) commitMatched() {
	s, a, fc := ci.s, ci.a, ci.focus.Card

	var set engine.IdentitySet
	for _, fp := range ci.possible {
		set = set.Add(fp.Identity)
	}
	fc.Intersect(engine.FieldInferred, set)

	ci.out.Kind = OutcomeSave
	for _, m := range ci.matched {
		if !m.Save {
			ci.out.Kind = OutcomePlay
			if s.Us(a.Target) || fc.Matches(m.Identity, engine.MatchOptions{}) {
				assignConnections(s, m.Connections, m.SuitIndex)
			}
			if anySpeculative(m.Connections) {
				ci.wait(m.Connections, m.Identity)
			}
		}
		if len(ci.matched) == 1 && (len(m.Connections) == 0 || !m.Connections[0].Speculative()) {
			teamElim(s, fc, a.Giver, a.Target, m.Identity)
		}
	}
	clearSuperposition(s)
}

// commitSearch writes the interpretation found by searching for our own
// prompts and finesses, or falls back to good touch.
func (ci *clueInterp) commitSearch() {
	s, a, fc := ci.s, ci.a, ci.focus.Card

	if len(ci.chains) == 0 {
		fc.Reset = true
		ci.out.Kind = OutcomeNoInference
		if s.Us(a.Target) {
			s.Log.WithField("inferred", formatSet(s, fc.Inferred)).Info("no inference on card, defaulting to good touch")
			return
		}
		// Mirror what the target will think, so we know whether to fix.
		saved := fc.Inferred
		var set engine.IdentitySet
		for _, fp := range ci.possible {
			set = set.Add(fp.Identity)
		}
		fc.Intersect(engine.FieldInferred, set)
		if fc.Inferred.Empty() {
			fc.Inferred = saved
		}
		s.Log.WithField("inferred", formatSet(s, fc.Inferred)).Info("no inference on card, looks like")
		return
	}

	ci.out.Kind = OutcomePlay
	fc.Inferred = 0
	for _, ch := range ci.chains {
		assignConnections(s, ch.conns, ch.suit)

		rank := s.PlayStacks[ch.suit] + 1
		for _, conn := range ch.conns {
			if !conn.Hidden {
				rank++
			}
		}
		if rank > engine.MaxRank {
			continue
		}
		id := engine.Identity{SuitIndex: ch.suit, Rank: rank}
		fc.Union(engine.FieldInferred, engine.NewIdentitySet(id))

		if len(ci.chains) == 1 && (len(ch.conns) == 0 || !ch.conns[0].Speculative()) {
			teamElim(s, fc, a.Giver, a.Target, id)
		}
		if anySpeculative(ch.conns) {
			ci.wait(ch.conns, id)
		}
	}
	clearSuperposition(s)
}

// wait records a chain that later actions must confirm.
func (ci *clueInterp) wait(conns []engine.Connection, id engine.Identity) {
	ci.s.WaitingConnections = append(ci.s.WaitingConnections, engine.WaitingConnection{
		Connections: slices.Clone(conns),
		Giver:       ci.a.Giver,
		Target:      ci.a.Target,
		FocusOrder:  ci.focus.Card.Order,
		Inference:   id,
		ActionIndex: len(ci.s.ActionList) - 1,
	})
}

func anySpeculative(conns []engine.Connection) bool {
	return slices.ContainsFunc(conns, engine.Connection.Speculative)
}

func clearSuperposition(s *engine.State) {
	for _, h := range s.Hands {
		for _, c := range h {
			c.Superposition = false
		}
	}
}
