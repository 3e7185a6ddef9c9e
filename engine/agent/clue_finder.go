package agent

import (
	"io"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
)

// quiet swallows the logs of simulated clues.
var quiet = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// ClueResult describes what a simulated clue would achieve.
type ClueResult struct {
	Outcome ClueOutcome
	// Correct is set when the focus ends up with its true identity among its
	// inferences.
	Correct bool
	// BadTouch counts touched cards that are trash or duplicates.
	BadTouch int
	// Elim counts target cards whose inferences shrank.
	Elim int
	// Finesses counts cards newly marked as finessed.
	Finesses int
	// Playables is how far our hypothetical stacks advance.
	Playables int
}

// Clue is a candidate clue from us with its simulated result.
type Clue struct {
	Action engine.Action
	Result ClueResult
}

// Candidates are the clues worth considering this turn.
type Candidates struct {
	// Play holds, per player, the play clues ordered best first.
	Play [][]Clue
	// Save holds, per player, the clue that saves their chop, or nil.
	Save []*Clue
}

// FindClues simulates every clue we could give and returns the useful ones.
func FindClues(s *engine.State) Candidates {
	us := s.OurPlayerIndex
	out := Candidates{
		Play: make([][]Clue, s.NumPlayers),
		Save: make([]*Clue, s.NumPlayers),
	}

	for target := range s.NumPlayers {
		if target == us {
			continue
		}
		out.Save[target] = findSave(s, target)

		for _, a := range s.LegalClues(us, target) {
			res, _ := simulate(s, a)
			if res.Outcome.Kind != OutcomePlay || !res.Correct || res.Playables == 0 {
				continue
			}
			out.Play[target] = append(out.Play[target], Clue{Action: a, Result: res})
		}
		slices.SortStableFunc(out.Play[target], func(x, y Clue) int {
			if x.Result.Playables != y.Result.Playables {
				return y.Result.Playables - x.Result.Playables
			}
			if x.Result.BadTouch != y.Result.BadTouch {
				return x.Result.BadTouch - y.Result.BadTouch
			}
			return x.Result.Finesses - y.Result.Finesses
		})
	}
	return out
}

// findSave returns the clue that protects target's chop, if it needs one. A
// critical card, a 5 or an unseen 2 gets a direct save; anything else useful
// can only be saved with a trash chop move.
func findSave(s *engine.State, target int) *Clue {
	chop := s.Hands[target].Chop()
	if chop == nil || !chop.Known() {
		return nil
	}
	id := chop.Identity
	if s.IsTrash(s.OurPlayerIndex, id, chop.Order) || s.PlayableAway(id) == 0 {
		return nil
	}
	copies := s.VisibleFind(s.OurPlayerIndex, id, engine.FindOptions{})
	if slices.ContainsFunc(copies, func(c *engine.Card) bool { return c.Order != chop.Order }) {
		return nil
	}

	if s.IsCritical(id) || id.Rank == engine.MaxRank || id.Rank == 2 {
		if c, ok := DetermineClue(s, target, chop); ok {
			return &c
		}
	}
	if s.Level < engine.LevelBasicChopMove {
		return nil
	}

	var best *Clue
	for _, a := range s.LegalClues(s.OurPlayerIndex, target) {
		if slices.Contains(a.List, chop.Order) {
			continue
		}
		res, hypo := simulate(s, a)
		if res.Outcome.Kind != OutcomeChopMove {
			continue
		}
		if moved := hypo.Hands[target].FindOrder(chop.Order); moved == nil || !moved.ChopMoved {
			continue
		}
		if best == nil || len(a.List) < len(best.Action.List) {
			best = &Clue{Action: a, Result: res}
		}
	}
	return best
}

// DetermineClue finds the clue that focuses card and makes the target read
// it correctly. Among working clues the one with the least bad touch wins,
// then the one filling in the most cards; colour wins ties.
func DetermineClue(s *engine.State, target int, card *engine.Card) (Clue, bool) {
	var best Clue
	found := false
	for _, clue := range s.AllClues() {
		if !s.Variant.Touches(clue, card.Identity) {
			continue
		}
		a := engine.Action{
			Type:   engine.ActionClue,
			Giver:  s.OurPlayerIndex,
			Target: target,
			Clue:   clue,
			List:   s.Touched(target, clue),
		}
		res, _ := simulate(s, a)
		s.Log.WithFields(logrus.Fields{
			"clue":     a.String(),
			"focused":  res.Outcome.FocusOrder == card.Order,
			"inferred": formatSet(s, res.Outcome.Inferred),
		}).Debug("trying clue")
		if res.Outcome.FocusOrder != card.Order || !res.Correct {
			continue
		}
		if !found || res.BadTouch < best.Result.BadTouch ||
			(res.BadTouch == best.Result.BadTouch && res.Elim > best.Result.Elim) {
			best = Clue{Action: a, Result: res}
			found = true
		}
	}
	return best, found
}

// simulate interprets clue a on a clone of s. Rewinds are disabled on the
// clone.
func simulate(s *engine.State, a engine.Action) (ClueResult, *engine.State) {
	hypo := s.Clone()
	hypo.Log = quiet
	hypo.RewindDepth = MaxRewindDepth
	hypo.ActionList = append(hypo.ActionList, a)

	res := ClueResult{Outcome: InterpretClue(hypo, a)}
	if focus := hypo.Hands[a.Target].FindOrder(res.Outcome.FocusOrder); focus != nil && focus.Known() {
		res.Correct = focus.Inferred.Has(focus.Identity)
	}
	res.BadTouch = badTouchNum(s, a.Target, a.List)

	for _, c := range s.Hands[a.Target] {
		if after := hypo.Hands[a.Target].FindOrder(c.Order); after != nil && after.Inferred.Len() < c.Inferred.Len() {
			res.Elim++
		}
	}
	for p, h := range s.Hands {
		for _, c := range h {
			if after := hypo.Hands[p].FindOrder(c.Order); after != nil && after.Finessed && !c.Finessed {
				res.Finesses++
			}
		}
	}
	us := s.OurPlayerIndex
	for suit := range s.NumSuits() {
		res.Playables += hypo.HypoStacks[us][suit] - s.HypoStacks[us][suit]
	}
	return res, hypo
}

// badTouchNum counts the touched cards that are trash, already protected
// elsewhere, or duplicated within the clue.
func badTouchNum(s *engine.State, target int, list []int) int {
	n := 0
	var seen engine.IdentitySet
	for _, c := range s.Hands[target] {
		if !slices.Contains(list, c.Order) || !c.Known() {
			continue
		}
		id := c.Identity
		if s.IsTrash(s.OurPlayerIndex, id, c.Order) || seen.Has(id) {
			n++
		}
		seen = seen.Add(id)
	}
	return n
}
