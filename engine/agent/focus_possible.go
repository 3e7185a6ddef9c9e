package agent

import (
	"slices"

	"github.com/jason-s-yu/hanabi/engine"
)

// FocusPossibility is one identity the focused card could have, together
// with the cards that must play first.
type FocusPossibility struct {
	engine.Identity
	Connections []engine.Connection
	Save        bool
}

// FindFocusPossible enumerates the identities the focus of clue a could be
// from the giver's point of view. The clue's direct information must already
// be applied. When the same identity is reachable as both play and save, the
// save wins.
func FindFocusPossible(s *engine.State, a engine.Action, focus Focus) []FocusPossibility {
	s.Log.WithField("stacks", s.PlayStacks).Debug("finding focus possibilities")

	var out []FocusPossibility
	if a.Clue.Kind == engine.ClueColour {
		suits := []int{a.Clue.Value}
		if rainbow := s.Variant.IndexOf(engine.SuitRainbow); rainbow >= 0 && rainbow != a.Clue.Value {
			suits = append(suits, rainbow)
		}
		for _, suit := range suits {
			out = append(out, colourFocus(s, a, focus, suit)...)
		}
	} else {
		out = rankFocus(s, a, focus, a.Clue.Value)
	}

	// Later entries override earlier ones with the same identity.
	var deduped []FocusPossibility
	for i, fp := range out {
		later := slices.ContainsFunc(out[i+1:], func(o FocusPossibility) bool { return o.Identity == fp.Identity })
		if !later {
			deduped = append(deduped, fp)
		}
	}
	return deduped
}

// colourFocus handles a colour clue whose focus may be of the given suit.
func colourFocus(s *engine.State, a engine.Action, focus Focus, suit int) []FocusPossibility {
	var out []FocusPossibility
	fc := focus.Card

	// Play: walk the chain as far as it connects.
	hypo := s.Clone()
	connected := []int{fc.Order}
	var conns []engine.Connection
	finesses := 0
	_, certain := fc.ID(engine.MatchOptions{Symmetric: true})
	looksDirect := !certain

	next := s.PlayStacks[suit] + 1
	for next < s.MaxRanks[suit] {
		id := engine.Identity{SuitIndex: suit, Rank: next}
		found := FindConnecting(hypo, a.Giver, a.Target, id, looksDirect, connected)
		if len(found) == 0 {
			break
		}
		first, _ := hypo.FindOrder(found[0].Order)
		if found[0].Type == engine.ConnKnown && couldBeFocus(first, fc, id) {
			s.Log.WithField("card", s.Format(id)).Warn("blocked connection, focused card could be it")
			break
		}
		if n := countFinesses(found); n > 0 {
			finesses += n
			if s.Level < engine.LevelAdvancedFinesse && finesses >= 2 {
				s.Log.Warn("blocked double finesse")
				break
			}
			// The finessed card might just as well be the focus.
			out = append(out, FocusPossibility{Identity: id, Connections: slices.Clone(conns)})
		}

		advance(hypo, found, id)
		conns = append(conns, found...)
		connected = append(connected, orders(found)...)
		next++
	}
	if next <= s.MaxRanks[suit] {
		out = append(out, FocusPossibility{Identity: engine.Identity{SuitIndex: suit, Rank: next}, Connections: conns})
	}

	// Save: a colour clue cannot save a 5.
	if !focus.Chop {
		return out
	}
	for rank := s.PlayStacks[suit] + 1; rank <= min(s.MaxRanks[suit], 4); rank++ {
		if s.Variant.Suits[suit] == engine.SuitBlack && rank == 2 && fillIns(s, a) < 2 {
			continue
		}
		id := engine.Identity{SuitIndex: suit, Rank: rank}
		if s.IsCritical(id) {
			out = append(out, FocusPossibility{Identity: id, Save: true})
		}
	}
	return out
}

// rankFocus handles a rank clue.
func rankFocus(s *engine.State, a engine.Action, focus Focus, rank int) []FocusPossibility {
	var out []FocusPossibility
	fc := focus.Card
	looksSave, alwaysSave := false, false

	if focus.Chop {
		for suit := range s.NumSuits() {
			id := engine.Identity{SuitIndex: suit, Rank: rank}
			if s.PlayableAway(id) == 0 || s.IsBasicTrash(id) {
				continue
			}
			if s.Variant.Suits[suit] == engine.SuitBlack && (rank == 3 || rank == 4) {
				continue
			}

			// A 2 save applies to any 2 the target cannot see elsewhere.
			save2 := false
			if rank == 2 {
				others := s.VisibleFind(a.Target, id, engine.FindOptions{Infer: true, Symmetric: []int{a.Giver}})
				save2 = !slices.ContainsFunc(others, func(c *engine.Card) bool { return c.Order != fc.Order })
			}
			if s.IsCritical(id) || save2 {
				// 2 and 5 saves never carry a prompt or finesse.
				if save2 || rank == engine.MaxRank {
					alwaysSave = true
				}
				out = append(out, FocusPossibility{Identity: id, Save: true})
				looksSave = true
			}
		}
	}
	if alwaysSave {
		return out
	}

	_, certain := fc.ID(engine.MatchOptions{Symmetric: true})
	looksPlayable := slices.ContainsFunc(s.HypoStacks[a.Giver], func(stack int) bool { return stack+1 == rank })

	for suit := range s.NumSuits() {
		id := engine.Identity{SuitIndex: suit, Rank: rank}
		// Critical cards are never play clued.
		if rank > s.MaxRanks[suit] || s.IsCritical(id) {
			continue
		}

		next := s.PlayStacks[suit] + 1
		if rank == next {
			out = append(out, FocusPossibility{Identity: id})
			continue
		}
		if rank < next {
			continue
		}

		hypo := s.Clone()
		connected := []int{fc.Order}
		var conns []engine.Connection
		finesses := 0
		looksDirect := !certain && (looksSave || looksPlayable)

		for {
			cur := engine.Identity{SuitIndex: suit, Rank: next}
			found := FindConnecting(hypo, a.Giver, a.Target, cur, looksDirect, connected)
			if len(found) == 0 {
				break
			}
			first, _ := hypo.FindOrder(found[0].Order)
			if couldBeFocus(first, fc, cur) {
				s.Log.WithField("card", s.Format(cur)).Warn("blocked connection, focused card could be it")
				break
			}
			finesses += countFinesses(found)
			if s.Level < engine.LevelAdvancedFinesse && finesses >= 2 {
				s.Log.Warn("blocked double finesse")
				break
			}
			// A finesse proves the clue is not direct.
			if countFinesses(found) > 0 {
				looksDirect = !certain && looksSave
			}

			advance(hypo, found, cur)
			conns = append(conns, found...)
			connected = append(connected, orders(found)...)
			next++

			// Another copy of the clued card connects: the focus is not it.
			if next > rank {
				s.Log.WithField("card", s.Format(id)).Warn("stacked beyond clued rank")
				break
			}
		}
		if next == rank {
			out = append(out, FocusPossibility{Identity: id, Connections: conns})
		}
	}
	return out
}

// couldBeFocus reports whether a connecting card is only known through this
// very clue and the focus itself might be the connecting identity.
func couldBeFocus(conn, focus *engine.Card, id engine.Identity) bool {
	return conn != nil && conn.NewlyClued && conn.Possible.Len() > 1 && focus.Inferred.Has(id)
}

// fillIns counts touched cards that the clue told something new.
func fillIns(s *engine.State, a engine.Action) int {
	n := 0
	for _, c := range s.Hands[a.Target] {
		if !slices.Contains(a.List, c.Order) {
			continue
		}
		if c.NewlyClued {
			n++
			continue
		}
		last := c.Clues[len(c.Clues)-1]
		for _, cl := range c.Clues[:len(c.Clues)-1] {
			if cl.BaseClue == last.BaseClue {
				n++
				break
			}
		}
	}
	return n
}

// advance plays the connecting cards on a hypothetical state.
func advance(hypo *engine.State, conns []engine.Connection, id engine.Identity) {
	for _, conn := range conns {
		if conn.Hidden && !conn.Card.IsUnknown() {
			hypo.PlayStacks[conn.Card.SuitIndex] = conn.Card.Rank
		}
	}
	hypo.PlayStacks[id.SuitIndex] = id.Rank
}

func countFinesses(conns []engine.Connection) int {
	n := 0
	for _, c := range conns {
		if c.Type == engine.ConnFinesse {
			n++
		}
	}
	return n
}

func orders(conns []engine.Connection) []int {
	out := make([]int, len(conns))
	for i, c := range conns {
		out[i] = c.Order
	}
	return out
}
