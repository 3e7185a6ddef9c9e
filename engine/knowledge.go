package engine

import "slices"

// FindOptions controls VisibleFind.
type FindOptions struct {
	// Infer accepts single-inference matches.
	Infer bool
	// Symmetric lists extra players whose hands are matched without ground
	// truth. The viewer's own hand always is.
	Symmetric []int
	// Ignore lists players whose hands are skipped.
	Ignore []int
}

// VisibleFind returns every card that viewer can identify as id.
func (s *State) VisibleFind(viewer int, id Identity, opts FindOptions) []*Card {
	var out []*Card
	for p, h := range s.Hands {
		if slices.Contains(opts.Ignore, p) {
			continue
		}
		symmetric := p == viewer || slices.Contains(opts.Symmetric, p)
		out = append(out, h.FindCards(id, MatchOptions{Symmetric: symmetric, Infer: opts.Infer})...)
	}
	return out
}

// BaseCount is the number of copies of id already out of every hand.
func (s *State) BaseCount(id Identity) int {
	n := s.DiscardStacks[id.SuitIndex][id.Rank-1]
	if s.PlayStacks[id.SuitIndex] >= id.Rank {
		n++
	}
	return n
}

// PlayableAway returns how many cards must be played before id is playable.
// Negative values mean the card is already played.
func (s *State) PlayableAway(id Identity) int {
	return id.Rank - (s.PlayStacks[id.SuitIndex] + 1)
}

// IsBasicTrash reports whether id is already played or can never be played.
func (s *State) IsBasicTrash(id Identity) bool {
	return id.Rank <= s.PlayStacks[id.SuitIndex] || id.Rank > s.MaxRanks[id.SuitIndex]
}

// IsSaved reports whether viewer sees another protected copy of id, ignoring
// the card with the given order.
func (s *State) IsSaved(viewer int, id Identity, order int) bool {
	for _, c := range s.VisibleFind(viewer, id, FindOptions{Infer: true}) {
		if c.Order != order && (c.Clued || c.Finessed) {
			return true
		}
	}
	return false
}

// IsTrash reports whether id is worthless to viewer for the card with the
// given order.
func (s *State) IsTrash(viewer int, id Identity, order int) bool {
	return s.IsBasicTrash(id) || s.IsSaved(viewer, id, order)
}

// IsCritical reports whether id is the last useful copy.
func (s *State) IsCritical(id Identity) bool {
	return !s.IsBasicTrash(id) && s.DiscardStacks[id.SuitIndex][id.Rank-1] == s.Variant.CardCount(id)-1
}

// ---------------------------------------------------------------------------
// Playables and trash
// ---------------------------------------------------------------------------

// playableSet reports whether every member of set is playable right now. An
// empty set is not playable.
func (s *State) playableSet(set IdentitySet) bool {
	return !set.Empty() && set.All(func(id Identity) bool { return s.PlayableAway(id) == 0 })
}

// FindPlayables returns the cards in player's hand that player knows are
// playable.
func (s *State) FindPlayables(player int) []*Card {
	var out []*Card
	for _, c := range s.Hands[player] {
		if s.playableSet(c.Possible) || s.playableSet(c.Inferred) {
			out = append(out, c)
		}
	}
	return out
}

// FindKnownTrash returns the cards in player's hand that player knows are
// trash.
func (s *State) FindKnownTrash(player int) []*Card {
	var out []*Card
	for _, c := range s.Hands[player] {
		trash := func(id Identity) bool { return s.IsTrash(player, id, c.Order) }
		if c.Possible.All(trash) || (c.Saved() && c.Inferred.All(trash)) {
			out = append(out, c)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Hypothetical stacks
// ---------------------------------------------------------------------------

// UpdateHypoStacks recomputes, for every player, the stacks reached if every
// protected card that player expects to be playable is played in turn.
func (s *State) UpdateHypoStacks() {
	for p := range s.NumPlayers {
		s.HypoStacks[p] = s.hypoStacksFor(p)
	}
}

func (s *State) hypoStacksFor(viewer int) []int {
	hypo := slices.Clone(s.PlayStacks)
	var used IdentitySet
	counted := make(map[int]bool)

	next := func(id Identity) bool {
		return hypo[id.SuitIndex]+1 == id.Rank && id.Rank <= s.MaxRanks[id.SuitIndex]
	}
	// A set is delayed playable when everything not already accounted for is
	// the next card of its suit, and something remains.
	delayed := func(set IdentitySet) bool {
		rest := set.Subtract(used)
		return !rest.Empty() && rest.All(next)
	}

	for progress := true; progress; {
		progress = false
		for holder, h := range s.Hands {
			for _, c := range h {
				if counted[c.Order] || !c.Saved() {
					continue
				}
				if !delayed(c.Possible) && !delayed(c.Inferred) {
					continue
				}

				var id Identity
				if c.Known() && holder != viewer {
					id = c.Identity
				} else if single, ok := c.Inferred.Subtract(used).Single(); ok {
					id = single
				} else if single, ok := c.Possible.Subtract(used).Single(); ok {
					id = single
				} else {
					continue
				}
				if !next(id) || used.Has(id) {
					continue
				}

				hypo[id.SuitIndex] = id.Rank
				used = used.Add(id)
				counted[c.Order] = true
				progress = true
			}
		}
	}
	return hypo
}

// UndoHypoStacks pulls every player's hypothetical stack of the suit back
// below rank.
func (s *State) UndoHypoStacks(id Identity) {
	for _, hs := range s.HypoStacks {
		if hs[id.SuitIndex] >= id.Rank {
			hs[id.SuitIndex] = id.Rank - 1
		}
	}
}
