package engine

import "testing"

func TestCardID(t *testing.T) {
	v := DefaultVariant()
	r2 := Identity{SuitIndex: 0, Rank: 2}
	b2 := Identity{SuitIndex: 3, Rank: 2}

	c := NewCard(r2, 7, NewIdentitySet(r2, b2))

	if id, ok := c.ID(MatchOptions{}); !ok || id != r2 {
		t.Errorf("ID(): want %s, got %s (%v)", v.Format(r2), v.Format(id), ok)
	}
	if _, ok := c.ID(MatchOptions{Symmetric: true}); ok {
		t.Error("ID(symmetric) should be unresolved with two possibilities")
	}

	c.SetInferred(NewIdentitySet(b2))
	if id, ok := c.ID(MatchOptions{Symmetric: true, Infer: true}); !ok || id != b2 {
		t.Errorf("ID(symmetric, infer): want %s, got %s", v.Format(b2), v.Format(id))
	}
	if c.MatchesInferences() {
		t.Error("MatchesInferences: truth r2 is not among inferences")
	}

	c.Intersect(FieldPossible, NewIdentitySet(r2))
	if id, ok := c.ID(MatchOptions{Symmetric: true}); !ok || id != r2 {
		t.Errorf("ID after collapse: want %s, got %s", v.Format(r2), v.Format(id))
	}
	if !c.Inferred.SubsetOf(c.Possible) {
		t.Errorf("inferred %v escaped possible %v", c.Inferred.Identities(), c.Possible.Identities())
	}
}

func TestCardUnionMasked(t *testing.T) {
	r1 := Identity{SuitIndex: 0, Rank: 1}
	r2 := Identity{SuitIndex: 0, Rank: 2}
	c := NewCard(Identity{Unknown, Unknown}, 0, NewIdentitySet(r1))

	c.Union(FieldInferred, NewIdentitySet(r2))
	if c.Inferred.Has(r2) {
		t.Error("Union(inferred) added an identity that is not possible")
	}

	c.Subtract(FieldInferred, NewIdentitySet(r1))
	if !c.Inferred.Empty() || c.Possible.Len() != 1 {
		t.Errorf("Subtract(inferred) should leave possible alone: possible %d, inferred %d", c.Possible.Len(), c.Inferred.Len())
	}
}

func TestCardReasoningAndClone(t *testing.T) {
	c := NewCard(Identity{Unknown, Unknown}, 3, DefaultVariant().AllIdentities())
	c.AddReasoning(4, 2)
	c.AddReasoning(4, 2)
	c.AddReasoning(9, 5)
	if len(c.Reasoning) != 2 || c.LastReasoning() != 9 {
		t.Errorf("Reasoning: want [4 9], got %v", c.Reasoning)
	}

	n := c.Clone()
	n.Reasoning[0] = 100
	n.Clues = append(n.Clues, CardClue{})
	if c.Reasoning[0] != 4 || len(c.Clues) != 0 {
		t.Error("Clone shares slices with the original")
	}
}

func TestHandChop(t *testing.T) {
	h := Hand{
		NewCard(Identity{Unknown, Unknown}, 4, 0),
		NewCard(Identity{Unknown, Unknown}, 3, 0),
		NewCard(Identity{Unknown, Unknown}, 2, 0),
	}
	if got := h.ChopIndex(); got != 2 {
		t.Errorf("ChopIndex: want 2, got %d", got)
	}
	h[2].Clued = true
	h[1].ChopMoved = true
	if got := h.Chop(); got == nil || got.Order != 4 {
		t.Errorf("Chop: want order 4, got %v", got)
	}
	h[0].Finessed = true
	if got := h.ChopIndex(); got != -1 {
		t.Errorf("locked hand ChopIndex: want -1, got %d", got)
	}

	if c := h.RemoveOrder(3); c == nil || len(h) != 2 || h.IndexOf(3) != -1 {
		t.Errorf("RemoveOrder(3): hand now %v", h.Orders())
	}
}
