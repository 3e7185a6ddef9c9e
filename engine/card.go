package engine

import "slices"

// MatchOptions selects which information Card.ID may use.
//
// Symmetric ignores the ground truth, answering what the card's owner could
// know. Infer falls back to a single convention inference.
type MatchOptions struct {
	Symmetric bool
	Infer     bool
}

// Field selects one of a card's belief sets.
type Field uint8

const (
	FieldPossible Field = iota // 0
	FieldInferred              // 1
)

// Card is the belief state of one physical card from draw until it leaves
// the hand.
type Card struct {
	Identity // ground truth; Unknown for cards in our own hand

	Order      int `json:"order"`
	DrawnIndex int `json:"drawnIndex"` // len(ActionList) right after the draw

	Possible    IdentitySet `json:"possible"` // direct information only
	Inferred    IdentitySet `json:"inferred"` // narrowed by convention, always ⊆ Possible
	OldInferred IdentitySet `json:"oldInferred"`

	Clues []CardClue `json:"clues,omitempty"`

	Clued              bool `json:"clued"`
	NewlyClued         bool `json:"newlyClued"`
	Finessed           bool `json:"finessed"`
	ChopMoved          bool `json:"chopMoved"`
	Reset              bool `json:"reset"`
	Rewinded           bool `json:"rewinded"`
	Superposition      bool `json:"superposition"`
	Hidden             bool `json:"hidden"`
	Focused            bool `json:"focused"`
	ChopWhenFirstClued bool `json:"chopWhenFirstClued"`
	FinesseIndex       int  `json:"finesseIndex"`

	// Reasoning and ReasoningTurn are parallel: the action index and turn of
	// every action that removed a candidate from Inferred.
	Reasoning     []int `json:"reasoning,omitempty"`
	ReasoningTurn []int `json:"reasoningTurn,omitempty"`
}

// NewCard returns a card with the given truth and candidates.
func NewCard(id Identity, order int, possible IdentitySet) *Card {
	return &Card{
		Identity: id,
		Order:    order,
		Possible: possible,
		Inferred: possible,
	}
}

// Known reports whether the ground truth is visible to us.
func (c *Card) Known() bool { return !c.Identity.IsUnknown() }

// ID resolves the card's identity using the given options.
func (c *Card) ID(opts MatchOptions) (Identity, bool) {
	if id, ok := c.Possible.Single(); ok {
		return id, true
	}
	if !opts.Symmetric && c.Known() {
		return c.Identity, true
	}
	if opts.Infer {
		if id, ok := c.Inferred.Single(); ok {
			return id, true
		}
	}
	return Identity{Unknown, Unknown}, false
}

// Matches reports whether the card resolves to id under opts.
func (c *Card) Matches(id Identity, opts MatchOptions) bool {
	got, ok := c.ID(opts)
	return ok && got == id
}

// MatchesInferences reports whether the card's truth is among its
// inferences. Unknown cards and fully determined cards always match.
func (c *Card) MatchesInferences() bool {
	return !c.Known() || c.Possible.Len() == 1 || c.Inferred.Has(c.Identity)
}

// Intersect narrows the field to s. Narrowing Possible also narrows Inferred.
func (c *Card) Intersect(f Field, s IdentitySet) {
	if f == FieldPossible {
		c.Possible = c.Possible.Intersect(s)
	}
	c.Inferred = c.Inferred.Intersect(s)
}

// Subtract removes s from the field. Removing from Possible also removes
// from Inferred.
func (c *Card) Subtract(f Field, s IdentitySet) {
	if f == FieldPossible {
		c.Possible = c.Possible.Subtract(s)
	}
	c.Inferred = c.Inferred.Subtract(s)
}

// Union adds s to the field. Inferred only gains identities still possible.
func (c *Card) Union(f Field, s IdentitySet) {
	if f == FieldPossible {
		c.Possible = c.Possible.Union(s)
		return
	}
	c.Inferred = c.Inferred.Union(s.Intersect(c.Possible))
}

// SetInferred replaces the inferences, clipped to Possible.
func (c *Card) SetInferred(s IdentitySet) {
	c.Inferred = s.Intersect(c.Possible)
}

// AddReasoning records a checkpoint unless the last one is the same action.
func (c *Card) AddReasoning(actionIndex, turn int) {
	if n := len(c.Reasoning); n > 0 && c.Reasoning[n-1] == actionIndex {
		return
	}
	c.Reasoning = append(c.Reasoning, actionIndex)
	c.ReasoningTurn = append(c.ReasoningTurn, turn)
}

// LastReasoning returns the most recent checkpoint, or -1.
func (c *Card) LastReasoning() int {
	if len(c.Reasoning) == 0 {
		return -1
	}
	return c.Reasoning[len(c.Reasoning)-1]
}

// LastCluedIndex returns the action index of the latest clue touching the
// card, or -1.
func (c *Card) LastCluedIndex() int {
	if len(c.Clues) == 0 {
		return -1
	}
	return c.Clues[len(c.Clues)-1].ActionIndex
}

// Saved reports whether the card is protected from being discarded.
func (c *Card) Saved() bool { return c.Clued || c.Finessed || c.ChopMoved }

// Clone returns a deep copy.
func (c *Card) Clone() *Card {
	n := *c
	n.Clues = slices.Clone(c.Clues)
	n.Reasoning = slices.Clone(c.Reasoning)
	n.ReasoningTurn = slices.Clone(c.ReasoningTurn)
	return &n
}
