package engine

import (
	"fmt"
	"math/bits"
)

const (
	MaxRank       = 5
	MaxSuits      = 12 // IdentitySet holds MaxSuits*MaxRank bits
	MaxClueTokens = 8
	MaxStrikes    = 3
)

// Unknown marks a hidden suit index or rank (a card in our own hand).
const Unknown = -1

// Identity is a (suit, rank) pair. Ranks run 1..MaxRank.
type Identity struct {
	SuitIndex int `json:"suitIndex"`
	Rank      int `json:"rank"`
}

// IsUnknown returns true when either component is hidden.
func (id Identity) IsUnknown() bool { return id.SuitIndex == Unknown || id.Rank == Unknown }

func (id Identity) String() string {
	if id.IsUnknown() {
		return "xx"
	}
	return fmt.Sprintf("s%dr%d", id.SuitIndex, id.Rank)
}

// bit returns the bit position of id. Out-of-range identities are a
// programming error and abort.
func (id Identity) bit() uint {
	if id.SuitIndex < 0 || id.SuitIndex >= MaxSuits || id.Rank < 1 || id.Rank > MaxRank {
		panic(fmt.Sprintf("engine: identity out of range: suit %d rank %d", id.SuitIndex, id.Rank))
	}
	return uint(id.SuitIndex*MaxRank + id.Rank - 1)
}

// IdentitySet is a packed set of identities, one bit per (suit, rank).
// Iteration order is suit-major, rank-minor.
type IdentitySet uint64

// NewIdentitySet builds a set from the given identities.
func NewIdentitySet(ids ...Identity) IdentitySet {
	var s IdentitySet
	for _, id := range ids {
		s |= 1 << id.bit()
	}
	return s
}

func (s IdentitySet) Has(id Identity) bool                { return s&(1<<id.bit()) != 0 }
func (s IdentitySet) Intersect(o IdentitySet) IdentitySet { return s & o }
func (s IdentitySet) Subtract(o IdentitySet) IdentitySet  { return s &^ o }
func (s IdentitySet) Union(o IdentitySet) IdentitySet     { return s | o }
func (s IdentitySet) Len() int                            { return bits.OnesCount64(uint64(s)) }
func (s IdentitySet) Empty() bool                         { return s == 0 }
func (s IdentitySet) SubsetOf(o IdentitySet) bool         { return s&^o == 0 }

// Add returns s with id included.
func (s IdentitySet) Add(id Identity) IdentitySet { return s | 1<<id.bit() }

// Remove returns s without id.
func (s IdentitySet) Remove(id Identity) IdentitySet { return s &^ (1 << id.bit()) }

// Single returns the only member of s, if s has exactly one.
func (s IdentitySet) Single() (Identity, bool) {
	if s.Len() != 1 {
		return Identity{Unknown, Unknown}, false
	}
	return identityAt(uint(bits.TrailingZeros64(uint64(s)))), true
}

// Identities lists the members of s in suit-major order.
func (s IdentitySet) Identities() []Identity {
	out := make([]Identity, 0, s.Len())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, identityAt(uint(bits.TrailingZeros64(v))))
	}
	return out
}

// All reports whether every member satisfies fn. An empty set returns true.
func (s IdentitySet) All(fn func(Identity) bool) bool {
	for v := uint64(s); v != 0; v &= v - 1 {
		if !fn(identityAt(uint(bits.TrailingZeros64(v)))) {
			return false
		}
	}
	return true
}

// Any reports whether some member satisfies fn.
func (s IdentitySet) Any(fn func(Identity) bool) bool {
	for v := uint64(s); v != 0; v &= v - 1 {
		if fn(identityAt(uint(bits.TrailingZeros64(v)))) {
			return true
		}
	}
	return false
}

// Filter returns the members satisfying fn.
func (s IdentitySet) Filter(fn func(Identity) bool) IdentitySet {
	var out IdentitySet
	for v := uint64(s); v != 0; v &= v - 1 {
		b := uint(bits.TrailingZeros64(v))
		if fn(identityAt(b)) {
			out |= 1 << b
		}
	}
	return out
}

func identityAt(b uint) Identity {
	return Identity{SuitIndex: int(b) / MaxRank, Rank: int(b)%MaxRank + 1}
}

// ---------------------------------------------------------------------------
// Clues
// ---------------------------------------------------------------------------

// ClueKind distinguishes colour clues from rank clues.
type ClueKind uint8

const (
	ClueColour ClueKind = iota // 0
	ClueRank                   // 1
)

func (k ClueKind) String() string {
	if k == ClueColour {
		return "colour"
	}
	return "rank"
}

// BaseClue is a clue without a target. For colour clues Value is a suit
// index; for rank clues it is the rank.
type BaseClue struct {
	Kind  ClueKind `json:"kind"`
	Value int      `json:"value"`
}

// CardClue records one clue touching a card.
type CardClue struct {
	BaseClue
	Giver       int `json:"giver"`
	ActionIndex int `json:"actionIndex"`
}
