package engine

import (
	"fmt"
	"strings"
)

// Level is the H-group convention level. Higher levels enable more
// inference rules.
type Level uint8

const (
	LevelBeginner            Level = 1
	LevelAdvancedFinesse     Level = 2 // double finesses within one chain
	LevelFix                 Level = 3 // fix clue detection
	LevelBasicChopMove       Level = 4 // trash, 5's and order chop moves
	LevelIntermediateFinesse Level = 5 // layered finesse ordering
	LevelMax                       = LevelIntermediateFinesse
)

// Suit names with special clue or copy-count behaviour.
const (
	SuitRainbow = "Rainbow" // touched by every colour clue
	SuitBlack   = "Black"   // one copy of each rank
)

// rankCounts is the number of copies of each rank 1..5 in a normal suit.
var rankCounts = [MaxRank]int{3, 2, 2, 2, 1}

// Variant describes the suits in play.
type Variant struct {
	Name  string
	Suits []string
}

// DefaultVariant returns the five-suit "No Variant" setup.
func DefaultVariant() Variant {
	return Variant{
		Name:  "No Variant",
		Suits: []string{"Red", "Yellow", "Green", "Blue", "Purple"},
	}
}

// NewVariant returns a variant with the given suits, validating the count.
func NewVariant(name string, suits ...string) (Variant, error) {
	if len(suits) == 0 || len(suits) > MaxSuits {
		return Variant{}, fmt.Errorf("variant %q: %d suits out of range [1, %d]", name, len(suits), MaxSuits)
	}
	return Variant{Name: name, Suits: suits}, nil
}

// NumSuits returns the number of suits in play.
func (v Variant) NumSuits() int { return len(v.Suits) }

// CardCount returns how many copies of id exist in the deck.
func (v Variant) CardCount(id Identity) int {
	if v.Suits[id.SuitIndex] == SuitBlack {
		return 1
	}
	return rankCounts[id.Rank-1]
}

// DeckSize returns the total number of cards in the deck.
func (v Variant) DeckSize() int {
	n := 0
	for _, id := range v.AllIdentities().Identities() {
		n += v.CardCount(id)
	}
	return n
}

// AllIdentities returns every identity in the variant.
func (v Variant) AllIdentities() IdentitySet {
	var s IdentitySet
	for suit := range v.Suits {
		for rank := 1; rank <= MaxRank; rank++ {
			s = s.Add(Identity{SuitIndex: suit, Rank: rank})
		}
	}
	return s
}

// Touches reports whether clue touches a card of identity id.
func (v Variant) Touches(clue BaseClue, id Identity) bool {
	if clue.Kind == ClueRank {
		return id.Rank == clue.Value
	}
	return id.SuitIndex == clue.Value || v.Suits[id.SuitIndex] == SuitRainbow
}

// CluePossibilities returns every identity the clue would touch.
func (v Variant) CluePossibilities(clue BaseClue) IdentitySet {
	return v.AllIdentities().Filter(func(id Identity) bool { return v.Touches(clue, id) })
}

// ColourClueSuits returns the suit indexes that may be named by a colour clue.
func (v Variant) ColourClueSuits() []int {
	out := make([]int, 0, len(v.Suits))
	for i, s := range v.Suits {
		if s != SuitRainbow {
			out = append(out, i)
		}
	}
	return out
}

// IndexOf returns the index of the named suit or -1.
func (v Variant) IndexOf(suit string) int {
	for i, s := range v.Suits {
		if s == suit {
			return i
		}
	}
	return -1
}

// Format renders id in short notation, e.g. "r3" or "k5" for black.
func (v Variant) Format(id Identity) string {
	if id.IsUnknown() {
		return "xx"
	}
	return fmt.Sprintf("%c%d", v.suitLetter(id.SuitIndex), id.Rank)
}

func (v Variant) suitLetter(suit int) rune {
	switch v.Suits[suit] {
	case SuitBlack:
		return 'k'
	case SuitRainbow:
		return 'm'
	}
	return rune(strings.ToLower(v.Suits[suit])[0])
}

// Parse converts short notation ("r3") back into an identity.
func (v Variant) Parse(short string) (Identity, error) {
	if short == "xx" {
		return Identity{Unknown, Unknown}, nil
	}
	if len(short) != 2 || short[1] < '1' || short[1] > '0'+MaxRank {
		return Identity{}, fmt.Errorf("malformed card %q", short)
	}
	for i := range v.Suits {
		if v.suitLetter(i) == rune(short[0]) {
			return Identity{SuitIndex: i, Rank: int(short[1] - '0')}, nil
		}
	}
	return Identity{}, fmt.Errorf("unknown suit in card %q for variant %q", short, v.Name)
}

// HandSize returns the starting hand size for the player count.
func HandSize(numPlayers int) int {
	switch {
	case numPlayers <= 3:
		return 5
	case numPlayers <= 5:
		return 4
	default:
		return 3
	}
}
