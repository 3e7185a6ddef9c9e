// Package engine implements the table state and belief bookkeeping for a
// Hanabi game seen from one seat.
//
// Every card in every hand carries a Possible set (direct information) and an
// Inferred set (convention). The State owns all cards and is mutated in place
// by the action handlers; Clone produces an independent copy for simulation
// and rewind.
package engine

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

const (
	MinPlayers = 2
	MaxPlayers = 6
)

// Config describes the fixed parameters of a game.
type Config struct {
	NumPlayers     int
	OurPlayerIndex int
	Variant        Variant
	Level          Level
	PlayerNames    []string
}

// ---------------------------------------------------------------------------
// Connections
// ---------------------------------------------------------------------------

// ConnectionType is the kind of link in a play chain.
type ConnectionType uint8

const (
	ConnKnown    ConnectionType = iota // identity certain to the giver
	ConnPlayable                       // clued card known playable but not yet identified
	ConnPrompt                         // clued card assumed to be the identity
	ConnFinesse                        // unclued card assumed to be the identity
)

func (t ConnectionType) String() string {
	switch t {
	case ConnKnown:
		return "known"
	case ConnPlayable:
		return "playable"
	case ConnPrompt:
		return "prompt"
	case ConnFinesse:
		return "finesse"
	}
	return fmt.Sprintf("ConnectionType(%d)", uint8(t))
}

// Connection is one card expected to play before the clued card. Cards are
// referenced by order so clones of the state never alias.
type Connection struct {
	Type     ConnectionType `json:"type"`
	Reacting int            `json:"reacting"`
	Order    int            `json:"order"`
	Card     Identity       `json:"card"`
	Hidden   bool           `json:"hidden,omitempty"`
	Self     bool           `json:"self,omitempty"`
	Known    bool           `json:"known,omitempty"`
}

// Speculative reports whether the connection rests on an unconfirmed
// assumption.
func (c Connection) Speculative() bool {
	return c.Type == ConnPrompt || c.Type == ConnFinesse
}

// WaitingConnection is a committed chain awaiting confirmation.
type WaitingConnection struct {
	Connections []Connection `json:"connections"`
	Giver       int          `json:"giver"`
	Target      int          `json:"target"`
	FocusOrder  int          `json:"focusOrder"`
	Inference   Identity     `json:"inference"`
	ActionIndex int          `json:"actionIndex"`
	ConnIndex   int          `json:"connIndex"`
}

// ---------------------------------------------------------------------------
// State
// ---------------------------------------------------------------------------

// State is the authoritative table state of one game.
type State struct {
	Config

	Hands         []Hand
	PlayStacks    []int
	DiscardStacks [][MaxRank]int
	MaxRanks      []int
	HypoStacks    [][]int // [player][suit]
	AllPossible   []IdentitySet

	ClueTokens         int
	Strikes            int
	CardsLeft          int
	TurnCount          int
	CurrentPlayerIndex int
	EarlyGame          bool
	GameOver           bool

	WaitingConnections []WaitingConnection
	Contradictions     []Contradiction
	ActionList         []Action
	RewindDepth        int

	// Log is shared by clones. It is never nil after NewState.
	Log logrus.FieldLogger `json:"-"`
}

// NewState returns the state at the start of a game, before any draw.
func NewState(cfg Config) (*State, error) {
	if cfg.NumPlayers < MinPlayers || cfg.NumPlayers > MaxPlayers {
		return nil, fmt.Errorf("num players %d out of range [%d, %d]", cfg.NumPlayers, MinPlayers, MaxPlayers)
	}
	if cfg.OurPlayerIndex < 0 || cfg.OurPlayerIndex >= cfg.NumPlayers {
		return nil, fmt.Errorf("our player index %d out of range", cfg.OurPlayerIndex)
	}
	if cfg.Variant.NumSuits() == 0 {
		cfg.Variant = DefaultVariant()
	}
	if cfg.Variant.NumSuits() > MaxSuits {
		return nil, fmt.Errorf("variant %q has %d suits, max %d", cfg.Variant.Name, cfg.Variant.NumSuits(), MaxSuits)
	}
	if cfg.Level == 0 {
		cfg.Level = LevelBeginner
	}
	if cfg.Level > LevelMax {
		return nil, fmt.Errorf("convention level %d out of range [1, %d]", cfg.Level, LevelMax)
	}
	if len(cfg.PlayerNames) == 0 {
		for i := range cfg.NumPlayers {
			cfg.PlayerNames = append(cfg.PlayerNames, fmt.Sprintf("player%d", i))
		}
	} else if len(cfg.PlayerNames) != cfg.NumPlayers {
		return nil, fmt.Errorf("got %d player names for %d players", len(cfg.PlayerNames), cfg.NumPlayers)
	}

	suits := cfg.Variant.NumSuits()
	s := &State{
		Config:        cfg,
		Hands:         make([]Hand, cfg.NumPlayers),
		PlayStacks:    make([]int, suits),
		DiscardStacks: make([][MaxRank]int, suits),
		MaxRanks:      make([]int, suits),
		HypoStacks:    make([][]int, cfg.NumPlayers),
		AllPossible:   make([]IdentitySet, cfg.NumPlayers),
		ClueTokens:    MaxClueTokens,
		CardsLeft:     cfg.Variant.DeckSize(),
		EarlyGame:     true,
		Log:           logrus.StandardLogger(),
	}
	all := cfg.Variant.AllIdentities()
	for i := range s.MaxRanks {
		s.MaxRanks[i] = MaxRank
	}
	for p := range cfg.NumPlayers {
		s.HypoStacks[p] = make([]int, suits)
		s.AllPossible[p] = all
	}
	return s, nil
}

// NumSuits returns the number of suits in play.
func (s *State) NumSuits() int { return len(s.PlayStacks) }

// Us reports whether player is the seat this state is modelled from.
func (s *State) Us(player int) bool { return player == s.OurPlayerIndex }

// NextPlayer returns the player after p in turn order.
func (s *State) NextPlayer(p int) int { return (p + 1) % s.NumPlayers }

// FindOrder returns the card with the given order in any hand, along with
// the holder.
func (s *State) FindOrder(order int) (*Card, int) {
	for p, h := range s.Hands {
		if c := h.FindOrder(order); c != nil {
			return c, p
		}
	}
	return nil, -1
}

// Format renders id in the variant's short notation.
func (s *State) Format(id Identity) string { return s.Variant.Format(id) }

// Clone returns a deep copy. The logger is shared.
func (s *State) Clone() *State {
	n := *s
	n.Config.PlayerNames = slices.Clone(s.PlayerNames)
	n.Hands = make([]Hand, len(s.Hands))
	for i, h := range s.Hands {
		n.Hands[i] = h.Clone()
	}
	n.PlayStacks = slices.Clone(s.PlayStacks)
	n.DiscardStacks = slices.Clone(s.DiscardStacks)
	n.MaxRanks = slices.Clone(s.MaxRanks)
	n.HypoStacks = make([][]int, len(s.HypoStacks))
	for i, hs := range s.HypoStacks {
		n.HypoStacks[i] = slices.Clone(hs)
	}
	n.AllPossible = slices.Clone(s.AllPossible)
	n.WaitingConnections = slices.Clone(s.WaitingConnections)
	for i := range n.WaitingConnections {
		n.WaitingConnections[i].Connections = slices.Clone(s.WaitingConnections[i].Connections)
	}
	n.Contradictions = slices.Clone(s.Contradictions)
	n.ActionList = slices.Clone(s.ActionList)
	return &n
}

// logCard returns a logger carrying the card's fields.
func (s *State) logCard(c *Card) logrus.FieldLogger {
	return s.Log.WithFields(logrus.Fields{"order": c.Order, "card": s.Format(c.Identity)})
}
