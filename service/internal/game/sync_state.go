// internal/game/sync_state.go
package game

import (
	"slices"

	"github.com/google/uuid"

	"github.com/jason-s-yu/hanabi/engine"
)

// CardView is one card as shown to a seat.
type CardView struct {
	Order int `json:"order"`
	// Card is the true identity, filled only when the seat can see it.
	Card      string   `json:"card,omitempty"`
	Clued     bool     `json:"clued"`
	Finessed  bool     `json:"finessed,omitempty"`
	ChopMoved bool     `json:"chopMoved,omitempty"`
	Inferred  []string `json:"inferred"`
	Possible  []string `json:"possible"`
}

// PlayerView is one seat's hand and public status.
type PlayerView struct {
	PlayerID      uuid.UUID  `json:"playerId,omitempty"`
	Name          string     `json:"name"`
	IsCurrentTurn bool       `json:"isCurrentTurn"`
	Chop          int        `json:"chop"` // Order of the chop card, -1 when locked.
	Hand          []CardView `json:"hand"`
}

// Snapshot is the belief state of a game as seen from one seat.
type Snapshot struct {
	GameID         uuid.UUID    `json:"gameId"`
	Viewer         int          `json:"viewer"`
	Turn           int          `json:"turn"`
	CurrentSeat    int          `json:"currentSeat"`
	ClueTokens     int          `json:"clueTokens"`
	Strikes        int          `json:"strikes"`
	CardsLeft      int          `json:"cardsLeft"`
	PlayStacks     []int        `json:"playStacks"`
	HypoStacks     []int        `json:"hypoStacks"`
	Score          int          `json:"score"`
	MaxScore       int          `json:"maxScore"`
	Pace           int          `json:"pace"`
	EarlyGame      bool         `json:"earlyGame"`
	GameOver       bool         `json:"gameOver"`
	Waiting        int          `json:"waitingConnections"`
	Contradictions int          `json:"contradictions"`
	Players        []PlayerView `json:"players"`
}

// Snapshot returns the beliefs as seen from seat. The seat's own cards never
// show their identity.
func (g *Game) Snapshot(seat int) Snapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.snapshot(seat)
}

// snapshot assumes the game lock is HELD by the caller.
func (g *Game) snapshot(seat int) Snapshot {
	s := g.state
	snap := Snapshot{
		GameID:         g.ID,
		Viewer:         seat,
		Turn:           s.TurnCount,
		CurrentSeat:    s.CurrentPlayerIndex,
		ClueTokens:     s.ClueTokens,
		Strikes:        s.Strikes,
		CardsLeft:      s.CardsLeft,
		PlayStacks:     slices.Clone(s.PlayStacks),
		Score:          s.Score(),
		MaxScore:       s.MaxScore(),
		Pace:           s.Pace(),
		EarlyGame:      s.EarlyGame,
		GameOver:       s.IsTerminal(),
		Waiting:        len(s.WaitingConnections),
		Contradictions: len(s.Contradictions),
	}
	if seat >= 0 && seat < len(s.HypoStacks) {
		snap.HypoStacks = slices.Clone(s.HypoStacks[seat])
	}

	snap.Players = make([]PlayerView, s.NumPlayers)
	for p, hand := range s.Hands {
		pv := PlayerView{
			Name:          s.PlayerNames[p],
			IsCurrentTurn: p == s.CurrentPlayerIndex && !snap.GameOver,
			Chop:          -1,
			Hand:          make([]CardView, len(hand)),
		}
		if p < len(g.Players) {
			pv.PlayerID = g.Players[p].ID
		}
		if chop := hand.Chop(); chop != nil {
			pv.Chop = chop.Order
		}
		for i, c := range hand {
			cv := CardView{
				Order:     c.Order,
				Clued:     c.Clued,
				Finessed:  c.Finessed,
				ChopMoved: c.ChopMoved,
				Inferred:  formatIdentities(s, c.Inferred),
				Possible:  formatIdentities(s, c.Possible),
			}
			if p != seat && c.Known() {
				cv.Card = s.Format(c.Identity)
			}
			pv.Hand[i] = cv
		}
		snap.Players[p] = pv
	}
	return snap
}

func formatIdentities(s *engine.State, set engine.IdentitySet) []string {
	ids := set.Identities()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = s.Format(id)
	}
	return out
}
