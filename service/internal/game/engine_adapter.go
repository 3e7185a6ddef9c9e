// internal/game/engine_adapter.go
package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jason-s-yu/hanabi/engine"
)

// TableEvent is an action as reported by the table, with players named by
// their service ids and cards by suit name.
type TableEvent struct {
	Type   string    `json:"type"` // "clue", "draw", "play", "discard" or "game_over"
	Player uuid.UUID `json:"player"`

	// clue
	Target   uuid.UUID `json:"target,omitempty"`
	ClueKind string    `json:"clueKind,omitempty"` // "colour" or "rank"
	List     []int     `json:"list,omitempty"`

	// draw, play, discard; Suit also names a colour clue and Rank a rank clue.
	Order  int    `json:"order"`
	Suit   string `json:"suit,omitempty"` // Empty for a card we cannot see.
	Rank   int    `json:"rank,omitempty"`
	Failed bool   `json:"failed,omitempty"`

	EndCondition int `json:"endCondition,omitempty"`
}

// seatOf maps a service player id to its seat.
func (g *Game) seatOf(id uuid.UUID) (int, error) {
	seat, ok := g.PlayerToSeat[id]
	if !ok {
		return 0, fmt.Errorf("%w: player %s is not seated", engine.ErrInvalidAction, id)
	}
	return seat, nil
}

// suitIndex maps a suit name to its index; an empty name is a hidden card.
func (g *Game) suitIndex(name string) (int, error) {
	if name == "" {
		return engine.Unknown, nil
	}
	idx := g.state.Variant.IndexOf(name)
	if idx < 0 {
		return 0, fmt.Errorf("%w: unknown suit %q", engine.ErrInvalidAction, name)
	}
	return idx, nil
}

// ToAction converts a table event into an engine action.
func (g *Game) ToAction(ev TableEvent) (engine.Action, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.toAction(ev)
}

func (g *Game) toAction(ev TableEvent) (engine.Action, error) {
	if ev.Type == "game_over" {
		return engine.Action{Type: engine.ActionGameOver, EndCondition: ev.EndCondition}, nil
	}

	seat, err := g.seatOf(ev.Player)
	if err != nil {
		return engine.Action{}, err
	}

	switch ev.Type {
	case "clue":
		target, err := g.seatOf(ev.Target)
		if err != nil {
			return engine.Action{}, err
		}
		a := engine.Action{Type: engine.ActionClue, Giver: seat, Target: target, List: ev.List}
		switch ev.ClueKind {
		case "colour", "color":
			suit, err := g.suitIndex(ev.Suit)
			if err != nil {
				return engine.Action{}, err
			}
			a.Clue = engine.BaseClue{Kind: engine.ClueColour, Value: suit}
		case "rank":
			a.Clue = engine.BaseClue{Kind: engine.ClueRank, Value: ev.Rank}
		default:
			return engine.Action{}, fmt.Errorf("%w: unknown clue kind %q", engine.ErrInvalidAction, ev.ClueKind)
		}
		return a, nil

	case "draw", "play", "discard":
		suit, err := g.suitIndex(ev.Suit)
		if err != nil {
			return engine.Action{}, err
		}
		rank := ev.Rank
		if suit == engine.Unknown {
			rank = engine.Unknown
		}
		types := map[string]engine.ActionType{"draw": engine.ActionDraw, "play": engine.ActionPlay, "discard": engine.ActionDiscard}
		return engine.Action{
			Type:        types[ev.Type],
			PlayerIndex: seat,
			Order:       ev.Order,
			SuitIndex:   suit,
			Rank:        rank,
			Failed:      ev.Failed,
		}, nil
	}
	return engine.Action{}, fmt.Errorf("%w: unknown event type %q", engine.ErrInvalidAction, ev.Type)
}

// HandleEvent converts ev and applies it.
func (g *Game) HandleEvent(ctx context.Context, ev TableEvent) error {
	a, err := g.ToAction(ev)
	if err != nil {
		g.log.WithError(err).WithField("event", ev.Type).Warn("table event rejected")
		return err
	}
	return g.Apply(ctx, a)
}
