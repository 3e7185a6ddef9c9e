// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/hanabi/engine"
	"github.com/jason-s-yu/hanabi/engine/agent"
	"github.com/jason-s-yu/hanabi/service/internal/cache"
	"github.com/jason-s-yu/hanabi/service/internal/database"
)

// GameEventType represents the type of a game event sent to listeners.
type GameEventType string

// Constants defining the GameEvent types.
const (
	EventActionApplied GameEventType = "action_applied" // An action was interpreted.
	EventRewound       GameEventType = "rewound"        // The action triggered a rewind; beliefs were rebuilt.
	EventContradiction GameEventType = "contradiction"  // A new over-inference was recorded.
	EventChainResolved GameEventType = "chain_resolved" // A waiting connection finished or broke.
	EventSyncState     GameEventType = "sync_state"     // Full snapshot for one seat.
	EventGameEnd       GameEventType = "game_end"       // The table ended the game.
)

// GameEvent is the structure sent to listeners after each action.
type GameEvent struct {
	Type        GameEventType  `json:"type"`
	GameID      uuid.UUID      `json:"gameId"`
	ActionIndex int            `json:"actionIndex"`
	Action      *engine.Action `json:"action,omitempty"`

	Payload map[string]any `json:"payload,omitempty"`

	State *Snapshot `json:"state,omitempty"`
}

// SnapshotCache is the part of the cache a game writes to.
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, id uuid.UUID, v any) error
	PublishAction(ctx context.Context, rec cache.ActionRecord) error
}

// Player is one seat at the table.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Options wires a game to its collaborators. Store and Cache may be nil.
type Options struct {
	Store       database.ActionLog
	Cache       SnapshotCache
	Log         logrus.FieldLogger
	BroadcastFn func(ev GameEvent)
}

// Game tracks one table from our seat: every action is validated, written to
// the action log, interpreted, and the resulting beliefs are cached.
type Game struct {
	ID      uuid.UUID
	Players []Player // Seat order.

	PlayerToSeat map[uuid.UUID]int

	state       *engine.State
	store       database.ActionLog
	cache       SnapshotCache
	log         logrus.FieldLogger
	actionIndex int // Number of actions in the stored log.

	// BroadcastFn receives an event after each processed action.
	BroadcastFn func(ev GameEvent)

	Mu sync.Mutex // Serializes actions; one is fully processed before the next.
}

// NewGame creates a game for the given seats and registers it with the store.
// Player names in cfg are taken from players.
func NewGame(ctx context.Context, cfg engine.Config, players []Player, opts Options) (*Game, error) {
	if len(players) != cfg.NumPlayers {
		return nil, fmt.Errorf("got %d players for a %d player game", len(players), cfg.NumPlayers)
	}
	cfg.PlayerNames = make([]string, len(players))
	for i, p := range players {
		cfg.PlayerNames[i] = p.Name
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("game id: %w", err)
	}
	g, err := newGame(id, cfg, players, opts)
	if err != nil {
		return nil, err
	}
	if g.store != nil {
		if err := g.store.CreateGame(ctx, id, g.state.Config); err != nil {
			return nil, fmt.Errorf("register game %s: %w", id, err)
		}
	}
	g.log.WithField("players", len(players)).Info("game created")
	return g, nil
}

// Restore rebuilds a game from its stored action log.
func Restore(ctx context.Context, id uuid.UUID, players []Player, opts Options) (*Game, error) {
	if opts.Store == nil {
		return nil, errors.New("restore needs an action store")
	}
	cfg, actions, err := opts.Store.LoadGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	g, err := newGame(id, cfg, players, opts)
	if err != nil {
		return nil, err
	}

	state, err := agent.ReplayLog(cfg, actions, g.log)
	if err != nil {
		return nil, fmt.Errorf("replay game %s: %w", id, err)
	}
	g.state = state
	g.actionIndex = len(actions)
	g.log.WithField("actions", len(actions)).Info("game restored")
	return g, nil
}

func newGame(id uuid.UUID, cfg engine.Config, players []Player, opts Options) (*Game, error) {
	state, err := engine.NewState(cfg)
	if err != nil {
		return nil, fmt.Errorf("new state: %w", err)
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("game", id)
	state.Log = log

	g := &Game{
		ID:           id,
		Players:      slices.Clone(players),
		PlayerToSeat: make(map[uuid.UUID]int, len(players)),
		state:        state,
		store:        opts.Store,
		cache:        opts.Cache,
		log:          log,
		BroadcastFn:  opts.BroadcastFn,
	}
	for i, p := range players {
		g.PlayerToSeat[p.ID] = i
	}
	return g, nil
}

// Apply validates a, appends it to the stored log and interprets it. An
// invalid action leaves both the log and the beliefs untouched.
func (g *Game) Apply(ctx context.Context, a engine.Action) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	// --- Validation ---
	if err := g.state.Validate(a); err != nil {
		g.log.WithError(err).WithField("action", a.String()).Warn("action rejected")
		return err
	}

	// --- Persistence ---
	if g.store != nil {
		if err := g.store.AppendAction(ctx, g.ID, g.actionIndex, a); err != nil {
			return fmt.Errorf("persist action %d: %w", g.actionIndex, err)
		}
	}
	index := g.actionIndex
	g.actionIndex++

	// --- Interpretation ---
	before := len(g.state.ActionList)
	contradictions := len(g.state.Contradictions)
	waiting := len(g.state.WaitingConnections)

	if err := agent.Handle(g.state, a); err != nil {
		// Validation passed, so the stored log is now one action ahead.
		g.log.WithError(err).WithField("action", a.String()).Error("interpretation failed after persisting")
		return fmt.Errorf("interpret action %d: %w", index, err)
	}
	rewound := len(g.state.ActionList) > before+1

	// --- Events ---
	g.fireEvent(GameEvent{Type: EventActionApplied, ActionIndex: index, Action: &a})
	if rewound {
		g.log.WithField("facts", len(g.state.ActionList)-before-1).Info("beliefs rebuilt by rewind")
		g.fireEvent(GameEvent{Type: EventRewound, ActionIndex: index, Action: &a})
	}
	for _, c := range g.state.Contradictions[min(contradictions, len(g.state.Contradictions)):] {
		g.fireEvent(GameEvent{Type: EventContradiction, ActionIndex: index, Payload: map[string]any{
			"card":     g.state.Format(c.Identity),
			"player":   c.PlayerIndex,
			"inferred": c.Inferred,
			"total":    c.Total,
		}})
	}
	if n := len(g.state.WaitingConnections); n < waiting {
		g.fireEvent(GameEvent{Type: EventChainResolved, ActionIndex: index, Payload: map[string]any{"remaining": n}})
	}

	if a.Type == engine.ActionGameOver {
		g.endGame(ctx)
	}
	g.publish(ctx, index, a, rewound)
	return nil
}

// endGame records the final score. Assumes lock is held by caller.
func (g *Game) endGame(ctx context.Context) {
	score := g.state.Score()
	g.log.WithFields(logrus.Fields{"score": score, "max": g.state.MaxScore()}).Info("game ended")
	if g.store != nil {
		if err := g.store.FinishGame(ctx, g.ID, score); err != nil {
			g.log.WithError(err).Error("failed storing final score")
		}
	}
	g.fireEvent(GameEvent{Type: EventGameEnd, Payload: map[string]any{"score": score}})
}

// publish writes the action record and our snapshot to the cache. Cache
// failures are logged; the stored log stays authoritative.
// Assumes lock is held by caller.
func (g *Game) publish(ctx context.Context, index int, a engine.Action, rewound bool) {
	if g.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	rec := cache.ActionRecord{
		GameID:      g.ID,
		ActionIndex: index,
		Action:      a,
		Rewound:     rewound,
		Timestamp:   time.Now().UnixMilli(),
	}
	if err := g.cache.PublishAction(ctx, rec); err != nil {
		g.log.WithError(err).WithField("actionIndex", index).Warn("failed publishing action")
	}
	snap := g.snapshot(g.state.OurPlayerIndex)
	if err := g.cache.SaveSnapshot(ctx, g.ID, snap); err != nil {
		g.log.WithError(err).Warn("failed caching snapshot")
	}
}

// fireEvent safely calls the broadcast callback if set.
func (g *Game) fireEvent(ev GameEvent) {
	if g.BroadcastFn == nil {
		return
	}
	ev.GameID = g.ID
	g.BroadcastFn(ev)
}

// SendSyncState broadcasts the snapshot for seat.
func (g *Game) SendSyncState(seat int) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	snap := g.snapshot(seat)
	g.fireEvent(GameEvent{Type: EventSyncState, ActionIndex: g.actionIndex, State: &snap})
}

// Candidates returns the clues worth giving from our seat right now.
func (g *Game) Candidates() agent.Candidates {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return agent.FindClues(g.state)
}

// State returns a copy of the current beliefs.
func (g *Game) State() *engine.State {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.state.Clone()
}

// ActionCount returns the number of actions in the stored log.
func (g *Game) ActionCount() int {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.actionIndex
}
