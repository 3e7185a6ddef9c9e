// internal/database/database.go
package database

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jason-s-yu/hanabi/engine"
)

var (
	// ErrGameNotFound is returned for an id with no stored game.
	ErrGameNotFound = errors.New("game not found")
	// ErrSequence is returned when an action does not extend the log by
	// exactly one entry.
	ErrSequence = errors.New("action out of sequence")
)

// ActionLog persists the authoritative action log of each game. The log holds
// the actions as received; facts injected by rewinds are derived on replay
// and never stored.
type ActionLog interface {
	CreateGame(ctx context.Context, id uuid.UUID, cfg engine.Config) error
	AppendAction(ctx context.Context, id uuid.UUID, seq int, a engine.Action) error
	LoadGame(ctx context.Context, id uuid.UUID) (engine.Config, []engine.Action, error)
	FinishGame(ctx context.Context, id uuid.UUID, score int) error
}

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

type memGame struct {
	cfg      engine.Config
	actions  []engine.Action
	score    int
	finished bool
}

// MemoryStore keeps action logs in process. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*memGame
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[uuid.UUID]*memGame)}
}

func (m *MemoryStore) CreateGame(_ context.Context, id uuid.UUID, cfg engine.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; ok {
		return errors.New("game already exists")
	}
	cfg.PlayerNames = slices.Clone(cfg.PlayerNames)
	m.games[id] = &memGame{cfg: cfg}
	return nil
}

func (m *MemoryStore) AppendAction(_ context.Context, id uuid.UUID, seq int, a engine.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ErrGameNotFound
	}
	if seq != len(g.actions) {
		return ErrSequence
	}
	a.List = slices.Clone(a.List)
	g.actions = append(g.actions, a)
	return nil
}

func (m *MemoryStore) LoadGame(_ context.Context, id uuid.UUID) (engine.Config, []engine.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return engine.Config{}, nil, ErrGameNotFound
	}
	cfg := g.cfg
	cfg.PlayerNames = slices.Clone(cfg.PlayerNames)
	return cfg, slices.Clone(g.actions), nil
}

func (m *MemoryStore) FinishGame(_ context.Context, id uuid.UUID, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ErrGameNotFound
	}
	g.score, g.finished = score, true
	return nil
}

// FinalScore returns the recorded score of a finished game.
func (m *MemoryStore) FinalScore(id uuid.UUID) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok || !g.finished {
		return 0, false
	}
	return g.score, true
}
