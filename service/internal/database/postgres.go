// internal/database/postgres.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/hanabi/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          UUID PRIMARY KEY,
	config      JSONB NOT NULL,
	final_score INTEGER,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS game_actions (
	game_id UUID NOT NULL REFERENCES games (id) ON DELETE CASCADE,
	seq     INTEGER NOT NULL,
	action  JSONB NOT NULL,
	PRIMARY KEY (game_id, seq)
);
`

// uniqueViolation is the Postgres error code for a duplicate key.
const uniqueViolation = "23505"

// Connect opens a connection pool and checks it is reachable.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PGStore keeps action logs in Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PGStore) CreateGame(ctx context.Context, id uuid.UUID, cfg engine.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `INSERT INTO games (id, config) VALUES ($1, $2)`, id, raw); err != nil {
		return fmt.Errorf("create game %s: %w", id, err)
	}
	return nil
}

// AppendAction stores action seq. The insert only succeeds when seq is the
// next free slot, so two writers cannot interleave a log.
func (s *PGStore) AppendAction(ctx context.Context, id uuid.UUID, seq int, a engine.Action) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO game_actions (game_id, seq, action)
		SELECT $1, $2, $3
		WHERE (SELECT count(*) FROM game_actions WHERE game_id = $1) = $2
		  AND EXISTS (SELECT 1 FROM games WHERE id = $1)`,
		id, seq, raw)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSequence
		}
		return fmt.Errorf("append action %d to %s: %w", seq, id, err)
	}
	if tag.RowsAffected() == 0 {
		return s.missingOrSequence(ctx, id)
	}
	return nil
}

func (s *PGStore) missingOrSequence(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("look up game %s: %w", id, err)
	}
	if !exists {
		return ErrGameNotFound
	}
	return ErrSequence
}

func (s *PGStore) LoadGame(ctx context.Context, id uuid.UUID) (engine.Config, []engine.Action, error) {
	var cfg engine.Config
	var rawCfg []byte
	err := s.pool.QueryRow(ctx, `SELECT config FROM games WHERE id = $1`, id).Scan(&rawCfg)
	if errors.Is(err, pgx.ErrNoRows) {
		return cfg, nil, ErrGameNotFound
	}
	if err != nil {
		return cfg, nil, fmt.Errorf("load game %s: %w", id, err)
	}
	if err := json.Unmarshal(rawCfg, &cfg); err != nil {
		return cfg, nil, fmt.Errorf("decode config of %s: %w", id, err)
	}

	rows, err := s.pool.Query(ctx, `SELECT action FROM game_actions WHERE game_id = $1 ORDER BY seq`, id)
	if err != nil {
		return cfg, nil, fmt.Errorf("load actions of %s: %w", id, err)
	}
	raws, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return cfg, nil, fmt.Errorf("read actions of %s: %w", id, err)
	}

	actions := make([]engine.Action, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal(raw, &actions[i]); err != nil {
			return cfg, nil, fmt.Errorf("decode action %d of %s: %w", i, id, err)
		}
	}
	return cfg, actions, nil
}

func (s *PGStore) FinishGame(ctx context.Context, id uuid.UUID, score int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE games SET final_score = $2, finished_at = now() WHERE id = $1`, id, score)
	if err != nil {
		return fmt.Errorf("finish game %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGameNotFound
	}
	return nil
}
