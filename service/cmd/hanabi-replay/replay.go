package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jason-s-yu/hanabi/engine"
	"github.com/jason-s-yu/hanabi/service/internal/cache"
	"github.com/jason-s-yu/hanabi/service/internal/database"
	"github.com/jason-s-yu/hanabi/service/internal/game"
)

// logFile is the on-disk form of an action log.
type logFile struct {
	Players []string        `json:"players"`
	Seat    int             `json:"seat"` // Our seat.
	Level   int             `json:"level,omitempty"`
	Suits   []string        `json:"suits,omitempty"`
	Actions []engine.Action `json:"actions"`
}

func (f logFile) config(defaultLevel int) (engine.Config, error) {
	ec := engine.Config{
		NumPlayers:     len(f.Players),
		OurPlayerIndex: f.Seat,
		Level:          engine.Level(defaultLevel),
		PlayerNames:    f.Players,
	}
	if f.Level != 0 {
		ec.Level = engine.Level(f.Level)
	}
	if len(f.Suits) > 0 {
		v, err := engine.NewVariant("custom", f.Suits...)
		if err != nil {
			return engine.Config{}, err
		}
		ec.Variant = v
	}
	return ec, nil
}

func newFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file [path]",
		Short: "Replay an action log stored as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read log: %w", err)
			}
			var f logFile
			if err := json.Unmarshal(raw, &f); err != nil {
				return fmt.Errorf("decode log %s: %w", args[0], err)
			}
			ec, err := f.config(cfg.ConventionLevel)
			if err != nil {
				return err
			}

			// The replay goes through the same restore path as a stored game.
			ctx := cmd.Context()
			store := database.NewMemoryStore()
			id := uuid.New()
			if err := store.CreateGame(ctx, id, ec); err != nil {
				return err
			}
			for i, a := range f.Actions {
				if err := store.AppendAction(ctx, id, i, a); err != nil {
					return err
				}
			}
			g, err := game.Restore(ctx, id, players(f.Players), game.Options{Store: store, Log: log})
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), g)
		},
	}
}

func newGameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "game [id]",
		Short: "Replay a game stored in the database and refresh its cached snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("game id: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}

			ctx := cmd.Context()
			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			g, err := game.Restore(ctx, id, nil, game.Options{Store: database.NewPGStore(pool), Log: log})
			if err != nil {
				return err
			}
			if cfg.RedisAddr != "" {
				refreshCache(ctx, g)
			}
			return report(cmd.OutOrStdout(), g)
		},
	}
}

// refreshCache stores our snapshot of g. Failures are logged.
func refreshCache(ctx context.Context, g *game.Game) {
	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Warn("cache unavailable")
		return
	}
	defer rdb.Close()

	snap := g.Snapshot(g.State().OurPlayerIndex)
	if err := cache.New(rdb, cfg.SnapshotTTL).SaveSnapshot(ctx, g.ID, snap); err != nil {
		log.WithError(err).Warn("failed caching snapshot")
		return
	}
	log.WithField("game", g.ID).Info("snapshot cached")
}

func players(names []string) []game.Player {
	out := make([]game.Player, len(names))
	for i, n := range names {
		out[i] = game.Player{ID: uuid.New(), Name: n}
	}
	return out
}

// clueView is a candidate clue in readable form.
type clueView struct {
	Clue      string `json:"clue"`
	Playables int    `json:"playables"`
	BadTouch  int    `json:"badTouch"`
	Finesses  int    `json:"finesses,omitempty"`
}

type candidateView struct {
	Target string     `json:"target"`
	Play   []clueView `json:"play,omitempty"`
	Save   *clueView  `json:"save,omitempty"`
}

// report writes the snapshot, or the clue candidates, of g to w.
func report(w io.Writer, g *game.Game) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	s := g.State()
	if !candidates {
		viewer := seat
		if viewer < 0 {
			viewer = s.OurPlayerIndex
		}
		if viewer >= s.NumPlayers {
			return fmt.Errorf("seat %d out of range for %d players", viewer, s.NumPlayers)
		}
		return enc.Encode(g.Snapshot(viewer))
	}

	c := g.Candidates()
	var out []candidateView
	for target := range s.NumPlayers {
		if s.Us(target) {
			continue
		}
		cv := candidateView{Target: s.PlayerNames[target]}
		for _, clue := range c.Play[target] {
			cv.Play = append(cv.Play, viewOf(clue.Action, clue.Result.Playables, clue.Result.BadTouch, clue.Result.Finesses))
		}
		if save := c.Save[target]; save != nil {
			v := viewOf(save.Action, save.Result.Playables, save.Result.BadTouch, save.Result.Finesses)
			cv.Save = &v
		}
		out = append(out, cv)
	}
	return enc.Encode(out)
}

func viewOf(a engine.Action, playables, badTouch, finesses int) clueView {
	return clueView{Clue: a.String(), Playables: playables, BadTouch: badTouch, Finesses: finesses}
}
