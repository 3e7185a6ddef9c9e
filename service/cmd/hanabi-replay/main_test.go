package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/hanabi/engine"
	"github.com/jason-s-yu/hanabi/service/internal/game"
)

// writeLog writes a two player log where we hold five unknown cards and Bob
// holds g4 b4 y4 r4 r1 (slot 1 first).
func writeLog(t *testing.T, extra ...engine.Action) string {
	t.Helper()
	bob := []engine.Identity{{SuitIndex: 0, Rank: 1}, {SuitIndex: 0, Rank: 4}, {SuitIndex: 1, Rank: 4}, {SuitIndex: 3, Rank: 4}, {SuitIndex: 2, Rank: 4}}

	f := logFile{Players: []string{"Alice", "Bob"}, Level: 1}
	for order := range 5 {
		f.Actions = append(f.Actions, engine.Action{Type: engine.ActionDraw, PlayerIndex: 0, Order: order, SuitIndex: engine.Unknown, Rank: engine.Unknown})
	}
	for i, id := range bob {
		f.Actions = append(f.Actions, engine.Action{Type: engine.ActionDraw, PlayerIndex: 1, Order: 5 + i, SuitIndex: id.SuitIndex, Rank: id.Rank})
	}
	f.Actions = append(f.Actions, extra...)

	raw, err := json.Marshal(f)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "log.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	seat, candidates = -1, false

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--env", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestReplayFile(t *testing.T) {
	path := writeLog(t, engine.Action{
		Type: engine.ActionClue, Giver: 0, Target: 1,
		Clue: engine.BaseClue{Kind: engine.ClueRank, Value: 1}, List: []int{5},
	})

	out, err := run(t, "file", path)
	require.NoError(t, err)

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, 0, snap.Viewer)
	assert.Equal(t, 1, snap.Turn)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "Bob", snap.Players[1].Name)
	assert.Equal(t, "g4", snap.Players[1].Hand[0].Card)
	assert.True(t, snap.Players[1].Hand[4].Clued)
}

func TestReplayFileCandidates(t *testing.T) {
	path := writeLog(t)

	out, err := run(t, "file", path, "--candidates")
	require.NoError(t, err)

	var views []candidateView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Bob", views[0].Target)
	assert.NotEmpty(t, views[0].Play, "Bob's r1 should have a play clue")
}

func TestReplayFileBadSeat(t *testing.T) {
	_, err := run(t, "file", writeLog(t), "--seat", "3")
	assert.ErrorContains(t, err, "seat 3 out of range")
}

func TestReplayFileInvalidAction(t *testing.T) {
	path := writeLog(t, engine.Action{Type: engine.ActionPlay, PlayerIndex: 1, Order: 42, SuitIndex: 0, Rank: 1})

	_, err := run(t, "file", path)
	assert.ErrorIs(t, err, engine.ErrInvalidAction)
}

func TestReplayGameNeedsDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := run(t, "game", "2f1c52a6-3d0a-4a7e-9d0c-2b8f9a3d8e11")
	assert.ErrorContains(t, err, "DATABASE_URL")
}
