package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction wraps every validation failure of an incoming action.
	ErrInvalidAction = errors.New("invalid action")
	// ErrRewindFailed is returned when a replay with a corrected fact hits a
	// new contradiction or cannot be performed.
	ErrRewindFailed = errors.New("rewind failed")
)

// RewindError describes a failed rewind. The authoritative state is left
// unchanged when it is returned.
type RewindError struct {
	ActionIndex int
	Reason      string
}

func (e *RewindError) Error() string {
	return fmt.Sprintf("rewind to action %d failed: %s", e.ActionIndex, e.Reason)
}

func (e *RewindError) Unwrap() error { return ErrRewindFailed }

// Contradiction records more inferred copies of an identity than exist. It is
// left unresolved; only a rewind can clear it.
type Contradiction struct {
	Identity
	PlayerIndex int `json:"playerIndex"`
	Inferred    int `json:"inferred"`
	Total       int `json:"total"`
	ActionIndex int `json:"actionIndex"`
}
