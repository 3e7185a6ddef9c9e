package engine

// EndCondition values carried by a gameOver action.
const (
	EndInProgress = 0
	EndNormal     = 1
	EndStrikeout  = 2
	EndTimeout    = 3
	EndTerminated = 4
)

// IsTerminal reports whether no further actions can change the game: it was
// ended by the table, struck out, or reached the best possible score.
func (s *State) IsTerminal() bool {
	return s.GameOver || s.Strikes >= MaxStrikes || s.Score() == s.MaxScore()
}

// OnGameOver marks the game finished.
func (s *State) OnGameOver(a Action) {
	s.GameOver = true
	s.Log.WithField("endCondition", a.EndCondition).Info("game over")
}
