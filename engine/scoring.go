package engine

// Score returns the number of cards played.
func (s *State) Score() int {
	n := 0
	for _, r := range s.PlayStacks {
		n += r
	}
	return n
}

// MaxScore returns the best score still reachable given the discards.
func (s *State) MaxScore() int {
	n := 0
	for _, r := range s.MaxRanks {
		n += r
	}
	return n
}

// Pace returns how many more cards may be discarded before the maximum
// score becomes unreachable. Negative pace means it already is.
func (s *State) Pace() int {
	return s.Score() + s.CardsLeft + s.NumPlayers - s.MaxScore()
}
