package agent

import (
	"strings"

	"github.com/jason-s-yu/hanabi/engine"
)

// formatSet renders a set in short notation, e.g. "r1,y1".
func formatSet(s *engine.State, set engine.IdentitySet) string {
	ids := set.Identities()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = s.Format(id)
	}
	return strings.Join(parts, ",")
}

// formatConns renders a chain as "type:card@player" entries.
func formatConns(s *engine.State, conns []engine.Connection) string {
	parts := make([]string, len(conns))
	for i, c := range conns {
		parts[i] = c.Type.String() + ":" + s.Format(c.Card) + "@" + s.PlayerNames[c.Reacting]
	}
	return strings.Join(parts, " ")
}
