// Command hanabi-replay rebuilds the beliefs of a game from its action log and
// prints them as JSON.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jason-s-yu/hanabi/service/internal/config"
	"github.com/jason-s-yu/hanabi/service/internal/logging"
)

var (
	// Global flags
	envFile    string
	seat       int
	candidates bool

	cfg config.Config
	log *logrus.Logger
)

// newRootCmd builds the command tree. Tests call it for a fresh tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hanabi-replay",
		Short: "Replay a Hanabi action log through the convention tracker",
		Long: `Replays an action log from a file or from the database and prints the
resulting belief snapshot as seen from one seat.

With --candidates the clues worth giving from our seat are printed instead.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(envFile); err != nil {
				return err
			}
			if log, err = logging.NewWithOutput(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env", ".env", "env file to load before reading the environment")
	root.PersistentFlags().IntVar(&seat, "seat", -1, "seat to view the game from (default: our seat)")
	root.PersistentFlags().BoolVar(&candidates, "candidates", false, "print clue candidates instead of the snapshot")

	root.AddCommand(newFileCmd(), newGameCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
