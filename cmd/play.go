package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmentor/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Practice in a terminal chat console",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

// runPlay opens the store, builds dependencies, and launches the console.
func runPlay(cmd *cobra.Command) error {
	userID, _ := cmd.Flags().GetInt64("user")
	if userID <= 0 {
		return fmt.Errorf("--user must be positive")
	}

	// The console owns the terminal.
	log.SetOutput(io.Discard)

	rt, err := buildRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	return tui.Run(tui.New(tui.Options{
		Engine:     rt.engine,
		Outbox:     rt.outbox,
		Renderer:   rt.renderer,
		Translator: rt.translator,
		UserID:     userID,
		Log:        log,
	}))
}

func init() {
	playCmd.Flags().Int64("user", 1, "User ID to practice as")
	rootCmd.Flags().Int64("user", 1, "User ID to practice as")
}
