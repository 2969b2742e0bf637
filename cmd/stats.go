package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a user's lifetime statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		if userID <= 0 {
			return fmt.Errorf("--user is required")
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		rt, err := buildRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		p, err := rt.engine.Progress(ctx, userID)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		fmt.Println(rt.renderer.Progress(ctx, p.Profile).Text)
		fmt.Println()
		if p.FreeRemaining < 0 {
			fmt.Println("Plan: premium (unlimited tests)")
		} else {
			fmt.Printf("Free tests left today: %d (resets %s)\n", p.FreeRemaining, p.NextFreeReset)
		}
		if p.Latest != nil {
			fmt.Printf("Latest: %d/%d on %s\n", p.Latest.Score, p.Latest.Total, p.Latest.FinishedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int64("user", 0, "User ID")
	statsCmd.Flags().Bool("json", false, "Print the raw progress JSON")
}
