package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmentor/internal/question"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect question banks",
}

var bankValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a question bank file (default: the built-in bank)",
	Args:  cobra.MaximumNArgs(1),
	// Validation needs no config or store.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			b   *question.Bank
			err error
		)
		if len(args) == 1 {
			b, err = question.Load(args[0])
		} else {
			b, err = question.LoadDefault()
		}
		if err != nil {
			return err
		}

		fmt.Printf("✓ bank %s: %d questions\n", b.Version(), b.Len())
		counts := make(map[string]int)
		for _, q := range b.All() {
			counts[q.Topic]++
		}
		for _, t := range b.Topics() {
			fmt.Printf("  %-20s %d\n", t, counts[t])
		}
		if subs := b.Subjects(); len(subs) > 0 {
			names := make([]string, len(subs))
			for i, s := range subs {
				names[i] = s.Name
			}
			fmt.Printf("  subjects: %s\n", strings.Join(names, ", "))
		}
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankValidateCmd)
}
