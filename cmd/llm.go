package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmentor/internal/coach"
	"github.com/abhisek/quizmentor/internal/llm"
	"github.com/abhisek/quizmentor/internal/session"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the study-tip model configuration",
}

var llmStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which provider and model study tips use",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := llm.ConfigFromEnv()
		if !c.Enabled() {
			fmt.Println("Study tips: disabled (no provider or API key)")
			return nil
		}
		fmt.Printf("Provider:  %s\n", c.Provider)
		fmt.Printf("Model:     %s\n", c.Model)
		if c.BaseURL != "" {
			fmt.Printf("Base URL:  %s\n", c.BaseURL)
		}
		fmt.Printf("Timeout:   %s\n", cfg.CoachTimeout)
		if err := c.Validate(); err != nil {
			fmt.Printf("Invalid:   %v\n", err)
		}
		return nil
	},
}

var llmCheckCmd = &cobra.Command{
	Use:   "check [topic...]",
	Short: "Ask the model for one study tip on sample weak topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		lang, _ := cmd.Flags().GetString("lang")

		p, err := llm.New(ctx, llm.ConfigFromEnv(), log)
		if err != nil {
			return err
		}
		c := coach.New(p, cfg.CoachTimeout, log)
		if !c.Enabled() {
			return fmt.Errorf("no LLM provider configured")
		}

		topics := args
		if len(topics) == 0 {
			topics = []string{"grammar", "reading comprehension"}
		}
		sample := &session.Result{
			Total:      5,
			Score:      2,
			Answered:   5,
			Wrong:      3,
			Logged:     5,
			WeakTopics: topics,
		}

		start := time.Now()
		tip := c.Tip(ctx, sample, lang)
		elapsed := time.Since(start).Round(time.Millisecond)

		fmt.Printf("Model:   %s\n", p.ModelID())
		fmt.Printf("Topics:  %s\n", strings.Join(topics, ", "))
		fmt.Printf("Latency: %s\n", elapsed)
		if tip == "" {
			return fmt.Errorf("model returned no usable tip (see logs with --log-level debug)")
		}
		fmt.Printf("Tip:     %s\n", tip)
		return nil
	},
}

func init() {
	llmCheckCmd.Flags().String("lang", "en", "Tip language (en, kn, ur)")

	llmCmd.AddCommand(llmStatusCmd)
	llmCmd.AddCommand(llmCheckCmd)
}
