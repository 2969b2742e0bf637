package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizmentor/internal/config"
	"github.com/abhisek/quizmentor/internal/logging"
)

var (
	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quizmentor",
	Short: "Exam practice chat-bot",
	Long:  "QuizMentor: daily exam practice tests over chat, with streaks, a wrong-answer bank and a free daily quota.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		c, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			c.LogLevel = lvl
		}
		if db, _ := cmd.Flags().GetString("db"); db != "" {
			c.Store.DSN = db
		}
		l, err := logging.New(c.LogLevel, c.LogFormat, nil)
		if err != nil {
			return err
		}
		cfg, log = c, l
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Load settings from this .env file")
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite path (overrides QUIZMENTOR_DATABASE_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
