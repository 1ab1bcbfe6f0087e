package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mailendar",
	Short: "Smart mailbox that turns Gmail into schedules and tasks",
	Long: `mailendar classifies incoming Gmail messages into SCHEDULE, TASK, or SPAM,
extracts event times from Korean and English bodies, and pushes confirmed
items to Google Calendar and Google Tasks.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = false
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
