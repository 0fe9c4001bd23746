package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkrantz/psyche/internal/config"
	"github.com/mkrantz/psyche/internal/engine"
	"github.com/mkrantz/psyche/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "psyche",
	Short: "Internal state tracking for AI agents",
	Long:  "Psyche tracks an AI agent's internal state across sessions: what it learned, what it believes, what it intended, and how coherent the whole picture is. Single Go binary, one SQLite file.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(moodCmd)
	rootCmd.AddCommand(coherenceCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sweepCmd)
}

// openEngine is a helper that opens the database and wraps it in an engine
// for CLI commands.
func openEngine() (*engine.Engine, error) {
	cfg := config.Load()
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return engine.New(db, cfg.Temporal), nil
}
