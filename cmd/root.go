package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/buddy/internal/config"
	"github.com/abhisek/buddy/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "buddy",
	Short: "Adaptive tutoring session engine",
	Long:  "Buddy runs adaptive tutoring sessions for Class 6-10 students: a warm-up diagnostic, a personalised study plan, then teaching with mastery tracking.",
	// .env values are only defaults; real environment variables win.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides BUDDY_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides BUDDY_CONFIG env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration, letting --db override the store path.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.DBPath = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path from the configuration, falling
// back to the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.Store.DBPath != "" {
		return cfg.Store.DBPath, store.EnsureDir(cfg.Store.DBPath)
	}
	return store.DefaultDBPath()
}
