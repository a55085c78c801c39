package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathpilot/internal/config"
	"github.com/abhisek/mathpilot/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mathpilot",
	Short: "Automated math homework sessions",
	Long:  "Mathpilot runs paced homework sessions: it authenticates, fetches problems, classifies and solves them, and submits the answers.",
}

func Execute() error {
	// Optional .env for API keys and credentials during development.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides MATHPILOT_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATHPILOT_DB env var)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration from the --config flag (highest
// priority), then the MATHPILOT_CONFIG env var, then built-in defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("MATHPILOT_CONFIG")
	}
	return config.Load(path)
}

// resolveDBPath returns the database path using the --db flag (highest
// priority), then the config file, then MATHPILOT_DB, then the default
// XDG path.
func resolveDBPath(cmd *cobra.Command, fromConfig string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if fromConfig != "" {
		return fromConfig, store.EnsureDir(fromConfig)
	}
	return store.DefaultDBPath()
}
