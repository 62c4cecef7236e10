// Package main provides the pcat CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/papercat/internal/config"
	"github.com/matsen/papercat/internal/logger"
)

// Version is set at build time via ldflags
var Version = "dev"

// Persistent flags
var (
	humanOutput bool
	dbFlag      string
	logLevel    string
	logFile     string
	logFormat   string
)

// globalConfig is loaded once before any command runs.
var globalConfig *config.GlobalConfig

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pcat",
	Short: "Catalog of academic articles",
	Long: `pcat maintains a local catalog of conference and journal articles.

Articles are imported from spreadsheets listing a venue's papers, with
abstracts from the spreadsheet, a published abstracts file, or the papers'
PDFs. All commands output JSON by default for easy scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env file if present (ignore error if not found)
		_ = godotenv.Load()

		cfg, err := config.LoadGlobalConfig()
		if err != nil {
			exitWithError(ExitConfigError, "loading %s: %v", config.GlobalConfigPath(), err)
		}
		globalConfig = cfg
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Path to the article store (default from config or "+config.DefaultDBFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: TRACE, DEBUG, INFO, WARN, ERROR or OFF")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log encoding: console or json")
	rootCmd.Version = Version
}

// newLogger builds the logger from flags, falling back to the global config.
func newLogger() (*logger.Logger, error) {
	opts := logger.Options{
		Level:  firstNonEmpty(logLevel, globalConfig.LogLevel),
		File:   config.ExpandPath(firstNonEmpty(logFile, globalConfig.LogFile)),
		Format: firstNonEmpty(logFormat, globalConfig.LogFormat),
	}
	return logger.New(opts)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
