package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/papercat/internal/storage"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Replace an existing store")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new article store",
	Long: `Create a new article store seeded with the standard article types
and venues.

Examples:
  pcat init
  pcat init --db ~/papers/catalog.db --force`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := dbPath()
	if _, err := os.Stat(path); err == nil && !initForce {
		exitWithError(ExitError, "%s already exists (use --force to replace it)", path)
	}

	db, err := storage.CreateDB(path)
	if err != nil {
		exitWithError(ExitError, "creating store: %v", err)
	}
	defer db.Close()

	if humanOutput {
		fmt.Printf("Created article store %s with %d article types and %d venues\n",
			path, db.ArticleTypes.Len(), db.Venues.Len())
	} else {
		outputJSON(StatusResponse{Status: "created", Path: path})
	}
	return nil
}
