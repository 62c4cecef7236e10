package main

import (
	"errors"
	"os"

	"github.com/matsen/papercat/internal/storage"
)

// dbPath resolves the store path from --db, the environment and the global config.
func dbPath() string {
	return globalConfig.ResolveDBPath(dbFlag)
}

// mustOpenDatabase opens the store or exits.
func mustOpenDatabase() *storage.DB {
	path := dbPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		exitWithError(ExitConfigError, "no article store at %s (run 'pcat init' first)", path)
	}
	db, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "opening %s: %v", path, err)
	}
	return db
}
