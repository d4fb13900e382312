package database

import (
	"fmt"
	"log"
)

// NewDatabase opens the metadata store for the configured driver and makes
// sure the images schema is in place before handing it out.
func NewDatabase(databaseType, connectionString string) (DatabaseService, error) {
	var database DatabaseService
	var err error

	switch databaseType {
	case "sqlite":
		database, err = NewSQLiteDatabase(connectionString)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", databaseType)
	}
	if err != nil {
		return nil, err
	}

	// Schema creation is idempotent; in-memory databases start empty on every
	// open, so this always runs.
	log.Print("ensuring images table exists")
	if _, err := database.CreateDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return database, nil
}
