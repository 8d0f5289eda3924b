package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectLocal opens the embedded sqlite database that holds machine-local
// state (the admin credential). A vending terminal carries no database
// server, so this replaces a networked DB entirely.
func ConnectLocal(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening local database %s: %w", path, err)
	}
	return db, nil
}
