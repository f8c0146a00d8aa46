package database

import (
	"fmt"

	"github.com/avolkov/forum/internal/config"
	"github.com/avolkov/forum/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection. The handle is returned to the
// caller, which owns its lifecycle; nothing is stored at package level.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// Migrate runs auto-migration for all forum models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Topic{},
		&models.Comment{},
	)
}
