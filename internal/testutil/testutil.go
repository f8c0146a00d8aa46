package testutil

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/avolkov/forum/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDatabase holds a test database connection (in-memory SQLite)
type TestDatabase struct {
	DB *gorm.DB
}

// TestRedis holds a test Redis mock (miniredis)
type TestRedis struct {
	Server *miniredis.Miniredis
	URL    string
}

// SetupTestDatabase creates an in-memory SQLite database for integration
// tests. The production models migrate directly because UUIDs are assigned
// in BeforeCreate hooks rather than by a Postgres column default.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Topic{},
		&models.Comment{},
	)
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &TestDatabase{DB: db}
}

// Teardown closes the test database connection.
func (td *TestDatabase) Teardown(t *testing.T) {
	sqlDB, err := td.DB.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}

// SetupTestRedis starts an in-memory Redis mock (miniredis).
func SetupTestRedis(t *testing.T) *TestRedis {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	return &TestRedis{
		Server: server,
		URL:    fmt.Sprintf("redis://%s", server.Addr()),
	}
}

// Teardown stops the Redis mock.
func (tr *TestRedis) Teardown(t *testing.T) {
	tr.Server.Close()
}

// CleanContent deletes forum content (comments, topics, categories) for
// test isolation, keeping users in place.
func CleanContent(t *testing.T, db *gorm.DB) {
	for _, table := range []string{"comments", "topics", "categories"} {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("Warning: Failed to clean table %s: %v", table, err)
		}
	}
}

// CleanDatabase deletes all records from all tables.
func CleanDatabase(t *testing.T, db *gorm.DB) {
	for _, table := range []string{"comments", "topics", "categories", "users"} {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("Warning: Failed to clean table %s: %v", table, err)
		}
	}
}
