package main

import (
	"log"
	"os"

	"github.com/avolkov/forum/internal/config"
	"github.com/avolkov/forum/internal/database"
	"github.com/avolkov/forum/internal/models"
	"github.com/avolkov/forum/internal/utils"
)

// Seeds the initial admin account from environment variables. Safe to run
// repeatedly: an existing admin is left untouched.
func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	var admin models.User
	if err := db.Where("email = ?", adminEmail).First(&admin).Error; err == nil {
		log.Println("Admin user already exists:", admin.Username)
		return
	}

	passwordHash, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin = models.User{
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin:", err)
	}

	log.Println("Admin user created:", admin.Username)
}
