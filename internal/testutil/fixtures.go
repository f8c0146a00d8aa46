package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/avolkov/forum/internal/models"
	"github.com/avolkov/forum/internal/utils"
	"gorm.io/gorm"
)

// TestPassword is the plaintext behind every fixture user's hash.
const TestPassword = "Password123!"

// CreateTestUser inserts a user with the given role and a valid Argon2id
// hash of TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB, username, email string, role models.Role) *models.User {
	hash, err := utils.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash fixture password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

// CreateTestCategory inserts a category.
func CreateTestCategory(t *testing.T, db *gorm.DB, title string, locked bool) *models.Category {
	category := &models.Category{
		Title:  title,
		Locked: locked,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create test category %s: %v", title, err)
	}
	return category
}

// CreateTestTopic inserts a topic with an explicit creation time so ordering
// tests control the timeline. categoryID may be nil for the uncategorized
// bucket.
func CreateTestTopic(t *testing.T, db *gorm.DB, author *models.User, categoryID *uint64, title string, pinned bool, createdAt time.Time) *models.Topic {
	topic := &models.Topic{
		AuthorID:   author.ID,
		CategoryID: categoryID,
		Title:      title,
		Body:       fmt.Sprintf("Body of %s", title),
		Pinned:     pinned,
		CreatedAt:  createdAt,
	}
	if err := db.Create(topic).Error; err != nil {
		t.Fatalf("Failed to create test topic %s: %v", title, err)
	}
	return topic
}

// CreateTestComment inserts a comment with an explicit creation time.
func CreateTestComment(t *testing.T, db *gorm.DB, topicID uint64, author *models.User, body string, createdAt time.Time) *models.Comment {
	comment := &models.Comment{
		TopicID:   topicID,
		AuthorID:  author.ID,
		Body:      body,
		CreatedAt: createdAt,
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}
	return comment
}
