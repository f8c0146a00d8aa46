package utils

import (
	"testing"
	"time"

	"github.com/avolkov/forum/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test constants
const (
	testSecret          = "test-secret-key-for-jwt-testing"
	testWrongSecret     = "wrong-secret-key-for-jwt-testing"
	testTokenDuration   = 1 * time.Hour
	testExpiredDuration = -1 * time.Hour
)

// Helper function to create test user
func createTestUser(role models.Role) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "testuser",
		Email:    "test@example.com",
		Role:     role,
	}
}

func TestGenerateToken_Success(t *testing.T) {
	// Arrange
	user := createTestUser(models.RoleUser)

	// Act
	token, err := GenerateToken(user, testSecret, testTokenDuration)

	// Assert
	require.NoError(t, err, "GenerateToken should not return error for valid input")
	assert.NotEmpty(t, token, "Token should not be empty")
	assert.Contains(t, token, ".", "JWT token should contain dots")
}

func TestValidateToken_RoundTrip(t *testing.T) {
	roles := []models.Role{models.RoleUser, models.RoleAdmin}

	for _, role := range roles {
		t.Run(string(role), func(t *testing.T) {
			// Arrange
			user := createTestUser(role)
			token, err := GenerateToken(user, testSecret, testTokenDuration)
			require.NoError(t, err)

			// Act
			claims, err := ValidateToken(token, testSecret)

			// Assert
			require.NoError(t, err, "ValidateToken should accept a freshly signed token")
			assert.Equal(t, user.ID, claims.UserID, "Token should carry the user id")
			assert.Equal(t, user.Username, claims.Username)
			assert.Equal(t, role, claims.Role, "Token should contain correct role")
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	// Arrange
	user := createTestUser(models.RoleUser)
	token, err := GenerateToken(user, testSecret, testTokenDuration)
	require.NoError(t, err)

	// Act
	claims, err := ValidateToken(token, testWrongSecret)

	// Assert
	assert.Error(t, err, "Token signed with another secret should be rejected")
	assert.Nil(t, claims)
}

func TestValidateToken_Expired(t *testing.T) {
	// Arrange
	user := createTestUser(models.RoleUser)
	token, err := GenerateToken(user, testSecret, testExpiredDuration)
	require.NoError(t, err)

	// Act
	claims, err := ValidateToken(token, testSecret)

	// Assert
	assert.ErrorIs(t, err, ErrExpiredToken, "Expired token should map to ErrExpiredToken")
	assert.Nil(t, claims)
}

func TestValidateToken_Garbage(t *testing.T) {
	// Act
	claims, err := ValidateToken("not.a.token", testSecret)

	// Assert
	assert.Error(t, err, "Malformed token should be rejected")
	assert.Nil(t, claims)
}
