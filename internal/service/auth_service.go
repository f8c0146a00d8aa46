package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/avolkov/forum/internal/authz"
	"github.com/avolkov/forum/internal/models"
	"github.com/avolkov/forum/internal/repository"
	"github.com/avolkov/forum/internal/utils"
	"github.com/avolkov/forum/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthService handles registration, login/logout and user administration.
type AuthService struct {
	userRepo      *repository.UserRepository
	tokenStore    *utils.TokenStore
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, tokenStore *utils.TokenStore, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		tokenStore:    tokenStore,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates a user with the default role and returns it with a
// signed token. Username and email are globally unique.
func (s *AuthService) Register(username, email, password string) (*models.User, string, error) {
	if err := validateRegisterInput(username, email, password); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailAlreadyExists
	}

	existing, err = s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrUsernameAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, "", err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		logger.Log.Error("Failed to create user",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, "", err
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		return nil, "", err
	}

	logger.Log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", username),
	)
	return user, token, nil
}

// Login verifies username and password and returns the user with a signed
// token. Unknown user and wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("username", username),
		)
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		return nil, "", err
	}

	logger.Log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return user, token, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := utils.ValidateToken(token, s.jwtSecret)
	if err != nil {
		// Expired or malformed tokens are already unusable.
		return nil
	}
	return s.tokenStore.Revoke(ctx, token, claims.ExpiresAt.Time)
}

// CurrentUser re-reads the acting user by id. Returns ErrNotFound for a
// deleted or unknown account, so a stale token stops working immediately.
func (s *AuthService) CurrentUser(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ListUsers returns every account, including soft-deleted ones. Admin only.
func (s *AuthService) ListUsers(actorID uuid.UUID) ([]*models.User, error) {
	actor, err := s.CurrentUser(actorID)
	if err != nil {
		return nil, authz.ErrForbidden
	}
	if !actor.IsAdmin() {
		return nil, authz.ErrForbidden
	}
	return s.userRepo.ListUsers()
}

// SetUserRole promotes or demotes a user. Admin only; acting on the own
// account is rejected, so an admin cannot demote themselves.
func (s *AuthService) SetUserRole(actorID, targetID uuid.UUID, role models.Role) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: invalid role", ErrValidation)
	}

	actor, err := s.CurrentUser(actorID)
	if err != nil {
		return nil, authz.ErrForbidden
	}

	target, err := s.userRepo.GetUserByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrNotFound
	}

	if err := authz.Authorize(actor, authz.ActionChangeUserRole, authz.Target{User: target}); err != nil {
		logger.Log.Warn("Role change denied",
			zap.String("actor_id", actorID.String()),
			zap.String("target_id", targetID.String()),
		)
		return nil, err
	}

	if target.Role == role {
		return nil, ErrNothingChanged
	}

	if err := s.userRepo.SetRole(targetID, role); err != nil {
		return nil, err
	}

	logger.Log.Info("User role changed",
		zap.String("target_id", targetID.String()),
		zap.String("role", string(role)),
		zap.String("actor_id", actorID.String()),
	)
	target.Role = role
	return target, nil
}

// DeleteUser soft-deletes an account. Admin only, never against the own
// account. Authored topics and comments survive with their author id.
func (s *AuthService) DeleteUser(actorID, targetID uuid.UUID) error {
	actor, err := s.CurrentUser(actorID)
	if err != nil {
		return authz.ErrForbidden
	}

	target, err := s.userRepo.GetUserByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound
	}

	if err := authz.Authorize(actor, authz.ActionDeleteUser, authz.Target{User: target}); err != nil {
		logger.Log.Warn("User delete denied",
			zap.String("actor_id", actorID.String()),
			zap.String("target_id", targetID.String()),
		)
		return err
	}

	if err := s.userRepo.SoftDeleteUser(targetID); err != nil {
		return err
	}

	logger.Log.Info("User deleted",
		zap.String("target_id", targetID.String()),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

func validateRegisterInput(username, email, password string) error {
	if len(username) < 3 {
		return fmt.Errorf("%w: username must be at least 3 characters", ErrValidation)
	}
	if len(username) > 50 {
		return fmt.Errorf("%w: username must be at most 50 characters", ErrValidation)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if len(email) > 100 {
		return fmt.Errorf("%w: email too long", ErrValidation)
	}

	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if len(password) > 128 {
		return fmt.Errorf("%w: password too long", ErrValidation)
	}

	return nil
}
