package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolkov/forum/internal/handler"
	"github.com/avolkov/forum/internal/middleware"
	"github.com/avolkov/forum/internal/models"
	"github.com/avolkov/forum/internal/repository"
	"github.com/avolkov/forum/internal/service"
	"github.com/avolkov/forum/internal/testutil"
	"github.com/avolkov/forum/internal/utils"
	"github.com/avolkov/forum/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const handlerTestSecret = "test-secret-key-for-handlers"

// ForumHandlerIntegrationTestSuite drives the HTTP surface end to end:
// router, auth middleware and handlers against SQLite and miniredis.
type ForumHandlerIntegrationTestSuite struct {
	suite.Suite
	testDB      *testutil.TestDatabase
	testRedis   *testutil.TestRedis
	authService *service.AuthService
	router      *gin.Engine
}

// SetupSuite runs before all tests
func (s *ForumHandlerIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logger.Init(false, logger.FileConfig{})

	s.testDB = testutil.SetupTestDatabase(s.T())
	// The shared-cache SQLite database survives across suites in this package
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.testRedis = testutil.SetupTestRedis(s.T())

	redisClient := redis.NewClient(&redis.Options{Addr: s.testRedis.Server.Addr()})
	tokenStore := utils.NewTokenStore(redisClient)

	userRepo := repository.NewUserRepository(s.testDB.DB)
	topicRepo := repository.NewTopicRepository(s.testDB.DB)
	commentRepo := repository.NewCommentRepository(s.testDB.DB)
	categoryRepo := repository.NewCategoryRepository(s.testDB.DB)

	s.authService = service.NewAuthService(userRepo, tokenStore, handlerTestSecret, time.Hour)
	forumService := service.NewForumService(topicRepo, commentRepo, categoryRepo, userRepo, 5)
	categoryService := service.NewCategoryService(categoryRepo, topicRepo, userRepo)

	authHandler := handler.NewAuthHandler(s.authService)
	topicHandler := handler.NewTopicHandler(forumService)
	commentHandler := handler.NewCommentHandler(forumService)
	categoryHandler := handler.NewCategoryHandler(categoryService, forumService)
	adminHandler := handler.NewAdminHandler(s.authService)

	// Same route table as the server entrypoint, minus rate limiting
	s.router = gin.New()
	s.router.POST("/api/auth/register", authHandler.Register)
	s.router.POST("/api/auth/login", authHandler.Login)
	s.router.GET("/api/topics", topicHandler.List)
	s.router.GET("/api/topics/:id", topicHandler.Get)
	s.router.GET("/api/comments/:id/locate", commentHandler.Locate)
	s.router.GET("/api/categories", categoryHandler.List)

	auth := s.router.Group("/api")
	auth.Use(middleware.AuthMiddleware(handlerTestSecret, tokenStore))
	{
		auth.POST("/auth/logout", authHandler.Logout)
		auth.GET("/auth/me", authHandler.Me)
		auth.POST("/topics", topicHandler.Create)
		auth.PUT("/topics/:id", topicHandler.Edit)
		auth.DELETE("/topics/:id", topicHandler.Delete)
		auth.POST("/topics/:id/comments", topicHandler.CreateComment)
	}

	admin := s.router.Group("/api")
	admin.Use(middleware.AuthMiddleware(handlerTestSecret, tokenStore), middleware.AdminMiddleware())
	{
		admin.POST("/topics/:id/pin", topicHandler.Pin)
		admin.POST("/categories", categoryHandler.Create)
		admin.GET("/admin/users", adminHandler.ListUsers)
	}
}

// TearDownSuite runs after all tests
func (s *ForumHandlerIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
	s.testRedis.Teardown(s.T())
}

// SetupTest runs before each test (clean database)
func (s *ForumHandlerIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.testRedis.Server.FlushAll()
}

// do performs a JSON request, optionally with a bearer token.
func (s *ForumHandlerIntegrationTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&buf).Encode(body)
		assert.NoError(s.T(), err)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ForumHandlerIntegrationTestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(s.T(), err)
	return response
}

// registerUser creates an account over HTTP and returns its token.
func (s *ForumHandlerIntegrationTestSuite) registerUser(username string) string {
	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "SecurePass123!",
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code)
	return s.decode(w)["token"].(string)
}

// adminToken seeds an admin directly and logs them in over HTTP.
func (s *ForumHandlerIntegrationTestSuite) adminToken() string {
	testutil.CreateTestUser(s.T(), s.testDB.DB, "sysadmin", "sysadmin@example.com", models.RoleAdmin)
	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "sysadmin",
		"password": testutil.TestPassword,
	})
	assert.Equal(s.T(), http.StatusOK, w.Code)
	return s.decode(w)["token"].(string)
}

func (s *ForumHandlerIntegrationTestSuite) TestRegisterDuplicateEmail() {
	s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "SecurePass123!",
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *ForumHandlerIntegrationTestSuite) TestLoginWrongPassword() {
	s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "WrongPassword!",
	})
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *ForumHandlerIntegrationTestSuite) TestCreateTopicRequiresAuth() {
	w := s.do(http.MethodPost, "/api/topics", "", map[string]any{
		"title": "Anonymous", "body": "No token here",
	})
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *ForumHandlerIntegrationTestSuite) TestTopicLifecycle() {
	token := s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/topics", token, map[string]any{
		"title": "Hello", "body": "First post",
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code)
	topic := s.decode(w)["topic"].(map[string]any)
	topicID := uint64(topic["id"].(float64))

	// Public read without a token
	w = s.do(http.MethodGet, fmt.Sprintf("/api/topics/%d", topicID), "", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	// Identical payload reports a soft no-change notice
	w = s.do(http.MethodPut, fmt.Sprintf("/api/topics/%d", topicID), token, map[string]any{
		"title": "Hello", "body": "First post",
	})
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), false, s.decode(w)["changed"])

	// A different user cannot edit it
	otherToken := s.registerUser("bob")
	w = s.do(http.MethodPut, fmt.Sprintf("/api/topics/%d", topicID), otherToken, map[string]any{
		"title": "Hijacked", "body": "First post",
	})
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/topics/%d", topicID), token, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	w = s.do(http.MethodGet, fmt.Sprintf("/api/topics/%d", topicID), "", nil)
	assert.Equal(s.T(), http.StatusNotFound, w.Code)
}

func (s *ForumHandlerIntegrationTestSuite) TestCommentReturnsLandingPage() {
	token := s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/topics", token, map[string]any{
		"title": "Thread", "body": "Body",
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code)
	topic := s.decode(w)["topic"].(map[string]any)
	topicID := uint64(topic["id"].(float64))

	// Page size is 5, so the sixth comment opens page 2
	var lastResponse map[string]any
	for i := 0; i < 6; i++ {
		w = s.do(http.MethodPost, fmt.Sprintf("/api/topics/%d/comments", topicID), token, map[string]any{
			"body": fmt.Sprintf("reply %d", i),
		})
		assert.Equal(s.T(), http.StatusCreated, w.Code)
		lastResponse = s.decode(w)
	}
	assert.Equal(s.T(), float64(2), lastResponse["page"])

	// The locate endpoint agrees
	comment := lastResponse["comment"].(map[string]any)
	commentID := uint64(comment["id"].(float64))
	w = s.do(http.MethodGet, fmt.Sprintf("/api/comments/%d/locate", commentID), "", nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), float64(2), s.decode(w)["page"])
}

func (s *ForumHandlerIntegrationTestSuite) TestPinRequiresAdmin() {
	token := s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/topics", token, map[string]any{
		"title": "Plain", "body": "Body",
	})
	assert.Equal(s.T(), http.StatusCreated, w.Code)
	topic := s.decode(w)["topic"].(map[string]any)
	topicID := uint64(topic["id"].(float64))

	w = s.do(http.MethodPost, fmt.Sprintf("/api/topics/%d/pin", topicID), token, map[string]any{"value": true})
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/topics/%d/pin", topicID), s.adminToken(), map[string]any{"value": true})
	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *ForumHandlerIntegrationTestSuite) TestAdminEndpointsGated() {
	token := s.registerUser("alice")

	w := s.do(http.MethodGet, "/api/admin/users", token, nil)
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/categories", token, map[string]any{"title": "Nope"})
	assert.Equal(s.T(), http.StatusForbidden, w.Code)

	admin := s.adminToken()
	w = s.do(http.MethodGet, "/api/admin/users", admin, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/categories", admin, map[string]any{"title": "General"})
	assert.Equal(s.T(), http.StatusCreated, w.Code)
}

func (s *ForumHandlerIntegrationTestSuite) TestLogoutRevokesToken() {
	token := s.registerUser("alice")

	w := s.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(s.T(), http.StatusOK, w.Code)

	// The revoked token no longer authenticates
	w = s.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *ForumHandlerIntegrationTestSuite) TestInvalidTopicID() {
	w := s.do(http.MethodGet, "/api/topics/not-a-number", "", nil)
	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func TestForumHandlerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ForumHandlerIntegrationTestSuite))
}
