package service_test

import (
	"testing"
	"time"

	"github.com/avolkov/forum/internal/authz"
	"github.com/avolkov/forum/internal/models"
	"github.com/avolkov/forum/internal/repository"
	"github.com/avolkov/forum/internal/service"
	"github.com/avolkov/forum/internal/testutil"
	"github.com/avolkov/forum/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// CategoryServiceIntegrationTestSuite defines test suite
type CategoryServiceIntegrationTestSuite struct {
	suite.Suite
	testDB          *testutil.TestDatabase
	categoryService *service.CategoryService
	forumService    *service.ForumService
	user            *models.User
	admin           *models.User
}

// SetupSuite runs before all tests
func (s *CategoryServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false, logger.FileConfig{})

	s.testDB = testutil.SetupTestDatabase(s.T())
	// The shared-cache SQLite database survives across suites in this package
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	categoryRepo := repository.NewCategoryRepository(s.testDB.DB)
	topicRepo := repository.NewTopicRepository(s.testDB.DB)
	commentRepo := repository.NewCommentRepository(s.testDB.DB)
	userRepo := repository.NewUserRepository(s.testDB.DB)
	s.categoryService = service.NewCategoryService(categoryRepo, topicRepo, userRepo)
	s.forumService = service.NewForumService(topicRepo, commentRepo, categoryRepo, userRepo, testPageSize)

	s.user = testutil.CreateTestUser(s.T(), s.testDB.DB, "member", "member@example.com", models.RoleUser)
	s.admin = testutil.CreateTestUser(s.T(), s.testDB.DB, "moderator", "moderator@example.com", models.RoleAdmin)
}

// TearDownSuite runs after all tests
func (s *CategoryServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

// SetupTest runs before each test
func (s *CategoryServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanContent(s.T(), s.testDB.DB)
}

func (s *CategoryServiceIntegrationTestSuite) TestCreateCategoryAdminOnly() {
	_, err := s.categoryService.CreateCategory(s.user.ID, "Off Topic")
	assert.ErrorIs(s.T(), err, authz.ErrForbidden)

	category, err := s.categoryService.CreateCategory(s.admin.ID, "Off Topic")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "Off Topic", category.Title)
	assert.False(s.T(), category.Locked)

	_, err = s.categoryService.CreateCategory(s.admin.ID, "Off Topic")
	assert.ErrorIs(s.T(), err, service.ErrCategoryTitleTaken)

	_, err = s.categoryService.CreateCategory(s.admin.ID, "  ")
	assert.ErrorIs(s.T(), err, service.ErrValidation)
}

func (s *CategoryServiceIntegrationTestSuite) TestEditCategory() {
	category, err := s.categoryService.CreateCategory(s.admin.ID, "Misc")
	assert.NoError(s.T(), err)
	other, err := s.categoryService.CreateCategory(s.admin.ID, "News")
	assert.NoError(s.T(), err)

	_, err = s.categoryService.EditCategory(s.user.ID, category.ID, "Renamed")
	assert.ErrorIs(s.T(), err, authz.ErrForbidden)

	_, err = s.categoryService.EditCategory(s.admin.ID, category.ID, "Misc")
	assert.ErrorIs(s.T(), err, service.ErrNothingChanged)

	_, err = s.categoryService.EditCategory(s.admin.ID, category.ID, other.Title)
	assert.ErrorIs(s.T(), err, service.ErrCategoryTitleTaken)

	updated, err := s.categoryService.EditCategory(s.admin.ID, category.ID, "Renamed")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "Renamed", updated.Title)

	_, err = s.categoryService.EditCategory(s.admin.ID, 99999, "Ghost")
	assert.ErrorIs(s.T(), err, service.ErrNotFound)
}

func (s *CategoryServiceIntegrationTestSuite) TestDeleteCategoryMovesTopicsToUncategorized() {
	category, err := s.categoryService.CreateCategory(s.admin.ID, "Doomed")
	assert.NoError(s.T(), err)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	t1 := testutil.CreateTestTopic(s.T(), s.testDB.DB, s.user, &category.ID, "survivor-1", false, base)
	t2 := testutil.CreateTestTopic(s.T(), s.testDB.DB, s.user, &category.ID, "survivor-2", false, base.Add(time.Second))

	err = s.categoryService.DeleteCategory(s.user.ID, category.ID)
	assert.ErrorIs(s.T(), err, authz.ErrForbidden)

	err = s.categoryService.DeleteCategory(s.admin.ID, category.ID)
	assert.NoError(s.T(), err)

	// Topics survive in the uncategorized bucket
	for _, id := range []uint64{t1.ID, t2.ID} {
		var topic models.Topic
		assert.NoError(s.T(), s.testDB.DB.First(&topic, id).Error)
		assert.Nil(s.T(), topic.CategoryID)
	}

	listing, err := s.categoryService.ListCategories()
	assert.NoError(s.T(), err)
	assert.Empty(s.T(), listing.Categories)
	assert.Equal(s.T(), int64(2), listing.UncategorizedCount)
}

func (s *CategoryServiceIntegrationTestSuite) TestListCategoriesOrderedWithCounts() {
	zebra, err := s.categoryService.CreateCategory(s.admin.ID, "Zebra")
	assert.NoError(s.T(), err)
	_, err = s.categoryService.CreateCategory(s.admin.ID, "Alpha")
	assert.NoError(s.T(), err)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	testutil.CreateTestTopic(s.T(), s.testDB.DB, s.user, &zebra.ID, "z-1", false, base)
	testutil.CreateTestTopic(s.T(), s.testDB.DB, s.user, &zebra.ID, "z-2", false, base.Add(time.Second))
	testutil.CreateTestTopic(s.T(), s.testDB.DB, s.user, nil, "loose", false, base.Add(2*time.Second))

	listing, err := s.categoryService.ListCategories()
	assert.NoError(s.T(), err)
	assert.Len(s.T(), listing.Categories, 2)
	assert.Equal(s.T(), "Alpha", listing.Categories[0].Title)
	assert.Equal(s.T(), int64(0), listing.Categories[0].TopicCount)
	assert.Equal(s.T(), "Zebra", listing.Categories[1].Title)
	assert.Equal(s.T(), int64(2), listing.Categories[1].TopicCount)
	assert.Equal(s.T(), int64(1), listing.UncategorizedCount)
}

func (s *CategoryServiceIntegrationTestSuite) TestSetCategoryLocked() {
	category, err := s.categoryService.CreateCategory(s.admin.ID, "Announcements")
	assert.NoError(s.T(), err)

	_, err = s.categoryService.SetCategoryLocked(s.user.ID, category.ID, true)
	assert.ErrorIs(s.T(), err, authz.ErrForbidden)

	locked, err := s.categoryService.SetCategoryLocked(s.admin.ID, category.ID, true)
	assert.NoError(s.T(), err)
	assert.True(s.T(), locked.Locked)

	// Locked category rejects topics from regular members only
	_, err = s.forumService.CreateTopic(s.user.ID, "Denied", "Body", &category.ID)
	assert.ErrorIs(s.T(), err, authz.ErrForbidden)
	_, err = s.forumService.CreateTopic(s.admin.ID, "Allowed", "Body", &category.ID)
	assert.NoError(s.T(), err)
}

func TestCategoryServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceIntegrationTestSuite))
}
