package service

import (
	"fmt"
	"strings"

	"github.com/avolkov/forum/internal/authz"
	"github.com/avolkov/forum/internal/models"
	"github.com/avolkov/forum/internal/repository"
	"github.com/avolkov/forum/internal/utils"
	"github.com/avolkov/forum/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService implements category management. All mutations are
// admin-only through authz.
type CategoryService struct {
	categoryRepo *repository.CategoryRepository
	topicRepo    *repository.TopicRepository
	userRepo     *repository.UserRepository
}

func NewCategoryService(
	categoryRepo *repository.CategoryRepository,
	topicRepo *repository.TopicRepository,
	userRepo *repository.UserRepository,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		topicRepo:    topicRepo,
		userRepo:     userRepo,
	}
}

// CategoryInfo is a listing row: the category plus its topic count.
type CategoryInfo struct {
	models.Category
	TopicCount int64 `json:"topic_count"`
}

// CategoryListing is the admin category screen: all categories in title
// order plus the size of the uncategorized bucket.
type CategoryListing struct {
	Categories         []CategoryInfo `json:"categories"`
	UncategorizedCount int64          `json:"uncategorized_count"`
}

func (s *CategoryService) actor(actorID uuid.UUID) (*models.User, error) {
	actor, err := s.userRepo.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, authz.ErrForbidden
	}
	return actor, nil
}

// ListCategories returns all categories in title order with topic counts.
func (s *CategoryService) ListCategories() (*CategoryListing, error) {
	categories, err := s.categoryRepo.ListCategories()
	if err != nil {
		return nil, err
	}

	listing := &CategoryListing{Categories: make([]CategoryInfo, 0, len(categories))}
	for _, category := range categories {
		count, err := s.categoryRepo.CountTopics(category.ID)
		if err != nil {
			return nil, err
		}
		listing.Categories = append(listing.Categories, CategoryInfo{Category: category, TopicCount: count})
	}

	listing.UncategorizedCount, err = s.topicRepo.CountUncategorized()
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// CreateCategory adds a new category. Admin only; titles are unique.
func (s *CategoryService) CreateCategory(actorID uuid.UUID, title string) (*models.Category, error) {
	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	if err := authz.Authorize(actor, authz.ActionCreateCategory, authz.Target{}); err != nil {
		logger.Log.Warn("Category creation denied",
			zap.String("actor_id", actorID.String()),
		)
		return nil, err
	}

	title = utils.SanitizeTitle(strings.TrimSpace(title))
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}

	existing, err := s.categoryRepo.GetCategoryByTitle(title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCategoryTitleTaken
	}

	category := &models.Category{Title: title}
	if err := s.categoryRepo.CreateCategory(category); err != nil {
		return nil, err
	}

	logger.Log.Info("Category created",
		zap.Uint64("category_id", category.ID),
		zap.String("title", title),
	)
	return category, nil
}

// EditCategory renames a category. An unchanged title returns
// ErrNothingChanged without a write.
func (s *CategoryService) EditCategory(actorID uuid.UUID, categoryID uint64, title string) (*models.Category, error) {
	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}

	if err := authz.Authorize(actor, authz.ActionEditCategory, authz.Target{Category: category}); err != nil {
		logger.Log.Warn("Category edit denied",
			zap.Uint64("category_id", categoryID),
			zap.String("actor_id", actorID.String()),
		)
		return nil, err
	}

	title = utils.SanitizeTitle(strings.TrimSpace(title))
	if title == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}

	if category.Title == title {
		return nil, ErrNothingChanged
	}

	existing, err := s.categoryRepo.GetCategoryByTitle(title)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != categoryID {
		return nil, ErrCategoryTitleTaken
	}

	category.Title = title
	if err := s.categoryRepo.UpdateCategory(category); err != nil {
		return nil, err
	}

	logger.Log.Info("Category renamed",
		zap.Uint64("category_id", categoryID),
		zap.String("title", title),
	)
	return category, nil
}

// DeleteCategory removes a category; its topics become uncategorized in the
// same transaction. No cascade.
func (s *CategoryService) DeleteCategory(actorID uuid.UUID, categoryID uint64) error {
	actor, err := s.actor(actorID)
	if err != nil {
		return err
	}

	category, err := s.categoryRepo.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrNotFound
	}

	if err := authz.Authorize(actor, authz.ActionDeleteCategory, authz.Target{Category: category}); err != nil {
		logger.Log.Warn("Category delete denied",
			zap.Uint64("category_id", categoryID),
			zap.String("actor_id", actorID.String()),
		)
		return err
	}

	if err := s.categoryRepo.DeleteCategory(categoryID); err != nil {
		return err
	}

	logger.Log.Info("Category deleted, topics moved to uncategorized",
		zap.Uint64("category_id", categoryID),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

// SetCategoryLocked sets the lock flag. A locked category rejects new
// topics from non-admins; existing topics are unaffected.
func (s *CategoryService) SetCategoryLocked(actorID uuid.UUID, categoryID uint64, locked bool) (*models.Category, error) {
	actor, err := s.actor(actorID)
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}

	if err := authz.Authorize(actor, authz.ActionLockCategory, authz.Target{Category: category}); err != nil {
		logger.Log.Warn("Category lock change denied",
			zap.Uint64("category_id", categoryID),
			zap.String("actor_id", actorID.String()),
		)
		return nil, err
	}

	category.Locked = locked
	if err := s.categoryRepo.UpdateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}
