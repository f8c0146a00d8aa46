package repository

import (
	"errors"

	"github.com/avolkov/forum/internal/models"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) CreateCategory(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepository) GetCategoryByID(id uint64) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) GetCategoryByTitle(title string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("title = ?", title).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// ListCategories returns all categories in canonical order (title ascending).
func (r *CategoryRepository) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("title ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) UpdateCategory(category *models.Category) error {
	return r.db.Save(category).Error
}

// DeleteCategory removes the category and moves its topics to the
// uncategorized bucket in the same transaction. No cascade.
func (r *CategoryRepository) DeleteCategory(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Topic{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
}

// CountTopics returns the number of topics filed under the category.
func (r *CategoryRepository) CountTopics(id uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Topic{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}
