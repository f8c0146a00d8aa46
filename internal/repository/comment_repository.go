package repository

import (
	"errors"

	"github.com/avolkov/forum/internal/models"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) GetCommentByID(id uint64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListCommentsByTopic returns a topic's comments in chronological reading
// order (oldest first, id as tie-break).
func (r *CommentRepository) ListCommentsByTopic(topicID uint64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("Author").
		Where("topic_id = ?", topicID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) CountByTopic(topicID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("topic_id = ?", topicID).Count(&count).Error
	return count, err
}

func (r *CommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

func (r *CommentRepository) DeleteComment(id uint64) error {
	return r.db.Delete(&models.Comment{}, id).Error
}
