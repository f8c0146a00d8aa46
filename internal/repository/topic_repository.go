package repository

import (
	"errors"

	"github.com/avolkov/forum/internal/models"
	"gorm.io/gorm"
)

// topicOrder is the canonical topic sort: category title descending with
// uncategorized ('') last, pinned topics first within a category, then
// newest first. The id tie-break keeps page contents deterministic when
// creation timestamps collide.
const topicOrder = "COALESCE(categories.title, '') DESC, topics.pinned DESC, topics.created_at DESC, topics.id DESC"

// categoryTopicOrder sorts topics inside a single category bucket.
const categoryTopicOrder = "pinned DESC, created_at DESC, id DESC"

type TopicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

func (r *TopicRepository) CreateTopic(topic *models.Topic) error {
	return r.db.Create(topic).Error
}

func (r *TopicRepository) GetTopicByID(id uint64) (*models.Topic, error) {
	var topic models.Topic
	err := r.db.Preload("Author").Preload("Category").First(&topic, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &topic, nil
}

// ListTopics returns every topic in the canonical grouped order used by the
// index listing. Insertion order never affects the result.
func (r *TopicRepository) ListTopics() ([]models.Topic, error) {
	var topics []models.Topic
	err := r.db.Model(&models.Topic{}).
		Select("topics.*").
		Joins("LEFT JOIN categories ON categories.id = topics.category_id").
		Preload("Author").Preload("Category").
		Order(topicOrder).
		Find(&topics).Error
	return topics, err
}

// ListTopicsByCategory returns a category's topics in canonical order.
// A nil categoryID selects the uncategorized bucket.
func (r *TopicRepository) ListTopicsByCategory(categoryID *uint64) ([]models.Topic, error) {
	var topics []models.Topic
	query := r.db.Preload("Author").Preload("Category").Order(categoryTopicOrder)
	if categoryID == nil {
		query = query.Where("category_id IS NULL")
	} else {
		query = query.Where("category_id = ?", *categoryID)
	}
	err := query.Find(&topics).Error
	return topics, err
}

// CountUncategorized returns the number of topics without a category.
func (r *TopicRepository) CountUncategorized() (int64, error) {
	var count int64
	err := r.db.Model(&models.Topic{}).Where("category_id IS NULL").Count(&count).Error
	return count, err
}

func (r *TopicRepository) UpdateTopic(topic *models.Topic) error {
	return r.db.Save(topic).Error
}

// SetPinned flips only the pin flag; it never touches content columns.
func (r *TopicRepository) SetPinned(id uint64, pinned bool) error {
	return r.db.Model(&models.Topic{}).Where("id = ?", id).Update("pinned", pinned).Error
}

// SetLocked flips only the lock flag.
func (r *TopicRepository) SetLocked(id uint64, locked bool) error {
	return r.db.Model(&models.Topic{}).Where("id = ?", id).Update("locked", locked).Error
}

// DeleteTopicCascade removes the topic and all of its comments as one
// transaction. Readers never observe a partially cascaded state.
func (r *TopicRepository) DeleteTopicCascade(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("topic_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Topic{}, id).Error
	})
}
