package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reply inside a topic. It always belongs to exactly one topic
// and one authoring user; deleting the topic deletes its comments.
type Comment struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TopicID   uint64    `gorm:"not null;index" json:"topic_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID" json:"author"`
}
