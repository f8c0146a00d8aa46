package models

import (
	"time"

	"github.com/google/uuid"
)

// Topic is a discussion thread. Pinned affects ordering only; Locked
// restricts further mutation (topic edits and comment writes) to admins.
// The two flags are independent.
type Topic struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	CategoryID *uint64   `gorm:"index" json:"category_id"` // nil = uncategorized
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	Pinned     bool      `gorm:"not null;default:false" json:"pinned"`
	Locked     bool      `gorm:"not null;default:false" json:"locked"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Author   User      `gorm:"foreignKey:AuthorID" json:"author"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Comments []Comment `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"-"`
}
