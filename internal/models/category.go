package models

import "time"

// Category groups topics. A locked category only accepts new topics from
// admins. Deleting a category never cascades: its topics fall back to the
// uncategorized bucket (NULL category_id).
type Category struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"title"`
	Locked    bool      `gorm:"not null;default:false" json:"locked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Topics []Topic `gorm:"foreignKey:CategoryID" json:"-"`
}
