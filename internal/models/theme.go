package models

import "time"

// Theme is a topic that articles are published under and users subscribe to.
type Theme struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null;uniqueIndex:idx_themes_name" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	// ArticleCount is not persisted; computed at query time
	ArticleCount int `gorm:"->;-:migration" json:"articleCount"`
}
