package models

import "time"

// Article is authored by exactly one user under exactly one theme.
type Article struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:100;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"authorId"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"-"`
	ThemeID   uint      `gorm:"not null;index" json:"themeId"`
	Theme     Theme     `gorm:"foreignKey:ThemeID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->;-:migration" json:"commentCount"`
}
