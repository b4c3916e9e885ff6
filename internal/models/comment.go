package models

import "time"

// Comment is authored by exactly one user on exactly one article.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"size:500;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"authorId"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"-"`
	ArticleID uint      `gorm:"not null;index" json:"articleId"`
	Article   Article   `gorm:"foreignKey:ArticleID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
