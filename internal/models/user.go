// Package models contains data structures for the application's domain models.
package models

import "time"

// User is a registered account. Username and email are each globally unique;
// email is the login identifier.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex:idx_users_username" json:"username"`
	Email     string    `gorm:"size:100;not null;uniqueIndex:idx_users_email" json:"email"`
	Password  string    `gorm:"size:120;not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// ArticleCount is not persisted; computed at query time
	ArticleCount int `gorm:"->;-:migration" json:"articleCount"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->;-:migration" json:"commentCount"`
}
