package models

import "time"

// Subscription links a user to a theme they follow. At most one row exists
// per (user, theme) pair; the unique index is the arbiter under concurrency.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscriptions_user_theme,priority:1" json:"userId"`
	ThemeID   uint      `gorm:"not null;uniqueIndex:idx_subscriptions_user_theme,priority:2;index" json:"themeId"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Theme     Theme     `gorm:"foreignKey:ThemeID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
