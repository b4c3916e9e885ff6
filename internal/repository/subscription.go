package repository

import (
	"context"
	"slices"

	"mdd/internal/cache"
	"mdd/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository defines the interface for user-theme subscriptions
type SubscriptionRepository interface {
	Subscribe(ctx context.Context, userID, themeID uint) (bool, error)
	Unsubscribe(ctx context.Context, userID, themeID uint) (bool, error)
	IsSubscribed(ctx context.Context, userID, themeID uint) (bool, error)
	SubscribedThemeIDs(ctx context.Context, userID uint) ([]uint, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Subscribe inserts the (user, theme) row. The unique index decides races:
// a conflicting insert is skipped and reported as false.
func (r *subscriptionRepository) Subscribe(ctx context.Context, userID, themeID uint) (bool, error) {
	sub := models.Subscription{UserID: userID, ThemeID: themeID}
	res := r.db.WithContext(ctx).
		Omit("User", "Theme").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "theme_id"}},
			DoNothing: true,
		}).
		Create(&sub)
	if res.Error != nil {
		if _, dup := uniqueViolation(res.Error); dup {
			return false, nil
		}
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidateSubscriptions(ctx, userID)
	return true, nil
}

// Unsubscribe deletes the (user, theme) row and reports whether one existed.
func (r *subscriptionRepository) Unsubscribe(ctx context.Context, userID, themeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND theme_id = ?", userID, themeID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	cache.InvalidateSubscriptions(ctx, userID)
	return true, nil
}

// IsSubscribed answers from the cached theme-ID set.
func (r *subscriptionRepository) IsSubscribed(ctx context.Context, userID, themeID uint) (bool, error) {
	ids, err := r.SubscribedThemeIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, themeID), nil
}

// SubscribedThemeIDs returns the user's followed theme IDs in ascending order.
// It reads the primary so a subscribe is visible to the next request.
func (r *subscriptionRepository) SubscribedThemeIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := cache.AsideGuarded(ctx, cache.SubscriptionsKey(userID), cache.SubscriptionsGenKey(userID), &ids, cache.SubscriptionsTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Subscription{}).
			Where("user_id = ?", userID).
			Order("theme_id ASC").
			Pluck("theme_id", &ids).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
