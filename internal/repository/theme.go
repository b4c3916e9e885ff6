package repository

import (
	"context"
	"errors"

	"mdd/internal/cache"
	"mdd/internal/models"

	"gorm.io/gorm"
)

const themeColumns = `themes.*,
	(SELECT COUNT(*) FROM articles WHERE articles.theme_id = themes.id) AS article_count`

// ThemeRepository defines the interface for theme data operations
type ThemeRepository interface {
	Create(ctx context.Context, theme *models.Theme) error
	GetByID(ctx context.Context, id uint) (*models.Theme, error)
	Exists(ctx context.Context, id uint) (bool, error)
	NameTaken(ctx context.Context, name string, exceptID uint) (bool, error)
	List(ctx context.Context) ([]*models.Theme, error)
	Update(ctx context.Context, theme *models.Theme) error
	Delete(ctx context.Context, id uint) error
}

type themeRepository struct {
	db *gorm.DB
}

// NewThemeRepository creates a new theme repository
func NewThemeRepository(db *gorm.DB) ThemeRepository {
	return &themeRepository{db: db}
}

func (r *themeRepository) Create(ctx context.Context, theme *models.Theme) error {
	if err := r.db.WithContext(ctx).Create(theme).Error; err != nil {
		return mapThemeWriteError(err)
	}
	return nil
}

// GetByID returns the theme with its live article count.
func (r *themeRepository) GetByID(ctx context.Context, id uint) (*models.Theme, error) {
	var theme models.Theme
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Theme{}).
		Select(themeColumns).
		Where("themes.id = ?", id).
		Take(&theme).Error
	if err != nil {
		return nil, lookupError(err, "Theme", id)
	}
	return &theme, nil
}

func (r *themeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Theme{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *themeRepository) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	q := readDB(r.db).WithContext(ctx).Model(&models.Theme{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// List returns every theme ordered by name.
func (r *themeRepository) List(ctx context.Context) ([]*models.Theme, error) {
	themes := []*models.Theme{}
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Theme{}).
		Select(themeColumns).
		Order("themes.name ASC").
		Find(&themes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return themes, nil
}

func (r *themeRepository) Update(ctx context.Context, theme *models.Theme) error {
	err := r.db.WithContext(ctx).
		Model(theme).
		Select("name", "description", "updated_at").
		Updates(theme).Error
	if err != nil {
		return mapThemeWriteError(err)
	}
	return nil
}

// Delete removes the theme's subscriptions and then the theme in one
// transaction. Articles under the theme block deletion.
func (r *themeRepository) Delete(ctx context.Context, id uint) error {
	var subscribers []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var articles int64
		if err := tx.Model(&models.Article{}).Where("theme_id = ?", id).Count(&articles).Error; err != nil {
			return err
		}
		if articles > 0 {
			return models.NewConflictError("Theme still has articles")
		}
		if err := tx.Model(&models.Subscription{}).Where("theme_id = ?", id).Pluck("user_id", &subscribers).Error; err != nil {
			return err
		}
		if err := tx.Where("theme_id = ?", id).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Theme{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == nil {
		for _, userID := range subscribers {
			cache.InvalidateSubscriptions(ctx, userID)
		}
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if foreignKeyViolation(err) {
		return models.NewConflictError("Theme still has articles")
	}
	return lookupError(err, "Theme", id)
}

func mapThemeWriteError(err error) error {
	if _, ok := uniqueViolation(err); ok {
		return models.NewValidationError("Theme name is already taken")
	}
	return models.NewInternalError(err)
}
