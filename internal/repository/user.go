package repository

import (
	"context"
	"errors"
	"strings"

	"mdd/internal/cache"
	"mdd/internal/models"

	"gorm.io/gorm"
)

const userColumns = `users.*,
	(SELECT COUNT(*) FROM articles WHERE articles.author_id = users.id) AS article_count,
	(SELECT COUNT(*) FROM comments WHERE comments.author_id = users.id) AS comment_count`

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetIdentity(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string, exceptID uint) (bool, error)
	ExistsByEmail(ctx context.Context, email string, exceptID uint) (bool, error)
	HasAuthoredContent(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	InTx(ctx context.Context, fn func(UserRepository) error) error
}

type userRepository struct {
	db *gorm.DB
	// inTx pins reads to the transaction instead of the replica.
	inTx bool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) reader() *gorm.DB {
	if r.inTx {
		return r.db
	}
	return readDB(r.db)
}

// Create inserts user, mapping unique violations to the specific duplicate error.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return mapUserWriteError(err)
	}
	return nil
}

// GetByID returns the user with live article and comment counts.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.reader().WithContext(ctx).
		Model(&models.User{}).
		Select(userColumns).
		Where("users.id = ?", id).
		Take(&user).Error
	if err != nil {
		return nil, lookupError(err, "User", id)
	}
	return &user, nil
}

// GetIdentity resolves a token subject to a user without counts. It returns
// nil, nil when the account does not exist. Results are cached.
func (r *userRepository) GetIdentity(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return r.reader().WithContext(ctx).
			Select("id", "username", "email", "created_at", "updated_at").
			First(&user, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByEmail returns the user including the password hash, or nil, nil when absent.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.reader().WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.reader().WithContext(ctx).
		Model(&models.User{}).
		Select(userColumns).
		Where("users.username = ?", username).
		Take(&user).Error
	if err != nil {
		return nil, lookupError(err, "User", username)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string, exceptID uint) (bool, error) {
	return r.exists(ctx, "username = ?", username, exceptID)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string, exceptID uint) (bool, error) {
	return r.exists(ctx, "email = ?", email, exceptID)
}

func (r *userRepository) exists(ctx context.Context, cond string, value string, exceptID uint) (bool, error) {
	q := r.reader().WithContext(ctx).Model(&models.User{}).Where(cond, value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// HasAuthoredContent reports whether any article or comment references the user.
func (r *userRepository) HasAuthoredContent(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.reader().WithContext(ctx).Raw(
		`SELECT (SELECT COUNT(*) FROM articles WHERE author_id = ?) + (SELECT COUNT(*) FROM comments WHERE author_id = ?)`,
		id, id,
	).Scan(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// List returns users ordered by ID with live counts.
func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users := []*models.User{}
	q := r.reader().WithContext(ctx).Model(&models.User{}).Select(userColumns).Order("users.id ASC")
	if err := paginate(q, limit, offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("username", "email", "password", "updated_at").
		Updates(user).Error
	if err != nil {
		return mapUserWriteError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Delete removes the user's subscriptions and then the user in one transaction.
// Authored articles and comments block deletion through their foreign keys.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if foreignKeyViolation(err) {
			return models.NewConflictError("User still has articles or comments")
		}
		return lookupError(err, "User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// InTx runs fn against a repository bound to a single transaction.
func (r *userRepository) InTx(ctx context.Context, fn func(UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&userRepository{db: tx, inTx: true})
	})
}

func mapUserWriteError(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return models.NewInternalError(err)
	}
	switch {
	case strings.Contains(constraint, "email"):
		return models.NewDuplicateEmailError()
	case strings.Contains(constraint, "username"):
		return models.NewDuplicateUsernameError()
	default:
		return models.NewValidationError("User already exists")
	}
}
