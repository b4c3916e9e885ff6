package repository

import (
	"context"

	"mdd/internal/models"
	"mdd/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	List(ctx context.Context, limit, offset int) ([]*models.Comment, error)
	ListByArticle(ctx context.Context, articleID uint) ([]*models.Comment, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) withDetails(ctx context.Context) *gorm.DB {
	return readDB(r.db).WithContext(ctx).Preload("Author").Preload("Article")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Article").Create(comment).Error; err != nil {
		if foreignKeyViolation(err) {
			return models.NewNotFoundError("Article", comment.ArticleID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.withDetails(ctx).First(&comment, id).Error; err != nil {
		return nil, lookupError(err, "Comment", id)
	}
	return &comment, nil
}

// List returns all comments newest first.
func (r *commentRepository) List(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	return r.find(r.withDetails(ctx), "created_at DESC", limit, offset)
}

// ListByArticle returns an article's comments in posting order.
func (r *commentRepository) ListByArticle(ctx context.Context, articleID uint) ([]*models.Comment, error) {
	return r.find(r.withDetails(ctx).Where("article_id = ?", articleID), "created_at ASC", 0, 0)
}

func (r *commentRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Comment, error) {
	return r.find(r.withDetails(ctx).Where("author_id = ?", authorID), "created_at DESC", limit, offset)
}

func (r *commentRepository) find(q *gorm.DB, order string, limit, offset int) ([]*models.Comment, error) {
	defer observability.TrackQuery("list", "comments")()

	comments := []*models.Comment{}
	if err := paginate(q.Order(order).Order("id"), limit, offset).Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).
		Model(comment).
		Select("content", "article_id", "updated_at").
		Updates(comment).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}
