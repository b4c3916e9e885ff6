package repository

import (
	"context"
	"strings"

	"mdd/internal/models"
	"mdd/internal/observability"

	"gorm.io/gorm"
)

const articleColumns = `articles.*,
	(SELECT COUNT(*) FROM comments WHERE comments.article_id = articles.id) AS comment_count`

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Article, error)
	ListByTheme(ctx context.Context, themeID uint, limit, offset int) ([]*models.Article, error)
	ListByThemes(ctx context.Context, themeIDs []uint, limit, offset int) ([]*models.Article, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Article, error)
	SearchByTitle(ctx context.Context, query string, limit, offset int) ([]*models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uint) error
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// withDetails selects the comment count and preloads author and theme.
func (r *articleRepository) withDetails(ctx context.Context) *gorm.DB {
	return readDB(r.db).WithContext(ctx).
		Model(&models.Article{}).
		Select(articleColumns).
		Preload("Author").
		Preload("Theme")
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Theme").Create(article).Error; err != nil {
		if foreignKeyViolation(err) {
			return r.missingReference(ctx, article)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// missingReference names the parent row whose absence failed the insert.
func (r *articleRepository) missingReference(ctx context.Context, article *models.Article) error {
	var themes int64
	if err := r.db.WithContext(ctx).Model(&models.Theme{}).Where("id = ?", article.ThemeID).Count(&themes).Error; err != nil {
		return models.NewInternalError(err)
	}
	if themes == 0 {
		return models.NewNotFoundError("Theme", article.ThemeID)
	}
	return models.NewNotFoundError("User", article.AuthorID)
}

func (r *articleRepository) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := r.withDetails(ctx).Where("articles.id = ?", id).Take(&article).Error; err != nil {
		return nil, lookupError(err, "Article", id)
	}
	return &article, nil
}

func (r *articleRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := readDB(r.db).WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// List returns all articles newest first.
func (r *articleRepository) List(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	return r.find(r.withDetails(ctx), limit, offset)
}

func (r *articleRepository) ListByTheme(ctx context.Context, themeID uint, limit, offset int) ([]*models.Article, error) {
	return r.find(r.withDetails(ctx).Where("articles.theme_id = ?", themeID), limit, offset)
}

// ListByThemes returns articles under any of themeIDs newest first. An empty
// set yields an empty list without querying.
func (r *articleRepository) ListByThemes(ctx context.Context, themeIDs []uint, limit, offset int) ([]*models.Article, error) {
	if len(themeIDs) == 0 {
		return []*models.Article{}, nil
	}
	return r.find(r.withDetails(ctx).Where("articles.theme_id IN ?", themeIDs), limit, offset)
}

func (r *articleRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Article, error) {
	return r.find(r.withDetails(ctx).Where("articles.author_id = ?", authorID), limit, offset)
}

// SearchByTitle matches query as a case-insensitive substring of the title.
// Postgres folds Unicode through ILIKE; SQLite's LOWER folds ASCII only.
func (r *articleRepository) SearchByTitle(ctx context.Context, query string, limit, offset int) ([]*models.Article, error) {
	if r.db.Dialector.Name() == "postgres" {
		pattern := "%" + escapeLike(query) + "%"
		return r.find(r.withDetails(ctx).Where(`articles.title ILIKE ? ESCAPE '\'`, pattern), limit, offset)
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return r.find(r.withDetails(ctx).Where(`LOWER(articles.title) LIKE ? ESCAPE '\'`, pattern), limit, offset)
}

func (r *articleRepository) find(q *gorm.DB, limit, offset int) ([]*models.Article, error) {
	defer observability.TrackQuery("list", "articles")()

	articles := []*models.Article{}
	q = q.Order("articles.created_at DESC").Order("articles.id DESC")
	if err := paginate(q, limit, offset).Find(&articles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	err := r.db.WithContext(ctx).
		Model(article).
		Select("title", "content", "theme_id", "updated_at").
		Updates(article).Error
	if err != nil {
		if foreignKeyViolation(err) {
			return models.NewNotFoundError("Theme", article.ThemeID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the article and its comments in one transaction.
func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Article{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return lookupError(err, "Article", id)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
