package service

import (
	"context"
	"log/slog"
	"strings"

	"mdd/internal/models"
	"mdd/internal/observability"
	"mdd/internal/repository"
	"mdd/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ArticlePublisher fans a newly created article out to realtime subscribers.
type ArticlePublisher interface {
	PublishArticleCreated(ctx context.Context, article *models.Article) error
}

type ArticleService struct {
	articleRepo repository.ArticleRepository
	themeRepo   repository.ThemeRepository
	userRepo    repository.UserRepository
	publisher   ArticlePublisher
}

type CreateArticleInput struct {
	AuthorID uint
	ThemeID  uint
	Title    string
	Content  string
}

// UpdateArticleInput replaces title and content. ThemeID 0 keeps the current theme.
type UpdateArticleInput struct {
	CallerID  uint
	ArticleID uint
	ThemeID   uint
	Title     string
	Content   string
}

// NewArticleService wires the article rules. publisher may be nil.
func NewArticleService(
	articleRepo repository.ArticleRepository,
	themeRepo repository.ThemeRepository,
	userRepo repository.UserRepository,
	publisher ArticlePublisher,
) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		themeRepo:   themeRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

func (s *ArticleService) ListArticles(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	return s.articleRepo.List(ctx, limit, offset)
}

func (s *ArticleService) GetArticle(ctx context.Context, id uint) (*models.Article, error) {
	return s.articleRepo.GetByID(ctx, id)
}

func (s *ArticleService) ListByTheme(ctx context.Context, themeID uint, limit, offset int) ([]*models.Article, error) {
	if err := s.requireTheme(ctx, themeID); err != nil {
		return nil, err
	}
	return s.articleRepo.ListByTheme(ctx, themeID, limit, offset)
}

func (s *ArticleService) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Article, error) {
	if err := requireUser(ctx, s.userRepo, authorID); err != nil {
		return nil, err
	}
	return s.articleRepo.ListByAuthor(ctx, authorID, limit, offset)
}

// SearchByTitle matches query as a case-insensitive substring of the title.
func (s *ArticleService) SearchByTitle(ctx context.Context, query string, limit, offset int) ([]*models.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.articleRepo.SearchByTitle(ctx, query, limit, offset)
}

func (s *ArticleService) CreateArticle(ctx context.Context, in CreateArticleInput) (article *models.Article, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ArticleService", "CreateArticle",
		attribute.Int64("theme.id", int64(in.ThemeID)))
	defer func() { observability.EndSpan(span, err) }()

	in.Title = strings.TrimSpace(in.Title)
	if err := invalid(validation.ValidateArticle(in.Title, in.Content)); err != nil {
		return nil, err
	}
	if err := s.requireTheme(ctx, in.ThemeID); err != nil {
		return nil, err
	}

	article = &models.Article{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: in.AuthorID,
		ThemeID:  in.ThemeID,
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}
	observability.ArticlesPublished.Inc()

	article, err = s.articleRepo.GetByID(ctx, article.ID)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if pubErr := s.publisher.PublishArticleCreated(ctx, article); pubErr != nil {
			slog.WarnContext(ctx, "failed to publish article.created",
				slog.Uint64("article_id", uint64(article.ID)),
				slog.String("error", pubErr.Error()),
			)
		}
	}
	return article, nil
}

func (s *ArticleService) UpdateArticle(ctx context.Context, in UpdateArticleInput) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, in.ArticleID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner("articles", article.AuthorID, in.CallerID); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := invalid(validation.ValidateArticle(in.Title, in.Content)); err != nil {
		return nil, err
	}
	if in.ThemeID != 0 && in.ThemeID != article.ThemeID {
		if err := s.requireTheme(ctx, in.ThemeID); err != nil {
			return nil, err
		}
		article.ThemeID = in.ThemeID
	}

	article.Title = in.Title
	article.Content = in.Content
	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}
	return s.articleRepo.GetByID(ctx, article.ID)
}

// DeleteArticle removes the caller's article together with its comments.
func (s *ArticleService) DeleteArticle(ctx context.Context, callerID, id uint) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner("articles", article.AuthorID, callerID); err != nil {
		return err
	}
	return s.articleRepo.Delete(ctx, id)
}

func (s *ArticleService) requireTheme(ctx context.Context, themeID uint) error {
	ok, err := s.themeRepo.Exists(ctx, themeID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Theme", themeID)
	}
	return nil
}

func requireUser(ctx context.Context, users repository.UserRepository, id uint) error {
	user, err := users.GetIdentity(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
