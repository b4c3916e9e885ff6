package service

import (
	"context"
	"strings"

	"mdd/internal/models"
	"mdd/internal/repository"
	"mdd/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
}

type CreateCommentInput struct {
	AuthorID  uint
	ArticleID uint
	Content   string
}

// UpdateCommentInput replaces the content. ArticleID 0 keeps the current article.
type UpdateCommentInput struct {
	CallerID  uint
	CommentID uint
	ArticleID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		userRepo:    userRepo,
	}
}

func (s *CommentService) ListComments(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	return s.commentRepo.List(ctx, limit, offset)
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

// ListByArticle returns the thread oldest first.
func (s *CommentService) ListByArticle(ctx context.Context, articleID uint) ([]*models.Comment, error) {
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByArticle(ctx, articleID)
}

func (s *CommentService) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Comment, error) {
	if err := requireUser(ctx, s.userRepo, authorID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByAuthor(ctx, authorID, limit, offset)
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := invalid(validation.ValidateComment(in.Content)); err != nil {
		return nil, err
	}
	if err := s.requireArticle(ctx, in.ArticleID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:   in.Content,
		AuthorID:  in.AuthorID,
		ArticleID: in.ArticleID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner("comments", comment.AuthorID, in.CallerID); err != nil {
		return nil, err
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := invalid(validation.ValidateComment(in.Content)); err != nil {
		return nil, err
	}
	if in.ArticleID != 0 && in.ArticleID != comment.ArticleID {
		if err := s.requireArticle(ctx, in.ArticleID); err != nil {
			return nil, err
		}
		comment.ArticleID = in.ArticleID
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, callerID, id uint) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner("comments", comment.AuthorID, callerID); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, id)
}

func (s *CommentService) requireArticle(ctx context.Context, articleID uint) error {
	ok, err := s.articleRepo.Exists(ctx, articleID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Article", articleID)
	}
	return nil
}
