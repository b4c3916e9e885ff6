package service

import (
	"context"

	"mdd/internal/models"
	"mdd/internal/observability"
	"mdd/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// SubscriptionService manages theme subscriptions and the personal feed.
type SubscriptionService struct {
	subRepo     repository.SubscriptionRepository
	userRepo    repository.UserRepository
	themeRepo   repository.ThemeRepository
	articleRepo repository.ArticleRepository
}

func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	themeRepo repository.ThemeRepository,
	articleRepo repository.ArticleRepository,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:     subRepo,
		userRepo:    userRepo,
		themeRepo:   themeRepo,
		articleRepo: articleRepo,
	}
}

func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID, themeID uint) (bool, error) {
	return s.subRepo.IsSubscribed(ctx, userID, themeID)
}

// Subscribe reports true only when a new subscription was recorded.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, themeID uint) (changed bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SubscriptionService", "Subscribe",
		attribute.Int64("theme.id", int64(themeID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := s.requireParties(ctx, userID, themeID); err != nil {
		return false, err
	}
	changed, err = s.subRepo.Subscribe(ctx, userID, themeID)
	if err != nil {
		return false, err
	}
	if changed {
		observability.SubscriptionChanges.WithLabelValues("subscribe").Inc()
	}
	return changed, nil
}

// Unsubscribe reports true only when an existing subscription was removed.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, themeID uint) (changed bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "SubscriptionService", "Unsubscribe",
		attribute.Int64("theme.id", int64(themeID)))
	defer func() { observability.EndSpan(span, err) }()

	if err := s.requireParties(ctx, userID, themeID); err != nil {
		return false, err
	}
	changed, err = s.subRepo.Unsubscribe(ctx, userID, themeID)
	if err != nil {
		return false, err
	}
	if changed {
		observability.SubscriptionChanges.WithLabelValues("unsubscribe").Inc()
	}
	return changed, nil
}

func (s *SubscriptionService) SubscribedThemeIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.subRepo.SubscribedThemeIDs(ctx, userID)
}

// FeedForUser returns articles from the user's subscribed themes, newest first.
func (s *SubscriptionService) FeedForUser(ctx context.Context, userID uint) ([]models.ArticleResponse, error) {
	ids, err := s.subRepo.SubscribedThemeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.ArticleResponse{}, nil
	}
	articles, err := s.articleRepo.ListByThemes(ctx, ids, 0, 0)
	if err != nil {
		return nil, err
	}
	return models.NewArticleResponses(articles), nil
}

func (s *SubscriptionService) requireParties(ctx context.Context, userID, themeID uint) error {
	if err := requireUser(ctx, s.userRepo, userID); err != nil {
		return err
	}
	ok, err := s.themeRepo.Exists(ctx, themeID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Theme", themeID)
	}
	return nil
}
