package service

import (
	"context"
	"slices"
	"strings"

	"mdd/internal/models"
	"mdd/internal/repository"
	"mdd/internal/validation"
)

type ThemeService struct {
	themeRepo repository.ThemeRepository
	subRepo   repository.SubscriptionRepository
}

type ThemeInput struct {
	Name        string
	Description string
}

func NewThemeService(themeRepo repository.ThemeRepository, subRepo repository.SubscriptionRepository) *ThemeService {
	return &ThemeService{themeRepo: themeRepo, subRepo: subRepo}
}

// ListThemes returns every theme; viewerID 0 means an anonymous caller.
func (s *ThemeService) ListThemes(ctx context.Context, viewerID uint) ([]models.ThemeResponse, error) {
	themes, err := s.themeRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscribedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	out := make([]models.ThemeResponse, 0, len(themes))
	for _, t := range themes {
		out = append(out, models.NewThemeResponse(t, slices.Contains(subscribed, t.ID)))
	}
	return out, nil
}

func (s *ThemeService) GetTheme(ctx context.Context, id, viewerID uint) (*models.ThemeResponse, error) {
	theme, err := s.themeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subscribedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	resp := models.NewThemeResponse(theme, slices.Contains(subscribed, theme.ID))
	return &resp, nil
}

func (s *ThemeService) CreateTheme(ctx context.Context, in ThemeInput) (*models.Theme, error) {
	in, err := s.validate(ctx, in, 0)
	if err != nil {
		return nil, err
	}

	theme := &models.Theme{Name: in.Name, Description: in.Description}
	if err := s.themeRepo.Create(ctx, theme); err != nil {
		return nil, err
	}
	return s.themeRepo.GetByID(ctx, theme.ID)
}

func (s *ThemeService) UpdateTheme(ctx context.Context, id uint, in ThemeInput) (*models.Theme, error) {
	theme, err := s.themeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err = s.validate(ctx, in, id)
	if err != nil {
		return nil, err
	}

	theme.Name = in.Name
	theme.Description = in.Description
	if err := s.themeRepo.Update(ctx, theme); err != nil {
		return nil, err
	}
	return s.themeRepo.GetByID(ctx, id)
}

func (s *ThemeService) DeleteTheme(ctx context.Context, id uint) error {
	return s.themeRepo.Delete(ctx, id)
}

func (s *ThemeService) validate(ctx context.Context, in ThemeInput, exceptID uint) (ThemeInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := invalid(validation.ValidateTheme(in.Name, in.Description)); err != nil {
		return in, err
	}
	taken, err := s.themeRepo.NameTaken(ctx, in.Name, exceptID)
	if err != nil {
		return in, err
	}
	if taken {
		return in, models.NewValidationError("Theme name is already taken")
	}
	return in, nil
}

func (s *ThemeService) subscribedIDs(ctx context.Context, viewerID uint) ([]uint, error) {
	if viewerID == 0 {
		return nil, nil
	}
	return s.subRepo.SubscribedThemeIDs(ctx, viewerID)
}
