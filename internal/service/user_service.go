package service

import (
	"context"
	"strings"

	"mdd/internal/featureflags"
	"mdd/internal/models"
	"mdd/internal/observability"
	"mdd/internal/repository"
	"mdd/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	flags    *featureflags.Manager
}

// UpdateUserInput changes only the non-empty fields.
type UpdateUserInput struct {
	CallerID uint
	UserID   uint
	Username string
	Email    string
	Password string
}

func NewUserService(userRepo repository.UserRepository, hasher PasswordHasher, flags *featureflags.Manager) *UserService {
	return &UserService{userRepo: userRepo, hasher: hasher, flags: flags}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.userRepo.ExistsByUsername(ctx, strings.TrimSpace(username), 0)
	return !taken, err
}

func (s *UserService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := s.userRepo.ExistsByEmail(ctx, strings.TrimSpace(email), 0)
	return !taken, err
}

// UpdateUser lets a user change their own username, email or password.
func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (user *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "UserService", "UpdateUser")
	defer func() { observability.EndSpan(span, err) }()

	if err := requireOwner("account", in.UserID, in.CallerID); err != nil {
		return nil, err
	}

	user, err = s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if username := strings.TrimSpace(in.Username); username != "" && username != user.Username {
		if err := invalid(validation.ValidateUsername(username)); err != nil {
			return nil, err
		}
		taken, err := s.userRepo.ExistsByUsername(ctx, username, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewDuplicateUsernameError()
		}
		user.Username = username
	}

	if email := strings.TrimSpace(in.Email); email != "" && email != user.Email {
		if err := invalid(validation.ValidateEmail(email)); err != nil {
			return nil, err
		}
		taken, err := s.userRepo.ExistsByEmail(ctx, email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewDuplicateEmailError()
		}
		user.Email = email
	}

	if in.Password != "" {
		if err := checkPassword(s.flags, in.Password, user.ID); err != nil {
			return nil, err
		}
		digest, err := hashPassword(s.hasher, in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = digest
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, user.ID)
}

// DeleteUser removes the caller's own account. Accounts that still author
// articles or comments are kept.
func (s *UserService) DeleteUser(ctx context.Context, callerID, id uint) error {
	if err := requireOwner("account", id, callerID); err != nil {
		return err
	}
	hasContent, err := s.userRepo.HasAuthoredContent(ctx, id)
	if err != nil {
		return err
	}
	if hasContent {
		return models.NewConflictError("Delete your articles and comments before deleting the account")
	}
	return s.userRepo.Delete(ctx, id)
}
