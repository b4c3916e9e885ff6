package service

import (
	"context"
	"log/slog"
	"strings"

	"mdd/internal/featureflags"
	"mdd/internal/models"
	"mdd/internal/observability"
	"mdd/internal/repository"
	"mdd/internal/validation"
)

// TokenIssuer signs bearer tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID uint, username string) (string, error)
}

type AuthService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	flags    *featureflags.Manager
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	flags *featureflags.Manager,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		flags:    flags,
	}
}

// Login exchanges an email and password for a bearer token. An unknown email
// and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (resp *models.AuthResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "Login")
	defer func() {
		observability.RecordAuthAttempt("login", err)
		observability.EndSpan(span, err)
	}()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Verify(password, user.Password) {
		return nil, models.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &models.AuthResponse{
		Token:    token,
		Type:     "Bearer",
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

// Register validates the input and creates the account. The uniqueness checks
// and the insert share one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user *models.User, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AuthService", "Register")
	defer func() {
		observability.RecordAuthAttempt("register", err)
		observability.EndSpan(span, err)
	}()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := invalid(validation.ValidateUsername(in.Username)); err != nil {
		return nil, err
	}
	if err := invalid(validation.ValidateEmail(in.Email)); err != nil {
		return nil, err
	}
	if err := checkPassword(s.flags, in.Password, 0); err != nil {
		return nil, err
	}

	// Hash outside the transaction so bcrypt does not hold a pooled connection.
	digest, err := hashPassword(s.hasher, in.Password)
	if err != nil {
		return nil, err
	}

	user = &models.User{Username: in.Username, Email: in.Email, Password: digest}
	err = s.userRepo.InTx(ctx, func(tx repository.UserRepository) error {
		taken, err := tx.ExistsByUsername(ctx, in.Username, 0)
		if err != nil {
			return err
		}
		if taken {
			return models.NewDuplicateUsernameError()
		}

		taken, err = tx.ExistsByEmail(ctx, in.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return models.NewDuplicateEmailError()
		}

		return tx.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", slog.Uint64("new_user_id", uint64(user.ID)))
	return user, nil
}
