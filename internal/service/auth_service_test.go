package service

import (
	"context"
	"errors"
	"testing"

	"mdd/internal/auth"
	"mdd/internal/featureflags"
	"mdd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aliceRepo() *userRepoStub {
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email != "a@x.com" {
			return nil, nil
		}
		return &models.User{ID: 7, Username: "alice", Email: "a@x.com", Password: "hashed:Secret1!"}, nil
	}
	return repo
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(aliceRepo(), plainHasher{}, tokenStub{}, nil)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		resp, err := svc.Login(ctx, "a@x.com", "Secret1!")
		require.NoError(t, err)
		assert.Equal(t, "token-for-alice", resp.Token)
		assert.Equal(t, "Bearer", resp.Type)
		assert.Equal(t, uint(7), resp.ID)
		assert.Equal(t, "alice", resp.Username)
		assert.Equal(t, "a@x.com", resp.Email)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		t.Parallel()
		_, unknownErr := svc.Login(ctx, "nobody@x.com", "Secret1!")
		_, wrongErr := svc.Login(ctx, "a@x.com", "wrong")

		assertAppErrorCode(t, unknownErr, models.CodeInvalidCredentials)
		assertAppErrorCode(t, wrongErr, models.CodeInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Login(ctx, "  ", "x")
		assertValidationError(t, err)
	})

	t.Run("token failure is internal", func(t *testing.T) {
		t.Parallel()
		broken := NewAuthService(aliceRepo(), plainHasher{}, tokenStub{err: errors.New("no key")}, nil)
		_, err := broken.Login(ctx, "a@x.com", "Secret1!")
		assertAppErrorCode(t, err, models.CodeInternal)
	})
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(noopUserRepo(), plainHasher{}, tokenStub{}, nil)
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short username", RegisterInput{Username: "al", Email: "a@x.com", Password: "secret"}},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: "secret"}},
		{"short password", RegisterInput{Username: "alice", Email: "a@x.com", Password: "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(context.Background(), tt.in)
			assertValidationError(t, err)
		})
	}
}

func TestAuthService_Register_StrongPasswordFlag(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(noopUserRepo(), plainHasher{}, tokenStub{}, featureflags.NewManager("strong_passwords=on"))

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@x.com", Password: "secret"})
	assertValidationError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@x.com", Password: "Secret1!"})
	assert.NoError(t, err)
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	t.Parallel()

	t.Run("username taken", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.existsByUsernameFn = func(_ context.Context, u string, _ uint) (bool, error) { return u == "alice", nil }
		created := false
		repo.createFn = func(context.Context, *models.User) error { created = true; return nil }

		svc := NewAuthService(repo, plainHasher{}, tokenStub{}, nil)
		_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "new@x.com", Password: "secret"})
		assertAppErrorCode(t, err, models.CodeDuplicateUsername)
		assert.False(t, created)
	})

	t.Run("email taken", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.existsByEmailFn = func(_ context.Context, e string, _ uint) (bool, error) { return e == "a@x.com", nil }

		svc := NewAuthService(repo, plainHasher{}, tokenStub{}, nil)
		_, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Email: "a@x.com", Password: "secret"})
		assertAppErrorCode(t, err, models.CodeDuplicateEmail)
	})
}

func TestAuthService_Register_HashesPassword(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	var saved *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 1
		saved = u
		return nil
	}

	svc := NewAuthService(repo, plainHasher{}, tokenStub{}, nil)
	user, err := svc.Register(context.Background(), RegisterInput{Username: " alice ", Email: "a@x.com", Password: "Secret1!"})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "alice", saved.Username)
	assert.Equal(t, "hashed:Secret1!", saved.Password)
}

func TestAuthService_Register_HashesBeforeTransaction(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	hasher := hasherFunc(func(pw string) (string, error) {
		assert.False(t, repo.txStarted, "hash must run before the transaction opens")
		return "hashed:" + pw, nil
	})

	svc := NewAuthService(repo, hasher, tokenStub{}, nil)
	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@x.com", Password: "Secret1!"})
	require.NoError(t, err)
	assert.True(t, repo.txStarted)
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	created := false
	repo.createFn = func(context.Context, *models.User) error {
		created = true
		return nil
	}
	hasher := hasherFunc(func(string) (string, error) { return "", auth.ErrPasswordTooLong })

	svc := NewAuthService(repo, hasher, tokenStub{}, nil)
	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@x.com", Password: "Secret1!"})
	assertValidationError(t, err)
	assert.False(t, created)
	assert.False(t, repo.txStarted)
}
