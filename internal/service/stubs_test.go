package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mdd/internal/models"
	"mdd/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn             func(context.Context, *models.User) error
	getByIDFn            func(context.Context, uint) (*models.User, error)
	getIdentityFn        func(context.Context, uint) (*models.User, error)
	getByEmailFn         func(context.Context, string) (*models.User, error)
	getByUsernameFn      func(context.Context, string) (*models.User, error)
	existsByUsernameFn   func(context.Context, string, uint) (bool, error)
	existsByEmailFn      func(context.Context, string, uint) (bool, error)
	hasAuthoredContentFn func(context.Context, uint) (bool, error)
	listFn               func(context.Context, int, int) ([]*models.User, error)
	updateFn             func(context.Context, *models.User) error
	deleteFn             func(context.Context, uint) error

	txStarted bool
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetIdentity(ctx context.Context, id uint) (*models.User, error) {
	return s.getIdentityFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) ExistsByUsername(ctx context.Context, username string, exceptID uint) (bool, error) {
	return s.existsByUsernameFn(ctx, username, exceptID)
}
func (s *userRepoStub) ExistsByEmail(ctx context.Context, email string, exceptID uint) (bool, error) {
	return s.existsByEmailFn(ctx, email, exceptID)
}
func (s *userRepoStub) HasAuthoredContent(ctx context.Context, id uint) (bool, error) {
	return s.hasAuthoredContentFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) InTx(_ context.Context, fn func(repository.UserRepository) error) error {
	s.txStarted = true
	return fn(s)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:             func(context.Context, *models.User) error { return nil },
		getByIDFn:            func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getIdentityFn:        func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:         func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:      func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		existsByUsernameFn:   func(context.Context, string, uint) (bool, error) { return false, nil },
		existsByEmailFn:      func(context.Context, string, uint) (bool, error) { return false, nil },
		hasAuthoredContentFn: func(context.Context, uint) (bool, error) { return false, nil },
		listFn:               func(context.Context, int, int) ([]*models.User, error) { return nil, nil },
		updateFn:             func(context.Context, *models.User) error { return nil },
		deleteFn:             func(context.Context, uint) error { return nil },
	}
}

// themeRepoStub is a stub for repository.ThemeRepository.
type themeRepoStub struct {
	createFn    func(context.Context, *models.Theme) error
	getByIDFn   func(context.Context, uint) (*models.Theme, error)
	existsFn    func(context.Context, uint) (bool, error)
	nameTakenFn func(context.Context, string, uint) (bool, error)
	listFn      func(context.Context) ([]*models.Theme, error)
	updateFn    func(context.Context, *models.Theme) error
	deleteFn    func(context.Context, uint) error
}

func (s *themeRepoStub) Create(ctx context.Context, theme *models.Theme) error {
	return s.createFn(ctx, theme)
}
func (s *themeRepoStub) GetByID(ctx context.Context, id uint) (*models.Theme, error) {
	return s.getByIDFn(ctx, id)
}
func (s *themeRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *themeRepoStub) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	return s.nameTakenFn(ctx, name, exceptID)
}
func (s *themeRepoStub) List(ctx context.Context) ([]*models.Theme, error) {
	return s.listFn(ctx)
}
func (s *themeRepoStub) Update(ctx context.Context, theme *models.Theme) error {
	return s.updateFn(ctx, theme)
}
func (s *themeRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopThemeRepo() *themeRepoStub {
	return &themeRepoStub{
		createFn:    func(context.Context, *models.Theme) error { return nil },
		getByIDFn:   func(_ context.Context, id uint) (*models.Theme, error) { return &models.Theme{ID: id}, nil },
		existsFn:    func(context.Context, uint) (bool, error) { return true, nil },
		nameTakenFn: func(context.Context, string, uint) (bool, error) { return false, nil },
		listFn:      func(context.Context) ([]*models.Theme, error) { return nil, nil },
		updateFn:    func(context.Context, *models.Theme) error { return nil },
		deleteFn:    func(context.Context, uint) error { return nil },
	}
}

// articleRepoStub is a stub for repository.ArticleRepository.
type articleRepoStub struct {
	createFn        func(context.Context, *models.Article) error
	getByIDFn       func(context.Context, uint) (*models.Article, error)
	existsFn        func(context.Context, uint) (bool, error)
	listFn          func(context.Context, int, int) ([]*models.Article, error)
	listByThemeFn   func(context.Context, uint, int, int) ([]*models.Article, error)
	listByThemesFn  func(context.Context, []uint, int, int) ([]*models.Article, error)
	listByAuthorFn  func(context.Context, uint, int, int) ([]*models.Article, error)
	searchByTitleFn func(context.Context, string, int, int) ([]*models.Article, error)
	updateFn        func(context.Context, *models.Article) error
	deleteFn        func(context.Context, uint) error
}

func (s *articleRepoStub) Create(ctx context.Context, article *models.Article) error {
	return s.createFn(ctx, article)
}
func (s *articleRepoStub) GetByID(ctx context.Context, id uint) (*models.Article, error) {
	return s.getByIDFn(ctx, id)
}
func (s *articleRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *articleRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *articleRepoStub) ListByTheme(ctx context.Context, themeID uint, limit, offset int) ([]*models.Article, error) {
	return s.listByThemeFn(ctx, themeID, limit, offset)
}
func (s *articleRepoStub) ListByThemes(ctx context.Context, themeIDs []uint, limit, offset int) ([]*models.Article, error) {
	return s.listByThemesFn(ctx, themeIDs, limit, offset)
}
func (s *articleRepoStub) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Article, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}
func (s *articleRepoStub) SearchByTitle(ctx context.Context, query string, limit, offset int) ([]*models.Article, error) {
	return s.searchByTitleFn(ctx, query, limit, offset)
}
func (s *articleRepoStub) Update(ctx context.Context, article *models.Article) error {
	return s.updateFn(ctx, article)
}
func (s *articleRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopArticleRepo() *articleRepoStub {
	return &articleRepoStub{
		createFn:        func(context.Context, *models.Article) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Article, error) { return &models.Article{ID: id}, nil },
		existsFn:        func(context.Context, uint) (bool, error) { return true, nil },
		listFn:          func(context.Context, int, int) ([]*models.Article, error) { return nil, nil },
		listByThemeFn:   func(context.Context, uint, int, int) ([]*models.Article, error) { return nil, nil },
		listByThemesFn:  func(context.Context, []uint, int, int) ([]*models.Article, error) { return nil, nil },
		listByAuthorFn:  func(context.Context, uint, int, int) ([]*models.Article, error) { return nil, nil },
		searchByTitleFn: func(context.Context, string, int, int) ([]*models.Article, error) { return nil, nil },
		updateFn:        func(context.Context, *models.Article) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	listFn          func(context.Context, int, int) ([]*models.Comment, error)
	listByArticleFn func(context.Context, uint) ([]*models.Comment, error)
	listByAuthorFn  func(context.Context, uint, int, int) ([]*models.Comment, error)
	updateFn        func(context.Context, *models.Comment) error
	deleteFn        func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *commentRepoStub) ListByArticle(ctx context.Context, articleID uint) ([]*models.Comment, error) {
	return s.listByArticleFn(ctx, articleID)
}
func (s *commentRepoStub) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:        func(context.Context, *models.Comment) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listFn:          func(context.Context, int, int) ([]*models.Comment, error) { return nil, nil },
		listByArticleFn: func(context.Context, uint) ([]*models.Comment, error) { return nil, nil },
		listByAuthorFn:  func(context.Context, uint, int, int) ([]*models.Comment, error) { return nil, nil },
		updateFn:        func(context.Context, *models.Comment) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
	}
}

// subRepoStub is a stub for repository.SubscriptionRepository.
type subRepoStub struct {
	subscribeFn   func(context.Context, uint, uint) (bool, error)
	unsubscribeFn func(context.Context, uint, uint) (bool, error)
	themeIDsFn    func(context.Context, uint) ([]uint, error)
}

func (s *subRepoStub) Subscribe(ctx context.Context, userID, themeID uint) (bool, error) {
	return s.subscribeFn(ctx, userID, themeID)
}
func (s *subRepoStub) Unsubscribe(ctx context.Context, userID, themeID uint) (bool, error) {
	return s.unsubscribeFn(ctx, userID, themeID)
}
func (s *subRepoStub) IsSubscribed(ctx context.Context, userID, themeID uint) (bool, error) {
	ids, err := s.themeIDsFn(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == themeID {
			return true, nil
		}
	}
	return false, nil
}
func (s *subRepoStub) SubscribedThemeIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.themeIDsFn(ctx, userID)
}

func noopSubRepo() *subRepoStub {
	return &subRepoStub{
		subscribeFn:   func(context.Context, uint, uint) (bool, error) { return true, nil },
		unsubscribeFn: func(context.Context, uint, uint) (bool, error) { return true, nil },
		themeIDsFn:    func(context.Context, uint) ([]uint, error) { return []uint{}, nil },
	}
}

// plainHasher stands in for bcrypt so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (plainHasher) Verify(plaintext, digest string) bool {
	return strings.TrimPrefix(digest, "hashed:") == plaintext && strings.HasPrefix(digest, "hashed:")
}

// hasherFunc adapts a function to PasswordHasher.
type hasherFunc func(string) (string, error)

func (f hasherFunc) Hash(plaintext string) (string, error) { return f(plaintext) }
func (hasherFunc) Verify(string, string) bool              { return false }

type tokenStub struct {
	err error
}

func (s tokenStub) Issue(userID uint, username string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + username, nil
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}
