// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"mdd/internal/auth"
	"mdd/internal/models"
	"mdd/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the plaintext password of every seeded account.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the Seeder and by tests.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	hasher *auth.Hasher
	digest string
	seq    int
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
// A zero opts.RandomSeed draws a fresh seed from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		hasher: auth.NewHasher(opts.bcryptCost()),
		nextID: 1000,
	}
}

func (f *Factory) passwordDigest() (string, error) {
	if f.digest != "" {
		return f.digest, nil
	}
	digest, err := f.hasher.Hash(DefaultPassword)
	if err != nil {
		return "", fmt.Errorf("hash seed password: %w", err)
	}
	f.digest = digest
	return digest, nil
}

func (f *Factory) syntheticID() uint {
	f.nextID++
	return f.nextID
}

// CreateUser constructs and persists a sample user whose password is DefaultPassword.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	username := truncate(strings.ToLower(f.faker.Username()), validation.UsernameMaxLen-6)
	username = fmt.Sprintf("%s%d", username, f.seq)

	digest, err := f.passwordDigest()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: digest,
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		user.ID = f.syntheticID()
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// UpsertTheme creates the theme or refreshes the description of an existing
// theme with the same name.
func (f *Factory) UpsertTheme(fixture ThemeFixture) (*models.Theme, error) {
	theme := &models.Theme{
		Name:        truncate(fixture.Name, validation.ThemeNameMaxLen),
		Description: truncate(fixture.Description, validation.ThemeDescMaxLen),
	}
	if f.opts.DryRun {
		theme.ID = f.syntheticID()
		return theme, nil
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
		}).Create(theme).Error; err != nil {
			return err
		}
		if theme.ID == 0 {
			return tx.Where("name = ?", theme.Name).First(theme).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("upsert theme %s: %w", fixture.Name, err)
	}
	return theme, nil
}

// BuildArticle constructs an article like CreateArticle but does not persist
// it. CreatedAt is spread over the last MaxDays days. Useful for batching.
func (f *Factory) BuildArticle(author *models.User, theme *models.Theme, overrides ...func(*models.Article)) *models.Article {
	title := strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), ".")
	article := &models.Article{
		Title:    truncate(title, validation.ArticleTitleMaxLen),
		Content:  f.faker.Paragraph(f.faker.Number(1, 4), f.faker.Number(3, 6), 12, "\n\n"),
		AuthorID: author.ID,
		ThemeID:  theme.ID,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	article.CreatedAt = time.Now().Add(-back)
	article.UpdatedAt = article.CreatedAt

	for _, override := range overrides {
		override(article)
	}
	return article
}

// CreateArticle constructs and persists a sample article.
func (f *Factory) CreateArticle(author *models.User, theme *models.Theme, overrides ...func(*models.Article)) (*models.Article, error) {
	article := f.BuildArticle(author, theme, overrides...)
	if err := f.CreateArticlesBatch([]*models.Article{article}); err != nil {
		return nil, err
	}
	return article, nil
}

// CreateArticlesBatch persists multiple articles in as few DB calls as BatchSize allows.
func (f *Factory) CreateArticlesBatch(articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, a := range articles {
			a.ID = f.syntheticID()
		}
		log.Printf("[dry-run] CreateArticlesBatch: %d articles (no DB write)", len(articles))
		return nil
	}
	return f.db.CreateInBatches(articles, f.opts.batchSize()).Error
}

// CreateComment constructs and persists a sample comment on the article.
// The comment is dated after the article it replies to.
func (f *Factory) CreateComment(author *models.User, article *models.Article, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content:   truncate(f.faker.Sentence(f.faker.Number(4, 16)), validation.CommentMaxLen),
		AuthorID:  author.ID,
		ArticleID: article.ID,
	}
	if !article.CreatedAt.IsZero() {
		lag := time.Duration(f.faker.Number(1, 72*60)) * time.Minute
		comment.CreatedAt = minTime(article.CreatedAt.Add(lag), time.Now())
		comment.UpdatedAt = comment.CreatedAt
	}
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		comment.ID = f.syntheticID()
		return comment, nil
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Subscribe persists a subscription of user to theme. An existing pair is left as is.
func (f *Factory) Subscribe(user *models.User, theme *models.Theme) error {
	if f.opts.DryRun {
		return nil
	}
	sub := &models.Subscription{UserID: user.ID, ThemeID: theme.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(sub).Error
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:maxRunes]))
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
