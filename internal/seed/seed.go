package seed

import (
	"fmt"
	"log"

	"mdd/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the Seeder and its Factory.
type Options struct {
	Users                 int
	Articles              int
	MaxCommentsPerArticle int
	SubscriptionsPerUser  int

	// SkipBcrypt hashes the shared password at bcrypt.MinCost.
	SkipBcrypt bool
	DryRun     bool
	BatchSize  int
	MaxDays    int
	RandomSeed int64
}

// DefaultOptions is what cmd/seed uses when no flags are given.
func DefaultOptions() Options {
	return Options{
		Users:                 20,
		Articles:              120,
		MaxCommentsPerArticle: 5,
		SubscriptionsPerUser:  3,
		BatchSize:             100,
		MaxDays:               90,
	}
}

func (o Options) bcryptCost() int {
	if o.SkipBcrypt {
		return bcrypt.MinCost
	}
	return bcrypt.DefaultCost
}

func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return 100
	}
	return o.BatchSize
}

// Summary counts what a seeding run created.
type Summary struct {
	Themes        int
	Users         int
	Subscriptions int
	Articles      int
	Comments      int
}

// Seeder populates the database with themes, users, subscriptions, articles and comments.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Themes upserts the built-in theme list. Running it twice leaves one row per theme.
func Themes(db *gorm.DB) ([]models.Theme, error) {
	return NewSeeder(db, Options{}).Themes()
}

// Themes upserts the built-in theme list.
func (s *Seeder) Themes() ([]models.Theme, error) {
	fixtures, err := BuiltInThemes()
	if err != nil {
		return nil, err
	}
	themes := make([]models.Theme, 0, len(fixtures))
	for _, fx := range fixtures {
		theme, err := s.factory.UpsertTheme(fx)
		if err != nil {
			return nil, err
		}
		themes = append(themes, *theme)
	}
	return themes, nil
}

// Run seeds a full data set according to the Seeder options.
func (s *Seeder) Run() (*Summary, error) {
	log.Printf("🌱 Seeding %d users and %d articles...", s.opts.Users, s.opts.Articles)
	sum := &Summary{}

	themes, err := s.Themes()
	if err != nil {
		return nil, fmt.Errorf("failed to seed themes: %w", err)
	}
	sum.Themes = len(themes)
	log.Printf("✓ %d themes available", sum.Themes)

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	if len(users) == 0 || len(themes) == 0 {
		return sum, nil
	}

	perUser := min(s.opts.SubscriptionsPerUser, len(themes))
	for _, u := range users {
		for _, idx := range s.factory.faker.Rand.Perm(len(themes))[:perUser] {
			if err := s.factory.Subscribe(u, &themes[idx]); err != nil {
				return nil, fmt.Errorf("failed to subscribe user %d: %w", u.ID, err)
			}
			sum.Subscriptions++
		}
	}
	log.Printf("✓ %d subscriptions created", sum.Subscriptions)

	articles := make([]*models.Article, 0, s.opts.Articles)
	for i := 0; i < s.opts.Articles; i++ {
		author := users[s.factory.faker.Number(0, len(users)-1)]
		theme := &themes[s.factory.faker.Number(0, len(themes)-1)]
		articles = append(articles, s.factory.BuildArticle(author, theme))
	}
	if err := s.factory.CreateArticlesBatch(articles); err != nil {
		return nil, fmt.Errorf("failed to create articles: %w", err)
	}
	sum.Articles = len(articles)
	log.Printf("✓ %d articles created", sum.Articles)

	if s.opts.MaxCommentsPerArticle > 0 {
		for _, a := range articles {
			n := s.factory.faker.Number(0, s.opts.MaxCommentsPerArticle)
			for j := 0; j < n; j++ {
				author := users[s.factory.faker.Number(0, len(users)-1)]
				if _, err := s.factory.CreateComment(author, a); err != nil {
					return nil, fmt.Errorf("failed to create comment: %w", err)
				}
				sum.Comments++
			}
		}
	}
	log.Printf("✓ %d comments created", sum.Comments)

	log.Println("🎉 Database seeding completed successfully!")
	return sum, nil
}

// ClearAll removes every comment, article, subscription, theme and user.
func (s *Seeder) ClearAll() error {
	if s.opts.DryRun {
		return nil
	}
	log.Println("🗑️  Clearing existing data...")
	if s.db.Dialector.Name() == "postgres" {
		return s.db.Exec(`TRUNCATE TABLE comments, articles, subscriptions, themes, users RESTART IDENTITY CASCADE`).Error
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Comment{}, &models.Article{}, &models.Subscription{}, &models.Theme{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
