package repository

import (
	"fmt"
	"testing"
	"time"

	"mdd/internal/database"
	"mdd/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns an isolated in-memory database with the full schema
// and foreign keys enforced.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection serializes writers the way row locks would on Postgres.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedTheme(t *testing.T, db *gorm.DB, name string) *models.Theme {
	t.Helper()
	th := &models.Theme{Name: name, Description: name + " things"}
	require.NoError(t, db.Create(th).Error)
	return th
}

func seedArticle(t *testing.T, db *gorm.DB, author *models.User, theme *models.Theme, title string, at time.Time) *models.Article {
	t.Helper()
	a := &models.Article{Title: title, Content: "Some content here", AuthorID: author.ID, ThemeID: theme.ID, CreatedAt: at}
	require.NoError(t, db.Omit("Author", "Theme").Create(a).Error)
	return a
}

func seedComment(t *testing.T, db *gorm.DB, author *models.User, article *models.Article, content string) *models.Comment {
	t.Helper()
	c := &models.Comment{Content: content, AuthorID: author.ID, ArticleID: article.ID}
	require.NoError(t, db.Omit("Author", "Article").Create(c).Error)
	return c
}
