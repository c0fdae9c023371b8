package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type testCatalog struct {
	db         *gorm.DB
	maintainer *Maintainer
	reader     *Reader
	integrity  *Integrity
}

func setupCatalog(t *testing.T) *testCatalog {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	db.DB.Logger = logger.Default.LogMode(logger.Silent)
	t.Cleanup(func() { db.Close() })

	return &testCatalog{
		db:         db.DB,
		maintainer: NewMaintainer(db.DB),
		reader:     NewReader(db.DB),
		integrity:  NewIntegrity(db.DB),
	}
}

func monthOf(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func (tc *testCatalog) addBook(t *testing.T, title, topics, authors string, published time.Time) *entities.Book {
	t.Helper()
	book, err := tc.maintainer.AddBook(context.Background(), BookInput{
		Title:     title,
		ISBN:      "9781491927281",
		Published: published,
		Topics:    []string{topics},
		Authors:   []string{authors},
	})
	require.NoError(t, err)
	return book
}

func (tc *testCatalog) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, tc.db.Model(model).Count(&n).Error)
	return n
}

func (tc *testCatalog) topicBySlug(t *testing.T, slug string) *entities.Topic {
	t.Helper()
	topic, err := tc.reader.TopicBySlug(context.Background(), slug)
	require.NoError(t, err)
	return topic
}

func (tc *testCatalog) authorsOf(t *testing.T, bookSlug string) []string {
	t.Helper()
	book, err := tc.reader.BookBySlug(context.Background(), bookSlug)
	require.NoError(t, err)
	var names []string
	require.NoError(t, tc.db.Table("authors").
		Joins("JOIN book_authors ON book_authors.author_id = authors.id").
		Where("book_authors.book_id = ?", book.ID).
		Order("book_authors.position").
		Pluck("authors.name", &names).Error)
	return names
}

// requireConsistent asserts that no author or topic lacks a link row and no
// link row points at a missing parent.
func (tc *testCatalog) requireConsistent(t *testing.T) {
	t.Helper()
	report, err := tc.integrity.Scan(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.OrphanAuthors, "orphan authors")
	require.Empty(t, report.OrphanTopics, "orphan topics")
	require.Zero(t, report.DanglingTopicLinks, "dangling topic links")
	require.Zero(t, report.DanglingAuthorLinks, "dangling author links")
}
