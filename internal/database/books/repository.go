// Package books provides database operations for books and the link rows
// that attach them to topics and authors.
//
// # Usage
//
//	repo := books.NewRepository(tx)
//	book, err := repo.GetBySlug("learning-go")
//	err = repo.LinkTopic(book.ID, topic.ID)
package books

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles book rows and their book_topics/book_authors links.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Listing is one book/topic pair of the overview projection.
type Listing struct {
	ID          uint
	Title       string
	Slug        string
	PublishedOn time.Time
	TopicID     uint
	TopicSlug   string
}

// Create inserts a book. The caller is responsible for a unique slug.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetByID retrieves a book by its ID.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBySlug retrieves a book by its slug.
func (r *Repository) GetBySlug(slug string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("slug = ?", slug).Order("id").First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByISBN retrieves the oldest book with the given ISBN.
func (r *Repository) GetByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("isbn = ?", isbn).Order("id").First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Save writes every column of an existing book.
func (r *Repository) Save(book *entities.Book) error {
	return r.db.Save(book).Error
}

// Delete removes a single book row. Link rows are left to the caller.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Book{}, id).Error
}

// DeleteByIDs removes the given books.
func (r *Repository) DeleteByIDs(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&entities.Book{})
	return result.RowsAffected, result.Error
}

// Slugs returns every book slug except the one of excludeID (0 excludes nothing).
func (r *Repository) Slugs(excludeID uint) ([]string, error) {
	var slugs []string
	query := r.db.Model(&entities.Book{})
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Pluck("slug", &slugs).Error
	return slugs, err
}

// DuplicateSlugs lists slugs shared by more than one book.
func (r *Repository) DuplicateSlugs() ([]string, error) {
	var slugs []string
	err := r.db.Model(&entities.Book{}).
		Group("slug").
		Having("COUNT(*) > 1").
		Pluck("slug", &slugs).Error
	return slugs, err
}

// TopiclessIDs returns books that are not linked to any topic.
func (r *Repository) TopiclessIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Raw(`
		SELECT id FROM books
		WHERE id NOT IN (SELECT book_id FROM book_topics)
		ORDER BY id
	`).Scan(&ids).Error
	return ids, err
}

// ListWithTopics returns one row per book/topic link, newest publication
// first. A non-zero topicID restricts the rows to that topic.
func (r *Repository) ListWithTopics(topicID uint) ([]Listing, error) {
	var rows []Listing
	query := r.db.Table("books").
		Select("books.id, books.title, books.slug, books.published_on, topics.id AS topic_id, topics.slug AS topic_slug").
		Joins("JOIN book_topics ON book_topics.book_id = books.id").
		Joins("JOIN topics ON topics.id = book_topics.topic_id")
	if topicID != 0 {
		query = query.Where("topics.id = ?", topicID)
	}
	err := query.Order("books.published_on DESC, books.id ASC, topics.id ASC").Scan(&rows).Error
	return rows, err
}

// List returns books ordered by ID. A non-zero topicID restricts the result
// to books linked to that topic.
func (r *Repository) List(topicID uint) ([]entities.Book, error) {
	var books []entities.Book
	query := r.db.Model(&entities.Book{})
	if topicID != 0 {
		query = query.
			Joins("JOIN book_topics ON book_topics.book_id = books.id").
			Where("book_topics.topic_id = ?", topicID)
	}
	err := query.Order("books.id ASC").Find(&books).Error
	return books, err
}

// Count returns the number of book rows.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
