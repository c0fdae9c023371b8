package authors

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByName returns the oldest author with exactly this name.
func (r *Repository) FindByName(name string) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.Where("name = ?", name).Order("id").First(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// GetOrCreate reuses an author with the exact name or inserts a new one.
func (r *Repository) GetOrCreate(name string) (*entities.Author, error) {
	author, err := r.FindByName(name)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	author = &entities.Author{Name: name}
	if err := r.db.Create(author).Error; err != nil {
		return nil, err
	}
	return author, nil
}

// NamesForBook returns the book's author names in the order they were linked.
func (r *Repository) NamesForBook(bookID uint) ([]string, error) {
	var names []string
	err := r.db.Model(&entities.Author{}).
		Joins("JOIN book_authors ON book_authors.author_id = authors.id").
		Where("book_authors.book_id = ?", bookID).
		Order("book_authors.position ASC, authors.id ASC").
		Pluck("authors.name", &names).Error
	return names, err
}

// OrphanIDs returns authors without any book link.
func (r *Repository) OrphanIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Raw(`
		SELECT id FROM authors
		WHERE id NOT IN (SELECT author_id FROM book_authors)
		ORDER BY id
	`).Scan(&ids).Error
	return ids, err
}

// DeleteByIDs removes the given authors.
func (r *Repository) DeleteByIDs(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&entities.Author{})
	return result.RowsAffected, result.Error
}

// Count returns the number of author rows.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Author{}).Count(&count).Error
	return count, err
}
