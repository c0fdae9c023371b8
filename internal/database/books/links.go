package books

import (
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// LinkTopic attaches a topic to a book. An existing link is kept as is.
func (r *Repository) LinkTopic(bookID, topicID uint) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.BookTopic{BookID: bookID, TopicID: topicID}).Error
}

// LinkAuthor attaches an author to a book at the given position. An existing
// link is kept as is.
func (r *Repository) LinkAuthor(bookID, authorID uint, position int) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.BookAuthor{BookID: bookID, AuthorID: authorID, Position: position}).Error
}

// TopicIDs returns the topics linked to a book.
func (r *Repository) TopicIDs(bookID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.BookTopic{}).
		Where("book_id = ?", bookID).
		Order("topic_id").
		Pluck("topic_id", &ids).Error
	return ids, err
}

// AuthorIDs returns the authors linked to a book in link order.
func (r *Repository) AuthorIDs(bookID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.BookAuthor{}).
		Where("book_id = ?", bookID).
		Order("position, author_id").
		Pluck("author_id", &ids).Error
	return ids, err
}

// UnlinkAuthors removes every author link of a book.
func (r *Repository) UnlinkAuthors(bookID uint) (int64, error) {
	result := r.db.Where("book_id = ?", bookID).Delete(&entities.BookAuthor{})
	return result.RowsAffected, result.Error
}

// UnlinkTopics removes every topic link of a book.
func (r *Repository) UnlinkTopics(bookID uint) (int64, error) {
	result := r.db.Where("book_id = ?", bookID).Delete(&entities.BookTopic{})
	return result.RowsAffected, result.Error
}

// UnlinkTopicFromAll removes every book link of a topic.
func (r *Repository) UnlinkTopicFromAll(topicID uint) (int64, error) {
	result := r.db.Where("topic_id = ?", topicID).Delete(&entities.BookTopic{})
	return result.RowsAffected, result.Error
}

// DeleteAuthorLinksOfMissingBooks removes author links whose book row is gone.
func (r *Repository) DeleteAuthorLinksOfMissingBooks() (int64, error) {
	result := r.db.Exec(`
		DELETE FROM book_authors
		WHERE book_id NOT IN (SELECT id FROM books)
	`)
	return result.RowsAffected, result.Error
}

// CountDanglingTopicLinks counts topic links pointing at a missing book or topic.
func (r *Repository) CountDanglingTopicLinks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.BookTopic{}).
		Where("book_id NOT IN (SELECT id FROM books) OR topic_id NOT IN (SELECT id FROM topics)").
		Count(&count).Error
	return count, err
}

// DeleteDanglingTopicLinks removes topic links pointing at a missing book or topic.
func (r *Repository) DeleteDanglingTopicLinks() (int64, error) {
	result := r.db.Exec(`
		DELETE FROM book_topics
		WHERE book_id NOT IN (SELECT id FROM books)
		   OR topic_id NOT IN (SELECT id FROM topics)
	`)
	return result.RowsAffected, result.Error
}

// CountDanglingAuthorLinks counts author links pointing at a missing book or author.
func (r *Repository) CountDanglingAuthorLinks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.BookAuthor{}).
		Where("book_id NOT IN (SELECT id FROM books) OR author_id NOT IN (SELECT id FROM authors)").
		Count(&count).Error
	return count, err
}

// DeleteDanglingAuthorLinks removes author links pointing at a missing book or author.
func (r *Repository) DeleteDanglingAuthorLinks() (int64, error) {
	result := r.db.Exec(`
		DELETE FROM book_authors
		WHERE book_id NOT IN (SELECT id FROM books)
		   OR author_id NOT IN (SELECT id FROM authors)
	`)
	return result.RowsAffected, result.Error
}
