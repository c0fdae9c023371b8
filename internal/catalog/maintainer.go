package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database/authors"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/topics"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/slug"
)

// Maintainer performs catalog writes. Each method is one transaction: either
// every row change commits or none does.
type Maintainer struct {
	db *gorm.DB
}

func NewMaintainer(db *gorm.DB) *Maintainer {
	return &Maintainer{db: db}
}

// DeleteResult lists the rows a delete removed besides the target itself.
type DeleteResult struct {
	BookIDs       []uint // the deleted book, or the books a topic delete cascaded to
	PrunedAuthors []uint
	PrunedTopics  []uint
}

// AddBook creates a book with a fresh slug, reusing or creating its topics and
// authors by exact name.
func (m *Maintainer) AddBook(ctx context.Context, in BookInput) (*entities.Book, error) {
	if err := requireSlug("title", in.Title); err != nil {
		return nil, err
	}
	topicNames := SplitNames(in.Topics...)
	authorNames := SplitNames(in.Authors...)
	if len(topicNames) == 0 {
		return nil, NewValidationError("topics", "at least one topic is required")
	}
	if len(authorNames) == 0 {
		return nil, NewValidationError("authors", "at least one author is required")
	}
	for _, name := range topicNames {
		if err := requireSlug("topics", name); err != nil {
			return nil, err
		}
	}

	var book *entities.Book
	err := m.transact(ctx, "add book", func(tx *gorm.DB) error {
		bookRepo := books.NewRepository(tx)

		slugs, err := bookRepo.Slugs(0)
		if err != nil {
			return err
		}

		book = &entities.Book{
			Title:       in.Title,
			ISBN:        in.ISBN,
			Description: in.Description,
			PublishedOn: firstOfMonth(in.Published),
			Slug:        slug.Unique(slugs, in.Title),
		}
		if err := bookRepo.Create(book); err != nil {
			return err
		}

		if err := linkTopics(tx, book.ID, topicNames); err != nil {
			return err
		}
		return linkAuthors(tx, book.ID, authorNames)
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("slug", book.Slug).Int("topics", len(topicNames)).Int("authors", len(authorNames)).Msg("book added")
	return book, nil
}

// UpdateBook overwrites a book's fields and replaces its author list. The slug
// is recomputed only when the title changes. Topic links are not touched.
func (m *Maintainer) UpdateBook(ctx context.Context, bookID uint, in BookUpdate) (*entities.Book, error) {
	if err := requireSlug("title", in.Title); err != nil {
		return nil, err
	}
	authorNames := SplitNames(in.Authors...)
	if len(authorNames) == 0 {
		return nil, NewValidationError("authors", "at least one author is required")
	}

	var book *entities.Book
	err := m.transact(ctx, "update book", func(tx *gorm.DB) error {
		bookRepo := books.NewRepository(tx)

		current, err := bookRepo.GetByID(bookID)
		if err != nil {
			return lookupError("book", strconv.FormatUint(uint64(bookID), 10), err)
		}

		if in.Title != current.Title {
			slugs, err := bookRepo.Slugs(current.ID)
			if err != nil {
				return err
			}
			current.Title = in.Title
			current.Slug = slug.Unique(slugs, in.Title)
		}
		current.ISBN = in.ISBN
		current.Description = in.Description
		current.PublishedOn = firstOfMonth(in.Published)

		if err := bookRepo.Save(current); err != nil {
			return err
		}

		if _, err := bookRepo.UnlinkAuthors(current.ID); err != nil {
			return err
		}
		if err := linkAuthors(tx, current.ID, authorNames); err != nil {
			return err
		}
		if _, err := pruneAuthors(authors.NewRepository(tx)); err != nil {
			return err
		}

		book = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateTopic renames a topic and recomputes its slug. Submitting the current
// name changes nothing.
func (m *Maintainer) UpdateTopic(ctx context.Context, topicID uint, name string) (*entities.Topic, error) {
	if err := requireSlug("name", name); err != nil {
		return nil, err
	}

	var topic *entities.Topic
	err := m.transact(ctx, "update topic", func(tx *gorm.DB) error {
		topicRepo := topics.NewRepository(tx)

		current, err := topicRepo.GetByID(topicID)
		if err != nil {
			return lookupError("topic", strconv.FormatUint(uint64(topicID), 10), err)
		}
		topic = current

		if name == current.Name {
			return nil
		}

		slugs, err := topicRepo.Slugs(current.ID)
		if err != nil {
			return err
		}
		newSlug := slug.Unique(slugs, name)
		if err := topicRepo.Rename(current, name, newSlug); err != nil {
			return err
		}
		current.Name = name
		current.Slug = newSlug
		return nil
	})
	if err != nil {
		return nil, err
	}
	return topic, nil
}

// DeleteBook removes a book with its links, then prunes authors and topics
// that the book was the last link of.
func (m *Maintainer) DeleteBook(ctx context.Context, bookID uint) (*DeleteResult, error) {
	result := &DeleteResult{}
	err := m.transact(ctx, "delete book", func(tx *gorm.DB) error {
		bookRepo := books.NewRepository(tx)

		if _, err := bookRepo.GetByID(bookID); err != nil {
			return lookupError("book", strconv.FormatUint(uint64(bookID), 10), err)
		}

		if err := bookRepo.Delete(bookID); err != nil {
			return err
		}
		result.BookIDs = []uint{bookID}

		if _, err := bookRepo.UnlinkAuthors(bookID); err != nil {
			return err
		}
		prunedAuthors, err := pruneAuthors(authors.NewRepository(tx))
		if err != nil {
			return err
		}
		result.PrunedAuthors = prunedAuthors

		if _, err := bookRepo.UnlinkTopics(bookID); err != nil {
			return err
		}
		prunedTopics, err := pruneTopics(topics.NewRepository(tx))
		if err != nil {
			return err
		}
		result.PrunedTopics = prunedTopics
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("book_id", bookID).
		Int("pruned_authors", len(result.PrunedAuthors)).
		Int("pruned_topics", len(result.PrunedTopics)).
		Msg("book deleted")
	return result, nil
}

// DeleteTopic removes a topic and its links. Every book left without any topic
// is deleted as well, together with its author links, and authors without a
// remaining book are pruned.
func (m *Maintainer) DeleteTopic(ctx context.Context, topicID uint) (*DeleteResult, error) {
	result := &DeleteResult{}
	err := m.transact(ctx, "delete topic", func(tx *gorm.DB) error {
		topicRepo := topics.NewRepository(tx)
		bookRepo := books.NewRepository(tx)

		if _, err := topicRepo.GetByID(topicID); err != nil {
			return lookupError("topic", strconv.FormatUint(uint64(topicID), 10), err)
		}

		if err := topicRepo.Delete(topicID); err != nil {
			return err
		}
		if _, err := bookRepo.UnlinkTopicFromAll(topicID); err != nil {
			return err
		}

		topicless, err := bookRepo.TopiclessIDs()
		if err != nil {
			return err
		}
		if _, err := bookRepo.DeleteByIDs(topicless); err != nil {
			return err
		}
		result.BookIDs = topicless

		if _, err := bookRepo.DeleteAuthorLinksOfMissingBooks(); err != nil {
			return err
		}
		prunedAuthors, err := pruneAuthors(authors.NewRepository(tx))
		if err != nil {
			return err
		}
		result.PrunedAuthors = prunedAuthors
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("topic_id", topicID).
		Int("removed_books", len(result.BookIDs)).
		Int("pruned_authors", len(result.PrunedAuthors)).
		Msg("topic deleted")
	return result, nil
}

// transact runs fn in one transaction and classifies whatever error ends it,
// including a failed commit.
func (m *Maintainer) transact(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	err := m.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		err = classify(op, err)
		if errors.Is(err, ErrPersistence) {
			log.Error().Err(err).Str("op", op).Msg("catalog write rolled back")
		}
	}
	return err
}

// linkTopics links the book to each named topic, creating missing topics with
// a slug unique among all topics.
func linkTopics(tx *gorm.DB, bookID uint, names []string) error {
	topicRepo := topics.NewRepository(tx)
	bookRepo := books.NewRepository(tx)

	for _, name := range names {
		topic, err := topicRepo.FindByName(name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slugs, err := topicRepo.Slugs(0)
			if err != nil {
				return err
			}
			topic = &entities.Topic{Name: name, Slug: slug.Unique(slugs, name)}
			if err := topicRepo.Create(topic); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := bookRepo.LinkTopic(bookID, topic.ID); err != nil {
			return err
		}
	}
	return nil
}

// linkAuthors links the book to each named author in order, reusing authors
// by exact name.
func linkAuthors(tx *gorm.DB, bookID uint, names []string) error {
	authorRepo := authors.NewRepository(tx)
	bookRepo := books.NewRepository(tx)

	for position, name := range names {
		author, err := authorRepo.GetOrCreate(name)
		if err != nil {
			return err
		}
		if err := bookRepo.LinkAuthor(bookID, author.ID, position); err != nil {
			return err
		}
	}
	return nil
}
