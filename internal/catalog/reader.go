package catalog

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database/authors"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/topics"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Reader serves read-only projections of the catalog.
type Reader struct {
	db *gorm.DB
}

func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

type TopicSummary struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// BookSummary is one overview entry. TopicSlug is the topic the entry is
// listed under.
type BookSummary struct {
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	TopicSlug   string    `json:"topic_slug"`
	PublishedOn time.Time `json:"published_on"`
}

type BookDetail struct {
	Book    entities.Book
	Topic   entities.Topic
	Authors []string
}

type BookExport struct {
	Title           string `json:"title"`
	ISBN            string `json:"isbn"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date"`
}

type Export struct {
	Books []BookExport `json:"books"`
}

// ListTopics returns every topic ordered by name.
func (r *Reader) ListTopics(ctx context.Context) ([]TopicSummary, error) {
	list, err := topics.NewRepository(r.db.WithContext(ctx)).List()
	if err != nil {
		return nil, persistenceError("list topics", err)
	}

	summaries := make([]TopicSummary, 0, len(list))
	for _, t := range list {
		summaries = append(summaries, TopicSummary{Name: t.Name, Slug: t.Slug})
	}
	return summaries, nil
}

// ListBooks returns books newest first. Without a topic slug every book with
// at least one topic is listed once, under its oldest topic. With a topic slug
// only that topic's books are listed.
func (r *Reader) ListBooks(ctx context.Context, topicSlug string) ([]BookSummary, error) {
	db := r.db.WithContext(ctx)

	var topicID uint
	if topicSlug != "" {
		topic, err := topics.NewRepository(db).GetBySlug(topicSlug)
		if err != nil {
			return nil, lookupError("topic", topicSlug, err)
		}
		topicID = topic.ID
	}

	rows, err := books.NewRepository(db).ListWithTopics(topicID)
	if err != nil {
		return nil, persistenceError("list books", err)
	}

	seen := make(map[uint]struct{}, len(rows))
	summaries := make([]BookSummary, 0, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.ID]; dup {
			continue
		}
		seen[row.ID] = struct{}{}
		summaries = append(summaries, BookSummary{
			Title:       row.Title,
			Slug:        row.Slug,
			TopicSlug:   row.TopicSlug,
			PublishedOn: row.PublishedOn,
		})
	}
	return summaries, nil
}

// GetBookDetail resolves both slugs independently. The book does not have to
// belong to the topic.
func (r *Reader) GetBookDetail(ctx context.Context, topicSlug, bookSlug string) (*BookDetail, error) {
	db := r.db.WithContext(ctx)

	topic, err := topics.NewRepository(db).GetBySlug(topicSlug)
	if err != nil {
		return nil, lookupError("topic", topicSlug, err)
	}
	book, err := books.NewRepository(db).GetBySlug(bookSlug)
	if err != nil {
		return nil, lookupError("book", bookSlug, err)
	}

	names, err := authors.NewRepository(db).NamesForBook(book.ID)
	if err != nil {
		return nil, persistenceError("load authors", err)
	}

	return &BookDetail{Book: *book, Topic: *topic, Authors: names}, nil
}

// ExportJSON serializes every book, or the books of one topic, in id order.
func (r *Reader) ExportJSON(ctx context.Context, topicSlug string) (*Export, error) {
	db := r.db.WithContext(ctx)

	var topicID uint
	if topicSlug != "" {
		topic, err := topics.NewRepository(db).GetBySlug(topicSlug)
		if err != nil {
			return nil, lookupError("topic", topicSlug, err)
		}
		topicID = topic.ID
	}

	list, err := books.NewRepository(db).List(topicID)
	if err != nil {
		return nil, persistenceError("export books", err)
	}

	export := &Export{Books: make([]BookExport, 0, len(list))}
	for _, b := range list {
		export.Books = append(export.Books, Serialize(b))
	}
	return export, nil
}

// TopicBySlug loads a single topic.
func (r *Reader) TopicBySlug(ctx context.Context, topicSlug string) (*entities.Topic, error) {
	topic, err := topics.NewRepository(r.db.WithContext(ctx)).GetBySlug(topicSlug)
	if err != nil {
		return nil, lookupError("topic", topicSlug, err)
	}
	return topic, nil
}

// BookBySlug loads a single book.
func (r *Reader) BookBySlug(ctx context.Context, bookSlug string) (*entities.Book, error) {
	book, err := books.NewRepository(r.db.WithContext(ctx)).GetBySlug(bookSlug)
	if err != nil {
		return nil, lookupError("book", bookSlug, err)
	}
	return book, nil
}

// BookByISBN loads the oldest book with the given ISBN.
func (r *Reader) BookByISBN(ctx context.Context, isbn string) (*entities.Book, error) {
	book, err := books.NewRepository(r.db.WithContext(ctx)).GetByISBN(isbn)
	if err != nil {
		return nil, lookupError("book", isbn, err)
	}
	return book, nil
}

// Serialize converts a book to its export form.
func Serialize(b entities.Book) BookExport {
	return BookExport{
		Title:           b.Title,
		ISBN:            b.ISBN,
		Description:     b.Description,
		PublicationDate: b.PublicationDate(),
	}
}
