package entities

import "time"

// PublicationLayout is the display format of a book's publication month.
const PublicationLayout = "January 2006"

type Topic struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:80;not null" json:"name"`
	Slug      string    `gorm:"index;size:120;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Topic) TableName() string {
	return "topics"
}

type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:250;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Author) TableName() string {
	return "authors"
}

type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:80;not null" json:"title"`
	ISBN        string    `gorm:"column:isbn;index;size:13;not null" json:"isbn"`
	Description string    `gorm:"size:250" json:"description"`
	PublishedOn time.Time `gorm:"index;not null" json:"published_on"` // first day of the publication month, UTC
	Slug        string    `gorm:"index;size:120;not null" json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// PublicationDate formats the publication month as "Month YYYY".
func (b Book) PublicationDate() string {
	return b.PublishedOn.Format(PublicationLayout)
}

// BookTopic links a book to a topic. Rows are owned by the catalog maintainer,
// no foreign key cascade is declared.
type BookTopic struct {
	BookID  uint `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	TopicID uint `gorm:"primaryKey;autoIncrement:false;index" json:"topic_id"`
}

func (BookTopic) TableName() string {
	return "book_topics"
}

// BookAuthor links a book to an author. Position keeps the order authors were entered in.
type BookAuthor struct {
	BookID   uint `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	AuthorID uint `gorm:"primaryKey;autoIncrement:false;index" json:"author_id"`
	Position int  `gorm:"not null;default:0" json:"position"`
}

func (BookAuthor) TableName() string {
	return "book_authors"
}
