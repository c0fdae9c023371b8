package http

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mrlokans/bookshelf/internal/catalog"
)

// bookForm is the add and edit book form. Topics is only submitted when a
// book is added.
type bookForm struct {
	Title           string `json:"title"`
	ISBN            string `json:"isbn"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date"`
	Topics          string `json:"topics"`
	Authors         string `json:"authors"`
}

func bindBookForm(c *gin.Context) bookForm {
	return bookForm{
		Title:           strings.TrimSpace(c.PostForm("title")),
		ISBN:            strings.TrimSpace(c.PostForm("isbn")),
		Description:     strings.TrimSpace(c.PostForm("description")),
		PublicationDate: strings.TrimSpace(c.PostForm("publication_date")),
		Topics:          c.PostForm("topics"),
		Authors:         c.PostForm("authors"),
	}
}

// prefillBookForm fills the edit form from the stored book.
func prefillBookForm(detail *catalog.BookDetail) bookForm {
	return bookForm{
		Title:           detail.Book.Title,
		ISBN:            detail.Book.ISBN,
		Description:     detail.Book.Description,
		PublicationDate: catalog.FormatPublicationMonth(detail.Book.PublishedOn),
		Authors:         strings.Join(detail.Authors, ", "),
	}
}

func (f bookForm) validate(withTopics bool) error {
	rules := []*validation.FieldRules{
		validation.Field(&f.Title, catalog.TitleRules()...),
		validation.Field(&f.ISBN, catalog.ISBNRules()...),
		validation.Field(&f.Description, catalog.DescriptionRules()...),
		validation.Field(&f.PublicationDate, catalog.PublicationMonthRules()...),
		validation.Field(&f.Authors, catalog.NameListRules("authors")...),
	}
	if withTopics {
		rules = append(rules, validation.Field(&f.Topics, catalog.NameListRules("topics")...))
	}
	return validation.ValidateStruct(&f, rules...)
}

func (f bookForm) input() (catalog.BookInput, error) {
	published, err := catalog.ParsePublicationMonth(f.PublicationDate)
	if err != nil {
		return catalog.BookInput{}, err
	}
	return catalog.BookInput{
		Title:       f.Title,
		ISBN:        f.ISBN,
		Description: f.Description,
		Published:   published,
		Topics:      []string{f.Topics},
		Authors:     []string{f.Authors},
	}, nil
}

func (f bookForm) update() (catalog.BookUpdate, error) {
	published, err := catalog.ParsePublicationMonth(f.PublicationDate)
	if err != nil {
		return catalog.BookUpdate{}, err
	}
	return catalog.BookUpdate{
		Title:       f.Title,
		ISBN:        f.ISBN,
		Description: f.Description,
		Published:   published,
		Authors:     []string{f.Authors},
	}, nil
}

type topicForm struct {
	Name string `json:"name"`
}

func bindTopicForm(c *gin.Context) topicForm {
	return topicForm{Name: strings.TrimSpace(c.PostForm("name"))}
}

func (f topicForm) validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, catalog.TopicNameRules()...),
	)
}

// fieldErrors flattens a validation failure into field -> message for the
// templates. Catalog validation errors raised after the form passed are
// attached to their field as well. Any other error yields nil.
func fieldErrors(err error) map[string]string {
	var errs validation.Errors
	if errors.As(err, &errs) {
		out := make(map[string]string, len(errs))
		for field, fieldErr := range errs {
			out[field] = fieldErr.Error()
		}
		return out
	}

	var ve *catalog.ValidationError
	if errors.As(err, &ve) {
		return map[string]string{ve.Field: ve.Message}
	}
	return nil
}
