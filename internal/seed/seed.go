// Package seed prefills the catalog from a JSON file of books.
//
// The file holds an array of entries:
//
//	[
//	  {
//	    "title": "Fluent Python",
//	    "isbn": "9781491946008",
//	    "description": "Clear, concise, and effective programming",
//	    "publication_date": "08-2015",
//	    "topics": ["Python"],
//	    "authors": ["Luciano Ramalho"]
//	  }
//	]
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type Entry struct {
	Title           string   `json:"title"`
	ISBN            string   `json:"isbn"`
	Description     string   `json:"description"`
	PublicationDate string   `json:"publication_date"`
	Topics          []string `json:"topics"`
	Authors         []string `json:"authors"`
}

func (e Entry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Title, catalog.TitleRules()...),
		validation.Field(&e.ISBN, catalog.ISBNRules()...),
		validation.Field(&e.Description, catalog.DescriptionRules()...),
		validation.Field(&e.PublicationDate, catalog.PublicationMonthRules()...),
		validation.Field(&e.Topics,
			validation.Required.Error("at least one topic is required"),
			catalog.NonEmptyNamesRule("topics"),
		),
		validation.Field(&e.Authors,
			validation.Required.Error("at least one author is required"),
			catalog.NonEmptyNamesRule("authors"),
		),
	)
}

// Input converts the entry into a catalog write.
func (e Entry) Input() (catalog.BookInput, error) {
	published, err := catalog.ParsePublicationMonth(e.PublicationDate)
	if err != nil {
		return catalog.BookInput{}, err
	}
	return catalog.BookInput{
		Title:       strings.TrimSpace(e.Title),
		ISBN:        e.ISBN,
		Description: e.Description,
		Published:   published,
		Topics:      e.Topics,
		Authors:     e.Authors,
	}, nil
}

// BookWriter adds books to the catalog.
type BookWriter interface {
	AddBook(ctx context.Context, in catalog.BookInput) (*entities.Book, error)
}

// ISBNLookup finds an existing book by ISBN.
type ISBNLookup interface {
	BookByISBN(ctx context.Context, isbn string) (*entities.Book, error)
}

// Result summarizes a seed run.
type Result struct {
	Added   int
	Skipped int
}

// Load reads and decodes a seed file.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return entries, nil
}

// Run adds every entry whose ISBN is not in the catalog yet. Each entry is its
// own transaction; the first invalid or failing entry stops the run.
func Run(ctx context.Context, writer BookWriter, lookup ISBNLookup, entries []Entry) (*Result, error) {
	result := &Result{}

	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return result, fmt.Errorf("entry %d (%q): %w", i, entry.Title, err)
		}

		_, err := lookup.BookByISBN(ctx, entry.ISBN)
		if err == nil {
			log.Debug().Str("isbn", entry.ISBN).Msg("seed entry already present, skipping")
			result.Skipped++
			continue
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return result, err
		}

		in, err := entry.Input()
		if err != nil {
			return result, fmt.Errorf("entry %d (%q): %w", i, entry.Title, err)
		}
		book, err := writer.AddBook(ctx, in)
		if err != nil {
			return result, fmt.Errorf("entry %d (%q): %w", i, entry.Title, err)
		}

		log.Info().Str("slug", book.Slug).Msg("seeded book")
		result.Added++
	}

	return result, nil
}
