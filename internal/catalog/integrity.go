package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database/authors"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/topics"
)

// IntegrityReport describes rows that break the catalog invariants.
type IntegrityReport struct {
	OrphanAuthors       []uint    `json:"orphan_authors"`
	OrphanTopics        []uint    `json:"orphan_topics"`
	DanglingTopicLinks  int64     `json:"dangling_topic_links"`
	DanglingAuthorLinks int64     `json:"dangling_author_links"`
	DuplicateBookSlugs  []string  `json:"duplicate_book_slugs"`
	DuplicateTopicSlugs []string  `json:"duplicate_topic_slugs"`
	CheckedAt           time.Time `json:"checked_at"`
}

// Clean reports whether no problem was found.
func (r *IntegrityReport) Clean() bool {
	return len(r.OrphanAuthors) == 0 &&
		len(r.OrphanTopics) == 0 &&
		r.DanglingTopicLinks == 0 &&
		r.DanglingAuthorLinks == 0 &&
		len(r.DuplicateBookSlugs) == 0 &&
		len(r.DuplicateTopicSlugs) == 0
}

// RepairResult counts what Repair removed.
type RepairResult struct {
	TopicLinksRemoved  int64  `json:"topic_links_removed"`
	AuthorLinksRemoved int64  `json:"author_links_removed"`
	PrunedAuthors      []uint `json:"pruned_authors"`
	PrunedTopics       []uint `json:"pruned_topics"`
}

// Integrity checks and restores the link-row invariants.
type Integrity struct {
	db *gorm.DB
}

func NewIntegrity(db *gorm.DB) *Integrity {
	return &Integrity{db: db}
}

// Scan inspects the catalog without changing it.
func (i *Integrity) Scan(ctx context.Context) (*IntegrityReport, error) {
	db := i.db.WithContext(ctx)
	bookRepo := books.NewRepository(db)
	topicRepo := topics.NewRepository(db)

	report := &IntegrityReport{CheckedAt: time.Now().UTC()}
	var err error

	if report.OrphanAuthors, err = authors.NewRepository(db).OrphanIDs(); err != nil {
		return nil, persistenceError("scan authors", err)
	}
	if report.OrphanTopics, err = topicRepo.OrphanIDs(); err != nil {
		return nil, persistenceError("scan topics", err)
	}
	if report.DanglingTopicLinks, err = bookRepo.CountDanglingTopicLinks(); err != nil {
		return nil, persistenceError("scan topic links", err)
	}
	if report.DanglingAuthorLinks, err = bookRepo.CountDanglingAuthorLinks(); err != nil {
		return nil, persistenceError("scan author links", err)
	}
	if report.DuplicateBookSlugs, err = bookRepo.DuplicateSlugs(); err != nil {
		return nil, persistenceError("scan book slugs", err)
	}
	if report.DuplicateTopicSlugs, err = topicRepo.DuplicateSlugs(); err != nil {
		return nil, persistenceError("scan topic slugs", err)
	}

	return report, nil
}

// Repair removes dangling link rows and prunes orphan authors and topics in
// one transaction. Duplicate slugs are left for the maintainer to rename.
func (i *Integrity) Repair(ctx context.Context) (*RepairResult, error) {
	result := &RepairResult{}
	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookRepo := books.NewRepository(tx)

		var err error
		if result.TopicLinksRemoved, err = bookRepo.DeleteDanglingTopicLinks(); err != nil {
			return err
		}
		if result.AuthorLinksRemoved, err = bookRepo.DeleteDanglingAuthorLinks(); err != nil {
			return err
		}
		if result.PrunedAuthors, err = pruneAuthors(authors.NewRepository(tx)); err != nil {
			return err
		}
		if result.PrunedTopics, err = pruneTopics(topics.NewRepository(tx)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, classify("repair catalog", err)
	}

	log.Info().
		Int64("topic_links", result.TopicLinksRemoved).
		Int64("author_links", result.AuthorLinksRemoved).
		Int("authors", len(result.PrunedAuthors)).
		Int("topics", len(result.PrunedTopics)).
		Msg("catalog repaired")
	return result, nil
}
