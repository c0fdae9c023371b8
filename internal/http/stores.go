package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// This file collects the interfaces the controllers depend on. The catalog,
// audit and tasks packages provide the production implementations.

// CatalogReader serves the public pages and the JSON export.
type CatalogReader interface {
	ListTopics(ctx context.Context) ([]catalog.TopicSummary, error)
	ListBooks(ctx context.Context, topicSlug string) ([]catalog.BookSummary, error)
	GetBookDetail(ctx context.Context, topicSlug, bookSlug string) (*catalog.BookDetail, error)
	ExportJSON(ctx context.Context, topicSlug string) (*catalog.Export, error)
	TopicBySlug(ctx context.Context, topicSlug string) (*entities.Topic, error)
}

// CatalogWriter performs maintainer writes.
type CatalogWriter interface {
	AddBook(ctx context.Context, in catalog.BookInput) (*entities.Book, error)
	UpdateBook(ctx context.Context, bookID uint, in catalog.BookUpdate) (*entities.Book, error)
	UpdateTopic(ctx context.Context, topicID uint, name string) (*entities.Topic, error)
	DeleteBook(ctx context.Context, bookID uint) (*catalog.DeleteResult, error)
	DeleteTopic(ctx context.Context, topicID uint) (*catalog.DeleteResult, error)
}

// IntegrityChecker inspects and repairs the catalog.
type IntegrityChecker interface {
	Scan(ctx context.Context) (*catalog.IntegrityReport, error)
	Repair(ctx context.Context) (*catalog.RepairResult, error)
}

// Auditor records maintainer actions.
type Auditor interface {
	Record(actor string, action entities.AuditAction, entityType, entitySlug, details string, err error)
	RecordDelete(actor string, action entities.AuditAction, entityType, entitySlug string, books, authors, topics int, err error)
}

// AuditLog reads the audit trail.
type AuditLog interface {
	GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByAction(action entities.AuditAction, limit int) ([]entities.AuditEvent, error)
}

// TaskQueue enqueues background integrity runs and reports their status.
type TaskQueue interface {
	EnqueueIntegrity(repair bool, actor string) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// SweepInfo describes the periodic integrity sweep.
type SweepInfo interface {
	IsRunning() bool
	NextRunTime() *time.Time
}
