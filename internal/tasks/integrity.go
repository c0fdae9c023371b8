package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// SweepActor is the audit actor for integrity runs nobody asked for.
const SweepActor = "scheduler"

// IntegrityChecker scans and repairs the catalog.
type IntegrityChecker interface {
	Scan(ctx context.Context) (*catalog.IntegrityReport, error)
	Repair(ctx context.Context) (*catalog.RepairResult, error)
}

// Recorder writes audit events.
type Recorder interface {
	Record(actor string, action entities.AuditAction, entityType, entitySlug, details string, err error)
}

// IntegrityTask scans the catalog and, when Repair is set, fixes what the
// scan found.
type IntegrityTask struct {
	Repair bool   `json:"repair"`
	Actor  string `json:"actor,omitempty"`
}

// Config returns the queue configuration for integrity tasks.
func (t IntegrityTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "catalog_integrity",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// IntegrityProcessor creates the processor for IntegrityTask. recorder may
// be nil.
func IntegrityProcessor(checker IntegrityChecker, recorder Recorder) backlite.QueueProcessor[IntegrityTask] {
	return func(ctx context.Context, task IntegrityTask) error {
		if checker == nil {
			return errors.New("integrity checker not configured")
		}

		report, err := checker.Scan(ctx)
		if err != nil {
			return fmt.Errorf("integrity scan: %w", err)
		}
		if report.Clean() {
			log.Info().Msg("integrity scan found no problems")
			return nil
		}

		log.Warn().
			Int("orphan_authors", len(report.OrphanAuthors)).
			Int("orphan_topics", len(report.OrphanTopics)).
			Int64("dangling_topic_links", report.DanglingTopicLinks).
			Int64("dangling_author_links", report.DanglingAuthorLinks).
			Strs("duplicate_book_slugs", report.DuplicateBookSlugs).
			Strs("duplicate_topic_slugs", report.DuplicateTopicSlugs).
			Msg("integrity scan found problems")

		if !task.Repair {
			return nil
		}

		actor := task.Actor
		if actor == "" {
			actor = SweepActor
		}

		result, err := checker.Repair(ctx)
		if recorder != nil {
			recorder.Record(actor, entities.AuditActionRepair, "catalog", "", DescribeRepair(result), err)
		}
		if err != nil {
			return fmt.Errorf("integrity repair: %w", err)
		}
		return nil
	}
}

// NewIntegrityQueue creates a backlite queue for integrity tasks.
func NewIntegrityQueue(checker IntegrityChecker, recorder Recorder) backlite.Queue {
	return backlite.NewQueue(IntegrityProcessor(checker, recorder))
}

// DescribeRepair summarises a repair for the audit trail.
func DescribeRepair(result *catalog.RepairResult) string {
	if result == nil {
		return ""
	}
	parts := []string{
		fmt.Sprintf("topic_links=%d", result.TopicLinksRemoved),
		fmt.Sprintf("author_links=%d", result.AuthorLinksRemoved),
		fmt.Sprintf("authors=%d", len(result.PrunedAuthors)),
		fmt.Sprintf("topics=%d", len(result.PrunedTopics)),
	}
	return strings.Join(parts, " ")
}
