package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 90

// AuditPruner deletes old audit events.
type AuditPruner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// PruneAuditTask removes audit events older than RetentionDays.
type PruneAuditTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit prune tasks.
func (t PruneAuditTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_audit",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneAuditProcessor creates the processor for PruneAuditTask.
func PruneAuditProcessor(pruner AuditPruner) backlite.QueueProcessor[PruneAuditTask] {
	return func(ctx context.Context, task PruneAuditTask) error {
		if pruner == nil {
			return errors.New("audit pruner not configured")
		}

		days := task.RetentionDays
		if days <= 0 {
			days = DefaultAuditRetentionDays
		}

		deleted, err := pruner.DeleteOldEvents(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("prune audit events: %w", err)
		}

		log.Info().Int64("deleted", deleted).Int("retention_days", days).Msg("pruned audit events")
		return nil
	}
}

// NewPruneAuditQueue creates a backlite queue for audit prune tasks.
func NewPruneAuditQueue(pruner AuditPruner) backlite.Queue {
	return backlite.NewQueue(PruneAuditProcessor(pruner))
}
