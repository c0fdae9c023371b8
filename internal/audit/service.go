package audit

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Service records maintainer writes after their transaction has finished.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// Record stores the outcome of a catalog write. Audit failures are logged and
// never surface to the caller.
func (s *Service) Record(actor string, action entities.AuditAction, entityType, entitySlug, details string, err error) {
	event := &entities.AuditEvent{
		Action:     action,
		EntityType: entityType,
		EntitySlug: entitySlug,
		Actor:      actor,
		Details:    truncate(details, 500),
		Status:     entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	if logErr := s.repo.LogEvent(event); logErr != nil {
		log.Error().Err(logErr).Str("action", string(action)).Msg("failed to record audit event")
	}
}

// RecordDelete stores a delete together with what it cascaded to.
func (s *Service) RecordDelete(actor string, action entities.AuditAction, entityType, entitySlug string, books, authors, topics int, err error) {
	details := fmt.Sprintf("books=%d pruned_authors=%d pruned_topics=%d", books, authors, topics)
	s.Record(actor, action, entityType, entitySlug, details, err)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// GetEventsByAction retrieves the most recent events of one action.
func (s *Service) GetEventsByAction(action entities.AuditAction, limit int) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsByAction(action, limit)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
