package entities

import "time"

type AuditAction string

const (
	AuditActionBookAdd     AuditAction = "book_add"
	AuditActionBookUpdate  AuditAction = "book_update"
	AuditActionBookDelete  AuditAction = "book_delete"
	AuditActionTopicUpdate AuditAction = "topic_update"
	AuditActionTopicDelete AuditAction = "topic_delete"
	AuditActionSeed        AuditAction = "seed"
	AuditActionRepair      AuditAction = "integrity_repair"
	AuditActionLogin       AuditAction = "login"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Action     AuditAction `gorm:"index;size:50" json:"action"`
	EntityType string      `gorm:"size:20" json:"entity_type"` // "book", "topic"
	EntitySlug string      `gorm:"size:120" json:"entity_slug,omitempty"`
	Actor      string      `gorm:"index;size:100" json:"actor"`
	Details    string      `gorm:"size:500" json:"details,omitempty"`
	Status     AuditStatus `gorm:"size:20" json:"status"`
	ErrorMsg   string      `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt  time.Time   `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
