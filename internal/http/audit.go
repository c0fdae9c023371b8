package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const auditPageSize = 25

type AuditController struct {
	*views
	log AuditLog
}

func NewAuditController(log AuditLog, v *views) *AuditController {
	return &AuditController{views: v, log: log}
}

// AuditLogPage renders the audit trail, newest first. Filtering by action
// shows only the most recent page of that action.
// GET /admin/audit
func (ac *AuditController) AuditLogPage(c *gin.Context) {
	page := parsePage(c)
	action := c.Query("action")

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if action != "" {
		page = 1
		events, err = ac.log.GetEventsByAction(entities.AuditAction(action), auditPageSize)
		total = int64(len(events))
	} else {
		events, total, err = ac.log.GetEvents(auditPageSize, (page-1)*auditPageSize)
	}
	if err != nil {
		ac.renderError(c, err, "load audit events")
		return
	}

	ac.render(c, http.StatusOK, "audit", gin.H{
		"Title":       "Audit log",
		"Events":      events,
		"CurrentPage": page,
		"TotalPages":  totalPages(total, auditPageSize),
		"TotalEvents": total,
		"Action":      action,
		"Actions":     auditActions(),
	})
}

type ActionOption struct {
	Value string
	Label string
}

func auditActions() []ActionOption {
	return []ActionOption{
		{Value: "", Label: "All actions"},
		{Value: string(entities.AuditActionBookAdd), Label: "Book added"},
		{Value: string(entities.AuditActionBookUpdate), Label: "Book edited"},
		{Value: string(entities.AuditActionBookDelete), Label: "Book deleted"},
		{Value: string(entities.AuditActionTopicUpdate), Label: "Topic edited"},
		{Value: string(entities.AuditActionTopicDelete), Label: "Topic deleted"},
		{Value: string(entities.AuditActionSeed), Label: "Seed"},
		{Value: string(entities.AuditActionRepair), Label: "Integrity repair"},
		{Value: string(entities.AuditActionLogin), Label: "Login"},
	}
}
