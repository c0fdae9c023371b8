package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// IntegrityController exposes the catalog integrity check to the maintainer.
// Repairs run inline or, when a task queue is configured, in the background.
type IntegrityController struct {
	*views
	integrity IntegrityChecker
	auditor   Auditor
	auditLog  AuditLog
	queue     TaskQueue
	sweep     SweepInfo
}

func NewIntegrityController(cfg RouterConfig, v *views) *IntegrityController {
	return &IntegrityController{
		views:     v,
		integrity: cfg.Integrity,
		auditor:   cfg.Auditor,
		auditLog:  cfg.AuditLog,
		queue:     cfg.TaskQueue,
		sweep:     cfg.Sweep,
	}
}

// IntegrityPage scans the catalog and lists recent repairs.
// GET /admin/integrity
func (ic *IntegrityController) IntegrityPage(c *gin.Context) {
	report, err := ic.integrity.Scan(c.Request.Context())
	if err != nil {
		ic.renderError(c, err, "integrity scan")
		return
	}

	if wantsJSONResponse(c) {
		c.IndentedJSON(http.StatusOK, report)
		return
	}

	var repairs []entities.AuditEvent
	if ic.auditLog != nil {
		repairs, err = ic.auditLog.GetEventsByAction(entities.AuditActionRepair, 10)
		if err != nil {
			ic.renderError(c, err, "load repairs")
			return
		}
	}

	data := gin.H{
		"Title":      "Integrity",
		"Report":     report,
		"Clean":      report.Clean(),
		"Repairs":    repairs,
		"CanQueue":   ic.queue != nil,
		"QueuedTask": c.Query("task"),
	}
	if ic.sweep != nil && ic.sweep.IsRunning() {
		data["NextSweep"] = ic.sweep.NextRunTime()
	}
	ic.render(c, http.StatusOK, "integrity", data)
}

// RunRepair removes dangling links and prunes orphans.
// POST /admin/integrity
func (ic *IntegrityController) RunRepair(c *gin.Context) {
	actor := auth.GetMaintainer(c)

	if c.PostForm("mode") == "background" && ic.queue != nil {
		taskID, err := ic.queue.EnqueueIntegrity(true, actor)
		if err != nil {
			ic.renderError(c, err, "enqueue repair")
			return
		}
		ic.redirectWithFlash(c, "/admin/integrity?task="+url.QueryEscape(taskID), flashInfo, "Repair queued.")
		return
	}

	result, err := ic.integrity.Repair(c.Request.Context())
	if ic.auditor != nil {
		ic.auditor.Record(actor, entities.AuditActionRepair, "catalog", "", tasks.DescribeRepair(result), err)
	}
	if err != nil {
		ic.renderError(c, err, "integrity repair")
		return
	}

	ic.redirectWithFlash(c, "/admin/integrity", flashSuccess, "Repair complete: "+tasks.DescribeRepair(result)+".")
}

func wantsJSONResponse(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}
