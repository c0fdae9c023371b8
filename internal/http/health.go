package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/database"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Time      string            `json:"time"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks"`
	NextSweep string            `json:"next_sweep,omitempty"`
}

type HealthController struct {
	db      *database.Database
	sweep   SweepInfo
	version string
}

// NewHealthController builds the /health handler. db and sweep may be nil.
func NewHealthController(db *database.Database, sweep SweepInfo, version string) *HealthController {
	return &HealthController{
		db:      db,
		sweep:   sweep,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	switch {
	case h.sweep == nil:
		checks["integrity_sweep"] = "disabled"
	case h.sweep.IsRunning():
		checks["integrity_sweep"] = "running"
		if next := h.sweep.NextRunTime(); next != nil {
			health.NextSweep = next.Format(time.RFC3339)
		}
	default:
		checks["integrity_sweep"] = "stopped"
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
