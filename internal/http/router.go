package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// The returned stop function releases background resources held by the
// login rate limiter.
func NewRouter(cfg RouterConfig) (*gin.Engine, func(), error) {
	tmpl, err := ParseTemplates()
	if err != nil {
		return nil, nil, err
	}

	router := gin.New()
	router.Use(Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.AuthConfig.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.AuthConfig.SecureCookies))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	authMiddleware := auth.NewMiddleware(cfg.SessionManager, cfg.AuthConfig.Mode)
	router.Use(authMiddleware.Handler())
	requireMaintainer := authMiddleware.RequireMaintainer()

	router.SetHTMLTemplate(tmpl)

	v := &views{sessions: cfg.SessionManager}

	stop := func() {}
	if cfg.AuthConfig.Mode != config.AuthModeNone {
		authController := auth.NewAuthController(auth.AuthControllerConfig{
			Auth:           cfg.AuthConfig,
			SessionManager: cfg.SessionManager,
			GitHub:         cfg.GitHub,
			Templates:      tmpl,
			Auditor:        cfg.Auditor,
		})
		authController.RegisterRoutes(router)
		stop = authController.Stop
	}

	health := NewHealthController(cfg.Database, cfg.Sweep, cfg.Version)
	router.GET("/health", health.Status)

	// Public catalog
	catalogController := NewCatalogController(cfg.Reader, v)
	router.GET("/", catalogController.Overview)
	router.GET("/JSON", catalogController.ExportAll)
	router.GET("/topics/:topic", catalogController.TopicOverview)
	router.GET("/topics/:topic/JSON", catalogController.ExportTopic)
	router.GET("/topics/:topic/books/:book", catalogController.BookDetail)

	// Maintainer writes
	manage := NewManageController(cfg.Reader, cfg.Writer, cfg.Auditor, v)
	maintainer := router.Group("/", requireMaintainer)
	maintainer.GET("/add", manage.AddBookPage)
	maintainer.POST("/add", manage.AddBook)
	maintainer.GET("/topics/:topic/edit", manage.EditTopicPage)
	maintainer.POST("/topics/:topic/edit", manage.EditTopic)
	maintainer.GET("/topics/:topic/delete", manage.DeleteTopicPage)
	maintainer.POST("/topics/:topic/delete", manage.DeleteTopic)
	maintainer.GET("/topics/:topic/books/:book/edit", manage.EditBookPage)
	maintainer.POST("/topics/:topic/books/:book/edit", manage.EditBook)
	maintainer.GET("/topics/:topic/books/:book/delete", manage.DeleteBookPage)
	maintainer.POST("/topics/:topic/books/:book/delete", manage.DeleteBook)

	// Administration
	admin := router.Group("/admin", requireMaintainer)
	if cfg.Integrity != nil {
		integrity := NewIntegrityController(cfg, v)
		admin.GET("/integrity", integrity.IntegrityPage)
		admin.POST("/integrity", integrity.RunRepair)
	}
	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog, v)
		admin.GET("/audit", auditController.AuditLogPage)
	}
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		admin.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	router.NoRoute(func(c *gin.Context) {
		v.render(c, http.StatusNotFound, "error", gin.H{
			"Title":   "Not Found",
			"Status":  http.StatusNotFound,
			"Message": "The page you are looking for does not exist.",
		})
	})

	log.Debug().Str("auth_mode", string(cfg.AuthConfig.Mode)).Msg("router configured")
	return router, stop, nil
}
