package http

import (
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Catalog
	Reader    CatalogReader
	Writer    CatalogWriter
	Integrity IntegrityChecker
	Database  *database.Database
	Auditor   Auditor   // optional
	AuditLog  AuditLog  // optional, enables /admin/audit
	TaskQueue TaskQueue // optional, enables background integrity runs
	Sweep     SweepInfo // optional

	// Authentication
	AuthConfig     config.Auth
	SessionManager *auth.SessionManager // required unless AuthConfig.Mode is none
	GitHub         *auth.GitHubProvider // required in github mode
	CSRFSecret     []byte               // empty disables CSRF protection

	// Application info
	Version string
}
