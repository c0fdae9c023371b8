// Package auth decides who may change the catalog.
//
// Reading the catalog is always public. Writes require a maintainer, and
// who counts as one depends on AUTH_MODE:
//   - "none": every visitor is the maintainer (default, for local use)
//   - "local": a single maintainer account configured by username and bcrypt hash
//   - "github": GitHub OAuth2 login, optionally limited to an allow-list of logins
//
// # Configuration
//
//	AUTH_MODE=local
//	AUTH_MAINTAINER_USERNAME=maintainer
//	AUTH_MAINTAINER_PASSWORD_HASH=$2a$12$...   # bookshelf hash-password
//	AUTH_SESSION_SECRET=<hex-32-bytes>         # Auto-generated if empty
//	AUTH_SECURE_COOKIES=true                   # HTTPS-only cookies
//
//	AUTH_MODE=github
//	GITHUB_CLIENT_ID=...
//	GITHUB_CLIENT_SECRET=...
//	GITHUB_ALLOWED_LOGINS=octocat,hubot
//
// Sessions live in the catalog database (scs + sqlite3store). Forms are
// protected by gorilla/csrf whenever a session secret is in use.
//
// # Usage
//
//	router.Use(sessions.SessionLoadSave())
//	router.Use(middleware.Handler())
//	router.POST("/add", middleware.RequireMaintainer(), handler)
//
// Handlers read the acting maintainer with auth.GetMaintainer(c).
package auth
