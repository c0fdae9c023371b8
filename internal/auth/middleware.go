package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/config"
)

// Context keys for maintainer data
const (
	ContextKeyMaintainer = "auth_maintainer"
	ContextKeyAuthMode   = "auth_mode"
)

// LocalMaintainer is the actor recorded when authentication is disabled.
const LocalMaintainer = "local"

// Middleware resolves the maintainer for every request and guards the
// routes that change the catalog.
type Middleware struct {
	sessionManager *SessionManager
	mode           config.AuthMode
}

// NewMiddleware creates the authentication middleware. sessionManager may be
// nil only in "none" mode.
func NewMiddleware(sessionManager *SessionManager, mode config.AuthMode) *Middleware {
	return &Middleware{
		sessionManager: sessionManager,
		mode:           mode,
	}
}

// Handler stores the maintainer (if any) in the gin context. It never
// rejects a request: reading the catalog is public.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyAuthMode, m.mode)

		switch {
		case m.mode == config.AuthModeNone:
			c.Set(ContextKeyMaintainer, LocalMaintainer)
		case m.sessionManager != nil:
			if maintainer := m.sessionManager.GetMaintainer(c.Request); maintainer != "" {
				c.Set(ContextKeyMaintainer, maintainer)
			}
		}
		c.Next()
	}
}

// RequireMaintainer rejects requests that have no maintainer. Browsers
// asking for a page are sent to the login form; everything else gets 401.
func (m *Middleware) RequireMaintainer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsMaintainer(c) {
			c.Next()
			return
		}

		if c.Request.Method == http.MethodGet && !wantsJSON(c) {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "maintainer login required",
			})
			return
		}
		c.Data(http.StatusUnauthorized, "text/html; charset=utf-8", []byte(unauthorizedPage))
		c.Abort()
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

const unauthorizedPage = `<!DOCTYPE html>
<html>
<head><title>Login required</title></head>
<body style="font-family: system-ui; max-width: 400px; margin: 100px auto; text-align: center;">
<h1>Login required</h1>
<p>Only the maintainer can change the bookshelf.</p>
<p><a href="/login">Log in</a></p>
</body>
</html>`

// GetMaintainer returns the acting maintainer, or "" for anonymous readers.
func GetMaintainer(c *gin.Context) string {
	return c.GetString(ContextKeyMaintainer)
}

// IsMaintainer reports whether the request may change the catalog.
func IsMaintainer(c *gin.Context) bool {
	return GetMaintainer(c) != ""
}

// GetAuthMode returns the mode the middleware runs in.
func GetAuthMode(c *gin.Context) config.AuthMode {
	if v, exists := c.Get(ContextKeyAuthMode); exists {
		if mode, ok := v.(config.AuthMode); ok {
			return mode
		}
	}
	return config.AuthModeNone
}
