package auth

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	switch {
	case path == "", !strings.HasPrefix(path, "/"):
		return false
	case strings.HasPrefix(path, "//"): // protocol-relative
		return false
	case strings.Contains(path, "://"), strings.Contains(path, "\\"):
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// LoginAuditor records login attempts.
type LoginAuditor interface {
	Record(actor string, action entities.AuditAction, entityType, entitySlug, details string, err error)
}

// AuthControllerConfig holds the dependencies of the login endpoints.
type AuthControllerConfig struct {
	Auth           config.Auth
	SessionManager *SessionManager
	GitHub         *GitHubProvider    // required in github mode
	Templates      *template.Template // nil renders JSON
	Auditor        LoginAuditor       // optional
}

// AuthController handles the login endpoints.
type AuthController struct {
	cfg            config.Auth
	sessionManager *SessionManager
	github         *GitHubProvider
	templates      *template.Template
	auditor        LoginAuditor
	rateLimiter    *RateLimiter
}

func NewAuthController(cfg AuthControllerConfig) *AuthController {
	ac := &AuthController{
		cfg:            cfg.Auth,
		sessionManager: cfg.SessionManager,
		github:         cfg.GitHub,
		templates:      cfg.Templates,
		auditor:        cfg.Auditor,
	}
	if cfg.Auth.Mode == config.AuthModeLocal {
		ac.rateLimiter = NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.Auth.MaxLoginAttempts,
			WindowDuration:  cfg.Auth.RateLimitWindow,
			LockoutDuration: cfg.Auth.LockoutDuration,
		})
	}
	return ac
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.GET("/logout", ac.Logout)
	router.POST("/logout", ac.Logout)
	router.GET("/github-callback", ac.GitHubCallback)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

// LoginPage shows the login form in local mode and starts the OAuth flow in
// github mode.
func (ac *AuthController) LoginPage(c *gin.Context) {
	next := sanitizeRedirectPath(c.Query("next"))

	if ac.cfg.Mode == config.AuthModeNone || ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, next)
		return
	}

	if ac.cfg.Mode == config.AuthModeGitHub {
		state, err := randomState()
		if err != nil {
			log.Error().Err(err).Msg("failed to generate oauth state")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ac.sessionManager.SetOAuthState(c.Request, state)
		ac.sessionManager.Put(c.Request.Context(), SessionKeyLoginNext, next)
		c.Redirect(http.StatusFound, ac.github.AuthCodeURL(state))
		return
	}

	ac.renderLogin(c, http.StatusOK, gin.H{"Next": next, "Error": c.Query("error")})
}

// Login checks the maintainer credentials (local mode only).
func (ac *AuthController) Login(c *gin.Context) {
	if ac.cfg.Mode != config.AuthModeLocal {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		ac.renderLogin(c, http.StatusTooManyRequests, gin.H{
			"Next":     next,
			"Username": username,
			"Error":    "Too many login attempts. Please try again later.",
		})
		return
	}

	if err := ac.checkCredentials(username, password); err != nil {
		ac.rateLimiter.RecordFailure(clientIP, username)
		ac.audit(username, "local", err)
		ac.renderLogin(c, http.StatusUnauthorized, gin.H{
			"Next":     next,
			"Username": username,
			"Error":    "Invalid username or password",
		})
		return
	}
	ac.rateLimiter.RecordSuccess(clientIP, username)

	if err := ac.sessionManager.CreateSession(c.Request, username, "local"); err != nil {
		log.Error().Err(err).Msg("failed to create session")
		ac.renderLogin(c, http.StatusInternalServerError, gin.H{
			"Next":     next,
			"Username": username,
			"Error":    "Failed to create session",
		})
		return
	}
	ac.audit(username, "local", nil)
	ac.sessionManager.AddFlash(c.Request, "success", "Login successful.")

	c.Redirect(http.StatusFound, next)
}

var errUnknownMaintainer = errors.New("unknown maintainer")

func (ac *AuthController) checkCredentials(username, password string) error {
	if ac.cfg.MaintainerPasswordHash == "" {
		return errors.New("maintainer password hash is not configured")
	}
	if username != ac.cfg.MaintainerUsername {
		// Compare anyway so response time does not depend on the username.
		_ = CheckPassword(password, ac.cfg.MaintainerPasswordHash)
		return errUnknownMaintainer
	}
	return CheckPassword(password, ac.cfg.MaintainerPasswordHash)
}

// GitHubCallback finishes the OAuth flow started by LoginPage.
func (ac *AuthController) GitHubCallback(c *gin.Context) {
	if ac.cfg.Mode != config.AuthModeGitHub {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	expected := ac.sessionManager.PopOAuthState(c.Request)
	if expected == "" || c.Query("state") != expected {
		ac.audit("", "github", ErrOAuthState)
		c.String(http.StatusUnauthorized, "Invalid state parameter.")
		return
	}

	login, err := ac.github.Identify(c.Request.Context(), c.Query("code"))
	if err != nil {
		log.Error().Err(err).Msg("github login failed")
		ac.audit("", "github", err)
		c.String(http.StatusUnauthorized, "GitHub login failed.")
		return
	}
	if !ac.github.Allowed(login) {
		ac.audit(login, "github", ErrLoginForbidden)
		c.String(http.StatusForbidden, "This GitHub account may not maintain the bookshelf.")
		return
	}

	next := sanitizeRedirectPath(ac.sessionManager.PopString(c.Request.Context(), SessionKeyLoginNext))
	if err := ac.sessionManager.CreateSession(c.Request, login, "github"); err != nil {
		log.Error().Err(err).Msg("failed to create session")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	ac.audit(login, "github", nil)
	ac.sessionManager.AddFlash(c.Request, "success", "Login successful.")

	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and returns to the overview.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		if err := ac.sessionManager.DestroySession(c.Request); err != nil {
			log.Warn().Err(err).Msg("failed to destroy session")
		}
		ac.sessionManager.AddFlash(c.Request, "success", "Logout successful.")
	}
	c.Redirect(http.StatusFound, "/")
}

func (ac *AuthController) audit(actor, provider string, err error) {
	if ac.auditor == nil {
		return
	}
	ac.auditor.Record(actor, entities.AuditActionLogin, "session", "", "provider="+provider, err)
}

// renderLogin renders login.html or falls back to JSON.
func (ac *AuthController) renderLogin(c *gin.Context, status int, data gin.H) {
	data["Title"] = "Login"
	data["CSRFToken"] = GetCSRFToken(c)
	data["CSRFFieldName"] = CSRFFieldName

	if ac.templates == nil {
		c.JSON(status, data)
		return
	}

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := ac.templates.ExecuteTemplate(c.Writer, "login.html", data); err != nil {
		log.Error().Err(err).Msg("failed to render login page")
	}
}
