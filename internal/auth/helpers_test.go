package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig(mode config.AuthMode) config.Auth {
	return config.Auth{
		Mode:               mode,
		SessionLifetime:    time.Hour,
		SecureCookies:      false,
		MaintainerUsername: "maintainer",
		MaxLoginAttempts:   3,
		RateLimitWindow:    time.Minute,
		LockoutDuration:    time.Minute,
	}
}

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	sm, err := NewSessionManager(sqlDB, testAuthConfig(config.AuthModeLocal))
	require.NoError(t, err)
	return sm
}

// sessionCookie pulls the session cookie out of a recorded response.
func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	t.Fatalf("no session cookie in response headers: %v", rr.Header())
	return nil
}

// whoami echoes the maintainer the middleware resolved.
func whoami(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"maintainer": GetMaintainer(c)})
}
