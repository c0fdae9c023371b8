package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testApp wires a router to a real catalog in a temporary SQLite file.
type testApp struct {
	db         *database.Database
	reader     *catalog.Reader
	maintainer *catalog.Maintainer
	audit      *audit.Service
	router     *gin.Engine
}

type appOption func(*RouterConfig)

func withMode(mode config.AuthMode) appOption {
	return func(cfg *RouterConfig) { cfg.AuthConfig.Mode = mode }
}

func withTaskQueue(queue TaskQueue) appOption {
	return func(cfg *RouterConfig) { cfg.TaskQueue = queue }
}

func setupApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "bookshelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	authCfg := config.Auth{
		Mode:               config.AuthModeNone,
		SessionLifetime:    time.Hour,
		MaintainerUsername: "maintainer",
		MaxLoginAttempts:   5,
		RateLimitWindow:    time.Minute,
		LockoutDuration:    time.Minute,
	}
	sessions, err := auth.NewSessionManager(sqlDB, authCfg)
	require.NoError(t, err)

	app := &testApp{
		db:         db,
		reader:     catalog.NewReader(db.DB),
		maintainer: catalog.NewMaintainer(db.DB),
		audit:      audit.NewService(auditrepo.NewRepository(db.DB)),
	}

	cfg := RouterConfig{
		Reader:         app.reader,
		Writer:         app.maintainer,
		Integrity:      catalog.NewIntegrity(db.DB),
		Database:       db,
		Auditor:        app.audit,
		AuditLog:       app.audit,
		AuthConfig:     authCfg,
		SessionManager: sessions,
		Version:        "test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	router, stop, err := NewRouter(cfg)
	require.NoError(t, err)
	t.Cleanup(stop)
	app.router = router
	return app
}

func (app *testApp) addBook(t *testing.T, title, topics, authors string, published time.Time) *entities.Book {
	t.Helper()
	book, err := app.maintainer.AddBook(context.Background(), catalog.BookInput{
		Title:     title,
		ISBN:      "9780000000000",
		Published: published,
		Topics:    []string{topics},
		Authors:   []string{authors},
	})
	require.NoError(t, err)
	return book
}

func (app *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)
	return rr
}

func (app *testApp) getJSON(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)
	return rr
}

func (app *testApp) post(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	app.router.ServeHTTP(rr, req)
	return rr
}

func (app *testApp) events(t *testing.T) []entities.AuditEvent {
	t.Helper()
	events, _, err := app.audit.GetEvents(100, 0)
	require.NoError(t, err)
	return events
}

func findSessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == "session" {
			return cookie
		}
	}
	return nil
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}
