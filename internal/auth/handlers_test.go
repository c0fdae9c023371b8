package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type recordedLogin struct {
	actor string
	err   error
}

type fakeLoginAuditor struct {
	mu     sync.Mutex
	logins []recordedLogin
}

func (f *fakeLoginAuditor) Record(actor string, action entities.AuditAction, _, _, _ string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if action == entities.AuditActionLogin {
		f.logins = append(f.logins, recordedLogin{actor: actor, err: err})
	}
}

func setupLoginRouter(t *testing.T, cfg config.Auth, gh *GitHubProvider) (*gin.Engine, *fakeLoginAuditor) {
	t.Helper()

	sm := setupSessionManager(t)
	auditor := &fakeLoginAuditor{}
	ac := NewAuthController(AuthControllerConfig{
		Auth:           cfg,
		SessionManager: sm,
		GitHub:         gh,
		Auditor:        auditor,
	})
	t.Cleanup(ac.Stop)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	mw := NewMiddleware(sm, cfg.Mode)
	router.Use(mw.Handler())
	ac.RegisterRoutes(router)
	router.GET("/whoami", whoami)
	return router, auditor
}

func postLogin(router *gin.Engine, username, password, next string) *httptest.ResponseRecorder {
	form := url.Values{"username": {username}, "password": {password}, "next": {next}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func localConfig(t *testing.T) config.Auth {
	t.Helper()
	hash, err := HashPassword("correct-horse-battery", bcrypt.MinCost)
	require.NoError(t, err)

	cfg := testAuthConfig(config.AuthModeLocal)
	cfg.MaintainerPasswordHash = hash
	return cfg
}

func TestAuthController_LocalLoginFlow(t *testing.T) {
	router, auditor := setupLoginRouter(t, localConfig(t), nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login?next=/add", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"Next":"/add"`)

	rr = postLogin(router, "maintainer", "correct-horse-battery", "/add")
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/add", rr.Header().Get("Location"))
	cookie := sessionCookie(t, rr)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Contains(t, rr.Body.String(), `"maintainer":"maintainer"`)

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusFound, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Contains(t, rr.Body.String(), `"maintainer":""`)

	require.Len(t, auditor.logins, 1)
	assert.Equal(t, "maintainer", auditor.logins[0].actor)
	assert.NoError(t, auditor.logins[0].err)
}

func TestAuthController_LocalLoginRejectsBadCredentials(t *testing.T) {
	router, auditor := setupLoginRouter(t, localConfig(t), nil)

	rr := postLogin(router, "maintainer", "wrong-password-here", "/")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid username or password")

	rr = postLogin(router, "intruder", "correct-horse-battery", "/")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	require.Len(t, auditor.logins, 2)
	assert.Error(t, auditor.logins[0].err)
}

func TestAuthController_LocalLoginRateLimited(t *testing.T) {
	router, _ := setupLoginRouter(t, localConfig(t), nil)

	for i := 0; i < 3; i++ {
		rr := postLogin(router, "maintainer", "wrong-password-here", "/")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}

	rr := postLogin(router, "maintainer", "correct-horse-battery", "/")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestAuthController_OpenRedirectIsNeutralised(t *testing.T) {
	router, _ := setupLoginRouter(t, localConfig(t), nil)

	rr := postLogin(router, "maintainer", "correct-horse-battery", "//evil.example")
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestAuthController_NoAuthModeSkipsLogin(t *testing.T) {
	router, _ := setupLoginRouter(t, testAuthConfig(config.AuthModeNone), nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusFound, rr.Code)

	rr = postLogin(router, "maintainer", "whatever-password", "/")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// fakeGitHub serves the token and user endpoints of the OAuth flow.
func fakeGitHub(t *testing.T, login string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"bad_verification_code"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"gho_test","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"login":%q}`, login)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testGitHubProvider(srv *httptest.Server, allowed ...string) *GitHubProvider {
	p := NewGitHubProvider(config.GitHub{
		ClientID:      "client",
		ClientSecret:  "secret",
		RedirectURL:   "http://localhost/github-callback",
		AllowedLogins: allowed,
	})
	p.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/login/oauth/authorize",
		TokenURL:  srv.URL + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	p.apiBaseURL = srv.URL
	return p
}

// startGitHubLogin runs GET /login and returns the state and session cookie.
func startGitHubLogin(t *testing.T, router *gin.Engine) (string, *http.Cookie) {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/login?next=/admin/audit", nil))
	require.Equal(t, http.StatusFound, rr.Code)

	location, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login/oauth/authorize", location.Path)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	return state, sessionCookie(t, rr)
}

func TestAuthController_GitHubFlow(t *testing.T) {
	srv := fakeGitHub(t, "octocat")
	router, auditor := setupLoginRouter(t, testAuthConfig(config.AuthModeGitHub), testGitHubProvider(srv, "OctoCat"))

	state, cookie := startGitHubLogin(t, router)

	req := httptest.NewRequest(http.MethodGet, "/github-callback?code=good-code&state="+state, nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusFound, rr.Code, rr.Body.String())
	assert.Equal(t, "/admin/audit", rr.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(sessionCookie(t, rr))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Contains(t, rr.Body.String(), `"maintainer":"octocat"`)

	require.Len(t, auditor.logins, 1)
	assert.NoError(t, auditor.logins[0].err)
}

func TestAuthController_GitHubStateMismatch(t *testing.T) {
	srv := fakeGitHub(t, "octocat")
	router, _ := setupLoginRouter(t, testAuthConfig(config.AuthModeGitHub), testGitHubProvider(srv))

	_, cookie := startGitHubLogin(t, router)

	req := httptest.NewRequest(http.MethodGet, "/github-callback?code=good-code&state=forged", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthController_GitHubLoginNotAllowed(t *testing.T) {
	srv := fakeGitHub(t, "mallory")
	router, auditor := setupLoginRouter(t, testAuthConfig(config.AuthModeGitHub), testGitHubProvider(srv, "octocat"))

	state, cookie := startGitHubLogin(t, router)

	req := httptest.NewRequest(http.MethodGet, "/github-callback?code=good-code&state="+state, nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	require.Len(t, auditor.logins, 1)
	assert.ErrorIs(t, auditor.logins[0].err, ErrLoginForbidden)
}

func TestAuthController_GitHubBadCode(t *testing.T) {
	srv := fakeGitHub(t, "octocat")
	router, _ := setupLoginRouter(t, testAuthConfig(config.AuthModeGitHub), testGitHubProvider(srv))

	state, cookie := startGitHubLogin(t, router)

	req := httptest.NewRequest(http.MethodGet, "/github-callback?code=bad&state="+state, nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGitHubProvider_Allowed(t *testing.T) {
	open := NewGitHubProvider(config.GitHub{})
	assert.True(t, open.Allowed("anyone"))

	restricted := NewGitHubProvider(config.GitHub{AllowedLogins: []string{"Octocat"}})
	assert.True(t, restricted.Allowed("octocat"))
	assert.False(t, restricted.Allowed("hubot"))
}
