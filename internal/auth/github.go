package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/mrlokans/bookshelf/internal/config"
)

const defaultGitHubAPI = "https://api.github.com"

var (
	ErrOAuthState     = errors.New("oauth state mismatch")
	ErrLoginForbidden = errors.New("github login is not an allowed maintainer")
)

// GitHubProvider runs the OAuth2 code flow against GitHub and resolves the
// login of the person who authorized.
type GitHubProvider struct {
	oauth      *oauth2.Config
	apiBaseURL string
	allowed    map[string]bool
}

func NewGitHubProvider(cfg config.GitHub) *GitHubProvider {
	allowed := make(map[string]bool, len(cfg.AllowedLogins))
	for _, login := range cfg.AllowedLogins {
		allowed[strings.ToLower(login)] = true
	}

	return &GitHubProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: defaultGitHubAPI,
		allowed:    allowed,
	}
}

// AuthCodeURL is where the browser is sent to authorize.
func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Allowed reports whether login may maintain the catalog. An empty
// allow-list admits everyone.
func (p *GitHubProvider) Allowed(login string) bool {
	if len(p.allowed) == 0 {
		return true
	}
	return p.allowed[strings.ToLower(login)]
}

// Identify exchanges the authorization code and returns the GitHub login.
func (p *GitHubProvider) Identify(ctx context.Context, code string) (string, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+"/user", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch github user: unexpected status %d", resp.StatusCode)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decode github user: %w", err)
	}
	if user.Login == "" {
		return "", errors.New("github user has no login")
	}
	return user.Login, nil
}
