package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, LoopbackHost, cfg.HTTP.Host, "unauthenticated mode stays on loopback")
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, "maintainer", cfg.Auth.MaintainerUsername)
	assert.Equal(t, "30 3 * * *", cfg.IntegritySweep.Schedule)
	assert.Empty(t, cfg.GitHub.AllowedLogins)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("AUTH_MODE", "github")
	t.Setenv("GITHUB_ALLOWED_LOGINS", "octocat, hubot ,")
	t.Setenv("TASK_RELEASE_AFTER", "2m")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, DefaultHost, cfg.HTTP.Host)
	assert.Equal(t, AuthModeGitHub, cfg.Auth.Mode)
	assert.Equal(t, []string{"octocat", "hubot"}, cfg.GitHub.AllowedLogins)
	assert.Equal(t, 2*time.Minute, cfg.Tasks.ReleaseAfter)
}

func TestNewConfig_HostOverride(t *testing.T) {
	t.Setenv("HOST", "0.0.0.0")

	cfg := NewConfig()

	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
}

func TestNewConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_PATH=/tmp/from-dotenv.db\n"), 0o644))

	wd, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("DATABASE_PATH")
	})

	cfg := NewConfig()
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.Database.Path)
}
