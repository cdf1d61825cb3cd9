package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
database:
  host: db.local
  dbname: questionnaire
jwt:
  secret: short
  expire_hours: 2
storage:
  type: minio
questionnaire:
  allow_resubmit: true
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.True(t, cfg.Questionnaire.AllowResubmit)
	assert.Equal(t, "exports", cfg.Questionnaire.ExportPrefix)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.File)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, `
database:
  host: db.local
  dbname: questionnaire
jwt:
  secret: from-file
storage:
  type: minio
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_HOST", "db.env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "db.env", cfg.Database.Host)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	dir := writeConfig(t, `
storage:
  type: minio
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.host is required")
	assert.Contains(t, err.Error(), "jwt.secret is required")
}

func TestValidate_ReleaseSecretLength(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Mode: "release"},
		Database: DatabaseConfig{Host: "h", DBName: "d"},
		JWT:      JWTConfig{Secret: "too-short"},
	}
	assert.ErrorContains(t, cfg.Validate(), "too short")

	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.Validate())
}
