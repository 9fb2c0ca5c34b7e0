package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dahbi-Dev/Excel-easy/internal/repository/sqlstore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
store:
  driver: sqlite
  sqlite_path: /tmp/excel-easy.db
session:
  secret: from-file
entry:
  autosave_delay: 250ms
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Session.Secret)
	assert.Equal(t, 250*time.Millisecond, cfg.Entry.AutosaveDelay)

	// defaults
	assert.Equal(t, "workspace", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxUploadSize)
	assert.Equal(t, "Export des dossiers patients", cfg.Mail.Subject)
	assert.Equal(t, "excel_easy", cfg.Monitoring.Namespace)

	sql := cfg.ToSQLConfig()
	assert.Equal(t, sqlstore.DriverSQLite, sql.Driver)
	assert.Equal(t, "/tmp/excel-easy.db", sql.Path)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
session:
  secret: from-file
store:
  driver: memory
`)
	t.Setenv("EXCELEASY_SESSION_SECRET", "from-env")
	t.Setenv("EXCELEASY_STORE_DRIVER", "postgres")
	t.Setenv("EXCELEASY_DB_HOST", "db.internal")
	t.Setenv("EXCELEASY_DB_PORT", "6543")
	t.Setenv("EXCELEASY_STORE_ENCRYPTION_KEY", "00112233445566778899aabbccddeeff")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Session.Secret)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, "00112233445566778899aabbccddeeff", cfg.Store.EncryptionKey)

	sql := cfg.ToSQLConfig()
	assert.Equal(t, sqlstore.DriverPostgres, sql.Driver)
	assert.Equal(t, "db.internal", sql.Host)
	assert.Equal(t, 6543, sql.Port)
}

func TestValidate(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "store:\n  driver: memory\n"))
	assert.ErrorContains(t, err, "session.secret")

	_, err = LoadFile(writeConfig(t, "session:\n  secret: s\nstore:\n  driver: cassandra\n"))
	assert.ErrorContains(t, err, "unknown store driver")

	_, err = LoadFile(writeConfig(t, "session:\n  secret: s\nmail:\n  enabled: true\n  host: \"\"\n"))
	assert.ErrorContains(t, err, "mail.host")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestToRedisAndMailConfig(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
session:
  secret: s
store:
  driver: redis
  redis:
    url: redis://cache:6379/1
mail:
  host: smtp.local
  from: exports@local
`))
	require.NoError(t, err)

	assert.Equal(t, "redis://cache:6379/1", cfg.ToRedisConfig().URL)
	assert.Equal(t, 3, cfg.ToRedisConfig().MaxRetries)

	mail := cfg.ToMailConfig()
	assert.Equal(t, "smtp.local", mail.Host)
	assert.Equal(t, 587, mail.Port)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("store:\n  driver: memory\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("EXCELEASY_SESSION_SECRET=from-dotenv\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	require.NoError(t, os.Unsetenv("EXCELEASY_SESSION_SECRET"))
	t.Cleanup(func() {
		os.Unsetenv("EXCELEASY_SESSION_SECRET")
		os.Chdir(wd)
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Session.Secret)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
}
