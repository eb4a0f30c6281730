package db

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	p := writeConfig(t, `
mode: Dev
database:
  host: db
  dbname: tracker
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, ModeDev, cfg.Mode)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/api/v1", cfg.Server.BasePath)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, 40, cfg.DB.MaxOpenConns)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.Server.AllowOrigins)
	assert.False(t, cfg.TLSEnabled())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	p := writeConfig(t, `
mode: dev
server:
  read_timeout: 3s
database:
  host: db
  port: 3307
  dbname: tracker
  user: app
`)
	t.Setenv("DB_HOST", "mysql.internal")
	t.Setenv("DB_PORT", "13306")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("APP_MODE", "release")

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, ModeRelease, cfg.Mode)
	assert.Equal(t, "mysql.internal", cfg.DB.Host)
	assert.Equal(t, 13306, cfg.DB.Port)
	assert.Equal(t, "s3cret", cfg.DB.Password)
	assert.Equal(t, "app", cfg.DB.Username)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad mode", body: "mode: staging\ndatabase: {host: db, dbname: x}\n"},
		{name: "missing db", body: "mode: dev\n"},
		{name: "auth without secret", body: "mode: dev\ndatabase: {host: db, dbname: x}\nauth: {enabled: true}\n"},
		{name: "bad port env", body: "mode: dev\ndatabase: {host: db, dbname: x}\n", env: map[string]string{"DB_PORT": "abc"}},
		{name: "not yaml", body: "mode: [dev\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 3306, Username: "u", Password: "p", DBName: "tracker"}
	dsn := c.DSN(false)
	assert.Contains(t, dsn, "u:p@tcp(db:3306)/tracker")
	assert.Contains(t, dsn, "parseTime=true")
	assert.NotContains(t, dsn, "multiStatements")
	assert.Contains(t, c.DSN(true), "multiStatements=true")
}

func TestErrorClassification(t *testing.T) {
	dup := &mysql.MySQLError{Number: ErDupEntry, Message: "Duplicate entry '3' for key 'equipment_usage.uq_usage_open_equipment'"}
	wrapped := errors.Join(errors.New("insert usage"), dup)

	assert.True(t, IsDuplicateKey(wrapped))
	assert.True(t, IsDuplicateKeyOn(wrapped, "uq_usage_open_equipment"))
	assert.False(t, IsDuplicateKeyOn(wrapped, "PRIMARY"))

	assert.True(t, IsRowReferenced(&mysql.MySQLError{Number: ErRowIsReferenced}))
	assert.True(t, IsNoReferencedRow(&mysql.MySQLError{Number: ErNoReferencedRow}))
	assert.True(t, IsLockFailure(&mysql.MySQLError{Number: ErLockDeadlock}))
	assert.False(t, IsDuplicateKey(errors.New("plain")))
}
