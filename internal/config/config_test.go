package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.BindAddr)
	require.Equal(t, 16, cfg.Database.MaxConns)
	require.Equal(t, 5*time.Second, cfg.Database.AcquireTimeout)
	require.Equal(t, 5*time.Second, cfg.HeartbeatInterval)
	require.Equal(t, 10*time.Second, cfg.ClientTimeout)
	require.Equal(t, 5, cfg.Login.MaxFails)
	require.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	require.False(t, cfg.TrustProxy)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BIND_ADDR", "127.0.0.1:9000")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("HEARTBEAT_INTERVAL", "1s")
	t.Setenv("CLIENT_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.BindAddr)
	require.Equal(t, 4, cfg.Database.MaxConns)
	require.Equal(t, time.Second, cfg.HeartbeatInterval)
	require.Equal(t, 3*time.Second, cfg.ClientTimeout)
	require.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	require.True(t, cfg.TrustProxy)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=fromfile\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DB_NAME") })

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "fromfile", cfg.Database.Name)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestLoad_BadValues(t *testing.T) {
	t.Setenv("DB_PORT", "abc")
	t.Setenv("CLIENT_TIMEOUT", "soon")
	t.Setenv("TRUST_PROXY", "maybe")

	_, err := Load("")
	require.ErrorContains(t, err, "TRUST_PROXY")
	require.ErrorContains(t, err, "DB_PORT")
	require.ErrorContains(t, err, "CLIENT_TIMEOUT")
}

func TestValidate(t *testing.T) {
	t.Setenv("HEARTBEAT_INTERVAL", "10s")
	t.Setenv("CLIENT_TIMEOUT", "10s")
	_, err := Load("")
	require.ErrorContains(t, err, "HEARTBEAT_INTERVAL")

	t.Setenv("HEARTBEAT_INTERVAL", "1s")
	t.Setenv("DB_MAX_CONNS", "0")
	_, err = Load("")
	require.ErrorContains(t, err, "DB_MAX_CONNS")
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p@ss", Name: "rugo", SSLMode: "disable"}
	require.Equal(t, "postgres://u:p%40ss@db:5433/rugo?sslmode=disable", d.DSN())
}
