package config_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/career-simulator/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "./simulator.db", cfg.Database.Path)
	assert.Empty(t, cfg.Report.LeftLogo)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SIMULATOR_SERVER_PORT", "9090")
	t.Setenv("SIMULATOR_SERVER_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("SIMULATOR_SERVER_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SIMULATOR_DATABASE_PATH", ":memory:")
	t.Setenv("SIMULATOR_LOG_FORMAT", "json")
	t.Setenv("SIMULATOR_LOG_LEVEL", "debug")
	t.Setenv("SIMULATOR_REPORT_LEFT_LOGO", "/srv/logo.png")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "/srv/logo.png", cfg.Report.LeftLogo)

	var buf bytes.Buffer
	cfg.NewLogger(&buf).Debug("hola", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hola"`)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"port not a number": {"SIMULATOR_SERVER_PORT", "eighty"},
		"port out of range": {"SIMULATOR_SERVER_PORT", "70000"},
		"bad duration":      {"SIMULATOR_SERVER_READ_TIMEOUT", "soon"},
		"bad level":         {"SIMULATOR_LOG_LEVEL", "loud"},
		"bad format":        {"SIMULATOR_LOG_FORMAT", "xml"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
