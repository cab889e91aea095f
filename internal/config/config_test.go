package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hr-assistant/server/internal/core"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.False(t, cfg.MetricsStdout)
	assert.Equal(t, "ollama", cfg.Oracle.Provider)
	assert.Equal(t, "llama3", cfg.Oracle.Ollama.Model)
	assert.Equal(t, "http://localhost:11434", cfg.Oracle.Ollama.BaseURL)
	assert.Equal(t, 180*time.Second, cfg.Workflow.Timeout)
	assert.Equal(t, "User", cfg.Workflow.FallbackName)
	assert.Equal(t, "policies.json", cfg.Policy.File)
	assert.Equal(t, 24*time.Hour, cfg.Transcript.TTL)
	assert.True(t, cfg.Database.ReadOnly)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "ENVIRONMENT=prod\n" +
		"SERVER_PORT=8088\n" +
		"DB_HOST=db.internal\n" +
		"DB_NAME=hr\n" +
		"OLLAMA_MODEL=mistral\n" +
		"WORKFLOW_TIMEOUT=30s\n" +
		"REDIS_URL=redis://localhost:6379/0\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	keys := []string{"ENVIRONMENT", "SERVER_PORT", "DB_HOST", "DB_NAME", "OLLAMA_MODEL", "WORKFLOW_TIMEOUT", "REDIS_URL"}
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, core.Production, cfg.Env())
	assert.Equal(t, "8088", cfg.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "mistral", cfg.Oracle.Ollama.Model)
	assert.Equal(t, 30*time.Second, cfg.Workflow.Timeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Contains(t, cfg.Database.ConnString(), "db.internal:5432/hr")
}

func TestProcessEnvWinsOverFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SERVER_PORT=9000\n"), 0o600))
	t.Setenv("SERVER_PORT", "7000")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
}
