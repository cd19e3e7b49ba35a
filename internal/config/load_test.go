package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FromEnvFile(t *testing.T) {
	tempDir := t.TempDir()
	configsDir := filepath.Join(tempDir, "configs")
	require.NoError(t, os.Mkdir(configsDir, 0755))

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\nMATCHING_MIN_SCORE=%s\n",
		"sana-test", 9191, "debug", "kafka1:9092", "0.8",
	)
	require.NoError(t, os.WriteFile(filepath.Join(configsDir, "gateway_test.env"), []byte(envContent), 0644))

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(originalWD) })
	require.NoError(t, os.Chdir(tempDir))

	cfg, err := LoadConfig("gateway_test")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Values from the file win over defaults.
	assert.Equal(t, "sana-test", cfg.Application.Name)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "kafka1:9092", cfg.Kafka.Brokers)
	assert.Equal(t, 0.8, cfg.Matching.MinScore)

	// Untouched keys keep their defaults.
	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "document_reconciliation", cfg.Kafka.ReconciliationTopic)
	assert.Equal(t, "migrations/postgres", cfg.Postgres.MigrationsPath)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, 5, cfg.Matching.DateWindowDays)
	assert.False(t, cfg.Assistant.Enabled)
}

func TestLoadConfig_DefaultsOnlyIsValid(t *testing.T) {
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(originalWD) })
	require.NoError(t, os.Chdir(t.TempDir()))

	cfg, err := LoadConfig("does_not_exist")
	require.NoError(t, err, "defaults alone should pass validation")
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.WorkerPool.Size)
	assert.Equal(t, "gemini-2.0-flash", cfg.Extraction.Model)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(originalWD) })
	require.NoError(t, os.Chdir(t.TempDir()))

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("ASSISTANT_ENABLED", "true")

	cfg, err := LoadConfig("does_not_exist")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Assistant.Enabled)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(originalWD) })
	require.NoError(t, os.Chdir(t.TempDir()))

	t.Setenv("SERVER_PORT", "0")
	t.Setenv("POSTGRES_MAX_CONNS", "0")

	_, err = LoadConfig("does_not_exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "POSTGRES_MAX_CONNS")
}
