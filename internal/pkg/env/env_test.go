package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleancity.env")
	require.NoError(t, os.WriteFile(path, []byte("DB_DRIVER=postgres\nCACHE_PORT=6380\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("CACHE_PORT", "7000")
	t.Setenv("CACHE_HOST", "redis")

	SetupEnvFile()
	t.Cleanup(func() { fileEnv = map[string]string{} })

	assert.Equal(t, "postgres", GetEnv("DB_DRIVER", "mysql"))
	assert.Equal(t, "6380", GetEnv("CACHE_PORT", "6379"), "file wins over the process environment")
	assert.Equal(t, "redis", GetEnv("CACHE_HOST", "localhost"))
	assert.Equal(t, "fallback", GetEnv("MISSING_KEY", "fallback"))

	Set("APP_ENV", "dev")
	assert.True(t, IsDev())
}

func TestSetupEnvFile_Missing(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	SetupEnvFile()
	assert.Equal(t, "prod", GetEnv("APP_ENV", "prod"))
}
