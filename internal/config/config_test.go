package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "STORE_BACKEND=redis\nREDIS_ADDR=127.0.0.1:6390\nRECONCILE_INTERVAL=30s\nRECONCILE_WORKERS=0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"STORE_BACKEND", "REDIS_ADDR", "RECONCILE_INTERVAL", "RECONCILE_WORKERS"} {
			os.Unsetenv(k)
		}
	})

	require.NoError(t, Load(path))
	c := Get()
	assert.Equal(t, BackendRedis, c.StoreBackend)
	assert.Equal(t, "127.0.0.1:6390", c.RedisAddr)
	assert.Equal(t, 30*time.Second, c.ReconcileInterval)
	assert.Equal(t, 1, c.ReconcileWorkers)
	assert.Equal(t, "TRY", c.DefaultCurrency)
	assert.Equal(t, 24*time.Hour, c.IdempotencyTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("postgres requires write host", func(t *testing.T) {
		c := &Config{StoreBackend: BackendPostgres}
		assert.Error(t, c.Validate())
	})

	t.Run("read side falls back to write side", func(t *testing.T) {
		c := &Config{
			StoreBackend:          BackendPostgres,
			PostgresWriteHost:     "db",
			PostgresWritePort:     "5433",
			PostgresWriteDatabase: "ledger",
			PostgresWriteUser:     "app",
		}
		require.NoError(t, c.Validate())
		assert.Equal(t, "db", c.PostgresReadHost)
		assert.Equal(t, "5433", c.PostgresReadPort)
		assert.Equal(t, "ledger", c.PostgresReadDatabase)
		assert.Equal(t, "app", c.PostgresReadUser)
	})

	t.Run("unknown backend", func(t *testing.T) {
		c := &Config{StoreBackend: "firebase"}
		assert.Error(t, c.Validate())
	})
}
