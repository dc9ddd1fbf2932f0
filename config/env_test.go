package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFiles_MergesJSONAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"page_size": 15, "mongo_database": "from-json", "cache_driver": "none"}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("MONGO_DATABASE=from-env\n# comment\nLOW_STOCK_THRESHOLD=\"3\"\n"), 0o644))

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, 15, PageSize())
	assert.Equal(t, "from-env", MongoDatabase(), ".env wins over app.json")
	assert.Equal(t, 3, LowStockThreshold())
	assert.Equal(t, "none", CacheDriver())
}

func TestLoadFromFiles_MissingFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, ".env")))
}

func TestProcessEnvironmentWins(t *testing.T) {
	t.Setenv("JWT_TTL", "2h")
	assert.Equal(t, 2*time.Hour, JWTTTL())

	t.Setenv("JWT_TTL", "garbage")
	assert.Equal(t, 7*24*time.Hour, JWTTTL())
}

func TestSetPinsValue(t *testing.T) {
	Set("GRPC_PORT", "9090")
	t.Cleanup(func() {
		mu.Lock()
		delete(overrides, "GRPC_PORT")
		delete(values, "GRPC_PORT")
		mu.Unlock()
	})
	t.Setenv("GRPC_PORT", "7070")

	assert.Equal(t, "9090", GRPCPort())
}

func TestDatabaseDriverFallsBack(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	assert.Equal(t, "mongo", DatabaseDriver())

	t.Setenv("DB_DRIVER", "SQLite")
	assert.Equal(t, "sqlite", DatabaseDriver())
	assert.Equal(t, defaultSQLiteDSN, DatabaseDSN())

	t.Setenv("DATABASE_DSN", "file::memory:")
	assert.Equal(t, "file::memory:", DatabaseDSN())
}

func TestCORSOriginsAndProduction(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, CORSOrigins())

	t.Setenv("APP_ENV", "prod")
	assert.True(t, IsProduction())
	t.Setenv("APP_ENV", "staging")
	assert.False(t, IsProduction())
}
