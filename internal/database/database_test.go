package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nutricoach/backend/config"
	"github.com/nutricoach/backend/internal/models"
)

func TestNewSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}

	db, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))
	assert.NoError(t, HealthCheck(context.Background(), db))

	user := models.User{Name: "Test User", Email: "test@example.com", PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotZero(t, user.ID)

	// idempotent
	assert.NoError(t, RunMigrations(db))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(&config.Config{DBDriver: "oracle"}, nil)
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set")
	}
	cfg := &config.Config{RedisHost: os.Getenv("REDIS_HOST"), RedisPort: "6379"}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		cfg.RedisPort = port
	}

	client, err := NewRedisClient(cfg, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()
}

func TestOptionalRedis(t *testing.T) {
	assert.Nil(t, OptionalRedis(&config.Config{}, zap.NewNop()))
	assert.Nil(t, OptionalRedis(&config.Config{RedisURL: "not a url"}, zap.NewNop()))
}
