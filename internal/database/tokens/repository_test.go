package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.RevokedToken{}))
	return NewRepository(db)
}

func TestRepository_Revoke(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	t.Run("revoking twice is not an error", func(t *testing.T) {
		assert.NoError(t, repo.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	})
}

func TestRepository_PurgeExpired(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Revoke(ctx, "expired", now.Add(-time.Minute)))
	require.NoError(t, repo.Revoke(ctx, "live", now.Add(time.Hour)))

	purged, err := repo.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	revoked, err := repo.IsRevoked(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = repo.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}
