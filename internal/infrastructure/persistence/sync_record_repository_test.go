package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelink/backend/internal/domain/distribution"
)

func TestGormSyncRecordRepositoryPairLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSyncRecordRepository(db)
	ctx := context.Background()

	productID, destinationID := uuid.New(), uuid.New()

	_, err := repo.FindByProductAndDestination(ctx, productID, destinationID)
	assert.ErrorIs(t, err, distribution.ErrSyncRecordNotFound)

	record := distribution.NewSyncRecord(productID, destinationID)
	record.MarkSynced("gid://shopify/Product/11")
	require.NoError(t, repo.Save(ctx, record))

	loaded, err := repo.FindByProductAndDestination(ctx, productID, destinationID)
	require.NoError(t, err)
	assert.Equal(t, distribution.SyncStatusSynced, loaded.Status)
	assert.Equal(t, "gid://shopify/Product/11", loaded.RemoteRef)
}

func TestGormSyncRecordRepositoryFindByProduct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSyncRecordRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	require.NoError(t, repo.Save(ctx, distribution.NewSyncRecord(productID, uuid.New())))
	require.NoError(t, repo.Save(ctx, distribution.NewSyncRecord(productID, uuid.New())))
	require.NoError(t, repo.Save(ctx, distribution.NewSyncRecord(uuid.New(), uuid.New())))

	records, err := repo.FindByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestGormSyncRecordRepositoryFindStalePending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSyncRecordRepository(db)
	ctx := context.Background()

	stale := distribution.NewSyncRecord(uuid.New(), uuid.New())
	stale.BeginAttempt()
	old := time.Now().Add(-time.Hour)
	stale.LastAttemptAt = &old
	require.NoError(t, repo.Save(ctx, stale))

	fresh := distribution.NewSyncRecord(uuid.New(), uuid.New())
	fresh.BeginAttempt()
	require.NoError(t, repo.Save(ctx, fresh))

	settled := distribution.NewSyncRecord(uuid.New(), uuid.New())
	settled.MarkSynced("remote-1")
	require.NoError(t, repo.Save(ctx, settled))

	records, err := repo.FindStalePending(ctx, time.Now().Add(-5*time.Minute))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, stale.ID, records[0].ID)
}

func TestGormSyncRecordRepositoryInvalidateByDestination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSyncRecordRepository(db)
	ctx := context.Background()

	destinationID := uuid.New()

	first := distribution.NewSyncRecord(uuid.New(), destinationID)
	first.MarkSynced("remote-1")
	require.NoError(t, repo.Save(ctx, first))

	second := distribution.NewSyncRecord(uuid.New(), destinationID)
	second.MarkError("boom", "")
	require.NoError(t, repo.Save(ctx, second))

	other := distribution.NewSyncRecord(uuid.New(), uuid.New())
	other.MarkSynced("remote-2")
	require.NoError(t, repo.Save(ctx, other))

	affected, err := repo.InvalidateByDestination(ctx, destinationID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	loaded, err := repo.FindByProductAndDestination(ctx, first.ProductID, destinationID)
	require.NoError(t, err)
	assert.True(t, loaded.Invalidated)
	assert.Equal(t, "remote-1", loaded.RemoteRef)
	assert.Empty(t, loaded.EffectiveRemoteRef())

	// second call touches nothing new
	affected, err = repo.InvalidateByDestination(ctx, destinationID)
	require.NoError(t, err)
	assert.Zero(t, affected)

	untouched, err := repo.FindByProductAndDestination(ctx, other.ProductID, other.DestinationID)
	require.NoError(t, err)
	assert.False(t, untouched.Invalidated)
}
