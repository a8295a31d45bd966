package distribution

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/shared"
)

type serviceFixture struct {
	products     *memProducts
	destinations *memDestinations
	overrides    *memOverrides
	assignments  *memAssignments
	records      *memSyncRecords
	registry     *fakeRegistry
	totals       staticTotals
	ledger       *distribution.Ledger
	pool         *distribution.InventoryPool
	service      *SyncService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		products:     newMemProducts(),
		destinations: newMemDestinations(),
		overrides:    &memOverrides{},
		assignments:  newMemAssignments(),
		records:      newMemSyncRecords(),
		registry:     &fakeRegistry{clients: make(map[uuid.UUID]distribution.StorefrontClient)},
		totals:       staticTotals{},
	}
	f.ledger = distribution.NewLedger(f.records)
	f.pool = distribution.NewInventoryPool(f.totals, f.assignments)
	orchestrator := distribution.NewOrchestrator(f.registry, f.pool, f.ledger, zap.NewNop())
	f.service = NewSyncService(f.products, f.destinations, f.overrides, f.assignments, orchestrator, f.ledger, f.pool)
	return f
}

func (f *serviceFixture) addProduct(t *testing.T, sku string, total int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("Classic Tee")
	require.NoError(t, err)
	variant, err := product.AddVariant("Default", sku, decimal.NewFromInt(20), decimal.Decimal{}, total)
	require.NoError(t, err)
	require.NoError(t, f.products.Save(context.Background(), product))
	f.totals[variant.ID] = total
	f.assignments.products[variant.ID] = product.ID
	return product
}

func (f *serviceFixture) addDestination(t *testing.T, name string) (*distribution.Destination, *fakeClient) {
	t.Helper()
	dest, err := distribution.NewDestination(name, name+".myshopify.com", "USD", "token")
	require.NoError(t, err)
	dest.ClearDomainEvents()
	require.NoError(t, f.destinations.Save(context.Background(), dest))
	client := &fakeClient{}
	f.registry.clients[dest.ID] = client
	return dest, client
}

func TestSyncService_SyncProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("stored overrides shape the outbound payload", func(t *testing.T) {
		f := newServiceFixture()
		product := f.addProduct(t, "TEE-1", 100)
		dest, client := f.addDestination(t, "main")

		price := decimal.NewFromInt(35)
		require.NoError(t, f.service.SetOverride(ctx, SetOverrideRequest{
			VariantID:     product.Variants[0].ID,
			DestinationID: dest.ID,
			Price:         &price,
		}))

		result, err := f.service.SyncProduct(ctx, SyncProductRequest{
			ProductID:     product.ID,
			DestinationID: dest.ID,
		})
		require.NoError(t, err)
		assert.True(t, result.Success)

		require.Len(t, client.lastPayload.Variants, 1)
		assert.True(t, client.lastPayload.Variants[0].Price.Equal(price))
	})

	t.Run("explicit inventory request is committed and pushed", func(t *testing.T) {
		f := newServiceFixture()
		product := f.addProduct(t, "TEE-1", 100)
		variantID := product.Variants[0].ID
		dest, client := f.addDestination(t, "main")

		result, err := f.service.SyncProduct(ctx, SyncProductRequest{
			ProductID:     product.ID,
			DestinationID: dest.ID,
			Config: SyncConfigRequest{
				InventoryRequests: map[uuid.UUID]int64{variantID: 40},
				LocationID:        "loc-1",
			},
		})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, int64(40), result.Committed[variantID])
		require.Len(t, client.lastLevels, 1)
		assert.Equal(t, int64(40), client.lastLevels[0].Available)
	})

	t.Run("re-push without a request re-commits the stored assignment", func(t *testing.T) {
		f := newServiceFixture()
		product := f.addProduct(t, "TEE-1", 100)
		variantID := product.Variants[0].ID
		dest, client := f.addDestination(t, "main")

		_, err := f.service.SyncProduct(ctx, SyncProductRequest{
			ProductID:     product.ID,
			DestinationID: dest.ID,
			Config: SyncConfigRequest{
				InventoryRequests: map[uuid.UUID]int64{variantID: 40},
			},
		})
		require.NoError(t, err)

		result, err := f.service.SyncProduct(ctx, SyncProductRequest{
			ProductID:     product.ID,
			DestinationID: dest.ID,
		})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "update", result.Operation)
		assert.Equal(t, int64(40), result.Committed[variantID])
		assert.Equal(t, 1, client.createCalls)
		assert.Equal(t, 1, client.updateCalls)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newServiceFixture()
		dest, _ := f.addDestination(t, "main")

		_, err := f.service.SyncProduct(ctx, SyncProductRequest{
			ProductID:     uuid.New(),
			DestinationID: dest.ID,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSyncService_BulkSync(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	product := f.addProduct(t, "TEE-1", 100)
	destA, _ := f.addDestination(t, "a")
	destB, clientB := f.addDestination(t, "b")
	clientB.createErr = distribution.ErrRemoteRequestFailed

	report, err := f.service.BulkSync(ctx, BulkSyncRequest{
		ProductID:      product.ID,
		DestinationIDs: []uuid.UUID{destA.ID, destB.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)

	status, err := f.service.GetSyncStatus(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	require.Len(t, status.Records, 2)
	byDest := map[uuid.UUID]SyncRecordResponse{}
	for _, record := range status.Records {
		byDest[record.DestinationID] = record
	}
	assert.Equal(t, "synced", byDest[destA.ID].Status)
	assert.Equal(t, "error", byDest[destB.ID].Status)

	t.Run("unknown destination in the fan-out aborts before dispatch", func(t *testing.T) {
		_, err := f.service.BulkSync(ctx, BulkSyncRequest{
			ProductID:      product.ID,
			DestinationIDs: []uuid.UUID{destA.ID, uuid.New()},
		})
		assert.ErrorIs(t, err, distribution.ErrDestinationNotFound)
	})
}

func TestSyncService_BulkSyncProducts(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	productA := f.addProduct(t, "TEE-1", 100)
	productB := f.addProduct(t, "MUG-1", 50)
	dest, client := f.addDestination(t, "main")

	report, err := f.service.BulkSyncProducts(ctx, BulkSyncProductsRequest{
		DestinationID: dest.ID,
		ProductIDs:    []uuid.UUID{productA.ID, productB.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Equal(t, 2, client.createCalls)
}

func TestSyncService_ProposeAssignment(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	product := f.addProduct(t, "TEE-1", 30)
	variantID := product.Variants[0].ID
	dest, _ := f.addDestination(t, "main")

	preview, err := f.service.ProposeAssignment(ctx, ProposeAssignmentRequest{
		VariantID:     variantID,
		DestinationID: dest.ID,
		Quantity:      50,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), preview.Granted)
	assert.True(t, preview.Clamped)

	// A preview commits nothing: the pool is still fully available.
	available, err := f.pool.Available(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), available)
}

func TestDestinationService(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	product := f.addProduct(t, "TEE-1", 100)
	dest, _ := f.addDestination(t, "main")
	publisher := &capturingPublisher{}
	service := NewDestinationService(f.destinations, f.ledger, publisher, zap.NewNop())

	_, err := f.service.SyncProduct(ctx, SyncProductRequest{
		ProductID:     product.ID,
		DestinationID: dest.ID,
	})
	require.NoError(t, err)

	t.Run("connect registers and publishes", func(t *testing.T) {
		created, err := service.Connect(ctx, ConnectDestinationRequest{
			Name:        "EU Store",
			ShopDomain:  "eu.myshopify.com",
			Credentials: "token",
		})
		require.NoError(t, err)
		assert.True(t, created.Active)
		assert.Len(t, publisher.events, 1)
	})

	t.Run("disconnect invalidates ledger records", func(t *testing.T) {
		require.NoError(t, service.Disconnect(ctx, dest.ID))

		stored, err := f.destinations.FindByID(ctx, dest.ID)
		require.NoError(t, err)
		assert.False(t, stored.Active)

		status, err := f.service.GetSyncStatus(ctx, product.ID)
		require.NoError(t, err)
		assert.False(t, status.Connected)
		require.Len(t, status.Records, 1)
		assert.True(t, status.Records[0].Invalidated)
		assert.NotEmpty(t, status.Records[0].RemoteRef, "history retained")
	})
}

func TestStalePendingService_SweepKeepsRemoteRef(t *testing.T) {
	ctx := context.Background()
	records := newMemSyncRecords()

	fresh := distribution.NewSyncRecord(uuid.New(), uuid.New())
	fresh.BeginAttempt()
	require.NoError(t, records.Save(ctx, fresh))

	stale := distribution.NewSyncRecord(uuid.New(), uuid.New())
	stale.MarkSynced("remote-1")
	stale.BeginAttempt()
	old := time.Now().Add(-time.Hour)
	stale.LastAttemptAt = &old
	require.NoError(t, records.Save(ctx, stale))

	service := NewStalePendingService(records, 5*time.Minute, zap.NewNop())
	stats, err := service.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalStale)
	assert.Equal(t, 1, stats.Resolved)

	resolved, err := records.FindByProductAndDestination(ctx, stale.ProductID, stale.DestinationID)
	require.NoError(t, err)
	assert.Equal(t, distribution.SyncStatusError, resolved.Status)
	assert.Equal(t, "sync interrupted before completion", resolved.LastError)
	assert.Equal(t, "remote-1", resolved.RemoteRef, "earlier ref kept for the retry")

	untouched, err := records.FindByProductAndDestination(ctx, fresh.ProductID, fresh.DestinationID)
	require.NoError(t, err)
	assert.Equal(t, distribution.SyncStatusPending, untouched.Status)
}
