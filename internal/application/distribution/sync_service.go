package distribution

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/shared"
)

// SyncService drives synchronization runs: it loads the product, destination,
// override, and assignment records the orchestrator needs, runs the push, and
// maps the outcome to API shapes.
type SyncService struct {
	products     catalog.ProductRepository
	destinations distribution.DestinationRepository
	overrides    distribution.OverrideRepository
	assignments  distribution.AssignmentRepository
	orchestrator *distribution.Orchestrator
	ledger       *distribution.Ledger
	pool         *distribution.InventoryPool
}

// NewSyncService creates a new SyncService
func NewSyncService(
	products catalog.ProductRepository,
	destinations distribution.DestinationRepository,
	overrides distribution.OverrideRepository,
	assignments distribution.AssignmentRepository,
	orchestrator *distribution.Orchestrator,
	ledger *distribution.Ledger,
	pool *distribution.InventoryPool,
) *SyncService {
	return &SyncService{
		products:     products,
		destinations: destinations,
		overrides:    overrides,
		assignments:  assignments,
		orchestrator: orchestrator,
		ledger:       ledger,
		pool:         pool,
	}
}

// SyncProduct pushes one product to one destination
func (s *SyncService) SyncProduct(ctx context.Context, req SyncProductRequest) (*SyncResultResponse, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	dest, err := s.destinations.FindByID(ctx, req.DestinationID)
	if err != nil {
		return nil, err
	}

	config, err := s.buildConfig(ctx, product, dest.ID, req.Config)
	if err != nil {
		return nil, err
	}

	result := s.orchestrator.SyncProduct(ctx, product, dest, config)
	response := ToSyncResultResponse(result)
	return &response, nil
}

// BulkSync pushes one product to many destinations
func (s *SyncService) BulkSync(ctx context.Context, req BulkSyncRequest) (*BulkSyncReportResponse, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	destinations, err := s.destinations.FindByIDs(ctx, req.DestinationIDs)
	if err != nil {
		return nil, err
	}
	if len(destinations) != len(req.DestinationIDs) {
		return nil, distribution.ErrDestinationNotFound
	}

	configs := make(map[uuid.UUID]distribution.DestinationConfig, len(destinations))
	for _, dest := range destinations {
		config, err := s.buildConfig(ctx, product, dest.ID, req.Configs[dest.ID])
		if err != nil {
			return nil, err
		}
		configs[dest.ID] = config
	}

	report := s.orchestrator.BulkSync(ctx, product, destinations, configs)
	response := ToBulkSyncReportResponse(report)
	return &response, nil
}

// BulkSyncProducts pushes many products to one destination
func (s *SyncService) BulkSyncProducts(ctx context.Context, req BulkSyncProductsRequest) (*BulkSyncReportResponse, error) {
	dest, err := s.destinations.FindByID(ctx, req.DestinationID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindByIDs(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}
	if len(products) != len(req.ProductIDs) {
		return nil, shared.ErrNotFound
	}

	configs := make(map[uuid.UUID]distribution.DestinationConfig, len(products))
	for i := range products {
		config, err := s.buildConfig(ctx, &products[i], dest.ID, req.Configs[products[i].ID])
		if err != nil {
			return nil, err
		}
		configs[products[i].ID] = config
	}

	report := s.orchestrator.BulkSyncProducts(ctx, dest, products, configs)
	response := ToBulkSyncReportResponse(report)
	return &response, nil
}

// GetSyncStatus answers which destinations a product is live on
func (s *SyncService) GetSyncStatus(ctx context.Context, productID uuid.UUID) (*SyncStatusResponse, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	records, err := s.ledger.StatusFor(ctx, productID)
	if err != nil {
		return nil, err
	}
	connected, err := s.ledger.IsConnected(ctx, productID)
	if err != nil {
		return nil, err
	}

	response := &SyncStatusResponse{
		ProductID: productID,
		Connected: connected,
		Records:   make([]SyncRecordResponse, 0, len(records)),
	}
	for destinationID, record := range records {
		response.Records = append(response.Records, SyncRecordResponse{
			DestinationID: destinationID,
			Status:        record.Status.String(),
			RemoteRef:     record.RemoteRef,
			LastError:     record.LastError,
			LastAttemptAt: record.LastAttemptAt,
			LastSuccessAt: record.LastSuccessAt,
			Invalidated:   record.Invalidated,
		})
	}
	return response, nil
}

// ProposeAssignment previews the clamped quantity an allocation would get,
// without committing anything.
func (s *SyncService) ProposeAssignment(ctx context.Context, req ProposeAssignmentRequest) (*ProposeAssignmentResponse, error) {
	granted, err := s.pool.ProposeAssignment(ctx, req.VariantID, req.DestinationID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return &ProposeAssignmentResponse{
		Requested: req.Quantity,
		Granted:   granted,
		Clamped:   granted < req.Quantity,
	}, nil
}

// SetOverride stores per-destination attribute overrides for a variant.
// All-nil values clear the override.
func (s *SyncService) SetOverride(ctx context.Context, req SetOverrideRequest) error {
	override, err := s.overrides.FindByVariantAndDestination(ctx, req.VariantID, req.DestinationID)
	if err != nil {
		if !errors.Is(err, distribution.ErrOverrideNotFound) {
			return err
		}
		override = &distribution.VariantOverride{
			BaseEntity:    shared.NewBaseEntity(),
			VariantID:     req.VariantID,
			DestinationID: req.DestinationID,
		}
	}
	override.Price = req.Price
	override.CompareAtPrice = req.CompareAtPrice
	override.SKU = req.SKU
	return s.overrides.Save(ctx, override)
}

// buildConfig merges the request's inventory choices with the stored
// assignment and override records for one (product, destination) pair.
// Variants with a stored assignment but no explicit request re-commit their
// stored quantity, so a plain re-push refreshes the remote levels.
func (s *SyncService) buildConfig(ctx context.Context, product *catalog.Product, destinationID uuid.UUID, req SyncConfigRequest) (distribution.DestinationConfig, error) {
	stored, err := s.overrides.FindByProductAndDestination(ctx, product.ID, destinationID)
	if err != nil {
		return distribution.DestinationConfig{}, err
	}
	overrides := make(map[uuid.UUID]*distribution.VariantOverride, len(stored))
	for i := range stored {
		overrides[stored[i].VariantID] = &stored[i]
	}

	requests := make(map[uuid.UUID]int64, len(req.InventoryRequests))
	assigned, err := s.assignments.FindByProductAndDestination(ctx, product.ID, destinationID)
	if err != nil {
		return distribution.DestinationConfig{}, err
	}
	for _, assignment := range assigned {
		requests[assignment.VariantID] = assignment.Quantity
	}
	for variantID, quantity := range req.InventoryRequests {
		requests[variantID] = quantity
	}

	return distribution.DestinationConfig{
		Overrides:         overrides,
		InventoryRequests: requests,
		CollectionIDs:     req.CollectionIDs,
		LocationID:        req.LocationID,
		ForceSync:         req.ForceSync,
	}, nil
}
