package distribution

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/shared"
)

// DestinationService manages the lifecycle of connected storefronts
type DestinationService struct {
	destinations distribution.DestinationRepository
	ledger       *distribution.Ledger
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewDestinationService creates a new DestinationService
func NewDestinationService(
	destinations distribution.DestinationRepository,
	ledger *distribution.Ledger,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *DestinationService {
	return &DestinationService{
		destinations: destinations,
		ledger:       ledger,
		publisher:    publisher,
		logger:       logger,
	}
}

// Connect registers a new storefront
func (s *DestinationService) Connect(ctx context.Context, req ConnectDestinationRequest) (*DestinationResponse, error) {
	dest, err := distribution.NewDestination(req.Name, req.ShopDomain, req.Currency, req.Credentials)
	if err != nil {
		return nil, err
	}

	if err := s.destinations.Save(ctx, dest); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, dest.GetDomainEvents()...)
	dest.ClearDomainEvents()

	response := ToDestinationResponse(*dest)
	return &response, nil
}

// Disconnect deactivates a storefront and invalidates its ledger records.
// Records and the destination row are retained for history; future syncs
// treat the pairs as never synced.
func (s *DestinationService) Disconnect(ctx context.Context, id uuid.UUID) error {
	dest, err := s.destinations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !dest.Active {
		return nil
	}

	dest.Disconnect()
	if err := s.destinations.Save(ctx, dest); err != nil {
		return err
	}

	invalidated, err := s.ledger.InvalidateDestination(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Info("destination disconnected",
		zap.String("destination_id", id.String()),
		zap.String("shop_domain", dest.ShopDomain),
		zap.Int64("records_invalidated", invalidated),
	)

	_ = s.publisher.Publish(ctx, dest.GetDomainEvents()...)
	dest.ClearDomainEvents()
	return nil
}

// Get returns one destination
func (s *DestinationService) Get(ctx context.Context, id uuid.UUID) (*DestinationResponse, error) {
	dest, err := s.destinations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToDestinationResponse(*dest)
	return &response, nil
}

// List returns a page of destinations
func (s *DestinationService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[DestinationResponse], error) {
	destinations, total, err := s.destinations.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]DestinationResponse, 0, len(destinations))
	for _, dest := range destinations {
		responses = append(responses, ToDestinationResponse(dest))
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}
