package distribution

import (
	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeDestination = "Destination"
	AggregateTypeSyncRun     = "SyncRun"
)

// Event type constants
const (
	EventTypeDestinationConnected    = "distribution.destination.connected"
	EventTypeDestinationDisconnected = "distribution.destination.disconnected"
	EventTypeSyncStarted             = "distribution.sync.started"
	EventTypeSyncProgress            = "distribution.sync.progress"
	EventTypeSyncCompleted           = "distribution.sync.completed"
)

// DestinationConnectedEvent is published when a storefront is connected
type DestinationConnectedEvent struct {
	shared.BaseDomainEvent
	DestinationID uuid.UUID `json:"destination_id"`
	ShopDomain    string    `json:"shop_domain"`
}

// NewDestinationConnectedEvent creates a new DestinationConnectedEvent
func NewDestinationConnectedEvent(dest *Destination) *DestinationConnectedEvent {
	return &DestinationConnectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDestinationConnected, AggregateTypeDestination, dest.ID),
		DestinationID:   dest.ID,
		ShopDomain:      dest.ShopDomain,
	}
}

// DestinationDisconnectedEvent is published when a storefront is disconnected
type DestinationDisconnectedEvent struct {
	shared.BaseDomainEvent
	DestinationID uuid.UUID `json:"destination_id"`
	ShopDomain    string    `json:"shop_domain"`
}

// NewDestinationDisconnectedEvent creates a new DestinationDisconnectedEvent
func NewDestinationDisconnectedEvent(dest *Destination) *DestinationDisconnectedEvent {
	return &DestinationDisconnectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDestinationDisconnected, AggregateTypeDestination, dest.ID),
		DestinationID:   dest.ID,
		ShopDomain:      dest.ShopDomain,
	}
}

// SyncStartedEvent is published when an orchestration run begins
type SyncStartedEvent struct {
	shared.BaseDomainEvent
	RunID          uuid.UUID   `json:"run_id"`
	ProductIDs     []uuid.UUID `json:"product_ids"`
	DestinationIDs []uuid.UUID `json:"destination_ids"`
	JobCount       int         `json:"job_count"`
}

// NewSyncStartedEvent creates a new SyncStartedEvent
func NewSyncStartedEvent(runID uuid.UUID, productIDs, destinationIDs []uuid.UUID, jobCount int) *SyncStartedEvent {
	return &SyncStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSyncStarted, AggregateTypeSyncRun, runID),
		RunID:           runID,
		ProductIDs:      productIDs,
		DestinationIDs:  destinationIDs,
		JobCount:        jobCount,
	}
}

// SyncProgressEvent is published after each job settles
type SyncProgressEvent struct {
	shared.BaseDomainEvent
	RunID         uuid.UUID  `json:"run_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	DestinationID uuid.UUID  `json:"destination_id"`
	Status        SyncStatus `json:"status"`
	ErrorMessage  string     `json:"error_message,omitempty"`
}

// NewSyncProgressEvent creates a new SyncProgressEvent
func NewSyncProgressEvent(runID uuid.UUID, result SyncResult) *SyncProgressEvent {
	status := SyncStatusSynced
	if !result.Success {
		status = SyncStatusError
	}
	return &SyncProgressEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSyncProgress, AggregateTypeSyncRun, runID),
		RunID:           runID,
		ProductID:       result.ProductID,
		DestinationID:   result.DestinationID,
		Status:          status,
		ErrorMessage:    result.ErrorMessage,
	}
}

// SyncCompletedEvent is published when the aggregate report is final
type SyncCompletedEvent struct {
	shared.BaseDomainEvent
	RunID  uuid.UUID       `json:"run_id"`
	Report *BulkSyncReport `json:"report"`
}

// NewSyncCompletedEvent creates a new SyncCompletedEvent
func NewSyncCompletedEvent(runID uuid.UUID, report *BulkSyncReport) *SyncCompletedEvent {
	return &SyncCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSyncCompleted, AggregateTypeSyncRun, runID),
		RunID:           runID,
		Report:          report,
	}
}
