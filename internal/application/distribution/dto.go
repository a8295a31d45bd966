package distribution

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storelink/backend/internal/domain/distribution"
)

// SyncConfigRequest is the per-destination (or per-product, in the
// many-products variant) configuration for one push.
type SyncConfigRequest struct {
	// InventoryRequests maps variant id to the requested quantity for the
	// target destination. Omitted variants keep their stored assignment.
	InventoryRequests map[uuid.UUID]int64 `json:"inventory_requests"`
	CollectionIDs     []string            `json:"collection_ids"`
	LocationID        string              `json:"location_id"`
	ForceSync         bool                `json:"force_sync"`
}

// SyncProductRequest pushes one product to one destination
type SyncProductRequest struct {
	ProductID     uuid.UUID         `json:"product_id" binding:"required"`
	DestinationID uuid.UUID         `json:"destination_id" binding:"required"`
	Config        SyncConfigRequest `json:"config"`
}

// BulkSyncRequest pushes one product to many destinations
type BulkSyncRequest struct {
	ProductID      uuid.UUID                       `json:"product_id" binding:"required"`
	DestinationIDs []uuid.UUID                     `json:"destination_ids" binding:"required,min=1"`
	Configs        map[uuid.UUID]SyncConfigRequest `json:"configs"`
}

// BulkSyncProductsRequest pushes many products to one destination
type BulkSyncProductsRequest struct {
	DestinationID uuid.UUID                       `json:"destination_id" binding:"required"`
	ProductIDs    []uuid.UUID                     `json:"product_ids" binding:"required,min=1"`
	Configs       map[uuid.UUID]SyncConfigRequest `json:"configs"`
}

// SyncResultResponse is the API representation of one job outcome
type SyncResultResponse struct {
	ProductID     uuid.UUID           `json:"product_id"`
	DestinationID uuid.UUID           `json:"destination_id"`
	Operation     string              `json:"operation,omitempty"`
	Success       bool                `json:"success"`
	RemoteRef     string              `json:"remote_ref,omitempty"`
	ErrorKind     string              `json:"error_kind,omitempty"`
	ErrorMessage  string              `json:"error_message,omitempty"`
	Committed     map[uuid.UUID]int64 `json:"committed,omitempty"`
	Clamped       bool                `json:"clamped"`
	DurationMS    int64               `json:"duration_ms"`
}

// ToSyncResultResponse converts a domain result to its response DTO
func ToSyncResultResponse(result distribution.SyncResult) SyncResultResponse {
	return SyncResultResponse{
		ProductID:     result.ProductID,
		DestinationID: result.DestinationID,
		Operation:     string(result.Operation),
		Success:       result.Success,
		RemoteRef:     string(result.RemoteRef),
		ErrorKind:     string(result.ErrorKind),
		ErrorMessage:  result.ErrorMessage,
		Committed:     result.Committed,
		Clamped:       result.Clamped,
		DurationMS:    result.Duration.Milliseconds(),
	}
}

// BulkSyncReportResponse is the API representation of a run report
type BulkSyncReportResponse struct {
	RunID        uuid.UUID            `json:"run_id"`
	Results      []SyncResultResponse `json:"results"`
	SuccessCount int                  `json:"success_count"`
	FailureCount int                  `json:"failure_count"`
	Canceled     bool                 `json:"canceled"`
	StartedAt    time.Time            `json:"started_at"`
	DurationMS   int64                `json:"duration_ms"`
}

// ToBulkSyncReportResponse converts a domain report to its response DTO
func ToBulkSyncReportResponse(report *distribution.BulkSyncReport) BulkSyncReportResponse {
	results := make([]SyncResultResponse, 0, len(report.Results))
	for _, result := range report.Results {
		results = append(results, ToSyncResultResponse(result))
	}
	return BulkSyncReportResponse{
		RunID:        report.RunID,
		Results:      results,
		SuccessCount: report.SuccessCount,
		FailureCount: report.FailureCount,
		Canceled:     report.Canceled,
		StartedAt:    report.StartedAt,
		DurationMS:   report.Duration.Milliseconds(),
	}
}

// SyncRecordResponse is the API representation of one ledger record
type SyncRecordResponse struct {
	DestinationID uuid.UUID  `json:"destination_id"`
	Status        string     `json:"status"`
	RemoteRef     string     `json:"remote_ref,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	Invalidated   bool       `json:"invalidated"`
}

// SyncStatusResponse answers "which destinations is this product live on"
type SyncStatusResponse struct {
	ProductID uuid.UUID            `json:"product_id"`
	Connected bool                 `json:"connected"`
	Records   []SyncRecordResponse `json:"records"`
}

// ConnectDestinationRequest registers a new storefront
type ConnectDestinationRequest struct {
	Name        string `json:"name" binding:"required"`
	ShopDomain  string `json:"shop_domain" binding:"required"`
	Currency    string `json:"currency"`
	Credentials string `json:"credentials" binding:"required"`
}

// DestinationResponse is the API representation of a destination.
// Credentials never leave the backend.
type DestinationResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ShopDomain string    `json:"shop_domain"`
	Currency   string    `json:"currency"`
	Locale     string    `json:"locale"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToDestinationResponse converts a domain destination to its response DTO
func ToDestinationResponse(dest distribution.Destination) DestinationResponse {
	return DestinationResponse{
		ID:         dest.ID,
		Name:       dest.Name,
		ShopDomain: dest.ShopDomain,
		Currency:   dest.Currency,
		Locale:     dest.Locale,
		Active:     dest.Active,
		CreatedAt:  dest.CreatedAt,
	}
}

// SetOverrideRequest stores per-destination attribute overrides for a variant
type SetOverrideRequest struct {
	VariantID      uuid.UUID        `json:"variant_id" binding:"required"`
	DestinationID  uuid.UUID        `json:"destination_id" binding:"required"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	SKU            *string          `json:"sku"`
}

// ProposeAssignmentRequest previews the clamped quantity for an allocation
type ProposeAssignmentRequest struct {
	VariantID     uuid.UUID `json:"variant_id" binding:"required"`
	DestinationID uuid.UUID `json:"destination_id" binding:"required"`
	Quantity      int64     `json:"quantity"`
}

// ProposeAssignmentResponse carries the clamp preview
type ProposeAssignmentResponse struct {
	Requested int64 `json:"requested"`
	Granted   int64 `json:"granted"`
	Clamped   bool  `json:"clamped"`
}
