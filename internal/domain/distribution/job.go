package distribution

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SyncOperation is the remote operation a job chose
type SyncOperation string

const (
	SyncOperationCreate SyncOperation = "create"
	SyncOperationUpdate SyncOperation = "update"
)

// ErrorKind classifies a failed job outcome
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindRemote     ErrorKind = "remote"
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindCanceled   ErrorKind = "canceled"
)

// SyncResult is the outcome of one job: one product pushed to one
// destination. Failures are values here, never errors escaping the
// orchestrator.
type SyncResult struct {
	ProductID     uuid.UUID           `json:"product_id"`
	DestinationID uuid.UUID           `json:"destination_id"`
	Operation     SyncOperation       `json:"operation"`
	Success       bool                `json:"success"`
	RemoteRef     RemoteRef           `json:"remote_ref,omitempty"`
	ErrorKind     ErrorKind           `json:"error_kind,omitempty"`
	ErrorMessage  string              `json:"error_message,omitempty"`
	Committed     map[uuid.UUID]int64 `json:"committed,omitempty"` // clamped quantity per variant
	Clamped       bool                `json:"clamped"`             // any request was reduced
	Duration      time.Duration       `json:"duration"`
}

// SyncJob is one ephemeral unit of work: push one product to one destination
// with a resolved payload and a clamped inventory snapshot. Constructed per
// orchestration run and discarded after producing its SyncResult.
type SyncJob struct {
	Product       uuid.UUID
	Destination   *Destination
	Client        StorefrontClient
	Payload       ProductPayload
	Record        *SyncRecord
	Committed     map[uuid.UUID]int64
	Clamped       bool
	LocationID    string
	RemoteTimeout time.Duration
}

// Execute runs the job: product write first, inventory write only after the
// product write succeeded. Every failure is captured as a typed outcome.
func (j *SyncJob) Execute(ctx context.Context) SyncResult {
	started := time.Now()
	result := SyncResult{
		ProductID:     j.Product,
		DestinationID: j.Destination.ID,
		Committed:     j.Committed,
		Clamped:       j.Clamped,
	}

	if j.RemoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.RemoteTimeout)
		defer cancel()
	}

	ref := j.Record.EffectiveRemoteRef()
	if ref == "" {
		result.Operation = SyncOperationCreate
	} else {
		// An existing reference always means update, including forced
		// retries of an errored record; escalating to create would duplicate
		// the remote product.
		result.Operation = SyncOperationUpdate
	}

	newRef, err := j.writeProduct(ctx, ref)
	if err != nil {
		result.ErrorKind = classifyRemoteError(ctx, err)
		result.ErrorMessage = err.Error()
		result.Duration = time.Since(started)
		return result
	}
	result.RemoteRef = newRef

	// Inventory strictly follows the product write; a failed product write
	// must not leave inventory attached to a nonexistent remote product.
	if err := j.Client.WriteInventory(ctx, newRef, j.inventoryLevels()); err != nil {
		result.ErrorKind = classifyRemoteError(ctx, err)
		result.ErrorMessage = err.Error()
		result.Duration = time.Since(started)
		return result
	}

	result.Success = true
	result.Duration = time.Since(started)
	return result
}

func (j *SyncJob) writeProduct(ctx context.Context, ref RemoteRef) (RemoteRef, error) {
	if ref == "" {
		return j.Client.CreateProduct(ctx, j.Payload)
	}
	return j.Client.UpdateProduct(ctx, ref, j.Payload)
}

// inventoryLevels builds the per-variant levels from the committed snapshot,
// carrying the payload's effective SKU for adapters that address inventory
// by SKU.
func (j *SyncJob) inventoryLevels() []InventoryLevel {
	levels := make([]InventoryLevel, 0, len(j.Committed))
	for _, variant := range j.Payload.Variants {
		qty, ok := j.Committed[variant.VariantID]
		if !ok {
			continue
		}
		levels = append(levels, InventoryLevel{
			VariantID:  variant.VariantID,
			SKU:        variant.SKU,
			LocationID: j.LocationID,
			Available:  qty,
		})
	}
	return levels
}

func classifyRemoteError(ctx context.Context, err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrorKindTimeout
	}
	return ErrorKindRemote
}
