package distribution

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/shared"
)

// InventoryAssignment is the committed share of a variant's pool held by one
// destination. For a given variant, the sum of assignments across all
// destinations never exceeds the variant's pool total.
type InventoryAssignment struct {
	shared.BaseEntity
	VariantID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_variant_destination,priority:1"`
	DestinationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_variant_destination,priority:2"`
	Quantity      int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryAssignment) TableName() string {
	return "inventory_assignments"
}

// AssignmentRepository is the authoritative store of current assignments
type AssignmentRepository interface {
	FindByVariant(ctx context.Context, variantID uuid.UUID) ([]InventoryAssignment, error)
	FindByVariantAndDestination(ctx context.Context, variantID, destinationID uuid.UUID) (*InventoryAssignment, error)
	FindByProductAndDestination(ctx context.Context, productID, destinationID uuid.UUID) ([]InventoryAssignment, error)
	Save(ctx context.Context, assignment *InventoryAssignment) error
	DeleteByDestination(ctx context.Context, destinationID uuid.UUID) error
}

// VariantPoolReader answers a variant's authoritative pool total
type VariantPoolReader interface {
	PoolTotal(ctx context.Context, variantID uuid.UUID) (int64, error)
}

// InventoryPool partitions each variant's pool total across destinations
// without overselling. Over-requests are clamped, never rejected; the caller
// surfaces the clamp as a warning.
//
// Commit operations for the same variant serialize on a per-variant mutex.
// Different variants never share a lock.
type InventoryPool struct {
	totals      VariantPoolReader
	assignments AssignmentRepository

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewInventoryPool creates an inventory pool over the authoritative stores
func NewInventoryPool(totals VariantPoolReader, assignments AssignmentRepository) *InventoryPool {
	return &InventoryPool{
		totals:      totals,
		assignments: assignments,
		locks:       make(map[uuid.UUID]*sync.Mutex),
	}
}

// variantLock returns the mutex for one variant, creating it on first use
func (p *InventoryPool) variantLock(variantID uuid.UUID) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[variantID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[variantID] = lock
	}
	return lock
}

// Available returns how much of the variant's pool is not yet assigned to
// any destination. Always computed from the current assignment set; a cached
// total could let a stale read oversell.
func (p *InventoryPool) Available(ctx context.Context, variantID uuid.UUID) (int64, error) {
	total, err := p.totals.PoolTotal(ctx, variantID)
	if err != nil {
		return 0, err
	}
	assigned, err := p.assignedTotal(ctx, variantID)
	if err != nil {
		return 0, err
	}
	available := total - assigned
	if available < 0 {
		// Pool total was lowered below existing commitments; nothing is free.
		available = 0
	}
	return available, nil
}

// ProposeAssignment returns the quantity that a commit with the same request
// would record: min(requested, available + the destination's own current
// assignment). A destination may always keep or reduce what it already
// holds. Negative requests are rejected before any clamping.
func (p *InventoryPool) ProposeAssignment(ctx context.Context, variantID, destinationID uuid.UUID, requested int64) (int64, error) {
	if requested < 0 {
		return 0, ErrNegativeQuantity
	}
	available, err := p.Available(ctx, variantID)
	if err != nil {
		return 0, err
	}
	current, err := p.currentAssignment(ctx, variantID, destinationID)
	if err != nil {
		return 0, err
	}
	return clamp(requested, available+current), nil
}

// Commit records the clamped assignment for (variant, destination) and
// returns the quantity actually committed. The clamp is re-evaluated under
// the variant's lock, so two concurrent commits for the same variant cannot
// jointly exceed the pool.
func (p *InventoryPool) Commit(ctx context.Context, variantID, destinationID uuid.UUID, requested int64) (int64, error) {
	if requested < 0 {
		return 0, ErrNegativeQuantity
	}

	lock := p.variantLock(variantID)
	lock.Lock()
	defer lock.Unlock()

	total, err := p.totals.PoolTotal(ctx, variantID)
	if err != nil {
		return 0, err
	}
	existing, err := p.assignments.FindByVariant(ctx, variantID)
	if err != nil {
		return 0, err
	}

	var current *InventoryAssignment
	var othersTotal int64
	for i := range existing {
		if existing[i].DestinationID == destinationID {
			current = &existing[i]
		} else {
			othersTotal += existing[i].Quantity
		}
	}

	free := total - othersTotal
	if free < 0 {
		free = 0
	}
	clamped := clamp(requested, free)

	if current == nil {
		current = &InventoryAssignment{
			BaseEntity:    shared.NewBaseEntity(),
			VariantID:     variantID,
			DestinationID: destinationID,
		}
	}
	current.Quantity = clamped
	current.UpdatedAt = time.Now()

	if err := p.assignments.Save(ctx, current); err != nil {
		return 0, err
	}
	return clamped, nil
}

func (p *InventoryPool) assignedTotal(ctx context.Context, variantID uuid.UUID) (int64, error) {
	assignments, err := p.assignments.FindByVariant(ctx, variantID)
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, a := range assignments {
		sum += a.Quantity
	}
	return sum, nil
}

func (p *InventoryPool) currentAssignment(ctx context.Context, variantID, destinationID uuid.UUID) (int64, error) {
	assignment, err := p.assignments.FindByVariantAndDestination(ctx, variantID, destinationID)
	if err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return assignment.Quantity, nil
}

func clamp(requested, limit int64) int64 {
	if requested > limit {
		return limit
	}
	return requested
}
