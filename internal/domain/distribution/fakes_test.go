package distribution

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/shared"
)

// memAssignments is an in-memory AssignmentRepository
type memAssignments struct {
	mu    sync.Mutex
	items map[string]*InventoryAssignment // variantID/destinationID
}

func newMemAssignments() *memAssignments {
	return &memAssignments{items: make(map[string]*InventoryAssignment)}
}

func assignmentKey(variantID, destinationID uuid.UUID) string {
	return variantID.String() + "/" + destinationID.String()
}

func (m *memAssignments) FindByVariant(_ context.Context, variantID uuid.UUID) ([]InventoryAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []InventoryAssignment
	for _, a := range m.items {
		if a.VariantID == variantID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAssignments) FindByVariantAndDestination(_ context.Context, variantID, destinationID uuid.UUID) (*InventoryAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[assignmentKey(variantID, destinationID)]
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memAssignments) FindByProductAndDestination(_ context.Context, _, _ uuid.UUID) ([]InventoryAssignment, error) {
	return nil, nil
}

func (m *memAssignments) Save(_ context.Context, assignment *InventoryAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *assignment
	m.items[assignmentKey(assignment.VariantID, assignment.DestinationID)] = &copied
	return nil
}

func (m *memAssignments) DeleteByDestination(_ context.Context, destinationID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, a := range m.items {
		if a.DestinationID == destinationID {
			delete(m.items, key)
		}
	}
	return nil
}

// staticTotals answers pool totals from a fixed map
type staticTotals map[uuid.UUID]int64

func (s staticTotals) PoolTotal(_ context.Context, variantID uuid.UUID) (int64, error) {
	total, ok := s[variantID]
	if !ok {
		return 0, ErrVariantNotFound
	}
	return total, nil
}

// memSyncRecords is an in-memory SyncRecordRepository
type memSyncRecords struct {
	mu    sync.Mutex
	items map[string]*SyncRecord
}

func newMemSyncRecords() *memSyncRecords {
	return &memSyncRecords{items: make(map[string]*SyncRecord)}
}

func recordKey(productID, destinationID uuid.UUID) string {
	return productID.String() + "/" + destinationID.String()
}

func (m *memSyncRecords) FindByProductAndDestination(_ context.Context, productID, destinationID uuid.UUID) (*SyncRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.items[recordKey(productID, destinationID)]
	if !ok {
		return nil, ErrSyncRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *memSyncRecords) FindByProduct(_ context.Context, productID uuid.UUID) ([]SyncRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SyncRecord
	for _, record := range m.items {
		if record.ProductID == productID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (m *memSyncRecords) FindStalePending(_ context.Context, olderThan time.Time) ([]SyncRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SyncRecord
	for _, record := range m.items {
		if record.IsStalePending(olderThan) {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (m *memSyncRecords) Save(_ context.Context, record *SyncRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.items[recordKey(record.ProductID, record.DestinationID)] = &copied
	return nil
}

func (m *memSyncRecords) InvalidateByDestination(_ context.Context, destinationID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, record := range m.items {
		if record.DestinationID == destinationID && !record.Invalidated {
			record.Invalidate()
			count++
		}
	}
	return count, nil
}

// fakeClient is a scriptable StorefrontClient
type fakeClient struct {
	mu sync.Mutex

	createErr    error
	updateErr    error
	inventoryErr error
	delay        time.Duration
	refPrefix    string

	createCalls    int
	updateCalls    int
	inventoryCalls int
	lastRef        RemoteRef
	lastPayload    ProductPayload
	lastLevels     []InventoryLevel
}

func (c *fakeClient) CreateProduct(ctx context.Context, payload ProductPayload) (RemoteRef, error) {
	c.mu.Lock()
	c.createCalls++
	c.lastPayload = payload
	c.mu.Unlock()
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	if c.createErr != nil {
		return "", c.createErr
	}
	prefix := c.refPrefix
	if prefix == "" {
		prefix = "remote"
	}
	ref := RemoteRef(prefix + "-" + payload.ProductID.String())
	c.mu.Lock()
	c.lastRef = ref
	c.mu.Unlock()
	return ref, nil
}

func (c *fakeClient) UpdateProduct(ctx context.Context, ref RemoteRef, payload ProductPayload) (RemoteRef, error) {
	c.mu.Lock()
	c.updateCalls++
	c.lastPayload = payload
	c.lastRef = ref
	c.mu.Unlock()
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	if c.updateErr != nil {
		return "", c.updateErr
	}
	return ref, nil
}

func (c *fakeClient) DeleteProduct(_ context.Context, _ RemoteRef) error {
	return nil
}

func (c *fakeClient) ReadInventory(_ context.Context, _ RemoteRef) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (c *fakeClient) WriteInventory(ctx context.Context, _ RemoteRef, levels []InventoryLevel) error {
	c.mu.Lock()
	c.inventoryCalls++
	c.lastLevels = levels
	c.mu.Unlock()
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.inventoryErr
}

func (c *fakeClient) wait(ctx context.Context) error {
	if c.delay == 0 {
		return nil
	}
	select {
	case <-time.After(c.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fakeRegistry maps destination ids to clients
type fakeRegistry struct {
	clients map[uuid.UUID]StorefrontClient
}

func (r *fakeRegistry) ClientFor(destination *Destination) (StorefrontClient, error) {
	if !destination.Active {
		return nil, ErrDestinationDisconnected
	}
	client, ok := r.clients[destination.ID]
	if !ok {
		return nil, ErrNoClientForDestination
	}
	return client, nil
}

// capturingPublisher collects published events
type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) byType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, event := range p.events {
		if event.EventType() == eventType {
			out = append(out, event)
		}
	}
	return out
}
