package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/catalog"
	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/notification"
	"github.com/storelink/backend/internal/domain/shared"
)

type memProducts struct {
	items map[uuid.UUID]*catalog.Product
}

func newMemProducts() *memProducts {
	return &memProducts{items: make(map[uuid.UUID]*catalog.Product)}
}

func (m *memProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (m *memProducts) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := m.items[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (m *memProducts) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, int64, error) {
	var out []catalog.Product
	for _, product := range m.items {
		out = append(out, *product)
	}
	return out, int64(len(out)), nil
}

func (m *memProducts) Save(_ context.Context, product *catalog.Product) error {
	m.items[product.ID] = product
	return nil
}

func (m *memProducts) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

type memDestinations struct {
	items map[uuid.UUID]*distribution.Destination
}

func newMemDestinations() *memDestinations {
	return &memDestinations{items: make(map[uuid.UUID]*distribution.Destination)}
}

func (m *memDestinations) FindByID(_ context.Context, id uuid.UUID) (*distribution.Destination, error) {
	dest, ok := m.items[id]
	if !ok {
		return nil, distribution.ErrDestinationNotFound
	}
	return dest, nil
}

func (m *memDestinations) FindByIDs(_ context.Context, ids []uuid.UUID) ([]distribution.Destination, error) {
	out := make([]distribution.Destination, 0, len(ids))
	for _, id := range ids {
		if dest, ok := m.items[id]; ok {
			out = append(out, *dest)
		}
	}
	return out, nil
}

func (m *memDestinations) FindAll(_ context.Context, _ shared.Filter) ([]distribution.Destination, int64, error) {
	var out []distribution.Destination
	for _, dest := range m.items {
		out = append(out, *dest)
	}
	return out, int64(len(out)), nil
}

func (m *memDestinations) Save(_ context.Context, dest *distribution.Destination) error {
	m.items[dest.ID] = dest
	return nil
}

type memOverrides struct {
	items []*distribution.VariantOverride
}

func (m *memOverrides) FindByVariantAndDestination(_ context.Context, variantID, destinationID uuid.UUID) (*distribution.VariantOverride, error) {
	for _, o := range m.items {
		if o.VariantID == variantID && o.DestinationID == destinationID {
			return o, nil
		}
	}
	return nil, distribution.ErrOverrideNotFound
}

func (m *memOverrides) FindByProductAndDestination(_ context.Context, _, destinationID uuid.UUID) ([]distribution.VariantOverride, error) {
	var out []distribution.VariantOverride
	for _, o := range m.items {
		if o.DestinationID == destinationID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOverrides) Save(_ context.Context, override *distribution.VariantOverride) error {
	for i, o := range m.items {
		if o.VariantID == override.VariantID && o.DestinationID == override.DestinationID {
			m.items[i] = override
			return nil
		}
	}
	m.items = append(m.items, override)
	return nil
}

func (m *memOverrides) DeleteByDestination(_ context.Context, destinationID uuid.UUID) error {
	var kept []*distribution.VariantOverride
	for _, o := range m.items {
		if o.DestinationID != destinationID {
			kept = append(kept, o)
		}
	}
	m.items = kept
	return nil
}

type memAssignments struct {
	mu       sync.Mutex
	items    map[string]*distribution.InventoryAssignment
	products map[uuid.UUID]uuid.UUID // variantID -> productID
}

func newMemAssignments() *memAssignments {
	return &memAssignments{
		items:    make(map[string]*distribution.InventoryAssignment),
		products: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *memAssignments) key(variantID, destinationID uuid.UUID) string {
	return variantID.String() + "/" + destinationID.String()
}

func (m *memAssignments) FindByVariant(_ context.Context, variantID uuid.UUID) ([]distribution.InventoryAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []distribution.InventoryAssignment
	for _, a := range m.items {
		if a.VariantID == variantID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAssignments) FindByVariantAndDestination(_ context.Context, variantID, destinationID uuid.UUID) (*distribution.InventoryAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[m.key(variantID, destinationID)]
	if !ok {
		return nil, distribution.ErrAssignmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *memAssignments) FindByProductAndDestination(_ context.Context, productID, destinationID uuid.UUID) ([]distribution.InventoryAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []distribution.InventoryAssignment
	for _, a := range m.items {
		if a.DestinationID == destinationID && m.products[a.VariantID] == productID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAssignments) Save(_ context.Context, a *distribution.InventoryAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *a
	m.items[m.key(a.VariantID, a.DestinationID)] = &copied
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

type memSyncRecords struct {
	mu    sync.Mutex
	items map[string]*distribution.SyncRecord
}

func newMemSyncRecords() *memSyncRecords {
	return &memSyncRecords{items: make(map[string]*distribution.SyncRecord)}
}

func (m *memSyncRecords) key(productID, destinationID uuid.UUID) string {
	return productID.String() + "/" + destinationID.String()
}

func (m *memSyncRecords) FindByProductAndDestination(_ context.Context, productID, destinationID uuid.UUID) (*distribution.SyncRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.items[m.key(productID, destinationID)]
	if !ok {
		return nil, distribution.ErrSyncRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *memSyncRecords) FindByProduct(_ context.Context, productID uuid.UUID) ([]distribution.SyncRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []distribution.SyncRecord
	for _, record := range m.items {
		if record.ProductID == productID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (m *memSyncRecords) FindStalePending(_ context.Context, olderThan time.Time) ([]distribution.SyncRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []distribution.SyncRecord
	for _, record := range m.items {
		if record.IsStalePending(olderThan) {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (m *memSyncRecords) Save(_ context.Context, record *distribution.SyncRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.items[m.key(record.ProductID, record.DestinationID)] = &copied
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

// staticTotals answers pool totals from a fixed map
type staticTotals map[uuid.UUID]int64

func (s staticTotals) PoolTotal(_ context.Context, variantID uuid.UUID) (int64, error) {
	total, ok := s[variantID]
	if !ok {
		return 0, distribution.ErrVariantNotFound
	}
	return total, nil
}

// fakeClient records outbound storefront calls
type fakeClient struct {
	mu          sync.Mutex
	createErr   error
	createCalls int
	lastLevels  []distribution.InventoryLevel
}

func (c *fakeClient) CreateProduct(_ context.Context, payload distribution.ProductPayload) (distribution.RemoteRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createCalls++
	if c.createErr != nil {
		return "", c.createErr
	}
	return distribution.RemoteRef("remote-" + payload.ProductID.String()), nil
}

func (c *fakeClient) UpdateProduct(_ context.Context, ref distribution.RemoteRef, _ distribution.ProductPayload) (distribution.RemoteRef, error) {
	return ref, nil
}

func (c *fakeClient) DeleteProduct(_ context.Context, _ distribution.RemoteRef) error {
	return nil
}

func (c *fakeClient) ReadInventory(_ context.Context, _ distribution.RemoteRef) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (c *fakeClient) WriteInventory(_ context.Context, _ distribution.RemoteRef, levels []distribution.InventoryLevel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastLevels = levels
	return nil
}

type fakeRegistry struct {
	clients map[uuid.UUID]distribution.StorefrontClient
}

func (r *fakeRegistry) ClientFor(dest *distribution.Destination) (distribution.StorefrontClient, error) {
	if !dest.Active {
		return nil, distribution.ErrDestinationDisconnected
	}
	client, ok := r.clients[dest.ID]
	if !ok {
		return nil, distribution.ErrNoClientForDestination
	}
	return client, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(_ context.Context, _ ...shared.DomainEvent) error {
	return nil
}

type memNotifications struct {
	mu    sync.Mutex
	items map[uuid.UUID]*notification.Notification
}

func newMemNotifications() *memNotifications {
	return &memNotifications{items: make(map[uuid.UUID]*notification.Notification)}
}

func (m *memNotifications) FindByID(_ context.Context, id uuid.UUID) (*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, notification.ErrNotificationNotFound
	}
	copied := *n
	return &copied, nil
}

func (m *memNotifications) FindByEventID(_ context.Context, eventID uuid.UUID) (*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.EventID == eventID {
			copied := *n
			return &copied, nil
		}
	}
	return nil, notification.ErrNotificationNotFound
}

func (m *memNotifications) FindAll(_ context.Context, _ shared.Filter, unreadOnly bool) ([]notification.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []notification.Notification
	for _, n := range m.items {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, *n)
	}
	return out, int64(len(out)), nil
}

func (m *memNotifications) CountUnread(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.items {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *memNotifications) Save(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *n
	m.items[n.ID] = &copied
	return nil
}

func (m *memNotifications) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return notification.ErrNotificationNotFound
	}
	delete(m.items, id)
	return nil
}
