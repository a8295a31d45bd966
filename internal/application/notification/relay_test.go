package notification

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/notification"
	"github.com/storelink/backend/internal/domain/shared"
)

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
	item, ok := m.items[id]
	if !ok {
		return nil, notification.ErrNotificationNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *memNotifications) FindByEventID(_ context.Context, eventID uuid.UUID) (*notification.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.EventID == eventID {
			copied := *item
			return &copied, nil
		}
	}
	return nil, notification.ErrNotificationNotFound
}

func (m *memNotifications) FindAll(_ context.Context, filter shared.Filter, unreadOnly bool) ([]notification.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []notification.Notification
	for _, item := range m.items {
		if unreadOnly && item.Read {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := int64(len(out))
	if filter.PageSize > 0 && len(out) > filter.PageSize {
		out = out[:filter.PageSize]
	}
	return out, total, nil
}

func (m *memNotifications) CountUnread(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, item := range m.items {
		if !item.Read {
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
	delete(m.items, id)
	return nil
}

func completedEvent(success, failed int, canceled bool) *distribution.SyncCompletedEvent {
	report := &distribution.BulkSyncReport{
		RunID:        uuid.New(),
		SuccessCount: success,
		FailureCount: failed,
		Canceled:     canceled,
	}
	return distribution.NewSyncCompletedEvent(report.RunID, report)
}

func TestRelay_Handle(t *testing.T) {
	ctx := context.Background()

	setup := func() (*Relay, *memNotifications, *notification.Feed) {
		store := newMemNotifications()
		feed := notification.NewFeed(store)
		return NewRelay(store, feed, zap.NewNop()), store, feed
	}

	t.Run("sync completed becomes a success notification", func(t *testing.T) {
		relay, store, feed := setup()

		require.NoError(t, relay.Handle(ctx, completedEvent(3, 0, false)))

		items, _, err := store.FindAll(ctx, shared.DefaultFilter(), false)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, notification.LevelSuccess, items[0].Level)
		assert.Equal(t, "Sync completed", items[0].Title)
		assert.Equal(t, "3 succeeded, 0 failed", items[0].Message)
		assert.NotEmpty(t, items[0].Payload)
		assert.Len(t, feed.All(), 1)
	})

	t.Run("partial failure is a warning", func(t *testing.T) {
		relay, store, _ := setup()

		require.NoError(t, relay.Handle(ctx, completedEvent(2, 1, false)))

		items, _, err := store.FindAll(ctx, shared.DefaultFilter(), false)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, notification.LevelWarning, items[0].Level)
		assert.Equal(t, "Sync partially completed", items[0].Title)
	})

	t.Run("total failure is an error", func(t *testing.T) {
		relay, store, _ := setup()

		require.NoError(t, relay.Handle(ctx, completedEvent(0, 2, false)))

		items, _, err := store.FindAll(ctx, shared.DefaultFilter(), false)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, notification.LevelError, items[0].Level)
		assert.Equal(t, "Sync failed", items[0].Title)
	})

	t.Run("canceled run is a warning", func(t *testing.T) {
		relay, store, _ := setup()

		require.NoError(t, relay.Handle(ctx, completedEvent(1, 2, true)))

		items, _, err := store.FindAll(ctx, shared.DefaultFilter(), false)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Sync canceled", items[0].Title)
	})

	t.Run("duplicate delivery produces one notification", func(t *testing.T) {
		relay, store, feed := setup()
		event := completedEvent(1, 0, false)

		require.NoError(t, relay.Handle(ctx, event))
		require.NoError(t, relay.Handle(ctx, event))

		items, _, err := store.FindAll(ctx, shared.DefaultFilter(), false)
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Len(t, feed.All(), 1)
	})

	t.Run("destination lifecycle events", func(t *testing.T) {
		relay, store, _ := setup()

		dest, err := distribution.NewDestination("Main", "main.myshopify.com", "USD", "token")
		require.NoError(t, err)

		require.NoError(t, relay.Handle(ctx, distribution.NewDestinationConnectedEvent(dest)))
		require.NoError(t, relay.Handle(ctx, distribution.NewDestinationDisconnectedEvent(dest)))

		items, _, err := store.FindAll(ctx, shared.DefaultFilter(), false)
		require.NoError(t, err)
		require.Len(t, items, 2)
		titles := []string{items[0].Title, items[1].Title}
		assert.Contains(t, titles, "Storefront connected")
		assert.Contains(t, titles, "Storefront disconnected")
	})
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()

	store := newMemNotifications()
	feed := notification.NewFeed(store)
	relay := NewRelay(store, feed, zap.NewNop())
	service := NewNotificationService(store, feed)

	require.NoError(t, relay.Handle(ctx, completedEvent(1, 0, false)))
	require.NoError(t, relay.Handle(ctx, completedEvent(0, 1, false)))

	page, err := service.List(ctx, ListNotificationsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	count, err := service.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	target := page.Items[0].ID
	require.NoError(t, service.MarkRead(ctx, target))

	count, err = service.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	unreadOnly, err := service.List(ctx, ListNotificationsRequest{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, unreadOnly.Items, 1)
	assert.NotEqual(t, target, unreadOnly.Items[0].ID)

	require.NoError(t, service.Delete(ctx, target))
	page, err = service.List(ctx, ListNotificationsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
