package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/shared"
)

// Feed is the live in-memory view the dashboard reads: notifications in
// arrival order, newest first. Mutations are optimistic: applied to the view
// immediately, then confirmed against the authoritative store. A failed
// confirmation restores the exact prior value and position; the feed is never
// re-fetched wholesale, so other in-flight optimistic changes survive.
type Feed struct {
	mu    sync.Mutex
	items []*Notification
	store NotificationRepository
	limit int
}

// FeedOption is a functional option for configuring Feed
type FeedOption func(*Feed)

// WithFeedLimit caps how many notifications the view retains. Oldest entries
// fall off; the store keeps the full history.
func WithFeedLimit(limit int) FeedOption {
	return func(f *Feed) {
		if limit > 0 {
			f.limit = limit
		}
	}
}

// NewFeed creates a feed over the authoritative store
func NewFeed(store NotificationRepository, opts ...FeedOption) *Feed {
	f := &Feed{
		store: store,
		limit: 200,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load fills the view from the store, newest first
func (f *Feed) Load(ctx context.Context) error {
	filter := shared.Filter{Page: 1, PageSize: f.limit, OrderBy: "created_at", OrderDir: "desc"}
	stored, _, err := f.store.FindAll(ctx, filter, false)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make([]*Notification, 0, len(stored))
	for i := range stored {
		copied := stored[i]
		f.items = append(f.items, &copied)
	}
	return nil
}

// Append adds a freshly persisted notification to the head of the view
func (f *Feed) Append(notification *Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *notification
	f.items = append([]*Notification{&copied}, f.items...)
	if len(f.items) > f.limit {
		f.items = f.items[:f.limit]
	}
}

// All returns a snapshot of the view in feed order
func (f *Feed) All() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, *item)
	}
	return out
}

// Unread returns the unread notifications in feed order
func (f *Feed) Unread() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Notification
	for _, item := range f.items {
		if !item.Read {
			out = append(out, *item)
		}
	}
	return out
}

// UnreadCount returns the number of unread notifications in the view
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, item := range f.items {
		if !item.Read {
			count++
		}
	}
	return count
}

// MarkRead optimistically marks a notification read, then confirms against
// the store. On confirmation failure the entry is restored to its exact prior
// value at its exact prior position.
func (f *Feed) MarkRead(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	index := f.indexOf(id)
	if index < 0 {
		f.mu.Unlock()
		return ErrNotificationNotFound
	}
	prior := *f.items[index]
	f.items[index].MarkRead()
	updated := *f.items[index]
	f.mu.Unlock()

	if err := f.store.Save(ctx, &updated); err != nil {
		f.restore(id, prior)
		return err
	}
	return nil
}

// MarkUnread optimistically reverts a notification to unread, confirming
// against the store with the same rollback discipline as MarkRead.
func (f *Feed) MarkUnread(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	index := f.indexOf(id)
	if index < 0 {
		f.mu.Unlock()
		return ErrNotificationNotFound
	}
	prior := *f.items[index]
	f.items[index].MarkUnread()
	updated := *f.items[index]
	f.mu.Unlock()

	if err := f.store.Save(ctx, &updated); err != nil {
		f.restore(id, prior)
		return err
	}
	return nil
}

// Delete optimistically removes a notification from the view, then confirms
// against the store. On confirmation failure the entry is reinserted at its
// exact prior position.
func (f *Feed) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	index := f.indexOf(id)
	if index < 0 {
		f.mu.Unlock()
		return ErrNotificationNotFound
	}
	prior := *f.items[index]
	f.items = append(f.items[:index], f.items[index+1:]...)
	f.mu.Unlock()

	if err := f.store.Delete(ctx, id); err != nil {
		f.reinsert(index, prior)
		return err
	}
	return nil
}

// indexOf returns the position of a notification in the view, or -1.
// Caller holds f.mu.
func (f *Feed) indexOf(id uuid.UUID) int {
	for i, item := range f.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// restore puts a prior value back in place after a failed confirmation. The
// entry is located by id: concurrent deletes may have shifted indices.
func (f *Feed) restore(id uuid.UUID, prior Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index := f.indexOf(id); index >= 0 {
		copied := prior
		f.items[index] = &copied
	}
}

// reinsert puts a deleted entry back at its prior position
func (f *Feed) reinsert(index int, prior Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index > len(f.items) {
		index = len(f.items)
	}
	copied := prior
	f.items = append(f.items[:index], append([]*Notification{&copied}, f.items[index:]...)...)
}
