package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/notification"
	"github.com/storelink/backend/internal/domain/shared"
)

// NotificationService handles notification queries and read-state mutations.
// Mutations go through the feed so the dashboard view stays consistent with
// the store under the optimistic-update discipline.
type NotificationService struct {
	notifications notification.NotificationRepository
	feed          *notification.Feed
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications notification.NotificationRepository, feed *notification.Feed) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		feed:          feed,
	}
}

// List returns a page of notifications from the authoritative store
func (s *NotificationService) List(ctx context.Context, req ListNotificationsRequest) (*shared.Paginated[NotificationResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 && req.PageSize <= 100 {
		filter.PageSize = req.PageSize
	}

	items, total, err := s.notifications.FindAll(ctx, filter, req.UnreadOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, ToNotificationResponse(item))
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	return s.notifications.CountUnread(ctx)
}

// MarkRead marks one notification read
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	err := s.feed.MarkRead(ctx, id)
	if errors.Is(err, notification.ErrNotificationNotFound) {
		// Older than the feed window; mutate the store directly.
		stored, findErr := s.notifications.FindByID(ctx, id)
		if findErr != nil {
			return findErr
		}
		stored.MarkRead()
		return s.notifications.Save(ctx, stored)
	}
	return err
}

// MarkUnread reverts one notification to unread
func (s *NotificationService) MarkUnread(ctx context.Context, id uuid.UUID) error {
	err := s.feed.MarkUnread(ctx, id)
	if errors.Is(err, notification.ErrNotificationNotFound) {
		stored, findErr := s.notifications.FindByID(ctx, id)
		if findErr != nil {
			return findErr
		}
		stored.MarkUnread()
		return s.notifications.Save(ctx, stored)
	}
	return err
}

// Delete removes one notification
func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.feed.Delete(ctx, id)
	if errors.Is(err, notification.ErrNotificationNotFound) {
		if _, findErr := s.notifications.FindByID(ctx, id); findErr != nil {
			return findErr
		}
		return s.notifications.Delete(ctx, id)
	}
	return err
}
