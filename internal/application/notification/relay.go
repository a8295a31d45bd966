package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/notification"
	"github.com/storelink/backend/internal/domain/shared"
)

// Relay turns async lifecycle events into dashboard notifications. It is
// normally wrapped in an IdempotentHandler because the bus delivers
// at-least-once; the unique event-id index on notifications is the second
// line of defense when the idempotency store is unavailable.
type Relay struct {
	notifications notification.NotificationRepository
	feed          *notification.Feed
	logger        *zap.Logger
}

// NewRelay creates a notification relay
func NewRelay(notifications notification.NotificationRepository, feed *notification.Feed, logger *zap.Logger) *Relay {
	return &Relay{
		notifications: notifications,
		feed:          feed,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (r *Relay) EventTypes() []string {
	return []string{
		distribution.EventTypeSyncCompleted,
		distribution.EventTypeDestinationConnected,
		distribution.EventTypeDestinationDisconnected,
	}
}

// Handle translates one event into a stored notification and pushes it onto
// the live feed.
func (r *Relay) Handle(ctx context.Context, event shared.DomainEvent) error {
	if existing, err := r.notifications.FindByEventID(ctx, event.EventID()); err == nil && existing != nil {
		r.logger.Debug("duplicate event already relayed, skipping",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
		)
		return nil
	} else if err != nil && !errors.Is(err, notification.ErrNotificationNotFound) {
		return err
	}

	built, err := r.build(event)
	if err != nil {
		return err
	}
	if built == nil {
		return nil
	}

	if err := r.notifications.Save(ctx, built); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	r.feed.Append(built)

	r.logger.Info("notification relayed",
		zap.String("event_type", event.EventType()),
		zap.String("notification_id", built.ID.String()),
		zap.String("level", string(built.Level)),
	)
	return nil
}

func (r *Relay) build(event shared.DomainEvent) (*notification.Notification, error) {
	switch e := event.(type) {
	case *distribution.SyncCompletedEvent:
		return r.buildSyncCompleted(e)
	case *distribution.DestinationConnectedEvent:
		return notification.NewNotification(e.EventID(), e.EventType(), notification.LevelInfo,
			"Storefront connected",
			fmt.Sprintf("%s is now connected and ready to receive products", e.ShopDomain))
	case *distribution.DestinationDisconnectedEvent:
		return notification.NewNotification(e.EventID(), e.EventType(), notification.LevelWarning,
			"Storefront disconnected",
			fmt.Sprintf("%s was disconnected; its products will no longer be updated", e.ShopDomain))
	default:
		r.logger.Warn("unexpected event type",
			zap.String("event_type", event.EventType()),
		)
		return nil, nil
	}
}

func (r *Relay) buildSyncCompleted(e *distribution.SyncCompletedEvent) (*notification.Notification, error) {
	report := e.Report

	level := notification.LevelSuccess
	title := "Sync completed"
	switch {
	case report.Canceled:
		level = notification.LevelWarning
		title = "Sync canceled"
	case report.SuccessCount == 0 && report.FailureCount > 0:
		level = notification.LevelError
		title = "Sync failed"
	case report.FailureCount > 0:
		level = notification.LevelWarning
		title = "Sync partially completed"
	}

	message := fmt.Sprintf("%d succeeded, %d failed", report.SuccessCount, report.FailureCount)

	built, err := notification.NewNotification(e.EventID(), e.EventType(), level, title, message)
	if err != nil {
		return nil, err
	}

	// The full report rides along for the drill-down view.
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sync report: %w", err)
	}
	built.Payload = string(payload)

	return built, nil
}

// Ensure Relay implements shared.EventHandler
var _ shared.EventHandler = (*Relay)(nil)
