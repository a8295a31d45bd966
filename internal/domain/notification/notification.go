package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/shared"
)

// Domain errors
var (
	ErrNotificationNotFound = errors.New("notification: notification not found")
)

// Level is the visual severity of a notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// IsValid returns true if the level is valid
func (l Level) IsValid() bool {
	switch l {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError:
		return true
	default:
		return false
	}
}

// Notification is one dashboard message produced by an async event: a sync
// run settling, a destination connecting or disconnecting. It carries the
// originating event id so at-least-once delivery can be collapsed to one row.
type Notification struct {
	shared.BaseEntity
	EventID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Kind    string    `gorm:"type:varchar(100);not null"`
	Level   Level     `gorm:"type:varchar(20);not null;default:'info'"`
	Title   string    `gorm:"type:varchar(255);not null"`
	Message string    `gorm:"type:text"`
	Payload string    `gorm:"type:text"` // JSON detail blob for the UI
	Read    bool      `gorm:"not null;default:false"`
	ReadAt  *time.Time
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// NewNotification creates an unread notification for an originating event
func NewNotification(eventID uuid.UUID, kind string, level Level, title, message string) (*Notification, error) {
	title = strings.TrimSpace(title)
	if eventID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_NOTIFICATION", "Notification event id is required")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_NOTIFICATION", "Notification title is required")
	}
	if !level.IsValid() {
		level = LevelInfo
	}

	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		EventID:    eventID,
		Kind:       kind,
		Level:      level,
		Title:      title,
		Message:    message,
	}, nil
}

// MarkRead marks the notification as read
func (n *Notification) MarkRead() {
	if n.Read {
		return
	}
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	n.UpdatedAt = now
}

// MarkUnread reverts the notification to unread
func (n *Notification) MarkUnread() {
	n.Read = false
	n.ReadAt = nil
	n.UpdatedAt = time.Now()
}

// NotificationRepository provides access to stored notifications
type NotificationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) (*Notification, error)
	FindAll(ctx context.Context, filter shared.Filter, unreadOnly bool) ([]Notification, int64, error)
	CountUnread(ctx context.Context) (int64, error)
	Save(ctx context.Context, notification *Notification) error
	Delete(ctx context.Context, id uuid.UUID) error
}
