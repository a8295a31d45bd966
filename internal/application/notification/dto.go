package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/storelink/backend/internal/domain/notification"
)

// NotificationResponse is the API representation of a notification
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Kind      string     `json:"kind"`
	Level     string     `json:"level"`
	Title     string     `json:"title"`
	Message   string     `json:"message,omitempty"`
	Payload   string     `json:"payload,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain notification to its response DTO
func ToNotificationResponse(n notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      n.Kind,
		Level:     string(n.Level),
		Title:     n.Title,
		Message:   n.Message,
		Payload:   n.Payload,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// ListNotificationsRequest carries the list query options
type ListNotificationsRequest struct {
	Page       int  `form:"page"`
	PageSize   int  `form:"page_size"`
	UnreadOnly bool `form:"unread_only"`
}
