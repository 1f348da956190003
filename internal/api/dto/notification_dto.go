package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// NotificationResponse in-app notification view.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	Link      *string                 `json:"link"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

// MarkReadRequest payload.
type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

// MarkReadResponse reports how many notifications were updated.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// UnreadCountResponse payload.
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
