package notification

import (
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

// ============= Request DTOs =============

// CreateNotificationRequest is what producers queue. RecipientEmail and
// RecipientName are only used by the email channel.
type CreateNotificationRequest struct {
	RecipientID    string
	RecipientEmail string
	RecipientName  string
	SenderID       *string
	Type           NotificationType
	Title          string
	Message        string
	Data           map[string]interface{}
}

type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notificationIds"`
}

func (r MarkAsReadRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.NotificationIDs) == 0 {
		errs.Add("notificationIds", "at least one notification id is required")
	}
	for _, id := range r.NotificationIDs {
		if !validator.IsValidUUID(id) {
			errs.Add("notificationIds", "notificationIds must contain valid IDs")
			break
		}
	}
	return errs.OrNil()
}

type UpdatePreferenceRequest struct {
	NotificationType NotificationType `json:"notificationType"`
	EmailEnabled     bool             `json:"emailEnabled"`
	PushEnabled      bool             `json:"pushEnabled"`
}

func (r UpdatePreferenceRequest) Validate() error {
	if !r.NotificationType.IsValid() {
		return validator.ValidationErrors{{Field: "notificationType", Message: ErrInvalidNotificationType.Error()}}
	}
	return nil
}

type NotificationFilter struct {
	UnreadOnly bool
	Page       int
	Limit      int
	Skip       int

	Window validator.Page
}

func (f *NotificationFilter) Normalize() {
	f.Window = validator.ResolvePage(f.Page, f.Limit, f.Skip)
}

// ============= Response DTOs =============

type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"isRead"`
	ReadAt    *time.Time             `json:"readAt,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

func NewNotificationResponse(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

type NotificationListResponse struct {
	Notifications []NotificationResponse
	Total         int64
	UnreadCount   int64
	Page          int
	Limit         int
}

type PreferenceResponse struct {
	NotificationType NotificationType `json:"notificationType"`
	EmailEnabled     bool             `json:"emailEnabled"`
	PushEnabled      bool             `json:"pushEnabled"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

// SSETokenResponse is the short-lived token the browser passes to /stream,
// since EventSource cannot send an Authorization header.
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// ============= SSE Event =============

type SSEEvent struct {
	ID    uint64               `json:"id"`
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
