package notification

import (
	"context"
)

type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	QueueBulkNotification(ctx context.Context, reqs []CreateNotificationRequest) error

	List(ctx context.Context, recipientID string, filter NotificationFilter) (NotificationListResponse, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, recipientID string, req MarkAsReadRequest) (int64, error)
	MarkAllAsRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, recipientID string, notificationID string) error

	GetPreferences(ctx context.Context, employeeID string) ([]PreferenceResponse, error)
	UpdatePreference(ctx context.Context, employeeID string, req UpdatePreferenceRequest) (PreferenceResponse, error)

	// SendApprovalReminders notifies every approver with a non-empty backlog
	// and returns how many were reminded.
	SendApprovalReminders(ctx context.Context) (int, error)

	Subscribe(ctx context.Context, recipientID string) (<-chan SSEEvent, func())

	// Stop flushes queued notifications and waits for the workers.
	Stop()
}
