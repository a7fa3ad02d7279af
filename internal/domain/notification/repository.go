package notification

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, n Notification) error
	CreateBatch(ctx context.Context, notifications []Notification) error
	List(ctx context.Context, recipientID string, filter NotificationFilter) ([]Notification, int64, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	// MarkAsRead ignores ids that belong to someone else.
	MarkAsRead(ctx context.Context, recipientID string, ids []string, at time.Time) (int64, error)
	MarkAllAsRead(ctx context.Context, recipientID string, at time.Time) (int64, error)
	Delete(ctx context.Context, recipientID, id string) error

	GetPreferences(ctx context.Context, employeeID string) ([]NotificationPreference, error)
	// GetPreference returns ErrPreferenceNotFound when the employee never changed it.
	GetPreference(ctx context.Context, employeeID string, t NotificationType) (NotificationPreference, error)
	UpsertPreference(ctx context.Context, pref NotificationPreference) error

	// PendingApprovals groups every item waiting on a decision by the
	// employee expected to make it.
	PendingApprovals(ctx context.Context) ([]PendingDigest, error)
}

// PendingDigest is one approver's backlog for the daily reminder.
type PendingDigest struct {
	ApproverID    string
	ApproverName  string
	ApproverEmail string
	Leave         int
	Attendance    int
	Projects      int
}

func (d PendingDigest) Total() int {
	return d.Leave + d.Attendance + d.Projects
}
