package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveSubmitted         NotificationType = "leave_submitted"
	TypeLeavePendingAdmin      NotificationType = "leave_pending_admin"
	TypeLeaveApproved          NotificationType = "leave_approved"
	TypeLeaveRejected          NotificationType = "leave_rejected"
	TypeAttendanceSubmitted    NotificationType = "attendance_submitted"
	TypeAttendancePendingAdmin NotificationType = "attendance_pending_admin"
	TypeAttendanceApproved     NotificationType = "attendance_approved"
	TypeAttendanceRejected     NotificationType = "attendance_rejected"
	TypeProjectProposed        NotificationType = "project_proposed"
	TypeProjectApproved        NotificationType = "project_approved"
	TypeApprovalReminder       NotificationType = "approval_reminder"
	TypeAccountCreated         NotificationType = "account_created"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeLeaveSubmitted,
		TypeLeavePendingAdmin,
		TypeLeaveApproved,
		TypeLeaveRejected,
		TypeAttendanceSubmitted,
		TypeAttendancePendingAdmin,
		TypeAttendanceApproved,
		TypeAttendanceRejected,
		TypeProjectProposed,
		TypeProjectApproved,
		TypeApprovalReminder,
		TypeAccountCreated,
	}
}

func (t NotificationType) IsValid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// NotificationPreference represents an employee's channel choice for one type.
// Missing rows mean both channels are on.
type NotificationPreference struct {
	EmployeeID       string
	NotificationType NotificationType
	EmailEnabled     bool
	PushEnabled      bool
	UpdatedAt        time.Time
}

func DefaultPreference(employeeID string, t NotificationType) NotificationPreference {
	return NotificationPreference{
		EmployeeID:       employeeID,
		NotificationType: t,
		EmailEnabled:     true,
		PushEnabled:      true,
	}
}
