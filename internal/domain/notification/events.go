package notification

import (
	"context"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
)

// Item names the kind of thing an approval notice is about.
type Item string

const (
	ItemLeave      Item = "leave"
	ItemAttendance Item = "attendance"
)

// ApprovalNotice describes one approval-workflow change, emitted after the
// change commits.
type ApprovalNotice struct {
	Item      Item
	ItemID    string
	SubjectID string
	ActorID   string
	Status    approval.Status
	Reason    *string
	Summary   string
}

// ApprovalNotifier turns workflow changes into notifications for the people
// who need to act on them or are affected by them.
type ApprovalNotifier interface {
	ApprovalChanged(ctx context.Context, notice ApprovalNotice)
	ProjectProposed(ctx context.Context, proposalID, proposerID, title string)
	ProjectApproved(ctx context.Context, proposalID, approverID string, recipientIDs []string, title string)
}

// TypeFor returns the notification type for an item entering status.
func TypeFor(item Item, status approval.Status) NotificationType {
	switch item {
	case ItemAttendance:
		switch status {
		case approval.StatusPendingManager:
			return TypeAttendanceSubmitted
		case approval.StatusPendingAdmin:
			return TypeAttendancePendingAdmin
		case approval.StatusApproved:
			return TypeAttendanceApproved
		default:
			return TypeAttendanceRejected
		}
	default:
		switch status {
		case approval.StatusPendingManager:
			return TypeLeaveSubmitted
		case approval.StatusPendingAdmin:
			return TypeLeavePendingAdmin
		case approval.StatusApproved:
			return TypeLeaveApproved
		default:
			return TypeLeaveRejected
		}
	}
}
