package attendance

import (
	"context"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

type AttendanceService interface {
	// Mark clocks the caller (or, for admins, another employee) in or out for today.
	Mark(ctx context.Context, actor user.Principal, req MarkAttendanceRequest) (RecordResponse, error)

	List(ctx context.Context, actor user.Principal, filter AttendanceFilter) (ListAttendanceResponse, error)
	Get(ctx context.Context, actor user.Principal, id string) (RecordResponse, error)
	Create(ctx context.Context, actor user.Principal, req CreateAttendanceRequest) (RecordResponse, error)
	Update(ctx context.Context, actor user.Principal, id string, req UpdateAttendanceRequest) (RecordResponse, error)
	Delete(ctx context.Context, actor user.Principal, id string) error

	ListEntries(ctx context.Context, actor user.Principal, recordID string) ([]EntryResponse, error)
	AddEntry(ctx context.Context, actor user.Principal, recordID string, req CreateEntryRequest) (EntryResponse, error)
	DeleteEntry(ctx context.Context, actor user.Principal, recordID, entryID string) error

	Confirm(ctx context.Context, actor user.Principal, id string) (RecordResponse, error)
	Approve(ctx context.Context, actor user.Principal, id string) (RecordResponse, error)
	Reject(ctx context.Context, actor user.Principal, id string, req approval.DecisionRequest) (RecordResponse, error)
}
