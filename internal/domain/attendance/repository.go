package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	GetByID(ctx context.Context, id string) (Record, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Record, error)
	GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (Record, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Record, int64, error)
	Create(ctx context.Context, r Record) (Record, error)
	Update(ctx context.Context, r Record) error
	Delete(ctx context.Context, id string) error

	CreateEntry(ctx context.Context, e Entry) (Entry, error)
	ListEntries(ctx context.Context, recordID string) ([]Entry, error)
	GetEntry(ctx context.Context, recordID, entryID string) (Entry, error)
	DeleteEntry(ctx context.Context, entryID string) error
}
