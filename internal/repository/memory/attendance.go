package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
)

type attendanceRepository struct {
	s *Store
}

func (s *Store) Attendance() attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

// hydrate fills the joined columns. Callers hold s.mu.
func (r *attendanceRepository) hydrate(rec attendance.Record) attendance.Record {
	if e, ok := r.s.employees[rec.EmployeeID]; ok {
		rec.EmployeeName = e.Name
		rec.EmployeeManager = e.ManagerID
	}
	rec.EntriesCount = 0
	for _, e := range r.s.entries {
		if e.RecordID == rec.ID {
			rec.EntriesCount++
		}
	}
	return rec
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrAttendanceNotFound
	}
	return r.hydrate(rec), nil
}

func (r *attendanceRepository) GetByIDForUpdate(ctx context.Context, id string) (attendance.Record, error) {
	return r.GetByID(ctx, id)
}

func (r *attendanceRepository) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.records {
		if rec.EmployeeID == employeeID && rec.Date.Equal(date) {
			return r.hydrate(rec), nil
		}
	}
	return attendance.Record{}, attendance.ErrAttendanceNotFound
}

func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	matched := []attendance.Record{}
	for _, rec := range r.s.records {
		rec = r.hydrate(rec)
		if !filter.Visibility.Allows(rec.EmployeeID, rec.EmployeeManager) {
			continue
		}
		if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.From != nil && rec.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rec.Date.After(*filter.To) {
			continue
		}
		if filter.Status != "" && string(rec.Status) != filter.Status {
			continue
		}
		if filter.ApprovalStatus != "" && string(rec.ApprovalStatus) != filter.ApprovalStatus {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(rec.EmployeeName), search) {
			continue
		}
		matched = append(matched, rec)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].Date, matched[j].Date
		switch attendance.AttendanceSortFields[filter.SortBy] {
		case "clock_in":
			a, b = timeOrZero(matched[i].ClockIn), timeOrZero(matched[j].ClockIn)
		case "clock_out":
			a, b = timeOrZero(matched[i].ClockOut), timeOrZero(matched[j].ClockOut)
		}
		if filter.SortOrder == "asc" {
			return a.Before(b)
		}
		return b.Before(a)
	})

	return page(matched, filter.Window.Offset, filter.Window.Limit), int64(len(matched)), nil
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (r *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.records {
		if existing.EmployeeID == rec.EmployeeID && existing.Date.Equal(rec.Date) {
			return attendance.Record{}, attendance.ErrAttendanceExists
		}
	}
	if rec.ClockIn != nil && rec.ClockOut != nil && rec.ClockOut.Before(*rec.ClockIn) {
		return attendance.Record{}, attendance.ErrClockOutBeforeClockIn
	}
	if rec.ID == "" {
		rec.ID = newID()
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	r.s.records[rec.ID] = rec
	return r.hydrate(rec), nil
}

func (r *attendanceRepository) Update(ctx context.Context, rec attendance.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.records[rec.ID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	if rec.ClockIn != nil && rec.ClockOut != nil && rec.ClockOut.Before(*rec.ClockIn) {
		return attendance.ErrClockOutBeforeClockIn
	}
	rec.EmployeeID = current.EmployeeID
	rec.CreatedAt = current.CreatedAt
	rec.UpdatedAt = time.Now()
	r.s.records[rec.ID] = rec
	return nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.s.records, id)
	for entryID, e := range r.s.entries {
		if e.RecordID == id {
			delete(r.s.entries, entryID)
		}
	}
	return nil
}

func (r *attendanceRepository) CreateEntry(ctx context.Context, e attendance.Entry) (attendance.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[e.RecordID]; !ok {
		return attendance.Entry{}, attendance.ErrAttendanceNotFound
	}
	if e.ID == "" {
		e.ID = newID()
	}
	e.CreatedAt = time.Now()
	r.s.entries[e.ID] = e
	return e, nil
}

func (r *attendanceRepository) ListEntries(ctx context.Context, recordID string) ([]attendance.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []attendance.Entry{}
	for _, e := range r.s.entries {
		if e.RecordID == recordID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (r *attendanceRepository) GetEntry(ctx context.Context, recordID, entryID string) (attendance.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.entries[entryID]
	if !ok || e.RecordID != recordID {
		return attendance.Entry{}, attendance.ErrEntryNotFound
	}
	return e, nil
}

func (r *attendanceRepository) DeleteEntry(ctx context.Context, entryID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.entries[entryID]; !ok {
		return attendance.ErrEntryNotFound
	}
	delete(r.s.entries, entryID)
	return nil
}
