package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/config"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	notifier notification.ApprovalNotifier
	cutoff   validator.ClockTime
	loc      *time.Location
	now      func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepository attendance.AttendanceRepository,
	employeeRepository employee.EmployeeRepository,
	notifier notification.ApprovalNotifier,
	cfg config.AttendanceConfig,
	loc *time.Location,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepository,
		EmployeeRepository:   employeeRepository,
		notifier:             notifier,
		cutoff:               cfg.LateAfterClock,
		loc:                  loc,
		now:                  time.Now,
	}
}

// Mark implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Mark(ctx context.Context, actor user.Principal, req attendance.MarkAttendanceRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	employeeID := actor.EmployeeID
	if req.EmployeeID != nil && *req.EmployeeID != "" && *req.EmployeeID != actor.EmployeeID {
		if !actor.Can(user.PermissionAttendanceMarkOthers) {
			return attendance.RecordResponse{}, attendance.ErrCannotMarkForOthers
		}
		employeeID = *req.EmployeeID
	}
	if req.Status != nil && !actor.Can(user.PermissionAttendanceManage) {
		return attendance.RecordResponse{}, attendance.ErrStatusOverrideNotAllow
	}
	// everyone else is stamped with the server clock
	if (hasValue(req.ClockIn) || hasValue(req.ClockOut)) && !actor.Can(user.PermissionAttendanceManage) {
		return attendance.RecordResponse{}, attendance.ErrClockOverrideNotAllow
	}

	now := s.now()
	day := attendance.DateOf(now, s.loc)

	var (
		result  attendance.Record
		created bool
	)
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.EmployeeRepository.GetByID(txCtx, employeeID); err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}

		rec, err := s.AttendanceRepository.GetByEmployeeAndDateForUpdate(txCtx, employeeID, day)
		switch {
		case err == nil:
			rec, err = s.clockOut(txCtx, rec, req, now)
			if err != nil {
				return err
			}
		case isNotFound(err):
			rec, err = s.clockIn(txCtx, employeeID, day, req, now)
			if err != nil {
				return err
			}
			created = true
		default:
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}

		result, err = s.AttendanceRepository.GetByID(txCtx, rec.ID)
		if err != nil {
			return fmt.Errorf("failed to reload attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	if created {
		s.notify(ctx, result, actor.EmployeeID, nil)
	}
	return attendance.NewRecordResponse(result, s.loc), nil
}

func (s *AttendanceServiceImpl) clockIn(ctx context.Context, employeeID string, day time.Time, req attendance.MarkAttendanceRequest, now time.Time) (attendance.Record, error) {
	clockIn := now
	if req.ClockIn != nil && *req.ClockIn != "" {
		t, err := attendance.ParseClockValue(*req.ClockIn, day, s.loc)
		if err != nil {
			return attendance.Record{}, err
		}
		clockIn = t
	}

	status := attendance.DayStatusFor(clockIn, s.cutoff, s.loc)
	if req.Status != nil {
		status = attendance.DayStatus(*req.Status)
	}

	rec := attendance.Record{
		EmployeeID:     employeeID,
		Date:           day,
		ClockIn:        &clockIn,
		Status:         status,
		ApprovalStatus: approval.TwoStep.Initial(),
	}
	if req.ClockOut != nil && *req.ClockOut != "" {
		t, err := attendance.ParseClockValue(*req.ClockOut, day, s.loc)
		if err != nil {
			return attendance.Record{}, err
		}
		if !t.After(clockIn) {
			return attendance.Record{}, attendance.ErrClockOutBeforeClockIn
		}
		rec.ClockOut = &t
	}

	rec, err := s.AttendanceRepository.Create(ctx, rec)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	if err := s.addEntry(ctx, rec.ID, attendance.EntryTypeIn, clockIn, nil); err != nil {
		return attendance.Record{}, err
	}
	if rec.ClockOut != nil {
		if err := s.addEntry(ctx, rec.ID, attendance.EntryTypeOut, *rec.ClockOut, nil); err != nil {
			return attendance.Record{}, err
		}
	}
	return rec, nil
}

func (s *AttendanceServiceImpl) clockOut(ctx context.Context, rec attendance.Record, req attendance.MarkAttendanceRequest, now time.Time) (attendance.Record, error) {
	if rec.IsLocked() {
		return attendance.Record{}, attendance.ErrAttendanceLocked
	}
	if rec.ClockOut != nil {
		return attendance.Record{}, attendance.ErrAlreadyClockedOut
	}

	clockOut := now
	if req.ClockOut != nil && *req.ClockOut != "" {
		t, err := attendance.ParseClockValue(*req.ClockOut, rec.Date, s.loc)
		if err != nil {
			return attendance.Record{}, err
		}
		clockOut = t
	}
	if rec.ClockIn != nil && !clockOut.After(*rec.ClockIn) {
		return attendance.Record{}, attendance.ErrClockOutBeforeClockIn
	}

	rec.ClockOut = &clockOut
	if req.Status != nil {
		rec.Status = attendance.DayStatus(*req.Status)
	}
	if err := s.AttendanceRepository.Update(ctx, rec); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	if err := s.addEntry(ctx, rec.ID, attendance.EntryTypeOut, clockOut, nil); err != nil {
		return attendance.Record{}, err
	}
	return rec, nil
}

func (s *AttendanceServiceImpl) addEntry(ctx context.Context, recordID string, entryType attendance.EntryType, at time.Time, reason *string) error {
	_, err := s.AttendanceRepository.CreateEntry(ctx, attendance.Entry{
		RecordID:  recordID,
		Type:      entryType,
		Timestamp: at,
		Reason:    reason,
	})
	if err != nil {
		return fmt.Errorf("failed to create attendance entry: %w", err)
	}
	return nil
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, actor user.Principal, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.Visibility = user.VisibilityFor(actor, user.PermissionAttendanceViewAll, user.PermissionAttendanceViewTeam)

	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.NewRecordResponse(r, s.loc))
	}
	return attendance.ListAttendanceResponse{
		Records: responses,
		Total:   total,
		Page:    filter.Window.Page,
		Limit:   filter.Window.Limit,
	}, nil
}

// Get implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Get(ctx context.Context, actor user.Principal, id string) (attendance.RecordResponse, error) {
	rec, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if !s.visible(actor, rec) {
		return attendance.RecordResponse{}, user.ErrInsufficientPermissions
	}
	return attendance.NewRecordResponse(rec, s.loc), nil
}

// Create implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Create(ctx context.Context, actor user.Principal, req attendance.CreateAttendanceRequest) (attendance.RecordResponse, error) {
	if !actor.Can(user.PermissionAttendanceManage) {
		return attendance.RecordResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	rec := attendance.Record{
		EmployeeID:     req.EmployeeID,
		Date:           req.ParsedDate,
		Status:         attendance.DayStatus(req.Status),
		ApprovalStatus: approval.TwoStep.Initial(),
	}
	if req.ClockIn != nil {
		t, err := attendance.ParseClockValue(*req.ClockIn, req.ParsedDate, s.loc)
		if err != nil {
			return attendance.RecordResponse{}, err
		}
		rec.ClockIn = &t
	}
	if req.ClockOut != nil {
		t, err := attendance.ParseClockValue(*req.ClockOut, req.ParsedDate, s.loc)
		if err != nil {
			return attendance.RecordResponse{}, err
		}
		if rec.ClockIn != nil && !t.After(*rec.ClockIn) {
			return attendance.RecordResponse{}, attendance.ErrClockOutBeforeClockIn
		}
		rec.ClockOut = &t
	}

	var result attendance.Record
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.EmployeeRepository.GetByID(txCtx, req.EmployeeID); err != nil {
			return fmt.Errorf("failed to get employee: %w", err)
		}
		created, err := s.AttendanceRepository.Create(txCtx, rec)
		if err != nil {
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		reason := "manual entry"
		if created.ClockIn != nil {
			if err := s.addEntry(txCtx, created.ID, attendance.EntryTypeIn, *created.ClockIn, &reason); err != nil {
				return err
			}
		}
		if created.ClockOut != nil {
			if err := s.addEntry(txCtx, created.ID, attendance.EntryTypeOut, *created.ClockOut, &reason); err != nil {
				return err
			}
		}
		result, err = s.AttendanceRepository.GetByID(txCtx, created.ID)
		if err != nil {
			return fmt.Errorf("failed to reload attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return attendance.NewRecordResponse(result, s.loc), nil
}

// Update implements attendance.AttendanceService. Owners may only close an
// open, unconfirmed day; administrators may change times and status until the
// record is finalized.
func (s *AttendanceServiceImpl) Update(ctx context.Context, actor user.Principal, id string, req attendance.UpdateAttendanceRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}
	isAdmin := actor.Can(user.PermissionAttendanceManage)

	var result attendance.Record
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.AttendanceRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}

		if !isAdmin {
			if rec.EmployeeID != actor.EmployeeID {
				return attendance.ErrNotRecordOwner
			}
			if req.ClockIn != nil || req.Status != nil {
				return attendance.ErrStatusOverrideNotAllow
			}
			if rec.IsLocked() || rec.ApprovalStatus != approval.StatusPendingManager {
				return attendance.ErrAttendanceLocked
			}
		} else if rec.ApprovalStatus.IsTerminal() {
			return attendance.ErrAttendanceLocked
		}

		if req.ClockIn != nil {
			t, err := attendance.ParseClockValue(*req.ClockIn, rec.Date, s.loc)
			if err != nil {
				return err
			}
			rec.ClockIn = &t
			if req.Status == nil && rec.Status.Attended() {
				rec.Status = attendance.DayStatusFor(t, s.cutoff, s.loc)
			}
		}
		if req.ClockOut != nil {
			t, err := attendance.ParseClockValue(*req.ClockOut, rec.Date, s.loc)
			if err != nil {
				return err
			}
			rec.ClockOut = &t
		}
		if rec.ClockIn != nil && rec.ClockOut != nil && !rec.ClockOut.After(*rec.ClockIn) {
			return attendance.ErrClockOutBeforeClockIn
		}
		if req.Status != nil {
			rec.Status = attendance.DayStatus(*req.Status)
		}

		if err := s.AttendanceRepository.Update(txCtx, rec); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		result, err = s.AttendanceRepository.GetByID(txCtx, rec.ID)
		if err != nil {
			return fmt.Errorf("failed to reload attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return attendance.NewRecordResponse(result, s.loc), nil
}

// Delete implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Delete(ctx context.Context, actor user.Principal, id string) error {
	if !actor.Can(user.PermissionAttendanceManage) {
		return user.ErrInsufficientPermissions
	}
	if err := s.AttendanceRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attendance record: %w", err)
	}
	return nil
}

// ListEntries implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListEntries(ctx context.Context, actor user.Principal, recordID string) ([]attendance.EntryResponse, error) {
	rec, err := s.AttendanceRepository.GetByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if !s.visible(actor, rec) {
		return nil, user.ErrInsufficientPermissions
	}

	entries, err := s.AttendanceRepository.ListEntries(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance entries: %w", err)
	}
	responses := make([]attendance.EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, attendance.NewEntryResponse(e))
	}
	return responses, nil
}

// AddEntry implements attendance.AttendanceService. An "in" entry opens the
// day when it has no clock-in yet; an "out" entry moves the clock-out.
func (s *AttendanceServiceImpl) AddEntry(ctx context.Context, actor user.Principal, recordID string, req attendance.CreateEntryRequest) (attendance.EntryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.EntryResponse{}, err
	}

	var entry attendance.Entry
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.AttendanceRepository.GetByIDForUpdate(txCtx, recordID)
		if err != nil {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}
		if !s.visible(actor, rec) {
			return user.ErrInsufficientPermissions
		}
		if rec.IsLocked() {
			return attendance.ErrAttendanceLocked
		}

		now := s.now()
		switch attendance.EntryType(req.EntryType) {
		case attendance.EntryTypeIn:
			if rec.ClockIn == nil {
				rec.ClockIn = &now
				rec.Status = attendance.DayStatusFor(now, s.cutoff, s.loc)
			}
		case attendance.EntryTypeOut:
			if rec.ClockIn != nil && !now.After(*rec.ClockIn) {
				return attendance.ErrClockOutBeforeClockIn
			}
			rec.ClockOut = &now
		}
		if err := s.AttendanceRepository.Update(txCtx, rec); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}

		entry, err = s.AttendanceRepository.CreateEntry(txCtx, attendance.Entry{
			RecordID:  rec.ID,
			Type:      attendance.EntryType(req.EntryType),
			Timestamp: now,
			Reason:    req.Reason,
		})
		if err != nil {
			return fmt.Errorf("failed to create attendance entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.EntryResponse{}, err
	}
	return attendance.NewEntryResponse(entry), nil
}

// DeleteEntry implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteEntry(ctx context.Context, actor user.Principal, recordID, entryID string) error {
	if !actor.Can(user.PermissionAttendanceDeleteEntry) {
		return user.ErrInsufficientPermissions
	}

	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.AttendanceRepository.GetByIDForUpdate(txCtx, recordID)
		if err != nil {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}
		if !s.visible(actor, rec) {
			return user.ErrInsufficientPermissions
		}
		if rec.IsLocked() {
			return attendance.ErrAttendanceLocked
		}
		if _, err := s.AttendanceRepository.GetEntry(txCtx, recordID, entryID); err != nil {
			return fmt.Errorf("failed to get attendance entry: %w", err)
		}
		if err := s.AttendanceRepository.DeleteEntry(txCtx, entryID); err != nil {
			return fmt.Errorf("failed to delete attendance entry: %w", err)
		}
		return nil
	})
}

// Confirm implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Confirm(ctx context.Context, actor user.Principal, id string) (attendance.RecordResponse, error) {
	var result attendance.Record
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.AttendanceRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}
		if rec.EmployeeID != actor.EmployeeID && !actor.Can(user.PermissionAttendanceManage) {
			return attendance.ErrNotRecordOwner
		}
		if rec.IsConfirmed {
			return attendance.ErrAlreadyConfirmed
		}
		if rec.ApprovalStatus.IsTerminal() {
			return attendance.ErrAttendanceLocked
		}
		if rec.EntriesCount == 0 && rec.ClockIn == nil {
			return attendance.ErrNothingToConfirm
		}

		now := s.now()
		rec.IsConfirmed = true
		rec.ConfirmedAt = &now
		if err := s.AttendanceRepository.Update(txCtx, rec); err != nil {
			return fmt.Errorf("failed to confirm attendance record: %w", err)
		}
		result = rec
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	return attendance.NewRecordResponse(result, s.loc), nil
}

// Approve implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Approve(ctx context.Context, actor user.Principal, id string) (attendance.RecordResponse, error) {
	return s.decide(ctx, actor, id, approval.ActionApprove, nil)
}

// Reject implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Reject(ctx context.Context, actor user.Principal, id string, req approval.DecisionRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}
	return s.decide(ctx, actor, id, approval.ActionReject, req.Reason)
}

func (s *AttendanceServiceImpl) decide(ctx context.Context, actor user.Principal, id string, action approval.Action, reason *string) (attendance.RecordResponse, error) {
	var decided attendance.Record
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.AttendanceRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}

		next, err := approval.TwoStep.Decide(
			rec.ApprovalStatus,
			action,
			approval.Actor{EmployeeID: actor.EmployeeID, Role: actor.Role},
			approval.Subject{EmployeeID: rec.EmployeeID, ManagerID: rec.EmployeeManager},
		)
		if err != nil {
			return err
		}

		rec.Trail.Record(rec.ApprovalStatus, next, actor.EmployeeID, s.now(), reason)
		rec.ApprovalStatus = next
		if err := s.AttendanceRepository.Update(txCtx, rec); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		decided = rec
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	s.notify(ctx, decided, actor.EmployeeID, reason)
	return attendance.NewRecordResponse(decided, s.loc), nil
}

func (s *AttendanceServiceImpl) notify(ctx context.Context, rec attendance.Record, actorID string, reason *string) {
	if s.notifier == nil {
		return
	}
	s.notifier.ApprovalChanged(ctx, notification.ApprovalNotice{
		Item:      notification.ItemAttendance,
		ItemID:    rec.ID,
		SubjectID: rec.EmployeeID,
		ActorID:   actorID,
		Status:    rec.ApprovalStatus,
		Reason:    reason,
		Summary:   fmt.Sprintf("attendance on %s (%s)", rec.Date.Format("2006-01-02"), rec.Status),
	})
}

func (s *AttendanceServiceImpl) visible(actor user.Principal, rec attendance.Record) bool {
	vis := user.VisibilityFor(actor, user.PermissionAttendanceViewAll, user.PermissionAttendanceViewTeam)
	return vis.Allows(rec.EmployeeID, rec.EmployeeManager)
}

func isNotFound(err error) bool {
	return errors.Is(err, attendance.ErrAttendanceNotFound)
}

func hasValue(s *string) bool {
	return s != nil && *s != ""
}
