package holiday

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

type HolidayServiceImpl struct {
	holiday.HolidayRepository
}

func NewHolidayService(holidayRepository holiday.HolidayRepository) holiday.HolidayService {
	return &HolidayServiceImpl{HolidayRepository: holidayRepository}
}

func (s *HolidayServiceImpl) List(ctx context.Context, filter holiday.HolidayFilter) (holiday.ListHolidayResponse, error) {
	if err := filter.Validate(); err != nil {
		return holiday.ListHolidayResponse{}, err
	}

	holidays, total, err := s.HolidayRepository.List(ctx, filter)
	if err != nil {
		return holiday.ListHolidayResponse{}, fmt.Errorf("failed to list holidays: %w", err)
	}

	responses := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		responses = append(responses, holiday.NewHolidayResponse(h))
	}
	return holiday.ListHolidayResponse{
		Holidays: responses,
		Total:    total,
		Page:     filter.Window.Page,
		Limit:    filter.Window.Limit,
	}, nil
}

func (s *HolidayServiceImpl) Get(ctx context.Context, id string) (holiday.HolidayResponse, error) {
	h, err := s.HolidayRepository.GetByID(ctx, id)
	if err != nil {
		return holiday.HolidayResponse{}, fmt.Errorf("failed to get holiday: %w", err)
	}
	return holiday.NewHolidayResponse(h), nil
}

func (s *HolidayServiceImpl) Create(ctx context.Context, actor user.Principal, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	if !actor.Can(user.PermissionHolidayManage) {
		return holiday.HolidayResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}

	created, err := s.HolidayRepository.Create(ctx, holiday.Holiday{
		Name:        req.Name,
		Date:        req.ParsedDate,
		Type:        holiday.HolidayType(req.Type),
		Description: trimOrNil(req.Description),
		CreatedBy:   &actor.EmployeeID,
	})
	if err != nil {
		return holiday.HolidayResponse{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return holiday.NewHolidayResponse(created), nil
}

func (s *HolidayServiceImpl) Update(ctx context.Context, actor user.Principal, id string, req holiday.UpdateHolidayRequest) (holiday.HolidayResponse, error) {
	if !actor.Can(user.PermissionHolidayManage) {
		return holiday.HolidayResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}

	h, err := s.HolidayRepository.GetByID(ctx, id)
	if err != nil {
		return holiday.HolidayResponse{}, fmt.Errorf("failed to get holiday: %w", err)
	}

	if req.Name != nil {
		h.Name = strings.TrimSpace(*req.Name)
	}
	if req.Date != nil {
		h.Date, _ = validator.IsValidDate(*req.Date)
	}
	if req.Type != nil {
		h.Type = holiday.HolidayType(*req.Type)
	}
	if req.Description != nil {
		h.Description = trimOrNil(req.Description)
	}

	if err := s.HolidayRepository.Update(ctx, h); err != nil {
		return holiday.HolidayResponse{}, fmt.Errorf("failed to update holiday: %w", err)
	}

	updated, err := s.HolidayRepository.GetByID(ctx, id)
	if err != nil {
		return holiday.HolidayResponse{}, fmt.Errorf("failed to get holiday: %w", err)
	}
	return holiday.NewHolidayResponse(updated), nil
}

func (s *HolidayServiceImpl) Delete(ctx context.Context, actor user.Principal, id string) error {
	if !actor.Can(user.PermissionHolidayManage) {
		return user.ErrInsufficientPermissions
	}
	if err := s.HolidayRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return nil
}

func (s *HolidayServiceImpl) CalendarFor(ctx context.Context, from, to time.Time) (holiday.Calendar, error) {
	dates, err := s.HolidayRepository.DatesBetween(ctx, from, to)
	if err != nil {
		return holiday.Calendar{}, fmt.Errorf("failed to load holidays: %w", err)
	}
	return holiday.NewCalendar(dates), nil
}

func (s *HolidayServiceImpl) WorkingDaysInMonth(ctx context.Context, year int, month time.Month) (int, error) {
	first, last := holiday.MonthBounds(year, month)
	dates, err := s.HolidayRepository.DatesBetween(ctx, first, last)
	if err != nil {
		return 0, fmt.Errorf("failed to load holidays: %w", err)
	}
	return holiday.WorkingDaysInMonth(year, month, dates), nil
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
