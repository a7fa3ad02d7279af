package holiday

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/pkg/validator"
)

type HolidayResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Date        string    `json:"date"`
	Weekday     string    `json:"weekday"`
	Type        string    `json:"type"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewHolidayResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:          h.ID,
		Name:        h.Name,
		Date:        h.Date.Format("2006-01-02"),
		Weekday:     h.Date.Weekday().String(),
		Type:        string(h.Type),
		Description: h.Description,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

type CreateHolidayRequest struct {
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`

	ParsedDate time.Time `json:"-"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 150 {
		errs.Add("name", "name must be at most 150 characters")
	}
	if d, ok := validator.IsValidDate(r.Date); ok {
		r.ParsedDate = d
	} else {
		errs.Add("date", "date must be YYYY-MM-DD")
	}
	if r.Type == "" {
		r.Type = string(HolidayTypePublic)
	} else if !HolidayType(r.Type).IsValid() {
		errs.Add("type", "type must be Public or Company")
	}

	return errs.OrNil()
}

type UpdateHolidayRequest struct {
	Name        *string `json:"name,omitempty"`
	Date        *string `json:"date,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (r *UpdateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Date != nil {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs.Add("date", "date must be YYYY-MM-DD")
		}
	}
	if r.Type != nil && !HolidayType(*r.Type).IsValid() {
		errs.Add("type", "type must be Public or Company")
	}

	return errs.OrNil()
}

type HolidayFilter struct {
	Year  int
	Month int
	Type  string
	Page  int
	Limit int
	Skip  int

	Window validator.Page
}

func (f *HolidayFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Year != 0 && (f.Year < 1900 || f.Year > 2200) {
		errs.Add("year", "year is out of range")
	}
	if f.Month != 0 && (f.Month < 1 || f.Month > 12) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if f.Month != 0 && f.Year == 0 {
		errs.Add("month", "month requires year")
	}
	if f.Type != "" && !HolidayType(f.Type).IsValid() {
		errs.Add("type", "type must be Public or Company")
	}
	limit := f.Limit
	if limit == 0 {
		// a year of holidays fits on one page by default
		limit = validator.MaxPageLimit
	}
	f.Window = validator.ResolvePage(f.Page, limit, f.Skip)

	return errs.OrNil()
}

type ListHolidayResponse struct {
	Holidays []HolidayResponse
	Total    int64
	Page     int
	Limit    int
}
