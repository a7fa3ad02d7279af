package holiday

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

type HolidayService interface {
	List(ctx context.Context, filter HolidayFilter) (ListHolidayResponse, error)
	Get(ctx context.Context, id string) (HolidayResponse, error)
	Create(ctx context.Context, actor user.Principal, req CreateHolidayRequest) (HolidayResponse, error)
	Update(ctx context.Context, actor user.Principal, id string, req UpdateHolidayRequest) (HolidayResponse, error)
	Delete(ctx context.Context, actor user.Principal, id string) error

	// CalendarFor loads the holidays of [from, to] into a Calendar.
	CalendarFor(ctx context.Context, from, to time.Time) (Calendar, error)
	WorkingDaysInMonth(ctx context.Context, year int, month time.Month) (int, error)
}
