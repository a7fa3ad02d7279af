package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	GetByID(ctx context.Context, id string) (Holiday, error)
	List(ctx context.Context, filter HolidayFilter) ([]Holiday, int64, error)
	// DatesBetween returns holiday dates in [from, to], inclusive.
	DatesBetween(ctx context.Context, from, to time.Time) ([]time.Time, error)
	CountFrom(ctx context.Context, from time.Time) (int64, error)
	Create(ctx context.Context, h Holiday) (Holiday, error)
	Update(ctx context.Context, h Holiday) error
	Delete(ctx context.Context, id string) error
}
