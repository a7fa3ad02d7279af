package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
)

type holidayRepository struct {
	s *Store
}

func (s *Store) Holidays() holiday.HolidayRepository {
	return &holidayRepository{s: s}
}

func (r *holidayRepository) GetByID(ctx context.Context, id string) (holiday.Holiday, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.holidays[id]
	if !ok {
		return holiday.Holiday{}, holiday.ErrHolidayNotFound
	}
	return h, nil
}

func (r *holidayRepository) List(ctx context.Context, filter holiday.HolidayFilter) ([]holiday.Holiday, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched := []holiday.Holiday{}
	for _, h := range r.s.holidays {
		if filter.Year != 0 && h.Date.Year() != filter.Year {
			continue
		}
		if filter.Month != 0 && int(h.Date.Month()) != filter.Month {
			continue
		}
		if filter.Type != "" && string(h.Type) != filter.Type {
			continue
		}
		matched = append(matched, h)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.Before(matched[j].Date) })
	return page(matched, filter.Window.Offset, filter.Window.Limit), int64(len(matched)), nil
}

func (r *holidayRepository) DatesBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []time.Time{}
	for _, h := range r.s.holidays {
		if !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h.Date)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (r *holidayRepository) CountFrom(ctx context.Context, from time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, h := range r.s.holidays {
		if !h.Date.Before(from) {
			n++
		}
	}
	return n, nil
}

// dateTaken reports another holiday on the same day. Callers hold s.mu.
func (r *holidayRepository) dateTaken(date time.Time, excludeID string) bool {
	for _, h := range r.s.holidays {
		if h.ID != excludeID && h.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (r *holidayRepository) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.dateTaken(h.Date, "") {
		return holiday.Holiday{}, holiday.ErrHolidayExists
	}
	if h.ID == "" {
		h.ID = newID()
	}
	h.CreatedAt = time.Now()
	h.UpdatedAt = h.CreatedAt
	r.s.holidays[h.ID] = h
	return h, nil
}

func (r *holidayRepository) Update(ctx context.Context, h holiday.Holiday) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.holidays[h.ID]
	if !ok {
		return holiday.ErrHolidayNotFound
	}
	if r.dateTaken(h.Date, h.ID) {
		return holiday.ErrHolidayExists
	}
	h.CreatedAt = current.CreatedAt
	h.CreatedBy = current.CreatedBy
	h.UpdatedAt = time.Now()
	r.s.holidays[h.ID] = h
	return nil
}

func (r *holidayRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.holidays[id]; !ok {
		return holiday.ErrHolidayNotFound
	}
	delete(r.s.holidays, id)
	return nil
}
