// Package memory holds map-backed repositories for service tests and local
// experiments. A transaction holds a store-wide lock and rolls the maps back
// when fn fails, which is enough to reproduce row-lock serialization.
package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/project"
	"github.com/google/uuid"
)

type txKey struct{}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	employees map[string]employee.Employee
	leave     map[string]leave.LeaveRequest
	records   map[string]attendance.Record
	entries   map[string]attendance.Entry
	holidays  map[string]holiday.Holiday
	proposals map[string]project.Proposal

	// not rolled back; notifications are written outside transactions
	notifications map[string]notification.Notification
	preferences   map[string]notification.NotificationPreference
	revoked       map[string]auth.RevokedToken
}

func NewStore() *Store {
	return &Store{
		employees: make(map[string]employee.Employee),
		leave:     make(map[string]leave.LeaveRequest),
		records:   make(map[string]attendance.Record),
		entries:   make(map[string]attendance.Entry),
		holidays:  make(map[string]holiday.Holiday),
		proposals: make(map[string]project.Proposal),

		notifications: make(map[string]notification.Notification),
		preferences:   make(map[string]notification.NotificationPreference),
		revoked:       make(map[string]auth.RevokedToken),
	}
}

// WithinTransaction implements database.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	employees map[string]employee.Employee
	leave     map[string]leave.LeaveRequest
	records   map[string]attendance.Record
	entries   map[string]attendance.Entry
	holidays  map[string]holiday.Holiday
	proposals map[string]project.Proposal
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		employees: copyMap(s.employees),
		leave:     copyMap(s.leave),
		records:   copyMap(s.records),
		entries:   copyMap(s.entries),
		holidays:  copyMap(s.holidays),
		proposals: copyMap(s.proposals),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.leave = snap.leave
	s.records = snap.records
	s.entries = snap.entries
	s.holidays = snap.holidays
	s.proposals = snap.proposals
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// page cuts items to the [offset, offset+limit) window.
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
