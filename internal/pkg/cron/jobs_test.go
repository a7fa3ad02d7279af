package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/stretchr/testify/assert"
)

type stubNotifications struct {
	notification.Service
	calls int
	err   error
}

func (s *stubNotifications) SendApprovalReminders(ctx context.Context) (int, error) {
	s.calls++
	return 2, s.err
}

type stubAuth struct {
	auth.AuthService
	purges int
}

func (s *stubAuth) PurgeExpiredRevocations(ctx context.Context) error {
	s.purges++
	return nil
}

func TestMaintenanceJobs(t *testing.T) {
	notifications := &stubNotifications{}
	authSvc := &stubAuth{}
	jobs := NewMaintenanceJobs(notifications, authSvc, 9, time.UTC)
	current := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return current }

	s := NewScheduler()
	jobs.RegisterJobs(s)

	// before the reminder hour only the purge runs
	assert.Empty(t, s.RunOnce(context.Background()))
	assert.Equal(t, 0, notifications.calls)
	assert.Equal(t, 1, authSvc.purges)

	current = current.Add(90 * time.Minute)
	assert.Empty(t, s.RunOnce(context.Background()))
	assert.Empty(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, notifications.calls)
	assert.Equal(t, 3, authSvc.purges)
}

func TestApprovalRemindersFailure(t *testing.T) {
	notifications := &stubNotifications{err: errors.New("db down")}
	jobs := NewMaintenanceJobs(notifications, &stubAuth{}, 0, nil)

	err := jobs.SendApprovalReminders(context.Background())
	assert.ErrorContains(t, err, "db down")
}
