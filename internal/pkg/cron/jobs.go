package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
)

// reminderCheckEvery is how often the daily reminder job looks at the clock.
const reminderCheckEvery = 10 * time.Minute

type MaintenanceJobs struct {
	notificationSvc notification.Service
	authSvc         auth.AuthService
	reminderHour    int
	loc             *time.Location
	now             func() time.Time
}

func NewMaintenanceJobs(notificationSvc notification.Service, authSvc auth.AuthService, reminderHour int, loc *time.Location) *MaintenanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &MaintenanceJobs{
		notificationSvc: notificationSvc,
		authSvc:         authSvc,
		reminderHour:    reminderHour,
		loc:             loc,
		now:             time.Now,
	}
}

func (j *MaintenanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddDailyJob("approval_reminders", j.reminderHour, j.loc, reminderCheckEvery, j.now, j.SendApprovalReminders)
	scheduler.AddJob("purge_revoked_tokens", 1*time.Hour, j.PurgeRevokedTokens)
}

// SendApprovalReminders reminds every approver who has items waiting.
func (j *MaintenanceJobs) SendApprovalReminders(ctx context.Context) error {
	slog.Info("Cron: Starting approval reminders job")

	sent, err := j.notificationSvc.SendApprovalReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to send approval reminders: %w", err)
	}

	slog.Info("Cron: Sent approval reminders", "count", sent)
	return nil
}

// PurgeRevokedTokens drops revocations whose tokens have expired anyway.
func (j *MaintenanceJobs) PurgeRevokedTokens(ctx context.Context) error {
	return j.authSvc.PurgeExpiredRevocations(ctx)
}
