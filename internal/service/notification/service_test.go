package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/project"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/email"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/sse"
	"github.com/cmlabs-hris/hr-attendance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu      sync.Mutex
	enabled bool
	sent    []email.NotificationData
	to      []string
}

func (m *fakeMailer) Enabled() bool { return m.enabled }

func (m *fakeMailer) SendOnboarding(to string, data email.OnboardingData) error { return nil }

func (m *fakeMailer) SendNotification(to string, data email.NotificationData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, to)
	m.sent = append(m.sent, data)
	return nil
}

func (m *fakeMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.to...)
}

type fixture struct {
	store  *memory.Store
	hub    *sse.Hub
	mailer *fakeMailer
	svc    *Service

	master  employee.Employee
	admin   employee.Employee
	manager employee.Employee
	worker  employee.Employee
	orphan  employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	master := store.SeedEmployee(employee.Employee{Name: "Maya Master", Email: "maya@example.com", Role: user.RoleAdminMaster})
	admin := store.SeedEmployee(employee.Employee{Name: "Adi Admin", Email: "adi@example.com", Role: user.RoleAdmin})
	manager := store.SeedEmployee(employee.Employee{Name: "Budi Manager", Email: "budi@example.com", Role: user.RoleManager, AssignedAdminID: &admin.ID})
	worker := store.SeedEmployee(employee.Employee{Name: "Rina Staff", Email: "rina@example.com", Role: user.RoleEmployee, ManagerID: &manager.ID, AssignedAdminID: &admin.ID})
	orphan := store.SeedEmployee(employee.Employee{Name: "Oki Solo", Email: "oki@example.com", Role: user.RoleEmployee})

	hub := sse.NewHub()
	mailer := &fakeMailer{}
	svc := NewNotificationService(store.Notifications(), store.Employees(), hub, mailer, Config{
		FlushInterval: 10 * time.Millisecond,
		FrontendURL:   "https://hr.example.com/",
	})
	t.Cleanup(svc.Stop)
	t.Cleanup(hub.Shutdown)

	return &fixture{store: store, hub: hub, mailer: mailer, svc: svc, master: master, admin: admin, manager: manager, worker: worker, orphan: orphan}
}

func (f *fixture) inbox(t *testing.T, recipientID string) []notification.NotificationResponse {
	t.Helper()
	list, err := f.svc.List(context.Background(), recipientID, notification.NotificationFilter{})
	require.NoError(t, err)
	return list.Notifications
}

func TestApprovalChangedRouting(t *testing.T) {
	ctx := context.Background()

	t.Run("submission goes to the direct manager", func(t *testing.T) {
		f := newFixture(t)
		f.svc.ApprovalChanged(ctx, notification.ApprovalNotice{
			Item: notification.ItemLeave, ItemID: "leave-1", SubjectID: f.worker.ID, ActorID: f.worker.ID,
			Status: approval.StatusPendingManager, Summary: "annual leave on 2026-03-02",
		})
		f.svc.Stop()

		got := f.inbox(t, f.manager.ID)
		require.Len(t, got, 1)
		assert.Equal(t, notification.TypeLeaveSubmitted, got[0].Type)
		assert.Contains(t, got[0].Message, "Rina Staff submitted annual leave on 2026-03-02")
		assert.Equal(t, "leave-1", got[0].Data["itemId"])
		assert.Empty(t, f.inbox(t, f.worker.ID))
		assert.Empty(t, f.inbox(t, f.admin.ID))
	})

	t.Run("submission without manager goes to every admin", func(t *testing.T) {
		f := newFixture(t)
		f.svc.ApprovalChanged(ctx, notification.ApprovalNotice{
			Item: notification.ItemAttendance, ItemID: "rec-1", SubjectID: f.orphan.ID, ActorID: f.orphan.ID,
			Status: approval.StatusPendingManager,
		})
		f.svc.Stop()

		assert.Len(t, f.inbox(t, f.admin.ID), 1)
		assert.Len(t, f.inbox(t, f.master.ID), 1)
		assert.Equal(t, notification.TypeAttendanceSubmitted, f.inbox(t, f.admin.ID)[0].Type)
	})

	t.Run("manager approval goes to the assigned admin and the subject", func(t *testing.T) {
		f := newFixture(t)
		f.svc.ApprovalChanged(ctx, notification.ApprovalNotice{
			Item: notification.ItemLeave, ItemID: "leave-1", SubjectID: f.worker.ID, ActorID: f.manager.ID,
			Status: approval.StatusPendingAdmin,
		})
		f.svc.Stop()

		assert.Len(t, f.inbox(t, f.admin.ID), 1)
		assert.Len(t, f.inbox(t, f.worker.ID), 1)
		assert.Empty(t, f.inbox(t, f.master.ID))
		assert.Empty(t, f.inbox(t, f.manager.ID))
	})

	t.Run("final decision goes to the subject with the reason", func(t *testing.T) {
		f := newFixture(t)
		reason := "team is short that week"
		f.svc.ApprovalChanged(ctx, notification.ApprovalNotice{
			Item: notification.ItemLeave, ItemID: "leave-1", SubjectID: f.worker.ID, ActorID: f.admin.ID,
			Status: approval.StatusRejected, Reason: &reason,
		})
		f.svc.Stop()

		got := f.inbox(t, f.worker.ID)
		require.Len(t, got, 1)
		assert.Equal(t, notification.TypeLeaveRejected, got[0].Type)
		assert.Contains(t, got[0].Message, reason)
		assert.Equal(t, reason, got[0].Data["reason"])
		assert.Empty(t, f.inbox(t, f.admin.ID))
	})

	t.Run("actor is never notified about their own decision", func(t *testing.T) {
		f := newFixture(t)
		// admin acting on their own assigned report at Pending_Admin
		f.svc.ApprovalChanged(ctx, notification.ApprovalNotice{
			Item: notification.ItemLeave, ItemID: "leave-1", SubjectID: f.manager.ID, ActorID: f.admin.ID,
			Status: approval.StatusPendingAdmin,
		})
		f.svc.Stop()

		assert.Empty(t, f.inbox(t, f.admin.ID))
		assert.Len(t, f.inbox(t, f.manager.ID), 1)
	})
}

func TestProjectNotifications(t *testing.T) {
	ctx := context.Background()

	t.Run("proposal goes to admins except the proposer", func(t *testing.T) {
		f := newFixture(t)
		f.svc.ProjectProposed(ctx, "proj-1", f.admin.ID, "Data warehouse")
		f.svc.Stop()

		got := f.inbox(t, f.master.ID)
		require.Len(t, got, 1)
		assert.Equal(t, notification.TypeProjectProposed, got[0].Type)
		assert.Contains(t, got[0].Message, `Adi Admin proposed the project "Data warehouse"`)
		assert.Empty(t, f.inbox(t, f.admin.ID))
	})

	t.Run("approval goes to proposer and members", func(t *testing.T) {
		f := newFixture(t)
		f.svc.ProjectApproved(ctx, "proj-1", f.admin.ID, []string{f.manager.ID, f.worker.ID, f.worker.ID, f.admin.ID}, "Data warehouse")
		f.svc.Stop()

		assert.Len(t, f.inbox(t, f.manager.ID), 1)
		assert.Len(t, f.inbox(t, f.worker.ID), 1)
		assert.Empty(t, f.inbox(t, f.admin.ID))
	})
}

func TestPreferencesControlChannels(t *testing.T) {
	ctx := context.Background()

	t.Run("both channels off skips the notification", func(t *testing.T) {
		f := newFixture(t)
		f.mailer.enabled = true
		_, err := f.svc.UpdatePreference(ctx, f.worker.ID, notification.UpdatePreferenceRequest{NotificationType: notification.TypeLeaveApproved})
		require.NoError(t, err)

		f.svc.ApprovalChanged(ctx, notification.ApprovalNotice{
			Item: notification.ItemLeave, ItemID: "leave-1", SubjectID: f.worker.ID, ActorID: f.admin.ID, Status: approval.StatusApproved,
		})
		f.svc.Stop()

		assert.Empty(t, f.inbox(t, f.worker.ID))
		assert.Empty(t, f.mailer.recipients())
	})

	t.Run("email only", func(t *testing.T) {
		f := newFixture(t)
		f.mailer.enabled = true
		_, err := f.svc.UpdatePreference(ctx, f.worker.ID, notification.UpdatePreferenceRequest{NotificationType: notification.TypeLeaveApproved, EmailEnabled: true})
		require.NoError(t, err)

		f.svc.ApprovalChanged(ctx, notification.ApprovalNotice{
			Item: notification.ItemLeave, ItemID: "leave-1", SubjectID: f.worker.ID, ActorID: f.admin.ID, Status: approval.StatusApproved,
		})
		f.svc.Stop()

		assert.Empty(t, f.inbox(t, f.worker.ID))
		assert.Equal(t, []string{"rina@example.com"}, f.mailer.recipients())
		assert.Equal(t, "https://hr.example.com/leave/leave-1", f.mailer.sent[0].ActionURL)
	})

	t.Run("disabled mailer sends nothing", func(t *testing.T) {
		f := newFixture(t)
		f.svc.ApprovalChanged(ctx, notification.ApprovalNotice{
			Item: notification.ItemLeave, ItemID: "leave-1", SubjectID: f.worker.ID, ActorID: f.admin.ID, Status: approval.StatusApproved,
		})
		f.svc.Stop()

		assert.Len(t, f.inbox(t, f.worker.ID), 1)
		assert.Empty(t, f.mailer.recipients())
	})

	t.Run("listing merges defaults", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.UpdatePreference(ctx, f.worker.ID, notification.UpdatePreferenceRequest{NotificationType: notification.TypeApprovalReminder, PushEnabled: true})
		require.NoError(t, err)

		prefs, err := f.svc.GetPreferences(ctx, f.worker.ID)
		require.NoError(t, err)
		assert.Len(t, prefs, len(notification.AllNotificationTypes()))
		for _, p := range prefs {
			if p.NotificationType == notification.TypeApprovalReminder {
				assert.False(t, p.EmailEnabled)
				assert.True(t, p.PushEnabled)
			} else {
				assert.True(t, p.EmailEnabled)
			}
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.UpdatePreference(ctx, f.worker.ID, notification.UpdatePreferenceRequest{NotificationType: "bogus"})
		assert.Error(t, err)
	})
}

func TestSendApprovalReminders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.store.LeaveRequests().Create(ctx, leave.LeaveRequest{EmployeeID: f.worker.ID, Status: approval.StatusPendingManager})
	require.NoError(t, err)
	_, err = f.store.LeaveRequests().Create(ctx, leave.LeaveRequest{EmployeeID: f.worker.ID, Status: approval.StatusApproved})
	require.NoError(t, err)
	_, err = f.store.Attendance().Create(ctx, attendance.Record{
		EmployeeID:     f.worker.ID,
		Date:           time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ApprovalStatus: approval.StatusPendingAdmin,
	})
	require.NoError(t, err)
	_, err = f.store.Proposals().Create(ctx, project.Proposal{Title: "Data warehouse", ProposedBy: f.manager.ID, Status: approval.StatusPendingAdmin})
	require.NoError(t, err)

	sent, err := f.svc.SendApprovalReminders(ctx)
	require.NoError(t, err)
	// manager (leave), admin (attendance + project), master (project)
	assert.Equal(t, 3, sent)
	f.svc.Stop()

	adminInbox := f.inbox(t, f.admin.ID)
	require.Len(t, adminInbox, 1)
	assert.Equal(t, notification.TypeApprovalReminder, adminInbox[0].Type)
	assert.EqualValues(t, 1, adminInbox[0].Data["attendance"])
	assert.EqualValues(t, 1, adminInbox[0].Data["projects"])
	assert.EqualValues(t, 0, adminInbox[0].Data["leave"])

	assert.Len(t, f.inbox(t, f.manager.ID), 1)
	assert.Len(t, f.inbox(t, f.master.ID), 1)
	assert.Empty(t, f.inbox(t, f.worker.ID))
}

func TestInboxOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: f.worker.ID, Type: notification.TypeLeaveApproved, Title: "t", Message: "m",
		}))
	}
	require.NoError(t, f.svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: f.manager.ID, Type: notification.TypeLeaveApproved, Title: "t", Message: "m",
	}))
	f.svc.Stop()

	list, err := f.svc.List(ctx, f.worker.ID, notification.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 3)
	assert.EqualValues(t, 3, list.UnreadCount)

	// ids of someone else's notifications are ignored
	managerInbox := f.inbox(t, f.manager.ID)
	n, err := f.svc.MarkAsRead(ctx, f.worker.ID, notification.MarkAsReadRequest{
		NotificationIDs: []string{list.Notifications[0].ID, managerInbox[0].ID},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	unread, err := f.svc.UnreadCount(ctx, f.worker.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	list, err = f.svc.List(ctx, f.worker.ID, notification.NotificationFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 2)

	n, err = f.svc.MarkAllAsRead(ctx, f.worker.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	err = f.svc.Delete(ctx, f.worker.ID, managerInbox[0].ID)
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
	require.NoError(t, f.svc.Delete(ctx, f.manager.ID, managerInbox[0].ID))
	assert.Empty(t, f.inbox(t, f.manager.ID))

	_, err = f.svc.MarkAsRead(ctx, f.worker.ID, notification.MarkAsReadRequest{})
	assert.Error(t, err)
}

func TestSubscribeReceivesPushedNotifications(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t)

	events, cleanup := f.svc.Subscribe(ctx, f.worker.ID)
	defer cleanup()

	require.NoError(t, f.svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: f.worker.ID, Type: notification.TypeLeaveApproved, Title: "Your leave request was approved", Message: "m",
	}))

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "Your leave request was approved", ev.Data.Title)
		assert.NotEmpty(t, ev.Data.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestQueueAfterStopDeliversDirectly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.Stop()
	f.svc.Stop()

	require.NoError(t, f.svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: f.worker.ID, Type: notification.TypeAccountCreated, Title: "t", Message: "m",
	}))
	assert.Len(t, f.inbox(t, f.worker.ID), 1)
}
