package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
)

type notificationRepository struct {
	s *Store
}

func (s *Store) Notifications() notification.Repository {
	return &notificationRepository{s: s}
}

func prefKey(employeeID string, t notification.NotificationType) string {
	return employeeID + "/" + string(t)
}

func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) error {
	return r.CreateBatch(ctx, []notification.Notification{n})
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = newID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		r.s.notifications[n.ID] = n
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID string, filter notification.NotificationFilter) ([]notification.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched := []notification.Notification{}
	for _, n := range r.s.notifications {
		if n.RecipientID != recipientID || (filter.UnreadOnly && n.IsRead) {
			continue
		}
		matched = append(matched, n)
	}
	// ids are time ordered, newest first
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return page(matched, filter.Window.Offset, filter.Window.Limit), int64(len(matched)), nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, x := range r.s.notifications {
		if x.RecipientID == recipientID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, recipientID string, ids []string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var updated int64
	for _, id := range ids {
		n, ok := r.s.notifications[id]
		if !ok || n.RecipientID != recipientID || n.IsRead {
			continue
		}
		when := at
		n.IsRead, n.ReadAt = true, &when
		r.s.notifications[id] = n
		updated++
	}
	return updated, nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var updated int64
	for id, n := range r.s.notifications {
		if n.RecipientID != recipientID || n.IsRead {
			continue
		}
		when := at
		n.IsRead, n.ReadAt = true, &when
		r.s.notifications[id] = n
		updated++
	}
	return updated, nil
}

func (r *notificationRepository) Delete(ctx context.Context, recipientID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return notification.ErrNotificationNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

func (r *notificationRepository) GetPreferences(ctx context.Context, employeeID string) ([]notification.NotificationPreference, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []notification.NotificationPreference{}
	for _, p := range r.s.preferences {
		if p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *notificationRepository) GetPreference(ctx context.Context, employeeID string, t notification.NotificationType) (notification.NotificationPreference, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.preferences[prefKey(employeeID, t)]
	if !ok {
		return notification.NotificationPreference{}, notification.ErrPreferenceNotFound
	}
	return p, nil
}

func (r *notificationRepository) UpsertPreference(ctx context.Context, pref notification.NotificationPreference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.preferences[prefKey(pref.EmployeeID, pref.NotificationType)] = pref
	return nil
}

// PendingApprovals routes pending items the same way the SQL version does:
// manager while Pending_Manager, then the assigned admin, else every admin.
func (r *notificationRepository) PendingApprovals(ctx context.Context) ([]notification.PendingDigest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	digests := map[string]*notification.PendingDigest{}
	route := func(status approval.Status, subjectID string, bump func(*notification.PendingDigest)) {
		var approverID *string
		if subject, ok := r.s.employees[subjectID]; ok {
			if status == approval.StatusPendingManager && subject.ManagerID != nil {
				approverID = subject.ManagerID
			} else {
				approverID = subject.AssignedAdminID
			}
		}
		for _, e := range r.s.employees {
			if !e.IsActive() {
				continue
			}
			if (approverID != nil && e.ID == *approverID) || (approverID == nil && e.Role.IsAdmin()) {
				d, ok := digests[e.ID]
				if !ok {
					d = &notification.PendingDigest{ApproverID: e.ID, ApproverName: e.Name, ApproverEmail: e.Email}
					digests[e.ID] = d
				}
				bump(d)
			}
		}
	}

	for _, l := range r.s.leave {
		if l.Status.IsPending() {
			route(l.Status, l.EmployeeID, func(d *notification.PendingDigest) { d.Leave++ })
		}
	}
	for _, rec := range r.s.records {
		if rec.ApprovalStatus.IsPending() {
			route(rec.ApprovalStatus, rec.EmployeeID, func(d *notification.PendingDigest) { d.Attendance++ })
		}
	}
	for _, p := range r.s.proposals {
		if p.Status == approval.StatusPendingAdmin {
			route(p.Status, "", func(d *notification.PendingDigest) { d.Projects++ })
		}
	}

	out := make([]notification.PendingDigest, 0, len(digests))
	for _, d := range digests {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApproverName < out[j].ApproverName })
	return out, nil
}
