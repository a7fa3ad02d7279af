package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func marshalData(data map[string]interface{}) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification data: %w", err)
	}
	return b, nil
}

func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) error {
	return r.CreateBatch(ctx, []notification.Notification{n})
}

// CreateBatch inserts every notification with one multi-row INSERT
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	const cols = 9
	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]interface{}, 0, len(notifications)*cols)

	for i, n := range notifications {
		if n.ID == "" {
			n.ID = newID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		dataJSON, err := marshalData(n.Data)
		if err != nil {
			return err
		}

		base := i * cols
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		valueArgs = append(valueArgs,
			n.ID,
			n.RecipientID,
			n.SenderID,
			string(n.Type),
			n.Title,
			n.Message,
			dataJSON,
			n.IsRead,
			n.CreatedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, data, is_read, created_at)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to batch create notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID string, filter notification.NotificationFilter) ([]notification.Notification, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "recipient_id = $1"
	args := []interface{}{recipientID}
	if filter.UnreadOnly {
		whereClause += " AND is_read = false"
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, recipient_id, sender_id, type, title, message, data, is_read, read_at, created_at
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, whereClause)
	args = append(args, filter.Window.Limit, filter.Window.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		var dataJSON []byte
		var notifType string

		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.SenderID,
			&notifType,
			&n.Title,
			&n.Message,
			&dataJSON,
			&n.IsRead,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}

		n.Type = notification.NotificationType(notifType)
		if dataJSON != nil {
			if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal notification data: %w", err)
			}
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`
	if err := q.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, recipientID string, ids []string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notifications SET is_read = true, read_at = $3
		WHERE recipient_id = $1 AND id = ANY($2::uuid[]) AND is_read = false
	`, recipientID, ids, at)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notifications SET is_read = true, read_at = $2
		WHERE recipient_id = $1 AND is_read = false
	`, recipientID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, recipientID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) GetPreferences(ctx context.Context, employeeID string) ([]notification.NotificationPreference, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT employee_id, notification_type, email_enabled, push_enabled, updated_at
		FROM notification_preferences
		WHERE employee_id = $1
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	defer rows.Close()

	prefs := []notification.NotificationPreference{}
	for rows.Next() {
		var p notification.NotificationPreference
		var notifType string
		if err := rows.Scan(&p.EmployeeID, &notifType, &p.EmailEnabled, &p.PushEnabled, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		p.NotificationType = notification.NotificationType(notifType)
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

func (r *notificationRepository) GetPreference(ctx context.Context, employeeID string, notifType notification.NotificationType) (notification.NotificationPreference, error) {
	q := GetQuerier(ctx, r.db)

	p := notification.NotificationPreference{EmployeeID: employeeID, NotificationType: notifType}
	err := q.QueryRow(ctx, `
		SELECT email_enabled, push_enabled, updated_at
		FROM notification_preferences
		WHERE employee_id = $1 AND notification_type = $2
	`, employeeID, string(notifType)).Scan(&p.EmailEnabled, &p.PushEnabled, &p.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return notification.NotificationPreference{}, notification.ErrPreferenceNotFound
		}
		return notification.NotificationPreference{}, fmt.Errorf("failed to get preference: %w", err)
	}
	return p, nil
}

func (r *notificationRepository) UpsertPreference(ctx context.Context, pref notification.NotificationPreference) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notification_preferences (employee_id, notification_type, email_enabled, push_enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, notification_type)
		DO UPDATE SET email_enabled = $3, push_enabled = $4, updated_at = $5
	`
	if pref.UpdatedAt.IsZero() {
		pref.UpdatedAt = time.Now()
	}
	_, err := q.Exec(ctx, query,
		pref.EmployeeID,
		string(pref.NotificationType),
		pref.EmailEnabled,
		pref.PushEnabled,
		pref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}

// PendingApprovals routes every pending item to the approver expected to act:
// the subject's manager while Pending_Manager, then the assigned admin. Items
// with nobody assigned fall to every active admin.
func (r *notificationRepository) PendingApprovals(ctx context.Context) ([]notification.PendingDigest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH pending AS (
			SELECT 'leave' AS kind, lr.status, e.manager_id, e.assigned_admin_id
			FROM leave_requests lr
			JOIN employees e ON lr.employee_id = e.id
			WHERE lr.status IN ('Pending_Manager', 'Pending_Admin')
			UNION ALL
			SELECT 'attendance', a.approval_status, e.manager_id, e.assigned_admin_id
			FROM attendance_records a
			JOIN employees e ON a.employee_id = e.id
			WHERE a.approval_status IN ('Pending_Manager', 'Pending_Admin')
			UNION ALL
			SELECT 'project', p.status, NULL::uuid, NULL::uuid
			FROM project_proposals p
			WHERE p.status = 'Pending_Admin'
		), routed AS (
			SELECT kind,
			       COALESCE(CASE WHEN status = 'Pending_Manager' THEN manager_id END, assigned_admin_id) AS approver_id
			FROM pending
		)
		SELECT ap.id, ap.name, ap.email,
		       COUNT(*) FILTER (WHERE r.kind = 'leave'),
		       COUNT(*) FILTER (WHERE r.kind = 'attendance'),
		       COUNT(*) FILTER (WHERE r.kind = 'project')
		FROM routed r
		JOIN employees ap
		  ON ap.id = r.approver_id
		  OR (r.approver_id IS NULL AND ap.role IN ('ADMIN', 'ADMIN_MASTER'))
		WHERE ap.status = 'Active'
		GROUP BY ap.id, ap.name, ap.email
		ORDER BY ap.name
	`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending approvals: %w", err)
	}
	defer rows.Close()

	digests := []notification.PendingDigest{}
	for rows.Next() {
		var d notification.PendingDigest
		if err := rows.Scan(&d.ApproverID, &d.ApproverName, &d.ApproverEmail, &d.Leave, &d.Attendance, &d.Projects); err != nil {
			return nil, fmt.Errorf("failed to scan pending approvals: %w", err)
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}
