package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/email"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
	// FrontendURL prefixes the links put into emails.
	FrontendURL string
}

// job is one queued notification plus the channels it goes out on.
type job struct {
	req   notification.CreateNotificationRequest
	push  bool
	email bool
}

// Service stores notifications, pushes them over SSE and mails them when the
// recipient wants email. It also implements notification.ApprovalNotifier.
type Service struct {
	repo      notification.Repository
	employees employee.EmployeeRepository
	hub       *sse.Hub
	mailer    email.EmailService
	config    Config

	queue    chan job
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewNotificationService creates a new notification service with background
// workers. mailer may be nil.
func NewNotificationService(repo notification.Repository, employees employee.EmployeeRepository, hub *sse.Hub, mailer email.EmailService, cfg Config) *Service {
	// Set defaults
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	s := &Service{
		repo:      repo,
		employees: employees,
		hub:       hub,
		mailer:    mailer,
		config:    cfg,
		queue:     make(chan job, cfg.QueueSize),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval,
	)
	return s
}

// worker is the background worker that processes the notification queue
func (s *Service) worker(id int) {
	defer s.wg.Done()

	batch := make([]job, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		s.deliver(id, batch)
		batch = batch[:0]
	}

	for {
		select {
		case j := <-s.queue:
			batch = append(batch, j)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// drain what producers managed to enqueue before Stop
			for {
				select {
				case j := <-s.queue:
					batch = append(batch, j)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// deliver batch-inserts the in-app notifications, publishes them to open
// streams and then sends the emails.
func (s *Service) deliver(workerID int, batch []job) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stored := make([]notification.Notification, 0, len(batch))
	for _, j := range batch {
		if j.push {
			stored = append(stored, newNotification(j.req))
		}
	}

	if len(stored) > 0 {
		if err := s.repo.CreateBatch(ctx, stored); err != nil {
			slog.Error("failed to batch insert notifications", "worker", workerID, "count", len(stored), "error", err)
		} else {
			slog.Debug("inserted notifications", "worker", workerID, "count", len(stored))
			for _, n := range stored {
				s.publish(n)
			}
		}
	}

	for _, j := range batch {
		if j.email {
			s.sendEmail(ctx, j.req)
		}
	}
}

func newNotification(req notification.CreateNotificationRequest) notification.Notification {
	return notification.Notification{
		ID:          uuid.Must(uuid.NewV7()).String(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Data:        req.Data,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}
}

func (s *Service) publish(n notification.Notification) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(n.RecipientID, sse.Event{
		Event: "notification",
		Data:  notification.NewNotificationResponse(n),
	})
}

func (s *Service) emailEnabled() bool {
	return s.mailer != nil && s.mailer.Enabled()
}

func (s *Service) sendEmail(ctx context.Context, req notification.CreateNotificationRequest) {
	to, name := req.RecipientEmail, req.RecipientName
	if to == "" && s.employees != nil {
		e, err := s.employees.GetByID(ctx, req.RecipientID)
		if err != nil {
			slog.Warn("no email address for notification", "recipient_id", req.RecipientID, "error", err)
			return
		}
		to, name = e.Email, e.Name
	}
	if to == "" {
		return
	}

	err := s.mailer.SendNotification(to, email.NotificationData{
		Name:      name,
		Title:     req.Title,
		Message:   req.Message,
		ActionURL: s.actionURL(req),
	})
	if err != nil {
		slog.Error("failed to send notification email", "recipient_id", req.RecipientID, "type", req.Type, "error", err)
	}
}

// actionURL points the email at the page for the item, if there is one.
func (s *Service) actionURL(req notification.CreateNotificationRequest) string {
	if s.config.FrontendURL == "" {
		return ""
	}
	base := strings.TrimRight(s.config.FrontendURL, "/")
	item, _ := req.Data["item"].(string)
	id, _ := req.Data["itemId"].(string)
	switch {
	case item == "" || id == "":
		return base
	case item == "project":
		return fmt.Sprintf("%s/projects/%s", base, id)
	default:
		return fmt.Sprintf("%s/%s/%s", base, item, id)
	}
}

// channels resolves the recipient's preference for the notification type.
// Missing preferences mean both channels are on.
func (s *Service) channels(ctx context.Context, recipientID string, t notification.NotificationType) (push, mail bool, err error) {
	pref, err := s.repo.GetPreference(ctx, recipientID, t)
	if err != nil {
		if !errors.Is(err, notification.ErrPreferenceNotFound) {
			return false, false, err
		}
		pref = notification.DefaultPreference(recipientID, t)
	}
	return pref.PushEnabled, pref.EmailEnabled && s.emailEnabled(), nil
}

// QueueNotification queues a notification for async processing
func (s *Service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	push, mail, err := s.channels(ctx, req.RecipientID, req.Type)
	if err != nil {
		return fmt.Errorf("failed to get notification preference: %w", err)
	}
	if !push && !mail {
		return nil // Skip if disabled
	}
	j := job{req: req, push: push, email: mail}

	select {
	case <-s.stopped:
		return s.directDeliver(ctx, j)
	default:
	}

	select {
	case s.queue <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Queue full, try direct insert
		return s.directDeliver(ctx, j)
	}
}

// QueueBulkNotification queues multiple notifications for async processing
func (s *Service) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := s.QueueNotification(ctx, req); err != nil {
			slog.Error("failed to queue notification", "recipient_id", req.RecipientID, "type", req.Type, "error", err)
		}
	}
	return nil
}

// directDeliver inserts a notification directly when the queue is full or
// the workers are gone.
func (s *Service) directDeliver(ctx context.Context, j job) error {
	if j.push {
		n := newNotification(j.req)
		if err := s.repo.Create(ctx, n); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		s.publish(n)
	}
	if j.email {
		s.sendEmail(ctx, j.req)
	}
	return nil
}

func (s *Service) List(ctx context.Context, recipientID string, filter notification.NotificationFilter) (notification.NotificationListResponse, error) {
	filter.Normalize()

	notifications, total, err := s.repo.List(ctx, recipientID, filter)
	if err != nil {
		return notification.NotificationListResponse{}, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.repo.UnreadCount(ctx, recipientID)
	if err != nil {
		return notification.NotificationListResponse{}, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	responses := make([]notification.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, notification.NewNotificationResponse(n))
	}
	return notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unread,
		Page:          filter.Window.Page,
		Limit:         filter.Window.Limit,
	}, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.UnreadCount(ctx, recipientID)
}

// MarkAsRead marks specified notifications as read
func (s *Service) MarkAsRead(ctx context.Context, recipientID string, req notification.MarkAsReadRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	return s.repo.MarkAsRead(ctx, recipientID, req.NotificationIDs, time.Now())
}

// MarkAllAsRead marks all notifications as read for an employee
func (s *Service) MarkAllAsRead(ctx context.Context, recipientID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, recipientID, time.Now())
}

func (s *Service) Delete(ctx context.Context, recipientID string, notificationID string) error {
	return s.repo.Delete(ctx, recipientID, notificationID)
}

// GetPreferences returns every notification type with its preference,
// defaults filled in for types never changed.
func (s *Service) GetPreferences(ctx context.Context, employeeID string) ([]notification.PreferenceResponse, error) {
	prefs, err := s.repo.GetPreferences(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification preferences: %w", err)
	}

	prefMap := make(map[notification.NotificationType]notification.NotificationPreference, len(prefs))
	for _, p := range prefs {
		prefMap[p.NotificationType] = p
	}

	allTypes := notification.AllNotificationTypes()
	responses := make([]notification.PreferenceResponse, len(allTypes))
	for i, t := range allTypes {
		p, ok := prefMap[t]
		if !ok {
			p = notification.DefaultPreference(employeeID, t)
		}
		responses[i] = notification.PreferenceResponse{
			NotificationType: t,
			EmailEnabled:     p.EmailEnabled,
			PushEnabled:      p.PushEnabled,
		}
	}
	return responses, nil
}

func (s *Service) UpdatePreference(ctx context.Context, employeeID string, req notification.UpdatePreferenceRequest) (notification.PreferenceResponse, error) {
	if err := req.Validate(); err != nil {
		return notification.PreferenceResponse{}, err
	}

	err := s.repo.UpsertPreference(ctx, notification.NotificationPreference{
		EmployeeID:       employeeID,
		NotificationType: req.NotificationType,
		EmailEnabled:     req.EmailEnabled,
		PushEnabled:      req.PushEnabled,
		UpdatedAt:        time.Now(),
	})
	if err != nil {
		return notification.PreferenceResponse{}, fmt.Errorf("failed to update notification preference: %w", err)
	}
	return notification.PreferenceResponse{
		NotificationType: req.NotificationType,
		EmailEnabled:     req.EmailEnabled,
		PushEnabled:      req.PushEnabled,
	}, nil
}

// Subscribe creates an SSE subscription for an employee
func (s *Service) Subscribe(ctx context.Context, recipientID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(recipientID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{ID: event.ID, Event: event.Event, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop flushes queued notifications and waits for the workers. Safe to call
// more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopped)
		close(s.stopCh)
		s.wg.Wait()
		// producers racing Stop may have enqueued after the workers drained
		for {
			select {
			case j := <-s.queue:
				if err := s.directDeliver(context.Background(), j); err != nil {
					slog.Error("failed to deliver notification on stop", "recipient_id", j.req.RecipientID, "error", err)
				}
			default:
				slog.Info("notification service stopped")
				return
			}
		}
	})
}
