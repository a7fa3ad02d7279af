package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
)

var adminRoles = []user.Role{user.RoleAdmin, user.RoleAdminMaster}

// ApprovalChanged routes a workflow change: submissions go to the manager,
// Pending_Admin goes to the assigned admin (or every admin) and the subject,
// final decisions go to the subject.
func (s *Service) ApprovalChanged(ctx context.Context, notice notification.ApprovalNotice) {
	subject, err := s.employees.GetByID(ctx, notice.SubjectID)
	if err != nil {
		slog.Error("failed to load notification subject", "item", notice.Item, "item_id", notice.ItemID, "error", err)
		return
	}

	data := map[string]interface{}{
		"item":   string(notice.Item),
		"itemId": notice.ItemID,
		"status": string(notice.Status),
	}
	if notice.Reason != nil {
		data["reason"] = *notice.Reason
	}
	nType := notification.TypeFor(notice.Item, notice.Status)
	label := itemLabel(notice.Item)

	var reqs []notification.CreateNotificationRequest
	switch notice.Status {
	case approval.StatusPendingManager:
		approvers := s.firstStageApprovers(ctx, subject)
		for _, a := range approvers {
			reqs = append(reqs, request(a, notice.ActorID, nType,
				fmt.Sprintf("New %s awaiting your approval", label),
				fmt.Sprintf("%s submitted %s.", subject.Name, describe(notice)), data))
		}

	case approval.StatusPendingAdmin:
		for _, a := range s.adminApprovers(ctx, subject) {
			reqs = append(reqs, request(a, notice.ActorID, nType,
				fmt.Sprintf("%s awaiting final approval", capitalize(label)),
				fmt.Sprintf("%s for %s was approved by their manager and needs your sign-off.", capitalize(describe(notice)), subject.Name), data))
		}
		reqs = append(reqs, request(subject, notice.ActorID, nType,
			fmt.Sprintf("Your %s was approved by your manager", label),
			fmt.Sprintf("Your %s is now waiting for an administrator.", describe(notice)), data))

	case approval.StatusApproved:
		reqs = append(reqs, request(subject, notice.ActorID, nType,
			fmt.Sprintf("Your %s was approved", label),
			fmt.Sprintf("Your %s has been approved.", describe(notice)), data))

	case approval.StatusRejected:
		msg := fmt.Sprintf("Your %s has been rejected.", describe(notice))
		if notice.Reason != nil && *notice.Reason != "" {
			msg = fmt.Sprintf("Your %s has been rejected: %s", describe(notice), *notice.Reason)
		}
		reqs = append(reqs, request(subject, notice.ActorID, nType,
			fmt.Sprintf("Your %s was rejected", label), msg, data))
	}

	s.queueAll(ctx, without(reqs, notice.ActorID))
}

// ProjectProposed tells every admin except the proposer.
func (s *Service) ProjectProposed(ctx context.Context, proposalID, proposerID, title string) {
	admins, err := s.employees.ListByRoles(ctx, adminRoles)
	if err != nil {
		slog.Error("failed to list admins", "proposal_id", proposalID, "error", err)
		return
	}
	proposer := proposerID
	if p, err := s.employees.GetByID(ctx, proposerID); err == nil {
		proposer = p.Name
	}

	data := map[string]interface{}{"item": "project", "itemId": proposalID, "status": string(approval.StatusPendingAdmin)}
	reqs := make([]notification.CreateNotificationRequest, 0, len(admins))
	for _, a := range admins {
		reqs = append(reqs, request(a, proposerID, notification.TypeProjectProposed,
			"New project proposal",
			fmt.Sprintf("%s proposed the project %q.", proposer, title), data))
	}
	s.queueAll(ctx, without(reqs, proposerID))
}

// ProjectApproved tells the proposer and the members.
func (s *Service) ProjectApproved(ctx context.Context, proposalID, approverID string, recipientIDs []string, title string) {
	recipients, err := s.employees.GetByIDs(ctx, dedupe(recipientIDs))
	if err != nil {
		slog.Error("failed to load project recipients", "proposal_id", proposalID, "error", err)
		return
	}

	data := map[string]interface{}{"item": "project", "itemId": proposalID, "status": string(approval.StatusApproved)}
	reqs := make([]notification.CreateNotificationRequest, 0, len(recipients))
	for _, r := range recipients {
		reqs = append(reqs, request(r, approverID, notification.TypeProjectApproved,
			"Project approved",
			fmt.Sprintf("The project %q was approved.", title), data))
	}
	s.queueAll(ctx, without(reqs, approverID))
}

// SendApprovalReminders notifies every approver with a non-empty backlog.
func (s *Service) SendApprovalReminders(ctx context.Context) (int, error) {
	digests, err := s.repo.PendingApprovals(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending approvals: %w", err)
	}

	sent := 0
	for _, d := range digests {
		if d.Total() == 0 {
			continue
		}
		err := s.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID:    d.ApproverID,
			RecipientEmail: d.ApproverEmail,
			RecipientName:  d.ApproverName,
			Type:           notification.TypeApprovalReminder,
			Title:          "Approvals waiting for you",
			Message: fmt.Sprintf("You have %d pending item(s): %d leave request(s), %d attendance record(s), %d project proposal(s).",
				d.Total(), d.Leave, d.Attendance, d.Projects),
			Data: map[string]interface{}{
				"leave":      d.Leave,
				"attendance": d.Attendance,
				"projects":   d.Projects,
			},
		})
		if err != nil {
			slog.Error("failed to queue approval reminder", "approver_id", d.ApproverID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

// firstStageApprovers is the manager, else the assigned admin, else every admin.
func (s *Service) firstStageApprovers(ctx context.Context, subject employee.Employee) []employee.Employee {
	if subject.ManagerID != nil {
		if m, err := s.employees.GetByID(ctx, *subject.ManagerID); err == nil {
			return []employee.Employee{m}
		}
	}
	return s.adminApprovers(ctx, subject)
}

// adminApprovers is the assigned admin, else every admin.
func (s *Service) adminApprovers(ctx context.Context, subject employee.Employee) []employee.Employee {
	if subject.AssignedAdminID != nil {
		if a, err := s.employees.GetByID(ctx, *subject.AssignedAdminID); err == nil && a.IsActive() {
			return []employee.Employee{a}
		}
	}
	admins, err := s.employees.ListByRoles(ctx, adminRoles)
	if err != nil {
		slog.Error("failed to list admins", "error", err)
		return nil
	}
	return admins
}

func (s *Service) queueAll(ctx context.Context, reqs []notification.CreateNotificationRequest) {
	if len(reqs) == 0 {
		return
	}
	_ = s.QueueBulkNotification(ctx, reqs)
}

func request(to employee.Employee, senderID string, t notification.NotificationType, title, message string, data map[string]interface{}) notification.CreateNotificationRequest {
	req := notification.CreateNotificationRequest{
		RecipientID:    to.ID,
		RecipientEmail: to.Email,
		RecipientName:  to.Name,
		Type:           t,
		Title:          title,
		Message:        message,
		Data:           data,
	}
	if senderID != "" {
		sender := senderID
		req.SenderID = &sender
	}
	return req
}

// without drops requests addressed to the actor and duplicates.
func without(reqs []notification.CreateNotificationRequest, actorID string) []notification.CreateNotificationRequest {
	seen := make(map[string]struct{}, len(reqs))
	out := reqs[:0]
	for _, r := range reqs {
		if r.RecipientID == actorID {
			continue
		}
		if _, dup := seen[r.RecipientID]; dup {
			continue
		}
		seen[r.RecipientID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func itemLabel(item notification.Item) string {
	if item == notification.ItemAttendance {
		return "attendance record"
	}
	return "leave request"
}

func describe(n notification.ApprovalNotice) string {
	if n.Summary != "" {
		return n.Summary
	}
	return itemLabel(n.Item)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
