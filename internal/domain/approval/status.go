package approval

import "time"

type Status string

const (
	StatusPendingManager Status = "Pending_Manager"
	StatusPendingAdmin   Status = "Pending_Admin"
	StatusApproved       Status = "Approved"
	StatusRejected       Status = "Rejected"
)

// Statuses lists every approval status, in workflow order.
var Statuses = []Status{StatusPendingManager, StatusPendingAdmin, StatusApproved, StatusRejected}

func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) IsPending() bool {
	return s == StatusPendingManager || s == StatusPendingAdmin
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// EntersApproved reports whether moving prev -> next lands in Approved for the
// first time. Side effects tied to approval (leave balance) key off this.
func EntersApproved(prev, next Status) bool {
	return next == StatusApproved && prev != StatusApproved
}

// Trail records who moved an item out of each pending stage.
type Trail struct {
	ManagerReviewerID *string
	ManagerReviewedAt *time.Time
	AdminReviewerID   *string
	AdminReviewedAt   *time.Time
	RejectionReason   *string
}

// Record stamps the stage that was just left.
func (t *Trail) Record(from, to Status, actorID string, at time.Time, reason *string) {
	id := actorID
	when := at
	switch from {
	case StatusPendingManager:
		t.ManagerReviewerID = &id
		t.ManagerReviewedAt = &when
	case StatusPendingAdmin:
		t.AdminReviewerID = &id
		t.AdminReviewedAt = &when
	}
	if to == StatusRejected && reason != nil {
		r := *reason
		t.RejectionReason = &r
	}
}

// DecisionRequest is the optional body of approve/reject calls.
type DecisionRequest struct {
	Reason *string `json:"reason,omitempty"`
}

func (r *DecisionRequest) Validate() error {
	if r.Reason != nil && len(*r.Reason) > 1000 {
		return ErrReasonTooLong
	}
	return nil
}
