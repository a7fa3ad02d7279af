package approval

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTwoStepDecide(t *testing.T) {
	subject := Subject{EmployeeID: "emp-1", ManagerID: strPtr("mgr-1")}

	tests := []struct {
		name    string
		current Status
		action  Action
		actor   Actor
		want    Status
		wantErr error
	}{
		{
			name:    "direct manager approves first stage",
			current: StatusPendingManager,
			action:  ActionApprove,
			actor:   Actor{EmployeeID: "mgr-1", Role: user.RoleManager},
			want:    StatusPendingAdmin,
		},
		{
			name:    "direct manager rejects first stage",
			current: StatusPendingManager,
			action:  ActionReject,
			actor:   Actor{EmployeeID: "mgr-1", Role: user.RoleManager},
			want:    StatusRejected,
		},
		{
			name:    "admin may act at first stage",
			current: StatusPendingManager,
			action:  ActionApprove,
			actor:   Actor{EmployeeID: "adm-1", Role: user.RoleAdmin},
			want:    StatusPendingAdmin,
		},
		{
			name:    "admin master approves second stage",
			current: StatusPendingAdmin,
			action:  ActionApprove,
			actor:   Actor{EmployeeID: "root", Role: user.RoleAdminMaster},
			want:    StatusApproved,
		},
		{
			name:    "admin rejects second stage",
			current: StatusPendingAdmin,
			action:  ActionReject,
			actor:   Actor{EmployeeID: "adm-1", Role: user.RoleAdmin},
			want:    StatusRejected,
		},
		{
			name:    "manager cannot act at admin stage",
			current: StatusPendingAdmin,
			action:  ActionApprove,
			actor:   Actor{EmployeeID: "mgr-1", Role: user.RoleManager},
			wantErr: ErrNotPermitted,
		},
		{
			name:    "employee cannot act",
			current: StatusPendingManager,
			action:  ActionApprove,
			actor:   Actor{EmployeeID: "emp-2", Role: user.RoleEmployee},
			wantErr: ErrNotPermitted,
		},
		{
			name:    "other manager cannot act",
			current: StatusPendingManager,
			action:  ActionApprove,
			actor:   Actor{EmployeeID: "mgr-2", Role: user.RoleManager},
			wantErr: ErrNotDirectReport,
		},
		{
			name:    "approved is terminal",
			current: StatusApproved,
			action:  ActionReject,
			actor:   Actor{EmployeeID: "adm-1", Role: user.RoleAdmin},
			wantErr: ErrAlreadyFinalized,
		},
		{
			name:    "rejected is terminal",
			current: StatusRejected,
			action:  ActionApprove,
			actor:   Actor{EmployeeID: "adm-1", Role: user.RoleAdmin},
			wantErr: ErrAlreadyFinalized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TwoStep.Decide(tt.current, tt.action, tt.actor, subject)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.current, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelfApprovalRejectedForEveryRoleAndStage(t *testing.T) {
	for _, role := range user.Roles {
		for _, status := range Statuses {
			actor := Actor{EmployeeID: "same", Role: role}
			subject := Subject{EmployeeID: "same", ManagerID: strPtr("same")}
			for _, action := range []Action{ActionApprove, ActionReject} {
				_, err := TwoStep.Decide(status, action, actor, subject)
				assert.ErrorIs(t, err, ErrSelfApproval, "role=%s status=%s action=%s", role, status, action)
			}
		}
	}
}

func TestTwoStepReachesApprovedOnlyThroughAdminStage(t *testing.T) {
	subject := Subject{EmployeeID: "emp-1", ManagerID: strPtr("mgr-1")}
	manager := Actor{EmployeeID: "mgr-1", Role: user.RoleManager}
	admin := Actor{EmployeeID: "adm-1", Role: user.RoleAdmin}

	status := TwoStep.Initial()
	assert.Equal(t, StatusPendingManager, status)

	status, err := TwoStep.Decide(status, ActionApprove, manager, subject)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingAdmin, status)

	status, err = TwoStep.Decide(status, ActionApprove, admin, subject)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, status)

	_, err = TwoStep.Decide(status, ActionApprove, admin, subject)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestAdminSignOff(t *testing.T) {
	proposer := Subject{EmployeeID: "mgr-1"}

	next, err := AdminSignOff.Decide(StatusPendingAdmin, ActionApprove, Actor{EmployeeID: "adm-1", Role: user.RoleAdmin}, proposer)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, next)

	_, err = AdminSignOff.Decide(StatusPendingAdmin, ActionApprove, Actor{EmployeeID: "mgr-2", Role: user.RoleManager}, proposer)
	assert.ErrorIs(t, err, ErrNotPermitted)

	_, err = AdminSignOff.Decide(StatusPendingAdmin, ActionReject, Actor{EmployeeID: "adm-1", Role: user.RoleAdmin}, proposer)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = AdminSignOff.Decide(StatusPendingAdmin, ActionApprove, Actor{EmployeeID: "adm-1", Role: user.RoleAdmin}, Subject{EmployeeID: "adm-1"})
	assert.ErrorIs(t, err, ErrSelfApproval)
}

func TestEntersApproved(t *testing.T) {
	assert.True(t, EntersApproved(StatusPendingAdmin, StatusApproved))
	assert.False(t, EntersApproved(StatusApproved, StatusApproved))
	assert.False(t, EntersApproved(StatusPendingManager, StatusPendingAdmin))
	assert.False(t, EntersApproved(StatusPendingAdmin, StatusRejected))
}

func TestTrailRecord(t *testing.T) {
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	var trail Trail

	trail.Record(StatusPendingManager, StatusPendingAdmin, "mgr-1", at, nil)
	require.NotNil(t, trail.ManagerReviewerID)
	assert.Equal(t, "mgr-1", *trail.ManagerReviewerID)
	assert.Nil(t, trail.AdminReviewerID)
	assert.Nil(t, trail.RejectionReason)

	reason := "overlaps release week"
	trail.Record(StatusPendingAdmin, StatusRejected, "adm-1", at.Add(time.Hour), &reason)
	require.NotNil(t, trail.AdminReviewerID)
	assert.Equal(t, "adm-1", *trail.AdminReviewerID)
	require.NotNil(t, trail.RejectionReason)
	assert.Equal(t, reason, *trail.RejectionReason)
}
