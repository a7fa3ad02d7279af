package notification

import (
	"testing"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/stretchr/testify/assert"
)

func TestTypeFor(t *testing.T) {
	tests := []struct {
		item   Item
		status approval.Status
		want   NotificationType
	}{
		{ItemLeave, approval.StatusPendingManager, TypeLeaveSubmitted},
		{ItemLeave, approval.StatusPendingAdmin, TypeLeavePendingAdmin},
		{ItemLeave, approval.StatusApproved, TypeLeaveApproved},
		{ItemLeave, approval.StatusRejected, TypeLeaveRejected},
		{ItemAttendance, approval.StatusPendingManager, TypeAttendanceSubmitted},
		{ItemAttendance, approval.StatusPendingAdmin, TypeAttendancePendingAdmin},
		{ItemAttendance, approval.StatusApproved, TypeAttendanceApproved},
		{ItemAttendance, approval.StatusRejected, TypeAttendanceRejected},
	}
	for _, tt := range tests {
		t.Run(string(tt.item)+"/"+string(tt.status), func(t *testing.T) {
			got := TypeFor(tt.item, tt.status)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNotificationTypeIsValid(t *testing.T) {
	assert.False(t, NotificationType("payroll_generated").IsValid())
	assert.False(t, NotificationType("").IsValid())
}

func TestMarkAsReadRequestValidate(t *testing.T) {
	assert.Error(t, MarkAsReadRequest{}.Validate())
	assert.Error(t, MarkAsReadRequest{NotificationIDs: []string{"nope"}}.Validate())
	assert.NoError(t, MarkAsReadRequest{NotificationIDs: []string{"01890a5d-ac96-774b-bcce-b302099a8057"}}.Validate())
}

func TestUpdatePreferenceRequestValidate(t *testing.T) {
	assert.Error(t, UpdatePreferenceRequest{NotificationType: "unknown"}.Validate())
	assert.NoError(t, UpdatePreferenceRequest{NotificationType: TypeLeaveApproved}.Validate())
}

func TestPendingDigestTotal(t *testing.T) {
	d := PendingDigest{Leave: 2, Attendance: 1, Projects: 3}
	assert.Equal(t, 6, d.Total())
}
