package leave

import (
	"context"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hr-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notification.ApprovalNotice
}

func (n *recordingNotifier) ApprovalChanged(ctx context.Context, notice notification.ApprovalNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) ProjectProposed(ctx context.Context, proposalID, proposerID, title string) {}

func (n *recordingNotifier) ProjectApproved(ctx context.Context, proposalID, approverID string, recipientIDs []string, title string) {
}

func (n *recordingNotifier) statuses() []approval.Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]approval.Status, 0, len(n.notices))
	for _, notice := range n.notices {
		out = append(out, notice.Status)
	}
	return out
}

type fixture struct {
	store    *memory.Store
	svc      leave.LeaveService
	notifier *recordingNotifier

	admin    user.Principal
	admin2   user.Principal
	manager  user.Principal
	worker   user.Principal
	outsider user.Principal
}

func newFixture(t *testing.T, balance int) *fixture {
	t.Helper()
	store := memory.NewStore()

	adm := store.SeedEmployee(employee.Employee{Name: "Ayu Admin", Email: "ayu@example.com", Role: user.RoleAdmin, LeaveBalance: 17})
	adm2 := store.SeedEmployee(employee.Employee{Name: "Dewi Admin", Email: "dewi@example.com", Role: user.RoleAdminMaster, LeaveBalance: 17})
	mgr := store.SeedEmployee(employee.Employee{Name: "Budi Manager", Email: "budi@example.com", Role: user.RoleManager, LeaveBalance: 17})
	emp := store.SeedEmployee(employee.Employee{Name: "Rina Staff", Email: "rina@example.com", Role: user.RoleEmployee, LeaveBalance: balance, ManagerID: &mgr.ID})
	other := store.SeedEmployee(employee.Employee{Name: "Tono Staff", Email: "tono@example.com", Role: user.RoleEmployee, LeaveBalance: 17})

	notifier := &recordingNotifier{}
	return &fixture{
		store:    store,
		svc:      NewLeaveService(store, store.LeaveRequests(), store.Employees(), notifier),
		notifier: notifier,
		admin:    user.Principal{EmployeeID: adm.ID, Email: adm.Email, Role: adm.Role},
		admin2:   user.Principal{EmployeeID: adm2.ID, Email: adm2.Email, Role: adm2.Role},
		manager:  user.Principal{EmployeeID: mgr.ID, Email: mgr.Email, Role: mgr.Role},
		worker:   user.Principal{EmployeeID: emp.ID, Email: emp.Email, Role: emp.Role},
		outsider: user.Principal{EmployeeID: other.ID, Email: other.Email, Role: other.Role},
	}
}

func (f *fixture) balance(t *testing.T, p user.Principal) int {
	t.Helper()
	e, err := f.store.Employees().GetByID(context.Background(), p.EmployeeID)
	require.NoError(t, err)
	return e.LeaveBalance
}

func (f *fixture) submit(t *testing.T, start, end string) leave.LeaveResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), f.worker, leave.CreateLeaveRequest{
		Type:      string(leave.LeaveTypeVacation),
		StartDate: start,
		EndDate:   end,
		Reason:    "family trip",
	})
	require.NoError(t, err)
	return resp
}

func TestLeaveApprovalScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 17)

	created := f.submit(t, "2026-03-01", "2026-03-05")
	assert.Equal(t, string(approval.StatusPendingManager), created.Status)
	assert.Equal(t, 5, created.DaysRequested)
	assert.Equal(t, "Rina Staff", created.EmployeeName)

	afterManager, err := f.svc.Approve(ctx, f.manager, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(approval.StatusPendingAdmin), afterManager.Status)
	require.NotNil(t, afterManager.ManagerReviewedBy)
	assert.Equal(t, f.manager.EmployeeID, *afterManager.ManagerReviewedBy)
	assert.Equal(t, 17, f.balance(t, f.worker))

	afterAdmin, err := f.svc.Approve(ctx, f.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(approval.StatusApproved), afterAdmin.Status)
	assert.True(t, afterAdmin.BalanceDeducted)
	assert.Equal(t, 12, f.balance(t, f.worker))

	_, err = f.svc.Approve(ctx, f.admin, created.ID)
	assert.ErrorIs(t, err, approval.ErrAlreadyFinalized)
	_, err = f.svc.Reject(ctx, f.admin2, created.ID, approval.DecisionRequest{})
	assert.ErrorIs(t, err, approval.ErrAlreadyFinalized)
	assert.Equal(t, 12, f.balance(t, f.worker))

	assert.Equal(t, []approval.Status{
		approval.StatusPendingManager,
		approval.StatusPendingAdmin,
		approval.StatusApproved,
	}, f.notifier.statuses())
}

func TestLeaveRejectIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 17)
	created := f.submit(t, "2026-04-06", "2026-04-07")

	_, err := f.svc.Approve(ctx, f.manager, created.ID)
	require.NoError(t, err)

	reason := "peak season"
	rejected, err := f.svc.Reject(ctx, f.admin, created.ID, approval.DecisionRequest{Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, string(approval.StatusRejected), rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, reason, *rejected.RejectionReason)

	_, err = f.svc.Approve(ctx, f.admin, created.ID)
	assert.ErrorIs(t, err, approval.ErrAlreadyFinalized)
	assert.Equal(t, 17, f.balance(t, f.worker))
}

func TestLeaveSelfApprovalRefused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 17)

	own, err := f.svc.Create(ctx, f.admin, leave.CreateLeaveRequest{
		Type: string(leave.LeaveTypeSick), StartDate: "2026-05-04", EndDate: "2026-05-04", Reason: "flu",
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.admin, own.ID)
	assert.ErrorIs(t, err, approval.ErrSelfApproval)
	_, err = f.svc.Reject(ctx, f.admin, own.ID, approval.DecisionRequest{})
	assert.ErrorIs(t, err, approval.ErrSelfApproval)
}

func TestLeaveManagerMustBeDirectManager(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 17)

	resp, err := f.svc.Create(ctx, f.outsider, leave.CreateLeaveRequest{
		Type: string(leave.LeaveTypePersonal), StartDate: "2026-05-04", EndDate: "2026-05-05", Reason: "moving house",
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.manager, resp.ID)
	assert.ErrorIs(t, err, approval.ErrNotDirectReport)

	_, err = f.svc.Approve(ctx, f.worker, resp.ID)
	assert.ErrorIs(t, err, approval.ErrNotPermitted)
}

func TestLeaveConcurrentFinalApprovalDeductsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 17)
	created := f.submit(t, "2026-03-01", "2026-03-05")
	_, err := f.svc.Approve(ctx, f.manager, created.ID)
	require.NoError(t, err)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		finalized int
	)
	for i := 0; i < callers; i++ {
		approver := f.admin
		if i%2 == 1 {
			approver = f.admin2
		}
		wg.Add(1)
		go func(p user.Principal) {
			defer wg.Done()
			_, err := f.svc.Approve(ctx, p, created.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, approval.ErrAlreadyFinalized) {
				finalized++
			}
		}(approver)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, finalized)
	assert.Equal(t, 12, f.balance(t, f.worker))
}

func TestLeaveFinalApprovalNeedsBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 17)
	created := f.submit(t, "2026-03-01", "2026-03-05")
	_, err := f.svc.Approve(ctx, f.manager, created.ID)
	require.NoError(t, err)

	_, err = f.store.Employees().AdjustLeaveBalance(ctx, f.worker.EmployeeID, -15)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.admin, created.ID)
	assert.ErrorIs(t, err, leave.ErrInsufficientLeaveBalance)

	got, err := f.svc.Get(ctx, f.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(approval.StatusPendingAdmin), got.Status)
	assert.False(t, got.BalanceDeducted)
	assert.Equal(t, 2, f.balance(t, f.worker))
}

func TestLeaveCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)

	_, err := f.svc.Create(ctx, f.worker, leave.CreateLeaveRequest{
		Type: string(leave.LeaveTypeVacation), StartDate: "2026-03-05", EndDate: "2026-03-01", Reason: "x",
	})
	assert.Error(t, err)

	_, err = f.svc.Create(ctx, f.worker, leave.CreateLeaveRequest{
		Type: string(leave.LeaveTypeVacation), StartDate: "2026-03-01", EndDate: "2026-03-05", Reason: "too long",
	})
	assert.ErrorIs(t, err, leave.ErrInsufficientLeaveBalance)

	f.submit(t, "2026-03-02", "2026-03-03")
	_, err = f.svc.Create(ctx, f.worker, leave.CreateLeaveRequest{
		Type: string(leave.LeaveTypeVacation), StartDate: "2026-03-03", EndDate: "2026-03-03", Reason: "again",
	})
	assert.ErrorIs(t, err, leave.ErrOverlappingLeave)

	onBehalf := f.outsider.EmployeeID
	_, err = f.svc.Create(ctx, f.worker, leave.CreateLeaveRequest{
		EmployeeID: &onBehalf, Type: string(leave.LeaveTypeSick), StartDate: "2026-06-01", EndDate: "2026-06-01", Reason: "sick",
	})
	assert.ErrorIs(t, err, leave.ErrCannotApplyForOthers)

	resp, err := f.svc.Create(ctx, f.admin, leave.CreateLeaveRequest{
		EmployeeID: &onBehalf, Type: string(leave.LeaveTypeSick), StartDate: "2026-06-01", EndDate: "2026-06-01", Reason: "sick",
	})
	require.NoError(t, err)
	assert.Equal(t, onBehalf, resp.EmployeeID)
}

func TestLeaveUpdateAndDeleteOnlyWhilePending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 17)
	created := f.submit(t, "2026-03-02", "2026-03-03")

	end := "2026-03-04"
	updated, err := f.svc.Update(ctx, f.worker, created.ID, leave.UpdateLeaveRequest{EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.DaysRequested)

	_, err = f.svc.Update(ctx, f.outsider, created.ID, leave.UpdateLeaveRequest{EndDate: &end})
	assert.ErrorIs(t, err, leave.ErrNotRequestOwner)

	_, err = f.svc.Approve(ctx, f.manager, created.ID)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, f.worker, created.ID, leave.UpdateLeaveRequest{EndDate: &end})
	assert.ErrorIs(t, err, leave.ErrLeaveNotEditable)

	_, err = f.svc.Approve(ctx, f.admin, created.ID)
	require.NoError(t, err)
	err = f.svc.Delete(ctx, f.worker, created.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveNotDeletable)

	pending := f.submit(t, "2026-07-01", "2026-07-01")
	require.NoError(t, f.svc.Delete(ctx, f.worker, pending.ID))
	_, err = f.svc.Get(ctx, f.worker, pending.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestLeaveVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 17)
	mine := f.submit(t, "2026-03-02", "2026-03-03")
	_, err := f.svc.Create(ctx, f.outsider, leave.CreateLeaveRequest{
		Type: string(leave.LeaveTypeSick), StartDate: "2026-03-02", EndDate: "2026-03-02", Reason: "sick",
	})
	require.NoError(t, err)

	own, err := f.svc.List(ctx, f.worker, leave.LeaveFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), own.Total)

	team, err := f.svc.List(ctx, f.manager, leave.LeaveFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), team.Total)
	assert.Equal(t, mine.ID, team.Requests[0].ID)

	all, err := f.svc.List(ctx, f.admin, leave.LeaveFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	_, err = f.svc.Get(ctx, f.outsider, mine.ID)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	_, err = f.svc.Get(ctx, f.manager, mine.ID)
	assert.NoError(t, err)

	_, err = f.svc.List(ctx, f.admin, leave.LeaveFilter{SortBy: "salary"})
	assert.Error(t, err)
}
