package user

type Permission string

const (
	// People
	PermissionUserView        Permission = "user.view"
	PermissionUserManage      Permission = "user.manage"
	PermissionUserManageAdmin Permission = "user.manage_admins"

	// Attendance
	PermissionAttendanceMark        Permission = "attendance.mark"
	PermissionAttendanceMarkOthers  Permission = "attendance.mark_others"
	PermissionAttendanceViewTeam    Permission = "attendance.view_team"
	PermissionAttendanceViewAll     Permission = "attendance.view_all"
	PermissionAttendanceManage      Permission = "attendance.manage"
	PermissionAttendanceApprove     Permission = "attendance.approve"
	PermissionAttendanceDeleteEntry Permission = "attendance.delete_entry"

	// Leave
	PermissionLeaveCreate       Permission = "leave.create"
	PermissionLeaveCreateOthers Permission = "leave.create_others"
	PermissionLeaveViewTeam     Permission = "leave.view_team"
	PermissionLeaveViewAll      Permission = "leave.view_all"
	PermissionLeaveManage       Permission = "leave.manage"
	PermissionLeaveApprove      Permission = "leave.approve"

	// Calendar
	PermissionHolidayView   Permission = "holiday.view"
	PermissionHolidayManage Permission = "holiday.manage"

	// Projects
	PermissionProjectView    Permission = "project.view"
	PermissionProjectViewAll Permission = "project.view_all"
	PermissionProjectPropose Permission = "project.propose"
	PermissionProjectApprove Permission = "project.approve"

	// Insight
	PermissionDashboardView  Permission = "dashboard.view"
	PermissionReportsView    Permission = "reports.view"
	PermissionReportsViewAll Permission = "reports.view_all"
)

var employeePermissions = []Permission{
	PermissionUserView,
	PermissionAttendanceMark,
	PermissionLeaveCreate,
	PermissionHolidayView,
	PermissionProjectView,
	PermissionDashboardView,
}

var managerPermissions = append(append([]Permission{}, employeePermissions...),
	PermissionAttendanceViewTeam,
	PermissionAttendanceApprove,
	PermissionAttendanceDeleteEntry,
	PermissionLeaveViewTeam,
	PermissionLeaveApprove,
	PermissionProjectPropose,
	PermissionReportsView,
)

var adminPermissions = append(append([]Permission{}, managerPermissions...),
	PermissionUserManage,
	PermissionAttendanceMarkOthers,
	PermissionAttendanceViewAll,
	PermissionAttendanceManage,
	PermissionLeaveCreateOthers,
	PermissionLeaveViewAll,
	PermissionLeaveManage,
	PermissionHolidayManage,
	PermissionProjectViewAll,
	PermissionProjectApprove,
	PermissionReportsViewAll,
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdminMaster: append(append([]Permission{}, adminPermissions...), PermissionUserManageAdmin),
	RoleAdmin:       adminPermissions,
	RoleManager:     managerPermissions,
	RoleEmployee:    employeePermissions,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
