package auth

const (
	RoleAdmin   = "admin"
	RolePayroll = "payroll"
	RoleViewer  = "viewer"
)

const (
	PermEmployeesRead   = "employees.read"
	PermEmployeesWrite  = "employees.write"
	PermTimesheetsRead  = "timesheets.read"
	PermTimesheetsWrite = "timesheets.write"
	PermTimesheetsClock = "timesheets.clock"
	PermPayrollRead     = "payroll.read"
	PermPayrollRun      = "payroll.run"
	PermSystemAdmin     = "admin.system"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermTimesheetsRead,
	PermTimesheetsWrite,
	PermTimesheetsClock,
	PermPayrollRead,
	PermPayrollRun,
	PermSystemAdmin,
}

var Roles = []string{RoleAdmin, RolePayroll, RoleViewer}

var RolePermissions = map[string][]string{
	RoleViewer: {
		PermEmployeesRead,
		PermTimesheetsRead,
		PermTimesheetsClock,
		PermPayrollRead,
	},
	RolePayroll: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermTimesheetsRead,
		PermTimesheetsWrite,
		PermTimesheetsClock,
		PermPayrollRead,
		PermPayrollRun,
	},
	RoleAdmin: DefaultPermissions,
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
