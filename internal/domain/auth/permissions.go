package auth

const (
	PermTimesheetSelf   = "timesheet.self"
	PermTimesheetManage = "timesheet.manage"
	PermPayRatesRead    = "payrates.read"
	PermPayRatesWrite   = "payrates.write"
	PermHolidaysRead    = "holidays.read"
	PermHolidaysWrite   = "holidays.write"
	PermPayrollReport   = "payroll.report"
	PermAuditRead       = "audit.read"
	PermSystemAdmin     = "admin.system"
)

var DefaultPermissions = []string{
	PermTimesheetSelf,
	PermTimesheetManage,
	PermPayRatesRead,
	PermPayRatesWrite,
	PermHolidaysRead,
	PermHolidaysWrite,
	PermPayrollReport,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleTeamMember: {
		PermTimesheetSelf,
		PermHolidaysRead,
	},
	RoleAdmin: {
		PermTimesheetSelf,
		PermTimesheetManage,
		PermPayRatesRead,
		PermPayRatesWrite,
		PermHolidaysRead,
		PermHolidaysWrite,
		PermPayrollReport,
		PermAuditRead,
		PermSystemAdmin,
	},
}
