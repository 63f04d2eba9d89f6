package models

// Threshold kinds
const (
	KindLimit     = "limit"
	KindAllowance = "allowance"
)

// Limit types as exported by Cleemy. Absolute limits block the expense,
// the others only warn.
const (
	LimitTypeAbsolute = "absolute"
	LimitTypeWarning  = "warning"
)

// Period codes
const (
	PeriodDay   = "Day"
	PeriodWeek  = "Week"
	PeriodMonth = "Month"
	PeriodYear  = "Year"
	PeriodNone  = "None"
)

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
