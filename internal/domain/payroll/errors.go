package payroll

import "errors"

var (
	ErrPayrollNotFound         = errors.New("payroll record not found")
	ErrPayrollLoadNotFound     = errors.New("load is not linked to a payroll record")
	ErrFuelIntegrationNotFound = errors.New("fuel integration not found")
	ErrFuelAlreadyIntegrated   = errors.New("fuel transaction already imported for this week")
	ErrWeekLocked              = errors.New("payroll week is locked")
	ErrTargetWeekLocked        = errors.New("target payroll week is locked")
	ErrSourceWeekLocked        = errors.New("current payroll week is locked")
	ErrSameWeek                = errors.New("load is already in the target week")
	ErrWeekBusy                = errors.New("payroll week is being updated by another request")
	ErrPayrollFinalized        = errors.New("payroll is already approved or paid")
)

// Skip reasons reported in batch results.
const (
	ReasonWeekLocked       = "Payroll week is locked"
	ReasonEmployeeNotFound = "Employee not found"
	ReasonNoLoads          = "No delivered loads in week"
	ReasonAlreadyImported  = "Already imported for this week"
	ReasonPayrollFinalized = "Payroll already approved"
)
