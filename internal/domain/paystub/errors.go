package paystub

import "errors"

var (
	ErrPaystubNotFound          = errors.New("paystub not found")
	ErrPaystubNotEditable       = errors.New("paystub is approved and can no longer be regenerated")
	ErrInvalidPaystubTransition = errors.New("paystub status does not allow this transition")
	ErrPayrollNotReady          = errors.New("payroll has no calculated figures to snapshot")
)
