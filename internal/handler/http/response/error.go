package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/haulbook/haulbook-backend-go/internal/domain/auth"
	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/haulbook/haulbook-backend-go/internal/domain/load"
	"github.com/haulbook/haulbook-backend-go/internal/domain/paymentmethod"
	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/domain/paystub"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingActor):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrInvalidEmployeeID):
		BadRequest(w, err.Error(), nil)

	// Load domain errors
	case errors.Is(err, load.ErrLoadNotFound):
		NotFound(w, "Load not found")
	case errors.Is(err, load.ErrLoadHasNoDriver):
		BadRequest(w, "Load has no assigned driver", nil)
	case errors.Is(err, load.ErrLoadNotDelivered):
		BadRequest(w, err.Error(), nil)

	// Payment method errors
	case errors.Is(err, paymentmethod.ErrHistoryNotFound):
		NotFound(w, "Payment method history not found")
	case errors.Is(err, paymentmethod.ErrEffectiveDateBeforeOpenEntry):
		Conflict(w, err.Error())

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrFuelIntegrationNotFound):
		NotFound(w, "Fuel integration not found")
	case errors.Is(err, payroll.ErrWeekLocked),
		errors.Is(err, payroll.ErrTargetWeekLocked),
		errors.Is(err, payroll.ErrSourceWeekLocked),
		errors.Is(err, payroll.ErrWeekBusy),
		errors.Is(err, payroll.ErrPayrollFinalized):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrSameWeek):
		BadRequest(w, err.Error(), nil)

	// Paystub domain errors
	case errors.Is(err, paystub.ErrPaystubNotFound):
		NotFound(w, "Paystub not found")
	case errors.Is(err, paystub.ErrPaystubNotEditable),
		errors.Is(err, paystub.ErrInvalidPaystubTransition):
		Conflict(w, err.Error())
	case errors.Is(err, paystub.ErrPayrollNotReady):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled request error", slog.String("error", err.Error()))
		InternalServerError(w, "An unexpected error occurred")
	}
}
