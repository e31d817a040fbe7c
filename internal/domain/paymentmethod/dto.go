package paymentmethod

import (
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ResolveRequest struct {
	EmployeeID int64
	Date       string `json:"date" validate:"required,date"`
}

func (r *ResolveRequest) Validate() error {
	errs := validator.Struct(r)
	if r.EmployeeID <= 0 {
		errs.Add("employeeId", "must be a positive integer")
	}
	return errs.OrNil()
}

// ResolvedPaymentMethod is the configuration in force on a date.
type ResolvedPaymentMethod struct {
	EmployeeID    int64            `json:"employeeId"`
	Date          string           `json:"date"`
	PaymentMethod string           `json:"paymentMethod"`
	PayPercentage *decimal.Decimal `json:"payPercentage,omitempty"`
	MileRate      *decimal.Decimal `json:"mileRate,omitempty"`
	FlatRate      *decimal.Decimal `json:"flatRate,omitempty"`
	EffectiveDate *string          `json:"effectiveDate,omitempty"`
	EndDate       *string          `json:"endDate,omitempty"`
	Source        Source           `json:"source"`
}

type CreateHistoryRequest struct {
	EmployeeID    int64            `json:"-"`
	PaymentMethod string           `json:"paymentMethod" validate:"required,oneof=PERCENTAGE PER_MILE FLAT"`
	PayPercentage *decimal.Decimal `json:"payPercentage,omitempty"`
	MileRate      *decimal.Decimal `json:"mileRate,omitempty"`
	FlatRate      *decimal.Decimal `json:"flatRate,omitempty"`
	EffectiveDate string           `json:"effectiveDate" validate:"required,date"`
	Notes         *string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r *CreateHistoryRequest) Validate() error {
	errs := validator.Struct(r)
	if r.EmployeeID <= 0 {
		errs.Add("employeeId", "must be a positive integer")
	}

	switch employee.PaymentMethod(r.PaymentMethod) {
	case employee.PaymentMethodPercentage:
		if r.PayPercentage == nil {
			errs.Add("payPercentage", "is required for PERCENTAGE")
		} else if r.PayPercentage.IsNegative() || r.PayPercentage.GreaterThan(decimal.NewFromInt(100)) {
			errs.Add("payPercentage", "must be between 0 and 100")
		}
	case employee.PaymentMethodPerMile:
		if r.MileRate == nil {
			errs.Add("mileRate", "is required for PER_MILE")
		} else if r.MileRate.IsNegative() {
			errs.Add("mileRate", "must be non-negative")
		}
	case employee.PaymentMethodFlat:
		if r.FlatRate == nil {
			errs.Add("flatRate", "is required for FLAT")
		} else if r.FlatRate.IsNegative() {
			errs.Add("flatRate", "must be non-negative")
		}
	}

	return errs.OrNil()
}

// ParsedEffectiveDate assumes Validate passed.
func (r *CreateHistoryRequest) ParsedEffectiveDate() time.Time {
	t, _ := validator.IsValidDate(r.EffectiveDate)
	return t
}

type HistoryResponse struct {
	ID            int64            `json:"id"`
	EmployeeID    int64            `json:"employeeId"`
	PaymentMethod string           `json:"paymentMethod"`
	PayPercentage *decimal.Decimal `json:"payPercentage,omitempty"`
	MileRate      *decimal.Decimal `json:"mileRate,omitempty"`
	FlatRate      *decimal.Decimal `json:"flatRate,omitempty"`
	EffectiveDate string           `json:"effectiveDate"`
	EndDate       *string          `json:"endDate,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	CreatedBy     *string          `json:"createdBy,omitempty"`
}
