package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID            int64
	Name          string
	Status        EmploymentStatus
	PaymentMethod PaymentMethod
	PayPercentage *decimal.Decimal
	MileRate      *decimal.Decimal
	FlatRate      *decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "ACTIVE"
	EmploymentStatusInactive EmploymentStatus = "INACTIVE"
)

// PaymentMethod is how a driver's per-load rate is computed upstream of payroll.
type PaymentMethod string

const (
	PaymentMethodPercentage PaymentMethod = "PERCENTAGE"
	PaymentMethodPerMile    PaymentMethod = "PER_MILE"
	PaymentMethodFlat       PaymentMethod = "FLAT"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPercentage, PaymentMethodPerMile, PaymentMethodFlat:
		return true
	}
	return false
}

func (e Employee) IsActive() bool {
	return e.Status == EmploymentStatusActive
}
