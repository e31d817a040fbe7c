package paymentmethod

import (
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// History is one entry of an employee's pay configuration log. EndDate nil marks the
// entry currently in force; at most one such entry exists per employee.
type History struct {
	ID            int64
	EmployeeID    int64
	PaymentMethod employee.PaymentMethod
	PayPercentage *decimal.Decimal
	MileRate      *decimal.Decimal
	FlatRate      *decimal.Decimal
	EffectiveDate time.Time
	EndDate       *time.Time
	Notes         *string
	CreatedBy     *string
	CreatedAt     time.Time
}

// AppliesOn reports whether the entry covers date: effective <= date < end.
func (h History) AppliesOn(date time.Time) bool {
	if h.EffectiveDate.After(date) {
		return false
	}
	return h.EndDate == nil || h.EndDate.After(date)
}

type Source string

const (
	SourceHistory Source = "history"
	SourceCurrent Source = "current"
)
