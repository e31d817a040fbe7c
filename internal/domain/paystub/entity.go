package paystub

import (
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusApproved Status = "APPROVED"
	StatusPaid     Status = "PAID"
)

// Paystub is a copy of a payroll row's figures taken at generation time.
// Only DRAFT paystubs may be refreshed.
type Paystub struct {
	ID              int64
	PayrollID       int64
	EmployeeID      int64
	WeekStart       time.Time
	WeekEnd         time.Time
	TotalLoads      int
	TotalMiles      int
	GrossRevenue    decimal.Decimal
	BasePay         decimal.Decimal
	FuelDeductions  decimal.Decimal
	OtherDeductions decimal.Decimal
	TotalDeductions decimal.Decimal
	GrossPay        decimal.Decimal
	NetPay          decimal.Decimal
	Status          Status
	GeneratedAt     time.Time
	GeneratedBy     *string
	ApprovedAt      *time.Time
	ApprovedBy      *string
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
}

// CopyFigures overwrites the snapshot fields with the payroll's current values.
func (s *Paystub) CopyFigures(p payroll.IndividualPayroll) {
	s.PayrollID = p.ID
	s.EmployeeID = p.EmployeeID
	s.WeekStart = p.WeekStart
	s.WeekEnd = p.WeekEnd
	s.TotalLoads = p.TotalLoads
	s.TotalMiles = p.TotalMiles
	s.GrossRevenue = p.GrossRevenue
	s.BasePay = p.BasePay
	s.FuelDeductions = p.FuelDeductions
	s.OtherDeductions = p.OtherDeductions
	s.TotalDeductions = p.TotalDeductions
	s.GrossPay = p.GrossPay
	s.NetPay = p.NetPay
	s.EmployeeName = p.EmployeeName
}

// Approve moves a DRAFT paystub to APPROVED.
func (s *Paystub) Approve(by string, at time.Time) error {
	if s.Status != StatusDraft {
		return ErrInvalidPaystubTransition
	}
	s.Status = StatusApproved
	s.ApprovedAt = &at
	s.ApprovedBy = &by
	return nil
}

// MarkPaid moves an APPROVED paystub to PAID.
func (s *Paystub) MarkPaid(at time.Time) error {
	if s.Status != StatusApproved {
		return ErrInvalidPaystubTransition
	}
	s.Status = StatusPaid
	s.PaidAt = &at
	return nil
}
