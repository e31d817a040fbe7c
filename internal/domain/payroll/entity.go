package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/week"
	"github.com/shopspring/decimal"
)

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "DRAFT"
	PayrollStatusCalculated PayrollStatus = "CALCULATED"
	PayrollStatusReviewed   PayrollStatus = "REVIEWED"
	PayrollStatusApproved   PayrollStatus = "APPROVED"
	PayrollStatusPaid       PayrollStatus = "PAID"
	PayrollStatusEmpty      PayrollStatus = "EMPTY"
)

func (s PayrollStatus) IsValid() bool {
	switch s {
	case PayrollStatusDraft, PayrollStatusCalculated, PayrollStatusReviewed,
		PayrollStatusApproved, PayrollStatusPaid, PayrollStatusEmpty:
		return true
	}
	return false
}

// IndividualPayroll - one employee, one Monday..Sunday week.
// NetPay = GrossPay - TotalDeductions after every recalculation.
type IndividualPayroll struct {
	ID              int64
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
	Status          PayrollStatus
	IsLocked        bool
	ReviewedDate    *time.Time
	ReviewedBy      *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	EmployeeName *string
}

// NewDraft returns a zeroed DRAFT row for employee and window.
func NewDraft(employeeID int64, w week.Window) IndividualPayroll {
	return IndividualPayroll{
		EmployeeID:      employeeID,
		WeekStart:       w.Start,
		WeekEnd:         w.End,
		GrossRevenue:    decimal.Zero,
		BasePay:         decimal.Zero,
		FuelDeductions:  decimal.Zero,
		OtherDeductions: decimal.Zero,
		TotalDeductions: decimal.Zero,
		GrossPay:        decimal.Zero,
		NetPay:          decimal.Zero,
		Status:          PayrollStatusDraft,
	}
}

// Window returns the payroll week.
func (p IndividualPayroll) Window() week.Window {
	return week.Containing(p.WeekStart)
}

// IsFinalized reports whether the row is APPROVED or PAID. Its figures must not change.
func (p IndividualPayroll) IsFinalized() bool {
	return p.Status == PayrollStatusApproved || p.Status == PayrollStatusPaid
}

// RecalculateFromLoads sums the load snapshots into the earnings fields. Deductions are kept.
func (p *IndividualPayroll) RecalculateFromLoads(loads []PayrollLoad) {
	miles := 0
	gross := decimal.Zero
	base := decimal.Zero
	for _, l := range loads {
		miles += l.Miles
		gross = gross.Add(l.GrossAmount)
		base = base.Add(l.DriverRate)
	}

	p.TotalLoads = len(loads)
	p.TotalMiles = miles
	p.GrossRevenue = gross
	p.BasePay = base
	p.GrossPay = base
	p.TotalDeductions = p.FuelDeductions.Add(p.OtherDeductions)
	p.NetPay = p.GrossPay.Sub(p.TotalDeductions)
}

// ReplaceFuelDeductions swaps the fuel component of TotalDeductions for total.
func (p *IndividualPayroll) ReplaceFuelDeductions(total decimal.Decimal) {
	p.TotalDeductions = p.TotalDeductions.Sub(p.FuelDeductions).Add(total)
	p.FuelDeductions = total
	p.NetPay = p.GrossPay.Sub(p.TotalDeductions)
}

// PayrollLoad - snapshot of a load's figures at the time it was counted.
type PayrollLoad struct {
	ID          int64
	PayrollID   int64
	LoadID      int64
	GrossAmount decimal.Decimal
	DriverRate  decimal.Decimal
	Miles       int
	MovedIn     bool // placed here by a load move, left alone by aggregation
	CreatedAt   time.Time
}

// FuelIntegration links a fuel transaction to a payroll row. A transaction is linked at
// most once per week start.
type FuelIntegration struct {
	ID                int64
	PayrollID         int64
	FuelTransactionID int64
	WeekStart         time.Time
	DeductionAmount   decimal.Decimal
	IsIncluded        bool
	ImportBatchID     uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LoadMove is an append-only audit row for a load reassignment.
type LoadMove struct {
	ID            uuid.UUID
	LoadID        int64
	DriverID      int64
	FromPayrollID *int64
	ToPayrollID   int64
	FromWeekStart time.Time
	FromWeekEnd   time.Time
	ToWeekStart   time.Time
	ToWeekEnd     time.Time
	GrossAmount   decimal.Decimal
	DriverRate    decimal.Decimal
	MovedBy       string
	Reason        *string
	MovedAt       time.Time
}

// WeekLockCount - row counts for one week.
type WeekLockCount struct {
	Total  int64
	Locked int64
}
