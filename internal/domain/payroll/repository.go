package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ListFilter narrows List. Nil fields are ignored.
type ListFilter struct {
	WeekStart  *time.Time
	WeekEnd    *time.Time
	EmployeeID *int64
	Status     *PayrollStatus
}

// PayrollRepository defines data access methods for weekly payroll.
type PayrollRepository interface {
	// Payroll records
	GetByID(ctx context.Context, id int64) (IndividualPayroll, error)
	GetByEmployeeWeek(ctx context.Context, employeeID int64, weekStart, weekEnd time.Time) (IndividualPayroll, error)
	// FindOrCreate returns the row for (employee, week), inserting draft when absent.
	FindOrCreate(ctx context.Context, draft IndividualPayroll) (IndividualPayroll, error)
	UpdateTotals(ctx context.Context, p IndividualPayroll) error
	UpdateStatus(ctx context.Context, id int64, status PayrollStatus) error
	List(ctx context.Context, filter ListFilter) ([]IndividualPayroll, error)

	// Load snapshots
	ListPayrollLoads(ctx context.Context, payrollID int64) ([]PayrollLoad, error)
	FindPayrollLoadByLoadID(ctx context.Context, loadID int64) (PayrollLoad, error)
	// ReplaceAggregatedLoads drops the payroll's non-moved snapshots and writes loads in their place.
	ReplaceAggregatedLoads(ctx context.Context, payrollID int64, loads []PayrollLoad) error
	CreatePayrollLoad(ctx context.Context, pl PayrollLoad) (PayrollLoad, error)
	DeletePayrollLoad(ctx context.Context, payrollID, loadID int64) error

	// Fuel integrations
	FuelIntegrationExists(ctx context.Context, fuelTransactionID int64, weekStart time.Time) (bool, error)
	CreateFuelIntegration(ctx context.Context, fi FuelIntegration) (FuelIntegration, error)
	GetFuelIntegration(ctx context.Context, id int64) (FuelIntegration, error)
	SetFuelIntegrationIncluded(ctx context.Context, id int64, included bool) error
	SumIncludedFuelDeductions(ctx context.Context, payrollID int64) (decimal.Decimal, error)
	ListFuelIntegrations(ctx context.Context, payrollID int64) ([]FuelIntegration, error)

	// Week lock
	SetWeekLock(ctx context.Context, weekStart, weekEnd time.Time, locked bool, reviewedBy string, reviewedAt time.Time) (int64, error)
	CountWeek(ctx context.Context, weekStart, weekEnd time.Time) (WeekLockCount, error)

	// Load move audit
	CreateLoadMove(ctx context.Context, m LoadMove) (LoadMove, error)
	ListLoadMoves(ctx context.Context, loadID int64) ([]LoadMove, error)
}
