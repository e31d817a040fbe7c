package payroll

import (
	"github.com/haulbook/haulbook-backend-go/internal/pkg/validator"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/week"
	"github.com/shopspring/decimal"
)

// ========== WEEK REFERENCE ==========

// WeekRef identifies a week either by ISO year/week or by its Monday/Sunday dates.
type WeekRef struct {
	Year      int    `json:"year,omitempty"`
	Week      int    `json:"week,omitempty"`
	StartDate string `json:"startDate,omitempty" validate:"omitempty,date"`
	EndDate   string `json:"endDate,omitempty" validate:"omitempty,date"`
}

// Window validates the reference and returns the week.
func (r WeekRef) Window() (week.Window, error) {
	var errs validator.ValidationErrors

	if r.StartDate != "" || r.EndDate != "" {
		if r.StartDate == "" || r.EndDate == "" {
			errs.Add("startDate", "startDate and endDate must be provided together")
			return week.Window{}, errs
		}
		w, err := week.ParseDates(r.StartDate, r.EndDate)
		if err != nil {
			errs.Add("startDate", err.Error())
			return week.Window{}, errs
		}
		return w, nil
	}

	if r.Year == 0 || r.Week == 0 {
		errs.Add("week", "year and week, or startDate and endDate, are required")
		return week.Window{}, errs
	}
	w, err := week.FromISOWeek(r.Year, r.Week)
	if err != nil {
		errs.Add("week", err.Error())
		return week.Window{}, errs
	}
	return w, nil
}

type WeekResponse struct {
	Year      int    `json:"year"`
	Week      int    `json:"week"`
	Label     string `json:"label"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func NewWeekResponse(w week.Window) WeekResponse {
	return WeekResponse{
		Year:      w.Year,
		Week:      w.Week,
		Label:     w.Label(),
		StartDate: w.StartDate(),
		EndDate:   w.EndDate(),
	}
}

// ========== AGGREGATION DTOs ==========

type AggregateRequest struct {
	WeekRef
	EmployeeIDs []int64 `json:"employeeIds,omitempty"` // Empty = all active employees
}

func (r *AggregateRequest) Validate() error {
	errs := validator.Struct(r)
	for _, id := range r.EmployeeIDs {
		if id <= 0 {
			errs.Add("employeeIds", "must contain positive integers")
			break
		}
	}
	return errs.OrNil()
}

const (
	ResultStatusCalculated = "calculated"
	ResultStatusProcessed  = "processed"
	ResultStatusSkipped    = "skipped"
	ResultStatusError      = "error"
)

type EmployeeAggregateResult struct {
	EmployeeID   int64            `json:"employeeId"`
	EmployeeName string           `json:"employeeName"`
	Status       string           `json:"status"`
	Reason       string           `json:"reason,omitempty"`
	PayrollID    *int64           `json:"payrollId,omitempty"`
	TotalLoads   int              `json:"totalLoads"`
	TotalMiles   int              `json:"totalMiles"`
	GrossRevenue *decimal.Decimal `json:"grossRevenue,omitempty"`
	BasePay      *decimal.Decimal `json:"basePay,omitempty"`
	NetPay       *decimal.Decimal `json:"netPay,omitempty"`
}

type AggregateResult struct {
	Week      WeekResponse              `json:"week"`
	Processed int                       `json:"processed"`
	Skipped   int                       `json:"skipped"`
	Errors    int                       `json:"errors"`
	Employees []EmployeeAggregateResult `json:"employees"`
}

// Add appends item and bumps the counter for its status.
func (r *AggregateResult) Add(item EmployeeAggregateResult) {
	switch item.Status {
	case ResultStatusSkipped:
		r.Skipped++
	case ResultStatusError:
		r.Errors++
	default:
		r.Processed++
	}
	r.Employees = append(r.Employees, item)
}

// ========== FUEL INTEGRATION DTOs ==========

type FuelImportRequest struct {
	WeekRef
}

func (r *FuelImportRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type DriverFuelResult struct {
	DriverName     string           `json:"driverName"`
	EmployeeID     *int64           `json:"employeeId,omitempty"`
	PayrollID      *int64           `json:"payrollId,omitempty"`
	Status         string           `json:"status"`
	Reason         string           `json:"reason,omitempty"`
	Imported       int              `json:"imported"`
	Skipped        int              `json:"skipped"`
	Errors         int              `json:"errors"`
	FuelDeductions *decimal.Decimal `json:"fuelDeductions,omitempty"`
	NetPay         *decimal.Decimal `json:"netPay,omitempty"`
}

type FuelImportResult struct {
	BatchID  string             `json:"batchId"`
	Week     WeekResponse       `json:"week"`
	Imported int                `json:"imported"`
	Skipped  int                `json:"skipped"`
	Errors   int                `json:"errors"`
	Drivers  []DriverFuelResult `json:"drivers"`
}

// AddDriver appends a driver group and rolls its row counts into the totals.
func (r *FuelImportResult) AddDriver(d DriverFuelResult) {
	r.Imported += d.Imported
	r.Skipped += d.Skipped
	r.Errors += d.Errors
	r.Drivers = append(r.Drivers, d)
}

type SetFuelInclusionRequest struct {
	IntegrationID int64 `json:"-"`
	IsIncluded    *bool `json:"isIncluded" validate:"required"`
}

func (r *SetFuelInclusionRequest) Validate() error {
	errs := validator.Struct(r)
	if r.IntegrationID <= 0 {
		errs.Add("integrationId", "must be a positive integer")
	}
	return errs.OrNil()
}

// ========== LOAD REASSIGNMENT DTOs ==========

type MoveLoadRequest struct {
	LoadID     int64   `json:"-"`
	TargetYear int     `json:"targetYear" validate:"required,gte=2000,lte=2100"`
	TargetWeek int     `json:"targetWeek" validate:"required,gte=1,lte=53"`
	Reason     *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func (r *MoveLoadRequest) Validate() error {
	errs := validator.Struct(r)
	if r.LoadID <= 0 {
		errs.Add("loadId", "must be a positive integer")
	}
	return errs.OrNil()
}

type MoveLoadResult struct {
	MoveID        string           `json:"moveId"`
	LoadID        int64            `json:"loadId"`
	DriverID      int64            `json:"driverId"`
	FromWeek      WeekResponse     `json:"fromWeek"`
	ToWeek        WeekResponse     `json:"toWeek"`
	SourcePayroll *PayrollResponse `json:"sourcePayroll,omitempty"`
	TargetPayroll PayrollResponse  `json:"targetPayroll"`
}

type LoadMoveResponse struct {
	ID          string          `json:"id"`
	LoadID      int64           `json:"loadId"`
	DriverID    int64           `json:"driverId"`
	FromWeek    WeekResponse    `json:"fromWeek"`
	ToWeek      WeekResponse    `json:"toWeek"`
	GrossAmount decimal.Decimal `json:"grossAmount"`
	DriverRate  decimal.Decimal `json:"driverRate"`
	MovedBy     string          `json:"movedBy"`
	Reason      *string         `json:"reason,omitempty"`
	MovedAt     string          `json:"movedAt"`
}

// ========== WEEK LOCK DTOs ==========

type WeekLockRequest struct {
	Year     int   `json:"year" validate:"required,gte=2000,lte=2100"`
	Week     int   `json:"week" validate:"required,gte=1,lte=53"`
	IsLocked *bool `json:"isLocked" validate:"required"`
}

func (r *WeekLockRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type WeekLockResult struct {
	Week            WeekResponse `json:"week"`
	IsLocked        bool         `json:"isLocked"`
	AffectedRecords int64        `json:"affectedRecords"`
	ReviewedBy      *string      `json:"reviewedBy,omitempty"`
	ReviewedDate    *string      `json:"reviewedDate,omitempty"`
}

type WeekLockStatusRequest struct {
	Year      int `json:"year" validate:"required,gte=2000,lte=2100"`
	StartWeek int `json:"startWeek" validate:"required,gte=1,lte=53"`
	EndWeek   int `json:"endWeek" validate:"required,gte=1,lte=53,gtefield=StartWeek"`
}

func (r *WeekLockStatusRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type WeekLockStatus struct {
	WeekResponse
	TotalCount      int64 `json:"totalCount"`
	LockedCount     int64 `json:"lockedCount"`
	IsLocked        bool  `json:"isLocked"`
	PartiallyLocked bool  `json:"partiallyLocked"`
}

// ========== PAYROLL RECORD DTOs ==========

type PayrollFilter struct {
	Year       *int    `json:"year,omitempty"`
	Week       *int    `json:"week,omitempty"`
	EmployeeID *int64  `json:"employeeId,omitempty"`
	Status     *string `json:"status,omitempty"`
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors
	if (f.Year == nil) != (f.Week == nil) {
		errs.Add("week", "year and week must be provided together")
	}
	if f.Status != nil && !PayrollStatus(*f.Status).IsValid() {
		errs.Add("status", "is not a valid payroll status")
	}
	return errs.OrNil()
}

type PayrollResponse struct {
	ID              int64           `json:"id"`
	EmployeeID      int64           `json:"employeeId"`
	EmployeeName    *string         `json:"employeeName,omitempty"`
	Week            WeekResponse    `json:"week"`
	TotalLoads      int             `json:"totalLoads"`
	TotalMiles      int             `json:"totalMiles"`
	GrossRevenue    decimal.Decimal `json:"grossRevenue"`
	BasePay         decimal.Decimal `json:"basePay"`
	FuelDeductions  decimal.Decimal `json:"fuelDeductions"`
	OtherDeductions decimal.Decimal `json:"otherDeductions"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	GrossPay        decimal.Decimal `json:"grossPay"`
	NetPay          decimal.Decimal `json:"netPay"`
	Status          string          `json:"status"`
	IsLocked        bool            `json:"isLocked"`
	ReviewedDate    *string         `json:"reviewedDate,omitempty"`
	ReviewedBy      *string         `json:"reviewedBy,omitempty"`
}

type PayrollLoadResponse struct {
	LoadID      int64           `json:"loadId"`
	GrossAmount decimal.Decimal `json:"grossAmount"`
	DriverRate  decimal.Decimal `json:"driverRate"`
	Miles       int             `json:"miles"`
}

type FuelIntegrationResponse struct {
	ID                int64           `json:"id"`
	FuelTransactionID int64           `json:"fuelTransactionId"`
	DeductionAmount   decimal.Decimal `json:"deductionAmount"`
	IsIncluded        bool            `json:"isIncluded"`
}

type PayrollDetailResponse struct {
	PayrollResponse
	Loads            []PayrollLoadResponse     `json:"loads"`
	FuelIntegrations []FuelIntegrationResponse `json:"fuelIntegrations"`
}
