package paystub

import (
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type GenerateRequest struct {
	PayrollID   int64 `json:"payrollId" validate:"required,gt=0"`
	AutoApprove bool  `json:"autoApprove"`
}

func (r *GenerateRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type GenerateWeekRequest struct {
	Year        int  `json:"year" validate:"required,gte=2000,lte=2100"`
	Week        int  `json:"week" validate:"required,gte=1,lte=53"`
	AutoApprove bool `json:"autoApprove"`
}

func (r *GenerateWeekRequest) Validate() error {
	return validator.Struct(r).OrNil()
}

type GenerateItemResult struct {
	PayrollID  int64   `json:"payrollId"`
	EmployeeID int64   `json:"employeeId"`
	PaystubID  *int64  `json:"paystubId,omitempty"`
	Status     string  `json:"status"` // created, updated, skipped, error
	Reason     *string `json:"reason,omitempty"`
}

type GenerateWeekResult struct {
	Year    int                  `json:"year"`
	Week    int                  `json:"week"`
	Created int                  `json:"created"`
	Updated int                  `json:"updated"`
	Skipped int                  `json:"skipped"`
	Errors  int                  `json:"errors"`
	Results []GenerateItemResult `json:"results"`
}

const (
	ItemCreated = "created"
	ItemUpdated = "updated"
	ItemSkipped = "skipped"
	ItemError   = "error"
)

type PaystubResponse struct {
	ID              int64           `json:"id"`
	PayrollID       int64           `json:"payrollId"`
	EmployeeID      int64           `json:"employeeId"`
	EmployeeName    *string         `json:"employeeName,omitempty"`
	WeekStartDate   string          `json:"weekStartDate"`
	WeekEndDate     string          `json:"weekEndDate"`
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
	GeneratedAt     string          `json:"generatedAt"`
	GeneratedBy     *string         `json:"generatedBy,omitempty"`
	ApprovedAt      *string         `json:"approvedAt,omitempty"`
	ApprovedBy      *string         `json:"approvedBy,omitempty"`
	PaidAt          *string         `json:"paidAt,omitempty"`
}

func ToResponse(p Paystub) PaystubResponse {
	resp := PaystubResponse{
		ID:              p.ID,
		PayrollID:       p.PayrollID,
		EmployeeID:      p.EmployeeID,
		EmployeeName:    p.EmployeeName,
		WeekStartDate:   p.WeekStart.Format("2006-01-02"),
		WeekEndDate:     p.WeekEnd.Format("2006-01-02"),
		TotalLoads:      p.TotalLoads,
		TotalMiles:      p.TotalMiles,
		GrossRevenue:    p.GrossRevenue,
		BasePay:         p.BasePay,
		FuelDeductions:  p.FuelDeductions,
		OtherDeductions: p.OtherDeductions,
		TotalDeductions: p.TotalDeductions,
		GrossPay:        p.GrossPay,
		NetPay:          p.NetPay,
		Status:          string(p.Status),
		GeneratedAt:     p.GeneratedAt.Format(time.RFC3339),
		GeneratedBy:     p.GeneratedBy,
		ApprovedBy:      p.ApprovedBy,
	}
	if p.ApprovedAt != nil {
		s := p.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	if p.PaidAt != nil {
		s := p.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	return resp
}
