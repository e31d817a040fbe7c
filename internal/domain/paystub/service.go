package paystub

import "context"

type PaystubService interface {
	// Generate creates the payroll's paystub or refreshes its DRAFT copy.
	Generate(ctx context.Context, req GenerateRequest) (PaystubResponse, error)
	GenerateForWeek(ctx context.Context, req GenerateWeekRequest) (GenerateWeekResult, error)
	Approve(ctx context.Context, id int64) (PaystubResponse, error)
	MarkPaid(ctx context.Context, id int64) (PaystubResponse, error)
	Get(ctx context.Context, id int64) (PaystubResponse, error)
	GetByPayroll(ctx context.Context, payrollID int64) (PaystubResponse, error)
	ListForWeek(ctx context.Context, year, week int) ([]PaystubResponse, error)
}
