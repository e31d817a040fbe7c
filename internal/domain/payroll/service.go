package payroll

import "context"

type PayrollService interface {
	// Aggregation
	Aggregate(ctx context.Context, req AggregateRequest) (AggregateResult, error)

	// Fuel integration
	ImportFuel(ctx context.Context, req FuelImportRequest) (FuelImportResult, error)
	SetFuelInclusion(ctx context.Context, req SetFuelInclusionRequest) (PayrollResponse, error)

	// Load reassignment
	MoveLoad(ctx context.Context, req MoveLoadRequest) (MoveLoadResult, error)
	ListLoadMoves(ctx context.Context, loadID int64) ([]LoadMoveResponse, error)

	// Week lock
	SetWeekLock(ctx context.Context, req WeekLockRequest) (WeekLockResult, error)
	GetWeekLockStatus(ctx context.Context, req WeekLockStatusRequest) ([]WeekLockStatus, error)

	// Records
	GetPayroll(ctx context.Context, id int64) (PayrollDetailResponse, error)
	ListPayrolls(ctx context.Context, filter PayrollFilter) ([]PayrollResponse, error)
	ExportWeek(ctx context.Context, year, weekNumber int) (filename string, content []byte, err error)
}
