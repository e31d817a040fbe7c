package paystub

import (
	"context"
	"time"
)

type PaystubRepository interface {
	GetByID(ctx context.Context, id int64) (Paystub, error)
	GetByPayrollID(ctx context.Context, payrollID int64) (Paystub, error)
	Create(ctx context.Context, p Paystub) (Paystub, error)
	// Update rewrites figures and status of an existing paystub.
	Update(ctx context.Context, p Paystub) (Paystub, error)
	ListByWeek(ctx context.Context, weekStart, weekEnd time.Time) ([]Paystub, error)
}
