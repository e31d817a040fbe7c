package paymentmethod

import (
	"context"
	"time"
)

type HistoryRepository interface {
	// FindEffective returns the latest entry with effective_date <= date and
	// (end_date IS NULL OR end_date > date), or ErrHistoryNotFound.
	FindEffective(ctx context.Context, employeeID int64, date time.Time) (History, error)
	GetOpen(ctx context.Context, employeeID int64) (History, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]History, error)
	CloseOpen(ctx context.Context, employeeID int64, endDate time.Time) error
	Create(ctx context.Context, entry History) (History, error)
}
