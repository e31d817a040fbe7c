package employee

import (
	"context"

	"github.com/shopspring/decimal"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (Employee, error)
	// GetActiveByIDs returns active employees; an empty ids slice means every active employee.
	GetActiveByIDs(ctx context.Context, ids []int64) ([]Employee, error)
	// FindActiveByName matches the full name case-insensitively.
	FindActiveByName(ctx context.Context, name string) (Employee, error)
	UpdatePaymentMethod(ctx context.Context, id int64, method PaymentMethod, percentage, mileRate, flatRate *decimal.Decimal) error
}
