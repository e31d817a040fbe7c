package load

import (
	"context"
	"time"
)

type LoadRepository interface {
	GetByID(ctx context.Context, id int64) (Load, error)
	// ListDeliveredByDriver returns DELIVERED loads with from <= delivery_date < to.
	ListDeliveredByDriver(ctx context.Context, driverID int64, from, to time.Time) ([]Load, error)
}
