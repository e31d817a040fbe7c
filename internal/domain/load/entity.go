package load

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusBooked    Status = "BOOKED"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Load is a shipment. DriverRate is the driver's share, computed when the load is
// rated; payroll only sums it.
type Load struct {
	ID           int64
	LoadNumber   string
	DriverID     *int64
	DeliveryDate *time.Time
	GrossAmount  decimal.Decimal
	DriverRate   decimal.Decimal
	FinalMiles   int
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasDriver reports whether a driver is assigned.
func (l Load) HasDriver() bool {
	return l.DriverID != nil && *l.DriverID != 0
}
