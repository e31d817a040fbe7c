package fuel

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one fuel card purchase. Drivers are identified by the name printed
// on the card statement, not by employee id.
type Transaction struct {
	ID              int64
	TransactionDate time.Time
	DriverName      string
	CardNumber      *string
	Location        *string
	Gallons         decimal.Decimal
	Amount          decimal.Decimal
	Fees            decimal.Decimal
	CreatedAt       time.Time
}

// DeductionAmount is what the driver is charged back.
func (t Transaction) DeductionAmount() decimal.Decimal {
	return t.Amount.Add(t.Fees)
}
