package fuel

import (
	"context"
	"time"
)

type TransactionRepository interface {
	// ListByDateRange returns transactions with from <= transaction_date < to ordered by driver name, date.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]Transaction, error)
}
