package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/fuel"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
)

type fuelTransactionRepositoryImpl struct {
	db *database.DB
}

func NewFuelTransactionRepository(db *database.DB) fuel.TransactionRepository {
	return &fuelTransactionRepositoryImpl{db: db}
}

func (r *fuelTransactionRepositoryImpl) ListByDateRange(ctx context.Context, from, to time.Time) ([]fuel.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, transaction_date, driver_name, card_number, location, gallons, amount, fees, created_at
		FROM fuel_transactions
		WHERE transaction_date >= $1 AND transaction_date < $2
		ORDER BY LOWER(driver_name), transaction_date, id
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list fuel transactions: %w", err)
	}
	defer rows.Close()

	var txs []fuel.Transaction
	for rows.Next() {
		var t fuel.Transaction
		if err := rows.Scan(
			&t.ID, &t.TransactionDate, &t.DriverName, &t.CardNumber, &t.Location,
			&t.Gallons, &t.Amount, &t.Fees, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fuel transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}
