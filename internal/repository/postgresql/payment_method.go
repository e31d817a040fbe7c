package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/paymentmethod"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type paymentMethodHistoryRepositoryImpl struct {
	db *database.DB
}

func NewPaymentMethodHistoryRepository(db *database.DB) paymentmethod.HistoryRepository {
	return &paymentMethodHistoryRepositoryImpl{db: db}
}

const historyColumns = `id, employee_id, payment_method, pay_percentage, mile_rate, flat_rate,
	effective_date, end_date, notes, created_by, created_at`

func scanHistory(row pgx.Row) (paymentmethod.History, error) {
	var h paymentmethod.History
	err := row.Scan(
		&h.ID, &h.EmployeeID, &h.PaymentMethod, &h.PayPercentage, &h.MileRate, &h.FlatRate,
		&h.EffectiveDate, &h.EndDate, &h.Notes, &h.CreatedBy, &h.CreatedAt,
	)
	return h, err
}

func (r *paymentMethodHistoryRepositoryImpl) FindEffective(ctx context.Context, employeeID int64, date time.Time) (paymentmethod.History, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + historyColumns + `
		FROM payment_method_history
		WHERE employee_id = $1
			AND effective_date <= $2
			AND (end_date IS NULL OR end_date > $2)
		ORDER BY effective_date DESC, id DESC
		LIMIT 1
	`

	h, err := scanHistory(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return paymentmethod.History{}, paymentmethod.ErrHistoryNotFound
		}
		return paymentmethod.History{}, fmt.Errorf("failed to find effective payment method: %w", err)
	}
	return h, nil
}

func (r *paymentMethodHistoryRepositoryImpl) GetOpen(ctx context.Context, employeeID int64) (paymentmethod.History, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + historyColumns + `
		FROM payment_method_history
		WHERE employee_id = $1 AND end_date IS NULL
		FOR UPDATE
	`

	h, err := scanHistory(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return paymentmethod.History{}, paymentmethod.ErrHistoryNotFound
		}
		return paymentmethod.History{}, fmt.Errorf("failed to get open payment method: %w", err)
	}
	return h, nil
}

func (r *paymentMethodHistoryRepositoryImpl) ListByEmployee(ctx context.Context, employeeID int64) ([]paymentmethod.History, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + historyColumns + `
		FROM payment_method_history
		WHERE employee_id = $1
		ORDER BY effective_date DESC, id DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment method history: %w", err)
	}
	defer rows.Close()

	var entries []paymentmethod.History
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment method history: %w", err)
		}
		entries = append(entries, h)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *paymentMethodHistoryRepositoryImpl) CloseOpen(ctx context.Context, employeeID int64, endDate time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payment_method_history
		SET end_date = $2
		WHERE employee_id = $1 AND end_date IS NULL
	`

	if _, err := q.Exec(ctx, query, employeeID, endDate); err != nil {
		return fmt.Errorf("failed to close open payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodHistoryRepositoryImpl) Create(ctx context.Context, entry paymentmethod.History) (paymentmethod.History, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payment_method_history (
			employee_id, payment_method, pay_percentage, mile_rate, flat_rate,
			effective_date, end_date, notes, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + historyColumns

	h, err := scanHistory(q.QueryRow(ctx, query,
		entry.EmployeeID, entry.PaymentMethod, entry.PayPercentage, entry.MileRate, entry.FlatRate,
		entry.EffectiveDate, entry.EndDate, entry.Notes, entry.CreatedBy,
	))
	if err != nil {
		return paymentmethod.History{}, fmt.Errorf("failed to create payment method history: %w", err)
	}
	return h, nil
}
