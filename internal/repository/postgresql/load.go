package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/load"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type loadRepositoryImpl struct {
	db *database.DB
}

func NewLoadRepository(db *database.DB) load.LoadRepository {
	return &loadRepositoryImpl{db: db}
}

const loadColumns = `id, load_number, driver_id, delivery_date, gross_amount, driver_rate, final_miles, status, created_at, updated_at`

func scanLoad(row pgx.Row) (load.Load, error) {
	var l load.Load
	err := row.Scan(
		&l.ID, &l.LoadNumber, &l.DriverID, &l.DeliveryDate,
		&l.GrossAmount, &l.DriverRate, &l.FinalMiles, &l.Status,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *loadRepositoryImpl) GetByID(ctx context.Context, id int64) (load.Load, error) {
	q := GetQuerier(ctx, r.db)

	l, err := scanLoad(q.QueryRow(ctx, `SELECT `+loadColumns+` FROM loads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return load.Load{}, load.ErrLoadNotFound
		}
		return load.Load{}, fmt.Errorf("failed to get load %d: %w", id, err)
	}
	return l, nil
}

func (r *loadRepositoryImpl) ListDeliveredByDriver(ctx context.Context, driverID int64, from, to time.Time) ([]load.Load, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loadColumns + `
		FROM loads
		WHERE driver_id = $1 AND status = $2 AND delivery_date >= $3 AND delivery_date < $4
		ORDER BY delivery_date, id
	`

	rows, err := q.Query(ctx, query, driverID, load.StatusDelivered, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered loads: %w", err)
	}
	defer rows.Close()

	var loads []load.Load
	for rows.Next() {
		l, err := scanLoad(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan load: %w", err)
		}
		loads = append(loads, l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return loads, nil
}
