package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/paystub"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type paystubRepositoryImpl struct {
	db *database.DB
}

func NewPaystubRepository(db *database.DB) paystub.PaystubRepository {
	return &paystubRepositoryImpl{db: db}
}

const paystubSelect = `
	SELECT s.id, s.payroll_id, s.employee_id, s.week_start, s.week_end, s.total_loads, s.total_miles,
		   s.gross_revenue, s.base_pay, s.fuel_deductions, s.other_deductions, s.total_deductions,
		   s.gross_pay, s.net_pay, s.status, s.generated_at, s.generated_by,
		   s.approved_at, s.approved_by, s.paid_at, s.created_at, s.updated_at, e.name AS employee_name
	FROM paystubs s
	JOIN employees e ON s.employee_id = e.id
`

func scanPaystub(row pgx.Row) (paystub.Paystub, error) {
	var s paystub.Paystub
	err := row.Scan(
		&s.ID, &s.PayrollID, &s.EmployeeID, &s.WeekStart, &s.WeekEnd, &s.TotalLoads, &s.TotalMiles,
		&s.GrossRevenue, &s.BasePay, &s.FuelDeductions, &s.OtherDeductions, &s.TotalDeductions,
		&s.GrossPay, &s.NetPay, &s.Status, &s.GeneratedAt, &s.GeneratedBy,
		&s.ApprovedAt, &s.ApprovedBy, &s.PaidAt, &s.CreatedAt, &s.UpdatedAt, &s.EmployeeName,
	)
	return s, err
}

func (r *paystubRepositoryImpl) get(ctx context.Context, where string, arg interface{}) (paystub.Paystub, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanPaystub(q.QueryRow(ctx, paystubSelect+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return paystub.Paystub{}, paystub.ErrPaystubNotFound
		}
		return paystub.Paystub{}, fmt.Errorf("failed to get paystub: %w", err)
	}
	return s, nil
}

func (r *paystubRepositoryImpl) GetByID(ctx context.Context, id int64) (paystub.Paystub, error) {
	return r.get(ctx, ` WHERE s.id = $1`, id)
}

func (r *paystubRepositoryImpl) GetByPayrollID(ctx context.Context, payrollID int64) (paystub.Paystub, error) {
	return r.get(ctx, ` WHERE s.payroll_id = $1`, payrollID)
}

func (r *paystubRepositoryImpl) Create(ctx context.Context, p paystub.Paystub) (paystub.Paystub, error) {
	q := GetQuerier(ctx, r.db)

	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO paystubs (
			payroll_id, employee_id, week_start, week_end, total_loads, total_miles,
			gross_revenue, base_pay, fuel_deductions, other_deductions, total_deductions,
			gross_pay, net_pay, status, generated_at, generated_by, approved_at, approved_by, paid_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`,
		p.PayrollID, p.EmployeeID, p.WeekStart, p.WeekEnd, p.TotalLoads, p.TotalMiles,
		p.GrossRevenue, p.BasePay, p.FuelDeductions, p.OtherDeductions, p.TotalDeductions,
		p.GrossPay, p.NetPay, p.Status, p.GeneratedAt, p.GeneratedBy, p.ApprovedAt, p.ApprovedBy, p.PaidAt,
	).Scan(&id)
	if err != nil {
		return paystub.Paystub{}, fmt.Errorf("failed to create paystub: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *paystubRepositoryImpl) Update(ctx context.Context, p paystub.Paystub) (paystub.Paystub, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE paystubs
		SET total_loads = $2, total_miles = $3, gross_revenue = $4, base_pay = $5,
			fuel_deductions = $6, other_deductions = $7, total_deductions = $8,
			gross_pay = $9, net_pay = $10, status = $11, generated_at = $12, generated_by = $13,
			approved_at = $14, approved_by = $15, paid_at = $16, updated_at = NOW()
		WHERE id = $1
	`,
		p.ID, p.TotalLoads, p.TotalMiles, p.GrossRevenue, p.BasePay,
		p.FuelDeductions, p.OtherDeductions, p.TotalDeductions,
		p.GrossPay, p.NetPay, p.Status, p.GeneratedAt, p.GeneratedBy,
		p.ApprovedAt, p.ApprovedBy, p.PaidAt,
	)
	if err != nil {
		return paystub.Paystub{}, fmt.Errorf("failed to update paystub: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return paystub.Paystub{}, paystub.ErrPaystubNotFound
	}

	return r.GetByID(ctx, p.ID)
}

func (r *paystubRepositoryImpl) ListByWeek(ctx context.Context, weekStart, weekEnd time.Time) ([]paystub.Paystub, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, paystubSelect+` WHERE s.week_start = $1 AND s.week_end = $2 ORDER BY e.name, s.id`, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list paystubs: %w", err)
	}
	defer rows.Close()

	var stubs []paystub.Paystub
	for rows.Next() {
		s, err := scanPaystub(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paystub: %w", err)
		}
		stubs = append(stubs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return stubs, nil
}
