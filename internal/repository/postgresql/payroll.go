package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== PAYROLL RECORDS ==========

const payrollSelect = `
	SELECT p.id, p.employee_id, p.week_start, p.week_end, p.total_loads, p.total_miles,
		   p.gross_revenue, p.base_pay, p.fuel_deductions, p.other_deductions, p.total_deductions,
		   p.gross_pay, p.net_pay, p.status, p.is_locked, p.reviewed_date, p.reviewed_by, p.notes,
		   p.created_at, p.updated_at, e.name AS employee_name
	FROM individual_payrolls p
	JOIN employees e ON p.employee_id = e.id
`

func scanPayroll(row pgx.Row) (payroll.IndividualPayroll, error) {
	var p payroll.IndividualPayroll
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.WeekStart, &p.WeekEnd, &p.TotalLoads, &p.TotalMiles,
		&p.GrossRevenue, &p.BasePay, &p.FuelDeductions, &p.OtherDeductions, &p.TotalDeductions,
		&p.GrossPay, &p.NetPay, &p.Status, &p.IsLocked, &p.ReviewedDate, &p.ReviewedBy, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt, &p.EmployeeName,
	)
	return p, err
}

func (r *payrollRepository) GetByID(ctx context.Context, id int64) (payroll.IndividualPayroll, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayroll(q.QueryRow(ctx, payrollSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.IndividualPayroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.IndividualPayroll{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) GetByEmployeeWeek(ctx context.Context, employeeID int64, weekStart, weekEnd time.Time) (payroll.IndividualPayroll, error) {
	q := GetQuerier(ctx, r.db)

	query := payrollSelect + ` WHERE p.employee_id = $1 AND p.week_start = $2 AND p.week_end = $3`

	p, err := scanPayroll(q.QueryRow(ctx, query, employeeID, weekStart, weekEnd))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.IndividualPayroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.IndividualPayroll{}, fmt.Errorf("failed to get payroll record by week: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) FindOrCreate(ctx context.Context, draft payroll.IndividualPayroll) (payroll.IndividualPayroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO individual_payrolls (
			employee_id, week_start, week_end, total_loads, total_miles,
			gross_revenue, base_pay, fuel_deductions, other_deductions, total_deductions,
			gross_pay, net_pay, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (employee_id, week_start, week_end) DO NOTHING
	`

	_, err := q.Exec(ctx, query,
		draft.EmployeeID, draft.WeekStart, draft.WeekEnd, draft.TotalLoads, draft.TotalMiles,
		draft.GrossRevenue, draft.BasePay, draft.FuelDeductions, draft.OtherDeductions, draft.TotalDeductions,
		draft.GrossPay, draft.NetPay, draft.Status,
	)
	if err != nil {
		return payroll.IndividualPayroll{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return r.GetByEmployeeWeek(ctx, draft.EmployeeID, draft.WeekStart, draft.WeekEnd)
}

func (r *payrollRepository) UpdateTotals(ctx context.Context, p payroll.IndividualPayroll) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE individual_payrolls
		SET total_loads = $2, total_miles = $3, gross_revenue = $4, base_pay = $5,
			fuel_deductions = $6, other_deductions = $7, total_deductions = $8,
			gross_pay = $9, net_pay = $10, status = $11, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		p.ID, p.TotalLoads, p.TotalMiles, p.GrossRevenue, p.BasePay,
		p.FuelDeductions, p.OtherDeductions, p.TotalDeductions,
		p.GrossPay, p.NetPay, p.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func (r *payrollRepository) UpdateStatus(ctx context.Context, id int64, status payroll.PayrollStatus) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE individual_payrolls SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update payroll status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollNotFound
	}
	return nil
}

func (r *payrollRepository) List(ctx context.Context, filter payroll.ListFilter) ([]payroll.IndividualPayroll, error) {
	q := GetQuerier(ctx, r.db)

	query := payrollSelect + ` WHERE 1 = 1`
	args := []interface{}{}
	argIdx := 1

	if filter.WeekStart != nil {
		query += fmt.Sprintf(" AND p.week_start = $%d", argIdx)
		args = append(args, *filter.WeekStart)
		argIdx++
	}
	if filter.WeekEnd != nil {
		query += fmt.Sprintf(" AND p.week_end = $%d", argIdx)
		args = append(args, *filter.WeekEnd)
		argIdx++
	}
	if filter.EmployeeID != nil {
		query += fmt.Sprintf(" AND p.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND p.status = $%d", argIdx)
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY p.week_start DESC, e.name, p.id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.IndividualPayroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ========== LOAD SNAPSHOTS ==========

const payrollLoadColumns = `id, payroll_id, load_id, gross_amount, driver_rate, miles, moved_in, created_at`

func scanPayrollLoad(row pgx.Row) (payroll.PayrollLoad, error) {
	var pl payroll.PayrollLoad
	err := row.Scan(&pl.ID, &pl.PayrollID, &pl.LoadID, &pl.GrossAmount, &pl.DriverRate, &pl.Miles, &pl.MovedIn, &pl.CreatedAt)
	return pl, err
}

func (r *payrollRepository) ListPayrollLoads(ctx context.Context, payrollID int64) ([]payroll.PayrollLoad, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+payrollLoadColumns+` FROM payroll_loads WHERE payroll_id = $1 ORDER BY load_id`, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll loads: %w", err)
	}
	defer rows.Close()

	var loads []payroll.PayrollLoad
	for rows.Next() {
		pl, err := scanPayrollLoad(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll load: %w", err)
		}
		loads = append(loads, pl)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return loads, nil
}

func (r *payrollRepository) FindPayrollLoadByLoadID(ctx context.Context, loadID int64) (payroll.PayrollLoad, error) {
	q := GetQuerier(ctx, r.db)

	pl, err := scanPayrollLoad(q.QueryRow(ctx, `SELECT `+payrollLoadColumns+` FROM payroll_loads WHERE load_id = $1`, loadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollLoad{}, payroll.ErrPayrollLoadNotFound
		}
		return payroll.PayrollLoad{}, fmt.Errorf("failed to find payroll load: %w", err)
	}
	return pl, nil
}

func (r *payrollRepository) ReplaceAggregatedLoads(ctx context.Context, payrollID int64, loads []payroll.PayrollLoad) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_loads WHERE payroll_id = $1 AND NOT moved_in`, payrollID); err != nil {
		return fmt.Errorf("failed to clear payroll loads: %w", err)
	}

	query := `
		INSERT INTO payroll_loads (payroll_id, load_id, gross_amount, driver_rate, miles, moved_in)
		VALUES ($1, $2, $3, $4, $5, FALSE)
	`
	for _, pl := range loads {
		if _, err := q.Exec(ctx, query, payrollID, pl.LoadID, pl.GrossAmount, pl.DriverRate, pl.Miles); err != nil {
			return fmt.Errorf("failed to insert payroll load %d: %w", pl.LoadID, err)
		}
	}
	return nil
}

func (r *payrollRepository) CreatePayrollLoad(ctx context.Context, pl payroll.PayrollLoad) (payroll.PayrollLoad, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_loads (payroll_id, load_id, gross_amount, driver_rate, miles, moved_in)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + payrollLoadColumns

	created, err := scanPayrollLoad(q.QueryRow(ctx, query, pl.PayrollID, pl.LoadID, pl.GrossAmount, pl.DriverRate, pl.Miles, pl.MovedIn))
	if err != nil {
		return payroll.PayrollLoad{}, fmt.Errorf("failed to create payroll load: %w", err)
	}
	return created, nil
}

func (r *payrollRepository) DeletePayrollLoad(ctx context.Context, payrollID, loadID int64) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_loads WHERE payroll_id = $1 AND load_id = $2`, payrollID, loadID)
	if err != nil {
		return fmt.Errorf("failed to delete payroll load: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrPayrollLoadNotFound
	}
	return nil
}

// ========== FUEL INTEGRATIONS ==========

const fuelIntegrationColumns = `id, payroll_id, fuel_transaction_id, week_start, deduction_amount,
	is_included, import_batch_id, created_at, updated_at`

func scanFuelIntegration(row pgx.Row) (payroll.FuelIntegration, error) {
	var fi payroll.FuelIntegration
	err := row.Scan(
		&fi.ID, &fi.PayrollID, &fi.FuelTransactionID, &fi.WeekStart, &fi.DeductionAmount,
		&fi.IsIncluded, &fi.ImportBatchID, &fi.CreatedAt, &fi.UpdatedAt,
	)
	return fi, err
}

func (r *payrollRepository) FuelIntegrationExists(ctx context.Context, fuelTransactionID int64, weekStart time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM payroll_fuel_integrations WHERE fuel_transaction_id = $1 AND week_start = $2)`,
		fuelTransactionID, weekStart,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check fuel integration: %w", err)
	}
	return exists, nil
}

func (r *payrollRepository) CreateFuelIntegration(ctx context.Context, fi payroll.FuelIntegration) (payroll.FuelIntegration, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_fuel_integrations (
			payroll_id, fuel_transaction_id, week_start, deduction_amount, is_included, import_batch_id
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + fuelIntegrationColumns

	created, err := scanFuelIntegration(q.QueryRow(ctx, query,
		fi.PayrollID, fi.FuelTransactionID, fi.WeekStart, fi.DeductionAmount, fi.IsIncluded, fi.ImportBatchID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uk_payroll_fuel_integration_week" {
			return payroll.FuelIntegration{}, payroll.ErrFuelAlreadyIntegrated
		}
		return payroll.FuelIntegration{}, fmt.Errorf("failed to create fuel integration: %w", err)
	}
	return created, nil
}

func (r *payrollRepository) GetFuelIntegration(ctx context.Context, id int64) (payroll.FuelIntegration, error) {
	q := GetQuerier(ctx, r.db)

	fi, err := scanFuelIntegration(q.QueryRow(ctx, `SELECT `+fuelIntegrationColumns+` FROM payroll_fuel_integrations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.FuelIntegration{}, payroll.ErrFuelIntegrationNotFound
		}
		return payroll.FuelIntegration{}, fmt.Errorf("failed to get fuel integration: %w", err)
	}
	return fi, nil
}

func (r *payrollRepository) SetFuelIntegrationIncluded(ctx context.Context, id int64, included bool) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE payroll_fuel_integrations SET is_included = $2, updated_at = NOW() WHERE id = $1`, id, included)
	if err != nil {
		return fmt.Errorf("failed to update fuel integration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrFuelIntegrationNotFound
	}
	return nil
}

func (r *payrollRepository) SumIncludedFuelDeductions(ctx context.Context, payrollID int64) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	var total decimal.Decimal
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(deduction_amount), 0) FROM payroll_fuel_integrations WHERE payroll_id = $1 AND is_included`,
		payrollID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum fuel deductions: %w", err)
	}
	return total, nil
}

func (r *payrollRepository) ListFuelIntegrations(ctx context.Context, payrollID int64) ([]payroll.FuelIntegration, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+fuelIntegrationColumns+` FROM payroll_fuel_integrations WHERE payroll_id = $1 ORDER BY id`, payrollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fuel integrations: %w", err)
	}
	defer rows.Close()

	var items []payroll.FuelIntegration
	for rows.Next() {
		fi, err := scanFuelIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fuel integration: %w", err)
		}
		items = append(items, fi)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ========== WEEK LOCK ==========

func (r *payrollRepository) SetWeekLock(ctx context.Context, weekStart, weekEnd time.Time, locked bool, reviewedBy string, reviewedAt time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var (
		tag pgconn.CommandTag
		err error
	)
	if locked {
		tag, err = q.Exec(ctx, `
			UPDATE individual_payrolls
			SET is_locked = TRUE, reviewed_date = $3, reviewed_by = $4, updated_at = NOW()
			WHERE week_start = $1 AND week_end = $2
		`, weekStart, weekEnd, reviewedAt, reviewedBy)
	} else {
		tag, err = q.Exec(ctx, `
			UPDATE individual_payrolls
			SET is_locked = FALSE, updated_at = NOW()
			WHERE week_start = $1 AND week_end = $2
		`, weekStart, weekEnd)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to set week lock: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *payrollRepository) CountWeek(ctx context.Context, weekStart, weekEnd time.Time) (payroll.WeekLockCount, error) {
	q := GetQuerier(ctx, r.db)

	var c payroll.WeekLockCount
	err := q.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_locked)
		FROM individual_payrolls
		WHERE week_start = $1 AND week_end = $2
	`, weekStart, weekEnd).Scan(&c.Total, &c.Locked)
	if err != nil {
		return payroll.WeekLockCount{}, fmt.Errorf("failed to count week payrolls: %w", err)
	}
	return c, nil
}

// ========== LOAD MOVES ==========

const loadMoveColumns = `id, load_id, driver_id, from_payroll_id, to_payroll_id,
	from_week_start, from_week_end, to_week_start, to_week_end,
	gross_amount, driver_rate, moved_by, reason, moved_at`

func scanLoadMove(row pgx.Row) (payroll.LoadMove, error) {
	var m payroll.LoadMove
	var toPayrollID *int64
	err := row.Scan(
		&m.ID, &m.LoadID, &m.DriverID, &m.FromPayrollID, &toPayrollID,
		&m.FromWeekStart, &m.FromWeekEnd, &m.ToWeekStart, &m.ToWeekEnd,
		&m.GrossAmount, &m.DriverRate, &m.MovedBy, &m.Reason, &m.MovedAt,
	)
	if toPayrollID != nil {
		m.ToPayrollID = *toPayrollID
	}
	return m, err
}

func (r *payrollRepository) CreateLoadMove(ctx context.Context, m payroll.LoadMove) (payroll.LoadMove, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_load_moves (
			id, load_id, driver_id, from_payroll_id, to_payroll_id,
			from_week_start, from_week_end, to_week_start, to_week_end,
			gross_amount, driver_rate, moved_by, reason, moved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + loadMoveColumns

	created, err := scanLoadMove(q.QueryRow(ctx, query,
		m.ID, m.LoadID, m.DriverID, m.FromPayrollID, m.ToPayrollID,
		m.FromWeekStart, m.FromWeekEnd, m.ToWeekStart, m.ToWeekEnd,
		m.GrossAmount, m.DriverRate, m.MovedBy, m.Reason, m.MovedAt,
	))
	if err != nil {
		return payroll.LoadMove{}, fmt.Errorf("failed to record load move: %w", err)
	}
	return created, nil
}

func (r *payrollRepository) ListLoadMoves(ctx context.Context, loadID int64) ([]payroll.LoadMove, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+loadMoveColumns+` FROM payroll_load_moves WHERE load_id = $1 ORDER BY moved_at DESC`, loadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list load moves: %w", err)
	}
	defer rows.Close()

	var moves []payroll.LoadMove
	for rows.Next() {
		m, err := scanLoadMove(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan load move: %w", err)
		}
		moves = append(moves, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return moves, nil
}
