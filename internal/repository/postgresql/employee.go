package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, name, status, payment_method, pay_percentage, mile_rate, flat_rate, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.Name, &emp.Status, &emp.PaymentMethod,
		&emp.PayPercentage, &emp.MileRate, &emp.FlatRate,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee %d: %w", id, err)
	}
	return emp, nil
}

// GetActiveByIDs implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetActiveByIDs(ctx context.Context, ids []int64) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE status = $1`
	args := []interface{}{employee.EmploymentStatusActive}
	if len(ids) > 0 {
		query += ` AND id = ANY($2)`
		args = append(args, ids)
	}
	query += ` ORDER BY name, id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// FindActiveByName implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) FindActiveByName(ctx context.Context, name string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	// LIMIT 2 is enough to tell a unique match from an ambiguous one.
	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE LOWER(name) = LOWER(TRIM($1)) AND status = $2
		ORDER BY id
		LIMIT 2
	`

	rows, err := q.Query(ctx, query, name, employee.EmploymentStatusActive)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to find employee by name: %w", err)
	}
	defer rows.Close()

	var matches []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return employee.Employee{}, fmt.Errorf("failed to scan employee: %w", err)
		}
		matches = append(matches, emp)
	}
	if err = rows.Err(); err != nil {
		return employee.Employee{}, err
	}

	switch len(matches) {
	case 0:
		return employee.Employee{}, employee.ErrEmployeeNotFound
	case 1:
		return matches[0], nil
	default:
		return employee.Employee{}, employee.ErrAmbiguousDriverName
	}
}

// UpdatePaymentMethod implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdatePaymentMethod(ctx context.Context, id int64, method employee.PaymentMethod, percentage, mileRate, flatRate *decimal.Decimal) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET payment_method = $2, pay_percentage = $3, mile_rate = $4, flat_rate = $5, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, method, percentage, mileRate, flatRate)
	if err != nil {
		return fmt.Errorf("failed to update payment method for employee %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}
