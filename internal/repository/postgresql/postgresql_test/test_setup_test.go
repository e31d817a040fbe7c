package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps a connection to the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema. The test is
// skipped when the variable is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, 4, 1)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(db.Close)

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.migrate(context.Background()))
	require.NoError(t, setup.TruncateAllTables(context.Background()))
	return setup
}

func (s *TestDatabaseSetup) migrate(ctx context.Context) error {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations", "0001_init.sql")
	schema, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	_, err = s.DB.Exec(ctx, string(schema))
	return err
}

// TruncateAllTables empties every payroll table and resets identities.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"paystubs",
		"payroll_load_moves",
		"payroll_fuel_integrations",
		"payroll_loads",
		"individual_payrolls",
		"fuel_transactions",
		"loads",
		"payment_method_history",
		"employees",
	}
	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return tx.Commit(ctx)
}

// Employees, loads and fuel rows are owned by other services, so tests insert them directly.

func (s *TestDatabaseSetup) InsertEmployee(t *testing.T, name, status string) int64 {
	t.Helper()
	var id int64
	err := s.DB.QueryRow(context.Background(),
		`INSERT INTO employees (name, status, payment_method, pay_percentage) VALUES ($1, $2, 'PERCENTAGE', 25) RETURNING id`,
		name, status,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func (s *TestDatabaseSetup) InsertLoad(t *testing.T, number string, driverID int64, delivered time.Time, status string, rate string, miles int) int64 {
	t.Helper()
	var id int64
	err := s.DB.QueryRow(context.Background(),
		`INSERT INTO loads (load_number, driver_id, delivery_date, gross_amount, driver_rate, final_miles, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		number, driverID, delivered, decimal.RequireFromString(rate).Mul(decimal.NewFromInt(4)), decimal.RequireFromString(rate), miles, status,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func (s *TestDatabaseSetup) InsertFuel(t *testing.T, driverName string, on time.Time, amount, fees string) int64 {
	t.Helper()
	var id int64
	err := s.DB.QueryRow(context.Background(),
		`INSERT INTO fuel_transactions (transaction_date, driver_name, gallons, amount, fees)
		 VALUES ($1, $2, 40, $3, $4) RETURNING id`,
		on, driverName, decimal.RequireFromString(amount), decimal.RequireFromString(fees),
	).Scan(&id)
	require.NoError(t, err)
	return id
}
