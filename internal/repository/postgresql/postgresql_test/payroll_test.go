package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/haulbook/haulbook-backend-go/internal/domain/load"
	"github.com/haulbook/haulbook-backend-go/internal/domain/paymentmethod"
	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/week"
	"github.com/haulbook/haulbook-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func week10(t *testing.T) week.Window {
	t.Helper()
	w, err := week.FromISOWeek(2024, 10)
	require.NoError(t, err)
	return w
}

func TestEmployeeRepository_FindActiveByName(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewEmployeeRepository(setup.DB)
	ctx := context.Background()

	id := setup.InsertEmployee(t, "John Driver", "ACTIVE")
	setup.InsertEmployee(t, "Jane Hauler", "ACTIVE")
	setup.InsertEmployee(t, "Jane Hauler", "ACTIVE")
	setup.InsertEmployee(t, "Old Timer", "INACTIVE")

	found, err := repo.FindActiveByName(ctx, "  john DRIVER ")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)

	_, err = repo.FindActiveByName(ctx, "jane hauler")
	assert.ErrorIs(t, err, employee.ErrAmbiguousDriverName)

	_, err = repo.FindActiveByName(ctx, "old timer")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	active, err := repo.GetActiveByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestLoadRepository_ListDeliveredByDriver(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewLoadRepository(setup.DB)
	ctx := context.Background()
	w := week10(t)

	driverID := setup.InsertEmployee(t, "John Driver", "ACTIVE")
	setup.InsertLoad(t, "L-1", driverID, date(2024, time.March, 4), "DELIVERED", "200", 400)
	setup.InsertLoad(t, "L-2", driverID, date(2024, time.March, 10), "DELIVERED", "150", 300)
	setup.InsertLoad(t, "L-3", driverID, date(2024, time.March, 11), "DELIVERED", "100", 100)
	setup.InsertLoad(t, "L-4", driverID, date(2024, time.March, 6), "IN_TRANSIT", "100", 100)

	loads, err := repo.ListDeliveredByDriver(ctx, driverID, w.Start, w.EndExclusive())
	require.NoError(t, err)
	require.Len(t, loads, 2)
	for _, l := range loads {
		assert.Equal(t, load.StatusDelivered, l.Status)
		assert.True(t, w.Contains(*l.DeliveryDate))
	}

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, load.ErrLoadNotFound)
}

func TestPaymentMethodHistoryRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPaymentMethodHistoryRepository(setup.DB)
	ctx := context.Background()
	empID := setup.InsertEmployee(t, "John Driver", "ACTIVE")

	pct := decimal.RequireFromString("25")
	_, err := repo.Create(ctx, paymentmethod.History{
		EmployeeID: empID, PaymentMethod: employee.PaymentMethodPercentage, PayPercentage: &pct,
		EffectiveDate: date(2024, time.January, 1),
	})
	require.NoError(t, err)

	require.NoError(t, repo.CloseOpen(ctx, empID, date(2024, time.March, 1)))
	rate := decimal.RequireFromString("0.55")
	_, err = repo.Create(ctx, paymentmethod.History{
		EmployeeID: empID, PaymentMethod: employee.PaymentMethodPerMile, MileRate: &rate,
		EffectiveDate: date(2024, time.March, 1),
	})
	require.NoError(t, err)

	before, err := repo.FindEffective(ctx, empID, date(2024, time.February, 29))
	require.NoError(t, err)
	assert.Equal(t, employee.PaymentMethodPercentage, before.PaymentMethod)

	// The end date is exclusive.
	onSwitch, err := repo.FindEffective(ctx, empID, date(2024, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, employee.PaymentMethodPerMile, onSwitch.PaymentMethod)

	_, err = repo.FindEffective(ctx, empID, date(2023, time.December, 31))
	assert.ErrorIs(t, err, paymentmethod.ErrHistoryNotFound)

	open, err := repo.GetOpen(ctx, empID)
	require.NoError(t, err)
	assert.Nil(t, open.EndDate)

	all, err := repo.ListByEmployee(ctx, empID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].EffectiveDate.After(all[1].EffectiveDate))
}

func TestPayrollRepository_FindOrCreateAndLoads(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	ctx := context.Background()
	w := week10(t)

	empID := setup.InsertEmployee(t, "John Driver", "ACTIVE")
	first := setup.InsertLoad(t, "L-1", empID, date(2024, time.March, 4), "DELIVERED", "200", 400)
	second := setup.InsertLoad(t, "L-2", empID, date(2024, time.March, 5), "DELIVERED", "150", 300)
	moved := setup.InsertLoad(t, "L-3", empID, date(2024, time.February, 28), "DELIVERED", "100", 0)

	p, err := repo.FindOrCreate(ctx, payroll.NewDraft(empID, w))
	require.NoError(t, err)
	again, err := repo.FindOrCreate(ctx, payroll.NewDraft(empID, w))
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	require.NotNil(t, again.EmployeeName)
	assert.Equal(t, "John Driver", *again.EmployeeName)

	_, err = repo.CreatePayrollLoad(ctx, payroll.PayrollLoad{
		PayrollID: p.ID, LoadID: moved, GrossAmount: decimal.RequireFromString("400"),
		DriverRate: decimal.RequireFromString("100"), MovedIn: true,
	})
	require.NoError(t, err)

	aggregated := []payroll.PayrollLoad{
		{LoadID: first, GrossAmount: decimal.RequireFromString("800"), DriverRate: decimal.RequireFromString("200"), Miles: 400},
		{LoadID: second, GrossAmount: decimal.RequireFromString("600"), DriverRate: decimal.RequireFromString("150"), Miles: 300},
	}
	require.NoError(t, repo.ReplaceAggregatedLoads(ctx, p.ID, aggregated))
	require.NoError(t, repo.ReplaceAggregatedLoads(ctx, p.ID, aggregated[:1]))

	loads, err := repo.ListPayrollLoads(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, loads, 2)

	p.RecalculateFromLoads(loads)
	p.Status = payroll.PayrollStatusCalculated
	require.NoError(t, repo.UpdateTotals(ctx, p))

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("300").Equal(stored.BasePay))
	assert.Equal(t, 400, stored.TotalMiles)
	assert.Equal(t, payroll.PayrollStatusCalculated, stored.Status)

	pl, err := repo.FindPayrollLoadByLoadID(ctx, moved)
	require.NoError(t, err)
	assert.True(t, pl.MovedIn)

	require.NoError(t, repo.DeletePayrollLoad(ctx, p.ID, moved))
	_, err = repo.FindPayrollLoadByLoadID(ctx, moved)
	assert.ErrorIs(t, err, payroll.ErrPayrollLoadNotFound)
}

func TestPayrollRepository_FuelIntegrations(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	ctx := context.Background()
	w := week10(t)

	empID := setup.InsertEmployee(t, "John Driver", "ACTIVE")
	fuelID := setup.InsertFuel(t, "John Driver", date(2024, time.March, 6), "80", "2.50")
	p, err := repo.FindOrCreate(ctx, payroll.NewDraft(empID, w))
	require.NoError(t, err)

	fi := payroll.FuelIntegration{
		PayrollID: p.ID, FuelTransactionID: fuelID, WeekStart: w.Start,
		DeductionAmount: decimal.RequireFromString("82.50"), IsIncluded: true, ImportBatchID: uuid.New(),
	}
	created, err := repo.CreateFuelIntegration(ctx, fi)
	require.NoError(t, err)

	_, err = repo.CreateFuelIntegration(ctx, fi)
	assert.ErrorIs(t, err, payroll.ErrFuelAlreadyIntegrated)

	exists, err := repo.FuelIntegrationExists(ctx, fuelID, w.Start)
	require.NoError(t, err)
	assert.True(t, exists)

	sum, err := repo.SumIncludedFuelDeductions(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("82.50").Equal(sum))

	require.NoError(t, repo.SetFuelIntegrationIncluded(ctx, created.ID, false))
	sum, err = repo.SumIncludedFuelDeductions(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())

	err = repo.SetFuelIntegrationIncluded(ctx, 9999, true)
	assert.ErrorIs(t, err, payroll.ErrFuelIntegrationNotFound)
}

func TestPayrollRepository_WeekLockAndMoves(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	ctx := context.Background()
	w := week10(t)
	next, err := week.FromISOWeek(2024, 11)
	require.NoError(t, err)

	a := setup.InsertEmployee(t, "John Driver", "ACTIVE")
	b := setup.InsertEmployee(t, "Jane Hauler", "ACTIVE")
	src, err := repo.FindOrCreate(ctx, payroll.NewDraft(a, w))
	require.NoError(t, err)
	_, err = repo.FindOrCreate(ctx, payroll.NewDraft(b, w))
	require.NoError(t, err)
	dst, err := repo.FindOrCreate(ctx, payroll.NewDraft(a, next))
	require.NoError(t, err)

	affected, err := repo.SetWeekLock(ctx, w.Start, w.End, true, "admin-1", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	count, err := repo.CountWeek(ctx, w.Start, w.End)
	require.NoError(t, err)
	assert.Equal(t, payroll.WeekLockCount{Total: 2, Locked: 2}, count)

	count, err = repo.CountWeek(ctx, next.Start, next.End)
	require.NoError(t, err)
	assert.Equal(t, payroll.WeekLockCount{Total: 1, Locked: 0}, count)

	loadID := setup.InsertLoad(t, "L-1", a, date(2024, time.March, 4), "DELIVERED", "200", 400)
	for i, movedAt := range []time.Time{time.Now().Add(-time.Hour), time.Now()} {
		_, err := repo.CreateLoadMove(ctx, payroll.LoadMove{
			ID: uuid.New(), LoadID: loadID, DriverID: a, FromPayrollID: &src.ID, ToPayrollID: dst.ID,
			FromWeekStart: w.Start, FromWeekEnd: w.End, ToWeekStart: next.Start, ToWeekEnd: next.End,
			GrossAmount: decimal.RequireFromString("800"), DriverRate: decimal.RequireFromString("200"),
			MovedBy: []string{"first", "second"}[i], MovedAt: movedAt.UTC(),
		})
		require.NoError(t, err)
	}

	moves, err := repo.ListLoadMoves(ctx, loadID)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "second", moves[0].MovedBy)
	assert.Equal(t, dst.ID, moves[0].ToPayrollID)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	repo := postgresql.NewPayrollRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)
	ctx := context.Background()
	w := week10(t)
	empID := setup.InsertEmployee(t, "John Driver", "ACTIVE")

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.FindOrCreate(ctx, payroll.NewDraft(empID, w)); err != nil {
			return err
		}
		// Nested calls join the outer transaction.
		return tx.WithinTransaction(ctx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetByEmployeeWeek(ctx, empID, w.Start, w.End)
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
}
