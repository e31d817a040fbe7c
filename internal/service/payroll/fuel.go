package payroll

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/haulbook/haulbook-backend-go/internal/domain/fuel"
	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/week"
)

const reasonAmbiguousDriver = "Driver name matches more than one employee"

type driverGroup struct {
	name string
	txs  []fuel.Transaction
}

// groupByDriver buckets transactions by case-insensitive driver name, keeping first-seen order.
func groupByDriver(txs []fuel.Transaction) []driverGroup {
	index := make(map[string]int)
	var groups []driverGroup
	for _, t := range txs {
		key := strings.ToLower(strings.TrimSpace(t.DriverName))
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, driverGroup{name: strings.TrimSpace(t.DriverName)})
		}
		groups[i].txs = append(groups[i].txs, t)
	}
	return groups
}

// ImportFuel links the week's fuel transactions to each driver's payroll row.
// Re-running it for the same week only imports transactions not linked yet.
func (s *PayrollServiceImpl) ImportFuel(ctx context.Context, req payroll.FuelImportRequest) (payroll.FuelImportResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.FuelImportResult{}, err
	}
	w, err := req.WeekRef.Window()
	if err != nil {
		return payroll.FuelImportResult{}, err
	}

	batchID := uuid.New()
	result := payroll.FuelImportResult{
		BatchID: batchID.String(),
		Week:    payroll.NewWeekResponse(w),
		Drivers: []payroll.DriverFuelResult{},
	}

	err = s.withWeeks(ctx, func() error {
		txs, err := s.fuelRepo.ListByDateRange(ctx, w.Start, w.EndExclusive())
		if err != nil {
			return err
		}
		locked, err := s.weekLocked(ctx, w)
		if err != nil {
			return err
		}

		for _, group := range groupByDriver(txs) {
			var dr payroll.DriverFuelResult
			if locked {
				dr = payroll.DriverFuelResult{
					DriverName: group.name,
					Status:     payroll.ResultStatusSkipped,
					Reason:     payroll.ReasonWeekLocked,
					Skipped:    len(group.txs),
				}
			} else {
				dr = s.importDriverFuel(ctx, group, w, batchID)
			}
			result.AddDriver(dr)
		}
		return nil
	}, w)
	if err != nil {
		return payroll.FuelImportResult{}, err
	}

	s.metrics.ObserveFuelRows("imported", result.Imported)
	s.metrics.ObserveFuelRows("skipped", result.Skipped)
	s.metrics.ObserveFuelRows("error", result.Errors)
	s.logger.InfoContext(ctx, "fuel imported into payroll",
		slog.String("batch_id", result.BatchID),
		slog.String("week", w.Label()),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", result.Errors),
	)
	return result, nil
}

func (s *PayrollServiceImpl) importDriverFuel(ctx context.Context, group driverGroup, w week.Window, batchID uuid.UUID) payroll.DriverFuelResult {
	dr := payroll.DriverFuelResult{DriverName: group.name}

	emp, err := s.employeeRepo.FindActiveByName(ctx, group.name)
	switch {
	case errors.Is(err, employee.ErrEmployeeNotFound):
		dr.Status = payroll.ResultStatusSkipped
		dr.Reason = payroll.ReasonEmployeeNotFound
		dr.Skipped = len(group.txs)
		return dr
	case errors.Is(err, employee.ErrAmbiguousDriverName):
		dr.Status = payroll.ResultStatusSkipped
		dr.Reason = reasonAmbiguousDriver
		dr.Skipped = len(group.txs)
		return dr
	case err != nil:
		return s.driverFuelFailed(ctx, dr, len(group.txs), err)
	}
	dr.EmployeeID = &emp.ID

	p, err := s.payrollRepo.FindOrCreate(ctx, payroll.NewDraft(emp.ID, w))
	if err != nil {
		return s.driverFuelFailed(ctx, dr, len(group.txs), err)
	}
	dr.PayrollID = &p.ID
	if p.IsLocked {
		dr.Status = payroll.ResultStatusSkipped
		dr.Reason = payroll.ReasonWeekLocked
		dr.Skipped = len(group.txs)
		return dr
	}
	if p.IsFinalized() {
		dr.Status = payroll.ResultStatusSkipped
		dr.Reason = payroll.ReasonPayrollFinalized
		dr.Skipped = len(group.txs)
		return dr
	}

	for _, t := range group.txs {
		exists, err := s.payrollRepo.FuelIntegrationExists(ctx, t.ID, w.Start)
		if err != nil {
			s.fuelRowFailed(ctx, t, err)
			dr.Errors++
			continue
		}
		if exists {
			dr.Skipped++
			continue
		}

		_, err = s.payrollRepo.CreateFuelIntegration(ctx, payroll.FuelIntegration{
			PayrollID:         p.ID,
			FuelTransactionID: t.ID,
			WeekStart:         w.Start,
			DeductionAmount:   t.DeductionAmount(),
			IsIncluded:        true,
			ImportBatchID:     batchID,
		})
		switch {
		case errors.Is(err, payroll.ErrFuelAlreadyIntegrated):
			dr.Skipped++
		case err != nil:
			s.fuelRowFailed(ctx, t, err)
			dr.Errors++
		default:
			dr.Imported++
		}
	}

	updated, err := s.recomputeFuel(ctx, p.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "fuel deduction recompute failed",
			slog.Int64("payroll_id", p.ID),
			slog.String("error", err.Error()),
		)
		dr.Status = payroll.ResultStatusError
		dr.Reason = "Failed to update fuel deductions"
		return dr
	}

	dr.Status = payroll.ResultStatusProcessed
	dr.FuelDeductions = decimalPtr(updated.FuelDeductions)
	dr.NetPay = decimalPtr(updated.NetPay)
	return dr
}

// recomputeFuel sets the payroll's fuel deductions to the sum of its included integrations.
func (s *PayrollServiceImpl) recomputeFuel(ctx context.Context, payrollID int64) (payroll.IndividualPayroll, error) {
	var p payroll.IndividualPayroll
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.payrollRepo.GetByID(ctx, payrollID)
		if err != nil {
			return err
		}
		total, err := s.payrollRepo.SumIncludedFuelDeductions(ctx, payrollID)
		if err != nil {
			return err
		}
		p.ReplaceFuelDeductions(total)
		return s.payrollRepo.UpdateTotals(ctx, p)
	})
	return p, err
}

func (s *PayrollServiceImpl) driverFuelFailed(ctx context.Context, dr payroll.DriverFuelResult, rows int, err error) payroll.DriverFuelResult {
	s.logger.ErrorContext(ctx, "fuel import failed for driver",
		slog.String("driver_name", dr.DriverName),
		slog.String("error", err.Error()),
	)
	dr.Status = payroll.ResultStatusError
	dr.Reason = "Failed to import fuel"
	dr.Errors = rows
	return dr
}

func (s *PayrollServiceImpl) fuelRowFailed(ctx context.Context, t fuel.Transaction, err error) {
	s.logger.ErrorContext(ctx, "fuel transaction import failed",
		slog.Int64("fuel_transaction_id", t.ID),
		slog.String("driver_name", t.DriverName),
		slog.String("error", err.Error()),
	)
}

// SetFuelInclusion includes or excludes one imported fuel transaction from its payroll.
func (s *PayrollServiceImpl) SetFuelInclusion(ctx context.Context, req payroll.SetFuelInclusionRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}

	fi, err := s.payrollRepo.GetFuelIntegration(ctx, req.IntegrationID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	p, err := s.payrollRepo.GetByID(ctx, fi.PayrollID)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	var updated payroll.IndividualPayroll
	err = s.withWeeks(ctx, func() error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			current, err := s.payrollRepo.GetByID(ctx, p.ID)
			if err != nil {
				return err
			}
			if current.IsLocked {
				return payroll.ErrWeekLocked
			}
			if current.IsFinalized() {
				return payroll.ErrPayrollFinalized
			}
			if err := s.payrollRepo.SetFuelIntegrationIncluded(ctx, fi.ID, *req.IsIncluded); err != nil {
				return err
			}
			updated, err = s.recomputeFuel(ctx, p.ID)
			return err
		})
	}, p.Window())
	if err != nil {
		return payroll.PayrollResponse{}, err
	}
	return toPayrollResponse(updated), nil
}
