package payroll

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/week"
)

var errNoLoads = errors.New("no delivered loads")

// Aggregate sums each employee's delivered loads of the week into their payroll row.
// Employees are processed independently; one failure does not stop the others.
func (s *PayrollServiceImpl) Aggregate(ctx context.Context, req payroll.AggregateRequest) (payroll.AggregateResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.AggregateResult{}, err
	}
	w, err := req.WeekRef.Window()
	if err != nil {
		return payroll.AggregateResult{}, err
	}

	result := payroll.AggregateResult{
		Week:      payroll.NewWeekResponse(w),
		Employees: []payroll.EmployeeAggregateResult{},
	}

	err = s.withWeeks(ctx, func() error {
		employees, err := s.employeeRepo.GetActiveByIDs(ctx, req.EmployeeIDs)
		if err != nil {
			return err
		}
		locked, err := s.weekLocked(ctx, w)
		if err != nil {
			return err
		}

		found := make(map[int64]bool, len(employees))
		for _, emp := range employees {
			found[emp.ID] = true

			if locked {
				result.Add(payroll.EmployeeAggregateResult{
					EmployeeID:   emp.ID,
					EmployeeName: emp.Name,
					Status:       payroll.ResultStatusSkipped,
					Reason:       payroll.ReasonWeekLocked,
				})
				s.metrics.ObserveAggregation(payroll.ResultStatusSkipped)
				continue
			}

			item := s.aggregateEmployee(ctx, emp, w)
			result.Add(item)
			s.metrics.ObserveAggregation(item.Status)
		}

		for _, id := range req.EmployeeIDs {
			if found[id] {
				continue
			}
			found[id] = true
			result.Add(payroll.EmployeeAggregateResult{
				EmployeeID: id,
				Status:     payroll.ResultStatusSkipped,
				Reason:     payroll.ReasonEmployeeNotFound,
			})
		}
		return nil
	}, w)
	if err != nil {
		return payroll.AggregateResult{}, err
	}

	s.logger.InfoContext(ctx, "payroll aggregated",
		slog.String("week", w.Label()),
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", result.Errors),
	)
	return result, nil
}

func (s *PayrollServiceImpl) aggregateEmployee(ctx context.Context, emp employee.Employee, w week.Window) payroll.EmployeeAggregateResult {
	item := payroll.EmployeeAggregateResult{EmployeeID: emp.ID, EmployeeName: emp.Name}

	loads, err := s.loadRepo.ListDeliveredByDriver(ctx, emp.ID, w.Start, w.EndExclusive())
	if err != nil {
		return s.aggregateFailed(ctx, item, w, err)
	}
	if len(loads) == 0 {
		item.Status = payroll.ResultStatusSkipped
		item.Reason = payroll.ReasonNoLoads
		return item
	}

	var record payroll.IndividualPayroll
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.payrollRepo.GetByEmployeeWeek(ctx, emp.ID, w.Start, w.End)
		hasExisting := err == nil
		if err != nil && !errors.Is(err, payroll.ErrPayrollNotFound) {
			return err
		}
		if hasExisting {
			if existing.IsLocked {
				return payroll.ErrWeekLocked
			}
			if existing.IsFinalized() {
				return payroll.ErrPayrollFinalized
			}
		}

		snapshots := make([]payroll.PayrollLoad, 0, len(loads))
		for _, l := range loads {
			held, err := s.payrollRepo.FindPayrollLoadByLoadID(ctx, l.ID)
			switch {
			case errors.Is(err, payroll.ErrPayrollLoadNotFound):
			case err != nil:
				return err
			case !hasExisting || held.PayrollID != existing.ID:
				// Moved to another week; that week owns it now.
				continue
			case held.MovedIn:
				// Moved back here; the existing snapshot stays.
				continue
			}
			snapshots = append(snapshots, payroll.PayrollLoad{
				LoadID:      l.ID,
				GrossAmount: l.GrossAmount,
				DriverRate:  l.DriverRate,
				Miles:       l.FinalMiles,
			})
		}
		if len(snapshots) == 0 {
			return errNoLoads
		}

		record, err = s.payrollRepo.FindOrCreate(ctx, payroll.NewDraft(emp.ID, w))
		if err != nil {
			return err
		}
		if err := s.payrollRepo.ReplaceAggregatedLoads(ctx, record.ID, snapshots); err != nil {
			return err
		}
		all, err := s.payrollRepo.ListPayrollLoads(ctx, record.ID)
		if err != nil {
			return err
		}
		record.RecalculateFromLoads(all)
		record.Status = payroll.PayrollStatusCalculated
		return s.payrollRepo.UpdateTotals(ctx, record)
	})

	switch {
	case errors.Is(err, errNoLoads):
		item.Status = payroll.ResultStatusSkipped
		item.Reason = payroll.ReasonNoLoads
		return item
	case errors.Is(err, payroll.ErrWeekLocked):
		item.Status = payroll.ResultStatusSkipped
		item.Reason = payroll.ReasonWeekLocked
		return item
	case errors.Is(err, payroll.ErrPayrollFinalized):
		item.Status = payroll.ResultStatusSkipped
		item.Reason = payroll.ReasonPayrollFinalized
		return item
	case err != nil:
		return s.aggregateFailed(ctx, item, w, err)
	}

	item.Status = payroll.ResultStatusCalculated
	item.PayrollID = &record.ID
	item.TotalLoads = record.TotalLoads
	item.TotalMiles = record.TotalMiles
	item.GrossRevenue = decimalPtr(record.GrossRevenue)
	item.BasePay = decimalPtr(record.BasePay)
	item.NetPay = decimalPtr(record.NetPay)
	return item
}

func (s *PayrollServiceImpl) aggregateFailed(ctx context.Context, item payroll.EmployeeAggregateResult, w week.Window, err error) payroll.EmployeeAggregateResult {
	s.logger.ErrorContext(ctx, "payroll aggregation failed",
		slog.Int64("employee_id", item.EmployeeID),
		slog.String("week", w.Label()),
		slog.String("error", err.Error()),
	)
	item.Status = payroll.ResultStatusError
	item.Reason = "Failed to aggregate payroll"
	return item
}
