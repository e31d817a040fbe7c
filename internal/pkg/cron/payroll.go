package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/week"
)

// PayrollJobs keeps the open payroll weeks current between manual runs.
type PayrollJobs struct {
	payrollService payroll.PayrollService
	logger         *slog.Logger
	now            func() time.Time
}

func NewPayrollJobs(payrollService payroll.PayrollService, logger *slog.Logger) *PayrollJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJobs{
		payrollService: payrollService,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("refresh_open_payroll_weeks", interval, j.RefreshOpenWeeks)
}

// RefreshOpenWeeks re-aggregates and imports fuel for the previous and the current week.
// Locked weeks come back as skipped items and are left untouched.
func (j *PayrollJobs) RefreshOpenWeeks(ctx context.Context) error {
	current := week.Containing(j.now())
	previous := week.Containing(current.Start.AddDate(0, 0, -7))

	var errs []error
	for _, w := range []week.Window{previous, current} {
		if err := j.refreshWeek(ctx, w); err != nil {
			if errors.Is(err, payroll.ErrWeekBusy) {
				j.logger.Info("payroll week busy, refresh deferred", slog.String("week", w.Label()))
				continue
			}
			errs = append(errs, fmt.Errorf("refresh %s: %w", w.Label(), err))
		}
	}
	return errors.Join(errs...)
}

func (j *PayrollJobs) refreshWeek(ctx context.Context, w week.Window) error {
	ref := payroll.WeekRef{Year: w.Year, Week: w.Week}

	agg, err := j.payrollService.Aggregate(ctx, payroll.AggregateRequest{WeekRef: ref})
	if err != nil {
		return err
	}
	fuel, err := j.payrollService.ImportFuel(ctx, payroll.FuelImportRequest{WeekRef: ref})
	if err != nil {
		return err
	}

	j.logger.Info("payroll week refreshed",
		slog.String("week", w.Label()),
		slog.Int("processed", agg.Processed),
		slog.Int("skipped", agg.Skipped),
		slog.Int("errors", agg.Errors),
		slog.Int("fuel_imported", fuel.Imported),
	)
	return nil
}
