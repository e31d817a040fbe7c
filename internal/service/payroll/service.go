package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/haulbook/haulbook-backend-go/internal/domain/fuel"
	"github.com/haulbook/haulbook-backend-go/internal/domain/load"
	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/observability"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/lock"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/spreadsheet"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/validator"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/week"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// weekLockTTL bounds how long a crashed instance can hold a payroll week.
const weekLockTTL = 2 * time.Minute

type PayrollServiceImpl struct {
	tx           database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	loadRepo     load.LoadRepository
	fuelRepo     fuel.TransactionRepository
	locker       lock.Locker
	metrics      *observability.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	loadRepo load.LoadRepository,
	fuelRepo fuel.TransactionRepository,
	locker lock.Locker,
	metrics *observability.Metrics,
	logger *slog.Logger,
) payroll.PayrollService {
	if locker == nil {
		locker = lock.NewNoopLocker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		loadRepo:     loadRepo,
		fuelRepo:     fuelRepo,
		locker:       locker,
		metrics:      metrics,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// withWeeks holds the cross-instance mutex of every window while fn runs.
// Keys are taken in date order so two writers never wait on each other.
func (s *PayrollServiceImpl) withWeeks(ctx context.Context, fn func() error, windows ...week.Window) error {
	keys := make([]string, 0, len(windows))
	seen := make(map[string]bool, len(windows))
	for _, w := range windows {
		key := lock.PayrollWeekKey(w.Start)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		release, err := s.locker.Acquire(ctx, key, weekLockTTL)
		if err != nil {
			if errors.Is(err, lock.ErrNotAcquired) {
				return payroll.ErrWeekBusy
			}
			return err
		}
		defer release()
	}
	return fn()
}

// weekLocked reports whether any payroll row of the week is locked.
func (s *PayrollServiceImpl) weekLocked(ctx context.Context, w week.Window) (bool, error) {
	counts, err := s.payrollRepo.CountWeek(ctx, w.Start, w.End)
	if err != nil {
		return false, err
	}
	return counts.Locked > 0, nil
}

func isoWindow(year, wk int) (week.Window, error) {
	w, err := week.FromISOWeek(year, wk)
	if err != nil {
		var errs validator.ValidationErrors
		errs.Add("week", err.Error())
		return week.Window{}, errs
	}
	return w, nil
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) GetPayroll(ctx context.Context, id int64) (payroll.PayrollDetailResponse, error) {
	p, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayrollDetailResponse{}, err
	}

	var (
		loads []payroll.PayrollLoad
		fuels []payroll.FuelIntegration
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loads, err = s.payrollRepo.ListPayrollLoads(gctx, p.ID)
		return err
	})
	g.Go(func() error {
		var err error
		fuels, err = s.payrollRepo.ListFuelIntegrations(gctx, p.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return payroll.PayrollDetailResponse{}, err
	}

	resp := payroll.PayrollDetailResponse{
		PayrollResponse:  toPayrollResponse(p),
		Loads:            make([]payroll.PayrollLoadResponse, 0, len(loads)),
		FuelIntegrations: make([]payroll.FuelIntegrationResponse, 0, len(fuels)),
	}
	for _, l := range loads {
		resp.Loads = append(resp.Loads, payroll.PayrollLoadResponse{
			LoadID:      l.LoadID,
			GrossAmount: l.GrossAmount,
			DriverRate:  l.DriverRate,
			Miles:       l.Miles,
		})
	}
	for _, f := range fuels {
		resp.FuelIntegrations = append(resp.FuelIntegrations, payroll.FuelIntegrationResponse{
			ID:                f.ID,
			FuelTransactionID: f.FuelTransactionID,
			DeductionAmount:   f.DeductionAmount,
			IsIncluded:        f.IsIncluded,
		})
	}
	return resp, nil
}

func (s *PayrollServiceImpl) ListPayrolls(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var repoFilter payroll.ListFilter
	if filter.Year != nil && filter.Week != nil {
		w, err := isoWindow(*filter.Year, *filter.Week)
		if err != nil {
			return nil, err
		}
		repoFilter.WeekStart = &w.Start
		repoFilter.WeekEnd = &w.End
	}
	repoFilter.EmployeeID = filter.EmployeeID
	if filter.Status != nil {
		status := payroll.PayrollStatus(*filter.Status)
		repoFilter.Status = &status
	}

	records, err := s.payrollRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	out := make([]payroll.PayrollResponse, 0, len(records))
	for _, p := range records {
		out = append(out, toPayrollResponse(p))
	}
	return out, nil
}

// ExportWeek renders every payroll row of the week as an XLSX sheet.
func (s *PayrollServiceImpl) ExportWeek(ctx context.Context, year, wk int) (string, []byte, error) {
	w, err := isoWindow(year, wk)
	if err != nil {
		return "", nil, err
	}

	records, err := s.payrollRepo.List(ctx, payroll.ListFilter{WeekStart: &w.Start, WeekEnd: &w.End})
	if err != nil {
		return "", nil, err
	}

	table := spreadsheet.Table{
		Sheet: w.Label(),
		Columns: []spreadsheet.Column{
			{Header: "Employee ID", Width: 12},
			{Header: "Employee", Width: 28},
			{Header: "Loads"},
			{Header: "Miles"},
			{Header: "Gross Revenue", Width: 15},
			{Header: "Base Pay", Width: 12},
			{Header: "Fuel Deductions", Width: 16},
			{Header: "Other Deductions", Width: 16},
			{Header: "Net Pay", Width: 12},
			{Header: "Status", Width: 12},
			{Header: "Locked"},
		},
	}

	totalLoads, totalMiles := 0, 0
	gross, base, fuelTotal, other, net := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range records {
		name := ""
		if p.EmployeeName != nil {
			name = *p.EmployeeName
		}
		table.Rows = append(table.Rows, []interface{}{
			p.EmployeeID, name, p.TotalLoads, p.TotalMiles,
			p.GrossRevenue.InexactFloat64(), p.BasePay.InexactFloat64(),
			p.FuelDeductions.InexactFloat64(), p.OtherDeductions.InexactFloat64(),
			p.NetPay.InexactFloat64(), string(p.Status), p.IsLocked,
		})
		totalLoads += p.TotalLoads
		totalMiles += p.TotalMiles
		gross = gross.Add(p.GrossRevenue)
		base = base.Add(p.BasePay)
		fuelTotal = fuelTotal.Add(p.FuelDeductions)
		other = other.Add(p.OtherDeductions)
		net = net.Add(p.NetPay)
	}
	table.Totals = []interface{}{
		"Total", "", totalLoads, totalMiles,
		gross.InexactFloat64(), base.InexactFloat64(),
		fuelTotal.InexactFloat64(), other.InexactFloat64(), net.InexactFloat64(),
	}

	content, err := spreadsheet.Render(table)
	if err != nil {
		return "", nil, fmt.Errorf("failed to render payroll export: %w", err)
	}
	return fmt.Sprintf("payroll-%s.xlsx", w.Label()), content, nil
}

func toPayrollResponse(p payroll.IndividualPayroll) payroll.PayrollResponse {
	resp := payroll.PayrollResponse{
		ID:              p.ID,
		EmployeeID:      p.EmployeeID,
		EmployeeName:    p.EmployeeName,
		Week:            payroll.NewWeekResponse(p.Window()),
		TotalLoads:      p.TotalLoads,
		TotalMiles:      p.TotalMiles,
		GrossRevenue:    p.GrossRevenue,
		BasePay:         p.BasePay,
		FuelDeductions:  p.FuelDeductions,
		OtherDeductions: p.OtherDeductions,
		TotalDeductions: p.TotalDeductions,
		GrossPay:        p.GrossPay,
		NetPay:          p.NetPay,
		Status:          string(p.Status),
		IsLocked:        p.IsLocked,
		ReviewedBy:      p.ReviewedBy,
	}
	if p.ReviewedDate != nil {
		d := p.ReviewedDate.Format(time.RFC3339)
		resp.ReviewedDate = &d
	}
	return resp
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
