package paystub

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/auth"
	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/domain/paystub"
	"github.com/haulbook/haulbook-backend-go/internal/observability"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/validator"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/week"
)

type PaystubServiceImpl struct {
	tx          database.Transactor
	paystubRepo paystub.PaystubRepository
	payrollRepo payroll.PayrollRepository
	metrics     *observability.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewPaystubService(
	tx database.Transactor,
	paystubRepo paystub.PaystubRepository,
	payrollRepo payroll.PayrollRepository,
	metrics *observability.Metrics,
	logger *slog.Logger,
) paystub.PaystubService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaystubServiceImpl{
		tx:          tx,
		paystubRepo: paystubRepo,
		payrollRepo: payrollRepo,
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func actor(ctx context.Context) *string {
	claims, err := auth.ClaimsFromContext(ctx)
	if err != nil {
		return nil
	}
	return &claims.UserID
}

// Generate snapshots the payroll's figures into its paystub. An existing DRAFT paystub is
// refreshed in place; approved or paid paystubs are never rewritten.
func (s *PaystubServiceImpl) Generate(ctx context.Context, req paystub.GenerateRequest) (paystub.PaystubResponse, error) {
	if err := req.Validate(); err != nil {
		return paystub.PaystubResponse{}, err
	}
	if req.AutoApprove && actor(ctx) == nil {
		return paystub.PaystubResponse{}, auth.ErrMissingActor
	}

	stub, result, err := s.generate(ctx, req.PayrollID, req.AutoApprove)
	if err != nil {
		return paystub.PaystubResponse{}, err
	}
	s.metrics.ObservePaystub(result)
	return paystub.ToResponse(stub), nil
}

func (s *PaystubServiceImpl) generate(ctx context.Context, payrollID int64, autoApprove bool) (paystub.Paystub, string, error) {
	var (
		stub   paystub.Paystub
		result string
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.payrollRepo.GetByID(ctx, payrollID)
		if err != nil {
			return err
		}
		if p.Status == payroll.PayrollStatusDraft || p.Status == payroll.PayrollStatusEmpty {
			return paystub.ErrPayrollNotReady
		}

		existing, err := s.paystubRepo.GetByPayrollID(ctx, p.ID)
		switch {
		case err == nil:
			if existing.Status != paystub.StatusDraft {
				return paystub.ErrPaystubNotEditable
			}
			stub = existing
			result = paystub.ItemUpdated
		case errors.Is(err, paystub.ErrPaystubNotFound):
			stub = paystub.Paystub{Status: paystub.StatusDraft}
			result = paystub.ItemCreated
		default:
			return err
		}

		now := s.now()
		stub.CopyFigures(p)
		stub.GeneratedAt = now
		stub.GeneratedBy = actor(ctx)
		if autoApprove {
			if err := stub.Approve(*stub.GeneratedBy, now); err != nil {
				return err
			}
		}

		if result == paystub.ItemCreated {
			stub, err = s.paystubRepo.Create(ctx, stub)
		} else {
			stub, err = s.paystubRepo.Update(ctx, stub)
		}
		if err != nil {
			return err
		}
		stub.EmployeeName = p.EmployeeName

		if autoApprove {
			return s.payrollRepo.UpdateStatus(ctx, p.ID, payroll.PayrollStatusApproved)
		}
		return nil
	})
	return stub, result, err
}

// GenerateForWeek runs Generate for every payroll row of the week. Each row succeeds or
// fails on its own.
func (s *PaystubServiceImpl) GenerateForWeek(ctx context.Context, req paystub.GenerateWeekRequest) (paystub.GenerateWeekResult, error) {
	if err := req.Validate(); err != nil {
		return paystub.GenerateWeekResult{}, err
	}
	if req.AutoApprove && actor(ctx) == nil {
		return paystub.GenerateWeekResult{}, auth.ErrMissingActor
	}
	w, err := isoWindow(req.Year, req.Week)
	if err != nil {
		return paystub.GenerateWeekResult{}, err
	}

	records, err := s.payrollRepo.List(ctx, payroll.ListFilter{WeekStart: &w.Start, WeekEnd: &w.End})
	if err != nil {
		return paystub.GenerateWeekResult{}, err
	}

	result := paystub.GenerateWeekResult{
		Year:    w.Year,
		Week:    w.Week,
		Results: make([]paystub.GenerateItemResult, 0, len(records)),
	}
	for _, p := range records {
		item := paystub.GenerateItemResult{PayrollID: p.ID, EmployeeID: p.EmployeeID}

		stub, status, err := s.generate(ctx, p.ID, req.AutoApprove)
		switch {
		case errors.Is(err, paystub.ErrPayrollNotReady), errors.Is(err, paystub.ErrPaystubNotEditable):
			reason := err.Error()
			item.Status = paystub.ItemSkipped
			item.Reason = &reason
			result.Skipped++
		case err != nil:
			s.logger.ErrorContext(ctx, "paystub generation failed",
				slog.Int64("payroll_id", p.ID),
				slog.String("week", w.Label()),
				slog.String("error", err.Error()),
			)
			reason := "Failed to generate paystub"
			item.Status = paystub.ItemError
			item.Reason = &reason
			result.Errors++
		default:
			item.Status = status
			item.PaystubID = &stub.ID
			if status == paystub.ItemCreated {
				result.Created++
			} else {
				result.Updated++
			}
		}
		s.metrics.ObservePaystub(item.Status)
		result.Results = append(result.Results, item)
	}

	s.logger.InfoContext(ctx, "paystubs generated for week",
		slog.String("week", w.Label()),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", result.Errors),
	)
	return result, nil
}

func (s *PaystubServiceImpl) Approve(ctx context.Context, id int64) (paystub.PaystubResponse, error) {
	by := actor(ctx)
	if by == nil {
		return paystub.PaystubResponse{}, auth.ErrMissingActor
	}
	return s.transition(ctx, id, func(stub *paystub.Paystub) (payroll.PayrollStatus, error) {
		return payroll.PayrollStatusApproved, stub.Approve(*by, s.now())
	})
}

func (s *PaystubServiceImpl) MarkPaid(ctx context.Context, id int64) (paystub.PaystubResponse, error) {
	return s.transition(ctx, id, func(stub *paystub.Paystub) (payroll.PayrollStatus, error) {
		return payroll.PayrollStatusPaid, stub.MarkPaid(s.now())
	})
}

// transition applies fn to the paystub and moves its payroll to the returned status.
func (s *PaystubServiceImpl) transition(ctx context.Context, id int64, fn func(*paystub.Paystub) (payroll.PayrollStatus, error)) (paystub.PaystubResponse, error) {
	var stub paystub.Paystub
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		stub, err = s.paystubRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		status, err := fn(&stub)
		if err != nil {
			return err
		}
		name := stub.EmployeeName
		stub, err = s.paystubRepo.Update(ctx, stub)
		if err != nil {
			return err
		}
		stub.EmployeeName = name
		return s.payrollRepo.UpdateStatus(ctx, stub.PayrollID, status)
	})
	if err != nil {
		return paystub.PaystubResponse{}, err
	}

	s.logger.InfoContext(ctx, "paystub status changed",
		slog.Int64("paystub_id", stub.ID),
		slog.Int64("payroll_id", stub.PayrollID),
		slog.String("status", string(stub.Status)),
	)
	return paystub.ToResponse(stub), nil
}

func (s *PaystubServiceImpl) Get(ctx context.Context, id int64) (paystub.PaystubResponse, error) {
	stub, err := s.paystubRepo.GetByID(ctx, id)
	if err != nil {
		return paystub.PaystubResponse{}, err
	}
	return paystub.ToResponse(stub), nil
}

func (s *PaystubServiceImpl) GetByPayroll(ctx context.Context, payrollID int64) (paystub.PaystubResponse, error) {
	stub, err := s.paystubRepo.GetByPayrollID(ctx, payrollID)
	if err != nil {
		return paystub.PaystubResponse{}, err
	}
	return paystub.ToResponse(stub), nil
}

func (s *PaystubServiceImpl) ListForWeek(ctx context.Context, year, wk int) ([]paystub.PaystubResponse, error) {
	w, err := isoWindow(year, wk)
	if err != nil {
		return nil, err
	}
	stubs, err := s.paystubRepo.ListByWeek(ctx, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	out := make([]paystub.PaystubResponse, 0, len(stubs))
	for _, st := range stubs {
		out = append(out, paystub.ToResponse(st))
	}
	return out, nil
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
