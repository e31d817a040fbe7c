package payroll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/haulbook/haulbook-backend-go/internal/domain/auth"
	"github.com/haulbook/haulbook-backend-go/internal/domain/load"
	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/week"
)

// MoveLoad moves one load's pay from the week currently holding it to the target week.
// Source cleanup, target snapshot and the audit row commit together or not at all.
func (s *PayrollServiceImpl) MoveLoad(ctx context.Context, req payroll.MoveLoadRequest) (payroll.MoveLoadResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.MoveLoadResult{}, err
	}
	claims, err := auth.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.MoveLoadResult{}, err
	}
	target, err := isoWindow(req.TargetYear, req.TargetWeek)
	if err != nil {
		return payroll.MoveLoadResult{}, err
	}

	l, err := s.loadRepo.GetByID(ctx, req.LoadID)
	if err != nil {
		return payroll.MoveLoadResult{}, err
	}
	if !l.HasDriver() {
		return payroll.MoveLoadResult{}, load.ErrLoadHasNoDriver
	}
	driverID := *l.DriverID

	source, err := s.currentWeek(ctx, l)
	if err != nil {
		return payroll.MoveLoadResult{}, err
	}
	if source.Equal(target) {
		return payroll.MoveLoadResult{}, payroll.ErrSameWeek
	}

	var (
		sourcePayroll *payroll.IndividualPayroll
		targetPayroll payroll.IndividualPayroll
		move          payroll.LoadMove
	)
	err = s.withWeeks(ctx, func() error {
		if locked, err := s.weekLocked(ctx, target); err != nil {
			return err
		} else if locked {
			return payroll.ErrTargetWeekLocked
		}
		if locked, err := s.weekLocked(ctx, source); err != nil {
			return err
		} else if locked {
			return payroll.ErrSourceWeekLocked
		}

		return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			// 1. Detach from the source payroll, if the load was counted there.
			held, err := s.payrollRepo.FindPayrollLoadByLoadID(ctx, l.ID)
			switch {
			case err == nil:
				src, err := s.payrollRepo.GetByID(ctx, held.PayrollID)
				if err != nil {
					return err
				}
				if src.IsLocked {
					return payroll.ErrSourceWeekLocked
				}
				if src.IsFinalized() {
					return payroll.ErrPayrollFinalized
				}
				if err := s.payrollRepo.DeletePayrollLoad(ctx, src.ID, l.ID); err != nil {
					return err
				}
				remaining, err := s.payrollRepo.ListPayrollLoads(ctx, src.ID)
				if err != nil {
					return err
				}
				src.RecalculateFromLoads(remaining)
				if len(remaining) == 0 {
					src.Status = payroll.PayrollStatusEmpty
				}
				if err := s.payrollRepo.UpdateTotals(ctx, src); err != nil {
					return err
				}
				sourcePayroll = &src
			case errors.Is(err, payroll.ErrPayrollLoadNotFound):
			default:
				return err
			}

			// 2. Find or create the target payroll.
			targetPayroll, err = s.payrollRepo.FindOrCreate(ctx, payroll.NewDraft(driverID, target))
			if err != nil {
				return err
			}
			if targetPayroll.IsLocked {
				return payroll.ErrTargetWeekLocked
			}
			if targetPayroll.IsFinalized() {
				return payroll.ErrPayrollFinalized
			}

			// 3. Snapshot the load under the target. Miles stay 0 until the week is re-rated.
			if _, err := s.payrollRepo.CreatePayrollLoad(ctx, payroll.PayrollLoad{
				PayrollID:   targetPayroll.ID,
				LoadID:      l.ID,
				GrossAmount: l.GrossAmount,
				DriverRate:  l.DriverRate,
				Miles:       0,
				MovedIn:     true,
			}); err != nil {
				return err
			}

			// 4. Recompute the target totals.
			all, err := s.payrollRepo.ListPayrollLoads(ctx, targetPayroll.ID)
			if err != nil {
				return err
			}
			targetPayroll.RecalculateFromLoads(all)
			if targetPayroll.Status == payroll.PayrollStatusDraft || targetPayroll.Status == payroll.PayrollStatusEmpty {
				targetPayroll.Status = payroll.PayrollStatusCalculated
			}
			if err := s.payrollRepo.UpdateTotals(ctx, targetPayroll); err != nil {
				return err
			}

			// 5. Audit.
			var fromPayrollID *int64
			if sourcePayroll != nil {
				fromPayrollID = &sourcePayroll.ID
			}
			move, err = s.payrollRepo.CreateLoadMove(ctx, payroll.LoadMove{
				ID:            uuid.New(),
				LoadID:        l.ID,
				DriverID:      driverID,
				FromPayrollID: fromPayrollID,
				ToPayrollID:   targetPayroll.ID,
				FromWeekStart: source.Start,
				FromWeekEnd:   source.End,
				ToWeekStart:   target.Start,
				ToWeekEnd:     target.End,
				GrossAmount:   l.GrossAmount,
				DriverRate:    l.DriverRate,
				MovedBy:       claims.UserID,
				Reason:        req.Reason,
				MovedAt:       s.now(),
			})
			return err
		})
	}, source, target)
	if err != nil {
		return payroll.MoveLoadResult{}, err
	}

	s.metrics.ObserveLoadMove()
	s.logger.InfoContext(ctx, "load moved between payroll weeks",
		slog.String("move_id", move.ID.String()),
		slog.Int64("load_id", l.ID),
		slog.Int64("driver_id", driverID),
		slog.String("from_week", source.Label()),
		slog.String("to_week", target.Label()),
		slog.String("moved_by", claims.UserID),
	)

	result := payroll.MoveLoadResult{
		MoveID:        move.ID.String(),
		LoadID:        l.ID,
		DriverID:      driverID,
		FromWeek:      payroll.NewWeekResponse(source),
		ToWeek:        payroll.NewWeekResponse(target),
		TargetPayroll: toPayrollResponse(targetPayroll),
	}
	if sourcePayroll != nil {
		resp := toPayrollResponse(*sourcePayroll)
		result.SourcePayroll = &resp
	}
	return result, nil
}

// currentWeek is the week of the payroll holding the load, else its delivery week.
func (s *PayrollServiceImpl) currentWeek(ctx context.Context, l load.Load) (week.Window, error) {
	held, err := s.payrollRepo.FindPayrollLoadByLoadID(ctx, l.ID)
	if err == nil {
		p, err := s.payrollRepo.GetByID(ctx, held.PayrollID)
		if err != nil {
			return week.Window{}, err
		}
		return p.Window(), nil
	}
	if !errors.Is(err, payroll.ErrPayrollLoadNotFound) {
		return week.Window{}, err
	}
	if l.DeliveryDate == nil {
		return week.Window{}, load.ErrLoadNotDelivered
	}
	return week.Containing(*l.DeliveryDate), nil
}

func (s *PayrollServiceImpl) ListLoadMoves(ctx context.Context, loadID int64) ([]payroll.LoadMoveResponse, error) {
	if _, err := s.loadRepo.GetByID(ctx, loadID); err != nil {
		return nil, err
	}

	moves, err := s.payrollRepo.ListLoadMoves(ctx, loadID)
	if err != nil {
		return nil, err
	}

	out := make([]payroll.LoadMoveResponse, 0, len(moves))
	for _, m := range moves {
		out = append(out, payroll.LoadMoveResponse{
			ID:          m.ID.String(),
			LoadID:      m.LoadID,
			DriverID:    m.DriverID,
			FromWeek:    payroll.NewWeekResponse(week.Containing(m.FromWeekStart)),
			ToWeek:      payroll.NewWeekResponse(week.Containing(m.ToWeekStart)),
			GrossAmount: m.GrossAmount,
			DriverRate:  m.DriverRate,
			MovedBy:     m.MovedBy,
			Reason:      m.Reason,
			MovedAt:     m.MovedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}
