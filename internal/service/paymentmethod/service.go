package paymentmethod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/domain/auth"
	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/haulbook/haulbook-backend-go/internal/domain/paymentmethod"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
)

const dateLayout = "2006-01-02"

type PaymentMethodServiceImpl struct {
	tx           database.Transactor
	historyRepo  paymentmethod.HistoryRepository
	employeeRepo employee.EmployeeRepository
	logger       *slog.Logger
}

func NewPaymentMethodService(
	tx database.Transactor,
	historyRepo paymentmethod.HistoryRepository,
	employeeRepo employee.EmployeeRepository,
	logger *slog.Logger,
) paymentmethod.PaymentMethodService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentMethodServiceImpl{
		tx:           tx,
		historyRepo:  historyRepo,
		employeeRepo: employeeRepo,
		logger:       logger,
	}
}

// Resolve prefers the history entry covering the date and falls back to the employee's
// current configuration when no entry does.
func (s *PaymentMethodServiceImpl) Resolve(ctx context.Context, req paymentmethod.ResolveRequest) (paymentmethod.ResolvedPaymentMethod, error) {
	if err := req.Validate(); err != nil {
		return paymentmethod.ResolvedPaymentMethod{}, err
	}
	date, _ := time.Parse(dateLayout, req.Date)

	h, err := s.historyRepo.FindEffective(ctx, req.EmployeeID, date)
	if err == nil {
		resolved := paymentmethod.ResolvedPaymentMethod{
			EmployeeID:    req.EmployeeID,
			Date:          req.Date,
			PaymentMethod: string(h.PaymentMethod),
			PayPercentage: h.PayPercentage,
			MileRate:      h.MileRate,
			FlatRate:      h.FlatRate,
			EffectiveDate: formatDate(&h.EffectiveDate),
			EndDate:       formatDate(h.EndDate),
			Source:        paymentmethod.SourceHistory,
		}
		return resolved, nil
	}
	if !errors.Is(err, paymentmethod.ErrHistoryNotFound) {
		return paymentmethod.ResolvedPaymentMethod{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return paymentmethod.ResolvedPaymentMethod{}, err
	}
	return paymentmethod.ResolvedPaymentMethod{
		EmployeeID:    emp.ID,
		Date:          req.Date,
		PaymentMethod: string(emp.PaymentMethod),
		PayPercentage: emp.PayPercentage,
		MileRate:      emp.MileRate,
		FlatRate:      emp.FlatRate,
		Source:        paymentmethod.SourceCurrent,
	}, nil
}

// CreateHistory closes the open entry at the new effective date, appends the new entry
// and copies it onto the employee, all in one transaction.
func (s *PaymentMethodServiceImpl) CreateHistory(ctx context.Context, req paymentmethod.CreateHistoryRequest) (paymentmethod.HistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return paymentmethod.HistoryResponse{}, err
	}
	effective := req.ParsedEffectiveDate()

	var createdBy *string
	if claims, err := auth.ClaimsFromContext(ctx); err == nil {
		createdBy = &claims.UserID
	}

	entry := paymentmethod.History{
		EmployeeID:    req.EmployeeID,
		PaymentMethod: employee.PaymentMethod(req.PaymentMethod),
		EffectiveDate: effective,
		Notes:         req.Notes,
		CreatedBy:     createdBy,
	}
	// Only the rate belonging to the method is stored.
	switch entry.PaymentMethod {
	case employee.PaymentMethodPercentage:
		entry.PayPercentage = req.PayPercentage
	case employee.PaymentMethodPerMile:
		entry.MileRate = req.MileRate
	case employee.PaymentMethodFlat:
		entry.FlatRate = req.FlatRate
	}

	var created paymentmethod.History
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
			return err
		}

		open, err := s.historyRepo.GetOpen(ctx, req.EmployeeID)
		switch {
		case err == nil:
			if effective.Before(open.EffectiveDate) {
				return paymentmethod.ErrEffectiveDateBeforeOpenEntry
			}
			if err := s.historyRepo.CloseOpen(ctx, req.EmployeeID, effective); err != nil {
				return err
			}
		case errors.Is(err, paymentmethod.ErrHistoryNotFound):
		default:
			return err
		}

		created, err = s.historyRepo.Create(ctx, entry)
		if err != nil {
			return err
		}

		if err := s.employeeRepo.UpdatePaymentMethod(ctx, req.EmployeeID, entry.PaymentMethod,
			entry.PayPercentage, entry.MileRate, entry.FlatRate); err != nil {
			return fmt.Errorf("failed to sync employee payment method: %w", err)
		}
		return nil
	})
	if err != nil {
		return paymentmethod.HistoryResponse{}, err
	}

	s.logger.InfoContext(ctx, "payment method changed",
		slog.Int64("employee_id", req.EmployeeID),
		slog.String("payment_method", req.PaymentMethod),
		slog.String("effective_date", req.EffectiveDate),
	)
	return toHistoryResponse(created), nil
}

func (s *PaymentMethodServiceImpl) ListHistory(ctx context.Context, employeeID int64) ([]paymentmethod.HistoryResponse, error) {
	if employeeID <= 0 {
		return nil, employee.ErrInvalidEmployeeID
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	out := make([]paymentmethod.HistoryResponse, 0, len(entries))
	for _, h := range entries {
		out = append(out, toHistoryResponse(h))
	}
	return out, nil
}

func toHistoryResponse(h paymentmethod.History) paymentmethod.HistoryResponse {
	return paymentmethod.HistoryResponse{
		ID:            h.ID,
		EmployeeID:    h.EmployeeID,
		PaymentMethod: string(h.PaymentMethod),
		PayPercentage: h.PayPercentage,
		MileRate:      h.MileRate,
		FlatRate:      h.FlatRate,
		EffectiveDate: h.EffectiveDate.Format(dateLayout),
		EndDate:       formatDate(h.EndDate),
		Notes:         h.Notes,
		CreatedBy:     h.CreatedBy,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
