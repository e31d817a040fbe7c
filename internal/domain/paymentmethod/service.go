package paymentmethod

import "context"

type PaymentMethodService interface {
	// Resolve returns the configuration in force for the employee on the requested date.
	Resolve(ctx context.Context, req ResolveRequest) (ResolvedPaymentMethod, error)

	// CreateHistory closes the open entry and appends a new one atomically.
	CreateHistory(ctx context.Context, req CreateHistoryRequest) (HistoryResponse, error)

	ListHistory(ctx context.Context, employeeID int64) ([]HistoryResponse, error)
}
