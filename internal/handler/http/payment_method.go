package http

import (
	"encoding/json"
	"net/http"

	"github.com/haulbook/haulbook-backend-go/internal/domain/paymentmethod"
	"github.com/haulbook/haulbook-backend-go/internal/handler/http/response"
)

type PaymentMethodHandler interface {
	Resolve(w http.ResponseWriter, r *http.Request)
	CreateHistory(w http.ResponseWriter, r *http.Request)
	ListHistory(w http.ResponseWriter, r *http.Request)
}

type paymentMethodHandlerImpl struct {
	paymentMethodService paymentmethod.PaymentMethodService
}

func NewPaymentMethodHandler(paymentMethodService paymentmethod.PaymentMethodService) PaymentMethodHandler {
	return &paymentMethodHandlerImpl{paymentMethodService: paymentMethodService}
}

func (h *paymentMethodHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := idParam(w, r, "employeeId")
	if !ok {
		return
	}

	req := paymentmethod.ResolveRequest{
		EmployeeID: employeeID,
		Date:       r.URL.Query().Get("date"),
	}
	result, err := h.paymentMethodService.Resolve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *paymentMethodHandlerImpl) CreateHistory(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := idParam(w, r, "employeeId")
	if !ok {
		return
	}

	var req paymentmethod.CreateHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.paymentMethodService.CreateHistory(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment method updated", result)
}

func (h *paymentMethodHandlerImpl) ListHistory(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := idParam(w, r, "employeeId")
	if !ok {
		return
	}

	result, err := h.paymentMethodService.ListHistory(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result))})
}
