package http

import (
	"encoding/json"
	"net/http"

	"github.com/haulbook/haulbook-backend-go/internal/domain/paystub"
	"github.com/haulbook/haulbook-backend-go/internal/handler/http/response"
)

type PaystubHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	GenerateForWeek(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetByPayroll(w http.ResponseWriter, r *http.Request)
	ListForWeek(w http.ResponseWriter, r *http.Request)
}

type paystubHandlerImpl struct {
	paystubService paystub.PaystubService
}

func NewPaystubHandler(paystubService paystub.PaystubService) PaystubHandler {
	return &paystubHandlerImpl{paystubService: paystubService}
}

func (h *paystubHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req paystub.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.paystubService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Paystub generated", result)
}

func (h *paystubHandlerImpl) GenerateForWeek(w http.ResponseWriter, r *http.Request) {
	var req paystub.GenerateWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.paystubService.GenerateForWeek(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Paystubs generated", result)
}

func (h *paystubHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.paystubService.Approve(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Paystub approved", result)
}

func (h *paystubHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.paystubService.MarkPaid(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Paystub marked as paid", result)
}

func (h *paystubHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.paystubService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *paystubHandlerImpl) GetByPayroll(w http.ResponseWriter, r *http.Request) {
	payrollID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.paystubService.GetByPayroll(r.Context(), payrollID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *paystubHandlerImpl) ListForWeek(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	wk, ok := queryInt(w, r, "week")
	if !ok {
		return
	}
	if year == nil || wk == nil {
		response.BadRequest(w, "year and week are required", nil)
		return
	}

	result, err := h.paystubService.ListForWeek(r.Context(), *year, *wk)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result))})
}
