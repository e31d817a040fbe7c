package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/handler/http/response"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/spreadsheet"
)

type PayrollHandler interface {
	// Aggregation
	Aggregate(w http.ResponseWriter, r *http.Request)

	// Fuel
	ImportFuel(w http.ResponseWriter, r *http.Request)
	SetFuelInclusion(w http.ResponseWriter, r *http.Request)

	// Load moves
	MoveLoad(w http.ResponseWriter, r *http.Request)
	ListLoadMoves(w http.ResponseWriter, r *http.Request)

	// Week lock
	SetWeekLock(w http.ResponseWriter, r *http.Request)
	GetWeekLockStatus(w http.ResponseWriter, r *http.Request)

	// Records
	GetPayroll(w http.ResponseWriter, r *http.Request)
	ListPayrolls(w http.ResponseWriter, r *http.Request)
	ExportWeek(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== AGGREGATION ==========

func (h *payrollHandlerImpl) Aggregate(w http.ResponseWriter, r *http.Request) {
	var req payroll.AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.Aggregate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll aggregated", result)
}

// ========== FUEL ==========

func (h *payrollHandlerImpl) ImportFuel(w http.ResponseWriter, r *http.Request) {
	var req payroll.FuelImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ImportFuel(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Fuel imported", result)
}

func (h *payrollHandlerImpl) SetFuelInclusion(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "integrationId")
	if !ok {
		return
	}

	var req payroll.SetFuelInclusionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.IntegrationID = id

	result, err := h.payrollService.SetFuelInclusion(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== LOAD MOVES ==========

func (h *payrollHandlerImpl) MoveLoad(w http.ResponseWriter, r *http.Request) {
	loadID, ok := idParam(w, r, "loadId")
	if !ok {
		return
	}

	var req payroll.MoveLoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.LoadID = loadID

	result, err := h.payrollService.MoveLoad(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Load moved", result)
}

func (h *payrollHandlerImpl) ListLoadMoves(w http.ResponseWriter, r *http.Request) {
	loadID, ok := idParam(w, r, "loadId")
	if !ok {
		return
	}

	result, err := h.payrollService.ListLoadMoves(r.Context(), loadID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result))})
}

// ========== WEEK LOCK ==========

func (h *payrollHandlerImpl) SetWeekLock(w http.ResponseWriter, r *http.Request) {
	var req payroll.WeekLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.SetWeekLock(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Payroll week unlocked"
	if result.IsLocked {
		message = "Payroll week locked"
	}
	response.SuccessWithMessage(w, message, result)
}

func (h *payrollHandlerImpl) GetWeekLockStatus(w http.ResponseWriter, r *http.Request) {
	var req payroll.WeekLockStatusRequest
	for name, dst := range map[string]*int{"year": &req.Year, "startWeek": &req.StartWeek, "endWeek": &req.EndWeek} {
		v, ok := queryInt(w, r, name)
		if !ok {
			return
		}
		if v != nil {
			*dst = *v
		}
	}

	result, err := h.payrollService.GetWeekLockStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== RECORDS ==========

func (h *payrollHandlerImpl) GetPayroll(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.payrollService.GetPayroll(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	var filter payroll.PayrollFilter
	var ok bool
	if filter.Year, ok = queryInt(w, r, "year"); !ok {
		return
	}
	if filter.Week, ok = queryInt(w, r, "week"); !ok {
		return
	}
	if employeeID := r.URL.Query().Get("employeeId"); employeeID != "" {
		id, err := strconv.ParseInt(employeeID, 10, 64)
		if err != nil {
			response.BadRequest(w, "employeeId must be an integer", nil)
			return
		}
		filter.EmployeeID = &id
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}

	result, err := h.payrollService.ListPayrolls(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result))})
}

func (h *payrollHandlerImpl) ExportWeek(w http.ResponseWriter, r *http.Request) {
	year, ok := intParam(w, r, "year")
	if !ok {
		return
	}
	wk, ok := intParam(w, r, "week")
	if !ok {
		return
	}

	filename, content, err := h.payrollService.ExportWeek(r.Context(), year, wk)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, spreadsheet.ContentType, filename, content)
}
