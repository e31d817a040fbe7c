package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/haulbook/haulbook-backend-go/internal/config"
	"github.com/haulbook/haulbook-backend-go/internal/domain/employee"
	"github.com/haulbook/haulbook-backend-go/internal/domain/load"
	"github.com/haulbook/haulbook-backend-go/internal/handler/http/response"
	"github.com/haulbook/haulbook-backend-go/internal/observability"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/jwt"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/lock"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/spreadsheet"
	paymentMethodService "github.com/haulbook/haulbook-backend-go/internal/service/paymentmethod"
	payrollService "github.com/haulbook/haulbook-backend-go/internal/service/payroll"
	paystubService "github.com/haulbook/haulbook-backend-go/internal/service/paystub"
	"github.com/haulbook/haulbook-backend-go/internal/service/servicetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testServer struct {
	router http.Handler
	store  *servicetest.Store
	jwt    jwt.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := servicetest.NewStore()
	metrics := observability.NewMetrics()
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")

	pmSvc := paymentMethodService.NewPaymentMethodService(store, store.PaymentHistory(), store.Employees(), logger)
	payrollSvc := payrollService.NewPayrollService(
		store,
		store.Payrolls(),
		store.Employees(),
		store.Loads(),
		store.FuelTransactions(),
		lock.NewNoopLocker(),
		metrics,
		logger,
	)
	paystubSvc := paystubService.NewPaystubService(store, store.Paystubs(), store.Payrolls(), metrics, logger)

	router := NewRouter(
		logger,
		cfg,
		jwtService,
		metrics,
		NewPaymentMethodHandler(pmSvc),
		NewPayrollHandler(payrollSvc),
		NewPaystubHandler(paystubSvc),
	)
	return &testServer{router: router, store: store, jwt: jwtService}
}

func (ts *testServer) token(t *testing.T, userID string, isAdmin bool) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken(userID, isAdmin)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func (ts *testServer) seedDeliveredWeek(t *testing.T) {
	t.Helper()
	ts.store.AddEmployee(employee.Employee{ID: 7, Name: "John Driver", PaymentMethod: employee.PaymentMethodPercentage})
	driverID := int64(7)
	delivered := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	ts.store.AddLoad(load.Load{
		ID: 101, LoadNumber: "L-101", DriverID: &driverID, DeliveryDate: &delivered,
		GrossAmount: decimal.RequireFromString("800"), DriverRate: decimal.RequireFromString("200"), FinalMiles: 420,
	})
}

func TestRouter_RequiresAccessToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/payroll", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/payroll", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := jwt.NewJWTService("some-other-secret", "1h")
	foreign, _, err := other.GenerateAccessToken("dispatcher-1", true)
	require.NoError(t, err)
	rec = ts.do(t, http.MethodGet, "/api/v1/payroll", foreign, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RejectsTokenWithoutActor(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/v1/payroll", ts.token(t, "", false), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Heartbeat(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_AggregateAndGet(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDeliveredWeek(t)
	token := ts.token(t, "dispatcher-1", false)

	rec := ts.do(t, http.MethodPost, "/api/v1/payroll/aggregate", token, map[string]int{"year": 2024, "week": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var agg struct {
		Data struct {
			Processed int `json:"processed"`
			Employees []struct {
				PayrollID *int64 `json:"payrollId"`
				Status    string `json:"status"`
			} `json:"employees"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agg))
	assert.Equal(t, 1, agg.Data.Processed)
	require.Len(t, agg.Data.Employees, 1)
	require.NotNil(t, agg.Data.Employees[0].PayrollID)

	id := *agg.Data.Employees[0].PayrollID
	rec = ts.do(t, http.MethodGet, "/api/v1/payroll/"+strconv.FormatInt(id, 10), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"basePay":"200"`)
	assert.Contains(t, rec.Body.String(), `"loadId":101`)
}

func TestRouter_AggregateValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "dispatcher-1", false)

	rec := ts.do(t, http.MethodPost, "/api/v1/payroll/aggregate", token, map[string]int{"year": 2024})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Details, "week")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/aggregate", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	raw := httptest.NewRecorder()
	ts.router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestRouter_GetPayrollNotFound(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/v1/payroll/999", ts.token(t, "dispatcher-1", false), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/payroll/abc", ts.token(t, "dispatcher-1", false), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_WeekLockIsAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDeliveredWeek(t)
	body := map[string]interface{}{"year": 2024, "week": 10, "isLocked": true}

	rec := ts.do(t, http.MethodPost, "/api/v1/payroll/weeks/lock", ts.token(t, "dispatcher-1", false), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := ts.token(t, "admin-1", true)
	rec = ts.do(t, http.MethodPost, "/api/v1/payroll/aggregate", admin, map[string]int{"year": 2024, "week": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/payroll/weeks/lock", admin, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"affectedRecords":1`)

	rec = ts.do(t, http.MethodGet, "/api/v1/payroll/weeks/lock?year=2024&startWeek=10&endWeek=10", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"isLocked":true`)

	// Locked weeks reject reaggregation.
	rec = ts.do(t, http.MethodPost, "/api/v1/payroll/aggregate", admin, map[string]int{"year": 2024, "week": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"skipped":1`)
}

func TestRouter_MoveLoad(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDeliveredWeek(t)
	token := ts.token(t, "dispatcher-1", false)

	rec := ts.do(t, http.MethodPost, "/api/v1/payroll/aggregate", token, map[string]int{"year": 2024, "week": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/payroll/loads/101/move", token, map[string]int{"targetYear": 2024, "targetWeek": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/payroll/loads/101/move", token, map[string]interface{}{
		"targetYear": 2024, "targetWeek": 11, "reason": "late paperwork",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"label":"2024-W11"`)

	rec = ts.do(t, http.MethodGet, "/api/v1/payroll/loads/101/moves", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"movedBy":"dispatcher-1"`)

	rec = ts.do(t, http.MethodPost, "/api/v1/payroll/loads/555/move", token, map[string]int{"targetYear": 2024, "targetWeek": 11})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ExportWeek(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDeliveredWeek(t)
	token := ts.token(t, "dispatcher-1", false)

	rec := ts.do(t, http.MethodPost, "/api/v1/payroll/aggregate", token, map[string]int{"year": 2024, "week": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/payroll/weeks/2024/10/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, spreadsheet.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="payroll-2024-W10.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.NotZero(t, rec.Body.Len())
}

func TestRouter_PaymentMethodHistory(t *testing.T) {
	ts := newTestServer(t)
	pct := decimal.RequireFromString("25")
	ts.store.AddEmployee(employee.Employee{ID: 7, Name: "John Driver", PaymentMethod: employee.PaymentMethodPercentage, PayPercentage: &pct})
	token := ts.token(t, "dispatcher-1", false)

	rec := ts.do(t, http.MethodGet, "/api/v1/employees/7/payment-method?date=2024-03-05", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"source":"current"`)

	rec = ts.do(t, http.MethodPost, "/api/v1/employees/7/payment-methods", token, map[string]string{
		"paymentMethod": "PER_MILE",
		"mileRate":      "0.55",
		"effectiveDate": "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/employees/7/payment-method?date=2024-03-05", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"history"`)
	assert.Contains(t, rec.Body.String(), `"paymentMethod":"PER_MILE"`)

	rec = ts.do(t, http.MethodGet, "/api/v1/employees/7/payment-methods", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/employees/404/payment-method?date=2024-03-05", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_PaystubFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.seedDeliveredWeek(t)
	token := ts.token(t, "dispatcher-1", false)

	rec := ts.do(t, http.MethodPost, "/api/v1/payroll/aggregate", token, map[string]int{"year": 2024, "week": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/paystubs/week", token, map[string]int{"year": 2024, "week": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/paystubs?year=2024&week=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list struct {
		Data []struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "DRAFT", list.Data[0].Status)

	id := strconv.FormatInt(list.Data[0].ID, 10)
	rec = ts.do(t, http.MethodPost, "/api/v1/paystubs/"+id+"/paid", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/paystubs/"+id+"/approve", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = ts.do(t, http.MethodPost, "/api/v1/paystubs/"+id+"/paid", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"PAID"`)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/api/v1/payroll", "", nil)

	rec := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "haulbook_http_requests_total")
}
