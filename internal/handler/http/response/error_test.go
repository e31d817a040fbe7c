package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haulbook/haulbook-backend-go/internal/domain/auth"
	"github.com/haulbook/haulbook-backend-go/internal/domain/load"
	"github.com/haulbook/haulbook-backend-go/internal/domain/payroll"
	"github.com/haulbook/haulbook-backend-go/internal/domain/paystub"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"validation", validator.ValidationErrors{{Field: "week", Message: "is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"wrapped not found", fmt.Errorf("move: %w", load.ErrLoadNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"no driver", load.ErrLoadHasNoDriver, http.StatusBadRequest, "BAD_REQUEST"},
		{"target locked", payroll.ErrTargetWeekLocked, http.StatusConflict, "CONFLICT"},
		{"source locked", payroll.ErrSourceWeekLocked, http.StatusConflict, "CONFLICT"},
		{"payroll paid", payroll.ErrPayrollFinalized, http.StatusConflict, "CONFLICT"},
		{"paystub approved", paystub.ErrPaystubNotEditable, http.StatusConflict, "CONFLICT"},
		{"not admin", auth.ErrAdminPrivilegeRequired, http.StatusForbidden, "FORBIDDEN"},
		{"unknown", errors.New("connection reset by peer"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantErr, body.Error.Code)
		})
	}
}

func TestHandleError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestFile(t *testing.T) {
	rec := httptest.NewRecorder()
	File(rec, "text/plain", "week.txt", []byte("hello"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="week.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	assert.Equal(t, "hello", rec.Body.String())
}
