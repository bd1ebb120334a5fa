package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/kegledger/backend/internal/interfaces/http/dto"
	"github.com/kegledger/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func runHandleError(t *testing.T, err error) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.RequestIDKey, "req-1")

	var h BaseHandler
	h.HandleError(c, err)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped not found", fmt.Errorf("load client: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"duplicate batch", shared.ErrDuplicateBatch, http.StatusConflict, dto.ErrCodeDuplicateBatch},
		{"validation", shared.NewValidationError("malformed quantity %q", "x"), http.StatusBadRequest, dto.ErrCodeValidation},
		{"data integrity", shared.NewDomainError(shared.CodeDataIntegrity, "negative balance"), http.StatusInternalServerError, dto.ErrCodeDataIntegrity},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := runHandleError(t, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestHandleError_BusinessRuleCarriesReasons(t *testing.T) {
	err := shared.NewBusinessRuleViolation("client cannot be deleted", "3 kegs still open", "deposit 90.00 not refunded")

	w, resp := runHandleError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBusinessRule, resp.Error.Code)
	assert.Equal(t, []string{"3 kegs still open", "deposit 90.00 not refunded"}, resp.Error.Reasons)
}

func TestHandleError_PlainErrorHidesMessage(t *testing.T) {
	_, resp := runHandleError(t, errors.New("pq: password authentication failed"))

	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Message, "password")
}

func TestParamUUID(t *testing.T) {
	id := uuid.New()

	t.Run("valid", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		var h BaseHandler
		got, ok := h.ParamUUID(c, "id")
		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("malformed", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		var h BaseHandler
		_, ok := h.ParamUUID(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
