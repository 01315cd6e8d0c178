package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceme/backend/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodePaymentExceedsBalance, http.StatusUnprocessableEntity},
		{ErrCodeCurrencyMismatch, http.StatusUnprocessableEntity},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{shared.CodeValidation, ErrCodeValidation},
		{shared.CodeNotFound, ErrCodeNotFound},
		{shared.CodeAlreadyExists, ErrCodeAlreadyExists},
		{shared.CodeConcurrencyConflict, ErrCodeConcurrencyConflict},
		{shared.CodeInvalidState, ErrCodeInvalidState},
		{shared.CodePaymentExceedsBalance, ErrCodePaymentExceedsBalance},
		{shared.CodeCurrencyMismatch, ErrCodeCurrencyMismatch},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainCodesHaveStatus(t *testing.T) {
	for domainCode, apiCode := range apiCodeByDomainCode {
		_, ok := httpStatusByCode[apiCode]
		assert.True(t, ok, "%s maps to %s which has no HTTP status", domainCode, apiCode)
	}
}

func TestClassifyError(t *testing.T) {
	t.Run("wrapped domain error", func(t *testing.T) {
		err := fmt.Errorf("record payment: %w", shared.NewDomainError(shared.CodePaymentExceedsBalance, "payment of 300.00 exceeds balance 220.00"))

		code, status, message, ok := ClassifyError(err)
		require.True(t, ok)
		assert.Equal(t, ErrCodePaymentExceedsBalance, code)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "payment of 300.00 exceeds balance 220.00", message)
	})

	t.Run("plain error", func(t *testing.T) {
		code, status, message, ok := ClassifyError(errors.New("connection reset"))
		assert.False(t, ok)
		assert.Equal(t, ErrCodeInternal, code)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Empty(t, message, "internal error text is never exposed")
	})
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("PAYMENT_EXCEEDS_BALANCE", "payment exceeds balance")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodePaymentExceedsBalance, resp.Error.Code)
	assert.Equal(t, "payment exceeds balance", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "email", Message: "Invalid email format"},
		{Field: "line_items", Message: "This field is required"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "line_items", resp.Error.Details[1].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "invoice not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["success"])
	assert.NotContains(t, raw, "data")

	errObj := raw["error"].(map[string]any)
	assert.Equal(t, ErrCodeNotFound, errObj["code"])
	assert.Equal(t, "req-test-123", errObj["request_id"])
	assert.NotContains(t, errObj, "details")
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	zero := NewSuccessResponseWithMeta([]string{}, 5, 1, 0)
	assert.Equal(t, 0, zero.Meta.TotalPages)
}
