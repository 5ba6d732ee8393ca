package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("CARD_002", "PIN salah", http.StatusUnauthorized),
			expected: "[CARD_002] PIN salah",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("PAY_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestCardErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"CardInvalid", ErrCardInvalid(), "CARD_001", 404},
		{"PinIncorrect", ErrPinIncorrect(), "CARD_002", 401},
		{"CardExists", ErrCardExists(), "CARD_003", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestPaymentErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InsufficientFunds", ErrInsufficientFunds(10000, 18000), "PAY_001", 402},
		{"InvalidAmount", ErrInvalidAmount(), "PAY_002", 400},
		{"EmptyCart", ErrEmptyCart(), "PAY_002", 400},
		{"InvalidPin", ErrInvalidPin(), "PAY_002", 400},
		{"InvalidCardUID", ErrInvalidCardUID(), "PAY_002", 400},
		{"NotFound", ErrNotFound("Transaction"), "PAY_004", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestInsufficientFundsMessage(t *testing.T) {
	err := ErrInsufficientFunds(10000, 18000)
	assert.Equal(t, "Saldo tidak cukup (saldo: 10000, dibutuhkan: 18000)", err.Message)
}

func TestInventoryErrors(t *testing.T) {
	notFound := ErrProductNotFound("a1b2")
	assert.Equal(t, "ITEM_001", notFound.Code)
	assert.Equal(t, 404, notFound.HTTPStatus)
	assert.Contains(t, notFound.Message, "a1b2")

	noStock := ErrInsufficientStock("Nasi Gudeg Special", 1)
	assert.Equal(t, "ITEM_002", noStock.Code)
	assert.Equal(t, 409, noStock.HTTPStatus)
	assert.Equal(t, "Stok Nasi Gudeg Special tidak cukup (tersisa: 1)", noStock.Message)
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidCredentials", ErrInvalidCredentials(), "AUTH_001", 401},
		{"EmailExists", ErrEmailExists(), "AUTH_002", 409},
		{"InvalidToken", ErrInvalidToken(), "AUTH_003", 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")

	storageErr := ErrStorageUnavailable(inner)
	assert.Equal(t, "SYS_001", storageErr.Code)
	assert.Equal(t, 500, storageErr.HTTPStatus)
	assert.True(t, errors.Is(storageErr, inner))
	// The wrapped cause is never part of the client-facing message.
	assert.Equal(t, "Internal server error", storageErr.Message)

	intErr := InternalError(inner)
	assert.Equal(t, "SYS_001", intErr.Code)
	assert.True(t, errors.Is(intErr, inner))
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}
