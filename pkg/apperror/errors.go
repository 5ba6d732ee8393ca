package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Card & PIN (CARD) ----
// Messages in this family are surfaced verbatim on the POS terminal, in
// Indonesian, matching what cashiers and customers expect to read.

func ErrCardInvalid() *AppError {
	return New("CARD_001", "Kartu tidak valid atau tidak aktif", http.StatusNotFound)
}

func ErrPinIncorrect() *AppError {
	return New("CARD_002", "PIN salah", http.StatusUnauthorized)
}

func ErrCardExists() *AppError {
	return New("CARD_003", "Kartu sudah terdaftar", http.StatusConflict)
}

// ---- Payment Business Logic (PAY) ----

func ErrInsufficientFunds(balance, required int64) *AppError {
	return New("PAY_001",
		fmt.Sprintf("Saldo tidak cukup (saldo: %d, dibutuhkan: %d)", balance, required),
		http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "Jumlah tidak valid", http.StatusBadRequest)
}

func ErrEmptyCart() *AppError {
	return New("PAY_002", "Keranjang belanja kosong", http.StatusBadRequest)
}

func ErrInvalidPin() *AppError {
	return New("PAY_002", "PIN harus 6 digit angka", http.StatusBadRequest)
}

func ErrInvalidCardUID() *AppError {
	return New("PAY_002", "Format Card ID tidak valid", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Inventory (ITEM) ----

func ErrProductNotFound(productID string) *AppError {
	return New("ITEM_001",
		fmt.Sprintf("Produk dengan ID %s tidak ditemukan", productID),
		http.StatusNotFound)
}

func ErrInsufficientStock(name string, available int64) *AppError {
	return New("ITEM_002",
		fmt.Sprintf("Stok %s tidak cukup (tersisa: %d)", name, available),
		http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// ErrStorageUnavailable covers transient infrastructure failures. It is the
// only error class a caller may retry, and any failure inside the atomic
// payment block surfaces as this code after a full rollback.
func ErrStorageUnavailable(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New("PAY_002", message, http.StatusBadRequest)
}
