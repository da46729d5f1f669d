// Package errors provides custom error types for the FinFlow API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that
// errors.Is matches copies made by Wrap and WithMessage against their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Your role does not allow this action", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Personnel errors.
var (
	ErrPersonnelNotFound = &AppError{Code: "PERSONNEL_NOT_FOUND", Message: "Personnel not found", StatusCode: http.StatusNotFound}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "A user with this username already exists", StatusCode: http.StatusConflict}
)

// Cash fund errors.
var (
	ErrFundNotFound      = &AppError{Code: "FUND_NOT_FOUND", Message: "Cash fund is not initialised", StatusCode: http.StatusServiceUnavailable}
	ErrInvalidAmount     = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrInsufficientFunds = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient funds in the cash fund", StatusCode: http.StatusConflict}
	ErrFundConflict      = &AppError{Code: "FUND_CONFLICT", Message: "The cash fund was modified concurrently, please retry", StatusCode: http.StatusConflict}
	ErrAppendOnly        = &AppError{Code: "APPEND_ONLY", Message: "Funding history entries cannot be modified", StatusCode: http.StatusConflict}
)

// Disbursement request errors.
var (
	ErrDisbursementNotFound  = &AppError{Code: "DISBURSEMENT_NOT_FOUND", Message: "Disbursement request not found", StatusCode: http.StatusNotFound}
	ErrRequestAlreadyDecided = &AppError{Code: "REQUEST_ALREADY_DECIDED", Message: "This request has already been approved or rejected", StatusCode: http.StatusConflict}
	ErrRequestNotApproved    = &AppError{Code: "REQUEST_NOT_APPROVED", Message: "Only approved requests can be disbursed", StatusCode: http.StatusConflict}
	ErrAlreadyDisbursed      = &AppError{Code: "ALREADY_DISBURSED", Message: "This request has already been disbursed", StatusCode: http.StatusConflict}
)

// Expense report errors.
var (
	ErrExpenseReportNotFound   = &AppError{Code: "EXPENSE_REPORT_NOT_FOUND", Message: "Expense report not found", StatusCode: http.StatusNotFound}
	ErrExpenseCeilingExceeded  = &AppError{Code: "EXPENSE_CEILING_EXCEEDED", Message: "The total exceeds the authorised ceiling (10,000,000)", StatusCode: http.StatusBadRequest}
	ErrRequestNotLinkable      = &AppError{Code: "REQUEST_NOT_LINKABLE", Message: "The disbursement request cannot be linked to this report", StatusCode: http.StatusBadRequest}
	ErrReportNotSubmitted      = &AppError{Code: "REPORT_NOT_SUBMITTED", Message: "Only submitted reports can be reviewed", StatusCode: http.StatusConflict}
	ErrReportNotDraft          = &AppError{Code: "REPORT_NOT_DRAFT", Message: "Only draft reports can be submitted", StatusCode: http.StatusConflict}
	ErrInvalidDecision         = &AppError{Code: "INVALID_DECISION", Message: "Unsupported review decision", StatusCode: http.StatusBadRequest}
	ErrExpenseCategoryNotFound = &AppError{Code: "EXPENSE_CATEGORY_NOT_FOUND", Message: "Expense category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategoryName   = &AppError{Code: "DUPLICATE_CATEGORY_NAME", Message: "An expense category with this name already exists", StatusCode: http.StatusConflict}
	ErrSupplierNotFound        = &AppError{Code: "SUPPLIER_NOT_FOUND", Message: "Supplier not found", StatusCode: http.StatusNotFound}
)

// Site and contract errors.
var (
	ErrSiteNotFound          = &AppError{Code: "SITE_NOT_FOUND", Message: "Construction site not found", StatusCode: http.StatusNotFound}
	ErrDuplicateSiteRef      = &AppError{Code: "DUPLICATE_SITE_REFERENCE", Message: "A site with this reference already exists", StatusCode: http.StatusConflict}
	ErrContractNotFound      = &AppError{Code: "CONTRACT_NOT_FOUND", Message: "Contract not found", StatusCode: http.StatusNotFound}
	ErrDuplicateContractRef  = &AppError{Code: "DUPLICATE_CONTRACT_REFERENCE", Message: "A contract with this reference already exists", StatusCode: http.StatusConflict}
	ErrSiteAlreadyContracted = &AppError{Code: "SITE_ALREADY_CONTRACTED", Message: "This site already has a contract", StatusCode: http.StatusConflict}
)
