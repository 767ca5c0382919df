package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors returned by repositories and services.
var (
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrInvalidPhone    = errors.New("invalid_phone")
	ErrInvalidPassword = errors.New("invalid_password")
	ErrEmailExists     = errors.New("email_exists")
	ErrPhoneExists     = errors.New("phone_exists")

	ErrRoomUnavailable    = errors.New("room_unavailable")
	ErrRowVersionConflict = errors.New("row_version_conflict")
	ErrNoRowsUpdated      = errors.New("no_rows_updated")
	ErrDuplicateEvent     = errors.New("duplicate_event")
	ErrCheckoutInProgress = errors.New("checkout_in_progress")
	ErrBookingReleased    = errors.New("booking_released")

	ErrExternalServiceFailure = errors.New("external_service_failure")
	ErrStorageNotConfigured   = errors.New("storage_not_configured")
)

// AppError carries an HTTP status and public error code from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// HandleAppError writes err as a JSON error response. Anything that is not an
// *AppError becomes a 500.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
		return
	}
	RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
}
