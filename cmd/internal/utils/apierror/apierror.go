package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what every service hands back to the routes layer; the
// routes reply with Code() as the HTTP status and the value itself as the body.
type ErrorResponse interface {
	error
	Code() int
}

type SimpleError struct {
	Status  int               `json:"-"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *SimpleError) Code() int {
	return e.Status
}

func (e *SimpleError) Error() string {
	return e.Message
}

func NewSimple(code int, message string) *SimpleError {
	return &SimpleError{Status: code, Message: message}
}

func NewMissingParamError(name string) *SimpleError {
	return &SimpleError{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Missing required parameter '%s'", name),
		Fields:  map[string]string{name: "required"},
	}
}

func NewInvalidParamTypeError(name, expected string) *SimpleError {
	return &SimpleError{
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Parameter '%s' must be of type %s", name, expected),
		Fields:  map[string]string{name: expected},
	}
}

// NewConflictError reports the booking that blocks the requested slot.
func NewConflictError(conflictingID int, span string) *SimpleError {
	return &SimpleError{
		Status:  http.StatusConflict,
		Message: "This time slot is already booked for the selected provider",
		Fields: map[string]string{
			"conflicts_with": fmt.Sprintf("%d", conflictingID),
			"span":           span,
		},
	}
}

// FromValidationError turns validator errors into a 422 naming every failing
// field and the rule it broke. Anything else is treated as a malformed body.
func FromValidationError(err error) *SimpleError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[jsonName(fe.Field())] = rule
	}
	return &SimpleError{
		Status:  http.StatusUnprocessableEntity,
		Message: "Request failed validation",
		Fields:  fields,
	}
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

var (
	InternalServerError   = NewSimple(http.StatusInternalServerError, "Internal server error")
	MalformedBodyError    = NewSimple(http.StatusBadRequest, "Malformed request body")
	NotFoundError         = NewSimple(http.StatusNotFound, "Resource not found")
	InvalidAuthTokenError = NewSimple(http.StatusUnauthorized, "Missing or invalid authorization token")
	TooManyRequestsError  = NewSimple(http.StatusTooManyRequests, "Too many requests, slow down")
	NothingToUpdateError  = NewSimple(http.StatusBadRequest, "Request does not change anything")
	ForbiddenError        = NewSimple(http.StatusForbidden, "You are not allowed to do this")
	UnknownCallerError    = NewSimple(http.StatusForbidden, "Caller has no user account")

	// Scheduling
	AppointmentConflictError = NewSimple(http.StatusConflict, "This time slot is already booked for the selected provider")
	InvalidDurationError     = NewSimple(http.StatusBadRequest, "Duration must be a positive number of minutes")
	InvalidTimeError         = NewSimple(http.StatusBadRequest, "Time must be a valid HH:MM clock time")
	InvalidDateError         = NewSimple(http.StatusBadRequest, "Date must be formatted as YYYY-MM-DD")
	InvalidStatusError       = NewSimple(http.StatusBadRequest, "Unknown appointment status")
	GridConfigurationError   = NewSimple(http.StatusInternalServerError, "Schedule grid is misconfigured")
	UnknownPatientError      = NewSimple(http.StatusUnprocessableEntity, "Patient does not exist")
	UnknownProviderError     = NewSimple(http.StatusUnprocessableEntity, "Provider does not exist")
	InvalidSearchModeError   = NewSimple(http.StatusBadRequest, "Unknown patient search mode")

	// Users
	UserAlreadyExistsError    = NewSimple(http.StatusConflict, "A user with this email already exists")
	UserAlreadyConfirmedError = NewSimple(http.StatusConflict, "User is already confirmed")

	// Identity provider
	IDPInvalidPasswordError     = NewSimple(http.StatusBadRequest, "Password does not meet the identity provider policy")
	IDPExistingEmailError       = NewSimple(http.StatusConflict, "Email is already registered")
	IDPUserNotFoundError        = NewSimple(http.StatusNotFound, "User not found")
	IDPUserNotConfirmedError    = NewSimple(http.StatusForbidden, "User has not confirmed the account")
	IDPCredentialsMismatchError = NewSimple(http.StatusUnauthorized, "Email or password is incorrect")
	IDPConfirmCodeMismatchError = NewSimple(http.StatusBadRequest, "Confirmation code does not match")
	IDPConfirmCodeExpiredError  = NewSimple(http.StatusGone, "Confirmation code has expired")
)
