package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Reasons identify the business meaning of a failure independently of its HTTP code.
const (
	ReasonValidation           = "validation_error"
	ReasonInvalidLocation      = "invalid_location"
	ReasonDuplicateTeamBooking = "duplicate_team_booking"
	ReasonCapacityExceeded     = "capacity_exceeded"
	ReasonNotFound             = "not_found"
	ReasonStorageFailure       = "storage_failure"
	ReasonUnauthorized         = "unauthorized"
	ReasonForbidden            = "forbidden"
)

const (
	MetaAvailable = "available"
	MetaTeamName  = "teamName"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Reason  string         `json:"reason,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	cause   error
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions", Reason: ReasonForbidden}

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Failure) Unwrap() error {
	return e.cause
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
			Reason:  ReasonValidation,
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
		Reason:  ReasonValidation,
	}
}

// InvalidLocation reports a reference to a location that does not exist.
func InvalidLocation(locationID string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("location %q does not exist", locationID),
		Reason:  ReasonInvalidLocation,
	}
}

// DuplicateTeamBooking reports that the team already holds a booking for the day and location.
func DuplicateTeamBooking(teamName string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("team %q already has a booking for this date and location", teamName),
		Reason:  ReasonDuplicateTeamBooking,
		Meta:    map[string]any{MetaTeamName: teamName},
	}
}

// CapacityExceeded reports a rejected admission together with the seats still free.
func CapacityExceeded(available int) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("capacity exceeded, %d places available", available),
		Reason:  ReasonCapacityExceeded,
		Meta:    map[string]any{MetaAvailable: available},
	}
}

// StorageFailure wraps an error reported by the record store.
func StorageFailure(err error) error {
	if err == nil {
		return nil
	}

	return &Failure{
		Code:    http.StatusInternalServerError,
		Message: "storage failure",
		Reason:  ReasonStorageFailure,
		cause:   err,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
		Reason:  ReasonUnauthorized,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
			cause:   err,
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
		Reason:  ReasonNotFound,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
		Reason:  ReasonForbidden,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetReason returns the reason of an error interface, empty when it carries none.
func GetReason(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Reason
	}

	return ""
}

// HasReason reports whether err is a Failure with the given reason.
func HasReason(err error, reason string) bool {
	return err != nil && GetReason(err) == reason
}

// GetMeta returns the metadata attached to a failure.
func GetMeta(err error) map[string]any {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Meta
	}

	return nil
}
