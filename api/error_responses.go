package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/go-column-index/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrorCodeTableNotFound      ErrorCode = "TABLE_NOT_FOUND"
	ErrorCodeColumnNotFound     ErrorCode = "COLUMN_NOT_FOUND"
	ErrorCodeJobNotFound        ErrorCode = "JOB_NOT_FOUND"
	ErrorCodeAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrorCodeTypeMismatch       ErrorCode = "TYPE_MISMATCH"
	ErrorCodeInvalidSection     ErrorCode = "INVALID_SECTION"
	ErrorCodeUnresolvedSource   ErrorCode = "UNRESOLVED_SOURCE"
	ErrorCodeIncompatibleSource ErrorCode = "INCOMPATIBLE_SOURCE"
	ErrorCodeNoSources          ErrorCode = "NO_SOURCES"
	ErrorCodeNotIndexColumn     ErrorCode = "NOT_INDEX_COLUMN"
	ErrorCodeInvalidJSON        ErrorCode = "INVALID_JSON"

	// Server Error Codes (5xx)
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeStorageFailure     ErrorCode = "STORAGE_FAILURE"
	ErrorCodeJobExecutionFailed ErrorCode = "JOB_EXECUTION_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)

	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.JSON(statusCode, errorResponse)
}

// SendStructuredValidationError sends a validation error with one detail per failed field
func SendStructuredValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Errors))
	for i, err := range result.Errors {
		details[i] = ErrorDetail{
			Field:   err.Field,
			Message: err.Message,
			Code:    "VALIDATION_ERROR",
		}
	}

	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendJobNotFoundError sends a standardized job not found error
func SendJobNotFoundError(c *gin.Context, jobID string) {
	SendError(c, http.StatusNotFound, ErrorCodeJobNotFound,
		"Job '"+jobID+"' not found")
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendJobExecutionError sends a standardized job execution error
func SendJobExecutionError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeJobExecutionFailed,
		"Failed to start "+operation+" job: "+err.Error())
}

// statusFor maps the error taxonomy onto an HTTP status and an error code.
func statusFor(err error) (int, ErrorCode) {
	switch {
	case errors.Is(err, internalErrors.ErrTypeMismatch):
		return http.StatusBadRequest, ErrorCodeTypeMismatch
	case errors.Is(err, internalErrors.ErrInvalidSection):
		return http.StatusBadRequest, ErrorCodeInvalidSection
	case errors.Is(err, internalErrors.ErrIncompatibleSource):
		return http.StatusBadRequest, ErrorCodeIncompatibleSource
	case errors.Is(err, internalErrors.ErrNotIndexColumn):
		return http.StatusBadRequest, ErrorCodeNotIndexColumn
	case errors.Is(err, internalErrors.ErrInvalidInput):
		return http.StatusBadRequest, ErrorCodeValidationFailed
	case errors.Is(err, internalErrors.ErrUnresolvedSource):
		return http.StatusNotFound, ErrorCodeUnresolvedSource
	case errors.Is(err, internalErrors.ErrTableNotFound):
		return http.StatusNotFound, ErrorCodeTableNotFound
	case errors.Is(err, internalErrors.ErrColumnNotFound):
		return http.StatusNotFound, ErrorCodeColumnNotFound
	case errors.Is(err, internalErrors.ErrJobNotFound):
		return http.StatusNotFound, ErrorCodeJobNotFound
	case errors.Is(err, internalErrors.ErrTableAlreadyExists),
		errors.Is(err, internalErrors.ErrColumnAlreadyExists):
		return http.StatusConflict, ErrorCodeAlreadyExists
	case errors.Is(err, internalErrors.ErrNoSources):
		return http.StatusConflict, ErrorCodeNoSources
	case errors.Is(err, internalErrors.ErrStorageFailure):
		return http.StatusInternalServerError, ErrorCodeStorageFailure
	default:
		return http.StatusInternalServerError, ErrorCodeInternalError
	}
}

// SendDomainError sends err with the status and code of its kind.
func SendDomainError(c *gin.Context, err error) {
	status, code := statusFor(err)
	var ve *internalErrors.ValidationError
	if errors.As(err, &ve) {
		SendError(c, status, code, err.Error(), ErrorDetail{Field: ve.Field, Message: ve.Message, Code: "VALIDATION_ERROR"})
		return
	}
	SendError(c, status, code, err.Error())
}
