// Package errors provides standardized error handling for the diagnostic pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Fatal: a required credential or setting is missing. Never retried.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// Terminal for the job: the language-model call failed and the user
	// gets the generic fallback text.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"

	// Terminal for the job: both the primary store and the snapshot
	// fallback refused the record.
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"

	// Non-terminal: both render engines failed; the job completes
	// without an attachment.
	ErrCodeRenderFailed ErrorCode = "RENDER_FAILED"

	// Non-terminal: a notification channel failed; the other channel is
	// still attempted.
	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HasCode reports whether err is a StandardError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}

// NewConfigurationError creates a fatal configuration error.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfiguration,
		Message:   "Required configuration is missing",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationError creates a terminal narrative-generation error.
func NewGenerationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Narrative generation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceError creates a terminal persistence error: both the
// primary store and the snapshot fallback failed.
func NewPersistenceError(primaryErr, fallbackErr error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Primary store and snapshot fallback both failed",
		Details:   fmt.Sprintf("primary: %s, fallback: %s", primaryErr, fallbackErr),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderError creates a non-terminal render error.
func NewRenderError(primaryErr, fallbackErr error) *StandardError {
	details := fmt.Sprintf("fallback: %s", fallbackErr)
	if primaryErr != nil {
		details = fmt.Sprintf("primary: %s, %s", primaryErr, details)
	}
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "Both render engines failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeliveryError creates a non-terminal delivery error for one channel.
func NewDeliveryError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeliveryFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
